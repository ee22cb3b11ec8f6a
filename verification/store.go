package verification

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/logistero/go-userauth/cache"
)

// Code is the stored verification state for one identifier.
type Code struct {
	Value     string    `json:"value"`
	Attempts  int64     `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports strict expiry: a code checked exactly at its
// deadline is still valid.
func (c Code) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// CodeStore keeps verification codes, their attempt counters and the
// verified markers in the ephemeral store, one namespace per channel.
// The attempt counter lives in a sibling key so it can grow through a
// single atomic increment instead of a read-modify-write on the code
// record.
type CodeStore struct {
	store   cache.Store
	channel Channel
}

func NewCodeStore(store cache.Store, channel Channel) *CodeStore {
	return &CodeStore{
		store:   store,
		channel: channel,
	}
}

// Save stores a fresh code under the identifier, replacing any previous
// one and resetting its attempt counter.
func (s *CodeStore) Save(ctx context.Context, id, code string, ttl time.Duration) error {
	record := Code{
		Value:     code,
		ExpiresAt: time.Now().Add(ttl),
	}

	if err := s.store.Set(ctx, s.channel.codeKey(id), record, ttl); err != nil {
		return err
	}

	return s.store.Delete(ctx, s.channel.attemptsKey(id))
}

// Find loads the code and its current attempt count. found is false
// when no code is stored.
func (s *CodeStore) Find(ctx context.Context, id string) (Code, bool, error) {
	var record Code
	found, err := s.store.Get(ctx, s.channel.codeKey(id), &record)
	if err != nil || !found {
		return Code{}, false, err
	}

	var attempts int64
	if _, err := s.store.Get(ctx, s.channel.attemptsKey(id), &attempts); err != nil {
		return Code{}, false, err
	}
	record.Attempts = attempts

	return record, true, nil
}

// Delete removes the code and its attempt counter.
func (s *CodeStore) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.channel.codeKey(id)); err != nil {
		return err
	}
	return s.store.Delete(ctx, s.channel.attemptsKey(id))
}

// IncrementAttempts atomically bumps the failed attempt counter and
// returns the new total. The counter inherits the code's remaining TTL
// so it never outlives the code it guards.
func (s *CodeStore) IncrementAttempts(ctx context.Context, id string) (int64, error) {
	ttl, ok, err := s.store.TTL(ctx, s.channel.codeKey(id))
	if err != nil {
		return 0, err
	}
	if !ok || ttl <= 0 {
		ttl = s.channel.CodeTTL
	}

	return s.store.IncrementWithTTL(ctx, s.channel.attemptsKey(id), ttl)
}

// MarkVerified sets the verified marker with its own TTL.
func (s *CodeStore) MarkVerified(ctx context.Context, id string, ttl time.Duration) error {
	return s.store.Set(ctx, s.channel.verifiedKey(id), true, ttl)
}

// IsVerified reports whether an unexpired verified marker exists.
func (s *CodeStore) IsVerified(ctx context.Context, id string) (bool, error) {
	return s.store.Exists(ctx, s.channel.verifiedKey(id))
}

// DeleteVerifiedStatus consumes the verified marker.
func (s *CodeStore) DeleteVerifiedStatus(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.channel.verifiedKey(id)); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to delete verified status")
	}
	return nil
}
