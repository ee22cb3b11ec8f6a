package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is an in-process Store used by tests and as a single
// node fallback. The clock is injectable so expiry can be tested
// without sleeping.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

type MemoryStoreOption func(*MemoryStore)

func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	store := &MemoryStore{
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	return store
}

func (s *MemoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode cache value")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		data:      data,
		expiresAt: s.deadline(ttl),
	}

	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(key)
	if !ok {
		return false, nil
	}

	if out == nil {
		return true, nil
	}

	if err := json.Unmarshal(entry.data, out); err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to decode cache value").
			WithMetadata(map[string]any{"key": key})
	}

	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.live(key)
	return ok, nil
}

func (s *MemoryStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(key)
	if !ok {
		return 0, false, nil
	}

	if entry.expiresAt.IsZero() {
		return 0, true, nil
	}

	return entry.expiresAt.Sub(s.now()), true, nil
}

func (s *MemoryStore) Increment(ctx context.Context, key string) (int64, error) {
	return s.IncrementWithTTL(ctx, key, 0)
}

func (s *MemoryStore) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value int64
	entry, ok := s.live(key)
	if ok {
		parsed, err := strconv.ParseInt(string(entry.data), 10, 64)
		if err != nil {
			return 0, errors.New("cache value is not an integer", errors.CategoryInternal).
				WithMetadata(map[string]any{"key": key})
		}
		value = parsed
	}

	value++

	next := memoryEntry{
		data:      []byte(strconv.FormatInt(value, 10)),
		expiresAt: entry.expiresAt,
	}
	if !ok {
		next.expiresAt = s.deadline(ttl)
	}

	s.entries[key] = next

	return value, nil
}

func (s *MemoryStore) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

// live returns the entry for key if present and unexpired, removing it
// lazily when expired. Callers must hold the lock.
func (s *MemoryStore) live(key string) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}

	if entry.expired(s.now()) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}

	return entry, true
}
