package verification

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/logistero/go-userauth"
	"github.com/logistero/go-userauth/cache"
)

// Service runs the code verification flow for one channel. It is safe
// for concurrent use; all shared state lives in the ephemeral store.
type Service struct {
	channel Channel
	codes   *CodeStore
	limiter *RateLimiter
	sender  Sender
	logger  userauth.Logger
	now     func() time.Time
}

var (
	_ userauth.CodeVerifier  = (*Service)(nil)
	_ userauth.PhoneVerifier = (*Service)(nil)
)

type ServiceOption func(*Service)

func WithLogger(logger userauth.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store cache.Store, channel Channel, sender Sender, opts ...ServiceOption) *Service {
	service := &Service{
		channel: channel,
		codes:   NewCodeStore(store, channel),
		limiter: NewRateLimiter(store, channel.sendPrefix(), channel.MaxSends, channel.SendWindow),
		sender:  sender,
		logger:  userauth.DefaultLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(service)
		}
	}

	return service
}

// SendCode generates a fresh code and delivers it to the identifier.
// The rate limit is checked before any code exists, so a rejected
// request leaves no trace. A resend overwrites the previous code and
// resets its attempt counter. When delivery fails the stored code
// stays valid; the next send replaces it.
func (s *Service) SendCode(ctx context.Context, identifier string) error {
	id := s.channel.normalize(identifier)

	allowed, err := s.limiter.Allow(ctx, id)
	if err != nil {
		return err
	}
	if !allowed {
		return s.channelError(userauth.ErrRateLimitExceeded)
	}

	code, err := randomDigits(s.channel.CodeLength)
	if err != nil {
		return err
	}

	if err := s.codes.Save(ctx, id, code, s.channel.CodeTTL); err != nil {
		return err
	}

	if err := s.sender.Send(ctx, id, code); err != nil {
		s.logger.Error("verification %s delivery failed: %v", s.channel.Name, err)
		return s.channelError(userauth.ErrNotificationDelivery)
	}

	s.logger.Debug("verification %s code sent", s.channel.Name)

	return nil
}

// Verify checks a submitted code. On success the code is consumed and
// the identifier carries a verified marker for the channel's verified
// TTL. Every failure mode answers with the same error so callers learn
// nothing about whether a code exists, expired or ran out of attempts.
func (s *Service) Verify(ctx context.Context, identifier, code string) error {
	id := s.channel.normalize(identifier)

	record, found, err := s.codes.Find(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return s.invalid()
	}

	if record.Expired(s.now()) {
		if err := s.codes.Delete(ctx, id); err != nil {
			return err
		}
		return s.invalid()
	}

	if record.Attempts >= s.channel.MaxAttempts {
		if err := s.codes.Delete(ctx, id); err != nil {
			return err
		}
		return s.invalid()
	}

	if record.Value != code {
		attempts, err := s.codes.IncrementAttempts(ctx, id)
		if err != nil {
			return err
		}
		if attempts >= s.channel.MaxAttempts {
			if err := s.codes.Delete(ctx, id); err != nil {
				return err
			}
		}
		return s.invalid()
	}

	if err := s.codes.Delete(ctx, id); err != nil {
		return err
	}

	return s.codes.MarkVerified(ctx, id, s.channel.VerifiedTTL)
}

// IsVerified reports whether the identifier completed verification and
// the marker has not expired yet.
func (s *Service) IsVerified(ctx context.Context, identifier string) (bool, error) {
	return s.codes.IsVerified(ctx, s.channel.normalize(identifier))
}

// Forget consumes the verified marker, ending the grace window early.
func (s *Service) Forget(ctx context.Context, identifier string) error {
	return s.codes.DeleteVerifiedStatus(ctx, s.channel.normalize(identifier))
}

func (s *Service) invalid() error {
	return s.channelError(userauth.ErrInvalidVerificationCode)
}

// channelError tags a shared error value with the channel name without
// mutating the package level value.
func (s *Service) channelError(base *errors.Error) error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	clone.Source = base
	return clone.WithMetadata(map[string]any{
		"channel": s.channel.Name,
	})
}

// randomDigits returns n crypto-random decimal digits. Leading zeros
// are as likely as any other digit.
func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}
