package verification

import (
	"time"

	"github.com/logistero/go-userauth"
)

// Defaults shared by both channels.
const (
	DefaultCodeLength  = 6
	DefaultCodeTTL     = 5 * time.Minute
	DefaultMaxAttempts = 3
	DefaultVerifiedTTL = 10 * time.Minute
	DefaultSendWindow  = time.Minute
	DefaultMaxSends    = 1
)

// Channel describes one verification transport: how identifiers are
// normalized, how codes are shaped, and which key namespace the
// channel owns in the ephemeral store.
type Channel struct {
	Name        string
	Normalize   func(string) string
	CodeLength  int
	CodeTTL     time.Duration
	MaxAttempts int64
	VerifiedTTL time.Duration
	SendWindow  time.Duration
	MaxSends    int64
}

type ChannelOption func(*Channel)

func WithCodeLength(n int) ChannelOption {
	return func(c *Channel) {
		if n > 0 {
			c.CodeLength = n
		}
	}
}

func WithCodeTTL(ttl time.Duration) ChannelOption {
	return func(c *Channel) {
		if ttl > 0 {
			c.CodeTTL = ttl
		}
	}
}

func WithMaxAttempts(n int64) ChannelOption {
	return func(c *Channel) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

func WithVerifiedTTL(ttl time.Duration) ChannelOption {
	return func(c *Channel) {
		if ttl > 0 {
			c.VerifiedTTL = ttl
		}
	}
}

// WithSendLimit bounds code sends to max per window per identifier.
func WithSendLimit(max int64, window time.Duration) ChannelOption {
	return func(c *Channel) {
		if max > 0 {
			c.MaxSends = max
		}
		if window > 0 {
			c.SendWindow = window
		}
	}
}

// SMSChannel is the phone verification channel. Identifiers are
// normalized to the canonical local phone form.
func SMSChannel(opts ...ChannelOption) Channel {
	return newChannel("sms", userauth.NormalizePhone, opts...)
}

// EmailChannel is the email verification channel.
func EmailChannel(opts ...ChannelOption) Channel {
	return newChannel("email", userauth.NormalizeEmail, opts...)
}

func newChannel(name string, normalize func(string) string, opts ...ChannelOption) Channel {
	channel := Channel{
		Name:        name,
		Normalize:   normalize,
		CodeLength:  DefaultCodeLength,
		CodeTTL:     DefaultCodeTTL,
		MaxAttempts: DefaultMaxAttempts,
		VerifiedTTL: DefaultVerifiedTTL,
		SendWindow:  DefaultSendWindow,
		MaxSends:    DefaultMaxSends,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&channel)
		}
	}

	return channel
}

func (c Channel) normalize(identifier string) string {
	if c.Normalize == nil {
		return identifier
	}
	return c.Normalize(identifier)
}

func (c Channel) codeKey(id string) string {
	return c.Name + ":verification:" + id
}

func (c Channel) attemptsKey(id string) string {
	return c.Name + ":verification:attempts:" + id
}

func (c Channel) verifiedKey(id string) string {
	return c.Name + ":verified:" + id
}

func (c Channel) sendPrefix() string {
	return c.Name + ":send:"
}
