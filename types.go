package userauth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetAccessTokenTTLMinutes() int
	GetRefreshTokenTTLSeconds() int
}

// TokenPair is the result of every operation that establishes a session:
// a short lived JWT plus an opaque single use refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ClientInfo carries the request attribution recorded on sessions and
// audit entries. Both fields may be empty.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// TokenIssuer is the stateless access token contract
type TokenIssuer interface {
	Generate(user *User) (string, error)
	IsValid(token string) bool
	ExtractUserID(token string) (uuid.UUID, error)
	Validate(token string) (*AccessClaims, error)
}

// AuditSink receives audit entries. Implementations may fail; callers in
// the auth flows treat every failure as non fatal.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditEntry is a single audit record. Codes, password hashes and access
// tokens must never end up in Payload.
type AuditEntry struct {
	UserID          *uuid.UUID
	Action          string
	ActorIdentifier string
	IPAddress       string
	UserAgent       string
	Payload         map[string]any
	TableName       string
	RecordID        string
}

// PhoneVerifier is the slice of the verification service the
// authenticator needs to gate registration on a proven phone number.
type PhoneVerifier interface {
	IsVerified(ctx context.Context, identifier string) (bool, error)
	Forget(ctx context.Context, identifier string) error
}

// CodeVerifier is the produced interface of a per channel verification
// service, consumed by the HTTP layer.
type CodeVerifier interface {
	SendCode(ctx context.Context, identifier string) error
	Verify(ctx context.Context, identifier, code string) error
	IsVerified(ctx context.Context, identifier string) (bool, error)
}

type noopAuditSink struct{}

func (noopAuditSink) Record(ctx context.Context, entry AuditEntry) error { return nil }

// NoopAuditSink returns a sink that drops every entry.
func NoopAuditSink() AuditSink { return noopAuditSink{} }

func normalizeAuditSink(sink AuditSink) AuditSink {
	if sink == nil {
		return noopAuditSink{}
	}
	return sink
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] USERAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] USERAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] USERAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] USERAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

// DefaultLogger returns the stdout fallback logger.
func DefaultLogger() Logger { return defLogger{} }

func normalizeLogger(logger Logger) Logger {
	if logger == nil {
		return defLogger{}
	}
	return logger
}

// BasicConfig is a plain Config implementation for wiring and tests.
type BasicConfig struct {
	SigningKey             string
	Issuer                 string
	Audience               []string
	AccessTokenTTLMinutes  int
	RefreshTokenTTLSeconds int
}

func (c BasicConfig) GetSigningKey() string { return c.SigningKey }

func (c BasicConfig) GetIssuer() string { return c.Issuer }

func (c BasicConfig) GetAudience() []string { return c.Audience }

func (c BasicConfig) GetAccessTokenTTLMinutes() int {
	if c.AccessTokenTTLMinutes <= 0 {
		return 60
	}
	return c.AccessTokenTTLMinutes
}

func (c BasicConfig) GetRefreshTokenTTLSeconds() int {
	if c.RefreshTokenTTLSeconds <= 0 {
		return int((30 * 24 * time.Hour).Seconds())
	}
	return c.RefreshTokenTTLSeconds
}
