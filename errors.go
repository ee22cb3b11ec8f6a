package userauth

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeAuthFailed          = "auth_failed"
	TextCodeInvalidRefreshToken = "invalid_refresh_token"
	TextCodeRateLimitExceeded   = "rate_limit_exceeded"
	TextCodeInvalidCode         = "invalid_verification_code"
	TextCodeDeliveryFailed      = "notification_delivery_failed"
	TextCodePhoneNotVerified    = "phone_not_verified"
	TextCodeTokenExpired        = "token_expired"
	TextCodeTokenMalformed      = "token_malformed"
)

// ErrAuthenticationFailed is returned for a bad phone/password pair. The
// message stays deliberately generic; phone, ip and user agent travel in
// metadata for the audit trail.
var ErrAuthenticationFailed = errors.New("invalid phone or password", errors.CategoryAuth).
	WithTextCode(TextCodeAuthFailed).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidRefreshToken is returned when a refresh token is unknown,
// revoked or expired.
var ErrInvalidRefreshToken = errors.New("invalid refresh token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidRefreshToken).
	WithCode(errors.CodeUnauthorized)

// ErrRateLimitExceeded is returned when a resend request arrives inside
// the cooldown window.
var ErrRateLimitExceeded = errors.New("too many requests, retry later", errors.CategoryRateLimit).
	WithTextCode(TextCodeRateLimitExceeded)

// ErrInvalidVerificationCode collapses not-found, expired, exhausted and
// mismatched codes into one public answer so callers cannot probe which
// case applies.
var ErrInvalidVerificationCode = errors.New("invalid verification code", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidCode).
	WithCode(errors.CodeBadRequest)

// ErrNotificationDelivery is returned when the channel provider reports
// a failed send. The stored code stays valid; a retried send overwrites it.
var ErrNotificationDelivery = errors.New("failed to deliver verification code", errors.CategoryOperation).
	WithTextCode(TextCodeDeliveryFailed).
	WithCode(errors.CodeInternal)

// ErrPhoneNotVerified is returned on registration attempts for a phone
// that has not completed the verification flow.
var ErrPhoneNotVerified = errors.New("phone number must be verified before registration", errors.CategoryValidation).
	WithTextCode(TextCodePhoneNotVerified).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned when an access token failed validation
// because it expired.
var ErrTokenExpired = errors.New("access token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail signature or
// structural checks.
var ErrTokenMalformed = errors.New("access token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)
