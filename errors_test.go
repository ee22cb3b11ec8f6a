package userauth_test

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/logistero/go-userauth"
	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		err      *goerrors.Error
		category goerrors.Category
		textCode string
	}{
		{"authentication failed", userauth.ErrAuthenticationFailed, goerrors.CategoryAuth, userauth.TextCodeAuthFailed},
		{"invalid refresh token", userauth.ErrInvalidRefreshToken, goerrors.CategoryAuth, userauth.TextCodeInvalidRefreshToken},
		{"rate limit exceeded", userauth.ErrRateLimitExceeded, goerrors.CategoryRateLimit, userauth.TextCodeRateLimitExceeded},
		{"invalid verification code", userauth.ErrInvalidVerificationCode, goerrors.CategoryBadInput, userauth.TextCodeInvalidCode},
		{"notification delivery", userauth.ErrNotificationDelivery, goerrors.CategoryOperation, userauth.TextCodeDeliveryFailed},
		{"phone not verified", userauth.ErrPhoneNotVerified, goerrors.CategoryValidation, userauth.TextCodePhoneNotVerified},
		{"token expired", userauth.ErrTokenExpired, goerrors.CategoryAuth, userauth.TextCodeTokenExpired},
		{"token malformed", userauth.ErrTokenMalformed, goerrors.CategoryAuth, userauth.TextCodeTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.textCode, tt.err.TextCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
