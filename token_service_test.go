package userauth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/logistero/go-userauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *userauth.User {
	return &userauth.User{
		ID:    uuid.New(),
		Phone: "89991234567",
		Role:  userauth.RoleClient,
	}
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	service := userauth.NewTokenService(testConfig())
	user := testUser()

	token, err := service.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.Phone, claims.Phone)
	assert.Equal(t, user.Role, claims.UserRole)
	assert.Equal(t, "userauth-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	assert.True(t, service.IsValid(token))

	id, err := service.ExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestTokenService_GenerateNilUser(t *testing.T) {
	service := userauth.NewTokenService(testConfig())

	_, err := service.Generate(nil)
	require.Error(t, err)
}

func TestTokenService_IsValid(t *testing.T) {
	service := userauth.NewTokenService(testConfig())

	token, err := service.Generate(testUser())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid token", token, true},
		{"empty string", "", false},
		{"garbage", "not.a.token", false},
		{"tampered", token + "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.IsValid(tt.token))
		})
	}
}

func TestTokenService_WrongSigningKey(t *testing.T) {
	service := userauth.NewTokenService(testConfig())

	other := testConfig()
	other.SigningKey = "a-different-key"
	otherService := userauth.NewTokenService(other)

	token, err := service.Generate(testUser())
	require.NoError(t, err)

	assert.False(t, otherService.IsValid(token))

	_, err = otherService.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, userauth.ErrTokenMalformed)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	config := testConfig()
	config.AccessTokenTTLMinutes = 1
	service := userauth.NewTokenService(config)

	// sign an already expired token with the same key
	now := time.Now()
	claims := &userauth.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.Issuer,
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.SigningKey))
	require.NoError(t, err)

	assert.False(t, service.IsValid(token))

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, userauth.ErrTokenExpired)
}

func TestTokenService_RejectsNonHMAC(t *testing.T) {
	config := testConfig()
	service := userauth.NewTokenService(config)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:  config.Issuer,
		Subject: uuid.NewString(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.False(t, service.IsValid(token))

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, userauth.ErrTokenMalformed)
}

func TestTokenService_IssuerMismatch(t *testing.T) {
	service := userauth.NewTokenService(testConfig())

	other := testConfig()
	other.Issuer = "someone-else"
	otherService := userauth.NewTokenService(other)

	token, err := otherService.Generate(testUser())
	require.NoError(t, err)

	assert.False(t, service.IsValid(token))
}

func TestTokenService_ExtractUserIDNonUUIDSubject(t *testing.T) {
	config := testConfig()
	service := userauth.NewTokenService(config)

	claims := &userauth.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.Issuer,
			Subject:   "not-a-uuid",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.SigningKey))
	require.NoError(t, err)

	_, err = service.ExtractUserID(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, userauth.ErrTokenMalformed)
}
