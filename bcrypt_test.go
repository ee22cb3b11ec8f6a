package userauth_test

import (
	"testing"

	"github.com/logistero/go-userauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := userauth.HashPassword("secret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret-password", hash)

	require.NoError(t, userauth.ComparePasswordAndHash("secret-password", hash))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := userauth.HashPassword("")
	require.Error(t, err)
	assert.ErrorIs(t, err, userauth.ErrNoEmptyString)
}

func TestComparePasswordAndHash_Mismatch(t *testing.T) {
	hash, err := userauth.HashPassword("secret-password")
	require.NoError(t, err)

	err = userauth.ComparePasswordAndHash("wrong-password", hash)
	require.Error(t, err)
	assert.ErrorIs(t, err, userauth.ErrMismatchedHashAndPassword)
}

func TestComparePasswordAndHash_InvalidHash(t *testing.T) {
	err := userauth.ComparePasswordAndHash("secret-password", "not-a-bcrypt-hash")
	require.Error(t, err)
}
