package verification

import (
	"context"
	"testing"
	"time"

	"github.com/logistero/go-userauth/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeStore_SaveResetsAttempts(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	codes := NewCodeStore(store, SMSChannel())

	require.NoError(t, codes.Save(ctx, "89991234567", "111111", time.Minute))

	_, err := codes.IncrementAttempts(ctx, "89991234567")
	require.NoError(t, err)
	_, err = codes.IncrementAttempts(ctx, "89991234567")
	require.NoError(t, err)

	record, found, err := codes.Find(ctx, "89991234567")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(2), record.Attempts)

	require.NoError(t, codes.Save(ctx, "89991234567", "222222", time.Minute))

	record, found, err = codes.Find(ctx, "89991234567")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "222222", record.Value)
	assert.Equal(t, int64(0), record.Attempts)
}

func TestCodeStore_AttemptCounterInheritsCodeTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := cache.NewMemoryStore(cache.WithClock(func() time.Time { return now }))
	codes := NewCodeStore(store, SMSChannel())

	require.NoError(t, codes.Save(ctx, "89991234567", "111111", 2*time.Minute))

	_, err := codes.IncrementAttempts(ctx, "89991234567")
	require.NoError(t, err)

	// past the code expiry the counter is gone too
	now = now.Add(2*time.Minute + time.Second)

	_, found, err := codes.Find(ctx, "89991234567")
	require.NoError(t, err)
	assert.False(t, found)

	exists, err := store.Exists(ctx, "sms:verification:attempts:89991234567")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCodeStore_DeleteRemovesBothKeys(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	codes := NewCodeStore(store, SMSChannel())

	require.NoError(t, codes.Save(ctx, "89991234567", "111111", time.Minute))
	_, err := codes.IncrementAttempts(ctx, "89991234567")
	require.NoError(t, err)

	require.NoError(t, codes.Delete(ctx, "89991234567"))

	for _, key := range []string{
		"sms:verification:89991234567",
		"sms:verification:attempts:89991234567",
	} {
		exists, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists, key)
	}
}

func TestCodeStore_VerifiedMarker(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	codes := NewCodeStore(store, EmailChannel())

	verified, err := codes.IsVerified(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, verified)

	require.NoError(t, codes.MarkVerified(ctx, "a@example.com", time.Minute))

	verified, err = codes.IsVerified(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, verified)

	require.NoError(t, codes.DeleteVerifiedStatus(ctx, "a@example.com"))

	verified, err = codes.IsVerified(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestChannel_Keys(t *testing.T) {
	sms := SMSChannel()
	assert.Equal(t, "sms:verification:89991234567", sms.codeKey("89991234567"))
	assert.Equal(t, "sms:verification:attempts:89991234567", sms.attemptsKey("89991234567"))
	assert.Equal(t, "sms:verified:89991234567", sms.verifiedKey("89991234567"))
	assert.Equal(t, "sms:send:", sms.sendPrefix())

	email := EmailChannel()
	assert.Equal(t, "email:verification:a@example.com", email.codeKey("a@example.com"))
}
