package verification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSMSSender_Send(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSMSSender(server.URL, "login", "password")

	err := sender.Send(context.Background(), "89991234567", "123456")
	require.NoError(t, err)

	require.NotNil(t, captured)
	query := captured.URL.Query()
	assert.Equal(t, "login", query.Get("login"))
	assert.Equal(t, "password", query.Get("psw"))
	assert.Equal(t, "89991234567", query.Get("phones"))
	assert.Equal(t, "Your verification code is 123456", query.Get("mes"))
}

func TestHTTPSMSSender_MessageTemplate(t *testing.T) {
	var message string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		message = r.URL.Query().Get("mes")
	}))
	defer server.Close()

	sender := NewHTTPSMSSender(server.URL, "login", "password",
		WithMessageTemplate("Code: %s"))

	require.NoError(t, sender.Send(context.Background(), "89991234567", "654321"))
	assert.Equal(t, "Code: 654321", message)
}

func TestHTTPSMSSender_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusForbidden)
	}))
	defer server.Close()

	sender := NewHTTPSMSSender(server.URL, "login", "password")

	err := sender.Send(context.Background(), "89991234567", "123456")
	require.Error(t, err)
}

func TestMockSenders(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, MockSMSSender{}.Send(ctx, "89991234567", "123456"))
	assert.NoError(t, MockEmailSender{}.Send(ctx, "a@example.com", "123456"))
}
