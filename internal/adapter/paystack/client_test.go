package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
)

const testSecret = "sk_test_secret"

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL, testSecret, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)
	return client
}

func TestInitializeSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer "+testSecret, r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"email":"ada@example.com","amount":150000,"reference":"NGM-1"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"NGM-1"}}`))
	}))

	init, err := client.Initialize(context.Background(), "ada@example.com", 150000, "NGM-1")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", init.AuthorizationURL)
	assert.Equal(t, "NGM-1", init.Reference)
}

func TestInitializeGatewayErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"declined", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":false}`))
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)
			_, err := client.Initialize(context.Background(), "ada@example.com", 100, "NGM-x")
			assert.ErrorIs(t, err, domainErrors.ErrGatewayUnavailable)
		})
	}
}

func TestVerifySuccess(t *testing.T) {
	paidAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/NGM-9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":{"reference":"NGM-9","status":"success","channel":"card","paid_at":"2025-03-01T12:00:00Z"}}`))
	}))

	result, err := client.Verify(context.Background(), "NGM-9")
	require.NoError(t, err)
	assert.Equal(t, model.ChargeStatusSuccess, result.Status)
	assert.Equal(t, "card", result.Channel)
	require.NotNil(t, result.PaidAt)
	assert.True(t, result.PaidAt.Equal(paidAt))
}

func TestVerifyNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	_, err := client.Verify(context.Background(), "ghost")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestVerifyRateLimited(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.Verify(context.Background(), "NGM-9")
	var rateLimited TooManyRequestsError
	require.True(t, errors.As(err, &rateLimited))
	assert.Equal(t, 7*time.Second, rateLimited.RetryAfter)
}

func TestValidSignature(t *testing.T) {
	client, err := NewHTTPClient("https://api.paystack.co", testSecret, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)

	body := []byte(`{"event":"charge.success"}`)
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.ValidSignature(body, signature))
	assert.False(t, client.ValidSignature(body, signature[:len(signature)-2]+"00"))
	assert.False(t, client.ValidSignature([]byte(`{"event":"tampered"}`), signature))
	assert.False(t, client.ValidSignature(body, ""))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter(""))
	assert.Equal(t, 12*time.Second, parseRetryAfter("12"))
	assert.Equal(t, 5*time.Second, parseRetryAfter("garbage"))
}

func TestNewHTTPClientRejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPClient("/not-absolute", testSecret, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	assert.Error(t, err)
}
