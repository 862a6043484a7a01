package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/ticket-purchase/internal/purchase"
)

func TestHTTPGateway_Pay_Success(t *testing.T) {
	var received paymentRequest
	var idempotencyHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		idempotencyHeader = r.Header.Get("Idempotency-Key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"payment_id":"pay-001","status":"completed"}}`))
	}))
	defer server.Close()

	gw := NewHTTPGateway(&HTTPConfig{Config: DefaultConfig(), BaseURL: server.URL})

	ctx := purchase.WithPurchaseID(context.Background(), "purchase-9")
	ref, err := gw.Pay(ctx, "acct-1", 70)

	require.NoError(t, err)
	assert.Equal(t, "pay-001", ref)
	assert.Equal(t, "acct-1", received.AccountID)
	assert.Equal(t, 70, received.Amount)
	assert.Equal(t, "gbp", received.Currency)
	assert.Equal(t, "purchase-9", received.PurchaseID)
	assert.Equal(t, "purchase-9", idempotencyHeader)
	assert.Equal(t, "http", gw.Name())
}

func TestHTTPGateway_Pay_Failure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"declined with message", http.StatusPaymentRequired,
			`{"success":false,"error":{"code":"PAYMENT_FAILED","message":"Payment failed"}}`, "Payment failed"},
		{"success flag false", http.StatusOK,
			`{"success":false,"error":{"code":"INSUFFICIENT_FUNDS","message":"Insufficient funds"}}`, "Insufficient funds"},
		{"error without message", http.StatusInternalServerError,
			`{"success":false}`, "Payment failed: status 500"},
		{"non json body", http.StatusBadGateway,
			`<html>bad gateway</html>`, ""},
		{"missing payment id", http.StatusOK,
			`{"success":true,"data":{}}`, "payment service returned no payment id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gw := NewHTTPGateway(&HTTPConfig{BaseURL: server.URL})
			_, err := gw.Pay(context.Background(), "acct-1", 20)

			require.Error(t, err)
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
		})
	}
}

func TestHTTPGateway_Pay_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	gw := NewHTTPGateway(&HTTPConfig{BaseURL: server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := gw.Pay(ctx, "acct-1", 20)
	assert.Error(t, err)
}

func TestNewHTTPGateway_Defaults(t *testing.T) {
	gw := NewHTTPGateway(&HTTPConfig{BaseURL: "http://payments.local"})

	assert.Equal(t, 10*time.Second, gw.httpClient.Timeout)
	assert.Equal(t, "gbp", gw.config.Currency)
}
