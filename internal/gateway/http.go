package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPGateway charges accounts through a payment service speaking the
// standard JSON envelope
type HTTPGateway struct {
	baseURL    string
	config     Config
	httpClient *http.Client
}

// HTTPConfig holds HTTP gateway configuration
type HTTPConfig struct {
	Config
	BaseURL string
	Timeout time.Duration
}

// NewHTTPGateway creates a new HTTP payment gateway
func NewHTTPGateway(cfg *HTTPConfig) *HTTPGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	config := cfg.Config
	if config.Currency == "" {
		config.Currency = DefaultConfig().Currency
	}
	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		config:  config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type paymentRequest struct {
	AccountID  string `json:"account_id"`
	Amount     int    `json:"amount"`
	Currency   string `json:"currency"`
	PurchaseID string `json:"purchase_id,omitempty"`
}

type paymentResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		PaymentID string `json:"payment_id"`
		Status    string `json:"status"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Name returns the gateway name
func (g *HTTPGateway) Name() string {
	return "http"
}

// Pay posts the charge to {base}/v1/payments and returns the payment id.
// A failure message from the payment service is returned verbatim.
func (g *HTTPGateway) Pay(ctx context.Context, accountID string, amount int) (string, error) {
	body, err := json.Marshal(paymentRequest{
		AccountID:  accountID,
		Amount:     amount,
		Currency:   g.config.Currency,
		PurchaseID: idempotencyKey(ctx),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := idempotencyKey(ctx); key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call payment service: %w", err)
	}
	defer resp.Body.Close()

	var apiResponse paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("payment service returned status %d: %w", resp.StatusCode, err)
	}

	if !apiResponse.Success || resp.StatusCode >= http.StatusBadRequest {
		if apiResponse.Error != nil && apiResponse.Error.Message != "" {
			return "", errors.New(apiResponse.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrPaymentFailed, resp.StatusCode)
	}

	if apiResponse.Data == nil || apiResponse.Data.PaymentID == "" {
		return "", fmt.Errorf("payment service returned no payment id")
	}

	return apiResponse.Data.PaymentID, nil
}
