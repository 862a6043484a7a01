package gateway

import (
	"context"
	"errors"

	"github.com/prohmpiriya/ticket-purchase/internal/purchase"
)

// ErrPaymentFailed is returned when a provider declines without a message
var ErrPaymentFailed = errors.New("Payment failed")

// Gateway is a payment provider used as the purchase payment collaborator
type Gateway interface {
	purchase.PaymentService

	// Name returns the gateway name
	Name() string
}

// Config holds common gateway configuration
type Config struct {
	// Currency is the ISO currency code charged, lower case
	Currency string
	// MinorUnits converts whole ticket prices into the provider's smallest
	// currency unit
	MinorUnits int64
}

// DefaultConfig returns GBP charged in pence
func DefaultConfig() Config {
	return Config{
		Currency:   "gbp",
		MinorUnits: 100,
	}
}

// idempotencyKey returns the purchase id carried by ctx, so retries of the
// same purchase are not charged twice by the provider
func idempotencyKey(ctx context.Context) string {
	return purchase.PurchaseIDFromContext(ctx)
}
