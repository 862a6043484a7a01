package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/prohmpiriya/ticket-purchase/pkg/logger"
)

// StripeGateway charges accounts with confirmed off-session PaymentIntents.
// The account id is used as the Stripe customer id.
type StripeGateway struct {
	client *stripe.Client
	config Config
	logger *logger.Logger
}

// StripeConfig holds Stripe gateway configuration
type StripeConfig struct {
	Config
	SecretKey string
	// Backends overrides the Stripe API backends, for tests
	Backends *stripe.Backends
	Logger   *logger.Logger
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(cfg *StripeConfig) *StripeGateway {
	var opts []stripe.ClientOption
	if cfg.Backends != nil {
		opts = append(opts, stripe.WithBackends(cfg.Backends))
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	config := cfg.Config
	if config.MinorUnits == 0 {
		config.MinorUnits = DefaultConfig().MinorUnits
	}
	if config.Currency == "" {
		config.Currency = DefaultConfig().Currency
	}

	return &StripeGateway{
		client: stripe.NewClient(cfg.SecretKey, opts...),
		config: config,
		logger: log,
	}
}

// Name returns the gateway name
func (g *StripeGateway) Name() string {
	return "stripe"
}

// Pay creates and confirms a PaymentIntent for amount and returns its id
func (g *StripeGateway) Pay(ctx context.Context, accountID string, amount int) (string, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:     stripe.Int64(int64(amount) * g.config.MinorUnits),
		Currency:   stripe.String(g.config.Currency),
		Customer:   stripe.String(accountID),
		Confirm:    stripe.Bool(true),
		OffSession: stripe.Bool(true),
	}
	if key := idempotencyKey(ctx); key != "" {
		params.SetIdempotencyKey(key)
		params.AddMetadata("purchase_id", key)
	}

	pi, err := g.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			g.logger.WarnContext(ctx, "Stripe declined payment",
				zap.String("account_id", accountID),
				zap.String("code", string(stripeErr.Code)),
				zap.String("decline_code", string(stripeErr.DeclineCode)),
			)
			if stripeErr.Msg != "" {
				return "", errors.New(stripeErr.Msg)
			}
			return "", ErrPaymentFailed
		}
		return "", fmt.Errorf("stripe request failed: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		g.logger.WarnContext(ctx, "PaymentIntent not succeeded",
			zap.String("payment_intent_id", pi.ID),
			zap.String("status", string(pi.Status)),
		)
		if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
			return "", errors.New(pi.LastPaymentError.Msg)
		}
		return "", fmt.Errorf("%w: payment intent %s is %s", ErrPaymentFailed, pi.ID, pi.Status)
	}

	return pi.ID, nil
}
