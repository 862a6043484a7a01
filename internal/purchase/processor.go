package purchase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/prohmpiriya/ticket-purchase/internal/domain"
	"github.com/prohmpiriya/ticket-purchase/pkg/logger"
	"github.com/prohmpiriya/ticket-purchase/pkg/telemetry"
)

// PaymentService charges an account. The returned reference identifies the
// payment with the provider.
type PaymentService interface {
	Pay(ctx context.Context, accountID string, amount int) (paymentRef string, err error)
}

// SeatReservationService reserves seats at the venue
type SeatReservationService interface {
	ReserveSeats(ctx context.Context, seatCount int) (reservationRef string, err error)
}

// Receipt describes a completed purchase
type Receipt struct {
	PurchaseID     string                     `json:"purchase_id"`
	AccountID      string                     `json:"account_id"`
	Tickets        []domain.TicketTypeRequest `json:"tickets"`
	TicketCount    int                        `json:"ticket_count"`
	TotalPrice     int                        `json:"total_price"`
	SeatsReserved  int                        `json:"seats_reserved"`
	PaymentRef     string                     `json:"payment_ref"`
	ReservationRef string                     `json:"reservation_ref"`
	Transitions    []Transition               `json:"transitions"`
	CompletedAt    time.Time                  `json:"completed_at"`
}

// Result is delivered by PurchaseAsync
type Result struct {
	Receipt *Receipt
	Err     error
}

// ProcessorConfig holds the collaborators of a Processor
type ProcessorConfig struct {
	PaymentService     PaymentService
	ReservationService SeatReservationService
	Logger             *logger.Logger
	Metrics            *Metrics
}

// Processor validates ticket requests, charges the account and reserves
// seats. It holds no mutable state and is safe for concurrent use.
type Processor struct {
	payment     PaymentService
	reservation SeatReservationService
	logger      *logger.Logger
	metrics     *Metrics
}

// NewProcessor creates a new Processor
func NewProcessor(cfg *ProcessorConfig) *Processor {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Processor{
		payment:     cfg.PaymentService,
		reservation: cfg.ReservationService,
		logger:      log,
		metrics:     cfg.Metrics,
	}
}

// Validate checks a request set. Rules are applied in order and the first
// failing rule determines the error.
func (p *Processor) Validate(requests []domain.TicketTypeRequest) error {
	total, overLimit := requestedTickets(requests)
	if overLimit {
		return ErrTooManyTickets
	}
	if total < 1 {
		return ErrNoTickets
	}

	hasAdult, needsAdult := false, false
	for _, r := range requests {
		if r.Count <= 0 {
			continue
		}
		switch r.Category {
		case domain.TicketCategoryAdult:
			hasAdult = true
		case domain.TicketCategoryChild, domain.TicketCategoryInfant:
			needsAdult = true
		}
	}
	if needsAdult && !hasAdult {
		return ErrAdultRequired
	}

	for _, r := range requests {
		if r.Count < 0 {
			return fmt.Errorf("%w for %s: %d", domain.ErrInvalidTicketCount, r.Category, r.Count)
		}
	}

	return nil
}

// requestedTickets sums the positive counts, stopping as soon as a line or
// the running total passes the purchase limit. Negative lines never offset
// positive ones.
func requestedTickets(requests []domain.TicketTypeRequest) (int, bool) {
	total := 0
	for _, r := range requests {
		if r.Count <= 0 {
			continue
		}
		if r.Count > domain.MaxTicketsPerPurchase {
			return 0, true
		}
		total += r.Count
		if total > domain.MaxTicketsPerPurchase {
			return 0, true
		}
	}
	return total, false
}

// TotalTicketCount returns the number of tickets across all requests
func (p *Processor) TotalTicketCount(requests []domain.TicketTypeRequest) int {
	total := 0
	for _, r := range requests {
		total += r.Count
	}
	return total
}

// TotalPrice returns the price of all requested tickets
func (p *Processor) TotalPrice(requests []domain.TicketTypeRequest) (int, error) {
	total := 0
	for _, r := range requests {
		price, err := domain.TicketPrice(r.Category)
		if err != nil {
			return 0, err
		}
		total += price * r.Count
	}
	return total, nil
}

// SeatsRequired returns the number of seats to reserve. Infants need none.
func (p *Processor) SeatsRequired(requests []domain.TicketTypeRequest) int {
	seats := 0
	for _, r := range requests {
		if r.Category.OccupiesSeat() {
			seats += r.Count
		}
	}
	return seats
}

// Purchase validates the requests, charges the account and then reserves
// seats. Any failure is returned as a *PurchaseError; payment failure means
// no reservation is attempted. A reservation failure after payment is not
// compensated.
func (p *Processor) Purchase(ctx context.Context, accountID string, requests []domain.TicketTypeRequest) (*Receipt, error) {
	start := time.Now()
	purchaseID := uuid.New().String()

	ctx = WithPurchaseID(ctx, purchaseID)
	ctx, span := telemetry.StartSpan(ctx, "purchase.Purchase",
		trace.WithAttributes(telemetry.AccountIDAttr(accountID)),
	)
	defer span.End()

	log := p.logger.WithContext(ctx)
	lifecycle := NewLifecycle(purchaseID)

	fail := func(stage Stage, err error) (*Receipt, error) {
		_ = lifecycle.MarkFailed(err.Error())
		perr := &PurchaseError{PurchaseID: purchaseID, Stage: stage, Err: err}

		telemetry.SetSpanError(ctx, perr)
		telemetry.SetSpanAttributes(ctx, telemetry.PurchaseStageAttr(string(stage)))
		p.metrics.recordFailure(ctx, stage, time.Since(start))

		log.Warn("Purchase failed",
			zap.String("account_id", accountID),
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
		return nil, perr
	}

	if strings.TrimSpace(accountID) == "" {
		return fail(StageValidation, ErrAccountRequired)
	}
	if err := p.Validate(requests); err != nil {
		return fail(StageValidation, err)
	}
	total, err := p.TotalPrice(requests)
	if err != nil {
		return fail(StageValidation, err)
	}
	seats := p.SeatsRequired(requests)
	_ = lifecycle.MarkValidated()

	log.Debug("Purchase validated",
		zap.String("account_id", accountID),
		zap.Int("total_price", total),
		zap.Int("seats", seats),
	)

	paymentRef, err := p.pay(ctx, accountID, total)
	if err != nil {
		return fail(StagePayment, err)
	}
	_ = lifecycle.MarkPaid(paymentRef)

	reservationRef, err := p.reserve(ctx, seats)
	if err != nil {
		log.Error("Seat reservation failed after payment",
			zap.String("account_id", accountID),
			zap.String("payment_ref", paymentRef),
			zap.Int("seats", seats),
			zap.Error(err),
		)
		return fail(StageReservation, err)
	}
	_ = lifecycle.MarkCompleted(reservationRef)

	p.metrics.recordSuccess(ctx, total, seats, time.Since(start))
	log.Info("Purchase completed",
		zap.String("account_id", accountID),
		zap.Int("total_price", total),
		zap.Int("seats_reserved", seats),
		zap.String("payment_ref", paymentRef),
		zap.String("reservation_ref", reservationRef),
	)

	return &Receipt{
		PurchaseID:     purchaseID,
		AccountID:      accountID,
		Tickets:        append([]domain.TicketTypeRequest(nil), requests...),
		TicketCount:    p.TotalTicketCount(requests),
		TotalPrice:     total,
		SeatsReserved:  seats,
		PaymentRef:     paymentRef,
		ReservationRef: reservationRef,
		Transitions:    lifecycle.Transitions,
		CompletedAt:    *lifecycle.CompletedAt,
	}, nil
}

// PurchaseAsync runs Purchase in a goroutine. The returned channel receives
// exactly one Result and is then closed.
func (p *Processor) PurchaseAsync(ctx context.Context, accountID string, requests []domain.TicketTypeRequest) <-chan Result {
	reqs := append([]domain.TicketTypeRequest(nil), requests...)
	out := make(chan Result, 1)

	go func() {
		defer close(out)
		receipt, err := p.Purchase(ctx, accountID, reqs)
		out <- Result{Receipt: receipt, Err: err}
	}()

	return out
}

func (p *Processor) pay(ctx context.Context, accountID string, amount int) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "purchase.Pay", trace.WithAttributes(
		telemetry.CollaboratorAttr("payment"),
		attribute.Int("purchase.amount", amount),
	))
	defer span.End()

	ref, err := p.payment.Pay(ctx, accountID, amount)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return "", err
	}
	return ref, nil
}

func (p *Processor) reserve(ctx context.Context, seats int) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "purchase.ReserveSeats", trace.WithAttributes(
		telemetry.CollaboratorAttr("seat_reservation"),
		attribute.Int("purchase.seats", seats),
	))
	defer span.End()

	ref, err := p.reservation.ReserveSeats(ctx, seats)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return "", err
	}
	return ref, nil
}

// WithPurchaseID returns a context carrying the purchase id
func WithPurchaseID(ctx context.Context, purchaseID string) context.Context {
	return context.WithValue(ctx, logger.PurchaseIDKey, purchaseID)
}

// PurchaseIDFromContext returns the purchase id set by Purchase, if any
func PurchaseIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(logger.PurchaseIDKey).(string)
	return id
}
