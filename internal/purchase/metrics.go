package purchase

import (
	"context"
	"time"

	"github.com/prohmpiriya/ticket-purchase/pkg/telemetry"
)

// Metrics holds the purchase instruments. A nil *Metrics records nothing.
type Metrics struct {
	requests *telemetry.Counter
	seats    *telemetry.Counter
	amount   *telemetry.Histogram
	duration *telemetry.Histogram
}

// NewMetrics registers the purchase instruments on the global meter
func NewMetrics() (*Metrics, error) {
	requests, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "purchase_requests_total",
		Description: "Purchase attempts by result and failed stage",
		Unit:        "{request}",
	})
	if err != nil {
		return nil, err
	}

	seats, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "purchase_seats_reserved_total",
		Description: "Seats reserved by completed purchases",
		Unit:        "{seat}",
	})
	if err != nil {
		return nil, err
	}

	amount, err := telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "purchase_amount",
		Description: "Amount charged per completed purchase",
		Unit:        "1",
	}, []float64{0, 20, 40, 80, 120, 200, 300, 400})
	if err != nil {
		return nil, err
	}

	duration, err := telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "purchase_duration_seconds",
		Description: "Time spent processing a purchase",
		Unit:        "s",
	})
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requests: requests,
		seats:    seats,
		amount:   amount,
		duration: duration,
	}, nil
}

func (m *Metrics) recordSuccess(ctx context.Context, amount, seats int, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := telemetry.PurchaseResultAttr("success")
	m.requests.Inc(ctx, result)
	m.seats.Add(ctx, int64(seats))
	m.amount.Record(ctx, float64(amount))
	m.duration.Record(ctx, elapsed.Seconds(), result)
}

func (m *Metrics) recordFailure(ctx context.Context, stage Stage, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := telemetry.PurchaseResultAttr("failure")
	m.requests.Inc(ctx, result, telemetry.PurchaseStageAttr(string(stage)))
	m.duration.Record(ctx, elapsed.Seconds(), result)
}
