package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricOpts holds options for creating metrics
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Counter wraps an OTel counter
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new counter metric
func NewCounter(opts MetricOpts) (*Counter, error) {
	counter, err := GetMeter().Int64Counter(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Counter{counter: counter}, nil
}

// Add increments the counter by the given value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Histogram wraps an OTel histogram
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a new histogram metric
func NewHistogram(opts MetricOpts) (*Histogram, error) {
	histogram, err := GetMeter().Float64Histogram(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram}, nil
}

// NewHistogramWithBuckets creates a histogram with explicit bucket boundaries
func NewHistogramWithBuckets(opts MetricOpts, boundaries []float64) (*Histogram, error) {
	histogram, err := GetMeter().Float64Histogram(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
		metric.WithExplicitBucketBoundaries(boundaries...),
	)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram}, nil
}

// Record records a value in the histogram
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

// Common attribute keys
const (
	AttrAccountID      = "account.id"
	AttrVenueID        = "venue.id"
	AttrPurchaseStage  = "purchase.stage"
	AttrPurchaseResult = "purchase.result"
	AttrTicketCategory = "ticket.category"
	AttrCollaborator   = "collaborator"
)

func AccountIDAttr(accountID string) attribute.KeyValue {
	return attribute.String(AttrAccountID, accountID)
}

func VenueIDAttr(venueID string) attribute.KeyValue {
	return attribute.String(AttrVenueID, venueID)
}

func PurchaseStageAttr(stage string) attribute.KeyValue {
	return attribute.String(AttrPurchaseStage, stage)
}

func PurchaseResultAttr(result string) attribute.KeyValue {
	return attribute.String(AttrPurchaseResult, result)
}

func TicketCategoryAttr(category string) attribute.KeyValue {
	return attribute.String(AttrTicketCategory, category)
}

func CollaboratorAttr(name string) attribute.KeyValue {
	return attribute.String(AttrCollaborator, name)
}
