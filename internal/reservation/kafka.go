package reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/ticket-purchase/pkg/kafka"
	"github.com/prohmpiriya/ticket-purchase/pkg/logger"
)

// EventTypeSeatReservationRequested is the event_type of reservation requests
const EventTypeSeatReservationRequested = "seat.reservation.requested"

// SeatReservationRequestedEvent asks the venue inventory to hold seats
type SeatReservationRequestedEvent struct {
	EventType     string    `json:"event_type"`
	ReservationID string    `json:"reservation_id"`
	VenueID       string    `json:"venue_id"`
	SeatCount     int       `json:"seat_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// Key returns the Kafka message key for partitioning
func (e *SeatReservationRequestedEvent) Key() string {
	return e.VenueID
}

// Publisher publishes a single message and waits for the acknowledgement
type Publisher interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// KafkaConfig holds Kafka reserver configuration
type KafkaConfig struct {
	VenueID string
	Topic   string
	Logger  *logger.Logger
}

// KafkaReserver hands seat reservations to the venue inventory service
// through a Kafka topic. A reservation succeeds once the broker has
// acknowledged the request.
type KafkaReserver struct {
	publisher Publisher
	venueID   string
	topic     string
	logger    *logger.Logger
	now       func() time.Time
}

// NewKafkaReserver creates a new Kafka reserver
func NewKafkaReserver(publisher Publisher, cfg *KafkaConfig) *KafkaReserver {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &KafkaReserver{
		publisher: publisher,
		venueID:   cfg.VenueID,
		topic:     cfg.Topic,
		logger:    log,
		now:       time.Now,
	}
}

// Name returns the reserver name
func (r *KafkaReserver) Name() string {
	return "kafka"
}

// ReserveSeats publishes a SeatReservationRequestedEvent and returns its
// reservation id
func (r *KafkaReserver) ReserveSeats(ctx context.Context, seatCount int) (string, error) {
	if seatCount < 0 {
		return "", ErrInvalidSeatCount
	}

	event := &SeatReservationRequestedEvent{
		EventType:     EventTypeSeatReservationRequested,
		ReservationID: reservationID(ctx),
		VenueID:       r.venueID,
		SeatCount:     seatCount,
		Timestamp:     r.now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal reservation event: %w", err)
	}

	err = r.publisher.Produce(ctx, &kafka.Message{
		Topic: r.topic,
		Key:   event.Key(),
		Value: value,
		Headers: map[string]string{
			"event_type":     event.EventType,
			"reservation_id": event.ReservationID,
		},
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish seat reservation",
			zap.String("topic", r.topic),
			zap.String("reservation_id", event.ReservationID),
			zap.Error(err),
		)
		return "", err
	}

	r.logger.DebugContext(ctx, "Seat reservation published",
		zap.String("topic", r.topic),
		zap.String("reservation_id", event.ReservationID),
		zap.Int("seats", seatCount),
	)

	return event.ReservationID, nil
}
