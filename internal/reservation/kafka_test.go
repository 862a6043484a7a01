package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/ticket-purchase/internal/purchase"
	"github.com/prohmpiriya/ticket-purchase/pkg/kafka"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []*kafka.Message
	err      error
}

func (p *fakePublisher) Produce(ctx context.Context, msg *kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func TestKafkaReserver_ReserveSeats(t *testing.T) {
	publisher := &fakePublisher{}
	reserver := NewKafkaReserver(publisher, &KafkaConfig{
		VenueID: "main-venue",
		Topic:   "seat.reservation.requested",
	})
	fixed := time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)
	reserver.now = func() time.Time { return fixed }

	ref, err := reserver.ReserveSeats(purchase.WithPurchaseID(context.Background(), "purchase-42"), 3)
	require.NoError(t, err)
	assert.Equal(t, "purchase-42", ref)

	require.Len(t, publisher.messages, 1)
	msg := publisher.messages[0]
	assert.Equal(t, "seat.reservation.requested", msg.Topic)
	assert.Equal(t, "main-venue", msg.Key)
	assert.Equal(t, EventTypeSeatReservationRequested, msg.Headers["event_type"])
	assert.Equal(t, "purchase-42", msg.Headers["reservation_id"])

	var event SeatReservationRequestedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "purchase-42", event.ReservationID)
	assert.Equal(t, "main-venue", event.VenueID)
	assert.Equal(t, 3, event.SeatCount)
	assert.True(t, fixed.Equal(event.Timestamp))
	assert.Equal(t, "kafka", reserver.Name())
}

func TestKafkaReserver_GeneratesIDWithoutPurchase(t *testing.T) {
	publisher := &fakePublisher{}
	reserver := NewKafkaReserver(publisher, &KafkaConfig{VenueID: "v", Topic: "t"})

	ref, err := reserver.ReserveSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
}

func TestKafkaReserver_PublishFailure(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker unavailable")}
	reserver := NewKafkaReserver(publisher, &KafkaConfig{VenueID: "v", Topic: "t"})

	_, err := reserver.ReserveSeats(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, "broker unavailable", err.Error())
}

func TestKafkaReserver_NegativeSeats(t *testing.T) {
	publisher := &fakePublisher{}
	reserver := NewKafkaReserver(publisher, &KafkaConfig{VenueID: "v", Topic: "t"})

	_, err := reserver.ReserveSeats(context.Background(), -2)
	assert.ErrorIs(t, err, ErrInvalidSeatCount)
	assert.Empty(t, publisher.messages)
}
