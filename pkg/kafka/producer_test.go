package kafka

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig()

	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, "ticket-purchase", cfg.ClientID)
	assert.Equal(t, 10*time.Second, cfg.ProduceTimeout)
}

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), &ProducerConfig{})
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestToRecord(t *testing.T) {
	record := toRecord(&Message{
		Topic:   "seat.reservation.requested",
		Key:     "main-venue",
		Value:   []byte(`{"seat_count":3}`),
		Headers: map[string]string{"purchase_id": "p-1"},
	})

	assert.Equal(t, "seat.reservation.requested", record.Topic)
	assert.Equal(t, []byte("main-venue"), record.Key)
	assert.JSONEq(t, `{"seat_count":3}`, string(record.Value))
	require.Len(t, record.Headers, 1)
	assert.Equal(t, "purchase_id", record.Headers[0].Key)
	assert.Equal(t, []byte("p-1"), record.Headers[0].Value)
}

func TestToRecord_EmptyKey(t *testing.T) {
	record := toRecord(&Message{Topic: "t", Value: []byte("v")})

	assert.Nil(t, record.Key)
	assert.Empty(t, record.Headers)
}

func TestProducer_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	cfg := DefaultProducerConfig()
	if brokers := os.Getenv("TEST_KAFKA_BROKERS"); brokers != "" {
		cfg.Brokers = strings.Split(brokers, ",")
	}

	ctx := context.Background()
	producer, err := NewProducer(ctx, cfg)
	require.NoError(t, err)
	defer producer.Close()

	err = producer.Produce(ctx, &Message{
		Topic:   "seat.reservation.requested",
		Key:     "main-venue",
		Value:   []byte(`{"seat_count":2}`),
		Headers: map[string]string{"source": "test"},
	})
	assert.NoError(t, err)
}
