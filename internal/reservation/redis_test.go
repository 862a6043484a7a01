package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/ticket-purchase/internal/purchase"
	pkgredis "github.com/prohmpiriya/ticket-purchase/pkg/redis"
)

func newRedisTestReserver(t *testing.T, ttl time.Duration) (*RedisReserver, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	client := pkgredis.NewFromClient(rdb)
	t.Cleanup(func() { client.Close() })

	reserver, err := NewRedisReserver(context.Background(), client, &RedisConfig{
		VenueID:        "main-venue",
		KeyPrefix:      "venue:",
		ReservationTTL: ttl,
	})
	require.NoError(t, err)

	return reserver, mr
}

func seedSeats(t *testing.T, reserver *RedisReserver, seats int) {
	t.Helper()
	seeded, err := reserver.SeedAvailability(context.Background(), seats)
	require.NoError(t, err)
	require.True(t, seeded)
}

func TestRedisReserver_SeedKeepsExistingCounter(t *testing.T) {
	reserver, _ := newRedisTestReserver(t, 0)
	ctx := context.Background()

	seedSeats(t, reserver, 2)
	_, err := reserver.ReserveSeats(ctx, 2)
	require.NoError(t, err)

	seeded, err := reserver.SeedAvailability(ctx, 2)
	require.NoError(t, err)
	assert.False(t, seeded)

	available, err := reserver.Available(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, available)

	_, err = reserver.ReserveSeats(ctx, 1)
	assert.ErrorIs(t, err, ErrNotEnoughSeats)
}

func TestRedisReserver_ReserveSeats(t *testing.T) {
	reserver, mr := newRedisTestReserver(t, 0)
	ctx := context.Background()

	seedSeats(t, reserver, 10)

	ref, err := reserver.ReserveSeats(purchase.WithPurchaseID(ctx, "purchase-1"), 4)
	require.NoError(t, err)
	assert.Equal(t, "purchase-1", ref)

	available, err := reserver.Available(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, available)

	assert.Equal(t, "4", mr.HGet("venue:main-venue:reservation:purchase-1", "quantity"))
	assert.Equal(t, "reserved", mr.HGet("venue:main-venue:reservation:purchase-1", "status"))
	assert.Equal(t, "redis", reserver.Name())
}

func TestRedisReserver_NotEnoughSeats(t *testing.T) {
	reserver, _ := newRedisTestReserver(t, 0)
	ctx := context.Background()

	seedSeats(t, reserver, 2)

	_, err := reserver.ReserveSeats(ctx, 3)
	require.Error(t, err)
	assert.Equal(t, "Not enough seats available", err.Error())
	assert.ErrorIs(t, err, ErrNotEnoughSeats)

	available, err := reserver.Available(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, available, "availability must not change on rejection")
}

func TestRedisReserver_VenueNotInitialised(t *testing.T) {
	reserver, _ := newRedisTestReserver(t, 0)
	ctx := context.Background()

	_, err := reserver.ReserveSeats(ctx, 1)
	assert.ErrorIs(t, err, ErrVenueNotFound)

	_, err = reserver.Available(ctx)
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestRedisReserver_ZeroSeats(t *testing.T) {
	reserver, _ := newRedisTestReserver(t, 0)
	ctx := context.Background()

	seedSeats(t, reserver, 0)

	ref, err := reserver.ReserveSeats(ctx, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
}

func TestRedisReserver_NegativeSeats(t *testing.T) {
	reserver, _ := newRedisTestReserver(t, 0)
	ctx := context.Background()

	seedSeats(t, reserver, 5)

	_, err := reserver.ReserveSeats(ctx, -1)
	assert.ErrorIs(t, err, ErrInvalidSeatCount)
}

func TestRedisReserver_ReservationTTL(t *testing.T) {
	reserver, mr := newRedisTestReserver(t, 10*time.Minute)
	ctx := context.Background()

	seedSeats(t, reserver, 5)

	_, err := reserver.ReserveSeats(purchase.WithPurchaseID(ctx, "purchase-ttl"), 1)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, mr.TTL("venue:main-venue:reservation:purchase-ttl"))
}

func TestRedisReserver_ConcurrentReservationsNeverOversell(t *testing.T) {
	reserver, _ := newRedisTestReserver(t, 0)
	ctx := context.Background()

	seedSeats(t, reserver, 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reserver.ReserveSeats(ctx, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	available, err := reserver.Available(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}
