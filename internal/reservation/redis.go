package reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/prohmpiriya/ticket-purchase/pkg/logger"
	pkgredis "github.com/prohmpiriya/ticket-purchase/pkg/redis"
)

const reserveSeatsScriptName = "reserve_venue_seats"

// reserveSeatsScript atomically takes seats from the venue availability
// counter and records the reservation.
//
// KEYS[1] venue availability key
// KEYS[2] reservation hash key
// ARGV[1] seat count, ARGV[2] reservation id, ARGV[3] created_at (unix)
// ARGV[4] reservation ttl in seconds, 0 keeps the hash
const reserveSeatsScript = `
local quantity = tonumber(ARGV[1])
if not quantity or quantity < 0 then
    return {0, "INVALID_QUANTITY"}
end

local available = redis.call("GET", KEYS[1])
if not available then
    return {0, "VENUE_NOT_FOUND"}
end
available = tonumber(available)

if available < quantity then
    return {0, "INSUFFICIENT_STOCK"}
end

local remaining = redis.call("DECRBY", KEYS[1], ARGV[1])

redis.call("HSET", KEYS[2],
    "reservation_id", ARGV[2],
    "quantity", ARGV[1],
    "status", "reserved",
    "created_at", ARGV[3]
)
local ttl = tonumber(ARGV[4]) or 0
if ttl > 0 then
    redis.call("EXPIRE", KEYS[2], ARGV[4])
end

return {1, remaining}
`

// RedisConfig holds Redis reserver configuration
type RedisConfig struct {
	VenueID        string
	KeyPrefix      string
	ReservationTTL time.Duration
	Logger         *logger.Logger
}

// RedisReserver reserves seats against a per-venue availability counter
type RedisReserver struct {
	client         *pkgredis.Client
	venueID        string
	keyPrefix      string
	reservationTTL time.Duration
	logger         *logger.Logger
}

// NewRedisReserver creates a reserver and loads its Lua script
func NewRedisReserver(ctx context.Context, client *pkgredis.Client, cfg *RedisConfig) (*RedisReserver, error) {
	if _, err := client.LoadScript(ctx, reserveSeatsScriptName, reserveSeatsScript); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &RedisReserver{
		client:         client,
		venueID:        cfg.VenueID,
		keyPrefix:      cfg.KeyPrefix,
		reservationTTL: cfg.ReservationTTL,
		logger:         log,
	}, nil
}

// Name returns the reserver name
func (r *RedisReserver) Name() string {
	return "redis"
}

func (r *RedisReserver) availabilityKey() string {
	return r.keyPrefix + r.venueID + ":available"
}

func (r *RedisReserver) reservationKey(id string) string {
	return r.keyPrefix + r.venueID + ":reservation:" + id
}

// SeedAvailability sets the number of free seats only when the venue has no
// counter yet. It reports whether the counter was written; an existing
// counter keeps the seats already sold.
func (r *RedisReserver) SeedAvailability(ctx context.Context, seats int) (bool, error) {
	return r.client.SetNX(ctx, r.availabilityKey(), seats, 0).Result()
}

// Available returns the number of free seats at the venue
func (r *RedisReserver) Available(ctx context.Context) (int, error) {
	val, err := r.client.Get(ctx, r.availabilityKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, ErrVenueNotFound
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(val)
}

// ReserveSeats takes seatCount seats from the venue and returns the
// reservation id
func (r *RedisReserver) ReserveSeats(ctx context.Context, seatCount int) (string, error) {
	id := reservationID(ctx)

	result, err := r.client.EvalShaByName(ctx, reserveSeatsScriptName,
		[]string{r.availabilityKey(), r.reservationKey(id)},
		seatCount, id, time.Now().Unix(), int64(r.reservationTTL.Seconds()),
	).Slice()
	if err != nil {
		return "", fmt.Errorf("failed to run reserve script: %w", err)
	}
	if len(result) < 2 {
		return "", fmt.Errorf("unexpected reserve script result: %v", result)
	}

	if ok, _ := result[0].(int64); ok != 1 {
		code, _ := result[1].(string)
		r.logger.WarnContext(ctx, "Seat reservation rejected",
			zap.String("venue_id", r.venueID),
			zap.Int("seats", seatCount),
			zap.String("code", code),
		)
		switch code {
		case "INSUFFICIENT_STOCK":
			return "", ErrNotEnoughSeats
		case "VENUE_NOT_FOUND":
			return "", ErrVenueNotFound
		case "INVALID_QUANTITY":
			return "", ErrInvalidSeatCount
		default:
			return "", fmt.Errorf("seat reservation rejected: %s", code)
		}
	}

	remaining, _ := result[1].(int64)
	r.logger.DebugContext(ctx, "Seats reserved",
		zap.String("venue_id", r.venueID),
		zap.Int("seats", seatCount),
		zap.Int64("remaining", remaining),
	)

	return id, nil
}
