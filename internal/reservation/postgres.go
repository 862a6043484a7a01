package reservation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/prohmpiriya/ticket-purchase/pkg/logger"
)

// Querier is the subset of the database used by the Postgres reserver
type Querier interface {
	ExecResult(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// reserveSeatsSQL takes seats only while capacity remains
const reserveSeatsSQL = `
	UPDATE venue_seats
	SET reserved = reserved + $2, updated_at = NOW()
	WHERE venue_id = $1 AND capacity - reserved >= $2
`

const venueExistsSQL = `SELECT EXISTS (SELECT 1 FROM venue_seats WHERE venue_id = $1)`

// CreateVenueSeatsTableSQL creates the seat inventory table
const CreateVenueSeatsTableSQL = `
	CREATE TABLE IF NOT EXISTS venue_seats (
		venue_id   TEXT PRIMARY KEY,
		capacity   INTEGER NOT NULL CHECK (capacity >= 0),
		reserved   INTEGER NOT NULL DEFAULT 0 CHECK (reserved >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// seedVenueSQL creates the venue row, keeping an existing row's counts
const seedVenueSQL = `
	INSERT INTO venue_seats (venue_id, capacity, reserved)
	VALUES ($1, $2, 0)
	ON CONFLICT (venue_id) DO NOTHING
`

// PostgresConfig holds Postgres reserver configuration
type PostgresConfig struct {
	VenueID string
	Logger  *logger.Logger
}

// PostgresReserver reserves seats with a conditional update of the venue row
type PostgresReserver struct {
	db      Querier
	venueID string
	logger  *logger.Logger
}

// NewPostgresReserver creates a new Postgres reserver
func NewPostgresReserver(db Querier, cfg *PostgresConfig) *PostgresReserver {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &PostgresReserver{
		db:      db,
		venueID: cfg.VenueID,
		logger:  log,
	}
}

// Name returns the reserver name
func (r *PostgresReserver) Name() string {
	return "postgres"
}

// EnsureVenue creates the seat inventory table and, when capacity is
// positive, a venue row with that capacity
func (r *PostgresReserver) EnsureVenue(ctx context.Context, capacity int) error {
	if _, err := r.db.ExecResult(ctx, CreateVenueSeatsTableSQL); err != nil {
		return fmt.Errorf("failed to create venue_seats table: %w", err)
	}
	if capacity <= 0 {
		return nil
	}
	if _, err := r.db.ExecResult(ctx, seedVenueSQL, r.venueID, capacity); err != nil {
		return fmt.Errorf("failed to seed venue %s: %w", r.venueID, err)
	}
	return nil
}

// ReserveSeats increments the reserved count when capacity allows
func (r *PostgresReserver) ReserveSeats(ctx context.Context, seatCount int) (string, error) {
	if seatCount < 0 {
		return "", ErrInvalidSeatCount
	}

	tag, err := r.db.ExecResult(ctx, reserveSeatsSQL, r.venueID, seatCount)
	if err != nil {
		return "", fmt.Errorf("failed to reserve seats: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, venueExistsSQL, r.venueID).Scan(&exists); err != nil {
			return "", fmt.Errorf("failed to look up venue: %w", err)
		}
		r.logger.WarnContext(ctx, "Seat reservation rejected",
			zap.String("venue_id", r.venueID),
			zap.Int("seats", seatCount),
			zap.Bool("venue_exists", exists),
		)
		if !exists {
			return "", ErrVenueNotFound
		}
		return "", ErrNotEnoughSeats
	}

	return reservationID(ctx), nil
}
