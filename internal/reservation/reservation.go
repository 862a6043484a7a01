package reservation

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/prohmpiriya/ticket-purchase/internal/purchase"
)

var (
	// ErrNotEnoughSeats is returned when the venue cannot hold the requested seats
	ErrNotEnoughSeats = errors.New("Not enough seats available")
	// ErrVenueNotFound is returned when the venue has no seat inventory
	ErrVenueNotFound = errors.New("Venue seat inventory not initialized")
	// ErrInvalidSeatCount is returned for a negative seat count
	ErrInvalidSeatCount = errors.New("Invalid seat count")
)

// Reserver is a seat inventory used as the purchase reservation collaborator
type Reserver interface {
	purchase.SeatReservationService

	// Name returns the reserver name
	Name() string
}

// reservationID returns the purchase id carried by ctx, or a new id
func reservationID(ctx context.Context) string {
	if id := purchase.PurchaseIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}
