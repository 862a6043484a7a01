package purchase

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrMockServiceFailure is returned when a mock service is configured to fail
var ErrMockServiceFailure = errors.New("mock service failure")

// MockPaymentService is an in-memory PaymentService
type MockPaymentService struct {
	mu           sync.RWMutex
	payments     []MockPayment
	ShouldFail   bool
	FailureError error
}

// MockPayment records one call to Pay
type MockPayment struct {
	PaymentRef string
	AccountID  string
	Amount     int
	PurchaseID string
}

// NewMockPaymentService creates a new mock payment service
func NewMockPaymentService() *MockPaymentService {
	return &MockPaymentService{}
}

// Pay records the payment and returns a generated reference
func (s *MockPaymentService) Pay(ctx context.Context, accountID string, amount int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment := MockPayment{
		AccountID:  accountID,
		Amount:     amount,
		PurchaseID: PurchaseIDFromContext(ctx),
	}

	if s.ShouldFail {
		s.payments = append(s.payments, payment)
		if s.FailureError != nil {
			return "", s.FailureError
		}
		return "", ErrMockServiceFailure
	}

	payment.PaymentRef = uuid.New().String()
	s.payments = append(s.payments, payment)
	return payment.PaymentRef, nil
}

// Payments returns every recorded call, including failed ones (for testing)
func (s *MockPaymentService) Payments() []MockPayment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]MockPayment(nil), s.payments...)
}

// CallCount returns the number of Pay calls
func (s *MockPaymentService) CallCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments)
}

// Clear removes all recorded payments (for testing)
func (s *MockPaymentService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = nil
}

// MockSeatReservationService is an in-memory SeatReservationService
type MockSeatReservationService struct {
	mu           sync.RWMutex
	reservations []MockReservation
	ShouldFail   bool
	FailureError error
}

// MockReservation records one call to ReserveSeats
type MockReservation struct {
	ReservationRef string
	SeatCount      int
	PurchaseID     string
}

// NewMockSeatReservationService creates a new mock seat reservation service
func NewMockSeatReservationService() *MockSeatReservationService {
	return &MockSeatReservationService{}
}

// ReserveSeats records the reservation and returns a generated reference
func (s *MockSeatReservationService) ReserveSeats(ctx context.Context, seatCount int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation := MockReservation{
		SeatCount:  seatCount,
		PurchaseID: PurchaseIDFromContext(ctx),
	}

	if s.ShouldFail {
		s.reservations = append(s.reservations, reservation)
		if s.FailureError != nil {
			return "", s.FailureError
		}
		return "", ErrMockServiceFailure
	}

	reservation.ReservationRef = uuid.New().String()
	s.reservations = append(s.reservations, reservation)
	return reservation.ReservationRef, nil
}

// Reservations returns every recorded call, including failed ones (for testing)
func (s *MockSeatReservationService) Reservations() []MockReservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]MockReservation(nil), s.reservations...)
}

// CallCount returns the number of ReserveSeats calls
func (s *MockSeatReservationService) CallCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reservations)
}

// Clear removes all recorded reservations (for testing)
func (s *MockSeatReservationService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations = nil
}
