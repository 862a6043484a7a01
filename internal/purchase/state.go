package purchase

import (
	"errors"
	"fmt"
	"time"
)

// State represents the progress of a single purchase attempt
type State string

const (
	StateCreated   State = "CREATED"
	StateValidated State = "VALIDATED"
	StatePaid      State = "PAID"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
)

// ErrInvalidStateTransition is returned when a state transition is not allowed
var ErrInvalidStateTransition = errors.New("invalid state transition")

// validTransitions maps each state to the states it may move to
var validTransitions = map[State][]State{
	StateCreated:   {StateValidated, StateFailed},
	StateValidated: {StatePaid, StateFailed},
	StatePaid:      {StateCompleted, StateFailed},
	StateCompleted: {},
	StateFailed:    {},
}

// IsTerminal returns true if the state is a terminal state
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// IsValid returns true if the state is a known purchase state
func (s State) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if transition to the target state is allowed
func (s State) CanTransitionTo(target State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Transition records one state change
type Transition struct {
	From      State     `json:"from"`
	To        State     `json:"to"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Lifecycle tracks the state of one purchase for the duration of the call.
// It is not safe for concurrent use and is never persisted.
type Lifecycle struct {
	PurchaseID     string
	State          State
	PreviousState  State
	PaymentRef     string
	ReservationRef string
	ErrorMessage   string
	Transitions    []Transition
	CreatedAt      time.Time
	CompletedAt    *time.Time

	now func() time.Time
}

// NewLifecycle starts a lifecycle in the CREATED state
func NewLifecycle(purchaseID string) *Lifecycle {
	l := &Lifecycle{
		PurchaseID: purchaseID,
		State:      StateCreated,
		now:        time.Now,
	}
	l.CreatedAt = l.now()
	return l
}

// TransitionTo moves the lifecycle to a new state
func (l *Lifecycle) TransitionTo(target State, reason string) error {
	if !l.State.CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStateTransition, l.State, target)
	}

	now := l.now()
	l.Transitions = append(l.Transitions, Transition{
		From:      l.State,
		To:        target,
		Reason:    reason,
		Timestamp: now,
	})
	l.PreviousState = l.State
	l.State = target

	if target.IsTerminal() {
		l.CompletedAt = &now
	}
	return nil
}

// MarkValidated records a request set that passed validation
func (l *Lifecycle) MarkValidated() error {
	return l.TransitionTo(StateValidated, "Request validated")
}

// MarkPaid records a successful payment
func (l *Lifecycle) MarkPaid(paymentRef string) error {
	if err := l.TransitionTo(StatePaid, "Payment accepted"); err != nil {
		return err
	}
	l.PaymentRef = paymentRef
	return nil
}

// MarkCompleted records a successful seat reservation
func (l *Lifecycle) MarkCompleted(reservationRef string) error {
	if err := l.TransitionTo(StateCompleted, "Seats reserved"); err != nil {
		return err
	}
	l.ReservationRef = reservationRef
	return nil
}

// MarkFailed moves the lifecycle to FAILED from any non-terminal state
func (l *Lifecycle) MarkFailed(errorMessage string) error {
	if err := l.TransitionTo(StateFailed, errorMessage); err != nil {
		return err
	}
	l.ErrorMessage = errorMessage
	return nil
}
