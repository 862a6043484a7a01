package purchase

import "errors"

// Validation failures. The messages are returned to callers verbatim.
var (
	ErrTooManyTickets  = errors.New("Maximum of 20 tickets can be purchased at a time.")
	ErrNoTickets       = errors.New("No tickets selected.")
	ErrAdultRequired   = errors.New("Child and Infant tickets cannot be purchased without purchasing an Adult ticket.")
	ErrAccountRequired = errors.New("Account ID is required.")
)

// Stage identifies the step of a purchase that failed
type Stage string

const (
	StageValidation  Stage = "validation"
	StagePayment     Stage = "payment"
	StageReservation Stage = "reservation"
)

// PurchaseError is the single failure type returned by Purchase. Its
// message is exactly the message of the underlying failure.
type PurchaseError struct {
	PurchaseID string
	Stage      Stage
	Err        error
}

func (e *PurchaseError) Error() string {
	return e.Err.Error()
}

func (e *PurchaseError) Unwrap() error {
	return e.Err
}

// StageOf returns the failed stage of a purchase error, or "" if err is not one
func StageOf(err error) Stage {
	var perr *PurchaseError
	if errors.As(err, &perr) {
		return perr.Stage
	}
	return ""
}
