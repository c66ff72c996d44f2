package booking

import "fmt"

// PaymentFailedError aborts the flow before any reservation is created; no
// partial side effect exists.
type PaymentFailedError struct {
	Status string
}

func (e PaymentFailedError) Error() string {
	return fmt.Sprintf("payment was not completed (status %q)", e.Status)
}

// ReservationNotRecordedError marks the one asymmetric failure: the payment
// was captured but the reservation call failed. It is surfaced, never
// retried automatically, because re-creating a reservation after a captured
// charge risks double-booking without idempotency guarantees.
type ReservationNotRecordedError struct {
	PaymentID string
	Err       error
}

func (e ReservationNotRecordedError) Error() string {
	return fmt.Sprintf("payment %s captured but booking not recorded: %v", e.PaymentID, e.Err)
}

func (e ReservationNotRecordedError) Unwrap() error {
	return e.Err
}
