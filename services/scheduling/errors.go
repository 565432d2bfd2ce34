// File: services/scheduling/errors.go
package scheduling

import "errors"

var (
	// ErrInvalidPrice is returned for a negative or non-finite price.
	ErrInvalidPrice = errors.New("invalidPrice: price must be a non-negative finite amount")

	// ErrReservationConflict is returned when a reserve loses the version
	// race: the slot was concurrently taken or mutated. Expected and
	// non-fatal; the caller re-selects, never retries the same version.
	ErrReservationConflict = errors.New("reservationConflict: slot was concurrently taken or modified")

	// ErrCancellationNotAllowed is returned when the booking's status does
	// not admit cancellation.
	ErrCancellationNotAllowed = errors.New("cancellationNotAllowed: booking cannot be cancelled in its current status")

	// ErrNotBookingOwner is returned when a customer tries to cancel a
	// booking that belongs to someone else.
	ErrNotBookingOwner = errors.New("notBookingOwner: booking belongs to another customer")

	// ErrUnknownDepositPolicy is returned for an unrecognized policy value.
	ErrUnknownDepositPolicy = errors.New("unknown deposit policy")
)
