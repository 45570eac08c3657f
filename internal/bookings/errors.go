package bookings

import "errors"

var (
	// ErrNotFound indicates the booking does not exist.
	ErrNotFound = errors.New("bookings: booking not found")
	// ErrSlotTaken indicates another non-cancelled booking already holds
	// the (doctor, date, time) tuple. Callers should re-fetch availability.
	ErrSlotTaken = errors.New("bookings: slot already taken")
	// ErrInvalidTransition indicates the requested lifecycle transition is
	// not permitted from the booking's current status.
	ErrInvalidTransition = errors.New("bookings: invalid status transition")
	// ErrNotOwner indicates a patient tried to act on a booking they do
	// not own.
	ErrNotOwner = errors.New("bookings: booking belongs to another patient")
	// ErrNotCancellable indicates a patient self-cancel on a booking that
	// is no longer pending.
	ErrNotCancellable = errors.New("bookings: only pending bookings can be cancelled by the patient")
	// ErrDateInPast indicates an appointment date before today.
	ErrDateInPast = errors.New("bookings: appointment date must not be in the past")
	// ErrInvalidDate indicates a date that does not parse as YYYY-MM-DD.
	// It keeps caller mistakes distinguishable from backend failures.
	ErrInvalidDate = errors.New("bookings: invalid date")
)
