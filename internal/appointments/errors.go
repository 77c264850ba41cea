package appointments

import "errors"

var (
	// ErrSlotTaken is returned when an appointment already exists for the (date, time) pair.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrNotFound is returned when no appointment matches the given identifiers.
	ErrNotFound = errors.New("appointment not found")
)
