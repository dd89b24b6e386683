package storage

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a record does not exist or is soft-deleted.
var ErrNotFound = errors.New("not found")

// ErrCapacityExceeded is returned when a reservation would push a batch over its capacity.
var ErrCapacityExceeded = errors.New("batch capacity exceeded")

// ErrAlreadyEnrolled is returned when a participant already holds a slot in the batch.
var ErrAlreadyEnrolled = errors.New("participant already enrolled in batch")

// ErrVersionConflict is returned when a booking changed since it was read.
var ErrVersionConflict = errors.New("booking was modified concurrently")

// ErrPayoutExists is returned when a payout was already created for the booking and transaction.
var ErrPayoutExists = errors.New("payout already exists")

// ErrDuplicateBooking is returned when a booking with the same ID already exists.
var ErrDuplicateBooking = errors.New("booking already exists")

// EnrollmentConflict names the participants whose enrollment locks were already held.
// It matches ErrAlreadyEnrolled with errors.Is.
type EnrollmentConflict struct {
	BatchID        string
	ParticipantIDs []string
}

func (e *EnrollmentConflict) Error() string {
	return ErrAlreadyEnrolled.Error() + ": " + strings.Join(e.ParticipantIDs, ", ")
}

func (e *EnrollmentConflict) Is(target error) bool {
	return target == ErrAlreadyEnrolled
}
