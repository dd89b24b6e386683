package storage

import (
	"context"
	"time"

	"github.com/chris/academy-booking-core/pkg/models"
)

// BookingReader defines the interface for reading bookings. Soft-deleted bookings are never returned.
type BookingReader interface {
	// GetBooking retrieves a booking by its ID.
	GetBooking(ctx context.Context, id string) (*models.Booking, error)

	// GetBookingByOrderID retrieves the booking whose current payment order is orderID.
	GetBookingByOrderID(ctx context.Context, orderID string) (*models.Booking, error)

	// ListActiveBookingsByBatch retrieves the slot-occupying bookings of a batch.
	ListActiveBookingsByBatch(ctx context.Context, batchID string) ([]*models.Booking, error)

	// ListBookingsByStatus retrieves bookings in status last updated before the cutoff.
	ListBookingsByStatus(ctx context.Context, status models.BookingStatus, updatedBefore time.Time) ([]*models.Booking, error)
}

// BookingWriter defines the mutating booking operations. Every write is conditional.
type BookingWriter interface {
	// NextBookingSequence atomically increments and returns the reference counter for year.
	NextBookingSequence(ctx context.Context, year int) (int64, error)

	// ReserveSlot inserts a new booking, incrementing the batch occupancy and taking one
	// enrollment lock per participant in the same atomic write. untracked is the occupancy
	// of slot-occupying rows that predate the counter; it is taken off the capacity before
	// the counter condition is evaluated. It returns ErrCapacityExceeded, an
	// *EnrollmentConflict, or ErrDuplicateBooking when a condition fails.
	ReserveSlot(ctx context.Context, booking *models.Booking, capacity models.Capacity, untracked int) error

	// UpdateBooking writes booking if its stored version still equals booking.Version.
	// On success booking.Version is incremented. It returns ErrVersionConflict otherwise.
	UpdateBooking(ctx context.Context, booking *models.Booking) error

	// ReleaseSlot is UpdateBooking for a transition out of the slot-occupying set. It also
	// returns the booking's occupancy and enrollment locks.
	ReleaseSlot(ctx context.Context, booking *models.Booking) error
}

// BookingStore combines the reader and writer interfaces.
type BookingStore interface {
	BookingReader
	BookingWriter
}
