package storage

import (
	"context"

	"github.com/chris/academy-booking-core/pkg/models"
)

// LedgerStore persists one transaction row per payment attempt.
type LedgerStore interface {
	// UpsertTransaction creates or updates the row keyed by (BookingID, OrderID) and returns
	// the stored row. A row that already reached SUCCESS is returned unchanged.
	UpsertTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)

	// GetTransaction retrieves the row for an order of a booking.
	GetTransaction(ctx context.Context, bookingID, orderID string) (*models.Transaction, error)

	// ListTransactionsByBooking retrieves every payment attempt of a booking.
	ListTransactionsByBooking(ctx context.Context, bookingID string) ([]models.Transaction, error)
}
