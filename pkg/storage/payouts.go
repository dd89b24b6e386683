package storage

import (
	"context"

	"github.com/chris/academy-booking-core/pkg/models"
)

// PayoutStore defines the privileged interface for creating academy payouts.
// It should only be exposed to the payout initiator.
type PayoutStore interface {
	// GetPayout retrieves the payout for a (booking, transaction) pair.
	GetPayout(ctx context.Context, bookingID, transactionID string) (*models.Payout, error)

	// CreatePayout atomically inserts the payout and marks the booking's payout status PENDING.
	// It returns ErrPayoutExists if the pair already has a payout.
	CreatePayout(ctx context.Context, payout *models.Payout) error
}
