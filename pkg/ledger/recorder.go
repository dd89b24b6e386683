// Package ledger records one transaction row per payment attempt of a booking.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/storage"
)

// Recorder mirrors a booking's payment sub-record into the ledger.
type Recorder struct {
	store  storage.LedgerStore
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(store storage.LedgerStore, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// Record upserts the row for the booking's current payment order. Calling it again
// with the same payment state is a no-op, and a SUCCESS row is never downgraded.
func (r *Recorder) Record(ctx context.Context, b *models.Booking) (*models.Transaction, error) {
	p := b.Payment
	if p.OrderID == "" {
		return nil, fmt.Errorf("booking %s has no payment order", b.ID)
	}

	tx := &models.Transaction{
		BookingID:     b.ID,
		OrderID:       p.OrderID,
		UserID:        b.UserID,
		PaymentID:     p.PaymentID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status,
		Method:        p.Method,
		FailureReason: p.FailureReason,
	}
	switch p.Status {
	case models.PaymentSuccess:
		tx.ProcessedAt = p.PaidAt
	case models.PaymentFailed, models.PaymentCancelled:
		now := r.now().UTC()
		tx.ProcessedAt = &now
	}

	stored, err := r.store.UpsertTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction for order %s: %w", p.OrderID, err)
	}
	if stored.Status != tx.Status {
		r.logger.Warn("ledger row kept its terminal status",
			"booking_id", b.ID,
			"order_id", p.OrderID,
			"stored_status", stored.Status,
			"requested_status", tx.Status,
		)
	}
	return stored, nil
}

// History returns every recorded attempt of a booking.
func (r *Recorder) History(ctx context.Context, bookingID string) ([]models.Transaction, error) {
	return r.store.ListTransactionsByBooking(ctx, bookingID)
}
