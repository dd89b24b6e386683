// Package payout creates the academy payout for a confirmed booking.
package payout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/storage"
	"github.com/google/uuid"
)

// Store is what the initiator needs from persistence.
type Store interface {
	storage.BookingReader
	storage.PayoutStore
}

// Result describes the outcome of Initiate. Skipped is set when nothing was written.
type Result struct {
	Payout  *models.Payout
	Skipped bool
	Reason  string
}

// Initiator is idempotent by (booking, transaction).
type Initiator struct {
	store   Store
	catalog storage.CatalogReader
	logger  *slog.Logger
	now     func() time.Time
}

func NewInitiator(store Store, catalog storage.CatalogReader, logger *slog.Logger) *Initiator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Initiator{store: store, catalog: catalog, logger: logger, now: time.Now}
}

// Initiate creates a PENDING payout for the booking's commission snapshot. An existing
// payout, a missing snapshot or a non-positive payout amount are reported as skipped.
func (i *Initiator) Initiate(ctx context.Context, bookingID, transactionID string) (*Result, error) {
	logger := i.logger.With("booking_id", bookingID, "transaction_id", transactionID)

	existing, err := i.store.GetPayout(ctx, bookingID, transactionID)
	if err == nil {
		return &Result{Payout: existing, Skipped: true, Reason: "payout already exists"}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing payout: %w", err)
	}

	booking, err := i.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if !paidOut(booking) {
		return &Result{Skipped: true, Reason: fmt.Sprintf("booking is %s with payment %s", booking.Status, booking.Payment.Status)}, nil
	}
	if booking.Commission == nil || !booking.Commission.PayoutAmount.IsPositive() {
		return &Result{Skipped: true, Reason: "no positive payout amount"}, nil
	}

	now := i.now().UTC()
	p := &models.Payout{
		BookingID:      bookingID,
		TransactionID:  transactionID,
		ID:             uuid.New().String(),
		CenterID:       booking.CenterID,
		UserID:         booking.UserID,
		CommissionRate: booking.Commission.Rate,
		Commission:     booking.Commission.Amount,
		BatchAmount:    booking.PriceBreakdown.BatchAmount,
		PayoutAmount:   booking.Commission.PayoutAmount,
		Currency:       booking.Currency,
		Status:         models.PayoutPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	p.PayoutAccountID = i.resolveAccount(ctx, logger, booking.CenterID)

	if err := i.store.CreatePayout(ctx, p); err != nil {
		if errors.Is(err, storage.ErrPayoutExists) {
			logger.Info("payout created concurrently")
			return &Result{Skipped: true, Reason: "payout already exists"}, nil
		}
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	logger.Info("payout created", "payout_id", p.ID, "payout_amount", p.PayoutAmount.String(), "bound_account", p.PayoutAccountID != nil)
	return &Result{Payout: p}, nil
}

// paidOut reports whether the booking's payment was captured. Completion after payment
// does not forfeit the payout.
func paidOut(b *models.Booking) bool {
	if b.Payment.Status != models.PaymentSuccess {
		return false
	}
	return b.Status == models.CONFIRMED || b.Status == models.COMPLETED
}

// resolveAccount returns the academy's active payout account, or nil. Lookup problems
// never block payout creation; the account is bound later.
func (i *Initiator) resolveAccount(ctx context.Context, logger *slog.Logger, centerID string) *string {
	account, err := i.catalog.GetPayoutAccount(ctx, centerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Warn("academy has no payout account", "center_id", centerID)
		} else {
			logger.Error("failed to resolve payout account", "center_id", centerID, "error", err)
		}
		return nil
	}
	if !account.IsActive || account.IsDeleted {
		logger.Warn("payout account is not active", "center_id", centerID, "account_id", account.ID)
		return nil
	}
	id := account.ID
	return &id
}
