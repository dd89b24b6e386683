// Package booking is the booking state machine. It is the only writer of bookings:
// every transition validates, persists with a conditional write, and only then
// hands side effects to the task submitter.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/chris/academy-booking-core/pkg/gateway"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/money"
	"github.com/chris/academy-booking-core/pkg/storage"
	"github.com/chris/academy-booking-core/pkg/tasks"
	"github.com/chris/academy-booking-core/pkg/websockets"
	"github.com/shopspring/decimal"
)

// maxWriteAttempts bounds re-reads after an optimistic-lock conflict.
const maxWriteAttempts = 3

type Config struct {
	PlatformFee           money.Amount
	TaxRate               decimal.Decimal
	TaxEnabled            bool
	DefaultCommissionRate money.Rate
	Currency              string
	GatewayTimeout        time.Duration
	GatewayMinimum        int64
}

// LedgerRecorder writes the transaction row for a booking's current payment order.
type LedgerRecorder interface {
	Record(ctx context.Context, b *models.Booking) (*models.Transaction, error)
}

// Deps are the collaborators of the service. Publisher may be nil.
type Deps struct {
	Bookings  storage.BookingStore
	Catalog   storage.CatalogReader
	Gateway   gateway.Gateway
	Ledger    LedgerRecorder
	Tasks     tasks.Submitter
	Publisher websockets.Publisher
}

type Service struct {
	bookings  storage.BookingStore
	catalog   storage.CatalogReader
	gateway   gateway.Gateway
	ledger    LedgerRecorder
	tasks     tasks.Submitter
	publisher websockets.Publisher
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(deps Deps, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 10 * time.Second
	}
	if cfg.GatewayMinimum <= 0 {
		cfg.GatewayMinimum = money.DefaultGatewayMinimum
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = &websockets.NoOpPublisher{}
	}
	return &Service{
		bookings:  deps.Bookings,
		catalog:   deps.Catalog,
		gateway:   deps.Gateway,
		ledger:    deps.Ledger,
		tasks:     deps.Tasks,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetBooking returns a booking owned by userID.
func (s *Service) GetBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, apperrors.Authorization("You are not allowed to access this booking")
	}
	return b, nil
}

func (s *Service) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("Booking not found").WithDetail("booking_id", bookingID)
		}
		return nil, apperrors.Internal(err, "Failed to load booking")
	}
	return b, nil
}

// transition applies change to a copy of b and writes it with write. On a version
// conflict the booking is re-read and change is applied again, so change must
// re-check its own preconditions.
func (s *Service) transition(ctx context.Context, b *models.Booking, change func(*models.Booking) error, write func(context.Context, *models.Booking) error) (*models.Booking, error) {
	current := b
	for attempt := 1; ; attempt++ {
		next := current.Clone()
		if err := change(next); err != nil {
			return nil, err
		}
		err := write(ctx, next)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return nil, apperrors.Internal(err, "Failed to update booking")
		}
		if attempt == maxWriteAttempts {
			return nil, apperrors.Conflict("Booking was modified concurrently, please retry").WithCause(err)
		}
		s.logger.Warn("booking version conflict, retrying", "booking_id", b.ID, "attempt", attempt)
		if current, err = s.loadBooking(ctx, b.ID); err != nil {
			return nil, err
		}
	}
}

func (s *Service) update(ctx context.Context, b *models.Booking) error {
	return s.bookings.UpdateBooking(ctx, b)
}

func (s *Service) release(ctx context.Context, b *models.Booking) error {
	return s.bookings.ReleaseSlot(ctx, b)
}

// submit hands a task to the background submitter. Failures are logged and dropped.
func (s *Service) submit(ctx context.Context, task tasks.Task) {
	if err := s.tasks.Submit(context.WithoutCancel(ctx), task); err != nil {
		s.logger.Error("failed to submit background task", "task_id", task.ID, "kind", task.Kind, "error", err)
	}
}

// record mirrors the payment into the ledger after the booking write committed.
func (s *Service) record(ctx context.Context, b *models.Booking) *models.Transaction {
	tx, err := s.ledger.Record(context.WithoutCancel(ctx), b)
	if err != nil {
		s.logger.Error("failed to record ledger transaction", "booking_id", b.ID, "order_id", b.Payment.OrderID, "error", err)
		return nil
	}
	return tx
}

func (s *Service) publish(ctx context.Context, b *models.Booking) {
	msg := websockets.Message{
		Type: websockets.MessageTypeBookingUpdate,
		Payload: websockets.BookingUpdatePayload{
			BookingID:     b.ID,
			Reference:     b.Reference,
			Status:        string(b.Status),
			PaymentStatus: string(b.Payment.Status),
			PayoutStatus:  string(b.PayoutStatus),
			UpdatedAt:     b.UpdatedAt,
		},
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), b.UserID, msg); err != nil {
		s.logger.Warn("failed to publish booking update", "booking_id", b.ID, "error", err)
	}
}

func reference(year int, seq int64) string {
	return fmt.Sprintf("BK-%d-%06d", year, seq)
}
