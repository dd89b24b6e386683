package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/academy-booking-core/pkg/bootstrap"
	"github.com/chris/academy-booking-core/pkg/config"
	"github.com/chris/academy-booking-core/pkg/ledger"
	"github.com/chris/academy-booking-core/pkg/logging"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/payout"
	"github.com/chris/academy-booking-core/pkg/storage"
	"github.com/chris/academy-booking-core/pkg/tasks"
)

type ledgerRecorder interface {
	Record(ctx context.Context, b *models.Booking) (*models.Transaction, error)
}

// reconciler repairs side effects that were lost after a booking was committed.
type reconciler struct {
	bookings      storage.BookingReader
	ledger        ledgerRecorder
	tasks         tasks.Submitter
	logger        *slog.Logger
	payoutGrace   time.Duration
	staleOrderAge time.Duration
	now           func() time.Time
}

// Report counts what one run found.
type Report struct {
	PayoutsResubmitted int
	StaleOrders        int
}

// HandleRequest is triggered by an EventBridge Schedule.
func (r *reconciler) HandleRequest(ctx context.Context) (Report, error) {
	r.logger.Info("starting reconciliation")

	var report Report
	resubmitted, payoutErr := r.resubmitPayouts(ctx)
	report.PayoutsResubmitted = resubmitted
	stale, staleErr := r.reportStaleOrders(ctx)
	report.StaleOrders = stale

	r.logger.Info("reconciliation finished", "payouts_resubmitted", report.PayoutsResubmitted, "stale_orders", report.StaleOrders)
	return report, errors.Join(payoutErr, staleErr)
}

// resubmitPayouts finds paid bookings that never got a payout. The ledger row is
// re-recorded first since the payout must reference it; both steps are idempotent.
func (r *reconciler) resubmitPayouts(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.payoutGrace)
	var (
		paid []*models.Booking
		errs []error
	)
	// A booking can complete before its payout task runs.
	for _, status := range []models.BookingStatus{models.CONFIRMED, models.COMPLETED} {
		bookings, err := r.bookings.ListBookingsByStatus(ctx, status, cutoff)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paid = append(paid, bookings...)
	}

	count := 0
	for _, b := range paid {
		if b.PayoutStatus != models.PayoutNone || b.Commission == nil || !b.Commission.PayoutAmount.IsPositive() {
			continue
		}
		if b.Payment.Status != models.PaymentSuccess {
			r.logger.Error("paid booking without a successful payment", "booking_id", b.ID, "payment_status", b.Payment.Status)
			continue
		}
		tx, err := r.ledger.Record(ctx, b)
		if err != nil {
			r.logger.Error("failed to repair ledger row", "booking_id", b.ID, "error", err)
			continue
		}
		if err := r.tasks.Submit(ctx, tasks.NewPayoutTask(b.ID, tx.ID)); err != nil {
			// Keep going, one failure should not stop the batch.
			r.logger.Error("failed to resubmit payout", "booking_id", b.ID, "error", err)
			continue
		}
		r.logger.Info("payout resubmitted", "booking_id", b.ID, "transaction_id", tx.ID)
		count++
	}
	return count, errors.Join(errs...)
}

// reportStaleOrders logs payment orders that have been open too long. They are left
// alone: the client may still complete checkout.
func (r *reconciler) reportStaleOrders(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.staleOrderAge)
	count := 0
	var errs []error
	for _, status := range []models.BookingStatus{models.APPROVED, models.PAYMENT_PENDING} {
		bookings, err := r.bookings.ListBookingsByStatus(ctx, status, cutoff)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, b := range bookings {
			if !b.Payment.Status.InFlight() {
				continue
			}
			if b.Payment.OrderCreatedAt != nil && b.Payment.OrderCreatedAt.After(cutoff) {
				continue
			}
			r.logger.Warn("stale payment order", "booking_id", b.ID, "order_id", b.Payment.OrderID, "initiated_attempts", b.Payment.InitiatedAttempts)
			count++
		}
	}
	return count, errors.Join(errs...)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	deps, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build dependencies: %v", err)
	}

	var submitter tasks.Submitter
	if cfg.TasksQueueURL != "" {
		submitter = tasks.NewSQSSubmitter(deps.SQS, cfg.TasksQueueURL)
	} else {
		// Without a queue the payouts run inline.
		initiator := payout.NewInitiator(deps.Store, deps.Store, logger)
		submitter = tasks.SubmitterFunc(func(ctx context.Context, task tasks.Task) error {
			_, err := initiator.Initiate(ctx, task.Payout.BookingID, task.Payout.TransactionID)
			return err
		})
	}

	r := &reconciler{
		bookings:      deps.Store,
		ledger:        ledger.NewRecorder(deps.Store, logger),
		tasks:         submitter,
		logger:        logger,
		payoutGrace:   cfg.PayoutGrace,
		staleOrderAge: cfg.StaleOrderAge,
		now:           time.Now,
	}
	lambda.Start(r.HandleRequest)
}
