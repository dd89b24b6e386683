package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chris/academy-booking-core/pkg/notify"
	"github.com/chris/academy-booking-core/pkg/payout"
)

// PayoutInitiator creates payouts.
type PayoutInitiator interface {
	Initiate(ctx context.Context, bookingID, transactionID string) (*payout.Result, error)
}

// Executor routes tasks to the payout initiator or the notification dispatcher.
type Executor struct {
	payouts    PayoutInitiator
	dispatcher notify.Dispatcher
	logger     *slog.Logger
}

var _ Handler = (*Executor)(nil)

func NewExecutor(payouts PayoutInitiator, dispatcher notify.Dispatcher, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{payouts: payouts, dispatcher: dispatcher, logger: logger}
}

func (e *Executor) Handle(ctx context.Context, task Task) error {
	switch task.Kind {
	case KindPayout:
		if task.Payout == nil {
			return Permanent(fmt.Errorf("payout task %s has no payload", task.ID))
		}
		result, err := e.payouts.Initiate(ctx, task.Payout.BookingID, task.Payout.TransactionID)
		if err != nil {
			return err
		}
		if result.Skipped {
			e.logger.Info("payout skipped", "booking_id", task.Payout.BookingID, "reason", result.Reason)
		}
		return nil
	case KindNotification:
		if task.Notification == nil {
			return Permanent(fmt.Errorf("notification task %s has no payload", task.ID))
		}
		return e.dispatcher.Dispatch(ctx, *task.Notification)
	default:
		return Permanent(fmt.Errorf("unknown task kind %q", task.Kind))
	}
}
