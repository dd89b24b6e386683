// Package tasks runs side effects of committed booking transitions outside the
// request path: payout creation and notification dispatch.
package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/chris/academy-booking-core/pkg/notify"
	"github.com/google/uuid"
)

type Kind string

const (
	KindPayout       Kind = "payout"
	KindNotification Kind = "notification"
)

type PayoutTask struct {
	BookingID     string `json:"booking_id"`
	TransactionID string `json:"transaction_id"`
}

// Task is one unit of background work. Exactly one of Payout or Notification is set.
type Task struct {
	ID           string          `json:"id"`
	Kind         Kind            `json:"kind"`
	Attempt      int             `json:"attempt"`
	Payout       *PayoutTask     `json:"payout,omitempty"`
	Notification *notify.Request `json:"notification,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func NewPayoutTask(bookingID, transactionID string) Task {
	return Task{
		ID:        uuid.New().String(),
		Kind:      KindPayout,
		Payout:    &PayoutTask{BookingID: bookingID, TransactionID: transactionID},
		CreatedAt: time.Now().UTC(),
	}
}

func NewNotificationTask(req notify.Request) Task {
	return Task{
		ID:           uuid.New().String(),
		Kind:         KindNotification,
		Notification: &req,
		CreatedAt:    time.Now().UTC(),
	}
}

// Submitter accepts a task for asynchronous execution. It must not block on the work itself.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// Handler executes a task.
type Handler interface {
	Handle(ctx context.Context, task Task) error
}

type HandlerFunc func(ctx context.Context, task Task) error

func (f HandlerFunc) Handle(ctx context.Context, task Task) error { return f(ctx, task) }

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, task Task) error

func (f SubmitterFunc) Submit(ctx context.Context, task Task) error { return f(ctx, task) }

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
