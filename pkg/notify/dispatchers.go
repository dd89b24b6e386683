package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chris/academy-booking-core/pkg/websockets"
)

// LogDispatcher only logs requests. It is the default for local development.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d *LogDispatcher) Dispatch(ctx context.Context, req Request) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		"type", req.Metadata.Type,
		"recipient_type", req.RecipientType,
		"recipient_id", req.RecipientID,
		"priority", req.Priority,
		"booking_id", req.Metadata.BookingID,
		"text", req.Text,
	)
	return nil
}

// WebSocketDispatcher mirrors user-addressed requests to the user's live connections.
// Other recipient types are ignored.
type WebSocketDispatcher struct {
	Publisher websockets.Publisher
}

func (d *WebSocketDispatcher) Dispatch(ctx context.Context, req Request) error {
	if req.RecipientType != RecipientUser {
		return nil
	}
	return d.Publisher.Publish(ctx, req.RecipientID, websockets.Message{
		Type: websockets.MessageTypeNotification,
		Payload: websockets.NotificationPayload{
			Text:      req.Text,
			Type:      req.Metadata.Type,
			BookingID: req.Metadata.BookingID,
			BatchID:   req.Metadata.BatchID,
		},
	})
}

// Fanout sends every request to each dispatcher and joins their errors.
type Fanout []Dispatcher

func (f Fanout) Dispatch(ctx context.Context, req Request) error {
	var errs []error
	for _, d := range f {
		if err := d.Dispatch(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
