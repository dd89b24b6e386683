// Package notify hands notification requests to an external delivery system.
// Delivery (push, email, SMS, WhatsApp) happens downstream; dispatchers only enqueue.
package notify

import (
	"context"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

type RecipientType string

const (
	RecipientUser    RecipientType = "user"
	RecipientAcademy RecipientType = "academy"
	RecipientRole    RecipientType = "role"
)

// RoleAdmin is the recipient ID for platform administrators.
const RoleAdmin = "admin"

// Notification types carried in Metadata.Type.
const (
	TypeSlotRequested    = "booking_slot_requested"
	TypeBookingApproved  = "booking_approved"
	TypeBookingRejected  = "booking_rejected"
	TypeBookingCancelled = "booking_cancelled"
	TypeBookingCompleted = "booking_completed"
	TypePaymentSuccess   = "payment_success"
	TypePaymentFailed    = "payment_failed"
)

type Metadata struct {
	Type      string `json:"type"`
	BookingID string `json:"bookingId,omitempty"`
	BatchID   string `json:"batchId,omitempty"`
}

// Request is one fire-and-forget notification.
type Request struct {
	Text          string        `json:"text"`
	Template      string        `json:"template,omitempty"`
	Priority      Priority      `json:"priority"`
	RecipientType RecipientType `json:"recipientType"`
	RecipientID   string        `json:"recipientId"`
	Metadata      Metadata      `json:"metadata"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Dispatcher enqueues a request for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) error
}
