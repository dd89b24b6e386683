package websockets

import "time"

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeBookingUpdate is sent when one of the user's bookings changes status.
	MessageTypeBookingUpdate MessageType = "bookingUpdate"
	// MessageTypeNotification carries an in-app notification.
	MessageTypeNotification MessageType = "notification"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// BookingUpdatePayload is the payload for a bookingUpdate message.
type BookingUpdatePayload struct {
	BookingID     string    `json:"booking_id"`
	Reference     string    `json:"reference"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	PayoutStatus  string    `json:"payout_status,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NotificationPayload is the payload for a notification message.
type NotificationPayload struct {
	Text      string `json:"text"`
	Type      string `json:"type"`
	BookingID string `json:"booking_id,omitempty"`
	BatchID   string `json:"batch_id,omitempty"`
}
