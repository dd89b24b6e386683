// Package api holds the request and response bodies of the booking HTTP API.
package api

import "time"

// SlotRequest is the body of POST /bookings and POST /bookings/summary.
type SlotRequest struct {
	BatchID        string   `json:"batchId" validate:"required"`
	ParticipantIDs []string `json:"participantIds" validate:"required,min=1,dive,required"`
	Notes          string   `json:"notes,omitempty" validate:"max=1000"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// ReasonRequest is the optional body of cancel and reject.
type ReasonRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type PriceView struct {
	AdmissionFee     string `json:"admissionFee"`
	BaseFee          string `json:"baseFee"`
	BatchAmount      string `json:"batchAmount"`
	PlatformFee      string `json:"platformFee"`
	Tax              string `json:"tax"`
	Total            string `json:"totalAmount"`
	ParticipantCount int    `json:"participantCount"`
}

type PaymentView struct {
	OrderID           string     `json:"orderId,omitempty"`
	PaymentID         string     `json:"paymentId,omitempty"`
	Amount            string     `json:"amount"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	Method            string     `json:"method,omitempty"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
	FailureReason     string     `json:"failureReason,omitempty"`
	InitiatedAttempts int        `json:"initiatedAttempts"`
	CancelledAttempts int        `json:"cancelledAttempts"`
	FailedAttempts    int        `json:"failedAttempts"`
}

// BookingView is the only shape in which a booking leaves the service.
type BookingView struct {
	ID                 string      `json:"id"`
	Reference          string      `json:"reference"`
	BatchID            string      `json:"batchId"`
	CenterID           string      `json:"centerId"`
	ParticipantIDs     []string    `json:"participantIds"`
	Status             string      `json:"status"`
	Amount             string      `json:"amount"`
	Currency           string      `json:"currency"`
	Price              PriceView   `json:"priceBreakdown"`
	Payment            PaymentView `json:"payment"`
	Notes              string      `json:"notes,omitempty"`
	CancellationReason string      `json:"cancellationReason,omitempty"`
	RejectionReason    string      `json:"rejectionReason,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// PaymentOrderView is what the client needs to open the gateway checkout.
type PaymentOrderView struct {
	BookingID string `json:"bookingId"`
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	KeyID     string `json:"keyId,omitempty"`
}

type ParticipantView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SummaryView struct {
	BatchID        string            `json:"batchId"`
	BatchName      string            `json:"batchName"`
	AcademyID      string            `json:"academyId"`
	AcademyName    string            `json:"academyName"`
	Participants   []ParticipantView `json:"participants"`
	Price          PriceView         `json:"priceBreakdown"`
	Currency       string            `json:"currency"`
	RemainingSlots *int              `json:"remainingSlots,omitempty"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
