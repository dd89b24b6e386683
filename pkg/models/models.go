package models

import (
	"time"

	"github.com/chris/academy-booking-core/pkg/money"
)

// PriceBreakdown is the money snapshot taken when the slot is requested. It is never recomputed.
type PriceBreakdown struct {
	AdmissionFee     money.Amount `json:"admission_fee" dynamodbav:"admission_fee"`
	BaseFee          money.Amount `json:"base_fee" dynamodbav:"base_fee"`
	BatchAmount      money.Amount `json:"batch_amount" dynamodbav:"batch_amount"`
	PlatformFee      money.Amount `json:"platform_fee" dynamodbav:"platform_fee"`
	Tax              money.Amount `json:"tax" dynamodbav:"tax"`
	Total            money.Amount `json:"total_amount" dynamodbav:"total_amount"`
	ParticipantCount int          `json:"participant_count" dynamodbav:"participant_count"`
	ComputedAt       time.Time    `json:"computed_at" dynamodbav:"computed_at"`
}

// CommissionSnapshot records the platform's cut, computed when the academy approves the booking.
type CommissionSnapshot struct {
	Rate         money.Rate   `json:"rate" dynamodbav:"rate"`
	Amount       money.Amount `json:"amount" dynamodbav:"amount"`
	PayoutAmount money.Amount `json:"payout_amount" dynamodbav:"payout_amount"`
	ComputedAt   time.Time    `json:"computed_at" dynamodbav:"computed_at"`
}

// Payment is the payment sub-record of a booking.
type Payment struct {
	OrderID           string        `json:"order_id,omitempty" dynamodbav:"order_id,omitempty"`
	PaymentID         string        `json:"payment_id,omitempty" dynamodbav:"payment_id,omitempty"`
	Signature         string        `json:"-" dynamodbav:"signature,omitempty"`
	Amount            money.Amount  `json:"amount" dynamodbav:"amount"`
	Currency          string        `json:"currency" dynamodbav:"currency"`
	Status            PaymentStatus `json:"status" dynamodbav:"status"`
	Method            string        `json:"method,omitempty" dynamodbav:"method,omitempty"`
	PaidAt            *time.Time    `json:"paid_at,omitempty" dynamodbav:"paid_at,omitempty"`
	FailureReason     string        `json:"failure_reason,omitempty" dynamodbav:"failure_reason,omitempty"`
	InitiatedAttempts int           `json:"initiated_attempts" dynamodbav:"initiated_attempts"`
	CancelledAttempts int           `json:"cancelled_attempts" dynamodbav:"cancelled_attempts"`
	FailedAttempts    int           `json:"failed_attempts" dynamodbav:"failed_attempts"`
	OrderCreatedAt    *time.Time    `json:"order_created_at,omitempty" dynamodbav:"order_created_at,omitempty"`
}

// Booking is the central aggregate. Only the booking service mutates it.
type Booking struct {
	ID                 string              `json:"id" dynamodbav:"id"`
	Reference          string              `json:"reference" dynamodbav:"reference"`
	UserID             string              `json:"user_id" dynamodbav:"user_id"`
	ParticipantIDs     []string            `json:"participant_ids" dynamodbav:"participant_ids"`
	BatchID            string              `json:"batch_id" dynamodbav:"batch_id"`
	CenterID           string              `json:"center_id" dynamodbav:"center_id"`
	SportID            string              `json:"sport_id" dynamodbav:"sport_id"`
	Amount             money.Amount        `json:"amount" dynamodbav:"amount"`
	Currency           string              `json:"currency" dynamodbav:"currency"`
	PriceBreakdown     PriceBreakdown      `json:"price_breakdown" dynamodbav:"price_breakdown"`
	Commission         *CommissionSnapshot `json:"commission,omitempty" dynamodbav:"commission,omitempty"`
	Status             BookingStatus       `json:"status" dynamodbav:"status"`
	Payment            Payment             `json:"payment" dynamodbav:"payment"`
	PayoutStatus       PayoutStatus        `json:"payout_status,omitempty" dynamodbav:"payout_status,omitempty"`
	Notes              string              `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	CancellationReason string              `json:"cancellation_reason,omitempty" dynamodbav:"cancellation_reason,omitempty"`
	CancelledBy        string              `json:"cancelled_by,omitempty" dynamodbav:"cancelled_by,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty" dynamodbav:"cancelled_at,omitempty"`
	RejectionReason    string              `json:"rejection_reason,omitempty" dynamodbav:"rejection_reason,omitempty"`
	IsDeleted          bool                `json:"is_deleted" dynamodbav:"is_deleted"`
	DeletedAt          *time.Time          `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
	Version            int64               `json:"version" dynamodbav:"version"`
	CreatedAt          time.Time           `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" dynamodbav:"updated_at"`

	// PaymentOrderID mirrors Payment.OrderID at the top level so it can back an index.
	PaymentOrderID string `json:"-" dynamodbav:"payment_order_id,omitempty"`
	// SlotHeld is set when the booking holds occupancy and enrollment locks. Rows written
	// before the locks existed do not have it.
	SlotHeld bool `json:"-" dynamodbav:"slot_held"`
}

// ParticipantCount is the number of slots this booking holds.
func (b *Booking) ParticipantCount() int {
	return len(b.ParticipantIDs)
}

// OccupiesSlot reports whether the booking counts against its batch's capacity.
func (b *Booking) OccupiesSlot() bool {
	return !b.IsDeleted && b.Status.OccupiesSlot()
}

// HasParticipant reports whether id is one of the booking's participants.
func (b *Booking) HasParticipant(id string) bool {
	for _, p := range b.ParticipantIDs {
		if p == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can prepare a mutation without touching the original.
func (b *Booking) Clone() *Booking {
	c := *b
	c.ParticipantIDs = append([]string(nil), b.ParticipantIDs...)
	if b.Commission != nil {
		cs := *b.Commission
		c.Commission = &cs
	}
	return &c
}

// Transaction is one ledger row per payment attempt, keyed by (booking_id, order_id).
type Transaction struct {
	BookingID     string        `json:"booking_id" dynamodbav:"booking_id"`
	OrderID       string        `json:"order_id" dynamodbav:"order_id"`
	ID            string        `json:"id" dynamodbav:"id"`
	UserID        string        `json:"user_id" dynamodbav:"user_id"`
	PaymentID     string        `json:"payment_id,omitempty" dynamodbav:"payment_id,omitempty"`
	Amount        money.Amount  `json:"amount" dynamodbav:"amount"`
	Currency      string        `json:"currency" dynamodbav:"currency"`
	Status        PaymentStatus `json:"status" dynamodbav:"status"`
	Method        string        `json:"method,omitempty" dynamodbav:"method,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty" dynamodbav:"failure_reason,omitempty"`
	ProcessedAt   *time.Time    `json:"processed_at,omitempty" dynamodbav:"processed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" dynamodbav:"updated_at"`
}

// Payout is created at most once per (booking_id, transaction_id).
type Payout struct {
	BookingID       string       `json:"booking_id" dynamodbav:"booking_id"`
	TransactionID   string       `json:"transaction_id" dynamodbav:"transaction_id"`
	ID              string       `json:"id" dynamodbav:"id"`
	CenterID        string       `json:"center_id" dynamodbav:"center_id"`
	UserID          string       `json:"user_id" dynamodbav:"user_id"`
	CommissionRate  money.Rate   `json:"commission_rate" dynamodbav:"commission_rate"`
	Commission      money.Amount `json:"commission" dynamodbav:"commission"`
	BatchAmount     money.Amount `json:"batch_amount" dynamodbav:"batch_amount"`
	PayoutAmount    money.Amount `json:"payout_amount" dynamodbav:"payout_amount"`
	Currency        string       `json:"currency" dynamodbav:"currency"`
	Status          PayoutStatus `json:"status" dynamodbav:"status"`
	PayoutAccountID *string      `json:"payout_account_id,omitempty" dynamodbav:"payout_account_id,omitempty"`
	CreatedAt       time.Time    `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" dynamodbav:"updated_at"`
}
