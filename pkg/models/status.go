package models

// BookingStatus defines the lifecycle states of a booking.
type BookingStatus string

const (
	SLOT_BOOKED BookingStatus = "SLOT_BOOKED"
	APPROVED    BookingStatus = "APPROVED"
	CONFIRMED   BookingStatus = "CONFIRMED"
	REJECTED    BookingStatus = "REJECTED"
	CANCELLED   BookingStatus = "CANCELLED"
	COMPLETED   BookingStatus = "COMPLETED"

	// Legacy values still present on older rows.
	REQUESTED       BookingStatus = "REQUESTED"
	PENDING         BookingStatus = "PENDING"
	PAYMENT_PENDING BookingStatus = "PAYMENT_PENDING"
)

var (
	slotOccupyingList = []BookingStatus{SLOT_BOOKED, APPROVED, PAYMENT_PENDING, CONFIRMED, REQUESTED, PENDING}

	slotOccupying = func() map[BookingStatus]struct{} {
		set := make(map[BookingStatus]struct{}, len(slotOccupyingList))
		for _, s := range slotOccupyingList {
			set[s] = struct{}{}
		}
		return set
	}()

	// Enrollment uses the same set so the two checks cannot drift apart.
	enrollmentBlocking = slotOccupying
)

// SlotOccupyingStatuses returns the statuses that count against batch capacity, legacy values included.
func SlotOccupyingStatuses() []BookingStatus {
	out := make([]BookingStatus, len(slotOccupyingList))
	copy(out, slotOccupyingList)
	return out
}

// Canonical maps legacy statuses onto their current equivalents.
func (s BookingStatus) Canonical() BookingStatus {
	switch s {
	case REQUESTED, PENDING:
		return SLOT_BOOKED
	case PAYMENT_PENDING:
		return APPROVED
	default:
		return s
	}
}

func (s BookingStatus) OccupiesSlot() bool {
	_, ok := slotOccupying[s]
	return ok
}

func (s BookingStatus) BlocksEnrollment() bool {
	_, ok := enrollmentBlocking[s]
	return ok
}

// IsTerminal reports whether no further lifecycle transition is possible.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case CANCELLED, COMPLETED, REJECTED:
		return true
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case SLOT_BOOKED, APPROVED, CONFIRMED, REJECTED, CANCELLED, COMPLETED, REQUESTED, PENDING, PAYMENT_PENDING:
		return true
	}
	return false
}

// PaymentStatus is the state of the payment sub-record of a booking.
type PaymentStatus string

const (
	PaymentNotInitiated PaymentStatus = "NOT_INITIATED"
	PaymentInitiated    PaymentStatus = "INITIATED"
	PaymentPending      PaymentStatus = "PENDING" // legacy, treated like INITIATED
	PaymentSuccess      PaymentStatus = "SUCCESS"
	PaymentFailed       PaymentStatus = "FAILED"
	PaymentCancelled    PaymentStatus = "CANCELLED"
)

// InFlight reports whether a gateway order is open for this payment.
func (p PaymentStatus) InFlight() bool {
	return p == PaymentInitiated || p == PaymentPending
}

// CanTransitionTo enforces the payment progression. Nothing leaves SUCCESS; a failed or
// cancelled attempt may be retried by initiating a new order.
func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch p {
	case "", PaymentNotInitiated:
		return next == PaymentInitiated
	case PaymentInitiated, PaymentPending:
		switch next {
		case PaymentSuccess, PaymentFailed, PaymentCancelled:
			return true
		}
		return false
	case PaymentFailed, PaymentCancelled:
		return next == PaymentInitiated
	default:
		return false
	}
}

// PayoutStatus tracks the academy payout independently of the booking lifecycle.
type PayoutStatus string

const (
	PayoutNone        PayoutStatus = ""
	PayoutPending     PayoutStatus = "PENDING"
	PayoutProcessing  PayoutStatus = "PROCESSING"
	PayoutTransferred PayoutStatus = "TRANSFERRED"
	PayoutFailed      PayoutStatus = "FAILED"
)
