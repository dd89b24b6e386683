package mapping

import (
	"github.com/chris/academy-booking-core/pkg/api"
	"github.com/chris/academy-booking-core/pkg/booking"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/money"
)

// ToApiBooking converts a domain Booking to its narrow API view.
func ToApiBooking(b *models.Booking) *api.BookingView {
	return &api.BookingView{
		ID:             b.ID,
		Reference:      b.Reference,
		BatchID:        b.BatchID,
		CenterID:       b.CenterID,
		ParticipantIDs: b.ParticipantIDs,
		Status:         string(b.Status.Canonical()),
		Amount:         b.Amount.String(),
		Currency:       b.Currency,
		Price: api.PriceView{
			AdmissionFee:     b.PriceBreakdown.AdmissionFee.String(),
			BaseFee:          b.PriceBreakdown.BaseFee.String(),
			BatchAmount:      b.PriceBreakdown.BatchAmount.String(),
			PlatformFee:      b.PriceBreakdown.PlatformFee.String(),
			Tax:              b.PriceBreakdown.Tax.String(),
			Total:            b.PriceBreakdown.Total.String(),
			ParticipantCount: b.PriceBreakdown.ParticipantCount,
		},
		Payment:            ToApiPayment(&b.Payment),
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		RejectionReason:    b.RejectionReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// ToApiPayment leaves the gateway signature out.
func ToApiPayment(p *models.Payment) api.PaymentView {
	status := p.Status
	if status == models.PaymentPending {
		status = models.PaymentInitiated
	}
	return api.PaymentView{
		OrderID:           p.OrderID,
		PaymentID:         p.PaymentID,
		Amount:            p.Amount.String(),
		Currency:          p.Currency,
		Status:            string(status),
		Method:            p.Method,
		PaidAt:            p.PaidAt,
		FailureReason:     p.FailureReason,
		InitiatedAttempts: p.InitiatedAttempts,
		CancelledAttempts: p.CancelledAttempts,
		FailedAttempts:    p.FailedAttempts,
	}
}

// ToApiPaymentOrder returns the checkout parameters of the booking's open order.
func ToApiPaymentOrder(b *models.Booking, keyID string) *api.PaymentOrderView {
	return &api.PaymentOrderView{
		BookingID: b.ID,
		OrderID:   b.Payment.OrderID,
		Amount:    money.ToMinorUnits(b.Payment.Amount),
		Currency:  b.Payment.Currency,
		KeyID:     keyID,
	}
}

// ToApiSummary converts a pre-booking summary. Unlimited batches have no remaining count.
func ToApiSummary(s *booking.Summary) *api.SummaryView {
	participants := make([]api.ParticipantView, len(s.Participants))
	for i, p := range s.Participants {
		participants[i] = api.ParticipantView{ID: p.ID, Name: p.Name}
	}
	view := &api.SummaryView{
		BatchID:      s.Batch.ID,
		BatchName:    s.Batch.Name,
		AcademyID:    s.Academy.ID,
		AcademyName:  s.Academy.Name,
		Participants: participants,
		Price: api.PriceView{
			AdmissionFee:     s.Batch.AdmissionFee.String(),
			BaseFee:          s.Batch.EffectiveFee().String(),
			BatchAmount:      s.Price.BatchAmount.String(),
			PlatformFee:      s.Price.PlatformFee.String(),
			Tax:              s.Price.Tax.String(),
			Total:            s.Price.Total.String(),
			ParticipantCount: s.Price.Participants,
		},
		Currency: s.Currency,
	}
	if s.RemainingSlots >= 0 {
		remaining := s.RemainingSlots
		view.RemainingSlots = &remaining
	}
	return view
}

// ToDomainSlotRequest converts the API body to the service request.
func ToDomainSlotRequest(req *api.SlotRequest) booking.SlotRequest {
	return booking.SlotRequest{
		BatchID:        req.BatchID,
		ParticipantIDs: req.ParticipantIDs,
		Notes:          req.Notes,
	}
}

func ToDomainVerifyPayment(req *api.VerifyPaymentRequest) booking.VerifyPaymentRequest {
	return booking.VerifyPaymentRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	}
}
