package booking

import (
	"context"
	"strings"

	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/money"
)

// CancelBooking cancels a booking that has not been paid for and releases its slot.
// An open payment order is cancelled with it.
func (s *Service) CancelBooking(ctx context.Context, userID, bookingID, reason string) (*models.Booking, error) {
	b, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	demoted := false
	cancelled, err := s.transition(ctx, b, func(next *models.Booking) error {
		switch {
		case next.Payment.Status == models.PaymentSuccess,
			next.Status == models.CONFIRMED,
			next.Status == models.COMPLETED:
			return apperrors.InvalidState("Paid bookings cannot be cancelled here; request a refund instead")
		case next.Status.IsTerminal():
			return apperrors.InvalidState("Booking is already %s", next.Status)
		}
		now := s.now()
		next.Status = models.CANCELLED
		next.CancellationReason = strings.TrimSpace(reason)
		next.CancelledBy = userID
		next.CancelledAt = &now
		demoted = next.Payment.Status.InFlight()
		if demoted {
			next.Payment.Status = models.PaymentCancelled
			next.Payment.CancelledAttempts++
		}
		return nil
	}, s.release)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled", "booking_id", cancelled.ID, "cancelled_by", userID, "payment_demoted", demoted)
	if demoted {
		s.record(ctx, cancelled)
	}
	s.notify(ctx, cancelledNotifications(cancelled))
	s.publish(ctx, cancelled)
	return cancelled, nil
}

// ApproveBooking is the academy's acceptance of a slot request. The commission is
// fixed at this point from the academy's rate, or the platform default.
func (s *Service) ApproveBooking(ctx context.Context, actorID, bookingID string) (*models.Booking, error) {
	b, academy, err := s.academyBooking(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}

	rate := s.cfg.DefaultCommissionRate
	if academy.CommissionRate != nil {
		rate = *academy.CommissionRate
	}
	commission, err := money.CalculateCommission(b.PriceBreakdown.BatchAmount, rate)
	if err != nil {
		return nil, err
	}

	approved, err := s.transition(ctx, b, func(next *models.Booking) error {
		if next.Status.Canonical() != models.SLOT_BOOKED {
			return apperrors.InvalidState("Only requested bookings can be approved").
				WithDetail("status", string(next.Status))
		}
		next.Status = models.APPROVED
		next.Commission = &models.CommissionSnapshot{
			Rate:         commission.Rate,
			Amount:       commission.Amount,
			PayoutAmount: commission.PayoutAmount,
			ComputedAt:   s.now(),
		}
		return nil
	}, s.update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking approved", "booking_id", approved.ID, "commission", commission.Amount.String(), "payout", commission.PayoutAmount.String())
	s.notify(ctx, approvedNotifications(approved))
	s.publish(ctx, approved)
	return approved, nil
}

// RejectBooking is the academy's refusal. It releases the slot and closes any open order.
func (s *Service) RejectBooking(ctx context.Context, actorID, bookingID, reason string) (*models.Booking, error) {
	b, _, err := s.academyBooking(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}

	demoted := false
	rejected, err := s.transition(ctx, b, func(next *models.Booking) error {
		switch next.Status.Canonical() {
		case models.SLOT_BOOKED, models.APPROVED:
		default:
			return apperrors.InvalidState("Booking cannot be rejected from status %s", next.Status)
		}
		if next.Payment.Status == models.PaymentSuccess {
			return apperrors.InvalidState("Paid bookings cannot be rejected")
		}
		next.Status = models.REJECTED
		next.RejectionReason = strings.TrimSpace(reason)
		demoted = next.Payment.Status.InFlight()
		if demoted {
			next.Payment.Status = models.PaymentCancelled
			next.Payment.CancelledAttempts++
		}
		return nil
	}, s.release)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking rejected", "booking_id", rejected.ID, "rejected_by", actorID)
	if demoted {
		s.record(ctx, rejected)
	}
	s.notify(ctx, rejectedNotifications(rejected))
	s.publish(ctx, rejected)
	return rejected, nil
}

// CompleteBooking closes a confirmed booking once its batch has run. Only the academy
// owner may do so.
func (s *Service) CompleteBooking(ctx context.Context, actorID, bookingID string) (*models.Booking, error) {
	b, _, err := s.academyBooking(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}

	completed, err := s.transition(ctx, b, func(next *models.Booking) error {
		if next.Status != models.CONFIRMED {
			return apperrors.InvalidState("Only confirmed bookings can be completed").
				WithDetail("status", string(next.Status))
		}
		next.Status = models.COMPLETED
		return nil
	}, s.release)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking completed", "booking_id", completed.ID, "completed_by", actorID)
	s.notify(ctx, completedNotifications(completed))
	s.publish(ctx, completed)
	return completed, nil
}

// academyBooking loads a booking and checks that actorID owns its academy.
func (s *Service) academyBooking(ctx context.Context, actorID, bookingID string) (*models.Booking, *models.AcademyForBooking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	academy, err := s.catalog.GetAcademy(ctx, b.CenterID)
	if err != nil {
		return nil, nil, notFoundOr(err, "Academy")
	}
	if academy.OwnerUserID != actorID {
		return nil, nil, apperrors.Authorization("Only the academy owner can decide on this booking")
	}
	return b, academy, nil
}
