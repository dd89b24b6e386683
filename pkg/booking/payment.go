package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/chris/academy-booking-core/pkg/gateway"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/money"
	"github.com/chris/academy-booking-core/pkg/tasks"
	"golang.org/x/sync/errgroup"
)

type VerifyPaymentRequest struct {
	OrderID   string
	PaymentID string
	Signature string
}

// CreatePaymentOrder opens a gateway order for an APPROVED booking. While an order
// is already open the booking is returned unchanged, so retries never create a
// second live order.
func (s *Service) CreatePaymentOrder(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	b, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Payment.Status == models.PaymentSuccess {
		return nil, apperrors.AlreadyVerified("Payment for this booking is already complete")
	}
	if b.Payment.Status.InFlight() && b.Payment.OrderID != "" {
		return b, nil
	}
	if err := canOpenOrder(b); err != nil {
		return nil, err
	}

	if !b.Amount.IsPositive() {
		return nil, apperrors.InvalidAmount("Booking amount must be greater than zero")
	}
	units := money.ToMinorUnits(b.Amount)
	if units < s.cfg.GatewayMinimum {
		return nil, apperrors.InvalidAmount("Booking amount %s is below the minimum payable amount", b.Amount.String()).
			WithDetail("minimum_units", s.cfg.GatewayMinimum)
	}

	gctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()
	order, err := s.gateway.CreateOrder(gctx, gateway.OrderRequest{
		Amount:   units,
		Currency: b.Currency,
		Receipt:  fmt.Sprintf("%s-%d", b.Reference, b.Payment.InitiatedAttempts+1),
		Notes: map[string]string{
			"booking_id": b.ID,
			"batch_id":   b.BatchID,
			"user_id":    b.UserID,
		},
	})
	if err != nil {
		return nil, apperrors.Gateway(err, "Failed to create payment order")
	}
	if order.Amount != units || !strings.EqualFold(order.Currency, b.Currency) {
		s.abandonOrder(ctx, b, order.ID, "order amount does not match the booking")
		return nil, apperrors.Gateway(nil, "Payment order does not match the booking amount").
			WithDetail("expected_units", units).
			WithDetail("order_units", order.Amount)
	}

	updated, err := s.transition(ctx, b, func(next *models.Booking) error {
		if next.Payment.Status.InFlight() || next.Payment.Status == models.PaymentSuccess {
			return apperrors.Conflict("A payment order was created concurrently for this booking")
		}
		if err := canOpenOrder(next); err != nil {
			return err
		}
		createdAt := order.CreatedAt
		next.Payment = models.Payment{
			OrderID:           order.ID,
			Amount:            next.Amount,
			Currency:          next.Currency,
			Status:            models.PaymentInitiated,
			InitiatedAttempts: next.Payment.InitiatedAttempts + 1,
			CancelledAttempts: next.Payment.CancelledAttempts,
			FailedAttempts:    next.Payment.FailedAttempts,
			OrderCreatedAt:    &createdAt,
		}
		return nil
	}, s.update)
	if err != nil {
		s.abandonOrder(ctx, b, order.ID, err.Error())
		return nil, err
	}

	s.logger.Info("payment order created", "booking_id", b.ID, "order_id", order.ID, "amount_units", units)
	s.record(ctx, updated)
	s.publish(ctx, updated)
	return updated, nil
}

// abandonOrder records a gateway order that was created but never attached to the
// booking as a CANCELLED ledger row, so it stays traceable from the booking.
func (s *Service) abandonOrder(ctx context.Context, b *models.Booking, orderID, reason string) {
	s.logger.Warn("gateway order abandoned", "booking_id", b.ID, "order_id", orderID, "reason", reason)
	orphan := b.Clone()
	orphan.Payment = models.Payment{
		OrderID:       orderID,
		Amount:        b.Amount,
		Currency:      b.Currency,
		Status:        models.PaymentCancelled,
		FailureReason: reason,
	}
	s.record(ctx, orphan)
}

func canOpenOrder(b *models.Booking) error {
	if b.Status.Canonical() != models.APPROVED {
		return apperrors.InvalidState("Payment can only be initiated for approved bookings").
			WithDetail("status", string(b.Status))
	}
	if !b.Payment.Status.CanTransitionTo(models.PaymentInitiated) {
		return apperrors.InvalidState("Payment cannot be initiated from status %s", b.Payment.Status)
	}
	return nil
}

// verifyFailure is a rejected verification. It is persisted before being returned.
type verifyFailure struct {
	reason string
	err    error
}

// VerifyPayment checks the gateway's signature and payment record and confirms the
// booking. Every rejection is recorded on the booking before the error is returned.
func (s *Service) VerifyPayment(ctx context.Context, userID string, req VerifyPaymentRequest) (*models.Booking, error) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, apperrors.Validation("orderId, paymentId and signature are required")
	}

	b, err := s.bookingByOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if err := canVerify(b); err != nil {
		return nil, err
	}

	var (
		valid   bool
		payment *gateway.Payment
	)
	gctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(gctx)
	g.Go(func() error {
		ok, err := s.gateway.VerifySignature(gctx, req.OrderID, req.PaymentID, req.Signature)
		if err != nil {
			return fmt.Errorf("verify signature: %w", err)
		}
		valid = ok
		return nil
	})
	g.Go(func() error {
		p, err := s.gateway.FetchPayment(gctx, req.PaymentID)
		if err != nil {
			return fmt.Errorf("fetch payment: %w", err)
		}
		payment = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Gateway(err, "Unable to verify payment with the payment provider")
	}

	if failure := s.checkPayment(b, req, valid, payment); failure != nil {
		return nil, s.failPayment(ctx, b, req, payment, failure)
	}

	confirmed, err := s.transition(ctx, b, func(next *models.Booking) error {
		if err := canVerify(next); err != nil {
			return err
		}
		if next.Payment.OrderID != req.OrderID {
			return apperrors.Conflict("A newer payment order exists for this booking")
		}
		paidAt := s.now()
		next.Status = models.CONFIRMED
		next.Payment.Status = models.PaymentSuccess
		next.Payment.PaymentID = req.PaymentID
		next.Payment.Signature = req.Signature
		next.Payment.Method = payment.Method
		next.Payment.PaidAt = &paidAt
		next.Payment.FailureReason = ""
		return nil
	}, s.update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment verified", "booking_id", confirmed.ID, "order_id", req.OrderID, "payment_id", req.PaymentID)

	// The transaction id must exist before a payout can reference it.
	tx := s.record(ctx, confirmed)
	if tx != nil && confirmed.Commission != nil && confirmed.Commission.PayoutAmount.IsPositive() {
		s.submit(ctx, tasks.NewPayoutTask(confirmed.ID, tx.ID))
	}
	s.notify(ctx, paymentSuccessNotifications(confirmed))
	s.publish(ctx, confirmed)
	return confirmed, nil
}

func canVerify(b *models.Booking) error {
	if b.Payment.Status == models.PaymentSuccess {
		return apperrors.AlreadyVerified("Payment has already been verified")
	}
	if !b.Payment.Status.InFlight() {
		return apperrors.InvalidState("No payment is in progress for this booking").
			WithDetail("payment_status", string(b.Payment.Status))
	}
	if b.Status.Canonical() != models.APPROVED {
		return apperrors.InvalidState("Booking cannot be confirmed from status %s", b.Status)
	}
	return nil
}

// checkPayment compares the provider's answer against the stored order.
func (s *Service) checkPayment(b *models.Booking, req VerifyPaymentRequest, valid bool, p *gateway.Payment) *verifyFailure {
	if !valid {
		return &verifyFailure{
			reason: "Invalid payment signature",
			err:    apperrors.Validation("Payment verification failed"),
		}
	}
	if p.OrderID != "" && p.OrderID != req.OrderID {
		return &verifyFailure{
			reason: fmt.Sprintf("Payment %s belongs to order %s", p.ID, p.OrderID),
			err:    apperrors.Validation("Payment verification failed"),
		}
	}
	if !p.Completed() {
		return &verifyFailure{
			reason: fmt.Sprintf("Payment status is %s", p.Status),
			err:    apperrors.Gateway(nil, "Payment was not completed").WithDetail("gateway_status", p.Status),
		}
	}
	expected := money.ToMinorUnits(b.Payment.Amount)
	if p.Amount != expected {
		return &verifyFailure{
			reason: fmt.Sprintf("Amount mismatch: expected %d, received %d", expected, p.Amount),
			err:    apperrors.Validation("Payment verification failed"),
		}
	}
	if p.Currency != "" && !strings.EqualFold(p.Currency, b.Payment.Currency) {
		return &verifyFailure{
			reason: fmt.Sprintf("Currency mismatch: expected %s, received %s", b.Payment.Currency, p.Currency),
			err:    apperrors.Validation("Payment verification failed"),
		}
	}
	return nil
}

// failPayment durably records a rejected verification and returns the caller-facing error.
func (s *Service) failPayment(ctx context.Context, b *models.Booking, req VerifyPaymentRequest, p *gateway.Payment, failure *verifyFailure) error {
	failed, err := s.transition(ctx, b, func(next *models.Booking) error {
		if err := canVerify(next); err != nil {
			return err
		}
		next.Payment.Status = models.PaymentFailed
		next.Payment.PaymentID = req.PaymentID
		next.Payment.FailureReason = failure.reason
		next.Payment.FailedAttempts++
		if p != nil {
			next.Payment.Method = p.Method
		}
		return nil
	}, s.update)
	if err != nil {
		s.logger.Error("failed to record payment failure", "booking_id", b.ID, "order_id", req.OrderID, "reason", failure.reason, "error", err)
		return err
	}

	s.logger.Warn("payment verification rejected",
		"booking_id", failed.ID,
		"order_id", req.OrderID,
		"payment_id", req.PaymentID,
		"reason", failure.reason,
		"failed_attempts", failed.Payment.FailedAttempts,
	)
	s.record(ctx, failed)
	s.notify(ctx, paymentFailedNotifications(failed))
	s.publish(ctx, failed)
	return failure.err
}

// CancelPaymentOrder abandons the open payment order. The booking keeps its status and
// slot so a new order can be created.
func (s *Service) CancelPaymentOrder(ctx context.Context, userID, orderID string) (*models.Booking, error) {
	if orderID == "" {
		return nil, apperrors.Validation("orderId is required")
	}
	b, err := s.bookingByOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.transition(ctx, b, func(next *models.Booking) error {
		if next.Payment.OrderID != orderID {
			return apperrors.Conflict("A newer payment order exists for this booking")
		}
		if !next.Payment.Status.CanTransitionTo(models.PaymentCancelled) {
			return apperrors.InvalidState("Payment order cannot be cancelled from status %s", next.Payment.Status)
		}
		next.Payment.Status = models.PaymentCancelled
		next.Payment.CancelledAttempts++
		return nil
	}, s.update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment order cancelled", "booking_id", cancelled.ID, "order_id", orderID)
	s.record(ctx, cancelled)
	s.publish(ctx, cancelled)
	return cancelled, nil
}

func (s *Service) bookingByOrder(ctx context.Context, userID, orderID string) (*models.Booking, error) {
	b, err := s.bookings.GetBookingByOrderID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "Payment order")
	}
	if b.UserID != userID {
		return nil, apperrors.Authorization("You are not allowed to access this payment")
	}
	return b, nil
}
