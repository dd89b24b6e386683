package booking

import (
	"context"
	"fmt"

	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/notify"
	"github.com/chris/academy-booking-core/pkg/tasks"
)

// notify submits each request as its own task so one slow channel cannot hold up the rest.
func (s *Service) notify(ctx context.Context, reqs []notify.Request) {
	now := s.now()
	for _, req := range reqs {
		req.CreatedAt = now
		s.submit(ctx, tasks.NewNotificationTask(req))
	}
}

func meta(kind string, b *models.Booking) notify.Metadata {
	return notify.Metadata{Type: kind, BookingID: b.ID, BatchID: b.BatchID}
}

func toUser(b *models.Booking, p notify.Priority, kind, text string) notify.Request {
	return notify.Request{Text: text, Priority: p, RecipientType: notify.RecipientUser, RecipientID: b.UserID, Metadata: meta(kind, b)}
}

func toAcademy(b *models.Booking, p notify.Priority, kind, text string) notify.Request {
	return notify.Request{Text: text, Priority: p, RecipientType: notify.RecipientAcademy, RecipientID: b.CenterID, Metadata: meta(kind, b)}
}

func toAdmins(b *models.Booking, p notify.Priority, kind, text string) notify.Request {
	return notify.Request{Text: text, Priority: p, RecipientType: notify.RecipientRole, RecipientID: notify.RoleAdmin, Metadata: meta(kind, b)}
}

func slotRequestedNotifications(b *models.Booking, batch *models.BatchForBooking, academy *models.AcademyForBooking) []notify.Request {
	kind := notify.TypeSlotRequested
	return []notify.Request{
		toAcademy(b, notify.PriorityHigh, kind,
			fmt.Sprintf("New booking request %s for %s (%d participant(s)). Please review it.", b.Reference, batch.Name, b.ParticipantCount())),
		toUser(b, notify.PriorityMedium, kind,
			fmt.Sprintf("Your slot request %s for %s at %s has been received and is awaiting approval.", b.Reference, batch.Name, academy.Name)),
		toAdmins(b, notify.PriorityMedium, kind,
			fmt.Sprintf("Booking %s requested at %s for %s %s.", b.Reference, academy.Name, b.Amount.String(), b.Currency)),
	}
}

func approvedNotifications(b *models.Booking) []notify.Request {
	return []notify.Request{
		toUser(b, notify.PriorityHigh, notify.TypeBookingApproved,
			fmt.Sprintf("Your booking %s has been approved. Complete the payment of %s %s to confirm it.", b.Reference, b.Amount.String(), b.Currency)),
	}
}

func rejectedNotifications(b *models.Booking) []notify.Request {
	text := fmt.Sprintf("Your booking %s was not accepted by the academy.", b.Reference)
	if b.RejectionReason != "" {
		text += " Reason: " + b.RejectionReason
	}
	return []notify.Request{toUser(b, notify.PriorityHigh, notify.TypeBookingRejected, text)}
}

func cancelledNotifications(b *models.Booking) []notify.Request {
	kind := notify.TypeBookingCancelled
	return []notify.Request{
		toUser(b, notify.PriorityMedium, kind, fmt.Sprintf("Your booking %s has been cancelled.", b.Reference)),
		toAcademy(b, notify.PriorityMedium, kind, fmt.Sprintf("Booking %s was cancelled by the customer.", b.Reference)),
	}
}

func completedNotifications(b *models.Booking) []notify.Request {
	return []notify.Request{
		toUser(b, notify.PriorityMedium, notify.TypeBookingCompleted, fmt.Sprintf("Your booking %s is complete. We hope you enjoyed the sessions!", b.Reference)),
	}
}

func paymentSuccessNotifications(b *models.Booking) []notify.Request {
	kind := notify.TypePaymentSuccess
	amount := b.Payment.Amount.String() + " " + b.Payment.Currency
	return []notify.Request{
		toUser(b, notify.PriorityHigh, kind, fmt.Sprintf("Payment of %s received. Your booking %s is confirmed.", amount, b.Reference)),
		toAcademy(b, notify.PriorityHigh, kind, fmt.Sprintf("Booking %s is confirmed and paid (%s).", b.Reference, amount)),
		toAdmins(b, notify.PriorityMedium, kind, fmt.Sprintf("Payment %s captured for booking %s (%s).", b.Payment.PaymentID, b.Reference, amount)),
	}
}

func paymentFailedNotifications(b *models.Booking) []notify.Request {
	return []notify.Request{
		toUser(b, notify.PriorityHigh, notify.TypePaymentFailed,
			fmt.Sprintf("We could not verify your payment for booking %s. No booking changes were made; you can try again.", b.Reference)),
	}
}
