package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/storage"
)

// enrollmentLock is the reservations-table item that keeps a participant to one active booking per batch.
type enrollmentLock struct {
	PK            string    `dynamodbav:"pk"`
	BatchID       string    `dynamodbav:"batch_id"`
	ParticipantID string    `dynamodbav:"participant_id"`
	BookingID     string    `dynamodbav:"booking_id"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
}

// ReserveSlot atomically increments the batch occupancy, takes the enrollment locks and inserts the booking.
// Rows without SlotHeld never moved the counter, so untracked is subtracted from the limit.
// Such rows are only ever released, never created, so a stale count only errs on the safe side.
func (s *Store) ReserveSlot(ctx context.Context, booking *models.Booking, capacity models.Capacity, untracked int) error {
	n := booking.ParticipantCount()
	if n == 0 {
		return errors.New("booking has no participants")
	}
	if untracked < 0 {
		untracked = 0
	}
	if capacity.Max != nil && n+untracked > *capacity.Max {
		return storage.ErrCapacityExceeded
	}

	booking.SlotHeld = true
	booking.PaymentOrderID = booking.Payment.OrderID
	bookingAV, err := attributevalue.MarshalMap(booking)
	if err != nil {
		return fmt.Errorf("failed to marshal booking: %w", err)
	}

	// Operation 1: the occupancy counter. The condition keeps occupied + untracked + n <= max.
	counter := &types.Update{
		TableName:        aws.String(s.Tables.Reservations),
		Key:              pk(occupancyKey(booking.BatchID)),
		UpdateExpression: aws.String("SET occupied = if_not_exists(occupied, :zero) + :n, batch_id = :batch_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero":     number(0),
			":n":        number(int64(n)),
			":batch_id": &types.AttributeValueMemberS{Value: booking.BatchID},
		},
	}
	if capacity.Max != nil {
		counter.ConditionExpression = aws.String("attribute_not_exists(occupied) OR occupied <= :limit")
		counter.ExpressionAttributeValues[":limit"] = number(int64(*capacity.Max - n - untracked))
	}

	items := make([]types.TransactWriteItem, 0, n+2)
	items = append(items, types.TransactWriteItem{Update: counter})

	// Operation 2: one enrollment lock per participant.
	for _, participantID := range booking.ParticipantIDs {
		lockAV, err := attributevalue.MarshalMap(enrollmentLock{
			PK:            enrollmentKey(booking.BatchID, participantID),
			BatchID:       booking.BatchID,
			ParticipantID: participantID,
			BookingID:     booking.ID,
			CreatedAt:     booking.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal enrollment lock: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Reservations),
				Item:                lockAV,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			},
		})
	}

	// Operation 3: the booking itself.
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.Tables.Bookings),
			Item:                bookingAV,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		},
	})

	slog.Log(ctx, slog.LevelDebug, "reserving slot", "booking_id", booking.ID, "batch_id", booking.BatchID, "participants", n)

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		booking.SlotHeld = false
		if codes := cancellationCodes(err); codes != nil {
			return reservationFailure(booking, codes, err)
		}
		return fmt.Errorf("failed to execute reservation: %w", err)
	}
	return nil
}

// reservationFailure maps the cancellation reasons of a reservation to storage errors.
func reservationFailure(booking *models.Booking, codes []string, err error) error {
	n := booking.ParticipantCount()
	if len(codes) > 0 && codes[0] == conditionErr {
		return storage.ErrCapacityExceeded
	}
	conflict := &storage.EnrollmentConflict{BatchID: booking.BatchID}
	for i, participantID := range booking.ParticipantIDs {
		if i+1 < len(codes) && codes[i+1] == conditionErr {
			conflict.ParticipantIDs = append(conflict.ParticipantIDs, participantID)
		}
	}
	if len(conflict.ParticipantIDs) > 0 {
		return conflict
	}
	if n+1 < len(codes) && codes[n+1] == conditionErr {
		return storage.ErrDuplicateBooking
	}
	return fmt.Errorf("failed to execute reservation: %w", err)
}
