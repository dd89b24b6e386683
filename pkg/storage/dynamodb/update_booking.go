package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/storage"
)

// versionedPut prepares a conditional Put of booking at its next version.
// The returned restore func undoes the in-memory version bump if the write fails.
func (s *Store) versionedPut(booking *models.Booking) (*types.Put, func(), error) {
	prev := booking.Version
	prevUpdated := booking.UpdatedAt
	restore := func() {
		booking.Version = prev
		booking.UpdatedAt = prevUpdated
	}

	booking.Version = prev + 1
	booking.UpdatedAt = time.Now().UTC()
	booking.PaymentOrderID = booking.Payment.OrderID

	item, err := attributevalue.MarshalMap(booking)
	if err != nil {
		restore()
		return nil, nil, fmt.Errorf("failed to marshal booking: %w", err)
	}

	return &types.Put{
		TableName:           aws.String(s.Tables.Bookings),
		Item:                item,
		ConditionExpression: aws.String("version = :version"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":version": number(prev),
		},
	}, restore, nil
}

// UpdateBooking writes the booking if nobody else changed it since it was read.
func (s *Store) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	put, restore, err := s.versionedPut(booking)
	if err != nil {
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 put.TableName,
		Item:                      put.Item,
		ConditionExpression:       put.ConditionExpression,
		ExpressionAttributeValues: put.ExpressionAttributeValues,
	})
	if err != nil {
		restore()
		if isConditionFailure(err) {
			return storage.ErrVersionConflict
		}
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

// ReleaseSlot writes a booking that left the slot-occupying set and returns its occupancy
// and enrollment locks in the same transaction.
func (s *Store) ReleaseSlot(ctx context.Context, booking *models.Booking) error {
	if booking.Status.OccupiesSlot() {
		return fmt.Errorf("booking %s is still %s and cannot release its slot", booking.ID, booking.Status)
	}
	if !booking.SlotHeld {
		return s.UpdateBooking(ctx, booking)
	}

	booking.SlotHeld = false
	put, restore, err := s.versionedPut(booking)
	if err != nil {
		booking.SlotHeld = true
		return err
	}

	n := int64(booking.ParticipantCount())
	items := []types.TransactWriteItem{
		{Put: put},
		{
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Reservations),
				Key:                 pk(occupancyKey(booking.BatchID)),
				UpdateExpression:    aws.String("SET occupied = occupied - :n"),
				ConditionExpression: aws.String("occupied >= :n"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":n": number(n),
				},
			},
		},
	}
	for _, participantID := range booking.ParticipantIDs {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName:           aws.String(s.Tables.Reservations),
				Key:                 pk(enrollmentKey(booking.BatchID, participantID)),
				ConditionExpression: aws.String("attribute_not_exists(pk) OR booking_id = :booking_id"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":booking_id": &types.AttributeValueMemberS{Value: booking.ID},
				},
			},
		})
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		restore()
		booking.SlotHeld = true
		if codes := cancellationCodes(err); len(codes) > 0 && codes[0] == conditionErr {
			return storage.ErrVersionConflict
		}
		return fmt.Errorf("failed to execute slot release: %w", err)
	}
	return nil
}
