package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/storage"
)

// GetBooking retrieves a booking from DynamoDB by its ID.
func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Bookings),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get booking from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("booking %s: %w", id, storage.ErrNotFound)
	}

	var booking models.Booking
	if err := attributevalue.UnmarshalMap(result.Item, &booking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking: %w", err)
	}
	if booking.IsDeleted {
		return nil, fmt.Errorf("booking %s: %w", id, storage.ErrNotFound)
	}
	return &booking, nil
}

// GetBookingByOrderID finds the booking whose current payment order is orderID.
func (s *Store) GetBookingByOrderID(ctx context.Context, orderID string) (*models.Booking, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Bookings),
		IndexName:              aws.String(orderIndex),
		KeyConditionExpression: aws.String("payment_order_id = :order_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query booking by order ID: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("booking for order %s: %w", orderID, storage.ErrNotFound)
	}

	// The index projects keys only, so re-read the item consistently.
	var ref struct {
		ID string `dynamodbav:"id"`
	}
	if err := attributevalue.UnmarshalMap(result.Items[0], &ref); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking key: %w", err)
	}
	return s.GetBooking(ctx, ref.ID)
}

// ListActiveBookingsByBatch returns the slot-occupying, non-deleted bookings of a batch.
func (s *Store) ListActiveBookingsByBatch(ctx context.Context, batchID string) ([]*models.Booking, error) {
	values := map[string]types.AttributeValue{
		":batch_id": &types.AttributeValueMemberS{Value: batchID},
		":false":    &types.AttributeValueMemberBOOL{Value: false},
	}
	in := ""
	for i, status := range models.SlotOccupyingStatuses() {
		key := ":s" + strconv.Itoa(i)
		values[key] = &types.AttributeValueMemberS{Value: string(status)}
		if i > 0 {
			in += ", "
		}
		in += key
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.Tables.Bookings),
		IndexName:                 aws.String(batchIndex),
		KeyConditionExpression:    aws.String("batch_id = :batch_id"),
		FilterExpression:          aws.String("#status IN (" + in + ") AND (attribute_not_exists(is_deleted) OR is_deleted = :false)"),
		ExpressionAttributeNames:  map[string]string{"#status": "status"},
		ExpressionAttributeValues: values,
	}

	bookings, err := s.queryBookings(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by batch: %w", err)
	}
	return bookings, nil
}

// ListBookingsByStatus returns bookings in status whose last update is before the cutoff.
func (s *Store) ListBookingsByStatus(ctx context.Context, status models.BookingStatus, updatedBefore time.Time) ([]*models.Booking, error) {
	cutoffAV, err := attributevalue.Marshal(updatedBefore.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Bookings),
		IndexName:              aws.String(statusIndex),
		KeyConditionExpression: aws.String("#status = :status AND updated_at < :cutoff"),
		FilterExpression:       aws.String("attribute_not_exists(is_deleted) OR is_deleted = :false"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
			":cutoff": cutoffAV,
			":false":  &types.AttributeValueMemberBOOL{Value: false},
		},
	}

	bookings, err := s.queryBookings(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by status: %w", err)
	}
	return bookings, nil
}

// NextBookingSequence atomically increments the per-year reference counter.
func (s *Store) NextBookingSequence(ctx context.Context, year int) (int64, error) {
	result, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.Tables.Reservations),
		Key:              pk(sequenceKey(year)),
		UpdateExpression: aws.String("ADD seq :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": number(1),
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment booking sequence: %w", err)
	}

	var out struct {
		Seq int64 `dynamodbav:"seq"`
	}
	if err := attributevalue.UnmarshalMap(result.Attributes, &out); err != nil {
		return 0, fmt.Errorf("failed to unmarshal booking sequence: %w", err)
	}
	return out.Seq, nil
}

// queryBookings follows LastEvaluatedKey until the query is exhausted.
func (s *Store) queryBookings(ctx context.Context, input *dynamodb.QueryInput) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for {
		page, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var items []*models.Booking
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bookings: %w", err)
		}
		bookings = append(bookings, items...)
		if len(page.LastEvaluatedKey) == 0 {
			return bookings, nil
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
}
