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

func payoutKey(bookingID, transactionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"booking_id":     &types.AttributeValueMemberS{Value: bookingID},
		"transaction_id": &types.AttributeValueMemberS{Value: transactionID},
	}
}

// GetPayout retrieves the payout created for a booking and transaction.
func (s *Store) GetPayout(ctx context.Context, bookingID, transactionID string) (*models.Payout, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Payouts),
		Key:            payoutKey(bookingID, transactionID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get payout from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("payout for booking %s: %w", bookingID, storage.ErrNotFound)
	}

	var payout models.Payout
	if err := attributevalue.UnmarshalMap(result.Item, &payout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payout: %w", err)
	}
	return &payout, nil
}

// CreatePayout inserts the payout and flips the booking's payout status to PENDING in one transaction.
// The insert is conditional, so a duplicate task for the same pair cannot create a second payout.
func (s *Store) CreatePayout(ctx context.Context, payout *models.Payout) error {
	payoutAV, err := attributevalue.MarshalMap(payout)
	if err != nil {
		return fmt.Errorf("failed to marshal payout: %w", err)
	}
	nowAV, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for payout: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Create the payout record.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Payouts),
					Item:                payoutAV,
					ConditionExpression: aws.String("attribute_not_exists(booking_id)"),
				},
			},
			{
				// Operation 2: Mark the booking's payout as pending.
				Update: &types.Update{
					TableName:           aws.String(s.Tables.Bookings),
					Key:                 idKey(payout.BookingID),
					UpdateExpression:    aws.String("SET payout_status = :pending, version = version + :inc, updated_at = :now"),
					ConditionExpression: aws.String("attribute_exists(id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":pending": &types.AttributeValueMemberS{Value: string(models.PayoutPending)},
						":inc":     number(1),
						":now":     nowAV,
					},
				},
			},
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		codes := cancellationCodes(err)
		if len(codes) > 0 && codes[0] == conditionErr {
			return storage.ErrPayoutExists
		}
		if len(codes) > 1 && codes[1] == conditionErr {
			return fmt.Errorf("booking %s: %w", payout.BookingID, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to execute payout transaction: %w", err)
	}
	return nil
}
