package dynamodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/storage"
	"github.com/google/uuid"
)

func transactionKey(bookingID, orderID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"booking_id": &types.AttributeValueMemberS{Value: bookingID},
		"order_id":   &types.AttributeValueMemberS{Value: orderID},
	}
}

// setClause accumulates "#name = :name" assignments for an update expression.
type setClause struct {
	parts  []string
	names  map[string]string
	values map[string]types.AttributeValue
}

func newSetClause() *setClause {
	return &setClause{names: map[string]string{}, values: map[string]types.AttributeValue{}}
}

// set assigns value to attr. With keep, an existing value is left in place.
func (c *setClause) set(attr string, value any, keep bool) error {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", attr, err)
	}
	c.names["#"+attr] = attr
	c.values[":"+attr] = av
	if keep {
		c.parts = append(c.parts, fmt.Sprintf("#%s = if_not_exists(#%s, :%s)", attr, attr, attr))
	} else {
		c.parts = append(c.parts, fmt.Sprintf("#%s = :%s", attr, attr))
	}
	return nil
}

func (c *setClause) expression() string {
	return "SET " + strings.Join(c.parts, ", ")
}

type assignment struct {
	attr  string
	value any
	keep  bool
}

// UpsertTransaction creates or updates the ledger row for (booking, order). A row already in
// SUCCESS is never overwritten; the stored row is returned instead.
func (s *Store) UpsertTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	now := time.Now().UTC()
	assignments := []assignment{
		{attr: "id", value: uuid.New().String(), keep: true},
		{attr: "created_at", value: now, keep: true},
		{attr: "user_id", value: tx.UserID},
		{attr: "amount", value: tx.Amount},
		{attr: "currency", value: tx.Currency},
		{attr: "status", value: tx.Status},
		{attr: "updated_at", value: now},
	}
	if tx.PaymentID != "" {
		assignments = append(assignments, assignment{attr: "payment_id", value: tx.PaymentID})
	}
	if tx.Method != "" {
		assignments = append(assignments, assignment{attr: "method", value: tx.Method})
	}
	if tx.FailureReason != "" {
		assignments = append(assignments, assignment{attr: "failure_reason", value: tx.FailureReason})
	}
	if tx.ProcessedAt != nil {
		assignments = append(assignments, assignment{attr: "processed_at", value: tx.ProcessedAt.UTC()})
	}

	c := newSetClause()
	for _, a := range assignments {
		if err := c.set(a.attr, a.value, a.keep); err != nil {
			return nil, err
		}
	}
	c.values[":success"] = &types.AttributeValueMemberS{Value: string(models.PaymentSuccess)}

	result, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.Tables.Transactions),
		Key:                       transactionKey(tx.BookingID, tx.OrderID),
		UpdateExpression:          aws.String(c.expression()),
		ConditionExpression:       aws.String("attribute_not_exists(#status) OR #status <> :success"),
		ExpressionAttributeNames:  c.names,
		ExpressionAttributeValues: c.values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailure(err) {
			return s.GetTransaction(ctx, tx.BookingID, tx.OrderID)
		}
		return nil, fmt.Errorf("failed to upsert transaction: %w", err)
	}

	var stored models.Transaction
	if err := attributevalue.UnmarshalMap(result.Attributes, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return &stored, nil
}

// GetTransaction retrieves the ledger row of an order.
func (s *Store) GetTransaction(ctx context.Context, bookingID, orderID string) (*models.Transaction, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Transactions),
		Key:            transactionKey(bookingID, orderID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("transaction for order %s: %w", orderID, storage.ErrNotFound)
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Item, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// ListTransactionsByBooking retrieves every payment attempt recorded for a booking.
func (s *Store) ListTransactionsByBooking(ctx context.Context, bookingID string) ([]models.Transaction, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Transactions),
		KeyConditionExpression: aws.String("booking_id = :booking_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":booking_id": &types.AttributeValueMemberS{Value: bookingID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by booking: %w", err)
	}

	var transactions []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &transactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
	}
	return transactions, nil
}
