package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/money"
	"github.com/chris/academy-booking-core/pkg/storage"
	"github.com/chris/academy-booking-core/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testTables() Tables {
	return Tables{
		Bookings:     "bookings",
		Reservations: "reservations",
		Transactions: "transactions",
		Payouts:      "payouts",
		Catalog:      "catalog",
		Connections:  "connections",
	}
}

func testBooking() *models.Booking {
	return &models.Booking{
		ID:             "booking1",
		Reference:      "BK-2026-000001",
		UserID:         "user1",
		ParticipantIDs: []string{"p1", "p2"},
		BatchID:        "batch1",
		Amount:         money.MustAmount("1180.00"),
		Currency:       "INR",
		Status:         models.SLOT_BOOKED,
		Payment:        models.Payment{Status: models.PaymentNotInitiated, Currency: "INR"},
		Version:        1,
		CreatedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func cancelled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, c := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(c)}
	}
	return &types.TransactionCanceledException{CancellationReasons: reasons}
}

func limit(n int) models.Capacity { return models.Capacity{Max: &n} }

func TestReserveSlot(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}
		booking := testBooking()

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			if len(in.TransactItems) != 4 {
				return false
			}
			counter := in.TransactItems[0].Update
			limitAV := counter.ExpressionAttributeValues[":limit"].(*types.AttributeValueMemberN)
			lock := in.TransactItems[1].Put.Item["pk"].(*types.AttributeValueMemberS)
			return aws.ToString(counter.TableName) == "reservations" &&
				limitAV.Value == "8" &&
				lock.Value == "ENROLL#batch1#p1" &&
				aws.ToString(in.TransactItems[3].Put.TableName) == "bookings"
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.ReserveSlot(context.Background(), booking, limit(10), 0)

		assert.NoError(t, err)
		assert.True(t, booking.SlotHeld)
		mockClient.AssertExpectations(t)
	})

	t.Run("Untracked Occupancy Lowers The Limit", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			limitAV := in.TransactItems[0].Update.ExpressionAttributeValues[":limit"].(*types.AttributeValueMemberN)
			return limitAV.Value == "5"
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.ReserveSlot(context.Background(), testBooking(), limit(10), 3)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Untracked Occupancy Fills The Batch", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		err := store.ReserveSlot(context.Background(), testBooking(), limit(5), 4)

		assert.ErrorIs(t, err, storage.ErrCapacityExceeded)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})

	t.Run("Unlimited Batch Has No Capacity Condition", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			_, hasLimit := in.TransactItems[0].Update.ExpressionAttributeValues[":limit"]
			return in.TransactItems[0].Update.ConditionExpression == nil && !hasLimit
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.ReserveSlot(context.Background(), testBooking(), models.Capacity{}, 0)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Request Larger Than Batch", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		err := store.ReserveSlot(context.Background(), testBooking(), limit(1), 0)

		assert.ErrorIs(t, err, storage.ErrCapacityExceeded)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})

	t.Run("Capacity Exceeded", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}
		booking := testBooking()

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, cancelled("ConditionalCheckFailed", "None", "None", "None"))

		err := store.ReserveSlot(context.Background(), booking, limit(5), 0)

		assert.ErrorIs(t, err, storage.ErrCapacityExceeded)
		assert.False(t, booking.SlotHeld)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Enrolled", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, cancelled("None", "None", "ConditionalCheckFailed", "None"))

		err := store.ReserveSlot(context.Background(), testBooking(), limit(5), 0)

		assert.ErrorIs(t, err, storage.ErrAlreadyEnrolled)
		var conflict *storage.EnrollmentConflict
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, []string{"p2"}, conflict.ParticipantIDs)
		mockClient.AssertExpectations(t)
	})

	t.Run("Duplicate Booking", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, cancelled("None", "None", "None", "ConditionalCheckFailed"))

		err := store.ReserveSlot(context.Background(), testBooking(), limit(5), 0)

		assert.ErrorIs(t, err, storage.ErrDuplicateBooking)
	})

	t.Run("Transaction Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("transaction failed"))

		err := store.ReserveSlot(context.Background(), testBooking(), limit(5), 0)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute reservation")
		mockClient.AssertExpectations(t)
	})
}
