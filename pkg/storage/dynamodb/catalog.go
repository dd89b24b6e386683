package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/chris/academy-booking-core/pkg/storage"
)

// Catalog items share one table keyed by "<KIND>#<id>".
const (
	userPrefix          = "USER#"
	batchPrefix         = "BATCH#"
	academyPrefix       = "ACADEMY#"
	participantPrefix   = "PARTICIPANT#"
	payoutAccountPrefix = "PAYOUT_ACCOUNT#"

	// BatchGetItem accepts at most 100 keys per request.
	batchGetLimit = 100
)

func (s *Store) getCatalogItem(ctx context.Context, key, kind string, out any) error {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Catalog),
		Key:       pk(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get %s from DynamoDB: %w", kind, err)
	}
	if result.Item == nil {
		return fmt.Errorf("%s %s: %w", kind, key, storage.ErrNotFound)
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", kind, err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.UserForBooking, error) {
	var user models.UserForBooking
	if err := s.getCatalogItem(ctx, userPrefix+id, "user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetBatch(ctx context.Context, id string) (*models.BatchForBooking, error) {
	var batch models.BatchForBooking
	if err := s.getCatalogItem(ctx, batchPrefix+id, "batch", &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *Store) GetAcademy(ctx context.Context, id string) (*models.AcademyForBooking, error) {
	var academy models.AcademyForBooking
	if err := s.getCatalogItem(ctx, academyPrefix+id, "academy", &academy); err != nil {
		return nil, err
	}
	return &academy, nil
}

func (s *Store) GetPayoutAccount(ctx context.Context, centerID string) (*models.PayoutAccount, error) {
	var account models.PayoutAccount
	if err := s.getCatalogItem(ctx, payoutAccountPrefix+centerID, "payout account", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetParticipants batch-reads participants. IDs that do not exist are omitted from the result.
func (s *Store) GetParticipants(ctx context.Context, ids []string) ([]*models.ParticipantForBooking, error) {
	var participants []*models.ParticipantForBooking
	for start := 0; start < len(ids); start += batchGetLimit {
		end := min(start+batchGetLimit, len(ids))
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, pk(participantPrefix+id))
		}

		request := map[string]types.KeysAndAttributes{s.Tables.Catalog: {Keys: keys}}
		for len(request) > 0 {
			result, err := s.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("failed to batch get participants: %w", err)
			}
			var page []*models.ParticipantForBooking
			if err := attributevalue.UnmarshalListOfMaps(result.Responses[s.Tables.Catalog], &page); err != nil {
				return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
			}
			participants = append(participants, page...)
			request = result.UnprocessedKeys
		}
	}
	return participants, nil
}
