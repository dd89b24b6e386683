package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSSendAPI is the subset of the SQS client used by dispatchers and submitters.
type SQSSendAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSDispatcher sends requests to a queue consumed by the delivery service.
type SQSDispatcher struct {
	Client   SQSSendAPI
	QueueURL string
}

func NewSQSDispatcher(client SQSSendAPI, queueURL string) *SQSDispatcher {
	return &SQSDispatcher{Client: client, QueueURL: queueURL}
}

var _ Dispatcher = (*SQSDispatcher)(nil)

func (d *SQSDispatcher) Dispatch(ctx context.Context, req Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal notification for SQS: %w", err)
	}

	_, err = d.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(d.QueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"priority": {DataType: aws.String("String"), StringValue: aws.String(string(req.Priority))},
			"type":     {DataType: aws.String("String"), StringValue: aws.String(req.Metadata.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send notification to SQS: %w", err)
	}
	return nil
}
