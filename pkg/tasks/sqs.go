package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the subset of the SQS client used to enqueue tasks.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSSubmitter implements Submitter using AWS SQS. Retries are left to the queue's
// redrive policy.
type SQSSubmitter struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSSubmitter creates a new SQSSubmitter.
func NewSQSSubmitter(client SQSAPI, queueURL string) *SQSSubmitter {
	return &SQSSubmitter{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Submitter = (*SQSSubmitter)(nil)

// Submit sends the task to the queue for later processing.
func (s *SQSSubmitter) Submit(ctx context.Context, task Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task for SQS: %w", err)
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.QueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"kind": {DataType: aws.String("String"), StringValue: aws.String(string(task.Kind))},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}

// DecodeTask parses a task sent by SQSSubmitter.
func DecodeTask(body string) (Task, error) {
	var task Task
	if err := json.Unmarshal([]byte(body), &task); err != nil {
		return Task{}, Permanent(fmt.Errorf("failed to unmarshal task: %w", err))
	}
	return task, nil
}
