package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/academy-booking-core/pkg/notify"
	"github.com/chris/academy-booking-core/pkg/notify/mocks"
	"github.com/chris/academy-booking-core/pkg/websockets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{}, f.err
}

type recordingPublisher struct {
	userID string
	msg    websockets.Message
}

func (p *recordingPublisher) Publish(_ context.Context, userID string, msg websockets.Message) error {
	p.userID = userID
	p.msg = msg
	return nil
}

func request() notify.Request {
	return notify.Request{
		Text:          "Your booking BK-2026-000001 is confirmed",
		Priority:      notify.PriorityHigh,
		RecipientType: notify.RecipientUser,
		RecipientID:   "user1",
		Metadata:      notify.Metadata{Type: notify.TypePaymentSuccess, BookingID: "booking1", BatchID: "batch1"},
		CreatedAt:     time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSQSDispatcher(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := &fakeSQS{}
		d := notify.NewSQSDispatcher(client, "https://sqs/notifications")

		require.NoError(t, d.Dispatch(context.Background(), request()))

		require.Len(t, client.inputs, 1)
		assert.Equal(t, "https://sqs/notifications", *client.inputs[0].QueueUrl)
		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(*client.inputs[0].MessageBody), &body))
		assert.Equal(t, "user", body["recipientType"])
		assert.Equal(t, "high", body["priority"])
		assert.Equal(t, "booking1", body["metadata"].(map[string]any)["bookingId"])
	})

	t.Run("Send Fails", func(t *testing.T) {
		d := notify.NewSQSDispatcher(&fakeSQS{err: errors.New("throttled")}, "q")

		assert.ErrorContains(t, d.Dispatch(context.Background(), request()), "throttled")
	})
}

func TestRoutingKey(t *testing.T) {
	req := request()
	req.RecipientType = notify.RecipientAcademy
	req.Priority = notify.PriorityMedium

	assert.Equal(t, "notification.academy.medium", notify.RoutingKey(req))
}

func TestWebSocketDispatcher(t *testing.T) {
	t.Run("User Recipient", func(t *testing.T) {
		publisher := &recordingPublisher{}
		d := &notify.WebSocketDispatcher{Publisher: publisher}

		require.NoError(t, d.Dispatch(context.Background(), request()))

		assert.Equal(t, "user1", publisher.userID)
		assert.Equal(t, websockets.MessageTypeNotification, publisher.msg.Type)
	})

	t.Run("Role Recipient Is Ignored", func(t *testing.T) {
		publisher := &recordingPublisher{}
		req := request()
		req.RecipientType = notify.RecipientRole
		req.RecipientID = notify.RoleAdmin

		require.NoError(t, (&notify.WebSocketDispatcher{Publisher: publisher}).Dispatch(context.Background(), req))

		assert.Empty(t, publisher.userID)
	})
}

func TestFanout(t *testing.T) {
	first := mocks.NewDispatcher(t)
	second := mocks.NewDispatcher(t)
	first.On("Dispatch", mock.Anything, mock.Anything).Return(errors.New("queue down"))
	second.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	err := notify.Fanout{first, second, &notify.LogDispatcher{}}.Dispatch(context.Background(), request())

	assert.ErrorContains(t, err, "queue down")
	second.AssertNumberOfCalls(t, "Dispatch", 1)
}
