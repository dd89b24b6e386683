package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeKind is the exchange type declared for notifications.
const ExchangeKind = "topic"

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPDispatcher publishes requests to a topic exchange, routed by
// "notification.<recipientType>.<priority>".
type AMQPDispatcher struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
}

var _ Dispatcher = (*AMQPDispatcher)(nil)

func NewAMQPDispatcher(url, exchange string) (*AMQPDispatcher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, ExchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPDispatcher{conn: conn, ch: ch, exchange: exchange}, nil
}

// RoutingKey returns the routing key a request is published with.
func RoutingKey(req Request) string {
	return fmt.Sprintf("notification.%s.%s", req.RecipientType, req.Priority)
}

func (d *AMQPDispatcher) Dispatch(ctx context.Context, req Request) error {
	b, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    req.CreatedAt,
		Type:         req.Metadata.Type,
		Body:         b,
	}
	if req.Priority == PriorityHigh {
		msg.Priority = 5
	}
	if err := d.ch.PublishWithContext(ctx, d.exchange, RoutingKey(req), false, false, msg); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (d *AMQPDispatcher) Close() error {
	if d.ch != nil {
		_ = d.ch.Close()
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}
