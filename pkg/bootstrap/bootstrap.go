// Package bootstrap builds the shared dependencies of the server and the lambdas
// from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/academy-booking-core/pkg/config"
	"github.com/chris/academy-booking-core/pkg/gateway"
	"github.com/chris/academy-booking-core/pkg/notify"
	"github.com/chris/academy-booking-core/pkg/storage"
	"github.com/chris/academy-booking-core/pkg/storage/dynamodb"
	"github.com/chris/academy-booking-core/pkg/storage/memory"
	"github.com/chris/academy-booking-core/pkg/websockets"
)

// Deps are the clients every entry point may need.
type Deps struct {
	Store   storage.Storage
	Memory  *memory.Store
	SQS     *sqs.Client
	closers []func() error
}

// Close releases connections opened while building.
func (d *Deps) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			slog.Warn("failed to close dependency", "error", err)
		}
	}
}

// New opens the configured store. AWS clients are only created for the dynamodb backend
// or when a queue is configured.
func New(ctx context.Context, cfg *config.Config) (*Deps, error) {
	d := &Deps{}

	needsAWS := cfg.Store != "memory" || cfg.TasksQueueURL != "" || cfg.NotificationQueueURL != "" || cfg.WebSocketEndpoint != ""
	if needsAWS {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to load SDK config: %w", err)
		}
		d.SQS = sqs.NewFromConfig(awsCfg)
		if cfg.Store != "memory" {
			tables, err := cfg.Tables()
			if err != nil {
				return nil, err
			}
			d.Store = dynamodb.New(awsdynamodb.NewFromConfig(awsCfg), tables)
		}
	}
	if cfg.Store == "memory" {
		d.Memory = memory.New()
		d.Store = d.Memory
	}
	return d, nil
}

// Gateway returns the Razorpay client, or the local fake when FAKE_GATEWAY is set.
func Gateway(cfg *config.Config) (gateway.Gateway, error) {
	if cfg.FakeGateway {
		slog.Warn("using the local fake payment gateway")
		return gateway.NewFake(cfg.GatewayKeySecret), nil
	}
	if cfg.GatewayKeyID == "" || cfg.GatewayKeySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set")
	}
	return gateway.NewRazorpayClient(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret, cfg.GatewayTimeout), nil
}

// Dispatcher builds the notification fan-out named by NOTIFY_TRANSPORT.
func (d *Deps) Dispatcher(cfg *config.Config, publisher websockets.Publisher, logger *slog.Logger) (notify.Dispatcher, error) {
	var out notify.Fanout
	for _, name := range cfg.NotifyTransport {
		switch strings.TrimSpace(name) {
		case "log":
			out = append(out, &notify.LogDispatcher{Logger: logger})
		case "sqs":
			if d.SQS == nil || cfg.NotificationQueueURL == "" {
				return nil, fmt.Errorf("sqs notifications need SQS_NOTIFICATIONS_QUEUE_URL")
			}
			out = append(out, notify.NewSQSDispatcher(d.SQS, cfg.NotificationQueueURL))
		case "amqp":
			amqp, err := notify.NewAMQPDispatcher(cfg.AMQPURL, cfg.AMQPExchange)
			if err != nil {
				return nil, err
			}
			d.closers = append(d.closers, amqp.Close)
			out = append(out, amqp)
		case "websocket":
			out = append(out, &notify.WebSocketDispatcher{Publisher: publisher})
		case "":
		default:
			return nil, fmt.Errorf("unknown notification transport %q", name)
		}
	}
	if len(out) == 0 {
		out = append(out, &notify.LogDispatcher{Logger: logger})
	}
	return out, nil
}

// Publisher returns the API Gateway publisher when an endpoint is configured. Otherwise
// updates go to hub, which may be nil outside the local server.
func (d *Deps) Publisher(ctx context.Context, cfg *config.Config, hub *websockets.Hub) (websockets.Publisher, error) {
	if cfg.WebSocketEndpoint != "" {
		return websockets.NewPublisher(ctx, d.Store, cfg.WebSocketEndpoint)
	}
	if hub != nil {
		return hub, nil
	}
	return &websockets.NoOpPublisher{}, nil
}
