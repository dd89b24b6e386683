package main

import (
	"context"
	"log"
	"log/slog"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/academy-booking-core/pkg/bootstrap"
	"github.com/chris/academy-booking-core/pkg/config"
	"github.com/chris/academy-booking-core/pkg/logging"
	"github.com/chris/academy-booking-core/pkg/payout"
	"github.com/chris/academy-booking-core/pkg/tasks"
)

// processor runs queued side-effect tasks.
type processor struct {
	handler tasks.Handler
	logger  *slog.Logger
}

// HandleRequest runs each task and reports transient failures back to SQS so only
// those messages are redelivered. Permanent failures are logged and dropped.
func (p *processor) HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, message := range sqsEvent.Records {
		task, err := tasks.DecodeTask(message.Body)
		if err == nil {
			task.Attempt = receiveCount(message)
			err = p.handler.Handle(ctx, task)
		}
		switch {
		case err == nil:
			p.logger.Info("task done", "message_id", message.MessageId, "task_id", task.ID, "kind", task.Kind)
		case tasks.IsPermanent(err):
			p.logger.Error("dropping task", "message_id", message.MessageId, "task_id", task.ID, "kind", task.Kind, "error", err)
		default:
			p.logger.Warn("task failed, will retry", "message_id", message.MessageId, "task_id", task.ID, "kind", task.Kind, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
		}
	}
	return resp, nil
}

func receiveCount(message events.SQSMessage) int {
	n, err := strconv.Atoi(message.Attributes["ApproximateReceiveCount"])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	deps, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build dependencies: %v", err)
	}
	publisher, err := deps.Publisher(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("failed to create websocket publisher: %v", err)
	}
	dispatcher, err := deps.Dispatcher(cfg, publisher, logger)
	if err != nil {
		log.Fatalf("failed to configure notifications: %v", err)
	}

	p := &processor{
		handler: tasks.NewExecutor(payout.NewInitiator(deps.Store, deps.Store, logger), dispatcher, logger),
		logger:  logger,
	}
	lambda.Start(p.HandleRequest)
}
