package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/academy-booking-core/pkg/bootstrap"
	"github.com/chris/academy-booking-core/pkg/config"
	"github.com/chris/academy-booking-core/pkg/handlers/websockets"
	"github.com/chris/academy-booking-core/pkg/logging"
)

type routeHandler func(context.Context, events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error)

// router dispatches on the API Gateway route key.
func router(h *websockets.Handler) routeHandler {
	return func(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
		switch request.RequestContext.RouteKey {
		case "$connect":
			return h.HandleConnect(ctx, request)
		case "$disconnect":
			return h.HandleDisconnect(ctx, request)
		case "$default":
			return h.HandleDefault(ctx, request)
		default:
			return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logging.New(cfg.Env, cfg.LogLevel)

	deps, err := bootstrap.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to build dependencies: %v", err)
	}

	lambda.Start(router(websockets.NewHandler(deps.Store, nil)))
}
