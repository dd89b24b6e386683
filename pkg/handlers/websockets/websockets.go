package websockets

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/academy-booking-core/pkg/middleware"
	"github.com/chris/academy-booking-core/pkg/websockets"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler tracks booking-update subscribers, both behind API Gateway and on the local server.
type Handler struct {
	conns websockets.ConnectionStore
	hub   *websockets.Hub
}

// NewHandler creates a Handler. hub is only needed for ServeHTTP.
func NewHandler(conns websockets.ConnectionStore, hub *websockets.Hub) *Handler {
	return &Handler{conns: conns, hub: hub}
}

// connectUserID reads the subscriber from the authorizer context, falling back to ?userId.
func connectUserID(request events.APIGatewayWebsocketProxyRequest) string {
	if auth, ok := request.RequestContext.Authorizer.(map[string]interface{}); ok {
		if id, ok := auth["principalId"].(string); ok && id != "" {
			return id
		}
	}
	return request.QueryStringParameters["userId"]
}

// HandleConnect handles new client connections.
func (h *Handler) HandleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	userID := connectUserID(request)
	if userID == "" {
		slog.Warn("rejecting connection without user", "connectionId", connectionID)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized}, nil
	}

	if err := h.conns.AddConnection(ctx, connectionID, userID); err != nil {
		slog.Error("failed to save connection ID", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	slog.Info("client connected", "connectionId", connectionID, "userId", userID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDisconnect handles client disconnections.
func (h *Handler) HandleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	if err := h.conns.RemoveConnection(ctx, connectionID); err != nil {
		slog.Error("failed to delete connection ID", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	slog.Info("client disconnected", "connectionId", connectionID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDefault acknowledges client messages. Subscribers only receive.
func (h *Handler) HandleDefault(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	slog.Debug("ignoring client message", "connectionId", request.RequestContext.ConnectionID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Local development only.
		return true
	},
}

// ServeHTTP subscribes a local client to its own booking updates.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(middleware.UserIDHeader)
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}
	if userID == "" {
		http.Error(w, "userId is required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	connectionID := uuid.New().String()
	ctx := r.Context()
	h.hub.Register(connectionID, userID, conn)
	if err := h.conns.AddConnection(ctx, connectionID, userID); err != nil {
		h.hub.Unregister(connectionID)
		slog.Error("failed to save local connection ID", "error", err)
		return
	}
	slog.Info("client connected locally", "connectionId", connectionID, "userId", userID)

	defer func() {
		h.hub.Unregister(connectionID)
		if err := h.conns.RemoveConnection(context.WithoutCancel(ctx), connectionID); err != nil {
			slog.Error("failed to delete local connection ID", "error", err)
		}
		slog.Info("client disconnected locally", "connectionId", connectionID)
	}()

	// Reads only detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("unexpected close error", "error", err)
			}
			break
		}
	}
}
