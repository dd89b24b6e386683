package websockets

import (
	"context"
)

// ConnectionStore tracks which connections belong to which user.
type ConnectionStore interface {
	AddConnection(ctx context.Context, connectionID, userID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
	GetConnections(ctx context.Context, userID string) ([]string, error)
}

// Publisher defines the interface for publishing messages to a user's WebSocket clients.
type Publisher interface {
	Publish(ctx context.Context, userID string, message Message) error
}
