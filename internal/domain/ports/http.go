package ports

import (
	"context"
	"time"
)

// ControlServer is the web control UI: REST API, event feed and JSON-RPC endpoint
type ControlServer interface {
	// Start binds host:port and serves in the background
	Start(ctx context.Context, port int, host string) error
	// Stop shuts down gracefully and closes every feed client
	Stop(ctx context.Context) error
	// Broadcast pushes an event to all feed clients
	Broadcast(event UpdateEvent) error
	IsRunning() bool
}

// UpdateEvent is one message on the event feed
type UpdateEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Event feed message types
const (
	EventTypeConnected   = "connected"
	EventTypeLog         = "log"
	EventTypeLogsCleared = "logs_cleared"
	EventTypeState       = "state"
	EventTypePreview     = "preview"
)

// EventPublisher receives session changes for delivery to UI clients.
// Publish must not block the caller.
type EventPublisher interface {
	Publish(event UpdateEvent)
}
