package http

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

const (
	broadcastBuffer = 256
	clientBuffer    = 256

	// stateDebounce coalesces bursts of state changes into one push
	stateDebounce = 50 * time.Millisecond
)

// Connection represents a WebSocket connection
type Connection struct {
	ID   string
	Send chan ports.UpdateEvent
}

// ConnectionManager fans session events out to WebSocket clients.
// It implements ports.EventPublisher; Publish never blocks.
type ConnectionManager struct {
	connections map[string]*Connection
	broadcast   chan ports.UpdateEvent
	mu          sync.RWMutex
	closed      bool
	done        chan struct{}
	doneOnce    sync.Once

	debounced   func(f func())
	stateMu     sync.Mutex
	latestState ports.UpdateEvent

	logger *HTTPLogger
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(logger *HTTPLogger) *ConnectionManager {
	if logger == nil {
		logger = NewHTTPLogger("hub", false)
	}
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		broadcast:   make(chan ports.UpdateEvent, broadcastBuffer),
		done:        make(chan struct{}),
		debounced:   debounce.New(stateDebounce),
		logger:      logger,
	}
}

// Run delivers queued events until ctx is cancelled
func (cm *ConnectionManager) Run(ctx context.Context) {
	defer cm.doneOnce.Do(func() { close(cm.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-cm.broadcast:
			cm.fanOut(event)
		}
	}
}

// Publish queues event for every connected client.
// State events are debounced so only the latest one in a burst is sent.
func (cm *ConnectionManager) Publish(event ports.UpdateEvent) {
	if event.Type == ports.EventTypeState {
		cm.stateMu.Lock()
		cm.latestState = event
		cm.stateMu.Unlock()

		cm.debounced(func() {
			cm.stateMu.Lock()
			latest := cm.latestState
			cm.stateMu.Unlock()
			cm.enqueue(latest)
		})
		return
	}
	cm.enqueue(event)
}

func (cm *ConnectionManager) enqueue(event ports.UpdateEvent) {
	select {
	case cm.broadcast <- event:
	case <-cm.done:
	default:
		cm.logger.Warn("Dropping %s event: broadcast queue full", event.Type)
	}
}

func (cm *ConnectionManager) fanOut(event ports.UpdateEvent) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, conn := range cm.connections {
		select {
		case conn.Send <- event:
		default:
			cm.logger.Warn("Client %s too slow, disconnecting", id)
			delete(cm.connections, id)
			close(conn.Send)
		}
	}
}

// Register adds a connection; after CloseAll the connection is closed immediately
func (cm *ConnectionManager) Register(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.closed {
		close(conn.Send)
		return
	}
	cm.connections[conn.ID] = conn
}

// Unregister removes a connection and closes its channel
func (cm *ConnectionManager) Unregister(connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, ok := cm.connections[connID]; ok {
		delete(cm.connections, connID)
		close(conn.Send)
	}
}

// Count returns the number of connected clients
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// CloseAll closes all connections and refuses new ones
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.closed = true
	for id, conn := range cm.connections {
		close(conn.Send)
		delete(cm.connections, id)
	}
}

var _ ports.EventPublisher = (*ConnectionManager)(nil)
