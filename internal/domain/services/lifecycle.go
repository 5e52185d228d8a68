package services

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// DemoRequest is a request the lifecycle plays out by itself after start
type DemoRequest struct {
	Path  string
	Delay time.Duration
}

// DefaultDemoRequests are the requests scheduled on every start
func DefaultDemoRequests() []DemoRequest {
	return []DemoRequest{
		{Path: "/", Delay: time.Second},
		{Path: "/nonexistent.html", Delay: 3 * time.Second},
	}
}

// Lifecycle is the Stopped/Running state machine of the simulated server.
// It is not safe for concurrent use; Session serializes access.
type Lifecycle struct {
	state     entities.ServerState
	logs      *LogStream
	simulator *RequestSimulator
	preview   ports.PreviewSink
	scheduler ports.Scheduler
	demos     []DemoRequest
	lock      sync.Locker
	logger    *slog.Logger
}

// NewLifecycle creates a stopped lifecycle on port
func NewLifecycle(
	port int,
	logs *LogStream,
	simulator *RequestSimulator,
	preview ports.PreviewSink,
	scheduler ports.Scheduler,
	demos []DemoRequest,
	lock sync.Locker,
	logger *slog.Logger,
) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	if lock == nil {
		lock = &sync.Mutex{}
	}

	return &Lifecycle{
		state:     entities.ServerState{Port: port},
		logs:      logs,
		simulator: simulator,
		preview:   preview,
		scheduler: scheduler,
		demos:     demos,
		lock:      lock,
		logger:    logger.With("service", "lifecycle"),
	}
}

// State returns the current server state
func (l *Lifecycle) State() entities.ServerState {
	return l.state
}

// Running reports whether the simulated server is running
func (l *Lifecycle) Running() bool {
	return l.state.Running
}

// Port returns the simulated port
func (l *Lifecycle) Port() int {
	return l.state.Port
}

// SetPort changes the port while stopped
func (l *Lifecycle) SetPort(port int) error {
	if l.state.Running {
		if port == l.state.Port {
			return nil
		}
		return entities.ErrPortLocked
	}
	if err := entities.ValidatePort(port); err != nil {
		return err
	}
	l.state.Port = port
	return nil
}

// Start validates port and moves to Running. An invalid port fails
// before anything changes. Starting while already running re-runs the
// startup side effects; the server stays running on its current port.
func (l *Lifecycle) Start(port int) error {
	if err := entities.ValidatePort(port); err != nil {
		return err
	}

	if l.state.Running && port != l.state.Port {
		return entities.ErrPortLocked
	}

	l.state.Port = port
	l.state.Running = true

	l.logs.Append(entities.LogKindInfo, fmt.Sprintf("Server started on port %d", port))
	l.logs.Append(entities.LogKindSuccess, fmt.Sprintf("Socket bound to 127.0.0.1:%d", port))
	l.logs.Append(entities.LogKindInfo, "Server is listening for connections...")

	for _, demo := range l.demos {
		path := demo.Path
		l.scheduler.AfterFunc(demo.Delay, func() {
			l.lock.Lock()
			defer l.lock.Unlock()
			l.simulator.Simulate(path)
		})
	}

	l.logger.Info("Simulated server started",
		slog.Int("port", port),
		slog.Int("demo_requests", len(l.demos)),
	)

	return nil
}

// Stop moves to Stopped and blanks the preview. Responses already
// scheduled still complete.
func (l *Lifecycle) Stop() {
	l.state.Running = false

	l.logs.Append(entities.LogKindInfo, "Socket closed")
	l.logs.Append(entities.LogKindInfo, "Server stopped")

	l.preview.Render(entities.NotRunningHTML)

	l.logger.Info("Simulated server stopped", slog.Int("port", l.state.Port))
}
