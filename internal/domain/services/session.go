package services

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// Session owns one simulated server: its file store, log stream, request
// simulator and lifecycle. Every operation and every delayed continuation
// runs under a single mutex, so the components see strictly sequential
// events even though timers fire on other goroutines.
type Session struct {
	mu sync.Mutex

	files     *FileStore
	logs      *LogStream
	simulator *RequestSimulator
	lifecycle *Lifecycle

	preview       string
	previewFilter func(string) string
	publisher     ports.EventPublisher
	clock         ports.Clock
	logger        *slog.Logger
}

// SessionOption configures a Session
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	config        entities.SimulatorConfig
	scheduler     ports.Scheduler
	clock         ports.Clock
	observer      ports.SimulationObserver
	publisher     ports.EventPublisher
	previewFilter func(string) string
	demos         []DemoRequest
	logger        *slog.Logger
}

// WithSimulatorConfig sets port, delays, log cap and seeding from config
func WithSimulatorConfig(cfg entities.SimulatorConfig) SessionOption {
	return func(o *sessionOptions) { o.config = cfg }
}

// WithScheduler sets the scheduler used for delayed continuations
func WithScheduler(s ports.Scheduler) SessionOption {
	return func(o *sessionOptions) { o.scheduler = s }
}

// WithClock sets the clock used to stamp log entries
func WithClock(c ports.Clock) SessionOption {
	return func(o *sessionOptions) { o.clock = c }
}

// WithObserver sets an observer for simulated exchanges
func WithObserver(obs ports.SimulationObserver) SessionOption {
	return func(o *sessionOptions) { o.observer = obs }
}

// WithEventPublisher sets where session changes are published
func WithEventPublisher(p ports.EventPublisher) SessionOption {
	return func(o *sessionOptions) { o.publisher = p }
}

// WithPreviewFilter transforms every document before it reaches the preview
func WithPreviewFilter(fn func(string) string) SessionOption {
	return func(o *sessionOptions) { o.previewFilter = fn }
}

// WithDemoRequests overrides the requests scheduled on start
func WithDemoRequests(demos []DemoRequest) SessionOption {
	return func(o *sessionOptions) { o.demos = demos }
}

// WithLogger sets the process logger
func WithLogger(l *slog.Logger) SessionOption {
	return func(o *sessionOptions) { o.logger = l }
}

// NewSession creates a stopped session. A scheduler is required.
func NewSession(opts ...SessionOption) (*Session, error) {
	o := &sessionOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.scheduler == nil {
		return nil, fmt.Errorf("session: scheduler is required")
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.clock == nil {
		o.clock = ports.SystemClock
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if o.demos == nil {
		o.demos = []DemoRequest{
			{Path: "/", Delay: o.config.GetRootDemoDelay()},
			{Path: "/nonexistent.html", Delay: o.config.GetMissingDemoDelay()},
		}
	}

	s := &Session{
		preview:       entities.NotRunningHTML,
		previewFilter: o.previewFilter,
		publisher:     o.publisher,
		clock:         o.clock,
		logger:        o.logger.With("service", "session"),
	}

	var seed []entities.VirtualFile
	if !o.config.NoSeedFiles {
		seed = entities.SeedFiles()
	}
	s.files = NewFileStore(seed...)

	s.logs = NewLogStream(o.clock, o.config.GetMaxLogEntries())
	s.logs.OnAppend(s.entryAppended)
	s.logs.OnClear(s.logsCleared)

	sink := ports.PreviewSinkFunc(s.render)

	s.simulator = NewRequestSimulator(SimulatorDeps{
		Files:     s.files,
		Logs:      s.logs,
		Preview:   sink,
		Scheduler: o.scheduler,
		Observer:  o.observer,
		Port:      func() int { return s.lifecycle.Port() },
		Lock:      &s.mu,
		Logger:    o.logger,
	}, o.config.GetResponseDelay())

	s.lifecycle = NewLifecycle(
		o.config.GetPort(),
		s.logs,
		s.simulator,
		sink,
		o.scheduler,
		o.demos,
		&s.mu,
		o.logger,
	)

	return s, nil
}

// Start validates port and starts the simulated server
func (s *Session) Start(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lifecycle.Start(port); err != nil {
		return err
	}
	s.publishState()
	return nil
}

// Stop stops the simulated server
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lifecycle.Stop()
	s.publishState()
}

// SetPort changes the simulated port while stopped
func (s *Session) SetPort(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lifecycle.SetPort(port); err != nil {
		return err
	}
	s.publishState()
	return nil
}

// AddFile creates a file and returns its normalized name. Adding index.html
// while running triggers a request for it so the preview follows.
func (s *Session) AddFile(name, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.files.Add(name, content)
	if err != nil {
		return "", err
	}

	s.logs.Append(entities.LogKindInfo, fmt.Sprintf("File %s created", file.Name))

	if s.lifecycle.Running() && file.Name == entities.IndexFileName {
		s.simulator.Simulate("/" + entities.IndexFileName)
	}

	s.publishState()
	return file.Name, nil
}

// DeleteFile removes a file. Deleting a missing file is not an error.
func (s *Session) DeleteFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.files.Delete(name)
	s.logs.Append(entities.LogKindInfo, fmt.Sprintf("File %s deleted", name))

	if removed {
		s.publishState()
	}
}

// ClearLogs empties the log stream
func (s *Session) ClearLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs.Clear()
}

// Simulate plays out a request for path, which gains a leading slash if missing
func (s *Session) Simulate(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	s.simulator.Simulate(path)
}

// State returns the running flag and port
func (s *Session) State() entities.ServerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.State()
}

// Files returns the files in creation order
func (s *Session) Files() []entities.VirtualFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.List()
}

// File looks a file up by name
func (s *Session) File(name string) (entities.VirtualFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Find(name)
}

// Logs returns the log stream, oldest first
func (s *Session) Logs() []entities.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs.View()
}

// Preview returns the document last rendered to the preview pane
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// Snapshot returns the complete read model
func (s *Session) Snapshot() ports.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ports.Snapshot{
		State:   s.lifecycle.State(),
		Files:   s.files.List(),
		Logs:    s.logs.View(),
		Preview: s.preview,
	}
}

// render is the preview sink of the simulator and lifecycle. Called with s.mu held.
func (s *Session) render(html string) {
	if s.previewFilter != nil {
		html = s.previewFilter(html)
	}
	s.preview = html
	s.publish(ports.EventTypePreview, map[string]interface{}{"html": html})
}

// entryAppended mirrors log entries to the process log and UI clients. Called with s.mu held.
func (s *Session) entryAppended(entry entities.LogEntry) {
	s.logger.Debug("Simulated log entry",
		slog.Int("seq", entry.Seq),
		slog.String("kind", entry.Kind.String()),
		slog.String("message", entry.Message),
	)
	s.publish(ports.EventTypeLog, entry)
}

func (s *Session) logsCleared() {
	s.publish(ports.EventTypeLogsCleared, nil)
}

func (s *Session) publishState() {
	s.publish(ports.EventTypeState, map[string]interface{}{
		"state": s.lifecycle.State(),
		"files": s.files.Names(),
	})
}

func (s *Session) publish(eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ports.UpdateEvent{
		Type:      eventType,
		Timestamp: s.clock.Now(),
		Data:      data,
	})
}

// Ensure Session implements ports.SessionService
var _ ports.SessionService = (*Session)(nil)
