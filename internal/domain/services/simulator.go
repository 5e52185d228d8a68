package services

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// RequestSimulator plays out fake HTTP exchanges against the file store.
//
// Simulate logs the request immediately and schedules the response. The
// response resolves the path when it fires, not when it was scheduled, so a
// file added or deleted in between is honoured. Pending responses are never
// cancelled and never coalesced; concurrent simulations complete in the order
// their delays elapse.
type RequestSimulator struct {
	files     *FileStore
	logs      *LogStream
	preview   ports.PreviewSink
	scheduler ports.Scheduler
	observer  ports.SimulationObserver
	port      func() int
	delay     time.Duration
	lock      sync.Locker
	logger    *slog.Logger
}

// SimulatorDeps groups the collaborators of a RequestSimulator
type SimulatorDeps struct {
	Files     *FileStore
	Logs      *LogStream
	Preview   ports.PreviewSink
	Scheduler ports.Scheduler
	Observer  ports.SimulationObserver

	// Port reports the simulated port at request time
	Port func() int

	// Lock guards the shared state while a delayed response completes
	Lock sync.Locker

	Logger *slog.Logger
}

// NewRequestSimulator creates a simulator with the given response delay
func NewRequestSimulator(deps SimulatorDeps, delay time.Duration) *RequestSimulator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Lock == nil {
		deps.Lock = &sync.Mutex{}
	}
	if deps.Port == nil {
		deps.Port = func() int { return entities.DefaultPort }
	}
	if delay <= 0 {
		delay = time.Millisecond
	}

	return &RequestSimulator{
		files:     deps.Files,
		logs:      deps.Logs,
		preview:   deps.Preview,
		scheduler: deps.Scheduler,
		observer:  deps.Observer,
		port:      deps.Port,
		delay:     delay,
		lock:      deps.Lock,
		logger:    logger.With("service", "request_simulator"),
	}
}

// Delay returns the configured response delay
func (s *RequestSimulator) Delay() time.Duration {
	return s.delay
}

// Simulate logs a request for path and schedules its response.
// The caller must hold the shared lock.
func (s *RequestSimulator) Simulate(path string) {
	s.logs.Append(entities.LogKindRequest, RequestMessage(path, s.port()))
	s.logs.Append(entities.LogKindInfo, fmt.Sprintf("Processing request for %s", path))

	if s.observer != nil {
		s.observer.RequestSimulated(path)
	}

	s.logger.Debug("Simulated request scheduled",
		slog.String("path", path),
		slog.Duration("delay", s.delay),
	)

	s.scheduler.AfterFunc(s.delay, func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		s.respond(path)
	})
}

// respond completes a simulated request. The caller must hold the shared lock.
func (s *RequestSimulator) respond(path string) {
	name := ResolvePath(path)

	if file, ok := s.files.Find(name); ok {
		s.logs.Append(entities.LogKindResponse, OKMessage(file.Size()))
		s.preview.Render(file.Content)
		s.observe(path, http.StatusOK, file.Size())
		return
	}

	s.logs.Append(entities.LogKindResponse, NotFoundMessage())

	page := entities.NotFoundFallbackHTML
	if notFound, ok := s.files.Find(entities.NotFoundFileName); ok {
		page = notFound.Content
	}
	s.preview.Render(page)
	s.observe(path, http.StatusNotFound, len(page))
}

func (s *RequestSimulator) observe(path string, status, size int) {
	s.logger.Debug("Simulated response completed",
		slog.String("path", path),
		slog.Int("status", status),
		slog.Int("bytes", size),
	)
	if s.observer != nil {
		s.observer.ResponseSimulated(path, status, size)
	}
}

// ResolvePath maps a request path to a file name. "/" resolves to index.html.
func ResolvePath(path string) string {
	if path == "/" {
		return entities.IndexFileName
	}
	return strings.TrimPrefix(path, "/")
}

// RequestMessage is the request log text for path
func RequestMessage(path string, port int) string {
	return fmt.Sprintf("GET %s HTTP/1.1\nHost: localhost:%d\nUser-Agent: Mozilla/5.0\nAccept: text/html", path, port)
}

// OKMessage is the response log text for a resolved file
func OKMessage(contentLength int) string {
	return fmt.Sprintf("HTTP/1.1 200 OK\nContent-Type: text/html\nContent-Length: %d\n\n[HTML content served]", contentLength)
}

// NotFoundMessage is the response log text for an unresolved path
func NotFoundMessage() string {
	return "HTTP/1.1 404 Not Found\nContent-Type: text/html\n\n[404 Page content served]"
}
