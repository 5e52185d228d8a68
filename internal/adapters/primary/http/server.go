package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// MetricsRecorder receives control server metrics
type MetricsRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	WebSocketOpened(endpoint string)
	WebSocketClosed(endpoint string)
	RecordRateLimitHit()
}

// MetricsExporter is a MetricsRecorder that can also serve its metrics
type MetricsExporter interface {
	MetricsRecorder
	Handler() http.Handler
}

// HealthReporter describes process health for the /health endpoint
type HealthReporter interface {
	IsHealthy() bool
	GetHealthStatus() map[string]interface{}
}

type noopMetrics struct{}

func (noopMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}
func (noopMetrics) WebSocketOpened(string)                               {}
func (noopMetrics) WebSocketClosed(string)                               {}
func (noopMetrics) RecordRateLimitHit()                                  {}

// Server serves the control UI, REST API, event stream and JSON-RPC endpoint
type Server struct {
	server   *http.Server
	session  ports.SessionService
	connMgr  *ConnectionManager
	config   *entities.ServerConfig
	logger   *HTTPLogger
	metrics  MetricsRecorder
	exporter MetricsExporter
	health   HealthReporter
	limiter  *rateLimiter
	version  string

	rpcMu    sync.Mutex
	rpcConns map[string]*jsonrpc2.Conn

	guideOnce sync.Once
	guideHTML []byte
	guideErr  error

	mu      sync.RWMutex
	running bool
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithMetrics records request metrics and, when m can serve them, exposes /metrics
func WithMetrics(m MetricsRecorder) ServerOption {
	return func(s *Server) {
		if m == nil {
			return
		}
		s.metrics = m
		if exporter, ok := m.(MetricsExporter); ok {
			s.exporter = exporter
		}
		if health, ok := m.(HealthReporter); ok {
			s.health = health
		}
	}
}

// WithLogger replaces the default logger
func WithLogger(l *HTTPLogger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version reported to clients
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a new control server.
// config must not be nil; use config.GetDefaultConfig().Server if needed.
// hub must be the same ConnectionManager the session publishes to.
func NewServer(session ports.SessionService, hub *ConnectionManager, config *entities.ServerConfig, opts ...ServerOption) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}
	if session == nil {
		panic("session cannot be nil")
	}

	s := &Server{
		session:  session,
		config:   config,
		logger:   NewHTTPLogger("server", false),
		metrics:  noopMetrics{},
		version:  "dev",
		rpcConns: make(map[string]*jsonrpc2.Conn),
	}
	for _, opt := range opts {
		opt(s)
	}

	if hub == nil {
		hub = NewConnectionManager(s.logger.With("hub"))
	}
	s.connMgr = hub

	limit, burst := config.GetRateLimit()
	s.limiter = newRateLimiter(limit, burst)

	return s
}

// Hub returns the connection manager events are fanned out through
func (s *Server) Hub() *ConnectionManager {
	return s.connMgr
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}

	go s.connMgr.Run(ctx)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.running = true
	srv := s.server
	s.mu.Unlock()

	go func() {
		s.logger.Info("HTTP server starting on %s:%d", host, port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.CloseAll()
	s.closeRPCConns()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.running = false
	return nil
}

// Broadcast pushes event to every feed client; it fails while the server is stopped
func (s *Server) Broadcast(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Publish(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler returns the complete handler chain, CORS included
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler(s.setupRoutes())
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()
	router.Use(routeMetrics(s.metrics))

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/guide", s.handleGuide).Methods(http.MethodGet)
	router.HandleFunc("/preview", s.handlePreview).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/server/start", s.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/server/stop", s.handleStop).Methods(http.MethodPost)
	api.HandleFunc("/server/port", s.handleSetPort).Methods(http.MethodPut)
	api.HandleFunc("/files", s.handleListFiles).Methods(http.MethodGet)
	api.HandleFunc("/files", s.handleAddFile).Methods(http.MethodPost)
	api.HandleFunc("/files/{name}", s.handleGetFile).Methods(http.MethodGet)
	api.HandleFunc("/files/{name}", s.handleDeleteFile).Methods(http.MethodDelete)
	api.HandleFunc("/logs", s.handleListLogs).Methods(http.MethodGet)
	api.HandleFunc("/logs", s.handleClearLogs).Methods(http.MethodDelete)
	api.HandleFunc("/requests", s.handleSimulate).Methods(http.MethodPost)

	router.HandleFunc("/ws", s.handleFeed).Methods(http.MethodGet)
	router.HandleFunc("/rpc", s.handleRPC).Methods(http.MethodGet)

	if s.exporter != nil {
		router.Handle("/metrics", s.exporter.Handler()).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("no route for %s", r.URL.Path), http.StatusNotFound)
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("%s not allowed on %s", r.Method, r.URL.Path), http.StatusMethodNotAllowed)
	})
	// Subrouters do not inherit it
	router.MethodNotAllowedHandler = methodNotAllowed
	api.MethodNotAllowedHandler = methodNotAllowed

	mwLogger := s.logger.With("middleware")
	return chain(router,
		withRecovery(mwLogger),
		withRequestLog(mwLogger),
		withRateLimit(s.limiter, s.metrics),
		withSecurityHeaders,
	)
}

var _ ports.ControlServer = (*Server)(nil)
