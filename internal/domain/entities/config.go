package entities

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Simulator SimulatorConfig `toml:"simulator" yaml:"simulator"`
	Preview   PreviewConfig   `toml:"preview" yaml:"preview"`
	Browser   BrowserConfig   `toml:"browser" yaml:"browser"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
}

// Validate checks each section, prefixing errors with the section name
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Simulator.Validate(); err != nil {
		return fmt.Errorf("simulator config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ServerConfig configures the local control UI server.
// This is the one real listener; the simulated server never binds a socket.
type ServerConfig struct {
	Host            string   `toml:"host" yaml:"host"`
	Port            int      `toml:"port" yaml:"port"`
	ReadTimeout     int      `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	Environment     string   `toml:"environment" yaml:"environment"`
	CORSOrigins     []string `toml:"cors_origins" yaml:"cors_origins"`
	RateLimit       float64  `toml:"rate_limit" yaml:"rate_limit"` // requests per second per client
	RateBurst       int      `toml:"rate_burst" yaml:"rate_burst"`
}

// Validate checks ports, host, timeouts, rate limit and CORS origins
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}
	if err := validateHost(s.Host); err != nil {
		return err
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"read timeout", float64(s.ReadTimeout)},
		{"write timeout", float64(s.WriteTimeout)},
		{"shutdown timeout", float64(s.ShutdownTimeout)},
		{"rate limit", s.RateLimit},
	}
	for _, field := range nonNegative {
		if field.value < 0 {
			return fmt.Errorf("%s must be non-negative", field.name)
		}
	}

	for _, origin := range s.CORSOrigins {
		if err := validateOrigin(origin); err != nil {
			return err
		}
	}
	return nil
}

// validateHost accepts "", localhost, IP literals and names that resolve
func validateHost(host string) error {
	if host == "" || host == "localhost" || net.ParseIP(host) != nil {
		return nil
	}
	if _, err := net.LookupHost(host); err != nil {
		return fmt.Errorf("invalid host: %w", err)
	}
	return nil
}

// validateOrigin accepts "*" and absolute http(s) origins
func validateOrigin(origin string) error {
	switch origin {
	case "":
		return errors.New("CORS origin cannot be empty")
	case "*":
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
	}
	return nil
}

// secondsOr converts a seconds field, using fallback for non-positive values
func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// millisOr converts a milliseconds field, using fallback for non-positive values
func millisOr(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func (s ServerConfig) GetReadTimeout() time.Duration { return secondsOr(s.ReadTimeout, 15*time.Second) }

func (s ServerConfig) GetWriteTimeout() time.Duration { return secondsOr(s.WriteTimeout, 15*time.Second) }

func (s ServerConfig) GetShutdownTimeout() time.Duration {
	return secondsOr(s.ShutdownTimeout, 5*time.Second)
}

// GetCORSOrigins falls back to the control UI's own default origins
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) > 0 {
		return s.CORSOrigins
	}
	return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
}

// GetRateLimit returns the per-client request rate and burst
func (s ServerConfig) GetRateLimit() (float64, int) {
	limit, burst := s.RateLimit, s.RateBurst
	if limit <= 0 {
		limit = 20
	}
	if burst <= 0 {
		burst = 40
	}
	return limit, burst
}

// IsDevelopment treats an unset environment as development
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "" || s.Environment == "development"
}

// SimulatorConfig configures the simulated HTTP server
type SimulatorConfig struct {
	Port               int `toml:"port" yaml:"port"`
	ResponseDelayMs    int `toml:"response_delay_ms" yaml:"response_delay_ms"`
	RootDemoDelayMs    int `toml:"root_demo_delay_ms" yaml:"root_demo_delay_ms"`
	MissingDemoDelayMs int `toml:"missing_demo_delay_ms" yaml:"missing_demo_delay_ms"`
	// MaxLogEntries caps the log stream. nil means unset; an explicit 0 is unbounded.
	MaxLogEntries *int `toml:"max_log_entries,omitempty" yaml:"max_log_entries,omitempty"`
	NoSeedFiles   bool `toml:"no_seed_files" yaml:"no_seed_files"`
}

// Validate validates simulator configuration
func (s SimulatorConfig) Validate() error {
	if s.Port != 0 {
		if err := ValidatePort(s.Port); err != nil {
			return err
		}
	}

	if s.ResponseDelayMs < 0 || s.RootDemoDelayMs < 0 || s.MissingDemoDelayMs < 0 {
		return errors.New("delays must be non-negative")
	}

	if s.MaxLogEntries != nil && *s.MaxLogEntries < 0 {
		return errors.New("max log entries must be non-negative")
	}

	return nil
}

// GetMaxLogEntries returns the log stream cap; 0, the default, keeps every entry
func (s SimulatorConfig) GetMaxLogEntries() int {
	if s.MaxLogEntries == nil || *s.MaxLogEntries < 0 {
		return 0
	}
	return *s.MaxLogEntries
}

// GetPort returns the default simulated port
func (s SimulatorConfig) GetPort() int {
	if s.Port == 0 {
		return DefaultPort
	}
	return s.Port
}

// GetResponseDelay is the gap between a simulated request and its response
func (s SimulatorConfig) GetResponseDelay() time.Duration {
	return millisOr(s.ResponseDelayMs, 500*time.Millisecond)
}

// GetRootDemoDelay is how long after start the demo request for "/" fires
func (s SimulatorConfig) GetRootDemoDelay() time.Duration {
	return millisOr(s.RootDemoDelayMs, time.Second)
}

// GetMissingDemoDelay is how long after start the demo request for a missing page fires
func (s SimulatorConfig) GetMissingDemoDelay() time.Duration {
	return millisOr(s.MissingDemoDelayMs, 3*time.Second)
}

// PreviewConfig configures the preview pane
type PreviewConfig struct {
	Sanitize bool `toml:"sanitize" yaml:"sanitize"`
}

// BrowserConfig contains browser launch configuration
type BrowserConfig struct {
	AutoOpen bool   `toml:"auto_open" yaml:"auto_open"`
	Browser  string `toml:"browser" yaml:"browser"`
}

// LogLevel is one of debug, info, warn or error
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level"` // debug, info, warn, error
	Verbose    bool   `toml:"verbose" yaml:"verbose"`
	JSONFormat bool   `toml:"json_format" yaml:"json_format"`
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	case "":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}
	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}
