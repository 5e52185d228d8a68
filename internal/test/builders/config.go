package builders

import (
	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

// ConfigBuilder helps build Config entities for testing
type ConfigBuilder struct {
	config *entities.Config
}

// NewConfigBuilder creates a config builder with fixed defaults.
// Unlike config.GetDefaultConfig it never reads the environment.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: &entities.Config{
			Server: entities.ServerConfig{
				Host:            "localhost",
				Port:            3000,
				ReadTimeout:     30,
				WriteTimeout:    30,
				ShutdownTimeout: 5,
				Environment:     "development",
				RateLimit:       1000,
				RateBurst:       1000,
			},
			Simulator: entities.SimulatorConfig{
				Port:               entities.DefaultPort,
				ResponseDelayMs:    500,
				RootDemoDelayMs:    1000,
				MissingDemoDelayMs: 3000,
			},
			Logging: entities.LoggingConfig{Level: string(entities.LogLevelInfo)},
		},
	}
}

// WithUIPort sets the control UI port
func (b *ConfigBuilder) WithUIPort(port int) *ConfigBuilder {
	b.config.Server.Port = port
	return b
}

// WithEnvironment sets the control UI environment
func (b *ConfigBuilder) WithEnvironment(env string) *ConfigBuilder {
	b.config.Server.Environment = env
	return b
}

// WithCORSOrigins sets the allowed origins
func (b *ConfigBuilder) WithCORSOrigins(origins ...string) *ConfigBuilder {
	b.config.Server.CORSOrigins = origins
	return b
}

// WithRateLimit sets the per-client rate and burst
func (b *ConfigBuilder) WithRateLimit(perSecond float64, burst int) *ConfigBuilder {
	b.config.Server.RateLimit = perSecond
	b.config.Server.RateBurst = burst
	return b
}

// WithSimPort sets the initial simulated port
func (b *ConfigBuilder) WithSimPort(port int) *ConfigBuilder {
	b.config.Simulator.Port = port
	return b
}

// WithResponseDelay sets the simulated response delay in milliseconds
func (b *ConfigBuilder) WithResponseDelay(ms int) *ConfigBuilder {
	b.config.Simulator.ResponseDelayMs = ms
	return b
}

// WithDemoDelays sets the startup demo delays in milliseconds
func (b *ConfigBuilder) WithDemoDelays(rootMs, missingMs int) *ConfigBuilder {
	b.config.Simulator.RootDemoDelayMs = rootMs
	b.config.Simulator.MissingDemoDelayMs = missingMs
	return b
}

// WithMaxLogEntries caps the log stream
func (b *ConfigBuilder) WithMaxLogEntries(n int) *ConfigBuilder {
	b.config.Simulator.MaxLogEntries = &n
	return b
}

// WithoutSeedFiles starts sessions with an empty file store
func (b *ConfigBuilder) WithoutSeedFiles() *ConfigBuilder {
	b.config.Simulator.NoSeedFiles = true
	return b
}

// WithSanitizedPreview enables preview sanitization
func (b *ConfigBuilder) WithSanitizedPreview() *ConfigBuilder {
	b.config.Preview.Sanitize = true
	return b
}

// WithLogLevel sets the log level
func (b *ConfigBuilder) WithLogLevel(level entities.LogLevel) *ConfigBuilder {
	b.config.Logging.Level = string(level)
	return b
}

// Build returns a copy of the built config
func (b *ConfigBuilder) Build() *entities.Config {
	cfg := *b.config
	cfg.Server.CORSOrigins = append([]string(nil), b.config.Server.CORSOrigins...)
	if b.config.Simulator.MaxLogEntries != nil {
		n := *b.config.Simulator.MaxLogEntries
		cfg.Simulator.MaxLogEntries = &n
	}
	return &cfg
}
