package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		config := &Config{
			Server: ServerConfig{
				Host:            "localhost",
				Port:            3000,
				ReadTimeout:     30,
				WriteTimeout:    30,
				ShutdownTimeout: 5,
			},
			Simulator: SimulatorConfig{
				Port:            8080,
				ResponseDelayMs: 500,
			},
			Browser: BrowserConfig{
				AutoOpen: true,
				Browser:  "default",
			},
			Logging: LoggingConfig{Level: "info"},
		}

		assert.NoError(t, config.Validate())
	})

	t.Run("zero config is valid", func(t *testing.T) {
		assert.NoError(t, (&Config{}).Validate())
	})

	t.Run("invalid server config", func(t *testing.T) {
		config := &Config{Server: ServerConfig{Port: -1}}

		err := config.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "server config")
	})

	t.Run("invalid simulator config", func(t *testing.T) {
		config := &Config{Simulator: SimulatorConfig{Port: 80}}

		err := config.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "simulator config")
		assert.True(t, errors.Is(err, ErrInvalidPort))
	})

	t.Run("invalid logging config", func(t *testing.T) {
		config := &Config{Logging: LoggingConfig{Level: "loud"}}

		err := config.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logging config")
	})
}

func TestServerConfig_Validate(t *testing.T) {
	t.Run("valid server config", func(t *testing.T) {
		config := ServerConfig{
			Host:            "localhost",
			Port:            3000,
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 5,
		}

		assert.NoError(t, config.Validate())
	})

	t.Run("invalid port", func(t *testing.T) {
		for _, port := range []int{-1, 70000} {
			err := ServerConfig{Port: port}.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "port must be between 0 and 65535")
		}
	})

	t.Run("valid port range", func(t *testing.T) {
		for _, port := range []int{0, 1, 3000, 8080, 65535} {
			assert.NoError(t, ServerConfig{Port: port}.Validate(), "Port %d should be valid", port)
		}
	})

	t.Run("negative values", func(t *testing.T) {
		tests := []struct {
			name   string
			config ServerConfig
		}{
			{"negative read timeout", ServerConfig{Port: 3000, ReadTimeout: -1}},
			{"negative write timeout", ServerConfig{Port: 3000, WriteTimeout: -1}},
			{"negative shutdown timeout", ServerConfig{Port: 3000, ShutdownTimeout: -1}},
			{"negative rate limit", ServerConfig{Port: 3000, RateLimit: -1}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Error(t, tt.config.Validate())
			})
		}
	})
}

func TestServerConfig_GetTimeouts(t *testing.T) {
	t.Run("custom timeouts", func(t *testing.T) {
		config := ServerConfig{
			ReadTimeout:     45,
			WriteTimeout:    60,
			ShutdownTimeout: 10,
		}

		assert.Equal(t, 45*time.Second, config.GetReadTimeout())
		assert.Equal(t, 60*time.Second, config.GetWriteTimeout())
		assert.Equal(t, 10*time.Second, config.GetShutdownTimeout())
	})

	t.Run("negative timeouts use defaults", func(t *testing.T) {
		config := ServerConfig{
			ReadTimeout:     -5,
			WriteTimeout:    -10,
			ShutdownTimeout: -2,
		}

		assert.Equal(t, 15*time.Second, config.GetReadTimeout())
		assert.Equal(t, 15*time.Second, config.GetWriteTimeout())
		assert.Equal(t, 5*time.Second, config.GetShutdownTimeout())
	})
}

func TestServerConfig_GetRateLimit(t *testing.T) {
	limit, burst := ServerConfig{}.GetRateLimit()
	assert.Equal(t, 20.0, limit)
	assert.Equal(t, 40, burst)

	limit, burst = ServerConfig{RateLimit: 2.5, RateBurst: 5}.GetRateLimit()
	assert.Equal(t, 2.5, limit)
	assert.Equal(t, 5, burst)
}

func TestSimulatorConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var config SimulatorConfig

		assert.NoError(t, config.Validate())
		assert.Equal(t, DefaultPort, config.GetPort())
		assert.Equal(t, 500*time.Millisecond, config.GetResponseDelay())
		assert.Equal(t, time.Second, config.GetRootDemoDelay())
		assert.Equal(t, 3*time.Second, config.GetMissingDemoDelay())
	})

	t.Run("custom values", func(t *testing.T) {
		config := SimulatorConfig{
			Port:               3000,
			ResponseDelayMs:    50,
			RootDemoDelayMs:    100,
			MissingDemoDelayMs: 200,
		}

		assert.NoError(t, config.Validate())
		assert.Equal(t, 3000, config.GetPort())
		assert.Equal(t, 50*time.Millisecond, config.GetResponseDelay())
		assert.Equal(t, 100*time.Millisecond, config.GetRootDemoDelay())
		assert.Equal(t, 200*time.Millisecond, config.GetMissingDemoDelay())
	})

	t.Run("invalid values", func(t *testing.T) {
		assert.ErrorIs(t, SimulatorConfig{Port: 70000}.Validate(), ErrInvalidPort)
		assert.Error(t, SimulatorConfig{ResponseDelayMs: -1}.Validate())
		negative := -1
		assert.Error(t, SimulatorConfig{MaxLogEntries: &negative}.Validate())
	})
}

func TestLoggingConfig(t *testing.T) {
	assert.Equal(t, LogLevelInfo, LoggingConfig{}.GetLevel())
	assert.Equal(t, LogLevelDebug, LoggingConfig{Level: "debug"}.GetLevel())

	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		assert.NoError(t, LoggingConfig{Level: level}.Validate())
	}
	assert.Error(t, LoggingConfig{Level: "trace"}.Validate())
}
