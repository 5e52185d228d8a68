package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/miniserve/internal/adapters/secondary/config"
	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
	"github.com/fredcamaral/miniserve/internal/domain/services"
	"github.com/fredcamaral/miniserve/internal/test/fakes"
)

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "serve", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().Int("port", 0, "")
	cmd.Flags().String("host", "", "")
	cmd.Flags().Bool("no-browser", false, "")
	cmd.Flags().Int("sim-port", 0, "")
	cmd.Flags().Int("response-delay", 0, "")
	cmd.Flags().Bool("sanitize", false, "")
	cmd.Flags().Bool("verbose", false, "")
	return cmd
}

func TestCollectFlags(t *testing.T) {
	t.Run("only changed flags are collected", func(t *testing.T) {
		cmd := newFlagCommand()
		require.NoError(t, cmd.Flags().Parse([]string{"--port", "4000", "--no-browser"}))

		assert.Equal(t, ports.FlagOverrides{
			"port":       4000,
			"no-browser": true,
		}, collectFlags(cmd))
	})

	t.Run("explicit false is kept", func(t *testing.T) {
		cmd := newFlagCommand()
		require.NoError(t, cmd.Flags().Parse([]string{"--sanitize=false", "--host", "0.0.0.0", "--response-delay", "250"}))

		flags := collectFlags(cmd)
		assert.Equal(t, false, flags["sanitize"])
		assert.Equal(t, "0.0.0.0", flags["host"])
		assert.Equal(t, 250, flags["response-delay"])
		assert.NotContains(t, flags, "sim-port")
	})

	t.Run("flags applied by the merger", func(t *testing.T) {
		cmd := newFlagCommand()
		require.NoError(t, cmd.Flags().Parse([]string{"--sim-port", "9090", "--verbose"}))

		cfg := config.NewConfigMerger().ApplyFlags(config.GetDefaultConfig(), collectFlags(cmd))
		assert.Equal(t, 9090, cfg.Simulator.Port)
		assert.Equal(t, entities.LogLevelDebug, cfg.Logging.GetLevel())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		cmd := &cobra.Command{Use: "bare"}
		assert.Empty(t, collectFlags(cmd))
	})
}

func TestValidateServeConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*entities.Config)
		wantErr string
	}{
		{"defaults", func(*entities.Config) {}, ""},
		{"zero port", func(c *entities.Config) { c.Server.Port = 0 }, "invalid port number"},
		{"port too high", func(c *entities.Config) { c.Server.Port = 70000 }, "invalid port number"},
		{"empty host", func(c *entities.Config) { c.Server.Host = "" }, "host cannot be empty"},
		{"ui port equals simulated port", func(c *entities.Config) {
			c.Server.Port = 8080
			c.Simulator.Port = 8080
		}, "also the simulated server port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &entities.Config{
				Server:    entities.ServerConfig{Host: "localhost", Port: 3000},
				Simulator: entities.SimulatorConfig{Port: 8080},
			}
			tt.mutate(cfg)

			err := validateServeConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json at warn", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(entities.LoggingConfig{Level: "warn", JSONFormat: true}, &buf)

		logger.Info("hidden")
		logger.Warn("shown", "port", 8080)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)

		var record map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
		assert.Equal(t, "shown", record["msg"])
		assert.Equal(t, "WARN", record["level"])
		assert.Equal(t, float64(8080), record["port"])
	})

	t.Run("text defaults to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(entities.LoggingConfig{}, &buf)

		logger.Debug("hidden")
		logger.Info("visible")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=visible")
	})
}

func TestBuildApp(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Preview.Sanitize = true
	cfg.Simulator.ResponseDelayMs = 1
	cfg.Simulator.RootDemoDelayMs = 60000
	cfg.Simulator.MissingDemoDelayMs = 60000

	app, err := buildApp(cfg, newLogger(entities.LoggingConfig{Level: "error"}, &bytes.Buffer{}))
	require.NoError(t, err)
	t.Cleanup(app.loop.Close)

	_, err = app.session.AddFile("x.html", `<p>hi</p><script>alert(1)</script>`)
	require.NoError(t, err)
	require.NoError(t, app.session.Start(cfg.Simulator.GetPort()))
	app.session.Simulate("/x.html")

	require.Eventually(t, func() bool {
		return strings.Contains(app.session.Preview(), "<p>hi</p>")
	}, 2*time.Second, 5*time.Millisecond)
	assert.NotContains(t, app.session.Preview(), "<script")

	rec := httptest.NewRecorder()
	app.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `miniserve_simulated_requests_total{path="/x.html"} 1`)
	assert.Contains(t, rec.Body.String(), `miniserve_simulated_responses_total{status="200"} 1`)
}

func TestDefaultConfig_KeepsEveryLogEntry(t *testing.T) {
	t.Setenv(config.EnvMaxLogEntries, "")
	cfg := config.GetDefaultConfig()

	session, err := services.NewSession(
		services.WithSimulatorConfig(cfg.Simulator),
		services.WithScheduler(fakes.NewManualScheduler(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))),
		services.WithLogger(newLogger(entities.LoggingConfig{Level: "error"}, &bytes.Buffer{})),
	)
	require.NoError(t, err)

	const appends = 1500
	for i := 0; i < appends; i++ {
		session.DeleteFile("missing.html")
	}

	logs := session.Logs()
	require.Len(t, logs, appends)
	assert.Equal(t, 1, logs[0].Seq)
	assert.Equal(t, appends, logs[appends-1].Seq)
}

func TestDisplayHost(t *testing.T) {
	assert.Equal(t, "localhost", displayHost(""))
	assert.Equal(t, "localhost", displayHost("0.0.0.0"))
	assert.Equal(t, "127.0.0.1", displayHost("127.0.0.1"))
}
