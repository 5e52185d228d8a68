package config

import (
	"strconv"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

const (
	defaultUIPort          = 3000
	defaultResponseDelayMs = 500
)

// GetDefaultConfig returns built-in defaults, with MINISERVE_* variables already applied
func GetDefaultConfig() *entities.Config {
	cfg := &entities.Config{}

	cfg.Server = entities.ServerConfig{
		Host:            envOr(EnvHost, parseString, "localhost"),
		Port:            envOr(EnvPort, strconv.Atoi, defaultUIPort),
		ReadTimeout:     15,
		WriteTimeout:    15,
		ShutdownTimeout: 5,
		Environment:     envOr(EnvEnvironment, parseString, "development"),
		CORSOrigins: envOr(EnvCORSOrigins, parseList, []string{
			"http://localhost:" + strconv.Itoa(defaultUIPort),
			"http://127.0.0.1:" + strconv.Itoa(defaultUIPort),
		}),
		RateLimit: 20,
		RateBurst: 40,
	}

	cfg.Simulator = entities.SimulatorConfig{
		Port:               envOr(EnvSimPort, strconv.Atoi, entities.DefaultPort),
		ResponseDelayMs:    envOr(EnvResponseDelay, strconv.Atoi, defaultResponseDelayMs),
		RootDemoDelayMs:    1000,
		MissingDemoDelayMs: 3000,
	}

	if n, ok := lookupEnv(EnvMaxLogEntries, strconv.Atoi); ok && n >= 0 {
		cfg.Simulator.MaxLogEntries = &n
	}

	cfg.Preview.Sanitize = envOr(EnvSanitize, strconv.ParseBool, false)
	cfg.Browser.AutoOpen = !envOr(EnvNoBrowser, strconv.ParseBool, false)
	cfg.Browser.Browser = envOr(EnvBrowser, parseString, "default")
	cfg.Logging.Level = envOr(EnvLogLevel, parseString, "info")
	cfg.Logging.JSONFormat = envOr(EnvLogJSON, strconv.ParseBool, false)

	return cfg
}
