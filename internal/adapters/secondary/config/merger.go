package config

import (
	"strconv"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// ConfigMerger implements ports.ConfigMerger
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges configs; later non-zero values win
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])
	if result == nil {
		result = &entities.Config{}
	}

	for _, cfg := range configs[1:] {
		if cfg != nil {
			m.mergeInto(result, cfg)
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides. Only flags present in the map are applied.
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags ports.FlagOverrides) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if noBrowser, ok := flags["no-browser"].(bool); ok {
		result.Browser.AutoOpen = !noBrowser
	}

	if simPort, ok := flags["sim-port"].(int); ok && simPort > 0 {
		result.Simulator.Port = simPort
	}

	if delay, ok := flags["response-delay"].(int); ok && delay > 0 {
		result.Simulator.ResponseDelayMs = delay
	}

	if sanitize, ok := flags["sanitize"].(bool); ok {
		result.Preview.Sanitize = sanitize
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
		result.Logging.Level = string(entities.LogLevelDebug)
	}

	return result
}

// ApplyEnvVars applies MINISERVE_* environment overrides.
// Negative numbers and non-positive ports are ignored.
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	if v, ok := lookupEnv(EnvHost, parseString); ok {
		result.Server.Host = v
	}
	if v, ok := lookupEnv(EnvPort, strconv.Atoi); ok && v > 0 {
		result.Server.Port = v
	}
	if v, ok := lookupEnv(EnvEnvironment, parseString); ok {
		result.Server.Environment = v
	}
	if v, ok := lookupEnv(EnvCORSOrigins, parseList); ok {
		result.Server.CORSOrigins = v
	}

	if v, ok := lookupEnv(EnvSimPort, strconv.Atoi); ok && v > 0 {
		result.Simulator.Port = v
	}
	if v, ok := lookupEnv(EnvResponseDelay, strconv.Atoi); ok && v >= 0 {
		result.Simulator.ResponseDelayMs = v
	}
	if v, ok := lookupEnv(EnvMaxLogEntries, strconv.Atoi); ok && v >= 0 {
		result.Simulator.MaxLogEntries = &v
	}

	if v, ok := lookupEnv(EnvSanitize, strconv.ParseBool); ok {
		result.Preview.Sanitize = v
	}
	if v, ok := lookupEnv(EnvNoBrowser, strconv.ParseBool); ok {
		result.Browser.AutoOpen = !v
	}
	if v, ok := lookupEnv(EnvBrowser, parseString); ok {
		result.Browser.Browser = v
	}
	if v, ok := lookupEnv(EnvLogLevel, parseString); ok {
		result.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvLogJSON, strconv.ParseBool); ok {
		result.Logging.JSONFormat = v
	}

	return result
}

func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = append([]string(nil), source.Server.CORSOrigins...)
	}
	if source.Server.RateLimit != 0 {
		target.Server.RateLimit = source.Server.RateLimit
	}
	if source.Server.RateBurst != 0 {
		target.Server.RateBurst = source.Server.RateBurst
	}

	// Simulator
	if source.Simulator.Port != 0 {
		target.Simulator.Port = source.Simulator.Port
	}
	if source.Simulator.ResponseDelayMs != 0 {
		target.Simulator.ResponseDelayMs = source.Simulator.ResponseDelayMs
	}
	if source.Simulator.RootDemoDelayMs != 0 {
		target.Simulator.RootDemoDelayMs = source.Simulator.RootDemoDelayMs
	}
	if source.Simulator.MissingDemoDelayMs != 0 {
		target.Simulator.MissingDemoDelayMs = source.Simulator.MissingDemoDelayMs
	}
	// Set means present in the layer, so a 0 can lift an earlier cap
	if source.Simulator.MaxLogEntries != nil {
		n := *source.Simulator.MaxLogEntries
		target.Simulator.MaxLogEntries = &n
	}
	if source.Simulator.NoSeedFiles {
		target.Simulator.NoSeedFiles = true
	}

	// Opt-in flags only ever turn on from a later layer
	if source.Preview.Sanitize {
		target.Preview.Sanitize = true
	}

	// Browser. TOML cannot distinguish false from unset, so auto_open
	// always follows the later layer.
	if source.Browser.Browser != "" {
		target.Browser.Browser = source.Browser.Browser
	}
	target.Browser.AutoOpen = source.Browser.AutoOpen

	// Logging
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}
}

func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = append([]string(nil), src.Server.CORSOrigins...)
	}
	if src.Simulator.MaxLogEntries != nil {
		n := *src.Simulator.MaxLogEntries
		dst.Simulator.MaxLogEntries = &n
	}
	return &dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
