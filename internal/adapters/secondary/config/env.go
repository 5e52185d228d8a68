package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Environment variables read by GetDefaultConfig and ApplyEnvVars
const (
	EnvHost          = "MINISERVE_HOST"
	EnvPort          = "MINISERVE_PORT"
	EnvCORSOrigins   = "MINISERVE_CORS_ORIGINS"
	EnvEnvironment   = "MINISERVE_ENV"
	EnvSimPort       = "MINISERVE_SIM_PORT"
	EnvResponseDelay = "MINISERVE_RESPONSE_DELAY_MS"
	EnvMaxLogEntries = "MINISERVE_MAX_LOG_ENTRIES"
	EnvSanitize      = "MINISERVE_SANITIZE_PREVIEW"
	EnvNoBrowser     = "MINISERVE_NO_BROWSER"
	EnvBrowser       = "MINISERVE_BROWSER"
	EnvLogLevel      = "MINISERVE_LOG_LEVEL"
	EnvLogJSON       = "MINISERVE_LOG_JSON"
)

// lookupEnv parses key with parse. Unset, empty and unparsable values report false.
func lookupEnv[T any](key string, parse func(string) (T, error)) (T, bool) {
	var zero T
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return zero, false
	}
	v, err := parse(raw)
	if err != nil {
		return zero, false
	}
	return v, true
}

func envOr[T any](key string, parse func(string) (T, error), fallback T) T {
	if v, ok := lookupEnv(key, parse); ok {
		return v
	}
	return fallback
}

func parseString(s string) (string, error) { return s, nil }

// parseList splits a comma separated value, dropping blanks
func parseList(s string) ([]string, error) {
	items := lo.FilterMap(strings.Split(s, ","), func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		return part, part != ""
	})
	if len(items) == 0 {
		return nil, strconv.ErrSyntax
	}
	return items, nil
}
