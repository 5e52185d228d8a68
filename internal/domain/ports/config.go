package ports

import (
	"context"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

// FlagOverrides holds command line flags that were explicitly set, keyed by flag name
type FlagOverrides map[string]any

// ConfigLoader reads and writes configuration files
type ConfigLoader interface {
	// LoadGlobal reads the per-user file, writing defaults there on first run
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal reads the project file in dir.
	// A missing file yields (nil, nil).
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)

	// CreateDefaults writes the default configuration to path
	CreateDefaults(ctx context.Context, path string) error

	GetGlobalPath() string

	// GetLocalPath is the first project file LoadLocal would read in dir
	GetLocalPath(dir string) string
}

// ConfigMerger combines configuration layers
type ConfigMerger interface {
	// Merge folds configs left to right; later non-zero values win.
	// With no arguments it returns the defaults.
	Merge(configs ...*entities.Config) *entities.Config

	ApplyFlags(config *entities.Config, flags FlagOverrides) *entities.Config

	// ApplyEnvVars applies MINISERVE_* environment overrides
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService resolves the effective configuration for a run
type ConfigService interface {
	// LoadConfig layers defaults, global file, local file, environment and flags, then validates
	LoadConfig(ctx context.Context, workingDir string, flags FlagOverrides) (*entities.Config, error)
	GetDefaultConfig() *entities.Config
	ValidateConfig(config *entities.Config) error
	CreateGlobalConfig(ctx context.Context) error
}
