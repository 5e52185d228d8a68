package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// ConfigService resolves the effective configuration from
// defaults, global file, local file, environment and CLI flags, in that order
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
	logger *slog.Logger
}

// NewConfigService creates a new configuration service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger, logger *slog.Logger) *ConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigService{
		loader: loader,
		merger: merger,
		logger: logger.With("service", "config"),
	}
}

// LoadConfig loads the complete configuration with hierarchy and overrides
func (s *ConfigService) LoadConfig(ctx context.Context, workingDir string, flags ports.FlagOverrides) (*entities.Config, error) {
	layers := []*entities.Config{s.GetDefaultConfig()}

	globalConfig, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if globalConfig != nil {
		layers = append(layers, globalConfig)
	}

	localConfig, err := s.loader.LoadLocal(ctx, workingDir)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}
	if localConfig != nil {
		s.logger.Debug("Using local config", slog.String("path", s.loader.GetLocalPath(workingDir)))
		layers = append(layers, localConfig)
	}

	merged := s.merger.Merge(layers...)
	withEnv := s.merger.ApplyEnvVars(merged)
	final := s.merger.ApplyFlags(withEnv, flags)

	if err := s.ValidateConfig(final); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}

	s.logger.Debug("Configuration resolved",
		slog.Int("layers", len(layers)),
		slog.Int("ui_port", final.Server.Port),
		slog.Int("sim_port", final.Simulator.GetPort()),
	)

	return final, nil
}

// GetDefaultConfig returns the default configuration
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	// Merge with no arguments returns the defaults
	return s.merger.Merge()
}

// ValidateConfig validates a configuration
func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	return config.Validate()
}

// CreateGlobalConfig writes the global configuration file with defaults
func (s *ConfigService) CreateGlobalConfig(ctx context.Context) error {
	return s.loader.CreateDefaults(ctx, s.loader.GetGlobalPath())
}

// Ensure ConfigService implements ports.ConfigService
var _ ports.ConfigService = (*ConfigService)(nil)
