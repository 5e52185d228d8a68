package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// Local configuration file names, in lookup order
var localNames = []string{"miniserve.toml", "miniserve.yaml", "miniserve.yml"}

// FileLoader implements ports.ConfigLoader. The global file is TOML; a local
// project file may be TOML or YAML.
type FileLoader struct {
	globalPath string
	localNames []string
}

// NewFileLoader creates a loader rooted at ~/.config/miniserve
func NewFileLoader() *FileLoader {
	homeDir, _ := os.UserHomeDir()
	return &FileLoader{
		globalPath: filepath.Join(homeDir, ".config", "miniserve", "config.toml"),
		localNames: localNames,
	}
}

// NewFileLoaderAt creates a loader using globalPath as the global file
func NewFileLoaderAt(globalPath string) *FileLoader {
	return &FileLoader{globalPath: globalPath, localNames: localNames}
}

// LoadGlobal loads the global configuration file, writing defaults on first run
func (l *FileLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	if _, err := os.Stat(l.globalPath); errors.Is(err, fs.ErrNotExist) {
		if err := l.CreateDefaults(ctx, l.globalPath); err != nil {
			return nil, fmt.Errorf("creating defaults: %w", err)
		}
	}

	return l.loadConfig(l.globalPath)
}

// LoadLocal loads the first local configuration file found in dir
func (l *FileLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	path, ok := l.findLocal(dir)
	if !ok {
		return nil, nil
	}
	return l.loadConfig(path)
}

// findLocal returns the first of localNames present in dir
func (l *FileLoader) findLocal(dir string) (string, bool) {
	for _, name := range l.localNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// CreateDefaults writes the default configuration as TOML to path
func (l *FileLoader) CreateDefaults(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	file, err := os.Create(path) // #nosec G304 - path is the controlled global config path
	if err != nil {
		return fmt.Errorf("creating config file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	encoder := toml.NewEncoder(file)
	encoder.Indent = "  "
	if err := encoder.Encode(GetDefaultConfig()); err != nil {
		return fmt.Errorf("encoding config to %s: %w", path, err)
	}

	return nil
}

// GetGlobalPath returns the path to the global configuration file
func (l *FileLoader) GetGlobalPath() string {
	return l.globalPath
}

// GetLocalPath returns the existing local file in dir, or the preferred name if none exists
func (l *FileLoader) GetLocalPath(dir string) string {
	if path, ok := l.findLocal(dir); ok {
		return path
	}
	return filepath.Join(dir, l.localNames[0])
}

func (l *FileLoader) loadConfig(path string) (*entities.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is from controlled sources (global/local config)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	config, err := decode(path, data)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return config, nil
}

// ErrUnsupportedFormat is returned for config files that are neither TOML nor YAML
var ErrUnsupportedFormat = errors.New("unsupported config format")

func decode(path string, data []byte) (*entities.Config, error) {
	var config entities.Config

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parsing TOML from %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parsing YAML from %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	return &config, nil
}

// Ensure FileLoader implements ports.ConfigLoader
var _ ports.ConfigLoader = (*FileLoader)(nil)
