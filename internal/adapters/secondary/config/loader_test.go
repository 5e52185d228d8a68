package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

func TestFileLoader_LoadGlobal(t *testing.T) {
	t.Run("creates config on first run", func(t *testing.T) {
		tmpDir := t.TempDir()
		globalPath := filepath.Join(tmpDir, "nested", "config.toml")
		loader := NewFileLoaderAt(globalPath)

		config, err := loader.LoadGlobal(context.Background())
		require.NoError(t, err)
		require.NotNil(t, config)

		_, err = os.Stat(globalPath)
		assert.NoError(t, err)

		assert.Equal(t, "localhost", config.Server.Host)
		assert.Equal(t, 3000, config.Server.Port)
		assert.Equal(t, 8080, config.Simulator.Port)
		assert.Equal(t, 500, config.Simulator.ResponseDelayMs)
		assert.True(t, config.Browser.AutoOpen)
		assert.Nil(t, config.Simulator.MaxLogEntries, "the written defaults leave the log stream unbounded")
	})

	t.Run("loads existing config", func(t *testing.T) {
		tmpDir := t.TempDir()
		globalPath := filepath.Join(tmpDir, "config.toml")

		configContent := `
[server]
host = "0.0.0.0"
port = 4000

[simulator]
port = 9090
response_delay_ms = 250

[browser]
auto_open = false
browser = "firefox"
`
		require.NoError(t, os.WriteFile(globalPath, []byte(configContent), 0644))

		config, err := NewFileLoaderAt(globalPath).LoadGlobal(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", config.Server.Host)
		assert.Equal(t, 4000, config.Server.Port)
		assert.Equal(t, 9090, config.Simulator.Port)
		assert.Equal(t, 250, config.Simulator.ResponseDelayMs)
		assert.False(t, config.Browser.AutoOpen)
		assert.Equal(t, "firefox", config.Browser.Browser)
	})

	t.Run("rejects invalid simulator port", func(t *testing.T) {
		tmpDir := t.TempDir()
		globalPath := filepath.Join(tmpDir, "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[simulator]\nport = 80\n"), 0644))

		_, err := NewFileLoaderAt(globalPath).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})

	t.Run("rejects malformed TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		globalPath := filepath.Join(tmpDir, "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[server\nport = "), 0644))

		_, err := NewFileLoaderAt(globalPath).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing TOML")
	})
}

func TestFileLoader_LoadLocal(t *testing.T) {
	loader := NewFileLoaderAt(filepath.Join(t.TempDir(), "config.toml"))

	t.Run("missing local config is not an error", func(t *testing.T) {
		config, err := loader.LoadLocal(context.Background(), t.TempDir())
		assert.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("loads TOML", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "miniserve.toml"), []byte("[simulator]\nmax_log_entries = 50\n"), 0644))

		config, err := loader.LoadLocal(context.Background(), dir)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, 50, config.Simulator.GetMaxLogEntries())
	})

	t.Run("explicit zero cap survives the merge", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "miniserve.toml"), []byte("[simulator]\nmax_log_entries = 0\n"), 0644))

		local, err := loader.LoadLocal(context.Background(), dir)
		require.NoError(t, err)
		require.NotNil(t, local.Simulator.MaxLogEntries)

		capped := 50
		global := &entities.Config{Simulator: entities.SimulatorConfig{MaxLogEntries: &capped}}
		merged := NewConfigMerger().Merge(GetDefaultConfig(), global, local)
		assert.Zero(t, merged.Simulator.GetMaxLogEntries())
	})

	t.Run("loads YAML", func(t *testing.T) {
		dir := t.TempDir()
		yamlContent := `
simulator:
  port: 8181
  no_seed_files: true
preview:
  sanitize: true
logging:
  level: debug
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "miniserve.yaml"), []byte(yamlContent), 0644))

		config, err := loader.LoadLocal(context.Background(), dir)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, 8181, config.Simulator.Port)
		assert.True(t, config.Simulator.NoSeedFiles)
		assert.True(t, config.Preview.Sanitize)
		assert.Equal(t, "debug", config.Logging.Level)
	})

	t.Run("TOML wins over YAML", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "miniserve.toml"), []byte("[simulator]\nport = 2000\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "miniserve.yaml"), []byte("simulator:\n  port: 3000\n"), 0644))

		config, err := loader.LoadLocal(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, 2000, config.Simulator.Port)
		assert.Equal(t, filepath.Join(dir, "miniserve.toml"), loader.GetLocalPath(dir))
	})

	t.Run("malformed YAML", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "miniserve.yml"), []byte("simulator: [unclosed"), 0644))

		_, err := loader.LoadLocal(context.Background(), dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing YAML")
	})
}

func TestFileLoader_GetPaths(t *testing.T) {
	loader := NewFileLoaderAt("/tmp/global.toml")

	assert.Equal(t, "/tmp/global.toml", loader.GetGlobalPath())
	assert.Equal(t, filepath.Join("/nowhere", "miniserve.toml"), loader.GetLocalPath("/nowhere"))
}

func TestNewFileLoader(t *testing.T) {
	loader := NewFileLoader()

	assert.Contains(t, loader.GetGlobalPath(), filepath.Join(".config", "miniserve", "config.toml"))
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := decode("config.json", []byte("{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
