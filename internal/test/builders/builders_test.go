package builders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/test/fakes"
)

func TestConfigBuilder(t *testing.T) {
	t.Run("builds valid config with defaults", func(t *testing.T) {
		cfg := NewConfigBuilder().Build()

		require.NoError(t, cfg.Validate())
		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, entities.DefaultPort, cfg.Simulator.GetPort())
		assert.True(t, cfg.Server.IsDevelopment())
	})

	t.Run("builds config with custom values", func(t *testing.T) {
		cfg := NewConfigBuilder().
			WithUIPort(4000).
			WithEnvironment("production").
			WithCORSOrigins("https://app.example.com").
			WithSimPort(9090).
			WithResponseDelay(10).
			WithDemoDelays(20, 30).
			WithMaxLogEntries(50).
			WithoutSeedFiles().
			WithSanitizedPreview().
			WithLogLevel(entities.LogLevelDebug).
			Build()

		require.NoError(t, cfg.Validate())
		assert.Equal(t, 4000, cfg.Server.Port)
		assert.False(t, cfg.Server.IsDevelopment())
		assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
		assert.Equal(t, 10*time.Millisecond, cfg.Simulator.GetResponseDelay())
		assert.Equal(t, 20*time.Millisecond, cfg.Simulator.GetRootDemoDelay())
		assert.Equal(t, 30*time.Millisecond, cfg.Simulator.GetMissingDemoDelay())
		assert.Equal(t, 50, cfg.Simulator.GetMaxLogEntries())
		assert.True(t, cfg.Simulator.NoSeedFiles)
		assert.True(t, cfg.Preview.Sanitize)
		assert.Equal(t, entities.LogLevelDebug, cfg.Logging.GetLevel())
	})

	t.Run("built configs are independent", func(t *testing.T) {
		b := NewConfigBuilder().WithCORSOrigins("https://a.example.com")
		first := b.Build()
		first.Server.CORSOrigins[0] = "https://changed.example.com"

		assert.Equal(t, "https://a.example.com", b.Build().Server.CORSOrigins[0])
	})
}

func TestFileBuilder(t *testing.T) {
	t.Run("normalizes name and uses placeholder content", func(t *testing.T) {
		f := NewFileBuilder(" contact ").Build()

		assert.Equal(t, "contact.html", f.Name)
		assert.Equal(t, entities.DefaultFileContent("contact.html"), f.Content)
	})

	t.Run("page content", func(t *testing.T) {
		f := NewFileBuilder("x.html").WithPage("X", "<p>x</p>").Build()

		assert.Contains(t, f.Content, "<title>X</title>")
		assert.Contains(t, f.Content, "<body><p>x</p></body>")
	})

	t.Run("files helper", func(t *testing.T) {
		files := Files("a", "b.css")
		require.Len(t, files, 2)
		assert.Equal(t, "a.html", files[0].Name)
		assert.Equal(t, entities.FileKindCSS, files[1].Kind())
	})
}

func TestSessionBuilder(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		session, sched, err := NewSessionBuilder().Build()
		require.NoError(t, err)

		assert.Equal(t, Epoch, sched.Now())
		assert.Len(t, session.Files(), 3)
		assert.Equal(t, entities.ServerState{Port: entities.DefaultPort}, session.State())
	})

	t.Run("extra files and recorder", func(t *testing.T) {
		events := &fakes.EventRecorder{}
		session, _, err := NewSessionBuilder().
			WithPublisher(events).
			WithFiles(NewFileBuilder("contact").Build()).
			Build()
		require.NoError(t, err)

		require.Len(t, session.Files(), 4)
		assert.Equal(t, "contact.html", session.Files()[3].Name)
		assert.Contains(t, events.Types(), "log")
	})

	t.Run("without demos nothing is scheduled on start", func(t *testing.T) {
		session, sched, err := NewSessionBuilder().WithoutDemos().Build()
		require.NoError(t, err)

		require.NoError(t, session.Start(8080))
		assert.Equal(t, 0, sched.Pending())
	})

	t.Run("duplicate file fails", func(t *testing.T) {
		_, _, err := NewSessionBuilder().WithFiles(NewFileBuilder("about").Build()).Build()
		assert.ErrorIs(t, err, entities.ErrDuplicateName)
	})

	t.Run("preview filter", func(t *testing.T) {
		session, sched, err := NewSessionBuilder().
			StartingAt(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)).
			WithPreviewFilter(func(string) string { return "filtered" }).
			Build()
		require.NoError(t, err)

		require.NoError(t, session.Start(8080))
		sched.Advance(2 * time.Second)
		assert.Equal(t, "filtered", session.Preview())
	})
}
