package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
	"github.com/fredcamaral/miniserve/internal/domain/services"
	"github.com/fredcamaral/miniserve/internal/test/builders"
	"github.com/fredcamaral/miniserve/internal/test/fakes"
)

var testEpoch = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// getTestServerConfig returns a test server configuration
func getTestServerConfig() *entities.ServerConfig {
	return &builders.NewConfigBuilder().Build().Server
}

type testEnv struct {
	server  *Server
	session *services.Session
	sched   *fakes.ManualScheduler
	hub     *ConnectionManager
	http    *httptest.Server
}

func newTestEnv(t *testing.T, opts ...ServerOption) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, getTestServerConfig(), opts...)
}

func newTestEnvWithConfig(t *testing.T, cfg *entities.ServerConfig, opts ...ServerOption) *testEnv {
	t.Helper()

	hub := NewConnectionManager(nil)
	session, sched, err := builders.NewSessionBuilder().
		StartingAt(testEpoch).
		WithPublisher(hub).
		Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := NewServer(session, hub, cfg, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})

	return &testEnv{server: srv, session: session, sched: sched, hub: hub, http: ts}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.http.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestNewServer(t *testing.T) {
	t.Run("panics without config", func(t *testing.T) {
		assert.Panics(t, func() {
			NewServer(&services.Session{}, nil, nil)
		})
	})

	t.Run("creates a hub when none is given", func(t *testing.T) {
		sched := fakes.NewManualScheduler(testEpoch)
		session, err := services.NewSession(services.WithScheduler(sched))
		require.NoError(t, err)

		srv := NewServer(session, nil, getTestServerConfig(), WithVersion("1.2.3"))
		assert.NotNil(t, srv.Hub())
		assert.Equal(t, "1.2.3", srv.version)
		assert.False(t, srv.IsRunning())
	})
}

func TestServer_StartStop(t *testing.T) {
	sched := fakes.NewManualScheduler(testEpoch)
	session, err := services.NewSession(services.WithScheduler(sched))
	require.NoError(t, err)
	srv := NewServer(session, nil, getTestServerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, srv.Start(ctx, 0, "127.0.0.1"))
	assert.True(t, srv.IsRunning())
	assert.Error(t, srv.Start(ctx, 0, "127.0.0.1"))

	require.NoError(t, srv.Stop(ctx))
	assert.False(t, srv.IsRunning())
	assert.Error(t, srv.Stop(ctx))
	assert.Error(t, srv.Broadcast(ports.UpdateEvent{Type: ports.EventTypeState}))
}
