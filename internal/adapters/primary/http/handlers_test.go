package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

func TestHandleState(t *testing.T) {
	env := newTestEnv(t, WithVersion("0.1.0"))

	resp, body := env.do(t, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	state := decode[StateResponse](t, body)
	assert.False(t, state.Running)
	assert.Equal(t, entities.DefaultPort, state.Port)
	assert.Equal(t, "http://localhost:8080", state.Address)
	assert.Equal(t, 3, state.Files)
	assert.Equal(t, "0.1.0", state.Version)
}

func TestHandleStart(t *testing.T) {
	t.Run("valid port", func(t *testing.T) {
		env := newTestEnv(t)

		resp, body := env.do(t, http.MethodPost, "/api/server/start", portRequest{Port: 8080})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		msg := decode[MessageResponse](t, body)
		assert.Equal(t, "Server started on port 8080", msg.Message)
		require.NotNil(t, msg.State)
		assert.True(t, msg.State.Running)
		assert.Len(t, env.session.Logs(), 3)
	})

	t.Run("empty body starts on the configured port", func(t *testing.T) {
		env := newTestEnv(t)

		resp, _ := env.do(t, http.MethodPost, "/api/server/start", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, entities.DefaultPort, env.session.State().Port)
	})

	for _, port := range []int{80, 1023, 65536} {
		port := port
		t.Run(fmt.Sprintf("invalid port %d", port), func(t *testing.T) {
			env := newTestEnv(t)

			resp, body := env.do(t, http.MethodPost, "/api/server/start", portRequest{Port: port})
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			errResp := decode[ErrorResponse](t, body)
			assert.Equal(t, "Bad Request", errResp.Error)
			assert.Contains(t, errResp.Message, "Please enter a valid port number between 1024 and 65535")
			assert.False(t, env.session.State().Running)
			assert.Empty(t, env.session.Logs())
		})
	}

	t.Run("different port while running", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.session.Start(8080))

		resp, _ := env.do(t, http.MethodPost, "/api/server/start", portRequest{Port: 9090})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)

		resp, _ := env.do(t, http.MethodPost, "/api/server/start", "not an object")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleStop(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.session.Start(8080))

	resp, body := env.do(t, http.MethodPost, "/api/server/stop", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg := decode[MessageResponse](t, body)
	assert.Equal(t, "Server stopped", msg.Message)
	assert.False(t, env.session.State().Running)
}

func TestHandleSetPort(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPut, "/api/server/port", portRequest{Port: 4000})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Port set to 4000", decode[MessageResponse](t, body).Message)

	resp, _ = env.do(t, http.MethodPut, "/api/server/port", portRequest{Port: 22})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 4000, env.session.State().Port)
}

func TestHandleFiles(t *testing.T) {
	t.Run("list in creation order without content", func(t *testing.T) {
		env := newTestEnv(t)

		resp, body := env.do(t, http.MethodGet, "/api/files", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		files := decode[[]FileResponse](t, body)
		require.Len(t, files, 3)
		assert.Equal(t, "index.html", files[0].Name)
		assert.Equal(t, "html", files[0].Kind)
		assert.Equal(t, "text/html", files[0].ContentType)
		assert.Empty(t, files[0].Content)
		assert.Positive(t, files[0].Size)
	})

	t.Run("create normalizes the name", func(t *testing.T) {
		env := newTestEnv(t)

		resp, body := env.do(t, http.MethodPost, "/api/files", fileRequest{Name: "contact"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		msg := decode[MessageResponse](t, body)
		assert.Equal(t, "File contact.html created", msg.Message)
		require.NotNil(t, msg.File)
		assert.Contains(t, msg.File.Content, "Hello from contact.html")
	})

	t.Run("duplicate is a conflict", func(t *testing.T) {
		env := newTestEnv(t)

		resp, body := env.do(t, http.MethodPost, "/api/files", fileRequest{Name: "about.html", Content: "x"})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "File about.html already exists", decode[ErrorResponse](t, body).Message)
		assert.Len(t, env.session.Files(), 3)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		resp, _ := env.do(t, http.MethodPost, "/api/files", fileRequest{Name: " "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("get returns content", func(t *testing.T) {
		env := newTestEnv(t)
		about, _ := env.session.File("about.html")

		resp, body := env.do(t, http.MethodGet, "/api/files/about.html", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, about.Content, decode[FileResponse](t, body).Content)
	})

	t.Run("get missing file", func(t *testing.T) {
		env := newTestEnv(t)

		resp, body := env.do(t, http.MethodGet, "/api/files/ghost.html", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "File ghost.html not found", decode[ErrorResponse](t, body).Message)
	})

	t.Run("delete existing and missing", func(t *testing.T) {
		env := newTestEnv(t)

		resp, _ := env.do(t, http.MethodDelete, "/api/files/about.html", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = env.do(t, http.MethodDelete, "/api/files/ghost.html", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Len(t, env.session.Files(), 2)
		assert.Len(t, env.session.Logs(), 2)
	})
}

func TestHandleLogs(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.session.Start(8080))
	env.sched.Advance(1500 * time.Millisecond)

	resp, body := env.do(t, http.MethodGet, "/api/logs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	views := decode[[]LogView](t, body)
	require.Len(t, views, 6)
	assert.Equal(t, "Info", views[0].Label)
	assert.Equal(t, "Success", views[1].Label)
	assert.Equal(t, "request", views[3].Kind)
	assert.Equal(t, "200", views[5].StatusCode)
	assert.Equal(t, "success", views[5].StatusClass)

	resp, body = env.do(t, http.MethodDelete, "/api/logs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logs cleared", decode[MessageResponse](t, body).Message)
	assert.Empty(t, env.session.Logs())
}

func TestHandleSimulateAndPreview(t *testing.T) {
	env := newTestEnv(t)
	about, _ := env.session.File("about.html")

	resp, body := env.do(t, http.MethodPost, "/api/requests", simulateRequest{Path: "about.html"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "Requested /about.html", decode[MessageResponse](t, body).Message)

	resp, body = env.do(t, http.MethodGet, "/preview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entities.NotRunningHTML, string(body))

	env.sched.Advance(500 * time.Millisecond)

	resp, body = env.do(t, http.MethodGet, "/preview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, about.Content, string(body))
}

func TestRouting(t *testing.T) {
	env := newTestEnv(t)

	t.Run("unknown route is a JSON 404", func(t *testing.T) {
		resp, body := env.do(t, http.MethodGet, "/nope", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Not Found", decode[ErrorResponse](t, body).Error)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodGet, "/api/server/start", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("wrong method under /api is a JSON 405", func(t *testing.T) {
		for _, tc := range []struct{ method, path string }{
			{http.MethodDelete, "/api/state"},
			{http.MethodPost, "/api/server/port"},
			{http.MethodPut, "/api/files/about.html"},
		} {
			resp, body := env.do(t, tc.method, tc.path, nil)
			require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "%s %s", tc.method, tc.path)
			assert.Equal(t, "Method Not Allowed", decode[ErrorResponse](t, body).Error)
		}
	})

	t.Run("unknown /api route is a 404", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodGet, "/api/nope", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("security headers", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodGet, "/api/state", nil)
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
	})

	t.Run("health without reporter", func(t *testing.T) {
		resp, body := env.do(t, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"healthy":true`)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid port", &entities.InvalidPortError{Port: 1}, http.StatusBadRequest},
		{"empty name", entities.ErrEmptyFileName, http.StatusBadRequest},
		{"port locked", fmt.Errorf("start: %w", entities.ErrPortLocked), http.StatusBadRequest},
		{"duplicate", &entities.DuplicateNameError{Name: "a.html"}, http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
