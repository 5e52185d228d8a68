package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

const maxRequestBody = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// MessageResponse acknowledges a control action with a human readable message
type MessageResponse struct {
	Message string                `json:"message"`
	State   *entities.ServerState `json:"state,omitempty"`
	File    *FileResponse         `json:"file,omitempty"`
}

// FileResponse describes a virtual file
type FileResponse struct {
	Name        string `json:"name"`
	Content     string `json:"content,omitempty"`
	Size        int    `json:"size"`
	Kind        string `json:"kind"`
	ContentType string `json:"content_type"`
}

// StateResponse is the control surface state
type StateResponse struct {
	Running bool   `json:"running"`
	Port    int    `json:"port"`
	Address string `json:"address"`
	Files   int    `json:"files"`
	Logs    int    `json:"logs"`
	Clients int    `json:"clients"`
	Version string `json:"version"`
}

type portRequest struct {
	Port int `json:"port"`
}

type fileRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type simulateRequest struct {
	Path string `json:"path"`
}

func toFileResponse(f entities.VirtualFile, withContent bool) FileResponse {
	resp := FileResponse{
		Name:        f.Name,
		Size:        f.Size(),
		Kind:        f.Kind().String(),
		ContentType: entities.ContentTypeOf(f.Name),
	}
	if withContent {
		resp.Content = f.Content
	}
	return resp
}

// handleState returns the simulated server state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	s.writeJSON(w, http.StatusOK, StateResponse{
		Running: snap.State.Running,
		Port:    snap.State.Port,
		Address: snap.State.Address(),
		Files:   len(snap.Files),
		Logs:    len(snap.Logs),
		Clients: s.connMgr.Count(),
		Version: s.version,
	})
}

// handleStart starts the simulated server on the requested port
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req portRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}
	if req.Port == 0 {
		req.Port = s.session.State().Port
	}

	if err := s.session.Start(req.Port); err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}

	state := s.session.State()
	s.writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Server started on port %d", state.Port),
		State:   &state,
	})
}

// handleStop stops the simulated server
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.session.Stop()
	state := s.session.State()
	s.writeJSON(w, http.StatusOK, MessageResponse{Message: "Server stopped", State: &state})
}

// handleSetPort changes the port while stopped
func (s *Server) handleSetPort(w http.ResponseWriter, r *http.Request) {
	var req portRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	if err := s.session.SetPort(req.Port); err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}

	state := s.session.State()
	s.writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Port set to %d", state.Port),
		State:   &state,
	})
}

// handleListFiles lists virtual files in creation order without content
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files := s.session.Files()
	resp := make([]FileResponse, len(files))
	for i, f := range files {
		resp[i] = toFileResponse(f, false)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleAddFile creates a virtual file
func (s *Server) handleAddFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	name, err := s.session.AddFile(req.Name, req.Content)
	if err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}

	file, _ := s.session.File(name)
	resp := toFileResponse(file, true)
	s.writeJSON(w, http.StatusCreated, MessageResponse{
		Message: fmt.Sprintf("File %s created", name),
		File:    &resp,
	})
}

// handleGetFile returns one file with its content
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	file, ok := s.session.File(name)
	if !ok {
		s.handleError(w, fmt.Errorf("File %s not found", name), http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, toFileResponse(file, true))
}

// handleDeleteFile removes a file; deleting a missing file still succeeds
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s.session.DeleteFile(name)
	s.writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("File %s deleted", name)})
}

// handleListLogs returns the log stream, oldest first
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	entries := s.session.Logs()
	views := make([]LogView, len(entries))
	for i, e := range entries {
		views[i] = newLogView(e)
	}
	s.writeJSON(w, http.StatusOK, views)
}

// handleClearLogs empties the log stream
func (s *Server) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.session.ClearLogs()
	s.writeJSON(w, http.StatusOK, MessageResponse{Message: "Logs cleared"})
}

// handleSimulate plays out a request against the simulated server
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	s.session.Simulate(path)
	s.writeJSON(w, http.StatusAccepted, MessageResponse{Message: fmt.Sprintf("Requested %s", path)})
}

// handlePreview serves the document currently shown in the preview pane
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := io.WriteString(w, s.session.Preview()); err != nil {
		s.logger.Error("Failed to write preview: %v", err)
	}
}

// handleHealth reports process health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"healthy": true})
		return
	}

	status := http.StatusOK
	if !s.health.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, s.health.GetHealthStatus())
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, entities.ErrInvalidPort),
		errors.Is(err, entities.ErrEmptyFileName),
		errors.Is(err, entities.ErrPortLocked):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes a JSON error. Client errors carry the error text as a
// human readable message; server errors are sanitized.
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	var message string
	switch {
	case status >= http.StatusInternalServerError:
		message = "Internal server error"
		s.logger.Error("HTTP error (status %d): %v", status, err)
	case err != nil:
		message = err.Error()
		s.logger.Debug("HTTP client error (status %d): %v", status, err)
	default:
		message = http.StatusText(status)
	}

	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		s.logger.Error("Failed to encode error response: %v", encodeErr)
	}
}

// writeJSON writes a JSON response with status
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Error("Failed to write JSON response: %v", err)
	}
}

// decodeJSON reads a bounded JSON body into dst; an empty body leaves dst untouched
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
