package ports

import (
	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

// PreviewSink receives the HTML document the simulated browser should display.
// Each call replaces whatever was shown before.
type PreviewSink interface {
	Render(html string)
}

// PreviewSinkFunc adapts a function to PreviewSink
type PreviewSinkFunc func(html string)

// Render calls f(html)
func (f PreviewSinkFunc) Render(html string) { f(html) }

// Snapshot is the read model of a whole session
type Snapshot struct {
	State   entities.ServerState   `json:"state"`
	Files   []entities.VirtualFile `json:"files"`
	Logs    []entities.LogEntry    `json:"logs"`
	Preview string                 `json:"preview"`
}

// SessionService is the control surface of a simulated server session
type SessionService interface {
	// Start validates port, marks the server running and schedules the demo requests
	Start(port int) error

	// Stop marks the server stopped; pending simulated requests still complete
	Stop()

	// SetPort changes the simulated port while the server is stopped
	SetPort(port int) error

	// AddFile creates a virtual file and returns the normalized name
	AddFile(name, content string) (string, error)

	// DeleteFile removes a virtual file; deleting a missing file succeeds
	DeleteFile(name string)

	// ClearLogs empties the log stream
	ClearLogs()

	// Simulate plays out a request for path
	Simulate(path string)

	// State returns the running flag and port
	State() entities.ServerState

	// Files returns the files in creation order
	Files() []entities.VirtualFile

	// File looks a file up by name
	File(name string) (entities.VirtualFile, bool)

	// Logs returns the log stream, oldest first
	Logs() []entities.LogEntry

	// Preview returns the document last rendered to the preview pane
	Preview() string

	// Snapshot returns the complete read model
	Snapshot() Snapshot
}

// SimulationObserver is told about every simulated exchange, e.g. for metrics
type SimulationObserver interface {
	RequestSimulated(path string)
	ResponseSimulated(path string, status int, bytes int)
}
