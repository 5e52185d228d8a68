// Package builders assembles domain values and sessions for tests.
package builders

import (
	"fmt"
	"time"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
	"github.com/fredcamaral/miniserve/internal/domain/services"
	"github.com/fredcamaral/miniserve/internal/test/fakes"
)

// Epoch is the default start time of built sessions' manual clock
var Epoch = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// SessionBuilder builds a Session on a manual scheduler so tests control time
type SessionBuilder struct {
	start     time.Time
	config    entities.SimulatorConfig
	publisher ports.EventPublisher
	observer  ports.SimulationObserver
	filter    func(string) string
	demos     []services.DemoRequest
	files     []entities.VirtualFile
}

// NewSessionBuilder creates a session builder with default simulator settings
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{start: Epoch}
}

// StartingAt sets the manual clock start time
func (b *SessionBuilder) StartingAt(t time.Time) *SessionBuilder {
	b.start = t
	return b
}

// WithSimulatorConfig sets the simulator config
func (b *SessionBuilder) WithSimulatorConfig(cfg entities.SimulatorConfig) *SessionBuilder {
	b.config = cfg
	return b
}

// WithPublisher sets the event publisher
func (b *SessionBuilder) WithPublisher(p ports.EventPublisher) *SessionBuilder {
	b.publisher = p
	return b
}

// WithObserver sets the simulation observer
func (b *SessionBuilder) WithObserver(o ports.SimulationObserver) *SessionBuilder {
	b.observer = o
	return b
}

// WithPreviewFilter sets the preview filter
func (b *SessionBuilder) WithPreviewFilter(fn func(string) string) *SessionBuilder {
	b.filter = fn
	return b
}

// WithoutDemos disables the startup demo requests
func (b *SessionBuilder) WithoutDemos() *SessionBuilder {
	b.demos = []services.DemoRequest{}
	return b
}

// WithFiles adds files after the seed files. They go through AddFile, so
// each one leaves a "created" log entry.
func (b *SessionBuilder) WithFiles(files ...entities.VirtualFile) *SessionBuilder {
	b.files = append(b.files, files...)
	return b
}

// Build creates the session and returns it with the scheduler driving it
func (b *SessionBuilder) Build() (*services.Session, *fakes.ManualScheduler, error) {
	sched := fakes.NewManualScheduler(b.start)

	opts := []services.SessionOption{
		services.WithSimulatorConfig(b.config),
		services.WithScheduler(sched),
		services.WithClock(sched),
	}
	if b.publisher != nil {
		opts = append(opts, services.WithEventPublisher(b.publisher))
	}
	if b.observer != nil {
		opts = append(opts, services.WithObserver(b.observer))
	}
	if b.filter != nil {
		opts = append(opts, services.WithPreviewFilter(b.filter))
	}
	if b.demos != nil {
		opts = append(opts, services.WithDemoRequests(b.demos))
	}

	session, err := services.NewSession(opts...)
	if err != nil {
		return nil, nil, err
	}

	for _, f := range b.files {
		if _, err := session.AddFile(f.Name, f.Content); err != nil {
			return nil, nil, fmt.Errorf("adding %s: %w", f.Name, err)
		}
	}

	return session, sched, nil
}
