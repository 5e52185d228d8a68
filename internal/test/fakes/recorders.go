package fakes

import (
	"sync"

	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// PreviewRecorder is a PreviewSink remembering every rendered document
type PreviewRecorder struct {
	mu       sync.Mutex
	rendered []string
}

// Render records html
func (p *PreviewRecorder) Render(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rendered = append(p.rendered, html)
}

// Rendered returns every document in render order
func (p *PreviewRecorder) Rendered() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.rendered...)
}

// Last returns the most recent document, or "" if nothing was rendered
func (p *PreviewRecorder) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.rendered) == 0 {
		return ""
	}
	return p.rendered[len(p.rendered)-1]
}

// EventRecorder is an EventPublisher remembering every published event
type EventRecorder struct {
	mu     sync.Mutex
	events []ports.UpdateEvent
}

// Publish records event
func (r *EventRecorder) Publish(event ports.UpdateEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Types returns the event types in publish order
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// Events returns every recorded event
func (r *EventRecorder) Events() []ports.UpdateEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.UpdateEvent(nil), r.events...)
}

var (
	_ ports.PreviewSink    = (*PreviewRecorder)(nil)
	_ ports.EventPublisher = (*EventRecorder)(nil)
)
