package services

import (
	"time"

	"github.com/gammazero/deque"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// LogStream is the append-only feed of simulated server log entries.
// It is not safe for concurrent use; Session serializes access.
type LogStream struct {
	entries    deque.Deque[entities.LogEntry]
	clock      ports.Clock
	maxEntries int
	seq        int
	last       time.Time

	onAppend []func(entities.LogEntry)
	onClear  []func()
}

// NewLogStream creates an empty stream. maxEntries <= 0 keeps every entry;
// a positive cap evicts the oldest entries and is only set when configured.
func NewLogStream(clock ports.Clock, maxEntries int) *LogStream {
	if clock == nil {
		clock = ports.SystemClock
	}
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &LogStream{
		clock:      clock,
		maxEntries: maxEntries,
	}
}

// OnAppend registers fn to be called with every appended entry
func (l *LogStream) OnAppend(fn func(entities.LogEntry)) {
	l.onAppend = append(l.onAppend, fn)
}

// OnClear registers fn to be called after every clear
func (l *LogStream) OnClear(fn func()) {
	l.onClear = append(l.onClear, fn)
}

// Append stamps and appends a new entry and returns the stream length
func (l *LogStream) Append(kind entities.LogKind, message string) int {
	now := l.clock.Now()
	if now.Before(l.last) {
		now = l.last
	}
	l.last = now
	l.seq++

	entry := entities.LogEntry{
		Seq:       l.seq,
		Kind:      kind,
		Message:   message,
		Timestamp: now,
	}
	l.entries.PushBack(entry)

	if l.maxEntries > 0 {
		for l.entries.Len() > l.maxEntries {
			l.entries.PopFront()
		}
	}

	for _, fn := range l.onAppend {
		fn(entry)
	}

	return l.entries.Len()
}

// Clear empties the stream
func (l *LogStream) Clear() {
	l.entries.Clear()
	l.seq = 0
	for _, fn := range l.onClear {
		fn()
	}
}

// View returns a copy of the entries, oldest first
func (l *LogStream) View() []entities.LogEntry {
	out := make([]entities.LogEntry, l.entries.Len())
	for i := range out {
		out[i] = l.entries.At(i)
	}
	return out
}

// Len returns the number of entries
func (l *LogStream) Len() int {
	return l.entries.Len()
}
