// Package scheduler runs delayed session continuations on a single worker.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gammazero/workerpool"

	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// EventLoop is a ports.Scheduler backed by wall-clock timers. Timers only
// enqueue; a one-worker pool runs the callbacks, so no two scheduled
// functions ever execute at the same time.
type EventLoop struct {
	pool   *workerpool.WorkerPool
	logger *slog.Logger

	mu      sync.Mutex
	pending map[*timerTask]struct{}
	closed  bool
}

type timerTask struct {
	loop  *EventLoop
	timer *time.Timer
}

// NewEventLoop creates a running event loop
func NewEventLoop(logger *slog.Logger) *EventLoop {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLoop{
		pool:    workerpool.New(1),
		logger:  logger.With("component", "event_loop"),
		pending: make(map[*timerTask]struct{}),
	}
}

// AfterFunc runs fn on the loop worker once d has elapsed
func (l *EventLoop) AfterFunc(d time.Duration, fn func()) ports.Task {
	t := &timerTask{loop: l}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		l.logger.Warn("Task scheduled on closed event loop dropped", slog.Duration("delay", d))
		return t
	}

	l.pending[t] = struct{}{}
	t.timer = time.AfterFunc(d, func() { l.fire(t, fn) })
	return t
}

func (l *EventLoop) fire(t *timerTask, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.pending[t]; !ok || l.closed {
		return
	}
	delete(l.pending, t)

	l.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("Scheduled task panicked", slog.Any("panic", r))
			}
		}()
		fn()
	})
}

// Pending returns the number of timers that have not fired yet
func (l *EventLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Close cancels every pending timer and waits for queued callbacks to finish
func (l *EventLoop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	cancelled := len(l.pending)
	for t := range l.pending {
		t.timer.Stop()
	}
	l.pending = make(map[*timerTask]struct{})
	l.mu.Unlock()

	l.pool.StopWait()
	l.logger.Debug("Event loop closed", slog.Int("cancelled", cancelled))
}

// Stop cancels the task if it has not fired
func (t *timerTask) Stop() bool {
	if t.timer == nil {
		return false
	}

	t.loop.mu.Lock()
	defer t.loop.mu.Unlock()

	if _, ok := t.loop.pending[t]; !ok {
		return false
	}
	delete(t.loop.pending, t)
	t.timer.Stop()
	return true
}

var _ ports.Scheduler = (*EventLoop)(nil)
