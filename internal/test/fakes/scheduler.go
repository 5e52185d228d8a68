// Package fakes provides deterministic stand-ins for time-based ports.
package fakes

import (
	"sort"
	"sync"
	"time"

	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// ManualScheduler is a scheduler and clock driven by Advance.
// Tasks run on the goroutine calling Advance, in due-time order; ties run
// in scheduling order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	next  int
	tasks []*manualTask
}

type manualTask struct {
	s       *ManualScheduler
	due     time.Time
	order   int
	fn      func()
	stopped bool
	ran     bool
}

// NewManualScheduler creates a scheduler whose clock starts at start
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the simulated current time
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc schedules fn to run d after the current simulated time
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) ports.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &manualTask{s: s, due: s.now.Add(d), order: s.next, fn: fn}
	s.next++
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by d, running every task that falls due,
// including tasks scheduled by tasks run during this call.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		t := s.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// Pending returns the number of tasks that have not run or been stopped
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *ManualScheduler) popDue(target time.Time) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due.Equal(s.tasks[j].due) {
			return s.tasks[i].order < s.tasks[j].order
		}
		return s.tasks[i].due.Before(s.tasks[j].due)
	})

	if len(s.tasks) == 0 || s.tasks[0].due.After(target) {
		return nil
	}

	t := s.tasks[0]
	s.tasks = s.tasks[1:]
	t.ran = true
	s.now = t.due
	return t
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.ran || t.stopped {
		return false
	}
	t.stopped = true
	for i, other := range t.s.tasks {
		if other == t {
			t.s.tasks = append(t.s.tasks[:i], t.s.tasks[i+1:]...)
			break
		}
	}
	return true
}

var (
	_ ports.Scheduler    = (*ManualScheduler)(nil)
	_ ports.Clock = (*ManualScheduler)(nil)
)
