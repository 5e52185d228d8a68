package ports

import "time"

// Clock reads the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// Task is a scheduled continuation
type Task interface {
	// Stop prevents the task from running if it has not started yet.
	// The simulator itself never cancels tasks; Stop exists for process shutdown.
	Stop() bool
}

// Scheduler runs functions after a delay.
// Implementations must never run two scheduled functions concurrently.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}
