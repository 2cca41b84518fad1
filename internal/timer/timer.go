// Package timer measures elapsed time since the sandbox started, using the
// high resolution counter from hrtime.
package timer

import (
	"time"

	"github.com/loov/hrtime"
)

// Clock reports a monotonic reading. Only differences between readings are
// meaningful.
type Clock func() time.Duration

// Timer measures time elapsed since its epoch.
type Timer struct {
	clock Clock
	epoch time.Duration
}

// New starts a timer on the hrtime counter.
func New() *Timer {
	return NewWithClock(hrtime.Now)
}

// NewWithClock starts a timer on the given clock.
func NewWithClock(clock Clock) *Timer {
	return &Timer{
		clock: clock,
		epoch: clock(),
	}
}

// Elapsed returns the time since the timer was started.
func (t *Timer) Elapsed() time.Duration {
	return t.clock() - t.epoch
}

// ElapsedTicks returns the elapsed time in counter ticks (nanoseconds).
func (t *Timer) ElapsedTicks() uint64 {
	return uint64(t.Elapsed())
}

func (t *Timer) ElapsedMs() float64 {
	return float64(t.Elapsed()) / float64(time.Millisecond)
}

func (t *Timer) ElapsedUs() float64 {
	return float64(t.Elapsed()) / float64(time.Microsecond)
}

func (t *Timer) ElapsedSec() float64 {
	return t.Elapsed().Seconds()
}

// OnlyMs returns the milliseconds elapsed since the last whole second.
func (t *Timer) OnlyMs() uint64 {
	return uint64(t.Elapsed()/time.Millisecond) % 1000
}
