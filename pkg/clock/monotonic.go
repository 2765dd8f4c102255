// Package clock hands out millisecond timestamps that never repeat within a process.
package clock

import (
	"sync/atomic"
	"time"
)

// Millis yields strictly increasing Unix millisecond stamps. Two calls in the
// same wall-clock millisecond get consecutive values instead of colliding.
type Millis struct {
	last atomic.Int64
	now  func() time.Time
}

// NewMillis returns a Millis driven by time.Now.
func NewMillis() *Millis { return &Millis{now: time.Now} }

// NewMillisAt returns a Millis driven by now; used by tests to pin the clock.
func NewMillisAt(now func() time.Time) *Millis { return &Millis{now: now} }

// Next returns max(wall clock, previous+1).
func (m *Millis) Next() int64 {
	wall := m.now().UnixMilli()
	for {
		prev := m.last.Load()
		next := wall
		if next <= prev {
			next = prev + 1
		}
		if m.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}
