package engine

import "sync/atomic"

// Clock is a monotonic logical clock for stamping sequence revisions.
//
// Every roster mutation is stamped with a strictly increasing number from
// this clock, so a host can tell whether a sequence changed between two reads
// without comparing contents. Wall-clock time is never used for ordering.
//
// Clock is safe for concurrent use (atomic operations), though the roster
// that owns it is not.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific value.
// Used when a host restores a roster and wants revisions to keep climbing.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next value and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current value without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
