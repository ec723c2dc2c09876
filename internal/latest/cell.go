// Package latest provides a single-slot cell that always holds the most recent value.
//
// Producers overwrite, never queue: a value stored before the previous one was
// read is counted as a drop. Consumers either peek (Load) or consume (Take, Wait).
package latest

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Wait once the cell has been closed.
var ErrClosed = errors.New("cell closed")

// Stats reports cell activity.
type Stats struct {
	Seq   uint64 // values stored so far; also the sequence number of the current value
	Drops uint64 // values overwritten before being read
}

// Cell holds at most one value of type T.
type Cell[T any] struct {
	mu      sync.Mutex
	value   T
	has     bool   // a value is present
	unread  bool   // the present value has not been loaded or taken
	seq     uint64 // incremented on every Store
	drops   uint64
	closed  bool
	notify  chan struct{}
	release func(T)
}

// New creates an empty cell.
func New[T any]() *Cell[T] {
	return &Cell[T]{notify: make(chan struct{}, 1)}
}

// NewWithRelease creates an empty cell that calls release on every value that
// is overwritten or discarded without having been taken. Use it for values that
// own resources, and only consume such cells with Take or Wait.
func NewWithRelease[T any](release func(T)) *Cell[T] {
	c := New[T]()
	c.release = release
	return c
}

// Store replaces the current value. It never blocks.
// Storing into a closed cell releases the value and does nothing else.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		if c.release != nil {
			c.release(v)
		}
		return
	}

	old, hadOld := c.value, c.has
	if c.unread {
		c.drops++
	}
	c.value = v
	c.has = true
	c.unread = true
	c.seq++

	// Signal under the lock so Close cannot close notify mid-send.
	select {
	case c.notify <- struct{}{}:
	default:
	}
	c.mu.Unlock()

	if hadOld && c.release != nil {
		c.release(old)
	}
}

// Load returns the current value without consuming it.
func (c *Cell[T]) Load() (T, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.has {
		var zero T
		return zero, c.seq, false
	}
	c.unread = false
	return c.value, c.seq, true
}

// Take removes and returns the current value. Ownership passes to the caller.
func (c *Cell[T]) Take() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.takeLocked()
}

func (c *Cell[T]) takeLocked() (T, bool) {
	var zero T
	if !c.has {
		return zero, false
	}
	v := c.value
	c.value = zero
	c.has = false
	c.unread = false
	return v, true
}

// Wait blocks until a value can be taken, the context ends, or the cell is closed.
func (c *Cell[T]) Wait(ctx context.Context) (T, error) {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			var zero T
			return zero, ErrClosed
		}
		if v, ok := c.takeLocked(); ok {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-c.notify:
		}
	}
}

// Close wakes all waiters and releases any value still held.
// It is safe to call more than once.
func (c *Cell[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	v, had := c.takeLocked()
	close(c.notify)
	c.mu.Unlock()

	if had && c.release != nil {
		c.release(v)
	}
}

// Stats returns a snapshot of the cell counters.
func (c *Cell[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Seq: c.seq, Drops: c.drops}
}
