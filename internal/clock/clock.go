// Package clock implements the countdown driving a live interview.
package clock

import (
	"sync"
	"time"
)

// Clock is a cancellable one-second countdown. A Clock is single-use:
// Start may be called once per instance, and a session controller owns at
// most one running Clock at a time.
type Clock struct {
	mu        sync.Mutex
	remaining int
	stopCh    chan struct{}
	stopped   bool
	expired   bool

	// test seam; defaults to one second
	interval time.Duration
}

// New returns an unstarted Clock.
func New() *Clock {
	return &Clock{interval: time.Second}
}

// Start begins the countdown from initialSeconds. Every interval the
// remaining value is decremented and onTick is invoked with the new value,
// clamped at 0. When the value reaches 0, onExpire is invoked exactly once
// and the Clock stops itself. Callbacks run on the Clock's goroutine.
func (c *Clock) Start(initialSeconds int, onTick func(remaining int), onExpire func()) {
	c.mu.Lock()
	if c.stopCh != nil {
		c.mu.Unlock()
		return
	}
	if initialSeconds < 0 {
		initialSeconds = 0
	}
	c.remaining = initialSeconds
	c.stopCh = make(chan struct{})
	stopCh := c.stopCh
	c.mu.Unlock()

	go c.run(stopCh, onTick, onExpire)
}

func (c *Clock) run(stopCh chan struct{}, onTick func(int), onExpire func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.stopped {
				c.mu.Unlock()
				return
			}
			c.remaining--
			if c.remaining < 0 {
				c.remaining = 0
			}
			r := c.remaining
			expire := r == 0 && !c.expired
			if expire {
				c.expired = true
			}
			c.mu.Unlock()

			if onTick != nil {
				onTick(r)
			}
			if expire {
				if onExpire != nil {
					onExpire()
				}
				c.Stop()
				return
			}
		}
	}
}

// ApplyPenalty reduces the remaining time by seconds, clamped at 0, without
// disturbing the tick cadence. A penalty that reaches 0 does not fire expiry
// itself; the next tick does.
func (c *Clock) ApplyPenalty(seconds int) {
	if seconds <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining -= seconds
	if c.remaining < 0 {
		c.remaining = 0
	}
}

// Remaining reports the current remaining seconds.
func (c *Clock) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop halts the countdown. Safe to call multiple times and after expiry.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	if c.stopCh != nil {
		close(c.stopCh)
	}
}
