package record

import (
	"context"
	"sync"
)

// Controller coordinates pause, resume, and stop signals for a running
// recording session. The event stream and the snapshot loop both gate on
// Wait, so pausing freezes the whole recording and every state change must
// reach every waiter.
type Controller struct {
	mu       sync.Mutex
	paused   bool
	stopping bool
	stopErr  error

	// signal is closed to broadcast a state change, then replaced. Waiters
	// snapshot the current channel under the mutex before blocking.
	signal chan struct{}
}

// NewController constructs a controller in the recording state.
func NewController() *Controller {
	return &Controller{signal: make(chan struct{})}
}

// Pause transitions the controller into a paused state.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume clears a paused state and wakes every waiter.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.paused = false
	c.broadcastLocked()
}

// Stop requests the session to end, propagates an optional error, and wakes
// every waiter.
func (c *Controller) Stop(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopping = true
	if err != nil && c.stopErr == nil {
		c.stopErr = err
	}
	c.broadcastLocked()
}

// Wait blocks until the controller is recording or stopping.
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		paused := c.paused
		stopping := c.stopping
		stopErr := c.stopErr
		signal := c.signal
		c.mu.Unlock()

		if stopping {
			if stopErr != nil {
				return stopErr
			}
			if ctx != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return context.Canceled
		}
		if !paused {
			return nil
		}

		if ctx == nil {
			<-signal
			continue
		}

		select {
		case <-ctx.Done():
			c.Stop(ctx.Err())
			return ctx.Err()
		case <-signal:
			continue
		}
	}
}

// State reports the textual state for diagnostics.
func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.stopping:
		return "stopping"
	case c.paused:
		return "paused"
	default:
		return "recording"
	}
}

func (c *Controller) broadcastLocked() {
	close(c.signal)
	c.signal = make(chan struct{})
}
