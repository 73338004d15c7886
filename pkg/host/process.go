package host

import "github.com/justyntemme/plugcore/pkg/framework/state"

// SetActive is called by the host adapter when processing starts or stops.
// While inactive, loaded states are installed immediately.
func (c *Controller) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active.Store(active)
	if !active {
		if p := c.pending.Swap(nil); p != nil {
			c.live.Store(p)
		}
	}
}

// Active reports whether processing is running.
func (c *Controller) Active() bool {
	return c.active.Load()
}

// BeginBlock is called by the processing thread before each block. It picks
// up a pending state and returns the container to read for the block. It
// never blocks or allocates.
func (c *Controller) BeginBlock() *state.Container {
	if p := c.pending.Load(); p != nil {
		c.live.Store(p)
		c.pending.CompareAndSwap(p, nil)
	}
	return c.live.Load()
}
