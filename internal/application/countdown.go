package application

import (
	"context"
	"sync"
	"time"
)

// Countdown ticks down from a start value once per interval and calls
// onZero when it reaches zero. Cancel stops it and resets the value.
type Countdown struct {
	interval time.Duration
	start    int

	mu        sync.Mutex
	remaining int
	cancel    context.CancelFunc
}

func NewCountdown(start int, interval time.Duration) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}

	return &Countdown{interval: interval, start: start, remaining: start}
}

// Start begins a fresh countdown, replacing any running one.
func (c *Countdown) Start(onTick func(remaining int), onZero func()) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.remaining = c.start
	c.mu.Unlock()

	go c.run(ctx, onTick, onZero)
}

func (c *Countdown) run(ctx context.Context, onTick func(int), onZero func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		c.remaining--
		remaining := c.remaining
		if remaining <= 0 && c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		c.mu.Unlock()

		if onTick != nil {
			onTick(remaining)
		}
		if remaining <= 0 {
			if onZero != nil {
				onZero()
			}
			return
		}
	}
}

func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.remaining = c.start
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cancel != nil
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.remaining
}
