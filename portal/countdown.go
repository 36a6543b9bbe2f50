// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package portal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultOTPTTL is how long the form treats a code as valid.
	DefaultOTPTTL = 120 * time.Second

	ExpiredText = "OTP has expired. Requesting new OTP..."
)

// FormatRemaining renders the countdown line, e.g. "OTP expires in 1:05".
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("OTP expires in %d:%02d", secs/60, secs%60)
}

type CountdownOptions struct {
	TTL  time.Duration
	Tick time.Duration
	// Display receives the countdown line on every tick and ExpiredText at
	// zero.
	Display func(string)
	// Expired clears the entered code.
	Expired func()
	// Reissue requests a fresh code. It runs once per expiry; a nil error
	// starts a new countdown.
	Reissue func(ctx context.Context) error
}

// Countdown drives the OTP expiry timer of the password reset form.
type Countdown struct {
	opts CountdownOptions

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	remaining time.Duration
	running   bool
	reissues  int
}

func NewCountdown(opts CountdownOptions) *Countdown {
	if opts.TTL <= 0 {
		opts.TTL = DefaultOTPTTL
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Display == nil {
		opts.Display = func(string) {}
	}
	if opts.Expired == nil {
		opts.Expired = func() {}
	}
	return &Countdown{opts: opts}
}

// Start begins a fresh countdown, replacing any running one.
func (c *Countdown) Start() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.remaining = c.opts.TTL
	c.running = true
	c.mu.Unlock()

	c.opts.Display(FormatRemaining(c.opts.TTL))
	go c.run(ctx, gen)
}

func (c *Countdown) run(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(c.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.remaining -= c.opts.Tick
		left := c.remaining
		if left <= 0 {
			c.running = false
			c.reissues++
		}
		c.mu.Unlock()

		if left > 0 {
			c.opts.Display(FormatRemaining(left))
			continue
		}

		c.opts.Display(ExpiredText)
		c.opts.Expired()
		c.reissue(ctx, gen)
		return
	}
}

func (c *Countdown) reissue(ctx context.Context, gen uint64) {
	if c.opts.Reissue == nil {
		return
	}
	if err := c.opts.Reissue(ctx); err != nil {
		slog.Warn("automatic OTP re-request failed", "error", err)
		return
	}

	c.mu.Lock()
	current := c.gen == gen
	c.mu.Unlock()
	if current {
		c.Start()
	}
}

// Stop cancels the countdown. No further Display or Reissue calls follow
// once a running tick has finished.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.running = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reissues counts the expiries that triggered a re-request.
func (c *Countdown) Reissues() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reissues
}
