package engine

import (
	"context"
	"log/slog"
	"time"
)

// Driver polls a session once per tick.
type Driver struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	Session  *Session

	// Callbacks, all optional.
	OnTick func(tick uint64, changed bool) // Every tick
	OnIdle func(s *Session)                // Session waiting for input or acknowledgement
}

// NewDriver creates a driver for s with default settings.
func NewDriver(s *Session, interval time.Duration) *Driver {
	return &Driver{
		Speed:    1.0,
		Interval: interval,
		Session:  s,
	}
}

// Run polls the session until ctx is done or the log turns out corrupt.
func (d *Driver) Run(ctx context.Context) error {
	slog.Info("driver started", "tick", d.Tick, "interval", d.Interval)
	defer func() { slog.Info("driver stopped", "tick", d.Tick) }()

	for {
		wait := 100 * time.Millisecond
		if d.Speed > 0 {
			start := time.Now()
			if err := d.step(); err != nil {
				return err
			}
			// Sleep for the remainder of the tick interval, adjusted for speed.
			wait = time.Duration(float64(d.Interval)/d.Speed) - time.Since(start)
		}
		if wait <= 0 {
			if err := ctx.Err(); err != nil {
				return nil
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// step advances the session by one tick.
func (d *Driver) step() error {
	d.Tick++
	changed, err := d.Session.Update()
	if err != nil {
		return err
	}
	if d.OnTick != nil {
		d.OnTick(d.Tick, changed)
	}
	if d.OnIdle != nil && d.Session.Idle() {
		d.OnIdle(d.Session)
	}
	return nil
}
