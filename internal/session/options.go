package session

import (
	"log/slog"
	"time"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The controller adds component=session.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now for report and session timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTick sets the countdown tick interval. One tick always counts as one
// second of exam time.
func WithTick(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tick = d
		}
	}
}

// WithImporter enables LoadLocalExam and LoadRemoteExam.
func WithImporter(imp Importer) Option {
	return func(c *Controller) {
		c.importer = imp
	}
}

// WithQueueSize sets how many persistence jobs may wait before callers block.
func WithQueueSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.queueSize = n
		}
	}
}
