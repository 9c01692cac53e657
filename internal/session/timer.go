package session

import (
	"context"
	"time"

	"github.com/pavelanni/selftest/internal/model"
)

// startTimerLocked starts the countdown for the current attempt. Any running
// countdown is stopped first. c.mu must be held.
func (c *Controller) startTimerLocked() {
	c.stopTimerLocked()
	if c.st == nil || c.st.Time <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelTimer = cancel
	go c.runTimer(ctx, c.timerGen, c.tick)
}

// stopTimerLocked cancels the countdown. Ticks already waiting on c.mu carry
// an old generation and are discarded. c.mu must be held.
func (c *Controller) stopTimerLocked() {
	if c.cancelTimer != nil {
		c.cancelTimer()
		c.cancelTimer = nil
	}
	c.timerGen++
}

func (c *Controller) runTimer(ctx context.Context, gen uint64, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !c.onTick(gen) {
				return
			}
		}
	}
}

// onTick advances the countdown by one second and charges it to the current
// question. It returns false once the countdown for gen is over.
func (c *Controller) onTick(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.timerGen || c.cancelTimer == nil || c.mode != model.ModeInProgress || c.st == nil {
		return false
	}
	c.st.Time--
	if q := c.st.Question; q >= 0 && q < len(c.st.Intervals) {
		c.st.Intervals[q]++
	}
	if c.st.Time > 0 {
		return true
	}
	c.st.Time = 0
	c.cancelTimer()
	c.cancelTimer = nil
	c.log.Info("time is up", "exam", c.exam.Filename)
	return false
}
