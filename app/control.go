package app

import (
	"time"

	"octopus/internal/config"
)

// controller runs the pump with hysteresis on the fill level and stops it
// when it runs dry. A dry pump is retried after FailureRetry; the failure
// stays flagged until flow is seen again.
type controller struct {
	cfg config.ControlConfig

	pump     bool
	failure  bool
	dryFrom  time.Time
	failedAt time.Time
}

func (c *controller) step(now time.Time, level uint8, valid bool, lpm float64) (pump, failure bool) {
	want := c.pump
	switch {
	case !valid:
		want = false
	case level < c.cfg.PumpOnBelow:
		want = true
	case level >= c.cfg.PumpOffAbove:
		want = false
	}
	if c.failure && now.Sub(c.failedAt) < c.cfg.FailureRetry {
		want = false
	}
	c.pump = want

	if !c.pump {
		c.dryFrom = time.Time{}
		return false, c.failure
	}
	if lpm > 0 {
		c.dryFrom = time.Time{}
		c.failure = false
		return true, false
	}
	if c.dryFrom.IsZero() {
		c.dryFrom = now
	}
	if now.Sub(c.dryFrom) > c.cfg.FailureGrace {
		c.failure = true
		c.failedAt = now
		c.pump = false
		c.dryFrom = time.Time{}
	}
	return c.pump, c.failure
}
