//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// App is the unit the host runners drive: one Step per frame, Close on exit.
type App interface {
	Step() error
	Close() error
}

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64
}

// RunHeadless runs the dashboard without opening a window.
func RunHeadless(ctx context.Context, cfg HostConfig, newApp func(HAL) (App, error), run HeadlessConfig) error {
	if run.Hz <= 0 {
		run.Hz = 60
	}

	d := time.Second / time.Duration(run.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", run.Hz)
	}

	hh, err := NewHost(cfg)
	if err != nil {
		return err
	}
	h := hh.(*hostHAL)
	defer h.close()

	a, err := newApp(h)
	if err != nil {
		return err
	}
	defer a.Close()

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := a.Step(); err != nil {
				return err
			}
			tick++
			if run.Ticks > 0 && tick >= run.Ticks {
				return nil
			}
		}
	}
}
