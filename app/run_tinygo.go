//go:build tinygo

package app

import (
	"errors"
	"time"

	"octopus/hal"
	"octopus/internal/config"
)

const loopDelay = 10 * time.Millisecond

// Run builds the app with the firmware defaults and loops forever.
func Run(h hal.HAL) {
	a, err := New(h, config.Default())
	if err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString("octopus: " + err.Error())
		}
		select {}
	}
	for {
		if err := a.Step(); err != nil {
			if errors.Is(err, ErrPanic) {
				_ = a.Close()
				select {}
			}
			a.logf("octopus: %v", err)
		}
		time.Sleep(loopDelay)
	}
}
