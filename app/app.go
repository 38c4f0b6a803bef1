// Package app wires the sensors, the controller and the dashboard into one
// cooperative loop.
package app

import (
	"fmt"
	"time"

	"tinygo.org/x/tinyfont/freeserif"

	"octopus/hal"
	"octopus/internal/config"
	"octopus/octo/bmp"
	"octopus/octo/dashboard"
	"octopus/octo/display"
	"octopus/octo/flow"
	"octopus/octo/level"
)

// bootHold keeps the boot console readable before the dashboard replaces it.
const bootHold = 2 * time.Second

// Snapshot is what one step measured and decided.
type Snapshot struct {
	Time        time.Time
	State       dashboard.State
	LevelValid  bool
	DistanceCM  uint32
	FlowLPM     float64
	TotalLiters float64
}

type App struct {
	h   hal.HAL
	cfg config.Config
	log hal.Logger
	now func() time.Time

	canvas *display.Canvas
	images *bmp.Streamer
	flow   *flow.Counter
	sonar  *level.Sonar
	gauge  *level.Gauge
	dash   *dashboard.Renderer
	ctl    controller

	pump  hal.GPIOPin
	valve hal.GPIOPin
	keys  hal.Keyboard

	bootUntil time.Time
	refresh   bool
	lastLog   time.Time
	observers []func(Snapshot)
}

// New builds the app on h and runs the boot sequence.
func New(h hal.HAL, cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		h:     h,
		cfg:   *cfg,
		log:   h.Logger(),
		now:   time.Now,
		pump:  h.PumpPin(),
		valve: h.ValvePin(),
		keys:  h.Keyboard(),
		ctl:   controller{cfg: cfg.Control},
	}

	store, err := flow.NewFlashStore(h.Flash(), cfg.Flow.FlashAddr)
	if err != nil {
		return nil, fmt.Errorf("flow store: %w", err)
	}
	if a.flow, err = flow.New(cfg.Flow, store, a.log); err != nil {
		return nil, err
	}
	if err := a.flow.Attach(h.FlowPin()); err != nil {
		return nil, err
	}

	a.sonar = level.NewSonar(h.Ranger(), cfg.Level.MaxCM)
	if a.gauge, err = level.New(cfg.Level, a.sonar); err != nil {
		_ = a.flow.Detach(h.FlowPin())
		return nil, err
	}

	if err := a.pump.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
		_ = a.flow.Detach(h.FlowPin())
		return nil, fmt.Errorf("pump pin: %w", err)
	}
	_ = a.pump.Write(false)
	pull := hal.GPIOPullNone
	if a.valve.Caps()&hal.GPIOCapPullUp != 0 {
		pull = hal.GPIOPullUp
	}
	if err := a.valve.Configure(hal.GPIOModeInput, pull); err != nil {
		_ = a.flow.Detach(h.FlowPin())
		return nil, fmt.Errorf("valve pin: %w", err)
	}

	a.canvas = display.New(h.Panel(), &freeserif.Regular12pt7b)
	a.images = bmp.New(h.Storage(), a.canvas, a.log)
	a.dash = dashboard.New(a.canvas, a.images, dashboard.DefaultLayout(), cfg.Dashboard)
	a.dash.SetLogger(a.log)

	a.boot()
	return a, nil
}

// OnStep registers fn to receive every step's snapshot.
func (a *App) OnStep(fn func(Snapshot)) {
	a.observers = append(a.observers, fn)
}

// RequestRefresh makes the next step redraw the whole dashboard.
func (a *App) RequestRefresh() { a.refresh = true }

// Step runs one pass of the control loop. A panic inside the step is
// reported on the logger and the panel and returned as an error.
func (a *App) Step() (err error) {
	defer a.recoverPanic(&err)

	now := a.now()
	a.pollKeys()

	a.gauge.Update()
	valid := a.gauge.Valid()
	lvl := a.gauge.WaterLevel()
	rate := a.flow.FlowRate()
	if err := a.flow.PersistError(); err != nil {
		a.logf("%v", err)
	}

	valveOpen, verr := a.valve.Read()
	if verr != nil {
		a.logf("valve: %v", verr)
	}
	pump, failure := a.ctl.step(now, lvl, valid, rate)
	if err := a.pump.Write(pump); err != nil {
		a.logf("pump: %v", err)
	}

	s := dashboard.State{Level: lvl, Pump: pump, Valve: valveOpen, PumpFailure: failure}
	if !now.Before(a.bootUntil) {
		if a.dash.Update(s, a.refresh) {
			a.refresh = false
		}
	}

	snap := Snapshot{
		Time:        now,
		State:       s,
		LevelValid:  valid,
		DistanceCM:  a.gauge.Distance(),
		FlowLPM:     rate,
		TotalLiters: a.flow.WaterAmount(),
	}
	if a.lastLog.IsZero() || now.Sub(a.lastLog) >= a.cfg.Control.LogEvery {
		a.lastLog = now
		a.logf("tank: %s valid=%t distance=%dcm flow=%.2fL/min total=%.2fL",
			s, valid, snap.DistanceCM, rate, snap.TotalLiters)
	}
	for _, fn := range a.observers {
		fn(snap)
	}
	return nil
}

// Close stops the pump and persists the flow counter.
func (a *App) Close() error {
	_ = a.pump.Write(false)
	_ = a.flow.Detach(a.h.FlowPin())
	if err := a.flow.Save(); err != nil {
		return err
	}
	a.logf("flow: saved %d pulses", a.flow.Pulses())
	return nil
}

func (a *App) pollKeys() {
	if a.keys == nil {
		return
	}
	ch := a.keys.Events()
	for {
		select {
		case ev := <-ch:
			if ev.Rune == 'r' || ev.Rune == 'R' {
				a.RequestRefresh()
				a.logf("dashboard: refresh requested")
			}
		default:
			return
		}
	}
}

func (a *App) logf(format string, args ...any) {
	if a.log != nil {
		a.log.WriteLineString(fmt.Sprintf(format, args...))
	}
}
