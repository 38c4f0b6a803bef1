// Package dashboard renders the tank status screen, redrawing only the
// regions whose inputs changed since the previous frame.
package dashboard

import (
	"fmt"
	"strconv"
	"time"

	"octopus/hal"
)

// State is one frame of dashboard input.
type State struct {
	Level       uint8
	Pump        bool
	Valve       bool
	PumpFailure bool
}

func (s State) String() string {
	return fmt.Sprintf("level=%d%% pump=%t valve=%t failure=%t", s.Level, s.Pump, s.Valve, s.PumpFailure)
}

// Screen draws primitives. FillRect errors are logged by the renderer.
type Screen interface {
	FillRect(x, y, w, h int16, c uint16) error
	TextBounds(s string) (w, h int16)
	DrawText(x, y int16, s string, c uint16)
}

// Images draws named bitmap assets. Failures are the implementation's to
// report; a failed draw leaves the region as it was.
type Images interface {
	Draw(name string, x, y int16) error
}

type Config struct {
	MinInterval time.Duration `yaml:"min_interval"`
}

func DefaultConfig() Config {
	return Config{MinInterval: 500 * time.Millisecond}
}

type Renderer struct {
	scr    Screen
	img    Images
	layout Layout
	cfg    Config
	now    func() time.Time
	log    hal.Logger

	prev    State
	hasPrev bool
	last    time.Time
}

func New(scr Screen, img Images, layout Layout, cfg Config) *Renderer {
	return NewWithClock(scr, img, layout, cfg, time.Now)
}

func NewWithClock(scr Screen, img Images, layout Layout, cfg Config, now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{scr: scr, img: img, layout: layout, cfg: cfg, now: now}
}

// SetLogger sets where failed fills are reported. A nil logger drops them.
func (r *Renderer) SetLogger(log hal.Logger) { r.log = log }

// Update draws s. It does nothing and returns false when called again within
// the minimum interval, unless force is set. A forced or first update
// redraws every region; otherwise only regions whose fields changed.
func (r *Renderer) Update(s State, force bool) bool {
	now := r.now()
	if !force && !r.last.IsZero() && now.Sub(r.last) < r.cfg.MinInterval {
		return false
	}
	if s.Level > 100 {
		s.Level = 100
	}

	full := force || !r.hasPrev
	p := r.prev

	if full {
		r.draw(AssetBackground, Point{})
	}
	if full || s.Pump != p.Pump {
		r.drawToggle(r.layout.Pump, s.Pump)
	}
	if full || s.Valve != p.Valve {
		r.drawToggle(r.layout.Valve, s.Valve)
	}
	if full || s.Pump != p.Pump || s.Valve != p.Valve {
		r.drawPipe(s, p, full)
	}
	if full || s.Level != p.Level {
		r.drawTank(s.Level)
	}
	if full || s.PumpFailure != p.PumpFailure {
		if s.PumpFailure {
			r.draw(AssetWellErr, r.layout.Well)
		} else {
			r.draw(AssetWellOK, r.layout.Well)
		}
	}

	r.prev, r.hasPrev, r.last = s, true, now
	return true
}

// Previous returns the last drawn state.
func (r *Renderer) Previous() (State, bool) { return r.prev, r.hasPrev }

func (r *Renderer) draw(name string, at Point) {
	_ = r.img.Draw(name, at.X, at.Y)
}

func (r *Renderer) drawToggle(t Toggle, on bool) {
	off := Point{t.At.X + t.HalfW, t.At.Y}
	if on {
		r.draw(AssetOnLit, t.At)
		r.draw(AssetOffDim, off)
	} else {
		r.draw(AssetOnDim, t.At)
		r.draw(AssetOffLit, off)
	}
}

// drawPipe picks the pipe variant. The pump leg overlay in the draining
// variant is only drawn when the pump was running in the previous frame, so
// draining entered from idle keeps whatever the pump leg showed before.
func (r *Renderer) drawPipe(s, prev State, full bool) {
	switch {
	case s.Pump:
		r.draw(AssetPipePmp, r.layout.Pipe)
	case s.Valve:
		r.draw(AssetPipeDrn, r.layout.Pipe)
		if full || prev.Pump {
			r.draw(AssetPipeStop, r.layout.PipeStop)
		}
	default:
		r.draw(AssetPipeIdl, r.layout.Pipe)
	}
}

func (r *Renderer) drawTank(level uint8) {
	t := r.layout.Tank
	fluid := int16(int32(t.H) * int32(level) / 100)
	empty := t.H - fluid

	if err := r.scr.FillRect(t.X, t.Y, t.W, empty, ColorBackground); err != nil {
		r.logf("dashboard: tank: %v", err)
	}
	if err := r.scr.FillRect(t.X, t.Y+empty, t.W, fluid, ColorFluid); err != nil {
		r.logf("dashboard: tank: %v", err)
	}

	label := strconv.Itoa(int(level)) + "%"
	w, h := r.scr.TextBounds(label)
	r.scr.DrawText(t.X+(t.W-w)/2, t.Y+(t.H+h)/2, label, ColorLabel)
}

func (r *Renderer) logf(format string, args ...any) {
	if r.log != nil {
		r.log.WriteLineString(fmt.Sprintf(format, args...))
	}
}
