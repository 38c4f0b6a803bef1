//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hostKeyboard maps window keys onto the simulation and the app.
//
//	R  forced dashboard refresh (forwarded to the app)
//	V  toggle the drain valve switch
//	F  toggle a dry-running pump (no flow pulses)
//	E  toggle ultrasonic echo loss
type hostKeyboard struct {
	ch  chan KeyEvent
	sim *tankSim
}

func newHostKeyboard(sim *tankSim) *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 16), sim: sim}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

func (k *hostKeyboard) poll() {
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		select {
		case k.ch <- KeyEvent{Rune: 'r'}:
		default:
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		k.sim.toggleValve()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		k.sim.toggleFault()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		k.sim.toggleEcho()
	}
}
