//go:build !tinygo && !cgo

package hal

type hostKeyboard struct {
	ch  chan KeyEvent
	sim *tankSim
}

func newHostKeyboard(sim *tankSim) *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 16), sim: sim}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

func (k *hostKeyboard) poll() {
	// No keyboard support without the window backend.
}
