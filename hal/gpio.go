package hal

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// GPIOMode selects whether a pin is an input or output.
type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

// GPIOPull selects the pull resistor configuration.
type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

// GPIOCaps declares what operations a pin supports.
type GPIOCaps uint8

const (
	GPIOCapInput GPIOCaps = 1 << iota
	GPIOCapOutput
	GPIOCapPullUp
	GPIOCapPullDown
)

// GPIOPin is a single digital IO pin.
type GPIOPin interface {
	Name() string
	Caps() GPIOCaps
	Configure(mode GPIOMode, pull GPIOPull) error
	Read() (level bool, err error)
	Write(level bool) error
}

// Edge selects which transitions raise a pin interrupt.
type Edge uint8

const (
	EdgeFalling Edge = iota + 1
	EdgeRising
	EdgeBoth
)

// ErrInterruptBusy is returned when a pin already has a handler registered.
var ErrInterruptBusy = errors.New("gpio: interrupt already registered")

// InterruptPin is an input that calls a handler from interrupt context.
//
// A pin carries at most one handler; it must be cleared before another
// owner can register.
type InterruptPin interface {
	Name() string
	SetInterrupt(edge Edge, handler func()) error
	ClearInterrupt() error
}

// interruptLine is the registration slot shared by the platform pins.
type interruptLine struct {
	claimed atomic.Bool
	handler atomic.Pointer[func()]
}

func (l *interruptLine) claim(name string, handler func()) error {
	if handler == nil {
		return fmt.Errorf("gpio: pin %s: nil interrupt handler", name)
	}
	if !l.claimed.CompareAndSwap(false, true) {
		return fmt.Errorf("gpio: pin %s: %w", name, ErrInterruptBusy)
	}
	l.handler.Store(&handler)
	return nil
}

func (l *interruptLine) release() {
	l.handler.Store(nil)
	l.claimed.Store(false)
}

func (l *interruptLine) fire() {
	if h := l.handler.Load(); h != nil {
		(*h)()
	}
}

type virtualPin struct {
	mu    sync.Mutex
	name  string
	caps  GPIOCaps
	mode  GPIOMode
	pull  GPIOPull
	level bool
}

func newVirtualPin(name string, caps GPIOCaps) *virtualPin {
	return &virtualPin{
		name: name,
		caps: caps,
		mode: GPIOModeInput,
		pull: GPIOPullNone,
	}
}

func (p *virtualPin) Name() string   { return p.name }
func (p *virtualPin) Caps() GPIOCaps { return p.caps }

func (p *virtualPin) Configure(mode GPIOMode, pull GPIOPull) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch mode {
	case GPIOModeInput:
		if p.caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", p.name)
		}
	case GPIOModeOutput:
		if p.caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.name)
	}

	switch pull {
	case GPIOPullNone:
	case GPIOPullUp:
		if p.caps&GPIOCapPullUp == 0 {
			return fmt.Errorf("gpio: pin %s: pull-up unsupported", p.name)
		}
	case GPIOPullDown:
		if p.caps&GPIOCapPullDown == 0 {
			return fmt.Errorf("gpio: pin %s: pull-down unsupported", p.name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid pull", p.name)
	}

	p.mode = mode
	p.pull = pull
	return nil
}

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	return nil
}

// drive sets the level seen by Read regardless of mode (external source).
func (p *virtualPin) drive(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

func (p *virtualPin) toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = !p.level
	return p.level
}
