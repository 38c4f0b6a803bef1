//go:build tinygo && baremetal

package hal

import (
	"errors"
	"fmt"
	"machine"
)

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type mcuPin struct {
	name string
	pin  machine.Pin
	caps GPIOCaps
	mode GPIOMode
}

func (p *mcuPin) Name() string   { return p.name }
func (p *mcuPin) Caps() GPIOCaps { return p.caps }

func (p *mcuPin) Configure(mode GPIOMode, pull GPIOPull) error {
	var cfg machine.PinConfig
	switch mode {
	case GPIOModeOutput:
		if p.caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
		}
		cfg.Mode = machine.PinOutput
	case GPIOModeInput:
		if p.caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", p.name)
		}
		switch pull {
		case GPIOPullUp:
			cfg.Mode = machine.PinInputPullup
		case GPIOPullDown:
			cfg.Mode = machine.PinInputPulldown
		default:
			cfg.Mode = machine.PinInput
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.name)
	}
	p.pin.Configure(cfg)
	p.mode = mode
	return nil
}

func (p *mcuPin) Read() (bool, error) { return p.pin.Get(), nil }

func (p *mcuPin) Write(level bool) error {
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.pin.Set(level)
	return nil
}

type mcuInterruptPin struct {
	name string
	pin  machine.Pin
	line interruptLine
}

func (p *mcuInterruptPin) Name() string { return p.name }

func (p *mcuInterruptPin) SetInterrupt(edge Edge, handler func()) error {
	if err := p.line.claim(p.name, handler); err != nil {
		return err
	}
	var change machine.PinChange
	switch edge {
	case EdgeRising:
		change = machine.PinRising
	case EdgeBoth:
		change = machine.PinToggle
	default:
		change = machine.PinFalling
	}
	p.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	if err := p.pin.SetInterrupt(change, func(machine.Pin) { p.line.fire() }); err != nil {
		p.line.release()
		return fmt.Errorf("gpio: pin %s: %w", p.name, err)
	}
	return nil
}

func (p *mcuInterruptPin) ClearInterrupt() error {
	err := p.pin.SetInterrupt(0, nil)
	p.line.release()
	return err
}

type nullPanel struct {
	w, h int16
}

func (p nullPanel) Size() (w, h int16)                      { return p.w, p.h }
func (nullPanel) SetWindow(x, y, w, h int16) error          { return ErrNotImplemented }
func (nullPanel) PushColors(c []uint16, first bool) error   { return ErrNotImplemented }
func (nullPanel) FillRect(x, y, w, h int16, c uint16) error { return ErrNotImplemented }

type nullStorage struct{}

func (nullStorage) Open(name string) (File, error) {
	return nil, errors.New("storage: no card")
}
