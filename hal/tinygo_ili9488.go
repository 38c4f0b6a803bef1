//go:build tinygo && baremetal

package hal

import (
	"errors"
	"fmt"
	"machine"
	"time"
)

const (
	ili9488Width  = 480
	ili9488Height = 320
)

// ili9488 drives the panel directly over SPI; it keeps no framebuffer.
type ili9488 struct {
	spi machine.SPI
	cs  machine.Pin
	dc  machine.Pin
	rst machine.Pin

	txBuf []byte
}

func initILI9488() (*ili9488, error) {
	if machine.SPI1 == nil {
		return nil, errors.New("SPI1 unavailable")
	}

	if err := machine.SPI1.Configure(machine.SPIConfig{
		SCK:       lcdSCK,
		SDO:       lcdSDO,
		SDI:       lcdSDI,
		Frequency: 40_000_000,
	}); err != nil {
		return nil, fmt.Errorf("configure SPI1: %w", err)
	}

	lcd := &ili9488{
		spi:   *machine.SPI1,
		cs:    lcdCS,
		dc:    lcdDC,
		rst:   lcdRST,
		txBuf: make([]byte, 512),
	}

	lcd.cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
	lcd.dc.Configure(machine.PinConfig{Mode: machine.PinOutput})
	lcd.rst.Configure(machine.PinConfig{Mode: machine.PinOutput})
	lcd.cs.High()
	lcd.dc.High()
	lcd.rst.High()

	lcd.reset()
	lcd.init()

	return lcd, nil
}

func (d *ili9488) reset() {
	d.rst.Low()
	time.Sleep(64 * time.Millisecond)
	d.rst.High()
	time.Sleep(140 * time.Millisecond)
}

func (d *ili9488) init() {
	// Power control.
	d.cmd(0xC0, 0x17, 0x15) // PWCTRL1
	d.cmd(0xC1, 0x41)       // PWCTRL2

	// VCOM control.
	d.cmd(0xC5, 0x00, 0x12, 0x80, 0x40) // VMCTRL

	// Pixel format: 16bpp.
	d.cmd(0x3A, 0x55) // COLMOD

	// Frame rate / display function.
	d.cmd(0xB1, 0xA0, 0x11)       // FRMCTRL1
	d.cmd(0xB6, 0x02, 0x22, 0x3B) // DISCTRL (480 lines)

	// Memory access control: landscape (row/column exchange) + BGR panel order.
	d.cmd(0x36, 0x20|0x08) // MV|BGR

	d.cmd(0x11) // SLPOUT
	time.Sleep(120 * time.Millisecond)
	d.cmd(0x29) // DISPON
}

func (d *ili9488) cmd(cmd byte, data ...byte) {
	d.cs.Low()
	d.dc.Low()
	d.spi.Tx([]byte{cmd}, nil)
	d.dc.High()
	if len(data) > 0 {
		d.spi.Tx(data, nil)
	}
	d.cs.High()
}

func (d *ili9488) Size() (w, h int16) { return ili9488Width, ili9488Height }

func (d *ili9488) SetWindow(x, y, w, h int16) error {
	if w <= 0 || h <= 0 || x < 0 || y < 0 || int(x)+int(w) > ili9488Width || int(y)+int(h) > ili9488Height {
		return fmt.Errorf("lcd: window %d,%d %dx%d out of range", x, y, w, h)
	}
	x0, y0 := uint16(x), uint16(y)
	x1, y1 := uint16(x+w-1), uint16(y+h-1)
	d.cmd(
		0x2A,
		byte(x0>>8), byte(x0),
		byte(x1>>8), byte(x1),
	)
	d.cmd(
		0x2B,
		byte(y0>>8), byte(y0),
		byte(y1>>8), byte(y1),
	)
	return nil
}

// PushColors writes pixels to GRAM. first issues RAMWR so the controller
// restarts at the window origin; later chunks continue without a command.
func (d *ili9488) PushColors(colors []uint16, first bool) error {
	d.cs.Low()
	if first {
		d.dc.Low()
		d.spi.Tx([]byte{0x2C}, nil)
	}
	d.dc.High()

	chunk := d.txBuf
	for len(colors) > 0 {
		n := len(chunk) / 2
		if n > len(colors) {
			n = len(colors)
		}
		for i := 0; i < n; i++ {
			// The LCD expects big-endian RGB565.
			chunk[2*i] = byte(colors[i] >> 8)
			chunk[2*i+1] = byte(colors[i])
		}
		d.spi.Tx(chunk[:2*n], nil)
		colors = colors[n:]
	}

	d.cs.High()
	return nil
}

func (d *ili9488) FillRect(x, y, w, h int16, c uint16) error {
	x0 := clampInt16(x, 0, ili9488Width)
	y0 := clampInt16(y, 0, ili9488Height)
	x1 := clampInt16(x+w, 0, ili9488Width)
	y1 := clampInt16(y+h, 0, ili9488Height)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}
	if err := d.SetWindow(x0, y0, x1-x0, y1-y0); err != nil {
		return err
	}

	chunk := d.txBuf
	for i := 0; i+1 < len(chunk); i += 2 {
		chunk[i] = byte(c >> 8)
		chunk[i+1] = byte(c)
	}

	d.cs.Low()
	d.dc.Low()
	d.spi.Tx([]byte{0x2C}, nil)
	d.dc.High()
	for remain := int(x1-x0) * int(y1-y0) * 2; remain > 0; {
		n := len(chunk)
		if n > remain {
			n = remain
		}
		d.spi.Tx(chunk[:n], nil)
		remain -= n
	}
	d.cs.High()
	return nil
}

func clampInt16(v, lo, hi int16) int16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
