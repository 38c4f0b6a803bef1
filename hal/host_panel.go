//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
)

// hostPanel emulates a direct-drive controller on top of an in-memory
// RGB565 framebuffer that the window backend presents.
type hostPanel struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte

	// Current address window and write cursor.
	wx, wy, ww, wh int
	cx, cy         int
	windowSet      bool
}

func newHostPanel(width, height int) *hostPanel {
	stride := width * 2
	return &hostPanel{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (p *hostPanel) Size() (w, h int16) { return int16(p.width), int16(p.height) }

func (p *hostPanel) SetWindow(x, y, w, h int16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w <= 0 || h <= 0 || x < 0 || y < 0 || int(x)+int(w) > p.width || int(y)+int(h) > p.height {
		return fmt.Errorf("panel: window %d,%d %dx%d outside %dx%d", x, y, w, h, p.width, p.height)
	}
	p.wx, p.wy, p.ww, p.wh = int(x), int(y), int(w), int(h)
	p.cx, p.cy = 0, 0
	p.windowSet = true
	return nil
}

func (p *hostPanel) PushColors(colors []uint16, first bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.windowSet {
		return fmt.Errorf("panel: push without window")
	}
	if first {
		p.cx, p.cy = 0, 0
	}
	for _, c := range colors {
		if p.cy >= p.wh {
			// Controllers drop writes past the end of the window.
			break
		}
		off := (p.wy+p.cy)*p.stride + (p.wx+p.cx)*2
		p.buf[off] = byte(c)
		p.buf[off+1] = byte(c >> 8)
		p.cx++
		if p.cx >= p.ww {
			p.cx = 0
			p.cy++
		}
	}
	return nil
}

func (p *hostPanel) FillRect(x, y, w, h int16, c uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	x0 := clampInt(int(x), 0, p.width)
	y0 := clampInt(int(y), 0, p.height)
	x1 := clampInt(int(x)+int(w), 0, p.width)
	y1 := clampInt(int(y)+int(h), 0, p.height)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	lo := byte(c)
	hi := byte(c >> 8)
	for py := y0; py < y1; py++ {
		row := py * p.stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			p.buf[off] = lo
			p.buf[off+1] = hi
		}
	}
	return nil
}

func (p *hostPanel) pixel(x, y int) uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	off := y*p.stride + x*2
	return uint16(p.buf[off]) | uint16(p.buf[off+1])<<8
}

func (p *hostPanel) snapshotRGB565(dst []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	copy(dst, p.buf)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
