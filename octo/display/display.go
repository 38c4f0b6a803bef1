// Package display adapts a hal.Panel to the drawing interfaces used by the
// dashboard, the bitmap streamer, tinyfont and tinyterm.
package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"

	"octopus/hal"
)

// Canvas draws straight to the panel; it keeps no pixel memory.
type Canvas struct {
	p    hal.Panel
	font tinyfont.Fonter
}

func New(p hal.Panel, font tinyfont.Fonter) *Canvas {
	return &Canvas{p: p, font: font}
}

func (c *Canvas) Size() (w, h int16) { return c.p.Size() }

func (c *Canvas) SetWindow(x, y, w, h int16) error { return c.p.SetWindow(x, y, w, h) }

func (c *Canvas) PushColors(colors []uint16, first bool) error {
	return c.p.PushColors(colors, first)
}

func (c *Canvas) FillRect(x, y, w, h int16, col uint16) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	return c.p.FillRect(x, y, w, h, col)
}

// SetPixel implements drivers.Displayer.
func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	w, h := c.p.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	_ = c.p.FillRect(x, y, 1, 1, RGB565(col))
}

// Display implements drivers.Displayer. Writes are already on the panel.
func (c *Canvas) Display() error { return nil }

func (c *Canvas) FillRectangle(x, y, w, h int16, col color.RGBA) error {
	return c.FillRect(x, y, w, h, RGB565(col))
}

// SetScroll is a no-op: the panel has no vertical scroll area configured.
func (c *Canvas) SetScroll(line int16) {}

func (c *Canvas) SetRotation(r drivers.Rotation) error {
	if r != drivers.Rotation0 {
		return hal.ErrNotImplemented
	}
	return nil
}

// TextBounds returns the advance width of s and the height of its tallest
// glyph above the baseline.
func (c *Canvas) TextBounds(s string) (w, h int16) {
	if c.font == nil {
		return 0, 0
	}
	_, outbox := tinyfont.LineWidth(c.font, s)
	var ascent int16
	for _, r := range s {
		if a := -int16(c.font.GetGlyph(r).Info().YOffset); a > ascent {
			ascent = a
		}
	}
	return int16(outbox), ascent
}

// DrawText writes s with its baseline at y.
func (c *Canvas) DrawText(x, y int16, s string, col uint16) {
	if c.font == nil {
		return
	}
	tinyfont.WriteLine(c, c.font, x, y, s, RGBA(col))
}

func RGB565(c color.RGBA) uint16 { return hal.RGB565(c.R, c.G, c.B) }

func RGBA(p uint16) color.RGBA {
	r, g, b := hal.RGB888From565(p)
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

var (
	_ drivers.Displayer = (*Canvas)(nil)
)
