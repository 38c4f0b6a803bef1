// Package console is the boot-time text screen. Every line also goes to the
// underlying logger.
package console

import (
	"image/color"

	"tinygo.org/x/tinyfont/freeserif"
	"tinygo.org/x/tinyterm"

	"octopus/hal"
)

var (
	crlf  = []byte("\r\n")
	black = color.RGBA{A: 0xFF}
)

// Console implements hal.Logger on top of a tinyterm terminal.
type Console struct {
	term   *tinyterm.Terminal
	mirror hal.Logger
}

func New(d tinyterm.Displayer, mirror hal.Logger) *Console {
	w, h := d.Size()
	_ = d.FillRectangle(0, 0, w, h, black)
	t := tinyterm.NewTerminal(d)
	t.Configure(&tinyterm.Config{
		Font:       &freeserif.Regular12pt7b,
		FontHeight: 24,
		FontOffset: 18,
	})
	return &Console{term: t, mirror: mirror}
}

func (c *Console) WriteLineString(s string) {
	if c.mirror != nil {
		c.mirror.WriteLineString(s)
	}
	_, _ = c.term.Write([]byte(s))
	_, _ = c.term.Write(crlf)
}

func (c *Console) WriteLineBytes(b []byte) {
	if c.mirror != nil {
		c.mirror.WriteLineBytes(b)
	}
	_, _ = c.term.Write(b)
	_, _ = c.term.Write(crlf)
}
