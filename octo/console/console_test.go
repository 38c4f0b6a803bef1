package console

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"
)

type pixelCounter struct {
	pixels int
	fills  int
}

func (d *pixelCounter) Size() (int16, int16)                 { return 480, 320 }
func (d *pixelCounter) SetPixel(x, y int16, c color.RGBA)    { d.pixels++ }
func (d *pixelCounter) Display() error                       { return nil }
func (d *pixelCounter) SetScroll(line int16)                 {}
func (d *pixelCounter) SetRotation(r drivers.Rotation) error { return nil }

func (d *pixelCounter) FillRectangle(x, y, w, h int16, c color.RGBA) error {
	d.fills++
	return nil
}

type lines []string

func (l *lines) WriteLineString(s string) { *l = append(*l, s) }
func (l *lines) WriteLineBytes(b []byte)  { *l = append(*l, string(b)) }

func TestLinesAreMirroredAndDrawn(t *testing.T) {
	d := &pixelCounter{}
	var log lines
	c := New(d, &log)
	require.Positive(t, d.fills, "screen cleared")

	c.WriteLineString("OCTOPUS v1.0")
	c.WriteLineBytes([]byte("Total water used: 2.00 L"))

	assert.Equal(t, lines{"OCTOPUS v1.0", "Total water used: 2.00 L"}, log)
	assert.Positive(t, d.pixels)
}

func TestNilMirror(t *testing.T) {
	d := &pixelCounter{}
	c := New(d, nil)
	c.WriteLineString("ok")
	assert.Positive(t, d.pixels)
}
