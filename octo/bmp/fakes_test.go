package bmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"octopus/hal"
)

type memStorage struct {
	files map[string][]byte
	open  *memFile
}

func (s *memStorage) Open(name string) (hal.File, error) {
	b, ok := s.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	if s.open == nil {
		s.open = &memFile{}
	}
	s.open.r.Reset(b)
	s.open.seeks = 0
	s.open.closed = false
	return s.open, nil
}

type memFile struct {
	r      bytes.Reader
	seeks  int
	closed bool
	chunk  int
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.chunk > 0 && len(p) > f.chunk {
		p = p[:f.chunk]
	}
	return f.r.Read(p)
}

func (f *memFile) Seek(off int64, whence int) (int64, error) {
	f.seeks++
	return f.r.Seek(off, whence)
}

func (f *memFile) Position() int64 { return f.r.Size() - int64(f.r.Len()) }

func (f *memFile) Close() error {
	f.closed = true
	return nil
}

// screen applies windowed pushes to a pixel grid and records the calls.
type screen struct {
	w, h    int16
	px      []uint16
	windows [][4]int16
	pushes  []int

	win    [4]int16
	cursor int
}

func newScreen(w, h int16) *screen {
	return &screen{w: w, h: h, px: make([]uint16, int(w)*int(h))}
}

func (s *screen) Size() (int16, int16) { return s.w, s.h }

func (s *screen) SetWindow(x, y, w, h int16) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > s.w || y+h > s.h {
		return errors.New("window out of bounds")
	}
	s.win = [4]int16{x, y, w, h}
	s.windows = append(s.windows, s.win)
	return nil
}

func (s *screen) PushColors(c []uint16, first bool) error {
	if len(s.windows) == 0 {
		return errors.New("push without window")
	}
	if first {
		s.cursor = 0
	}
	s.pushes = append(s.pushes, len(c))
	for _, v := range c {
		ww := int(s.win[2])
		x := int(s.win[0]) + s.cursor%ww
		y := int(s.win[1]) + s.cursor/ww
		if y < int(s.win[1]+s.win[3]) {
			s.px[y*int(s.w)+x] = v
		}
		s.cursor++
	}
	return nil
}

func (s *screen) at(x, y int) uint16 { return s.px[y*int(s.w)+x] }

// countingTarget accepts everything without keeping it.
type countingTarget struct {
	w, h   int16
	pixels int
}

func (t *countingTarget) Size() (int16, int16)             { return t.w, t.h }
func (t *countingTarget) SetWindow(x, y, w, h int16) error { return nil }

func (t *countingTarget) PushColors(c []uint16, first bool) error {
	t.pixels += len(c)
	return nil
}

type lines []string

func (l *lines) WriteLineString(s string) { *l = append(*l, s) }
func (l *lines) WriteLineBytes(b []byte)  { *l = append(*l, string(b)) }

// pattern gives every pixel a distinct, recognisable color.
func pattern(x, y int) (r, g, b uint8) {
	return uint8(x * 8), uint8(y * 4), uint8(x + y)
}

func want565(x, y int) uint16 {
	r, g, b := pattern(x, y)
	return hal.RGB565(r, g, b)
}

// encodeBMP writes a 24-bit BMP with 0xEE row padding.
func encodeBMP(w, h int, topDown bool, px func(x, y int) (r, g, b uint8)) []byte {
	stride := (w*3 + 3) &^ 3
	const offset = 54
	var buf bytes.Buffer
	le := binary.LittleEndian
	put16 := func(v uint16) { _ = binary.Write(&buf, le, v) }
	put32 := func(v uint32) { _ = binary.Write(&buf, le, v) }

	buf.WriteString("BM")
	put32(uint32(offset + stride*h))
	put32(0)
	put32(offset)
	put32(40)
	put32(uint32(w))
	if topDown {
		put32(uint32(int32(-h)))
	} else {
		put32(uint32(h))
	}
	put16(1)
	put16(24)
	put32(0)
	put32(uint32(stride * h))
	put32(2835)
	put32(2835)
	put32(0)
	put32(0)

	row := make([]byte, stride)
	for i := 0; i < h; i++ {
		y := h - 1 - i
		if topDown {
			y = i
		}
		for x := 0; x < w; x++ {
			r, g, b := px(x, y)
			row[x*3], row[x*3+1], row[x*3+2] = b, g, r
		}
		for p := w * 3; p < stride; p++ {
			row[p] = 0xEE
		}
		buf.Write(row)
	}
	return buf.Bytes()
}

var _ io.ReadSeeker = (*memFile)(nil)
