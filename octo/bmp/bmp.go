// Package bmp streams uncompressed 24-bit BMP files to a windowed display
// through fixed size buffers.
package bmp

import (
	"errors"
	"fmt"
	"io"

	"octopus/hal"
)

const (
	// InBytes holds whole pixels only.
	InBytes = 20 * 3

	// OutPixels is the largest run handed to Target.PushColors.
	OutPixels = 20
)

// Target is the display side of a draw: an addressing window followed by
// runs of RGB565 pixels.
type Target interface {
	Size() (w, h int16)
	SetWindow(x, y, w, h int16) error
	PushColors(colors []uint16, first bool) error
}

// Streamer draws images from storage. Its buffers are reused across draws,
// so a Streamer must not be shared between goroutines.
type Streamer struct {
	fs  hal.Storage
	dst Target
	log hal.Logger

	in   [InBytes]byte
	idx  int
	fill int

	out [OutPixels]uint16
}

func New(fs hal.Storage, dst Target, log hal.Logger) *Streamer {
	return &Streamer{fs: fs, dst: dst, log: log}
}

// Draw paints name with its top-left corner at (x, y), clipped to the
// target. Failures are logged and returned; the target is left untouched
// when the file is missing or its header is rejected.
func (s *Streamer) Draw(name string, x, y int16) error {
	if err := s.draw(name, x, y); err != nil {
		if s.log != nil {
			s.log.WriteLineString("bmp: " + name + ": " + err.Error())
		}
		return err
	}
	return nil
}

func (s *Streamer) draw(name string, x, y int16) error {
	if s.fs == nil {
		return fmt.Errorf("no storage: %w", hal.ErrNotImplemented)
	}
	f, err := s.fs.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.ReadFull(f, s.in[:HeaderBytes]); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	hdr, err := ParseHeader(s.in[:HeaderBytes])
	if err != nil {
		return err
	}
	s.idx, s.fill = 0, 0

	dw, dh := s.dst.Size()
	x0, x1 := clip(int64(x), int64(hdr.Width), int64(dw))
	y0, y1 := clip(int64(y), hdr.Rows(), int64(dh))
	if x0 >= x1 || y0 >= y1 {
		return nil
	}
	cols := x1 - x0
	rows := y1 - y0
	col := x0 - int64(x)
	row := y0 - int64(y)

	if err := s.dst.SetWindow(int16(x0), int16(y0), int16(cols), int16(rows)); err != nil {
		return fmt.Errorf("set window: %w", err)
	}

	first := true
	n := 0
	for r := int64(0); r < rows; r++ {
		pos := hdr.RowOffset(row+r) + col*3
		if f.Position()-int64(s.fill-s.idx) != pos {
			if _, err := f.Seek(pos, io.SeekStart); err != nil {
				return fmt.Errorf("seek row %d: %w", row+r, err)
			}
			s.idx, s.fill = 0, 0
		}
		for c := int64(0); c < cols; c++ {
			if s.fill-s.idx < 3 {
				if err := s.refill(f); err != nil {
					return fmt.Errorf("read row %d: %w", row+r, err)
				}
			}
			b, g, rr := s.in[s.idx], s.in[s.idx+1], s.in[s.idx+2]
			s.idx += 3
			s.out[n] = hal.RGB565(rr, g, b)
			n++
			if n == len(s.out) {
				if err := s.dst.PushColors(s.out[:n], first); err != nil {
					return fmt.Errorf("push: %w", err)
				}
				first = false
				n = 0
			}
		}
	}
	if n > 0 {
		if err := s.dst.PushColors(s.out[:n], first); err != nil {
			return fmt.Errorf("push: %w", err)
		}
	}
	return nil
}

// refill moves any partial pixel to the front of the input buffer and reads
// until at least one whole pixel is buffered.
func (s *Streamer) refill(f hal.File) error {
	s.fill = copy(s.in[:], s.in[s.idx:s.fill])
	s.idx = 0
	for s.fill < 3 {
		n, err := f.Read(s.in[s.fill:])
		s.fill += n
		if s.fill >= 3 {
			return nil
		}
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// clip returns the visible span [lo, hi) of an extent of length n placed at
// pos on an axis of length limit.
func clip(pos, n, limit int64) (lo, hi int64) {
	lo, hi = pos, pos+n
	if lo < 0 {
		lo = 0
	}
	if hi > limit {
		hi = limit
	}
	return lo, hi
}
