package bmp

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderBytes covers the file header and the BITMAPINFOHEADER fields up to
// the compression word.
const HeaderBytes = 34

const signature = 0x4D42 // "BM"

var (
	ErrBadSignature = errors.New("bmp: bad signature")
	ErrUnsupported  = errors.New("bmp: unsupported format")
)

// Header is the subset of a BMP header needed to stream 24-bit pixels.
type Header struct {
	Offset      uint32
	Width       int32
	Height      int32 // negative for top-down rows
	Planes      uint16
	Depth       uint16
	Compression uint32
}

// ParseHeader decodes and validates the first HeaderBytes of a file.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderBytes {
		return Header{}, fmt.Errorf("bmp: short header (%d bytes): %w", len(b), ErrUnsupported)
	}
	le := binary.LittleEndian
	if le.Uint16(b[0:]) != signature {
		return Header{}, ErrBadSignature
	}
	h := Header{
		Offset:      le.Uint32(b[10:]),
		Width:       int32(le.Uint32(b[18:])),
		Height:      int32(le.Uint32(b[22:])),
		Planes:      le.Uint16(b[26:]),
		Depth:       le.Uint16(b[28:]),
		Compression: le.Uint32(b[30:]),
	}
	switch {
	case h.Planes != 1:
		return h, fmt.Errorf("bmp: %d planes: %w", h.Planes, ErrUnsupported)
	case h.Depth != 24:
		return h, fmt.Errorf("bmp: %d bits per pixel: %w", h.Depth, ErrUnsupported)
	case h.Compression != 0:
		return h, fmt.Errorf("bmp: compression %d: %w", h.Compression, ErrUnsupported)
	case h.Width <= 0 || h.Height == 0:
		return h, fmt.Errorf("bmp: %dx%d: %w", h.Width, h.Height, ErrUnsupported)
	case h.Offset < HeaderBytes:
		return h, fmt.Errorf("bmp: pixel offset %d inside header: %w", h.Offset, ErrUnsupported)
	}
	return h, nil
}

// TopDown reports whether the first stored row is the top of the image.
func (h Header) TopDown() bool { return h.Height < 0 }

// Rows returns the image height regardless of row order.
func (h Header) Rows() int64 {
	if h.Height < 0 {
		return -int64(h.Height)
	}
	return int64(h.Height)
}

// Stride is the stored row length, padded to four bytes.
func (h Header) Stride() int64 {
	return (int64(h.Width)*3 + 3) &^ 3
}

// RowOffset returns the file offset of image row y, counted from the top.
func (h Header) RowOffset(y int64) int64 {
	if !h.TopDown() {
		y = h.Rows() - 1 - y
	}
	return int64(h.Offset) + y*h.Stride()
}
