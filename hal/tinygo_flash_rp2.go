//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"errors"
	"machine"
)

// Flash writes can run from a pin interrupt, so errors are preallocated and
// driver errors are passed through unwrapped.
var (
	errFlashRange     = errors.New("flash: offset out of range")
	errFlashUnaligned = errors.New("flash: erase not block aligned")
)

// rp2Flash exposes the data area TinyGo reserves after the firmware image.
type rp2Flash struct{}

func newRP2Flash() Flash {
	return rp2Flash{}
}

func (rp2Flash) SizeBytes() uint32 {
	return clampUint32(machine.Flash.Size())
}

func (rp2Flash) EraseBlockBytes() uint32 {
	return clampUint32(machine.Flash.EraseBlockSize())
}

func (f rp2Flash) ReadAt(p []byte, off uint32) (int, error) {
	if off >= f.SizeBytes() {
		return 0, errFlashRange
	}
	return machine.Flash.ReadAt(p, int64(off))
}

func (f rp2Flash) WriteAt(p []byte, off uint32) (int, error) {
	if off >= f.SizeBytes() {
		return 0, errFlashRange
	}
	return machine.Flash.WriteAt(p, int64(off))
}

func (f rp2Flash) Erase(off, size uint32) error {
	if size == 0 {
		return nil
	}
	bs := f.EraseBlockBytes()
	if bs == 0 {
		return ErrNotImplemented
	}
	if off%bs != 0 || size%bs != 0 {
		return errFlashUnaligned
	}
	return machine.Flash.EraseBlocks(int64(off/bs), int64(size/bs))
}

func clampUint32(v int64) uint32 {
	if v <= 0 {
		return 0
	}
	if v > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(v)
}
