package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// Panel is a direct-drive display: there is no framebuffer on the device
// side, every write lands in the controller's GRAM.
//
// Colors are RGB565 in host byte order; implementations swap as needed.
type Panel interface {
	Size() (w, h int16)

	// SetWindow selects the destination rectangle for the next PushColors run.
	SetWindow(x, y, w, h int16) error

	// PushColors streams pixels into the current window in row-major order.
	// first starts a new write at the window origin; otherwise pixels continue
	// where the previous push stopped.
	PushColors(colors []uint16, first bool) error

	FillRect(x, y, w, h int16, c uint16) error
}

// Flash provides raw access to non-volatile memory.
//
// It is intentionally low-level: addresses and erase blocks only.
// WriteAt and Erase may be called from a pin interrupt and must not allocate
// on the success path.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// File is an open, seekable, read-only asset.
type File interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)

	// Position reports the current read offset without touching the device.
	Position() int64
	Close() error
}

// Storage opens assets from removable media by name.
type Storage interface {
	Open(name string) (File, error)
}

// Ranger fires one ultrasonic ping and returns the echo round-trip time in
// microseconds. Zero means no echo was received.
type Ranger interface {
	Ping() uint32
}

// KeyEvent is a key press from a host keyboard.
type KeyEvent struct {
	Rune rune
}

// Keyboard provides key events (host builds only).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// HAL provides the only contact point between the dashboard and the outside world.
type HAL interface {
	Logger() Logger
	Panel() Panel
	Flash() Flash
	Storage() Storage
	Ranger() Ranger

	// FlowPin is the pulse input of the flow meter.
	FlowPin() InterruptPin

	// PumpPin drives the pump relay.
	PumpPin() GPIOPin

	// ValvePin reports the drain valve position switch.
	ValvePin() GPIOPin

	// Keyboard may return nil.
	Keyboard() Keyboard
}
