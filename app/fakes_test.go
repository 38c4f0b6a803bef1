package app

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	xbmp "golang.org/x/image/bmp"

	"octopus/hal"
	"octopus/octo/dashboard"
)

type logLines struct {
	mu    sync.Mutex
	lines []string
}

func (l *logLines) WriteLineString(s string) {
	l.mu.Lock()
	l.lines = append(l.lines, s)
	l.mu.Unlock()
}

func (l *logLines) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *logLines) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type fakePanel struct {
	windows [][4]int16
	pushed  int
	fills   int
}

func (p *fakePanel) Size() (int16, int16) { return 480, 320 }

func (p *fakePanel) SetWindow(x, y, w, h int16) error {
	p.windows = append(p.windows, [4]int16{x, y, w, h})
	return nil
}

func (p *fakePanel) PushColors(c []uint16, first bool) error {
	p.pushed += len(c)
	return nil
}

func (p *fakePanel) FillRect(x, y, w, h int16, c uint16) error {
	p.fills++
	return nil
}

type memFlash struct {
	data []byte
	fail error
}

func newMemFlash() *memFlash {
	f := &memFlash{data: make([]byte, 8192)}
	for i := range f.data {
		f.data[i] = 0xFF
	}
	return f
}

func (f *memFlash) SizeBytes() uint32       { return uint32(len(f.data)) }
func (f *memFlash) EraseBlockBytes() uint32 { return 4096 }

func (f *memFlash) ReadAt(p []byte, off uint32) (int, error) { return copy(p, f.data[off:]), nil }

func (f *memFlash) WriteAt(p []byte, off uint32) (int, error) {
	for i, b := range p {
		f.data[int(off)+i] &= b
	}
	return len(p), nil
}

func (f *memFlash) Erase(off, size uint32) error {
	if f.fail != nil {
		return f.fail
	}
	for i := off; i < off+size; i++ {
		f.data[i] = 0xFF
	}
	return nil
}

type memStorage map[string][]byte

func (s memStorage) Open(name string) (hal.File, error) {
	b, ok := s[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return &memFile{r: bytes.NewReader(b)}, nil
}

type memFile struct{ r *bytes.Reader }

func (f *memFile) Read(p []byte) (int, error)                { return f.r.Read(p) }
func (f *memFile) Seek(off int64, whence int) (int64, error) { return f.r.Seek(off, whence) }
func (f *memFile) Position() int64                           { return f.r.Size() - int64(f.r.Len()) }
func (f *memFile) Close() error                              { return nil }

type fakeRanger struct {
	mu    sync.Mutex
	us    uint32
	pings int
	boom  bool
}

func (r *fakeRanger) Ping() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.boom {
		panic("ranger exploded")
	}
	r.pings++
	return r.us
}

func (r *fakeRanger) setCM(cm uint32) {
	r.mu.Lock()
	r.us = cm * 57
	r.mu.Unlock()
}

type flowPin struct {
	handler func()
}

func (p *flowPin) Name() string { return "FLOW" }

func (p *flowPin) SetInterrupt(edge hal.Edge, handler func()) error {
	if p.handler != nil {
		return hal.ErrInterruptBusy
	}
	p.handler = handler
	return nil
}

func (p *flowPin) ClearInterrupt() error {
	p.handler = nil
	return nil
}

type pin struct {
	caps   hal.GPIOCaps
	mode   hal.GPIOMode
	level  bool
	writes []bool
}

func (p *pin) Name() string        { return "PIN" }
func (p *pin) Caps() hal.GPIOCaps  { return p.caps }
func (p *pin) Read() (bool, error) { return p.level, nil }

func (p *pin) Configure(mode hal.GPIOMode, pull hal.GPIOPull) error {
	p.mode = mode
	return nil
}

func (p *pin) Write(level bool) error {
	p.level = level
	p.writes = append(p.writes, level)
	return nil
}

type keyboard struct{ ch chan hal.KeyEvent }

func (k *keyboard) Events() <-chan hal.KeyEvent { return k.ch }

type fakeHAL struct {
	log    *logLines
	panel  *fakePanel
	flash  *memFlash
	store  memStorage
	ranger *fakeRanger
	flow   *flowPin
	pump   *pin
	valve  *pin
	keys   *keyboard
}

func newFakeHAL(t *testing.T) *fakeHAL {
	t.Helper()
	r := &fakeRanger{}
	r.setCM(45)
	return &fakeHAL{
		log:    &logLines{},
		panel:  &fakePanel{},
		flash:  newMemFlash(),
		store:  assetSet(t),
		ranger: r,
		flow:   &flowPin{},
		pump:   &pin{caps: hal.GPIOCapOutput},
		valve:  &pin{caps: hal.GPIOCapInput | hal.GPIOCapPullUp},
		keys:   &keyboard{ch: make(chan hal.KeyEvent, 4)},
	}
}

func (h *fakeHAL) Logger() hal.Logger        { return h.log }
func (h *fakeHAL) Panel() hal.Panel          { return h.panel }
func (h *fakeHAL) Flash() hal.Flash          { return h.flash }
func (h *fakeHAL) Storage() hal.Storage      { return h.store }
func (h *fakeHAL) Ranger() hal.Ranger        { return h.ranger }
func (h *fakeHAL) FlowPin() hal.InterruptPin { return h.flow }
func (h *fakeHAL) PumpPin() hal.GPIOPin      { return h.pump }
func (h *fakeHAL) ValvePin() hal.GPIOPin     { return h.valve }
func (h *fakeHAL) Keyboard() hal.Keyboard    { return h.keys }

// assetSet encodes every dashboard asset as a small solid bitmap. The
// background is 3x3 so its window is easy to spot.
func assetSet(t *testing.T) memStorage {
	t.Helper()
	names := []string{
		dashboard.AssetOnLit, dashboard.AssetOnDim, dashboard.AssetOffLit, dashboard.AssetOffDim,
		dashboard.AssetPipeDrn, dashboard.AssetPipePmp, dashboard.AssetPipeIdl, dashboard.AssetPipeStop,
		dashboard.AssetWellOK, dashboard.AssetWellErr,
	}
	s := memStorage{dashboard.AssetBackground: encodeSolid(t, 3, 3)}
	for _, n := range names {
		s[n] = encodeSolid(t, 2, 2)
	}
	return s
}

func encodeSolid(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Set(i%w, i/w, color.RGBA{R: 0x40, G: 0x80, B: 0xC0, A: 0xFF})
	}
	var buf bytes.Buffer
	require.NoError(t, xbmp.Encode(&buf, img))
	return buf.Bytes()
}
