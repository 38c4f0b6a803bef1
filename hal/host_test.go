//go:build !tinygo

package hal

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostPanelWindowStream(t *testing.T) {
	p := newHostPanel(8, 4)
	require.Error(t, p.PushColors([]uint16{1}, true), "push without window")
	require.Error(t, p.SetWindow(6, 0, 4, 1), "window past the edge")

	require.NoError(t, p.SetWindow(2, 1, 3, 2))
	require.NoError(t, p.PushColors([]uint16{1, 2, 3, 4}, true))
	require.NoError(t, p.PushColors([]uint16{5, 6, 7}, false))

	assert.Equal(t, uint16(1), p.pixel(2, 1))
	assert.Equal(t, uint16(3), p.pixel(4, 1))
	assert.Equal(t, uint16(4), p.pixel(2, 2))
	assert.Equal(t, uint16(6), p.pixel(4, 2))
	assert.Equal(t, uint16(0), p.pixel(5, 2), "writes past the window are dropped")

	require.NoError(t, p.PushColors([]uint16{9}, true))
	assert.Equal(t, uint16(9), p.pixel(2, 1))
}

func TestHostPanelFillRectClips(t *testing.T) {
	p := newHostPanel(4, 4)
	require.NoError(t, p.FillRect(-2, -2, 4, 4, 0xABCD))
	assert.Equal(t, uint16(0xABCD), p.pixel(0, 0))
	assert.Equal(t, uint16(0xABCD), p.pixel(1, 1))
	assert.Equal(t, uint16(0), p.pixel(2, 2))

	require.NoError(t, p.FillRect(10, 10, 2, 2, 1))
}

func TestHostFlashNORSemantics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")
	f, err := newHostFlash(path, 2*hostFlashEraseBlockBytes)
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = f.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, buf, "fresh image reads erased")

	_, err = f.WriteAt([]byte{0x0F, 0x00}, 8)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xF0}, 8)
	assert.ErrorIs(t, err, ErrFlashWriteRequiresErase)

	require.Error(t, f.Erase(1, hostFlashEraseBlockBytes))
	require.NoError(t, f.Erase(0, hostFlashEraseBlockBytes))
	_, err = f.WriteAt([]byte{0xF0}, 8)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Reopening keeps the contents.
	f, err = newHostFlash(path, 2*hostFlashEraseBlockBytes)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.ReadAt(buf[:1], 8)
	require.NoError(t, err)
	assert.Equal(t, byte(0xF0), buf[0])

	_, err = f.ReadAt(buf, f.SizeBytes())
	assert.ErrorIs(t, err, os.ErrInvalid)
}

func TestDirStorageTracksPosition(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bmp"), []byte("0123456789"), 0o644))
	s := &dirStorage{dir: dir}

	f, err := s.Open("a.bmp")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 4)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, int64(4), f.Position())

	pos, err := f.Seek(7, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos)
	assert.Equal(t, int64(7), f.Position())

	_, err = s.Open("missing.bmp")
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = s.Open(" ")
	assert.ErrorIs(t, err, os.ErrInvalid)
}

func TestTankSim(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := DefaultHostConfig()
	cfg.PulseHz = 10
	cfg.FillPerSecond = 0.1
	cfg.DrainPerSecond = 0.2
	s := newTankSim(cfg, func() time.Time { return now })

	var pulses int
	require.NoError(t, s.flow.SetInterrupt(EdgeFalling, func() { pulses++ }))
	assert.Equal(t, uint32(110*simRoundTripMicrosPerCM), s.Ping(), "starts half full")

	require.NoError(t, s.pump.Configure(GPIOModeOutput, GPIOPullNone))
	require.NoError(t, s.pump.Write(true))
	now = now.Add(time.Second)
	s.advance()
	assert.Equal(t, 10, pulses)
	assert.Equal(t, uint32(92*simRoundTripMicrosPerCM), s.Ping())

	assert.True(t, s.toggleFault())
	now = now.Add(time.Second)
	s.advance()
	assert.Equal(t, 10, pulses, "a dry pump gives no pulses")

	require.NoError(t, s.pump.Write(false))
	assert.True(t, s.toggleValve())
	now = now.Add(10 * time.Second)
	s.advance()
	assert.Equal(t, uint32(200*simRoundTripMicrosPerCM), s.Ping(), "drained empty")

	assert.True(t, s.toggleEcho())
	assert.Equal(t, uint32(0), s.Ping())
}
