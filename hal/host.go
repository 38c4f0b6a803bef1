//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// HostConfig describes the simulated hardware of a desktop run.
type HostConfig struct {
	Width  int
	Height int

	FlashPath      string
	FlashSizeBytes uint32

	AssetsDir string

	// SerialPort, when set, sends log lines to a serial device instead of stdout.
	SerialPort string
	SerialBaud int

	// PulseHz is the flow meter pulse rate while the pump runs.
	PulseHz float64

	// Tank geometry seen by the simulated ranger.
	TankMinCM uint32
	TankMaxCM uint32

	// FillPerSecond and DrainPerSecond are tank fractions per second.
	FillPerSecond  float64
	DrainPerSecond float64
}

// DefaultHostConfig matches the dashboard's 480x320 panel and a 200 cm tank.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		Width:          480,
		Height:         320,
		FlashPath:      "octopus.flash",
		FlashSizeBytes: 64 * 1024,
		AssetsDir:      "assets",
		SerialBaud:     115200,
		PulseHz:        60,
		TankMinCM:      20,
		TankMaxCM:      200,
		FillPerSecond:  0.01,
		DrainPerSecond: 0.015,
	}
}

type hostHAL struct {
	logger   Logger
	closeLog func() error

	panel   *hostPanel
	flash   *hostFlash
	storage *dirStorage
	sim     *tankSim
	kbd     *hostKeyboard

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewHost returns a host HAL backed by simulated sensors.
func NewHost(cfg HostConfig) (HAL, error) {
	def := DefaultHostConfig()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.FlashSizeBytes == 0 {
		cfg.FlashSizeBytes = def.FlashSizeBytes
	}
	if cfg.TankMaxCM <= cfg.TankMinCM {
		cfg.TankMinCM, cfg.TankMaxCM = def.TankMinCM, def.TankMaxCM
	}

	var logger Logger = &hostLogger{w: os.Stdout}
	closeLog := func() error { return nil }
	if cfg.SerialPort != "" {
		sl, err := openSerialLogger(cfg.SerialPort, cfg.SerialBaud)
		if err != nil {
			return nil, err
		}
		logger = sl
		closeLog = sl.Close
	}

	flash, err := newHostFlash(cfg.FlashPath, cfg.FlashSizeBytes)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	h := &hostHAL{
		logger:   logger,
		closeLog: closeLog,
		panel:    newHostPanel(cfg.Width, cfg.Height),
		flash:    flash,
		storage:  &dirStorage{dir: cfg.AssetsDir},
		sim:      newTankSim(cfg, time.Now),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	h.kbd = newHostKeyboard(h.sim)
	go h.runSim()
	return h, nil
}

func (h *hostHAL) Logger() Logger        { return h.logger }
func (h *hostHAL) Panel() Panel          { return h.panel }
func (h *hostHAL) Flash() Flash          { return h.flash }
func (h *hostHAL) Storage() Storage      { return h.storage }
func (h *hostHAL) Ranger() Ranger        { return h.sim }
func (h *hostHAL) FlowPin() InterruptPin { return h.sim.flow }
func (h *hostHAL) PumpPin() GPIOPin      { return h.sim.pump }
func (h *hostHAL) ValvePin() GPIOPin     { return h.sim.valve }
func (h *hostHAL) Keyboard() Keyboard    { return h.kbd }

// runSim advances the tank model off the main goroutine so flow pulses
// arrive asynchronously, like a pin interrupt.
func (h *hostHAL) runSim() {
	defer close(h.done)
	t := time.NewTicker(2 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-t.C:
			h.sim.advance()
		}
	}
}

func (h *hostHAL) close() error {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
	var first error
	if err := h.flash.Close(); err != nil {
		first = fmt.Errorf("close flash: %w", err)
	}
	if err := h.closeLog(); err != nil && first == nil {
		first = fmt.Errorf("close serial: %w", err)
	}
	return first
}

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
