// Package flow counts pulses from a flow meter and keeps the running total
// in non-volatile storage.
package flow

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"octopus/hal"
)

// Calibration of the YF-S201 style sensor shipped with the tank.
const (
	LitersPerPulse = 1.0 / 450
	HzPerLPM       = 7.5
	StaleAfter     = time.Second
	PersistEvery   = 45000
)

// Config holds the meter calibration and persistence cadence.
type Config struct {
	LitersPerPulse float64       `yaml:"liters_per_pulse"`
	HzPerLPM       float64       `yaml:"hz_per_lpm"`
	StaleAfter     time.Duration `yaml:"stale_after"`
	PersistEvery   uint64        `yaml:"persist_every"`
	FlashAddr      uint32        `yaml:"flash_addr"`
}

func DefaultConfig() Config {
	return Config{
		LitersPerPulse: LitersPerPulse,
		HzPerLPM:       HzPerLPM,
		StaleAfter:     StaleAfter,
		PersistEvery:   PersistEvery,
	}
}

func (c Config) Validate() error {
	switch {
	case c.LitersPerPulse <= 0:
		return fmt.Errorf("flow: liters_per_pulse must be positive, got %v", c.LitersPerPulse)
	case c.HzPerLPM <= 0:
		return fmt.Errorf("flow: hz_per_lpm must be positive, got %v", c.HzPerLPM)
	case c.StaleAfter <= 0:
		return fmt.Errorf("flow: stale_after must be positive, got %v", c.StaleAfter)
	case c.PersistEvery == 0:
		return fmt.Errorf("flow: persist_every must be positive")
	}
	return nil
}

// Store keeps the pulse count across power cycles.
type Store interface {
	LoadCount() (uint64, error)
	StoreCount(n uint64) error
}

// Counter is fed by a pin interrupt and read from the foreground loop.
//
// The edge handler and the readers never share a lock: the pulse count is a
// single atomic, and the edge time and period are published under a sequence
// counter so a reader never sees one from a different edge than the other.
type Counter struct {
	cfg   Config
	store Store
	log   hal.Logger
	now   func() time.Time
	epoch time.Time

	pulses atomic.Uint64

	seq      atomic.Uint32
	lastEdge atomic.Int64 // µs since epoch, plus one; 0 means no edge yet
	period   atomic.Int64 // µs between the last two edges

	saving  atomic.Bool
	pending atomic.Uint64
	saved   atomic.Uint64

	// Last failed write, guarded by saving. failed is set while one is held.
	failed  atomic.Bool
	failN   uint64
	failErr error
}

// New loads the persisted count from store. A failed load is logged and the
// counter starts from zero.
func New(cfg Config, store Store, log hal.Logger) (*Counter, error) {
	return NewWithClock(cfg, store, log, time.Now)
}

func NewWithClock(cfg Config, store Store, log hal.Logger, now func() time.Time) (*Counter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("flow: nil store")
	}
	if now == nil {
		now = time.Now
	}
	c := &Counter{
		cfg:   cfg,
		store: store,
		log:   log,
		now:   now,
		epoch: now(),
	}
	n, err := store.LoadCount()
	if err != nil {
		c.logf("flow: load count: %v", err)
		n = 0
	}
	c.pulses.Store(n)
	c.pending.Store(n)
	c.saved.Store(n)
	return c, nil
}

// Attach registers the edge handler on pin. A pin serves one counter only.
func (c *Counter) Attach(pin hal.InterruptPin) error {
	if err := pin.SetInterrupt(hal.EdgeFalling, c.onEdge); err != nil {
		return fmt.Errorf("flow: attach %s: %w", pin.Name(), err)
	}
	return nil
}

func (c *Counter) Detach(pin hal.InterruptPin) error {
	return pin.ClearInterrupt()
}

func (c *Counter) onEdge() {
	t := c.micros()

	c.seq.Add(1)
	if prev := c.lastEdge.Load(); prev != 0 {
		c.period.Store(t - prev)
	}
	c.lastEdge.Store(t)
	c.seq.Add(1)

	// Interrupt context: no allocation, no logging. A failed write is kept
	// for PersistError and retried with the next batch.
	n := c.pulses.Add(1)
	if n%c.cfg.PersistEvery == 0 {
		_ = c.persist(n)
	}
}

func (c *Counter) micros() int64 {
	return c.now().Sub(c.epoch).Microseconds() + 1
}

// edge returns the last edge time and period as one consistent pair.
func (c *Counter) edge() (last, period int64) {
	for {
		s := c.seq.Load()
		if s&1 != 0 {
			runtime.Gosched()
			continue
		}
		last = c.lastEdge.Load()
		period = c.period.Load()
		if c.seq.Load() == s {
			return last, period
		}
	}
}

// FlowRate returns liters per minute, or 0 when no pulse arrived within the
// stale timeout.
func (c *Counter) FlowRate() float64 {
	last, period := c.edge()
	if last == 0 || period <= 0 {
		return 0
	}
	if c.micros()-last > c.cfg.StaleAfter.Microseconds() {
		return 0
	}
	return 1e6 / float64(period) / c.cfg.HzPerLPM
}

// WaterAmount returns the cumulative volume in liters.
func (c *Counter) WaterAmount() float64 {
	return float64(c.pulses.Load()) * c.cfg.LitersPerPulse
}

func (c *Counter) Pulses() uint64 { return c.pulses.Load() }

// Save persists the current count. Used on shutdown. It reports any write
// failure not yet returned by PersistError, including ones from the edge
// handler.
func (c *Counter) Save() error {
	_ = c.persist(c.pulses.Load())
	return c.PersistError()
}

// PersistError returns and clears the last failed write. The foreground loop
// polls it, since the edge handler cannot log.
func (c *Counter) PersistError() error {
	if !c.failed.Load() {
		return nil
	}
	c.lock()
	n, err := c.failN, c.failErr
	c.failN, c.failErr = 0, nil
	c.failed.Store(false)
	c.saving.Store(false)
	if err == nil {
		return nil
	}
	return fmt.Errorf("flow: persist %d: %w", n, err)
}

// Reset zeroes the count and persists the zero. saved is dropped first so a
// failed write leaves later batches free to overwrite the old count.
func (c *Counter) Reset() error {
	c.lock()
	defer c.saving.Store(false)

	c.pulses.Store(0)
	c.pending.Store(0)
	c.saved.Store(0)
	if err := c.store.StoreCount(0); err != nil {
		return fmt.Errorf("flow: reset: %w", err)
	}
	return nil
}

// lock takes the write guard from the foreground. The edge handler never
// waits on it.
func (c *Counter) lock() {
	for !c.saving.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// persist writes n unless a larger value is already stored. Only one writer
// runs at a time; a caller that loses the race leaves its value in pending
// for the active writer.
func (c *Counter) persist(n uint64) error {
	raise(&c.pending, n)
	for {
		if !c.saving.CompareAndSwap(false, true) {
			return nil
		}
		err := c.drain()
		c.saving.Store(false)
		if err != nil || c.pending.Load() <= c.saved.Load() {
			return err
		}
	}
}

func (c *Counter) drain() error {
	for {
		want := c.pending.Load()
		if want <= c.saved.Load() {
			return nil
		}
		if err := c.store.StoreCount(want); err != nil {
			c.failN, c.failErr = want, err
			c.failed.Store(true)
			return err
		}
		c.saved.Store(want)
	}
}

func raise(v *atomic.Uint64, n uint64) {
	for {
		cur := v.Load()
		if n <= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (c *Counter) logf(format string, args ...any) {
	if c.log == nil {
		return
	}
	c.log.WriteLineString(fmt.Sprintf(format, args...))
}
