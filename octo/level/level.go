// Package level turns ultrasonic distance readings into a tank fill level.
package level

import (
	"fmt"
	"time"
)

const (
	DefaultMinCM    = 20
	DefaultMaxCM    = 200
	DefaultInterval = time.Second
	DefaultRetries  = 10
)

// Config describes the tank geometry seen from the sensor.
//
// MinCM is the distance to a full tank, MaxCM to an empty one.
type Config struct {
	MinCM    uint32        `yaml:"min_cm"`
	MaxCM    uint32        `yaml:"max_cm"`
	Interval time.Duration `yaml:"interval"`
	Retries  int           `yaml:"retries"`
}

func DefaultConfig() Config {
	return Config{
		MinCM:    DefaultMinCM,
		MaxCM:    DefaultMaxCM,
		Interval: DefaultInterval,
		Retries:  DefaultRetries,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MinCM >= c.MaxCM:
		return fmt.Errorf("level: min_cm %d must be below max_cm %d", c.MinCM, c.MaxCM)
	case c.Interval < 0:
		return fmt.Errorf("level: negative interval %v", c.Interval)
	case c.Retries <= 0 || c.Retries > MaxSamples:
		return fmt.Errorf("level: retries %d out of range 1..%d", c.Retries, MaxSamples)
	}
	return nil
}

// Ranging measures a distance in centimetres as the median of n pings.
// 0 means no echo.
type Ranging interface {
	MedianCM(n int) uint32
}

// Gauge caches one measurement per interval.
type Gauge struct {
	cfg Config
	r   Ranging
	now func() time.Time

	measured time.Time
	distance uint32
	level    uint8
	valid    bool
}

func New(cfg Config, r Ranging) (*Gauge, error) {
	return NewWithClock(cfg, r, time.Now)
}

func NewWithClock(cfg Config, r Ranging, now func() time.Time) (*Gauge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("level: nil ranging")
	}
	if now == nil {
		now = time.Now
	}
	return &Gauge{cfg: cfg, r: r, now: now}, nil
}

// Update measures if the interval has passed since the last measurement and
// reports whether the latest measurement is usable. Between measurements it
// returns the cached result without touching the sensor.
func (g *Gauge) Update() bool {
	now := g.now()
	if !g.measured.IsZero() && now.Sub(g.measured) <= g.cfg.Interval {
		return g.valid
	}
	g.measured = now

	g.distance = g.r.MedianCM(g.cfg.Retries)
	g.valid = g.distance != 0
	if g.valid {
		g.level = Percent(g.distance, g.cfg.MinCM, g.cfg.MaxCM)
	}
	return g.valid
}

// WaterLevel returns the fill in percent from the last usable measurement,
// or 0 before the first one.
func (g *Gauge) WaterLevel() uint8 { return g.level }

// Distance returns the last raw reading in centimetres, 0 for no echo.
func (g *Gauge) Distance() uint32 { return g.distance }

func (g *Gauge) Valid() bool { return g.valid }

// Percent maps a distance to fill: minCM is full, maxCM is empty. Distances
// outside the range are clamped.
func Percent(cm, minCM, maxCM uint32) uint8 {
	if maxCM <= minCM {
		return 0
	}
	if cm < minCM {
		cm = minCM
	}
	if cm > maxCM {
		cm = maxCM
	}
	return uint8(100 - (cm-minCM)*100/(maxCM-minCM))
}
