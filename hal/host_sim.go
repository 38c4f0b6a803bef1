//go:build !tinygo

package hal

import (
	"sync"
	"time"
)

// Sound round trip per centimetre, as used by HC-SR04 style rangers.
const simRoundTripMicrosPerCM = 57

// pulsePin is the simulated flow meter output.
type pulsePin struct {
	name string
	line interruptLine
}

func (p *pulsePin) Name() string { return p.name }

func (p *pulsePin) SetInterrupt(edge Edge, handler func()) error {
	_ = edge
	return p.line.claim(p.name, handler)
}

func (p *pulsePin) ClearInterrupt() error {
	p.line.release()
	return nil
}

func (p *pulsePin) pulse() { p.line.fire() }

// tankSim models a tank filled by the pump and emptied through the valve.
type tankSim struct {
	mu  sync.Mutex
	cfg HostConfig
	now func() time.Time

	last  time.Time
	fill  float64
	owed  float64
	fault bool
	mute  bool

	flow  *pulsePin
	pump  *virtualPin
	valve *virtualPin
}

func newTankSim(cfg HostConfig, now func() time.Time) *tankSim {
	if now == nil {
		now = time.Now
	}
	return &tankSim{
		cfg:   cfg,
		now:   now,
		last:  now(),
		fill:  0.5,
		flow:  &pulsePin{name: "FLOW"},
		pump:  newVirtualPin("PUMP", GPIOCapOutput),
		valve: newVirtualPin("VALVE", GPIOCapInput|GPIOCapPullUp),
	}
}

func (s *tankSim) advance() {
	s.mu.Lock()
	now := s.now()
	dt := now.Sub(s.last).Seconds()
	s.last = now
	if dt < 0 {
		dt = 0
	}

	pump, _ := s.pump.Read()
	valve, _ := s.valve.Read()
	if pump && !s.fault {
		s.fill += dt * s.cfg.FillPerSecond
		s.owed += dt * s.cfg.PulseHz
	}
	if valve {
		s.fill -= dt * s.cfg.DrainPerSecond
	}
	if s.fill < 0 {
		s.fill = 0
	}
	if s.fill > 1 {
		s.fill = 1
	}

	n := int(s.owed)
	s.owed -= float64(n)
	s.mu.Unlock()

	for i := 0; i < n; i++ {
		s.flow.pulse()
	}
}

// Ping implements Ranger against the simulated water surface.
func (s *tankSim) Ping() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mute {
		return 0
	}
	span := float64(s.cfg.TankMaxCM - s.cfg.TankMinCM)
	cm := float64(s.cfg.TankMinCM) + (1-s.fill)*span
	return uint32(cm * simRoundTripMicrosPerCM)
}

func (s *tankSim) toggleValve() bool { return s.valve.toggle() }

func (s *tankSim) toggleFault() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = !s.fault
	return s.fault
}

func (s *tankSim) toggleEcho() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mute = !s.mute
	return s.mute
}
