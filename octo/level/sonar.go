package level

import (
	"slices"
	"time"

	"octopus/hal"
)

const (
	// MicrosPerCM is the echo round trip for one centimetre of range.
	MicrosPerCM = 57

	// MaxSamples bounds one median run.
	MaxSamples = 16

	// PingGap lets echoes of the previous ping die out.
	PingGap = 29 * time.Millisecond
)

// Sonar turns raw echo times from a hal.Ranger into centimetres.
type Sonar struct {
	r     hal.Ranger
	maxUS uint32
	gap   time.Duration
	sleep func(time.Duration)
	buf   [MaxSamples]uint32
}

// NewSonar reports echoes farther than maxCM as no echo.
func NewSonar(r hal.Ranger, maxCM uint32) *Sonar {
	return &Sonar{
		r:     r,
		maxUS: maxCM * MicrosPerCM,
		gap:   PingGap,
		sleep: time.Sleep,
	}
}

// PingCM fires one ping. 0 means no echo in range.
func (s *Sonar) PingCM() uint32 {
	return toCM(s.ping())
}

// MedianCM fires n pings, drops the ones without echo and returns the median
// of the rest. 0 means no ping got an echo.
func (s *Sonar) MedianCM(n int) uint32 {
	if n <= 0 {
		return 0
	}
	if n > MaxSamples {
		n = MaxSamples
	}
	got := s.buf[:0]
	for i := 0; i < n; i++ {
		if us := s.ping(); us != 0 {
			got = append(got, us)
		}
		if i < n-1 {
			s.sleep(s.gap)
		}
	}
	if len(got) == 0 {
		return 0
	}
	slices.Sort(got)
	return toCM(got[len(got)/2])
}

func (s *Sonar) ping() uint32 {
	us := s.r.Ping()
	if s.maxUS != 0 && us > s.maxUS {
		return 0
	}
	return us
}

func toCM(us uint32) uint32 {
	if us == 0 {
		return 0
	}
	if cm := us / MicrosPerCM; cm > 0 {
		return cm
	}
	return 1
}
