//go:build tinygo && baremetal

package hal

import (
	"machine"

	"tinygo.org/x/drivers/hcsr04"
)

type hcsr04Ranger struct {
	dev hcsr04.Device
}

func newHCSR04(trig, echo machine.Pin) *hcsr04Ranger {
	dev := hcsr04.New(trig, echo)
	dev.Configure()
	return &hcsr04Ranger{dev: dev}
}

// Ping returns the echo pulse width in microseconds; the driver reports 0
// when the echo times out.
func (r *hcsr04Ranger) Ping() uint32 {
	us := r.dev.ReadPulse()
	if us <= 0 {
		return 0
	}
	return uint32(us)
}
