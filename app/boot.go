package app

import (
	"fmt"

	"octopus/internal/buildinfo"
	"octopus/octo/console"
)

const sonarCheckTries = 5

// boot shows the console screen: version, total usage and a ranger check.
func (a *App) boot() {
	con := console.New(a.canvas, a.log)
	con.WriteLineString("OCTOPUS v" + buildinfo.Short())
	con.WriteLineString(fmt.Sprintf("Total water used: %.2f L", a.flow.WaterAmount()))

	for i := 0; i < sonarCheckTries; i++ {
		if a.sonar.PingCM() != 0 {
			con.WriteLineString("Ultrasonic check succeed")
			break
		}
		if i == sonarCheckTries-1 {
			con.WriteLineString("Ultrasonic check FAILED!")
		}
	}

	a.bootUntil = a.now().Add(bootHold)
	a.refresh = true
}
