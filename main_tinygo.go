//go:build tinygo && baremetal

package main

import (
	"octopus/app"
	"octopus/hal"
)

func main() {
	app.Run(hal.New())
}
