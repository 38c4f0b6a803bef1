package dashboard

import "octopus/hal"

// Asset file names on the SD card.
const (
	AssetBackground = "bg.bmp"

	// Toggle halves: the ON half and the OFF half, each lit (1) or dim (0).
	AssetOnLit   = "ton1.bmp"
	AssetOnDim   = "ton0.bmp"
	AssetOffLit  = "toff1.bmp"
	AssetOffDim  = "toff0.bmp"
	AssetPipeDrn = "pipedrn.bmp"
	AssetPipePmp = "pipepmp.bmp"
	AssetPipeIdl = "pipeidl.bmp"

	// AssetPipeStop covers the pump leg of the pipe after pumping stops.
	AssetPipeStop = "pipesto.bmp"

	AssetWellOK  = "wellok.bmp"
	AssetWellErr = "wellerr.bmp"
)

var (
	ColorBackground = hal.RGB565(0x10, 0x18, 0x28)
	ColorFluid      = hal.RGB565(0x20, 0x90, 0xE0)
	ColorLabel      = hal.RGB565(0xFF, 0xFF, 0xFF)
)

type Point struct {
	X, Y int16
}

type Rect struct {
	X, Y, W, H int16
}

// Toggle is a two-half switch: the ON half at At, the OFF half HalfW to
// its right.
type Toggle struct {
	At    Point
	HalfW int16
}

// Layout places every dashboard region. Regions must not overlap.
type Layout struct {
	Pump     Toggle
	Valve    Toggle
	Pipe     Point
	PipeStop Point
	Tank     Rect
	Well     Point
}

// DefaultLayout fits a 480x320 landscape panel.
func DefaultLayout() Layout {
	return Layout{
		Pump:     Toggle{At: Point{16, 48}, HalfW: 56},
		Valve:    Toggle{At: Point{16, 232}, HalfW: 56},
		Pipe:     Point{152, 40},
		PipeStop: Point{152, 40},
		Tank:     Rect{X: 336, Y: 32, W: 128, H: 256},
		Well:     Point{168, 248},
	}
}
