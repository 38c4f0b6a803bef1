//go:build !tinygo && cgo

package hal

import (
	"image"

	"octopus/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that displays the panel and forwards keyboard input.
// It blocks until the window closes.
func RunWindow(cfg HostConfig, newApp func(HAL) (App, error)) error {
	hh, err := NewHost(cfg)
	if err != nil {
		return err
	}
	h := hh.(*hostHAL)
	defer h.close()

	a, err := newApp(h)
	if err != nil {
		return err
	}
	defer a.Close()

	g := &hostGame{h: h, app: a}
	ebiten.SetWindowTitle("Octopus (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.panel.width*2, h.panel.height*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	app     App
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	return g.app.Step()
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	p := g.h.panel
	if g.img == nil || g.img.Bounds().Dx() != p.width || g.img.Bounds().Dy() != p.height {
		g.img = image.NewRGBA(image.Rect(0, 0, p.width, p.height))
		g.scratch = make([]byte, len(p.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(p.width, p.height)
	}

	p.snapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := RGB888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.panel.width, g.h.panel.height
}
