//go:build !tinygo

// Command mkassets writes a placeholder dashboard asset set as 24-bit BMP
// files, sized for the default layout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"

	"octopus/octo/dashboard"
)

var (
	colBackground = color.RGBA{0x10, 0x18, 0x28, 0xFF}
	colFrame      = color.RGBA{0x60, 0x68, 0x78, 0xFF}
	colOn         = color.RGBA{0x30, 0xC0, 0x50, 0xFF}
	colOff        = color.RGBA{0xC0, 0x30, 0x30, 0xFF}
	colDim        = color.RGBA{0x30, 0x34, 0x3C, 0xFF}
	colPipe       = color.RGBA{0x80, 0x80, 0x80, 0xFF}
	colWater      = color.RGBA{0x20, 0x90, 0xE0, 0xFF}
	colWarn       = color.RGBA{0xE0, 0xA0, 0x20, 0xFF}
)

// asset is one generated bitmap.
type asset struct {
	name string
	w, h int
	draw func(img *image.RGBA)
}

func assets(l dashboard.Layout, panelW, panelH int) []asset {
	half := int(l.Pump.HalfW)
	const toggleH = 48
	pipeW := int(l.Tank.X-l.Pipe.X) - 8
	pipeH := int(l.Well.Y-l.Pipe.Y) - 8

	pipe := func(leg color.RGBA, drain color.RGBA) func(*image.RGBA) {
		return func(img *image.RGBA) {
			fill(img, img.Bounds(), colBackground)
			// Pump leg runs across the top, drain leg down the right side.
			fill(img, image.Rect(0, 16, pipeW, 32), leg)
			fill(img, image.Rect(pipeW-16, 16, pipeW, pipeH), drain)
		}
	}

	return []asset{
		{dashboard.AssetBackground, panelW, panelH, func(img *image.RGBA) {
			fill(img, img.Bounds(), colBackground)
			frame(img, image.Rect(int(l.Tank.X)-2, int(l.Tank.Y)-2, int(l.Tank.X+l.Tank.W)+2, int(l.Tank.Y+l.Tank.H)+2), colFrame)
		}},
		{dashboard.AssetOnLit, half, toggleH, toggle(colOn)},
		{dashboard.AssetOnDim, half, toggleH, toggle(colDim)},
		{dashboard.AssetOffLit, half, toggleH, toggle(colOff)},
		{dashboard.AssetOffDim, half, toggleH, toggle(colDim)},
		{dashboard.AssetPipePmp, pipeW, pipeH, pipe(colWater, colPipe)},
		{dashboard.AssetPipeDrn, pipeW, pipeH, pipe(colWater, colWater)},
		{dashboard.AssetPipeIdl, pipeW, pipeH, pipe(colPipe, colPipe)},
		{dashboard.AssetPipeStop, pipeW - 16, 48, func(img *image.RGBA) {
			fill(img, img.Bounds(), colBackground)
			fill(img, image.Rect(0, 16, pipeW-16, 32), colPipe)
		}},
		{dashboard.AssetWellOK, 144, 56, well(colOn)},
		{dashboard.AssetWellErr, 144, 56, well(colWarn)},
	}
}

func toggle(c color.RGBA) func(*image.RGBA) {
	return func(img *image.RGBA) {
		b := img.Bounds()
		fill(img, b, colBackground)
		fill(img, b.Inset(4), c)
		frame(img, b, colFrame)
	}
}

func well(c color.RGBA) func(*image.RGBA) {
	return func(img *image.RGBA) {
		b := img.Bounds()
		fill(img, b, colBackground)
		fill(img, image.Rect(b.Min.X+8, b.Max.Y-24, b.Max.X-8, b.Max.Y-4), colWater)
		frame(img, b.Inset(2), c)
	}
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func frame(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+2), c)
	fill(img, image.Rect(r.Min.X, r.Max.Y-2, r.Max.X, r.Max.Y), c)
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+2, r.Max.Y), c)
	fill(img, image.Rect(r.Max.X-2, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func writeAssets(dir string, set []asset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	var errs []error
	for _, a := range set {
		img := image.NewRGBA(image.Rect(0, 0, a.w, a.h))
		a.draw(img)
		if err := writeBMP(filepath.Join(dir, a.name), img); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeBMP(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := bmp.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func main() {
	var (
		out    = flag.String("out", "assets", "Output directory (copy its files to the SD card root).")
		width  = flag.Int("width", 480, "Panel width in pixels.")
		height = flag.Int("height", 320, "Panel height in pixels.")
	)
	flag.Parse()

	if *width <= 0 || *height <= 0 {
		fmt.Fprintf(os.Stderr, "invalid panel size %dx%d\n", *width, *height)
		os.Exit(2)
	}

	set := assets(dashboard.DefaultLayout(), *width, *height)
	if err := writeAssets(*out, set); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d assets to %s\n", len(set), *out)
}
