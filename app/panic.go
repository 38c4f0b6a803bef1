package app

import (
	"errors"
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freeserif"

	"octopus/octo/display"
)

// ErrPanic wraps a recovered panic returned from Step.
var ErrPanic = errors.New("panic")

const (
	panicLineHeight = 24
	panicBaseline   = 18
)

func (a *App) recoverPanic(err *error) {
	v := recover()
	if v == nil {
		return
	}
	stack := debug.Stack()
	a.reportPanic(v, stack)
	*err = fmt.Errorf("%w: %v", ErrPanic, v)
}

// reportPanic writes the panic to the logger and paints it on the panel.
func (a *App) reportPanic(v any, stack []byte) {
	lines := []string{"Octopus panic:", fmt.Sprintf("panic: %v", v)}
	for _, line := range strings.Split(string(stack), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	for _, line := range lines {
		a.logf("%s", line)
	}

	if a.canvas == nil {
		return
	}
	w, h := a.canvas.Size()
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	_ = a.canvas.FillRectangle(0, 0, w, h, white)

	font := &freeserif.Regular12pt7b
	_, charW := tinyfont.LineWidth(font, "0")
	cols := 1
	if charW > 0 && int(w) > int(charW) {
		cols = int(w) / int(charW)
	}
	fg := display.RGB565(color.RGBA{A: 0xFF})

	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 {
			if y+panicLineHeight > h {
				return
			}
			chunk, rest := takeRunes(line, cols)
			a.canvas.DrawText(0, y+panicBaseline, chunk, fg)
			y += panicLineHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
