package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

type rect struct {
	x, y, w, h int
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) and returns
// the number of columns it used.
func putGlyph(s tcell.Screen, x, y int, glyph string, style tcell.Style) int {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return 0
	}
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	s.SetContent(x, y, runes[0], combc, style)
	width := runewidth.StringWidth(glyph)
	if width == 2 {
		// Fill the second column to avoid rendering artifacts.
		s.SetContent(x+1, y, ' ', nil, style)
	}
	if width < 1 {
		width = 1
	}
	return width
}

// drawText writes text starting at x, clipped at maxX, and returns the
// column after the last cell written.
func drawText(s tcell.Screen, x, y, maxX int, text string, style tcell.Style) int {
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			// Variation selectors and joiners attach to the previous cell.
			continue
		}
		if x+w > maxX {
			break
		}
		s.SetContent(x, y, r, nil, style)
		if w == 2 {
			s.SetContent(x+1, y, ' ', nil, style)
		}
		x += w
	}
	return x
}

func fillRow(s tcell.Screen, y, width int, style tcell.Style) {
	for x := 0; x < width; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func drawBox(s tcell.Screen, r rect, style tcell.Style) {
	for y := r.y; y < r.y+r.h; y++ {
		for x := r.x; x < r.x+r.w; x++ {
			ch := ' '
			switch {
			case (y == r.y || y == r.y+r.h-1) && (x == r.x || x == r.x+r.w-1):
				ch = '+'
			case y == r.y || y == r.y+r.h-1:
				ch = '-'
			case x == r.x || x == r.x+r.w-1:
				ch = '|'
			}
			s.SetContent(x, y, ch, nil, style)
		}
	}
}

// wrap splits text into lines of at most width columns.
func wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	var line strings.Builder
	lineW := 0
	for _, word := range strings.Fields(text) {
		ww := runewidth.StringWidth(word)
		if lineW > 0 && lineW+1+ww > width {
			lines = append(lines, line.String())
			line.Reset()
			lineW = 0
		}
		if lineW > 0 {
			line.WriteByte(' ')
			lineW++
		}
		line.WriteString(word)
		lineW += ww
	}
	if lineW > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

func centered(text string, r rect) int {
	return r.x + max((r.w-runewidth.StringWidth(text))/2, 0)
}
