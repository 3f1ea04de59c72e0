package tui

import (
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verdancy/bramble/pkg/turtle"
)

// Braille cells pack 2x4 dots each; the rune is the base plus a bitmask.
const brailleBase = 0x2800

// dotBits maps (x, y) inside a cell to its braille bit.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas rasterizes paths into braille characters for terminal preview.
type Canvas struct {
	cols, rows int
	cells      []rune
}

// NewCanvas creates a canvas of the given size in terminal cells.
// Sizes below 1 are clamped to 1.
func NewCanvas(cols, rows int) *Canvas {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Canvas{
		cols:  cols,
		rows:  rows,
		cells: make([]rune, cols*rows),
	}
}

// Plot scales the path into the dot grid and draws every segment.
// The y axis is flipped so that up in path space is up on screen.
func (c *Canvas) Plot(path *turtle.Path) {
	if path.Len() == 0 {
		return
	}

	pxW := c.cols * 2
	pxH := c.rows * 4
	minX, minY, maxX, maxY := path.Bounds()

	spanX := maxX - minX
	spanY := maxY - minY
	scaleX, scaleY := 1.0, 1.0
	if spanX > 0 {
		scaleX = float64(pxW-1) / spanX
	}
	if spanY > 0 {
		scaleY = float64(pxH-1) / spanY
	}
	// Uniform scale keeps aspect; braille dots are ~twice as tall as
	// wide, which the 2x4 cell split roughly compensates for already.
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	offX := (float64(pxW-1) - spanX*scale) / 2
	offY := (float64(pxH-1) - spanY*scale) / 2

	toPx := func(x, y float64) (int, int) {
		px := int((x-minX)*scale + offX + 0.5)
		py := (pxH - 1) - int((y-minY)*scale+offY+0.5)
		return px, py
	}

	for _, s := range path.Segments {
		x0, y0 := toPx(s.FromX, s.FromY)
		x1, y1 := toPx(s.ToX, s.ToY)
		c.line(x0, y0, x1, y1)
	}
}

// line draws with the integer Bresenham walk.
func (c *Canvas) line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.setDot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) setDot(x, y int) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	cell := (y/4)*c.cols + x/2
	c.cells[cell] |= dotBits[y%4][x%2]
}

// String renders the canvas, one line per cell row.
func (c *Canvas) String() string {
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			r := c.cells[row*c.cols+col]
			if r == 0 {
				sb.WriteRune(' ')
			} else {
				sb.WriteRune(brailleBase + r)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// CanvasSize returns the terminal size in cells, leaving headroom for the
// summary below the drawing. Falls back to 80x24-ish when stdout is not a
// terminal.
func CanvasSize() (cols, rows int) {
	cols, rows = 80, 20
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 2 && h > 6 {
			cols, rows = w-2, h-6
		}
	}
	return cols, rows
}
