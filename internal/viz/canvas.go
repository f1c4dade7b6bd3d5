package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/nucleon/internal/particles"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBase = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const untyped = -1

// Canvas is a Braille pixel canvas. Each character cell holds 2x4 dots and
// is coloured by the particle type with the most dots in it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	votes         [][][particles.MaxTypes]uint16
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		votes:  make([][][particles.MaxTypes]uint16, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.votes[i] = make([][particles.MaxTypes]uint16, w)
	}
	c.Clear()
	return c
}

// SubWidth and SubHeight give the canvas size in dots.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Set lights the dot at (x, y) in sub-pixel coordinates without a type.
func (c *Canvas) Set(x, y int) {
	c.SetTyped(x, y, untyped)
}

// SetTyped lights a dot and counts it toward typ's share of the cell.
func (c *Canvas) SetTyped(x, y, typ int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if typ >= 0 && typ < particles.MaxTypes {
		c.votes[row][col][typ]++
	}
}

func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < brailleBase {
		c.Grid[row][col] = brailleBase
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
			c.votes[i][j] = [particles.MaxTypes]uint16{}
		}
	}
}

// Project maps a world position to sub-pixel coordinates.
func (c *Canvas) Project(x, y, worldW, worldH float32) (int, int) {
	px := int(x / worldW * float32(c.SubWidth()))
	py := int(y / worldH * float32(c.SubHeight()))
	return px, py
}

// Plot draws every particle of v.
func (c *Canvas) Plot(v particles.View) {
	for i := 0; i < v.Len(); i++ {
		px, py := c.Project(v.X[i], v.Y[i], v.Width, v.Height)
		c.SetTyped(px, py, int(v.Type[i]))
	}
}

// DrawCircle outlines a circle of radius r dots, used for the cursor.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r < 1 {
		c.Set(cx, cy)
		return
	}
	steps := int(2 * math.Pi * float64(r))
	px, py := cx+r, cy
	for i := 1; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(float64(r)*math.Cos(a)))
		y := cy + int(math.Round(float64(r)*math.Sin(a)))
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Dominant returns the type with most dots in a cell, or -1.
func (c *Canvas) Dominant(col, row int) int {
	best, bestN := untyped, uint16(0)
	for t, n := range c.votes[row][col] {
		if n > bestN {
			best, bestN = t, n
		}
	}
	return best
}

// String renders the canvas without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render draws the canvas with cells coloured by dominant type. Runs of the
// same colour share one style call.
func (c *Canvas) Render(fallback lipgloss.Color) string {
	var styles [particles.MaxTypes]lipgloss.Style
	for t := range styles {
		styles[t] = lipgloss.NewStyle().Foreground(Palette[t].Lip())
	}
	plain := lipgloss.NewStyle().Foreground(fallback)

	var b strings.Builder
	var run []rune
	for row := 0; row < c.Height; row++ {
		cur := untyped - 1
		run = run[:0]
		flush := func() {
			if len(run) == 0 {
				return
			}
			switch {
			case cur >= 0:
				b.WriteString(styles[cur].Render(string(run)))
			default:
				b.WriteString(plain.Render(string(run)))
			}
			run = run[:0]
		}
		for col := 0; col < c.Width; col++ {
			t := c.Dominant(col, row)
			if t != cur {
				flush()
				cur = t
			}
			run = append(run, c.Grid[row][col])
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
