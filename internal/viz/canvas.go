package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const blank = 0x2800

// Braille dot bits, indexed by [row][column] within a cell:
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of Braille cells addressed in dots. A cell keeps the
// color of the last line drawn through it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Ink           [][]lipgloss.Color
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Ink:    make([][]lipgloss.Color, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Ink[i] = make([]lipgloss.Color, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	return row, col, col < c.Width && row < c.Height
}

func (c *Canvas) Set(x, y int) { c.SetInk(x, y, "") }

func (c *Canvas) SetInk(x, y int, ink lipgloss.Color) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= dotBits[y%4][x%2]
	if ink != "" {
		c.Ink[row][col] = ink
	}
}

func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= dotBits[y%4][x%2]
}

// IsSet reports whether the dot at (x, y) is raised.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Ink[i][j] = ""
		}
	}
}

// DrawLine draws the segment between two dot positions, clipped to the
// canvas first so far-off endpoints cost nothing.
func (c *Canvas) DrawLine(x0, y0, x1, y1 float64, ink lipgloss.Color) {
	w, h := c.Dots()
	x0, y0, x1, y1, ok := clip(x0, y0, x1, y1, float64(w-1), float64(h-1))
	if !ok {
		return
	}
	c.bresenham(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)), ink)
}

func (c *Canvas) bresenham(x0, y0, x1, y1 int, ink lipgloss.Color) {
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
		c.SetInk(x0, y0, ink)
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

// clip is Liang-Barsky against the rectangle [0, maxX] x [0, maxY].
func clip(x0, y0, x1, y1, maxX, maxY float64) (float64, float64, float64, float64, bool) {
	if maxX < 0 || maxY < 0 {
		return 0, 0, 0, 0, false
	}
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, maxX - x0},
		{-dy, y0},
		{dy, maxY - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// Plain returns the canvas without color codes.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// String renders each row with runs of equal ink styled together.
func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Ink[i][j] == c.Ink[i][start] {
				continue
			}
			run := string(row[start:j])
			if ink := c.Ink[i][start]; ink != "" {
				run = lipgloss.NewStyle().Foreground(ink).Render(run)
			}
			b.WriteString(run)
			start = j
		}
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
