package viz

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/sandbox/internal/scene"
)

// TerminalRenderer draws wireframes of the scene meshes on a Braille canvas.
// Sizes are given in dots; see [Canvas.Dots].
type TerminalRenderer struct {
	mu         sync.Mutex
	canvas     *Canvas
	pixelRatio float64
	frame      string
	plain      bool
}

// NewTerminalRenderer sizes the canvas to cols x rows cells. With plain set
// the frame carries no color codes.
func NewTerminalRenderer(cols, rows int, plain bool) *TerminalRenderer {
	return &TerminalRenderer{
		canvas:     NewCanvas(max(cols, 0), max(rows, 0)),
		pixelRatio: 1,
		plain:      plain,
	}
}

func (r *TerminalRenderer) SetSize(width, height int) {
	cols, rows := (width+1)/2, (height+3)/4
	r.mu.Lock()
	defer r.mu.Unlock()
	if cols != r.canvas.Width || rows != r.canvas.Height {
		r.canvas = NewCanvas(cols, rows)
	}
}

// SetPixelRatio is recorded only; a terminal cell always holds 2x4 dots.
func (r *TerminalRenderer) SetPixelRatio(ratio float64) {
	r.mu.Lock()
	r.pixelRatio = ratio
	r.mu.Unlock()
}

func (r *TerminalRenderer) PixelRatio() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pixelRatio
}

func (r *TerminalRenderer) Render(s *scene.Scene, cam *scene.Camera) error {
	if s == nil || cam == nil {
		return fmt.Errorf("viz: render needs a scene and a camera")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.canvas
	c.Clear()
	w, h := c.Dots()
	if w == 0 || h == 0 {
		r.frame = ""
		return nil
	}

	type point struct {
		x, y float64
		ok   bool
	}
	for _, m := range s.Meshes() {
		if m.Geometry == nil {
			continue
		}
		var ink lipgloss.Color
		if m.Material != nil && !r.plain {
			ink = hexInk(m.Material.Color)
		}
		verts := m.WorldVertices()
		proj := make([]point, len(verts))
		for i, v := range verts {
			x, y, _, ok := cam.Project(v, w, h)
			proj[i] = point{x, y, ok}
		}
		for _, e := range m.Geometry.Edges {
			a, b := proj[e[0]], proj[e[1]]
			if !a.ok || !b.ok {
				continue
			}
			c.DrawLine(a.x, a.y, b.x, b.y, ink)
		}
	}

	if r.plain {
		r.frame = c.Plain()
	} else {
		r.frame = c.String()
	}
	return nil
}

// Frame returns the most recently rendered frame.
func (r *TerminalRenderer) Frame() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

// Lit counts raised dots on the current canvas.
func (r *TerminalRenderer) Lit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	w, h := r.canvas.Dots()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if r.canvas.IsSet(x, y) {
				n++
			}
		}
	}
	return n
}

func hexInk(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
