package viz

import (
	"image/color"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/sandbox/internal/scene"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(3, 2)
	if !c.IsSet(3, 2) {
		t.Fatal("dot (3,2) should be set")
	}
	if c.Grid[0][1] != blank|0x20 {
		t.Errorf("unexpected cell %U", c.Grid[0][1])
	}
	c.Unset(3, 2)
	if c.IsSet(3, 2) || c.Grid[0][1] != blank {
		t.Errorf("dot should be cleared, cell %U", c.Grid[0][1])
	}

	c.Set(-1, 0)
	c.Set(100, 100)
	if strings.Trim(c.Plain(), string(rune(blank))+"\n") != "" {
		t.Error("out of range dots must be ignored")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 0, "")
	for x := 0; x < 20; x++ {
		if !c.IsSet(x, 0) {
			t.Fatalf("dot %d on the top row should be set", x)
		}
	}
	if c.IsSet(0, 1) {
		t.Error("row below the line should be empty")
	}
}

func TestCanvasClipsFarLines(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(-1e9, 10, 1e9, 10, "")
	w, _ := c.Dots()
	for x := 0; x < w; x++ {
		if !c.IsSet(x, 10) {
			t.Fatalf("clipped line should cross the canvas, missing x=%d", x)
		}
	}

	c.Clear()
	c.DrawLine(-50, -50, -10, -5, "")
	if strings.Trim(c.Plain(), string(rune(blank))+"\n") != "" {
		t.Error("line outside the canvas should draw nothing")
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		ok             bool
	}{
		{"inside", 1, 1, 5, 5, true},
		{"crossing", -5, 5, 15, 5, true},
		{"left of", -5, 0, -1, 9, false},
		{"below", 0, 20, 9, 30, false},
		{"point inside", 3, 3, 3, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x0, y0, x1, y1, ok := clip(tt.x0, tt.y0, tt.x1, tt.y1, 9, 9)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			for _, v := range []float64{x0, y0, x1, y1} {
				if v < -1e-9 || v > 9+1e-9 {
					t.Errorf("clipped coordinate %f outside [0, 9]", v)
				}
			}
		})
	}
}

func TestCanvasStringColors(t *testing.T) {
	c := NewCanvas(4, 1)
	c.SetInk(0, 0, "#ff0000")
	c.SetInk(6, 0, "#00ff00")
	if got := len([]rune(c.Plain())); got != 5 {
		t.Errorf("plain row should be 4 cells and a newline, got %d runes", got)
	}
	if c.Ink[0][0] != "#ff0000" || c.Ink[0][3] != "#00ff00" {
		t.Errorf("unexpected ink %v", c.Ink[0])
	}
	if !strings.HasSuffix(c.String(), "\n") {
		t.Error("rows should end with a newline")
	}
}

func boxScene() (*scene.Scene, *scene.Camera) {
	s := scene.New()
	mat := scene.NewStandardMaterial("box", color.RGBA{R: 0xff, A: 0xff})
	s.Add(scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), mat))

	cam := scene.NewPerspectiveCamera(60, 2, 0.1, 100)
	cam.Position = mgl64.Vec3{3, 2, 4}
	return s, cam
}

func TestTerminalRendererDrawsMeshes(t *testing.T) {
	s, cam := boxScene()
	r := NewTerminalRenderer(0, 0, true)
	r.SetSize(80, 40)
	cam.Aspect = 2
	cam.UpdateProjectionMatrix()

	if err := r.Render(s, cam); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if r.Lit() == 0 {
		t.Fatal("expected the box wireframe to light dots")
	}
	lines := strings.Split(strings.TrimSuffix(r.Frame(), "\n"), "\n")
	if len(lines) != 10 {
		t.Errorf("expected 10 rows, got %d", len(lines))
	}
	if n := len([]rune(lines[0])); n != 40 {
		t.Errorf("expected 40 columns, got %d", n)
	}
}

func TestTerminalRendererBehindCamera(t *testing.T) {
	s, cam := boxScene()
	cam.Target = mgl64.Vec3{6, 4, 8}
	r := NewTerminalRenderer(20, 10, true)

	if err := r.Render(s, cam); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if r.Lit() != 0 {
		t.Errorf("box behind the camera lit %d dots", r.Lit())
	}
}

func TestTerminalRendererEmpty(t *testing.T) {
	s, cam := boxScene()
	r := NewTerminalRenderer(0, 0, false)
	if err := r.Render(s, cam); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if r.Frame() != "" {
		t.Error("zero-size renderer should produce an empty frame")
	}
	if err := r.Render(nil, cam); err == nil {
		t.Error("expected error without a scene")
	}
	r.SetPixelRatio(2)
	if r.PixelRatio() != 2 {
		t.Errorf("pixel ratio not recorded")
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("retro").Name != "retro" {
		t.Error("expected retro theme")
	}
	if GetTheme("nope").Name != ThemeStudio.Name {
		t.Error("unknown theme should fall back to studio")
	}
	th := ThemeStudio
	for range Themes {
		th = NextTheme(th)
	}
	if th.Name != ThemeStudio.Name {
		t.Errorf("cycling all themes should come back to studio, got %s", th.Name)
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names mismatch")
	}
}
