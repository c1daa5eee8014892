package gui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/sandbox/internal/scene"
)

// WindowRenderer draws the scene into the current raylib window. Overlay,
// when set, runs after the 3D pass inside the same frame.
type WindowRenderer struct {
	Overlay    func()
	Wireframes bool

	width, height int
	pixelRatio    float64
}

func NewWindowRenderer(width, height int) *WindowRenderer {
	return &WindowRenderer{width: width, height: height, pixelRatio: 1, Wireframes: true}
}

// SetSize records the viewport; the window itself is resized by the user.
func (r *WindowRenderer) SetSize(width, height int) {
	r.width, r.height = width, height
}

func (r *WindowRenderer) SetPixelRatio(ratio float64) { r.pixelRatio = ratio }

func (r *WindowRenderer) Render(s *scene.Scene, cam *scene.Camera) error {
	rl.BeginDrawing()
	rl.ClearBackground(rlColor(s.Background))

	rl.BeginMode3D(rlCamera(cam))
	for _, m := range s.Meshes() {
		r.drawMesh(m)
	}
	rl.EndMode3D()

	if r.Overlay != nil {
		r.Overlay()
	}
	rl.EndDrawing()
	return nil
}

func (r *WindowRenderer) drawMesh(m *scene.Mesh) {
	if m.Geometry == nil {
		return
	}
	c := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	if m.Material != nil {
		c = m.Material.Color
	}
	axis, angle := m.AxisAngle()

	rl.PushMatrix()
	rl.Translatef(float32(m.Position[0]), float32(m.Position[1]), float32(m.Position[2]))
	rl.Rotatef(float32(angle), float32(axis[0]), float32(axis[1]), float32(axis[2]))
	rl.Scalef(float32(m.Scale[0]), float32(m.Scale[1]), float32(m.Scale[2]))

	origin := rl.NewVector3(0, 0, 0)
	g := m.Geometry
	switch g.Kind {
	case scene.GeometrySphere:
		rl.DrawSphere(origin, float32(g.Radius), rlColor(c))
		if r.Wireframes {
			rl.DrawSphereWires(origin, float32(g.Radius)*1.001, 10, 10, rlColor(scene.Shade(c, 0.4)))
		}
	case scene.GeometryBox:
		w, h, d := float32(g.Size[0]), float32(g.Size[1]), float32(g.Size[2])
		rl.DrawCube(origin, w, h, d, rlColor(c))
		if r.Wireframes {
			rl.DrawCubeWires(origin, w, h, d, rlColor(scene.Shade(c, 0.4)))
		}
	}
	rl.PopMatrix()
}

func rlColor(c color.RGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

func rlCamera(cam *scene.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   rl.NewVector3(float32(cam.Position[0]), float32(cam.Position[1]), float32(cam.Position[2])),
		Target:     rl.NewVector3(float32(cam.Target[0]), float32(cam.Target[1]), float32(cam.Target[2])),
		Up:         rl.NewVector3(float32(cam.Up[0]), float32(cam.Up[1]), float32(cam.Up[2])),
		Fovy:       float32(cam.FOV),
		Projection: rl.CameraPerspective,
	}
}
