package scene

import "github.com/go-gl/mathgl/mgl64"

// Camera is a perspective camera. FOV is the vertical field of view in
// degrees. Call UpdateProjectionMatrix after changing FOV, Aspect, Near or Far.
type Camera struct {
	FOV    float64
	Aspect float64
	Near   float64
	Far    float64

	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3

	projection mgl64.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float64) *Camera {
	c := &Camera{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     mgl64.Vec3{0, 1, 0},
	}
	c.UpdateProjectionMatrix()
	return c
}

func (c *Camera) UpdateProjectionMatrix() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

func (c *Camera) Projection() mgl64.Mat4 { return c.projection }

func (c *Camera) LookAt(target mgl64.Vec3) { c.Target = target }

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.projection.Mul4(c.View())
}

// Project maps a world point to pixel coordinates on a width x height
// viewport with the origin at the top left. ok is false for points behind
// the camera or outside the near/far range.
func (c *Camera) Project(p mgl64.Vec3, width, height int) (x, y, depth float64, ok bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	x = (ndc.X() + 1) / 2 * float64(width)
	y = (1 - ndc.Y()) / 2 * float64(height)
	return x, y, ndc.Z(), ndc.Z() >= -1 && ndc.Z() <= 1
}
