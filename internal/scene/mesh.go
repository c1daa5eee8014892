package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Mesh struct {
	Geometry *Geometry
	Material *Material

	Position   mgl64.Vec3
	Quaternion mgl64.Quat
	Scale      mgl64.Vec3

	CastShadow    bool
	ReceiveShadow bool
}

// NewMesh references g and m without copying them.
func NewMesh(g *Geometry, m *Material) *Mesh {
	return &Mesh{
		Geometry:   g,
		Material:   m,
		Quaternion: mgl64.QuatIdent(),
		Scale:      mgl64.Vec3{1, 1, 1},
	}
}

// ModelMatrix composes scale, then rotation, then translation.
func (m *Mesh) ModelMatrix() mgl64.Mat4 {
	t := mgl64.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	s := mgl64.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	return t.Mul4(m.Quaternion.Normalize().Mat4()).Mul4(s)
}

// WorldVertices returns the geometry's vertices transformed by the model matrix.
func (m *Mesh) WorldVertices() []mgl64.Vec3 {
	if m.Geometry == nil {
		return nil
	}
	model := m.ModelMatrix()
	out := make([]mgl64.Vec3, len(m.Geometry.Vertices))
	for i, v := range m.Geometry.Vertices {
		out[i] = mgl64.TransformCoordinate(v, model)
	}
	return out
}

// AxisAngle returns the mesh rotation as a unit axis and an angle in
// degrees, the form immediate-mode matrix stacks take. The identity maps to
// a zero angle about +Y.
func (m *Mesh) AxisAngle() (mgl64.Vec3, float64) {
	q := m.Quaternion.Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	s := q.V.Len()
	if s < 1e-9 {
		return mgl64.Vec3{0, 1, 0}, 0
	}
	return q.V.Mul(1 / s), mgl64.RadToDeg(2 * math.Atan2(s, q.W))
}
