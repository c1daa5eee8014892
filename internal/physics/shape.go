package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	default:
		return "unknown"
	}
}

// Shape is the collision geometry of a body, expressed in the body's local frame.
type Shape interface {
	Kind() ShapeKind
	// Inertia returns the principal moments of inertia for the given mass.
	Inertia(mass float64) mgl64.Vec3
	// AABB returns the world-space bounds for a body at pos with orientation q.
	AABB(pos mgl64.Vec3, q mgl64.Quat) AABB
}

type Sphere struct {
	Radius float64
}

func (s *Sphere) Kind() ShapeKind { return ShapeSphere }

func (s *Sphere) Inertia(mass float64) mgl64.Vec3 {
	i := 2.0 / 5.0 * mass * s.Radius * s.Radius
	return mgl64.Vec3{i, i, i}
}

func (s *Sphere) AABB(pos mgl64.Vec3, _ mgl64.Quat) AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: pos.Sub(r), Max: pos.Add(r)}
}

// Box is centered on the body position. HalfExtents are half the full size
// along each local axis.
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Kind() ShapeKind { return ShapeBox }

func (b *Box) Inertia(mass float64) mgl64.Vec3 {
	h := b.HalfExtents
	return mgl64.Vec3{
		mass / 3.0 * (h[1]*h[1] + h[2]*h[2]),
		mass / 3.0 * (h[0]*h[0] + h[2]*h[2]),
		mass / 3.0 * (h[0]*h[0] + h[1]*h[1]),
	}
}

func (b *Box) AABB(pos mgl64.Vec3, q mgl64.Quat) AABB {
	ax := q.Rotate(mgl64.Vec3{b.HalfExtents[0], 0, 0})
	ay := q.Rotate(mgl64.Vec3{0, b.HalfExtents[1], 0})
	az := q.Rotate(mgl64.Vec3{0, 0, b.HalfExtents[2]})

	var ext mgl64.Vec3
	for i := 0; i < 3; i++ {
		ext[i] = math.Abs(ax[i]) + math.Abs(ay[i]) + math.Abs(az[i])
	}
	return AABB{Min: pos.Sub(ext), Max: pos.Add(ext)}
}

// Vertices returns the eight corners of the box in world space.
func (b *Box) Vertices(pos mgl64.Vec3, q mgl64.Quat) [8]mgl64.Vec3 {
	h := b.HalfExtents
	var out [8]mgl64.Vec3
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				local := mgl64.Vec3{sx * h[0], sy * h[1], sz * h[2]}
				out[i] = pos.Add(q.Rotate(local))
				i++
			}
		}
	}
	return out
}

type AABB struct {
	Min, Max mgl64.Vec3
}

func (a AABB) Overlaps(o AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Max[i] < o.Min[i] || o.Max[i] < a.Min[i] {
			return false
		}
	}
	return true
}
