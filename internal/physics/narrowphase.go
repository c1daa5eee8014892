package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// contact is a single touching point between two bodies. Normal points from
// b towards a, so pushing a along Normal separates the pair. Depth is
// negative for pairs still apart by less than contactMargin.
type contact struct {
	a, b   *Body
	normal mgl64.Vec3
	point  mgl64.Vec3
	depth  float64

	ra, rb      mgl64.Vec3
	t1, t2      mgl64.Vec3
	normalMass  float64
	tangentMass [2]float64
	bias        float64
	friction    float64
	normalImp   float64
	tangentImp  [2]float64
}

// collide appends the contacts between a and b to out.
func collide(a, b *Body, out []contact) []contact {
	if a.Shape == nil || b.Shape == nil {
		return out
	}
	switch sa := a.Shape.(type) {
	case *Sphere:
		switch sb := b.Shape.(type) {
		case *Sphere:
			return sphereSphere(a, sa, b, sb, out)
		case *Box:
			return sphereBox(a, sa, b, sb, out)
		}
	case *Box:
		switch sb := b.Shape.(type) {
		case *Sphere:
			return sphereBox(b, sb, a, sa, out)
		case *Box:
			out = boxVertices(a, sa, b, sb, out)
			return boxVertices(b, sb, a, sa, out)
		}
	}
	return out
}

func sphereSphere(a *Body, sa *Sphere, b *Body, sb *Sphere, out []contact) []contact {
	d := a.Position.Sub(b.Position)
	dist := d.Len()
	depth := sa.Radius + sb.Radius - dist
	if depth < -contactMargin {
		return out
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-12 {
		n = d.Mul(1 / dist)
	}
	return append(out, contact{
		a:      a,
		b:      b,
		normal: n,
		point:  b.Position.Add(n.Mul(sb.Radius)),
		depth:  depth,
	})
}

// sphereBox finds the closest point on the oriented box to the sphere center.
func sphereBox(s *Body, sphere *Sphere, bx *Body, box *Box, out []contact) []contact {
	inv := bx.Quaternion.Conjugate()
	rel := inv.Rotate(s.Position.Sub(bx.Position))
	h := box.HalfExtents

	closest := rel
	inside := true
	for i := 0; i < 3; i++ {
		if closest[i] > h[i] {
			closest[i] = h[i]
			inside = false
		} else if closest[i] < -h[i] {
			closest[i] = -h[i]
			inside = false
		}
	}

	var nLocal mgl64.Vec3
	var depth float64
	if inside {
		axis, sign, minDist := faceAxis(rel, h)
		nLocal[axis] = sign
		closest[axis] = sign * h[axis]
		depth = sphere.Radius + minDist
	} else {
		diff := rel.Sub(closest)
		dist := diff.Len()
		depth = sphere.Radius - dist
		if depth < -contactMargin {
			return out
		}
		nLocal = diff.Mul(1 / dist)
	}

	return append(out, contact{
		a:      s,
		b:      bx,
		normal: bx.Quaternion.Rotate(nLocal),
		point:  bx.Position.Add(bx.Quaternion.Rotate(closest)),
		depth:  depth,
	})
}

// boxVertices emits a contact for every corner of a that lies inside b grown
// by contactMargin. Edge-edge crossings are not detected.
func boxVertices(a *Body, ba *Box, b *Body, bb *Box, out []contact) []contact {
	inv := b.Quaternion.Conjugate()
	h := bb.HalfExtents
	for _, v := range ba.Vertices(a.Position, a.Quaternion) {
		rel := inv.Rotate(v.Sub(b.Position))
		if math.Abs(rel[0]) > h[0]+contactMargin || math.Abs(rel[1]) > h[1]+contactMargin || math.Abs(rel[2]) > h[2]+contactMargin {
			continue
		}
		axis, sign, depth := faceAxis(rel, h)
		var nLocal mgl64.Vec3
		nLocal[axis] = sign
		out = append(out, contact{
			a:      a,
			b:      b,
			normal: b.Quaternion.Rotate(nLocal),
			point:  v,
			depth:  depth,
		})
	}
	return out
}

// faceAxis returns the box face nearest to a point inside the box. For a
// point just outside, dist is negative along the face it has crossed.
func faceAxis(rel, h mgl64.Vec3) (axis int, sign float64, dist float64) {
	dist = math.Inf(1)
	sign = 1
	for i := 0; i < 3; i++ {
		d := h[i] - math.Abs(rel[i])
		if d < dist {
			dist = d
			axis = i
			if rel[i] >= 0 {
				sign = 1
			} else {
				sign = -1
			}
		}
	}
	return axis, sign, dist
}
