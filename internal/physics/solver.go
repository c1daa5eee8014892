package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// contactSlop is the penetration tolerated before positions are corrected.
	contactSlop = 0.005
	// correctionPercent of the excess penetration removed per step.
	correctionPercent = 0.8
	// contactMargin keeps contacts alive while a pair is separated by a
	// gap no larger than the slop, so resting bodies never lose support.
	contactMargin = contactSlop
	// restitutionThreshold is the approach speed below which contacts do not
	// bounce. It sits above the speed a body reaches falling through the
	// contact margin, so resting contacts never bounce.
	restitutionThreshold = 1.0
)

// solverInvMass treats sleeping bodies as immovable inside the solver.
func (b *Body) solverInvMass() float64 {
	if b.sleepState == Sleeping {
		return 0
	}
	return b.invMass
}

func (b *Body) solverInvInertia(v mgl64.Vec3) mgl64.Vec3 {
	if b.sleepState == Sleeping {
		return mgl64.Vec3{}
	}
	return b.invInertiaWorld(v)
}

func effectiveMass(c *contact, dir mgl64.Vec3) float64 {
	k := c.a.solverInvMass() + c.b.solverInvMass()
	k += dir.Dot(c.a.solverInvInertia(c.ra.Cross(dir)).Cross(c.ra))
	k += dir.Dot(c.b.solverInvInertia(c.rb.Cross(dir)).Cross(c.rb))
	if k <= 0 {
		return 0
	}
	return 1 / k
}

// tangentBasis returns two unit vectors orthogonal to n and to each other.
func tangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n[0]) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	t1 := n.Cross(ref).Normalize()
	t2 := n.Cross(t1)
	return t1, t2
}

func relativeVelocity(c *contact) mgl64.Vec3 {
	return c.a.velocityAt(c.ra).Sub(c.b.velocityAt(c.rb))
}

func (w *World) prepareContact(c *contact, dt float64) {
	cm := w.contactMaterialFor(c.a, c.b)
	c.friction = cm.Friction
	c.ra = c.point.Sub(c.a.Position)
	c.rb = c.point.Sub(c.b.Position)
	c.normalMass = effectiveMass(c, c.normal)
	c.t1, c.t2 = tangentBasis(c.normal)
	c.tangentMass[0] = effectiveMass(c, c.t1)
	c.tangentMass[1] = effectiveMass(c, c.t2)
	c.normalImp = 0
	c.tangentImp = [2]float64{}

	vn := relativeVelocity(c).Dot(c.normal)
	c.bias = 0
	if c.depth < 0 {
		// still apart: allow exactly the approach that closes the gap this step
		c.bias = c.depth / dt
	}
	if vn < -restitutionThreshold {
		c.bias = math.Max(c.bias, -cm.Restitution*vn)
	}
}

func (c *contact) apply(p mgl64.Vec3) {
	if c.a.sleepState != Sleeping {
		c.a.applyImpulse(p, c.ra)
	}
	if c.b.sleepState != Sleeping {
		c.b.applyImpulse(p.Mul(-1), c.rb)
	}
}

// solve runs one sequential-impulse pass over the contact. Impulses are
// accumulated and clamped: the normal impulse never pulls, friction stays
// inside the Coulomb cone.
func (c *contact) solve() {
	tangents := [2]mgl64.Vec3{c.t1, c.t2}
	for k, t := range tangents {
		vt := relativeVelocity(c).Dot(t)
		lambda := -vt * c.tangentMass[k]
		maxF := c.friction * c.normalImp
		old := c.tangentImp[k]
		c.tangentImp[k] = math.Max(-maxF, math.Min(old+lambda, maxF))
		c.apply(t.Mul(c.tangentImp[k] - old))
	}

	vn := relativeVelocity(c).Dot(c.normal)
	lambda := c.normalMass * (-vn + c.bias)
	old := c.normalImp
	c.normalImp = math.Max(old+lambda, 0)
	c.apply(c.normal.Mul(c.normalImp - old))
}

// correct pushes the pair apart by a share of the penetration beyond the slop.
// share splits the correction between the contacts of one body pair.
func (c *contact) correct(share float64) {
	excess := c.depth - contactSlop
	if excess <= 0 {
		return
	}
	ia, ib := c.a.solverInvMass(), c.b.solverInvMass()
	total := ia + ib
	if total == 0 {
		return
	}
	move := c.normal.Mul(excess * correctionPercent * share / total)
	if ia > 0 {
		c.a.Position = c.a.Position.Add(move.Mul(ia))
	}
	if ib > 0 {
		c.b.Position = c.b.Position.Sub(move.Mul(ib))
	}
}
