package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultLinearDamping   = 0.01
	DefaultAngularDamping  = 0.01
	DefaultSleepSpeedLimit = 0.1
	DefaultSleepTimeLimit  = 1.0
)

type SleepState int

const (
	Awake SleepState = iota
	Sleepy
	Sleeping
)

// BodyOptions configures a new body. A zero Quaternion means identity.
// Damping is taken as given, zero included; start from DefaultBodyOptions
// for the usual values.
type BodyOptions struct {
	Mass           float64
	Shape          Shape
	Position       mgl64.Vec3
	Quaternion     mgl64.Quat
	Material       *Material
	LinearDamping  float64
	AngularDamping float64
}

type Body struct {
	ID    int
	Mass  float64
	Shape Shape

	Position        mgl64.Vec3
	Quaternion      mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	PreviousPosition       mgl64.Vec3
	PreviousQuaternion     mgl64.Quat
	InterpolatedPosition   mgl64.Vec3
	InterpolatedQuaternion mgl64.Quat

	LinearDamping  float64
	AngularDamping float64
	Material       *Material

	AllowSleep      bool
	SleepSpeedLimit float64
	SleepTimeLimit  float64

	invMass        float64
	invInertia     mgl64.Vec3
	sleepState     SleepState
	timeLastSleepy float64
	world          *World
}

// DefaultBodyOptions describes a unit-mass body at the origin with the
// default damping.
func DefaultBodyOptions() BodyOptions {
	return BodyOptions{
		Mass:           1,
		Quaternion:     mgl64.QuatIdent(),
		LinearDamping:  DefaultLinearDamping,
		AngularDamping: DefaultAngularDamping,
	}
}

func NewBody(opts BodyOptions) *Body {
	q := opts.Quaternion
	if q == (mgl64.Quat{}) {
		q = mgl64.QuatIdent()
	}

	b := &Body{
		Mass:            opts.Mass,
		Shape:           opts.Shape,
		Material:        opts.Material,
		LinearDamping:   opts.LinearDamping,
		AngularDamping:  opts.AngularDamping,
		AllowSleep:      true,
		SleepSpeedLimit: DefaultSleepSpeedLimit,
		SleepTimeLimit:  DefaultSleepTimeLimit,
	}
	b.SetPosition(opts.Position)
	b.SetQuaternion(q.Normalize())
	b.updateMassProperties()
	return b
}

// SetPosition places the body and resets its previous and interpolated
// positions, so no earlier placement leaks into interpolation.
func (b *Body) SetPosition(p mgl64.Vec3) {
	b.Position = p
	b.PreviousPosition = p
	b.InterpolatedPosition = p
}

func (b *Body) SetQuaternion(q mgl64.Quat) {
	b.Quaternion = q
	b.PreviousQuaternion = q
	b.InterpolatedQuaternion = q
}

func (b *Body) updateMassProperties() {
	if b.Mass <= 0 || b.Shape == nil {
		b.invMass = 0
		b.invInertia = mgl64.Vec3{}
		return
	}
	b.invMass = 1 / b.Mass
	inertia := b.Shape.Inertia(b.Mass)
	for i := 0; i < 3; i++ {
		if inertia[i] > 0 {
			b.invInertia[i] = 1 / inertia[i]
		}
	}
}

func (b *Body) IsStatic() bool { return b.invMass == 0 }

func (b *Body) InvMass() float64 { return b.invMass }

func (b *Body) SleepState() SleepState { return b.sleepState }

func (b *Body) IsSleeping() bool { return b.sleepState == Sleeping }

func (b *Body) WakeUp() {
	b.sleepState = Awake
}

func (b *Body) Sleep() {
	b.sleepState = Sleeping
	b.PreviousPosition = b.Position
	b.PreviousQuaternion = b.Quaternion
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
}

// AABB returns the current world-space bounds, or an empty box for a body
// without a shape.
func (b *Body) AABB() AABB {
	if b.Shape == nil {
		return AABB{Min: b.Position, Max: b.Position}
	}
	return b.Shape.AABB(b.Position, b.Quaternion)
}

// KineticEnergy includes both linear and rotational terms.
func (b *Body) KineticEnergy() float64 {
	if b.IsStatic() {
		return 0
	}
	ke := 0.5 * b.Mass * b.Velocity.LenSqr()
	local := b.Quaternion.Conjugate().Rotate(b.AngularVelocity)
	inertia := b.Shape.Inertia(b.Mass)
	for i := 0; i < 3; i++ {
		ke += 0.5 * inertia[i] * local[i] * local[i]
	}
	return ke
}

// invInertiaWorld applies the world-space inverse inertia tensor to v.
func (b *Body) invInertiaWorld(v mgl64.Vec3) mgl64.Vec3 {
	if b.invMass == 0 {
		return mgl64.Vec3{}
	}
	local := b.Quaternion.Conjugate().Rotate(v)
	local = mgl64.Vec3{local[0] * b.invInertia[0], local[1] * b.invInertia[1], local[2] * b.invInertia[2]}
	return b.Quaternion.Rotate(local)
}

func (b *Body) velocityAt(r mgl64.Vec3) mgl64.Vec3 {
	return b.Velocity.Add(b.AngularVelocity.Cross(r))
}

func (b *Body) applyImpulse(p, r mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.Velocity = b.Velocity.Add(p.Mul(b.invMass))
	b.AngularVelocity = b.AngularVelocity.Add(b.invInertiaWorld(r.Cross(p)))
}

func (b *Body) applyGravityAndDamping(g mgl64.Vec3, dt float64) {
	b.Velocity = b.Velocity.Add(g.Mul(dt))
	b.Velocity = b.Velocity.Mul(math.Pow(1-b.LinearDamping, dt))
	b.AngularVelocity = b.AngularVelocity.Mul(math.Pow(1-b.AngularDamping, dt))
}

// integrate advances position and orientation with semi-implicit Euler:
// velocities are already updated for this step.
func (b *Body) integrate(dt float64) {
	b.PreviousPosition = b.Position
	b.PreviousQuaternion = b.Quaternion

	b.Position = b.Position.Add(b.Velocity.Mul(dt))

	if b.AngularVelocity.LenSqr() > 0 {
		spin := mgl64.Quat{W: 0, V: b.AngularVelocity}.Mul(b.Quaternion).Scale(0.5 * dt)
		b.Quaternion = b.Quaternion.Add(spin).Normalize()
	}
}

func (b *Body) updateSleep(time float64) {
	if !b.AllowSleep || b.IsStatic() {
		return
	}
	speedSq := b.Velocity.LenSqr() + b.AngularVelocity.LenSqr()
	limitSq := b.SleepSpeedLimit * b.SleepSpeedLimit

	switch {
	case b.sleepState == Awake && speedSq < limitSq:
		b.sleepState = Sleepy
		b.timeLastSleepy = time
	case b.sleepState == Sleepy && speedSq > limitSq:
		b.sleepState = Awake
	case b.sleepState == Sleepy && time-b.timeLastSleepy > b.SleepTimeLimit:
		b.Sleep()
	}
}
