package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultSolverIterations = 10

	// stepEpsilon absorbs rounding when real time arrives in exact multiples
	// of the fixed step.
	stepEpsilon = 1e-9

	integrateChunk = 64
)

type World struct {
	gravity          mgl64.Vec3
	broadphase       Broadphase
	allowSleep       bool
	solverIterations int
	workers          int

	bodies                 []*Body
	contactMaterials       []*ContactMaterial
	defaultContactMaterial *ContactMaterial

	accumulator float64
	time        float64
	stepNumber  int
	nextID      int
	contacts    []contact
}

func NewWorld() *World {
	return &World{
		gravity:                mgl64.Vec3{0, -9.82, 0},
		broadphase:             &NaiveBroadphase{},
		solverIterations:       DefaultSolverIterations,
		workers:                1,
		bodies:                 make([]*Body, 0),
		contactMaterials:       make([]*ContactMaterial, 0),
		defaultContactMaterial: NewContactMaterial(nil, nil, 0.3, 0),
	}
}

func (w *World) SetGravity(g mgl64.Vec3) { w.gravity = g }
func (w *World) Gravity() mgl64.Vec3     { return w.gravity }

func (w *World) SetBroadphase(b Broadphase) {
	if b != nil {
		w.broadphase = b
	}
}

func (w *World) Broadphase() Broadphase { return w.broadphase }

// SetAllowSleep enables sleeping for bodies that stay slow long enough.
// Disabling it wakes every body.
func (w *World) SetAllowSleep(allow bool) {
	w.allowSleep = allow
	if !allow {
		for _, b := range w.bodies {
			b.WakeUp()
		}
	}
}

func (w *World) AllowSleep() bool { return w.allowSleep }

func (w *World) SetSolverIterations(n int) {
	if n > 0 {
		w.solverIterations = n
	}
}

func (w *World) SetWorkers(n int) {
	if n > 0 {
		w.workers = n
	}
}

func (w *World) AddContactMaterial(cm *ContactMaterial) {
	w.contactMaterials = append(w.contactMaterials, cm)
}

func (w *World) SetDefaultContactMaterial(cm *ContactMaterial) {
	if cm != nil {
		w.defaultContactMaterial = cm
	}
}

func (w *World) DefaultContactMaterial() *ContactMaterial { return w.defaultContactMaterial }

func (w *World) contactMaterialFor(a, b *Body) *ContactMaterial {
	for _, cm := range w.contactMaterials {
		if cm.matches(a.Material, b.Material) {
			return cm
		}
	}
	return w.defaultContactMaterial
}

func (w *World) AddBody(b *Body) error {
	if b == nil {
		return ErrNilBody
	}
	if b.world != nil {
		return fmt.Errorf("%w: id %d", ErrDuplicateBody, b.ID)
	}
	w.nextID++
	b.ID = w.nextID
	b.world = w
	w.bodies = append(w.bodies, b)
	return nil
}

// HasBody reports whether b was added to this world.
func (w *World) HasBody(b *Body) bool {
	return b != nil && b.world == w
}

func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *World) Time() float64   { return w.time }
func (w *World) StepNumber() int { return w.stepNumber }

// Step consumes realDt in fixed increments of fixedDt, running at most
// maxSubSteps of them. Time that does not fit is dropped. Interpolated
// transforms are updated with the remaining fraction of a step.
func (w *World) Step(fixedDt, realDt float64, maxSubSteps int) (int, error) {
	if !(fixedDt > 0) || math.IsInf(fixedDt, 0) {
		return 0, fmt.Errorf("%w: fixed step %g", ErrInvalidTimestep, fixedDt)
	}
	if realDt < 0 || math.IsNaN(realDt) || math.IsInf(realDt, 0) {
		return 0, fmt.Errorf("%w: elapsed %g", ErrInvalidTimestep, realDt)
	}
	if maxSubSteps < 1 {
		return 0, fmt.Errorf("%w: max sub-steps %d", ErrInvalidTimestep, maxSubSteps)
	}

	w.accumulator += realDt
	substeps := 0
	for w.accumulator+stepEpsilon >= fixedDt && substeps < maxSubSteps {
		w.internalStep(fixedDt)
		w.accumulator -= fixedDt
		substeps++
	}
	w.accumulator = math.Mod(w.accumulator, fixedDt)
	if w.accumulator < 0 || w.accumulator+stepEpsilon >= fixedDt {
		// a remainder within rounding of a full step would replay it later
		w.accumulator = 0
	}

	t := w.accumulator / fixedDt
	for _, b := range w.bodies {
		if b.IsStatic() {
			continue
		}
		b.InterpolatedPosition = b.PreviousPosition.Add(b.Position.Sub(b.PreviousPosition).Mul(t))
		b.InterpolatedQuaternion = mgl64.QuatSlerp(b.PreviousQuaternion, b.Quaternion, t)
	}
	return substeps, nil
}

// StepFixed runs exactly one internal step of dt seconds.
func (w *World) StepFixed(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: fixed step %g", ErrInvalidTimestep, dt)
	}
	w.internalStep(dt)
	return nil
}

func (w *World) internalStep(dt float64) {
	for _, b := range w.bodies {
		if b.IsStatic() || b.IsSleeping() {
			continue
		}
		b.applyGravityAndDamping(w.gravity, dt)
	}

	w.contacts = w.contacts[:0]
	shares := make([]float64, 0, cap(w.contacts))
	for _, p := range w.broadphase.Pairs(w.bodies) {
		start := len(w.contacts)
		w.contacts = collide(p.A, p.B, w.contacts)
		n := len(w.contacts) - start
		if n == 0 {
			continue
		}
		w.wakeOnContact(p.A, p.B)
		for i := 0; i < n; i++ {
			shares = append(shares, 1/float64(n))
		}
	}

	for i := range w.contacts {
		w.prepareContact(&w.contacts[i], dt)
	}
	for it := 0; it < w.solverIterations; it++ {
		for i := range w.contacts {
			w.contacts[i].solve()
		}
	}
	for i := range w.contacts {
		w.contacts[i].correct(shares[i])
	}

	w.integrate(dt)

	w.time += dt
	w.stepNumber++

	if w.allowSleep {
		for _, b := range w.bodies {
			b.updateSleep(w.time)
		}
	}
}

// wakeOnContact wakes a sleeping body touched by one moving fast enough.
func (w *World) wakeOnContact(a, b *Body) {
	wake := func(sleeper, other *Body) {
		if !sleeper.IsSleeping() || other.IsStatic() || other.IsSleeping() {
			return
		}
		speedSq := other.Velocity.LenSqr() + other.AngularVelocity.LenSqr()
		if speedSq >= 2*other.SleepSpeedLimit*other.SleepSpeedLimit {
			sleeper.WakeUp()
		}
	}
	wake(a, b)
	wake(b, a)
}

func (w *World) integrate(dt float64) {
	bodies := w.bodies
	parallelFor(len(bodies), integrateChunk, w.workers, func(start, end int) {
		for _, b := range bodies[start:end] {
			if b.IsStatic() || b.IsSleeping() {
				continue
			}
			b.integrate(dt)
		}
	})
}
