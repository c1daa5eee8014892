// Package physics implements the rigid-body world the sandbox simulates.
//
// The world owns every [Body] and advances them in fixed increments:
//
//   - [World]: gravity, contact materials, broadphase, sleeping, stepping
//   - [Body]: mass, [Shape], position, quaternion orientation, damping
//   - [Sphere], [Box]: collision shapes (boxes are defined by half-extents)
//   - [NaiveBroadphase], [SAPBroadphase]: candidate pair generation
//
// # Stepping
//
// [World.Step] is semi-fixed: real elapsed time is accumulated and consumed
// in fixed increments, at most maxSubSteps per call. Time left over beyond
// the cap is dropped.
//
//	world := physics.NewWorld()
//	world.SetGravity(mgl64.Vec3{0, -9.82, 0})
//	world.AddBody(body)
//	world.Step(1.0/60.0, delta, 3)
//
// # Thread Safety
//
// A World is NOT safe for concurrent use. Integration may fan out over
// worker goroutines internally, but Step only returns once every worker
// is done.
package physics
