package sandbox

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/sandbox/internal/config"
	"github.com/san-kum/sandbox/internal/physics"
	"github.com/san-kum/sandbox/internal/scene"
)

// ShapeFactory creates paired bodies and meshes and registers them with a
// Simulation. All methods are safe to call while frames are running.
type ShapeFactory struct {
	sim *Simulation
}

func NewShapeFactory(sim *Simulation) *ShapeFactory {
	return &ShapeFactory{sim: sim}
}

func validDims(dims ...float64) bool {
	for _, d := range dims {
		if !(d > 0) || math.IsInf(d, 0) {
			return false
		}
	}
	return true
}

func validPosition(p mgl64.Vec3) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func checkSpawn(shape string, pos mgl64.Vec3, dims ...float64) error {
	if !validDims(dims...) {
		return &SpawnError{Shape: shape, Dims: dims, Position: pos, Wrapped: ErrInvalidShapeParameters}
	}
	if !validPosition(pos) {
		return &SpawnError{Shape: shape, Dims: dims, Position: pos, Wrapped: ErrInvalidSpawnPosition}
	}
	return nil
}

// CreateSphere spawns a dynamic sphere centered at pos.
func (f *ShapeFactory) CreateSphere(radius float64, pos mgl64.Vec3) (ObjectPair, error) {
	if err := checkSpawn("sphere", pos, radius); err != nil {
		return ObjectPair{}, err
	}
	t := f.sim.templates
	mesh := scene.NewMesh(t.SphereGeometry, t.ObjectMaterial)
	mesh.Scale = mgl64.Vec3{radius, radius, radius}
	return f.spawn("sphere", &physics.Sphere{Radius: radius}, mesh, pos)
}

// CreateBox spawns a dynamic box centered at pos. The physics shape gets
// half of each dimension.
func (f *ShapeFactory) CreateBox(width, height, depth float64, pos mgl64.Vec3) (ObjectPair, error) {
	if err := checkSpawn("box", pos, width, height, depth); err != nil {
		return ObjectPair{}, err
	}
	t := f.sim.templates
	mesh := scene.NewMesh(t.BoxGeometry, t.ObjectMaterial)
	mesh.Scale = mgl64.Vec3{width, height, depth}
	half := mgl64.Vec3{width / 2, height / 2, depth / 2}
	return f.spawn("box", &physics.Box{HalfExtents: half}, mesh, pos)
}

// Spawn creates the object described by spec.
func (f *ShapeFactory) Spawn(spec config.ShapeSpec) (ObjectPair, error) {
	pos := mgl64.Vec3(spec.Position)
	switch spec.Shape {
	case "sphere":
		return f.CreateSphere(spec.Radius, pos)
	case "box":
		return f.CreateBox(spec.Size[0], spec.Size[1], spec.Size[2], pos)
	default:
		return ObjectPair{}, &SpawnError{Shape: spec.Shape, Position: pos, Wrapped: ErrInvalidShapeParameters}
	}
}

func (f *ShapeFactory) spawn(kind string, shape physics.Shape, mesh *scene.Mesh, pos mgl64.Vec3) (ObjectPair, error) {
	s := f.sim
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := physics.DefaultBodyOptions()
	opts.Mass = s.cfg.Spawn.Mass
	opts.Shape = shape
	opts.Position = pos
	opts.Material = s.templates.PhysicsMaterial
	opts.LinearDamping = s.cfg.Spawn.LinearDamping
	body := physics.NewBody(opts)
	mesh.Position = body.Position
	mesh.Quaternion = body.Quaternion
	mesh.CastShadow = true

	pair := ObjectPair{Mesh: mesh, Body: body}
	if err := s.attach(pair); err != nil {
		return ObjectPair{}, err
	}

	s.logger.Debug("spawned", "shape", kind, "id", body.ID, "position", pos, "objects", s.registry.Len())
	return pair, nil
}

// attach adds the body to the world and the mesh to the scene, then
// registers the pair. The caller holds s.mu. The mesh is checked before
// anything is added since the world has no way to take a body back.
func (s *Simulation) attach(p ObjectPair) error {
	if p.Mesh == nil || s.scene.Contains(p.Mesh) {
		return fmt.Errorf("%w: mesh missing or already in the scene", ErrRegistrationInconsistency)
	}
	if err := s.physics.AddBody(p.Body); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistrationInconsistency, err)
	}
	if !s.scene.Add(p.Mesh) {
		// unreachable after the check above; the body is left in the world
		return fmt.Errorf("%w: mesh rejected by scene", ErrRegistrationInconsistency)
	}
	if !s.physics.HasBody(p.Body) || !s.scene.Contains(p.Mesh) {
		return fmt.Errorf("%w: pair not attached", ErrRegistrationInconsistency)
	}
	return s.registry.Register(p)
}
