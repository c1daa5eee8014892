package sandbox

import (
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/sandbox/internal/config"
	"github.com/san-kum/sandbox/internal/physics"
	"github.com/san-kum/sandbox/internal/scene"
)

// Simulation owns everything a running sandbox needs: the physics world,
// the scene and camera, the registry pairing the two, and the frame clock.
type Simulation struct {
	mu sync.Mutex

	cfg    *config.Config
	logger *log.Logger

	world    *physics.World
	physics  PhysicsWorld
	scene    *scene.Scene
	camera   *scene.Camera
	orbit    *scene.OrbitControls
	controls Controls
	renderer Renderer

	registry  *Registry
	templates *ShapeTemplates
	clock     *Clock
	factory   *ShapeFactory
	floor     ObjectPair

	metrics   []Metric
	observers []Observer
	frame     uint64
}

type Option func(*Simulation)

// WithTimeSource replaces the wall clock, e.g. with a ManualSource.
func WithTimeSource(src TimeSource) Option {
	return func(s *Simulation) { s.clock = NewClock(src) }
}

// WithControls replaces the orbit controls advanced each frame.
func WithControls(c Controls) Option {
	return func(s *Simulation) { s.controls = c }
}

// New builds the world, floor, camera and initial spawns described by cfg.
// A nil renderer draws nothing and a nil logger uses log.Default().
func New(cfg *config.Config, renderer Renderer, logger *log.Logger, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if renderer == nil {
		renderer = NopRenderer{}
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Simulation{
		cfg:       cfg,
		logger:    logger,
		renderer:  renderer,
		scene:     scene.New(),
		registry:  NewRegistry(),
		templates: NewShapeTemplates(),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	if err := s.buildWorld(); err != nil {
		return nil, err
	}
	s.physics = s.world
	s.buildCamera()
	if err := s.buildFloor(); err != nil {
		return nil, err
	}
	s.factory = NewShapeFactory(s)

	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = NewClock(NewMonotonicSource())
	}

	for i, spec := range cfg.Spawn.Initial {
		if _, err := s.factory.Spawn(spec); err != nil {
			return nil, fmt.Errorf("initial spawn %d: %w", i, err)
		}
	}

	s.logger.Info("world ready",
		"preset", cfg.Preset,
		"broadphase", s.world.Broadphase().Name(),
		"gravity", s.world.Gravity(),
		"objects", s.registry.Len())
	return s, nil
}

func (s *Simulation) buildWorld() error {
	wc := s.cfg.World
	bp, err := physics.NewBroadphase(wc.Broadphase)
	if err != nil {
		return err
	}

	w := physics.NewWorld()
	w.SetBroadphase(bp)
	w.SetAllowSleep(wc.AllowSleep)
	w.SetGravity(mgl64.Vec3(wc.Gravity))
	w.SetSolverIterations(wc.SolverIterations)
	w.SetWorkers(wc.Workers)

	mat := s.templates.PhysicsMaterial
	cm := physics.NewContactMaterial(mat, mat, s.cfg.Material.Friction, s.cfg.Material.Restitution)
	w.AddContactMaterial(cm)
	w.SetDefaultContactMaterial(cm)

	s.world = w
	return nil
}

func (s *Simulation) buildCamera() {
	cc, rc := s.cfg.Camera, s.cfg.Render
	cam := scene.NewPerspectiveCamera(cc.FOV, float64(rc.Width)/float64(rc.Height), cc.Near, cc.Far)
	cam.Position = mgl64.Vec3(cc.Position)
	cam.LookAt(mgl64.Vec3(cc.Target))
	s.camera = cam

	s.orbit = scene.NewOrbitControls(cam)
	s.orbit.EnableDamping = cc.Damping
	s.orbit.DampingFactor = cc.DampingFactor
	s.controls = s.orbit
}

// buildFloor adds the static floor. Its slab is laid flat by a quarter turn
// about -X, so the box's local Z becomes world Y. It is not registered.
func (s *Simulation) buildFloor() error {
	f := s.cfg.Floor
	q := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{-1, 0, 0})
	body := physics.NewBody(physics.BodyOptions{
		Mass:       0,
		Shape:      &physics.Box{HalfExtents: mgl64.Vec3{f.Width / 2, f.Length / 2, f.Thickness / 2}},
		Quaternion: q,
		Material:   s.templates.PhysicsMaterial,
	})
	if err := s.world.AddBody(body); err != nil {
		return err
	}

	mesh := scene.NewMesh(scene.NewBoxGeometry(f.Width, f.Length, f.Thickness), s.templates.FloorMaterial)
	mesh.Quaternion = body.Quaternion
	mesh.ReceiveShadow = true
	s.scene.Add(mesh)

	s.floor = ObjectPair{Mesh: mesh, Body: body}
	return nil
}

func (s *Simulation) AddMetric(m Metric) {
	s.mu.Lock()
	s.metrics = append(s.metrics, m)
	s.mu.Unlock()
}

func (s *Simulation) AddObserver(o Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Resize adapts the camera and renderer to a new viewport. The pixel ratio
// is capped at the configured maximum.
func (s *Simulation) Resize(width, height int, pixelRatio float64) {
	if width <= 0 || height <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.camera.Aspect = float64(width) / float64(height)
	s.camera.UpdateProjectionMatrix()
	s.renderer.SetSize(width, height)
	s.renderer.SetPixelRatio(math.Min(pixelRatio, s.cfg.Render.MaxPixelRatio))
}

// UpdateCamera runs fn with the simulation locked so camera input does not
// race a frame.
func (s *Simulation) UpdateCamera(fn func(o *scene.OrbitControls)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.orbit)
}

type Stats struct {
	Frame    uint64
	Elapsed  float64
	Objects  int
	Sleeping int
	Metrics  map[string]float64
}

func (s *Simulation) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Frame:   s.frame,
		Elapsed: s.clock.Elapsed(),
		Objects: s.registry.Len(),
		Metrics: make(map[string]float64, len(s.metrics)),
	}
	for p := range s.registry.All() {
		if p.Body.IsSleeping() {
			st.Sleeping++
		}
	}
	for _, m := range s.metrics {
		st.Metrics[m.Name()] = m.Value()
	}
	return st
}

func (s *Simulation) Config() *config.Config      { return s.cfg }
func (s *Simulation) Logger() *log.Logger         { return s.logger }
func (s *Simulation) World() *physics.World       { return s.world }
func (s *Simulation) Scene() *scene.Scene         { return s.scene }
func (s *Simulation) Camera() *scene.Camera       { return s.camera }
func (s *Simulation) Registry() *Registry         { return s.registry }
func (s *Simulation) Templates() *ShapeTemplates  { return s.templates }
func (s *Simulation) Factory() *ShapeFactory      { return s.factory }
func (s *Simulation) Floor() ObjectPair           { return s.floor }
func (s *Simulation) Clock() *Clock               { return s.clock }
func (s *Simulation) Orbit() *scene.OrbitControls { return s.orbit }

func (s *Simulation) Frame() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}
