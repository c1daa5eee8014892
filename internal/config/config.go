package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGravity          = -9.82
	DefaultFixedTimestep    = 1.0 / 60.0
	DefaultMaxSubSteps      = 3
	DefaultSolverIterations = 10
	DefaultFriction         = 0.3
	DefaultRestitution      = 0.7
	DefaultLinearDamping    = 0.31
	DefaultSpawnHeight      = 3.0
	DefaultSpawnSpread      = 3.0
	DefaultFOV              = 75.0
	DefaultFPS              = 60
	DefaultMaxPixelRatio    = 2.0
)

type Config struct {
	Preset   string         `yaml:"preset"`
	Seed     int64          `yaml:"seed"`
	World    WorldConfig    `yaml:"world"`
	Material MaterialConfig `yaml:"material"`
	Floor    FloorConfig    `yaml:"floor"`
	Spawn    SpawnConfig    `yaml:"spawn"`
	Camera   CameraConfig   `yaml:"camera"`
	Render   RenderConfig   `yaml:"render"`
}

type WorldConfig struct {
	Gravity          [3]float64 `yaml:"gravity"`
	Broadphase       string     `yaml:"broadphase"`
	AllowSleep       bool       `yaml:"allow_sleep"`
	FixedTimestep    float64    `yaml:"fixed_timestep"`
	MaxSubSteps      int        `yaml:"max_sub_steps"`
	SolverIterations int        `yaml:"solver_iterations"`
	Workers          int        `yaml:"workers"`
}

// MaterialConfig is the single contact material shared by the floor and
// every spawned body.
type MaterialConfig struct {
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

// FloorConfig sizes the static floor. The slab lies flat with its thickness
// along Y and is centered on the origin.
type FloorConfig struct {
	Width     float64 `yaml:"width"`
	Length    float64 `yaml:"length"`
	Thickness float64 `yaml:"thickness"`
}

type SpawnConfig struct {
	Mass            float64     `yaml:"mass"`
	LinearDamping   float64     `yaml:"linear_damping"`
	Height          float64     `yaml:"height"`
	Spread          float64     `yaml:"spread"`
	MaxSphereRadius float64     `yaml:"max_sphere_radius"`
	MaxBoxEdge      float64     `yaml:"max_box_edge"`
	Initial         []ShapeSpec `yaml:"initial"`
}

// ShapeSpec describes one spawn. Radius is used for spheres and Size
// (width, height, depth) for boxes.
type ShapeSpec struct {
	Shape    string     `yaml:"shape"`
	Radius   float64    `yaml:"radius,omitempty"`
	Size     [3]float64 `yaml:"size,omitempty"`
	Position [3]float64 `yaml:"position"`
}

type CameraConfig struct {
	FOV           float64    `yaml:"fov"`
	Near          float64    `yaml:"near"`
	Far           float64    `yaml:"far"`
	Position      [3]float64 `yaml:"position"`
	Target        [3]float64 `yaml:"target"`
	Damping       bool       `yaml:"damping"`
	DampingFactor float64    `yaml:"damping_factor"`
}

type RenderConfig struct {
	FPS           int     `yaml:"fps"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	MaxPixelRatio float64 `yaml:"max_pixel_ratio"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset: "default",
		World: WorldConfig{
			Gravity:          [3]float64{0, DefaultGravity, 0},
			Broadphase:       "sap",
			AllowSleep:       true,
			FixedTimestep:    DefaultFixedTimestep,
			MaxSubSteps:      DefaultMaxSubSteps,
			SolverIterations: DefaultSolverIterations,
			Workers:          1,
		},
		Material: MaterialConfig{
			Friction:    DefaultFriction,
			Restitution: DefaultRestitution,
		},
		Floor: FloorConfig{Width: 10, Length: 10, Thickness: 0.3},
		Spawn: SpawnConfig{
			Mass:            1,
			LinearDamping:   DefaultLinearDamping,
			Height:          DefaultSpawnHeight,
			Spread:          DefaultSpawnSpread,
			MaxSphereRadius: 0.5,
			MaxBoxEdge:      1,
			Initial: []ShapeSpec{
				{Shape: "sphere", Radius: 0.5, Position: [3]float64{0, DefaultSpawnHeight, 0}},
			},
		},
		Camera: CameraConfig{
			FOV:           DefaultFOV,
			Near:          0.1,
			Far:           100,
			Position:      [3]float64{-3, 3, 3},
			Damping:       true,
			DampingFactor: 0.05,
		},
		Render: RenderConfig{
			FPS:           DefaultFPS,
			Width:         1280,
			Height:        720,
			MaxPixelRatio: DefaultMaxPixelRatio,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(field string, v any) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalidConfig, field, v)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate checks the fields the simulation cannot run without.
func (c *Config) Validate() error {
	w := c.World
	switch {
	case !finite(w.Gravity[:]...):
		return invalid("world.gravity", w.Gravity)
	case w.Broadphase != "" && w.Broadphase != "sap" && w.Broadphase != "naive":
		return invalid("world.broadphase", w.Broadphase)
	case !(w.FixedTimestep > 0) || !finite(w.FixedTimestep):
		return invalid("world.fixed_timestep", w.FixedTimestep)
	case w.MaxSubSteps < 1:
		return invalid("world.max_sub_steps", w.MaxSubSteps)
	case w.SolverIterations < 1:
		return invalid("world.solver_iterations", w.SolverIterations)
	case w.Workers < 1:
		return invalid("world.workers", w.Workers)
	}

	if c.Material.Friction < 0 || !finite(c.Material.Friction) {
		return invalid("material.friction", c.Material.Friction)
	}
	if c.Material.Restitution < 0 || c.Material.Restitution > 1 {
		return invalid("material.restitution", c.Material.Restitution)
	}

	f := c.Floor
	if !(f.Width > 0) || !(f.Length > 0) || !(f.Thickness > 0) {
		return invalid("floor", fmt.Sprintf("%gx%gx%g", f.Width, f.Length, f.Thickness))
	}

	s := c.Spawn
	switch {
	case !(s.Mass > 0):
		return invalid("spawn.mass", s.Mass)
	case s.LinearDamping < 0 || s.LinearDamping >= 1:
		return invalid("spawn.linear_damping", s.LinearDamping)
	case !(s.MaxSphereRadius > 0):
		return invalid("spawn.max_sphere_radius", s.MaxSphereRadius)
	case !(s.MaxBoxEdge > 0):
		return invalid("spawn.max_box_edge", s.MaxBoxEdge)
	case s.Spread < 0:
		return invalid("spawn.spread", s.Spread)
	}
	for i, spec := range s.Initial {
		if spec.Shape != "sphere" && spec.Shape != "box" {
			return invalid(fmt.Sprintf("spawn.initial[%d].shape", i), spec.Shape)
		}
	}

	cam := c.Camera
	if !(cam.FOV > 0 && cam.FOV < 180) {
		return invalid("camera.fov", cam.FOV)
	}
	if !(cam.Near > 0) || cam.Far <= cam.Near {
		return invalid("camera.near/far", fmt.Sprintf("%g/%g", cam.Near, cam.Far))
	}

	r := c.Render
	if r.FPS < 1 {
		return invalid("render.fps", r.FPS)
	}
	if r.Width < 1 || r.Height < 1 {
		return invalid("render.size", fmt.Sprintf("%dx%d", r.Width, r.Height))
	}
	if !(r.MaxPixelRatio > 0) {
		return invalid("render.max_pixel_ratio", r.MaxPixelRatio)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Spawn.Initial = append([]ShapeSpec(nil), c.Spawn.Initial...)
	return &out
}
