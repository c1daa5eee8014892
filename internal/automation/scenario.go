package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/san-kum/sandbox/internal/config"
	"github.com/san-kum/sandbox/internal/sandbox"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted list of spawns for a headless or live run.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Spawns      []ScenarioSpawn `yaml:"spawns"`
}

// ScenarioSpawn creates one object once the simulation clock reaches At.
type ScenarioSpawn struct {
	At       float64    `yaml:"at"`
	Shape    string     `yaml:"shape"`
	Radius   float64    `yaml:"radius,omitempty"`
	Size     [3]float64 `yaml:"size,omitempty"`
	Position [3]float64 `yaml:"position"`
}

func (s ScenarioSpawn) Spec() config.ShapeSpec {
	return config.ShapeSpec{Shape: s.Shape, Radius: s.Radius, Size: s.Size, Position: s.Position}
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return &scenario, nil
}

func (sc *Scenario) Validate() error {
	for i, s := range sc.Spawns {
		if s.At < 0 || math.IsNaN(s.At) || math.IsInf(s.At, 0) {
			return fmt.Errorf("%w: spawns[%d].at = %g", ErrInvalidScenario, i, s.At)
		}
		switch s.Shape {
		case "sphere":
			if !(s.Radius > 0) {
				return fmt.Errorf("%w: spawns[%d].radius = %g", ErrInvalidScenario, i, s.Radius)
			}
		case "box":
			if !(s.Size[0] > 0 && s.Size[1] > 0 && s.Size[2] > 0) {
				return fmt.Errorf("%w: spawns[%d].size = %v", ErrInvalidScenario, i, s.Size)
			}
		default:
			return fmt.Errorf("%w: spawns[%d].shape = %q", ErrInvalidScenario, i, s.Shape)
		}
	}
	return nil
}

// Director wraps a Scheduler and, between frames, spawns every scenario
// entry whose time has been reached by the simulation clock. A nil
// scheduler is allowed when the caller drives Apply itself.
type Director struct {
	sim   *sandbox.Simulation
	sched sandbox.Scheduler

	mu      sync.Mutex
	pending []ScenarioSpawn
	failed  int
}

func NewDirector(sim *sandbox.Simulation, sched sandbox.Scheduler, sc *Scenario) *Director {
	d := &Director{sim: sim, sched: sched}
	d.Load(sc, 0)
	return d
}

// Load replaces the pending spawns with those of sc, shifted so that
// At is measured from now.
func (d *Director) Load(sc *Scenario, now float64) {
	pending := make([]ScenarioSpawn, 0, len(sc.Spawns))
	for _, s := range sc.Spawns {
		s.At += now
		pending = append(pending, s)
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].At < pending[j].At })

	d.mu.Lock()
	d.pending = pending
	d.mu.Unlock()
}

func (d *Director) Next(ctx context.Context) error {
	if d.sched == nil {
		return sandbox.ErrSchedulerDone
	}
	if err := d.sched.Next(ctx); err != nil {
		return err
	}
	d.Apply(d.sim.Stats().Elapsed)
	return nil
}

// Apply spawns the entries due at or before now and returns how many were
// attempted. Rejected spawns are logged and dropped.
func (d *Director) Apply(now float64) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for n < len(d.pending) && d.pending[n].At <= now {
		s := d.pending[n]
		if _, err := d.sim.Factory().Spawn(s.Spec()); err != nil {
			d.failed++
			d.sim.Logger().Warn("scenario spawn rejected", "at", s.At, "shape", s.Shape, "err", err)
		}
		n++
	}
	d.pending = d.pending[n:]
	return n
}

func (d *Director) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Director) Failed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failed
}
