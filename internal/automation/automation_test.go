package automation

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/san-kum/sandbox/internal/config"
	"github.com/san-kum/sandbox/internal/sandbox"
)

const scenarioYAML = `name: rain
description: two spheres then a box
spawns:
  - at: 0.5
    shape: box
    size: [1, 1, 1]
    position: [1, 4, 0]
  - at: 0
    shape: sphere
    radius: 0.5
    position: [0, 3, 0]
  - at: 0.25
    shape: sphere
    radius: 0.3
    position: [-1, 3, 0]
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "rain" {
		t.Errorf("expected name 'rain', got %q", sc.Name)
	}
	if len(sc.Spawns) != 3 {
		t.Fatalf("expected 3 spawns, got %d", len(sc.Spawns))
	}
	if sc.Spawns[0].Size != [3]float64{1, 1, 1} {
		t.Errorf("unexpected box size %v", sc.Spawns[0].Size)
	}
}

func TestLoadScenarioMissing(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name  string
		spawn ScenarioSpawn
	}{
		{"negative time", ScenarioSpawn{At: -1, Shape: "sphere", Radius: 1}},
		{"unknown shape", ScenarioSpawn{Shape: "cone"}},
		{"zero radius", ScenarioSpawn{Shape: "sphere"}},
		{"flat box", ScenarioSpawn{Shape: "box", Size: [3]float64{1, 0, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &Scenario{Spawns: []ScenarioSpawn{tt.spawn}}
			if err := sc.Validate(); !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("expected ErrInvalidScenario, got %v", err)
			}
		})
	}
}

func newSim(t *testing.T) (*sandbox.Simulation, *sandbox.ManualSource) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Spawn.Initial = nil
	src := sandbox.NewManualSource()
	sim, err := sandbox.New(cfg, nil, log.New(io.Discard), sandbox.WithTimeSource(src))
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	return sim, src
}

func TestDirectorApply(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	sim, src := newSim(t)
	d := NewDirector(sim, sandbox.NewSimulatedScheduler(src, 60, 1), sc)

	if n := d.Apply(0); n != 1 {
		t.Errorf("expected 1 spawn at t=0, got %d", n)
	}
	if n := d.Apply(0.3); n != 1 {
		t.Errorf("expected 1 spawn at t=0.3, got %d", n)
	}
	if d.Pending() != 1 {
		t.Errorf("expected 1 pending, got %d", d.Pending())
	}
	if sim.Registry().Len() != 2 {
		t.Errorf("expected 2 objects, got %d", sim.Registry().Len())
	}
}

func TestDirectorRun(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	sim, src := newSim(t)
	d := NewDirector(sim, sandbox.NewSimulatedScheduler(src, 60, 1), sc)

	if err := sandbox.NewFrameLoop(sim).Run(context.Background(), d); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if d.Pending() != 0 || d.Failed() != 0 {
		t.Errorf("pending=%d failed=%d", d.Pending(), d.Failed())
	}
	if sim.Registry().Len() != 3 {
		t.Errorf("expected 3 objects, got %d", sim.Registry().Len())
	}
	shapes := []string{"sphere", "sphere", "box"}
	sim.Registry().ForEach(func(i int, p sandbox.ObjectPair) {
		if got := p.Body.Shape.Kind().String(); got != shapes[i] {
			t.Errorf("pair %d: expected %s, got %s", i, shapes[i], got)
		}
	})
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Param:    "restitution",
		Min:      0,
		Max:      0.9,
		Steps:    3,
		Duration: 0.5,
	}
	results, err := RunSweep(context.Background(), sweep, log.New(io.Discard))
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].Value != 0.45 {
		t.Errorf("expected middle value 0.45, got %f", results[1].Value)
	}
	for _, r := range results {
		if r.Objects != 1 {
			t.Errorf("expected 1 object, got %d", r.Objects)
		}
	}
}

func TestRunSweepZeroDamping(t *testing.T) {
	sweep := &ParameterSweep{
		Param:    "damping",
		Min:      0,
		Max:      0.5,
		Steps:    2,
		Duration: 0.5,
	}
	results, err := RunSweep(context.Background(), sweep, log.New(io.Discard))
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	// still falling freely after 0.5s: without damping every step adds
	// exactly g*dt to the speed
	kick := 9.82 / 60
	steps := results[0].PeakSpeed / kick
	if steps < 1 || math.Abs(steps-math.Round(steps)) > 1e-6 {
		t.Errorf("damping 0 peak speed %f is not a whole number of free-fall steps (%f)", results[0].PeakSpeed, steps)
	}
	if results[1].PeakSpeed >= results[0].PeakSpeed {
		t.Errorf("damping 0.5 peak %f should be below undamped %f", results[1].PeakSpeed, results[0].PeakSpeed)
	}
}

func TestRunSweepInvalid(t *testing.T) {
	ctx := context.Background()
	quiet := log.New(io.Discard)

	if _, err := RunSweep(ctx, &ParameterSweep{Param: "restitution", Steps: 1, Duration: 1}, quiet); !errors.Is(err, ErrInvalidSweep) {
		t.Errorf("expected ErrInvalidSweep for one step, got %v", err)
	}
	if _, err := RunSweep(ctx, &ParameterSweep{Param: "colour", Steps: 2, Duration: 1}, quiet); !errors.Is(err, ErrInvalidSweep) {
		t.Errorf("expected ErrInvalidSweep for unknown param, got %v", err)
	}
}

func TestRunMonteCarlo(t *testing.T) {
	mc := &MonteCarloConfig{
		Perturbation: 0.5,
		NumTrials:    2,
		Duration:     2,
		Seed:         7,
	}
	results, err := RunMonteCarlo(context.Background(), mc, log.New(io.Discard))
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Fallen != 0 {
			t.Errorf("trial %d: %d objects fell off the floor", r.TrialID, r.Fallen)
		}
	}
	stable, unstable := MonteCarloStats(results)
	if stable+unstable != 2 {
		t.Errorf("stats do not add up: %d + %d", stable, unstable)
	}
}

func TestRunMonteCarloSettles(t *testing.T) {
	mc := &MonteCarloConfig{
		Perturbation: 0.5,
		NumTrials:    2,
		Duration:     8,
		Seed:         3,
	}
	results, err := RunMonteCarlo(context.Background(), mc, log.New(io.Discard))
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	for _, r := range results {
		if r.SleepRatio != 1 {
			t.Errorf("trial %d: sleep ratio %f, want every object at rest", r.TrialID, r.SleepRatio)
		}
	}
	if stable, _ := MonteCarloStats(results); stable != 2 {
		t.Errorf("expected both trials stable, got %d", stable)
	}
}

func TestDirectorLoadShiftsTimes(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	sim, _ := newSim(t)
	d := NewDirector(sim, nil, &Scenario{})
	d.Load(sc, 10)

	if n := d.Apply(9.9); n != 0 {
		t.Errorf("expected nothing due before the reload time, got %d", n)
	}
	if n := d.Apply(10.25); n != 2 {
		t.Errorf("expected 2 spawns by t=10.25, got %d", n)
	}
	if d.Pending() != 1 {
		t.Errorf("expected 1 pending, got %d", d.Pending())
	}
	if err := d.Next(context.Background()); !errors.Is(err, sandbox.ErrSchedulerDone) {
		t.Errorf("expected ErrSchedulerDone without a scheduler, got %v", err)
	}
}
