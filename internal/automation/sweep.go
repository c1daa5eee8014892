package automation

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/sandbox/internal/config"
	"github.com/san-kum/sandbox/internal/metrics"
	"github.com/san-kum/sandbox/internal/sandbox"
)

// Summary is what a headless run reports once it finishes.
type Summary struct {
	Energy     float64
	PeakSpeed  float64
	SleepRatio float64
	Objects    int
	Fallen     int
}

// runHeadless simulates cfg for duration seconds on a manual clock.
func runHeadless(ctx context.Context, cfg *config.Config, duration float64, logger *log.Logger) (Summary, error) {
	src := sandbox.NewManualSource()
	sim, err := sandbox.New(cfg, nil, logger, sandbox.WithTimeSource(src))
	if err != nil {
		return Summary{}, err
	}

	energy := metrics.NewEnergy(-cfg.World.Gravity[1], 0)
	speed := metrics.NewMaxSpeed()
	sleep := metrics.NewSleepRatio()
	sim.AddMetric(energy)
	sim.AddMetric(speed)
	sim.AddMetric(sleep)

	loop := sandbox.NewFrameLoop(sim)
	if err := loop.Run(ctx, sandbox.NewSimulatedScheduler(src, cfg.Render.FPS, duration)); err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Energy:     energy.Value(),
		PeakSpeed:  speed.Peak(),
		SleepRatio: sleep.Value(),
		Objects:    sim.Registry().Len(),
	}
	floorTop := cfg.Floor.Thickness / 2
	for _, b := range sim.Registry().Bodies() {
		if b.Position[1] < floorTop-1 {
			sum.Fallen++
		}
	}
	return sum, nil
}

// ParameterSweep runs the same configuration across a range of values for
// one parameter: restitution, friction, gravity or damping.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min      float64
	Max      float64
	Steps    int
	Duration float64
}

type SweepResult struct {
	Value float64
	Summary
}

func applyParam(cfg *config.Config, param string, v float64) error {
	switch param {
	case "restitution":
		cfg.Material.Restitution = v
	case "friction":
		cfg.Material.Friction = v
	case "gravity":
		cfg.World.Gravity = [3]float64{0, -v, 0}
	case "damping":
		cfg.Spawn.LinearDamping = v
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidSweep, param)
	}
	return nil
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *log.Logger) ([]SweepResult, error) {
	if sweep.Steps < 2 {
		return nil, fmt.Errorf("%w: steps = %d", ErrInvalidSweep, sweep.Steps)
	}
	if !(sweep.Duration > 0) {
		return nil, fmt.Errorf("%w: duration = %g", ErrInvalidSweep, sweep.Duration)
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.Default()
	}
	quiet := log.New(io.Discard)

	results := make([]SweepResult, 0, sweep.Steps)
	paramStep := (sweep.Max - sweep.Min) / float64(sweep.Steps-1)

	for i := 0; i < sweep.Steps; i++ {
		paramVal := sweep.Min + float64(i)*paramStep
		cfg := base.Clone()
		if err := applyParam(cfg, sweep.Param, paramVal); err != nil {
			return nil, err
		}

		sum, err := runHeadless(ctx, cfg, sweep.Duration, quiet)
		if err != nil {
			return results, fmt.Errorf("sweep %s=%g: %w", sweep.Param, paramVal, err)
		}
		results = append(results, SweepResult{Value: paramVal, Summary: sum})

		logger.Info("sweep", "step", i+1, "of", sweep.Steps, sweep.Param, paramVal, "energy", sum.Energy)
	}

	return results, nil
}

// MonteCarloConfig jitters the initial spawn positions of Base on every
// trial. A trial is stable when nothing fell off the floor and every object
// came to rest.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Duration     float64
	Seed         int64
}

type MonteCarloResult struct {
	TrialID int
	Summary
	Stable bool
}

func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, logger *log.Logger) ([]MonteCarloResult, error) {
	if mc.NumTrials < 1 {
		return nil, fmt.Errorf("%w: trials = %d", ErrInvalidSweep, mc.NumTrials)
	}
	base := mc.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.Default()
	}
	quiet := log.New(io.Discard)

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, mc.NumTrials)
	for trial := 0; trial < mc.NumTrials; trial++ {
		cfg := base.Clone()
		for i := range cfg.Spawn.Initial {
			p := &cfg.Spawn.Initial[i].Position
			p[0] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
			p[2] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		}

		sum, err := runHeadless(ctx, cfg, mc.Duration, quiet)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			TrialID: trial,
			Summary: sum,
			Stable:  sum.Fallen == 0 && math.Abs(sum.SleepRatio-1) < 1e-9,
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "done", trial+1, "of", mc.NumTrials)
		}
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
