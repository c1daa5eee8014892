package sandbox

import (
	"context"
	"errors"
)

// FrameLoop advances a Simulation one display frame at a time.
type FrameLoop struct {
	sim *Simulation

	FixedTimestep float64
	MaxSubSteps   int
}

func NewFrameLoop(sim *Simulation) *FrameLoop {
	return &FrameLoop{
		sim:           sim,
		FixedTimestep: sim.cfg.World.FixedTimestep,
		MaxSubSteps:   sim.cfg.World.MaxSubSteps,
	}
}

// RunFrame ticks the clock, updates the controls, steps the world, copies
// every body transform onto its mesh, notifies metrics and observers, and
// renders. Spawns wait until it returns.
func (l *FrameLoop) RunFrame() error {
	s := l.sim
	s.mu.Lock()
	defer s.mu.Unlock()

	delta := s.clock.Tick()
	if s.controls != nil {
		s.controls.Update(delta)
	}

	if _, err := s.physics.Step(l.FixedTimestep, delta, l.MaxSubSteps); err != nil {
		return &FrameError{Frame: s.frame, Phase: "step", Wrapped: err}
	}

	for p := range s.registry.All() {
		p.Mesh.Position = p.Body.Position
		p.Mesh.Quaternion = p.Body.Quaternion
	}

	if len(s.metrics) > 0 {
		bodies := s.registry.Bodies()
		t := s.clock.Elapsed()
		for _, m := range s.metrics {
			m.Observe(bodies, t)
		}
	}
	for _, o := range s.observers {
		o.OnFrame(s.frame, s.clock.Elapsed(), s.registry)
	}

	if err := s.renderer.Render(s.scene, s.camera); err != nil {
		return &FrameError{Frame: s.frame, Phase: "render", Wrapped: err}
	}
	s.frame++
	return nil
}

// Run renders a frame, then waits on sched for the next one, until the
// scheduler finishes, ctx is canceled, or a frame fails. A finished
// scheduler is not an error.
func (l *FrameLoop) Run(ctx context.Context, sched Scheduler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.RunFrame(); err != nil {
			l.sim.logger.Error("frame failed", "err", err)
			return err
		}
		if err := sched.Next(ctx); err != nil {
			if errors.Is(err, ErrSchedulerDone) {
				return nil
			}
			return err
		}
	}
}
