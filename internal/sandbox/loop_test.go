package sandbox

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/sandbox/internal/physics"
)

func assertSynced(t *testing.T, sim *Simulation) {
	t.Helper()
	for p := range sim.Registry().All() {
		if p.Mesh.Position != p.Body.Position {
			t.Fatalf("body %d: mesh position %v != body %v", p.Body.ID, p.Mesh.Position, p.Body.Position)
		}
		if p.Mesh.Quaternion != p.Body.Quaternion {
			t.Fatalf("body %d: mesh orientation %v != body %v", p.Body.ID, p.Mesh.Quaternion, p.Body.Quaternion)
		}
	}
}

func TestRunFrameCopiesTransforms(t *testing.T) {
	sim, src := newTestSim(t, nil, nil)
	f := sim.Factory()
	f.CreateSphere(0.3, mgl64.Vec3{0, 3, 0})
	f.CreateBox(0.5, 0.5, 0.5, mgl64.Vec3{0.2, 4, 0.1})
	f.CreateBox(0.8, 0.3, 0.4, mgl64.Vec3{-0.3, 5, 0})
	loop := NewFrameLoop(sim)

	for i := 0; i < 240; i++ {
		src.Advance(frameDt)
		if err := loop.RunFrame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		assertSynced(t, sim)
	}
	if sim.Frame() != 240 {
		t.Errorf("frame count = %d, want 240", sim.Frame())
	}
}

func TestRunFrameZeroDelta(t *testing.T) {
	sim, _ := newTestSim(t, nil, nil)
	pair, _ := sim.Factory().CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
	loop := NewFrameLoop(sim)

	for i := 0; i < 5; i++ {
		if err := loop.RunFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if pair.Body.Position != (mgl64.Vec3{0, 3, 0}) || pair.Mesh.Position != (mgl64.Vec3{0, 3, 0}) {
		t.Errorf("zero elapsed time moved the sphere: body %v mesh %v", pair.Body.Position, pair.Mesh.Position)
	}
	if sim.World().StepNumber() != 0 {
		t.Errorf("world stepped %d times", sim.World().StepNumber())
	}
}

func TestRunFrameCapsSubSteps(t *testing.T) {
	sim, src := newTestSim(t, nil, nil)
	loop := NewFrameLoop(sim)

	src.Advance(2)
	if err := loop.RunFrame(); err != nil {
		t.Fatal(err)
	}
	if got := sim.World().StepNumber(); got != 3 {
		t.Errorf("a 2s stall ran %d steps, want 3", got)
	}
}

func TestRunFrameAfterStallHoldsStill(t *testing.T) {
	for _, stall := range []float64{1, 2, 0.75, 10.0 / 3.0} {
		sim, src := newTestSim(t, nil, nil)
		pair, _ := sim.Factory().CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
		loop := NewFrameLoop(sim)

		src.Advance(stall)
		if err := loop.RunFrame(); err != nil {
			t.Fatal(err)
		}
		steps, pos := sim.World().StepNumber(), pair.Mesh.Position

		for i := 0; i < 3; i++ {
			if err := loop.RunFrame(); err != nil {
				t.Fatal(err)
			}
		}
		if got := sim.World().StepNumber(); got != steps {
			t.Errorf("stall %g: frames without elapsed time ran %d extra steps", stall, got-steps)
		}
		if pair.Mesh.Position != pos {
			t.Errorf("stall %g: sphere moved from %v to %v", stall, pos, pair.Mesh.Position)
		}
	}
}

func TestRunFrameRenderError(t *testing.T) {
	boom := errors.New("gpu lost")
	sim, src := newTestSim(t, &recordingRenderer{err: boom}, nil)
	loop := NewFrameLoop(sim)

	src.Advance(frameDt)
	err := loop.RunFrame()
	if !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Phase != "render" || fe.Frame != 0 {
		t.Errorf("unexpected frame error %#v", fe)
	}
	if sim.Frame() != 0 {
		t.Error("failed frame should not be counted")
	}
}

func TestRunFrameStepError(t *testing.T) {
	sim, src := newTestSim(t, nil, nil)
	loop := NewFrameLoop(sim)
	loop.FixedTimestep = 0

	src.Advance(frameDt)
	err := loop.RunFrame()
	if !errors.Is(err, physics.ErrInvalidTimestep) {
		t.Fatalf("expected ErrInvalidTimestep, got %v", err)
	}
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Phase != "step" {
		t.Errorf("unexpected frame error %#v", fe)
	}
}

type countingMetric struct {
	observed int
	lastLen  int
}

func (m *countingMetric) Name() string { return "count" }
func (m *countingMetric) Observe(bodies []*physics.Body, _ float64) {
	m.observed++
	m.lastLen = len(bodies)
}
func (m *countingMetric) Value() float64 { return float64(m.observed) }
func (m *countingMetric) Reset()         { m.observed = 0 }

type frameObserver struct {
	frames []uint64
	synced bool
}

func (o *frameObserver) OnFrame(frame uint64, _ float64, r *Registry) {
	o.frames = append(o.frames, frame)
	o.synced = true
	for p := range r.All() {
		if p.Mesh.Position != p.Body.Position {
			o.synced = false
		}
	}
}

func TestRunFrameNotifiesMetricsAndObservers(t *testing.T) {
	sim, src := newTestSim(t, nil, nil)
	sim.Factory().CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
	m := &countingMetric{}
	o := &frameObserver{}
	sim.AddMetric(m)
	sim.AddObserver(o)
	loop := NewFrameLoop(sim)

	for i := 0; i < 3; i++ {
		src.Advance(frameDt)
		loop.RunFrame()
	}
	if m.observed != 3 || m.lastLen != 1 {
		t.Errorf("metric observed %d frames with %d bodies", m.observed, m.lastLen)
	}
	if len(o.frames) != 3 || o.frames[2] != 2 {
		t.Errorf("observer frames = %v", o.frames)
	}
	if !o.synced {
		t.Error("observer ran before the copy phase")
	}
	if sim.Stats().Metrics["count"] != 3 {
		t.Errorf("stats metrics = %v", sim.Stats().Metrics)
	}
}

func TestRunWithSimulatedScheduler(t *testing.T) {
	r := &recordingRenderer{}
	sim, src := newTestSim(t, r, nil)
	loop := NewFrameLoop(sim)

	sched := NewSimulatedScheduler(src, 60, 1)
	if err := loop.Run(context.Background(), sched); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.renders != 61 {
		t.Errorf("rendered %d frames, want 61", r.renders)
	}
	if got := sim.World().StepNumber(); got != 60 {
		t.Errorf("world stepped %d times, want 60", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	sim, _ := newTestSim(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sched := NewTickerScheduler(60)
	defer sched.Stop()
	err := NewFrameLoop(sim).Run(ctx, sched)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunReturnsFrameError(t *testing.T) {
	boom := errors.New("boom")
	sim, src := newTestSim(t, &recordingRenderer{err: boom}, nil)
	err := NewFrameLoop(sim).Run(context.Background(), NewSimulatedScheduler(src, 60, 10))
	if !errors.Is(err, boom) {
		t.Errorf("expected frame error, got %v", err)
	}
}
