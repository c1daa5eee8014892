package sandbox

import (
	"errors"
	"io"
	"math"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/sandbox/internal/config"
	"github.com/san-kum/sandbox/internal/scene"
)

func TestNewDefaultSimulation(t *testing.T) {
	sim, err := New(config.DefaultConfig(), nil, log.New(io.Discard), WithTimeSource(NewManualSource()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if sim.Registry().Len() != 1 {
		t.Fatalf("expected the initial sphere, got %d pairs", sim.Registry().Len())
	}
	initial := sim.Registry().At(0)
	if initial.Body.Position != (mgl64.Vec3{0, 3, 0}) {
		t.Errorf("initial sphere at %v", initial.Body.Position)
	}

	floor := sim.Floor()
	if !floor.Body.IsStatic() {
		t.Error("floor should be static")
	}
	if sim.Registry().Contains(floor.Body) {
		t.Error("floor should not be registered")
	}
	if !sim.World().HasBody(floor.Body) || !sim.Scene().Contains(floor.Mesh) {
		t.Error("floor missing from world or scene")
	}
	top := floor.Body.AABB().Max[1]
	if math.Abs(top-0.15) > 1e-9 {
		t.Errorf("floor top at y = %f, want 0.15", top)
	}

	if sim.World().Broadphase().Name() != "sap" || !sim.World().AllowSleep() {
		t.Error("world not configured from defaults")
	}
	cm := sim.World().DefaultContactMaterial()
	if cm.Friction != 0.3 || cm.Restitution != 0.7 {
		t.Errorf("default contact material %+v", cm)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.World.FixedTimestep = -1
	if _, err := New(cfg, nil, log.New(io.Discard)); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewNilConfigUsesDefaults(t *testing.T) {
	sim, err := New(nil, nil, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if sim.Config().World.MaxSubSteps != config.DefaultMaxSubSteps {
		t.Error("nil config should fall back to defaults")
	}
}

func TestResize(t *testing.T) {
	r := &recordingRenderer{}
	sim, _ := newTestSim(t, r, nil)

	tests := []struct {
		w, h      int
		dpr       float64
		wantRatio float64
	}{
		{800, 600, 1, 1},
		{1920, 1080, 3, 2},
		{400, 800, 1.5, 1.5},
	}
	for _, tt := range tests {
		sim.Resize(tt.w, tt.h, tt.dpr)
		if r.width != tt.w || r.height != tt.h {
			t.Errorf("renderer size %dx%d, want %dx%d", r.width, r.height, tt.w, tt.h)
		}
		if r.ratio != tt.wantRatio {
			t.Errorf("pixel ratio %f, want %f", r.ratio, tt.wantRatio)
		}
		if want := float64(tt.w) / float64(tt.h); sim.Camera().Aspect != want {
			t.Errorf("aspect %f, want %f", sim.Camera().Aspect, want)
		}
	}

	sim.Resize(0, 100, 1)
	if r.height != 800 {
		t.Error("degenerate resize should be ignored")
	}
}

func TestStatsCountsSleepers(t *testing.T) {
	sim, src := newTestSim(t, nil, nil)
	sim.Factory().CreateSphere(0.5, mgl64.Vec3{0, 0.7, 0})
	loop := NewFrameLoop(sim)

	for i := 0; i < 300; i++ {
		src.Advance(frameDt)
		loop.RunFrame()
	}
	st := sim.Stats()
	if st.Objects != 1 || st.Sleeping != 1 {
		t.Errorf("stats = %+v, want one sleeping object", st)
	}
	if st.Frame != 300 {
		t.Errorf("frame = %d, want 300", st.Frame)
	}
}

func TestSphereSettlesEndToEnd(t *testing.T) {
	sim, src := newTestSim(t, nil, nil)
	pair, err := sim.Factory().CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
	if err != nil {
		t.Fatal(err)
	}
	loop := NewFrameLoop(sim)

	surface := sim.Floor().Body.AABB().Max[1]
	for i := 0; i < 300; i++ {
		src.Advance(frameDt)
		if err := loop.RunFrame(); err != nil {
			t.Fatal(err)
		}
		if pair.Mesh.Position[1] < surface+0.5-0.05 {
			t.Fatalf("sphere sank into the floor at frame %d: y = %f", i, pair.Mesh.Position[1])
		}
	}
	if math.Abs(pair.Mesh.Position[1]-(surface+0.5)) > 0.03 {
		t.Errorf("sphere rests at y = %f, want %f", pair.Mesh.Position[1], surface+0.5)
	}
}

func TestConcurrentSpawnsNeverObservedPartially(t *testing.T) {
	sim, src := newTestSim(t, nil, nil)
	loop := NewFrameLoop(sim)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				x := float64(g) - 1.5
				if i%2 == 0 {
					sim.Factory().CreateSphere(0.2, mgl64.Vec3{x, 3 + float64(i)*0.5, 0})
				} else {
					sim.Factory().CreateBox(0.3, 0.3, 0.3, mgl64.Vec3{x, 3 + float64(i)*0.5, 0})
				}
			}
		}(g)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	frames := 0
	for running := true; running; frames++ {
		select {
		case <-done:
			running = false
		default:
		}
		src.Advance(frameDt)
		if err := loop.RunFrame(); err != nil {
			t.Fatal(err)
		}
		sim.UpdateCamera(func(o *scene.OrbitControls) { o.RotateLeft(0.001) })
	}

	if sim.Registry().Len() != 100 {
		t.Fatalf("registered %d pairs, want 100", sim.Registry().Len())
	}
	for p := range sim.Registry().All() {
		if p.Mesh == nil || p.Body == nil || !sim.World().HasBody(p.Body) || !sim.Scene().Contains(p.Mesh) {
			t.Fatal("found a partially attached pair")
		}
	}
	assertSynced(t, sim)
}
