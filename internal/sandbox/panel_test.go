package sandbox

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/sandbox/internal/config"
	"github.com/san-kum/sandbox/internal/physics"
)

func TestDebugPanelSpawnsWithinBounds(t *testing.T) {
	sim, _ := newTestSim(t, nil, nil)
	panel := NewDebugPanel(sim, 1)
	spawn := sim.Config().Spawn

	for i := 0; i < 50; i++ {
		s, err := panel.CreateSphere()
		if err != nil {
			t.Fatalf("sphere %d: %v", i, err)
		}
		r := s.Body.Shape.(*physics.Sphere).Radius
		if r <= 0 || r > spawn.MaxSphereRadius {
			t.Errorf("radius %f out of range", r)
		}
		p := s.Body.Position
		if math.Abs(p[0]) > spawn.Spread/2 || math.Abs(p[2]) > spawn.Spread/2 || p[1] != spawn.Height {
			t.Errorf("spawn position %v out of range", p)
		}

		b, err := panel.AddBox()
		if err != nil {
			t.Fatalf("box %d: %v", i, err)
		}
		h := b.Body.Shape.(*physics.Box).HalfExtents
		for k := 0; k < 3; k++ {
			if h[k] <= 0 || h[k] > spawn.MaxBoxEdge/2 {
				t.Errorf("half extent %f out of range", h[k])
			}
		}
	}
	if sim.Registry().Len() != 100 {
		t.Errorf("registry has %d pairs, want 100", sim.Registry().Len())
	}
}

func TestDebugPanelDeterministic(t *testing.T) {
	a, _ := newTestSim(t, nil, nil)
	b, _ := newTestSim(t, nil, nil)
	pa, pb := NewDebugPanel(a, 42), NewDebugPanel(b, 42)

	for i := 0; i < 5; i++ {
		sa, _ := pa.CreateSphere()
		sb, _ := pb.CreateSphere()
		if sa.Body.Position != sb.Body.Position {
			t.Fatalf("same seed gave different spawns: %v vs %v", sa.Body.Position, sb.Body.Position)
		}
	}
}

func TestDebugPanelSurfacesRejections(t *testing.T) {
	sim, _ := newTestSim(t, nil, func(c *config.Config) {
		c.Spawn.Height = math.Inf(1)
	})
	panel := NewDebugPanel(sim, 1)

	if _, err := panel.CreateSphere(); !errors.Is(err, ErrInvalidSpawnPosition) {
		t.Errorf("expected ErrInvalidSpawnPosition, got %v", err)
	}
	if _, err := panel.AddBox(); !errors.Is(err, ErrInvalidSpawnPosition) {
		t.Errorf("expected ErrInvalidSpawnPosition, got %v", err)
	}
	if sim.Registry().Len() != 0 {
		t.Error("rejected panel spawn was registered")
	}
}

func TestDebugPanelActions(t *testing.T) {
	sim, _ := newTestSim(t, nil, nil)
	panel := NewDebugPanel(sim, 3)

	actions := panel.Actions()
	if len(actions) != 2 || actions[0].Key != "s" || actions[1].Key != "b" {
		t.Fatalf("unexpected actions %+v", actions)
	}
	for _, a := range actions {
		if err := a.Run(); err != nil {
			t.Errorf("%s: %v", a.Name, err)
		}
	}
	if sim.Registry().Len() != 2 {
		t.Errorf("actions registered %d pairs, want 2", sim.Registry().Len())
	}
}
