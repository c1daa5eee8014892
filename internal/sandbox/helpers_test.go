package sandbox

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/san-kum/sandbox/internal/config"
	"github.com/san-kum/sandbox/internal/scene"
)

const frameDt = 1.0 / 60.0

type recordingRenderer struct {
	renders       int
	width, height int
	ratio         float64
	err           error
}

func (r *recordingRenderer) Render(*scene.Scene, *scene.Camera) error {
	r.renders++
	return r.err
}

func (r *recordingRenderer) SetSize(w, h int)         { r.width, r.height = w, h }
func (r *recordingRenderer) SetPixelRatio(pr float64) { r.ratio = pr }

// newTestSim builds a simulation with no initial spawns on a manual clock.
func newTestSim(t *testing.T, renderer Renderer, edit func(c *config.Config)) (*Simulation, *ManualSource) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Spawn.Initial = nil
	if edit != nil {
		edit(cfg)
	}
	src := NewManualSource()
	sim, err := New(cfg, renderer, log.New(io.Discard), WithTimeSource(src))
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	return sim, src
}
