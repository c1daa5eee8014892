package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/sandbox/internal/automation"
	"github.com/san-kum/sandbox/internal/metrics"
	"github.com/san-kum/sandbox/internal/sandbox"
	"github.com/san-kum/sandbox/internal/scene"
)

var (
	ColText    = rl.NewColor(220, 220, 220, 255)
	ColTextDim = rl.NewColor(120, 120, 120, 255)
	ColAccent  = rl.NewColor(0, 200, 255, 255)
)

const (
	orbitStep = 0.05
	zoomStep  = 0.9
)

// App hosts a Simulation in a raylib window.
type App struct {
	sim      *sandbox.Simulation
	loop     *sandbox.FrameLoop
	renderer *WindowRenderer
	energy   *metrics.Energy
	panel    *sandbox.DebugPanel
	director *automation.Director
	paused   bool
	status   string
}

// NewApp builds the window renderer sim must draw with. Pass the returned
// renderer to sandbox.New, then call Attach.
func NewApp(width, height int) (*App, *WindowRenderer) {
	r := NewWindowRenderer(width, height)
	return &App{renderer: r}, r
}

func (a *App) Attach(sim *sandbox.Simulation, seed int64) {
	a.sim = sim
	a.loop = sandbox.NewFrameLoop(sim)
	a.panel = sandbox.NewDebugPanel(sim, seed)
	cfg := sim.Config()
	a.energy = metrics.NewEnergy(-cfg.World.Gravity[1], 0)
	sim.AddMetric(a.energy)
	a.renderer.Overlay = a.drawHUD
}

// SetDirector applies d's scenario spawns after every frame.
func (a *App) SetDirector(d *automation.Director) { a.director = d }

// Run opens the window and drives one frame per display refresh until the
// window closes or a frame fails.
func (a *App) Run() error {
	cfg := a.sim.Config()
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Render.Width), int32(cfg.Render.Height), "sandbox")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Render.FPS))
	rl.SetExitKey(0)

	a.sim.Resize(rl.GetScreenWidth(), rl.GetScreenHeight(), float64(rl.GetWindowScaleDPI().X))

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return nil
		}
		if rl.IsWindowResized() {
			a.sim.Resize(rl.GetScreenWidth(), rl.GetScreenHeight(), float64(rl.GetWindowScaleDPI().X))
		}
		a.handleInput()

		if a.paused {
			if err := a.renderer.Render(a.sim.Scene(), a.sim.Camera()); err != nil {
				return err
			}
			continue
		}
		if err := a.loop.RunFrame(); err != nil {
			return err
		}
		if a.director != nil {
			a.director.Apply(a.sim.Stats().Elapsed)
		}
	}
	return nil
}

func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeyS) {
		a.report("createSphere", func() error { _, err := a.panel.CreateSphere(); return err })
	}
	if rl.IsKeyPressed(rl.KeyB) {
		a.report("createBox", func() error { _, err := a.panel.AddBox(); return err })
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}
	if rl.IsKeyPressed(rl.KeyW) {
		a.renderer.Wireframes = !a.renderer.Wireframes
	}

	var left, up, dolly float64
	if rl.IsKeyDown(rl.KeyLeft) {
		left += orbitStep
	}
	if rl.IsKeyDown(rl.KeyRight) {
		left -= orbitStep
	}
	if rl.IsKeyDown(rl.KeyUp) {
		up += orbitStep
	}
	if rl.IsKeyDown(rl.KeyDown) {
		up -= orbitStep
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		left += float64(d.X) * 0.005
		up += float64(d.Y) * 0.005
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		dolly = zoomStep
		if wheel < 0 {
			dolly = 1 / zoomStep
		}
	}
	if left != 0 || up != 0 || dolly != 0 {
		a.sim.UpdateCamera(func(o *scene.OrbitControls) {
			o.RotateLeft(left)
			o.RotateUp(up)
			if dolly != 0 {
				o.Dolly(dolly)
			}
		})
	}
}

func (a *App) report(name string, run func() error) {
	if err := run(); err != nil {
		a.status = err.Error()
		return
	}
	a.status = name
}

// drawHUD runs inside RunFrame with the simulation locked, so it reads
// the registry directly instead of calling Stats.
func (a *App) drawHUD() {
	reg := a.sim.Registry()
	asleep := 0
	for p := range reg.All() {
		if p.Body.IsSleeping() {
			asleep++
		}
	}

	rl.DrawText("sandbox", 20, 20, 24, ColText)
	rl.DrawText(fmt.Sprintf(":: %s", a.sim.Config().Preset), 130, 24, 18, ColTextDim)
	rl.DrawText(fmt.Sprintf("objects %d  asleep %d  energy %.2fJ", reg.Len(), asleep, a.energy.Value()), 20, 56, 16, ColAccent)
	if a.paused {
		rl.DrawText("PAUSED", 20, 80, 16, ColTextDim)
	}
	if a.status != "" {
		rl.DrawText(a.status, 20, 104, 14, ColTextDim)
	}

	h := int32(rl.GetScreenHeight())
	rl.DrawText("[S] SPHERE  [B] BOX  [ARROWS/DRAG] ORBIT  [WHEEL] ZOOM  [W] WIRES  [SPACE] PAUSE  [Q] QUIT", 20, h-30, 14, ColTextDim)
	rl.DrawFPS(int32(rl.GetScreenWidth())-100, 20)
}
