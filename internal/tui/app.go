package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sandbox/internal/automation"
	"github.com/san-kum/sandbox/internal/metrics"
	"github.com/san-kum/sandbox/internal/sandbox"
	"github.com/san-kum/sandbox/internal/scene"
	"github.com/san-kum/sandbox/internal/viz"
)

const (
	hudLines     = 10
	orbitStep    = 0.08
	zoomStep     = 0.9
	minCanvasCol = 20
	minCanvasRow = 6
)

type tickMsg time.Time

type scenarioMsg struct {
	name   string
	spawns int
}

type model struct {
	sim      *sandbox.Simulation
	loop     *sandbox.FrameLoop
	renderer *viz.TerminalRenderer
	energy   *metrics.Energy
	actions  []sandbox.Action
	director *automation.Director

	theme  viz.Theme
	styles viz.Styles

	width, height int
	period        time.Duration
	paused        bool
	status        string
	err           error
	fps           float64
	lastFrame     time.Time
}

// NewApp wires a bubbletea model around sim. The renderer must be the one
// sim draws with.
func NewApp(sim *sandbox.Simulation, renderer *viz.TerminalRenderer, seed int64) *model {
	cfg := sim.Config()
	energy := metrics.NewEnergy(-cfg.World.Gravity[1], 0)
	sim.AddMetric(energy)

	theme := viz.ThemeStudio
	return &model{
		sim:      sim,
		loop:     sandbox.NewFrameLoop(sim),
		renderer: renderer,
		energy:   energy,
		actions:  sandbox.NewDebugPanel(sim, seed).Actions(),
		theme:    theme,
		styles:   viz.NewStyles(theme),
		width:    80,
		height:   24,
		period:   time.Second / time.Duration(cfg.Render.FPS),
	}
}

func (m model) Init() tea.Cmd { return m.tick() }

func (m model) tick() tea.Cmd {
	return tea.Tick(m.period, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols, rows := m.canvasSize()
		m.sim.Resize(cols*2, rows*4, 1)
		return m, nil
	case tickMsg:
		if m.err != nil {
			return m, nil
		}
		if !m.paused {
			now := time.Time(msg)
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1 / dt
				}
			}
			m.lastFrame = now
			if err := m.loop.RunFrame(); err != nil {
				m.err = err
				return m, nil
			}
			if m.director != nil {
				m.director.Apply(m.sim.Stats().Elapsed)
			}
		}
		return m, m.tick()
	case scenarioMsg:
		m.status = fmt.Sprintf("scenario %s reloaded (%d spawns)", msg.name, msg.spawns)
		return m, nil
	}
	return m, nil
}

func (m model) canvasSize() (int, int) {
	return max(m.width-4, minCanvasCol), max(m.height-hudLines, minCanvasRow)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	key := msg.String()
	for _, a := range m.actions {
		if a.Key == key {
			if err := a.Run(); err != nil {
				m.status = err.Error()
			} else {
				m.status = a.Name
			}
			return m, nil
		}
	}

	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
		m.lastFrame = time.Time{}
	case "t":
		m.theme = viz.NextTheme(m.theme)
		m.styles = viz.NewStyles(m.theme)
	case "left", "h":
		m.sim.UpdateCamera(func(o *scene.OrbitControls) { o.RotateLeft(orbitStep) })
	case "right", "l":
		m.sim.UpdateCamera(func(o *scene.OrbitControls) { o.RotateLeft(-orbitStep) })
	case "up", "k":
		m.sim.UpdateCamera(func(o *scene.OrbitControls) { o.RotateUp(orbitStep) })
	case "down", "j":
		m.sim.UpdateCamera(func(o *scene.OrbitControls) { o.RotateUp(-orbitStep) })
	case "+", "=":
		m.sim.UpdateCamera(func(o *scene.OrbitControls) { o.Dolly(zoomStep) })
	case "-", "_":
		m.sim.UpdateCamera(func(o *scene.OrbitControls) { o.Dolly(1 / zoomStep) })
	}
	return m, nil
}

func (m model) View() string {
	st := m.sim.Stats()
	s := m.styles
	var b strings.Builder

	state, label := "running", "running"
	switch {
	case m.err != nil:
		state, label = "error", "error"
	case m.paused:
		state, label = "paused", "paused"
	}
	fmt.Fprintf(&b, " %s %s  %s  %s\n",
		s.Status[state].Render(viz.Spinner(st.Frame)),
		s.Title.Render(m.sim.Config().Preset),
		s.Status[state].Render(label),
		s.Label.Render(fmt.Sprintf("theme %s", m.theme.Name)))

	frame := m.renderer.Frame()
	cols, _ := m.canvasSize()
	for _, line := range strings.Split(strings.TrimSuffix(frame, "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}

	fmt.Fprintf(&b, " %s  %s  %s  %s  %s\n",
		s.Field("t", fmt.Sprintf("%.2fs", st.Elapsed)),
		s.Field("objects", st.Objects),
		s.Field("asleep", st.Sleeping),
		s.Field("energy", fmt.Sprintf("%.2fJ", st.Metrics[m.energy.Name()])),
		s.Field("fps", fmt.Sprintf("%.0f", m.fps)))

	if hist := m.energy.History(); len(hist) > 1 {
		graph := asciigraph.Plot(hist,
			asciigraph.Height(3),
			asciigraph.Width(max(cols-12, 10)),
			asciigraph.Precision(1))
		b.WriteString(s.Label.Render(graph) + "\n")
	}

	if m.err != nil {
		b.WriteString(" " + s.Status["error"].Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(" " + s.Hint.Render(m.status) + "\n")
	}
	b.WriteString(" " + s.Keys("s", "sphere", "b", "box", "←↑↓→", "orbit", "+/-", "zoom", "space", "pause", "t", "theme", "q", "quit") + "\n")
	return b.String()
}

// Run starts the program on the alternate screen and blocks until it quits.
// director and watcher are optional; with both set, every reload of the
// watched scenario is replayed from the moment it was saved.
func Run(sim *sandbox.Simulation, renderer *viz.TerminalRenderer, seed int64, director *automation.Director, watcher *automation.ScenarioWatcher) error {
	m := NewApp(sim, renderer, seed)
	m.director = director
	p := tea.NewProgram(m, tea.WithAltScreen())

	if director != nil && watcher != nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			err := watcher.Run(ctx, func(sc *automation.Scenario) {
				director.Load(sc, sim.Stats().Elapsed)
				p.Send(scenarioMsg{name: sc.Name, spawns: len(sc.Spawns)})
			})
			if err != nil {
				sim.Logger().Warn("scenario watch stopped", "err", err)
			}
		}()
	}

	_, err := p.Run()
	return err
}
