package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sandbox/internal/automation"
	"github.com/san-kum/sandbox/internal/config"
	"github.com/san-kum/sandbox/internal/gui"
	"github.com/san-kum/sandbox/internal/metrics"
	"github.com/san-kum/sandbox/internal/sandbox"
	"github.com/san-kum/sandbox/internal/storage"
	"github.com/san-kum/sandbox/internal/tui"
	"github.com/san-kum/sandbox/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	logLevel   string
	logFile    string

	duration  float64
	frameRate int
	realtime  bool
	scenario  string
	watch     bool
	save      bool
	live      bool
	stride    uint64

	object  int
	field   string
	outFile string

	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	trials       int
	perturbation float64
	benchFrames  int
)

var fieldNames = []string{"x", "y", "z", "qx", "qy", "qz", "qw"}

func main() {
	rootCmd := &cobra.Command{
		Use:           "sandbox",
		Short:         "interactive rigid-body physics sandbox",
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".sandbox", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "default", "preset configuration")
	pf.Int64Var(&seed, "seed", 0, "random seed for the debug panel (0 uses the config or the clock)")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "run the sandbox in the terminal",
		RunE:  runTUI,
	}

	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "run the sandbox in a window",
		RunE:  runWindow,
	}

	for _, c := range []*cobra.Command{rootCmd, tuiCmd, windowCmd} {
		c.Flags().StringVar(&scenario, "scenario", "", "scenario file (yaml) played from the start")
		c.Flags().BoolVar(&watch, "watch", false, "replay the scenario whenever the file changes")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless",
		RunE:  runHeadless,
	}
	runCmd.Flags().Float64Var(&duration, "duration", 5, "simulated seconds")
	runCmd.Flags().IntVar(&frameRate, "fps", 0, "frames per second (0 uses the config)")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace frames on the wall clock")
	runCmd.Flags().StringVar(&scenario, "scenario", "", "scenario file (yaml)")
	runCmd.Flags().BoolVar(&save, "save", false, "record the run to the data directory")
	runCmd.Flags().BoolVar(&live, "live", false, "print wireframe frames while running")
	runCmd.Flags().Uint64Var(&stride, "stride", 1, "record every n-th frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one object's trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&object, "object", 0, "object index in spawn order")
	plotCmd.Flags().StringVar(&field, "field", "y", "field: x, y, z, qx, qy, qz, qw")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the selected preset as a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	})

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the preset across a parameter range",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "restitution", "restitution, friction, gravity or damping")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.9, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().Float64Var(&duration, "duration", 5, "simulated seconds per value")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "jitter initial spawns and count stable outcomes",
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.5, "maximum horizontal offset")
	monteCarloCmd.Flags().Float64Var(&duration, "duration", 5, "simulated seconds per trial")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time frames per broadphase and worker count",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchFrames, "frames", 300, "frames per configuration")

	rootCmd.AddCommand(tuiCmd, windowCmd, runCmd, listCmd, plotCmd, exportJSONCmd, presetsCmd, configCmd, sweepCmd, monteCarloCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newLogger honours --log-level and --log-file. Without a log file, quiet
// front-ends that own the terminal get a discarding logger.
func newLogger(quiet bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	closer := func() {}
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		out, closer = f, func() { f.Close() }
	case quiet:
		out = io.Discard
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "sandbox",
	})
	return logger, closer, nil
}

// loadConfig resolves the preset, then the config file on top of it, then
// the seed flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, cfg.Validate()
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	renderer := viz.NewTerminalRenderer(76, 14, false)
	sim, err := sandbox.New(cfg, renderer, logger)
	if err != nil {
		return err
	}
	director, watcher, err := interactiveScenario(sim, logger)
	if err != nil {
		return err
	}
	return tui.Run(sim, renderer, cfg.Seed, director, watcher)
}

// interactiveScenario loads --scenario for a front-end that applies it
// between frames, plus a watcher when --watch is set.
func interactiveScenario(sim *sandbox.Simulation, logger *log.Logger) (*automation.Director, *automation.ScenarioWatcher, error) {
	if scenario == "" {
		if watch {
			return nil, nil, errors.New("--watch needs --scenario")
		}
		return nil, nil, nil
	}
	sc, err := automation.LoadScenario(scenario)
	if err != nil {
		return nil, nil, fmt.Errorf("load scenario: %w", err)
	}
	director := automation.NewDirector(sim, nil, sc)
	director.Apply(0)
	logger.Info("scenario loaded", "name", sc.Name, "spawns", len(sc.Spawns))
	if !watch {
		return director, nil, nil
	}
	watcher, err := automation.WatchScenario(scenario, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("watch scenario: %w", err)
	}
	return director, watcher, nil
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	app, renderer := gui.NewApp(cfg.Render.Width, cfg.Render.Height)
	sim, err := sandbox.New(cfg, renderer, logger)
	if err != nil {
		return err
	}
	app.Attach(sim, cfg.Seed)

	director, watcher, err := interactiveScenario(sim, logger)
	if err != nil {
		return err
	}
	if director != nil {
		app.SetDirector(director)
	}
	if watcher != nil {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			err := watcher.Run(ctx, func(sc *automation.Scenario) {
				director.Load(sc, sim.Stats().Elapsed)
			})
			if err != nil {
				sim.Logger().Warn("scenario watch stopped", "err", err)
			}
		}()
	}
	return app.Run()
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if frameRate > 0 {
		cfg.Render.FPS = frameRate
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	var renderer sandbox.Renderer = sandbox.NopRenderer{}
	var liveView *tui.LiveRenderer
	if live {
		liveView = tui.NewLiveRenderer(os.Stdout, cfg.Preset, 76, 20, 30)
		renderer = liveView
		liveView.Start()
		defer liveView.Stop()
	}

	opts := []sandbox.Option{}
	manual := sandbox.NewManualSource()
	if !realtime {
		opts = append(opts, sandbox.WithTimeSource(manual))
	}

	sim, err := sandbox.New(cfg, renderer, logger, opts...)
	if err != nil {
		return err
	}
	if liveView != nil {
		sim.Resize(76*2, 20*4, 1)
	}

	energy := metrics.NewEnergy(-cfg.World.Gravity[1], 0)
	speed := metrics.NewMaxSpeed()
	sleep := metrics.NewSleepRatio()
	sim.AddMetric(energy)
	sim.AddMetric(speed)
	sim.AddMetric(sleep)

	var rec *storage.Recorder
	if save {
		rec = storage.NewRecorder(stride)
		sim.AddObserver(rec)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var sched sandbox.Scheduler
	if realtime {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(duration*float64(time.Second)))
		defer cancel()
		ticker := sandbox.NewTickerScheduler(cfg.Render.FPS)
		defer ticker.Stop()
		sched = ticker
	} else {
		sched = sandbox.NewSimulatedScheduler(manual, cfg.Render.FPS, duration)
	}

	var director *automation.Director
	if scenario != "" {
		sc, err := automation.LoadScenario(scenario)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		director = automation.NewDirector(sim, sched, sc)
		director.Apply(0)
		sched = director
		logger.Info("scenario loaded", "name", sc.Name, "spawns", len(sc.Spawns))
	}

	start := time.Now()
	err = sandbox.NewFrameLoop(sim).Run(ctx, sched)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}

	st := sim.Stats()
	fmt.Printf("preset:    %s\n", cfg.Preset)
	fmt.Printf("frames:    %d in %.2fs wall\n", st.Frame, time.Since(start).Seconds())
	fmt.Printf("time:      %.2fs\n", st.Elapsed)
	fmt.Printf("objects:   %d (%d asleep)\n", st.Objects, st.Sleeping)
	fmt.Printf("energy:    %.4f J\n", energy.Value())
	fmt.Printf("top speed: %.4f m/s\n", speed.Peak())
	if director != nil && (director.Pending() > 0 || director.Failed() > 0) {
		fmt.Printf("scenario:  %d pending, %d rejected\n", director.Pending(), director.Failed())
	}

	if rec == nil {
		return nil
	}
	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(storage.RunInfo{
		Preset:        cfg.Preset,
		Seed:          cfg.Seed,
		FixedTimestep: cfg.World.FixedTimestep,
		Duration:      st.Elapsed,
		Metrics: map[string]float64{
			"energy":      energy.Value(),
			"peak_speed":  speed.Peak(),
			"sleep_ratio": sleep.Value(),
		},
	}, rec)
	if err != nil {
		return err
	}
	fmt.Printf("saved:     %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tFRAMES\tOBJECTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Frames,
			len(run.Objects),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}
	if object < 0 || object >= len(meta.Objects) {
		return fmt.Errorf("object %d out of range (run has %d)", object, len(meta.Objects))
	}
	fi := -1
	for i, name := range fieldNames {
		if name == field {
			fi = i
		}
	}
	if fi < 0 {
		return fmt.Errorf("unknown field %q (want one of %s)", field, strings.Join(fieldNames, ", "))
	}

	data := make([]float64, 0, len(states))
	for _, v := range storage.Column(states, object, fi) {
		if !math.IsNaN(v) {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		return fmt.Errorf("object %d has no samples", object)
	}

	o := meta.Objects[object]
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("object: %d (%s %v)\n", o.ID, o.Shape, o.Dims)
	fmt.Printf("samples: %d\n\n", len(data))

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s %d: %s vs frame", o.Shape, o.ID, field)),
	)
	fmt.Println(graph)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := storage.ExportJSONFile(outFile, meta, states, times); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", runID, outFile)
		return nil
	}
	return storage.ExportJSON(os.Stdout, meta, states, times)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRAVITY\tFRICTION\tRESTITUTION\tOBJECTS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%d\n",
			name,
			p.World.Gravity[1],
			p.Material.Friction,
			p.Material.Restitution,
			len(p.Spawn.Initial),
		)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "sandbox.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s", preset)
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s (preset %s)\n", path, preset)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:     cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		Steps:    sweepSteps,
		Duration: duration,
	}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY\tPEAK SPEED\tASLEEP\tFALLEN\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.0f%%\t%d\n", r.Value, r.Energy, r.PeakSpeed, r.SleepRatio*100, r.Fallen)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Duration:     duration,
		Seed:         cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("trials:   %d\n", len(results))
	fmt.Printf("stable:   %d\n", stable)
	fmt.Printf("unstable: %d\n", unstable)
	return nil
}

// runBench times the selected preset once per broadphase and worker count.
func runBench(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	quiet := log.New(io.Discard)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BROADPHASE\tWORKERS\tFRAMES\tMS/FRAME\tASLEEP")
	for _, bp := range []string{"naive", "sap"} {
		for _, workers := range []int{1, 4} {
			cfg := base.Clone()
			cfg.World.Broadphase = bp
			cfg.World.Workers = workers

			src := sandbox.NewManualSource()
			sim, err := sandbox.New(cfg, nil, quiet, sandbox.WithTimeSource(src))
			if err != nil {
				return err
			}
			loop := sandbox.NewFrameLoop(sim)
			period := 1 / float64(cfg.Render.FPS)

			start := time.Now()
			for i := 0; i < benchFrames; i++ {
				src.Advance(period)
				if err := loop.RunFrame(); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)

			st := sim.Stats()
			fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\t%d/%d\n", bp, workers, st.Frame,
				float64(elapsed.Microseconds())/1000/float64(max(benchFrames, 1)), st.Sleeping, st.Objects)
		}
	}
	return w.Flush()
}
