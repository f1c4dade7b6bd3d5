package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/nucleon/internal/analysis"
	"github.com/san-kum/nucleon/internal/automation"
	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/experiment"
	"github.com/san-kum/nucleon/internal/export"
	"github.com/san-kum/nucleon/internal/gui"
	"github.com/san-kum/nucleon/internal/optim"
	"github.com/san-kum/nucleon/internal/particles"
	"github.com/san-kum/nucleon/internal/spawn"
	"github.com/san-kum/nucleon/internal/storage"
	"github.com/san-kum/nucleon/internal/viz"
)

var (
	dataDir string
	verbose bool
	logger  = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	// world
	configFile string
	preset     string
	numParts   int
	numTypes   int
	seed       int64
	ticks      int
	dt         float64
	speed      float64
	workers    int
	spawner    string
	randomize  bool
	metricSel  []string

	// run / ensemble
	runName   string
	noSave    bool
	runs      int
	seedStart int64

	// sweep / monte carlo
	ruleA, ruleB   int
	sweepMin       float64
	sweepMax       float64
	sweepSteps     int
	trials         int
	perturbation   float64
	speedLimit     float64
	scenarioSaveAs string
	sensEps        float64
	sensEvery      int
	optMetric      string
	optValues      int
	optMaximize    bool

	// analysis
	xMetric string
	yMetric string

	// output
	gifOut     string
	recordOut  string
	svgOut     string
	gifEvery   int
	gifWidth   int
	svgScale   float64
	svgMetric  string
	plotMetric string
	benchSizes []int
	benchTicks int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "nucleon",
		Short:        "particle life simulator",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
			log.SetDefault(logger)
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nucleon", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save its metrics",
		RunE:  runSimulation,
	}
	worldFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset or \"run\")")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write results to the data directory")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run seeds in parallel and summarize final metrics",
		RunE:  runEnsemble,
	}
	worldFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of runs")
	ensembleCmd.Flags().Int64Var(&seedStart, "seed-start", 1, "seed of the first run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one attraction rule across a range",
		RunE:  runSweep,
	}
	worldFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&ruleA, "a", 0, "acting type")
	sweepCmd.Flags().IntVar(&ruleB, "b", 1, "target type")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", -1, "first rule value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last rule value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb rules randomly and count stable outcomes",
		RunE:  runMonteCarlo,
	}
	worldFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 0.2, "max change per rule")
	monteCarloCmd.Flags().Float64Var(&speedLimit, "max-speed", 0, "final max speed above which a trial is unstable")

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "measure how fast a tiny rule change makes worlds diverge",
		RunE:  runSensitivity,
	}
	worldFlags(sensitivityCmd)
	sensitivityCmd.Flags().IntVar(&ruleA, "a", 0, "acting type")
	sensitivityCmd.Flags().IntVar(&ruleB, "b", 1, "target type")
	sensitivityCmd.Flags().Float64Var(&sensEps, "eps", 1e-3, "rule shift")
	sensitivityCmd.Flags().IntVar(&sensEvery, "every", 10, "ticks between samples")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [a->b ...]",
		Short: "grid search rule values against a metric",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runOptimize,
	}
	worldFlags(optimizeCmd)
	optimizeCmd.Flags().StringVar(&optMetric, "metric", "stability", "metric to score")
	optimizeCmd.Flags().IntVar(&optValues, "values", 5, "grid points per rule in [-1, 1]")
	optimizeCmd.Flags().BoolVar(&optMaximize, "maximize", false, "prefer high scores")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum and phase portrait of saved metric series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&xMetric, "x", "kinetic_energy", "metric for the spectrum and x-axis")
	analyzeCmd.Flags().StringVar(&yMetric, "y", "local_density", "metric for the y-axis")

	scriptCmd := &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	scriptCmd.Flags().StringVar(&scenarioSaveAs, "save", "", "save the result under this name")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		RunE:  runLive,
	}
	worldFlags(liveCmd)
	liveCmd.Flags().StringVarP(&gifOut, "gif", "o", "nucleon.gif", "where G saves recordings")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "interactive window",
		RunE:  runGUI,
	}
	worldFlags(guiCmd)

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "render a headless run to an animated GIF",
		RunE:  runRecord,
	}
	worldFlags(recordCmd)
	recordCmd.Flags().StringVarP(&recordOut, "out", "o", "nucleon.gif", "output file")
	recordCmd.Flags().IntVar(&gifEvery, "every", 2, "ticks per frame")
	recordCmd.Flags().IntVar(&gifWidth, "width", 640, "frame width in pixels")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotMetric, "metric", "", "plot only this metric")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export metric series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final particles, or a metric series, to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (stdout if empty)")
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 0.5, "pixels per world unit")
	exportSVGCmd.Flags().StringVar(&svgMetric, "metric", "", "plot this metric instead of particles")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick throughput",
		RunE:  benchUpdate,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{1000, 5000, 20000}, "particle counts")
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 100, "ticks per size")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file (.yaml or .toml)",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	worldFlags(initCmd)

	rootCmd.AddCommand(runCmd, ensembleCmd, sweepCmd, monteCarloCmd, sensitivityCmd, optimizeCmd, scriptCmd,
		liveCmd, guiCmd, recordCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		benchCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func worldFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (.yaml or .toml)")
	f.StringVar(&preset, "preset", "", "start from a preset")
	f.IntVarP(&numParts, "particles", "n", config.DefaultParticles, "particle count")
	f.IntVarP(&numTypes, "types", "t", config.DefaultTypes, "particle types (1-10)")
	f.Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	f.IntVar(&ticks, "ticks", config.DefaultTicks, "ticks to simulate")
	f.Float64Var(&dt, "dt", config.DefaultDt, "base timestep")
	f.Float64Var(&speed, "speed", config.DefaultSpeed, "timestep multiplier")
	f.IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	f.StringVar(&spawner, "spawn", "uniform", fmt.Sprintf("initial placement %v", spawn.Names()))
	f.BoolVar(&randomize, "randomize", false, "draw random rules")
	f.StringSliceVar(&metricSel, "metrics", nil, "metrics to record (default set if empty)")
}

// loadConfig layers preset, config file and explicitly set flags, in that
// order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = numParts
	}
	if flags.Changed("types") {
		cfg.Types = numTypes
		if len(cfg.Rules) != numTypes {
			// rules no longer fit
			cfg.Rules = nil
			cfg.Randomize = true
		}
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("spawn") {
		cfg.Spawn = spawner
	}
	if flags.Changed("randomize") {
		cfg.Randomize = randomize
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func experimentOptions() []experiment.Option {
	opts := []experiment.Option{experiment.WithLogger(logger)}
	if len(metricSel) > 0 {
		opts = append(opts, experiment.WithMetricNames(metricSel...))
	}
	return opts
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	st.SetLogger(logger)
	return st, st.Init()
}

func printMetrics(m map[string]float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range sortedKeys(m) {
		fmt.Fprintf(w, "%s\t%.6f\n", name, m[name])
	}
	w.Flush()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experimentOptions()...)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("running", "particles", cfg.Particles, "types", cfg.Types, "ticks", cfg.Ticks, "seed", exp.Config().Seed)
	result, err := exp.Run(ctx)
	if err != nil {
		logger.Error("run stopped early", "tick", result.Ticks, "err", err)
	}

	fmt.Printf("completed %d ticks in %v (%.0f ticks/s)\n", result.Ticks, result.Elapsed.Round(time.Millisecond),
		float64(result.Ticks)/max(result.Elapsed.Seconds(), 1e-9))
	fmt.Printf("seed: %d\n\n", result.Seed)
	printMetrics(result.Metrics)

	if !noSave {
		st, serr := openStore()
		if serr != nil {
			return serr
		}
		name := runName
		if name == "" {
			name = preset
		}
		if name == "" {
			name = "run"
		}
		runID, serr := st.Save(name, exp.Config(), result)
		if serr != nil {
			return serr
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return err
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := experiment.RunEnsemble(ctx, cfg, runs, seedStart, experimentOptions()...)
	if err != nil {
		return err
	}
	logger.Info("ensemble done", "runs", runs, "elapsed", time.Since(start).Round(time.Millisecond))

	stats := experiment.Summarize(results)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTD\tMIN\tMAX")
	for _, name := range experiment.MetricNames(results) {
		s := stats[name]
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.6f\n", name, s.Mean, s.Std, s.Min, s.Max)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Config: cfg, A: ruleA, B: ruleB, Min: sweepMin, Max: sweepMax, NumSteps: sweepSteps,
	}, logger)
	if err != nil {
		return err
	}

	var names []string
	if len(results) > 0 {
		names = sortedKeys(results[0].Metrics)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RULE %d->%d", ruleA, ruleB)
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", n)
	}
	fmt.Fprintln(w)
	for _, r := range results {
		fmt.Fprintf(w, "%.4f", r.Value)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.5f", r.Metrics[n])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Config: cfg, Perturbation: perturbation, NumTrials: trials, MaxSpeed: speedLimit, Seed: cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("stable: %d  unstable: %d\n", stable, unstable)
	for _, r := range results {
		if !r.Stable {
			fmt.Printf("  trial %d: %s\n", r.TrialID, r.Failure)
		}
	}
	return nil
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	d, err := analysis.RuleSensitivity(ctx, cfg, ruleA, ruleB, sensEps, cfg.Ticks, sensEvery)
	if err != nil {
		return err
	}

	fmt.Println(asciigraph.Plot(d.Distances,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("mean separation, rule %d->%d shifted by %g", ruleA, ruleB, sensEps)),
	))
	fmt.Printf("\nexponent: %.4f per unit time\n", d.Exponent)
	if d.Exponent > 0 {
		fmt.Println("small rule changes grow: chaotic")
	}
	return nil
}

// parseRule reads "a->b".
func parseRule(s string) (optim.Rule, error) {
	var r optim.Rule
	if _, err := fmt.Sscanf(s, "%d->%d", &r.A, &r.B); err != nil {
		return r, fmt.Errorf("rule %q: want a->b", s)
	}
	return r, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rules := make([]optim.Rule, len(args))
	ranges := make([][]float64, len(args))
	for i, arg := range args {
		if rules[i], err = parseRule(arg); err != nil {
			return err
		}
		ranges[i] = optim.Linspace(-1, 1, optValues)
	}
	g, err := optim.NewGridSearch(rules, ranges)
	if err != nil {
		return err
	}
	g.Maximize = optMaximize

	ctx, cancel := signalContext()
	defer cancel()
	logger.Info("searching", "points", int(math.Pow(float64(optValues), float64(len(rules)))), "metric", optMetric)
	candidates, err := g.Search(ctx, cfg, optMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, r := range rules {
		fmt.Fprintf(w, "%s\t", r)
	}
	fmt.Fprintln(w, strings.ToUpper(optMetric))
	for i, c := range candidates {
		if i == 10 {
			break
		}
		for _, r := range rules {
			fmt.Fprintf(w, "%.3f\t", c.Values[r])
		}
		fmt.Fprintf(w, "%.6f\n", c.Score)
	}
	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	xs, ok := series.Values[xMetric]
	if !ok {
		return fmt.Errorf("run has no metric %q (have %v)", xMetric, series.Names)
	}

	interval := 0.0
	if n := len(series.Times); n > 1 {
		interval = (series.Times[n-1] - series.Times[0]) / float64(n-1)
	}
	if p, ok := analysis.DominantPeriod(xs, interval); ok {
		fmt.Printf("%s dominant period: %.3f time units\n", xMetric, p)
	} else {
		fmt.Printf("%s has no dominant period\n", xMetric)
	}
	if ps := analysis.PowerSpectrum(xs); len(ps) > 1 {
		fmt.Println("spectrum  " + viz.SparklineChart(ps[1:], 60))
	}

	if ys, ok := series.Values[yMetric]; ok {
		fmt.Printf("\n%s (y) vs %s (x)\n", yMetric, xMetric)
		fmt.Print(analysis.PhasePortraitToASCII(analysis.NewPhasePortrait(xMetric, xs, yMetric, ys), 70, 20))
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	result, err := automation.RunScenario(ctx, scenario, logger)
	if err != nil {
		return err
	}
	printMetrics(result.Metrics)

	if scenarioSaveAs != "" {
		st, err := openStore()
		if err != nil {
			return err
		}
		runID, err := st.Save(scenarioSaveAs, scenario.Config, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return nil
}

// buildSystem goes through the experiment so seeding, spawner and rules
// match headless runs.
func buildSystem(cmd *cobra.Command) (*particles.System, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return exp.System(), exp.Config(), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sys, cfg, err := buildSystem(cmd)
	if err != nil {
		return err
	}
	return viz.Run(sys, cfg, gifOut)
}

func runGUI(cmd *cobra.Command, args []string) error {
	sys, cfg, err := buildSystem(cmd)
	if err != nil {
		return err
	}
	gui.Run(sys, cfg)
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	h := int(float64(gifWidth) * cfg.World.Height / cfg.World.Width)
	rec := viz.NewGIFRecorder(gifWidth, h, gifEvery)
	rec.MaxFrames = 0

	opts := append(experimentOptions(), experiment.WithObserver(rec))
	exp, err := experiment.New(cfg, opts...)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	if _, err := exp.Run(ctx); err != nil {
		logger.Warn("run stopped early, saving what was recorded", "err", err)
	}
	if err := rec.Save(recordOut); err != nil {
		return err
	}
	fmt.Printf("wrote %d frames to %s\n", rec.Frames(), recordOut)
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
	fmt.Fprintln(w, "ID\tTIME\tPARTICLES\tTYPES\tTICKS\tSEED\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%.2fs\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Types,
			run.Ticks,
			run.Seed,
			run.Elapsed,
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
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Ticks) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(series.Ticks))

	for _, name := range series.Names {
		if plotMetric != "" && name != plotMetric {
			continue
		}
		graph := asciigraph.Plot(series.Values[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series.Ticks) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(append([]string{"tick", "time"}, series.Names...)); err != nil {
		return err
	}
	for i := range series.Ticks {
		row := []string{strconv.Itoa(series.Ticks[i]), strconv.FormatFloat(series.Times[i], 'f', 6, 64)}
		for _, name := range series.Names {
			row = append(row, strconv.FormatFloat(series.Values[name][i], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	var svg string
	if svgMetric != "" {
		series, err := st.LoadSeries(args[0])
		if err != nil {
			return err
		}
		values, ok := series.Values[svgMetric]
		if !ok {
			return fmt.Errorf("run has no metric %q (have %v)", svgMetric, series.Names)
		}
		svg = export.SeriesToSVG(export.SeriesPoints(series.Times, values), 800, 300, viz.TypeColor(4).Hex())
	} else {
		v, err := st.LoadParticles(args[0])
		if err != nil {
			return err
		}
		svg = export.SnapshotToSVG(v, svgScale)
	}
	if svg == "" {
		return fmt.Errorf("not enough data to draw")
	}

	if svgOut == "" {
		_, err := fmt.Println(svg)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(svgOut), 0755); err != nil {
		return err
	}
	return os.WriteFile(svgOut, []byte(svg), 0644)
}

func benchUpdate(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tTICKS\tTIME\tMS/TICK\tTICKS/SEC")

	cfg := config.DefaultConfig()
	for _, n := range benchSizes {
		sys, err := particles.New(n, cfg.Types, float32(cfg.World.Width), float32(cfg.World.Height),
			particles.WithSeed(42), particles.WithWorkers(workers))
		if err != nil {
			return err
		}
		m, err := cfg.Matrix()
		if err != nil {
			return err
		}
		sys.SetMatrix(m)

		start := time.Now()
		for i := 0; i < benchTicks; i++ {
			sys.Update(float32(cfg.Dt))
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%.3f\t%.0f\n", n, benchTicks, elapsed.Round(time.Millisecond),
			elapsed.Seconds()*1000/float64(benchTicks), float64(benchTicks)/elapsed.Seconds())
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tTYPES\tWORLD\tSPAWN\tRULES")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		rules := "fixed"
		if p.Randomize {
			rules = "random"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%gx%g\t%s\t%s\n",
			name, p.Particles, p.Types, p.World.Width, p.World.Height, p.Spawn, rules)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	logger.Info("wrote config", "path", args[0])
	return nil
}
