package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/export"
	"github.com/san-kum/ising/internal/logging"
	"github.com/san-kum/ising/internal/storage"
	"github.com/san-kum/ising/internal/sweep"
	"github.com/san-kum/ising/internal/viz"
)

var (
	resultsDir string
	logLevel   string
	noColor    bool

	configFile string
	preset     string
	saveConfig string
	quiet      bool

	tMin                float64
	tMax                float64
	tStep               float64
	flipsToSkip         int
	measurementsPerT    int
	flipsPerMeasurement int
	attemptsPerFlip     int
	latticeSize         int
	coupling            float64
	thermal             float64
	seed                int64
	workers             int
	suscSource          string
	suscScaling         string

	asJSON     bool
	plotWidth  int
	plotHeight int
	svgPath    string
)

var logger *slog.Logger

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ising",
		Short:        "parallel Metropolis sweeps of the 2D Ising model",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.Setup(os.Stderr, logging.Config{Level: logLevel, NoColor: noColor})
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&resultsDir, "results", config.DefaultResultsDir, "results directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a temperature sweep",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	d := config.DefaultConfig()
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved configuration to this yaml file")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "log progress instead of drawing a progress bar")
	runCmd.Flags().Float64Var(&tMin, "t-min", d.Temperature.Min, "lowest temperature")
	runCmd.Flags().Float64Var(&tMax, "t-max", d.Temperature.Max, "highest temperature")
	runCmd.Flags().Float64Var(&tStep, "t-step", d.Temperature.Step, "temperature step")
	runCmd.Flags().IntVar(&flipsToSkip, "flips-to-skip", d.FlipsToSkip, "equilibration flip slots per temperature")
	runCmd.Flags().IntVar(&measurementsPerT, "measurements", d.MeasurementsPerT, "measurements per temperature")
	runCmd.Flags().IntVar(&flipsPerMeasurement, "flips-per-measurement", d.FlipsPerMeasurement, "flip slots between measurements")
	runCmd.Flags().IntVar(&attemptsPerFlip, "attempts", d.AttemptsPerFlip, "proposals per flip slot")
	runCmd.Flags().IntVar(&latticeSize, "size", d.LatticeSize, "lattice side length")
	runCmd.Flags().Float64Var(&coupling, "j", d.J, "coupling constant J")
	runCmd.Flags().Float64Var(&thermal, "k", d.K, "thermal constant K")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "base random seed (0 picks one from the clock)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 uses GOMAXPROCS)")
	runCmd.Flags().StringVar(&suscSource, "susceptibility-source", d.Observables.SusceptibilitySource, "series X is derived from (energy|order)")
	runCmd.Flags().StringVar(&suscScaling, "susceptibility-scaling", d.Observables.SusceptibilityScaling, "X normalisation (raw|thermal)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print the results table of a run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print run metadata as JSON")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id|table_path]",
		Short: "plot dE, I and X against temperature (latest run by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the plot as SVG to this path")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tT RANGE\tSTEP\tMEASUREMENTS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%.2f-%.2f\t%.2f\t%d\n",
					name, p.LatticeSize, p.Temperature.Min, p.Temperature.Max, p.Temperature.Step, p.MeasurementsPerT)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, presetsCmd)
	return rootCmd
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("t-min") {
		cfg.Temperature.Min = tMin
	}
	if flags.Changed("t-max") {
		cfg.Temperature.Max = tMax
	}
	if flags.Changed("t-step") {
		cfg.Temperature.Step = tStep
	}
	if flags.Changed("flips-to-skip") {
		cfg.FlipsToSkip = flipsToSkip
	}
	if flags.Changed("measurements") {
		cfg.MeasurementsPerT = measurementsPerT
	}
	if flags.Changed("flips-per-measurement") {
		cfg.FlipsPerMeasurement = flipsPerMeasurement
	}
	if flags.Changed("attempts") {
		cfg.AttemptsPerFlip = attemptsPerFlip
	}
	if flags.Changed("size") {
		cfg.LatticeSize = latticeSize
	}
	if flags.Changed("j") {
		cfg.J = coupling
	}
	if flags.Changed("k") {
		cfg.K = thermal
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("susceptibility-source") {
		cfg.Observables.SusceptibilitySource = suscSource
	}
	if flags.Changed("susceptibility-scaling") {
		cfg.Observables.SusceptibilityScaling = suscScaling
	}
	if flags.Changed("results") || cfg.ResultsDir == "" {
		cfg.ResultsDir = resultsDir
	}

	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	useTUI := !quiet && isatty.IsTerminal(os.Stdout.Fd()) && level > slog.LevelDebug

	driverLogger := logger
	if useTUI {
		// Info lines would tear the progress display.
		driverLogger, err = logging.New(os.Stderr, logging.Config{Level: "warn", NoColor: noColor})
		if err != nil {
			return err
		}
	}

	opts := []sweep.Option{sweep.WithLogger(driverLogger)}
	total := cfg.MeasurementTotal(len(sweep.Temperatures(cfg.Temperature.Min, cfg.Temperature.Max, cfg.Temperature.Step)))

	var display *viz.Display
	if useTUI {
		display = viz.NewDisplay(fmt.Sprintf("ising %dx%d, seed %d", cfg.LatticeSize, cfg.LatticeSize, cfg.Seed), total)
		opts = append(opts, sweep.WithObserver(display.Observer()))
	} else {
		every := total / 20
		opts = append(opts, sweep.WithObserver(viz.LogProgress(logger, every)))
	}

	driver, err := sweep.New(*cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running sweep", "seed", cfg.Seed, "lattice", cfg.LatticeSize, "measurements", total)
	startedAt := time.Now()

	if display != nil {
		display.Start()
	}
	result, runErr := driver.Run(ctx)
	if display != nil {
		if err := display.Finish(runErr); err != nil {
			logger.Warn("progress display failed", "err", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	st := storage.New(cfg.ResultsDir)
	runID, err := st.Save(*cfg, result, startedAt)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("table: %s\n", filepath.Join(st.Dir(), runID+".txt"))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(resultsDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSIZE\tT RANGE\tTEMPS\tMEASUREMENTS\tSEED\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%d\t%.2f-%.2f\t%d\t%d\t%d\t%v\n",
			run.ID,
			run.Config.LatticeSize,
			run.Config.Temperature.Min,
			run.Config.Temperature.Max,
			len(run.Records),
			run.Signals,
			run.Seed,
			run.Elapsed.Round(time.Millisecond),
		)
	}

	return w.Flush()
}

func resolveRunID(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 && args[0] != "latest" {
		return args[0], nil
	}
	latest, err := st.Latest()
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "", fmt.Errorf("no runs found in %s", st.Dir())
	}
	return latest.ID, nil
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(resultsDir)
	runID, err := resolveRunID(st, args)
	if err != nil {
		return err
	}

	if asJSON {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		return storage.ExportJSON(os.Stdout, meta)
	}

	records, err := st.LoadTable(runID)
	if err != nil {
		return err
	}
	return storage.WriteTable(os.Stdout, records)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(resultsDir)
	runID, err := resolveRunID(st, args)
	if err != nil {
		return err
	}

	records, err := st.LoadTable(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}
	sweep.SortRecords(records)

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("temperatures: %d\n\n", len(records))
	fmt.Print(viz.PlotObservables(records, plotWidth, plotHeight))

	if svgPath != "" {
		svg := export.ObservablesToSVG(records, 800, 600)
		if svg == "" {
			return fmt.Errorf("svg export needs at least two temperatures")
		}
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return fmt.Errorf("failed to write svg: %w", err)
		}
		fmt.Printf("\nsvg written to %s\n", svgPath)
	}
	return nil
}
