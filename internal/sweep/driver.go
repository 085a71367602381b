package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/metropolis"
	"github.com/san-kum/ising/internal/progress"
	"github.com/san-kum/ising/internal/stats"
)

type Driver struct {
	cfg       config.Config
	collector *stats.Collector
	logger    *slog.Logger
	observer  progress.Observer
}

type Option func(*Driver)

func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithObserver installs a callback invoked by the progress consumer after
// every completed measurement.
func WithObserver(o progress.Observer) Option {
	return func(d *Driver) { d.observer = o }
}

// Diagnostics are the proposal counters of one temperature's cycle.
type Diagnostics struct {
	T         float64 `json:"t"`
	Proposals int64   `json:"proposals"`
	Accepted  int64   `json:"accepted"`
}

func (d Diagnostics) AcceptanceRatio() float64 {
	return metropolis.Counters{Proposals: d.Proposals, Accepted: d.Accepted}.AcceptanceRatio()
}

type Result struct {
	Records     []stats.Record
	Diagnostics []Diagnostics
	Signals     int64
	Elapsed     time.Duration
}

// New validates cfg and prepares a driver for it.
func New(cfg config.Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := stats.NewStrategy(cfg.Observables.SusceptibilitySource, cfg.Observables.SusceptibilityScaling)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		cfg:       cfg,
		collector: stats.NewCollector(cfg.K, strategy),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Driver) Config() config.Config { return d.cfg }

func (d *Driver) Temperatures() []float64 {
	t := d.cfg.Temperature
	return Temperatures(t.Min, t.Max, t.Step)
}

func (d *Driver) workers() int {
	if d.cfg.Workers > 0 {
		return d.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

type workerResult struct {
	record      stats.Record
	diagnostics Diagnostics
}

// Run simulates every temperature and returns the records sorted by
// temperature. It returns only after the progress consumer has finished.
// A cancelled ctx stops workers that have not started yet; running workers
// finish their cycle.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	temps := d.Temperatures()
	agg := progress.New(d.cfg.MeasurementTotal(len(temps)), d.observer)

	d.logger.Info("sweep started",
		"temperatures", len(temps),
		"workers", d.workers(),
		"lattice", d.cfg.LatticeSize,
		"measurements", agg.Total(),
		"susceptibility", d.collector.Strategy().Name(),
	)

	var reporting errgroup.Group
	reporting.Go(agg.Run)

	results := make([]workerResult, len(temps))
	var g errgroup.Group
	g.SetLimit(d.workers())
	for i, t := range temps {
		sender := agg.Sender()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := d.runTemperature(i, t, sender)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	werr := g.Wait()
	agg.Close()
	perr := reporting.Wait()
	if werr != nil {
		return nil, werr
	}
	if perr != nil {
		return nil, fmt.Errorf("progress reporting: %w", perr)
	}

	out := &Result{
		Records:     make([]stats.Record, len(results)),
		Diagnostics: make([]Diagnostics, len(results)),
		Signals:     agg.Count(),
		Elapsed:     time.Since(start),
	}
	for i, r := range results {
		out.Records[i] = r.record
		out.Diagnostics[i] = r.diagnostics
	}
	SortRecords(out.Records)

	d.logger.Info("sweep finished", "records", len(out.Records), "elapsed", out.Elapsed.Round(time.Millisecond))
	return out, nil
}

// runTemperature runs one independent cycle. Stream index i keeps every
// temperature's random source distinct for a shared seed.
func (d *Driver) runTemperature(i int, t float64, r metropolis.Reporter) (workerResult, error) {
	rng := rand.New(rand.NewPCG(uint64(d.cfg.Seed), uint64(i)))
	l, err := lattice.New(d.cfg.LatticeSize, rng)
	if err != nil {
		return workerResult{}, err
	}

	cycle := metropolis.NewCycle(l, rng, t, metropolis.Params{
		FlipsToSkip:         d.cfg.FlipsToSkip,
		MeasurementsPerT:    d.cfg.MeasurementsPerT,
		FlipsPerMeasurement: d.cfg.FlipsPerMeasurement,
		AttemptsPerFlip:     d.cfg.AttemptsPerFlip,
		J:                   d.cfg.J,
		K:                   d.cfg.K,
	})
	rec := d.collector.Reduce(t, cycle.Run(r))
	cnt := cycle.Counters()

	d.logger.Debug("temperature done",
		"t", t,
		"dE", rec.DE,
		"I", rec.I,
		"X", rec.X,
		"acceptance", cnt.AcceptanceRatio(),
	)

	return workerResult{
		record:      rec,
		diagnostics: Diagnostics{T: t, Proposals: cnt.Proposals, Accepted: cnt.Accepted},
	}, nil
}
