// Package orchestrator turns one parameter set into a finished Result.
// It coordinates: validation → simulation → statistics → sensitivity → persistence
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/idhash"
	"montecarlo-lab/internal/metrics"
	"montecarlo-lab/internal/observability"
	"montecarlo-lab/internal/sensitivity"
	"montecarlo-lab/internal/simulation"
	"montecarlo-lab/internal/storage"
)

const (
	// DefaultSamplePaths is how many raw paths a Result carries for rendering.
	DefaultSamplePaths    = 100
	// DefaultMaxFinalValues bounds the final-value sample kept for histograms and export.
	DefaultMaxFinalValues = 10000

	// share of the progress range given to the main simulation when sensitivity follows
	simulationShare = 0.8
)

// Orchestrator runs simulations end to end. It is safe for concurrent use.
type Orchestrator struct {
	runner      *simulation.Runner
	sensitivity sensitivity.Config
	runStore    storage.RunSummaryStore

	// Options
	samplePaths    int
	maxFinalValues int
	logger         *log.Logger
	verbose        bool
}

// Options for creating Orchestrator.
type Options struct {
	// Runner executes ensembles. Nil means a runner with default options.
	Runner *simulation.Runner

	// Sensitivity configures the reduced re-runs. Zero fields take defaults.
	Sensitivity sensitivity.Config

	// RunStore receives a summary of every successful run. Optional.
	RunStore storage.RunSummaryStore

	SamplePaths    int
	MaxFinalValues int

	Logger  *log.Logger // nil means silent
	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	runner := opts.Runner
	if runner == nil {
		runner = simulation.NewRunner(simulation.DefaultRunnerOptions())
	}
	samplePaths := opts.SamplePaths
	if samplePaths <= 0 {
		samplePaths = DefaultSamplePaths
	}
	maxFinals := opts.MaxFinalValues
	if maxFinals <= 0 {
		maxFinals = DefaultMaxFinalValues
	}
	return &Orchestrator{
		runner:         runner,
		sensitivity:    opts.Sensitivity,
		runStore:       opts.RunStore,
		samplePaths:    samplePaths,
		maxFinalValues: maxFinals,
		logger:         opts.Logger,
		verbose:        opts.Verbose,
	}
}

// Runner returns the runner used for every simulation.
func (o *Orchestrator) Runner() *simulation.Runner {
	return o.runner
}

// Run executes one simulation without progress reporting.
func (o *Orchestrator) Run(ctx context.Context, p domain.SimulationParams) (*domain.Result, error) {
	return o.RunWithProgress(ctx, p, nil)
}

// RunWithProgress executes one simulation and reports a monotonic completion
// fraction in [0, 1].
// Steps:
//  1. Validate parameters
//  2. Resolve the seed
//  3. Simulate (both legs for a comparison)
//  4. Summarize the primary ensemble
//  5. Summarize the lump-sum leg of a comparison
//  6. Run sensitivity analysis when requested
//  7. Stamp run identity and record metrics
//  8. Persist the run summary
func (o *Orchestrator) RunWithProgress(ctx context.Context, p domain.SimulationParams, progress simulation.ProgressFunc) (*domain.Result, error) {
	start := time.Now()
	done := observability.RunStarted()
	defer done()

	result, err := o.run(ctx, p, progress, start)
	if err != nil {
		observability.RecordSimulationRun(string(p.Strategy), "error", time.Since(start).Seconds())
		return nil, err
	}
	observability.RecordSimulationRun(string(p.Strategy), "ok", result.Duration.Seconds())
	observability.RecordLastSuccess(result.CreatedAt.Unix())
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, p domain.SimulationParams, progress simulation.ProgressFunc, start time.Time) (*domain.Result, error) {
	// Step 1: Validate
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Seed
	seed := p.Seed
	if seed == 0 {
		seed = newSeed()
	}
	p.Seed = seed
	o.log("Run: strategy=%s distribution=%s simulations=%d months=%d seed=%d",
		p.Strategy, p.Distribution, p.Simulations, p.Months, seed)

	simProgress := progress
	if p.Sensitivity {
		simProgress = scaled(progress, simulationShare)
	}

	// Step 3: Simulate
	var (
		primary *domain.Ensemble
		lump    *domain.Ensemble
		err     error
	)
	if p.Strategy == domain.StrategyComparison {
		primary, lump, err = o.runner.RunComparison(ctx, p, seed, simProgress)
	} else {
		primary, err = o.runner.Run(ctx, p, seed, simProgress)
	}
	if err != nil {
		return nil, fmt.Errorf("step 3 (simulate) failed: %w", err)
	}
	p.Simulations = primary.Size()
	observability.RecordTrajectories(string(p.Distribution), primary.Size())
	if lump != nil {
		observability.RecordTrajectories(string(p.Distribution), lump.Size())
	}
	o.log("  Simulated %d trajectories", primary.Size())

	// Step 4: Summarize
	summary, risk := metrics.Summarize(primary, p)
	result := &domain.Result{
		Params:      p,
		Seed:        seed,
		Summary:     summary,
		Risk:        risk,
		Bands:       metrics.Bands(primary),
		SamplePaths: samplePaths(primary, o.samplePaths),
		FinalValues: sampleFinals(primary.Finals, o.maxFinalValues),
	}

	// Step 5: Comparison leg
	if lump != nil {
		lumpSummary, lumpRisk := metrics.Summarize(lump, p)
		result.Comparison = &domain.Comparison{
			LumpSum:         lumpSummary,
			LumpSumRisk:     lumpRisk,
			MedianAdvantage: summary.Median - lumpSummary.Median,
		}
	}

	// Step 6: Sensitivity
	if p.Sensitivity {
		o.log("  Running sensitivity analysis...")
		sensStart := time.Now()
		analyzer := sensitivity.NewAnalyzer(o.runner, o.sensitivity)
		report, err := analyzer.Analyze(ctx, p, seed, primary)
		if err != nil {
			return nil, fmt.Errorf("step 6 (sensitivity) failed: %w", err)
		}
		observability.RecordSensitivity(analyzer.Runs(), time.Since(sensStart).Seconds())
		result.Sensitivity = report
		o.log("  Sensitivity finished: %d reduced runs", analyzer.Runs())
	}
	if progress != nil && p.Sensitivity {
		progress(1)
	}

	// Step 7: Identity
	result.CreatedAt = time.Now().UTC()
	result.Duration = time.Since(start)
	result.RunID = idhash.ComputeRunID(p, seed, result.CreatedAt.UnixMilli())

	// Step 8: Persist
	if o.runStore != nil {
		if err := o.runStore.Insert(ctx, domain.NewRunSummary(result)); err != nil {
			if !errors.Is(err, storage.ErrDuplicateKey) {
				o.logf("persist run summary %s: %v", result.RunID, err)
			}
		}
	}

	o.log("Run %s completed in %s: median=%.2f p10=%.2f p90=%.2f",
		result.RunID, result.Duration, summary.Median, summary.P10, summary.P90)
	return result, nil
}

// samplePaths copies the first n retained paths.
func samplePaths(ens *domain.Ensemble, n int) [][]float64 {
	n = min(n, ens.RetainedPaths())
	out := make([][]float64, n)
	for i := range out {
		out[i] = append([]float64(nil), ens.Paths[i]...)
	}
	return out
}

// sampleFinals returns at most n final values taken at an even stride.
func sampleFinals(finals []float64, n int) []float64 {
	if len(finals) <= n {
		return append([]float64(nil), finals...)
	}
	out := make([]float64, n)
	stride := float64(len(finals)) / float64(n)
	for i := range out {
		out[i] = finals[int(float64(i)*stride)]
	}
	return out
}

// scaled maps a [0, 1] progress range onto [0, share].
func scaled(progress simulation.ProgressFunc, share float64) simulation.ProgressFunc {
	if progress == nil {
		return nil
	}
	return func(f float64) {
		progress(f * share)
	}
}

func newSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		o.logf(format, args...)
	}
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
	}
}
