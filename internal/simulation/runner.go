package simulation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/strategy"
	"montecarlo-lab/internal/variate"
)

// Runner errors
var (
	ErrNoTrajectories = errors.New("trajectory count must be positive")
)

// ProgressFunc receives the completed fraction of a run in [0, 1].
// Calls are serialized and the fraction never decreases.
type ProgressFunc func(fraction float64)

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	// Workers bounds concurrent chunks. 0 uses GOMAXPROCS.
	Workers int
	// ChunkSize is the number of trajectories per work unit and the
	// granularity of progress reports.
	ChunkSize int
	// MaxSimulations clamps the trajectory count.
	MaxSimulations int
	// RetainPaths is how many full wealth paths are kept. 0 keeps all.
	RetainPaths int
}

// DefaultRunnerOptions returns production defaults.
func DefaultRunnerOptions() RunnerOptions {
	return RunnerOptions{
		Workers:        runtime.GOMAXPROCS(0),
		ChunkSize:      250,
		MaxSimulations: domain.MaxSimulations,
		RetainPaths:    1000,
	}
}

// Runner executes independent trajectories in parallel and collects them
// into an ensemble.
type Runner struct {
	opts RunnerOptions
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	def := DefaultRunnerOptions()
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.MaxSimulations <= 0 {
		opts.MaxSimulations = def.MaxSimulations
	}
	if opts.RetainPaths < 0 {
		opts.RetainPaths = 0
	}
	return &Runner{opts: opts}
}

// Options returns the effective options.
func (r *Runner) Options() RunnerOptions {
	return r.opts
}

// Run simulates p under a single path strategy.
// Trajectory i draws from the stream keyed by (seed, i), so the ensemble
// does not depend on worker count or scheduling.
// Steps:
//  1. Build generator and strategy
//  2. Clamp trajectory count and size the ensemble
//  3. Fan out chunks of trajectories across workers
//  4. Report progress per finished chunk
func (r *Runner) Run(ctx context.Context, p domain.SimulationParams, seed uint64, progress ProgressFunc) (*domain.Ensemble, error) {
	// 1. Build generator and strategy
	gen, err := variate.FromParams(p)
	if err != nil {
		return nil, err
	}
	strat, err := strategy.FromParams(p)
	if err != nil {
		return nil, err
	}
	if p.Months < 1 {
		return nil, fmt.Errorf("%w: months must be >= 1", domain.ErrInvalidParams)
	}

	// 2. Clamp trajectory count and size the ensemble
	n := p.Simulations
	if n > r.opts.MaxSimulations {
		n = r.opts.MaxSimulations
	}
	if n <= 0 {
		return nil, ErrNoTrajectories
	}
	retain := n
	if r.opts.RetainPaths > 0 && r.opts.RetainPaths < n {
		retain = r.opts.RetainPaths
	}
	ens := newEnsemble(strat.ID(), p.Months, n, retain)
	builder := NewPathBuilder(gen, strat, p.Months, p.TargetValue)

	// 3. Fan out chunks of trajectories across workers
	var (
		completed atomic.Int64
		mu        sync.Mutex
		reported  float64
	)
	report := func(done int64) {
		if progress == nil {
			return
		}
		frac := float64(done) / float64(n)
		mu.Lock()
		defer mu.Unlock()
		if frac > reported {
			reported = frac
			progress(frac)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for start := 0; start < n; start += r.opts.ChunkSize {
		end := min(start+r.opts.ChunkSize, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runChunk(builder, ens, seed, start, end)

			// 4. Report progress per finished chunk
			report(completed.Add(int64(end - start)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report(int64(n))

	return ens, nil
}

// RunComparison simulates the DCA and lump-sum legs of p with the same seed,
// so both legs see identical return draws.
func (r *Runner) RunComparison(ctx context.Context, p domain.SimulationParams, seed uint64, progress ProgressFunc) (dca, lump *domain.Ensemble, err error) {
	legs := strategy.Legs(p.WithStrategy(domain.StrategyComparison))

	dca, err = r.Run(ctx, legs[0], seed, scaleProgress(progress, 0, 0.5))
	if err != nil {
		return nil, nil, fmt.Errorf("dca leg: %w", err)
	}
	lump, err = r.Run(ctx, legs[1], seed, scaleProgress(progress, 0.5, 0.5))
	if err != nil {
		return nil, nil, fmt.Errorf("lump sum leg: %w", err)
	}
	return dca, lump, nil
}

// runChunk builds trajectories [start, end). Each index is written by
// exactly one goroutine, so no locking is needed.
func runChunk(b *PathBuilder, ens *domain.Ensemble, seed uint64, start, end int) {
	months := b.Months()
	stream := variate.NewStream(seed, uint64(start))
	scratch := make([]float64, months+1)

	for i := start; i < end; i++ {
		stream.Reset(seed, uint64(i))

		path := scratch
		if i < len(ens.Paths) {
			path = ens.Paths[i]
		}
		out := b.Build(stream, path, ens.Returns[i])

		ens.Finals[i] = out.Final
		ens.MaxDrawdowns[i] = out.MaxDrawdown
		ens.TargetHits[i] = out.TargetHit
		ens.Depleted[i] = out.Depleted
	}
}

func newEnsemble(s domain.Strategy, months, n, retain int) *domain.Ensemble {
	ens := &domain.Ensemble{
		Strategy:     s,
		Months:       months,
		Finals:       make([]float64, n),
		Returns:      make([][]float64, n),
		MaxDrawdowns: make([]float64, n),
		TargetHits:   make([]int, n),
		Depleted:     make([]bool, n),
		Paths:        make([][]float64, retain),
	}

	returns := make([]float64, n*months)
	for i := range ens.Returns {
		ens.Returns[i] = returns[i*months : (i+1)*months : (i+1)*months]
	}
	width := months + 1
	paths := make([]float64, retain*width)
	for i := range ens.Paths {
		ens.Paths[i] = paths[i*width : (i+1)*width : (i+1)*width]
	}
	return ens
}

func scaleProgress(progress ProgressFunc, offset, scale float64) ProgressFunc {
	if progress == nil {
		return nil
	}
	return func(frac float64) {
		progress(offset + scale*frac)
	}
}
