// Package sensitivity re-runs the simulation under perturbed parameters and
// assembles comparative tables.
package sensitivity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/metrics"
	"montecarlo-lab/internal/simulation"
)

// Factor names used in the one-factor table.
const (
	FactorContribution   = "monthly_contribution"
	FactorLumpSum        = "lump_sum"
	FactorExpectedReturn = "expected_return"
	FactorVolatility     = "volatility"
	FactorMonths         = "months"
)

// Config holds sensitivity settings. Grid and frontier values are annual.
type Config struct {
	Simulations          int
	Perturbation         float64
	GridReturns          []float64
	GridVolatilities     []float64
	FrontierVolatilities []float64
	RollingWindow        int
}

// DefaultConfig returns standard sensitivity settings.
func DefaultConfig() Config {
	return Config{
		Simulations:          1000,
		Perturbation:         0.10,
		GridReturns:          []float64{0.02, 0.04, 0.06, 0.08, 0.10, 0.12},
		GridVolatilities:     []float64{0.05, 0.10, 0.15, 0.20, 0.25},
		FrontierVolatilities: []float64{0.02, 0.04, 0.06, 0.08, 0.10, 0.12, 0.14, 0.16, 0.18, 0.20, 0.22, 0.24, 0.26, 0.28, 0.30},
		RollingWindow:        12,
	}
}

// Analyzer runs every sensitivity analysis through a shared Runner.
// Re-runs use at most Config.Simulations trajectories and never more than
// the base run they perturb.
type Analyzer struct {
	runner *simulation.Runner
	cfg    Config
	runs   atomic.Int64
}

// NewAnalyzer creates an analyzer. Zero config fields take defaults.
func NewAnalyzer(runner *simulation.Runner, cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.Simulations <= 0 {
		cfg.Simulations = def.Simulations
	}
	if cfg.Perturbation <= 0 {
		cfg.Perturbation = def.Perturbation
	}
	if len(cfg.GridReturns) == 0 {
		cfg.GridReturns = def.GridReturns
	}
	if len(cfg.GridVolatilities) == 0 {
		cfg.GridVolatilities = def.GridVolatilities
	}
	if len(cfg.FrontierVolatilities) == 0 {
		cfg.FrontierVolatilities = def.FrontierVolatilities
	}
	if cfg.RollingWindow <= 0 {
		cfg.RollingWindow = def.RollingWindow
	}
	return &Analyzer{runner: runner, cfg: cfg}
}

// Runs returns how many reduced ensembles the analyzer has simulated.
func (a *Analyzer) Runs() int {
	return int(a.runs.Load())
}

// Analyze builds the full sensitivity report for p. The correlation matrix
// and rolling Sharpe come from base, the ensemble of the main run. Every
// re-run uses seed so differences come from the parameters alone.
func (a *Analyzer) Analyze(ctx context.Context, p domain.SimulationParams, seed uint64, base *domain.Ensemble) (*domain.SensitivityReport, error) {
	if p.Strategy == domain.StrategyComparison {
		p = p.WithStrategy(domain.StrategyDCA)
	}

	baseMedian, tornado, err := a.Tornado(ctx, p, seed)
	if err != nil {
		return nil, fmt.Errorf("tornado: %w", err)
	}
	grid, err := a.Grid(ctx, p, seed)
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	frontier, err := a.Frontier(ctx, p, seed)
	if err != nil {
		return nil, fmt.Errorf("frontier: %w", err)
	}

	rf := p.RiskFreeRate / domain.PeriodsPerYear
	sample := base.Returns
	if n := a.reducedSize(p.Simulations); len(sample) > n {
		sample = sample[:n]
	}

	return &domain.SensitivityReport{
		BaseMedian:    baseMedian,
		Tornado:       tornado,
		Grid:          grid,
		Correlation:   Correlation(base, rf),
		Frontier:      frontier,
		RollingSharpe: metrics.RollingSharpe(sample, a.cfg.RollingWindow, rf),
	}, nil
}

// Tornado scales each factor down and up by the configured perturbation and
// records the shift in median final wealth. Rows are ordered by the largest
// absolute shift first.
func (a *Analyzer) Tornado(ctx context.Context, p domain.SimulationParams, seed uint64) (float64, []domain.FactorImpact, error) {
	baseMedian, err := a.median(ctx, p, seed)
	if err != nil {
		return 0, nil, err
	}

	cashFactor := FactorContribution
	if p.Strategy == domain.StrategyLumpSum {
		cashFactor = FactorLumpSum
	}
	factors := []string{cashFactor, FactorExpectedReturn, FactorVolatility, FactorMonths}

	impacts := make([]domain.FactorImpact, 0, len(factors))
	for _, f := range factors {
		low, err := a.median(ctx, perturb(p, f, 1-a.cfg.Perturbation), seed)
		if err != nil {
			return 0, nil, fmt.Errorf("%s low: %w", f, err)
		}
		high, err := a.median(ctx, perturb(p, f, 1+a.cfg.Perturbation), seed)
		if err != nil {
			return 0, nil, fmt.Errorf("%s high: %w", f, err)
		}
		impacts = append(impacts, domain.FactorImpact{
			Factor:      f,
			LowMedian:   low,
			HighMedian:  high,
			LowImpact:   low - baseMedian,
			HighImpact:  high - baseMedian,
			MaxAbsShift: math.Max(math.Abs(low-baseMedian), math.Abs(high-baseMedian)),
		})
	}

	sort.SliceStable(impacts, func(i, j int) bool {
		return impacts[i].MaxAbsShift > impacts[j].MaxAbsShift
	})
	return baseMedian, impacts, nil
}

// Grid sweeps annual return against annual volatility.
func (a *Analyzer) Grid(ctx context.Context, p domain.SimulationParams, seed uint64) (domain.GridResult, error) {
	g := domain.GridResult{
		Returns:      append([]float64(nil), a.cfg.GridReturns...),
		Volatilities: append([]float64(nil), a.cfg.GridVolatilities...),
		Medians:      make([][]float64, len(a.cfg.GridReturns)),
	}
	for i, annualReturn := range a.cfg.GridReturns {
		g.Medians[i] = make([]float64, len(a.cfg.GridVolatilities))
		for j, annualVol := range a.cfg.GridVolatilities {
			q := p
			q.ExpectedReturn = annualReturn / domain.PeriodsPerYear
			q.Volatility = annualVol / math.Sqrt(domain.PeriodsPerYear)
			m, err := a.median(ctx, q, seed)
			if err != nil {
				return domain.GridResult{}, err
			}
			g.Medians[i][j] = m
		}
	}
	return g, nil
}

// Frontier sweeps annual volatility with everything else fixed and reports
// the median annualized geometric return of the trajectories.
func (a *Analyzer) Frontier(ctx context.Context, p domain.SimulationParams, seed uint64) ([]domain.FrontierPoint, error) {
	points := make([]domain.FrontierPoint, 0, len(a.cfg.FrontierVolatilities))
	for _, annualVol := range a.cfg.FrontierVolatilities {
		q := p
		q.Volatility = annualVol / math.Sqrt(domain.PeriodsPerYear)
		ens, err := a.run(ctx, q, seed)
		if err != nil {
			return nil, err
		}
		growth := make([]float64, ens.Size())
		for i, r := range ens.Returns {
			growth[i] = metrics.GeometricAnnualized(r)
		}
		points = append(points, domain.FrontierPoint{
			Volatility: annualVol,
			Return:     metrics.Median(growth),
		})
	}
	return points, nil
}

func (a *Analyzer) run(ctx context.Context, p domain.SimulationParams, seed uint64) (*domain.Ensemble, error) {
	p.Simulations = a.reducedSize(p.Simulations)
	a.runs.Add(1)
	return a.runner.Run(ctx, p, seed, nil)
}

// reducedSize caps a re-run at the configured size and at the base size.
func (a *Analyzer) reducedSize(base int) int {
	if base <= 0 {
		return a.cfg.Simulations
	}
	return min(a.cfg.Simulations, base)
}

func (a *Analyzer) median(ctx context.Context, p domain.SimulationParams, seed uint64) (float64, error) {
	ens, err := a.run(ctx, p, seed)
	if err != nil {
		return 0, err
	}
	return metrics.Median(ens.Finals), nil
}

// perturb returns p with one factor scaled. Months are rounded and kept >= 1;
// the withdrawal start follows the horizon.
func perturb(p domain.SimulationParams, factor string, scale float64) domain.SimulationParams {
	switch factor {
	case FactorContribution:
		p.MonthlyContribution *= scale
	case FactorLumpSum:
		p.LumpSum *= scale
	case FactorExpectedReturn:
		p.ExpectedReturn *= scale
	case FactorVolatility:
		p.Volatility *= scale
	case FactorMonths:
		p.Months = max(1, int(math.Round(float64(p.Months)*scale)))
		if p.WithdrawalStartMonth > p.Months {
			p.WithdrawalStartMonth = p.Months
		}
	}
	return p
}
