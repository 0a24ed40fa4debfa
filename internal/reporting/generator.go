package reporting

import (
	"context"
	"fmt"
	"time"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/storage"
)

// DefaultRecentRuns is how many stored runs a report lists.
const DefaultRecentRuns = 10

// Generator produces reports from run results.
type Generator struct {
	runStore    storage.RunSummaryStore
	recentLimit int
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. runStore may be nil, in
// which case reports carry no recent runs.
func NewGenerator(runStore storage.RunSummaryStore) *Generator {
	return &Generator{
		runStore:    runStore,
		recentLimit: DefaultRecentRuns,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithRecentLimit sets how many stored runs are listed.
func (g *Generator) WithRecentLimit(n int) *Generator {
	g.recentLimit = n
	return g
}

// Generate builds the report for one result.
func (g *Generator) Generate(ctx context.Context, r *domain.Result) (*Report, error) {
	report := &Report{
		GeneratedAt: g.now(),
		RunID:       r.RunID,
		Seed:        r.Seed,
		Params:      r.Params,
		Wealth:      wealthRows(r.Summary),
		Outcomes:    outcomeRows(r.Summary, r.Params),
		Risk:        riskRows(r.Risk),
	}

	if r.Comparison != nil {
		report.Comparison = comparisonRows(r.Summary, r.Risk, r.Comparison)
	}
	if r.Sensitivity != nil {
		report.Tornado = r.Sensitivity.Tornado
		report.Frontier = r.Sensitivity.Frontier
	}

	if g.runStore != nil && g.recentLimit > 0 {
		recent, err := g.runStore.GetRecent(ctx, g.recentLimit)
		if err != nil {
			return nil, fmt.Errorf("load recent runs: %w", err)
		}
		report.RecentRuns = recent
	}

	return report, nil
}

func wealthRows(s domain.Summary) []WealthRow {
	return []WealthRow{
		{Metric: "Median", Nominal: s.Median, Real: s.RealMedian},
		{Metric: "Mean", Nominal: s.Mean, Real: s.RealMean},
		{Metric: "P10", Nominal: s.P10, Real: s.RealP10},
		{Metric: "P90", Nominal: s.P90, Real: s.RealP90},
		{Metric: "Best", Nominal: s.Best, Real: s.RealBest},
		{Metric: "Worst", Nominal: s.Worst, Real: s.RealWorst},
	}
}

func outcomeRows(s domain.Summary, p domain.SimulationParams) []MetricRow {
	rows := []MetricRow{
		{Metric: "Total invested", Value: s.TotalInvested, Kind: KindMoney},
		{Metric: "Probability of loss", Value: s.ProbLoss, Kind: KindPercent},
		{Metric: "Probability of reaching target", Value: s.ProbTarget, Kind: KindPercent},
		{Metric: "Median month target reached", Value: float64(s.MedianTargetHit), Kind: KindPeriods},
	}
	if p.Strategy == domain.StrategyWithdrawal {
		rows = append(rows, MetricRow{Metric: "Probability of depletion", Value: s.ProbDepletion, Kind: KindPercent})
	}
	return rows
}

func riskRows(r domain.RiskMetrics) []MetricRow {
	return []MetricRow{
		{Metric: "VaR (5%)", Value: r.VaR5, Kind: KindMoney},
		{Metric: "CVaR (5%)", Value: r.CVaR5, Kind: KindMoney},
		{Metric: "Median max drawdown", Value: r.MedianDrawdown, Kind: KindPercent},
		{Metric: "Average max drawdown", Value: r.AvgDrawdown, Kind: KindPercent},
		{Metric: "P90 max drawdown", Value: r.P90Drawdown, Kind: KindPercent},
		{Metric: "Worst max drawdown", Value: r.WorstDrawdown, Kind: KindPercent},
		{Metric: "Sharpe", Value: r.Sharpe, Kind: KindRatio},
		{Metric: "Sortino", Value: r.Sortino, Kind: KindRatio},
		{Metric: "Calmar", Value: r.Calmar, Kind: KindRatio},
		{Metric: "Skewness", Value: r.Skewness, Kind: KindRatio},
		{Metric: "Kurtosis", Value: r.Kurtosis, Kind: KindRatio},
	}
}

func comparisonRows(dca domain.Summary, dcaRisk domain.RiskMetrics, c *domain.Comparison) []ComparisonRow {
	lump := c.LumpSum
	return []ComparisonRow{
		{Metric: "Total invested", DCA: dca.TotalInvested, LumpSum: lump.TotalInvested, Kind: KindMoney},
		{Metric: "Median", DCA: dca.Median, LumpSum: lump.Median, Kind: KindMoney},
		{Metric: "P10", DCA: dca.P10, LumpSum: lump.P10, Kind: KindMoney},
		{Metric: "P90", DCA: dca.P90, LumpSum: lump.P90, Kind: KindMoney},
		{Metric: "Probability of loss", DCA: dca.ProbLoss, LumpSum: lump.ProbLoss, Kind: KindPercent},
		{Metric: "CVaR (5%)", DCA: dcaRisk.CVaR5, LumpSum: c.LumpSumRisk.CVaR5, Kind: KindMoney},
		{Metric: "Worst max drawdown", DCA: dcaRisk.WorstDrawdown, LumpSum: c.LumpSumRisk.WorstDrawdown, Kind: KindPercent},
		{Metric: "Sharpe", DCA: dcaRisk.Sharpe, LumpSum: c.LumpSumRisk.Sharpe, Kind: KindRatio},
	}
}
