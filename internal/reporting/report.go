package reporting

import (
	"time"

	"montecarlo-lab/internal/domain"
)

// ValueKind selects how a metric value is formatted.
type ValueKind int

const (
	KindMoney   ValueKind = iota // currency, two decimals
	KindPercent                  // fraction rendered as a percentage
	KindRatio                    // plain number, four decimals
	KindPeriods                  // whole number of months
)

// Report represents one run rendered for export.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Seed        uint64
	Params      domain.SimulationParams

	// Final wealth, nominal next to inflation-adjusted
	Wealth []WealthRow

	// Probabilities and target timing
	Outcomes []MetricRow

	// Tail, drawdown and return-ratio metrics
	Risk []MetricRow

	// Lump-sum leg of a comparison run, nil otherwise
	Comparison []ComparisonRow

	// Sensitivity tables, empty unless requested
	Tornado  []domain.FactorImpact
	Frontier []domain.FrontierPoint

	// Recent runs from the run summary store, newest first
	RecentRuns []*domain.RunSummary
}

// WealthRow is one final-wealth statistic.
type WealthRow struct {
	Metric  string
	Nominal float64
	Real    float64
}

// MetricRow is one named scalar.
type MetricRow struct {
	Metric string
	Value  float64
	Kind   ValueKind
}

// ComparisonRow puts the two legs of a comparison side by side.
type ComparisonRow struct {
	Metric  string
	DCA     float64
	LumpSum float64
	Kind    ValueKind
}
