package domain

import "time"

// Summary holds distributional statistics of final wealth.
type Summary struct {
	Median          float64 `json:"median"`
	Mean            float64 `json:"mean"`
	P10             float64 `json:"p10"`
	P90             float64 `json:"p90"`
	Best            float64 `json:"best"`
	Worst           float64 `json:"worst"`
	RealMedian      float64 `json:"real_median"`
	RealMean        float64 `json:"real_mean"`
	RealP10         float64 `json:"real_p10"`
	RealP90         float64 `json:"real_p90"`
	RealBest        float64 `json:"real_best"`
	RealWorst       float64 `json:"real_worst"`
	TotalInvested   float64 `json:"total_invested"`
	ProbTarget      float64 `json:"prob_target"`
	MedianTargetHit int     `json:"median_target_hit"` // months+1 when fewer than half reach it
	ProbDepletion   float64 `json:"prob_depletion"`
	ProbLoss        float64 `json:"prob_loss"`
}

// RiskMetrics holds tail, drawdown and return-ratio metrics.
type RiskMetrics struct {
	VaR5           float64 `json:"var_5"`
	CVaR5          float64 `json:"cvar_5"`
	MedianDrawdown float64 `json:"median_drawdown"`
	AvgDrawdown    float64 `json:"avg_drawdown"`
	P90Drawdown    float64 `json:"p90_drawdown"`
	WorstDrawdown  float64 `json:"worst_drawdown"`
	Sharpe         float64 `json:"sharpe"`
	Sortino        float64 `json:"sortino"`
	Calmar         float64 `json:"calmar"`
	Skewness       float64 `json:"skewness"`
	Kurtosis       float64 `json:"kurtosis"`
}

// PercentileBands are per-period wealth percentiles over the retained paths.
type PercentileBands struct {
	P10 []float64 `json:"p10"`
	P25 []float64 `json:"p25"`
	P50 []float64 `json:"p50"`
	P75 []float64 `json:"p75"`
	P90 []float64 `json:"p90"`
}

// FactorImpact is one row of the one-factor table.
type FactorImpact struct {
	Factor      string  `json:"factor"`
	LowMedian   float64 `json:"low_median"`
	HighMedian  float64 `json:"high_median"`
	LowImpact   float64 `json:"low_impact"`  // low median - base median
	HighImpact  float64 `json:"high_impact"` // high median - base median
	MaxAbsShift float64 `json:"max_abs_shift"`
}

// GridResult is the two-factor sweep. Medians[i][j] belongs to Returns[i], Volatilities[j].
type GridResult struct {
	Returns      []float64   `json:"returns"`
	Volatilities []float64   `json:"volatilities"`
	Medians      [][]float64 `json:"medians"`
}

// CorrelationMatrix is a symmetric matrix over named ensemble metrics.
type CorrelationMatrix struct {
	Labels []string    `json:"labels"`
	Values [][]float64 `json:"values"`
}

// FrontierPoint is one volatility sweep point, both values annualized.
type FrontierPoint struct {
	Volatility float64 `json:"volatility"`
	Return     float64 `json:"return"`
}

// SensitivityReport groups every sensitivity table.
type SensitivityReport struct {
	BaseMedian    float64           `json:"base_median"`
	Tornado       []FactorImpact    `json:"tornado"`
	Grid          GridResult        `json:"grid"`
	Correlation   CorrelationMatrix `json:"correlation"`
	Frontier      []FrontierPoint   `json:"frontier"`
	RollingSharpe []float64         `json:"rolling_sharpe"`
}

// Comparison holds the lump-sum leg of a comparison run.
type Comparison struct {
	LumpSum         Summary     `json:"lump_sum"`
	LumpSumRisk     RiskMetrics `json:"lump_sum_risk"`
	MedianAdvantage float64     `json:"median_advantage"` // DCA median - lump-sum median
}

// Result is the immutable output record of one run.
type Result struct {
	RunID       string             `json:"run_id"`
	Params      SimulationParams   `json:"params"`
	Seed        uint64             `json:"seed"`
	Summary     Summary            `json:"summary"`
	Risk        RiskMetrics        `json:"risk"`
	Bands       PercentileBands    `json:"bands"`
	SamplePaths [][]float64        `json:"sample_paths,omitempty"`
	FinalValues []float64          `json:"final_values,omitempty"`
	Comparison  *Comparison        `json:"comparison,omitempty"`
	Sensitivity *SensitivityReport `json:"sensitivity,omitempty"`
	Duration    time.Duration      `json:"duration_ns"`
	CreatedAt   time.Time          `json:"created_at"`
}
