package domain

import "time"

// RunSummary is the flattened record of a finished run kept for analytics.
type RunSummary struct {
	RunID        string       `json:"run_id"`
	Strategy     Strategy     `json:"strategy"`
	Distribution Distribution `json:"distribution"`
	Simulations  int          `json:"simulations"`
	Months       int          `json:"months"`
	Seed         uint64       `json:"seed"`
	Median       float64      `json:"median"`
	Mean         float64      `json:"mean"`
	P10          float64      `json:"p10"`
	P90          float64      `json:"p90"`
	ProbTarget   float64      `json:"prob_target"`
	CVaR5        float64      `json:"cvar_5"`
	Sharpe       float64      `json:"sharpe"`
	DurationMs   int64        `json:"duration_ms"`
	CreatedAt    time.Time    `json:"created_at"`
}

// NewRunSummary flattens a result.
func NewRunSummary(r *Result) *RunSummary {
	return &RunSummary{
		RunID:        r.RunID,
		Strategy:     r.Params.Strategy,
		Distribution: r.Params.Distribution,
		Simulations:  r.Params.Simulations,
		Months:       r.Params.Months,
		Seed:         r.Seed,
		Median:       r.Summary.Median,
		Mean:         r.Summary.Mean,
		P10:          r.Summary.P10,
		P90:          r.Summary.P90,
		ProbTarget:   r.Summary.ProbTarget,
		CVaR5:        r.Risk.CVaR5,
		Sharpe:       r.Risk.Sharpe,
		DurationMs:   r.Duration.Milliseconds(),
		CreatedAt:    r.CreatedAt,
	}
}
