package domain

import "time"

// Scenario is a named, saved parameter record.
// SummaryValue is the median final wealth observed when the scenario was saved.
type Scenario struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Params       SimulationParams `json:"params"`
	SummaryValue float64          `json:"summary_value"`
	CreatedAt    time.Time        `json:"created_at"`
}
