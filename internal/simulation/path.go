package simulation

import (
	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/strategy"
	"montecarlo-lab/internal/variate"
)

// Outcome holds the scalar facts derived from one trajectory.
type Outcome struct {
	Final       float64
	MaxDrawdown float64
	TargetHit   int
	Depleted    bool
}

// PathBuilder advances a single trajectory period by period.
// A PathBuilder is immutable and may be shared between workers.
type PathBuilder struct {
	gen    variate.Generator
	strat  strategy.Strategy
	months int
	target float64
}

// NewPathBuilder creates a path builder for a horizon of months periods.
func NewPathBuilder(gen variate.Generator, strat strategy.Strategy, months int, target float64) *PathBuilder {
	return &PathBuilder{gen: gen, strat: strat, months: months, target: target}
}

// Months returns the horizon length.
func (b *PathBuilder) Months() int {
	return b.months
}

// Build runs one trajectory, writing wealth into path (len months+1) and
// period returns into returns (len months).
func (b *PathBuilder) Build(s *variate.Stream, path, returns []float64) Outcome {
	var (
		ledger strategy.Ledger
		dd     drawdownTracker
	)
	st := b.gen.InitialState()
	hit := domain.NeverHit(b.months)

	wealth := b.strat.InitialWealth()
	path[0] = wealth
	dd.observe(wealth)
	if wealth >= b.target {
		hit = 0
	}

	for m := 0; m < b.months; m++ {
		r := b.gen.Sample(s, &st)
		returns[m] = r
		wealth = b.strat.Apply(&ledger, m, wealth, r)
		path[m+1] = wealth
		dd.observe(wealth)
		if hit > b.months && wealth >= b.target {
			hit = m + 1
		}
	}

	return Outcome{
		Final:       wealth,
		MaxDrawdown: dd.max,
		TargetHit:   hit,
		Depleted:    ledger.Depleted,
	}
}

// MaxDrawdown returns the largest fractional decline from a running peak
// to any later point of path. Points seen while the peak is not positive
// are ignored.
func MaxDrawdown(path []float64) float64 {
	var dd drawdownTracker
	for _, v := range path {
		dd.observe(v)
	}
	return dd.max
}

type drawdownTracker struct {
	peak float64
	max  float64
	seen bool
}

func (d *drawdownTracker) observe(v float64) {
	if !d.seen || v > d.peak {
		d.peak = v
		d.seen = true
		return
	}
	if d.peak <= 0 {
		return
	}
	if dd := (d.peak - v) / d.peak; dd > d.max {
		d.max = dd
	}
}
