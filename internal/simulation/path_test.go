package simulation

import (
	"math"
	"testing"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/strategy"
	"montecarlo-lab/internal/variate"
)

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name string
		path []float64
		want float64
	}{
		{"strictly increasing", []float64{1, 2, 3, 4, 5}, 0},
		{"drop and partial recovery", []float64{100, 50, 80}, 0.5},
		{"two drawdowns, deeper second", []float64{100, 90, 120, 60, 130}, 0.5},
		{"starts at zero", []float64{0, 0, 100, 75}, 0.25},
		{"depleted to zero", []float64{0, 100, 200, 0, 0}, 1},
		{"empty", nil, 0},
		{"single point", []float64{42}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.path)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// constGen returns the same return every period.
type constGen struct{ r float64 }

func (g constGen) Family() domain.Distribution                        { return domain.DistributionNormal }
func (g constGen) InitialState() variate.State                        { return variate.State{} }
func (g constGen) Sample(_ *variate.Stream, _ *variate.State) float64 { return g.r }

func TestPathBuilder_DCATargetHit(t *testing.T) {
	b := NewPathBuilder(constGen{0}, strategy.NewDCA(100), 10, 350)
	path := make([]float64, 11)
	returns := make([]float64, 10)

	out := b.Build(variate.NewStream(1, 0), path, returns)

	if out.Final != 1000 {
		t.Errorf("expected final 1000, got %v", out.Final)
	}
	if out.TargetHit != 4 {
		t.Errorf("expected target hit at period 4, got %d", out.TargetHit)
	}
	if path[0] != 0 || path[10] != 1000 {
		t.Errorf("unexpected path endpoints %v, %v", path[0], path[10])
	}
	if out.MaxDrawdown != 0 {
		t.Errorf("expected no drawdown, got %v", out.MaxDrawdown)
	}
}

func TestPathBuilder_TargetNeverHit(t *testing.T) {
	b := NewPathBuilder(constGen{0}, strategy.NewDCA(100), 10, 1e9)
	out := b.Build(variate.NewStream(1, 0), make([]float64, 11), make([]float64, 10))
	if out.TargetHit != domain.NeverHit(10) {
		t.Errorf("expected sentinel %d, got %d", domain.NeverHit(10), out.TargetHit)
	}
}

func TestPathBuilder_TargetHitAtStart(t *testing.T) {
	b := NewPathBuilder(constGen{0.01}, strategy.NewLumpSum(5000), 12, 5000)
	out := b.Build(variate.NewStream(1, 0), make([]float64, 13), make([]float64, 12))
	if out.TargetHit != 0 {
		t.Errorf("expected target hit at period 0, got %d", out.TargetHit)
	}
}

func TestPathBuilder_RecordsReturns(t *testing.T) {
	b := NewPathBuilder(constGen{-0.1}, strategy.NewLumpSum(1000), 3, 0)
	path := make([]float64, 4)
	returns := make([]float64, 3)
	out := b.Build(variate.NewStream(1, 0), path, returns)

	for i, r := range returns {
		if r != -0.1 {
			t.Errorf("returns[%d] = %v, expected -0.1", i, r)
		}
	}
	want := 1 - 0.9*0.9*0.9
	if math.Abs(out.MaxDrawdown-want) > 1e-12 {
		t.Errorf("expected drawdown %v, got %v", want, out.MaxDrawdown)
	}
}
