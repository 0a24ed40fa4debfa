package variate

import (
	"errors"
	"fmt"

	"montecarlo-lab/internal/domain"
)

// ErrUnknownDistribution is returned for an unsupported family.
var ErrUnknownDistribution = errors.New("unknown distribution")

// Regime is the latent market state of the regime-switching process.
type Regime int

// Regime values
const (
	RegimeBull Regime = iota
	RegimeBear
)

func (r Regime) String() string {
	if r == RegimeBear {
		return "bear"
	}
	return "bull"
}

// State is the recurrence state carried from one period to the next
// within a single trajectory. Families that need no state ignore it.
type State struct {
	PrevReturn     float64
	PrevVolatility float64
	Regime         Regime
}

// Generator draws one period return per call.
type Generator interface {
	// Family returns the distribution tag.
	Family() domain.Distribution
	// InitialState returns the state a new trajectory starts from.
	InitialState() State
	// Sample draws the next return and advances st.
	Sample(s *Stream, st *State) float64
}

// FromParams builds the generator selected by p.Distribution.
func FromParams(p domain.SimulationParams) (Generator, error) {
	mean, sd := p.ExpectedReturn, p.Volatility

	switch p.Distribution {
	case domain.DistributionNormal:
		return &Normal{Mean: mean, StdDev: sd}, nil
	case domain.DistributionStudentT:
		if p.DegreesOfFreedom < 1 {
			return nil, fmt.Errorf("student-t: degrees of freedom %d < 1", p.DegreesOfFreedom)
		}
		return &StudentT{Mean: mean, StdDev: sd, DF: p.DegreesOfFreedom}, nil
	case domain.DistributionLogNormal:
		return &LogNormal{Mean: mean, StdDev: sd}, nil
	case domain.DistributionJumpDiffusion:
		return &JumpDiffusion{
			Mean:            mean,
			StdDev:          sd,
			JumpProbability: p.JumpIntensity / domain.PeriodsPerYear,
			JumpSize:        p.JumpSize / 100,
		}, nil
	case domain.DistributionRegimeSwitching:
		return NewRegimeSwitching(mean, sd), nil
	case domain.DistributionGARCH:
		return NewGARCH(mean, sd), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDistribution, p.Distribution)
	}
}
