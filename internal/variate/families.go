package variate

import (
	"math"

	"montecarlo-lab/internal/domain"
)

// Normal draws N(Mean, StdDev^2).
type Normal struct {
	Mean   float64
	StdDev float64
}

func (g *Normal) Family() domain.Distribution { return domain.DistributionNormal }
func (g *Normal) InitialState() State         { return State{} }

func (g *Normal) Sample(s *Stream, _ *State) float64 {
	return s.Normal(g.Mean, g.StdDev)
}

// StudentT draws a location-scale Student-t with DF degrees of freedom.
// The chi-square denominator is the sum of DF squared standard normals.
type StudentT struct {
	Mean   float64
	StdDev float64
	DF     int
}

func (g *StudentT) Family() domain.Distribution { return domain.DistributionStudentT }
func (g *StudentT) InitialState() State         { return State{} }

func (g *StudentT) Sample(s *Stream, _ *State) float64 {
	z := s.StdNormal()
	chi2 := 0.0
	for i := 0; i < g.DF; i++ {
		n := s.StdNormal()
		chi2 += n * n
	}
	if chi2 == 0 {
		return g.Mean
	}
	t := z / math.Sqrt(chi2/float64(g.DF))
	return g.Mean + g.StdDev*t
}

// LogNormal treats the normal draw as a log return and converts it
// to a simple period return.
type LogNormal struct {
	Mean   float64
	StdDev float64
}

func (g *LogNormal) Family() domain.Distribution { return domain.DistributionLogNormal }
func (g *LogNormal) InitialState() State         { return State{} }

func (g *LogNormal) Sample(s *Stream, _ *State) float64 {
	return math.Exp(s.Normal(g.Mean, g.StdDev)) - 1
}

// JumpDiffusion adds a fixed jump to a normal base return with a per-period
// Bernoulli trial.
type JumpDiffusion struct {
	Mean            float64
	StdDev          float64
	JumpProbability float64 // per period
	JumpSize        float64 // fraction, e.g. -0.1
}

func (g *JumpDiffusion) Family() domain.Distribution { return domain.DistributionJumpDiffusion }
func (g *JumpDiffusion) InitialState() State         { return State{} }

func (g *JumpDiffusion) Sample(s *Stream, _ *State) float64 {
	r := s.Normal(g.Mean, g.StdDev)
	if s.Bernoulli(g.JumpProbability) {
		r += g.JumpSize
	}
	return r
}

// Regime-switching constants.
const (
	RegimeSwitchProbability = 0.05

	bullMeanScale = 1.5
	bullVolScale  = 0.8
	bearMeanScale = -0.5
	bearVolScale  = 1.5
)

// RegimeSwitching draws from a two-state bull/bear model. Every period the
// regime flips with RegimeSwitchProbability, then the return is drawn under
// the active regime.
type RegimeSwitching struct {
	Mean   float64
	StdDev float64

	bullMean, bullVol float64
	bearMean, bearVol float64
}

// NewRegimeSwitching derives both regimes from the base parameters.
func NewRegimeSwitching(mean, stdDev float64) *RegimeSwitching {
	return &RegimeSwitching{
		Mean:     mean,
		StdDev:   stdDev,
		bullMean: mean * bullMeanScale,
		bullVol:  stdDev * bullVolScale,
		bearMean: mean * bearMeanScale,
		bearVol:  stdDev * bearVolScale,
	}
}

func (g *RegimeSwitching) Family() domain.Distribution { return domain.DistributionRegimeSwitching }

// InitialState starts every trajectory in the bull regime.
func (g *RegimeSwitching) InitialState() State { return State{Regime: RegimeBull} }

func (g *RegimeSwitching) Sample(s *Stream, st *State) float64 {
	if s.Float64() < RegimeSwitchProbability {
		if st.Regime == RegimeBull {
			st.Regime = RegimeBear
		} else {
			st.Regime = RegimeBull
		}
	}
	if st.Regime == RegimeBear {
		return s.Normal(g.bearMean, g.bearVol)
	}
	return s.Normal(g.bullMean, g.bullVol)
}

// GARCH(1,1) coefficients.
const (
	GARCHOmega = 1e-5
	GARCHAlpha = 0.1
	GARCHBeta  = 0.85
)

// GARCH draws normal returns whose volatility follows a GARCH(1,1) recurrence.
type GARCH struct {
	Mean   float64
	StdDev float64
}

// NewGARCH returns a GARCH generator seeded from the base parameters.
func NewGARCH(mean, stdDev float64) *GARCH {
	return &GARCH{Mean: mean, StdDev: stdDev}
}

func (g *GARCH) Family() domain.Distribution { return domain.DistributionGARCH }

// InitialState starts from the base mean and volatility.
func (g *GARCH) InitialState() State {
	return State{PrevReturn: g.Mean, PrevVolatility: g.StdDev}
}

func (g *GARCH) Sample(s *Stream, st *State) float64 {
	shock := st.PrevReturn - g.Mean
	vol := math.Sqrt(GARCHOmega + GARCHAlpha*shock*shock + GARCHBeta*st.PrevVolatility*st.PrevVolatility)
	r := s.Normal(g.Mean, vol)
	st.PrevReturn = r
	st.PrevVolatility = vol
	return r
}
