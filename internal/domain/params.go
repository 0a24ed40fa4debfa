package domain

import (
	"errors"
	"fmt"
)

// Parameter bounds.
const (
	MinSimulations = 100
	MaxSimulations = 50000

	// PeriodsPerYear converts between periodic and annual quantities.
	PeriodsPerYear = 12
)

// ErrInvalidParams is returned when a parameter record fails validation.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// SimulationParams is the input record for one run.
// ExpectedReturn and Volatility are per period (monthly).
// InflationRate, RiskFreeRate, WithdrawalRate and JumpIntensity are annual.
type SimulationParams struct {
	MonthlyContribution float64 `json:"monthly_contribution"`
	LumpSum             float64 `json:"lump_sum"`
	ExpectedReturn      float64 `json:"expected_return"`
	Volatility          float64 `json:"volatility"`
	Months              int     `json:"months"`
	Simulations         int     `json:"simulations"`
	TargetValue         float64 `json:"target_value"`
	InflationRate       float64 `json:"inflation_rate"`
	RiskFreeRate        float64 `json:"risk_free_rate"`

	Distribution     Distribution `json:"distribution"`
	DegreesOfFreedom int          `json:"degrees_of_freedom,omitempty"`
	JumpIntensity    float64      `json:"jump_intensity,omitempty"` // expected jumps per year
	JumpSize         float64      `json:"jump_size,omitempty"`      // percent

	WithdrawalRate       float64 `json:"withdrawal_rate,omitempty"`
	WithdrawalStartMonth int     `json:"withdrawal_start_month,omitempty"`

	Strategy    Strategy `json:"strategy"`
	Seed        uint64   `json:"seed,omitempty"` // 0 = random
	Sensitivity bool     `json:"sensitivity,omitempty"`
}

// DefaultParams returns a typical accumulation plan. A withdrawal plan built
// from it starts drawing at half the horizon.
func DefaultParams() SimulationParams {
	return SimulationParams{
		MonthlyContribution:  500,
		ExpectedReturn:       0.005,
		Volatility:           0.04,
		Months:               300,
		Simulations:          5000,
		TargetValue:          250000,
		InflationRate:        0.02,
		RiskFreeRate:         0.02,
		Distribution:         DistributionNormal,
		DegreesOfFreedom:     5,
		JumpIntensity:        1,
		JumpSize:             -10,
		WithdrawalRate:       0.04,
		WithdrawalStartMonth: 150,
		Strategy:             StrategyDCA,
	}
}

// Validate rejects parameter records that cannot be simulated.
func (p SimulationParams) Validate() error {
	if !p.Strategy.Valid() {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidParams, p.Strategy)
	}
	if !p.Distribution.Valid() {
		return fmt.Errorf("%w: unknown distribution %q", ErrInvalidParams, p.Distribution)
	}
	if p.Simulations < MinSimulations {
		return fmt.Errorf("%w: simulations must be >= %d", ErrInvalidParams, MinSimulations)
	}
	if p.Months < 1 {
		return fmt.Errorf("%w: months must be >= 1", ErrInvalidParams)
	}
	if p.Volatility < 0 {
		return fmt.Errorf("%w: volatility must be >= 0", ErrInvalidParams)
	}
	if p.Strategy.UsesContribution() && p.MonthlyContribution <= 0 {
		return fmt.Errorf("%w: monthly contribution must be > 0 for strategy %s", ErrInvalidParams, p.Strategy)
	}
	if p.Strategy.UsesLumpSum() && p.LumpSum <= 0 {
		return fmt.Errorf("%w: lump sum must be > 0 for strategy %s", ErrInvalidParams, p.Strategy)
	}
	if p.Distribution == DistributionStudentT && p.DegreesOfFreedom < 1 {
		return fmt.Errorf("%w: degrees of freedom must be >= 1", ErrInvalidParams)
	}
	if p.Distribution == DistributionJumpDiffusion {
		if p.JumpIntensity < 0 || p.JumpIntensity > PeriodsPerYear {
			return fmt.Errorf("%w: jump intensity must be within [0, %d]", ErrInvalidParams, PeriodsPerYear)
		}
	}
	if p.Strategy == StrategyWithdrawal {
		if p.WithdrawalRate < 0 {
			return fmt.Errorf("%w: withdrawal rate must be >= 0", ErrInvalidParams)
		}
		// Month 0 would fix the withdrawal before any contribution is made.
		if p.WithdrawalStartMonth < 1 || p.WithdrawalStartMonth > p.Months {
			return fmt.Errorf("%w: withdrawal start month must be within [1, months]", ErrInvalidParams)
		}
	}
	if p.InflationRate <= -1 {
		return fmt.Errorf("%w: inflation rate must be > -1", ErrInvalidParams)
	}
	if p.TargetValue < 0 {
		return fmt.Errorf("%w: target value must be >= 0", ErrInvalidParams)
	}
	return nil
}

// TotalInvested is the nominal amount put in by the investor over the horizon.
// Withdrawal plans count contributions up to the start month only.
func (p SimulationParams) TotalInvested() float64 {
	switch p.Strategy {
	case StrategyLumpSum:
		return p.LumpSum
	case StrategyWithdrawal:
		return p.MonthlyContribution * float64(p.WithdrawalStartMonth)
	default:
		return p.MonthlyContribution * float64(p.Months)
	}
}

// WithStrategy returns a copy of p running under s.
func (p SimulationParams) WithStrategy(s Strategy) SimulationParams {
	p.Strategy = s
	return p
}
