package strategy

import (
	"errors"
	"fmt"

	"montecarlo-lab/internal/domain"
)

// Factory errors
var (
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrComposite       = errors.New("comparison runs one ensemble per leg")
)

// FromParams creates the path strategy selected by p.Strategy.
// Comparison is not a path strategy; use Legs for it.
func FromParams(p domain.SimulationParams) (Strategy, error) {
	switch p.Strategy {
	case domain.StrategyDCA:
		return NewDCA(p.MonthlyContribution), nil
	case domain.StrategyLumpSum:
		return NewLumpSum(p.LumpSum), nil
	case domain.StrategyWithdrawal:
		return NewWithdrawal(p.MonthlyContribution, p.WithdrawalRate, p.WithdrawalStartMonth), nil
	case domain.StrategyComparison:
		return nil, ErrComposite
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, p.Strategy)
	}
}

// Legs returns the parameter records a run must simulate: one for path
// strategies, DCA then lump-sum for comparison.
func Legs(p domain.SimulationParams) []domain.SimulationParams {
	if p.Strategy == domain.StrategyComparison {
		return []domain.SimulationParams{
			p.WithStrategy(domain.StrategyDCA),
			p.WithStrategy(domain.StrategyLumpSum),
		}
	}
	return []domain.SimulationParams{p}
}
