package domain

// Strategy selects how cash flows are applied to a trajectory.
type Strategy string

// Strategy constants
const (
	StrategyDCA        Strategy = "dca"
	StrategyLumpSum    Strategy = "lump_sum"
	StrategyWithdrawal Strategy = "withdrawal"
	StrategyComparison Strategy = "comparison"
)

// Strategies lists every supported strategy in display order.
var Strategies = []Strategy{
	StrategyDCA,
	StrategyLumpSum,
	StrategyWithdrawal,
	StrategyComparison,
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyDCA, StrategyLumpSum, StrategyWithdrawal, StrategyComparison:
		return true
	}
	return false
}

// UsesContribution reports whether the strategy adds a periodic contribution.
func (s Strategy) UsesContribution() bool {
	return s == StrategyDCA || s == StrategyWithdrawal || s == StrategyComparison
}

// UsesLumpSum reports whether the strategy starts from a lump-sum amount.
func (s Strategy) UsesLumpSum() bool {
	return s == StrategyLumpSum || s == StrategyComparison
}
