package strategy

import "montecarlo-lab/internal/domain"

// Strategy applies per-period cash flows to one trajectory.
type Strategy interface {
	// ID returns the strategy tag.
	ID() domain.Strategy

	// InitialWealth returns wealth at period 0, before any return is applied.
	InitialWealth() float64

	// Apply advances wealth through period month (0-based) given that period's
	// return. Per-trajectory state lives in l.
	Apply(l *Ledger, month int, wealth, r float64) float64
}

// Ledger is the per-trajectory cash-flow state.
type Ledger struct {
	Withdrawal float64 // fixed per-period withdrawal once drawdown has started
	Drawing    bool
	Depleted   bool
}

// Reset clears l for a new trajectory.
func (l *Ledger) Reset() {
	*l = Ledger{}
}

// DCA contributes a fixed amount every period.
type DCA struct {
	Contribution float64
}

// NewDCA creates a DCA strategy.
func NewDCA(contribution float64) *DCA {
	return &DCA{Contribution: contribution}
}

func (s *DCA) ID() domain.Strategy    { return domain.StrategyDCA }
func (s *DCA) InitialWealth() float64 { return 0 }

func (s *DCA) Apply(_ *Ledger, _ int, wealth, r float64) float64 {
	return wealth*(1+r) + s.Contribution
}

// LumpSum invests once at period 0 and then only compounds.
type LumpSum struct {
	Amount float64
}

// NewLumpSum creates a lump-sum strategy.
func NewLumpSum(amount float64) *LumpSum {
	return &LumpSum{Amount: amount}
}

func (s *LumpSum) ID() domain.Strategy    { return domain.StrategyLumpSum }
func (s *LumpSum) InitialWealth() float64 { return s.Amount }

func (s *LumpSum) Apply(_ *Ledger, _ int, wealth, r float64) float64 {
	return wealth * (1 + r)
}

// Withdrawal accumulates like DCA until StartMonth, then withdraws a fixed
// amount every period. The amount is set once, from the balance at StartMonth,
// as balance * AnnualRate / 12, and is not re-derived as the balance shrinks.
// Wealth is clamped at zero and a depleted trajectory stays at zero.
type Withdrawal struct {
	Contribution float64
	AnnualRate   float64
	StartMonth   int
}

// NewWithdrawal creates a withdrawal strategy.
func NewWithdrawal(contribution, annualRate float64, startMonth int) *Withdrawal {
	return &Withdrawal{
		Contribution: contribution,
		AnnualRate:   annualRate,
		StartMonth:   startMonth,
	}
}

func (s *Withdrawal) ID() domain.Strategy    { return domain.StrategyWithdrawal }
func (s *Withdrawal) InitialWealth() float64 { return 0 }

func (s *Withdrawal) Apply(l *Ledger, month int, wealth, r float64) float64 {
	if month < s.StartMonth {
		return wealth*(1+r) + s.Contribution
	}
	if l.Depleted {
		return 0
	}
	if !l.Drawing {
		l.Drawing = true
		l.Withdrawal = wealth * s.AnnualRate / domain.PeriodsPerYear
	}

	next := wealth*(1+r) - l.Withdrawal
	if next < 0 || (next == 0 && l.Withdrawal > 0) {
		l.Depleted = true
		return 0
	}
	return next
}
