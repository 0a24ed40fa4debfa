package strategy

import (
	"errors"
	"testing"

	"montecarlo-lab/internal/domain"
)

func TestDCA_Apply(t *testing.T) {
	s := NewDCA(100)
	if s.InitialWealth() != 0 {
		t.Fatalf("expected zero initial wealth, got %v", s.InitialWealth())
	}
	var l Ledger
	w := s.Apply(&l, 0, 0, 0.5)
	if w != 100 {
		t.Errorf("expected 100 after first period, got %v", w)
	}
	w = s.Apply(&l, 1, w, 0.1)
	if w != 210 {
		t.Errorf("expected 210, got %v", w)
	}
}

func TestLumpSum_Apply(t *testing.T) {
	s := NewLumpSum(1000)
	if s.InitialWealth() != 1000 {
		t.Fatalf("expected initial wealth 1000, got %v", s.InitialWealth())
	}
	var l Ledger
	if w := s.Apply(&l, 0, 1000, -0.25); w != 750 {
		t.Errorf("expected 750, got %v", w)
	}
}

func TestWithdrawal_FixedAmount(t *testing.T) {
	s := NewWithdrawal(100, 0.12, 2)
	var l Ledger
	w := s.InitialWealth()

	// accumulation
	w = s.Apply(&l, 0, w, 0) // 100
	w = s.Apply(&l, 1, w, 0) // 200
	if w != 200 || l.Drawing {
		t.Fatalf("expected 200 and no drawdown, got %v drawing=%v", w, l.Drawing)
	}

	// start month: withdrawal fixed at 200*0.12/12 = 2
	w = s.Apply(&l, 2, w, 0)
	if l.Withdrawal != 2 {
		t.Fatalf("expected withdrawal 2, got %v", l.Withdrawal)
	}
	if w != 198 {
		t.Errorf("expected 198, got %v", w)
	}

	// later periods keep the same amount even after a loss
	w = s.Apply(&l, 3, w, -0.5)
	if l.Withdrawal != 2 {
		t.Errorf("withdrawal re-derived: %v", l.Withdrawal)
	}
	if w != 97 {
		t.Errorf("expected 97, got %v", w)
	}
}

func TestWithdrawal_DepletionIsPermanent(t *testing.T) {
	s := NewWithdrawal(100, 12, 1) // withdraw the whole balance every period
	var l Ledger
	w := s.Apply(&l, 0, 0, 0) // 100
	w = s.Apply(&l, 1, w, -0.1)
	if w != 0 || !l.Depleted {
		t.Fatalf("expected depletion, got wealth=%v depleted=%v", w, l.Depleted)
	}
	for m := 2; m < 10; m++ {
		w = s.Apply(&l, m, w, 0.5)
		if w != 0 {
			t.Fatalf("wealth recovered after depletion at month %d: %v", m, w)
		}
	}
}

func TestWithdrawal_NothingWithdrawnIsNotDepletion(t *testing.T) {
	s := NewWithdrawal(100, 0.04, 0)
	var l Ledger
	w := s.Apply(&l, 0, s.InitialWealth(), 0)
	if w != 0 || l.Withdrawal != 0 {
		t.Fatalf("expected zero wealth and zero withdrawal, got %v / %v", w, l.Withdrawal)
	}
	if l.Depleted {
		t.Error("flagged depleted although nothing was withdrawn")
	}
}

func TestLedger_Reset(t *testing.T) {
	l := Ledger{Withdrawal: 5, Drawing: true, Depleted: true}
	l.Reset()
	if l != (Ledger{}) {
		t.Errorf("expected zero ledger, got %+v", l)
	}
}

func TestFromParams(t *testing.T) {
	p := domain.DefaultParams()
	p.LumpSum = 5000

	tests := []struct {
		strategy domain.Strategy
		want     domain.Strategy
		wantErr  error
	}{
		{domain.StrategyDCA, domain.StrategyDCA, nil},
		{domain.StrategyLumpSum, domain.StrategyLumpSum, nil},
		{domain.StrategyWithdrawal, domain.StrategyWithdrawal, nil},
		{domain.StrategyComparison, "", ErrComposite},
		{"bogus", "", ErrUnknownStrategy},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			s, err := FromParams(p.WithStrategy(tt.strategy))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.ID() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, s.ID())
			}
		})
	}
}

func TestLegs(t *testing.T) {
	p := domain.DefaultParams().WithStrategy(domain.StrategyComparison)
	legs := Legs(p)
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}
	if legs[0].Strategy != domain.StrategyDCA || legs[1].Strategy != domain.StrategyLumpSum {
		t.Errorf("unexpected legs %s, %s", legs[0].Strategy, legs[1].Strategy)
	}
	if len(Legs(domain.DefaultParams())) != 1 {
		t.Error("expected single leg for dca")
	}
}
