package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/storage/memory"
)

var fixedNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func testResult() *domain.Result {
	p := domain.DefaultParams()
	p.Months = 120
	p.Seed = 7
	return &domain.Result{
		RunID:  "run-1",
		Params: p,
		Seed:   7,
		Summary: domain.Summary{
			Median:          98765.432,
			Mean:            101000,
			P10:             70000,
			P90:             140000,
			Best:            310000,
			Worst:           41000,
			RealMedian:      80500,
			TotalInvested:   60000,
			ProbTarget:      0.125,
			MedianTargetHit: 121,
			ProbLoss:        0.05,
		},
		Risk: domain.RiskMetrics{
			VaR5:          62000,
			CVaR5:         55000,
			WorstDrawdown: 0.4,
			Sharpe:        0.123456,
		},
		FinalValues: []float64{1000.005, 2500, 99999.999},
		CreatedAt:   fixedNow,
	}
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRunSummaryStore()
	for i, id := range []string{"a", "b", "c"} {
		err := store.Insert(ctx, &domain.RunSummary{
			RunID:     id,
			Strategy:  domain.StrategyDCA,
			CreatedAt: fixedNow.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Insert run summary failed: %v", err)
		}
	}

	gen := NewGenerator(store).WithClock(func() time.Time { return fixedNow }).WithRecentLimit(2)
	report, err := gen.Generate(ctx, testResult())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixedNow) {
		t.Errorf("expected generated at %v, got %v", fixedNow, report.GeneratedAt)
	}
	if len(report.Wealth) != 6 {
		t.Errorf("expected 6 wealth rows, got %d", len(report.Wealth))
	}
	if len(report.RecentRuns) != 2 {
		t.Fatalf("expected 2 recent runs, got %d", len(report.RecentRuns))
	}
	if report.RecentRuns[0].RunID != "c" {
		t.Errorf("expected newest run first, got %s", report.RecentRuns[0].RunID)
	}
	if report.Comparison != nil {
		t.Error("expected no comparison rows")
	}
	for _, m := range report.Outcomes {
		if m.Metric == "Probability of depletion" {
			t.Error("depletion row only belongs to withdrawal runs")
		}
	}
}

func TestGenerator_Generate_NoStore(t *testing.T) {
	report, err := NewGenerator(nil).Generate(context.Background(), testResult())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if report.RecentRuns != nil {
		t.Error("expected no recent runs without a store")
	}
}

func TestGenerator_Generate_Comparison(t *testing.T) {
	r := testResult()
	r.Params.Strategy = domain.StrategyComparison
	r.Comparison = &domain.Comparison{
		LumpSum:         domain.Summary{Median: 120000, TotalInvested: 60000},
		LumpSumRisk:     domain.RiskMetrics{CVaR5: 50000},
		MedianAdvantage: 98765.432 - 120000,
	}

	report, err := NewGenerator(nil).Generate(context.Background(), r)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(report.Comparison) == 0 {
		t.Fatal("expected comparison rows")
	}
	if report.Comparison[1].Metric != "Median" || report.Comparison[1].LumpSum != 120000 {
		t.Errorf("unexpected median row: %+v", report.Comparison[1])
	}

	md := RenderMarkdown(report)
	if !strings.Contains(md, "## DCA vs Lump Sum") {
		t.Error("expected comparison section")
	}
	if !strings.Contains(md, "| Median | $98,765.43 | $120,000.00 |") {
		t.Errorf("expected median comparison row, got:\n%s", md)
	}
}

func TestRenderMarkdown(t *testing.T) {
	report, err := NewGenerator(nil).WithClock(func() time.Time { return fixedNow }).Generate(context.Background(), testResult())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	expected := []string{
		"# Simulation Report",
		"Generated: 2026-01-15T12:00:00Z",
		"Run: `run-1` | Seed: 7",
		"| Strategy | dca |",
		"| Monthly contribution | $500.00 |",
		"| Median | $98,765.43 | $80,500.00 |",
		"| Probability of reaching target | 12.50% |",
		"| Median month target reached | not reached |",
		"| CVaR (5%) | $55,000.00 |",
		"| Worst max drawdown | 40.00% |",
		"| Sharpe | 0.1235 |",
	}
	for _, s := range expected {
		if !strings.Contains(md, s) {
			t.Errorf("expected markdown to contain %q", s)
		}
	}
	if strings.Contains(md, "## Sensitivity") {
		t.Error("expected no sensitivity section")
	}
}

func TestRenderMarkdown_Sensitivity(t *testing.T) {
	r := testResult()
	r.Sensitivity = &domain.SensitivityReport{
		Tornado: []domain.FactorImpact{
			{Factor: "expected_return", LowMedian: 90000, HighMedian: 110000, LowImpact: -8765.43, HighImpact: 11234.57},
		},
		Frontier: []domain.FrontierPoint{{Volatility: 0.1, Return: 0.05}},
	}

	report, err := NewGenerator(nil).Generate(context.Background(), r)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	md := RenderMarkdown(report)

	if !strings.Contains(md, "| expected_return | $90,000.00 | $110,000.00 | -$8,765.43 | $11,234.57 |") {
		t.Errorf("expected tornado row, got:\n%s", md)
	}
	if !strings.Contains(md, "| 10.00% | 5.00% |") {
		t.Error("expected frontier row")
	}
}

func TestRenderFinalValuesCSV(t *testing.T) {
	csv := RenderFinalValuesCSV(testResult().FinalValues)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0] != "trajectory,final_value" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "0,1000.01" {
		t.Errorf("expected half-up rounding, got %s", lines[1])
	}
	if lines[3] != "2,100000.00" {
		t.Errorf("unexpected row: %s", lines[3])
	}
}

func TestRenderSummaryCSV(t *testing.T) {
	report, err := NewGenerator(nil).Generate(context.Background(), testResult())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	csv := RenderSummaryCSV(report)

	expected := []string{
		"section,metric,value\n",
		"wealth,Median,98765.43\n",
		"real_wealth,Median,80500.00\n",
		"outcome,Probability of reaching target,0.125000\n",
		"outcome,Median month target reached,121\n",
		"risk,VaR (5%),62000.00\n",
	}
	for _, s := range expected {
		if !strings.Contains(csv, s) {
			t.Errorf("expected CSV to contain %q", s)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "$0.00"},
		{999.994, "$999.99"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{-42000, "-$42,000.00"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.v); got != tt.want {
			t.Errorf("formatMoney(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}
}
