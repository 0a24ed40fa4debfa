package reporting

import (
	"fmt"
	"strings"
	"time"

	"montecarlo-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Simulation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s` | Seed: %d\n\n", r.RunID, r.Seed))
	}

	// Parameters
	p := r.Params
	sb.WriteString("## Parameters\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Strategy | %s |\n", p.Strategy))
	sb.WriteString(fmt.Sprintf("| Distribution | %s |\n", p.Distribution))
	if p.Strategy.UsesContribution() {
		sb.WriteString(fmt.Sprintf("| Monthly contribution | %s |\n", formatMoney(p.MonthlyContribution)))
	}
	if p.Strategy.UsesLumpSum() {
		sb.WriteString(fmt.Sprintf("| Lump sum | %s |\n", formatMoney(p.LumpSum)))
	}
	sb.WriteString(fmt.Sprintf("| Expected monthly return | %s |\n", formatPercent(p.ExpectedReturn)))
	sb.WriteString(fmt.Sprintf("| Monthly volatility | %s |\n", formatPercent(p.Volatility)))
	sb.WriteString(fmt.Sprintf("| Horizon (months) | %d |\n", p.Months))
	sb.WriteString(fmt.Sprintf("| Trajectories | %d |\n", p.Simulations))
	sb.WriteString(fmt.Sprintf("| Target | %s |\n", formatMoney(p.TargetValue)))
	sb.WriteString(fmt.Sprintf("| Annual inflation | %s |\n", formatPercent(p.InflationRate)))
	switch p.Distribution {
	case domain.DistributionStudentT:
		sb.WriteString(fmt.Sprintf("| Degrees of freedom | %d |\n", p.DegreesOfFreedom))
	case domain.DistributionJumpDiffusion:
		sb.WriteString(fmt.Sprintf("| Jumps per year | %s |\n", formatFixed(p.JumpIntensity, 2)))
		sb.WriteString(fmt.Sprintf("| Jump size | %s%% |\n", formatFixed(p.JumpSize, 2)))
	}
	if p.Strategy == domain.StrategyWithdrawal {
		sb.WriteString(fmt.Sprintf("| Annual withdrawal rate | %s |\n", formatPercent(p.WithdrawalRate)))
		sb.WriteString(fmt.Sprintf("| Withdrawals start (month) | %d |\n", p.WithdrawalStartMonth))
	}
	sb.WriteString("\n")

	// Final Wealth
	sb.WriteString("## Final Wealth\n\n")
	sb.WriteString("| Statistic | Nominal | Real |\n")
	sb.WriteString("|-----------|---------|------|\n")
	for _, w := range r.Wealth {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", w.Metric, formatMoney(w.Nominal), formatMoney(w.Real)))
	}
	sb.WriteString("\n")

	// Outcomes
	sb.WriteString("## Outcomes\n\n")
	writeMetricTable(&sb, r.Outcomes, p.Months)

	// Risk
	sb.WriteString("## Risk\n\n")
	writeMetricTable(&sb, r.Risk, p.Months)

	// Comparison
	if len(r.Comparison) > 0 {
		sb.WriteString("## DCA vs Lump Sum\n\n")
		sb.WriteString("| Metric | DCA | Lump Sum |\n")
		sb.WriteString("|--------|-----|----------|\n")
		for _, c := range r.Comparison {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				c.Metric, formatValue(c.DCA, c.Kind), formatValue(c.LumpSum, c.Kind)))
		}
		sb.WriteString("\n")
	}

	// Sensitivity
	if len(r.Tornado) > 0 {
		sb.WriteString("## Sensitivity\n\n")
		sb.WriteString("| Factor | Low Median | High Median | Low Impact | High Impact |\n")
		sb.WriteString("|--------|------------|-------------|------------|-------------|\n")
		for _, f := range r.Tornado {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				f.Factor, formatMoney(f.LowMedian), formatMoney(f.HighMedian),
				formatMoney(f.LowImpact), formatMoney(f.HighImpact)))
		}
		sb.WriteString("\n")
	}
	if len(r.Frontier) > 0 {
		sb.WriteString("### Volatility Frontier\n\n")
		sb.WriteString("| Annual Volatility | Median Annualized Return |\n")
		sb.WriteString("|-------------------|--------------------------|\n")
		for _, pt := range r.Frontier {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", formatPercent(pt.Volatility), formatPercent(pt.Return)))
		}
		sb.WriteString("\n")
	}

	// Recent runs
	if len(r.RecentRuns) > 0 {
		sb.WriteString("## Recent Runs\n\n")
		sb.WriteString("| Run | Strategy | Distribution | Trajectories | Median | P10 | P90 | Created |\n")
		sb.WriteString("|-----|----------|--------------|--------------|--------|-----|-----|---------|\n")
		for _, run := range r.RecentRuns {
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %d | %s | %s | %s | %s |\n",
				run.RunID, run.Strategy, run.Distribution, run.Simulations,
				formatMoney(run.Median), formatMoney(run.P10), formatMoney(run.P90),
				run.CreatedAt.UTC().Format(time.RFC3339)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeMetricTable(sb *strings.Builder, rows []MetricRow, months int) {
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	for _, m := range rows {
		value := formatValue(m.Value, m.Kind)
		if m.Kind == KindPeriods && int(m.Value) == domain.NeverHit(months) {
			value = "not reached"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", m.Metric, value))
	}
	sb.WriteString("\n")
}
