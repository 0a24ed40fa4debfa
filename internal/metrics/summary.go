package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"montecarlo-lab/internal/domain"
)

// Tail level for VaR and CVaR, in percent.
const TailPercent = 5

// Summarize computes the distributional summary and risk metrics of an ensemble.
func Summarize(ens *domain.Ensemble, p domain.SimulationParams) (domain.Summary, domain.RiskMetrics) {
	n := ens.Size()
	if n == 0 {
		return domain.Summary{}, domain.RiskMetrics{}
	}

	finals := sortedCopy(ens.Finals)
	invested := p.WithStrategy(ens.Strategy).TotalInvested()
	deflator := Deflator(p.InflationRate, ens.Months)

	s := domain.Summary{
		Median:        Percentile(finals, 50),
		Mean:          stat.Mean(finals, nil),
		P10:           Percentile(finals, 10),
		P90:           Percentile(finals, 90),
		Best:          finals[n-1],
		Worst:         finals[0],
		TotalInvested: invested,
	}
	s.RealMedian = s.Median / deflator
	s.RealMean = s.Mean / deflator
	s.RealP10 = s.P10 / deflator
	s.RealP90 = s.P90 / deflator
	s.RealBest = s.Best / deflator
	s.RealWorst = s.Worst / deflator

	var hits, depleted, losses int
	for i := 0; i < n; i++ {
		if ens.TargetHits[i] <= ens.Months {
			hits++
		}
		if ens.Depleted[i] {
			depleted++
		}
		if ens.Finals[i] < invested {
			losses++
		}
	}
	s.ProbTarget = float64(hits) / float64(n)
	s.ProbDepletion = float64(depleted) / float64(n)
	s.ProbLoss = float64(losses) / float64(n)
	s.MedianTargetHit = medianHit(ens.TargetHits)

	drawdowns := sortedCopy(ens.MaxDrawdowns)
	rs := ComputeReturnStats(ens.Returns)
	rf := p.RiskFreeRate / periodsPerYear

	r := domain.RiskMetrics{
		MedianDrawdown: Percentile(drawdowns, 50),
		AvgDrawdown:    stat.Mean(drawdowns, nil),
		P90Drawdown:    Percentile(drawdowns, 90),
		WorstDrawdown:  drawdowns[n-1],
		Sharpe:         Sharpe(rs.Mean, rs.StdDev, rf),
		Sortino:        rs.Sortino(rf),
		Skewness:       rs.Skewness,
		Kurtosis:       rs.Kurtosis,
	}
	r.VaR5, r.CVaR5 = VaRCVaR(finals, TailPercent)
	r.Calmar = Calmar(s.Median, invested, ens.Months, r.WorstDrawdown)

	return s, r
}

// medianHit is the first period by which at least half of the trajectories
// reached the target.
func medianHit(hits []int) int {
	if len(hits) == 0 {
		return 0
	}
	sorted := make([]int, len(hits))
	copy(sorted, hits)
	sort.Ints(sorted)
	return sorted[(len(sorted)+1)/2-1]
}

// Bands computes per-period wealth percentiles over the retained paths.
func Bands(ens *domain.Ensemble) domain.PercentileBands {
	k := ens.RetainedPaths()
	width := ens.Months + 1
	b := domain.PercentileBands{
		P10: make([]float64, width),
		P25: make([]float64, width),
		P50: make([]float64, width),
		P75: make([]float64, width),
		P90: make([]float64, width),
	}
	if k == 0 {
		return b
	}

	column := make([]float64, k)
	for m := 0; m < width; m++ {
		for i, path := range ens.Paths {
			column[i] = path[m]
		}
		sort.Float64s(column)
		b.P10[m] = Percentile(column, 10)
		b.P25[m] = Percentile(column, 25)
		b.P50[m] = Percentile(column, 50)
		b.P75[m] = Percentile(column, 75)
		b.P90[m] = Percentile(column, 90)
	}
	return b
}

// Median returns the median of unsorted values.
func Median(values []float64) float64 {
	return Percentile(sortedCopy(values), 50)
}

// RollingSharpe computes a window-period Sharpe ratio at every window position
// of every series and aggregates each position by its median across series.
// Series shorter than window yield nil.
func RollingSharpe(series [][]float64, window int, rfPerPeriod float64) []float64 {
	if window < 2 || len(series) == 0 {
		return nil
	}
	length := len(series[0])
	if length < window {
		return nil
	}
	positions := length - window + 1
	out := make([]float64, positions)
	column := make([]float64, 0, len(series))

	for pos := 0; pos < positions; pos++ {
		column = column[:0]
		for _, s := range series {
			if len(s) < pos+window {
				continue
			}
			mean, sd := stat.PopMeanStdDev(s[pos:pos+window], nil)
			v := Sharpe(mean, sd, rfPerPeriod)
			if math.IsNaN(v) {
				v = 0
			}
			column = append(column, v)
		}
		out[pos] = Median(column)
	}
	return out
}
