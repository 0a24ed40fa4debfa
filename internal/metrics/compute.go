package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile uses linear interpolation between the order statistics that
// bracket index p/100 * (n-1).
// sorted must be pre-sorted ASC. p is in percent (10 = 10th percentile).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	// Index for percentile (0-based, continuous)
	idx := p / 100 * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	// Linear interpolation
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// sortedCopy returns an ascending copy of values.
func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// VaRCVaR returns the p-th percentile of sorted and the mean of all values at
// or below it. CVaR falls back to VaR when nothing qualifies.
func VaRCVaR(sorted []float64, p float64) (valueAtRisk, conditional float64) {
	if len(sorted) == 0 {
		return 0, 0
	}
	valueAtRisk = Percentile(sorted, p)

	sum := 0.0
	count := 0
	for _, v := range sorted {
		if v > valueAtRisk {
			break
		}
		sum += v
		count++
	}
	if count == 0 {
		return valueAtRisk, valueAtRisk
	}
	return valueAtRisk, sum / float64(count)
}

// Sharpe is (mean - rf) / stddev with rf per period. Zero when stddev is zero.
func Sharpe(mean, stddev, rfPerPeriod float64) float64 {
	if stddev == 0 || math.IsNaN(stddev) {
		return 0
	}
	return (mean - rfPerPeriod) / stddev
}

// Calmar divides the annualized return on invested capital by the worst
// drawdown. Zero when either basis is zero.
func Calmar(medianFinal, invested float64, months int, worstDrawdown float64) float64 {
	if invested <= 0 || worstDrawdown <= 0 || months <= 0 {
		return 0
	}
	return AnnualizedReturn(medianFinal, invested, months) / worstDrawdown
}

// AnnualizedReturn is (final/invested)^(12/months) - 1. A non-positive final
// value is a total loss.
func AnnualizedReturn(final, invested float64, months int) float64 {
	if invested <= 0 || months <= 0 {
		return 0
	}
	if final <= 0 {
		return -1
	}
	return math.Pow(final/invested, periodsPerYear/float64(months)) - 1
}

// Moments returns skewness m3/m2^1.5 and kurtosis m4/m2^2 (not excess).
// Both are zero for a constant series.
func Moments(x []float64) (skewness, kurtosis float64) {
	if len(x) < 2 {
		return 0, 0
	}
	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return 0, 0
	}
	m3 := stat.Moment(3, x, nil)
	m4 := stat.Moment(4, x, nil)
	return m3 / math.Pow(m2, 1.5), m4 / (m2 * m2)
}

// ReturnStats are the moments of a flattened return series.
type ReturnStats struct {
	Count    int
	Mean     float64
	StdDev   float64 // population
	Downside float64 // population stddev of strictly negative returns
	Skewness float64
	Kurtosis float64
}

// ComputeReturnStats summarizes every return of every trajectory as one
// series without materializing it.
func ComputeReturnStats(series [][]float64) ReturnStats {
	var (
		n      int
		sum    float64
		negN   int
		negSum float64
	)
	for _, s := range series {
		for _, r := range s {
			n++
			sum += r
			if r < 0 {
				negN++
				negSum += r
			}
		}
	}
	if n == 0 {
		return ReturnStats{}
	}
	mean := sum / float64(n)
	negMean := 0.0
	if negN > 0 {
		negMean = negSum / float64(negN)
	}

	var m2, m3, m4, neg2 float64
	for _, s := range series {
		for _, r := range s {
			d := r - mean
			d2 := d * d
			m2 += d2
			m3 += d2 * d
			m4 += d2 * d2
			if r < 0 {
				nd := r - negMean
				neg2 += nd * nd
			}
		}
	}
	m2 /= float64(n)
	m3 /= float64(n)
	m4 /= float64(n)

	rs := ReturnStats{
		Count:  n,
		Mean:   mean,
		StdDev: math.Sqrt(m2),
	}
	if negN > 0 {
		rs.Downside = math.Sqrt(neg2 / float64(negN))
	}
	if m2 > 0 {
		rs.Skewness = m3 / math.Pow(m2, 1.5)
		rs.Kurtosis = m4 / (m2 * m2)
	}
	return rs
}

// Sortino uses the downside deviation, falling back to the total deviation
// when there are no negative returns.
func (rs ReturnStats) Sortino(rfPerPeriod float64) float64 {
	denom := rs.Downside
	if denom == 0 {
		denom = rs.StdDev
	}
	return Sharpe(rs.Mean, denom, rfPerPeriod)
}

// TrajectoryStats returns the population mean and stddev of one series.
func TrajectoryStats(returns []float64) (mean, stddev float64) {
	if len(returns) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(returns, nil)
}

// GeometricAnnualized returns the annualized compound growth of a return
// series. Series that lose everything report -1.
func GeometricAnnualized(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	logSum := 0.0
	for _, r := range returns {
		if r <= -1 {
			return -1
		}
		logSum += math.Log1p(r)
	}
	return math.Expm1(logSum / float64(len(returns)) * periodsPerYear)
}
