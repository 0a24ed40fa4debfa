package sensitivity

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/metrics"
)

// Correlation metric labels.
var CorrelationLabels = []string{"final_value", "max_drawdown", "volatility", "sharpe"}

// Correlation computes the Pearson correlation matrix of per-trajectory
// final value, max drawdown, return volatility and Sharpe ratio.
// Undefined correlations (a constant metric) are reported as 0.
func Correlation(ens *domain.Ensemble, rfPerPeriod float64) domain.CorrelationMatrix {
	n := ens.Size()
	vols := make([]float64, n)
	sharpes := make([]float64, n)
	for i, r := range ens.Returns {
		mean, sd := metrics.TrajectoryStats(r)
		vols[i] = sd
		sharpes[i] = metrics.Sharpe(mean, sd, rfPerPeriod)
	}
	series := [][]float64{ens.Finals, ens.MaxDrawdowns, vols, sharpes}

	k := len(series)
	values := make([][]float64, k)
	for i := range values {
		values[i] = make([]float64, k)
		values[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			c := 0.0
			if n >= 2 {
				c = stat.Correlation(series[i], series[j], nil)
			}
			if math.IsNaN(c) || math.IsInf(c, 0) {
				c = 0
			}
			values[i][j] = c
			values[j][i] = c
		}
	}

	return domain.CorrelationMatrix{
		Labels: append([]string(nil), CorrelationLabels...),
		Values: values,
	}
}
