package metrics

import "math"

const periodsPerYear = 12

// MonthlyInflationFactor converts an annual rate to its per-period factor.
func MonthlyInflationFactor(annualRate float64) float64 {
	return math.Pow(1+annualRate, 1.0/periodsPerYear)
}

// Deflator is the cumulative price level after months periods.
func Deflator(annualRate float64, months int) float64 {
	return math.Pow(MonthlyInflationFactor(annualRate), float64(months))
}

// RealValue expresses a nominal value at period months in today's money.
func RealValue(nominal, annualRate float64, months int) float64 {
	return nominal / Deflator(annualRate, months)
}
