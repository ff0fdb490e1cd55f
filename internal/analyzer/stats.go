package analyzer

import "math"

// ZeroMeanCV is the coefficient of variation reported when mean demand is
// zero. It places such products in the most variable class.
const ZeroMeanCV = 100.0

// Percentage returns part as a percentage of whole, or 0 when whole is 0.
func Percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// CumulativeSum returns the running totals of values.
func CumulativeSum(values []float64) []float64 {
	sums := make([]float64, len(values))
	var running float64
	for i, v := range values {
		running += v
		sums[i] = running
	}
	return sums
}

// Mean returns the arithmetic mean of values. Callers pass a non-empty slice;
// an empty slice yields 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationStdDev returns the standard deviation of values using the
// population divisor (N, not N-1).
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var squares float64
	for _, v := range values {
		d := v - mean
		squares += d * d
	}
	return math.Sqrt(squares / float64(len(values)))
}

// CoefficientOfVariation returns stdDev relative to mean as a percentage.
// A non-positive mean yields ZeroMeanCV.
func CoefficientOfVariation(stdDev, mean float64) float64 {
	if mean > 0 {
		return stdDev / mean * 100
	}
	return ZeroMeanCV
}
