package features

import (
	"math"

	"PaperPulse/internal/domain/models"
)

// Epsilon floors the volatility denominator in trend strength.
const Epsilon = 1e-4

// Prices extracts the price series from ticks (kept in given order).
func Prices(ticks []*models.Tick) []float64 {
	out := make([]float64, len(ticks))
	for i, t := range ticks {
		out[i] = t.Price
	}
	return out
}

// StepReturns computes per-step returns r_i = (p_i - p_{i+1}) / p_{i+1} over
// a most-recent-first series. Returns a slice of length len(prices)-1, or nil
// if insufficient data.
func StepReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 0; i+1 < len(prices); i++ {
		prev := prices[i+1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (prices[i]-prev)/prev)
	}
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty series.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// PopStdDev returns the population standard deviation.
func PopStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - mean
		sum2 += d * d
	}
	return math.Sqrt(sum2 / float64(len(xs)))
}

// Momentum is the relative distance of the latest price from the window mean.
func Momentum(latest, avg float64) float64 {
	if avg == 0 {
		return 0
	}
	return (latest - avg) / avg
}

// TrendStrength relates momentum to volatility, floored at Epsilon to avoid
// division by zero in flat markets.
func TrendStrength(momentum, volatility float64) float64 {
	return math.Abs(momentum) / math.Max(volatility, Epsilon)
}

// Pearson computes the Pearson correlation coefficient of two equal-length
// series. Returns 0 when either series is degenerate (zero variance).
func Pearson(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}
	meanA, meanB := Mean(a), Mean(b)
	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
