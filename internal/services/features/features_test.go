package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepReturns(t *testing.T) {
	// most-recent-first: 102 is the newest price
	got := StepReturns([]float64{102, 101, 100})
	assert.Len(t, got, 2)
	assert.InDelta(t, (102.0-101.0)/101.0, got[0], 1e-12)
	assert.InDelta(t, (101.0-100.0)/100.0, got[1], 1e-12)

	assert.Nil(t, StepReturns([]float64{100}))
	assert.Nil(t, StepReturns(nil))
}

func TestStepReturnsZeroDenominator(t *testing.T) {
	got := StepReturns([]float64{5, 0, 10})
	assert.Equal(t, []float64{0, -1}, got)
}

func TestMeanAndStdDev(t *testing.T) {
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 0.0, Mean(nil), 1e-12)

	assert.InDelta(t, 0.0, PopStdDev([]float64{5, 5, 5}), 1e-12)
	// population stddev of {2, 4} is 1
	assert.InDelta(t, 1.0, PopStdDev([]float64{2, 4}), 1e-12)
}

func TestMomentum(t *testing.T) {
	assert.InDelta(t, 0.05, Momentum(105, 100), 1e-12)
	assert.InDelta(t, -0.05, Momentum(95, 100), 1e-12)
	assert.InDelta(t, 0.0, Momentum(100, 0), 1e-12)
}

func TestTrendStrengthFloorsVolatility(t *testing.T) {
	// flat market: volatility below epsilon must not blow up the ratio
	assert.InDelta(t, 0.05/Epsilon, TrendStrength(0.05, 0), 1e-6)
	assert.InDelta(t, 0.5, TrendStrength(0.05, 0.1), 1e-12)
}

func TestPearson(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}
	inv := []float64{10, 8, 6, 4, 2}

	assert.InDelta(t, 1.0, Pearson(a, b), 1e-12)
	assert.InDelta(t, -1.0, Pearson(a, inv), 1e-12)
	assert.InDelta(t, 0.0, Pearson(a, []float64{3, 3, 3, 3, 3}), 1e-12, "degenerate series")
	assert.InDelta(t, 0.0, Pearson(a, []float64{1, 2}), 1e-12, "length mismatch")
	assert.InDelta(t, 0.0, Pearson(nil, nil), 1e-12)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.6, Clamp(0.2, 0.6, 0.92))
	assert.Equal(t, 0.92, Clamp(1.5, 0.6, 0.92))
	assert.Equal(t, 0.75, Clamp(0.75, 0.6, 0.92))
}
