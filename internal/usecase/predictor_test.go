package usecase

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperPulse/internal/domain/models"
)

func newTestPredictor(store *fakeTickStore, preds *fakePredRepo) *Predictor {
	return NewPredictor(
		store, preds, newFakeEvoRepo(),
		NewHealthReporter(newFakeVitalsRepo(), testLogger()),
		nopMetrics{}, testLogger(), testConfig(),
		rand.New(rand.NewSource(42)),
	)
}

func risingPrices(n int, lo, hi float64) []float64 {
	// most-recent-first: newest price is hi
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = hi - float64(i)*step
	}
	return out
}

func TestPredictorRisingTrend(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, risingPrices(20, 100, 105))
	preds := &fakePredRepo{}

	res := newTestPredictor(store, preds).Predict(context.Background())

	require.True(t, res.Success)
	require.Equal(t, 1, res.Predictions)
	p := preds.preds[0]
	assert.Equal(t, models.DirectionUp, p.PredictedDirection)
	assert.GreaterOrEqual(t, p.PredictedConfidence, 0.6)
	assert.LessOrEqual(t, p.PredictedConfidence, 0.92)
	assert.Greater(t, p.PredictedMagnitude, 0.0)
	assert.InDelta(t, 105, p.EntryPrice, 1e-9)
	assert.Equal(t, 20, p.Conditions.SampleSize)
}

func TestPredictorFallingTrend(t *testing.T) {
	store := newFakeTickStore()
	falling := risingPrices(20, 100, 105)
	// reverse: newest price is lowest
	for i, j := 0, len(falling)-1; i < j; i, j = i+1, j-1 {
		falling[i], falling[j] = falling[j], falling[i]
	}
	store.seed("BTCUSDT", models.AssetCrypto, falling)
	preds := &fakePredRepo{}

	res := newTestPredictor(store, preds).Predict(context.Background())

	require.Equal(t, 1, res.Predictions)
	assert.Equal(t, models.DirectionDown, preds.preds[0].PredictedDirection)
}

func TestPredictorSkipsThinWindow(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, []float64{100, 101, 102})
	preds := &fakePredRepo{}

	res := newTestPredictor(store, preds).Predict(context.Background())

	assert.True(t, res.Success, "insufficient evidence is not an error")
	assert.Equal(t, 0, res.Predictions)
	assert.Empty(t, preds.preds)
}

func TestPredictorDeterministicSample(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, risingPrices(20, 100, 105))
	store.seed("ETHUSDT", models.AssetCrypto, risingPrices(20, 50, 52))

	cfg := testConfig()
	cfg.Providers.Crypto.Symbols = []string{"BTCUSDT", "ETHUSDT"}

	run := func() []string {
		preds := &fakePredRepo{}
		p := NewPredictor(
			store, preds, newFakeEvoRepo(),
			NewHealthReporter(newFakeVitalsRepo(), testLogger()),
			nopMetrics{}, testLogger(), cfg,
			rand.New(rand.NewSource(7)),
		)
		res := p.Predict(context.Background())
		return res.Symbols
	}

	assert.Equal(t, run(), run(), "same seed must choose the same symbols")
}
