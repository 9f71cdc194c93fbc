package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperPulse/internal/domain/models"
)

func newTestResolver(store *fakeTickStore, preds *fakePredRepo) *Resolver {
	return NewResolver(
		nopPriceCache{}, store, preds,
		NewHealthReporter(newFakeVitalsRepo(), testLogger()),
		nopMetrics{}, testLogger(), testConfig(),
	)
}

func duePrediction(id string, entry float64) *models.Prediction {
	return &models.Prediction{
		ID:                  id,
		Symbol:              "BTCUSDT",
		Class:               models.AssetCrypto,
		EntryPrice:          entry,
		PredictedDirection:  models.DirectionUp,
		PredictedMagnitude:  0.01,
		PredictedConfidence: 0.8,
		Horizon:             time.Minute,
		CreatedAt:           time.Now().UTC().Add(-2 * time.Minute),
	}
}

func TestScoreCorrectUpMove(t *testing.T) {
	p := duePrediction("p1", 100)
	now := time.Now().UTC()

	Score(p, 100.5, now) // +0.5%

	assert.True(t, p.DirectionCorrect)
	assert.Equal(t, models.DirectionUp, p.ActualDirection)
	assert.GreaterOrEqual(t, p.CompositeScore, 0.4, "direction term alone guarantees 0.4")
	assert.NotNil(t, p.ResolvedAt)
}

func TestScoreBounds(t *testing.T) {
	moves := []float64{99.0, 99.99, 100.0, 100.01, 101.0, 150.0, 50.0}
	for _, exit := range moves {
		p := duePrediction("p", 100)
		Score(p, exit, time.Now().UTC())
		assert.GreaterOrEqual(t, p.CompositeScore, 0.0, "exit %v", exit)
		assert.LessOrEqual(t, p.CompositeScore, 1.0, "exit %v", exit)
		assert.GreaterOrEqual(t, p.MagnitudeAccuracy, 0.0, "exit %v", exit)
		assert.LessOrEqual(t, p.MagnitudeAccuracy, 1.0, "exit %v", exit)
		assert.GreaterOrEqual(t, p.CalibrationAccuracy, 0.0, "exit %v", exit)
		assert.LessOrEqual(t, p.CalibrationAccuracy, 1.0, "exit %v", exit)
	}
}

func TestScoreFlatMove(t *testing.T) {
	p := duePrediction("p", 100)
	Score(p, 100.000001, time.Now().UTC()) // below the direction threshold

	assert.Equal(t, models.DirectionFlat, p.ActualDirection)
	assert.False(t, p.DirectionCorrect)
}

func TestScoreZeroMagnitudeNeutral(t *testing.T) {
	p := duePrediction("p", 100)
	p.PredictedMagnitude = 0
	Score(p, 101, time.Now().UTC())

	assert.InDelta(t, 0.5, p.MagnitudeAccuracy, 1e-9)
}

func TestResolveIdempotent(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, []float64{100.5})
	preds := &fakePredRepo{}
	require.NoError(t, preds.Insert(context.Background(), duePrediction("p1", 100)))

	r := newTestResolver(store, preds)

	first := r.Resolve(context.Background())
	require.Equal(t, 1, first.Resolved)
	score := preds.preds[0].CompositeScore

	// The price moves, then the same cycle is replayed. The guarded write
	// must leave the original resolution untouched.
	store.seed("BTCUSDT", models.AssetCrypto, []float64{120})
	second := r.Resolve(context.Background())
	assert.Equal(t, 0, second.Resolved)
	assert.Equal(t, score, preds.preds[0].CompositeScore)
	assert.InDelta(t, 100.5, preds.preds[0].ExitPrice, 1e-9)
}

func TestResolveDefersWithoutTicks(t *testing.T) {
	preds := &fakePredRepo{}
	require.NoError(t, preds.Insert(context.Background(), duePrediction("p1", 100)))

	res := newTestResolver(newFakeTickStore(), preds).Resolve(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, 0, res.Resolved)
	assert.Equal(t, 1, res.Pending)
	assert.False(t, preds.preds[0].Resolved(), "never resolve without ground truth")
}
