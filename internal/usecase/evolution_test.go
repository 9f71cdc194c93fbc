package usecase

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperPulse/internal/domain/models"
)

func newTestEvolver(preds *fakePredRepo, evo *fakeEvoRepo, seed int64) *Evolver {
	return NewEvolver(
		preds, evo,
		NewHealthReporter(newFakeVitalsRepo(), testLogger()),
		nopMetrics{}, testLogger(), testConfig(),
		rand.New(rand.NewSource(seed)),
	)
}

func resolvedPrediction(id string, score float64, correct bool) *models.Prediction {
	now := time.Now().UTC()
	return &models.Prediction{
		ID:                 id,
		Symbol:             "BTCUSDT",
		Class:              models.AssetCrypto,
		EntryPrice:         100,
		PredictedDirection: models.DirectionUp,
		Horizon:            time.Minute,
		CreatedAt:          now.Add(-2 * time.Minute),
		DirectionCorrect:   correct,
		CompositeScore:     score,
		ResolvedAt:         &now,
	}
}

func seedResolved(t *testing.T, preds *fakePredRepo, n int, score float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		p := resolvedPrediction(string(rune('a'+i)), score, score >= 0.5)
		require.NoError(t, preds.Insert(context.Background(), p))
	}
}

func TestEvolveSkipsThinSample(t *testing.T) {
	preds := &fakePredRepo{}
	seedResolved(t, preds, 4, 0.7)
	evo := newFakeEvoRepo()

	res := newTestEvolver(preds, evo, 1).Evolve(context.Background())

	assert.True(t, res.Success)
	assert.True(t, res.Skipped)
	assert.Equal(t, int64(0), evo.state.Generation)
}

func TestEvolveAdvancesGeneration(t *testing.T) {
	preds := &fakePredRepo{}
	seedResolved(t, preds, 10, 0.7)
	evo := newFakeEvoRepo()
	e := newTestEvolver(preds, evo, 1)

	var lastGen int64
	for i := 0; i < 5; i++ {
		res := e.Evolve(context.Background())
		require.True(t, res.Success)
		require.False(t, res.Skipped)
		assert.Greater(t, res.Generation, lastGen, "generation must strictly increase")
		lastGen = res.Generation
		assert.InDelta(t, 0.7, res.Fitness, 1e-9)
	}
}

func TestEvolveGeneBounds(t *testing.T) {
	preds := &fakePredRepo{}
	seedResolved(t, preds, 10, 0.3) // low fitness, high mutation rate
	evo := newFakeEvoRepo()
	e := newTestEvolver(preds, evo, 99)

	for i := 0; i < 200; i++ {
		res := e.Evolve(context.Background())
		require.True(t, res.Success)
		for name, v := range evo.state.Genes {
			assert.GreaterOrEqual(t, v, 0.0, "gene %s cycle %d", name, i)
			assert.LessOrEqual(t, v, 1.0, "gene %s cycle %d", name, i)
		}
	}
	assert.Equal(t, int64(200), evo.state.Generation)
}

func TestEvolveHistoryCapped(t *testing.T) {
	preds := &fakePredRepo{}
	seedResolved(t, preds, 10, 0.7)
	evo := newFakeEvoRepo()
	e := newTestEvolver(preds, evo, 5)

	for i := 0; i < 120; i++ {
		require.True(t, e.Evolve(context.Background()).Success)
	}

	assert.Len(t, evo.state.AdaptationHistory, 100, "oldest snapshots evicted first")
}

func TestEvolveDeterministicWithSeed(t *testing.T) {
	run := func() map[string]float64 {
		preds := &fakePredRepo{}
		seedResolved(t, preds, 10, 0.3)
		evo := newFakeEvoRepo()
		e := newTestEvolver(preds, evo, 42)
		for i := 0; i < 20; i++ {
			e.Evolve(context.Background())
		}
		return evo.state.Genes
	}

	assert.Equal(t, run(), run())
}
