package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperPulse/internal/domain/models"
)

func newTestCorrelator(store *fakeTickStore, corrs *fakeCorrRepo) *Correlator {
	cfg := testConfig()
	cfg.Engine.CorrelationPairs = [][2]string{{"BTCUSDT", "ETHUSDT"}}
	return NewCorrelator(
		store, corrs,
		NewHealthReporter(newFakeVitalsRepo(), testLogger()),
		nopMetrics{}, testLogger(), cfg,
	)
}

func linSeries(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestCorrelatePerfectlyCorrelatedPair(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, linSeries(30, 100, 1))
	store.seed("ETHUSDT", models.AssetCrypto, linSeries(30, 50, 0.5))
	corrs := newFakeCorrRepo()

	res := newTestCorrelator(store, corrs).Correlate(context.Background())

	require.True(t, res.Success)
	require.Equal(t, 1, res.Pairs)
	rec := corrs.records["BTCUSDT|ETHUSDT|last_100_ticks"]
	require.NotNil(t, rec)
	assert.InDelta(t, 1.0, rec.Coefficient, 1e-9)
	assert.Equal(t, 30, rec.SampleSize)
}

func TestCorrelateInverselyCorrelatedPair(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, linSeries(30, 100, 1))
	store.seed("ETHUSDT", models.AssetCrypto, linSeries(30, 100, -1))
	corrs := newFakeCorrRepo()

	res := newTestCorrelator(store, corrs).Correlate(context.Background())

	require.Equal(t, 1, res.Pairs)
	assert.InDelta(t, -1.0, corrs.records["BTCUSDT|ETHUSDT|last_100_ticks"].Coefficient, 1e-9)
}

func TestCorrelateAlignsToShorterSeries(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, linSeries(60, 100, 1))
	store.seed("ETHUSDT", models.AssetCrypto, linSeries(25, 50, 0.5))
	corrs := newFakeCorrRepo()

	res := newTestCorrelator(store, corrs).Correlate(context.Background())

	require.Equal(t, 1, res.Pairs)
	assert.Equal(t, 25, corrs.records["BTCUSDT|ETHUSDT|last_100_ticks"].SampleSize)
}

func TestCorrelateSkipsThinSeries(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, linSeries(30, 100, 1))
	store.seed("ETHUSDT", models.AssetCrypto, linSeries(10, 50, 0.5)) // under min points
	corrs := newFakeCorrRepo()

	res := newTestCorrelator(store, corrs).Correlate(context.Background())

	assert.True(t, res.Success, "insufficient data is a silent skip")
	assert.Equal(t, 0, res.Pairs)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, corrs.records)
}
