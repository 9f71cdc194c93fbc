package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/internal/provider"
)

func tick(symbol, source string, price float64) *models.Tick {
	return &models.Tick{
		Symbol:    symbol,
		Class:     models.AssetCrypto,
		Price:     price,
		Timestamp: time.Now().UTC(),
		Source:    source,
	}
}

func newTestCollector(providers []drepo.Provider, store *fakeTickStore, synth *provider.SyntheticWalk, vitals *fakeVitalsRepo, allowSynthetic bool) *Collector {
	cfg := testConfig()
	cfg.Engine.AllowSynthetic = allowSynthetic
	return NewCollector(
		providers, store, nil, nopPriceCache{}, synth,
		NewHealthReporter(vitals, testLogger()),
		nopMetrics{}, testLogger(), cfg,
	)
}

func TestCollectStoresTicks(t *testing.T) {
	store := newFakeTickStore()
	providers := []drepo.Provider{
		&fakeProvider{name: "binance", class: models.AssetCrypto,
			ticks: []*models.Tick{tick("BTCUSDT", "binance", 50000)}},
	}

	res := newTestCollector(providers, store, nil, newFakeVitalsRepo(), false).Collect(context.Background())

	require.True(t, res.Success)
	assert.Equal(t, 1, res.Ticks)
	assert.Equal(t, 1, res.RealTicks)
	assert.Equal(t, []string{"binance"}, res.Sources)
	price, _, err := store.LatestPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 50000, price, 1e-9)
}

func TestCollectFirstObservationWins(t *testing.T) {
	store := newFakeTickStore()
	providers := []drepo.Provider{
		&fakeProvider{name: "primary", class: models.AssetCrypto,
			ticks: []*models.Tick{tick("BTCUSDT", "primary", 50000)}},
		&fakeProvider{name: "secondary", class: models.AssetCrypto,
			ticks: []*models.Tick{tick("BTCUSDT", "secondary", 49000)}},
	}

	res := newTestCollector(providers, store, nil, newFakeVitalsRepo(), false).Collect(context.Background())

	assert.Equal(t, 1, res.Ticks, "duplicate symbols collapse to one observation")
	ticks, err := store.LatestN(context.Background(), "BTCUSDT", 10)
	require.NoError(t, err)
	require.Len(t, ticks, 1)
}

func TestCollectIsolatesProviderFailure(t *testing.T) {
	store := newFakeTickStore()
	providers := []drepo.Provider{
		&fakeProvider{name: "dead", class: models.AssetCrypto, err: errors.New("timeout")},
		&fakeProvider{name: "alive", class: models.AssetCrypto,
			ticks: []*models.Tick{tick("BTCUSDT", "alive", 50000)}},
	}

	res := newTestCollector(providers, store, nil, newFakeVitalsRepo(), false).Collect(context.Background())

	assert.True(t, res.Success, "a dead provider must not abort the cycle")
	assert.Equal(t, 1, res.Ticks)
}

func TestCollectNoSyntheticByDefault(t *testing.T) {
	store := newFakeTickStore()
	providers := []drepo.Provider{
		&fakeProvider{name: "dead", class: models.AssetCrypto, err: errors.New("timeout")},
	}
	vitals := newFakeVitalsRepo()

	res := newTestCollector(providers, store, nil, vitals, false).Collect(context.Background())

	assert.Equal(t, 0, res.Ticks, "no fabricated observations under the default policy")
	_, _, err := store.LatestPrice(context.Background(), "BTCUSDT")
	assert.Error(t, err)

	v := vitals.get(models.VitalMarketCollector)
	require.NotNil(t, v)
	assert.Equal(t, models.VitalDegraded, v.Status)
}

func TestCollectSyntheticFallbackWhenEnabled(t *testing.T) {
	store := newFakeTickStore()
	providers := []drepo.Provider{
		&fakeProvider{name: "dead", class: models.AssetCrypto, err: errors.New("timeout")},
	}
	synth := provider.NewSyntheticWalk(1, nil)

	res := newTestCollector(providers, store, synth, newFakeVitalsRepo(), true).Collect(context.Background())

	assert.Equal(t, 1, res.Ticks)
	assert.Equal(t, 0, res.RealTicks)
	ticks, err := store.LatestN(context.Background(), "BTCUSDT", 1)
	require.NoError(t, err)
	require.Len(t, ticks, 1)
	assert.Equal(t, models.SourceSynthetic, ticks[0].Source)
}

func TestCollectReportsCoverage(t *testing.T) {
	store := newFakeTickStore()
	providers := []drepo.Provider{
		&fakeProvider{name: "binance", class: models.AssetCrypto,
			ticks: []*models.Tick{tick("BTCUSDT", "binance", 50000)}},
	}
	vitals := newFakeVitalsRepo()

	newTestCollector(providers, store, nil, vitals, false).Collect(context.Background())

	v := vitals.get(models.VitalMarketCollector)
	require.NotNil(t, v)
	assert.Equal(t, models.VitalHealthy, v.Status)
	assert.InDelta(t, 1.0, v.Value, 1e-9)
}
