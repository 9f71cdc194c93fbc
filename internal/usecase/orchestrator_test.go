package usecase

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
)

func newTestOrchestrator(vitals *fakeVitalsRepo) *Orchestrator {
	cfg := testConfig()
	store := newFakeTickStore()
	preds := &fakePredRepo{}
	health := NewHealthReporter(vitals, testLogger())
	log := testLogger()
	m := nopMetrics{}

	providers := []drepo.Provider{
		&fakeProvider{name: "binance", class: models.AssetCrypto,
			ticks: []*models.Tick{tick("BTCUSDT", "binance", 50000)}},
	}

	return NewOrchestrator(
		NewCollector(providers, store, nil, nopPriceCache{}, nil, health, m, log, cfg),
		NewPredictor(store, preds, newFakeEvoRepo(), health, m, log, cfg, rand.New(rand.NewSource(1))),
		NewResolver(nopPriceCache{}, store, preds, health, m, log, cfg),
		NewTrader(nopPriceCache{}, store, preds, &fakeTradeRepo{}, newFakePortfolioRepo(1000), newFakeEvoRepo(), health, m, log, cfg),
		NewCorrelator(store, newFakeCorrRepo(), health, m, log, cfg),
		NewEvolver(preds, newFakeEvoRepo(), health, m, log, cfg, rand.New(rand.NewSource(2))),
		health, m, log, cfg,
	)
}

func TestRunFullCycleExecutesAllPhases(t *testing.T) {
	o := newTestOrchestrator(newFakeVitalsRepo())

	resp, err := o.Run(context.Background(), models.ActionFullCycle)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotNil(t, resp.Collect)
	assert.NotNil(t, resp.Predict)
	assert.NotNil(t, resp.Resolve)
	assert.NotNil(t, resp.Trade)
	assert.NotNil(t, resp.Correlate)
	assert.NotNil(t, resp.Evolve)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestRunSinglePhase(t *testing.T) {
	o := newTestOrchestrator(newFakeVitalsRepo())

	resp, err := o.Run(context.Background(), models.ActionCollect)

	require.NoError(t, err)
	assert.NotNil(t, resp.Collect)
	assert.Nil(t, resp.Predict)
	assert.Nil(t, resp.Trade)
}

func TestRunDefaultsToFullCycle(t *testing.T) {
	o := newTestOrchestrator(newFakeVitalsRepo())

	resp, err := o.Run(context.Background(), "")

	require.NoError(t, err)
	assert.NotNil(t, resp.Collect)
	assert.NotNil(t, resp.Evolve)
}

func TestRunRejectsUnknownAction(t *testing.T) {
	o := newTestOrchestrator(newFakeVitalsRepo())

	_, err := o.Run(context.Background(), "reboot")

	assert.Error(t, err)
}

func TestRunRecoversPanic(t *testing.T) {
	vitals := newFakeVitalsRepo()
	o := newTestOrchestrator(vitals)
	o.predictor = nil // force a panic inside the predict phase

	resp, err := o.Run(context.Background(), models.ActionPredict)

	require.Error(t, err)
	assert.Nil(t, resp)
	v := vitals.get(models.VitalSystemFitness)
	require.NotNil(t, v)
	assert.Equal(t, models.VitalCritical, v.Status)
}
