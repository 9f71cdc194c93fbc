package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperPulse/internal/domain/models"
)

func newTestTrader(store *fakeTickStore, preds *fakePredRepo, trades *fakeTradeRepo, portfolio *fakePortfolioRepo) *Trader {
	return NewTrader(
		nopPriceCache{}, store, preds, trades, portfolio, newFakeEvoRepo(),
		NewHealthReporter(newFakeVitalsRepo(), testLogger()),
		nopMetrics{}, testLogger(), testConfig(),
	)
}

func confidentPrediction(id string) *models.Prediction {
	return &models.Prediction{
		ID:                  id,
		Symbol:              "BTCUSDT",
		Class:               models.AssetCrypto,
		EntryPrice:          25,
		PredictedDirection:  models.DirectionUp,
		PredictedConfidence: 0.8,
		Horizon:             time.Minute,
		CreatedAt:           time.Now().UTC(),
	}
}

func TestPositionSize(t *testing.T) {
	// $1000 balance at a 5% risk budget and a $25 entry
	assert.InDelta(t, 2.0, PositionSize(50, 25), 1e-9)
	assert.InDelta(t, 0.0, PositionSize(1, 25), 1e-9)
	assert.InDelta(t, 0.0, PositionSize(50, 0), 1e-9)
	assert.InDelta(t, 3.3, PositionSize(100, 30), 1e-9)
}

func TestTraderOpensFromConfidentPrediction(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, []float64{25})
	preds := &fakePredRepo{}
	require.NoError(t, preds.Insert(context.Background(), confidentPrediction("p1")))
	trades := &fakeTradeRepo{}
	portfolio := newFakePortfolioRepo(1000)

	res := newTestTrader(store, preds, trades, portfolio).Trade(context.Background())

	require.Equal(t, 1, res.Opened)
	tr := trades.trades[0]
	assert.Equal(t, models.TradeLong, tr.Direction)
	assert.InDelta(t, 2.0, tr.Shares, 1e-9)
	assert.Equal(t, "p1", tr.PredictionID)
	assert.Equal(t, models.TradeOpen, tr.Status)
}

func TestTraderOnePositionPerPrediction(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, []float64{25})
	preds := &fakePredRepo{}
	require.NoError(t, preds.Insert(context.Background(), confidentPrediction("p1")))
	trades := &fakeTradeRepo{}
	portfolio := newFakePortfolioRepo(1000)
	trader := newTestTrader(store, preds, trades, portfolio)

	first := trader.Trade(context.Background())
	second := trader.Trade(context.Background())

	assert.Equal(t, 1, first.Opened)
	assert.Equal(t, 0, second.Opened, "duplicate signal must be a no-op")
	assert.Len(t, trades.trades, 1)
}

func TestTraderSkipsLowConfidenceAndFlat(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, []float64{25})
	preds := &fakePredRepo{}

	low := confidentPrediction("p1")
	low.PredictedConfidence = 0.5
	flat := confidentPrediction("p2")
	flat.PredictedDirection = models.DirectionFlat
	require.NoError(t, preds.Insert(context.Background(), low))
	require.NoError(t, preds.Insert(context.Background(), flat))

	trades := &fakeTradeRepo{}
	res := newTestTrader(store, preds, trades, newFakePortfolioRepo(1000)).Trade(context.Background())

	assert.Equal(t, 0, res.Opened)
	assert.Empty(t, trades.trades)
}

func TestTraderClosesAfterHoldingPeriod(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, []float64{30})
	trades := &fakeTradeRepo{}
	opened, err := trades.OpenTrade(context.Background(), &models.Trade{
		Symbol:       "BTCUSDT",
		Class:        models.AssetCrypto,
		Direction:    models.TradeLong,
		EntryPrice:   25,
		Shares:       2,
		EntryTime:    time.Now().UTC().Add(-2 * time.Minute),
		PredictionID: "p1",
		Status:       models.TradeOpen,
	})
	require.NoError(t, err)
	require.True(t, opened)
	portfolio := newFakePortfolioRepo(1000)

	res := newTestTrader(store, &fakePredRepo{}, trades, portfolio).Trade(context.Background())

	require.Equal(t, 1, res.Closed)
	assert.InDelta(t, 10.0, res.NetPnL, 1e-9) // (30-25)*2
	assert.InDelta(t, 1010.0, res.Balance, 1e-9)
	tr := trades.trades[0]
	assert.Equal(t, models.TradeClosed, tr.Status)
	assert.InDelta(t, 20.0, tr.PnLPercent, 1e-9)
}

func TestTraderShortPnLSign(t *testing.T) {
	store := newFakeTickStore()
	store.seed("BTCUSDT", models.AssetCrypto, []float64{30})
	trades := &fakeTradeRepo{}
	_, err := trades.OpenTrade(context.Background(), &models.Trade{
		Symbol:       "BTCUSDT",
		Class:        models.AssetCrypto,
		Direction:    models.TradeShort,
		EntryPrice:   25,
		Shares:       2,
		EntryTime:    time.Now().UTC().Add(-2 * time.Minute),
		PredictionID: "p1",
		Status:       models.TradeOpen,
	})
	require.NoError(t, err)

	res := newTestTrader(store, &fakePredRepo{}, trades, newFakePortfolioRepo(1000)).Trade(context.Background())

	assert.InDelta(t, -10.0, res.NetPnL, 1e-9, "short loses when price rises")
}

func TestTraderDefersCloseWithoutPrice(t *testing.T) {
	trades := &fakeTradeRepo{}
	_, err := trades.OpenTrade(context.Background(), &models.Trade{
		Symbol:       "BTCUSDT",
		Class:        models.AssetCrypto,
		Direction:    models.TradeLong,
		EntryPrice:   25,
		Shares:       2,
		EntryTime:    time.Now().UTC().Add(-2 * time.Minute),
		PredictionID: "p1",
		Status:       models.TradeOpen,
	})
	require.NoError(t, err)

	res := newTestTrader(newFakeTickStore(), &fakePredRepo{}, trades, newFakePortfolioRepo(1000)).Trade(context.Background())

	assert.Equal(t, 0, res.Closed)
	assert.Equal(t, models.TradeOpen, trades.trades[0].Status, "never close on a guessed price")
}

func TestPortfolioExtrema(t *testing.T) {
	portfolio := newFakePortfolioRepo(1000)
	ctx := context.Background()

	// balance sequence 1000 -> 1050 -> 980 -> 1100
	_, err := portfolio.Apply(ctx, 50, 1, 1)
	require.NoError(t, err)
	_, err = portfolio.Apply(ctx, -70, 1, 0)
	require.NoError(t, err)
	b, err := portfolio.Apply(ctx, 120, 1, 1)
	require.NoError(t, err)

	assert.InDelta(t, 1100.0, b.Balance, 1e-9)
	assert.InDelta(t, 1100.0, b.PeakBalance, 1e-9)
	assert.InDelta(t, 980.0, b.TroughBalance, 1e-9)
	assert.Equal(t, 3, b.TotalTrades)
	assert.Equal(t, 2, b.WinningTrades)
}
