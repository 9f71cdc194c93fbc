package repository

import (
	"context"
	"time"

	"PaperPulse/internal/domain/models"
)

// TickStore is the append-only tick history.
type TickStore interface {
	StoreBatch(ctx context.Context, ticks []*models.Tick) error
	LatestN(ctx context.Context, symbol string, n int) ([]*models.Tick, error)
	LatestPrice(ctx context.Context, symbol string) (float64, time.Time, error)
	Health(ctx context.Context) error
	Close() error
}

// PriceCache is a best-effort latest-price lookaside. A miss is not an error;
// callers fall through to the TickStore.
type PriceCache interface {
	SetLatest(ctx context.Context, symbol string, price float64, at time.Time) error
	GetLatest(ctx context.Context, symbol string) (float64, time.Time, bool)
}

// TickPublisher emits collected ticks onto the event bus.
type TickPublisher interface {
	PublishBatch(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

// PredictionRepo persists forecasts and their resolutions.
type PredictionRepo interface {
	Insert(ctx context.Context, p *models.Prediction) error
	// DueUnresolved returns unresolved predictions whose horizon elapsed at now.
	DueUnresolved(ctx context.Context, now time.Time, limit int) ([]*models.Prediction, error)
	// RecentUnresolved returns the newest unresolved predictions.
	RecentUnresolved(ctx context.Context, limit int) ([]*models.Prediction, error)
	// RecentResolved returns the newest resolved predictions.
	RecentResolved(ctx context.Context, limit int) ([]*models.Prediction, error)
	// Resolve writes all resolution fields in one statement guarded by
	// resolved_at IS NULL. Returns false when the prediction was already
	// resolved (a concurrent resolver won).
	Resolve(ctx context.Context, p *models.Prediction) (bool, error)
}

// TradeRepo persists simulated positions.
type TradeRepo interface {
	// OpenTrade inserts a position unless one already exists for the
	// prediction. Returns false when the insert was a duplicate no-op.
	OpenTrade(ctx context.Context, t *models.Trade) (bool, error)
	OpenTrades(ctx context.Context) ([]*models.Trade, error)
	// CloseTrade marks a trade closed; guarded by status='open'.
	CloseTrade(ctx context.Context, t *models.Trade) (bool, error)
}

// PortfolioRepo maintains the singleton balance ledger.
type PortfolioRepo interface {
	Get(ctx context.Context) (*models.PortfolioBalance, error)
	// Apply adds netPnL and adjusts extrema and counters in one conditional
	// update against the singleton row.
	Apply(ctx context.Context, netPnL float64, closed, wins int) (*models.PortfolioBalance, error)
}

// EvolutionRepo maintains the adaptive-parameter state per scope.
type EvolutionRepo interface {
	Get(ctx context.Context, scope string) (*models.EvolutionState, error)
	// Advance persists the next generation; generation is incremented by the
	// store so it strictly increases even under overlapping cycles.
	Advance(ctx context.Context, s *models.EvolutionState) error
}

// CorrelationRepo upserts pairwise statistics by (a, b, timeframe).
type CorrelationRepo interface {
	Upsert(ctx context.Context, r *models.CorrelationRecord) error
}

// VitalsRepo upserts named health records.
type VitalsRepo interface {
	Upsert(ctx context.Context, v *models.Vital) error
	List(ctx context.Context) ([]*models.Vital, error)
}

// Provider is one external price feed covering a set of symbols.
type Provider interface {
	Name() string
	Class() models.AssetClass
	Quote(ctx context.Context, symbols []string) ([]*models.Tick, error)
}

// MarketStream is a push-based live feed (supplementary ingestion path).
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics abstracts the Prometheus recorder.
type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordPhase(phase string, success bool, seconds float64)
	RecordFitness(scope string, fitness float64, generation int64)
	RecordBalance(balance float64)
}
