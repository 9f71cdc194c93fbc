package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/pkg/config"
	"PaperPulse/pkg/logger"
)

// In-memory repository fakes mirroring the conditional-write semantics of
// the SQL implementations.

type fakeTickStore struct {
	mu    sync.Mutex
	ticks map[string][]*models.Tick // newest first
	err   error
}

func newFakeTickStore() *fakeTickStore {
	return &fakeTickStore{ticks: map[string][]*models.Tick{}}
}

func (s *fakeTickStore) StoreBatch(_ context.Context, ticks []*models.Tick) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range ticks {
		s.ticks[t.Symbol] = append([]*models.Tick{t}, s.ticks[t.Symbol]...)
	}
	return nil
}

func (s *fakeTickStore) LatestN(_ context.Context, symbol string, n int) ([]*models.Tick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.ticks[symbol]
	if len(ts) > n {
		ts = ts[:n]
	}
	return ts, nil
}

func (s *fakeTickStore) LatestPrice(_ context.Context, symbol string) (float64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.ticks[symbol]
	if len(ts) == 0 {
		return 0, time.Time{}, errors.New("no ticks")
	}
	return ts[0].Price, ts[0].Timestamp, nil
}

func (s *fakeTickStore) Health(context.Context) error { return nil }
func (s *fakeTickStore) Close() error                 { return nil }

// seed loads a most-recent-first price series for a symbol.
func (s *fakeTickStore) seed(symbol string, class models.AssetClass, prices []float64) {
	now := time.Now().UTC()
	ticks := make([]*models.Tick, len(prices))
	for i, p := range prices {
		ticks[i] = &models.Tick{
			Symbol:    symbol,
			Class:     class,
			Price:     p,
			Timestamp: now.Add(-time.Duration(i) * time.Second),
			Source:    "test",
		}
	}
	s.mu.Lock()
	s.ticks[symbol] = ticks
	s.mu.Unlock()
}

type nopPriceCache struct{}

func (nopPriceCache) SetLatest(context.Context, string, float64, time.Time) error { return nil }
func (nopPriceCache) GetLatest(context.Context, string) (float64, time.Time, bool) {
	return 0, time.Time{}, false
}

type fakePredRepo struct {
	mu    sync.Mutex
	preds []*models.Prediction
}

func (r *fakePredRepo) Insert(_ context.Context, p *models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.preds = append(r.preds, &cp)
	return nil
}

// Queries return copies, like rows scanned from a real store; mutations only
// land through Resolve.
func (r *fakePredRepo) DueUnresolved(_ context.Context, now time.Time, limit int) ([]*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Prediction
	for _, p := range r.preds {
		if p.Due(now) {
			cp := *p
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakePredRepo) RecentUnresolved(_ context.Context, limit int) ([]*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Prediction
	for i := len(r.preds) - 1; i >= 0 && len(out) < limit; i-- {
		if !r.preds[i].Resolved() {
			cp := *r.preds[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePredRepo) RecentResolved(_ context.Context, limit int) ([]*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Prediction
	for i := len(r.preds) - 1; i >= 0 && len(out) < limit; i-- {
		if r.preds[i].Resolved() {
			cp := *r.preds[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePredRepo) Resolve(_ context.Context, p *models.Prediction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.preds {
		if stored.ID != p.ID {
			continue
		}
		if stored.Resolved() {
			return false, nil
		}
		*stored = *p
		return true, nil
	}
	return false, nil
}

type fakeTradeRepo struct {
	mu     sync.Mutex
	nextID int64
	trades []*models.Trade
}

func (r *fakeTradeRepo) OpenTrade(_ context.Context, t *models.Trade) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.trades {
		if existing.PredictionID == t.PredictionID {
			return false, nil
		}
	}
	r.nextID++
	cp := *t
	cp.ID = r.nextID
	r.trades = append(r.trades, &cp)
	return true, nil
}

func (r *fakeTradeRepo) OpenTrades(context.Context) ([]*models.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Trade
	for _, t := range r.trades {
		if t.Status == models.TradeOpen {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTradeRepo) CloseTrade(_ context.Context, t *models.Trade) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.trades {
		if stored.ID != t.ID {
			continue
		}
		if stored.Status != models.TradeOpen {
			return false, nil
		}
		*stored = *t
		return true, nil
	}
	return false, nil
}

type fakePortfolioRepo struct {
	mu      sync.Mutex
	balance models.PortfolioBalance
}

func newFakePortfolioRepo(initial float64) *fakePortfolioRepo {
	return &fakePortfolioRepo{balance: models.PortfolioBalance{
		Balance:       initial,
		PeakBalance:   initial,
		TroughBalance: initial,
	}}
}

func (r *fakePortfolioRepo) Get(context.Context) (*models.PortfolioBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := r.balance
	return &cp, nil
}

func (r *fakePortfolioRepo) Apply(_ context.Context, netPnL float64, closed, wins int) (*models.PortfolioBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := &r.balance
	b.Balance += netPnL
	if b.Balance > b.PeakBalance {
		b.PeakBalance = b.Balance
	}
	if b.Balance < b.TroughBalance {
		b.TroughBalance = b.Balance
	}
	b.TotalTrades += closed
	b.WinningTrades += wins
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

type fakeEvoRepo struct {
	mu    sync.Mutex
	state models.EvolutionState
}

func newFakeEvoRepo() *fakeEvoRepo {
	return &fakeEvoRepo{state: models.EvolutionState{
		Scope: EvolutionScope,
		Genes: models.DefaultGenes(),
	}}
}

func (r *fakeEvoRepo) Get(_ context.Context, scope string) (*models.EvolutionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := r.state
	cp.Genes = map[string]float64{}
	for k, v := range r.state.Genes {
		cp.Genes[k] = v
	}
	return &cp, nil
}

func (r *fakeEvoRepo) Advance(_ context.Context, s *models.EvolutionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Generation = r.state.Generation + 1
	r.state = *s
	return nil
}

type fakeCorrRepo struct {
	mu      sync.Mutex
	records map[string]*models.CorrelationRecord
}

func newFakeCorrRepo() *fakeCorrRepo {
	return &fakeCorrRepo{records: map[string]*models.CorrelationRecord{}}
}

func (r *fakeCorrRepo) Upsert(_ context.Context, rec *models.CorrelationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records[rec.SymbolA+"|"+rec.SymbolB+"|"+rec.Timeframe] = &cp
	return nil
}

type fakeVitalsRepo struct {
	mu     sync.Mutex
	vitals map[string]*models.Vital
}

func newFakeVitalsRepo() *fakeVitalsRepo {
	return &fakeVitalsRepo{vitals: map[string]*models.Vital{}}
}

func (r *fakeVitalsRepo) Upsert(_ context.Context, v *models.Vital) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.vitals[v.Name] = &cp
	return nil
}

func (r *fakeVitalsRepo) List(_ context.Context) ([]*models.Vital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Vital, 0, len(r.vitals))
	for _, v := range r.vitals {
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeVitalsRepo) get(name string) *models.Vital {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vitals[name]
}

type nopMetrics struct{}

func (nopMetrics) RecordMessageSent(string, string)     {}
func (nopMetrics) RecordError(string)                   {}
func (nopMetrics) RecordLastPrice(string, float64)      {}
func (nopMetrics) RecordLatency(string, float64)        {}
func (nopMetrics) RecordPhase(string, bool, float64)    {}
func (nopMetrics) RecordFitness(string, float64, int64) {}
func (nopMetrics) RecordBalance(float64)                {}

type fakeProvider struct {
	name  string
	class models.AssetClass
	ticks []*models.Tick
	err   error
}

func (p *fakeProvider) Name() string             { return p.name }
func (p *fakeProvider) Class() models.AssetClass { return p.class }
func (p *fakeProvider) Quote(context.Context, []string) ([]*models.Tick, error) {
	return p.ticks, p.err
}

func testLogger() *logger.Logger {
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		panic(err)
	}
	return l
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.Environment = "test"
	c.Backend.Type = "clickhouse"
	c.Providers.Crypto.Symbols = []string{"BTCUSDT"}
	c.Engine.TickWindow = 20
	c.Engine.MinTicks = 5
	c.Engine.Horizon = 60 * time.Second
	c.Engine.HoldingPeriod = 60 * time.Second
	c.Engine.RiskFraction = 0.05
	c.Engine.ConfidenceThreshold = 0.65
	c.Engine.MutationRateLow = 0.1
	c.Engine.MutationRateHigh = 0.02
	c.Engine.AdaptationCap = 100
	c.Engine.CorrelationWindow = 100
	c.Engine.CorrelationMinPoints = 20
	c.Engine.CoverageThreshold = 0.5
	c.Engine.SampleMin = 1
	c.Engine.SampleMax = 1
	c.Engine.InitialBalance = 1000
	c.Engine.PhaseTimeout = 10 * time.Second
	c.Providers.Timeout = time.Second
	return c
}

func sortedSymbols(ticks []*models.Tick) []string {
	out := make([]string, len(ticks))
	for i, t := range ticks {
		out[i] = t.Symbol
	}
	sort.Strings(out)
	return out
}

var (
	_ drepo.TickStore       = (*fakeTickStore)(nil)
	_ drepo.PriceCache      = nopPriceCache{}
	_ drepo.PredictionRepo  = (*fakePredRepo)(nil)
	_ drepo.TradeRepo       = (*fakeTradeRepo)(nil)
	_ drepo.PortfolioRepo   = (*fakePortfolioRepo)(nil)
	_ drepo.EvolutionRepo   = (*fakeEvoRepo)(nil)
	_ drepo.CorrelationRepo = (*fakeCorrRepo)(nil)
	_ drepo.VitalsRepo      = (*fakeVitalsRepo)(nil)
	_ drepo.Metrics         = nopMetrics{}
	_ drepo.Provider        = (*fakeProvider)(nil)
)
