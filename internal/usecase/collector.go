package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/internal/market"
	"PaperPulse/internal/provider"
	"PaperPulse/pkg/config"
	"PaperPulse/pkg/logger"
)

// Collector fans out to one provider per open asset class, deduplicates the
// observations by symbol, and appends the result to the tick sink. Providers
// fail independently: a dead feed contributes zero ticks, never an aborted
// cycle.
type Collector struct {
	providers []drepo.Provider
	store     drepo.TickStore
	publisher drepo.TickPublisher // nil in direct-clickhouse mode
	cache     drepo.PriceCache
	synth     *provider.SyntheticWalk // nil unless synthetic fallback enabled
	health    *HealthReporter
	metrics   drepo.Metrics
	log       *logger.Logger
	cfg       *config.Config
}

func NewCollector(
	providers []drepo.Provider,
	store drepo.TickStore,
	publisher drepo.TickPublisher,
	cache drepo.PriceCache,
	synth *provider.SyntheticWalk,
	health *HealthReporter,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *Collector {
	return &Collector{
		providers: providers,
		store:     store,
		publisher: publisher,
		cache:     cache,
		synth:     synth,
		health:    health,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
	}
}

type quoteResult struct {
	source string
	ticks  []*models.Tick
	err    error
}

func (c *Collector) Collect(ctx context.Context) *models.CollectResult {
	now := time.Now().UTC()
	open := map[models.AssetClass]bool{}
	expected := map[string]models.AssetClass{}
	for _, class := range market.OpenClasses(now) {
		open[class] = true
		for _, sym := range c.cfg.Universe(string(class)) {
			expected[sym] = class
		}
	}

	results := make(chan quoteResult, len(c.providers))
	var wg sync.WaitGroup
	for _, p := range c.providers {
		if !open[p.Class()] {
			continue
		}
		wg.Add(1)
		go func(p drepo.Provider) {
			defer wg.Done()
			qctx, cancel := context.WithTimeout(ctx, c.cfg.Providers.Timeout)
			defer cancel()
			ticks, err := p.Quote(qctx, c.cfg.Universe(string(p.Class())))
			results <- quoteResult{source: p.Name(), ticks: ticks, err: err}
		}(p)
	}
	wg.Wait()
	close(results)

	// First successful observation per symbol wins.
	seen := map[string]*models.Tick{}
	sources := map[string]bool{}
	for r := range results {
		if r.err != nil {
			c.log.Warn("provider failed",
				logger.String("provider", r.source),
				logger.Error(r.err))
			c.metrics.RecordError("provider_" + r.source)
			continue
		}
		for _, t := range r.ticks {
			if _, dup := seen[t.Symbol]; dup {
				continue
			}
			seen[t.Symbol] = t
			sources[t.Source] = true
		}
	}
	realTicks := len(seen)

	if c.synth != nil && c.cfg.Engine.AllowSynthetic {
		for sym, class := range expected {
			if _, ok := seen[sym]; ok {
				continue
			}
			t := c.synth.Next(sym, class, now)
			seen[sym] = t
			sources[t.Source] = true
		}
	}

	ticks := make([]*models.Tick, 0, len(seen))
	for _, t := range seen {
		ticks = append(ticks, t)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Symbol < ticks[j].Symbol })

	res := &models.CollectResult{
		Success:   true,
		Ticks:     len(ticks),
		RealTicks: realTicks,
		Sources:   sortedKeys(sources),
	}

	if len(ticks) > 0 {
		if err := c.sink(ctx, ticks); err != nil {
			c.log.Error("tick sink failed", logger.Error(err))
			c.metrics.RecordError("tick_sink")
			res.Success = false
			res.Error = err.Error()
			c.health.Report(ctx, models.VitalMarketCollector, models.VitalDegraded, 0,
				map[string]string{"error": err.Error()})
			return res
		}
		for _, t := range ticks {
			_ = c.cache.SetLatest(ctx, t.Symbol, t.Price, t.Timestamp)
			c.metrics.RecordLastPrice(t.Symbol, t.Price)
		}
	}

	coverage := 1.0
	if len(expected) > 0 {
		coverage = float64(realTicks) / float64(len(expected))
	}
	status := models.VitalHealthy
	if coverage < c.cfg.Engine.CoverageThreshold {
		status = models.VitalDegraded
	}
	c.health.Report(ctx, models.VitalMarketCollector, status, coverage, map[string]string{
		"expected": fmt.Sprintf("%d", len(expected)),
		"real":     fmt.Sprintf("%d", realTicks),
	})
	return res
}

func (c *Collector) sink(ctx context.Context, ticks []*models.Tick) error {
	if c.publisher != nil {
		if err := c.publisher.PublishBatch(ctx, ticks); err != nil {
			return fmt.Errorf("publish ticks: %w", err)
		}
		for _, t := range ticks {
			c.metrics.RecordMessageSent("kafka", t.Symbol)
		}
		return nil
	}
	if err := c.store.StoreBatch(ctx, ticks); err != nil {
		return fmt.Errorf("store ticks: %w", err)
	}
	for _, t := range ticks {
		c.metrics.RecordMessageSent("clickhouse", t.Symbol)
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
