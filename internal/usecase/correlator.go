package usecase

import (
	"context"
	"fmt"
	"time"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/internal/services/features"
	"PaperPulse/pkg/config"
	"PaperPulse/pkg/logger"
)

// Correlator maintains pairwise Pearson statistics for a hand-curated pair
// list over a rolling tick window. Insufficient data is a silent skip.
type Correlator struct {
	store   drepo.TickStore
	corrs   drepo.CorrelationRepo
	health  *HealthReporter
	metrics drepo.Metrics
	log     *logger.Logger
	cfg     *config.Config
}

func NewCorrelator(
	store drepo.TickStore,
	corrs drepo.CorrelationRepo,
	health *HealthReporter,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *Correlator {
	return &Correlator{store: store, corrs: corrs, health: health, metrics: metrics, log: log, cfg: cfg}
}

func (c *Correlator) Correlate(ctx context.Context) *models.CorrelateResult {
	now := time.Now().UTC()
	res := &models.CorrelateResult{Success: true}
	window := c.cfg.Engine.CorrelationWindow
	timeframe := fmt.Sprintf("last_%d_ticks", window)

	for _, pair := range c.cfg.Engine.CorrelationPairs {
		a, err := c.series(ctx, pair[0], window)
		if err != nil {
			c.fail(res, pair, err)
			continue
		}
		b, err := c.series(ctx, pair[1], window)
		if err != nil {
			c.fail(res, pair, err)
			continue
		}

		// Align to the shorter series.
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		if n < c.cfg.Engine.CorrelationMinPoints {
			res.Skipped++
			continue
		}
		a, b = a[:n], b[:n]

		rec := &models.CorrelationRecord{
			SymbolA:      pair[0],
			SymbolB:      pair[1],
			Timeframe:    timeframe,
			Coefficient:  features.Pearson(a, b),
			SampleSize:   n,
			CalculatedAt: now,
		}
		if err := c.corrs.Upsert(ctx, rec); err != nil {
			c.fail(res, pair, err)
			continue
		}
		res.Pairs++
	}

	status := models.VitalHealthy
	if !res.Success {
		status = models.VitalDegraded
	}
	c.health.Report(ctx, models.VitalCorrelationEngine, status, float64(res.Pairs), nil)
	return res
}

func (c *Correlator) series(ctx context.Context, symbol string, n int) ([]float64, error) {
	ticks, err := c.store.LatestN(ctx, symbol, n)
	if err != nil {
		return nil, err
	}
	return features.Prices(ticks), nil
}

func (c *Correlator) fail(res *models.CorrelateResult, pair [2]string, err error) {
	c.log.Warn("correlation pair failed",
		logger.String("pair", pair[0]+"/"+pair[1]),
		logger.Error(err))
	c.metrics.RecordError("correlate")
	res.Success = false
	res.Error = err.Error()
}
