package usecase

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/internal/market"
	"PaperPulse/internal/services/features"
	"PaperPulse/pkg/config"
	"PaperPulse/pkg/logger"
)

// EvolutionScope is the key of the single global adaptive-parameter row.
const EvolutionScope = "global"

// Predictor samples a few open-market symbols per cycle and issues a
// short-horizon directional forecast from momentum/volatility statistics.
// The RNG is injected so tests can pin the symbol sample.
type Predictor struct {
	store   drepo.TickStore
	preds   drepo.PredictionRepo
	evo     drepo.EvolutionRepo
	health  *HealthReporter
	metrics drepo.Metrics
	log     *logger.Logger
	cfg     *config.Config

	mu  sync.Mutex
	rng *rand.Rand
}

func NewPredictor(
	store drepo.TickStore,
	preds drepo.PredictionRepo,
	evo drepo.EvolutionRepo,
	health *HealthReporter,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
	rng *rand.Rand,
) *Predictor {
	return &Predictor{
		store:   store,
		preds:   preds,
		evo:     evo,
		health:  health,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
		rng:     rng,
	}
}

func (p *Predictor) Predict(ctx context.Context) *models.PredictResult {
	now := time.Now().UTC()
	res := &models.PredictResult{Success: true, Symbols: []string{}}

	candidates := p.sample(now)
	if len(candidates) == 0 {
		p.health.Report(ctx, models.VitalPredictionEngine, models.VitalHealthy, 0, nil)
		return res
	}

	gain := p.confidenceGain(ctx)

	for sym, class := range candidates {
		pred, err := p.forecast(ctx, sym, class, now, gain)
		if err != nil {
			p.log.Warn("forecast failed",
				logger.String("symbol", sym),
				logger.Error(err))
			p.metrics.RecordError("predict")
			continue
		}
		if pred == nil {
			continue // insufficient evidence, not an error
		}
		if err := p.preds.Insert(ctx, pred); err != nil {
			p.log.Error("prediction insert failed",
				logger.String("symbol", sym),
				logger.Error(err))
			p.metrics.RecordError("prediction_insert")
			res.Success = false
			res.Error = err.Error()
			continue
		}
		res.Predictions++
		res.Symbols = append(res.Symbols, sym)
	}

	status := models.VitalHealthy
	if !res.Success {
		status = models.VitalDegraded
	}
	p.health.Report(ctx, models.VitalPredictionEngine, status, float64(res.Predictions), nil)
	return res
}

// sample picks a random subset of 1–3 symbols (bounded by config) among the
// symbols whose market is currently open.
func (p *Predictor) sample(now time.Time) map[string]models.AssetClass {
	var pool []string
	classOf := map[string]models.AssetClass{}
	for _, class := range market.OpenClasses(now) {
		for _, sym := range p.cfg.Universe(string(class)) {
			pool = append(pool, sym)
			classOf[sym] = class
		}
	}
	if len(pool) == 0 {
		return nil
	}

	p.mu.Lock()
	p.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	span := p.cfg.Engine.SampleMax - p.cfg.Engine.SampleMin + 1
	k := p.cfg.Engine.SampleMin
	if span > 1 {
		k += p.rng.Intn(span)
	}
	p.mu.Unlock()

	if k > len(pool) {
		k = len(pool)
	}
	picked := map[string]models.AssetClass{}
	for _, sym := range pool[:k] {
		picked[sym] = classOf[sym]
	}
	return picked
}

// forecast returns nil without error when the tick window is too thin.
func (p *Predictor) forecast(ctx context.Context, symbol string, class models.AssetClass, now time.Time, gain float64) (*models.Prediction, error) {
	ticks, err := p.store.LatestN(ctx, symbol, p.cfg.Engine.TickWindow)
	if err != nil {
		return nil, err
	}
	if len(ticks) < p.cfg.Engine.MinTicks {
		return nil, nil
	}

	prices := features.Prices(ticks) // most-recent-first
	latest := prices[0]
	avg := features.Mean(prices)
	momentum := features.Momentum(latest, avg)
	volatility := features.PopStdDev(features.StepReturns(prices))
	trend := features.TrendStrength(momentum, volatility)

	direction := models.DirectionFlat
	if momentum > 0 {
		direction = models.DirectionUp
	} else if momentum < 0 {
		direction = models.DirectionDown
	}

	confidence := features.Clamp(0.55+math.Min(0.35, trend*gain), 0.6, 0.92)

	return &models.Prediction{
		ID:                  uuid.NewString(),
		Symbol:              symbol,
		Class:               class,
		EntryPrice:          latest,
		PredictedDirection:  direction,
		PredictedMagnitude:  math.Abs(momentum) + volatility,
		PredictedConfidence: confidence,
		Horizon:             p.cfg.Engine.Horizon,
		Conditions: models.MarketConditions{
			Momentum:      momentum,
			Volatility:    volatility,
			TrendStrength: trend,
			AvgPrice:      avg,
			SampleSize:    len(ticks),
		},
		CreatedAt: now,
	}, nil
}

// confidenceGain scales trend strength into confidence. At the neutral gene
// value 0.5 the gain is exactly 0.1.
func (p *Predictor) confidenceGain(ctx context.Context) float64 {
	state, err := p.evo.Get(ctx, EvolutionScope)
	if err != nil {
		p.log.Warn("evolution state unavailable, using neutral gain", logger.Error(err))
		return 0.1
	}
	return 0.1 * (0.5 + state.Gene(models.GeneConfidenceGain))
}
