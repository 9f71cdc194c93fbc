package usecase

import (
	"context"
	"math"
	"time"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/pkg/config"
	"PaperPulse/pkg/logger"
)

// Scoring constants. The timing term is a fixed placeholder pending a real
// timing model; the composite weights sum to 1.
const (
	directionEpsilon = 1e-4
	timingAccuracy   = 0.7

	weightDirection   = 0.4
	weightMagnitude   = 0.25
	weightTiming      = 0.2
	weightCalibration = 0.15
)

const resolveBatchLimit = 100

// Resolver scores predictions whose horizon elapsed against the realized
// price. Resolution is guarded store-side by resolved_at IS NULL, so a
// concurrent resolver scoring the same prediction is a harmless no-op.
type Resolver struct {
	prices  *priceSource
	preds   drepo.PredictionRepo
	health  *HealthReporter
	metrics drepo.Metrics
	log     *logger.Logger
	cfg     *config.Config
}

func NewResolver(
	cache drepo.PriceCache,
	store drepo.TickStore,
	preds drepo.PredictionRepo,
	health *HealthReporter,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *Resolver {
	return &Resolver{
		prices:  &priceSource{cache: cache, store: store},
		preds:   preds,
		health:  health,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
	}
}

func (r *Resolver) Resolve(ctx context.Context) *models.ResolveResult {
	now := time.Now().UTC()
	res := &models.ResolveResult{Success: true}

	due, err := r.preds.DueUnresolved(ctx, now, resolveBatchLimit)
	if err != nil {
		r.log.Error("due predictions query failed", logger.Error(err))
		r.metrics.RecordError("resolve_query")
		res.Success = false
		res.Error = err.Error()
		return res
	}

	var scoreSum float64
	for _, p := range due {
		price, ok := r.prices.Latest(ctx, p.Symbol)
		if !ok {
			res.Pending++ // no ground truth yet; retry next cycle
			continue
		}
		Score(p, price, now)
		applied, err := r.preds.Resolve(ctx, p)
		if err != nil {
			r.log.Error("resolution write failed",
				logger.String("prediction", p.ID),
				logger.Error(err))
			r.metrics.RecordError("resolve_write")
			res.Success = false
			res.Error = err.Error()
			continue
		}
		if !applied {
			continue // a concurrent resolver won
		}
		res.Resolved++
		scoreSum += p.CompositeScore
	}
	if res.Resolved > 0 {
		res.AvgScore = scoreSum / float64(res.Resolved)
	}

	r.reportAccuracy(ctx)
	return res
}

// Score fills every resolution field of p from the realized price. All fields
// are set together; persistence writes them in a single guarded statement.
func Score(p *models.Prediction, currentPrice float64, now time.Time) {
	actualMove := 0.0
	if p.EntryPrice != 0 {
		actualMove = (currentPrice - p.EntryPrice) / p.EntryPrice
	}

	actual := models.DirectionFlat
	if actualMove > directionEpsilon {
		actual = models.DirectionUp
	} else if actualMove < -directionEpsilon {
		actual = models.DirectionDown
	}

	magnitudeAccuracy := 0.5
	if p.PredictedMagnitude > 0 {
		magnitudeAccuracy = math.Max(0, 1-math.Abs(math.Abs(actualMove)-p.PredictedMagnitude)/p.PredictedMagnitude)
	}

	correct := p.PredictedDirection == actual
	outcome := 0.0
	directionTerm := 0.0
	if correct {
		outcome = 1.0
		directionTerm = 1.0
	}
	calibration := math.Max(0, 1-math.Abs(p.PredictedConfidence-outcome))

	p.ExitPrice = currentPrice
	p.ActualDirection = actual
	p.ActualMagnitude = math.Abs(actualMove)
	p.DirectionCorrect = correct
	p.MagnitudeAccuracy = magnitudeAccuracy
	p.TimingAccuracy = timingAccuracy
	p.CalibrationAccuracy = calibration
	p.CompositeScore = weightDirection*directionTerm +
		weightMagnitude*magnitudeAccuracy +
		weightTiming*timingAccuracy +
		weightCalibration*calibration
	resolvedAt := now
	p.ResolvedAt = &resolvedAt
}

// reportAccuracy upserts the rolling direction-accuracy vital from the most
// recently resolved predictions.
func (r *Resolver) reportAccuracy(ctx context.Context) {
	resolved, err := r.preds.RecentResolved(ctx, resolveBatchLimit)
	if err != nil || len(resolved) == 0 {
		return
	}
	correct := 0
	for _, p := range resolved {
		if p.DirectionCorrect {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(resolved))
	r.health.Report(ctx, models.VitalPredictionAccuracy, AccuracyStatus(accuracy), accuracy, nil)
}
