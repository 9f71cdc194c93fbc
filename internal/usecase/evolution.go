package usecase

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/internal/services/features"
	"PaperPulse/pkg/config"
	"PaperPulse/pkg/logger"
)

const (
	evolutionBatchLimit = 100
	evolutionMinSample  = 5
	mutationSpan        = 0.1 // perturbation drawn from [-span, +span]
)

// Evolver runs a (1+1)-style evolutionary step: one candidate gene vector,
// mutation rate inversely tied to fitness, no crossover. Fitness is the mean
// composite score of recently resolved predictions.
type Evolver struct {
	preds   drepo.PredictionRepo
	evo     drepo.EvolutionRepo
	health  *HealthReporter
	metrics drepo.Metrics
	log     *logger.Logger
	cfg     *config.Config

	mu  sync.Mutex
	rng *rand.Rand
}

func NewEvolver(
	preds drepo.PredictionRepo,
	evo drepo.EvolutionRepo,
	health *HealthReporter,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
	rng *rand.Rand,
) *Evolver {
	return &Evolver{preds: preds, evo: evo, health: health, metrics: metrics, log: log, cfg: cfg, rng: rng}
}

func (e *Evolver) Evolve(ctx context.Context) *models.EvolveResult {
	now := time.Now().UTC()
	res := &models.EvolveResult{Success: true}

	resolved, err := e.preds.RecentResolved(ctx, evolutionBatchLimit)
	if err != nil {
		return e.fail(ctx, res, err)
	}
	if len(resolved) < evolutionMinSample {
		res.Skipped = true
		e.health.Report(ctx, models.VitalEvolutionEngine, models.VitalHealthy, 0,
			map[string]string{"reason": "insufficient resolved predictions"})
		return res
	}

	var scoreSum float64
	correct := 0
	for _, p := range resolved {
		scoreSum += p.CompositeScore
		if p.DirectionCorrect {
			correct++
		}
	}
	fitness := scoreSum / float64(len(resolved))
	dirAccuracy := float64(correct) / float64(len(resolved))

	state, err := e.evo.Get(ctx, EvolutionScope)
	if err != nil {
		return e.fail(ctx, res, err)
	}

	rate := e.cfg.Engine.MutationRateHigh
	if fitness < 0.5 {
		rate = e.cfg.Engine.MutationRateLow
	}

	// Genes are visited in name order so a seeded run is reproducible.
	names := make([]string, 0, len(state.Genes))
	for name := range state.Genes {
		names = append(names, name)
	}
	sort.Strings(names)

	mutated := 0
	e.mu.Lock()
	for _, name := range names {
		if e.rng.Float64() >= rate {
			continue
		}
		delta := e.rng.Float64()*2*mutationSpan - mutationSpan
		state.Genes[name] = features.Clamp(state.Genes[name]+delta, 0, 1)
		mutated++
	}
	e.mu.Unlock()

	state.FitnessScore = fitness
	state.TotalPredictionsSeen += int64(len(resolved))
	if mutated > 0 {
		mutatedAt := now
		state.LastMutationAt = &mutatedAt
	}
	state.AdaptationHistory = append(state.AdaptationHistory, models.FitnessSnapshot{
		Timestamp:         now,
		Fitness:           fitness,
		DirectionAccuracy: dirAccuracy,
	})
	if limit := e.cfg.Engine.AdaptationCap; len(state.AdaptationHistory) > limit {
		state.AdaptationHistory = state.AdaptationHistory[len(state.AdaptationHistory)-limit:]
	}

	if err := e.evo.Advance(ctx, state); err != nil {
		return e.fail(ctx, res, err)
	}

	res.Generation = state.Generation
	res.Fitness = fitness
	res.Mutated = mutated

	e.metrics.RecordFitness(EvolutionScope, fitness, state.Generation)
	e.health.Report(ctx, models.VitalEvolutionEngine, models.VitalHealthy, fitness, nil)
	e.health.Report(ctx, models.VitalSystemFitness, AccuracyStatus(dirAccuracy), fitness, nil)
	return res
}

func (e *Evolver) fail(ctx context.Context, res *models.EvolveResult, err error) *models.EvolveResult {
	e.log.Error("evolution step failed", logger.Error(err))
	e.metrics.RecordError("evolve")
	res.Success = false
	res.Error = err.Error()
	e.health.Report(ctx, models.VitalEvolutionEngine, models.VitalDegraded, 0,
		map[string]string{"error": err.Error()})
	return res
}
