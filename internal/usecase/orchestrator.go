package usecase

import (
	"context"
	"fmt"
	"time"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/pkg/config"
	"PaperPulse/pkg/logger"
)

// Orchestrator runs the engine phases strictly in sequence, because later
// phases consume earlier phases' writes within the same cycle. Each phase
// gets its own bounded-timeout context; phase failures are contained in the
// phase result and never abort the remaining phases.
type Orchestrator struct {
	collector  *Collector
	predictor  *Predictor
	resolver   *Resolver
	trader     *Trader
	correlator *Correlator
	evolver    *Evolver
	health     *HealthReporter
	metrics    drepo.Metrics
	log        *logger.Logger
	cfg        *config.Config
}

func NewOrchestrator(
	collector *Collector,
	predictor *Predictor,
	resolver *Resolver,
	trader *Trader,
	correlator *Correlator,
	evolver *Evolver,
	health *HealthReporter,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *Orchestrator {
	return &Orchestrator{
		collector:  collector,
		predictor:  predictor,
		resolver:   resolver,
		trader:     trader,
		correlator: correlator,
		evolver:    evolver,
		health:     health,
		metrics:    metrics,
		log:        log,
		cfg:        cfg,
	}
}

// Run executes the phases selected by action. A panic anywhere below is
// recovered here, reported as a failed response and a critical
// system-fitness vital, so the scheduler itself never crashes.
func (o *Orchestrator) Run(ctx context.Context, action string) (resp *models.CycleResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("cycle panic recovered", logger.Any("panic", r))
			o.metrics.RecordError("cycle_panic")
			o.health.Report(ctx, models.VitalSystemFitness, models.VitalCritical, 0,
				map[string]string{"panic": fmt.Sprintf("%v", r)})
			resp = nil
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()

	resp = &models.CycleResponse{Timestamp: time.Now().UTC()}

	switch action {
	case models.ActionCollect:
		resp.Collect = runPhase(o, ctx, "collect", o.collector.Collect)
	case models.ActionPredict:
		resp.Predict = runPhase(o, ctx, "predict", o.predictor.Predict)
	case models.ActionResolve:
		resp.Resolve = runPhase(o, ctx, "resolve", o.resolver.Resolve)
	case models.ActionTrade:
		resp.Trade = runPhase(o, ctx, "trade", o.trader.Trade)
	case models.ActionCorrelate:
		resp.Correlate = runPhase(o, ctx, "correlate", o.correlator.Correlate)
	case models.ActionEvolve:
		resp.Evolve = runPhase(o, ctx, "evolve", o.evolver.Evolve)
	case models.ActionFullCycle, "":
		resp.Collect = runPhase(o, ctx, "collect", o.collector.Collect)
		resp.Predict = runPhase(o, ctx, "predict", o.predictor.Predict)
		resp.Resolve = runPhase(o, ctx, "resolve", o.resolver.Resolve)
		resp.Trade = runPhase(o, ctx, "trade", o.trader.Trade)
		resp.Correlate = runPhase(o, ctx, "correlate", o.correlator.Correlate)
		resp.Evolve = runPhase(o, ctx, "evolve", o.evolver.Evolve)
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
	return resp, nil
}

type phaseResult interface {
	*models.CollectResult | *models.PredictResult | *models.ResolveResult |
		*models.TradeResult | *models.CorrelateResult | *models.EvolveResult
}

// runPhase wraps one phase call with a bounded-timeout child context and
// duration/outcome metrics.
func runPhase[R phaseResult](o *Orchestrator, ctx context.Context, name string, fn func(context.Context) R) R {
	pctx, cancel := context.WithTimeout(ctx, o.cfg.Engine.PhaseTimeout)
	defer cancel()

	start := time.Now()
	res := fn(pctx)
	elapsed := time.Since(start)

	success := phaseSucceeded(res)
	o.metrics.RecordPhase(name, success, elapsed.Seconds())
	o.log.Debug("phase finished",
		logger.String("phase", name),
		logger.Bool("success", success),
		logger.Duration("elapsed", elapsed))
	return res
}

func phaseSucceeded(res any) bool {
	switch r := res.(type) {
	case *models.CollectResult:
		return r.Success
	case *models.PredictResult:
		return r.Success
	case *models.ResolveResult:
		return r.Success
	case *models.TradeResult:
		return r.Success
	case *models.CorrelateResult:
		return r.Success
	case *models.EvolveResult:
		return r.Success
	}
	return false
}
