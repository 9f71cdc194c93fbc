package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
	phaseDuration *prometheus.HistogramVec
	phaseRuns     *prometheus.CounterVec
	fitness       *prometheus.GaugeVec
	generation    *prometheus.GaugeVec
	balance       prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paperpulse_messages_sent_total",
				Help: "Total number of ticks sent to a backend",
			},
			[]string{"backend", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paperpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "paperpulse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paperpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		phaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paperpulse_phase_duration_seconds",
				Help:    "Duration of engine phases in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		phaseRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paperpulse_phase_runs_total",
				Help: "Engine phase executions by outcome",
			},
			[]string{"phase", "outcome"},
		),
		fitness: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "paperpulse_fitness_score",
				Help: "Latest evolution fitness score per scope",
			},
			[]string{"scope"},
		),
		generation: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "paperpulse_evolution_generation",
				Help: "Current evolution generation per scope",
			},
			[]string{"scope"},
		),
		balance: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "paperpulse_portfolio_balance",
				Help: "Simulated portfolio balance",
			},
		),
	}
}

// RecordMessageSent records a tick sent to a backend.
func (r *Recorder) RecordMessageSent(backend, symbol string) {
	r.messagesSent.WithLabelValues(backend, symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordPhase records one engine phase execution.
func (r *Recorder) RecordPhase(phase string, success bool, seconds float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.phaseRuns.WithLabelValues(phase, outcome).Inc()
	r.phaseDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordFitness records the evolution fitness and generation for a scope.
func (r *Recorder) RecordFitness(scope string, fitness float64, generation int64) {
	r.fitness.WithLabelValues(scope).Set(fitness)
	r.generation.WithLabelValues(scope).Set(float64(generation))
}

// RecordBalance records the simulated portfolio balance.
func (r *Recorder) RecordBalance(balance float64) {
	r.balance.Set(balance)
}
