package usecase

import (
	"context"
	"fmt"
	"time"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
)

// TickProcessor routes streamed ticks to the configured sink and keeps the
// latest-price cache warm. It is the downstream of the realtime pipeline.
type TickProcessor struct {
	pub     drepo.TickPublisher
	store   drepo.TickStore
	cache   drepo.PriceCache
	metrics drepo.Metrics
	backend string
}

func NewTickProcessor(
	pub drepo.TickPublisher,
	store drepo.TickStore,
	cache drepo.PriceCache,
	metrics drepo.Metrics,
	backend string,
) *TickProcessor {
	return &TickProcessor{
		pub:     pub,
		store:   store,
		cache:   cache,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes a single streamed tick to the configured backend.
func (p *TickProcessor) Process(ctx context.Context, t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick is nil")
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, []*models.Tick{t})
	case "clickhouse":
		err = p.store.StoreBatch(ctx, []*models.Tick{t})
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process tick: %w", err)
	}

	_ = p.cache.SetLatest(ctx, t.Symbol, t.Price, t.Timestamp)
	p.metrics.RecordMessageSent(p.backend, t.Symbol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *TickProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
