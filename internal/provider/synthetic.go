package provider

import (
	"math/rand"
	"sync"
	"time"

	"PaperPulse/internal/domain/models"
)

// SyntheticWalk fabricates small random-walk ticks for symbols no live feed
// covered. Disabled by default: fabricated observations poison the resolver
// and the evolution loop, which must only learn from ground truth. Kept
// behind the allow_synthetic flag for offline demos.
type SyntheticWalk struct {
	mu   sync.Mutex
	rng  *rand.Rand
	last map[string]float64
	base map[string]float64
}

// NewSyntheticWalk creates a deterministic walk from the given seed.
func NewSyntheticWalk(seed int64, basePrices map[string]float64) *SyntheticWalk {
	if basePrices == nil {
		basePrices = map[string]float64{}
	}
	return &SyntheticWalk{
		rng:  rand.New(rand.NewSource(seed)),
		last: make(map[string]float64),
		base: basePrices,
	}
}

// Next returns the walk's next tick for a symbol: the previous price moved by
// a uniform step in [-0.1%, +0.1%].
func (w *SyntheticWalk) Next(symbol string, class models.AssetClass, now time.Time) *models.Tick {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, ok := w.last[symbol]
	if !ok {
		prev = w.base[symbol]
		if prev <= 0 {
			prev = 100
		}
	}
	step := (w.rng.Float64()*2 - 1) * 0.001
	price := prev * (1 + step)
	w.last[symbol] = price

	return &models.Tick{
		Symbol:    symbol,
		Class:     class,
		Price:     price,
		Timestamp: now,
		Source:    models.SourceSynthetic,
	}
}
