package usecase

import (
	"context"

	drepo "PaperPulse/internal/domain/repository"
)

// priceSource resolves the latest known price for a symbol, trying the
// lookaside cache before the tick store. A miss on both is not an error;
// callers defer the dependent work to the next cycle.
type priceSource struct {
	cache drepo.PriceCache
	store drepo.TickStore
}

func (s *priceSource) Latest(ctx context.Context, symbol string) (float64, bool) {
	if price, _, ok := s.cache.GetLatest(ctx, symbol); ok && price > 0 {
		return price, true
	}
	price, _, err := s.store.LatestPrice(ctx, symbol)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
