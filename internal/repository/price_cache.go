package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"PaperPulse/internal/domain/repository"
	"PaperPulse/pkg/cache"
)

// CachedPriceLookup implements PriceCache on top of the layered cache.
// Values are stored as "price|unix_ms" strings so both cache layers handle
// them natively.
type CachedPriceLookup struct {
	svc cache.Service
	ttl time.Duration
}

// NewCachedPriceLookup creates a price cache with the given TTL.
func NewCachedPriceLookup(svc cache.Service, ttl time.Duration) repository.PriceCache {
	return &CachedPriceLookup{svc: svc, ttl: ttl}
}

func (c *CachedPriceLookup) SetLatest(ctx context.Context, symbol string, price float64, at time.Time) error {
	val := strconv.FormatFloat(price, 'f', -1, 64) + "|" + strconv.FormatInt(at.UnixMilli(), 10)
	return c.svc.Set(ctx, cache.Key("price", symbol), val, c.ttl)
}

func (c *CachedPriceLookup) GetLatest(ctx context.Context, symbol string) (float64, time.Time, bool) {
	var raw string
	if err := c.svc.Get(ctx, cache.Key("price", symbol), &raw); err != nil {
		return 0, time.Time{}, false
	}
	parts := strings.SplitN(raw, "|", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, false
	}
	price, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, time.Time{}, false
	}
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, false
	}
	return price, time.UnixMilli(ms), true
}

// NopPriceCache is used when Redis is disabled; every lookup misses.
type NopPriceCache struct{}

func (NopPriceCache) SetLatest(context.Context, string, float64, time.Time) error {
	return nil
}

func (NopPriceCache) GetLatest(context.Context, string) (float64, time.Time, bool) {
	return 0, time.Time{}, false
}
