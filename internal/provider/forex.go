package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"PaperPulse/internal/domain/models"
	"PaperPulse/internal/domain/repository"
	"PaperPulse/internal/service/ratelimit"
	xhttp "PaperPulse/pkg/http"
)

// ForexProvider queries a frankfurter-compatible latest-rates endpoint.
// Pair symbols use the 6-letter convention, e.g. "EURUSD".
type ForexProvider struct {
	name    string
	baseURL string
	symbols []string
	client  *xhttp.Client
	breaker *gobreaker.CircuitBreaker
	limiter *ratelimit.Limiter
	rps     float64
}

// NewForexProvider creates the forex feed client.
func NewForexProvider(name, baseURL string, symbols []string, timeout time.Duration, rps float64) repository.Provider {
	if rps <= 0 {
		rps = 5
	}
	return &ForexProvider{
		name:    name,
		baseURL: baseURL,
		symbols: symbols,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		breaker: newBreaker(name),
		limiter: ratelimit.New(),
		rps:     rps,
	}
}

func (p *ForexProvider) Name() string             { return p.name }
func (p *ForexProvider) Class() models.AssetClass { return models.AssetForex }

type latestRates struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Quote groups the requested pairs by base currency to one request each.
func (p *ForexProvider) Quote(ctx context.Context, symbols []string) ([]*models.Tick, error) {
	if len(symbols) == 0 {
		symbols = p.symbols
	}

	byBase := make(map[string][]string)
	for _, sym := range symbols {
		if len(sym) != 6 {
			continue
		}
		base := sym[:3]
		byBase[base] = append(byBase[base], sym[3:])
	}

	out, err := p.breaker.Execute(func() (interface{}, error) {
		now := time.Now().UTC()
		var ticks []*models.Tick
		for base, quotes := range byBase {
			if !p.limiter.Allow(p.name, p.rps, p.rps) {
				continue
			}
			var lr latestRates
			err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
				Method: xhttp.MethodGet,
				URL:    p.baseURL + "/latest",
				QueryParams: map[string][]string{
					"from": {base},
					"to":   {strings.Join(quotes, ",")},
				},
			}, &lr)
			if err != nil {
				return nil, fmt.Errorf("rates %s: %w", base, err)
			}
			for quote, rate := range lr.Rates {
				if rate <= 0 {
					continue
				}
				ticks = append(ticks, &models.Tick{
					Symbol:    base + quote,
					Class:     models.AssetForex,
					Price:     rate,
					Timestamp: now,
					Source:    p.name,
				})
			}
		}
		return ticks, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*models.Tick), nil
}
