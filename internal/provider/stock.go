package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"PaperPulse/internal/domain/models"
	"PaperPulse/internal/domain/repository"
	"PaperPulse/internal/service/ratelimit"
	xhttp "PaperPulse/pkg/http"
)

// StockProvider queries a Finnhub-compatible REST quote endpoint.
type StockProvider struct {
	name    string
	baseURL string
	apiKey  string
	symbols []string
	client  *xhttp.Client
	breaker *gobreaker.CircuitBreaker
	limiter *ratelimit.Limiter
	rps     float64
}

// NewStockProvider creates the stock feed client.
func NewStockProvider(name, baseURL, apiKey string, symbols []string, timeout time.Duration, rps float64) repository.Provider {
	if rps <= 0 {
		rps = 1
	}
	return &StockProvider{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		symbols: symbols,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		breaker: newBreaker(name),
		limiter: ratelimit.New(),
		rps:     rps,
	}
}

func (p *StockProvider) Name() string             { return p.name }
func (p *StockProvider) Class() models.AssetClass { return models.AssetStock }

type finnhubQuote struct {
	Current   float64 `json:"c"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Open      float64 `json:"o"`
	PrevClose float64 `json:"pc"`
	T         int64   `json:"t"`
}

func (p *StockProvider) Quote(ctx context.Context, symbols []string) ([]*models.Tick, error) {
	if len(symbols) == 0 {
		symbols = p.symbols
	}

	out, err := p.breaker.Execute(func() (interface{}, error) {
		ticks := make([]*models.Tick, 0, len(symbols))
		for _, sym := range symbols {
			if !p.limiter.Allow(p.name, p.rps, p.rps) {
				continue
			}
			var q finnhubQuote
			err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
				Method: xhttp.MethodGet,
				URL:    p.baseURL + "/quote",
				QueryParams: map[string][]string{
					"symbol": {sym},
					"token":  {p.apiKey},
				},
			}, &q)
			if err != nil {
				return nil, fmt.Errorf("quote %s: %w", sym, err)
			}
			// Finnhub returns zeros for unknown symbols rather than an error.
			if q.Current <= 0 {
				continue
			}
			ts := time.Now().UTC()
			if q.T > 0 {
				ts = time.Unix(q.T, 0).UTC()
			}
			ticks = append(ticks, &models.Tick{
				Symbol:    sym,
				Class:     models.AssetStock,
				Price:     q.Current,
				Timestamp: ts,
				Source:    p.name,
			})
		}
		return ticks, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*models.Tick), nil
}

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
