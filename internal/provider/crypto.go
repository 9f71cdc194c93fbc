package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"PaperPulse/internal/domain/models"
	"PaperPulse/internal/domain/repository"
	"PaperPulse/internal/service/ratelimit"
	xhttp "PaperPulse/pkg/http"
)

// CryptoProvider queries a Binance-compatible book-ticker endpoint.
type CryptoProvider struct {
	name    string
	baseURL string
	symbols []string
	client  *xhttp.Client
	breaker *gobreaker.CircuitBreaker
	limiter *ratelimit.Limiter
	rps     float64
}

// NewCryptoProvider creates the crypto feed client.
func NewCryptoProvider(name, baseURL string, symbols []string, timeout time.Duration, rps float64) repository.Provider {
	if rps <= 0 {
		rps = 10
	}
	return &CryptoProvider{
		name:    name,
		baseURL: baseURL,
		symbols: symbols,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		breaker: newBreaker(name),
		limiter: ratelimit.New(),
		rps:     rps,
	}
}

func (p *CryptoProvider) Name() string             { return p.name }
func (p *CryptoProvider) Class() models.AssetClass { return models.AssetCrypto }

type binanceBookTicker struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
	BidQty   string `json:"bidQty"`
}

// Quote fetches one book ticker per requested symbol. Symbols the endpoint
// rejects are skipped; a transport-level failure fails the whole call so the
// breaker can count it.
func (p *CryptoProvider) Quote(ctx context.Context, symbols []string) ([]*models.Tick, error) {
	if len(symbols) == 0 {
		symbols = p.symbols
	}

	out, err := p.breaker.Execute(func() (interface{}, error) {
		ticks := make([]*models.Tick, 0, len(symbols))
		for _, sym := range symbols {
			if !p.limiter.Allow(p.name, p.rps, p.rps) {
				continue
			}
			var bt binanceBookTicker
			err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
				Method:      xhttp.MethodGet,
				URL:         p.baseURL + "/api/v3/ticker/bookTicker",
				QueryParams: map[string][]string{"symbol": {sym}},
			}, &bt)
			if err != nil {
				return nil, fmt.Errorf("quote %s: %w", sym, err)
			}
			bid := parsePrice(bt.BidPrice)
			ask := parsePrice(bt.AskPrice)
			if bid <= 0 || ask <= 0 {
				continue
			}
			ticks = append(ticks, &models.Tick{
				Symbol:    sym,
				Class:     models.AssetCrypto,
				Price:     (bid + ask) / 2,
				Bid:       bid,
				Ask:       ask,
				Volume:    parsePrice(bt.BidQty),
				Timestamp: time.Now().UTC(),
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
