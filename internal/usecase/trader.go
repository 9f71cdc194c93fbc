package usecase

import (
	"context"
	"math"
	"time"

	"PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/internal/market"
	"PaperPulse/pkg/config"
	"PaperPulse/pkg/logger"
)

const openCandidateLimit = 20

// Trader runs the simulated trading loop: close positions past their holding
// period, then open bounded-risk positions from high-confidence unresolved
// predictions. A missing current price defers the trade to the next cycle;
// prices are never guessed.
type Trader struct {
	prices    *priceSource
	preds     drepo.PredictionRepo
	trades    drepo.TradeRepo
	portfolio drepo.PortfolioRepo
	evo       drepo.EvolutionRepo
	health    *HealthReporter
	metrics   drepo.Metrics
	log       *logger.Logger
	cfg       *config.Config
}

func NewTrader(
	cache drepo.PriceCache,
	store drepo.TickStore,
	preds drepo.PredictionRepo,
	trades drepo.TradeRepo,
	portfolio drepo.PortfolioRepo,
	evo drepo.EvolutionRepo,
	health *HealthReporter,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *Trader {
	return &Trader{
		prices:    &priceSource{cache: cache, store: store},
		preds:     preds,
		trades:    trades,
		portfolio: portfolio,
		evo:       evo,
		health:    health,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
	}
}

func (t *Trader) Trade(ctx context.Context) *models.TradeResult {
	now := time.Now().UTC()
	res := &models.TradeResult{Success: true}

	netPnL, closed, wins := t.closeExpired(ctx, now, res)
	t.openEligible(ctx, now, res)

	if closed > 0 {
		balance, err := t.portfolio.Apply(ctx, netPnL, closed, wins)
		if err != nil {
			t.log.Error("portfolio update failed", logger.Error(err))
			t.metrics.RecordError("portfolio_apply")
			res.Success = false
			res.Error = err.Error()
		} else {
			res.NetPnL = netPnL
			res.Balance = balance.Balance
			t.metrics.RecordBalance(balance.Balance)
		}
	} else if b, err := t.portfolio.Get(ctx); err == nil {
		res.Balance = b.Balance
	}

	status := models.VitalHealthy
	if !res.Success {
		status = models.VitalDegraded
	}
	t.health.Report(ctx, models.VitalTradeSimulator, status, res.Balance, nil)
	return res
}

// closeExpired closes every open trade held past the holding period, at the
// latest known price. Returns realized pnl, close count and win count.
func (t *Trader) closeExpired(ctx context.Context, now time.Time, res *models.TradeResult) (netPnL float64, closed, wins int) {
	open, err := t.trades.OpenTrades(ctx)
	if err != nil {
		t.log.Error("open trades query failed", logger.Error(err))
		t.metrics.RecordError("trade_query")
		res.Success = false
		res.Error = err.Error()
		return 0, 0, 0
	}

	for _, tr := range open {
		if now.Sub(tr.EntryTime) < t.cfg.Engine.HoldingPeriod {
			continue
		}
		price, ok := t.prices.Latest(ctx, tr.Symbol)
		if !ok {
			continue // no price yet; close on a later cycle
		}

		pnl := (price - tr.EntryPrice) * tr.Shares
		if tr.Direction == models.TradeShort {
			pnl = -pnl
		}
		tr.ExitPrice = price
		exitTime := now
		tr.ExitTime = &exitTime
		tr.PnL = pnl
		if cost := tr.EntryPrice * tr.Shares; cost > 0 {
			tr.PnLPercent = pnl / cost * 100
		}
		tr.Status = models.TradeClosed

		applied, err := t.trades.CloseTrade(ctx, tr)
		if err != nil {
			t.log.Error("trade close failed",
				logger.Int64("trade", tr.ID),
				logger.Error(err))
			t.metrics.RecordError("trade_close")
			res.Success = false
			res.Error = err.Error()
			continue
		}
		if !applied {
			continue // already closed by an overlapping cycle
		}
		netPnL += pnl
		closed++
		if pnl > 0 {
			wins++
		}
	}
	res.Closed = closed
	return netPnL, closed, wins
}

// openEligible opens one position per high-confidence unresolved prediction
// in an open market. The store enforces at most one trade per prediction.
func (t *Trader) openEligible(ctx context.Context, now time.Time, res *models.TradeResult) {
	preds, err := t.preds.RecentUnresolved(ctx, openCandidateLimit)
	if err != nil {
		t.log.Error("candidate predictions query failed", logger.Error(err))
		t.metrics.RecordError("trade_query")
		res.Success = false
		res.Error = err.Error()
		return
	}
	if len(preds) == 0 {
		return
	}

	balance, err := t.portfolio.Get(ctx)
	if err != nil {
		t.log.Error("portfolio read failed", logger.Error(err))
		t.metrics.RecordError("portfolio_get")
		res.Success = false
		res.Error = err.Error()
		return
	}
	budget := balance.Balance * t.riskFraction(ctx)
	if budget <= 0 {
		return
	}

	for _, p := range preds {
		if p.PredictedConfidence < t.cfg.Engine.ConfidenceThreshold ||
			p.PredictedDirection == models.DirectionFlat ||
			!market.IsOpen(p.Class, now) {
			continue
		}
		price, ok := t.prices.Latest(ctx, p.Symbol)
		if !ok {
			continue // defer until a price is known
		}
		shares := PositionSize(budget, price)
		if shares <= 0 {
			continue
		}

		direction := models.TradeLong
		if p.PredictedDirection == models.DirectionDown {
			direction = models.TradeShort
		}
		opened, err := t.trades.OpenTrade(ctx, &models.Trade{
			Symbol:       p.Symbol,
			Class:        p.Class,
			Direction:    direction,
			EntryPrice:   price,
			Shares:       shares,
			EntryTime:    now,
			PredictionID: p.ID,
			Status:       models.TradeOpen,
		})
		if err != nil {
			t.log.Error("trade open failed",
				logger.String("symbol", p.Symbol),
				logger.Error(err))
			t.metrics.RecordError("trade_open")
			res.Success = false
			res.Error = err.Error()
			continue
		}
		if !opened {
			continue // a trade for this prediction already exists
		}
		res.Opened++
	}
}

// riskFraction scales the configured budget fraction by the risk-tolerance
// gene. At the neutral gene value 0.5 this is exactly the configured value.
func (t *Trader) riskFraction(ctx context.Context) float64 {
	state, err := t.evo.Get(ctx, EvolutionScope)
	if err != nil {
		return t.cfg.Engine.RiskFraction
	}
	return t.cfg.Engine.RiskFraction * 2 * state.Gene(models.GeneRiskTolerance)
}

// PositionSize converts a risk budget into shares, truncated to a tenth of a
// share.
func PositionSize(budget, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return math.Floor(budget/price*10) / 10
}
