package models

import "time"

// TradeDirection is the side of a simulated position.
type TradeDirection string

const (
	TradeLong  TradeDirection = "long"
	TradeShort TradeDirection = "short"
)

// TradeStatus is the lifecycle state of a simulated position.
type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// Trade is one simulated position. At most one trade exists per prediction.
// Once closed it is never mutated again.
type Trade struct {
	ID           int64
	Symbol       string
	Class        AssetClass
	Direction    TradeDirection
	EntryPrice   float64
	Shares       float64
	EntryTime    time.Time
	PredictionID string
	Status       TradeStatus

	ExitPrice  float64
	ExitTime   *time.Time
	PnL        float64
	PnLPercent float64
}

// PortfolioBalance is the singleton simulated-account ledger row.
// Peak and trough are running extrema over the balance series.
type PortfolioBalance struct {
	Balance       float64
	PeakBalance   float64
	TroughBalance float64
	TotalTrades   int
	WinningTrades int
	TargetBalance float64
	UpdatedAt     time.Time
}
