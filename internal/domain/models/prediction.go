package models

import "time"

// Direction is the forecast (and realized) price direction.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// MarketConditions is the momentum/volatility snapshot captured at issue time.
type MarketConditions struct {
	Momentum      float64 `json:"momentum"`
	Volatility    float64 `json:"volatility"`
	TrendStrength float64 `json:"trend_strength"`
	AvgPrice      float64 `json:"avg_price"`
	SampleSize    int     `json:"sample_size"`
}

// Prediction is one directional forecast for a symbol. The resolution fields
// are written exactly once, together, when the horizon elapses.
type Prediction struct {
	ID                  string
	Symbol              string
	Class               AssetClass
	EntryPrice          float64
	PredictedDirection  Direction
	PredictedMagnitude  float64
	PredictedConfidence float64
	Horizon             time.Duration
	Conditions          MarketConditions
	CreatedAt           time.Time

	// Resolution fields; nil/zero until resolved.
	ExitPrice           float64
	ActualDirection     Direction
	ActualMagnitude     float64
	DirectionCorrect    bool
	MagnitudeAccuracy   float64
	TimingAccuracy      float64
	CalibrationAccuracy float64
	CompositeScore      float64
	ResolvedAt          *time.Time
}

// Resolved reports whether the prediction has been scored.
func (p *Prediction) Resolved() bool { return p.ResolvedAt != nil }

// Due reports whether the horizon has elapsed at now.
func (p *Prediction) Due(now time.Time) bool {
	return !p.Resolved() && now.Sub(p.CreatedAt) >= p.Horizon
}
