package models

import "time"

// AssetClass identifies which trading calendar and provider set a symbol belongs to.
type AssetClass string

const (
	AssetCrypto AssetClass = "crypto"
	AssetForex  AssetClass = "forex"
	AssetStock  AssetClass = "stock"
)

// SourceSynthetic marks ticks fabricated by the collector's fallback walk.
// Only written when the synthetic-data policy is explicitly enabled.
const SourceSynthetic = "synthetic"

// Tick is one price observation. Append-only: never mutated after insert.
type Tick struct {
	Symbol    string
	Class     AssetClass
	Price     float64
	Bid       float64
	Ask       float64
	Volume    float64
	Timestamp time.Time
	Source    string
}
