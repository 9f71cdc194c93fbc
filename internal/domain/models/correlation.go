package models

import "time"

// CorrelationRecord is one pairwise Pearson statistic, keyed by
// (SymbolA, SymbolB, Timeframe). Upserted: no per-pair history kept.
type CorrelationRecord struct {
	SymbolA      string
	SymbolB      string
	Timeframe    string
	Coefficient  float64
	SampleSize   int
	CalculatedAt time.Time
}
