package models

import "time"

// Gene names recognized by the engine. Values always stay in [0,1].
const (
	GeneMomentumWeight   = "momentum_weight"
	GeneVolatilityWeight = "volatility_weight"
	GeneConfidenceGain   = "confidence_gain"
	GeneRiskTolerance    = "risk_tolerance"
)

// DefaultGenes returns the neutral gene vector. At 0.5 every gene reproduces
// the untuned reference behavior exactly.
func DefaultGenes() map[string]float64 {
	return map[string]float64{
		GeneMomentumWeight:   0.5,
		GeneVolatilityWeight: 0.5,
		GeneConfidenceGain:   0.5,
		GeneRiskTolerance:    0.5,
	}
}

// FitnessSnapshot is one entry of the bounded adaptation history.
type FitnessSnapshot struct {
	Timestamp         time.Time `json:"timestamp"`
	Fitness           float64   `json:"fitness"`
	DirectionAccuracy float64   `json:"direction_accuracy"`
}

// EvolutionState is the singleton adaptive-parameter row, addressed by scope.
// Generation strictly increases with every successful evolution step.
type EvolutionState struct {
	Scope                string
	Generation           int64
	FitnessScore         float64
	Genes                map[string]float64
	TotalPredictionsSeen int64
	LastMutationAt       *time.Time
	AdaptationHistory    []FitnessSnapshot
}

// Gene returns a gene value, falling back to the neutral default when the
// stored vector predates the gene's introduction.
func (s *EvolutionState) Gene(name string) float64 {
	if v, ok := s.Genes[name]; ok {
		return v
	}
	return 0.5
}
