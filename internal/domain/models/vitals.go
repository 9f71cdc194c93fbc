package models

import "time"

// VitalStatus is the coarse health level of one subsystem.
type VitalStatus string

const (
	VitalHealthy  VitalStatus = "healthy"
	VitalDegraded VitalStatus = "degraded"
	VitalCritical VitalStatus = "critical"
)

// Well-known vital names, one per orchestrator phase.
const (
	VitalMarketCollector    = "market-collector"
	VitalPredictionEngine   = "prediction-engine"
	VitalPredictionAccuracy = "prediction-accuracy"
	VitalTradeSimulator     = "trade-simulator"
	VitalCorrelationEngine  = "correlation-engine"
	VitalEvolutionEngine    = "evolution-engine"
	VitalSystemFitness      = "system-fitness"
)

// Vital is a named health record, upserted by name each cycle.
type Vital struct {
	Name      string
	Status    VitalStatus
	Value     float64
	Metadata  map[string]string
	Timestamp time.Time
}
