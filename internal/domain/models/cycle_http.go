package models

import "time"

// Requests and responses for the cycle HTTP endpoint. Defined in domain for
// consistency and reuse.

// Cycle actions.
const (
	ActionFullCycle = "full_cycle"
	ActionCollect   = "collect"
	ActionPredict   = "predict"
	ActionResolve   = "resolve"
	ActionTrade     = "trade"
	ActionCorrelate = "correlate"
	ActionEvolve    = "evolve"
)

type CycleRequest struct {
	Action string `json:"action" default:"full_cycle" validate:"oneof=full_cycle collect predict resolve trade correlate evolve"`
}

type CollectResult struct {
	Success   bool     `json:"success"`
	Ticks     int      `json:"ticks"`
	RealTicks int      `json:"realTicks"`
	Sources   []string `json:"sources"`
	Error     string   `json:"error,omitempty"`
}

type PredictResult struct {
	Success     bool     `json:"success"`
	Predictions int      `json:"predictions"`
	Symbols     []string `json:"symbols"`
	Error       string   `json:"error,omitempty"`
}

type ResolveResult struct {
	Success  bool    `json:"success"`
	Resolved int     `json:"resolved"`
	Pending  int     `json:"pending"`
	AvgScore float64 `json:"avgScore"`
	Error    string  `json:"error,omitempty"`
}

type TradeResult struct {
	Success bool    `json:"success"`
	Opened  int     `json:"opened"`
	Closed  int     `json:"closed"`
	NetPnL  float64 `json:"netPnl"`
	Balance float64 `json:"balance"`
	Error   string  `json:"error,omitempty"`
}

type CorrelateResult struct {
	Success bool   `json:"success"`
	Pairs   int    `json:"pairs"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

type EvolveResult struct {
	Success    bool    `json:"success"`
	Skipped    bool    `json:"skipped"`
	Generation int64   `json:"generation"`
	Fitness    float64 `json:"fitness"`
	Mutated    int     `json:"mutated"`
	Error      string  `json:"error,omitempty"`
}

// VitalEntry is one subsystem's health record in the health response.
type VitalEntry struct {
	Name      string            `json:"name"`
	Status    VitalStatus       `json:"status"`
	Value     float64           `json:"value"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthResponse aggregates the recorded vitals under a worst-of status.
type HealthResponse struct {
	Status VitalStatus  `json:"status"`
	Vitals []VitalEntry `json:"vitals"`
}

// CycleResponse carries one result object per executed phase.
type CycleResponse struct {
	Timestamp time.Time        `json:"timestamp"`
	Collect   *CollectResult   `json:"collect,omitempty"`
	Predict   *PredictResult   `json:"predict,omitempty"`
	Resolve   *ResolveResult   `json:"resolve,omitempty"`
	Trade     *TradeResult     `json:"trade,omitempty"`
	Correlate *CorrelateResult `json:"correlate,omitempty"`
	Evolve    *EvolveResult    `json:"evolve,omitempty"`
}
