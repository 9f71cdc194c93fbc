package repository

// PostgresSchema holds the idempotent DDL for the state store.
var PostgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		class TEXT NOT NULL,
		entry_price DOUBLE PRECISION NOT NULL,
		predicted_direction TEXT NOT NULL,
		predicted_magnitude DOUBLE PRECISION NOT NULL,
		predicted_confidence DOUBLE PRECISION NOT NULL,
		horizon_seconds BIGINT NOT NULL,
		market_conditions JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL,
		exit_price DOUBLE PRECISION,
		actual_direction TEXT,
		actual_magnitude DOUBLE PRECISION,
		direction_correct BOOLEAN,
		magnitude_accuracy DOUBLE PRECISION,
		timing_accuracy DOUBLE PRECISION,
		calibration_accuracy DOUBLE PRECISION,
		composite_score DOUBLE PRECISION,
		resolved_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_unresolved
		ON predictions (created_at) WHERE resolved_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_resolved
		ON predictions (resolved_at DESC) WHERE resolved_at IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS trades (
		id BIGSERIAL PRIMARY KEY,
		symbol TEXT NOT NULL,
		class TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price DOUBLE PRECISION NOT NULL,
		shares DOUBLE PRECISION NOT NULL,
		entry_time TIMESTAMPTZ NOT NULL,
		prediction_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		exit_price DOUBLE PRECISION,
		exit_time TIMESTAMPTZ,
		pnl DOUBLE PRECISION,
		pnl_percent DOUBLE PRECISION
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_trades_prediction
		ON trades (prediction_id)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_open
		ON trades (entry_time) WHERE status = 'open'`,
	`CREATE TABLE IF NOT EXISTS portfolio_balance (
		id INT PRIMARY KEY,
		balance DOUBLE PRECISION NOT NULL,
		peak_balance DOUBLE PRECISION NOT NULL,
		trough_balance DOUBLE PRECISION NOT NULL,
		total_trades INT NOT NULL DEFAULT 0,
		winning_trades INT NOT NULL DEFAULT 0,
		target_balance DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS evolution_state (
		scope TEXT PRIMARY KEY,
		generation BIGINT NOT NULL DEFAULT 0,
		fitness_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		genes JSONB NOT NULL,
		total_predictions_seen BIGINT NOT NULL DEFAULT 0,
		last_mutation_at TIMESTAMPTZ,
		adaptation_history JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS correlations (
		symbol_a TEXT NOT NULL,
		symbol_b TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		correlation_coefficient DOUBLE PRECISION NOT NULL,
		sample_size INT NOT NULL,
		calculated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (symbol_a, symbol_b, timeframe)
	)`,
	`CREATE TABLE IF NOT EXISTS vitals (
		name TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		value DOUBLE PRECISION,
		metadata JSONB NOT NULL DEFAULT '{}',
		ts TIMESTAMPTZ NOT NULL
	)`,
}

// ClickHouseSchema returns the tick-history DDL for a database name.
func ClickHouseSchema(database string) []string {
	return []string{
		"CREATE DATABASE IF NOT EXISTS " + database,
		`CREATE TABLE IF NOT EXISTS ` + database + `.ticks (
			ts DateTime64(3),
			symbol String,
			class String,
			price Float64,
			bid Float64,
			ask Float64,
			volume Float64,
			source String
		) ENGINE = MergeTree
		PARTITION BY toYYYYMMDD(ts)
		ORDER BY (symbol, ts)`,
	}
}
