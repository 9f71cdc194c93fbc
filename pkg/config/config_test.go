package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `
environment: test
backend:
  type: clickhouse
providers:
  crypto:
    name: binance
    base_url: https://api.binance.com
    symbols: ["BTCUSDT"]
`

func TestLoadAppliesEngineDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Engine.TickWindow)
	assert.Equal(t, 5, cfg.Engine.MinTicks)
	assert.Equal(t, time.Minute, cfg.Engine.Horizon)
	assert.InDelta(t, 0.05, cfg.Engine.RiskFraction, 1e-9)
	assert.InDelta(t, 0.65, cfg.Engine.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 100, cfg.Engine.AdaptationCap)
	assert.Equal(t, 5*time.Second, cfg.Engine.CycleInterval)
	assert.False(t, cfg.Engine.AllowSynthetic, "synthetic data stays off unless asked for")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
backend:
  type: mysql
providers:
  crypto:
    symbols: ["BTCUSDT"]
`))
	assert.Error(t, err)
}

func TestLoadRejectsEmptyUniverse(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
backend:
  type: clickhouse
`))
	assert.Error(t, err)
}

func TestLoadParsesCorrelationPairs(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
engine:
  correlation_pairs:
    - ["BTCUSDT", "ETHUSDT"]
`))
	require.NoError(t, err)
	require.Len(t, cfg.Engine.CorrelationPairs, 1)
	assert.Equal(t, [2]string{"BTCUSDT", "ETHUSDT"}, cfg.Engine.CorrelationPairs[0])
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ENGINE_SEED", "42")
	t.Setenv("ENGINE_TICK_WINDOW", "35")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "kafka", cfg.Backend.Type)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, int64(42), cfg.Engine.Seed)
	assert.Equal(t, 35, cfg.Engine.TickWindow)
}

func TestUniverse(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT"}, cfg.Universe("crypto"))
	assert.Empty(t, cfg.Universe("forex"))
	assert.Empty(t, cfg.Universe("bonds"))
}
