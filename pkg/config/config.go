package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"PaperPulse/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Backend struct {
		// Tick sink: "clickhouse" writes directly, "kafka" publishes to the
		// bus and the consumer ingests into ClickHouse.
		Type         string        `yaml:"type"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		LogsTopic    string   `yaml:"logs_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Postgres struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		SSLMode      string        `yaml:"ssl_mode"`
		MaxOpenConns int           `yaml:"max_open_conns"`
		MaxIdleConns int           `yaml:"max_idle_conns"`
		QueryTimeout time.Duration `yaml:"query_timeout"`
	} `yaml:"postgres"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Host     string        `yaml:"host"`
		Port     int           `yaml:"port"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Providers struct {
		Timeout time.Duration  `yaml:"timeout"`
		Crypto  ProviderConfig `yaml:"crypto"`
		Forex   ProviderConfig `yaml:"forex"`
		Stock   ProviderConfig `yaml:"stock"`
	} `yaml:"providers"`
	Engine EngineConfig `yaml:"engine"`
}

// ProviderConfig describes one asset class's feed endpoint and symbol universe.
type ProviderConfig struct {
	Name    string   `yaml:"name"`
	BaseURL string   `yaml:"base_url"`
	APIKey  string   `yaml:"api_key"`
	Symbols []string `yaml:"symbols"`
	RPS     float64  `yaml:"rps"`
}

// EngineConfig holds every tunable of the prediction/trading loop.
type EngineConfig struct {
	TickWindow           int           `yaml:"tick_window"`
	MinTicks             int           `yaml:"min_ticks"`
	Horizon              time.Duration `yaml:"horizon"`
	HoldingPeriod        time.Duration `yaml:"holding_period"`
	RiskFraction         float64       `yaml:"risk_fraction"`
	ConfidenceThreshold  float64       `yaml:"confidence_threshold"`
	MutationRateLow      float64       `yaml:"mutation_rate_low"`
	MutationRateHigh     float64       `yaml:"mutation_rate_high"`
	AdaptationCap        int           `yaml:"adaptation_cap"`
	CorrelationWindow    int           `yaml:"correlation_window"`
	CorrelationMinPoints int           `yaml:"correlation_min_points"`
	CorrelationPairs     [][2]string   `yaml:"correlation_pairs"`
	CoverageThreshold    float64       `yaml:"coverage_threshold"`
	AllowSynthetic       bool          `yaml:"allow_synthetic"`
	SampleMin            int           `yaml:"sample_min"`
	SampleMax            int           `yaml:"sample_max"`
	InitialBalance       float64       `yaml:"initial_balance"`
	TargetBalance        float64       `yaml:"target_balance"`
	CycleInterval        time.Duration `yaml:"cycle_interval"`
	PhaseTimeout         time.Duration `yaml:"phase_timeout"`
	Seed                 int64         `yaml:"seed"`
	AutoCycle            bool          `yaml:"auto_cycle"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("STREAM_API_KEY"); v != "" {
		c.Stream.APIKey = v
	}
	if v := os.Getenv("STOCK_API_KEY"); v != "" {
		c.Providers.Stock.APIKey = v
	}
	if v := os.Getenv("ENGINE_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Engine.Seed = n
		}
	}
	c.Engine.TickWindow = util.ParseIntDefault(os.Getenv("ENGINE_TICK_WINDOW"), c.Engine.TickWindow)

	return c, nil
}

func (c *Config) applyDefaults() {
	e := &c.Engine
	if e.TickWindow == 0 {
		e.TickWindow = 20
	}
	if e.MinTicks == 0 {
		e.MinTicks = 5
	}
	if e.Horizon == 0 {
		e.Horizon = 60 * time.Second
	}
	if e.HoldingPeriod == 0 {
		e.HoldingPeriod = 60 * time.Second
	}
	if e.RiskFraction == 0 {
		e.RiskFraction = 0.05
	}
	if e.ConfidenceThreshold == 0 {
		e.ConfidenceThreshold = 0.65
	}
	if e.MutationRateLow == 0 {
		e.MutationRateLow = 0.1
	}
	if e.MutationRateHigh == 0 {
		e.MutationRateHigh = 0.02
	}
	if e.AdaptationCap == 0 {
		e.AdaptationCap = 100
	}
	if e.CorrelationWindow == 0 {
		e.CorrelationWindow = 100
	}
	if e.CorrelationMinPoints == 0 {
		e.CorrelationMinPoints = 20
	}
	if e.CoverageThreshold == 0 {
		e.CoverageThreshold = 0.5
	}
	if e.SampleMin == 0 {
		e.SampleMin = 1
	}
	if e.SampleMax == 0 {
		e.SampleMax = 3
	}
	if e.InitialBalance == 0 {
		e.InitialBalance = 1000
	}
	if e.TargetBalance == 0 {
		e.TargetBalance = 10000
	}
	if e.CycleInterval == 0 {
		e.CycleInterval = 5 * time.Second
	}
	if e.PhaseTimeout == 0 {
		e.PhaseTimeout = 10 * time.Second
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 5 * time.Second
	}
	if c.Postgres.QueryTimeout == 0 {
		c.Postgres.QueryTimeout = 5 * time.Second
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 30 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required for the kafka backend")
	}
	if len(c.Providers.Crypto.Symbols)+len(c.Providers.Forex.Symbols)+len(c.Providers.Stock.Symbols) == 0 {
		return fmt.Errorf("at least one provider symbol universe is required")
	}
	if c.Engine.SampleMin > c.Engine.SampleMax {
		return fmt.Errorf("engine.sample_min must not exceed engine.sample_max")
	}
	if c.Engine.MinTicks < 2 {
		return fmt.Errorf("engine.min_ticks must be at least 2")
	}
	if c.Engine.RiskFraction <= 0 || c.Engine.RiskFraction >= 1 {
		return fmt.Errorf("engine.risk_fraction must be in (0,1)")
	}
	for _, pair := range c.Engine.CorrelationPairs {
		if pair[0] == "" || pair[1] == "" || pair[0] == pair[1] {
			return fmt.Errorf("invalid correlation pair %v", pair)
		}
	}
	return nil
}

// Universe returns the configured symbols for an asset class name.
func (c *Config) Universe(class string) []string {
	switch class {
	case "crypto":
		return c.Providers.Crypto.Symbols
	case "forex":
		return c.Providers.Forex.Symbols
	case "stock":
		return c.Providers.Stock.Symbols
	default:
		return nil
	}
}
