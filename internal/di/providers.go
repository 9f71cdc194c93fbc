package di

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"PaperPulse/internal/domain/repository"
	"PaperPulse/internal/handler/api"
	mid "PaperPulse/internal/middleware"
	"PaperPulse/internal/provider"
	internalrepo "PaperPulse/internal/repository"
	"PaperPulse/internal/usecase"
	"PaperPulse/pkg/cache"
	pkgch "PaperPulse/pkg/clickhouse"
	"PaperPulse/pkg/config"
	xhttp "PaperPulse/pkg/http"
	pkgkafka "PaperPulse/pkg/kafka"
	"PaperPulse/pkg/logger"
	"PaperPulse/pkg/metrics"
	pkgpg "PaperPulse/pkg/postgres"
	"PaperPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates and initializes the ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.ClickHouseSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvidePostgresClient creates and initializes the PostgreSQL client.
func ProvidePostgresClient(cfg *config.Config) (*pkgpg.Client, error) {
	client, err := pkgpg.NewClient(
		pkgpg.WithHost(cfg.Postgres.Host),
		pkgpg.WithPort(cfg.Postgres.Port),
		pkgpg.WithDatabase(cfg.Postgres.Database),
		pkgpg.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
		pkgpg.WithSSLMode(cfg.Postgres.SSLMode),
		pkgpg.WithMaxConnections(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.PostgresSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	return client, nil
}

// ProvideTickStore creates the ClickHouse tick history store.
func ProvideTickStore(chClient *pkgch.Client, cfg *config.Config) repository.TickStore {
	return internalrepo.NewClickHouseTickStore(chClient.DB(), cfg.ClickHouse.Database+".ticks")
}

// ProvideTickPublisher creates the Kafka tick publisher in kafka backend
// mode; otherwise no publisher is wired and the collector writes directly.
// When a logs topic is configured, aggregated error logs ship through the
// same producer.
func ProvideTickPublisher(cfg *config.Config, log *logger.Logger) (repository.TickPublisher, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaTickPublisher(producer, cfg.Kafka.Topic)
	if cfg.Kafka.LogsTopic != "" {
		log.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      pub.(*internalrepo.KafkaTickPublisher),
		})
	}
	return pub, nil
}

// ProvideKafkaConsumer creates the ingestion consumer in kafka backend mode.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NoopHook{})
	return consumer, nil
}

// ProvideKafkaTicksHandler registers the ingestion handler for the ticks topic.
func ProvideKafkaTicksHandler(store repository.TickStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.Topic, store, m)
}

// ProvidePriceCache creates the layered latest-price cache, or a nop cache
// when Redis is disabled.
func ProvidePriceCache(cfg *config.Config) (repository.PriceCache, error) {
	if !cfg.Redis.Enabled {
		return internalrepo.NopPriceCache{}, nil
	}
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	layered := cache.NewLayeredCache(redisCache)
	return internalrepo.NewCachedPriceLookup(layered, cfg.Redis.TTL), nil
}

// ProvideProviders builds one REST provider per configured asset class.
func ProvideProviders(cfg *config.Config) []repository.Provider {
	var out []repository.Provider
	if p := cfg.Providers.Crypto; p.BaseURL != "" && len(p.Symbols) > 0 {
		out = append(out, provider.NewCryptoProvider(p.Name, p.BaseURL, p.Symbols, cfg.Providers.Timeout, p.RPS))
	}
	if p := cfg.Providers.Forex; p.BaseURL != "" && len(p.Symbols) > 0 {
		out = append(out, provider.NewForexProvider(p.Name, p.BaseURL, p.Symbols, cfg.Providers.Timeout, p.RPS))
	}
	if p := cfg.Providers.Stock; p.BaseURL != "" && p.APIKey != "" && len(p.Symbols) > 0 {
		out = append(out, provider.NewStockProvider(p.Name, p.BaseURL, p.APIKey, p.Symbols, cfg.Providers.Timeout, p.RPS))
	}
	return out
}

// ProvideRand creates the engine RNG. Seed 0 means time-seeded.
func ProvideRand(cfg *config.Config) *rand.Rand {
	seed := cfg.Engine.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ProvideSyntheticWalk creates the fallback tick generator only when the
// synthetic-data policy is explicitly enabled.
func ProvideSyntheticWalk(cfg *config.Config, rng *rand.Rand) *provider.SyntheticWalk {
	if !cfg.Engine.AllowSynthetic {
		return nil
	}
	return provider.NewSyntheticWalk(rng.Int63(), nil)
}

// ProvideHealthReporter creates the vitals reporter.
func ProvideHealthReporter(pg *pkgpg.Client, cfg *config.Config, log *logger.Logger) *usecase.HealthReporter {
	vitals := internalrepo.NewPGVitalsRepo(pg.DB(), cfg.Postgres.QueryTimeout)
	return usecase.NewHealthReporter(vitals, log)
}

// ProvidePredictionRepo creates the prediction repository.
func ProvidePredictionRepo(pg *pkgpg.Client, cfg *config.Config) repository.PredictionRepo {
	return internalrepo.NewPGPredictionRepo(pg.DB(), cfg.Postgres.QueryTimeout)
}

// ProvideTradeRepo creates the trade repository.
func ProvideTradeRepo(pg *pkgpg.Client, cfg *config.Config) repository.TradeRepo {
	return internalrepo.NewPGTradeRepo(pg.DB(), cfg.Postgres.QueryTimeout)
}

// ProvidePortfolioRepo creates the portfolio repository.
func ProvidePortfolioRepo(pg *pkgpg.Client, cfg *config.Config) repository.PortfolioRepo {
	return internalrepo.NewPGPortfolioRepo(pg.DB(), cfg.Postgres.QueryTimeout,
		cfg.Engine.InitialBalance, cfg.Engine.TargetBalance)
}

// ProvideEvolutionRepo creates the evolution state repository.
func ProvideEvolutionRepo(pg *pkgpg.Client, cfg *config.Config) repository.EvolutionRepo {
	return internalrepo.NewPGEvolutionRepo(pg.DB(), cfg.Postgres.QueryTimeout)
}

// ProvideCorrelationRepo creates the correlation repository.
func ProvideCorrelationRepo(pg *pkgpg.Client, cfg *config.Config) repository.CorrelationRepo {
	return internalrepo.NewPGCorrelationRepo(pg.DB(), cfg.Postgres.QueryTimeout)
}

// ProvideCollector creates the tick collection phase.
func ProvideCollector(
	providers []repository.Provider,
	store repository.TickStore,
	publisher repository.TickPublisher,
	priceCache repository.PriceCache,
	synth *provider.SyntheticWalk,
	health *usecase.HealthReporter,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.Collector {
	return usecase.NewCollector(providers, store, publisher, priceCache, synth, health, m, log, cfg)
}

// ProvidePredictor creates the prediction phase.
func ProvidePredictor(
	store repository.TickStore,
	preds repository.PredictionRepo,
	evo repository.EvolutionRepo,
	health *usecase.HealthReporter,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
	rng *rand.Rand,
) *usecase.Predictor {
	return usecase.NewPredictor(store, preds, evo, health, m, log, cfg, rng)
}

// ProvideResolver creates the resolution phase.
func ProvideResolver(
	priceCache repository.PriceCache,
	store repository.TickStore,
	preds repository.PredictionRepo,
	health *usecase.HealthReporter,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.Resolver {
	return usecase.NewResolver(priceCache, store, preds, health, m, log, cfg)
}

// ProvideTrader creates the trading simulation phase.
func ProvideTrader(
	priceCache repository.PriceCache,
	store repository.TickStore,
	preds repository.PredictionRepo,
	trades repository.TradeRepo,
	portfolio repository.PortfolioRepo,
	evo repository.EvolutionRepo,
	health *usecase.HealthReporter,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.Trader {
	return usecase.NewTrader(priceCache, store, preds, trades, portfolio, evo, health, m, log, cfg)
}

// ProvideCorrelator creates the correlation phase.
func ProvideCorrelator(
	store repository.TickStore,
	corrs repository.CorrelationRepo,
	health *usecase.HealthReporter,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.Correlator {
	return usecase.NewCorrelator(store, corrs, health, m, log, cfg)
}

// ProvideEvolver creates the evolution phase.
func ProvideEvolver(
	preds repository.PredictionRepo,
	evo repository.EvolutionRepo,
	health *usecase.HealthReporter,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
	rng *rand.Rand,
) *usecase.Evolver {
	return usecase.NewEvolver(preds, evo, health, m, log, cfg, rng)
}

// ProvideOrchestrator creates the phase orchestrator.
func ProvideOrchestrator(
	collector *usecase.Collector,
	predictor *usecase.Predictor,
	resolver *usecase.Resolver,
	trader *usecase.Trader,
	correlator *usecase.Correlator,
	evolver *usecase.Evolver,
	health *usecase.HealthReporter,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.Orchestrator {
	return usecase.NewOrchestrator(collector, predictor, resolver, trader, correlator, evolver, health, m, log, cfg)
}

// ProvideHTTPHandler creates the cycle HTTP handler.
func ProvideHTTPHandler(log *logger.Logger, orch *usecase.Orchestrator, health *usecase.HealthReporter, ticks repository.TickStore) xhttp.Handler {
	return api.NewCycleEchoHandler(log, orch, health, ticks)
}

// ProvideTickProcessor creates the streamed-tick processor.
func ProvideTickProcessor(
	publisher repository.TickPublisher,
	store repository.TickStore,
	priceCache repository.PriceCache,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.TickProcessor {
	return usecase.NewTickProcessor(publisher, store, priceCache, m, cfg.Backend.Type)
}

// ProvideStreamCollector creates the WebSocket stream collector when the
// stream feed is enabled.
func ProvideStreamCollector(
	proc *usecase.TickProcessor,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.StreamCollector {
	if !cfg.Stream.Enabled {
		return nil
	}
	stream := provider.NewStreamClient(
		cfg.Stream.APIKey,
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
	)
	pipe := mid.NewRealtimePipeline(proc, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewStreamCollector(stream, proc, m, pipe)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	orch *usecase.Orchestrator,
	handler xhttp.Handler,
	stream *usecase.StreamCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
	chClient *pkgch.Client,
	pgClient *pkgpg.Client,
	tickProc *usecase.TickProcessor,
) *server.App {
	var mh pkgkafka.MessageHandler
	if consumer != nil {
		mh = kh
	}
	return server.New(cfg, log, orch, handler, stream, consumer, mh, chClient, pgClient, tickProc)
}
