//go:build wireinject
// +build wireinject

package di

import (
	"PaperPulse/pkg/config"
	"PaperPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvidePostgresClient,
		ProvideTickPublisher,
		ProvideKafkaConsumer,
		ProvidePriceCache,

		// Repositories
		ProvideTickStore,
		ProvidePredictionRepo,
		ProvideTradeRepo,
		ProvidePortfolioRepo,
		ProvideEvolutionRepo,
		ProvideCorrelationRepo,

		// Feeds
		ProvideProviders,
		ProvideRand,
		ProvideSyntheticWalk,

		// Engine phases
		ProvideHealthReporter,
		ProvideCollector,
		ProvidePredictor,
		ProvideResolver,
		ProvideTrader,
		ProvideCorrelator,
		ProvideEvolver,
		ProvideOrchestrator,

		// Surfaces
		ProvideHTTPHandler,
		ProvideTickProcessor,
		ProvideStreamCollector,
		ProvideKafkaTicksHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
