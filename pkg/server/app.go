package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PaperPulse/internal/domain/models"
	"PaperPulse/internal/usecase"
	pkgch "PaperPulse/pkg/clickhouse"
	"PaperPulse/pkg/config"
	xhttp "PaperPulse/pkg/http"
	pkgkafka "PaperPulse/pkg/kafka"
	applogger "PaperPulse/pkg/logger"
	pkgpg "PaperPulse/pkg/postgres"
)

// App encapsulates the entire application lifecycle: the HTTP invocation
// surface, the optional self-triggering cycle ticker, the optional streaming
// feed, and the optional Kafka ingestion consumer.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	orch       *usecase.Orchestrator
	handler    xhttp.Handler
	stream     *usecase.StreamCollector // nil when the stream feed is disabled
	consumer   *pkgkafka.Consumer       // nil outside kafka backend mode
	kh         pkgkafka.MessageHandler
	chClient   *pkgch.Client
	pgClient   *pkgpg.Client
	tickProc   *usecase.TickProcessor
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	orch *usecase.Orchestrator,
	handler xhttp.Handler,
	stream *usecase.StreamCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	pgClient *pkgpg.Client,
	tickProc *usecase.TickProcessor,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		orch:     orch,
		handler:  handler,
		stream:   stream,
		consumer: consumer,
		kh:       kh,
		chClient: chClient,
		pgClient: pgClient,
		tickProc: tickProc,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.stream != nil {
		go func() {
			if err := a.stream.Start(ctx); err != nil {
				a.log.Error("stream collector error", applogger.Error(err))
			}
		}()
		a.log.Info("stream collector started",
			applogger.Strings("symbols", a.cfg.Stream.Symbols))
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.cfg.Engine.AutoCycle {
		go a.cycleLoop(ctx)
		a.log.Info("auto cycle enabled",
			applogger.Duration("interval", a.cfg.Engine.CycleInterval))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx, cancel)
}

// cycleLoop self-triggers a full cycle on the configured cadence so the
// service runs without an external scheduler. Cycles overlapping a slow
// previous run are tolerated; all cross-cycle coordination is in the store.
func (a *App) cycleLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Engine.CycleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.orch.Run(ctx, models.ActionFullCycle); err != nil {
				a.log.Error("auto cycle failed", applogger.Error(err))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context, cancel context.CancelFunc) error {
	cancel() // stops the cycle loop and stream consumption

	if a.stream != nil {
		if err := a.stream.Shutdown(ctx); err != nil {
			a.log.Warn("stream stop error", applogger.Error(err))
		}
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer done()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.log.RemoveCollector() // flush aggregated logs before the producer closes

	if a.tickProc != nil {
		a.tickProc.Close()
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.pgClient != nil {
		if err := a.pgClient.Close(); err != nil {
			a.log.Warn("postgres close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
