package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "KabuScan/internal/domain/repository"
	"KabuScan/internal/handler/api"
	"KabuScan/internal/service/universe"
	"KabuScan/pkg/cache"
	pkgch "KabuScan/pkg/clickhouse"
	"KabuScan/pkg/config"
	xhttp "KabuScan/pkg/http"
	xlogger "KabuScan/pkg/logger"
)

// App encapsulates the application lifecycle: universe bootstrap, HTTP
// serving, signal handling and teardown.
type App struct {
	cfg        *config.Config
	logger     *xlogger.Logger
	handler    *api.ScanHandler
	httpServer *xhttp.Server

	barCache  cache.Service
	chClient  *pkgch.Client
	publisher drepo.ResultPublisher
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *xlogger.Logger,
	handler *api.ScanHandler,
	barCache cache.Service,
	chClient *pkgch.Client,
	publisher drepo.ResultPublisher,
) *App {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &App{
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		barCache:  barCache,
		chClient:  chClient,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.cfg.Universe.Path != "" {
		src := universe.NewFileSource(a.cfg.Universe.Path, a.cfg.Universe.Segments)
		instruments, err := src.Load(ctx)
		if err != nil {
			// a bad master list file is fatal at startup
			a.logger.Error("universe load failed", xlogger.Error(err))
			return err
		}
		a.handler.SetUniverse(instruments)
		a.logger.Info("universe loaded",
			xlogger.String("path", a.cfg.Universe.Path),
			xlogger.Int("instruments", len(instruments)),
		)
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithLogger(a.logger),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", xlogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		xlogger.String("env", a.cfg.Environment),
		xlogger.Int("port", a.cfg.Server.Port),
		xlogger.String("source", a.cfg.Source.Type),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", xlogger.Error(err))
	}

	if a.barCache != nil {
		if err := a.barCache.Close(); err != nil {
			a.logger.Warn("bar cache close error", xlogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", xlogger.Error(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", xlogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
