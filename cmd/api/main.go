package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"object-gateway/internal/adapters/eventbroker/nats"
	"object-gateway/internal/adapters/handlers/http/chi"
	"object-gateway/internal/adapters/handlers/http/chi/v1/access"
	"object-gateway/internal/adapters/handlers/http/chi/v1/download"
	"object-gateway/internal/adapters/handlers/http/chi/v1/file"
	transferhandler "object-gateway/internal/adapters/handlers/http/chi/v1/transfer"
	"object-gateway/internal/adapters/metrics"
	"object-gateway/internal/adapters/repository/postgres"
	"object-gateway/internal/adapters/storage/memory"
	"object-gateway/internal/adapters/storage/minio"
	"object-gateway/internal/adapters/storage/s3"
	"object-gateway/internal/config"
	"object-gateway/internal/core/port"
	accessservice "object-gateway/internal/core/service/access"
	"object-gateway/internal/core/service/cleanup"
	"object-gateway/internal/core/service/gateway"
	"object-gateway/internal/core/service/transfer"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	store, err := initStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init storage", "error", err, "provider", cfg.Storage.Provider)
		os.Exit(1)
	}
	logger.Info("storage initialized", "provider", cfg.Storage.Provider)

	//events
	publisher, err := initPublisher(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to init event publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", "error", err)
		}
	}()

	//repositories
	transferRepo := postgres.NewSQLTransferRepository(db)

	//services
	m := metrics.New()
	executor := transfer.NewExecutor(store, cfg.Transfer, m, logger)
	issuer := accessservice.NewIssuer(store, cfg.Presign, logger)
	gatewayService := gateway.NewGatewayService(store, executor, issuer, transferRepo, publisher, cfg.Transfer, logger)
	cleanupService := cleanup.NewCleanupService(transferRepo, store, cfg.Cleanup.StaleAfter, logger)

	//http
	router := chi.NewRouter(logger, m, cfg.Server, cfg.Env.Env, chi.Handlers{
		File:     file.NewFileHandlerV1(gatewayService, cfg.Server.FormMemory, logger),
		Access:   access.NewAccessHandlerV1(gatewayService, logger),
		Download: download.NewDownloadHandlerV1(gatewayService, cfg.Download.Dir, logger),
		Transfer: transferhandler.NewTransferHandlerV1(gatewayService, logger),
	})
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init cleanup task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initCleanupTask(ctx, cleanupService, cfg.Cleanup.Every, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}

func initStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (port.ObjectStore, error) {
	switch cfg.Storage.Provider {
	case config.ProviderMinio:
		return minio.NewAdapter(cfg.Minio, logger)
	case config.ProviderS3:
		return s3.NewAdapter(ctx, cfg.S3, logger)
	case config.ProviderMemory:
		return memory.NewStore(cfg.Storage.MemoryBuckets...), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}

func initPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (port.EventPublisher, error) {
	if cfg.URL == "" {
		logger.Warn("NATS_URL not set, transfer events are not published")
		return nats.NopPublisher{}, nil
	}
	return nats.NewNATSPublisher(ctx, cfg, logger)
}

func initCleanupTask(ctx context.Context, service port.CleanupService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("cleanup task initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			logger.Info("cleanup task starting")
			err := service.CleanupStaleTransfers(ctx, time.Now())
			if err != nil {
				logger.Error("failed to cleanup stale transfers", "error", err)
			} else {
				logger.Info("cleanup task completed successfully")
			}
		case <-ctx.Done():
			logger.Info("cleanup task stopped")
			return
		}
	}

}
