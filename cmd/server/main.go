package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/heritage-content/pkg/heritage"
	"github.com/tendant/heritage-content/pkg/heritage/api"
	"github.com/tendant/heritage-content/pkg/heritage/config"
	"github.com/tendant/heritage-content/pkg/heritage/store"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(
		config.WithDotEnv(),
		config.WithEnv(),
		config.WithFile(*configFile),
	)
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.ServerConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbType, _ := cfg.DatabaseType()
	st, err := cfg.BuildStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Warn("Failed to close document store", "err", err)
		}
	}()
	logger.Info("Document store ready", "backend", dbType, "database", cfg.DBName)

	blobs, err := cfg.BuildMediaStore(ctx)
	if err != nil {
		return err
	}

	svc, err := heritage.New(heritage.WithStore(st), heritage.WithLogger(logger))
	if err != nil {
		return err
	}

	if cfg.SeedOnStartup {
		seedStore(ctx, cfg, st, logger)
	}

	router, err := api.NewRouter(api.RouterConfig{
		Service:        svc,
		Media:          blobs,
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AdminKeySHA256: cfg.AdminAPIKeySHA256,
		AdminJWTSecret: cfg.AdminJWTSecret,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server exiting")
	return nil
}

// seedStore fills empty collections with the configured fixtures. Failures
// are logged and the server starts regardless.
func seedStore(ctx context.Context, cfg *config.ServerConfig, st store.Store, logger *slog.Logger) {
	fixtures, err := cfg.Fixtures()
	if err != nil {
		logger.Error("Failed to load seed fixtures", "file", cfg.SeedFile, "err", err)
		return
	}
	report, err := heritage.NewSeeder(st, fixtures, heritage.WithSeedLogger(logger)).Run(ctx)
	if err != nil {
		logger.Error("Seeding finished with errors", "inserted", report.Inserted(), "err", err)
		return
	}
	logger.Info("Seeding finished", "inserted", report.Inserted())
}
