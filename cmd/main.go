package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/media-api/internal/config"
	"github.com/Vovarama1992/media-api/internal/delivery"
	ws "github.com/Vovarama1992/media-api/internal/delivery/ws"
	"github.com/Vovarama1992/media-api/internal/domain"
	"github.com/Vovarama1992/media-api/internal/infra"
	"github.com/Vovarama1992/media-api/internal/infra/migrations"
	"github.com/Vovarama1992/media-api/internal/ports"
	"go.uber.org/zap"
)

func main() {

	// CONFIG
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	// LOGGER
	zcore, err := newZap(cfg.LogMode)
	if err != nil {
		panic("logger: " + err.Error())
	}
	defer zcore.Sync()
	zl := logger.NewZapLogger(zcore.Sugar())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// STORE
	repo, closeStore, err := openStore(ctx, cfg, zl)
	if err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "store init failed",
			Error:   err,
			Fields:  map[string]any{"store": cfg.Store},
		})
		os.Exit(1)
	}
	defer closeStore()

	// WS HUB
	hub := ws.NewHub(zl)
	defer hub.Close()

	// SERVICES
	mediaService := domain.NewMediaService(repo, zl, domain.WithEvents(hub))

	// HANDLERS
	hMedia := delivery.NewMediaHandler(mediaService, zl)

	// ROUTER
	r := delivery.NewRouter(zl, hMedia, ws.Handler(hub, zl))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Log(logger.LogEntry{
				Level:   "error",
				Message: "server shutdown failed",
				Error:   err,
			})
		}
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "server started",
		Fields:  map[string]any{"port": cfg.Port, "store": cfg.Store},
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server crashed",
			Error:   err,
		})
		return
	}

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "server stopped",
	})
}

func newZap(mode string) (*zap.Logger, error) {
	if mode == "development" || mode == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStore(ctx context.Context, cfg config.Config, zl *logger.ZapLogger) (ports.MediaRepository, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, err
			}
		}

		repo, err := infra.NewSQLiteMediaRepo(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil

	default:
		pool, err := infra.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		if cfg.Migrate {
			if err := migrations.MigrateUp(pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		} else if err := migrations.CheckStatus(pool); err != nil {
			pool.Close()
			return nil, nil, err
		}

		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "postgres ready",
		})
		return infra.NewPostgresMediaRepo(pool), pool.Close, nil
	}
}
