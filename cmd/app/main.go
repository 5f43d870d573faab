package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osse101/pointshop/internal/admin"
	"github.com/osse101/pointshop/internal/bootstrap"
	"github.com/osse101/pointshop/internal/catalog"
	"github.com/osse101/pointshop/internal/concurrency"
	"github.com/osse101/pointshop/internal/config"
	"github.com/osse101/pointshop/internal/gate"
	"github.com/osse101/pointshop/internal/purchase"
	"github.com/osse101/pointshop/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		return err
	}

	repos, err := bootstrap.InitializeRepositories(ctx, cfg)
	if err != nil {
		return err
	}

	admins := admin.NewAllowlist(cfg.Admins)
	catalogSvc := catalog.NewService(repos.Shop, publisher, catalog.Defaults{
		MaxUses:         cfg.DefaultMaxUses,
		CooldownMinutes: cfg.DefaultCooldownMinutes,
		RoleLevel:       cfg.DefaultRoleLevel,
	})
	purchaseSvc := purchase.NewService(repos.Shop, repos.Ledger, repos.Authority, admins, concurrency.NewLockManager(), publisher)
	commandGate := gate.New(repos.Shop, publisher,
		gate.WithCache(cfg.GateCacheSize, cfg.GateCacheTTL),
		gate.WithElevationTTL(cfg.ElevationTTL))

	if cfg.CatalogSeedFile != "" {
		if _, err := bootstrap.SeedCatalog(ctx, catalogSvc, cfg.CatalogSeedFile); err != nil {
			repos.Close()
			return err
		}
	}

	srv := server.NewServer(server.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		ServiceName:    cfg.ServiceName,
		Version:        cfg.Version,
		RequestLimit:   cfg.RequestLimit,
		RateWindow:     cfg.RateWindow,
	}, server.Dependencies{
		Catalog:   catalogSvc,
		Purchase:  purchaseSvc,
		Gate:      commandGate,
		Admins:    admins,
		Readiness: repos.Readiness,
	})

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:             srv,
		ResilientPublisher: publisher,
		Repositories:       repos,
	})

	return err
}
