package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/pointshop/internal/authority"
	"github.com/osse101/pointshop/internal/config"
	"github.com/osse101/pointshop/internal/database"
	"github.com/osse101/pointshop/internal/database/memory"
	"github.com/osse101/pointshop/internal/database/postgres"
	"github.com/osse101/pointshop/internal/handler"
	"github.com/osse101/pointshop/internal/ledger"
	"github.com/osse101/pointshop/internal/repository"
)

// Repositories holds the selected backends for the shop, the ledger and the
// authority store, plus the readiness checks and closers that go with them.
type Repositories struct {
	Shop      repository.Shop
	Ledger    *ledger.Guard
	Authority *authority.Guard
	Readiness []handler.ReadinessCheck

	closers []func()
}

// Close releases backend connections in reverse order of creation
func (r *Repositories) Close() {
	slog.Info(LogMsgClosingResources)
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// InitializeRepositories connects the configured backends. The postgres pool,
// when used, is shared by the shop store, the authority store and the
// postgres ledger.
func InitializeRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	repos := &Repositories{}

	var pool *pgxpool.Pool
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		p, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxIdle, cfg.DBMaxLife)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectDB, err)
		}
		pool = p
		repos.closers = append(repos.closers, p.Close)
		slog.Info(LogMsgDatabaseConnected, "host", cfg.DBHost, "database", cfg.DBName)

		if cfg.AutoMigrate {
			if _, err := database.Migrate(ctx, p); err != nil {
				repos.Close()
				return nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrate, err)
			}
		}

		repos.Shop = postgres.NewShopRepository(p)
		repos.Authority = authority.NewGuard(postgres.NewAuthorityRepository(p), cfg.ExternalCallTimeout)
		repos.Readiness = append(repos.Readiness, handler.ReadinessCheck{Name: ReadinessDatabase, Pinger: p})
	case config.StoreBackendMemory:
		repos.Shop = memory.NewStore()
		repos.Authority = authority.NewGuard(authority.NewMemoryStore(), cfg.ExternalCallTimeout)
	default:
		return nil, fmt.Errorf(ErrMsgUnknownStoreBackend, cfg.StoreBackend)
	}
	slog.Info(LogMsgStoreSelected, "backend", cfg.StoreBackend)

	backend, err := newLedger(ctx, cfg, pool, repos)
	if err != nil {
		repos.Close()
		return nil, err
	}
	repos.Ledger = ledger.NewGuard(backend, ledger.GuardConfig{
		Timeout:        cfg.ExternalCallTimeout,
		FailOpen:       cfg.LedgerFailOpen,
		DefaultBalance: cfg.DefaultBalance,
	})
	slog.Info(LogMsgLedgerSelected, "backend", cfg.LedgerBackend, "fail_open", cfg.LedgerFailOpen)

	return repos, nil
}

func newLedger(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, repos *Repositories) (ledger.Ledger, error) {
	switch cfg.LedgerBackend {
	case ledger.BackendPostgres:
		if pool == nil {
			return nil, fmt.Errorf("%s", ErrMsgPostgresLedgerNoPool)
		}
		return postgres.NewLedgerRepository(pool, cfg.DefaultBalance), nil
	case ledger.BackendHTTP:
		return ledger.NewHTTPLedger(cfg.LedgerURL, &http.Client{Timeout: cfg.ExternalCallTimeout}), nil
	case ledger.BackendRedis:
		rl, client, err := ledger.NewRedisLedger(ctx, cfg.RedisURL, cfg.DefaultBalance)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectRedis, err)
		}
		repos.closers = append(repos.closers, func() { _ = client.Close() })
		repos.Readiness = append(repos.Readiness, handler.ReadinessCheck{Name: ReadinessLedger, Pinger: rl})
		return rl, nil
	case ledger.BackendMemory:
		return ledger.NewMemoryLedger(cfg.DefaultBalance), nil
	default:
		return nil, fmt.Errorf(ErrMsgUnknownLedgerBackend, cfg.LedgerBackend)
	}
}
