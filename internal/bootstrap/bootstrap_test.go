package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/pointshop/internal/catalog"
	"github.com/osse101/pointshop/internal/config"
	"github.com/osse101/pointshop/internal/database/memory"
	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/event"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StoreBackend:        "memory",
		LedgerBackend:       "memory",
		DefaultBalance:      250,
		ExternalCallTimeout: time.Second,
	}
}

func TestInitializeRepositories_Memory(t *testing.T) {
	ctx := context.Background()
	repos, err := InitializeRepositories(ctx, memoryConfig())
	require.NoError(t, err)
	defer repos.Close()

	assert.NotNil(t, repos.Shop)
	assert.Empty(t, repos.Readiness)

	balance, err := repos.Ledger.Balance(ctx, domain.NewIdentity("twitch", "alice"))
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)

	level, err := repos.Authority.GetAuthority(ctx, domain.NewIdentity("twitch", "alice"))
	require.NoError(t, err)
	assert.Equal(t, 0, level)
}

func TestInitializeRepositories_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"postgres ledger without pool", func(c *config.Config) { c.LedgerBackend = "postgres" }, ErrMsgPostgresLedgerNoPool},
		{"unknown ledger", func(c *config.Config) { c.LedgerBackend = "abacus" }, "abacus"},
		{"unknown store", func(c *config.Config) { c.StoreBackend = "files" }, "files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			tt.mutate(cfg)

			repos, err := InitializeRepositories(context.Background(), cfg)
			require.Error(t, err)
			assert.Nil(t, repos)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitializeEventSystem(t *testing.T) {
	cfg := &config.Config{EventDeadLetterPath: filepath.Join(t.TempDir(), "dlq", "events.jsonl")}

	publisher, err := InitializeEventSystem(cfg)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Dir(cfg.EventDeadLetterPath))
	require.NoError(t, err, "dead-letter directory should be created")

	var got []event.Type
	publisher.Subscribe(event.ItemCreated, func(_ context.Context, e event.Event) error {
		got = append(got, e.Type)
		return nil
	})
	require.NoError(t, publisher.Publish(context.Background(), event.NewItemChangedEvent(event.ItemCreated, &domain.CatalogItem{ID: 1, Name: "x"})))
	assert.Equal(t, []event.Type{event.ItemCreated}, got)

	require.NoError(t, publisher.Shutdown(context.Background()))
}

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "1", "items": [
		{"name": "Hug", "price": 5, "kind": "command", "command": "hug"},
		{"name": "VIP", "price": 500, "kind": "role", "role_level": 2}
	]}`), 0o644))

	svc := catalog.NewService(memory.NewStore(), nil, catalog.DefaultDefaults())

	result, err := SeedCatalog(ctx, svc, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)

	result, err = SeedCatalog(ctx, svc, path)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 2, result.Skipped)

	_, err = SeedCatalog(ctx, svc, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCleanupLogs(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf(LogFileNamePattern, fmt.Sprintf("2026-01-%02d_00-00-00", i+1))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	cleanupLogs(dir, LogFileRetentionCount)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Len(t, names, LogFileRetentionCount+1)
	assert.Contains(t, names, "notes.txt")
	assert.NotContains(t, names, "session_2026-01-01_00-00-00.log")
	assert.Contains(t, names, "session_2026-01-12_00-00-00.log")
}

func TestGracefulShutdown_Partial(t *testing.T) {
	repos, err := InitializeRepositories(context.Background(), memoryConfig())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		GracefulShutdown(context.Background(), ShutdownComponents{Repositories: repos})
	})
}
