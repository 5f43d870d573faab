package purchase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/osse101/pointshop/internal/admin"
	"github.com/osse101/pointshop/internal/authority"
	"github.com/osse101/pointshop/internal/concurrency"
	"github.com/osse101/pointshop/internal/database/memory"
	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/event"
	"github.com/osse101/pointshop/internal/ledger"
	"github.com/osse101/pointshop/internal/repository"
)

var (
	alice = domain.NewIdentity("twitch", "alice")
	bob   = domain.NewIdentity("discord", "bob")
	root  = domain.NewIdentity("twitch", "root")
)

// faultyShop injects storage failures into a memory store
type faultyShop struct {
	*memory.Store
	mu                sync.Mutex
	commitErr         error
	insertPurchaseErr error
}

func (f *faultyShop) BeginTx(ctx context.Context) (repository.ShopTx, error) {
	tx, err := f.Store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{ShopTx: tx, shop: f}, nil
}

func (f *faultyShop) failures() (commitErr, insertErr error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commitErr, f.insertPurchaseErr
}

type faultyTx struct {
	repository.ShopTx
	shop *faultyShop
}

func (t *faultyTx) Commit(ctx context.Context) error {
	if commitErr, _ := t.shop.failures(); commitErr != nil {
		_ = t.ShopTx.Rollback(ctx)
		return commitErr
	}
	return t.ShopTx.Commit(ctx)
}

func (t *faultyTx) InsertPurchase(ctx context.Context, p *domain.Purchase) error {
	if _, insertErr := t.shop.failures(); insertErr != nil {
		return insertErr
	}
	return t.ShopTx.InsertPurchase(ctx, p)
}

// brokenAuthority fails every update
type brokenAuthority struct {
	*authority.MemoryStore
}

func (brokenAuthority) SetAuthority(ctx context.Context, user domain.Identity, level int) error {
	return errors.New("authority store offline")
}

// flakyLedger refuses debits regardless of balance
type flakyLedger struct {
	*ledger.MemoryLedger
}

func (flakyLedger) Debit(ctx context.Context, user domain.Identity, amount int64) (int64, error) {
	return 0, errors.New("ledger timeout")
}

type fixture struct {
	svc       Service
	shop      *faultyShop
	ledger    *ledger.MemoryLedger
	authority *authority.MemoryStore
	events    *recorder
}

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) handle(ctx context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count(t event.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	ledger    ledger.Ledger
	authority authority.Store
}

func withLedger(l ledger.Ledger) fixtureOption {
	return func(c *fixtureConfig) { c.ledger = l }
}

func withAuthority(a authority.Store) fixtureOption {
	return func(c *fixtureConfig) { c.authority = a }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	f := &fixture{
		shop:      &faultyShop{Store: memory.NewStore()},
		ledger:    ledger.NewMemoryLedger(1000),
		authority: authority.NewMemoryStore(),
		events:    &recorder{},
	}
	cfg := &fixtureConfig{ledger: f.ledger, authority: f.authority}
	for _, opt := range opts {
		opt(cfg)
	}

	bus := event.NewMemoryBus()
	bus.Subscribe(event.PurchaseCompleted, f.events.handle)
	bus.Subscribe(event.UsageGranted, f.events.handle)

	f.svc = NewService(
		f.shop,
		ledger.NewGuard(cfg.ledger, ledger.GuardConfig{Timeout: time.Second}),
		authority.NewGuard(cfg.authority, time.Second),
		admin.NewAllowlist([]domain.Identity{root}),
		concurrency.NewLockManager(),
		bus,
	)
	return f
}

// newItem returns an enabled, unlimited, single-use item
func newItem(name string, kind domain.ItemKind, price int64) domain.CatalogItem {
	return domain.CatalogItem{
		Name:    name,
		Kind:    kind,
		Price:   price,
		MaxUses: 1,
		Enabled: true,
		Stock:   domain.UnlimitedStock,
	}
}

func (f *fixture) addItem(t *testing.T, item domain.CatalogItem) *domain.CatalogItem {
	t.Helper()
	require.NoError(t, f.shop.CreateItem(context.Background(), &item))
	return &item
}

func (f *fixture) balance(t *testing.T, user domain.Identity) int64 {
	t.Helper()
	b, err := f.ledger.GetBalance(context.Background(), user)
	require.NoError(t, err)
	return b
}

func (f *fixture) purchases(t *testing.T, user domain.Identity) []domain.Purchase {
	t.Helper()
	p, err := f.shop.ListPurchasesByUser(context.Background(), user)
	require.NoError(t, err)
	return p
}

func (f *fixture) grants(t *testing.T, user domain.Identity) []domain.UsageGrant {
	t.Helper()
	g, err := f.shop.ListGrantsByUser(context.Background(), user)
	require.NoError(t, err)
	return g
}

func intPtr(v int) *int { return &v }
