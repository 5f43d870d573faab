package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/pointshop/internal/admin"
	"github.com/osse101/pointshop/internal/authority"
	"github.com/osse101/pointshop/internal/concurrency"
	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/gate"
	"github.com/osse101/pointshop/internal/ledger"
	"github.com/osse101/pointshop/internal/purchase"
)

// TestConcurrentGateConsume_Integration checks that concurrent gate calls for
// the same user and command never spend more uses than the grant holds.
func TestConcurrentGateConsume_Integration(t *testing.T) {
	pool := setupDB(t)
	repo := NewShopRepository(pool)
	ctx := context.Background()
	user := domain.NewIdentity("twitch", "spammer")

	boost := newItem("boost", domain.KindCommand, 10)
	boost.MaxUses = 5
	boost.CooldownMinutes = 0
	require.NoError(t, repo.CreateItem(ctx, boost))

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	p := &domain.Purchase{ItemID: boost.ID, User: user, PricePaid: 10, PurchasedAt: time.Now()}
	require.NoError(t, tx.InsertPurchase(ctx, p))
	require.NoError(t, tx.InsertGrant(ctx, &domain.UsageGrant{PurchaseID: p.ID, User: user, ItemID: boost.ID, Command: "boost", RemainingUses: 5}))
	require.NoError(t, tx.Commit(ctx))

	g := gate.New(repo, nil)

	const callers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		consumed  int
		exhausted int
		failures  []error
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			d, err := g.CheckAndConsume(ctx, user, "boost")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failures = append(failures, err)
			case d.Outcome == domain.GateConsumed:
				consumed++
			case d.Outcome == domain.GateBlocked && d.Reason == domain.BlockExhausted:
				exhausted++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, failures)
	assert.Equal(t, 5, consumed)
	assert.Equal(t, callers-5, exhausted)

	grants, err := repo.ListGrantsByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, 0, grants[0].RemainingUses)
}

// TestConcurrentPurchaseStock_Integration checks that a limited-stock item
// sells exactly its stock when many users buy it at once, and that only the
// buyers were charged.
func TestConcurrentPurchaseStock_Integration(t *testing.T) {
	pool := setupDB(t)
	repo := NewShopRepository(pool)
	ctx := context.Background()

	sticker := newItem("sticker", domain.KindItem, 30)
	sticker.Stock = 3
	require.NoError(t, repo.CreateItem(ctx, sticker))

	balances := NewLedgerRepository(pool, 100)
	svc := purchase.NewService(
		repo,
		ledger.NewGuard(balances, ledger.GuardConfig{Timeout: 5 * time.Second}),
		authority.NewGuard(NewAuthorityRepository(pool), 5*time.Second),
		admin.NewAllowlist(nil),
		concurrency.NewLockManager(),
		nil,
	)

	const buyers = 10
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		sold       []domain.Identity
		outOfStock int
		failures   []error
	)
	wg.Add(buyers)
	for i := 0; i < buyers; i++ {
		user := domain.NewIdentity("twitch", fmt.Sprintf("buyer-%d", i))
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(ctx, user, "sticker")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold = append(sold, user)
			case errors.Is(err, domain.ErrOutOfStock):
				outOfStock++
			default:
				failures = append(failures, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, failures)
	assert.Len(t, sold, 3)
	assert.Equal(t, buyers-3, outOfStock)

	reloaded, err := repo.GetItem(ctx, sticker.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Stock)

	for i := 0; i < buyers; i++ {
		user := domain.NewIdentity("twitch", fmt.Sprintf("buyer-%d", i))
		balance, err := balances.GetBalance(ctx, user)
		require.NoError(t, err)

		want := int64(100)
		for _, s := range sold {
			if s == user {
				want = 70
			}
		}
		assert.Equal(t, want, balance, "balance of %s", user)
	}
}

// TestConcurrentRolePurchase_Integration runs role purchases for one user on
// two services that share only the database, the way two app instances do.
func TestConcurrentRolePurchase_Integration(t *testing.T) {
	pool := setupDB(t)
	repo := NewShopRepository(pool)
	ctx := context.Background()
	user := domain.NewIdentity("twitch", "climber")

	vip := newItem("vip", domain.KindRole, 300)
	require.NoError(t, repo.CreateItem(ctx, vip))
	legend := newItem("legend", domain.KindRole, 400)
	legendLevel := 4
	legend.RoleLevel = &legendLevel
	require.NoError(t, repo.CreateItem(ctx, legend))

	balances := NewLedgerRepository(pool, 1000)
	levels := NewAuthorityRepository(pool)
	newInstance := func() purchase.Service {
		return purchase.NewService(
			repo,
			ledger.NewGuard(balances, ledger.GuardConfig{Timeout: 5 * time.Second}),
			authority.NewGuard(levels, 5*time.Second),
			admin.NewAllowlist(nil),
			concurrency.NewLockManager(),
			nil,
		)
	}

	t.Run("same role sells once", func(t *testing.T) {
		const attempts = 6
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			ok       int
			rejected int
			failures []error
		)
		wg.Add(attempts)
		for i := 0; i < attempts; i++ {
			svc := newInstance()
			go func() {
				defer wg.Done()
				_, err := svc.Purchase(ctx, user, "vip")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, domain.ErrRoleNotHigher):
					rejected++
				default:
					failures = append(failures, err)
				}
			}()
		}
		wg.Wait()

		require.Empty(t, failures)
		assert.Equal(t, 1, ok)
		assert.Equal(t, attempts-1, rejected)

		balance, err := balances.GetBalance(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(700), balance)
	})

	t.Run("different roles never lower the level", func(t *testing.T) {
		other := domain.NewIdentity("twitch", "racer")
		prices := map[string]int64{"vip": 300, "legend": 400}
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			paid int64
		)
		for name, price := range prices {
			wg.Add(1)
			svc := newInstance()
			go func(name string, price int64) {
				defer wg.Done()
				_, err := svc.Purchase(ctx, other, name)
				if err != nil {
					assert.ErrorIs(t, err, domain.ErrRoleNotHigher)
					return
				}
				mu.Lock()
				paid += price
				mu.Unlock()
			}(name, price)
		}
		wg.Wait()

		level, err := levels.GetAuthority(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, 4, level)

		balance, err := balances.GetBalance(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, 1000-paid, balance)
	})
}
