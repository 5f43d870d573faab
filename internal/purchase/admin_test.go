package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/event"
)

func TestEntitlements(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boost := newItem("Boost", domain.KindCommand, 100)
	boost.Command = "boost"
	boost.MaxUses = 3
	boost.CooldownMinutes = 5
	f.addItem(t, boost)
	f.addItem(t, newItem("Sticker", domain.KindItem, 10))
	role := newItem("VIP", domain.KindRole, 10)
	role.RoleLevel = intPtr(1)
	f.addItem(t, role)

	for _, q := range []string{"boost", "sticker", "vip"} {
		_, err := f.svc.Purchase(ctx, alice, q)
		require.NoError(t, err)
	}

	ents, err := f.svc.Entitlements(ctx, alice)
	require.NoError(t, err)
	require.Len(t, ents, 2, "role purchases are not listed")

	assert.Equal(t, "Boost", ents[0].ItemName)
	assert.Equal(t, "boost", ents[0].Command)
	assert.Equal(t, 3, ents[0].RemainingUses)
	assert.Equal(t, 3, ents[0].MaxUses)
	assert.Equal(t, 5, ents[0].CooldownMinutes)
	assert.Equal(t, "Sticker", ents[1].ItemName)
	assert.Equal(t, domain.KindItem, ents[1].Kind)

	none, err := f.svc.Entitlements(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGrantUses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boost := newItem("Boost", domain.KindCommand, 100)
	boost.Command = "boost"
	boost.MaxUses = 3
	item := f.addItem(t, boost)

	t.Run("non-admin denied", func(t *testing.T) {
		_, err := f.svc.GrantUses(ctx, alice, bob, "boost", 5)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
		assert.Empty(t, f.grants(t, bob))
	})

	t.Run("creates a free purchase when none exists", func(t *testing.T) {
		grant, err := f.svc.GrantUses(ctx, root, bob, "boost", 5)
		require.NoError(t, err)
		assert.Equal(t, 5, grant.RemainingUses)
		assert.Equal(t, item.ID, grant.ItemID)

		purchases := f.purchases(t, bob)
		require.Len(t, purchases, 1)
		assert.Equal(t, int64(0), purchases[0].PricePaid)
		assert.Equal(t, int64(1000), f.balance(t, bob))
	})

	t.Run("tops up the oldest grant", func(t *testing.T) {
		_, err := f.svc.Purchase(ctx, bob, "boost")
		require.NoError(t, err)

		grant, err := f.svc.GrantUses(ctx, root, bob, "boost", 2)
		require.NoError(t, err)
		assert.Equal(t, 7, grant.RemainingUses)

		grants := f.grants(t, bob)
		require.Len(t, grants, 2)
		assert.Equal(t, 7, grants[0].RemainingUses)
		assert.Equal(t, 3, grants[1].RemainingUses)
	})

	t.Run("bad input", func(t *testing.T) {
		_, err := f.svc.GrantUses(ctx, root, bob, "boost", 0)
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.svc.GrantUses(ctx, root, bob, " ", 1)
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.svc.GrantUses(ctx, root, bob, "nope", 1)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	assert.Equal(t, 2, f.events.count(event.UsageGranted))
}

func TestUsageReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boost := newItem("Boost", domain.KindCommand, 10)
	boost.Command = "boost"
	boost.MaxUses = 4
	f.addItem(t, boost)

	for _, u := range []domain.Identity{alice, bob} {
		_, err := f.svc.Purchase(ctx, u, "boost")
		require.NoError(t, err)
	}

	// Mark bob's grant as used so it sorts first
	tx, err := f.shop.BeginTx(ctx)
	require.NoError(t, err)
	grants, err := tx.GetGrantsForUpdate(ctx, bob, 1)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	used := time.Now().UTC()
	grants[0].LastUsedAt = &used
	grants[0].RemainingUses = 3
	require.NoError(t, tx.UpdateGrant(ctx, &grants[0]))
	require.NoError(t, tx.Commit(ctx))

	_, err = f.svc.UsageReport(ctx, alice, 1, 10)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	report, err := f.svc.UsageReport(ctx, root, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, domain.DefaultAdminPageSize, report.PageSize)
	require.Len(t, report.Records, 2)
	assert.Equal(t, bob, report.Records[0].User)
	assert.Equal(t, 3, report.Records[0].RemainingUses)
	assert.Equal(t, 4, report.Records[0].MaxUses)
	assert.Equal(t, alice, report.Records[1].User)
	assert.Nil(t, report.Records[1].LastUsedAt)

	page2, err := f.svc.UsageReport(ctx, root, 2, 1)
	require.NoError(t, err)
	require.Len(t, page2.Records, 1)
	assert.Equal(t, alice, page2.Records[0].User)

	_, err = f.svc.UsageReport(ctx, root, 1, 500)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
