package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/osse101/pointshop/internal/domain"
)

// shopTx implements repository.ShopTx on a pgx transaction
type shopTx struct {
	tx pgx.Tx
}

func (t *shopTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *shopTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// LockUserKey takes a transaction-scoped advisory lock. It works even when no
// row exists yet, unlike SELECT FOR UPDATE.
func (t *shopTx) LockUserKey(ctx context.Context, user domain.Identity, key string) error {
	if _, err := t.tx.Exec(ctx, SQLAdvisoryLock, hashUserKey(user, key)); err != nil {
		return fmt.Errorf(ErrMsgFailedToAcquireLock, err)
	}
	return nil
}

func (t *shopTx) GetItemForUpdate(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	return queryItem(ctx, t.tx, SQLSelectItemForUpdate, id)
}

func (t *shopTx) InsertPurchase(ctx context.Context, p *domain.Purchase) error {
	err := t.tx.QueryRow(ctx, SQLInsertPurchase,
		p.ItemID, p.User.Platform, p.User.UserID, p.PricePaid, p.PurchasedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToInsertPurchase, err)
	}
	return nil
}

func (t *shopTx) InsertGrant(ctx context.Context, g *domain.UsageGrant) error {
	err := t.tx.QueryRow(ctx, SQLInsertGrant,
		g.PurchaseID, g.User.Platform, g.User.UserID, g.ItemID, nullString(g.Command),
		g.RemainingUses, g.LastUsedAt,
	).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToInsertGrant, err)
	}
	return nil
}

func (t *shopTx) DecrementStock(ctx context.Context, itemID int64) (bool, error) {
	tag, err := t.tx.Exec(ctx, SQLDecrementStock, itemID)
	if err != nil {
		return false, fmt.Errorf(ErrMsgFailedToDecrement, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *shopTx) GetGrantsForUpdate(ctx context.Context, user domain.Identity, itemID int64) ([]domain.UsageGrant, error) {
	return queryGrants(ctx, t.tx, SQLSelectGrantsForUpdate, user.Platform, user.UserID, itemID)
}

func (t *shopTx) UpdateGrant(ctx context.Context, g *domain.UsageGrant) error {
	tag, err := t.tx.Exec(ctx, SQLUpdateGrant, g.ID, g.RemainingUses, g.LastUsedAt)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToUpdateGrant, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf(ErrMsgFailedToUpdateGrant, domain.ErrNotFound)
	}
	return nil
}
