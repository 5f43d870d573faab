package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/repository"
)

// ShopRepository implements repository.Shop for PostgreSQL
type ShopRepository struct {
	db *pgxpool.Pool
}

// NewShopRepository creates a new ShopRepository
func NewShopRepository(db *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{db: db}
}

var _ repository.Shop = (*ShopRepository)(nil)

// CreateItem inserts a catalog item and fills in its ID
func (r *ShopRepository) CreateItem(ctx context.Context, item *domain.CatalogItem) error {
	err := r.db.QueryRow(ctx, SQLInsertItem,
		item.Name, item.Description, item.Price, string(item.Kind), nullString(item.Command),
		item.MaxUses, item.CooldownMinutes, item.Enabled, item.Stock, item.RoleLevel,
		item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf(ErrMsgDuplicateItemFormat, domain.ErrDuplicateName, item.Name)
		}
		return fmt.Errorf(ErrMsgFailedToInsertItem, err)
	}
	return nil
}

// UpdateItem overwrites every mutable column of an item
func (r *ShopRepository) UpdateItem(ctx context.Context, item *domain.CatalogItem) error {
	tag, err := r.db.Exec(ctx, SQLUpdateItem,
		item.ID, item.Name, item.Description, item.Price, string(item.Kind), nullString(item.Command),
		item.MaxUses, item.CooldownMinutes, item.Enabled, item.Stock, item.RoleLevel, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf(ErrMsgDuplicateItemFormat, domain.ErrDuplicateName, item.Name)
		}
		return fmt.Errorf(ErrMsgFailedToUpdateItem, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// DeleteItem removes grants, purchases and the item in one transaction
func (r *ShopRepository) DeleteItem(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	grants, err := tx.Exec(ctx, SQLDeleteGrantsByItem, id)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToDeleteItem, err)
	}
	purchases, err := tx.Exec(ctx, SQLDeletePurchasesByItem, id)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToDeleteItem, err)
	}
	tag, err := tx.Exec(ctx, SQLDeleteItem, id)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToDeleteItem, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(ErrMsgFailedToCommitTransaction, err)
	}

	logger.FromContext(ctx).Info(LogMsgItemDeleted,
		"item_id", id,
		"grants", grants.RowsAffected(),
		"purchases", purchases.RowsAffected())
	return nil
}

// GetItem returns an item by ID
func (r *ShopRepository) GetItem(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	return queryItem(ctx, r.db, SQLSelectItemByID, id)
}

// GetItemByName returns the item whose name matches case-insensitively
func (r *ShopRepository) GetItemByName(ctx context.Context, name string) (*domain.CatalogItem, error) {
	return queryItem(ctx, r.db, SQLSelectItemByName, name)
}

// FindEnabledItem resolves a purchase query against enabled items
func (r *ShopRepository) FindEnabledItem(ctx context.Context, query string) (*domain.CatalogItem, error) {
	return queryItem(ctx, r.db, SQLFindEnabledItem, query, escapeLike(query))
}

// FindEnabledCommand returns the enabled command item bound to a command name
func (r *ShopRepository) FindEnabledCommand(ctx context.Context, command string) (*domain.CatalogItem, error) {
	return queryItem(ctx, r.db, SQLFindEnabledCommand, command)
}

// ListItems returns one page of items for the given view
func (r *ShopRepository) ListItems(ctx context.Context, filter domain.ItemFilter, offset, limit int) ([]domain.CatalogItem, error) {
	query := SQLListItemsAdmin
	if filter.View == domain.ViewStorefront {
		query = SQLListItemsStorefront
	}

	rows, err := r.db.Query(ctx, query, filter.View == domain.ViewStorefront, string(filter.Kind), limit, offset)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToListItems, err)
	}
	defer rows.Close()

	items := make([]domain.CatalogItem, 0, limit)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToListItems, err)
	}
	return items, nil
}

// CountItems counts items visible in the given view
func (r *ShopRepository) CountItems(ctx context.Context, filter domain.ItemFilter) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, SQLCountItems, filter.View == domain.ViewStorefront, string(filter.Kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgFailedToCountItems, err)
	}
	return n, nil
}

// ListPurchasesByUser returns a user's purchases oldest first
func (r *ShopRepository) ListPurchasesByUser(ctx context.Context, user domain.Identity) ([]domain.Purchase, error) {
	rows, err := r.db.Query(ctx, SQLSelectPurchasesByUser, user.Platform, user.UserID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToListPurchases, err)
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.ItemID, &p.User.Platform, &p.User.UserID, &p.PricePaid, &p.PurchasedAt); err != nil {
			return nil, fmt.Errorf(ErrMsgFailedToListPurchases, err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToListPurchases, err)
	}
	return purchases, nil
}

// ListGrantsByUser returns a user's grants oldest first
func (r *ShopRepository) ListGrantsByUser(ctx context.Context, user domain.Identity) ([]domain.UsageGrant, error) {
	return queryGrants(ctx, r.db, SQLSelectGrantsByUser, user.Platform, user.UserID)
}

// ListGrants returns grants ordered by last use, never-used last
func (r *ShopRepository) ListGrants(ctx context.Context, offset, limit int) ([]domain.UsageGrant, error) {
	return queryGrants(ctx, r.db, SQLSelectGrantsByLastUse, limit, offset)
}

// CountGrants counts all usage grants
func (r *ShopRepository) CountGrants(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, SQLCountGrants).Scan(&n); err != nil {
		return 0, fmt.Errorf(ErrMsgFailedToCountGrants, err)
	}
	return n, nil
}

// BeginTx opens a transaction for a purchase or a gate check
func (r *ShopRepository) BeginTx(ctx context.Context) (repository.ShopTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToBeginTransaction, err)
	}
	return &shopTx{tx: tx}, nil
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryItem(ctx context.Context, q querier, sql string, args ...any) (*domain.CatalogItem, error) {
	item, err := scanItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf(ErrMsgFailedToGetItem, err)
	}
	return item, nil
}

func scanItem(row pgx.Row) (*domain.CatalogItem, error) {
	var (
		item    domain.CatalogItem
		kind    string
		command *string
	)
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &kind, &command,
		&item.MaxUses, &item.CooldownMinutes, &item.Enabled, &item.Stock, &item.RoleLevel,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf(ErrMsgFailedToScanItem, err)
	}
	item.Kind = domain.ItemKind(kind)
	item.Command = derefString(command)
	return &item, nil
}

func queryGrants(ctx context.Context, q querier, sql string, args ...any) ([]domain.UsageGrant, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToListGrants, err)
	}
	defer rows.Close()

	var grants []domain.UsageGrant
	for rows.Next() {
		var (
			g       domain.UsageGrant
			command *string
		)
		if err := rows.Scan(&g.ID, &g.PurchaseID, &g.User.Platform, &g.User.UserID, &g.ItemID,
			&command, &g.RemainingUses, &g.LastUsedAt); err != nil {
			return nil, fmt.Errorf(ErrMsgFailedToScanGrant, err)
		}
		g.Command = derefString(command)
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToListGrants, err)
	}
	return grants, nil
}
