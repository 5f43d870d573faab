package repository

import (
	"context"
	"strconv"

	"github.com/osse101/pointshop/internal/domain"
)

// Catalog defines the persistence surface for catalog items
type Catalog interface {
	CreateItem(ctx context.Context, item *domain.CatalogItem) error
	UpdateItem(ctx context.Context, item *domain.CatalogItem) error
	// DeleteItem removes the item together with its grants and purchases
	DeleteItem(ctx context.Context, id int64) error
	GetItem(ctx context.Context, id int64) (*domain.CatalogItem, error)
	GetItemByName(ctx context.Context, name string) (*domain.CatalogItem, error)
	// FindEnabledItem resolves a free-text query: exact case-insensitive name
	// first, then the lowest-id enabled item whose name contains the query
	FindEnabledItem(ctx context.Context, query string) (*domain.CatalogItem, error)
	FindEnabledCommand(ctx context.Context, command string) (*domain.CatalogItem, error)
	ListItems(ctx context.Context, filter domain.ItemFilter, offset, limit int) ([]domain.CatalogItem, error)
	CountItems(ctx context.Context, filter domain.ItemFilter) (int, error)
}

// Entitlements defines read access to purchases and usage grants
type Entitlements interface {
	ListPurchasesByUser(ctx context.Context, user domain.Identity) ([]domain.Purchase, error)
	ListGrantsByUser(ctx context.Context, user domain.Identity) ([]domain.UsageGrant, error)
	// ListGrants returns grants ordered by most recent use, never-used last
	ListGrants(ctx context.Context, offset, limit int) ([]domain.UsageGrant, error)
	CountGrants(ctx context.Context) (int, error)
}

// Shop is the full entitlement store
type Shop interface {
	Catalog
	Entitlements
	BeginTx(ctx context.Context) (ShopTx, error)
}

// ShopTx defines the operations that run inside one purchase or consume
type ShopTx interface {
	Tx
	// LockUserKey serializes work on (user, key) until the transaction ends
	LockUserKey(ctx context.Context, user domain.Identity, key string) error
	// GetItemForUpdate re-reads an item and locks its row
	GetItemForUpdate(ctx context.Context, id int64) (*domain.CatalogItem, error)
	InsertPurchase(ctx context.Context, p *domain.Purchase) error
	InsertGrant(ctx context.Context, g *domain.UsageGrant) error
	// DecrementStock takes one unit from a capped item; it reports false when none is left
	DecrementStock(ctx context.Context, itemID int64) (bool, error)
	// GetGrantsForUpdate returns the user's grants for an item ordered by id and locks them
	GetGrantsForUpdate(ctx context.Context, user domain.Identity, itemID int64) ([]domain.UsageGrant, error)
	UpdateGrant(ctx context.Context, g *domain.UsageGrant) error
}

// ItemLockKey is the LockUserKey key serializing purchases of one item
func ItemLockKey(itemID int64) string {
	return "item:" + strconv.FormatInt(itemID, 10)
}

// RoleLockKey is the LockUserKey key serializing a user's role upgrades
func RoleLockKey() string {
	return "role"
}

// CommandLockKey is the LockUserKey key serializing use of one command's grants
func CommandLockKey(command string) string {
	return "command:" + command
}
