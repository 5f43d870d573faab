package domain

import "time"

// ItemKind is the closed set of catalog item kinds.
type ItemKind string

const (
	KindCommand ItemKind = "command"
	KindRole    ItemKind = "role"
	KindItem    ItemKind = "item"
)

// Valid reports whether k is one of the known kinds.
func (k ItemKind) Valid() bool {
	switch k {
	case KindCommand, KindRole, KindItem:
		return true
	}
	return false
}

// CatalogItem is a purchasable entry in the shop.
//
// Command items carry a command name and a per-purchase usage budget. Role
// items carry a role level and are never consumed. Plain items get a usage
// grant like commands but are not tied to any command.
type CatalogItem struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name" validate:"required,max=100"`
	Description     string    `json:"description" validate:"max=500"`
	Price           int64     `json:"price" validate:"gte=0"`
	Kind            ItemKind  `json:"kind" validate:"required"`
	Command         string    `json:"command,omitempty" validate:"max=100"`
	MaxUses         int       `json:"max_uses" validate:"gte=0"`
	CooldownMinutes int       `json:"cooldown_minutes" validate:"gte=0"`
	Enabled         bool      `json:"enabled"`
	Stock           int       `json:"stock" validate:"gte=-1"`
	RoleLevel       *int      `json:"role_level,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsUnlimited reports whether the item has no stock cap.
func (c *CatalogItem) IsUnlimited() bool {
	return c.Stock == UnlimitedStock
}

// SoldOut reports whether the item has a stock cap that is exhausted.
func (c *CatalogItem) SoldOut() bool {
	return c.Stock == 0
}

// EffectiveMaxUses is the usage budget a new grant starts with.
func (c *CatalogItem) EffectiveMaxUses() int {
	if c.MaxUses <= 0 {
		return 1
	}
	return c.MaxUses
}

// Level returns the role level, or zero for non-role items.
func (c *CatalogItem) Level() int {
	if c.RoleLevel == nil {
		return 0
	}
	return *c.RoleLevel
}

// Clone returns a deep copy so callers can mutate without aliasing storage.
func (c *CatalogItem) Clone() *CatalogItem {
	if c == nil {
		return nil
	}
	out := *c
	if c.RoleLevel != nil {
		lvl := *c.RoleLevel
		out.RoleLevel = &lvl
	}
	return &out
}

// ItemView selects the ordering and visibility of a catalog listing.
type ItemView string

const (
	// ViewStorefront lists enabled items, cheapest first
	ViewStorefront ItemView = "storefront"
	// ViewAdmin lists every item by id
	ViewAdmin ItemView = "admin"
)

// ItemFilter narrows a catalog listing.
type ItemFilter struct {
	View ItemView
	Kind ItemKind // empty means any kind
}

// ItemPage is one page of a catalog listing.
type ItemPage struct {
	Items      []CatalogItem `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}
