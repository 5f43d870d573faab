package domain

import "time"

// Purchase records one successful buy. It is never updated.
type Purchase struct {
	ID          int64     `json:"id"`
	ItemID      int64     `json:"item_id"`
	User        Identity  `json:"user"`
	PricePaid   int64     `json:"price_paid"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// UsageGrant is the usage counter backing a non-role purchase.
type UsageGrant struct {
	ID            int64      `json:"id"`
	PurchaseID    int64      `json:"purchase_id"`
	User          Identity   `json:"user"`
	ItemID        int64      `json:"item_id"`
	Command       string     `json:"command,omitempty"`
	RemainingUses int        `json:"remaining_uses"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
}

// Receipt is returned by a successful purchase.
type Receipt struct {
	PurchaseID    int64    `json:"purchase_id"`
	ItemID        int64    `json:"item_id"`
	ItemName      string   `json:"item_name"`
	Kind          ItemKind `json:"kind"`
	PricePaid     int64    `json:"price_paid"`
	BalanceAfter  int64    `json:"balance_after"`
	GrantID       int64    `json:"grant_id,omitempty"`
	RemainingUses int      `json:"remaining_uses,omitempty"`
	MaxUses       int      `json:"max_uses,omitempty"`
	RoleUpgraded  bool     `json:"role_upgraded,omitempty"`
	NewAuthority  int      `json:"new_authority,omitempty"`
}

// Entitlement is a user's view of one non-role purchase and its grant.
type Entitlement struct {
	PurchaseID      int64      `json:"purchase_id"`
	ItemID          int64      `json:"item_id"`
	ItemName        string     `json:"item_name"`
	Kind            ItemKind   `json:"kind"`
	Command         string     `json:"command,omitempty"`
	RemainingUses   int        `json:"remaining_uses"`
	MaxUses         int        `json:"max_uses"`
	CooldownMinutes int        `json:"cooldown_minutes,omitempty"`
	PurchasedAt     time.Time  `json:"purchased_at"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty"`
}

// UsageRecord is one row of the admin usage report.
type UsageRecord struct {
	GrantID       int64      `json:"grant_id"`
	User          Identity   `json:"user"`
	ItemID        int64      `json:"item_id"`
	Command       string     `json:"command,omitempty"`
	RemainingUses int        `json:"remaining_uses"`
	MaxUses       int        `json:"max_uses"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
}

// UsageReport is one page of usage records.
type UsageReport struct {
	Records  []UsageRecord `json:"records"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int           `json:"total"`
}
