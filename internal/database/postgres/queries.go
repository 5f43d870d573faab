package postgres

const itemColumns = `id, name, description, price, kind, command, max_uses, cooldown_minutes,
	enabled, stock, role_level, created_at, updated_at`

const grantColumns = `id, purchase_id, user_platform, user_id, item_id, command, remaining_uses, last_used_at`

// Catalog
const (
	SQLInsertItem = `
		INSERT INTO shop_items (name, description, price, kind, command, max_uses, cooldown_minutes,
			enabled, stock, role_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	SQLUpdateItem = `
		UPDATE shop_items SET name = $2, description = $3, price = $4, kind = $5, command = $6,
			max_uses = $7, cooldown_minutes = $8, enabled = $9, stock = $10, role_level = $11,
			updated_at = $12
		WHERE id = $1`

	SQLSelectItemByID      = `SELECT ` + itemColumns + ` FROM shop_items WHERE id = $1`
	SQLSelectItemForUpdate = `SELECT ` + itemColumns + ` FROM shop_items WHERE id = $1 FOR UPDATE`
	SQLSelectItemByName    = `SELECT ` + itemColumns + ` FROM shop_items WHERE LOWER(name) = LOWER($1)`

	// Exact case-insensitive match wins, then the oldest substring match
	SQLFindEnabledItem = `
		SELECT ` + itemColumns + ` FROM shop_items
		WHERE enabled AND (LOWER(name) = LOWER($1) OR name ILIKE '%' || $2::text || '%' ESCAPE '\')
		ORDER BY (LOWER(name) = LOWER($1)) DESC, id ASC
		LIMIT 1`

	SQLFindEnabledCommand = `
		SELECT ` + itemColumns + ` FROM shop_items
		WHERE enabled AND kind = 'command' AND command = $1
		ORDER BY id ASC
		LIMIT 1`

	// $1 enabled-only flag, $2 kind filter ('' for any)
	sqlItemFilter = ` WHERE (NOT $1::boolean OR enabled) AND ($2::text = '' OR kind = $2::text)`

	SQLListItemsStorefront = `SELECT ` + itemColumns + ` FROM shop_items` + sqlItemFilter +
		` ORDER BY price ASC, id ASC LIMIT $3 OFFSET $4`
	SQLListItemsAdmin = `SELECT ` + itemColumns + ` FROM shop_items` + sqlItemFilter +
		` ORDER BY id ASC LIMIT $3 OFFSET $4`
	SQLCountItems = `SELECT COUNT(*) FROM shop_items` + sqlItemFilter

	SQLDecrementStock = `
		UPDATE shop_items SET stock = stock - 1, updated_at = NOW()
		WHERE id = $1 AND stock > 0`

	SQLDeleteGrantsByItem    = `DELETE FROM shop_usage_grants WHERE item_id = $1`
	SQLDeletePurchasesByItem = `DELETE FROM shop_purchases WHERE item_id = $1`
	SQLDeleteItem            = `DELETE FROM shop_items WHERE id = $1`
)

// Purchases and grants
const (
	SQLInsertPurchase = `
		INSERT INTO shop_purchases (item_id, user_platform, user_id, price_paid, purchased_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	SQLInsertGrant = `
		INSERT INTO shop_usage_grants (purchase_id, user_platform, user_id, item_id, command,
			remaining_uses, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	SQLUpdateGrant = `UPDATE shop_usage_grants SET remaining_uses = $2, last_used_at = $3 WHERE id = $1`

	SQLSelectPurchasesByUser = `
		SELECT id, item_id, user_platform, user_id, price_paid, purchased_at
		FROM shop_purchases
		WHERE user_platform = $1 AND user_id = $2
		ORDER BY id ASC`

	SQLSelectGrantsByUser = `
		SELECT ` + grantColumns + ` FROM shop_usage_grants
		WHERE user_platform = $1 AND user_id = $2
		ORDER BY id ASC`

	SQLSelectGrantsForUpdate = `
		SELECT ` + grantColumns + ` FROM shop_usage_grants
		WHERE user_platform = $1 AND user_id = $2 AND item_id = $3
		ORDER BY id ASC
		FOR UPDATE`

	SQLSelectGrantsByLastUse = `
		SELECT ` + grantColumns + ` FROM shop_usage_grants
		ORDER BY last_used_at DESC NULLS LAST, id DESC
		LIMIT $1 OFFSET $2`

	SQLCountGrants = `SELECT COUNT(*) FROM shop_usage_grants`
)

// Locking
const (
	SQLAdvisoryLock = `SELECT pg_advisory_xact_lock($1)`
)

// Ledger and authority tables
const (
	SQLSelectBalance = `SELECT balance FROM user_balances WHERE user_platform = $1 AND user_id = $2`

	SQLUpsertBalance = `
		INSERT INTO user_balances (user_platform, user_id, balance, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_platform, user_id) DO UPDATE SET balance = EXCLUDED.balance, updated_at = NOW()`

	SQLSeedBalance = `
		INSERT INTO user_balances (user_platform, user_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_platform, user_id) DO NOTHING`

	SQLConditionalDebit = `
		UPDATE user_balances SET balance = balance - $3, updated_at = NOW()
		WHERE user_platform = $1 AND user_id = $2 AND balance >= $3
		RETURNING balance`

	SQLSelectAuthority = `SELECT authority FROM user_authority WHERE user_platform = $1 AND user_id = $2`

	SQLUpsertAuthority = `
		INSERT INTO user_authority (user_platform, user_id, authority, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_platform, user_id) DO UPDATE SET authority = EXCLUDED.authority, updated_at = NOW()`
)
