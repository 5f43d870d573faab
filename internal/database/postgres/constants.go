package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
)

// Advisory lock hashing
const (
	HashSeparator         = ":"
	HashMaskPositiveInt64 = 0x7FFFFFFFFFFFFFFF
)

// LikeEscapeChar escapes LIKE metacharacters in user-supplied search text
const LikeEscapeChar = `\`

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction: %w"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction: %w"
	ErrMsgFailedToAcquireLock       = "failed to acquire advisory lock: %w"
)

// Error Messages - Catalog Operations
const (
	ErrMsgFailedToInsertItem  = "failed to insert item: %w"
	ErrMsgFailedToUpdateItem  = "failed to update item: %w"
	ErrMsgFailedToDeleteItem  = "failed to delete item: %w"
	ErrMsgFailedToGetItem     = "failed to get item: %w"
	ErrMsgFailedToFindItem    = "failed to find item: %w"
	ErrMsgFailedToListItems   = "failed to list items: %w"
	ErrMsgFailedToCountItems  = "failed to count items: %w"
	ErrMsgFailedToDecrement   = "failed to decrement stock: %w"
	ErrMsgFailedToScanItem    = "failed to scan item: %w"
	ErrMsgDuplicateItemFormat = "%w: %s"
)

// Error Messages - Entitlement Operations
const (
	ErrMsgFailedToInsertPurchase = "failed to insert purchase: %w"
	ErrMsgFailedToInsertGrant    = "failed to insert grant: %w"
	ErrMsgFailedToUpdateGrant    = "failed to update grant: %w"
	ErrMsgFailedToListPurchases  = "failed to list purchases: %w"
	ErrMsgFailedToListGrants     = "failed to list grants: %w"
	ErrMsgFailedToCountGrants    = "failed to count grants: %w"
	ErrMsgFailedToScanGrant      = "failed to scan grant: %w"
)

// Error Messages - Adapter Tables
const (
	ErrMsgFailedToGetBalance   = "failed to get balance: %w"
	ErrMsgFailedToSetBalance   = "failed to set balance: %w"
	ErrMsgFailedToDebit        = "failed to debit balance: %w"
	ErrMsgFailedToGetAuthority = "failed to get authority: %w"
	ErrMsgFailedToSetAuthority = "failed to set authority: %w"
)

// Log Messages
const (
	LogMsgItemDeleted  = "Deleted catalog item with its entitlements"
	LogMsgDebitRefused = "Conditional debit refused"
)
