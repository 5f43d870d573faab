package purchase

// Error messages
const (
	ErrMsgItemNotFoundFmt         = "%w: %s"
	ErrMsgBeginTransactionFailed  = "failed to begin transaction: %w"
	ErrMsgAcquireLockFailed       = "failed to acquire purchase lock: %w"
	ErrMsgReloadItemFailed        = "failed to reload item: %w"
	ErrMsgFindItemFailed          = "failed to find item: %w"
	ErrMsgGetAuthorityFailed      = "failed to get authority: %w"
	ErrMsgBalanceFailedFmt        = "%w: %w"
	ErrMsgInsertPurchaseFailed    = "failed to record purchase: %w"
	ErrMsgInsertGrantFailed       = "failed to record usage grant: %w"
	ErrMsgDecrementStockFailed    = "failed to decrement stock: %w"
	ErrMsgStockVanished           = "stock exhausted after debit"
	ErrMsgCommitTransactionFailed = "failed to commit transaction: %w"
	ErrMsgListPurchasesFailed     = "failed to list purchases: %w"
	ErrMsgListGrantsFailed        = "failed to list usage grants: %w"
	ErrMsgCountGrantsFailed       = "failed to count usage grants: %w"
	ErrMsgUpdateGrantFailed       = "failed to update usage grant: %w"

	ErrMsgItemQueryRequired = "item name is required"
	ErrMsgCommandRequired   = "command is required"
	ErrMsgAmountTooLow      = "must be at least 1"
	ErrMsgPageRange         = "must be at least 1"
	ErrMsgPageSizeRange     = "must be between 1 and 100"
)

// Validation fields
const (
	FieldItem     = "item"
	FieldCommand  = "command"
	FieldAmount   = "amount"
	FieldPage     = "page"
	FieldPageSize = "page_size"
)

// Log messages
const (
	LogMsgPurchaseCalled    = "Purchase called"
	LogMsgPurchaseRejected  = "Purchase rejected"
	LogMsgItemPurchased     = "Item purchased"
	LogMsgRoleUpgraded      = "Role upgraded by purchase"
	LogMsgInconsistentState = "CRITICAL: ledger debited but purchase not fully recorded"
	LogMsgUsageGranted      = "Usage credits granted"
	LogMsgPublishFailed     = "Failed to publish purchase event"
	LogMsgGrantMissingItem  = "Usage grant references missing item"
)

// SeverityCritical tags log records that need manual reconciliation
const SeverityCritical = "CRITICAL"

// KindUnresolved labels purchase metrics when no item was resolved
const KindUnresolved = "unresolved"
