package catalog

// Error messages
const (
	ErrMsgCreateItemFailed = "failed to create item: %w"
	ErrMsgUpdateItemFailed = "failed to update item: %w"
	ErrMsgDeleteItemFailed = "failed to delete item: %w"
	ErrMsgGetItemFailed    = "failed to get item: %w"
	ErrMsgListItemsFailed  = "failed to list items: %w"
	ErrMsgCountItemsFailed = "failed to count items: %w"

	ErrMsgMaxUsesTooLow   = "must be at least 1"
	ErrMsgNegative        = "must not be negative"
	ErrMsgStockTooLow     = "must be -1 (unlimited) or at least 0"
	ErrMsgRoleLevelRange  = "must be between 0 and 5"
	ErrMsgCommandRequired = "is required for command items"
	ErrMsgUnknownKind     = "must be one of command, role, item"
	ErrMsgPageSizeRange   = "must be between 1 and 100"
	ErrMsgPageTooLow      = "must be at least 1"
	ErrMsgUnknownView     = "must be storefront or admin"
	ErrMsgFieldInvalid    = "is invalid (%s)"

	ErrMsgReadSeedFailed   = "failed to read catalog seed: %w"
	ErrMsgSeedSchemaFailed = "catalog seed %s failed schema validation: %w"
	ErrMsgParseSeedFailed  = "failed to parse catalog seed: %w"
	ErrMsgSeedItemFailed   = "seed item %q: %w"
)

// Field names reported in validation errors
const (
	FieldName      = "name"
	FieldKind      = "kind"
	FieldCommand   = "command"
	FieldMaxUses   = "max_uses"
	FieldCooldown  = "cooldown_minutes"
	FieldStock     = "stock"
	FieldRoleLevel = "role_level"
	FieldPage      = "page"
	FieldPageSize  = "page_size"
	FieldView      = "view"
)

// Log messages
const (
	LogMsgItemCreated      = "Catalog item created"
	LogMsgItemUpdated      = "Catalog item updated"
	LogMsgItemDeleted      = "Catalog item deleted"
	LogMsgPublishFailed    = "Failed to publish catalog event"
	LogMsgSeedCompleted    = "Catalog seed completed"
	LogMsgSeedItemExisting = "Catalog seed item already exists, skipping"
)

// SeedSchemaPath is the seed schema's path inside the embedded schema FS
const SeedSchemaPath = "schemas/catalog.schema.json"
