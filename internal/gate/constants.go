package gate

import "time"

// Cache defaults used when no option overrides them
const (
	DefaultCacheSize    = 256
	DefaultCacheTTL     = 30 * time.Second
	DefaultElevationTTL = time.Minute
)

// Error messages
const (
	ErrMsgLookupCommandFailed     = "failed to look up command: %w"
	ErrMsgBeginTransactionFailed  = "failed to begin transaction: %w"
	ErrMsgAcquireLockFailed       = "failed to acquire command lock: %w"
	ErrMsgGetGrantsFailed         = "failed to load usage grants: %w"
	ErrMsgUpdateGrantFailed       = "failed to update usage grant: %w"
	ErrMsgCommitTransactionFailed = "failed to commit transaction: %w"
	ErrMsgCommandRequired         = "command is required"
)

// FieldCommand names the command field in validation errors
const FieldCommand = "command"

// Log messages
const (
	LogMsgGateChecked     = "Gate decision"
	LogMsgCacheInvalidate = "Gate command cache invalidated"
	LogMsgPublishFailed   = "Failed to publish gate event"
)
