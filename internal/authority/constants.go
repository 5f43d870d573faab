package authority

import "time"

// DefaultTimeout bounds an authority call when no timeout is configured
const DefaultTimeout = 3 * time.Second

const (
	ErrMsgGetFailed       = "authority lookup failed: %w"
	ErrMsgSetFailedFormat = "%w: %w"
)

const (
	LogMsgGetFailed = "Authority lookup failed"
	LogMsgSetFailed = "Authority update failed"
)
