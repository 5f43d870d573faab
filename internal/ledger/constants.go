package ledger

import "time"

// Backend names, matching LEDGER_BACKEND values
const (
	BackendPostgres = "postgres"
	BackendHTTP     = "http"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Operation labels for call metrics
const (
	OpGetBalance = "get_balance"
	OpSetBalance = "set_balance"
	OpDebit      = "debit"
)

// Result labels for call metrics
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// DefaultTimeout bounds a ledger call when no timeout is configured
const DefaultTimeout = 3 * time.Second

// HTTP backend
const (
	BalancePathFormat = "%s/balances/%s/%s"
	ContentTypeJSON   = "application/json"
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"
	BreakerName       = "ledger-http"

	BreakerMaxRequests         = 1
	BreakerInterval            = 60 * time.Second
	BreakerTimeout             = 30 * time.Second
	BreakerConsecutiveFailures = 5
)

// Redis backend
const (
	RedisKeyNamespace  = "pointshop"
	RedisBalancePrefix = "balance"
	// redisDebitRefused is returned by the debit script when the balance is too low
	redisDebitRefused = -1
)

// Error messages
const (
	ErrMsgGetBalanceFailed  = "ledger get balance failed: %w"
	ErrMsgSetBalanceFailed  = "ledger set balance failed: %w"
	ErrMsgDebitFailedFormat = "%w: %w"
	ErrMsgUnexpectedStatus  = "ledger returned status %d"
	ErrMsgDecodeResponse    = "failed to decode ledger response: %w"
	ErrMsgEncodeRequest     = "failed to encode ledger request: %w"
	ErrMsgBuildRequest      = "failed to build ledger request: %w"
	ErrMsgParseBalance      = "failed to parse stored balance: %w"
	ErrMsgScriptResult      = "unexpected debit script result %v"
	ErrMsgRedisNotReady     = "redis client not initialized"
	ErrMsgRedisURLRequired  = "redis url is required"
	ErrMsgParseRedisURL     = "parsing redis url: %w"
	ErrMsgPingRedis         = "ping redis: %w"
)

// Log messages
const (
	LogMsgBalanceFailOpen    = "Ledger unavailable, using default balance"
	LogMsgBalanceFailClosed  = "Ledger unavailable, refusing balance lookup"
	LogMsgDebitFailed        = "Ledger debit failed"
	LogMsgBreakerStateChange = "Ledger circuit breaker changed state"
)
