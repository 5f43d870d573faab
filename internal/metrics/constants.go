package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "pointshop_events_published_total"
	MetricNameEventHandlerErrors = "pointshop_event_handler_errors_total"
)

// Shop metric names
const (
	MetricNamePurchasesTotal     = "pointshop_purchases_total"
	MetricNamePointsSpent        = "pointshop_points_spent_total"
	MetricNameRoleUpgrades       = "pointshop_role_upgrades_total"
	MetricNameUsageGranted       = "pointshop_usage_granted_total"
	MetricNameGateDecisions      = "pointshop_gate_decisions_total"
	MetricNameInconsistencies    = "pointshop_purchase_inconsistencies_total"
	MetricNameLedgerCallDuration = "pointshop_ledger_call_duration_seconds"
	MetricNameLedgerBreakerState = "pointshop_ledger_breaker_state"
	MetricNameGateCacheLookups   = "pointshop_gate_cache_lookups_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Shop metric help text
const (
	HelpTextPurchasesTotal     = "Purchase attempts by item kind and outcome"
	HelpTextPointsSpent        = "Total points debited by successful purchases"
	HelpTextRoleUpgrades       = "Total number of role upgrades granted by purchases"
	HelpTextUsageGranted       = "Total usage credits granted by administrators"
	HelpTextGateDecisions      = "Gate decisions by outcome and block reason"
	HelpTextInconsistencies    = "Purchases that debited the ledger but failed to record the entitlement"
	HelpTextLedgerCallDuration = "Ledger adapter call latency in seconds"
	HelpTextLedgerBreakerState = "Ledger circuit breaker state (0=closed, 1=half-open, 2=open)"
	HelpTextGateCacheLookups   = "Gate command cache lookups by result"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelKind      = "kind"
	LabelOutcome   = "outcome"
	LabelReason    = "reason"
	LabelOperation = "operation"
	LabelBackend   = "backend"
	LabelResult    = "result"
)

// Purchase outcomes recorded on MetricNamePurchasesTotal
const (
	OutcomeSuccess           = "success"
	OutcomeItemNotFound      = "item_not_found"
	OutcomeOutOfStock        = "out_of_stock"
	OutcomeRoleNotHigher     = "role_not_higher"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeDebitFailed       = "debit_failed"
	OutcomeInconsistent      = "inconsistent"
	OutcomeError             = "error"
)

// Cache lookup results
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// UnmatchedRoute labels requests that did not match a chi route
const UnmatchedRoute = "unmatched"

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// LedgerLatencyBuckets covers remote ledger calls up to the external call timeout
var LedgerLatencyBuckets = []float64{.001, .005, .01, .05, .1, .25, .5, 1, 3}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgEventPayloadDecode = "Failed to decode event payload for metrics"
	LogMsgMetricsRecorded    = "Metrics recorded for event"
)
