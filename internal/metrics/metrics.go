package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Shop Metrics
var (
	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePurchasesTotal,
			Help: HelpTextPurchasesTotal,
		},
		[]string{LabelKind, LabelOutcome},
	)

	PointsSpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePointsSpent,
			Help: HelpTextPointsSpent,
		},
	)

	RoleUpgrades = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRoleUpgrades,
			Help: HelpTextRoleUpgrades,
		},
	)

	UsageGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameUsageGranted,
			Help: HelpTextUsageGranted,
		},
	)

	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGateDecisions,
			Help: HelpTextGateDecisions,
		},
		[]string{LabelOutcome, LabelReason},
	)

	PurchaseInconsistencies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameInconsistencies,
			Help: HelpTextInconsistencies,
		},
	)

	LedgerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameLedgerCallDuration,
			Help:    HelpTextLedgerCallDuration,
			Buckets: LedgerLatencyBuckets,
		},
		[]string{LabelOperation, LabelResult},
	)

	LedgerBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameLedgerBreakerState,
			Help: HelpTextLedgerBreakerState,
		},
		[]string{LabelBackend},
	)

	GateCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGateCacheLookups,
			Help: HelpTextGateCacheLookups,
		},
		[]string{LabelResult},
	)
)
