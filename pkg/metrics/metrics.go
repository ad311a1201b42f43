package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Business metrics
	AuthOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_operations_total",
			Help: "Total number of auth operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	PasswordHashDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "password_hash_duration_seconds",
			Help:    "Time spent hashing or verifying passwords",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	StoreQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_queries_total",
			Help: "Total number of credential store queries",
		},
		[]string{"driver", "operation", "status"},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Credential store query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	AuditEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_published_total",
			Help: "Total number of audit events published to RabbitMQ",
		},
		[]string{"event", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordAuthOperation counts an auth operation under the given outcome label.
func RecordAuthOperation(operation, outcome string) {
	AuthOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObservePasswordHash records one hash or verify call.
func ObservePasswordHash(d time.Duration) {
	PasswordHashDuration.Observe(d.Seconds())
}

// RecordStoreQuery records credential store query metrics
func RecordStoreQuery(driver, operation string, err error, duration time.Duration) {
	status := OutcomeSuccess
	if err != nil {
		status = OutcomeError
	}
	StoreQueriesTotal.WithLabelValues(driver, operation, status).Inc()
	StoreQueryDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
}

// RecordAuditPublish records RabbitMQ publish metrics
func RecordAuditPublish(event string, err error) {
	status := OutcomeSuccess
	if err != nil {
		status = OutcomeError
	}
	AuditEventsPublished.WithLabelValues(event, status).Inc()
}
