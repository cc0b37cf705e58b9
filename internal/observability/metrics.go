package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	apiRequestsTotal     *prometheus.CounterVec
	apiLatencySeconds    *prometheus.HistogramVec
	apiErrorsTotal       *prometheus.CounterVec
	storeOperationsTotal *prometheus.CounterVec
	storeLatencySeconds  *prometheus.HistogramVec
	dashboardCacheTotal  *prometheus.CounterVec
	statusRefreshedTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the planner API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		storeOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_store_operations_total",
			Help: "Document store calls by collection, operation and result.",
		}, []string{"collection", "operation", "result"})

		storeLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_store_latency_seconds",
			Help:    "Latency distribution for document store calls.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"collection", "operation"})

		dashboardCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_dashboard_cache_total",
			Help: "Dashboard cache lookups by result.",
		}, []string{"result"})

		statusRefreshedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_semester_status_refreshed_total",
			Help: "Semester statuses rewritten by the scheduled refresh.",
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			storeOperationsTotal, storeLatencySeconds,
			dashboardCacheTotal, statusRefreshedTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// DashboardCache exposes the dashboard cache lookup counter.
func DashboardCache() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheTotal
}

// StatusRefreshed exposes the counter of refreshed semester statuses.
func StatusRefreshed() prometheus.Counter {
	RegisterMetrics()
	return statusRefreshedTotal
}

// StoreMetrics records document store calls.
type StoreMetrics struct{}

// ObserveStoreOperation records one store call.
func (StoreMetrics) ObserveStoreOperation(collection, operation, result string, elapsed time.Duration) {
	RegisterMetrics()
	storeOperationsTotal.WithLabelValues(collection, operation, result).Inc()
	storeLatencySeconds.WithLabelValues(collection, operation).Observe(elapsed.Seconds())
}
