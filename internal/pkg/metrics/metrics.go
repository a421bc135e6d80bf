package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "directory_backend_requests_total",
		Help: "Total number of requests sent to the employee backend",
	}, []string{"operation", "status"})

	backendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "directory_backend_request_duration_seconds",
		Help:    "Duration of requests sent to the employee backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	storeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "directory_store_operations_total",
		Help: "Count of store operations by name and result",
	}, []string{"store", "operation", "result"})

	pendingOperations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "directory_store_pending_operations",
		Help: "Number of store operations waiting on the backend",
	}, []string{"store", "operation"})

	authenticated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "directory_session_authenticated",
		Help: "1 while a session is authenticated, 0 otherwise",
	})
)

// ObserveBackendRequest records one round trip to the backend.
func ObserveBackendRequest(operation, status string, duration time.Duration) {
	backendRequestsTotal.WithLabelValues(operation, status).Inc()
	backendRequestDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// ObserveOperation counts a finished store operation. result is one of
// "success", "failure", "invalid" or "canceled".
func ObserveOperation(store, operation, result string) {
	storeOperations.WithLabelValues(store, operation, result).Inc()
}

func IncPending(store, operation string) {
	pendingOperations.WithLabelValues(store, operation).Inc()
}

func DecPending(store, operation string) {
	pendingOperations.WithLabelValues(store, operation).Dec()
}

func SetAuthenticated(ok bool) {
	if ok {
		authenticated.Set(1)
		return
	}
	authenticated.Set(0)
}
