package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantcrm_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenantcrm_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	storeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenantcrm_store_operation_duration_seconds",
		Help:    "Duration of tenant store operations, including time spent waiting for the handle lock",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "result"})

	openHandles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tenantcrm_open_store_handles",
		Help: "Number of tenant store handles currently cached and open",
	})

	provisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenantcrm_store_provisions_total",
		Help: "Count of tenant store files created on first use",
	})

	handleCloses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenantcrm_store_handle_closes_total",
		Help: "Count of tenant store handles closed by eviction, destroy, restore or shutdown",
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveStoreOperation records how long a tenant operation held the caller.
func ObserveStoreOperation(operation string, err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperationDuration.WithLabelValues(operation, result).Observe(duration.Seconds())
}

func HandleOpened() {
	openHandles.Inc()
}

func HandleClosed() {
	openHandles.Dec()
	handleCloses.Inc()
}

func StoreProvisioned() {
	provisions.Inc()
}
