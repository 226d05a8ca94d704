package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the kcal-sync collectors.
	Registry = prometheus.NewRegistry()

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kcal_sync",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total number of REST calls made to the wellness backend.",
		},
		[]string{"op", "status"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kcal_sync",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of REST calls made to the wellness backend.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"op"},
	)

	reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kcal_sync",
			Subsystem: "ledger",
			Name:      "reconciliations_total",
			Help:      "Reconciliation attempts by outcome (ready, created, error, skipped).",
		},
		[]string{"outcome"},
	)

	resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kcal_sync",
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Product resolutions by the path that produced the result.",
		},
		[]string{"path"},
	)

	catalogProducts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kcal_sync",
			Subsystem: "catalog",
			Name:      "products",
			Help:      "Products currently held in the session catalog cache.",
		},
		[]string{"catalog"},
	)
)

func init() {
	Registry.MustRegister(
		backendRequests,
		backendDuration,
		reconciliations,
		resolutions,
		catalogProducts,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveBackendRequest records one REST call. status is 0 when no response
// was received.
func ObserveBackendRequest(op string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	backendRequests.WithLabelValues(op, label).Inc()
	backendDuration.WithLabelValues(op).Observe(d.Seconds())
}

func RecordReconciliation(outcome string) {
	reconciliations.WithLabelValues(outcome).Inc()
}

func RecordResolution(path string) {
	resolutions.WithLabelValues(path).Inc()
}

func SetCatalogSize(catalog string, n int) {
	catalogProducts.WithLabelValues(catalog).Set(float64(n))
}
