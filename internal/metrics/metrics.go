package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fareradar",
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Provider searches by outcome.",
		},
		[]string{"provider", "status"},
	)

	providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fareradar",
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Duration of provider searches.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 11), // 10ms to ~10s
		},
		[]string{"provider"},
	)

	offersDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fareradar",
			Subsystem: "normalizer",
			Name:      "offers_dropped_total",
			Help:      "Raw offers rejected during normalization.",
		},
		[]string{"provider"},
	)

	hubQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fareradar",
			Subsystem: "interline",
			Name:      "hub_runs_total",
			Help:      "Hubs processed by the stitcher by outcome.",
		},
		[]string{"hub", "status"},
	)

	stitchedOffers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fareradar",
			Subsystem: "interline",
			Name:      "offers_total",
			Help:      "Self-transfer offers synthesized.",
		},
	)

	searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fareradar",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Searches by status and cache result.",
		},
		[]string{"status", "cache"},
	)

	searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fareradar",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "End-to-end search duration.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	anomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fareradar",
			Subsystem: "anomaly",
			Name:      "detections_total",
			Help:      "Route analyses by result.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fareradar",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fareradar",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		providerRequests,
		providerDuration,
		offersDropped,
		hubQueries,
		stitchedOffers,
		searches,
		searchDuration,
		anomalies,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordProvider(provider string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	providerRequests.WithLabelValues(provider, status).Inc()
	providerDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func RecordDropped(provider string, n int) {
	if n <= 0 {
		return
	}
	offersDropped.WithLabelValues(provider).Add(float64(n))
}

// RecordHub records one stitcher hub run; status is ok, empty or error.
func RecordHub(hub, status string, accepted int) {
	hubQueries.WithLabelValues(hub, status).Inc()
	if accepted > 0 {
		stitchedOffers.Add(float64(accepted))
	}
}

func RecordSearch(status string, cacheHit bool, duration time.Duration) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	searches.WithLabelValues(status, cache).Inc()
	searchDuration.Observe(duration.Seconds())
}

func RecordAnalysis(hasEnoughData, isAnomaly bool) {
	result := "normal"
	switch {
	case !hasEnoughData:
		result = "insufficient_data"
	case isAnomaly:
		result = "anomaly"
	}
	anomalies.WithLabelValues(result).Inc()
}

func RecordHTTP(method, path string, status int, duration time.Duration) {
	if path == "" {
		path = "/"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
