package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "corridorx"

var (
	// http
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
	}, []string{"method", "path"})

	// corridor filter
	corridorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "corridor",
		Name:      "filter_duration_seconds",
		Help:      "Duration of one corridor filter call",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"source"})

	corridorCandidates = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "corridor",
		Name:      "candidates",
		Help:      "Stations scanned per corridor filter call after the spatial prefilter",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"source"})

	corridorMatches = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "corridor",
		Name:      "matches",
		Help:      "Stations admitted per corridor filter call",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"source"})

	// upstream services (routing, geocoding)
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Requests sent to upstream services",
	}, []string{"service", "result"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Upstream request latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"service"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	StationsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stations",
		Name:      "loaded",
		Help:      "Number of service stations in the loaded dataset",
	})
)

func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveCorridorFilter. source is where the route came from ("osrm", "polyline", "ws")
func ObserveCorridorFilter(source string, candidates, matches int, elapsed time.Duration) {
	corridorDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	corridorCandidates.WithLabelValues(source).Observe(float64(candidates))
	corridorMatches.WithLabelValues(source).Observe(float64(matches))
}

func ObserveUpstream(service string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	upstreamRequestsTotal.WithLabelValues(service, result).Inc()
	upstreamDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
