package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	authnOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authn_requests_total",
			Help: "Requests by authentication outcome.",
		},
		[]string{"outcome"},
	)

	authzDenials = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "authz_denials_total",
		Help: "Requests rejected by the authorization guard.",
	})
)

// Init registers the service metrics in the default registry.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, authnOutcomes, authzDenials)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAuthn records the outcome of token authentication for one request.
// Outcome is one of "authenticated", "anonymous" or "rejected".
func ObserveAuthn(outcome string) {
	authnOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveAuthzDenial counts a request rejected by the relation guard.
func ObserveAuthzDenial() {
	authzDenials.Inc()
}

// CanonicalPath collapses resource identifiers so metric labels stay
// bounded. "/api/v1/tasks/01ABC" becomes "/api/v1/tasks/:id".
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	// Expect /api/v1/<collection>/<id>[/...].
	if len(parts) >= 5 && parts[1] == "api" && parts[2] == "v1" {
		switch parts[3] {
		case "users", "projects", "tasks", "records":
			parts[4] = ":id"
			return strings.Join(parts, "/")
		}
	}
	return path
}

// Instrument measures per-request rate, latency and in-flight count.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
