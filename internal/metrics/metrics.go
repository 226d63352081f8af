package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataportal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataportal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataportal_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Upload metrics
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataportal_loads_total",
			Help: "Total number of file loads",
		},
		[]string{"format", "status"},
	)

	LoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataportal_load_duration_seconds",
			Help:    "Duration of reading and typing an uploaded file",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"format"},
	)

	LoadedRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataportal_loaded_rows",
			Help:    "Number of data rows per loaded file",
			Buckets: prometheus.ExponentialBuckets(10, 10, 6), // 10 to 1M
		},
	)

	ParsesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataportal_parses_in_flight",
			Help: "Number of uploads currently being parsed",
		},
	)

	// Analysis metrics
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataportal_operations_total",
			Help: "Total number of analysis operations",
		},
		[]string{"operation", "status"}, // operation: "overview", "count", "group", "chart"
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataportal_operation_duration_seconds",
			Help:    "Duration of analysis operations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"operation"},
	)

	// Session metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataportal_sessions_active",
			Help: "Number of live sessions held in memory",
		},
	)

	SessionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataportal_sessions_expired_total",
			Help: "Total number of sessions removed after idling past the TTL",
		},
	)
)

// GinMiddleware returns a gin middleware that records HTTP metrics.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		c.Next()

		// Label by route pattern so path parameters do not explode cardinality
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Middleware returns a chi middleware that records HTTP metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		status := strconv.Itoa(ww.Status())
		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordLoad records metrics for a file load.
func RecordLoad(format string, rows int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if format == "" {
		format = "unknown"
	}
	LoadsTotal.WithLabelValues(format, status).Inc()
	LoadDuration.WithLabelValues(format).Observe(duration.Seconds())
	if err == nil {
		LoadedRows.Observe(float64(rows))
	}
}

// RecordOperation records metrics for an analysis operation.
func RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
