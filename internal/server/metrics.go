package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	metricRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	metricRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parley_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"method", "path"},
	)

	// Chat metrics
	metricMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_messages_posted_total",
			Help: "Total messages posted",
		},
	)

	metricJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_joins_total",
			Help: "Total joins",
		},
	)

	metricLeaves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_leaves_total",
			Help: "Total leaves",
		},
	)

	metricMembers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "parley_members",
			Help: "Members currently on the roster, including inactive ones not yet expired",
		},
	)
)

// metrics records request counts and latencies per route.
func metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		// Unknown paths share a label to keep cardinality bounded
		path := "other"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		metricRequests.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		metricRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
