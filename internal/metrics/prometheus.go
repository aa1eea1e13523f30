// Package metrics exposes Prometheus collectors for the reminder loop,
// notification delivery, and AI requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "renalog"

var (
	// Scheduler metrics
	schedulerTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_ticks_total",
			Help:      "Total number of scheduler ticks by outcome",
		},
		[]string{"outcome"},
	)

	remindersFired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_fired_total",
			Help:      "Total number of medication reminders emitted",
		},
	)

	// Notification metrics
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total number of notification deliveries by sink and status",
		},
		[]string{"sink", "status"},
	)

	// AI metrics
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "Total number of AI gateway requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "AI gateway request duration in seconds",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	// HTTP metrics for the daemon's local endpoint
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// Tick outcomes.
const (
	TickSkipped = "skipped"
	TickChecked = "checked"
	TickFailed  = "failed"
)

// Delivery statuses.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusBlocked = "blocked"
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecordTick records one scheduler tick.
func RecordTick(outcome string) {
	schedulerTicks.WithLabelValues(outcome).Inc()
}

// RecordReminderFired records an emitted reminder.
func RecordReminderFired() {
	remindersFired.Inc()
}

// RecordNotification records a delivery attempt for a sink.
func RecordNotification(sink, status string) {
	notificationsTotal.WithLabelValues(sink, status).Inc()
}

// RecordAIRequest records an AI gateway request.
func RecordAIRequest(operation string, ok bool, duration time.Duration) {
	status := StatusOK
	if !ok {
		status = StatusError
	}
	aiRequestsTotal.WithLabelValues(operation, status).Inc()
	aiRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
