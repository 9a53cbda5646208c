package metrics

import (
	"strings"

	"loantrack/internal/domain/apperr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loantrack_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loantrack_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ApplicationsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loantrack_applications_submitted_total",
			Help: "Loan applications accepted for review",
		},
	)

	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loantrack_decisions_total",
			Help: "Decide attempts by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	IdempotentReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loantrack_idempotent_replays_total",
			Help: "Responses served from the idempotency store",
		},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loantrack_rate_limited_total",
			Help: "Requests refused by the rate limiter",
		},
		[]string{"route"},
	)

	NotificationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loantrack_notifications_failed_total",
			Help: "Decision events that could not be published",
		},
	)
)

// ObserveDecision counts a Decide attempt. Failures are labelled by error kind.
func ObserveDecision(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if k := apperr.KindOf(err); k != "" {
			outcome = strings.ToLower(string(k))
		}
	}
	if action == "" {
		action = "unknown"
	}
	Decisions.WithLabelValues(action, outcome).Inc()
}
