package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenIssuance = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_token_request_duration_seconds",
			Help:    "POST /auth/token latency by result (issued, rejected, error)",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"result"},
	)

	adminDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_admin_denied_total",
			Help: "Requests refused by the admin guard",
		},
		[]string{"reason"}, // missing_token | invalid_token | wrong_role
	)
)

func observeToken(result string, start time.Time) {
	tokenIssuance.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

func recordDenied(reason string) {
	adminDenied.WithLabelValues(reason).Inc()
}
