package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_server_logins_total",
		Help: "Total number of successful logins.",
	})

	refreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_server_refreshes_total",
		Help: "Total number of successful token refreshes.",
	})

	passwordResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_server_password_resets_total",
		Help: "Total number of completed password resets.",
	})

	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_server_token_verifications_total",
			Help: "Total number of access token verification attempts by status.",
		},
		[]string{"status"},
	)

	rateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_server_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter, by route.",
		},
		[]string{"route"},
	)
)
