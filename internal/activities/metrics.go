package activities

import "github.com/prometheus/client_golang/prometheus"

var (
	signupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activities",
		Name:      "signups_total",
		Help:      "Number of successful participant signups, labeled by activity.",
	}, []string{"activity"})

	unregistrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activities",
		Name:      "unregistrations_total",
		Help:      "Number of successful participant unregistrations, labeled by activity.",
	}, []string{"activity"})

	requestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activities",
		Name:      "request_errors_total",
		Help:      "Number of rejected signup and unregister requests, labeled by reason.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(signupsTotal, unregistrationsTotal, requestErrorsTotal)
}

// エラー理由のラベル値。
const (
	reasonNotFound        = "not_found"
	reasonAlreadySignedUp = "already_signed_up"
	reasonNotRegistered   = "not_registered"
	reasonMissingEmail    = "missing_email"
	reasonInternal        = "internal"
)
