// Package observability registers prometheus metrics for the signup service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	signupCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "roster",
		Name:      "signups_total",
		Help:      "Signup attempts grouped by outcome.",
	}, []string{"outcome"})

	unregisterCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "roster",
		Name:      "unregistrations_total",
		Help:      "Unregister attempts grouped by outcome.",
	}, []string{"outcome"})

	rosterSizeGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "signup_service",
		Subsystem: "roster",
		Name:      "participants",
		Help:      "Current participant count per activity.",
	}, []string{"activity"})
)

func init() {
	prometheus.MustRegister(signupCounter, unregisterCounter, rosterSizeGauge)
}

// Outcome labels attached to mutation counters.
const (
	OutcomeOK                = "ok"
	OutcomeNotFound          = "activity_not_found"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeNotRegistered     = "not_registered"
	OutcomeError             = "error"
)

// RecordSignup counts a signup attempt.
func RecordSignup(outcome string) {
	signupCounter.WithLabelValues(outcome).Inc()
}

// RecordUnregister counts an unregister attempt.
func RecordUnregister(outcome string) {
	unregisterCounter.WithLabelValues(outcome).Inc()
}

// SetRosterSize updates the participant gauge for an activity.
func SetRosterSize(activity string, size int) {
	rosterSizeGauge.WithLabelValues(activity).Set(float64(size))
}
