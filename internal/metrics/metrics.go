package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_status_transitions_total",
			Help: "Event status transition attempts by actor and outcome",
		},
		[]string{"actor", "from", "to", "outcome"},
	)

	dispatchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_dispatch_runs_total",
			Help: "Reminder dispatcher runs by outcome",
		},
		[]string{"outcome"},
	)

	dispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_dispatch_duration_seconds",
			Help:    "Duration of reminder dispatcher runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	reminderDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_deliveries_total",
			Help: "Reminder emails by lead time and result",
		},
		[]string{"lead", "result"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter per route group",
		},
		[]string{"group"},
	)

	duplicatesFlagged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "event_duplicates_flagged_total",
			Help: "Organizer submissions flagged as likely duplicates",
		},
	)
)

func TrackTransition(actor, from, to string, ok bool) {
	outcome := "applied"
	if !ok {
		outcome = "rejected"
	}
	statusTransitions.WithLabelValues(actor, from, to, outcome).Inc()
}

func TrackDispatchRun(outcome string, took time.Duration) {
	dispatchRuns.WithLabelValues(outcome).Inc()
	dispatchDuration.Observe(took.Seconds())
}

func TrackDelivery(lead string, sent bool) {
	result := "sent"
	if !sent {
		result = "failed"
	}
	reminderDeliveries.WithLabelValues(lead, result).Inc()
}

func TrackRateLimited(group string) {
	rateLimited.WithLabelValues(group).Inc()
}

func TrackDuplicate() {
	duplicatesFlagged.Inc()
}
