// Package metrics registers the checker's Prometheus collectors on the
// default registry. They are exposed by the status server at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts completed poll cycles by result ("ok" or "error").
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checker_cycles_total",
			Help: "Completed poll cycles",
		},
		[]string{"result"},
	)

	CycleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checker_cycle_errors_total",
			Help: "Failed poll cycles by stage and error class",
		},
		[]string{"stage", "class"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checker_fetch_duration_seconds",
			Help:    "Availability fetch latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checker_notifications_total",
			Help: "Notification dispatch attempts by event kind and status",
		},
		[]string{"kind", "status"},
	)

	AppointmentsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "checker_appointments_total",
			Help: "Appointment count reported by the last successful fetch",
		},
	)

	LastCycleTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "checker_last_cycle_timestamp_seconds",
			Help: "Unix time at which the last cycle finished",
		},
	)
)
