package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	InvoicesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoices_generated_total",
			Help: "Invoices created by the generation job, partitioned by cadence.",
		},
		[]string{"cadence"},
	)
	PaymentsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_applied_total",
			Help: "Successful payments applied to invoices, partitioned by method.",
		},
		[]string{"method"},
	)
	NotificationsFanout = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_fanout_total",
			Help: "Notification rows created at fan-out, partitioned by target.",
		},
		[]string{"target"},
	)
)

func init() {
	prometheus.MustRegister(InvoicesGenerated, PaymentsApplied, NotificationsFanout)
}
