package metrics

import "github.com/prometheus/client_golang/prometheus"

// ExpiryMetrics holds the prometheus counters updated by expiration cycles.
type ExpiryMetrics struct {
	CyclesTotal          prometheus.Counter
	CycleFailures        prometheus.Counter
	DocumentsScanned     prometheus.Counter
	NotificationsCreated prometheus.Counter
	EmailsSent           prometheus.Counter
	EmailsFailed         prometheus.Counter
}

// NewExpiryMetrics creates and registers the expiration-cycle counters on the
// given registry.
func NewExpiryMetrics(reg prometheus.Registerer) (*ExpiryMetrics, error) {
	m := &ExpiryMetrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiry_cycles_total",
			Help: "Total number of expiration-check cycles run.",
		}),
		CycleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiry_cycle_failures_total",
			Help: "Total number of expiration-check cycles that ended with an error.",
		}),
		DocumentsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiry_documents_scanned_total",
			Help: "Total number of (document, offset) pairs produced by scans.",
		}),
		NotificationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiry_notifications_created_total",
			Help: "Total number of in-app notifications created.",
		}),
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiry_emails_sent_total",
			Help: "Total number of expiration emails sent successfully.",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiry_emails_failed_total",
			Help: "Total number of expiration email attempts that failed.",
		}),
	}

	for _, c := range []prometheus.Counter{
		m.CyclesTotal,
		m.CycleFailures,
		m.DocumentsScanned,
		m.NotificationsCreated,
		m.EmailsSent,
		m.EmailsFailed,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}
