package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the widget's remote
// fetches and booking submissions.
type SchedulingMetrics struct {
	fetchTotal   *prometheus.CounterVec
	bookingTotal *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingwidget",
			Subsystem: "schedule",
			Name:      "fetch_total",
			Help:      "Total slot and month-summary fetches",
		}, []string{"kind", "outcome"}),
		bookingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingwidget",
			Subsystem: "schedule",
			Name:      "booking_total",
			Help:      "Total booking submissions, including rejected validation",
		}, []string{"outcome"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookingwidget",
			Subsystem: "schedule",
			Name:      "fetch_latency_seconds",
			Help:      "Latency of booking service fetches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal, m.bookingTotal, m.fetchLatency)
	return m
}

func (m *SchedulingMetrics) ObserveFetch(kind, outcome string) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *SchedulingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingTotal.WithLabelValues(outcome).Inc()
}

func (m *SchedulingMetrics) ObserveFetchLatency(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.fetchLatency.WithLabelValues(kind).Observe(seconds)
}
