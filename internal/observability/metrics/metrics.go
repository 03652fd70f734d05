package metrics

import "github.com/prometheus/client_golang/prometheus"

// TrackerMetrics exposes counters/histograms for the patient tracker and
// portal flows.
type TrackerMetrics struct {
	portalRequests *prometheus.CounterVec
	dayToggles     *prometheus.CounterVec
	remindersSent  *prometheus.CounterVec
	smsOutbound    *prometheus.CounterVec
	trackerLatency *prometheus.HistogramVec
}

func NewTrackerMetrics(reg prometheus.Registerer) *TrackerMetrics {
	m := &TrackerMetrics{
		portalRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicops",
			Subsystem: "portal",
			Name:      "requests_total",
			Help:      "Total patient portal/tracker fetches",
		}, []string{"surface", "status"}),
		dayToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicops",
			Subsystem: "tracker",
			Name:      "day_toggles_total",
			Help:      "Total protocol day completion toggles",
		}, []string{"action", "status"}),
		remindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicops",
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Total dosing reminders dispatched",
		}, []string{"status"}),
		smsOutbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicops",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Total outbound CRM SMS sends",
		}, []string{"status"}),
		trackerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicops",
			Subsystem: "tracker",
			Name:      "request_latency_seconds",
			Help:      "Latency of tracker payload assembly",
			Buckets:   prometheus.DefBuckets,
		}, []string{"surface"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.portalRequests, m.dayToggles, m.remindersSent, m.smsOutbound, m.trackerLatency)
	return m
}

func (m *TrackerMetrics) ObservePortalRequest(surface, status string) {
	if m == nil {
		return
	}
	m.portalRequests.WithLabelValues(surface, status).Inc()
}

func (m *TrackerMetrics) ObserveDayToggle(action, status string) {
	if m == nil {
		return
	}
	m.dayToggles.WithLabelValues(action, status).Inc()
}

func (m *TrackerMetrics) ObserveReminder(status string) {
	if m == nil {
		return
	}
	m.remindersSent.WithLabelValues(status).Inc()
}

func (m *TrackerMetrics) ObserveOutboundSMS(status string) {
	if m == nil {
		return
	}
	m.smsOutbound.WithLabelValues(status).Inc()
}

func (m *TrackerMetrics) ObserveTrackerLatency(surface string, seconds float64) {
	if m == nil {
		return
	}
	m.trackerLatency.WithLabelValues(surface).Observe(seconds)
}
