package api

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts API outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Submissions   *prometheus.CounterVec
	Selections    *prometheus.CounterVec
	Sessions      prometheus.Counter
	StreamClients prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recruitprefs",
			Name:      "submissions_total",
			Help:      "Application submissions by outcome.",
		}, []string{"status"}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recruitprefs",
			Name:      "selections_total",
			Help:      "Department selections by mode and outcome.",
		}, []string{"mode", "result"}),
		Sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recruitprefs",
			Name:      "sessions_created_total",
			Help:      "Selector sessions created.",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "recruitprefs",
			Name:      "stream_clients",
			Help:      "Open selection stream connections.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Submissions, m.Selections, m.Sessions, m.StreamClients)
	}
	return m
}

func (m *Metrics) IncSubmission(status string) {
	if m == nil || m.Submissions == nil {
		return
	}
	m.Submissions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncSelection(mode, result string) {
	if m == nil || m.Selections == nil {
		return
	}
	m.Selections.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) IncSessions() {
	if m == nil || m.Sessions == nil {
		return
	}
	m.Sessions.Inc()
}

func (m *Metrics) StreamOpened() {
	if m == nil || m.StreamClients == nil {
		return
	}
	m.StreamClients.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil || m.StreamClients == nil {
		return
	}
	m.StreamClients.Dec()
}
