// Package metrics exposes prometheus counters for the lifecycle engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics counts session transitions and published notifications. A
// nil receiver is a no-op so callers can run without a registry.
type EngineMetrics struct {
	transitionsTotal   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mirafloresplus",
			Subsystem: "sessions",
			Name:      "transitions_total",
			Help:      "Total consultation session lifecycle transitions",
		}, []string{"transition"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mirafloresplus",
			Subsystem: "notifications",
			Name:      "published_total",
			Help:      "Total notifications published to the inbox",
		}, []string{"event_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.notificationsTotal)
	return m
}

func (m *EngineMetrics) ObserveTransition(transition string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(transition).Inc()
}

func (m *EngineMetrics) ObserveNotification(eventType string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(eventType).Inc()
}
