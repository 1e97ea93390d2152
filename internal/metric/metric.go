// Package metric provides the Prometheus collectors of the hearing service.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const DefaultMetricsPath = "/metrics"

// Metrics groups the service collectors. A nil *Metrics is valid and
// records nothing, so components can be built without it in tests.
type Metrics struct {
	webSocketConnections prometheus.Gauge
	hubEvents            *prometheus.CounterVec
	fanoutFailures       *prometheus.CounterVec
	cacheLookups         *prometheus.CounterVec
	composeDuration      prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		webSocketConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hearings_websocket_connections",
			Help: "Current number of hub WebSocket connections.",
		}),
		hubEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hearings_hub_events_total",
			Help: "Hub events fanned out, by event name.",
		}, []string{"event"}),
		fanoutFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hearings_hub_fanout_failures_total",
			Help: "Group sends that failed during fan-out, by event name.",
		}, []string{"event"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hearings_conference_cache_lookups_total",
			Help: "Conference cache lookups, by result.",
		}, []string{"result"}), // "hit" or "miss"
		composeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hearings_conference_compose_seconds",
			Help:    "Time spent composing a conference from upstream.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.webSocketConnections,
		m.hubEvents,
		m.fanoutFailures,
		m.cacheLookups,
		m.composeDuration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) IncrementWebSocketConnections() {
	if m == nil {
		return
	}
	m.webSocketConnections.Inc()
}

func (m *Metrics) DecrementWebSocketConnections() {
	if m == nil {
		return
	}
	m.webSocketConnections.Dec()
}

func (m *Metrics) HubEvent(event string) {
	if m == nil {
		return
	}
	m.hubEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) FanoutFailure(event string) {
	if m == nil {
		return
	}
	m.fanoutFailures.WithLabelValues(event).Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) ObserveCompose(d time.Duration) {
	if m == nil {
		return
	}
	m.composeDuration.Observe(d.Seconds())
}
