package daemon

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// Metrics collects the daemon's Prometheus metrics on a private
// registry, so several daemons can share one process.
type Metrics struct {
	reg *prometheus.Registry

	nodeValue   *prometheus.GaugeVec
	nodeUpdates *prometheus.CounterVec
	nodeBad     *prometheus.CounterVec
	sessionUp   prometheus.Gauge
	published   prometheus.Counter
	publishErrs prometheus.Counter
}

// NewMetrics registers the daemon's metric set on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}

	m.nodeValue = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "uamon_node_value",
		Help: "Last good numeric value received for a monitored node.",
	}, []string{"node"})
	m.nodeUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uamon_node_updates_total",
		Help: "Data changes received per monitored node.",
	}, []string{"node"})
	m.nodeBad = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uamon_node_bad_quality_total",
		Help: "Updates with a bad status code per monitored node.",
	}, []string{"node"})
	m.sessionUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uamon_session_up",
		Help: "1 while the client session is activated.",
	})
	m.published = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uamon_mqtt_published_total",
		Help: "Samples delivered to the MQTT broker.",
	})
	m.publishErrs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uamon_mqtt_publish_errors_total",
		Help: "Samples that failed to publish.",
	})

	m.reg.MustRegister(m.nodeValue, m.nodeUpdates, m.nodeBad, m.sessionUp, m.published, m.publishErrs)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Observe records one data change for a node. Bad-quality updates
// count separately and leave the value gauge untouched.
func (m *Metrics) Observe(node string, dv ua.DataValue) {
	m.nodeUpdates.WithLabelValues(node).Inc()
	if dv.Status.IsBad() {
		m.nodeBad.WithLabelValues(node).Inc()
		return
	}
	if f, ok := numericValue(dv.Value); ok {
		m.nodeValue.WithLabelValues(node).Set(f)
	}
}

// SessionUp tracks the session state as a 0/1 gauge.
func (m *Metrics) SessionUp(up bool) {
	if up {
		m.sessionUp.Set(1)
	} else {
		m.sessionUp.Set(0)
	}
}

// Published counts one delivered sample.
func (m *Metrics) Published() { m.published.Inc() }

// PublishError counts one failed delivery.
func (m *Metrics) PublishError() { m.publishErrs.Inc() }

// numericValue maps a variant onto the gauge scale. Booleans count as
// 0 and 1; non-numeric values have no gauge representation.
func numericValue(v ua.Variant) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
