package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-pingnode/internal/core/protocol/ping"
	"github.com/dep2p/go-pingnode/internal/core/swarm"
)

const namespace = "pingnode"

// Metrics 节点指标
type Metrics struct {
	registry *prometheus.Registry

	connsOpened  *prometheus.CounterVec
	connsClosed  *prometheus.CounterVec
	connsActive  prometheus.Gauge
	pingRTT      prometheus.Histogram
	pingFailures *prometheus.CounterVec
	dialFailures prometheus.Counter
	listenAddrs  prometheus.Gauge
}

// New 创建并注册所有指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_opened_total",
			Help:      "Connections established, by direction.",
		}, []string{"direction"}),
		connsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Connections closed, by reason.",
		}, []string{"reason"}),
		connsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Currently established connections.",
		}),
		pingRTT: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ping_rtt_seconds",
			Help:      "Round trip time of successful pings.",
			// 100µs .. ~3.3s
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		pingFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ping_failures_total",
			Help:      "Failed pings, by kind.",
		}, []string{"kind"}),
		dialFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dial_failures_total",
			Help:      "Outgoing connection attempts that failed.",
		}),
		listenAddrs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listen_addrs",
			Help:      "Addresses currently being listened on.",
		}),
	}

	m.registry.MustRegister(
		m.connsOpened,
		m.connsClosed,
		m.connsActive,
		m.pingRTT,
		m.pingFailures,
		m.dialFailures,
		m.listenAddrs,
	)
	return m
}

// Registry 返回指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe 根据事件更新指标，nil 接收者忽略所有事件
func (m *Metrics) Observe(ev swarm.Event) {
	if m == nil {
		return
	}

	switch e := ev.(type) {
	case swarm.ListenAddressReady:
		m.listenAddrs.Inc()
	case swarm.ListenAddressExpired:
		m.listenAddrs.Dec()
	case swarm.ConnectionEstablished:
		m.connsOpened.WithLabelValues(e.Direction.String()).Inc()
		m.connsActive.Inc()
	case swarm.ConnectionClosed:
		m.connsClosed.WithLabelValues(e.Reason.String()).Inc()
		m.connsActive.Dec()
	case swarm.OutgoingConnectionError:
		m.dialFailures.Inc()
	case swarm.ProtocolEvent:
		if pe, ok := e.Payload.(ping.Event); ok {
			m.observePing(pe)
		}
	}
}

func (m *Metrics) observePing(ev ping.Event) {
	if ev.Success() {
		m.pingRTT.Observe(ev.RTT.Seconds())
		return
	}
	kind := "unknown"
	var f *ping.Failure
	if errors.As(ev.Err, &f) {
		kind = f.Kind.String()
	}
	m.pingFailures.WithLabelValues(kind).Inc()
}
