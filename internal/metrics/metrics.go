// Package metrics holds the Prometheus instruments exported on /metrics.
//
// Every method is safe on a nil *Metrics, so components can be built without instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "billbuddy"

// Scan results.
const (
	ScanOK     = "ok"
	ScanFailed = "failed"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests    *prometheus.CounterVec
	rpcDuration    *prometheus.HistogramVec
	splitConflicts prometheus.Counter
	splitReplaced  prometheus.Counter
	eventsSent     *prometheus.CounterVec
	receiptScans   *prometheus.CounterVec
	watchers       prometheus.Gauge
}

// New registers every instrument, plus Go and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		splitConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_version_conflicts_total",
			Help:      "Split replacements that lost a race and were retried.",
		}),
		splitReplaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_replacements_total",
			Help:      "Item split sets replaced.",
		}),
		eventsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Change events published, by kind.",
		}, []string{"kind"}),
		receiptScans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_scans_total",
			Help:      "Receipt scans, by result.",
		}, []string{"result"}),
		watchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_watchers",
			Help:      "Open WatchRoom streams.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.splitConflicts,
		m.splitReplaced,
		m.eventsSent,
		m.receiptScans,
		m.watchers,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

func (m *Metrics) SplitConflict() {
	if m == nil {
		return
	}
	m.splitConflicts.Inc()
}

func (m *Metrics) SplitReplaced() {
	if m == nil {
		return
	}
	m.splitReplaced.Inc()
}

func (m *Metrics) EventPublished(kind string) {
	if m == nil {
		return
	}
	m.eventsSent.WithLabelValues(kind).Inc()
}

func (m *Metrics) ReceiptScanned(result string) {
	if m == nil {
		return
	}
	m.receiptScans.WithLabelValues(result).Inc()
}

// WatcherOpened and WatcherClosed track open room streams.
func (m *Metrics) WatcherOpened() {
	if m == nil {
		return
	}
	m.watchers.Inc()
}

func (m *Metrics) WatcherClosed() {
	if m == nil {
		return
	}
	m.watchers.Dec()
}
