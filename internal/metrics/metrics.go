package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orders"

// Metrics groups the collectors recorded by the order service.
type Metrics struct {
	CacheLookups     *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	OrdersCreated    prometheus.Counter
	OrdersPaid       prometheus.Counter
	WorkflowFailures *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key kind and result.",
		}, []string{"kind", "result"}),
		UpstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of outbound calls to cart, product and payment services.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"upstream", "outcome"}),
		OrdersCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "Orders persisted by the create workflow.",
		}),
		OrdersPaid: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paid_total",
			Help:      "Orders transitioned to paid.",
		}),
		WorkflowFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_failures_total",
			Help:      "Workflow failures by operation and error kind.",
		}, []string{"operation", "kind"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) CacheHit(kind string) {
	m.CacheLookups.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) CacheMiss(kind string) {
	m.CacheLookups.WithLabelValues(kind, "miss").Inc()
}

// ObserveUpstream records one outbound call started at start.
func (m *Metrics) ObserveUpstream(upstream string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamDuration.WithLabelValues(upstream, outcome).Observe(time.Since(start).Seconds())
}
