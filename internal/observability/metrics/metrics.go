package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Slots exposes counters/histograms for availability lookups.
type Slots struct {
	requestsTotal  *prometheus.CounterVec
	computeLatency *prometheus.HistogramVec
}

func NewSlots(reg prometheus.Registerer) *Slots {
	m := &Slots{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restyle",
			Subsystem: "slots",
			Name:      "requests_total",
			Help:      "Total working-slots lookups",
		}, []string{"outcome"}),
		computeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "restyle",
			Subsystem: "slots",
			Name:      "compute_latency_seconds",
			Help:      "Latency of availability computation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.computeLatency)
	return m
}

func (m *Slots) ObserveRequest(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
	m.computeLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// Upstream exposes counters for calls to the booking SaaS.
type Upstream struct {
	requestsTotal *prometheus.CounterVec
	retriesTotal  prometheus.Counter
}

func NewUpstream(reg prometheus.Registerer) *Upstream {
	m := &Upstream{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restyle",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total upstream API requests",
		}, []string{"status"}),
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "restyle",
			Subsystem: "upstream",
			Name:      "retries_total",
			Help:      "Total upstream rate-limit retries",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.retriesTotal)
	return m
}

func (m *Upstream) ObserveRequest(status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(status).Inc()
}

func (m *Upstream) ObserveRetry() {
	if m == nil {
		return
	}
	m.retriesTotal.Inc()
}
