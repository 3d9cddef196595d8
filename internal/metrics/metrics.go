// Package metrics records optimizer run statistics.
//
// Collectors are called once per finished search, never from inside the
// enumeration loop.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records the outcome of optimizer runs.
type Collector interface {
	// RecordSearch records how many assignments were enumerated, how many
	// of them were feasible, and the wall time in seconds.
	RecordSearch(evaluated, feasible uint64, seconds float64)

	// RecordResult records whether a feasible solution was found and its reward.
	RecordResult(found bool, reward float64)
}

// NopMetrics discards all metrics.
type NopMetrics struct{}

var _ Collector = (*NopMetrics)(nil)

// NewNop creates a no-op collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordSearch discards the search statistics.
func (n *NopMetrics) RecordSearch(_, _ uint64, _ float64) {}

// RecordResult discards the result.
func (n *NopMetrics) RecordResult(_ bool, _ float64) {}

// PrometheusCollector implements Collector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	searches    prometheus.Counter
	evaluated   prometheus.Counter
	feasible    prometheus.Counter
	duration    prometheus.Histogram
	results     *prometheus.CounterVec
	lastReward  prometheus.Gauge
	registerErr error
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed collector. A nil registerer
// falls back to prometheus.DefaultRegisterer and an empty namespace to "rodcut".
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "rodcut"
	}
	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.searches = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "optimizer",
			Name:      "searches_total",
			Help:      "Total optimizer searches run to completion.",
		})
		p.evaluated = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "optimizer",
			Name:      "assignments_evaluated_total",
			Help:      "Total assignment identifiers decoded.",
		})
		p.feasible = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "optimizer",
			Name:      "assignments_feasible_total",
			Help:      "Total assignments whose remainders stayed non-negative.",
		})
		p.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "optimizer",
			Name:      "search_duration_seconds",
			Help:      "Wall time of optimizer searches in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms .. ~4.4min
		})
		p.results = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "optimizer",
			Name:      "results_total",
			Help:      "Search outcomes by result (solved, infeasible).",
		}, []string{"result"})
		p.lastReward = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "optimizer",
			Name:      "last_reward",
			Help:      "Reward of the most recent solution found.",
		})

		for _, c := range []prometheus.Collector{p.searches, p.evaluated, p.feasible, p.duration, p.results, p.lastReward} {
			if err := p.reg.Register(c); err != nil {
				p.registerErr = err
			}
		}
	})
}

// Err returns the first registration error, if any.
func (p *PrometheusCollector) Err() error {
	p.ensureRegistered()
	return p.registerErr
}

// RecordSearch records the enumeration statistics of one search.
func (p *PrometheusCollector) RecordSearch(evaluated, feasible uint64, seconds float64) {
	p.ensureRegistered()
	p.searches.Inc()
	p.evaluated.Add(float64(evaluated))
	p.feasible.Add(float64(feasible))
	p.duration.Observe(seconds)
}

// RecordResult records the outcome of one search.
func (p *PrometheusCollector) RecordResult(found bool, reward float64) {
	p.ensureRegistered()
	if !found {
		p.results.WithLabelValues("infeasible").Inc()
		return
	}
	p.results.WithLabelValues("solved").Inc()
	p.lastReward.Set(reward)
}
