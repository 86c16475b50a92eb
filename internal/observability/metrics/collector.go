package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the prometheus instruments for the adjudication core.
// A nil *Collector is a valid no-op dependency.
type Collector struct {
	EvaluationsTotal *prometheus.CounterVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	InterruptsTotal  *prometheus.CounterVec
	JudgeLatency     *prometheus.HistogramVec
	JudgeErrors      *prometheus.CounterVec
}

// NewCollector creates a metrics collector for the adjudication core.
func NewCollector() *Collector {
	return &Collector{
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duelogic_evaluations_total",
				Help: "Total response evaluations by method",
			},
			[]string{"method"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "duelogic_evaluation_cache_hits_total",
				Help: "Total evaluation cache hits",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "duelogic_evaluation_cache_misses_total",
				Help: "Total evaluation cache misses",
			},
		),
		InterruptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duelogic_interrupts_total",
				Help: "Total executed chair interruptions by trigger reason",
			},
			[]string{"reason"},
		),
		JudgeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "duelogic_judge_latency_seconds",
				Help:    "Judge model call latency in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		JudgeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duelogic_judge_errors_total",
				Help: "Total judge call failures by operation",
			},
			[]string{"operation"},
		),
	}
}

// Register registers all instruments with the given registry.
func (c *Collector) Register(registry *prometheus.Registry) {
	registry.MustRegister(
		c.EvaluationsTotal,
		c.CacheHits,
		c.CacheMisses,
		c.InterruptsTotal,
		c.JudgeLatency,
		c.JudgeErrors,
	)
}

// Handler returns an HTTP handler serving the registry in the prometheus
// exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObserveEvaluation records one evaluation produced with the given method.
func (c *Collector) ObserveEvaluation(method string) {
	if c == nil {
		return
	}
	c.EvaluationsTotal.WithLabelValues(method).Inc()
}

// ObserveCacheHit records one evaluation cache hit.
func (c *Collector) ObserveCacheHit() {
	if c == nil {
		return
	}
	c.CacheHits.Inc()
}

// ObserveCacheMiss records one evaluation cache miss.
func (c *Collector) ObserveCacheMiss() {
	if c == nil {
		return
	}
	c.CacheMisses.Inc()
}

// ObserveInterrupt records one executed interruption.
func (c *Collector) ObserveInterrupt(reason string) {
	if c == nil {
		return
	}
	c.InterruptsTotal.WithLabelValues(reason).Inc()
}

// ObserveJudgeCall records the latency of a judge call, and the failure if
// err is non-nil.
func (c *Collector) ObserveJudgeCall(operation string, seconds float64, err error) {
	if c == nil {
		return
	}
	c.JudgeLatency.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		c.JudgeErrors.WithLabelValues(operation).Inc()
	}
}
