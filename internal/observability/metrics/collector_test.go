package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorIsNoOp(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveEvaluation("quick")
		c.ObserveCacheHit()
		c.ObserveCacheMiss()
		c.ObserveInterrupt("factual_correction")
		c.ObserveJudgeCall("evaluate", 0.5, nil)
		c.ObserveJudgeCall("evaluate", 0.5, errors.New("boom"))
	})
}

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	registry := prometheus.NewRegistry()
	c.Register(registry)

	c.ObserveEvaluation("quick")
	c.ObserveEvaluation("quick")
	c.ObserveEvaluation("full")
	c.ObserveCacheHit()
	c.ObserveCacheMiss()
	c.ObserveCacheMiss()
	c.ObserveInterrupt("straw_man_detected")
	c.ObserveJudgeCall("evaluate", 0.2, nil)
	c.ObserveJudgeCall("interrupt", 0.1, errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.EvaluationsTotal.WithLabelValues("quick")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EvaluationsTotal.WithLabelValues("full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.InterruptsTotal.WithLabelValues("straw_man_detected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.JudgeErrors.WithLabelValues("interrupt")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.JudgeErrors.WithLabelValues("evaluate")))
}

func TestHandlerServesExposition(t *testing.T) {
	c := NewCollector()
	registry := prometheus.NewRegistry()
	c.Register(registry)
	c.ObserveEvaluation("full")

	recorder := httptest.NewRecorder()
	Handler(registry).ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "duelogic_evaluations_total")
}
