package metric

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveBuild("named", time.Now(), nil)
	m.ObserveBuild("nested", time.Now(), errors.New("boom"))
	m.IncDeferred()
	m.AddNamed(2)
	m.ObserveService("start", nil)
	m.ObserveDereference("env", nil)
	m.ObserveDereference("env", errors.New("missing"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.buildsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.buildsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.buildsTotal.WithLabelValues("deferred")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.namedObjects))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.serviceEvents.WithLabelValues("start", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dereferences.WithLabelValues("env", "failed")))

	_, err = New(reg)
	assert.Error(t, err, "collectors cannot be registered twice")
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBuild("named", time.Now(), nil)
		m.IncDeferred()
		m.AddNamed(1)
		m.ObserveService("stop", nil)
		m.ObserveDereference("s", nil)
	})
}
