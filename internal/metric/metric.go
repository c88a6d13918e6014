// Package metric holds the Prometheus collectors for object graph builds and
// service lifecycle. A nil *Metrics disables collection; every method is safe
// to call on it.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wiregrid"

// Metrics collects container telemetry.
type Metrics struct {
	// Build counters
	buildsTotal   *prometheus.CounterVec   // By result (ok/failed/deferred)
	buildDuration *prometheus.HistogramVec // By kind (named/nested)
	deferred      prometheus.Counter

	// Registry state
	namedObjects prometheus.Gauge

	// Lifecycle
	serviceEvents *prometheus.CounterVec // By event (start/stop) and result

	// URI resolution
	dereferences *prometheus.CounterVec // By scheme and result
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		buildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "builds_total",
			Help:      "Total number of object builds by result",
		}, []string{"result"}),

		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "build_duration_seconds",
			Help:      "Object build duration in seconds, nested builds included",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"kind"}),

		deferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "deferred_injections_total",
			Help:      "Total number of property injections deferred on objects under construction",
		}),

		namedObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "named_objects",
			Help:      "Current number of named objects across containers",
		}),

		serviceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "service_events_total",
			Help:      "Total number of service start and stop calls by result",
		}, []string{"event", "result"}),

		dereferences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uri",
			Name:      "dereferences_total",
			Help:      "Total number of URI dereferences by scheme and result",
		}, []string{"scheme", "result"}),
	}

	for _, c := range []prometheus.Collector{
		m.buildsTotal, m.buildDuration, m.deferred, m.namedObjects, m.serviceEvents, m.dereferences,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func result(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

// ObserveBuild records a finished build.
func (m *Metrics) ObserveBuild(kind string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.buildsTotal.WithLabelValues(result(err)).Inc()
	m.buildDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// IncDeferred records a deferred injection.
func (m *Metrics) IncDeferred() {
	if m == nil {
		return
	}
	m.deferred.Inc()
	m.buildsTotal.WithLabelValues("deferred").Inc()
}

// AddNamed adjusts the named object gauge.
func (m *Metrics) AddNamed(delta int) {
	if m == nil {
		return
	}
	m.namedObjects.Add(float64(delta))
}

// ObserveService records a service start or stop.
func (m *Metrics) ObserveService(event string, err error) {
	if m == nil {
		return
	}
	m.serviceEvents.WithLabelValues(event, result(err)).Inc()
}

// ObserveDereference records a URI dereference. It has the signature of a
// uri.Observer.
func (m *Metrics) ObserveDereference(scheme string, err error) {
	if m == nil {
		return
	}
	m.dereferences.WithLabelValues(scheme, result(err)).Inc()
}
