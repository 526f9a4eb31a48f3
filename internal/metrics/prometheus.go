package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/sortition/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metric registration is lazy: collectors are created and registered on
// first use, so constructing the collector never panics on duplicate
// registration in tests that share the default registerer.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Resolver metrics
	resolveCounter *prometheus.CounterVec
	variantCounter *prometheus.CounterVec

	// Store metrics
	publishCounter  *prometheus.CounterVec
	experimentGauge prometheus.Gauge
	versionGauge    prometheus.Gauge

	// Recorder metrics
	recordCounter   *prometheus.CounterVec
	recordLatency   prometheus.Histogram
	exposureCounter *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "sortition" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "sortition"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.resolveCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "resolver",
			Name:      "resolves_total",
			Help:      "Total resolve calls by experiment and outcome.",
		}, []string{"experiment", "outcome"})

		p.variantCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "resolver",
			Name:      "variant_assignments_total",
			Help:      "Total live variant assignments by experiment and variant.",
		}, []string{"experiment", "variant"})

		p.publishCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "publishes_total",
			Help:      "Total snapshot publish attempts by result.",
		}, []string{"result"})

		p.experimentGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "experiments_current",
			Help:      "Number of experiments in the current snapshot.",
		})

		p.versionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "snapshot_version",
			Help:      "Version of the current configuration snapshot.",
		})

		p.recordCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "recorder",
			Name:      "record_attempts_total",
			Help:      "Total assignment record attempts by result.",
		}, []string{"result"})

		p.recordLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "recorder",
			Name:      "record_duration_seconds",
			Help:      "Observed assignment record durations in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		})

		p.exposureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "recorder",
			Name:      "first_exposures_total",
			Help:      "Total first recorded exposures by experiment.",
		}, []string{"experiment"})

		collectors := []prometheus.Collector{
			p.resolveCounter,
			p.variantCounter,
			p.publishCounter,
			p.experimentGauge,
			p.versionGauge,
			p.recordCounter,
			p.recordLatency,
			p.exposureCounter,
		}
		for _, c := range collectors {
			if err := p.reg.Register(c); err != nil {
				// AlreadyRegisteredError means another collector instance owns
				// the metric; reuse is not possible with vectors, so skip.
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// RecordResolve increments the resolve counter for an experiment/outcome pair.
func (p *PrometheusCollector) RecordResolve(experimentKey, outcome string) {
	p.ensureRegistered()
	p.resolveCounter.WithLabelValues(experimentKey, outcome).Inc()
}

// RecordVariantAssignment increments the variant assignment counter.
func (p *PrometheusCollector) RecordVariantAssignment(experimentKey, variant string) {
	p.ensureRegistered()
	p.variantCounter.WithLabelValues(experimentKey, variant).Inc()
}

// RecordPublish increments the publish counter with a success/failure label.
func (p *PrometheusCollector) RecordPublish(success bool) {
	p.ensureRegistered()
	p.publishCounter.WithLabelValues(resultLabel(success)).Inc()
}

// SetExperimentCount sets the current experiment count gauge.
func (p *PrometheusCollector) SetExperimentCount(count int) {
	p.ensureRegistered()
	p.experimentGauge.Set(float64(count))
}

// SetSnapshotVersion sets the current snapshot version gauge.
func (p *PrometheusCollector) SetSnapshotVersion(version uint64) {
	p.ensureRegistered()
	p.versionGauge.Set(float64(version))
}

// RecordRecordAttempt increments the record attempt counter.
func (p *PrometheusCollector) RecordRecordAttempt(success bool) {
	p.ensureRegistered()
	p.recordCounter.WithLabelValues(resultLabel(success)).Inc()
}

// RecordRecordDuration observes a record operation duration.
func (p *PrometheusCollector) RecordRecordDuration(duration float64) {
	p.ensureRegistered()
	p.recordLatency.Observe(duration)
}

// RecordFirstExposure increments the first exposure counter for an experiment.
func (p *PrometheusCollector) RecordFirstExposure(experimentKey string) {
	p.ensureRegistered()
	p.exposureCounter.WithLabelValues(experimentKey).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}
