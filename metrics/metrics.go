package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/crmarques/boxctl/faults"
)

const namespace = "boxctl"

// Recorder holds the run's metrics in a private registry. A nil Recorder
// accepts every observation and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	apiCalls        *prometheus.CounterVec
	apiCallDuration *prometheus.HistogramVec
	reconciliations *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		apiCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_calls_total",
				Help:      "BoxBilling API calls by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
		apiCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_call_duration_seconds",
				Help:      "BoxBilling API call latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconciliations_total",
				Help:      "Reconciled resources by intent and outcome.",
			},
			[]string{"intent", "outcome"},
		),
	}
}

func (r *Recorder) ObserveCall(endpoint string, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.apiCalls.WithLabelValues(endpoint, outcome).Inc()
	r.apiCallDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveReconciliation(intent string, outcome string) {
	if r == nil {
		return
	}
	r.reconciliations.WithLabelValues(intent, outcome).Inc()
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return faults.NewTypedError(faults.InternalError, "failed to write metrics file", err)
	}
	return nil
}
