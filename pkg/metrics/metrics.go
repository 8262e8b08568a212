// Package metrics exposes prediction counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "houseval"

// Recorder holds the prediction collectors on its own registry so multiple
// servers (and tests) do not collide on the global one.
type Recorder struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	errors      *prometheus.CounterVec
	estimates   prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Number of successful predictions by ocean proximity.",
		}, []string{"ocean_proximity"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      "Number of failed predictions by error kind.",
		}, []string{"kind"}),
		estimates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "estimate_usd",
			Help:      "Distribution of estimated median house values.",
			Buckets:   prometheus.LinearBuckets(0, 100000, 11),
		}),
	}

	r.registry.MustRegister(
		r.predictions,
		r.errors,
		r.estimates,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records a successful estimate.
func (r *Recorder) Observe(proximity string, value float64) {
	r.predictions.WithLabelValues(proximity).Inc()
	r.estimates.Observe(value)
}

// ObserveError records a failed prediction of the given kind.
func (r *Recorder) ObserveError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// Handler serves the registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
