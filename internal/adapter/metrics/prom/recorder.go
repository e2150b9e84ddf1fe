package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exports load counters on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	loads        *prometheus.CounterVec
	frames       prometheus.Counter
	actionErrors prometheus.Counter
	failures     *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Recorder{
		registry: registry,
		loads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snowviz_runs_loaded_total",
				Help: "Total number of runs loaded, partitioned by planning domain.",
			},
			[]string{"domain"},
		),
		frames: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "snowviz_frames_synthesized_total",
				Help: "Total number of frames synthesized by successful loads.",
			},
		),
		actionErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "snowviz_action_errors_total",
				Help: "Total number of plan actions replaced by error frames.",
			},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snowviz_load_failures_total",
				Help: "Total number of rejected loads, partitioned by error code.",
			},
			[]string{"code"},
		),
	}
}

func (r *Recorder) RecordLoad(domain string, frameCount int) {
	r.loads.WithLabelValues(domain).Inc()
	r.frames.Add(float64(frameCount))
}

func (r *Recorder) RecordActionErrors(n int) {
	r.actionErrors.Add(float64(n))
}

func (r *Recorder) RecordFailure(code string) {
	r.failures.WithLabelValues(code).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
