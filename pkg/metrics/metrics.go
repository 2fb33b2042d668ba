// Package metrics exports reconciler activity to Prometheus.
//
// A Recorder implements weave.Recorder (patches and render errors) and
// sched.TaskObserver (scheduled, cancelled and applied tasks):
//
//	rec := metrics.New(metrics.WithRegistry(reg))
//	loop := sched.NewLoop(sched.WithObserver(rec))
//	host := weave.NewHost(loop, weave.WithRecorder(rec))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures a Recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "weave").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		if namespace != "" {
			c.Namespace = namespace
		}
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "weave",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Recorder holds the reconciler metrics.
type Recorder struct {
	patches        *prometheus.CounterVec
	patchDuration  prometheus.Histogram
	tasksSubmitted *prometheus.CounterVec
	tasksCancelled *prometheus.CounterVec
	taskDuration   *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
	mutations      *prometheus.CounterVec
	clients        prometheus.Gauge
}

// New creates a Recorder and registers its metrics.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Recorder{
		patches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total number of applied patches by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		patchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patch_duration_seconds",
			Help:        "Time spent applying one diff result",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		tasksSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tasks_submitted_total",
			Help:        "Total number of tasks queued for idle time",
			ConstLabels: config.ConstLabels,
		}, []string{"task"}),

		tasksCancelled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tasks_cancelled_total",
			Help:        "Total number of pending tasks replaced by a newer request",
			ConstLabels: config.ConstLabels,
		}, []string{"task"}),

		taskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "task_duration_seconds",
			Help:        "Task execution time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"task"}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total number of caught component render errors",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dom_mutations_total",
			Help:        "Total number of platform tree mutations by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		clients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "devtools_clients",
			Help:        "Number of connected devtools clients",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// PatchesApplied implements weave.Recorder.
func (r *Recorder) PatchesApplied(counts map[string]int, d time.Duration) {
	for kind, n := range counts {
		r.patches.WithLabelValues(kind).Add(float64(n))
	}
	r.patchDuration.Observe(d.Seconds())
}

// RenderFailed implements weave.Recorder.
func (r *Recorder) RenderFailed(component string) {
	r.renderErrors.WithLabelValues(component).Inc()
}

// TaskSubmitted implements sched.TaskObserver.
func (r *Recorder) TaskSubmitted(name string) {
	r.tasksSubmitted.WithLabelValues(name).Inc()
}

// TaskCancelled implements sched.TaskObserver.
func (r *Recorder) TaskCancelled(name string) {
	r.tasksCancelled.WithLabelValues(name).Inc()
}

// TaskRun implements sched.TaskObserver.
func (r *Recorder) TaskRun(name string, d time.Duration) {
	r.taskDuration.WithLabelValues(name).Observe(d.Seconds())
}

// MutationObserved counts one platform mutation.
func (r *Recorder) MutationObserved(op string) {
	r.mutations.WithLabelValues(op).Inc()
}

// SetClients records the number of connected devtools clients.
func (r *Recorder) SetClients(n int) {
	r.clients.Set(float64(n))
}
