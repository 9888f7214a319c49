package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains metrics configuration.
type Config struct {
	// Enabled turns metric recording on. Disabled collectors accept
	// calls and record nothing.
	Enabled bool `yaml:"enabled"`

	// Listen is the address the metrics endpoint binds to, e.g.
	// ":9090". Empty disables the endpoint.
	Listen string `yaml:"listen"`

	// Namespace prefixes every metric name. Default: causeway
	Namespace string `yaml:"namespace"`
}

// Collector records build and explanation metrics against its own
// Prometheus registry.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	buildsTotal   *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	buildNodes    *prometheus.CounterVec
	buildEdges    *prometheus.CounterVec

	cleanupRemoved *prometheus.CounterVec

	explainTotal    *prometheus.CounterVec
	explainDuration *prometheus.HistogramVec
	explainSteps    prometheus.Histogram
}

// NewCollector creates a collector. If registry is nil a fresh registry
// is used.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &Config{Enabled: true}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "causeway"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		buildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "graph",
			Name:      "builds_total",
			Help:      "Graph builds by model and status.",
		}, []string{"model", "status"}),

		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "graph",
			Name:      "build_duration_seconds",
			Help:      "Graph build duration.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"model"}),

		buildNodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "graph",
			Name:      "build_nodes_total",
			Help:      "Nodes written by builds, by operation (created or updated).",
		}, []string{"model", "op"}),

		buildEdges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "graph",
			Name:      "build_edges_total",
			Help:      "Edges written by builds, by operation (created or updated).",
		}, []string{"model", "op"}),

		cleanupRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "graph",
			Name:      "cleanup_removed_total",
			Help:      "Stale nodes removed by cleanup runs.",
		}, []string{"model"}),

		explainTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "explain",
			Name:      "requests_total",
			Help:      "Explanation requests by mode and status.",
		}, []string{"mode", "status"}),

		explainDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "explain",
			Name:      "duration_seconds",
			Help:      "Explanation request duration.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"mode"}),

		explainSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "explain",
			Name:      "trace_steps",
			Help:      "Justifying rule steps per trace.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
	}

	registry.MustRegister(
		c.buildsTotal,
		c.buildDuration,
		c.buildNodes,
		c.buildEdges,
		c.cleanupRemoved,
		c.explainTotal,
		c.explainDuration,
		c.explainSteps,
	)

	return c
}

// RecordBuild records one graph build.
func (c *Collector) RecordBuild(model, status string, duration time.Duration, nodesCreated, nodesUpdated, edgesCreated, edgesUpdated int) {
	if !c.config.Enabled {
		return
	}
	c.buildsTotal.WithLabelValues(model, status).Inc()
	c.buildDuration.WithLabelValues(model).Observe(duration.Seconds())
	c.buildNodes.WithLabelValues(model, "created").Add(float64(nodesCreated))
	c.buildNodes.WithLabelValues(model, "updated").Add(float64(nodesUpdated))
	c.buildEdges.WithLabelValues(model, "created").Add(float64(edgesCreated))
	c.buildEdges.WithLabelValues(model, "updated").Add(float64(edgesUpdated))
}

// RecordCleanup records one cleanup run.
func (c *Collector) RecordCleanup(model string, removed int) {
	if !c.config.Enabled {
		return
	}
	c.cleanupRemoved.WithLabelValues(model).Add(float64(removed))
}

// RecordExplanation records one explanation request.
func (c *Collector) RecordExplanation(mode, status string, duration time.Duration, steps int) {
	if !c.config.Enabled {
		return
	}
	c.explainTotal.WithLabelValues(mode, status).Inc()
	c.explainDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if status == "success" {
		c.explainSteps.Observe(float64(steps))
	}
}

// Registry returns the collector's Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
