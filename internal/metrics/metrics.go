// Package metrics counts run, node, and scrape outcomes on a private
// Prometheus registry. Nothing is exposed over the network; the CLI logs a
// gathered summary at the end of a run.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aretw0/ferret/pkg/graph"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Hooks is a graph.RunHooks that records execution metrics.
type Hooks struct {
	graph.NoopHooks

	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	nodeDuration *prometheus.HistogramVec
	tasks        *prometheus.CounterVec
	fanOutSize   prometheus.Histogram
}

// New creates hooks backed by a fresh private registry.
func New() *Hooks {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Hooks{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ferret_runs_total",
			Help: "Completed hunts by outcome.",
		}, []string{"outcome"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ferret_run_duration_seconds",
			Help:    "Wall-clock duration of a hunt.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		nodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ferret_node_duration_seconds",
			Help:    "Execution time per workflow node.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"node"}),
		tasks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ferret_scrape_tasks_total",
			Help: "Fanned-out scrape tasks by target node.",
		}, []string{"node"}),
		fanOutSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ferret_fan_out_size",
			Help:    "Batch size per fan-out dispatch.",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		}),
	}
}

func (h *Hooks) OnRunEnd(ctx context.Context, runID string, err error, d time.Duration) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	h.runs.WithLabelValues(outcome).Inc()
	h.runDuration.Observe(d.Seconds())
}

func (h *Hooks) OnNodeEnd(ctx context.Context, node string, err error, d time.Duration) {
	h.nodeDuration.WithLabelValues(node).Observe(d.Seconds())
}

func (h *Hooks) OnFanOut(ctx context.Context, node string, tasks int) {
	h.fanOutSize.Observe(float64(tasks))
}

func (h *Hooks) OnTaskEnd(ctx context.Context, node string, index int, p graph.Partial, err error, d time.Duration) {
	h.tasks.WithLabelValues(node).Inc()
	h.nodeDuration.WithLabelValues(node).Observe(d.Seconds())
}

// Registry exposes the private registry, mainly for tests.
func (h *Hooks) Registry() *prometheus.Registry {
	return h.registry
}

// LogSummary gathers the registry and logs one line per metric sample.
func (h *Hooks) LogSummary(logger *slog.Logger) {
	families, err := h.registry.Gather()
	if err != nil {
		logger.Warn("gathering metrics failed", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, slog.String(lp.GetName(), lp.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, slog.Float64("count", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				attrs = append(attrs,
					slog.Uint64("samples", m.GetHistogram().GetSampleCount()),
					slog.Float64("sum", m.GetHistogram().GetSampleSum()),
				)
			default:
				continue
			}
			logger.Info(mf.GetName(), attrs...)
		}
	}
}
