// Package obsmetrics wires an optional Prometheus registry around the
// Backtest Engine and Walk-Forward Optimizer for cmd/ binaries that want
// observability; the core itself never imports this package.
package obsmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a cmd/ binary registers around
// its calls into the core.
type Metrics struct {
	BacktestRunsTotal    *prometheus.CounterVec
	BacktestRunDuration  *prometheus.HistogramVec
	OptimizerTrialsTotal *prometheus.CounterVec
	WindowsDroppedTotal  *prometheus.CounterVec
}

// New creates and registers the metrics under namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "quant_research"
	}
	return &Metrics{
		BacktestRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backtest_runs_total",
				Help:      "Total number of Backtest Engine runs.",
			},
			[]string{"strategy", "symbol"},
		),
		BacktestRunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backtest_run_duration_seconds",
				Help:      "Wall-clock duration of a Backtest Engine run.",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"strategy"},
		),
		OptimizerTrialsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "optimizer_trials_total",
				Help:      "Total number of Walk-Forward Optimizer trials evaluated.",
			},
			[]string{"strategy", "sampler"},
		),
		WindowsDroppedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "optimizer_windows_dropped_total",
				Help:      "Total number of walk-forward windows dropped for insufficient bars.",
			},
			[]string{"strategy", "reason"},
		),
	}
}
