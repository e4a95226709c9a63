package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/minimaproject/minima/internal/common/optimisation"
)

const MetricPrefix = "minima_"

var sweepsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "sweeps_total",
		Help: "Number of optimisation sweeps completed",
	},
	[]string{"benchmark"},
)

var currentObjectiveGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: MetricPrefix + "current_objective",
		Help: "Mean objective at the end of the most recent sweep",
	},
	[]string{"benchmark"},
)

var runsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "runs_total",
		Help: "Number of finished optimisation runs by stopping status",
	},
	[]string{"benchmark", "status"},
)

var runDurationHist = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    MetricPrefix + "run_duration_seconds",
		Help:    "Wall clock duration of optimisation runs",
		Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 5, 25, 100, 500},
	},
	[]string{"benchmark"},
)

// RecordSweep updates the per-sweep metrics of the named benchmark.
func RecordSweep(benchmark string, objective float64) {
	sweepsCounter.WithLabelValues(benchmark).Inc()
	currentObjectiveGauge.WithLabelValues(benchmark).Set(objective)
}

// RecordRun registers a finished optimisation run of the named benchmark.
func RecordRun(benchmark string, status optimisation.Status, duration time.Duration) {
	runsCounter.WithLabelValues(benchmark, status.String()).Inc()
	runDurationHist.WithLabelValues(benchmark).Observe(duration.Seconds())
}

// SweepReporter streams the progress of an optimisation run into the
// benchmark's metrics.
type SweepReporter struct {
	Benchmark string
}

func (r SweepReporter) ReportSweep(sweep int, objective float64) {
	RecordSweep(r.Benchmark, objective)
}
