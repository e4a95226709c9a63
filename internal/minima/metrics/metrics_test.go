package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/minimaproject/minima/internal/common/optimisation"
)

func TestRecordSweep(t *testing.T) {
	RecordSweep("recordSweepTest", 2.5)
	RecordSweep("recordSweepTest", 1.25)

	assert.Equal(t, 2.0, testutil.ToFloat64(sweepsCounter.WithLabelValues("recordSweepTest")))
	assert.Equal(t, 1.25, testutil.ToFloat64(currentObjectiveGauge.WithLabelValues("recordSweepTest")))
}

func TestRecordRun(t *testing.T) {
	RecordRun("recordRunTest", optimisation.StatusConverged, 10*time.Millisecond)
	RecordRun("recordRunTest", optimisation.StatusConverged, 20*time.Millisecond)
	RecordRun("recordRunTest", optimisation.StatusDiverged, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(runsCounter.WithLabelValues("recordRunTest", "converged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(runsCounter.WithLabelValues("recordRunTest", "diverged")))
}

func TestSweepReporter(t *testing.T) {
	var reporter optimisation.Reporter = SweepReporter{Benchmark: "sweepReporterTest"}
	reporter.ReportSweep(1, 4.5)

	assert.Equal(t, 1.0, testutil.ToFloat64(sweepsCounter.WithLabelValues("sweepReporterTest")))
	assert.Equal(t, 4.5, testutil.ToFloat64(currentObjectiveGauge.WithLabelValues("sweepReporterTest")))
}
