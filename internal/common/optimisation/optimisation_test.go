package optimisation

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/minimaproject/minima/internal/common/minimaerrors"
)

// reciprocalSum has components f_i(x) = 1/(i+1), chosen so that summing the
// values in a different order would change the floating-point result.
type reciprocalSum struct {
	m int
}

func (f reciprocalSum) NumFunctions() int { return f.m }

func (f reciprocalSum) Evaluate(i int, x mat.Vector) float64 { return 1 / float64(i+1) }

func (f reciprocalSum) Gradient(dst *mat.VecDense, i int, x mat.Vector) { dst.Zero() }

func TestMeanObjective(t *testing.T) {
	f := reciprocalSum{m: 1000}
	x := mat.NewVecDense(1, []float64{0})

	sum := 0.0
	for i := 0; i < f.m; i++ {
		sum += f.Evaluate(i, x)
	}
	expected := sum / float64(f.m)

	for _, parallelism := range []int{0, 1, 2, 3, 8, 32} {
		assert.Equal(t, expected, MeanObjective(f, x, parallelism), "parallelism %d", parallelism)
	}
}

func TestStatusString(t *testing.T) {
	tests := map[string]Status{
		"converged":      StatusConverged,
		"diverged":       StatusDiverged,
		"iterationLimit": StatusIterationLimit,
		"cancelled":      StatusCancelled,
		"unknown(0)":     StatusUnknown,
	}
	for expected, status := range tests {
		assert.Equal(t, expected, status.String())
	}
}

func TestParseStatus(t *testing.T) {
	for _, status := range []Status{StatusConverged, StatusDiverged, StatusIterationLimit, StatusCancelled} {
		parsed, err := ParseStatus(status.String())
		assert.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := ParseStatus("unknowable")
	var notFound *minimaerrors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "unknowable", notFound.Value)
}

func TestReporterFunc(t *testing.T) {
	var sweeps []int
	var objectives []float64
	var reporter Reporter = ReporterFunc(func(sweep int, objective float64) {
		sweeps = append(sweeps, sweep)
		objectives = append(objectives, objective)
	})

	reporter.ReportSweep(1, 2.5)
	reporter.ReportSweep(2, 1.25)

	assert.Equal(t, []int{1, 2}, sweeps)
	assert.Equal(t, []float64{2.5, 1.25}, objectives)
}

func TestLogReporter(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	reporter := LogReporter{Entry: log.NewEntry(logger)}

	reporter.ReportSweep(3, 0.5)

	entry := hook.LastEntry()
	assert.NotNil(t, entry)
	assert.Equal(t, 3, entry.Data["sweep"])
	assert.Equal(t, 0.5, entry.Data["objective"])
}

func TestReporters(t *testing.T) {
	var first, second []int
	reporters := Reporters{
		ReporterFunc(func(sweep int, objective float64) { first = append(first, sweep) }),
		ReporterFunc(func(sweep int, objective float64) { second = append(second, sweep) }),
	}

	reporters.ReportSweep(1, 2.0)
	reporters.ReportSweep(2, 1.0)

	assert.Equal(t, []int{1, 2}, first)
	assert.Equal(t, []int{1, 2}, second)
}
