package optimisation

import (
	log "github.com/sirupsen/logrus"
)

// Reporter observes the progress of an optimisation run. Implementations must
// be cheap; they are called once per sweep on the optimiser's goroutine.
type Reporter interface {
	// ReportSweep is called after each complete pass over the component
	// functions with the 1-based sweep number and the mean objective at the
	// current iterate.
	ReportSweep(sweep int, objective float64)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(sweep int, objective float64)

func (f ReporterFunc) ReportSweep(sweep int, objective float64) {
	f(sweep, objective)
}

// NullReporter is a Reporter that discards all reports.
type NullReporter struct{}

func (NullReporter) ReportSweep(int, float64) {}

// LogReporter logs per-sweep progress at debug level.
type LogReporter struct {
	// Entry to log through. The standard logger is used if nil.
	Entry *log.Entry
}

func (r LogReporter) ReportSweep(sweep int, objective float64) {
	entry := r.Entry
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	entry.WithField("sweep", sweep).WithField("objective", objective).Debug("sweep complete")
}

// Reporters broadcasts each report to all of its elements.
type Reporters []Reporter

func (rs Reporters) ReportSweep(sweep int, objective float64) {
	for _, r := range rs {
		r.ReportSweep(sweep, objective)
	}
}
