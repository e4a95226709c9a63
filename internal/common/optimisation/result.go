package optimisation

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/minimaproject/minima/internal/common/minimaerrors"
)

// Status indicates why an optimisation run stopped.
type Status int

const (
	StatusUnknown Status = iota
	// StatusConverged indicates the objective fell below the configured tolerance.
	StatusConverged
	// StatusDiverged indicates the objective became NaN or infinite.
	StatusDiverged
	// StatusIterationLimit indicates the run used up its sweep budget.
	StatusIterationLimit
	// StatusCancelled indicates the run was stopped by its context.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusDiverged:
		return "diverged"
	case StatusIterationLimit:
		return "iterationLimit"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "converged":
		return StatusConverged, nil
	case "diverged":
		return StatusDiverged, nil
	case "iterationLimit":
		return StatusIterationLimit, nil
	case "cancelled":
		return StatusCancelled, nil
	default:
		return StatusUnknown, errors.WithStack(&minimaerrors.ErrNotFound{
			Type:  "status",
			Value: s,
		})
	}
}

// Result is the outcome of an optimisation run.
type Result struct {
	// Objective is the mean objective at the final iterate. NaN or an infinity
	// if the run diverged.
	Objective float64
	Status    Status
	// Sweeps is the number of complete passes over the component functions.
	Sweeps  int
	Summary Summary
}

// Summary counts the work done during an optimisation run.
type Summary struct {
	// Visits is the number of component visits, including no-op visits.
	Visits int
	// NoOpVisits counts visits skipped because the iterate equalled the stored point.
	NoOpVisits int
	// CurvatureSkips counts visits that committed their secant pair but skipped
	// the rank-two update because the curvature condition failed.
	CurvatureSkips int
	// GradientEvaluations and FunctionEvaluations count calls into the objective.
	GradientEvaluations int
	FunctionEvaluations int
}
