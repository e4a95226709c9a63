// Package iqn implements the incremental Quasi-Newton method of Mokhtari,
// Eisen, and Ribeiro; see https://arxiv.org/abs/1702.00709 for details.
//
// The method minimises a finite sum f(x) = (1/m) sum_i f_i(x) by visiting the
// components cyclically. For every component it remembers the point and
// gradient of the last visit together with a BFGS approximation of the
// component's Hessian, and it maintains the averages of those tables
// incrementally. Each visit recomputes the iterate from the aggregated
// quadratic model, so a single pass over the components applies m Newton-type
// steps at the cost of one gradient evaluation per component.
package iqn

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/minimaproject/minima/internal/common/linalg"
	"github.com/minimaproject/minima/internal/common/minimaerrors"
	"github.com/minimaproject/minima/internal/common/optimisation"
)

// Config holds the parameters of an IQN optimiser.
type Config struct {
	// StepSize damps the Newton step: each visit moves the iterate to
	// stepSize*z + (1-stepSize)*x, where z minimises the aggregated quadratic
	// model. Must be in (0, 1]; 1 recovers the undamped Newton step.
	StepSize float64
	// MaxIterations is the number of complete sweeps over the component
	// functions. 0 means no optimisation is performed: Optimize evaluates the
	// objective at the supplied iterate once and returns it.
	MaxIterations int
	// Tolerance stops the run once the mean objective falls below it. Must be
	// positive and finite.
	Tolerance float64
	// Parallelism bounds the number of goroutines used to initialise the
	// component tables and to evaluate the mean objective. Values below 2
	// evaluate sequentially. Visits are inherently sequential and are not
	// affected.
	Parallelism int
	// Rand is the source the initial table point is drawn from. A source
	// seeded with the current time is used if nil.
	Rand *rand.Rand
	// InitialPoint seeds the component tables instead of a random draw. Its
	// length must match the iterate passed to Optimize. The tables record no
	// progress while the iterate equals the table point exactly, so the
	// iterate should differ from it.
	InitialPoint *mat.VecDense
	// Reporter observes per-sweep progress. Defaults to NullReporter.
	Reporter optimisation.Reporter
}

// NewDefaultConfig returns the configuration used by the reference
// implementation of the method: a conservative step size with a large sweep
// budget.
func NewDefaultConfig() Config {
	return Config{
		StepSize:      0.01,
		MaxIterations: 500000,
		Tolerance:     1e-5,
	}
}

// IQN is an incremental Quasi-Newton optimiser for finite-sum objectives.
// All per-run state is local to Optimize, so an IQN can be reused for
// sequential runs; concurrent runs must use separate instances since they
// would share the random source.
type IQN struct {
	stepSize      float64
	maxIterations int
	tolerance     float64
	parallelism   int
	random        *rand.Rand
	initialPoint  *mat.VecDense
	reporter      optimisation.Reporter
}

func New(config Config) (*IQN, error) {
	if !(config.StepSize > 0 && config.StepSize <= 1) {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "stepSize",
			Value:   config.StepSize,
			Message: "outside allowed range (0, 1]",
		})
	}
	if config.MaxIterations < 0 {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "maxIterations",
			Value:   config.MaxIterations,
			Message: "outside allowed range [0, Inf)",
		})
	}
	if !(config.Tolerance > 0) || math.IsInf(config.Tolerance, 1) {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "tolerance",
			Value:   config.Tolerance,
			Message: "must be positive and finite",
		})
	}
	if config.Parallelism < 0 {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "parallelism",
			Value:   config.Parallelism,
			Message: "outside allowed range [0, Inf)",
		})
	}
	random := config.Rand
	if random == nil {
		random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	reporter := config.Reporter
	if reporter == nil {
		reporter = optimisation.NullReporter{}
	}
	return &IQN{
		stepSize:      config.StepSize,
		maxIterations: config.MaxIterations,
		tolerance:     config.Tolerance,
		parallelism:   config.Parallelism,
		random:        random,
		initialPoint:  config.InitialPoint,
		reporter:      reporter,
	}, nil
}

func MustNew(config Config) *IQN {
	opt, err := New(config)
	if err != nil {
		panic(err)
	}
	return opt
}

// Optimize minimises f, overwriting iterate in place with the final point.
// The run stops once the mean objective falls below the configured tolerance,
// becomes NaN or infinite, or the sweep budget is exhausted; the Result's
// Status reports which. Divergence and an exhausted budget are outcomes, not
// errors: the returned error is reserved for contract violations, a singular
// aggregate model, and context cancellation.
//
// Cancellation is only honoured between sweeps, so the aggregate state is
// never abandoned half-updated. The Result's Objective is NaN if the run
// ended before the first sweep completed.
func (o *IQN) Optimize(ctx context.Context, f optimisation.FiniteSumObjective, iterate *mat.VecDense) (optimisation.Result, error) {
	result := optimisation.Result{Objective: math.NaN()}

	m := f.NumFunctions()
	if m < 1 {
		return result, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "f",
			Value:   m,
			Message: "the objective must have at least one component function",
		})
	}
	if iterate == nil || iterate.Len() == 0 {
		return result, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "iterate",
			Value:   iterate,
			Message: "a non-empty iterate is required",
		})
	}
	if o.initialPoint != nil && o.initialPoint.Len() != iterate.Len() {
		return result, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "initialPoint",
			Value:   o.initialPoint.Len(),
			Message: "must have the same length as the iterate",
		})
	}
	if err := ctx.Err(); err != nil {
		result.Status = optimisation.StatusCancelled
		return result, errors.WithStack(err)
	}

	if o.maxIterations == 0 {
		result.Objective = optimisation.MeanObjective(f, iterate, o.parallelism)
		result.Summary.FunctionEvaluations = m
		result.Status = optimisation.StatusIterationLimit
		return result, nil
	}

	x0 := o.initialPoint
	if x0 == nil {
		x0 = linalg.RandomNormalVecDense(iterate.Len(), o.random)
	}
	r := newRun(f, iterate, &result.Summary)
	r.init(x0, o.parallelism)

	for sweep := 1; sweep <= o.maxIterations; sweep++ {
		if err := ctx.Err(); err != nil {
			result.Status = optimisation.StatusCancelled
			return result, errors.WithStack(err)
		}

		for j := 0; j < m; j++ {
			if err := o.visit(r, (j+1)%m); err != nil {
				return result, err
			}
		}

		result.Objective = optimisation.MeanObjective(f, iterate, o.parallelism)
		result.Summary.FunctionEvaluations += m
		result.Sweeps = sweep
		o.reporter.ReportSweep(sweep, result.Objective)

		if math.IsNaN(result.Objective) || math.IsInf(result.Objective, 0) {
			result.Status = optimisation.StatusDiverged
			return result, nil
		}
		if result.Objective < o.tolerance {
			result.Status = optimisation.StatusConverged
			return result, nil
		}
	}

	result.Status = optimisation.StatusIterationLimit
	return result, nil
}
