// Package sgd implements stochastic gradient descent over finite-sum
// objectives. The update rule is pluggable: each visit evaluates one
// component gradient and hands it to the configured first-order optimiser,
// so plain descent and momentum methods share the same driver.
package sgd

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/minimaproject/minima/internal/common/minimaerrors"
	"github.com/minimaproject/minima/internal/common/optimisation"
)

// Config holds the parameters of an SGD run.
type Config struct {
	// Optimiser is the update rule applied to each component gradient.
	Optimiser optimisation.Optimiser
	// MaxIterations is the number of complete sweeps over the component
	// functions. 0 means no optimisation is performed: Optimize evaluates the
	// objective at the supplied iterate once and returns it.
	MaxIterations int
	// Tolerance stops the run once the mean objective falls below it. Must be
	// positive and finite.
	Tolerance float64
	// Shuffle visits the components in a fresh random order each sweep
	// instead of cyclically.
	Shuffle bool
	// Rand is the source used for shuffling. A source seeded with the current
	// time is used if nil.
	Rand *rand.Rand
	// Parallelism bounds the number of goroutines used to evaluate the mean
	// objective. Values below 2 evaluate sequentially.
	Parallelism int
	// Reporter observes per-sweep progress. Defaults to NullReporter.
	Reporter optimisation.Reporter
}

// SGD is a stochastic gradient descent driver for finite-sum objectives.
// The update rule it wraps may carry state of its own, so an SGD must not be
// shared between concurrent runs.
type SGD struct {
	optimiser     optimisation.Optimiser
	maxIterations int
	tolerance     float64
	shuffle       bool
	random        *rand.Rand
	parallelism   int
	reporter      optimisation.Reporter
}

func New(config Config) (*SGD, error) {
	if config.Optimiser == nil {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "optimiser",
			Value:   config.Optimiser,
			Message: "an update rule is required",
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
	return &SGD{
		optimiser:     config.Optimiser,
		maxIterations: config.MaxIterations,
		tolerance:     config.Tolerance,
		shuffle:       config.Shuffle,
		random:        random,
		parallelism:   config.Parallelism,
		reporter:      reporter,
	}, nil
}

func MustNew(config Config) *SGD {
	opt, err := New(config)
	if err != nil {
		panic(err)
	}
	return opt
}

// Optimize minimises f, overwriting iterate in place with the final point.
// The run stops once the mean objective falls below the configured tolerance,
// becomes NaN or infinite, or the sweep budget is exhausted; the Result's
// Status reports which. Cancellation is honoured between sweeps.
func (o *SGD) Optimize(ctx context.Context, f optimisation.FiniteSumObjective, iterate *mat.VecDense) (optimisation.Result, error) {
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

	o.optimiser.Extend(iterate.Len())
	gradient := mat.NewVecDense(iterate.Len(), nil)
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}

	for sweep := 1; sweep <= o.maxIterations; sweep++ {
		if err := ctx.Err(); err != nil {
			result.Status = optimisation.StatusCancelled
			return result, errors.WithStack(err)
		}

		if o.shuffle {
			o.random.Shuffle(m, func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}
		for _, i := range order {
			f.Gradient(gradient, i, iterate)
			result.Summary.GradientEvaluations++
			o.optimiser.Update(iterate, iterate, gradient)
			result.Summary.Visits++
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
