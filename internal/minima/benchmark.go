package minima

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v2"

	"github.com/minimaproject/minima/internal/common/minimaerrors"
	"github.com/minimaproject/minima/internal/common/optimisation"
	"github.com/minimaproject/minima/internal/common/optimisation/descent"
	"github.com/minimaproject/minima/internal/common/optimisation/funcs"
	"github.com/minimaproject/minima/internal/common/optimisation/iqn"
	"github.com/minimaproject/minima/internal/common/optimisation/nesterov"
	"github.com/minimaproject/minima/internal/common/optimisation/sgd"
)

// Benchmark describes a single optimisation run: the problem to generate, the
// optimiser to run on it, and the stopping status the run must reach.
type Benchmark struct {
	// Name identifies the benchmark in output and metrics.
	Name string `yaml:"name"`
	// Seed of the random source used to generate the problem and the starting
	// point. Runs with the same seed are reproducible. 0 draws a seed from
	// the application's random source.
	Seed int64 `yaml:"seed"`
	// Dimension of the iterate.
	Dimension int `yaml:"dimension"`
	// Retries is the number of times a diverged run is restarted from a fresh
	// starting point with halved step sizes before the benchmark is abandoned.
	Retries uint `yaml:"retries"`
	// WantStatus is the stopping status the run must finish with for the
	// benchmark to count as a success. Defaults to converged.
	WantStatus string        `yaml:"wantStatus"`
	Problem    ProblemSpec   `yaml:"problem"`
	Optimiser  OptimiserSpec `yaml:"optimiser"`
}

// ProblemSpec selects and parameterises one of the standard objectives.
type ProblemSpec struct {
	// Kind of objective to generate; one of the registered problem kinds.
	Kind string `yaml:"kind"`
	// NumFunctions is the number of component functions of generated problems.
	NumFunctions int `yaml:"numFunctions"`
	// Noise is the standard deviation of the target noise of least squares
	// problems.
	Noise float64 `yaml:"noise"`
	// Lambda is the regularisation strength of logistic regression problems.
	Lambda float64 `yaml:"lambda"`
}

// OptimiserSpec selects and parameterises the optimiser of a benchmark.
type OptimiserSpec struct {
	// Kind of optimiser to run; one of the registered optimiser kinds.
	Kind string `yaml:"kind"`
	// StepSize damps the Newton step of the iqn optimiser.
	StepSize float64 `yaml:"stepSize"`
	// MaxIterations is the sweep budget.
	MaxIterations int `yaml:"maxIterations"`
	// Tolerance stops a run once the mean objective falls below it.
	Tolerance float64 `yaml:"tolerance"`
	// Parallelism bounds the goroutines used to evaluate the objective.
	Parallelism int `yaml:"parallelism"`
	// Eta is the learning rate of the sgd and nesterov optimisers.
	Eta float64 `yaml:"eta"`
	// Rho is the momentum of the nesterov optimiser.
	Rho float64 `yaml:"rho"`
	// Shuffle makes the sgd and nesterov optimisers visit the components in a
	// fresh random order each sweep.
	Shuffle bool `yaml:"shuffle"`
}

// BenchmarkFromFile loads and validates a benchmark from a YAML file.
func BenchmarkFromFile(path string) (*Benchmark, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	benchmark := &Benchmark{}
	if err := yaml.Unmarshal(content, benchmark); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := benchmark.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid benchmark file %s", path)
	}
	return benchmark, nil
}

func (b *Benchmark) Validate() error {
	var result *multierror.Error
	if b.Name == "" {
		result = multierror.Append(result, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "name",
			Value:   b.Name,
			Message: "not provided",
		}))
	}
	if b.Dimension < 1 {
		result = multierror.Append(result, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "dimension",
			Value:   b.Dimension,
			Message: "must be positive",
		}))
	}
	if b.WantStatus != "" {
		if _, err := optimisation.ParseStatus(b.WantStatus); err != nil {
			result = multierror.Append(result, err)
		}
	}
	result = multierror.Append(result, b.Problem.Validate(), b.Optimiser.Validate())
	return result.ErrorOrNil()
}

// wantStatus returns the stopping status the benchmark expects, defaulting
// to converged.
func (b *Benchmark) wantStatus() optimisation.Status {
	if b.WantStatus == "" {
		return optimisation.StatusConverged
	}
	status, err := optimisation.ParseStatus(b.WantStatus)
	if err != nil {
		return optimisation.StatusUnknown
	}
	return status
}

func (spec *ProblemSpec) Validate() error {
	var result *multierror.Error
	if _, ok := problemKinds[spec.Kind]; !ok {
		result = multierror.Append(result, errors.WithStack(&minimaerrors.ErrNotFound{
			Type:    "problem",
			Value:   spec.Kind,
			Message: fmt.Sprintf("available kinds: %s", strings.Join(sortedKinds(problemKinds), ", ")),
		}))
	}
	if spec.Noise < 0 {
		result = multierror.Append(result, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "noise",
			Value:   spec.Noise,
			Message: "outside allowed range [0, Inf)",
		}))
	}
	if spec.Lambda < 0 {
		result = multierror.Append(result, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "lambda",
			Value:   spec.Lambda,
			Message: "outside allowed range [0, Inf)",
		}))
	}
	return result.ErrorOrNil()
}

func (spec *OptimiserSpec) Validate() error {
	if _, ok := optimiserKinds[spec.Kind]; !ok {
		return errors.WithStack(&minimaerrors.ErrNotFound{
			Type:    "optimiser",
			Value:   spec.Kind,
			Message: fmt.Sprintf("available kinds: %s", strings.Join(sortedKinds(optimiserKinds), ", ")),
		})
	}
	return nil
}

// ProblemConstructor instantiates an objective from its spec.
type ProblemConstructor func(spec *ProblemSpec, dimension int, random *rand.Rand) (optimisation.FiniteSumObjective, error)

// OptimiserConstructor instantiates an optimiser from its spec.
type OptimiserConstructor func(spec *OptimiserSpec, random *rand.Rand, reporter optimisation.Reporter) (optimisation.FiniteSumOptimiser, error)

// RegisterProblemKind makes newFunc available to benchmarks under the given
// kind, e.g., to run suites over objectives defined outside this package.
func RegisterProblemKind(kind string, newFunc ProblemConstructor) error {
	if _, ok := problemKinds[kind]; ok {
		return errors.WithStack(&minimaerrors.ErrAlreadyExists{
			Type:  "problem",
			Value: kind,
		})
	}
	problemKinds[kind] = newFunc
	return nil
}

// RegisterOptimiserKind makes newFunc available to benchmarks under the given
// kind.
func RegisterOptimiserKind(kind string, newFunc OptimiserConstructor) error {
	if _, ok := optimiserKinds[kind]; ok {
		return errors.WithStack(&minimaerrors.ErrAlreadyExists{
			Type:  "optimiser",
			Value: kind,
		})
	}
	optimiserKinds[kind] = newFunc
	return nil
}

var problemKinds = map[string]ProblemConstructor{
	"quadratic": func(spec *ProblemSpec, dimension int, random *rand.Rand) (optimisation.FiniteSumObjective, error) {
		f, err := funcs.NewRandomQuadraticSum(spec.NumFunctions, dimension, random)
		if err != nil {
			return nil, err
		}
		return f, nil
	},
	"parabolaPair": func(spec *ProblemSpec, dimension int, random *rand.Rand) (optimisation.FiniteSumObjective, error) {
		if dimension != 1 {
			return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
				Name:    "dimension",
				Value:   dimension,
				Message: "the parabola pair is one-dimensional",
			})
		}
		return funcs.NewParabolaPair(), nil
	},
	"leastSquares": func(spec *ProblemSpec, dimension int, random *rand.Rand) (optimisation.FiniteSumObjective, error) {
		f, _, err := funcs.NewRandomLeastSquares(spec.NumFunctions, dimension, spec.Noise, random)
		if err != nil {
			return nil, err
		}
		return f, nil
	},
	"logisticRegression": func(spec *ProblemSpec, dimension int, random *rand.Rand) (optimisation.FiniteSumObjective, error) {
		f, err := funcs.NewRandomLogisticRegression(spec.NumFunctions, dimension, spec.Lambda, random)
		if err != nil {
			return nil, err
		}
		return f, nil
	},
	"divergent": func(spec *ProblemSpec, dimension int, random *rand.Rand) (optimisation.FiniteSumObjective, error) {
		f, err := funcs.NewDivergent(spec.NumFunctions)
		if err != nil {
			return nil, err
		}
		return f, nil
	},
}

var optimiserKinds = map[string]OptimiserConstructor{
	"iqn": func(spec *OptimiserSpec, random *rand.Rand, reporter optimisation.Reporter) (optimisation.FiniteSumOptimiser, error) {
		o, err := iqn.New(iqn.Config{
			StepSize:      spec.StepSize,
			MaxIterations: spec.MaxIterations,
			Tolerance:     spec.Tolerance,
			Parallelism:   spec.Parallelism,
			Rand:          random,
			Reporter:      reporter,
		})
		if err != nil {
			return nil, err
		}
		return o, nil
	},
	"sgd": func(spec *OptimiserSpec, random *rand.Rand, reporter optimisation.Reporter) (optimisation.FiniteSumOptimiser, error) {
		rule, err := descent.New(spec.Eta)
		if err != nil {
			return nil, err
		}
		o, err := sgd.New(sgd.Config{
			Optimiser:     rule,
			MaxIterations: spec.MaxIterations,
			Tolerance:     spec.Tolerance,
			Shuffle:       spec.Shuffle,
			Rand:          random,
			Parallelism:   spec.Parallelism,
			Reporter:      reporter,
		})
		if err != nil {
			return nil, err
		}
		return o, nil
	},
	"nesterov": func(spec *OptimiserSpec, random *rand.Rand, reporter optimisation.Reporter) (optimisation.FiniteSumOptimiser, error) {
		rule, err := nesterov.New(spec.Eta, spec.Rho)
		if err != nil {
			return nil, err
		}
		o, err := sgd.New(sgd.Config{
			Optimiser:     rule,
			MaxIterations: spec.MaxIterations,
			Tolerance:     spec.Tolerance,
			Shuffle:       spec.Shuffle,
			Rand:          random,
			Parallelism:   spec.Parallelism,
			Reporter:      reporter,
		})
		if err != nil {
			return nil, err
		}
		return o, nil
	},
}

// newProblem instantiates the objective a benchmark asks for.
func newProblem(spec *ProblemSpec, dimension int, random *rand.Rand) (optimisation.FiniteSumObjective, error) {
	newFunc, ok := problemKinds[spec.Kind]
	if !ok {
		return nil, errors.WithStack(&minimaerrors.ErrNotFound{
			Type:    "problem",
			Value:   spec.Kind,
			Message: fmt.Sprintf("available kinds: %s", strings.Join(sortedKinds(problemKinds), ", ")),
		})
	}
	return newFunc(spec, dimension, random)
}

// newOptimiser instantiates the optimiser a benchmark asks for.
func newOptimiser(spec *OptimiserSpec, random *rand.Rand, reporter optimisation.Reporter) (optimisation.FiniteSumOptimiser, error) {
	newFunc, ok := optimiserKinds[spec.Kind]
	if !ok {
		return nil, errors.WithStack(&minimaerrors.ErrNotFound{
			Type:    "optimiser",
			Value:   spec.Kind,
			Message: fmt.Sprintf("available kinds: %s", strings.Join(sortedKinds(optimiserKinds), ", ")),
		})
	}
	return newFunc(spec, random, reporter)
}

func sortedKinds[V any](kinds map[string]V) []string {
	names := maps.Keys(kinds)
	sort.Strings(names)
	return names
}
