// Package optimisation contains the contracts shared by the optimisers in its
// subpackages: the update-rule interface implemented by the first-order methods,
// the finite-sum objective interface consumed by the incremental methods, and
// the result types describing a finished run.
package optimisation

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/minimaproject/minima/internal/common/slices"
)

// Optimiser represents a first-order optimisation algorithm.
type Optimiser interface {
	// Update the parameters using gradient and store the result in out.
	Update(out, parameters *mat.VecDense, gradient mat.Vector) *mat.VecDense
	// Extend the internal state of the optimiser to accommodate at least n parameters.
	Extend(n int)
}

// FiniteSumObjective is a differentiable function expressed as the mean of
// component functions f(x) = (1/m) sum_i f_i(x), e.g., an empirical risk with
// one component per training example.
//
// Implementations must be safe for concurrent calls to Evaluate and Gradient
// with distinct indices.
type FiniteSumObjective interface {
	// NumFunctions returns the number of component functions m.
	NumFunctions() int
	// Evaluate returns the value of the i-th component at x.
	Evaluate(i int, x mat.Vector) float64
	// Gradient computes the gradient of the i-th component at x and stores it in dst.
	Gradient(dst *mat.VecDense, i int, x mat.Vector)
}

// FiniteSumOptimiser minimises a finite-sum objective, overwriting the
// iterate in place with the final point.
type FiniteSumOptimiser interface {
	Optimize(ctx context.Context, f FiniteSumObjective, iterate *mat.VecDense) (Result, error)
}

// MeanObjective returns the mean of all component values of f at x.
//
// At most parallelism components are evaluated concurrently; parallelism <= 1
// evaluates serially. Values are reduced in index order, so the result is
// identical for any parallelism.
func MeanObjective(f FiniteSumObjective, x mat.Vector, parallelism int) float64 {
	m := f.NumFunctions()
	values := make([]float64, m)
	if parallelism <= 1 {
		for i := 0; i < m; i++ {
			values[i] = f.Evaluate(i, x)
		}
	} else {
		indices := make([]int, m)
		for i := range indices {
			indices[i] = i
		}
		g := new(errgroup.Group)
		for _, batch := range slices.Partition(indices, parallelism) {
			batch := batch
			g.Go(func() error {
				for _, i := range batch {
					values[i] = f.Evaluate(i, x)
				}
				return nil
			})
		}
		// Evaluation workers never return errors.
		_ = g.Wait()
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(m)
}
