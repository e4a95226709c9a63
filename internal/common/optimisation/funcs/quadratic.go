// Package funcs contains standard finite-sum objectives used to exercise and
// benchmark the optimisers: quadratic sums, linear least squares, regularised
// logistic regression, and a deliberately divergent objective.
package funcs

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/minimaproject/minima/internal/common/linalg"
	"github.com/minimaproject/minima/internal/common/minimaerrors"
)

// QuadraticSum is a finite sum with components f_i(x) = 1/2 (x-c_i)' A_i (x-c_i)
// for symmetric positive definite A_i. The mean objective is a convex quadratic.
type QuadraticSum struct {
	as []*mat.SymDense
	cs []*mat.VecDense
}

func NewQuadraticSum(as []*mat.SymDense, cs []*mat.VecDense) (*QuadraticSum, error) {
	if len(as) == 0 {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "as",
			Value:   len(as),
			Message: "at least one component is required",
		})
	}
	if len(as) != len(cs) {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "cs",
			Value:   len(cs),
			Message: "must contain one centre per component matrix",
		})
	}
	n := cs[0].Len()
	for i := range as {
		if as[i].SymmetricDim() != n || cs[i].Len() != n {
			return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
				Name:    "as",
				Value:   i,
				Message: "all components must have the same dimension",
			})
		}
	}
	return &QuadraticSum{as: as, cs: cs}, nil
}

// NewParabolaPair returns the two-component sum of (x-1)^2 and (x+1)^2 in one
// dimension. The mean objective is x^2 + 1, with its minimiser at zero.
func NewParabolaPair() *QuadraticSum {
	as := []*mat.SymDense{
		mat.NewSymDense(1, []float64{2}),
		mat.NewSymDense(1, []float64{2}),
	}
	cs := []*mat.VecDense{
		mat.NewVecDense(1, []float64{1}),
		mat.NewVecDense(1, []float64{-1}),
	}
	return &QuadraticSum{as: as, cs: cs}
}

// NewRandomQuadraticSum returns a sum of m diagonal quadratics in n dimensions
// with eigenvalues drawn uniformly from [0.5, 1.5] and centres drawn from
// standard normals.
func NewRandomQuadraticSum(m, n int, random *rand.Rand) (*QuadraticSum, error) {
	if m < 1 {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "m",
			Value:   m,
			Message: "at least one component is required",
		})
	}
	if n < 1 {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "n",
			Value:   n,
			Message: "dimension must be positive",
		})
	}
	as := make([]*mat.SymDense, m)
	cs := make([]*mat.VecDense, m)
	for i := 0; i < m; i++ {
		a := mat.NewSymDense(n, nil)
		for k := 0; k < n; k++ {
			a.SetSym(k, k, 0.5+random.Float64())
		}
		as[i] = a
		cs[i] = linalg.RandomNormalVecDense(n, random)
	}
	return &QuadraticSum{as: as, cs: cs}, nil
}

func (f *QuadraticSum) NumFunctions() int {
	return len(f.as)
}

func (f *QuadraticSum) Evaluate(i int, x mat.Vector) float64 {
	n := f.cs[i].Len()
	d := mat.NewVecDense(n, nil)
	d.SubVec(x, f.cs[i])
	ad := mat.NewVecDense(n, nil)
	ad.MulVec(f.as[i], d)
	return 0.5 * mat.Dot(d, ad)
}

func (f *QuadraticSum) Gradient(dst *mat.VecDense, i int, x mat.Vector) {
	d := mat.NewVecDense(f.cs[i].Len(), nil)
	d.SubVec(x, f.cs[i])
	dst.MulVec(f.as[i], d)
}

// Minimiser returns the exact minimiser of the mean objective and the mean
// objective value at it, by solving (sum_i A_i) x = sum_i A_i c_i.
func (f *QuadraticSum) Minimiser() (*mat.VecDense, float64, error) {
	n := f.cs[0].Len()
	sum := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	ac := mat.NewVecDense(n, nil)
	for i := range f.as {
		sum.Add(sum, f.as[i])
		ac.MulVec(f.as[i], f.cs[i])
		rhs.AddVec(rhs, ac)
	}
	minimiser := mat.NewVecDense(n, nil)
	if err := minimiser.SolveVec(sum, rhs); err != nil {
		return nil, 0, errors.WithStack(err)
	}
	objective := 0.0
	for i := range f.as {
		objective += f.Evaluate(i, minimiser)
	}
	return minimiser, objective / float64(len(f.as)), nil
}
