package funcs

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/minimaproject/minima/internal/common/linalg"
	"github.com/minimaproject/minima/internal/common/minimaerrors"
)

// LeastSquares is the linear regression objective with components
// f_i(x) = 1/2 (a_i'x - b_i)^2, where a_i is the i-th row of the data matrix.
type LeastSquares struct {
	a *mat.Dense
	b *mat.VecDense
}

func NewLeastSquares(a *mat.Dense, b *mat.VecDense) (*LeastSquares, error) {
	m, n := a.Dims()
	if m == 0 || n == 0 {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "a",
			Value:   a,
			Message: "data matrix must be non-empty",
		})
	}
	if b.Len() != m {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "b",
			Value:   b.Len(),
			Message: "must contain one target per data row",
		})
	}
	return &LeastSquares{a: a, b: b}, nil
}

// NewRandomLeastSquares returns a least squares objective over m standard
// normal rows in n dimensions, with targets b_i = a_i'w + noise for a planted
// standard normal solution w, which is returned alongside the objective.
func NewRandomLeastSquares(m, n int, noise float64, random *rand.Rand) (*LeastSquares, *mat.VecDense, error) {
	if m < 1 {
		return nil, nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "m",
			Value:   m,
			Message: "at least one component is required",
		})
	}
	if n < 1 {
		return nil, nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "n",
			Value:   n,
			Message: "dimension must be positive",
		})
	}
	solution := linalg.RandomNormalVecDense(n, random)
	a := mat.NewDense(m, n, nil)
	b := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		row := linalg.RandomNormalVecDense(n, random)
		a.SetRow(i, row.RawVector().Data)
		b.SetVec(i, mat.Dot(row, solution)+noise*random.NormFloat64())
	}
	ls, err := NewLeastSquares(a, b)
	if err != nil {
		return nil, nil, err
	}
	return ls, solution, nil
}

func (f *LeastSquares) NumFunctions() int {
	m, _ := f.a.Dims()
	return m
}

func (f *LeastSquares) Evaluate(i int, x mat.Vector) float64 {
	r := mat.Dot(f.a.RowView(i), x) - f.b.AtVec(i)
	return 0.5 * r * r
}

func (f *LeastSquares) Gradient(dst *mat.VecDense, i int, x mat.Vector) {
	r := mat.Dot(f.a.RowView(i), x) - f.b.AtVec(i)
	dst.ScaleVec(r, f.a.RowView(i))
}
