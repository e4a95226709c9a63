package funcs

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/minimaproject/minima/internal/common/linalg"
	"github.com/minimaproject/minima/internal/common/minimaerrors"
)

// LogisticRegression is the l2-regularised logistic regression objective with
// components f_i(x) = log(1+exp(-b_i a_i'x)) + (lambda/2) ||x||^2 for labels
// b_i in {-1, +1}.
type LogisticRegression struct {
	a      *mat.Dense
	b      []float64
	lambda float64
}

func NewLogisticRegression(a *mat.Dense, b []float64, lambda float64) (*LogisticRegression, error) {
	m, n := a.Dims()
	if m == 0 || n == 0 {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "a",
			Value:   a,
			Message: "data matrix must be non-empty",
		})
	}
	if len(b) != m {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "b",
			Value:   len(b),
			Message: "must contain one label per data row",
		})
	}
	for _, label := range b {
		if label != -1 && label != 1 {
			return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
				Name:    "b",
				Value:   label,
				Message: "labels must be -1 or +1",
			})
		}
	}
	if lambda < 0 {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "lambda",
			Value:   lambda,
			Message: "outside allowed range [0, Inf)",
		})
	}
	return &LogisticRegression{a: a, b: b, lambda: lambda}, nil
}

// NewRandomLogisticRegression returns a logistic regression objective over m
// standard normal rows in n dimensions, labelled by the sign of a_i'w for a
// planted standard normal weight vector w.
func NewRandomLogisticRegression(m, n int, lambda float64, random *rand.Rand) (*LogisticRegression, error) {
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
	weights := linalg.RandomNormalVecDense(n, random)
	a := mat.NewDense(m, n, nil)
	b := make([]float64, m)
	for i := 0; i < m; i++ {
		row := linalg.RandomNormalVecDense(n, random)
		a.SetRow(i, row.RawVector().Data)
		if mat.Dot(row, weights) >= 0 {
			b[i] = 1
		} else {
			b[i] = -1
		}
	}
	return NewLogisticRegression(a, b, lambda)
}

func (f *LogisticRegression) NumFunctions() int {
	m, _ := f.a.Dims()
	return m
}

func (f *LogisticRegression) Evaluate(i int, x mat.Vector) float64 {
	t := f.b[i] * mat.Dot(f.a.RowView(i), x)
	return logOnePlusExp(-t) + 0.5*f.lambda*mat.Dot(x, x)
}

func (f *LogisticRegression) Gradient(dst *mat.VecDense, i int, x mat.Vector) {
	t := f.b[i] * mat.Dot(f.a.RowView(i), x)
	dst.ScaleVec(-f.b[i]/(1+math.Exp(t)), f.a.RowView(i))
	dst.AddScaledVec(dst, f.lambda, x)
}

// logOnePlusExp returns log(1+exp(z)) without overflowing for large z.
func logOnePlusExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
