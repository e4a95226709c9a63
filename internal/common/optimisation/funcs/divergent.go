package funcs

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/minimaproject/minima/internal/common/minimaerrors"
)

// Divergent is a finite-sum objective whose gradients and values are
// non-finite. Any optimiser consuming it must detect the non-finite mean
// objective and stop; used to exercise divergence detection.
type Divergent struct {
	m int
}

func NewDivergent(m int) (*Divergent, error) {
	if m < 1 {
		return nil, errors.WithStack(&minimaerrors.ErrInvalidArgument{
			Name:    "m",
			Value:   m,
			Message: "at least one component is required",
		})
	}
	return &Divergent{m: m}, nil
}

func (f *Divergent) NumFunctions() int {
	return f.m
}

func (f *Divergent) Evaluate(i int, x mat.Vector) float64 {
	return math.Inf(1)
}

func (f *Divergent) Gradient(dst *mat.VecDense, i int, x mat.Vector) {
	for k := 0; k < dst.Len(); k++ {
		dst.SetVec(k, math.NaN())
	}
}
