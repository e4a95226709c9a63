package descent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/minimaproject/minima/internal/common/minimaerrors"
	minimaslices "github.com/minimaproject/minima/internal/common/slices"
)

func TestDescent(t *testing.T) {
	tests := map[string]struct {
		eta       float64
		p0        *mat.VecDense
		gs        []*mat.VecDense
		expecteds []*mat.VecDense
	}{
		"eta is zero": {
			eta: 0.0,
			p0:  mat.NewVecDense(2, minimaslices.Ones[float64](2)),
			gs: []*mat.VecDense{
				mat.NewVecDense(2, minimaslices.Ones[float64](2)),
				mat.NewVecDense(2, minimaslices.Ones[float64](2)),
			},
			expecteds: []*mat.VecDense{
				mat.NewVecDense(2, minimaslices.Ones[float64](2)),
				mat.NewVecDense(2, minimaslices.Ones[float64](2)),
			},
		},
		"eta non-zero": {
			eta: 2.0,
			p0:  mat.NewVecDense(2, minimaslices.Zeros[float64](2)),
			gs: []*mat.VecDense{
				mat.NewVecDense(2, minimaslices.Ones[float64](2)),
				mat.NewVecDense(2, minimaslices.Ones[float64](2)),
			},
			expecteds: []*mat.VecDense{
				mat.NewVecDense(2, minimaslices.Fill(-2.0, 2)),
				mat.NewVecDense(2, minimaslices.Fill(-4.0, 2)),
			},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			opt := MustNew(tc.eta)
			p := tc.p0
			for i, g := range tc.gs {
				opt.Extend(g.Len())
				rv := opt.Update(p, p, g)
				assert.Equal(t, p, rv)
				assert.Equal(t, tc.expecteds[i], p)
			}
		})
	}
}

func TestNewValidatesEta(t *testing.T) {
	_, err := New(-0.1)
	var invalidArgument *minimaerrors.ErrInvalidArgument
	assert.ErrorAs(t, err, &invalidArgument)
	assert.Equal(t, "eta", invalidArgument.Name)

	assert.Panics(t, func() { MustNew(-0.1) })
}
