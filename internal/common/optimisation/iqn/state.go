package iqn

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/minimaproject/minima/internal/common/linalg"
	"github.com/minimaproject/minima/internal/common/optimisation"
	"github.com/minimaproject/minima/internal/common/slices"
)

// Machine epsilon, used to scale the curvature-condition tests.
var epsilon = math.Nextafter(1, 2) - 1

// componentState is the memory kept for one component function: the point t
// of the component's most recent visit, the gradient y at that point, and a
// BFGS-style approximation q of the component's Hessian.
type componentState struct {
	t *mat.VecDense
	y *mat.VecDense
	q *mat.SymDense
}

// aggregateState caches the averages of the component table:
// b = (1/m) sum_i q_i, u = (1/m) sum_i q_i*t_i and g = (1/m) sum_i y_i.
// Each visit applies its table deltas here in the same step; the averages are
// never recomputed from the table after initialisation, so the two
// representations cannot drift apart.
type aggregateState struct {
	b *mat.SymDense
	u *mat.VecDense
	g *mat.VecDense
}

// run is the state of a single Optimize call. The iterate x aliases the
// caller's vector and is advanced in place after each productive visit.
type run struct {
	f optimisation.FiniteSumObjective
	x *mat.VecDense
	m int

	table []componentState
	agg   aggregateState

	// Scratch vectors reused across visits.
	gradient *mat.VecDense // gradient of the visited component at x
	s        *mat.VecDense // x - t, the displacement since the last visit
	yy       *mat.VecDense // gradient - y, the matching gradient displacement
	qs       *mat.VecDense // q*s
	qt       *mat.VecDense // q*t before the visit's update
	qx       *mat.VecDense // q*x after the visit's update
	rhs      *mat.VecDense // u - g
	z        *mat.VecDense // solution of b*z = u - g

	summary *optimisation.Summary
}

func newRun(f optimisation.FiniteSumObjective, iterate *mat.VecDense, summary *optimisation.Summary) *run {
	n := iterate.Len()
	return &run{
		f:        f,
		x:        iterate,
		m:        f.NumFunctions(),
		table:    make([]componentState, f.NumFunctions()),
		gradient: mat.NewVecDense(n, nil),
		s:        mat.NewVecDense(n, nil),
		yy:       mat.NewVecDense(n, nil),
		qs:       mat.NewVecDense(n, nil),
		qt:       mat.NewVecDense(n, nil),
		qx:       mat.NewVecDense(n, nil),
		rhs:      mat.NewVecDense(n, nil),
		z:        mat.NewVecDense(n, nil),
		summary:  summary,
	}
}

// init seeds the table of every component at x0 and builds the aggregates
// this implies: all curvature models start as the identity, so b is the
// identity and u equals x0. Gradients are evaluated with up to parallelism
// workers and reduced in index order, which keeps the aggregate gradient
// bitwise independent of the parallelism.
func (r *run) init(x0 *mat.VecDense, parallelism int) {
	n := x0.Len()
	for i := range r.table {
		r.table[i] = componentState{
			t: mat.VecDenseCopyOf(x0),
			y: mat.NewVecDense(n, nil),
			q: linalg.IdentitySymDense(n),
		}
	}

	if parallelism <= 1 {
		for i := range r.table {
			r.f.Gradient(r.table[i].y, i, x0)
		}
	} else {
		indices := make([]int, r.m)
		for i := range indices {
			indices[i] = i
		}
		g := new(errgroup.Group)
		for _, batch := range slices.Partition(indices, parallelism) {
			batch := batch
			g.Go(func() error {
				for _, i := range batch {
					r.f.Gradient(r.table[i].y, i, x0)
				}
				return nil
			})
		}
		// Gradient workers never return errors.
		_ = g.Wait()
	}
	r.summary.GradientEvaluations += r.m

	r.agg = aggregateState{
		b: linalg.IdentitySymDense(n),
		u: mat.VecDenseCopyOf(x0),
		g: mat.NewVecDense(n, nil),
	}
	for i := range r.table {
		r.agg.g.AddScaledVec(r.agg.g, 1/float64(r.m), r.table[i].y)
	}
}

// visit processes component it. If the iterate has not moved since the
// component's last visit the secant pair is degenerate and the visit is a
// no-op. Otherwise the component's gradient is refreshed, its curvature model
// receives a rank-two secant update, the deltas are folded into the
// aggregates, and the iterate is recomputed from the aggregated model.
func (o *IQN) visit(r *run, it int) error {
	r.summary.Visits++
	state := &r.table[it]

	r.s.SubVec(r.x, state.t)
	if mat.Norm(r.s, 2) == 0 {
		r.summary.NoOpVisits++
		return nil
	}

	r.f.Gradient(r.gradient, it, r.x)
	r.summary.GradientEvaluations++
	r.yy.SubVec(r.gradient, state.y)

	// qt feeds the aggregate delta of u below; it must be taken before q is
	// updated.
	r.qt.MulVec(state.q, state.t)

	// The rank-two update divides by both secant scalars. Skip it when either
	// is not safely positive, leaving q and b unchanged for this visit.
	yyDotS := mat.Dot(r.yy, r.s)
	r.qs.MulVec(state.q, r.s)
	sQs := mat.Dot(r.s, r.qs)
	if yyDotS > epsilon*mat.Dot(r.yy, r.yy) && sQs > epsilon*mat.Dot(r.s, r.s) {
		// q += yy*yy'/(yy'*s) - (q*s)(q*s)'/(s'*q*s); b receives the same two
		// rank-one terms scaled by 1/m.
		state.q.SymRankOne(state.q, 1/yyDotS, r.yy)
		state.q.SymRankOne(state.q, -1/sQs, r.qs)
		r.agg.b.SymRankOne(r.agg.b, 1/(float64(r.m)*yyDotS), r.yy)
		r.agg.b.SymRankOne(r.agg.b, -1/(float64(r.m)*sQs), r.qs)
	} else {
		r.summary.CurvatureSkips++
	}

	// u += (q_new*x - q_old*t)/m and g += (gradient - y)/m keep the
	// aggregates equal to the averages of the updated table.
	r.qx.MulVec(state.q, r.x)
	r.agg.u.AddScaledVec(r.agg.u, 1/float64(r.m), r.qx)
	r.agg.u.AddScaledVec(r.agg.u, -1/float64(r.m), r.qt)
	r.agg.g.AddScaledVec(r.agg.g, 1/float64(r.m), r.gradient)
	r.agg.g.AddScaledVec(r.agg.g, -1/float64(r.m), state.y)

	state.y.CopyVec(r.gradient)
	state.t.CopyVec(r.x)

	// Damped Newton step against the aggregated quadratic model.
	if err := r.solveNewton(); err != nil {
		return err
	}
	r.x.ScaleVec(1-o.stepSize, r.x)
	r.x.AddScaledVec(r.x, o.stepSize, r.z)
	return nil
}

// solveNewton computes z such that b*z = u - g, the minimiser of the
// aggregated quadratic model. b is solved rather than inverted: Cholesky is
// attempted first, since b is positive definite as long as the curvature
// conditions have held, with a dense LU solve as the fallback. An
// ill-conditioning warning from the fallback is tolerated; a singular b
// aborts the run.
func (r *run) solveNewton() error {
	r.rhs.SubVec(r.agg.u, r.agg.g)
	var chol mat.Cholesky
	if chol.Factorize(r.agg.b) {
		if err := chol.SolveVecTo(r.z, r.rhs); err == nil {
			return nil
		}
	}
	var lu mat.LU
	lu.Factorize(r.agg.b)
	if err := lu.SolveVecTo(r.z, false, r.rhs); err != nil {
		if cond, ok := err.(mat.Condition); !ok || math.IsInf(float64(cond), 1) {
			return errors.Wrap(err, "aggregate curvature matrix is singular")
		}
	}
	return nil
}
