package adapt2D

import (
	"math"
	"testing"

	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/space2D"
	"github.com/stretchr/testify/assert"
)

func refSolutionOn(t *testing.T, sp *space2D.Space, f space2D.ExactFn) (rs *space2D.Solution) {
	var err error
	sp.AssignDOFs()
	rm := sp.M.Copy()
	assert.NoError(t, rm.RefineAllElements())
	rsp := sp.Dup(rm)
	rsp.CopyOrders(sp, 1)
	rsp.AssignDOFs()
	rs, err = space2D.ProjectGlobal(rsp, f)
	assert.NoError(t, err)
	return
}

func TestCandidateGeneration(t *testing.T) {
	op := space2D.OrderPair{PX: 1, PY: 1}
	{ // the current state always leads the list
		for _, list := range []CandList{P_ISO, H_ISO, HP_ANISO} {
			cands := NewSelector(list, 1).genCandidates(mesh2D.Quad, op)
			assert.False(t, cands[0].HRef)
			assert.Equal(t, op, cands[0].Orders[0])
		}
	}
	{ // pure p lists never split, pure h lists never raise the order
		for _, c := range NewSelector(P_ANISO, 1).genCandidates(mesh2D.Quad, op) {
			assert.False(t, c.HRef)
		}
		for _, c := range NewSelector(H_ANISO, 1).genCandidates(mesh2D.Quad, op)[1:] {
			assert.True(t, c.HRef)
			assert.Equal(t, op, c.Orders[0])
		}
	}
	{ // the full list carries every family
		var hasIso, hasHorz, hasVert, hasAnisoP bool
		cands := NewSelector(HP_ANISO, 1).genCandidates(mesh2D.Quad, op)
		for _, c := range cands {
			hasIso = hasIso || (c.HRef && c.Mode == mesh2D.RefIso)
			hasHorz = hasHorz || (c.HRef && c.Mode == mesh2D.RefHorz)
			hasVert = hasVert || (c.HRef && c.Mode == mesh2D.RefVert)
			hasAnisoP = hasAnisoP ||
				(!c.HRef && c.Orders[0].PX != c.Orders[0].PY)
		}
		assert.True(t, hasIso)
		assert.True(t, hasHorz)
		assert.True(t, hasVert)
		assert.True(t, hasAnisoP)
		// no candidate repeats
		for i := range cands {
			for j := i + 1; j < len(cands); j++ {
				same := cands[i].HRef == cands[j].HRef &&
					cands[i].Mode == cands[j].Mode &&
					cands[i].NSons == cands[j].NSons &&
					cands[i].Orders == cands[j].Orders
				assert.False(t, same)
			}
		}
	}
	{ // triangles keep their orders isotropic
		for _, c := range NewSelector(HP_ANISO, 1).genCandidates(mesh2D.Tri, op) {
			assert.Equal(t, mesh2D.RefIso, c.Mode)
			for s := 0; s < max(c.NSons, 1); s++ {
				assert.Equal(t, c.Orders[s].PX, c.Orders[s].PY)
			}
		}
	}
	{ // orders saturate at the ceiling
		top := space2D.OrderPair{PX: space2D.MaxOrder, PY: space2D.MaxOrder}
		for _, c := range NewSelector(HP_ANISO, 1).genCandidates(mesh2D.Quad, top) {
			assert.LessOrEqual(t, c.Orders[0].PX, space2D.MaxOrder)
			assert.LessOrEqual(t, c.Orders[0].PY, space2D.MaxOrder)
		}
	}
	{ // label plumbing
		assert.Equal(t, HP_ANISO, NewCandList("hp_aniso"))
		assert.Equal(t, "HP_ANISO", HP_ANISO.Print())
		assert.Panics(t, func() { NewCandList("nope") })
		assert.Panics(t, func() { NewSelector(HP_ANISO, 0) })
	}
}

func TestSelectRefinement(t *testing.T) {
	{ // a quadratic on a bilinear element wants the order, not a split
		var (
			quadratic = func(x, y float64) (u, ux, uy float64) {
				return x*x + y*y, 2 * x, 2 * y
			}
			m  = mesh2D.NewUnitSquareQuads(1)
			sp = space2D.NewSpace(m, 1)
			rs = refSolutionOn(t, sp, quadratic)
		)
		best, ok := NewSelector(HP_ISO, 1.0).SelectRefinement(rs, 0,
			sp.GetElementOrder(0), H1Form)
		assert.True(t, ok)
		assert.False(t, best.HRef)
		assert.Equal(t, space2D.OrderPair{PX: 2, PY: 2}, best.Orders[0])
		assert.Greater(t, best.Score, 0.)
	}
	{ // an element that already resolves the function is left alone
		var (
			linear = func(x, y float64) (u, ux, uy float64) {
				return 3*x + y, 3, 1
			}
			m  = mesh2D.NewUnitSquareQuads(1)
			sp = space2D.NewSpace(m, 1)
			rs = refSolutionOn(t, sp, linear)
		)
		_, ok := NewSelector(HP_ANISO, 1.0).SelectRefinement(rs, 0,
			sp.GetElementOrder(0), H1Form)
		assert.False(t, ok)
	}
	{ // a boundary layer in y draws refinement in y only
		var (
			layer = func(x, y float64) (u, ux, uy float64) {
				s := 8 * (y - 0.5)
				c := math.Cosh(s)
				return math.Tanh(s), 0, 8 / (c * c)
			}
			m  = mesh2D.NewUnitSquareQuads(1)
			sp = space2D.NewSpace(m, 2)
			rs = refSolutionOn(t, sp, layer)
		)
		best, ok := NewSelector(HP_ANISO, 1.0).SelectRefinement(rs, 0,
			sp.GetElementOrder(0), H1Form)
		assert.True(t, ok)
		if best.HRef {
			assert.Equal(t, mesh2D.RefHorz, best.Mode)
		} else {
			assert.Greater(t, best.Orders[0].PY, 2)
			assert.Equal(t, 2, best.Orders[0].PX)
		}
	}
}
