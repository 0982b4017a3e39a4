package adapt2D

import (
	"testing"

	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/space2D"
	"github.com/stretchr/testify/assert"
)

func twoQuadMesh() (m *mesh2D.Mesh) {
	m = mesh2D.NewQuadMesh(
		[]float64{0, 1, 2, 0, 1, 2},
		[]float64{0, 0, 0, 1, 1, 1},
		[][4]int{{0, 1, 4, 3}, {1, 2, 5, 4}},
	)
	return
}

// coarseAndRef projects f onto a coarse space of order p and onto the
// globally refined space one order higher, the input pair of the
// estimator.
func coarseAndRef(t *testing.T, m *mesh2D.Mesh, sp *space2D.Space,
	f space2D.ExactFn) (cs, rs *space2D.Solution) {
	var err error
	sp.AssignDOFs()
	rm := m.Copy()
	assert.NoError(t, rm.RefineAllElements())
	rsp := sp.Dup(rm)
	rsp.CopyOrders(sp, 1)
	rsp.AssignDOFs()
	cs, err = space2D.ProjectGlobal(sp, f)
	assert.NoError(t, err)
	rs, err = space2D.ProjectGlobal(rsp, f)
	assert.NoError(t, err)
	return
}

func TestErrorEstimator(t *testing.T) {
	var (
		linear = func(x, y float64) (u, ux, uy float64) {
			return 2*x - y + 0.5, 2, -1
		}
		quadratic = func(x, y float64) (u, ux, uy float64) {
			return x*x + y*y, 2 * x, 2 * y
		}
	)
	{ // a function both spaces capture exactly produces no error
		m := twoQuadMesh()
		cs, rs := coarseAndRef(t, m, space2D.NewSpace(m, 1), linear)
		ad := NewH1Adapt()
		ad.SetSolutions([]*space2D.Solution{cs}, []*space2D.Solution{rs})
		assert.Less(t, ad.CalcError(), 1.e-6)
	}
	{ // a quadratic is invisible to bilinear elements
		m := twoQuadMesh()
		cs, rs := coarseAndRef(t, m, space2D.NewSpace(m, 1), quadratic)
		ad := NewH1Adapt()
		ad.SetSolutions([]*space2D.Solution{cs}, []*space2D.Solution{rs})
		rel := ad.CalcError()
		assert.Greater(t, rel, 0.01)
		ranked := ad.RankedErrors()
		assert.Len(t, ranked, 2)
		// reflecting x across the shared edge adds an affine function
		// to u, so both elements carry the same projection defect
		assert.InEpsilon(t, ranked[0].Err, ranked[1].Err, 1.e-8)
		assert.Equal(t, ranked[0].Err, ad.ElementError(0, ranked[0].Elem))
	}
	{ // component weights reorder the ranking
		var (
			m1       = twoQuadMesh()
			sp1      = space2D.NewSpace(m1, 1)
			sp2      = space2D.NewSpace(m1, 1)
			cs1, rs1 = coarseAndRef(t, m1, sp1, quadratic)
			cs2, rs2 = coarseAndRef(t, m1, sp2, quadratic)
			ad       = NewAdapt(2)
		)
		ad.SetComponentWeights([]float64{1, 100})
		ad.SetSolutions([]*space2D.Solution{cs1, cs2}, []*space2D.Solution{rs1, rs2})
		ad.CalcError()
		ranked := ad.RankedErrors()
		assert.Len(t, ranked, 4)
		assert.Equal(t, 1, ranked[0].Comp)
		assert.Equal(t, 1, ranked[1].Comp)
	}
	{ // guards
		ad := NewH1Adapt()
		assert.Panics(t, func() { ad.CalcError() })
		assert.Panics(t, func() { ad.RankedErrors() })
		assert.Panics(t, func() { ad.SetErrorForm(1, 0, H1Form) })
		assert.Panics(t, func() { ad.SetComponentWeights([]float64{1, 2}) })
		assert.Panics(t, func() { NewAdapt(0) })
	}
}

func TestAdaptRound(t *testing.T) {
	var (
		quadratic = func(x, y float64) (u, ux, uy float64) {
			return x*x + y*y, 2 * x, 2 * y
		}
		m   = twoQuadMesh()
		sp  = space2D.NewSpace(m, 1)
		ad  = NewH1Adapt()
		sel = NewSelector(HP_ISO, 1.0)
	)
	sp.AssignDOFs()
	project := func() {
		rm := m.Copy()
		assert.NoError(t, rm.RefineAllElements())
		rsp := sp.Dup(rm)
		rsp.CopyOrders(sp, 1)
		rsp.AssignDOFs()
		cs, err := space2D.ProjectGlobal(sp, quadratic)
		assert.NoError(t, err)
		rs, err := space2D.ProjectGlobal(rsp, quadratic)
		assert.NoError(t, err)
		ad.SetSolutions([]*space2D.Solution{cs}, []*space2D.Solution{rs})
	}
	{ // a smooth quadratic drives pure order refinement, no splits
		project()
		assert.Greater(t, ad.CalcError(), 0.01)
		refined, err := ad.Adapt(sel, AbsoluteThreshold, 0, -1)
		assert.NoError(t, err)
		assert.Equal(t, 2, refined)
		assert.Len(t, m.ActiveElements(), 2)
		for _, k := range m.ActiveElements() {
			assert.Equal(t, space2D.OrderPair{PX: 2, PY: 2}, sp.GetElementOrder(k))
		}
	}
	{ // once the function is captured the selector stands down
		project()
		assert.Less(t, ad.CalcError(), 1.e-6)
		refined, err := ad.Adapt(sel, AbsoluteThreshold, 0, -1)
		assert.NoError(t, err)
		assert.Equal(t, 0, refined)
	}
	{ // adapting with stale errors panics
		assert.Panics(t, func() { ad.Adapt(sel, AbsoluteThreshold, 0, -1) })
	}
}
