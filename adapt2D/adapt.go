package adapt2D

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/space2D"
	"github.com/erick-santiago/hermes2d/utils"
)

/*
ErrorForm is the pointwise integrand of a bilinear error form: it
receives the value and physical gradient of both arguments and returns
the energy density. The estimator integrates it with the solution
difference in both slots for errors and the reference solution in both
slots for the normalization.
*/
type ErrorForm func(ux, uy, u, vx, vy, v float64) float64

// H1Form is the default error form, the full H1 inner product.
func H1Form(ux, uy, u, vx, vy, v float64) float64 {
	return ux*vx + uy*vy + u*v
}

type formPair struct{ I, J int }

// ElemError ranks one coarse element of one component.
type ElemError struct {
	Comp, Elem int
	Err        float64
}

/*
Adapt estimates per element errors by comparing a coarse solution
against a reference solution on the globally refined mesh, then drives
the marked elements through a refinement selector. The error of coarse
element k integrates the chosen bilinear forms of the solution
difference over k's four reference children, so no projection between
the two spaces is ever needed.
*/
type Adapt struct {
	NComp int

	forms   map[formPair]ErrorForm
	weights []float64
	coarse  []*space2D.Solution
	ref     []*space2D.Solution

	errs    [][]float64
	ranked  []ElemError
	errSum  float64
	normSum float64
	valid   bool
}

func NewAdapt(ncomp int) (ad *Adapt) {
	if ncomp < 1 {
		panic(fmt.Errorf("component count %d must be positive", ncomp))
	}
	ad = &Adapt{
		NComp:   ncomp,
		forms:   make(map[formPair]ErrorForm),
		weights: utils.ConstArray(ncomp, 1),
	}
	for i := 0; i < ncomp; i++ {
		ad.forms[formPair{i, i}] = H1Form
	}
	return
}

// NewH1Adapt is the single component estimator in the H1 norm.
func NewH1Adapt() (ad *Adapt) {
	ad = NewAdapt(1)
	return
}

// SetErrorForm installs the bilinear form coupling components i and j.
// The diagonal forms default to H1Form.
func (ad *Adapt) SetErrorForm(i, j int, form ErrorForm) {
	if i < 0 || i >= ad.NComp || j < 0 || j >= ad.NComp {
		panic(fmt.Errorf("error form indices (%d,%d) outside %d components", i, j, ad.NComp))
	}
	ad.forms[formPair{i, j}] = form
	ad.valid = false
}

// SetComponentWeights scales each component's contribution to the
// aggregate error. Defaults to unit weights.
func (ad *Adapt) SetComponentWeights(w []float64) {
	if len(w) != ad.NComp {
		panic(fmt.Errorf("got %d weights for %d components", len(w), ad.NComp))
	}
	ad.weights = append([]float64{}, w...)
	ad.valid = false
}

func (ad *Adapt) SetSolutions(coarse, ref []*space2D.Solution) {
	if len(coarse) != ad.NComp || len(ref) != ad.NComp {
		panic(fmt.Errorf("got %d coarse and %d reference solutions for %d components",
			len(coarse), len(ref), ad.NComp))
	}
	ad.coarse = coarse
	ad.ref = ref
	ad.valid = false
}

/*
CalcError sweeps all active coarse elements in parallel and fills the
per element error table. The return value is the total relative error
as a fraction: the square root of the summed element errors over the
energy of the reference solution. Off diagonal forms are only
supported between components discretized on the same mesh.
*/
func (ad *Adapt) CalcError() (relErr float64) {
	if ad.coarse == nil {
		panic(fmt.Errorf("solutions must be set before computing errors"))
	}
	for fp := range ad.forms {
		if fp.I != fp.J && ad.coarse[fp.I].SP.M != ad.coarse[fp.J].SP.M {
			panic(fmt.Errorf("error form (%d,%d) couples components on different meshes", fp.I, fp.J))
		}
	}
	ad.errs = make([][]float64, ad.NComp)
	ad.errSum, ad.normSum = 0, 0
	ad.ranked = ad.ranked[:0]
	for i := 0; i < ad.NComp; i++ {
		var (
			m       = ad.coarse[i].SP.M
			actives = m.ActiveElements()
			pm      = utils.NewPartitionMap(runtime.NumCPU(), len(actives))
			parts   = make([]float64, pm.ParallelDegree)
			wg      sync.WaitGroup
		)
		ad.errs[i] = make([]float64, m.NumElements())
		for np := 0; np < pm.ParallelDegree; np++ {
			wg.Add(1)
			go func(np int) {
				defer wg.Done()
				imin, imax := pm.GetBucketRange(np)
				for ii := imin; ii < imax; ii++ {
					k := actives[ii]
					e, nrm := ad.elementError(i, k)
					ad.errs[i][k] = ad.weights[i] * e
					parts[np] += ad.weights[i] * nrm
				}
			}(np)
		}
		wg.Wait()
		for np := range parts {
			ad.normSum += parts[np]
		}
		for _, k := range actives {
			ad.errSum += ad.errs[i][k]
			ad.ranked = append(ad.ranked, ElemError{Comp: i, Elem: k, Err: ad.errs[i][k]})
		}
	}
	sort.SliceStable(ad.ranked, func(a, b int) bool { return ad.ranked[a].Err > ad.ranked[b].Err })
	ad.valid = true
	if ad.normSum > 0 {
		relErr = math.Sqrt(ad.errSum / ad.normSum)
	}
	return
}

// ElementError reads the last computed weighted squared error of one
// coarse element.
func (ad *Adapt) ElementError(comp, elem int) (e float64) {
	if !ad.valid {
		panic(fmt.Errorf("element errors queried before CalcError"))
	}
	e = ad.errs[comp][elem]
	return
}

// RankedErrors lists all (component, element) pairs in descending
// error order, the input of the marking strategies.
func (ad *Adapt) RankedErrors() (ranked []ElemError) {
	if !ad.valid {
		panic(fmt.Errorf("ranked errors queried before CalcError"))
	}
	ranked = ad.ranked
	return
}

/*
Adapt applies one round of refinement: mark the ranked elements with
the strategy, ask the selector for the best candidate of each, apply
order changes and splits to the coarse spaces, then re-establish the
hanging node bound and renumber. When several components share a mesh
the first decision on an element wins and later components inherit the
split with their own orders carried onto the children. Returns the
number of elements actually changed; zero means the selector found
nothing worth refining.
*/
func (ad *Adapt) Adapt(sel *Selector, strat Strategy, thr float64, regularity int) (refined int, err error) {
	if !ad.valid {
		panic(fmt.Errorf("errors must be computed before adapting"))
	}
	var (
		marked  = MarkElements(ad.ranked, strat, thr, ad.errSum)
		touched = make(map[*mesh2D.Mesh]map[int]bool)
		cands   = make([]Candidate, len(marked))
		oks     = make([]bool, len(marked))
	)
	// The candidate search only reads the meshes and solutions, so it
	// fans out like the error sweep. All mutation waits for the merge.
	if len(marked) > 0 {
		var (
			pm = utils.NewPartitionMap(runtime.NumCPU(), len(marked))
			wg sync.WaitGroup
		)
		for np := 0; np < pm.ParallelDegree; np++ {
			wg.Add(1)
			go func(np int) {
				defer wg.Done()
				imin, imax := pm.GetBucketRange(np)
				for ii := imin; ii < imax; ii++ {
					ee := marked[ii]
					cands[ii], oks[ii] = sel.SelectRefinement(ad.ref[ee.Comp], ee.Elem,
						ad.coarse[ee.Comp].SP.GetElementOrder(ee.Elem),
						ad.forms[formPair{ee.Comp, ee.Comp}])
				}
			}(np)
		}
		wg.Wait()
	}
	for ii, ee := range marked {
		var (
			sp = ad.coarse[ee.Comp].SP
			m  = sp.M
		)
		if touched[m] == nil {
			touched[m] = make(map[int]bool)
		}
		if touched[m][ee.Elem] || !oks[ii] {
			continue
		}
		cand := cands[ii]
		touched[m][ee.Elem] = true
		if !cand.HRef {
			sp.SetElementOrder(ee.Elem, cand.Orders[0].PX, cand.Orders[0].PY)
			refined++
			continue
		}
		if err = m.RefineElement(ee.Elem, cand.Mode); err != nil {
			return
		}
		el := m.El(ee.Elem)
		for s := 0; s < el.NChildren; s++ {
			sp.SetElementOrder(el.Children[s], cand.Orders[s].PX, cand.Orders[s].PY)
		}
		refined++
	}
	for m := range touched {
		if _, err = m.Regularize(regularity); err != nil {
			return
		}
	}
	for _, cs := range ad.coarse {
		cs.SP.AssignDOFs()
	}
	ad.valid = false
	return
}

// elementError integrates all forms involving component i over the
// reference children of coarse element k.
func (ad *Adapt) elementError(i, k int) (errSq, normSq float64) {
	for j := 0; j < ad.NComp; j++ {
		form, have := ad.forms[formPair{i, j}]
		if !have {
			continue
		}
		e, nrm := ad.pairError(form, i, j, k)
		errSq += math.Abs(e)
		normSq += math.Abs(nrm)
	}
	return
}

func (ad *Adapt) pairError(form ErrorForm, i, j, k int) (errSq, normSq float64) {
	var (
		rm = ad.ref[i].SP.M
		el = rm.El(k)
		ci = ad.coarse[i].ElementCoeffs(k)
		cj = ci
	)
	if el.Active || el.Split != mesh2D.RefIso {
		panic(fmt.Errorf("reference mesh does not refine element %d isotropically", k))
	}
	if j != i {
		cj = ad.coarse[j].ElementCoeffs(k)
	}
	for son := 0; son < el.NChildren; son++ {
		var (
			c   = el.Children[son]
			tr  = space2D.ChildTransform(el.Kind, mesh2D.RefIso, son)
			cm  = space2D.NewElementMap(rm, c)
			rci = ad.ref[i].ElementCoeffs(c)
			rcj = rci
		)
		if j != i {
			rcj = ad.ref[j].ElementCoeffs(c)
		}
		pmax := ad.ref[i].SP.GetElementOrder(c).Max()
		if cp := ad.coarse[i].SP.GetElementOrder(k).Max(); cp > pmax {
			pmax = cp
		}
		var q space2D.QR
		if el.Kind == mesh2D.Quad {
			q = space2D.SquareRule(2*pmax + 2)
		} else {
			q = space2D.TriRule(2*pmax + 2)
		}
		for p := 0; p < q.Len(); p++ {
			var (
				xi, eta, w = q.Xi[p], q.Eta[p], q.W[p]
				xip, etap  = tr.At(xi, eta)
			)
			_, det := cm.Jacobian(xi, eta)
			wd := w * det
			ui, uxi, uyi := ad.ref[i].EvalLocal(c, rci, xi, eta)
			vi, vxi, vyi := ad.coarse[i].EvalLocal(k, ci, xip, etap)
			di, dxi, dyi := vi-ui, vxi-uxi, vyi-uyi
			dj, dxj, dyj := di, dxi, dyi
			uj, uxj, uyj := ui, uxi, uyi
			if j != i {
				uj, uxj, uyj = ad.ref[j].EvalLocal(c, rcj, xi, eta)
				vj, vxj, vyj := ad.coarse[j].EvalLocal(k, cj, xip, etap)
				dj, dxj, dyj = vj-uj, vxj-uxj, vyj-uyj
			}
			errSq += wd * form(dxi, dyi, di, dxj, dyj, dj)
			normSq += wd * form(uxi, uyi, ui, uxj, uyj, uj)
		}
	}
	return
}
