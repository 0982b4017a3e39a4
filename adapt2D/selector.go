package adapt2D

import (
	"fmt"
	"math"
	"strings"

	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/space2D"
	"github.com/erick-santiago/hermes2d/utils"
)

// CandList names the families of refinement candidates a selector may
// propose for one element.
type CandList uint

const (
	P_ISO CandList = iota
	P_ANISO
	H_ISO
	H_ANISO
	HP_ISO
	HP_ANISO_H
	HP_ANISO_P
	HP_ANISO
)

var (
	CandListNames = map[string]CandList{
		"p_iso":      P_ISO,
		"p_aniso":    P_ANISO,
		"h_iso":      H_ISO,
		"h_aniso":    H_ANISO,
		"hp_iso":     HP_ISO,
		"hp_aniso_h": HP_ANISO_H,
		"hp_aniso_p": HP_ANISO_P,
		"hp_aniso":   HP_ANISO,
	}
	CandListPrintNames = []string{
		"P_ISO", "P_ANISO", "H_ISO", "H_ANISO",
		"HP_ISO", "HP_ANISO_H", "HP_ANISO_P", "HP_ANISO",
	}
)

func (cl CandList) Print() (txt string) {
	txt = CandListPrintNames[cl]
	return
}

func NewCandList(label string) (cl CandList) {
	var (
		ok  bool
		err error
	)
	if cl, ok = CandListNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use candidate list named %s", label)
		panic(err)
	}
	return
}

func (cl CandList) allowsH() bool {
	return cl != P_ISO && cl != P_ANISO
}

func (cl CandList) allowsP() bool {
	return cl != H_ISO && cl != H_ANISO
}

func (cl CandList) allowsAnisoH() bool {
	return cl == H_ANISO || cl == HP_ANISO_H || cl == HP_ANISO
}

func (cl CandList) allowsAnisoP() bool {
	return cl == P_ANISO || cl == HP_ANISO_P || cl == HP_ANISO
}

/*
Candidate is one possible refinement of an element: either a pure
order change (HRef false, target order in Orders[0]) or a split with
per son orders. Err is the predicted squared projection error of the
reference solution on the candidate's local space, Dofs the amortized
DOF cost with edges shared between neighbors and vertices split by
valence.
*/
type Candidate struct {
	HRef   bool
	Mode   mesh2D.RefMode
	NSons  int
	Orders [4]space2D.OrderPair
	Err    float64
	Dofs   float64
	Score  float64
}

/*
Selector scores candidates by projecting the reference solution onto
each candidate's local space over the element's reference children.
The winner maximizes the error decrease per added DOF,

	score = (log10 errBase - log10 errCand) / (dofsCand - dofsBase)^ConvExp

and an element keeps its current state when no candidate scores
positive.
*/
type Selector struct {
	List    CandList
	ConvExp float64
}

func NewSelector(list CandList, convExp float64) (sel *Selector) {
	if convExp <= 0 {
		panic(fmt.Errorf("convergence exponent %g must be positive", convExp))
	}
	sel = &Selector{List: list, ConvExp: convExp}
	return
}

/*
SelectRefinement picks the best refinement of coarse element k with
current orders op, judged against the reference solution rsol in the
inner product induced by form. ok is false when the element should be
left alone.
*/
func (sel *Selector) SelectRefinement(rsol *space2D.Solution, k int, op space2D.OrderPair,
	form ErrorForm) (best Candidate, ok bool) {
	var (
		kind    = rsol.SP.M.El(k).Kind
		cands   = sel.genCandidates(kind, op)
		refNorm float64
	)
	for i := range cands {
		cands[i].Err, refNorm = predictErr(rsol, k, &cands[i], form)
		cands[i].Dofs = candDofs(kind, &cands[i])
	}
	// energies at roundoff level mean the element is already resolved
	var (
		base  = cands[0]
		floor = 1.e-20 * refNorm
	)
	if base.Err <= floor {
		return
	}
	for i := 1; i < len(cands); i++ {
		c := &cands[i]
		if c.Dofs <= base.Dofs || c.Err >= base.Err {
			continue
		}
		errC := math.Max(c.Err, floor)
		c.Score = (math.Log10(base.Err) - math.Log10(errC)) /
			math.Pow(c.Dofs-base.Dofs, sel.ConvExp)
		if c.Score > best.Score {
			best = *c
			ok = true
		}
	}
	return
}

func uniformOrders(q space2D.OrderPair, nsons int) (o [4]space2D.OrderPair) {
	for s := 0; s < nsons; s++ {
		o[s] = q
	}
	return
}

func (sel *Selector) genCandidates(kind mesh2D.ElementKind, op space2D.OrderPair) (cands []Candidate) {
	var (
		p     = op.Max()
		h0    = max((p+2)/2, 1) // half order for hp splits
		capAt = func(v int) int { return min(v, space2D.MaxOrder) }
		add   = func(c Candidate) {
			for _, have := range cands {
				if have.HRef == c.HRef && have.Mode == c.Mode &&
					have.NSons == c.NSons && have.Orders == c.Orders {
					return
				}
			}
			cands = append(cands, c)
		}
		addP = func(px, py int) {
			add(Candidate{Orders: [4]space2D.OrderPair{{PX: px, PY: py}}})
		}
	)
	// the current state is the scoring baseline
	addP(op.PX, op.PY)

	if sel.List.allowsP() {
		if kind == mesh2D.Tri {
			addP(capAt(p+1), capAt(p+1))
			addP(capAt(p+2), capAt(p+2))
		} else if sel.List.allowsAnisoP() {
			for dx := 0; dx <= 2; dx++ {
				for dy := 0; dy <= 2; dy++ {
					if dx+dy == 0 {
						continue
					}
					addP(capAt(op.PX+dx), capAt(op.PY+dy))
				}
			}
		} else {
			addP(capAt(op.PX+1), capAt(op.PY+1))
			addP(capAt(op.PX+2), capAt(op.PY+2))
		}
	}
	if sel.List.allowsH() {
		var isoOrders []int
		if sel.List == H_ISO || sel.List == H_ANISO {
			isoOrders = []int{p}
		} else {
			isoOrders = []int{h0, p, capAt(p + 1)}
		}
		for _, q := range isoOrders {
			add(Candidate{
				HRef:   true,
				Mode:   mesh2D.RefIso,
				NSons:  4,
				Orders: uniformOrders(space2D.OrderPair{PX: q, PY: q}, 4),
			})
		}
		if kind == mesh2D.Quad && sel.List.allowsAnisoH() {
			horz := []space2D.OrderPair{{PX: op.PX, PY: op.PY}}
			vert := []space2D.OrderPair{{PX: op.PX, PY: op.PY}}
			if sel.List != H_ANISO {
				horz = append(horz, space2D.OrderPair{PX: op.PX, PY: max((op.PY+2)/2, 1)})
				vert = append(vert, space2D.OrderPair{PX: max((op.PX+2)/2, 1), PY: op.PY})
			}
			for _, q := range horz {
				add(Candidate{HRef: true, Mode: mesh2D.RefHorz, NSons: 2,
					Orders: uniformOrders(q, 2)})
			}
			for _, q := range vert {
				add(Candidate{HRef: true, Mode: mesh2D.RefVert, NSons: 2,
					Orders: uniformOrders(q, 2)})
			}
		}
	}
	return
}

// candDofs estimates the DOF cost of a candidate: interior modes in
// full, edges halved, vertices split by typical valence.
func candDofs(kind mesh2D.ElementKind, c *Candidate) (dofs float64) {
	var (
		nsons = 1
	)
	if c.HRef {
		nsons = c.NSons
	}
	for s := 0; s < nsons; s++ {
		op := c.Orders[s]
		if kind == mesh2D.Quad {
			dofs += float64((op.PX-1)*(op.PY-1)) + float64(op.PX-1+op.PY-1) + 1
		} else {
			p := op.PX
			dofs += float64((p-1)*(p-2))/2 + 1.5*float64(p-1) + 0.5
		}
	}
	return
}

// sonCover lists the isotropic reference children covered by son s of
// a candidate split.
func sonCover(kind mesh2D.ElementKind, mode mesh2D.RefMode, s int) (children []int) {
	if kind == mesh2D.Tri || mode == mesh2D.RefIso {
		children = []int{s}
		return
	}
	switch {
	case mode == mesh2D.RefHorz && s == 0:
		children = []int{0, 1}
	case mode == mesh2D.RefHorz && s == 1:
		children = []int{2, 3}
	case mode == mesh2D.RefVert && s == 0:
		children = []int{0, 3}
	case mode == mesh2D.RefVert && s == 1:
		children = []int{1, 2}
	default:
		panic(fmt.Errorf("no child cover for split %s son %d", mode.Print(), s))
	}
	return
}

func invertAffine(t space2D.SubTransform) (inv space2D.SubTransform) {
	det := t.A[0]*t.A[3] - t.A[1]*t.A[2]
	if det == 0 {
		panic(fmt.Errorf("singular sub transform"))
	}
	inv.A[0] = t.A[3] / det
	inv.A[1] = -t.A[1] / det
	inv.A[2] = -t.A[2] / det
	inv.A[3] = t.A[0] / det
	inv.B[0] = -(inv.A[0]*t.B[0] + inv.A[1]*t.B[1])
	inv.B[1] = -(inv.A[2]*t.B[0] + inv.A[3]*t.B[1])
	return
}

// composeJac pushes a parent Jacobian through the affine son map.
func composeJac(J [4]float64, det float64, A [4]float64) (Js [4]float64, dets float64) {
	Js[0] = J[0]*A[0] + J[1]*A[2]
	Js[1] = J[0]*A[1] + J[1]*A[3]
	Js[2] = J[2]*A[0] + J[3]*A[2]
	Js[3] = J[2]*A[1] + J[3]*A[3]
	dets = det * (A[0]*A[3] - A[1]*A[2])
	return
}

/*
predictErr projects the reference solution onto the candidate's local
space and returns the squared energy defect. Each candidate son is
fitted independently: with G the Gram matrix of the son's basis and b
the moments of the reference solution, the defect is

	|u|^2 - b^T G^-1 b

integrated son by son over the reference children the son covers.
*/
func predictErr(rsol *space2D.Solution, k int, cand *Candidate, form ErrorForm) (errSq, refNormSq float64) {
	var (
		rm    = rsol.SP.M
		el    = rm.El(k)
		kind  = el.Kind
		pmap  = space2D.NewElementMap(rm, k)
		nsons = 1
	)
	if el.Active || el.Split != mesh2D.RefIso {
		panic(fmt.Errorf("reference mesh does not refine element %d isotropically", k))
	}
	if cand.HRef {
		nsons = cand.NSons
	}
	for s := 0; s < nsons; s++ {
		var (
			ts       = space2D.IdentityTransform()
			children = make([]int, el.NChildren)
			op       = cand.Orders[0]
		)
		for c := range children {
			children[c] = c
		}
		if cand.HRef {
			ts = space2D.ChildTransform(kind, cand.Mode, s)
			children = sonCover(kind, cand.Mode, s)
			op = cand.Orders[s]
		}
		var (
			invTs  = invertAffine(ts)
			shapes = candShapes(kind, op)
			n      = len(shapes)
			G      = utils.NewMatrix(n, n)
			bb     = utils.NewMatrix(n, 1)
			normSq float64
			phi    = make([]float64, n)
			phiX   = make([]float64, n)
			phiY   = make([]float64, n)
		)
		for _, c := range children {
			var (
				child = el.Children[c]
				rc    = space2D.ChildTransform(kind, mesh2D.RefIso, c)
				comp  = rc.Compose(invTs)
				cm    = space2D.NewElementMap(rm, child)
				rcf   = rsol.ElementCoeffs(child)
				pref  = rsol.SP.GetElementOrder(child).Max()
				q     space2D.QR
			)
			pmax := max(op.Max(), pref)
			if kind == mesh2D.Quad {
				q = space2D.SquareRule(2*pmax + 2)
			} else {
				q = space2D.TriRule(2*pmax + 2)
			}
			for pt := 0; pt < q.Len(); pt++ {
				var (
					xi, eta, w = q.Xi[pt], q.Eta[pt], q.W[pt]
					xis, etas  = comp.At(xi, eta)
					xip, etap  = rc.At(xi, eta)
				)
				_, detC := cm.Jacobian(xi, eta)
				Jp, detP := pmap.Jacobian(xip, etap)
				Js, detS := composeJac(Jp, detP, ts.A)
				u, ux, uy := rsol.EvalLocal(child, rcf, xi, eta)
				wd := w * detC
				for a := 0; a < n; a++ {
					v, d1, d2 := space2D.EvalShape(kind, shapes[a], xis, etas)
					gx, gy := space2D.PhysGrad(Js, detS, d1, d2)
					phi[a], phiX[a], phiY[a] = v, gx, gy
				}
				for a := 0; a < n; a++ {
					bb.Set(a, 0, bb.At(a, 0)+wd*form(ux, uy, u, phiX[a], phiY[a], phi[a]))
					for bi := a; bi < n; bi++ {
						G.Set(a, bi, G.At(a, bi)+
							wd*form(phiX[a], phiY[a], phi[a], phiX[bi], phiY[bi], phi[bi]))
					}
				}
				normSq += wd * form(ux, uy, u, ux, uy, u)
			}
		}
		for a := 0; a < n; a++ {
			for bi := a + 1; bi < n; bi++ {
				G.Set(bi, a, G.At(a, bi))
			}
		}
		coef := G.CholSolve(bb)
		fit := normSq
		for a := 0; a < n; a++ {
			fit -= coef.At(a, 0) * bb.At(a, 0)
		}
		errSq += math.Max(fit, 0)
		refNormSq += normSq
	}
	return
}

func candShapes(kind mesh2D.ElementKind, op space2D.OrderPair) (shapes []space2D.ShapeFn) {
	var (
		edgeDeg [4]int
		flips   [4]bool
	)
	if kind == mesh2D.Quad {
		edgeDeg = [4]int{op.PX, op.PY, op.PX, op.PY}
	} else {
		p := op.PX
		edgeDeg = [4]int{p, p, p, 0}
	}
	shapes = space2D.ElementShapes(kind, op.PX, op.PY, edgeDeg, flips)
	return
}
