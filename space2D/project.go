package space2D

import (
	"fmt"

	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/utils"
)

// ExactFn supplies a target function with its gradient.
type ExactFn func(x, y float64) (u, ux, uy float64)

/*
ProjectGlobal computes the global H1 projection of f onto the space:
the coefficient vector minimizing the energy distance to f over all
members of the space, essential boundary values included through the
fixed parts of the connectivity. Constrained functions are folded into
their parent unknowns during assembly, so the system is SPD on the free
unknowns and a conjugate gradient solve suffices.
*/
func ProjectGlobal(sp *Space, f ExactFn) (sol *Solution, err error) {
	if !sp.assigned {
		sp.AssignDOFs()
	}
	var (
		m = sp.M
		n = sp.NDof()
		A = utils.NewDOK(n, n)
		b = make([]float64, n)
	)
	for _, k := range m.ActiveElements() {
		var (
			el    = m.El(k)
			links = sp.ElementConnectivity(k)
			em    = NewElementMap(m, k)
			nl    = len(links)
			pmax  = sp.orders[k].Max()
			loc   = utils.NewMatrix(nl, nl)
			rhs   = make([]float64, nl)
			phi   = make([]float64, nl)
			phiX  = make([]float64, nl)
			phiY  = make([]float64, nl)
			q     QR
		)
		if el.Kind == mesh2D.Quad {
			q = SquareRule(2*pmax + 2)
		} else {
			q = TriRule(2*pmax + 2)
		}
		for p := 0; p < q.Len(); p++ {
			xi, eta, w := q.Xi[p], q.Eta[p], q.W[p]
			J, det := em.Jacobian(xi, eta)
			x, y := em.At(xi, eta)
			fu, fux, fuy := f(x, y)
			wd := w * det
			for i := range links {
				v, d1, d2 := EvalShape(el.Kind, links[i].Shape, xi, eta)
				gx, gy := PhysGrad(J, det, d1, d2)
				phi[i], phiX[i], phiY[i] = v, gx, gy
			}
			for i := 0; i < nl; i++ {
				rhs[i] += wd * (fux*phiX[i] + fuy*phiY[i] + fu*phi[i])
				for j := i; j < nl; j++ {
					loc.Set(i, j, loc.At(i, j)+
						wd*(phiX[i]*phiX[j]+phiY[i]*phiY[j]+phi[i]*phi[j]))
				}
			}
		}
		for i := 0; i < nl; i++ {
			for j := i + 1; j < nl; j++ {
				loc.Set(j, i, loc.At(i, j))
			}
		}
		ScatterLocal(A, b, links, loc, rhs)
	}
	x, _, cgErr := utils.ConjugateGradient(A.ToCSR(), b, 1.e-12, 200+4*n)
	if cgErr != nil {
		err = fmt.Errorf("projection solve failed: %w", cgErr)
		return
	}
	sol = NewSolution(sp, x)
	return
}

/*
ScatterLocal adds a local matrix and load vector into the global
system, expanding every local function through its LinForm: matrix
entries fan out over the linked unknown pairs and fixed parts move to
the right hand side. Any assembly over a space's connectivity goes
through here, which is what keeps hanging nodes and essential values
out of the solver's sight.
*/
func ScatterLocal(A utils.DOK, b []float64, links []ShapeLink, loc utils.Matrix, rhs []float64) {
	for i := range links {
		li := &links[i].LinForm
		if len(li.Dofs) == 0 {
			continue
		}
		for a, da := range li.Dofs {
			ca := li.Coeffs[a]
			b[da] += ca * rhs[i]
			for j := range links {
				mij := loc.At(i, j)
				if mij == 0 {
					continue
				}
				lj := &links[j].LinForm
				for bi, db := range lj.Dofs {
					A.Accumulate(da, db, ca*lj.Coeffs[bi]*mij)
				}
				if lj.Fixed != 0 {
					b[da] -= ca * mij * lj.Fixed
				}
			}
		}
	}
}
