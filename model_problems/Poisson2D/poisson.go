package Poisson2D

import (
	"fmt"

	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/space2D"
	"github.com/erick-santiago/hermes2d/utils"
)

// SourceFn is the volume source of the strong form -Laplace(u) = f.
type SourceFn func(x, y float64) float64

/*
Problem assembles and solves the Poisson equation

	-Laplace(u) = f   in the domain
	          u = g   on Dirichlet flagged boundary edges

over any space whose mesh carries the boundary flags; g enters through
the space's essential boundary condition. Solve satisfies the adaptive
loop's Solver interface, so a Problem can drive hp adaptivity directly.
*/
type Problem struct {
	F       SourceFn
	Tol     float64 // relative residual bound of the CG solve
	MaxIter int     // CG headroom added on top of the system size
}

func NewProblem(f SourceFn) (pb *Problem) {
	if f == nil {
		panic(fmt.Errorf("poisson problem needs a source function"))
	}
	pb = &Problem{
		F:       f,
		Tol:     1.e-12,
		MaxIter: 200,
	}
	return
}

func (pb *Problem) Solve(spaces []*space2D.Space) (sols []*space2D.Solution, err error) {
	sols = make([]*space2D.Solution, len(spaces))
	for i, sp := range spaces {
		if sols[i], err = pb.SolveOne(sp); err != nil {
			err = fmt.Errorf("component %d: %w", i, err)
			return
		}
	}
	return
}

/*
SolveOne discretizes the weak form over one space: element stiffness
and load integrate on the reference domain, ScatterLocal folds the
constrained and fixed functions out, and conjugate gradients solve the
remaining SPD system. The essential boundary lift rides in through the
fixed parts of the connectivity, so hanging nodes and boundary values
never reach the solver.
*/
func (pb *Problem) SolveOne(sp *space2D.Space) (sol *space2D.Solution, err error) {
	if !sp.Assigned() {
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
			em    = space2D.NewElementMap(m, k)
			nl    = len(links)
			pmax  = sp.GetElementOrder(k).Max()
			loc   = utils.NewMatrix(nl, nl)
			rhs   = make([]float64, nl)
			phi   = make([]float64, nl)
			phiX  = make([]float64, nl)
			phiY  = make([]float64, nl)
			q     space2D.QR
		)
		if el.Kind == mesh2D.Quad {
			q = space2D.SquareRule(2*pmax + 2)
		} else {
			q = space2D.TriRule(2*pmax + 2)
		}
		for p := 0; p < q.Len(); p++ {
			xi, eta, w := q.Xi[p], q.Eta[p], q.W[p]
			J, det := em.Jacobian(xi, eta)
			x, y := em.At(xi, eta)
			fv := pb.F(x, y)
			wd := w * det
			for i := range links {
				v, d1, d2 := space2D.EvalShape(el.Kind, links[i].Shape, xi, eta)
				gx, gy := space2D.PhysGrad(J, det, d1, d2)
				phi[i], phiX[i], phiY[i] = v, gx, gy
			}
			for i := 0; i < nl; i++ {
				rhs[i] += wd * fv * phi[i]
				for j := i; j < nl; j++ {
					loc.Set(i, j, loc.At(i, j)+wd*(phiX[i]*phiX[j]+phiY[i]*phiY[j]))
				}
			}
		}
		for i := 0; i < nl; i++ {
			for j := i + 1; j < nl; j++ {
				loc.Set(j, i, loc.At(i, j))
			}
		}
		space2D.ScatterLocal(A, b, links, loc, rhs)
	}
	x, _, cgErr := utils.ConjugateGradient(A.ToCSR(), b, pb.Tol, pb.MaxIter+4*n)
	if cgErr != nil {
		err = fmt.Errorf("poisson solve failed: %w", cgErr)
		return
	}
	sol = space2D.NewSolution(sp, x)
	return
}
