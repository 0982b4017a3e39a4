package space2D

import (
	"fmt"

	"github.com/erick-santiago/hermes2d/utils"
)

/*
Solution pairs a space with a global coefficient vector. Constrained
and fixed shape functions resolve through the space's LinForms, so a
Solution is continuous across hanging nodes by construction.
*/
type Solution struct {
	SP *Space
	U  utils.Vector
}

func NewSolution(sp *Space, u []float64) (sol *Solution) {
	if len(u) != sp.NDof() {
		panic(fmt.Errorf("coefficient count %d does not match %d DOFs", len(u), sp.NDof()))
	}
	sol = &Solution{SP: sp, U: utils.NewVector(len(u), u)}
	return
}

// ElementCoeffs resolves the local basis coefficients of an active
// element, in the canonical shape order of its connectivity.
func (sol *Solution) ElementCoeffs(k int) (c []float64) {
	var (
		links = sol.SP.ElementConnectivity(k)
		u     = sol.U.Data()
	)
	c = make([]float64, len(links))
	for i := range links {
		c[i] = links[i].Resolve(u)
	}
	return
}

/*
EvalLocal evaluates the solution and its physical gradient at a
reference point of element k, reusing coefficients resolved by
ElementCoeffs so per element sweeps pay the constraint resolution once.
*/
func (sol *Solution) EvalLocal(k int, c []float64, xi, eta float64) (u, ux, uy float64) {
	var (
		links     = sol.SP.ElementConnectivity(k)
		em        = NewElementMap(sol.SP.M, k)
		dxi, deta float64
	)
	J, det := em.Jacobian(xi, eta)
	for i := range links {
		v, dv1, dv2 := EvalShape(em.Kind, links[i].Shape, xi, eta)
		u += c[i] * v
		dxi += c[i] * dv1
		deta += c[i] * dv2
	}
	ux, uy = PhysGrad(J, det, dxi, deta)
	return
}

// Eval is the one point convenience wrapper around ElementCoeffs and
// EvalLocal.
func (sol *Solution) Eval(k int, xi, eta float64) (u, ux, uy float64) {
	u, ux, uy = sol.EvalLocal(k, sol.ElementCoeffs(k), xi, eta)
	return
}
