package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

/*
ConjugateGradient solves A x = b for symmetric positive definite A,
starting from zero. Convergence is declared when the residual drops
below tol relative to the right hand side. The assembled Gram and
stiffness matrices this package's callers produce are SPD once the
constrained functions have been folded out, which is what CG needs.
*/
func ConjugateGradient(A CSR, b []float64, tol float64, maxIter int) (x []float64, iters int, err error) {
	var (
		n      = len(b)
		nr, nc = A.Dims()
	)
	if nr != n || nc != n {
		panic(fmt.Errorf("system size mismatch: matrix %dx%d, rhs %d", nr, nc, n))
	}
	x = make([]float64, n)
	if n == 0 {
		return
	}
	var (
		r     = make([]float64, n)
		p     = make([]float64, n)
		rs    float64
		bnorm float64
	)
	copy(r, b)
	copy(p, b)
	rs = floats.Dot(r, r)
	bnorm = math.Sqrt(rs)
	if bnorm == 0 {
		return
	}
	for iters = 0; iters < maxIter; iters++ {
		if math.Sqrt(rs) <= tol*bnorm {
			return
		}
		ap := A.MulVec(p)
		pap := floats.Dot(p, ap)
		if pap <= 0 {
			err = fmt.Errorf("matrix lost positive definiteness at iteration %d", iters)
			return
		}
		alpha := rs / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)
		rs2 := floats.Dot(r, r)
		beta := rs2 / rs
		rs = rs2
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
	}
	if math.Sqrt(rs) <= tol*bnorm {
		return
	}
	err = fmt.Errorf("no convergence after %d iterations, relative residual %g",
		maxIter, math.Sqrt(rs)/bnorm)
	return
}
