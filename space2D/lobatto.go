package space2D

import (
	"fmt"
	"math"
)

/*
One dimensional hierarchic basis on [-1,1] built from integrated
Legendre polynomials,

	l_0 = (1-x)/2
	l_1 = (1+x)/2
	l_k = (P_k - P_{k-2}) / sqrt(4k-2),   k >= 2

The two linear functions carry vertex values, the higher modes vanish
at both endpoints and carry edge values. Tensor products of these span
the quadrilateral element space, and the kernel form

	l_k = l_0 l_1 phi_{k-2}

supplies the polynomial kernels phi used to build triangle edge and
bubble functions.
*/

// legendreAll evaluates P_0..P_n with first and second derivatives.
func legendreAll(n int, x float64) (p, dp, ddp []float64) {
	p = make([]float64, n+1)
	dp = make([]float64, n+1)
	ddp = make([]float64, n+1)
	p[0] = 1
	if n == 0 {
		return
	}
	p[1] = x
	dp[1] = 1
	for k := 1; k < n; k++ {
		kf := float64(k)
		p[k+1] = ((2*kf+1)*x*p[k] - kf*p[k-1]) / (kf + 1)
		dp[k+1] = dp[k-1] + (2*kf+1)*p[k]
		ddp[k+1] = ddp[k-1] + (2*kf+1)*dp[k]
	}
	return
}

// LobattoAll evaluates l_0..l_pmax and derivatives at x.
func LobattoAll(pmax int, x float64) (l, dl []float64) {
	if pmax < 1 {
		panic(fmt.Errorf("lobatto basis needs order >= 1, have %d", pmax))
	}
	l = make([]float64, pmax+1)
	dl = make([]float64, pmax+1)
	l[0], dl[0] = 0.5*(1-x), -0.5
	l[1], dl[1] = 0.5*(1+x), 0.5
	if pmax == 1 {
		return
	}
	p, dp, _ := legendreAll(pmax, x)
	for k := 2; k <= pmax; k++ {
		den := math.Sqrt(float64(4*k - 2))
		l[k] = (p[k] - p[k-2]) / den
		dl[k] = (dp[k] - dp[k-2]) / den
	}
	return
}

// Lobatto evaluates the single function l_k and its derivative.
func Lobatto(k int, x float64) (val, der float64) {
	l, dl := LobattoAll(max(k, 1), x)
	val, der = l[k], dl[k]
	return
}

/*
LobattoKernelAll evaluates the kernels phi_0..phi_m and derivatives,
using the closed form

	phi_{k-2} = -4 (2k-1) / (k (k-1) sqrt(4k-2)) * P'_{k-1}

which stays finite at the endpoints where the direct quotient
l_k / (l_0 l_1) degenerates.
*/
func LobattoKernelAll(m int, x float64) (phi, dphi []float64) {
	phi = make([]float64, m+1)
	dphi = make([]float64, m+1)
	_, dp, ddp := legendreAll(m+1, x)
	for i := 0; i <= m; i++ {
		k := float64(i + 2)
		c := -4 * (2*k - 1) / (k * (k - 1) * math.Sqrt(4*k-2))
		phi[i] = c * dp[i+1]
		dphi[i] = c * ddp[i+1]
	}
	return
}
