package space2D

import (
	"math"
	"sync"

	"github.com/erick-santiago/hermes2d/utils"
	"gonum.org/v1/gonum/mat"
)

/*
Gauss quadrature rules for the reference square and triangle. The one
dimensional nodes come from the eigenvalues of the symmetric
tridiagonal Jacobi matrix; the triangle rule collapses the square
through the Duffy map, using a Jacobi (1,0) rule in the second
coordinate so the collapse Jacobian is integrated exactly.
*/

// JacobiGQ computes the N+1 point Gauss quadrature for the Jacobi
// weight (1-x)^alpha (1+x)^beta.
func JacobiGQ(alpha, beta float64, N int) (X, W utils.Vector) {
	var (
		x          []float64
		fac        float64
		h1, d0, d1 []float64
		VVr        *mat.Dense
	)
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w := []float64{2.}
		return utils.NewVector(len(x), x), utils.NewVector(len(w), w)
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal
	d0 = make([]float64, N+1)
	fac = -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	// first upper diagonal
	var ip1 float64
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
	}

	JJ := utils.NewSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	ok := eig.Factorize(JJ, true)
	if !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(x)
	X = utils.NewVector(N+1, x)

	VVr = mat.NewDense(len(x), len(x), nil)
	eig.VectorsTo(VVr)
	W = utils.NewVector(len(x), VVr.RawRowView(0)).
		Apply(func(v float64) float64 { return v * v }).
		Scale(gamma0(alpha, beta))
	return X, W
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

// GaussLegendre returns the n point rule exact through degree 2n-1.
func GaussLegendre(n int) (x, w []float64) {
	X, W := JacobiGQ(0, 0, n-1)
	x, w = X.Data(), W.Data()
	return
}

// QR is a quadrature rule over a reference element.
type QR struct {
	Xi, Eta, W []float64
}

func (q QR) Len() int { return len(q.W) }

type ruleKey struct {
	tri   bool
	order int
}

var (
	ruleMu    sync.Mutex
	ruleCache = make(map[ruleKey]QR)
)

// SquareRule integrates polynomials of the given total degree exactly
// on [-1,1]^2. Rules are cached; the cache is safe for the parallel
// element sweeps of the estimator and selector.
func SquareRule(order int) (q QR) {
	var (
		key = ruleKey{false, order}
		ok  bool
	)
	ruleMu.Lock()
	defer ruleMu.Unlock()
	if q, ok = ruleCache[key]; ok {
		return
	}
	n := order/2 + 1
	x, w := GaussLegendre(n)
	q = QR{
		Xi:  make([]float64, n*n),
		Eta: make([]float64, n*n),
		W:   make([]float64, n*n),
	}
	var iter int
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			q.Xi[iter] = x[i]
			q.Eta[iter] = x[j]
			q.W[iter] = w[i] * w[j]
			iter++
		}
	}
	ruleCache[key] = q
	return
}

/*
TriRule integrates polynomials of the given total degree exactly on the
reference triangle (-1,-1), (1,-1), (-1,1) via the Duffy collapse

	xi  = (1+a)(1-b)/2 - 1
	eta = b

with the collapse Jacobian (1-b)/2 folded into the (1,0) Jacobi weights.
*/
func TriRule(order int) (q QR) {
	var (
		key = ruleKey{true, order}
		ok  bool
	)
	ruleMu.Lock()
	defer ruleMu.Unlock()
	if q, ok = ruleCache[key]; ok {
		return
	}
	n := order/2 + 2
	a, wa := GaussLegendre(n)
	B, WB := JacobiGQ(1, 0, n-1)
	b, wb := B.Data(), WB.Data()
	q = QR{
		Xi:  make([]float64, n*n),
		Eta: make([]float64, n*n),
		W:   make([]float64, n*n),
	}
	var iter int
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			q.Xi[iter] = 0.5*(1+a[i])*(1-b[j]) - 1
			q.Eta[iter] = b[j]
			q.W[iter] = 0.5 * wa[i] * wb[j]
			iter++
		}
	}
	ruleCache[key] = q
	return
}

// EdgeRule is the n point Gauss rule on [-1,1] for edge traces.
func EdgeRule(order int) (x, w []float64) {
	x, w = GaussLegendre(order/2 + 1)
	return
}
