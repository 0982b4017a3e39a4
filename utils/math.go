package utils

import (
	"gonum.org/v1/gonum/mat"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

/*
NewSymTriDiagonal builds the symmetric tridiagonal matrix with main
diagonal d and first off diagonal e, len(e) = len(d)-1. Used to form the
Jacobi matrix whose eigenvalues are Gauss quadrature nodes.
*/
func NewSymTriDiagonal(d, e []float64) (J *mat.SymBandDense) {
	var (
		n = len(d)
	)
	if len(e) != n-1 {
		panic("off diagonal length must be one less than the diagonal")
	}
	// SymBandDense stores rows of [diagonal, super] pairs
	data := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		data[2*i] = d[i]
		if i < n-1 {
			data[2*i+1] = e[i]
		}
	}
	J = mat.NewSymBandDense(n, 1, data)
	return
}
