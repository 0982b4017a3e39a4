package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConjugateGradient(t *testing.T) {
	// Tridiagonal SPD system with a known solution
	{
		var (
			n = 4
			A = NewDOK(n, n)
			x = []float64{1, 2, 3, 4}
			b = make([]float64, n)
		)
		for i := 0; i < n; i++ {
			A.Accumulate(i, i, 2)
			if i > 0 {
				A.Accumulate(i, i-1, -1)
				A.Accumulate(i-1, i, -1)
			}
		}
		C := A.ToCSR()
		copy(b, C.MulVec(x))
		got, iters, err := ConjugateGradient(C, b, 1.e-12, 100)
		assert.NoError(t, err)
		assert.LessOrEqual(t, iters, n+1)
		for i := range x {
			assert.InDelta(t, x[i], got[i], 1.e-9)
		}
	}
	// Zero right hand side short circuits
	{
		A := NewDOK(2, 2)
		A.Accumulate(0, 0, 1)
		A.Accumulate(1, 1, 1)
		got, iters, err := ConjugateGradient(A.ToCSR(), []float64{0, 0}, 1.e-12, 10)
		assert.NoError(t, err)
		assert.Equal(t, 0, iters)
		assert.Equal(t, []float64{0, 0}, got)
	}
	// Indefinite matrices are rejected
	{
		A := NewDOK(2, 2)
		A.Accumulate(0, 0, 1)
		A.Accumulate(1, 1, -1)
		_, _, err := ConjugateGradient(A.ToCSR(), []float64{1, 1}, 1.e-12, 10)
		assert.Error(t, err)
	}
	// Size mismatch
	{
		A := NewDOK(2, 2)
		A.Accumulate(0, 0, 1)
		A.Accumulate(1, 1, 1)
		assert.Panics(t, func() {
			_, _, _ = ConjugateGradient(A.ToCSR(), []float64{1, 1, 1}, 1.e-12, 10)
		})
	}
}
