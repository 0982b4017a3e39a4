package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix(t *testing.T) {
	// Transpose
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		mNr, mNc := M.Dims()
		A := M.Transpose()
		aNr, aNc := A.Dims()
		assert.Equal(t, aNc, mNr)
		assert.Equal(t, aNr, mNc)
		assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, A.Data())
	}
	// Mul
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		A := M.Mul(M.Transpose())
		assert.Equal(t, NewMatrix(2, 2, []float64{
			14, 32,
			32, 77,
		}).Data(), A.Data())
	}
	// Row copies, it does not alias
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		r := M.Row(1)
		assert.Equal(t, []float64{4, 5, 6}, r.Data())
		r.Set(0)
		assert.Equal(t, 4., M.At(1, 0))
	}
	// Chained in-place ops mutate the receiver
	{
		A := NewMatrix(2, 2, []float64{
			1, 2,
			3, 4,
		})
		B := NewMatrix(2, 2, []float64{
			1, 1,
			1, 1,
		})
		A.Add(B).Scale(2)
		assert.Equal(t, []float64{4, 6, 8, 10}, A.Data())
		C := A.Copy()
		C.Set(0, 0, -1)
		assert.Equal(t, 4., A.At(0, 0))
	}
	// SetReadOnly guards writes
	{
		A := NewMatrix(2, 2)
		A.SetReadOnly("A")
		assert.Panics(t, func() { A.Set(0, 0, 1) })
		assert.Panics(t, func() { A.Scale(2) })
	}
	// Bad allocation
	{
		assert.Panics(t, func() { NewMatrix(2, 2, []float64{1, 2, 3}) })
	}
}

func TestMatrixSolve(t *testing.T) {
	// LUSolve on a nonsymmetric system
	{
		A := NewMatrix(2, 2, []float64{
			2, 1,
			4, 1,
		})
		b := NewMatrix(2, 1, []float64{4, 6})
		X := A.LUSolve(b)
		assert.InDelta(t, 1., X.At(0, 0), 1.e-12)
		assert.InDelta(t, 2., X.At(1, 0), 1.e-12)
	}
	// CholSolve on an SPD system
	{
		A := NewMatrix(3, 3, []float64{
			4, 1, 0,
			1, 3, 1,
			0, 1, 2,
		})
		b := NewMatrix(3, 1, []float64{3, 0, 3})
		X := A.CholSolve(b)
		assert.InDelta(t, 1., X.At(0, 0), 1.e-12)
		assert.InDelta(t, -1., X.At(1, 0), 1.e-12)
		assert.InDelta(t, 2., X.At(2, 0), 1.e-12)
	}
	// CholSolve falls back to LU when the factorization fails
	{
		A := NewMatrix(2, 2, []float64{
			0, 1,
			1, 0,
		})
		b := NewMatrix(2, 1, []float64{1, 2})
		X := A.CholSolve(b)
		assert.InDelta(t, 2., X.At(0, 0), 1.e-12)
		assert.InDelta(t, 1., X.At(1, 0), 1.e-12)
	}
}
