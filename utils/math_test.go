package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMathHelpers(t *testing.T) {
	// ConstArray
	{
		v := ConstArray(3, 2.5)
		assert.Equal(t, []float64{2.5, 2.5, 2.5}, v)
	}
	// NewSymTriDiagonal
	{
		J := NewSymTriDiagonal([]float64{2, 2, 2}, []float64{-1, -1})
		assert.Equal(t, 2., J.At(1, 1))
		assert.Equal(t, -1., J.At(0, 1))
		assert.Equal(t, -1., J.At(1, 0))
		assert.Equal(t, 0., J.At(0, 2))
		assert.Panics(t, func() { NewSymTriDiagonal([]float64{1, 2}, []float64{1, 2}) })
	}
}
