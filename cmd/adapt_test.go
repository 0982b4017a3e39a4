package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Each case's source must be the negative Laplacian of its exact
// solution; check by central differences at points off the symmetry
// lines where both are nonzero.
func TestAdaptCases(t *testing.T) {
	const h = 1.e-4
	pts := [][2]float64{{0.3, 0.45}, {0.7, 0.2}, {0.55, 0.8}}
	for _, c := range []CaseType{C_SinSin, C_Layer} {
		exact, source := adaptCase(c)
		u := func(x, y float64) float64 {
			v, _, _ := exact(x, y)
			return v
		}
		for _, pt := range pts {
			x, y := pt[0], pt[1]
			lap := (u(x+h, y) + u(x-h, y) + u(x, y+h) + u(x, y-h) - 4*u(x, y)) / (h * h)
			assert.InEpsilon(t, source(x, y), -lap, 1.e-3)
			// the advertised gradient matches the values too
			_, ux, uy := exact(x, y)
			assert.InEpsilon(t, ux, (u(x+h, y)-u(x-h, y))/(2*h), 1.e-3)
			assert.InEpsilon(t, uy, (u(x, y+h)-u(x, y-h))/(2*h), 1.e-3)
		}
	}
}
