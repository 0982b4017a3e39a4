package adapt2D

import (
	"math"
	"testing"

	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/space2D"
	"github.com/stretchr/testify/assert"
)

func TestAdaptiveLoop(t *testing.T) {
	// steep interior layer along x + y = 1, the classic hp testbed
	layer := func(x, y float64) (u, ux, uy float64) {
		s := 60 * (x + y - 1)
		u = math.Atan(s)
		d := 60 / (1 + s*s)
		return u, d, d
	}
	{ // the estimate falls and the space grows, iteration after iteration
		var (
			m  = mesh2D.NewUnitSquareQuads(2)
			sp = space2D.NewSpace(m, 1)
			p  = DefaultLoopParams()
		)
		p.MaxIter = 4
		p.ErrStop = 1.e-6
		p.NDofStop = 20000
		lp := NewLoop([]*space2D.Space{sp}, ExactSolver{F: layer}, p)
		history, err := lp.Run()
		assert.NoError(t, err)
		assert.NotEmpty(t, history)
		for i, rec := range history {
			assert.Equal(t, i+1, rec.Iter)
			assert.Greater(t, rec.ErrEst, 0.)
			assert.Greater(t, rec.NDof, 0)
			if i > 0 {
				assert.GreaterOrEqual(t, rec.NDof, history[i-1].NDof)
			}
			if i < len(history)-1 {
				assert.Greater(t, rec.Refined, 0)
			}
		}
		first, last := history[0], history[len(history)-1]
		assert.Greater(t, last.NDof, first.NDof)
		assert.Less(t, last.ErrEst, first.ErrEst)
	}
	{ // a generous stopping bound ends the loop on the first pass
		var (
			m  = mesh2D.NewUnitSquareQuads(2)
			sp = space2D.NewSpace(m, 1)
			p  = DefaultLoopParams()
		)
		p.ErrStop = 1000
		history, err := AdaptToExactFunction([]*space2D.Space{sp}, layer, p)
		assert.NoError(t, err)
		assert.Len(t, history, 1)
		assert.Equal(t, 0, history[0].Refined)
	}
	{ // two components sharing a mesh adapt it together
		var (
			m   = mesh2D.NewUnitSquareQuads(2)
			sp1 = space2D.NewSpace(m, 1)
			sp2 = space2D.NewSpace(m, 1)
			p   = DefaultLoopParams()
		)
		p.MaxIter = 2
		p.ErrStop = 1.e-6
		lp := NewLoop([]*space2D.Space{sp1, sp2}, ExactSolver{F: layer}, p)
		history, err := lp.Run()
		assert.NoError(t, err)
		assert.NotEmpty(t, history)
		// both spaces live on the one mesh and stayed consistent with it
		assert.Equal(t, sp1.M, sp2.M)
		for _, k := range m.ActiveElements() {
			sp1.ElementConnectivity(k)
			sp2.ElementConnectivity(k)
		}
	}
	{ // a loop needs something to drive
		assert.Panics(t, func() { NewLoop(nil, ExactSolver{}, DefaultLoopParams()) })
	}
}
