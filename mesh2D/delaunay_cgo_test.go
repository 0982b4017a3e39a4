//go:build cgo

package mesh2D

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelaunayTriMesh(t *testing.T) {
	{ // square with a center point: 2n-h-2 = 4 triangles, any triangulation
		pts := [][2]float64{
			{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5},
		}
		m := NewDelaunayTriMesh(pts)
		assert.Len(t, m.ActiveElements(), 4)
		for _, k := range m.ActiveElements() {
			assert.Equal(t, Tri, m.El(k).Kind)
		}
	}
	{ // the triangulated base refines like any other mesh
		pts := [][2]float64{
			{0, 0}, {2, 0}, {2, 2}, {0, 2}, {1, 0.5}, {0.5, 1.2},
		}
		m := NewDelaunayTriMesh(pts)
		before := len(m.ActiveElements())
		assert.Equal(t, 2*len(pts)-4-2, before)
		assert.NoError(t, m.RefineAllElements())
		assert.Len(t, m.ActiveElements(), 4*before)
	}
}
