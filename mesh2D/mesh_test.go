package mesh2D

import (
	"testing"

	"github.com/erick-santiago/hermes2d/types"
	"github.com/stretchr/testify/assert"
)

// two unit quads side by side sharing edge (1,4)
func twoQuads() (m *Mesh) {
	var (
		VX   = []float64{0, 1, 2, 0, 1, 2}
		VY   = []float64{0, 0, 0, 1, 1, 1}
		EToV = [][4]int{{0, 1, 4, 3}, {1, 2, 5, 4}}
	)
	m = NewQuadMesh(VX, VY, EToV)
	return
}

func TestRefinement(t *testing.T) {
	{ // A single square refined isotropically yields four active children
		m := NewUnitSquareQuads(1)
		assert.Equal(t, 1, m.NActive)
		assert.NoError(t, m.RefineElement(0, RefIso))
		assert.Equal(t, 4, m.NActive)
		assert.False(t, m.Elements[0].Active)
		assert.Equal(t, 4, m.Elements[0].NChildren)
		for _, c := range m.Elements[0].Children {
			el := m.El(c)
			assert.True(t, el.Active)
			assert.Equal(t, 1, el.Level)
			assert.Equal(t, 0, el.Parent)
		}
		// four corners, four edge midpoints, one center
		assert.Equal(t, 9, m.NumVerts())
	}
	{ // Horizontal split stacks two children bottom and top
		m := NewUnitSquareQuads(1)
		assert.NoError(t, m.RefineElement(0, RefHorz))
		assert.Equal(t, 2, m.NActive)
		bottom := m.El(m.Elements[0].Children[0])
		top := m.El(m.Elements[0].Children[1])
		for _, v := range bottom.Verts {
			assert.LessOrEqual(t, m.Verts[v].Y, 0.5)
		}
		for _, v := range top.Verts {
			assert.GreaterOrEqual(t, m.Verts[v].Y, 0.5)
		}
	}
	{ // Vertical split places two children left and right
		m := NewUnitSquareQuads(1)
		assert.NoError(t, m.RefineElement(0, RefVert))
		left := m.El(m.Elements[0].Children[0])
		right := m.El(m.Elements[0].Children[1])
		for _, v := range left.Verts {
			assert.LessOrEqual(t, m.Verts[v].X, 0.5)
		}
		for _, v := range right.Verts {
			assert.GreaterOrEqual(t, m.Verts[v].X, 0.5)
		}
	}
	{ // Triangles refine red, into four
		m := NewTriMesh([]float64{0, 1, 0}, []float64{0, 0, 1}, [][3]int{{0, 1, 2}})
		assert.NoError(t, m.RefineElement(0, RefIso))
		assert.Equal(t, 4, m.NActive)
		assert.Equal(t, 6, m.NumVerts())
		assert.Panics(t, func() {
			_ = m.RefineElement(m.Elements[0].Children[0], RefHorz)
		})
	}
	{ // Refining an element twice is a programming error
		m := NewUnitSquareQuads(1)
		assert.NoError(t, m.RefineElement(0, RefIso))
		assert.Panics(t, func() { _ = m.RefineElement(0, RefIso) })
	}
	{ // The depth cap surfaces as an error, not a panic
		m := NewUnitSquareQuads(1)
		id := 0
		for i := 0; i < MaxRefinementLevel; i++ {
			assert.NoError(t, m.RefineElement(id, RefIso))
			id = m.El(id).Children[0]
		}
		assert.Error(t, m.RefineElement(id, RefIso))
	}
	{ // Clockwise input is rejected
		assert.Panics(t, func() {
			NewQuadMesh([]float64{0, 0, 1, 1}, []float64{0, 1, 1, 0},
				[][4]int{{0, 1, 2, 3}})
		})
	}
}

func TestHangingNodes(t *testing.T) {
	{ // Bound 1 tolerates a single hanging vertex, nothing is forced
		m := twoQuads()
		assert.NoError(t, m.RefineElement(0, RefIso))
		forced, err := m.Regularize(1)
		assert.NoError(t, err)
		assert.Empty(t, forced)
		_, ok := m.MidVertex(1, 4)
		assert.True(t, ok)
		assert.Equal(t, 1, m.SubdivisionDepth(1, 4))
		assert.True(t, m.El(1).Active)
	}
	{ // Bound 0 forces the unsplit neighbor, removing all hanging vertices
		m := twoQuads()
		assert.NoError(t, m.RefineElement(0, RefIso))
		forced, err := m.Regularize(0)
		assert.NoError(t, err)
		assert.Equal(t, []int{1}, forced)
		assert.False(t, m.El(1).Active)
		for _, id := range m.ActiveElements() {
			el := m.El(id)
			for n := 0; n < el.NVerts(); n++ {
				ev := el.EdgeVerts(n)
				assert.Equal(t, 0, m.SubdivisionDepth(ev[0], ev[1]))
			}
		}
	}
	{ // Unrestricted bound never forces refinement
		m := twoQuads()
		assert.NoError(t, m.RefineElement(0, RefIso))
		assert.NoError(t, m.RefineElement(m.El(0).Children[1], RefIso))
		forced, err := m.Regularize(-1)
		assert.NoError(t, err)
		assert.Empty(t, forced)
		assert.Equal(t, 2, m.SubdivisionDepth(1, 4))
	}
	{ // A two level hanging chain under bound 1 forces one split
		m := twoQuads()
		assert.NoError(t, m.RefineElement(0, RefIso))
		assert.NoError(t, m.RefineElement(m.El(0).Children[1], RefIso))
		forced, err := m.Regularize(1)
		assert.NoError(t, err)
		assert.Equal(t, []int{1}, forced)
		for _, id := range m.ActiveElements() {
			el := m.El(id)
			for n := 0; n < el.NVerts(); n++ {
				ev := el.EdgeVerts(n)
				assert.LessOrEqual(t, m.SubdivisionDepth(ev[0], ev[1]), 1)
			}
		}
	}
}

func TestMeshCopy(t *testing.T) {
	{ // Ids survive the copy and the copies evolve independently
		m := twoQuads()
		assert.NoError(t, m.RefineElement(0, RefIso))
		mc := m.Copy()
		assert.Equal(t, m.NumElements(), mc.NumElements())
		assert.NoError(t, mc.RefineAllElements())
		assert.Equal(t, 5, m.NActive)
		assert.Equal(t, 20, mc.NActive)
		// the coarse leaves are exactly the parents of the copy's leaves
		for _, id := range m.ActiveElements() {
			assert.False(t, mc.El(id).Active)
			assert.Equal(t, 4, mc.El(id).NChildren)
		}
	}
}

func TestBoundaryMarkers(t *testing.T) {
	{ // Split boundary edges inherit the parent marker
		m := NewUnitSquareQuads(1)
		m.MarkOuterBoundary(types.BC_Dirichlet)
		assert.NoError(t, m.RefineElement(0, RefIso))
		mid, ok := m.MidVertex(0, 1)
		assert.True(t, ok)
		assert.Equal(t, types.BC_Dirichlet, m.BCFlag(0, mid))
		assert.Equal(t, types.BC_Dirichlet, m.BCFlag(mid, 1))
		// interior spokes stay unmarked
		ctr := 8
		assert.Equal(t, types.BC_None, m.BCFlag(mid, ctr))
	}
}
