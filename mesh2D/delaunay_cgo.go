//go:build cgo
// +build cgo

package mesh2D

import (
	"github.com/pradeep-pyro/triangle"
)

/*
NewDelaunayTriMesh triangulates a scattered point set into a base mesh.
The triangulator does not guarantee an orientation, so each face is
flipped counterclockwise before the mesh is assembled.
*/
func NewDelaunayTriMesh(pts [][2]float64) (m *Mesh) {
	var (
		faces = triangle.Delaunay(pts)
		VX    = make([]float64, len(pts))
		VY    = make([]float64, len(pts))
		EToV  = make([][3]int, len(faces))
	)
	for i, pt := range pts {
		VX[i] = pt[0]
		VY[i] = pt[1]
	}
	for k, f := range faces {
		v0, v1, v2 := int(f[0]), int(f[1]), int(f[2])
		area := (VX[v1]-VX[v0])*(VY[v2]-VY[v0]) - (VX[v2]-VX[v0])*(VY[v1]-VY[v0])
		if area < 0 {
			v1, v2 = v2, v1
		}
		EToV[k] = [3]int{v0, v1, v2}
	}
	m = NewTriMesh(VX, VY, EToV)
	return
}
