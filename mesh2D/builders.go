package mesh2D

import "fmt"

/*
NewQuadMesh builds a base mesh from vertex coordinates VX, VY and quad
connectivity EToV. Vertices of each element must run counterclockwise.
*/
func NewQuadMesh(VX, VY []float64, EToV [][4]int) (m *Mesh) {
	if len(VX) != len(VY) {
		panic(fmt.Errorf("coordinate arrays differ in length: %d and %d", len(VX), len(VY)))
	}
	m = newEmptyMesh()
	for i := range VX {
		m.addVertex(VX[i], VY[i])
	}
	for k, ev := range EToV {
		checkOrientation(k, VX, VY, ev[:])
		m.addElement(Quad, [4]int{ev[0], ev[1], ev[2], ev[3]}, 0, -1)
	}
	return
}

// NewTriMesh builds a base mesh of triangles, counterclockwise.
func NewTriMesh(VX, VY []float64, EToV [][3]int) (m *Mesh) {
	if len(VX) != len(VY) {
		panic(fmt.Errorf("coordinate arrays differ in length: %d and %d", len(VX), len(VY)))
	}
	m = newEmptyMesh()
	for i := range VX {
		m.addVertex(VX[i], VY[i])
	}
	for k, ev := range EToV {
		checkOrientation(k, VX, VY, ev[:])
		m.addElement(Tri, [4]int{ev[0], ev[1], ev[2], -1}, 0, -1)
	}
	return
}

// NewUnitSquareQuads meshes the unit square with an N x N grid of quads.
func NewUnitSquareQuads(N int) (m *Mesh) {
	if N < 1 {
		panic(fmt.Errorf("grid dimension must be positive, have %d", N))
	}
	var (
		np   = N + 1
		h    = 1. / float64(N)
		VX   = make([]float64, np*np)
		VY   = make([]float64, np*np)
		EToV = make([][4]int, 0, N*N)
	)
	for j := 0; j < np; j++ {
		for i := 0; i < np; i++ {
			VX[j*np+i] = float64(i) * h
			VY[j*np+i] = float64(j) * h
		}
	}
	for j := 0; j < N; j++ {
		for i := 0; i < N; i++ {
			EToV = append(EToV, [4]int{
				j*np + i,
				j*np + i + 1,
				(j+1)*np + i + 1,
				(j+1)*np + i,
			})
		}
	}
	m = NewQuadMesh(VX, VY, EToV)
	return
}

func checkOrientation(k int, VX, VY []float64, verts []int) {
	var (
		area float64
		nv   = len(verts)
	)
	for n := 0; n < nv; n++ {
		i, j := verts[n], verts[(n+1)%nv]
		area += VX[i]*VY[j] - VX[j]*VY[i]
	}
	if area <= 0 {
		panic(fmt.Errorf("element %d has non positive area %g, vertices must be counterclockwise",
			k, 0.5*area))
	}
}
