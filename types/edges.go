package types

import (
	"fmt"
	"math"
)

/*
EdgeKey is an always positive number that stores an edge's vertices as indices in a way that can be compared
An edge between vertices [4] and [0] will always be stored as [0,4], in the ascending order of the index values

The key is the lookup handle for everything attached to an edge during
adaptation: the midpoint vertex created when a neighboring element is
split, and the neighbor element on the far side.
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// This packs two index coordinates into two 32 bit unsigned integers to act as a hash and an indirect access method
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(i1 + i2<<32)
	return
}

func (ek EdgeKey) GetVertices(rev bool) (verts [2]int) {
	var (
		enTmp EdgeKey
	)
	enTmp = ek >> 32
	verts[1] = int(enTmp)
	verts[0] = int(ek - enTmp*(1<<32))
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

/*
An EdgeInt stores the edge vertices in the original traversal order, so
that the edge can be recovered together with its direction. Element
edges are stored directed (counterclockwise around the element), and the
sign records whether the canonical ascending order reversed them.
*/
type EdgeInt int64

func NewEdgeInt(verts [2]int) (packed EdgeInt) {
	// This packs two index coordinates into two 31 bit unsigned integers to act as a hash and an indirect access method
	var (
		limit = math.MaxUint32 >> 1 // leaves room for the sign bit of an int64
		sign  bool
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into an int64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		sign = true
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeInt(i1 + i2<<32)
	if sign {
		packed = -packed
	}
	return
}

func (e EdgeInt) GetVertices() (verts [2]int) {
	var (
		eTmp EdgeInt
		sign bool
	)
	if e < 0 {
		sign = true
		e = -e
	}
	eTmp = e >> 32
	verts[1] = int(eTmp)
	verts[0] = int(e - eTmp*(1<<32))
	if sign {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

func (e EdgeInt) GetKey() (ek EdgeKey) {
	ek = NewEdgeKey(e.GetVertices())
	return
}
