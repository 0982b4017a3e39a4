package space2D

import (
	"fmt"

	"github.com/erick-santiago/hermes2d/mesh2D"
)

/*
Hierarchic H1 shape functions. Quads carry the tensor product of the
one dimensional Lobatto basis, triangles the barycentric construction
with Lobatto kernels. Edge functions of odd degree change sign under
reversal of the edge parameter, so every edge function is oriented by
the global ascending-vertex-id direction of its edge; Flip records that
the element traverses the edge against that direction.
*/

type ShapeType uint

const (
	SVertex ShapeType = iota
	SEdge
	SBubble
)

var ShapeTypePrintNames = []string{"Vertex", "Edge", "Bubble"}

func (st ShapeType) Print() (txt string) {
	txt = ShapeTypePrintNames[st]
	return
}

type ShapeFn struct {
	Type ShapeType
	Node int  // vertex index or edge index within the element
	K    int  // edge function degree, >= 2
	I, J int  // bubble degrees: tensor degrees on quads, kernel indices on tris
	Flip bool // element traverses the edge against its global orientation
}

/*
ElementShapes enumerates the local basis in the canonical order:
vertex functions, then edge functions per edge in ascending degree,
then bubbles. edgeDeg[n] is the polynomial degree carried by edge n
(degree 1 contributes no edge functions), flips[n] its orientation.
*/
func ElementShapes(kind mesh2D.ElementKind, px, py int, edgeDeg [4]int, flips [4]bool) (shapes []ShapeFn) {
	var (
		nv = 4
	)
	if kind == mesh2D.Tri {
		nv = 3
	}
	for n := 0; n < nv; n++ {
		shapes = append(shapes, ShapeFn{Type: SVertex, Node: n})
	}
	for n := 0; n < nv; n++ {
		for k := 2; k <= edgeDeg[n]; k++ {
			shapes = append(shapes, ShapeFn{Type: SEdge, Node: n, K: k, Flip: flips[n]})
		}
	}
	if kind == mesh2D.Quad {
		for i := 2; i <= px; i++ {
			for j := 2; j <= py; j++ {
				shapes = append(shapes, ShapeFn{Type: SBubble, I: i, J: j})
			}
		}
	} else {
		p := px
		for i := 0; i <= p-3; i++ {
			for j := 0; i+j <= p-3; j++ {
				shapes = append(shapes, ShapeFn{Type: SBubble, I: i, J: j})
			}
		}
	}
	return
}

// NumShapes counts the local basis without materializing it.
func NumShapes(kind mesh2D.ElementKind, px, py int, edgeDeg [4]int) (ns int) {
	if kind == mesh2D.Quad {
		ns = 4 + (px-1)*(py-1)
		for n := 0; n < 4; n++ {
			ns += edgeDeg[n] - 1
		}
		return
	}
	p := px
	ns = 3 + (p-1)*(p-2)/2
	for n := 0; n < 3; n++ {
		ns += edgeDeg[n] - 1
	}
	return
}

// EvalShape computes value and reference gradient of one shape function.
func EvalShape(kind mesh2D.ElementKind, s ShapeFn, xi, eta float64) (val, dxi, deta float64) {
	if kind == mesh2D.Tri {
		val, dxi, deta = evalTriShape(s, xi, eta)
		return
	}
	val, dxi, deta = evalQuadShape(s, xi, eta)
	return
}

var quadVertIdx = [4][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

func evalQuadShape(s ShapeFn, xi, eta float64) (val, dxi, deta float64) {
	var (
		pmax    = max(s.I, max(s.J, 1))
		lx, dlx = LobattoAll(pmax, xi)
		ly, dly = LobattoAll(pmax, eta)
		lk, dlk float64
		sgn     = 1.0
	)
	switch s.Type {
	case SVertex:
		ix, iy := quadVertIdx[s.Node][0], quadVertIdx[s.Node][1]
		val = lx[ix] * ly[iy]
		dxi = dlx[ix] * ly[iy]
		deta = lx[ix] * dly[iy]
	case SEdge:
		// traversal runs -xi on edge 2 and -eta on edge 3
		if s.Flip {
			sgn = -1
		}
		if s.Node >= 2 {
			sgn = -sgn
		}
		switch s.Node {
		case 0, 2:
			iy := 0
			if s.Node == 2 {
				iy = 1
			}
			lk, dlk = Lobatto(s.K, sgn*xi)
			val = lk * ly[iy]
			dxi = sgn * dlk * ly[iy]
			deta = lk * dly[iy]
		case 1, 3:
			ix := 1
			if s.Node == 3 {
				ix = 0
			}
			lk, dlk = Lobatto(s.K, sgn*eta)
			val = lx[ix] * lk
			dxi = dlx[ix] * lk
			deta = lx[ix] * sgn * dlk
		}
	case SBubble:
		val = lx[s.I] * ly[s.J]
		dxi = dlx[s.I] * ly[s.J]
		deta = lx[s.I] * dly[s.J]
	default:
		panic(fmt.Errorf("unknown shape type %d", s.Type))
	}
	return
}

// barycentric gradients on the reference triangle
var (
	triDLxi  = [3]float64{-0.5, 0.5, 0}
	triDLeta = [3]float64{-0.5, 0, 0.5}
)

func evalTriShape(s ShapeFn, xi, eta float64) (val, dxi, deta float64) {
	var (
		l0, l1, l2 = baryTri(xi, eta)
		l          = [3]float64{l0, l1, l2}
	)
	switch s.Type {
	case SVertex:
		val = l[s.Node]
		dxi = triDLxi[s.Node]
		deta = triDLeta[s.Node]
	case SEdge:
		a, b := s.Node, (s.Node+1)%3
		if s.Flip {
			a, b = b, a
		}
		phi, dphi := LobattoKernel(s.K-2, l[b]-l[a])
		dxXi := triDLxi[b] - triDLxi[a]
		dxEta := triDLeta[b] - triDLeta[a]
		val = l[a] * l[b] * phi
		dxi = triDLxi[a]*l[b]*phi + l[a]*triDLxi[b]*phi + l[a]*l[b]*dphi*dxXi
		deta = triDLeta[a]*l[b]*phi + l[a]*triDLeta[b]*phi + l[a]*l[b]*dphi*dxEta
	case SBubble:
		x1, x2 := l1-l0, l2-l0
		pI, dpI := LobattoKernel(s.I, x1)
		pJ, dpJ := LobattoKernel(s.J, x2)
		// d(x1)/dxi = 1, d(x1)/deta = 0.5, d(x2)/dxi = 0.5, d(x2)/deta = 1
		val = l0 * l1 * l2 * pI * pJ
		dxi = -0.5*l1*l2*pI*pJ + 0.5*l0*l2*pI*pJ +
			l0*l1*l2*(dpI*pJ+0.5*pI*dpJ)
		deta = -0.5*l1*l2*pI*pJ + 0.5*l0*l1*pI*pJ +
			l0*l1*l2*(0.5*dpI*pJ+pI*dpJ)
	default:
		panic(fmt.Errorf("unknown shape type %d", s.Type))
	}
	return
}

// LobattoKernel evaluates the single kernel phi_m and its derivative.
func LobattoKernel(m int, x float64) (val, der float64) {
	phi, dphi := LobattoKernelAll(m, x)
	val, der = phi[m], dphi[m]
	return
}
