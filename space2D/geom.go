package space2D

import (
	"fmt"

	"github.com/erick-santiago/hermes2d/mesh2D"
)

/*
Reference domains: the square [-1,1]^2 for quads with the bilinear
corner map, and the triangle (-1,-1), (1,-1), (-1,1) with the affine
barycentric map. Gradients computed in reference coordinates are pushed
to physical space through the inverse Jacobian transpose.
*/

type ElementMap struct {
	Kind   mesh2D.ElementKind
	XS, YS [4]float64
}

func NewElementMap(m *mesh2D.Mesh, k int) (em ElementMap) {
	var (
		el = m.El(k)
		nv = el.NVerts()
	)
	em.Kind = el.Kind
	for n := 0; n < nv; n++ {
		v := m.Verts[el.Verts[n]]
		em.XS[n], em.YS[n] = v.X, v.Y
	}
	return
}

// At maps a reference point to physical coordinates.
func (em ElementMap) At(xi, eta float64) (x, y float64) {
	if em.Kind == mesh2D.Tri {
		l0, l1, l2 := baryTri(xi, eta)
		x = l0*em.XS[0] + l1*em.XS[1] + l2*em.XS[2]
		y = l0*em.YS[0] + l1*em.YS[1] + l2*em.YS[2]
		return
	}
	n0 := 0.25 * (1 - xi) * (1 - eta)
	n1 := 0.25 * (1 + xi) * (1 - eta)
	n2 := 0.25 * (1 + xi) * (1 + eta)
	n3 := 0.25 * (1 - xi) * (1 + eta)
	x = n0*em.XS[0] + n1*em.XS[1] + n2*em.XS[2] + n3*em.XS[3]
	y = n0*em.YS[0] + n1*em.YS[1] + n2*em.YS[2] + n3*em.YS[3]
	return
}

/*
Jacobian returns [dx/dxi, dx/deta, dy/dxi, dy/deta] and its
determinant at a reference point. A non positive determinant means the
element is inverted or degenerate, a programming error upstream.
*/
func (em ElementMap) Jacobian(xi, eta float64) (J [4]float64, det float64) {
	if em.Kind == mesh2D.Tri {
		J[0] = 0.5 * (em.XS[1] - em.XS[0])
		J[1] = 0.5 * (em.XS[2] - em.XS[0])
		J[2] = 0.5 * (em.YS[1] - em.YS[0])
		J[3] = 0.5 * (em.YS[2] - em.YS[0])
	} else {
		J[0] = 0.25 * ((1-eta)*(em.XS[1]-em.XS[0]) + (1+eta)*(em.XS[2]-em.XS[3]))
		J[1] = 0.25 * ((1-xi)*(em.XS[3]-em.XS[0]) + (1+xi)*(em.XS[2]-em.XS[1]))
		J[2] = 0.25 * ((1-eta)*(em.YS[1]-em.YS[0]) + (1+eta)*(em.YS[2]-em.YS[3]))
		J[3] = 0.25 * ((1-xi)*(em.YS[3]-em.YS[0]) + (1+xi)*(em.YS[2]-em.YS[1]))
	}
	det = J[0]*J[3] - J[1]*J[2]
	if det <= 0 {
		panic(fmt.Errorf("non positive jacobian %g", det))
	}
	return
}

// PhysGrad pushes a reference gradient to physical space.
func PhysGrad(J [4]float64, det, dxi, deta float64) (dx, dy float64) {
	dx = (J[3]*dxi - J[2]*deta) / det
	dy = (-J[1]*dxi + J[0]*deta) / det
	return
}

func baryTri(xi, eta float64) (l0, l1, l2 float64) {
	l1 = 0.5 * (1 + xi)
	l2 = 0.5 * (1 + eta)
	l0 = 1 - l1 - l2
	return
}

/*
SubTransform is the affine map from a child's reference coordinates to
its parent's, xi_p = A[0] xi + A[1] eta + B[0] and
eta_p = A[2] xi + A[3] eta + B[1]. Composing these lets a solution
stored on a coarse element be evaluated on any descendant of it in a
refined copy of the mesh.
*/
type SubTransform struct {
	A [4]float64
	B [2]float64
}

func IdentityTransform() (t SubTransform) {
	t.A[0], t.A[3] = 1, 1
	return
}

func (t SubTransform) At(xi, eta float64) (xip, etap float64) {
	xip = t.A[0]*xi + t.A[1]*eta + t.B[0]
	etap = t.A[2]*xi + t.A[3]*eta + t.B[1]
	return
}

// Compose returns the transform applying t first, then outer.
func (t SubTransform) Compose(outer SubTransform) (r SubTransform) {
	r.A[0] = outer.A[0]*t.A[0] + outer.A[1]*t.A[2]
	r.A[1] = outer.A[0]*t.A[1] + outer.A[1]*t.A[3]
	r.A[2] = outer.A[2]*t.A[0] + outer.A[3]*t.A[2]
	r.A[3] = outer.A[2]*t.A[1] + outer.A[3]*t.A[3]
	r.B[0] = outer.A[0]*t.B[0] + outer.A[1]*t.B[1] + outer.B[0]
	r.B[1] = outer.A[2]*t.B[0] + outer.A[3]*t.B[1] + outer.B[1]
	return
}

func diag(sx, sy, ox, oy float64) (t SubTransform) {
	t.A[0], t.A[3] = sx, sy
	t.B[0], t.B[1] = ox, oy
	return
}

// ChildTransform gives the map from son's reference element into the
// parent's for the given element kind and split mode.
func ChildTransform(kind mesh2D.ElementKind, mode mesh2D.RefMode, son int) (t SubTransform) {
	if kind == mesh2D.Tri {
		switch son {
		case 0:
			t = diag(0.5, 0.5, -0.5, -0.5)
		case 1:
			t = diag(0.5, 0.5, 0.5, -0.5)
		case 2:
			t = diag(0.5, 0.5, -0.5, 0.5)
		case 3:
			// central son, rotated relative to the parent frame
			t.A = [4]float64{0, -0.5, 0.5, 0.5}
			t.B = [2]float64{-0.5, 0}
		default:
			panic(fmt.Errorf("triangle has sons 0..3, requested %d", son))
		}
		return
	}
	switch mode {
	case mesh2D.RefIso:
		switch son {
		case 0:
			t = diag(0.5, 0.5, -0.5, -0.5)
		case 1:
			t = diag(0.5, 0.5, 0.5, -0.5)
		case 2:
			t = diag(0.5, 0.5, 0.5, 0.5)
		case 3:
			t = diag(0.5, 0.5, -0.5, 0.5)
		default:
			panic(fmt.Errorf("isotropic split has sons 0..3, requested %d", son))
		}
	case mesh2D.RefHorz:
		switch son {
		case 0:
			t = diag(1, 0.5, 0, -0.5)
		case 1:
			t = diag(1, 0.5, 0, 0.5)
		default:
			panic(fmt.Errorf("horizontal split has sons 0..1, requested %d", son))
		}
	case mesh2D.RefVert:
		switch son {
		case 0:
			t = diag(0.5, 1, -0.5, 0)
		case 1:
			t = diag(0.5, 1, 0.5, 0)
		default:
			panic(fmt.Errorf("vertical split has sons 0..1, requested %d", son))
		}
	}
	return
}
