package space2D

import (
	"fmt"
	"sort"

	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/types"
)

// MaxOrder caps the polynomial degree of any element.
const MaxOrder = 10

// OrderPair carries the directional polynomial orders of an element.
// Triangles use a single order, stored doubled.
type OrderPair struct {
	PX, PY int
}

func (op OrderPair) Max() (p int) {
	p = op.PX
	if op.PY > p {
		p = op.PY
	}
	return
}

/*
LinForm expresses one local shape function's coefficient as an affine
function of the global unknowns: sum of Coeffs[i] * u[Dofs[i]], plus
Fixed. Free functions are the identity on their own DOF, essential
boundary functions are pure Fixed values, and functions at hanging
nodes combine several DOFs of the coarser neighbor.
*/
type LinForm struct {
	Dofs   []int
	Coeffs []float64
	Fixed  float64
}

func identityLF(dof int) (lf LinForm) {
	lf = LinForm{Dofs: []int{dof}, Coeffs: []float64{1}}
	return
}

func fixedLF(val float64) (lf LinForm) {
	lf = LinForm{Fixed: val}
	return
}

// AddScaled accumulates w times another form into the receiver.
func (lf *LinForm) AddScaled(o *LinForm, w float64) {
	if w == 0 {
		return
	}
	for i, d := range o.Dofs {
		lf.Dofs = append(lf.Dofs, d)
		lf.Coeffs = append(lf.Coeffs, w*o.Coeffs[i])
	}
	lf.Fixed += w * o.Fixed
}

// Resolve evaluates the form against a global coefficient vector.
func (lf *LinForm) Resolve(u []float64) (val float64) {
	val = lf.Fixed
	for i, d := range lf.Dofs {
		val += lf.Coeffs[i] * u[d]
	}
	return
}

// ShapeLink couples a local shape function to its global expression.
type ShapeLink struct {
	Shape ShapeFn
	LinForm
}

/*
Space numbers the degrees of freedom of one field component over one
mesh. It owns the per element polynomial orders and, after AssignDOFs,
the complete constraint resolution: every local shape function of every
active element is linked to the global unknowns through a LinForm.
*/
type Space struct {
	M  *mesh2D.Mesh
	P0 int

	orders    []OrderPair // arena aligned, children inherit on demand
	essential func(x, y float64) float64

	assigned bool
	ndof     int
	conn     map[int][]ShapeLink
	vertDof  map[int]int
	vertFix  map[int]float64
	edgeDof  map[types.EdgeKey][]int
	edgeDeg  map[types.EdgeKey]int
	bubDof   map[int][]int
	vertLF   map[int]*LinForm
	edgeCls  map[types.EdgeKey]*edgeClass
}

type edgeClass struct {
	deg       int
	dirichlet bool
}

func NewSpace(m *mesh2D.Mesh, p0 int) (sp *Space) {
	if p0 < 1 || p0 > MaxOrder {
		panic(fmt.Errorf("initial order %d outside [1,%d]", p0, MaxOrder))
	}
	sp = &Space{M: m, P0: p0}
	sp.SetUniformOrder(p0)
	return
}

// SetEssentialBC installs the Dirichlet value function used on edges
// marked BC_Dirichlet. Vertex values interpolate g exactly; the higher
// edge modes on the boundary are pinned to zero.
func (sp *Space) SetEssentialBC(g func(x, y float64) float64) {
	sp.essential = g
	sp.assigned = false
}

func (sp *Space) ensureOrders() {
	var (
		n = sp.M.NumElements()
	)
	for len(sp.orders) < n {
		id := len(sp.orders)
		parent := sp.M.El(id).Parent
		if parent < 0 {
			sp.orders = append(sp.orders, OrderPair{sp.P0, sp.P0})
			continue
		}
		sp.orders = append(sp.orders, sp.orders[parent])
	}
}

func (sp *Space) SetUniformOrder(p int) {
	if p < 1 || p > MaxOrder {
		panic(fmt.Errorf("order %d outside [1,%d]", p, MaxOrder))
	}
	sp.ensureOrders()
	for i := range sp.orders {
		sp.orders[i] = OrderPair{p, p}
	}
	sp.assigned = false
}

func (sp *Space) SetElementOrder(k, px, py int) {
	var (
		el = sp.M.El(k)
	)
	if !el.Active {
		panic(fmt.Errorf("setting order of inactive element %d", k))
	}
	if px < 1 || px > MaxOrder || py < 1 || py > MaxOrder {
		panic(fmt.Errorf("order (%d,%d) outside [1,%d]", px, py, MaxOrder))
	}
	if el.Kind == mesh2D.Tri && px != py {
		panic(fmt.Errorf("triangle %d cannot carry anisotropic order (%d,%d)", k, px, py))
	}
	sp.ensureOrders()
	sp.orders[k] = OrderPair{px, py}
	sp.assigned = false
}

func (sp *Space) GetElementOrder(k int) (op OrderPair) {
	sp.ensureOrders()
	op = sp.orders[k]
	return
}

// Dup creates a space over another mesh, typically the refined copy
// that will host the reference solution. Orders default to P0 until
// CopyOrders transfers them.
func (sp *Space) Dup(m *mesh2D.Mesh) (sp2 *Space) {
	sp2 = NewSpace(m, sp.P0)
	sp2.essential = sp.essential
	return
}

/*
CopyOrders transfers element orders from a space on a coarser relative
of this mesh: each active element climbs its ancestry to the element it
descends from in the source and inherits that order plus inc, capped at
MaxOrder.
*/
func (sp *Space) CopyOrders(src *Space, inc int) {
	sp.ensureOrders()
	src.ensureOrders()
	for _, k := range sp.M.ActiveElements() {
		id := k
		for id >= src.M.NumElements() || !src.M.El(id).Active {
			id = sp.M.El(id).Parent
			if id < 0 {
				panic(fmt.Errorf("element %d has no ancestor in the source space", k))
			}
		}
		op := src.orders[id]
		sp.orders[k] = OrderPair{
			PX: min(op.PX+inc, MaxOrder),
			PY: min(op.PY+inc, MaxOrder),
		}
	}
	sp.assigned = false
}

// NDof reports the free unknown count; AssignDOFs must have run.
func (sp *Space) NDof() (n int) {
	if !sp.assigned {
		panic(fmt.Errorf("DOF count queried before assignment"))
	}
	n = sp.ndof
	return
}

// Assigned reports whether the current DOF numbering is valid.
func (sp *Space) Assigned() bool { return sp.assigned }

// ElementConnectivity returns the resolved local basis of an active
// element in canonical shape order.
func (sp *Space) ElementConnectivity(k int) (links []ShapeLink) {
	if !sp.assigned {
		panic(fmt.Errorf("connectivity queried before assignment"))
	}
	var ok bool
	if links, ok = sp.conn[k]; !ok {
		panic(fmt.Errorf("no connectivity for element %d, inactive or unknown", k))
	}
	return
}

// dirDeg is the polynomial degree an element carries along local edge n.
func dirDeg(el *mesh2D.Element, n int, op OrderPair) (d int) {
	if el.Kind == mesh2D.Tri {
		d = op.PX
		return
	}
	if n%2 == 0 {
		d = op.PX
		return
	}
	d = op.PY
	return
}

/*
AssignDOFs renumbers every degree of freedom from scratch: free
vertices in ascending vertex id, then live edges in ascending edge key,
then element bubbles in ascending element id. The numbering is a pure
function of mesh topology, orders and boundary markers, so repeated
calls on an unchanged space reproduce it exactly. Returns the number of
free unknowns.
*/
func (sp *Space) AssignDOFs() (ndof int) {
	var (
		m      = sp.M
		active = m.ActiveElements()
	)
	sp.ensureOrders()
	sp.conn = make(map[int][]ShapeLink, len(active))
	sp.vertDof = make(map[int]int)
	sp.vertFix = make(map[int]float64)
	sp.edgeDof = make(map[types.EdgeKey][]int)
	sp.edgeDeg = make(map[types.EdgeKey]int)
	sp.bubDof = make(map[int][]int)
	sp.vertLF = make(map[int]*LinForm)
	sp.edgeCls = make(map[types.EdgeKey]*edgeClass)

	// classify edges: live edges carry DOFs under the minimum degree
	// rule, constrained edges borrow their trace from a coarse neighbor
	constrained := make(map[types.EdgeKey]bool)
	for _, k := range active {
		el := m.El(k)
		op := sp.orders[k]
		nv := el.NVerts()
		for n := 0; n < nv; n++ {
			ev := el.EdgeVerts(n)
			key := types.NewEdgeKey(ev)
			d := dirDeg(el, n, op)
			if ec, ok := sp.edgeCls[key]; ok {
				if d < ec.deg {
					ec.deg = d
				}
				continue
			}
			if constrained[key] {
				continue
			}
			if m.SubdivisionDepth(ev[0], ev[1]) > 0 {
				sp.edgeCls[key] = &edgeClass{deg: d}
				continue
			}
			if _, ok := m.ActiveEdgeUser(key, k); ok {
				sp.edgeCls[key] = &edgeClass{deg: d}
				continue
			}
			if _, ok := sp.liveAncestor(key); ok {
				constrained[key] = true
				continue
			}
			sp.edgeCls[key] = &edgeClass{
				deg:       d,
				dirichlet: m.BCFlag(ev[0], ev[1]) == types.BC_Dirichlet,
			}
		}
	}

	// collect vertices; essential boundary fixes endpoints of marked
	// live edges, hanging vertices defer to their constraining edge
	vertSeen := make(map[int]bool)
	for _, k := range active {
		el := m.El(k)
		nv := el.NVerts()
		for n := 0; n < nv; n++ {
			vertSeen[el.Verts[n]] = true
		}
	}
	for key, ec := range sp.edgeCls {
		if !ec.dirichlet {
			continue
		}
		for _, v := range key.GetVertices(false) {
			vx := m.Verts[v]
			sp.vertFix[v] = sp.essentialValue(vx.X, vx.Y)
		}
	}
	hanging := make(map[int]bool)
	for v := range vertSeen {
		if _, fixed := sp.vertFix[v]; fixed {
			continue
		}
		if e0, ok := m.MidpointOf(v); ok {
			if _, live := sp.constrainerOf(e0); live {
				hanging[v] = true
			}
		}
	}

	// numbering: vertices, edges, bubbles, each in a sorted walk
	vertIDs := make([]int, 0, len(vertSeen))
	for v := range vertSeen {
		vertIDs = append(vertIDs, v)
	}
	sort.Ints(vertIDs)
	for _, v := range vertIDs {
		if hanging[v] {
			continue
		}
		if _, fixed := sp.vertFix[v]; fixed {
			continue
		}
		sp.vertDof[v] = ndof
		ndof++
	}
	edgeKeys := make([]types.EdgeKey, 0, len(sp.edgeCls))
	for key := range sp.edgeCls {
		edgeKeys = append(edgeKeys, key)
	}
	sort.Slice(edgeKeys, func(i, j int) bool { return edgeKeys[i] < edgeKeys[j] })
	for _, key := range edgeKeys {
		ec := sp.edgeCls[key]
		sp.edgeDeg[key] = ec.deg
		if ec.dirichlet {
			continue
		}
		dofs := make([]int, 0, ec.deg-1)
		for k := 2; k <= ec.deg; k++ {
			dofs = append(dofs, ndof)
			ndof++
		}
		sp.edgeDof[key] = dofs
	}
	for _, k := range active {
		el := m.El(k)
		op := sp.orders[k]
		var nb int
		if el.Kind == mesh2D.Quad {
			nb = (op.PX - 1) * (op.PY - 1)
		} else {
			p := op.PX
			nb = (p - 1) * (p - 2) / 2
		}
		dofs := make([]int, 0, nb)
		for i := 0; i < nb; i++ {
			dofs = append(dofs, ndof)
			ndof++
		}
		sp.bubDof[k] = dofs
	}

	sp.ndof = ndof
	sp.assigned = true

	// resolve the full connectivity now so the parallel consumers can
	// read it without synchronization
	for _, k := range active {
		sp.conn[k] = sp.buildConnectivity(k)
	}
	return
}

func (sp *Space) essentialValue(x, y float64) (val float64) {
	if sp.essential != nil {
		val = sp.essential(x, y)
	}
	return
}

// liveAncestor climbs the half edge chain looking for an enclosing
// edge carried in full by an active element.
func (sp *Space) liveAncestor(key types.EdgeKey) (anc types.EdgeKey, ok bool) {
	var (
		m   = sp.M
		cur = key
	)
	for {
		parent, have := m.ParentEdge(cur)
		if !have {
			return
		}
		cur = parent
		if _, live := m.ActiveEdgeUser(cur, -1); live {
			anc, ok = cur, true
			return
		}
	}
}

// constrainerOf locates the live edge whose trace governs points on
// edge key: the key itself when an active element carries it, else the
// nearest live ancestor.
func (sp *Space) constrainerOf(key types.EdgeKey) (anc types.EdgeKey, ok bool) {
	if _, live := sp.M.ActiveEdgeUser(key, -1); live {
		anc, ok = key, true
		return
	}
	anc, ok = sp.liveAncestor(key)
	return
}

/*
edgeParamTo composes the affine chain from the canonical parameter of
edge key up to ancestor anc, yielding xi_anc = s*xi + t. Midpoint
vertices always carry larger ids than the endpoints they bisect, so the
canonical low endpoint of a half edge is the vertex shared with its
parent.
*/
func (sp *Space) edgeParamTo(key, anc types.EdgeKey) (s, t float64) {
	var (
		m   = sp.M
		cur = key
	)
	s, t = 1, 0
	for cur != anc {
		parent, ok := m.ParentEdge(cur)
		if !ok {
			panic(fmt.Errorf("edge %v is not a descendant of %v", key, anc))
		}
		pv := parent.GetVertices(false)
		x := cur.GetVertices(false)[0]
		var s1, t1 float64
		if x == pv[0] {
			s1, t1 = 0.5, -0.5
		} else {
			s1, t1 = -0.5, 0.5
		}
		s, t = s1*s, s1*t+t1
		cur = parent
	}
	return
}

/*
resolveVertex produces the global expression of a vertex value: its own
DOF when free, the boundary value when fixed, and for a hanging vertex
the trace of the constraining coarse edge evaluated at the vertex's
position along it, which recurses through the coarse edge's own
endpoints.
*/
func (sp *Space) resolveVertex(v int) (lf *LinForm) {
	var (
		ok bool
	)
	if lf, ok = sp.vertLF[v]; ok {
		return
	}
	lf = &LinForm{}
	sp.vertLF[v] = lf
	if dof, free := sp.vertDof[v]; free {
		*lf = identityLF(dof)
		return
	}
	if val, fixed := sp.vertFix[v]; fixed {
		*lf = fixedLF(val)
		return
	}
	e0, isMid := sp.M.MidpointOf(v)
	if !isMid {
		panic(fmt.Errorf("vertex %d is neither free, fixed nor hanging", v))
	}
	anc, live := sp.constrainerOf(e0)
	if !live {
		panic(fmt.Errorf("hanging vertex %d has no live constraining edge", v))
	}
	// position of the midpoint of e0 along the ancestor edge
	_, t := sp.edgeParamTo(e0, anc)
	sp.traceAt(anc, t, lf)
	return
}

// traceAt accumulates the trace of live edge anc at parameter xi into lf.
func (sp *Space) traceAt(anc types.EdgeKey, xi float64, lf *LinForm) {
	var (
		deg = sp.edgeDeg[anc]
	)
	if deg == 0 {
		panic(fmt.Errorf("edge %v is not classified live", anc))
	}
	l, _ := LobattoAll(deg, xi)
	av := anc.GetVertices(false)
	lf.AddScaled(sp.resolveVertex(av[0]), l[0])
	lf.AddScaled(sp.resolveVertex(av[1]), l[1])
	for k := 2; k <= deg; k++ {
		if dofs, freeEdge := sp.edgeDof[anc]; freeEdge {
			lfk := identityLF(dofs[k-2])
			lf.AddScaled(&lfk, l[k])
		}
		// dirichlet edge modes are pinned to zero, nothing to add
	}
}

func (sp *Space) buildConnectivity(k int) (links []ShapeLink) {
	var (
		m  = sp.M
		el = m.El(k)
		op = sp.orders[k]
		nv = el.NVerts()

		edgeDegs [4]int
		flips    [4]bool
		keys     [4]types.EdgeKey
		isConstr [4]bool
	)
	for n := 0; n < nv; n++ {
		ev := el.EdgeVerts(n)
		keys[n] = types.NewEdgeKey(ev)
		flips[n] = ev[0] > ev[1]
		if ec, ok := sp.edgeCls[keys[n]]; ok {
			edgeDegs[n] = ec.deg
		} else {
			edgeDegs[n] = dirDeg(el, n, op)
			isConstr[n] = true
		}
	}
	shapes := ElementShapes(el.Kind, op.PX, op.PY, edgeDegs, flips)
	links = make([]ShapeLink, len(shapes))

	// constrained edges resolve all their modes at once
	var edgeLinks [4][]LinForm
	for n := 0; n < nv; n++ {
		if isConstr[n] {
			edgeLinks[n] = sp.constrainedEdgeModes(keys[n], edgeDegs[n])
		}
	}

	var bubIdx int
	for i, s := range shapes {
		links[i].Shape = s
		switch s.Type {
		case SVertex:
			links[i].LinForm = *sp.resolveVertex(el.Verts[s.Node])
		case SEdge:
			n := s.Node
			switch {
			case isConstr[n]:
				links[i].LinForm = edgeLinks[n][s.K-2]
			case sp.edgeCls[keys[n]].dirichlet:
				links[i].LinForm = fixedLF(0)
			default:
				links[i].LinForm = identityLF(sp.edgeDof[keys[n]][s.K-2])
			}
		case SBubble:
			links[i].LinForm = identityLF(sp.bubDof[k][bubIdx])
			bubIdx++
		}
	}
	return
}
