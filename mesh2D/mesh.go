package mesh2D

import (
	"fmt"
	"strings"

	"github.com/erick-santiago/hermes2d/types"
)

/*
Adaptive two dimensional mesh of quadrilaterals and triangles.

Elements are held in an arena indexed by stable integer ids. A split
never removes the parent, it only deactivates it, so ids stay valid
across the whole refinement history and a structural copy of the mesh
preserves them. Parent, child and neighbor relations are index
references into the arena.

Irregular (hanging) vertices are tracked through the edge midpoint
table: when an element splits, the midpoints it creates are keyed by
the packed vertex pair of the split edge. An active element whose full
edge has entries below it in that table faces a more refined neighbor,
and the depth of the midpoint chain is the irregularity level of the
edge.
*/

// MaxRefinementLevel bounds the refinement depth; beyond it the packed
// geometric subdivision loses meaning in float64 and the mesh refuses
// to split further.
const MaxRefinementLevel = 30

type ElementKind uint

const (
	Quad ElementKind = iota
	Tri
)

var (
	KindNames      = map[string]ElementKind{"quad": Quad, "tri": Tri}
	KindPrintNames = []string{"Quad", "Tri"}
)

func (ek ElementKind) Print() (txt string) {
	txt = KindPrintNames[ek]
	return
}

func NewElementKind(label string) (ek ElementKind) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if ek, ok = KindNames[label]; !ok {
		err = fmt.Errorf("unable to use element kind named %s", label)
		panic(err)
	}
	return
}

/*
RefMode selects how an element splits. Horizontal cuts the element with
a horizontal line, stacking two children bottom and top; vertical cuts
with a vertical line, placing two children left and right. Triangles
split isotropically only.
*/
type RefMode uint

const (
	RefIso RefMode = iota
	RefHorz
	RefVert
)

var (
	RefModeNames = map[string]RefMode{
		"iso":  RefIso,
		"horz": RefHorz,
		"vert": RefVert,
	}
	RefModePrintNames = []string{"Isotropic", "Horizontal", "Vertical"}
)

func (rm RefMode) Print() (txt string) {
	txt = RefModePrintNames[rm]
	return
}

func NewRefMode(label string) (rm RefMode) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if rm, ok = RefModeNames[label]; !ok {
		err = fmt.Errorf("unable to use refinement mode named %s", label)
		panic(err)
	}
	return
}

// NumChildren is the child count produced by a split of the given kind.
func (rm RefMode) NumChildren(kind ElementKind) (nc int) {
	switch {
	case kind == Tri:
		nc = 4
	case rm == RefIso:
		nc = 4
	default:
		nc = 2
	}
	return
}

type Vertex struct {
	X, Y float64
}

type Element struct {
	ID        int
	Kind      ElementKind
	Verts     [4]int // counterclockwise, triangles use the first three
	Active    bool
	Level     int
	Parent    int // -1 for base elements
	Children  [4]int
	NChildren int     // zero until split
	Split     RefMode // valid once NChildren > 0
}

func (el *Element) NVerts() (nv int) {
	nv = 4
	if el.Kind == Tri {
		nv = 3
	}
	return
}

// EdgeVerts returns edge n in traversal order, from vertex n to n+1.
func (el *Element) EdgeVerts(n int) (verts [2]int) {
	var (
		nv = el.NVerts()
	)
	verts[0] = el.Verts[n]
	verts[1] = el.Verts[(n+1)%nv]
	return
}

type Mesh struct {
	Verts    []Vertex
	Elements []Element
	NActive  int

	midVert    map[types.EdgeKey]int           // split edge -> midpoint vertex
	midOf      map[int]types.EdgeKey           // midpoint vertex -> the edge it bisects
	parentEdge map[types.EdgeKey]types.EdgeKey // half edge -> the edge it halves
	edgeUse    map[types.EdgeKey][]int         // full edge -> ids of elements carrying it
	bcFlags    map[types.EdgeKey]types.BCFLAG  // boundary markers, inherited on split
}

func newEmptyMesh() (m *Mesh) {
	m = &Mesh{
		midVert:    make(map[types.EdgeKey]int),
		midOf:      make(map[int]types.EdgeKey),
		parentEdge: make(map[types.EdgeKey]types.EdgeKey),
		edgeUse:    make(map[types.EdgeKey][]int),
		bcFlags:    make(map[types.EdgeKey]types.BCFLAG),
	}
	return
}

// El returns the element with the given id, which must exist.
func (m *Mesh) El(id int) (el *Element) {
	if id < 0 || id >= len(m.Elements) {
		panic(fmt.Errorf("no element with id %d, mesh has %d", id, len(m.Elements)))
	}
	el = &m.Elements[id]
	return
}

func (m *Mesh) NumElements() int { return len(m.Elements) }
func (m *Mesh) NumVerts() int    { return len(m.Verts) }

// ActiveElements lists active element ids in ascending id order.
func (m *Mesh) ActiveElements() (ids []int) {
	ids = make([]int, 0, m.NActive)
	for i := range m.Elements {
		if m.Elements[i].Active {
			ids = append(ids, i)
		}
	}
	return
}

func (m *Mesh) addVertex(x, y float64) (id int) {
	id = len(m.Verts)
	m.Verts = append(m.Verts, Vertex{X: x, Y: y})
	return
}

func (m *Mesh) addElement(kind ElementKind, verts [4]int, level, parent int) (id int) {
	var (
		el = Element{
			Kind:   kind,
			Verts:  verts,
			Active: true,
			Level:  level,
			Parent: parent,
		}
	)
	id = len(m.Elements)
	el.ID = id
	m.Elements = append(m.Elements, el)
	m.NActive++
	nv := m.Elements[id].NVerts()
	for n := 0; n < nv; n++ {
		ev := m.Elements[id].EdgeVerts(n)
		key := types.NewEdgeKey(ev)
		m.edgeUse[key] = append(m.edgeUse[key], id)
	}
	return
}

/*
midpointVertex returns the midpoint vertex of edge (a,b), creating it on
first use. New half edges inherit the boundary marker of the split edge
and record their parent so constraint resolution can climb back to the
unrefined neighbor's full edge.
*/
func (m *Mesh) midpointVertex(a, b int) (mid int) {
	var (
		key = types.NewEdgeKey([2]int{a, b})
		ok  bool
	)
	if mid, ok = m.midVert[key]; ok {
		return
	}
	va, vb := m.Verts[a], m.Verts[b]
	mid = m.addVertex(0.5*(va.X+vb.X), 0.5*(va.Y+vb.Y))
	m.midVert[key] = mid
	m.midOf[mid] = key
	k1 := types.NewEdgeKey([2]int{a, mid})
	k2 := types.NewEdgeKey([2]int{mid, b})
	m.parentEdge[k1] = key
	m.parentEdge[k2] = key
	if bf, present := m.bcFlags[key]; present {
		m.bcFlags[k1] = bf
		m.bcFlags[k2] = bf
	}
	return
}

// MidVertex looks up the midpoint of edge (a,b) without creating it.
func (m *Mesh) MidVertex(a, b int) (mid int, ok bool) {
	mid, ok = m.midVert[types.NewEdgeKey([2]int{a, b})]
	return
}

// MidpointOf reports the edge a vertex bisects, if it is a midpoint.
func (m *Mesh) MidpointOf(v int) (key types.EdgeKey, ok bool) {
	key, ok = m.midOf[v]
	return
}

// ParentEdge climbs one level from a half edge to the edge it halves.
func (m *Mesh) ParentEdge(key types.EdgeKey) (parent types.EdgeKey, ok bool) {
	parent, ok = m.parentEdge[key]
	return
}

/*
SubdivisionDepth measures how many levels of midpoints hang below edge
(a,b). An active element never splits its own edges, so for the edges
of active elements every midpoint below was created by the neighbor
side and the depth is exactly the irregularity level of the edge.
*/
func (m *Mesh) SubdivisionDepth(a, b int) (depth int) {
	mid, ok := m.midVert[types.NewEdgeKey([2]int{a, b})]
	if !ok {
		return
	}
	d1 := m.SubdivisionDepth(a, mid)
	d2 := m.SubdivisionDepth(mid, b)
	if d2 > d1 {
		d1 = d2
	}
	depth = 1 + d1
	return
}

/*
ActiveEdgeUser finds the active element other than exclude that carries
the full edge key. For a constrained half edge this is the coarse
neighbor once the key has been climbed to the neighbor's level.
*/
func (m *Mesh) ActiveEdgeUser(key types.EdgeKey, exclude int) (id int, ok bool) {
	for _, user := range m.edgeUse[key] {
		if user != exclude && m.Elements[user].Active {
			id, ok = user, true
			return
		}
	}
	return
}

// SetBCFlag marks edge (a,b) with a boundary condition flag.
func (m *Mesh) SetBCFlag(a, b int, flag types.BCFLAG) {
	m.bcFlags[types.NewEdgeKey([2]int{a, b})] = flag
}

func (m *Mesh) BCFlag(a, b int) (flag types.BCFLAG) {
	flag = m.bcFlags[types.NewEdgeKey([2]int{a, b})]
	return
}

/*
MarkOuterBoundary flags every edge currently used by exactly one
element. Call it on the freshly built base mesh, before any refinement,
so that split edges inherit the marker.
*/
func (m *Mesh) MarkOuterBoundary(flag types.BCFLAG) {
	for key, users := range m.edgeUse {
		if len(users) == 1 {
			m.bcFlags[key] = flag
		}
	}
}

/*
RefineElement splits the active element id according to mode, marking
it inactive and appending its children to the arena. Splitting an
element that is already split is a programming error and panics; depth
overflow is a resource failure returned as an error with the mesh left
unchanged.
*/
func (m *Mesh) RefineElement(id int, mode RefMode) (err error) {
	var (
		el = m.El(id)
	)
	if !el.Active {
		panic(fmt.Errorf("attempt to refine inactive element %d", id))
	}
	if el.Kind == Tri && mode != RefIso {
		panic(fmt.Errorf("element %d is a triangle, %s split not supported",
			id, mode.Print()))
	}
	if el.Level+1 > MaxRefinementLevel {
		err = fmt.Errorf("element %d is at refinement level %d, the maximum",
			id, el.Level)
		return
	}
	var (
		v     = el.Verts
		level = el.Level + 1
		kids  [4]int
		nKids int
	)
	switch {
	case el.Kind == Tri:
		m01 := m.midpointVertex(v[0], v[1])
		m12 := m.midpointVertex(v[1], v[2])
		m20 := m.midpointVertex(v[2], v[0])
		kids[0] = m.addElement(Tri, [4]int{v[0], m01, m20, -1}, level, id)
		kids[1] = m.addElement(Tri, [4]int{m01, v[1], m12, -1}, level, id)
		kids[2] = m.addElement(Tri, [4]int{m20, m12, v[2], -1}, level, id)
		kids[3] = m.addElement(Tri, [4]int{m01, m12, m20, -1}, level, id)
		nKids = 4
	case mode == RefIso:
		m01 := m.midpointVertex(v[0], v[1])
		m12 := m.midpointVertex(v[1], v[2])
		m23 := m.midpointVertex(v[2], v[3])
		m30 := m.midpointVertex(v[3], v[0])
		ctr := m.addVertex(
			0.25*(m.Verts[v[0]].X+m.Verts[v[1]].X+m.Verts[v[2]].X+m.Verts[v[3]].X),
			0.25*(m.Verts[v[0]].Y+m.Verts[v[1]].Y+m.Verts[v[2]].Y+m.Verts[v[3]].Y))
		kids[0] = m.addElement(Quad, [4]int{v[0], m01, ctr, m30}, level, id)
		kids[1] = m.addElement(Quad, [4]int{m01, v[1], m12, ctr}, level, id)
		kids[2] = m.addElement(Quad, [4]int{ctr, m12, v[2], m23}, level, id)
		kids[3] = m.addElement(Quad, [4]int{m30, ctr, m23, v[3]}, level, id)
		nKids = 4
	case mode == RefHorz:
		m12 := m.midpointVertex(v[1], v[2])
		m30 := m.midpointVertex(v[3], v[0])
		kids[0] = m.addElement(Quad, [4]int{v[0], v[1], m12, m30}, level, id)
		kids[1] = m.addElement(Quad, [4]int{m30, m12, v[2], v[3]}, level, id)
		nKids = 2
	case mode == RefVert:
		m01 := m.midpointVertex(v[0], v[1])
		m23 := m.midpointVertex(v[2], v[3])
		kids[0] = m.addElement(Quad, [4]int{v[0], m01, m23, v[3]}, level, id)
		kids[1] = m.addElement(Quad, [4]int{m01, v[1], v[2], m23}, level, id)
		nKids = 2
	}
	// addElement may grow the arena, reacquire the parent
	el = &m.Elements[id]
	el.Active = false
	el.Children = kids
	el.NChildren = nKids
	el.Split = mode
	m.NActive--
	return
}

// RefineAllElements splits every currently active element isotropically,
// the global refinement that hosts a reference solution.
func (m *Mesh) RefineAllElements() (err error) {
	var (
		ids = m.ActiveElements()
	)
	for _, id := range ids {
		if err = m.RefineElement(id, RefIso); err != nil {
			return
		}
	}
	return
}

/*
Regularize enforces the hanging node bound: after it returns, no active
element has an edge subdivided more than maxLevel times by its
neighbors. Violating elements are split isotropically, transitively,
until the bound holds. maxLevel < 0 disables enforcement. The forced
element ids are returned so callers can account for the extra DOFs.
*/
func (m *Mesh) Regularize(maxLevel int) (forced []int, err error) {
	if maxLevel < 0 {
		return
	}
	for {
		var violators []int
		for i := range m.Elements {
			el := &m.Elements[i]
			if !el.Active {
				continue
			}
			nv := el.NVerts()
			for n := 0; n < nv; n++ {
				ev := el.EdgeVerts(n)
				if m.SubdivisionDepth(ev[0], ev[1]) > maxLevel {
					violators = append(violators, el.ID)
					break
				}
			}
		}
		if len(violators) == 0 {
			return
		}
		for _, id := range violators {
			if err = m.RefineElement(id, RefIso); err != nil {
				return
			}
			forced = append(forced, id)
		}
	}
}

// Copy makes an independent structural copy preserving all element and
// vertex ids, the cheap snapshot a reference mesh starts from.
func (m *Mesh) Copy() (mc *Mesh) {
	mc = &Mesh{
		Verts:      make([]Vertex, len(m.Verts)),
		Elements:   make([]Element, len(m.Elements)),
		NActive:    m.NActive,
		midVert:    make(map[types.EdgeKey]int, len(m.midVert)),
		midOf:      make(map[int]types.EdgeKey, len(m.midOf)),
		parentEdge: make(map[types.EdgeKey]types.EdgeKey, len(m.parentEdge)),
		edgeUse:    make(map[types.EdgeKey][]int, len(m.edgeUse)),
		bcFlags:    make(map[types.EdgeKey]types.BCFLAG, len(m.bcFlags)),
	}
	copy(mc.Verts, m.Verts)
	copy(mc.Elements, m.Elements)
	for k, v := range m.midVert {
		mc.midVert[k] = v
	}
	for k, v := range m.midOf {
		mc.midOf[k] = v
	}
	for k, v := range m.parentEdge {
		mc.parentEdge[k] = v
	}
	for k, v := range m.edgeUse {
		users := make([]int, len(v))
		copy(users, v)
		mc.edgeUse[k] = users
	}
	for k, v := range m.bcFlags {
		mc.bcFlags[k] = v
	}
	return
}
