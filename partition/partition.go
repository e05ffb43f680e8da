// Package partition implements the adaptive rectangular space partition
// spec.md 4.2 calls PartitionedMap: a BSP tree over flat index arenas
// (rather than a pointer graph, since a partition's parent link and a
// leaf's back-pointer to its owning partition form a cycle a garbage
// collector is happy with but a remap-on-collapse routine is not). The
// arena-and-index technique is grounded on the pack's BSP example,
// tsukinoko-kun/venture bsp.go (flat []*pb.BSPNode with front/back
// indices instead of pointers), adapted here to two parallel arenas — one
// for internal split nodes, one for leaves — since a partition's children
// can independently be either kind.
package partition

import (
	"fmt"

	"github.com/lixenwraith/polypath/collidable"
	"github.com/lixenwraith/polypath/geom"
	"github.com/lixenwraith/polypath/metrics"
	"github.com/lixenwraith/polypath/tunable"
)

// splitAxis names which world coordinate a partition node compares
// against its split value.
type splitAxis int

const (
	axisX splitAxis = iota
	axisY
)

// node is one internal BSP split. left/right are indices into either
// nodes (when the corresponding *IsLeaf flag is false) or leaves
// (when true). parent is -1 for the root.
type node struct {
	parent         int
	isLeftOfParent bool
	axis           splitAxis
	split          float64
	leftIsLeaf     bool
	rightIsLeaf    bool
	left           int
	right          int
}

// leaf is a terminal partition: a rectangle and the flat collidable list
// it owns, grounded on the teacher's engine.SpatialGrid dense-bucket
// idiom generalized from a fixed grid cell to an adaptively-sized BSP
// region. partitionIdx/isLeft identify the owning node and side so a leaf
// can be found again from a node without a second lookup structure.
type leaf struct {
	partitionIdx int
	isLeft       bool
	rect         geom.Rect
	collidables  []collidable.Collidable
}

// Map is the adaptive BSP-partitioned collidable index. Zero value is not
// usable; construct with New.
type Map struct {
	Width, Height float64
	tunables      tunable.Set
	metrics       *metrics.Registry
	debug         bool

	nodes    []node
	numNodes int
	leaves   []leaf
	numLeafs int

	rootIsLeaf bool
	root       int // index into leaves if rootIsLeaf, else nodes

	collidables map[uint32]collidable.Collidable
	order       []uint32
	nextID      uint32
}

// New creates an empty PartitionedMap spanning [0, width) x [0, height)
// with tunables t, which must satisfy t.Validate().
func New(width, height float64, t tunable.Set) (*Map, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}
	m := &Map{
		Width:       width,
		Height:      height,
		tunables:    t,
		rootIsLeaf:  true,
		root:        0,
		collidables: make(map[uint32]collidable.Collidable),
	}
	m.leaves = make([]leaf, 1, 8)
	m.leaves[0] = leaf{partitionIdx: -1, rect: geom.Rect{MinX: 0, MinY: 0, MaxX: width, MaxY: height}}
	m.numLeafs = 1
	m.nodes = make([]node, 0, 8)
	return m, nil
}

// WithMetrics attaches a counter registry; split/collapse/register/move/
// trace operations increment the standard metrics.Counter* names.
func (m *Map) WithMetrics(r *metrics.Registry) *Map {
	m.metrics = r
	return m
}

// SetDebug enables the before/after invariant re-verification spec.md 7
// describes as the contract-violation safety net for degenerate geometry.
// It panics (via Verify) the moment Register/Unregister/Move leaves the
// tree in a state violating spec.md 8's invariants 1-4.
func (m *Map) SetDebug(on bool) {
	m.debug = on
}

func (m *Map) incr(name string) {
	if m.metrics != nil {
		m.metrics.Ints.Add(name, 1)
	}
}

// All returns every registered collidable in registration order. The
// returned slice is freshly built and safe for the caller to retain.
func (m *Map) All() []collidable.Collidable {
	out := make([]collidable.Collidable, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.collidables[id])
	}
	return out
}

// Lookup returns the collidable registered under id.
func (m *Map) Lookup(id uint32) (collidable.Collidable, bool) {
	c, ok := m.collidables[id]
	return c, ok
}

// FindMap returns the index of the leaf containing pos. Descends from the
// root comparing pos against each node's split on its axis; ties (pos
// exactly on the split line) resolve left, matching spec.md 4.2.
func (m *Map) FindMap(pos geom.Vec2) int {
	if m.rootIsLeaf {
		return m.root
	}
	idx := m.root
	for {
		n := m.nodes[idx]
		var goLeft bool
		if n.axis == axisX {
			goLeft = pos.X <= n.split
		} else {
			goLeft = pos.Y <= n.split
		}
		var childIsLeaf bool
		var child int
		if goLeft {
			childIsLeaf, child = n.leftIsLeaf, n.left
		} else {
			childIsLeaf, child = n.rightIsLeaf, n.right
		}
		if childIsLeaf {
			return child
		}
		idx = child
	}
}

// FindMaps appends to out the index of every leaf whose rectangle
// intersects poly placed at pos, with the full-containment early exit
// spec.md 4.2 allows: once a leaf is found that fully contains poly's
// world AABB, descent stops.
func (m *Map) FindMaps(poly geom.Polygon, pos geom.Vec2, out []int) []int {
	box := poly.WorldAABB(pos)
	return m.findMapsAABB(poly, pos, box, out)
}

// FindMapsTraces is the multi-trace overload: the result is the union of
// FindMaps over every trace, deduplicated.
func (m *Map) FindMapsTraces(traces []geom.Polygon, pos geom.Vec2, out []int) []int {
	seen := make(map[int]bool)
	for _, t := range traces {
		box := t.WorldAABB(pos)
		for _, l := range m.findMapsAABB(t, pos, box, nil) {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

func (m *Map) findMapsAABB(poly geom.Polygon, pos geom.Vec2, box geom.Rect, out []int) []int {
	if m.rootIsLeaf {
		lf := m.leaves[m.root]
		if geom.Intersects(lf.rect.ToPolygon(), geom.Vec2{}, poly, pos) {
			out = append(out, m.root)
		}
		return out
	}
	out, _ = m.collectLeaves(m.root, poly, pos, box, out)
	return out
}

// collectLeaves recursively descends nodeIdx, testing every reachable
// leaf's rectangle against poly. It reports via the second return value
// whether a leaf fully containing poly's world AABB has already been
// appended, so an ancestor call can stop descending its other child once
// that happens — the full-containment early exit spec.md 4.2 allows.
func (m *Map) collectLeaves(nodeIdx int, poly geom.Polygon, pos geom.Vec2, box geom.Rect, out []int) ([]int, bool) {
	n := m.nodes[nodeIdx]
	var contained bool

	if n.leftIsLeaf {
		lf := m.leaves[n.left]
		if lf.rect.Intersects(box) && geom.Intersects(lf.rect.ToPolygon(), geom.Vec2{}, poly, pos) {
			out = append(out, n.left)
			if lf.rect.ContainsRect(box) {
				contained = true
			}
		}
	} else {
		var sub bool
		out, sub = m.collectLeaves(n.left, poly, pos, box, out)
		contained = contained || sub
	}

	if contained {
		return out, true
	}

	if n.rightIsLeaf {
		lf := m.leaves[n.right]
		if lf.rect.Intersects(box) && geom.Intersects(lf.rect.ToPolygon(), geom.Vec2{}, poly, pos) {
			out = append(out, n.right)
			if lf.rect.ContainsRect(box) {
				contained = true
			}
		}
	} else {
		var sub bool
		out, sub = m.collectLeaves(n.right, poly, pos, box, out)
		contained = contained || sub
	}

	return out, contained
}

// Contains reports whether poly at pos lies strictly inside [0,W)x[0,H),
// same rule as simplemap.Map.Contains.
func (m *Map) Contains(poly geom.Polygon, pos geom.Vec2) bool {
	box := poly.WorldAABB(pos)
	return box.MinX >= 0 && box.MinY >= 0 && box.MaxX < m.Width && box.MaxY < m.Height
}

// GetIntersecting returns the id of the first collidable containing pt,
// scanning the owning leaf's list; ties break left (list order), same
// contract as simplemap.Map.GetIntersecting and spec.md 9's documented
// boundary-point behavior.
func (m *Map) GetIntersecting(pt geom.Vec2) (uint32, bool) {
	lf := m.leaves[m.FindMap(pt)]
	for _, c := range lf.collidables {
		if geom.PointInPolygon(c.Bounds, c.Position, pt) {
			return c.ID, true
		}
	}
	return 0, false
}

// Trace reports whether no eligible collidable intersects any polygon in
// traces placed at from, across every leaf the traces touch.
func (m *Map) Trace(traces []geom.Polygon, from geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) bool {
	m.incr(metrics.CounterTraces)
	leafIdxs := m.FindMapsTraces(traces, from, nil)
	for _, li := range leafIdxs {
		if !m.leafTrace(m.leaves[li], traces, from, excludeIDs, excludeFlags) {
			return false
		}
	}
	return true
}

// TraceExhaust returns every eligible collidable intersecting at least one
// polygon in traces placed at from, deduplicated by id. The caller's
// excludeIDs is never mutated; once more than one leaf can contribute
// (duplicates become possible), a private seen-set drops repeated ids.
func (m *Map) TraceExhaust(traces []geom.Polygon, from geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) []collidable.Collidable {
	m.incr(metrics.CounterTraces)
	leafIdxs := m.FindMapsTraces(traces, from, nil)

	if len(leafIdxs) <= 1 {
		if len(leafIdxs) == 0 {
			return nil
		}
		return m.leafTraceExhaust(m.leaves[leafIdxs[0]], traces, from, excludeIDs, excludeFlags)
	}

	seen := make(map[uint32]bool)
	var out []collidable.Collidable
	for _, li := range leafIdxs {
		for _, c := range m.leafTraceExhaust(m.leaves[li], traces, from, excludeIDs, excludeFlags) {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out
}

func (m *Map) leafTrace(lf leaf, traces []geom.Polygon, from geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) bool {
	for _, c := range lf.collidables {
		if c.Excluded(excludeIDs, excludeFlags) {
			continue
		}
		for _, t := range traces {
			if geom.Intersects(t, from, c.Bounds, c.Position) {
				return false
			}
		}
	}
	return true
}

func (m *Map) leafTraceExhaust(lf leaf, traces []geom.Polygon, from geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) []collidable.Collidable {
	var out []collidable.Collidable
	for _, c := range lf.collidables {
		if c.Excluded(excludeIDs, excludeFlags) {
			continue
		}
		for _, t := range traces {
			if geom.Intersects(t, from, c.Bounds, c.Position) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// TraceSweep/TraceExhaustSweep are the single-polygon/displacement
// convenience overloads, identical in spirit to simplemap.Map's.
// geom.Sweep's pieces are already in world space, so they're offered at
// the origin rather than translated by from a second time.
func (m *Map) TraceSweep(poly geom.Polygon, from, to geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) bool {
	return m.Trace(geom.Sweep(poly, from, to), geom.Vec2{}, excludeIDs, excludeFlags)
}

func (m *Map) TraceExhaustSweep(poly geom.Polygon, from, to geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) []collidable.Collidable {
	return m.TraceExhaust(geom.Sweep(poly, from, to), geom.Vec2{}, excludeIDs, excludeFlags)
}

// Register assigns c.ID = nextID (post-increment), unless forceID is true
// (in which case c.ID is used as given — the caller is responsible for
// uniqueness). The collidable is inserted into every leaf its bounds
// intersect at its current position, indexed globally, and each affected
// leaf is offered to ConsiderSplit.
func (m *Map) Register(c collidable.Collidable, forceID bool) uint32 {
	if m.debug {
		m.verify("before Register")
	}

	var id uint32
	if forceID {
		id = c.ID
	} else {
		id = m.nextID
		m.nextID++
	}
	c.ID = id

	leafIdxs := m.FindMaps(c.Bounds, c.Position, nil)
	for _, li := range leafIdxs {
		m.leaves[li].collidables = append(m.leaves[li].collidables, c)
	}
	m.collidables[id] = c
	m.order = append(m.order, id)
	m.incr(metrics.CounterRegisters)

	for _, li := range leafIdxs {
		m.considerSplit(li)
	}

	if m.debug {
		m.verify("after Register")
	}
	return id
}

// Unregister removes the collidable with id from every leaf it occupies
// and from the global index. Panics (a contract violation, spec.md 7) if
// id was never registered.
func (m *Map) Unregister(id uint32) {
	if m.debug {
		m.verify("before Unregister")
	}

	c, ok := m.collidables[id]
	if !ok {
		panic(fmt.Errorf("partition: Unregister of unknown id %d", id))
	}

	leafIdxs := m.FindMaps(c.Bounds, c.Position, nil)
	for _, li := range leafIdxs {
		m.removeFromLeaf(li, id)
	}

	delete(m.collidables, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	m.considerPrune(leafIdxs)

	if m.debug {
		m.verify("after Unregister")
	}
}

// removeFromLeaf deletes the collidable with id from leaves[idx], if
// present, by swap-to-last. This is the fix for spec.md 9's documented
// reference-implementation bug: it removes from leaves[idx] — the map
// index from the FindMaps result — never from an unrelated index.
func (m *Map) removeFromLeaf(idx int, id uint32) {
	lst := m.leaves[idx].collidables
	for i, c := range lst {
		if c.ID == id {
			lst[i] = lst[len(lst)-1]
			m.leaves[idx].collidables = lst[:len(lst)-1]
			return
		}
	}
}

// Move repositions the collidable with id. Fast path: if it currently
// occupies exactly one leaf and both AABB corners at newPos lie strictly
// inside that leaf's rectangle, position is mutated in place with no
// further bookkeeping. Slow path: recompute leaf membership, migrate, then
// offer newly-touched leaves to ConsiderSplit and vacated leaves to
// ConsiderPrune.
func (m *Map) Move(id uint32, newPos geom.Vec2) {
	if m.debug {
		m.verify("before Move")
	}

	c, ok := m.collidables[id]
	if !ok {
		panic(fmt.Errorf("partition: Move of unknown id %d", id))
	}

	oldLeafIdxs := m.FindMaps(c.Bounds, c.Position, nil)

	if len(oldLeafIdxs) == 1 {
		lf := m.leaves[oldLeafIdxs[0]]
		box := c.Bounds.WorldAABB(newPos)
		if box.MinX > lf.rect.MinX && box.MinY > lf.rect.MinY && box.MaxX < lf.rect.MaxX && box.MaxY < lf.rect.MaxY {
			m.setPositionInPlace(oldLeafIdxs[0], id, newPos)
			m.incr(metrics.CounterMoves)
			if m.debug {
				m.verify("after Move (fast path)")
			}
			return
		}
	}

	newLeafIdxs := m.FindMaps(c.Bounds, newPos, nil)
	oldSet := toSet(oldLeafIdxs)
	newSet := toSet(newLeafIdxs)

	var removed, added, unchanged []int
	for _, li := range oldLeafIdxs {
		if newSet[li] {
			unchanged = append(unchanged, li)
		} else {
			removed = append(removed, li)
		}
	}
	for _, li := range newLeafIdxs {
		if !oldSet[li] {
			added = append(added, li)
		}
	}

	for _, li := range removed {
		m.removeFromLeaf(li, id)
	}

	c.Position = newPos
	m.collidables[id] = c

	for _, li := range unchanged {
		m.setPositionInPlace(li, id, newPos)
	}
	for _, li := range added {
		m.leaves[li].collidables = append(m.leaves[li].collidables, c)
	}

	m.incr(metrics.CounterMoveSlow)

	for _, li := range added {
		m.considerSplit(li)
	}
	m.considerPrune(removed)

	if m.debug {
		m.verify("after Move (slow path)")
	}
}

func (m *Map) setPositionInPlace(leafIdx int, id uint32, pos geom.Vec2) {
	lst := m.leaves[leafIdx].collidables
	for i := range lst {
		if lst[i].ID == id {
			lst[i].Position = pos
			break
		}
	}
	if c, ok := m.collidables[id]; ok {
		c.Position = pos
		m.collidables[id] = c
	}
}

func toSet(idxs []int) map[int]bool {
	s := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		s[i] = true
	}
	return s
}

// CountNumEntities sums |leaf.collidables| across every leaf reachable
// from the given side of the partition at partIdx.
func (m *Map) CountNumEntities(partIdx int, left bool) int {
	n := m.nodes[partIdx]
	var childIsLeaf bool
	var child int
	if left {
		childIsLeaf, child = n.leftIsLeaf, n.left
	} else {
		childIsLeaf, child = n.rightIsLeaf, n.right
	}
	if childIsLeaf {
		return len(m.leaves[child].collidables)
	}
	return m.CountNumEntities(child, true) + m.CountNumEntities(child, false)
}

func (m *Map) verify(stage string) {
	if err := Verify(m); err != nil {
		panic(fmt.Errorf("partition: invariant violated %s: %w", stage, err))
	}
}
