// Package simplemap implements spec.md 4.1's flat, unindexed collidable
// list: the leaf-level map that PartitionedMap dispatches to, and a
// perfectly usable Map on its own for small or dense worlds.
package simplemap

import (
	"github.com/lixenwraith/polypath/collidable"
	"github.com/lixenwraith/polypath/geom"
)

// Map is a flat list of collidables bounded by a world rectangle
// [0, Width) x [0, Height). Registration is O(1) append; every query is a
// linear scan. Grounded on the teacher's engine.PositionStore /
// SpatialGrid pairing, generalized from a fixed per-cell grid bucket down
// to the single flat list spec.md 4.1 describes (SimpleMap carries no
// spatial index of its own; that's PartitionedMap's job).
type Map struct {
	Width, Height float64

	collidables []collidable.Collidable
	nextID      uint32
}

// New creates an empty map spanning [0, width) x [0, height).
func New(width, height float64) *Map {
	return &Map{Width: width, Height: height}
}

// Register assigns c.ID = nextID (post-increment) and appends it. Returns
// the assigned ID. No geometric validation is performed.
func (m *Map) Register(c collidable.Collidable) uint32 {
	c.ID = m.nextID
	m.nextID++
	m.collidables = append(m.collidables, c)
	return c.ID
}

// All returns the map's collidables. The returned slice aliases internal
// storage and must be treated as read-only by callers.
func (m *Map) All() []collidable.Collidable {
	return m.collidables
}

// Contains reports whether poly placed at pos fits strictly inside
// [0, Width) x [0, Height): pos + poly.AABB().Min >= 0 and
// pos + poly.AABB().Max < (Width, Height).
func (m *Map) Contains(poly geom.Polygon, pos geom.Vec2) bool {
	box := poly.WorldAABB(pos)
	return box.MinX >= 0 && box.MinY >= 0 && box.MaxX < m.Width && box.MaxY < m.Height
}

// GetIntersecting returns the id of the first collidable whose bounds
// contain pt (point-in-convex-polygon, boundary treated as outside), or
// false if none does. Ties are broken by list order, i.e. the earliest
// registered collidable wins — this is the "left when ambiguous" behavior
// spec.md 9 documents as load-bearing for boundary points.
func (m *Map) GetIntersecting(pt geom.Vec2) (uint32, bool) {
	for _, c := range m.collidables {
		if geom.PointInPolygon(c.Bounds, c.Position, pt) {
			return c.ID, true
		}
	}
	return 0, false
}

// Trace reports whether no eligible collidable intersects any polygon in
// traces placed at from. Eligibility excludes ids in excludeIDs and flags
// intersecting excludeFlags.
func (m *Map) Trace(traces []geom.Polygon, from geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) bool {
	for _, c := range m.collidables {
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

// TraceExhaust returns every eligible collidable intersecting at least one
// polygon in traces placed at from, each appearing once, in registration
// order. The inner loop short-circuits per collidable on first hit.
func (m *Map) TraceExhaust(traces []geom.Polygon, from geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) []collidable.Collidable {
	var out []collidable.Collidable
	for _, c := range m.collidables {
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

// TraceSweep is the single-polygon/displacement convenience overload of
// Trace: it builds traces by extruding poly along from-to. geom.Sweep's
// pieces are already in world space, so they're offered at the origin.
func (m *Map) TraceSweep(poly geom.Polygon, from, to geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) bool {
	return m.Trace(geom.Sweep(poly, from, to), geom.Vec2{}, excludeIDs, excludeFlags)
}

// TraceExhaustSweep is the single-polygon/displacement convenience
// overload of TraceExhaust.
func (m *Map) TraceExhaustSweep(poly geom.Polygon, from, to geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) []collidable.Collidable {
	return m.TraceExhaust(geom.Sweep(poly, from, to), geom.Vec2{}, excludeIDs, excludeFlags)
}
