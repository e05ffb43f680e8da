package geom

// Edge is one side of a polygon's vertex ring, from vertex index I to I+1
// (wrapping). Direction is precomputed since the pathfinder's parallel-edge
// slide optimization and the inward-normal point test both need it.
type Edge struct {
	From, To  Vec2
	Direction Vec2
}

// Polygon is a convex polygon with a fixed winding order. Vertex indices
// are stable for the polygon's lifetime; the pathfinder's vertex-snapping
// search relies on that stability to identify "the same vertex" across
// candidate placements.
type Polygon struct {
	Vertices []Vec2
	edges    []Edge
	centroid Vec2
	aabb     Rect
}

// NewPolygon precomputes edges, centroid and AABB for vertices, which must
// already be in a consistent winding order and describe a convex ring.
// Convexity and winding are not verified; a degenerate or non-convex input
// produces a Polygon whose derived queries are simply wrong, per the
// package doc's no-screening contract.
func NewPolygon(vertices []Vec2) Polygon {
	p := Polygon{Vertices: vertices}
	n := len(vertices)
	if n == 0 {
		return p
	}

	p.edges = make([]Edge, n)
	var sumX, sumY float64
	minX, minY := vertices[0].X, vertices[0].Y
	maxX, maxY := minX, minY

	for i := 0; i < n; i++ {
		from := vertices[i]
		to := vertices[(i+1)%n]
		p.edges[i] = Edge{From: from, To: to, Direction: to.Sub(from)}

		sumX += from.X
		sumY += from.Y
		if from.X < minX {
			minX = from.X
		}
		if from.X > maxX {
			maxX = from.X
		}
		if from.Y < minY {
			minY = from.Y
		}
		if from.Y > maxY {
			maxY = from.Y
		}
	}

	p.centroid = Vec2{sumX / float64(n), sumY / float64(n)}
	p.aabb = Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	return p
}

// Edges returns the polygon's precomputed edge list.
func (p Polygon) Edges() []Edge { return p.edges }

// Centroid returns the (unweighted vertex-average) centroid, used by the
// pathfinder to pick "our" contact vertex furthest toward an obstacle.
func (p Polygon) Centroid() Vec2 { return p.centroid }

// AABB returns the polygon's local-space axis-aligned bounding box.
func (p Polygon) AABB() Rect { return p.aabb }

// WorldAABB returns the AABB translated by pos.
func (p Polygon) WorldAABB(pos Vec2) Rect { return p.aabb.Translate(pos) }

// NumVertices returns the number of vertices in the ring.
func (p Polygon) NumVertices() int { return len(p.Vertices) }

// VertexAt returns vertex index i (wrapping) in local coordinates.
func (p Polygon) VertexAt(i int) Vec2 {
	n := len(p.Vertices)
	return p.Vertices[((i%n)+n)%n]
}

// FurthestVertexToward returns the index of the vertex furthest along dir,
// i.e. maximizing the dot product with dir. Used by the pathfinder to find
// the moving polygon's natural contact vertex against an obstacle vertex:
// "the one that would touch theirVertex if we pressed our polygon against
// that obstacle vertex from outside" (spec.md 4.3).
func (p Polygon) FurthestVertexToward(dir Vec2) int {
	best := 0
	bestDot := p.Vertices[0].Dot(dir)
	for i := 1; i < len(p.Vertices); i++ {
		d := p.Vertices[i].Dot(dir)
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	return best
}

// PointInPolygon reports whether pt lies strictly inside p placed at pos.
// Boundary points count as outside (GetIntersecting relies on this).
// Implemented as an inward half-plane test per edge, same construction as
// the BSP-style convex-region test in the pack's tsukinoko-kun/venture
// bsp.buildEdgeTest: for a CCW ring the inward normal is the edge
// direction rotated +90 degrees, and the point must be strictly on the
// inward side of every edge.
func PointInPolygon(p Polygon, pos Vec2, pt Vec2) bool {
	local := pt.Sub(pos)
	for _, e := range p.edges {
		normal := Vec2{-e.Direction.Y, e.Direction.X}
		side := normal.Dot(local.Sub(e.From))
		if side <= Epsilon {
			return false
		}
	}
	return true
}

// ParallelEdges reports whether a and b point in the same or opposite
// direction, within Epsilon. Used by the pathfinder's slide optimization
// (spec.md 4.3) to detect a vacuous vertex rotation.
func ParallelEdges(a, b Edge) bool {
	cross := a.Direction.Cross(b.Direction)
	return cross > -Epsilon && cross < Epsilon
}
