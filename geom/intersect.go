package geom

// axes returns the edge normals of p (each edge direction rotated +90
// degrees; their sign is irrelevant to the test), used as separating-axis
// candidates. For two convex polygons it suffices to test each polygon's
// own edge normals (SAT for convex-convex overlap).
func axes(p Polygon) []Vec2 {
	out := make([]Vec2, len(p.edges))
	for i, e := range p.edges {
		out[i] = Vec2{-e.Direction.Y, e.Direction.X}
	}
	return out
}

func projectOnto(verts []Vec2, pos Vec2, axis Vec2) (min, max float64) {
	min = verts[0].Add(pos).Dot(axis)
	max = min
	for i := 1; i < len(verts); i++ {
		v := verts[i].Add(pos).Dot(axis)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Intersects reports whether convex polygons a (at aPos) and b (at bPos)
// overlap with positive area. Polygons that only touch along an edge or at
// a vertex do not count, so a snap placement in vertex contact with an
// obstacle traces clear. Separating-axis test over both rings' edge
// normals.
func Intersects(a Polygon, aPos Vec2, b Polygon, bPos Vec2) bool {
	if len(a.Vertices) == 0 || len(b.Vertices) == 0 {
		return false
	}
	if !a.aabb.Translate(aPos).Intersects(b.aabb.Translate(bPos)) {
		return false
	}

	for _, axis := range axes(a) {
		aMin, aMax := projectOnto(a.Vertices, aPos, axis)
		bMin, bMax := projectOnto(b.Vertices, bPos, axis)
		if aMax <= bMin || bMax <= aMin {
			return false
		}
	}
	for _, axis := range axes(b) {
		aMin, aMax := projectOnto(a.Vertices, aPos, axis)
		bMin, bMax := projectOnto(b.Vertices, bPos, axis)
		if aMax <= bMin || bMax <= aMin {
			return false
		}
	}
	return true
}

// Sweep builds the set of convex pieces covering the area a polygon p
// covers while translating from `from` to `to`. Each piece is either the
// polygon's start/end placement, or the (generally non-convex-with-the-
// polygon-but-individually-convex) quad traced by one edge's two endpoints
// translated by the displacement. spec.md 4.1/8 and the glossary both
// describe a sweep as a set of convex shapes, not a single hull, which is
// what lets TraceExhaust test each piece independently with plain
// convex-convex SAT.
func Sweep(p Polygon, from, to Vec2) []Polygon {
	disp := to.Sub(from)
	if disp.X == 0 && disp.Y == 0 {
		return []Polygon{translatedCopy(p, from)}
	}

	pieces := make([]Polygon, 0, len(p.edges)+2)
	pieces = append(pieces, translatedCopy(p, from))
	pieces = append(pieces, translatedCopy(p, to))

	for _, e := range p.edges {
		quad := NewPolygon([]Vec2{
			e.From.Add(from),
			e.To.Add(from),
			e.To.Add(to),
			e.From.Add(to),
		})
		pieces = append(pieces, quad)
	}
	return pieces
}

func translatedCopy(p Polygon, pos Vec2) Polygon {
	verts := make([]Vec2, len(p.Vertices))
	for i, v := range p.Vertices {
		verts[i] = v.Add(pos)
	}
	return NewPolygon(verts)
}
