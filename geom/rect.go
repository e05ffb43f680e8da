package geom

// Rect is an axis-aligned rectangle using the half-open convention
// [MinX, MaxX) x [MinY, MaxY), matching the teacher's core.Area.Contains
// test (x >= a.X && x < a.X+a.Width).
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns MaxX - MinX.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns MaxY - MinY.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Translate returns r shifted by v.
func (r Rect) Translate(v Vec2) Rect {
	return Rect{r.MinX + v.X, r.MinY + v.Y, r.MaxX + v.X, r.MaxY + v.Y}
}

// ContainsPoint reports whether pt lies within r using [min, max) on both axes.
func (r Rect) ContainsPoint(pt Vec2) bool {
	return pt.X >= r.MinX && pt.X < r.MaxX && pt.Y >= r.MinY && pt.Y < r.MaxY
}

// ContainsRect reports whether o lies entirely within r, closed on both ends
// (used for leaf-tiling checks, where boundary-sharing is expected).
func (r Rect) ContainsRect(o Rect) bool {
	return o.MinX >= r.MinX && o.MaxX <= r.MaxX && o.MinY >= r.MinY && o.MaxY <= r.MaxY
}

// Intersects reports whether r and o overlap (closed ranges: touching edges count).
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// IntersectsPolygon reports whether r overlaps p's AABB placed at pos.
// This is the coarse leaf-dispatch test: partition leaves are matched
// against a polygon's bounding box, not its exact ring.
func (r Rect) IntersectsPolygon(p Polygon, pos Vec2) bool {
	return r.Intersects(p.aabb.Translate(pos))
}

// ToPolygon returns r as a four-vertex CCW polygon, so exact SAT tests
// (geom.Intersects) can be run between a partition leaf's rectangle and an
// arbitrary convex polygon instead of the coarser AABB-only test above.
func (r Rect) ToPolygon() Polygon {
	return NewPolygon([]Vec2{
		{r.MinX, r.MinY},
		{r.MaxX, r.MinY},
		{r.MaxX, r.MaxY},
		{r.MinX, r.MaxY},
	})
}
