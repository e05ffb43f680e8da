package partition

import (
	"math"
	"sort"

	"github.com/lixenwraith/polypath/collidable"
	"github.com/lixenwraith/polypath/geom"
	"github.com/lixenwraith/polypath/metrics"
	"github.com/lixenwraith/polypath/tunable"
)

// considerSplit fires when the leaf at leafIdx exceeds
// TriggerCreateEntities. It chooses the axis and split coordinate
// minimizing the entity-repulsion punishment P(x) = sum 1/(a*d^2+b*|d|+c)
// over both axes' normalized projections, then materializes the split.
func (m *Map) considerSplit(leafIdx int) {
	lf := m.leaves[leafIdx]
	if len(lf.collidables) <= m.tunables.TriggerCreateEntities {
		return
	}

	axis, worldSplit, ok := m.chooseSplit(lf)
	if !ok {
		return
	}

	m.materializeSplit(leafIdx, axis, worldSplit)
	m.incr(metrics.CounterSplits)
}

// chooseSplit evaluates both axes and returns the winning axis and the
// split coordinate in world units.
func (m *Map) chooseSplit(lf leaf) (splitAxis, float64, bool) {
	width := lf.rect.Width()
	height := lf.rect.Height()

	xPoints := normalizedProjections(lf, axisX, width, height)
	yPoints := normalizedProjections(lf, axisY, width, height)

	xBest, xOK := bestSplitNormalized(xPoints, m.tunables)
	yBest, yOK := bestSplitNormalized(yPoints, m.tunables)

	longer := math.Max(width, height)

	switch {
	case xOK && (!yOK || xBest.punishment <= yBest.punishment):
		world := (xBest.x-axisOffset(axisX, width, height))*longer + lf.rect.MinX
		return axisX, clampToRect(world, lf.rect.MinX, lf.rect.MaxX), true
	case yOK:
		world := (yBest.x-axisOffset(axisY, width, height))*longer + lf.rect.MinY
		return axisY, clampToRect(world, lf.rect.MinY, lf.rect.MaxY), true
	default:
		return 0, 0, false
	}
}

// axisOffset returns the minority-axis centering offset normalizedProjections
// adds to axis's forward projection, so chooseSplit's inverse transform can
// subtract it back out. Zero when axis is the longer (or equal) side.
func axisOffset(axis splitAxis, width, height float64) float64 {
	longer := math.Max(width, height)
	if longer == 0 {
		return 0
	}
	span := width
	if axis == axisY {
		span = height
	}
	if span < longer {
		return (1 - span/longer) / 2
	}
	return 0
}

func clampToRect(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizedProjections projects each collidable's position onto axis,
// normalized to [0,1] along the leaf rect's longer side. When this axis is
// the shorter side, projections are re-centered by (1-span/longer)/2,
// which penalizes splitting across the thin dimension (spec.md 4.2).
func normalizedProjections(lf leaf, axis splitAxis, width, height float64) []float64 {
	longer := math.Max(width, height)
	if longer == 0 {
		return make([]float64, len(lf.collidables))
	}

	base := lf.rect.MinX
	if axis == axisY {
		base = lf.rect.MinY
	}
	offset := axisOffset(axis, width, height)

	points := make([]float64, len(lf.collidables))
	for i, c := range lf.collidables {
		var v float64
		if axis == axisX {
			v = c.Position.X
		} else {
			v = c.Position.Y
		}
		points[i] = (v-base)/longer + offset
	}
	return points
}

type seedResult struct {
	x          float64
	punishment float64
}

// bestSplitNormalized sorts the projected points, skips the outermost
// band per spec.md 4.2's edges formula, runs bounded Newton iteration from
// each adjacent-pair midpoint seed within the viable band, and returns the
// best (lowest punishment) optimum found across all seeds.
func bestSplitNormalized(points []float64, t tunable.Set) (seedResult, bool) {
	n := len(points)
	if n < 2*t.MinPartitionEntities {
		return seedResult{}, false
	}

	ps := append([]float64(nil), points...)
	sort.Float64s(ps)

	viable := n - 2*t.MinPartitionEntities
	if alt := 2 * t.MaxPartitionEntities; alt < viable {
		viable = alt
	}
	edges := (n - viable) / 2
	if edges < t.MinPartitionEntities {
		edges = t.MinPartitionEntities
	}

	lo := edges
	hi := n - 1 - edges
	if lo >= hi {
		return seedResult{}, false
	}

	best := seedResult{punishment: math.Inf(1)}
	found := false

	for i := lo; i < hi; i++ {
		seed := (ps[i] + ps[i+1]) / 2
		res, ok := newtonMinimize(ps, seed, ps[i], ps[i+1], t)
		if !ok {
			continue
		}
		found = true
		if res.punishment < best.punishment {
			best = res
		}
	}

	return best, found
}

const newtonEpsilon = 1e-9

// newtonMinimize runs up to t.NewtonMaxIterations Newton steps on P
// starting at seed, bracketed to [bracketLo, bracketHi]. It tracks the
// lowest P(x) seen across the whole trajectory (including the seed
// itself), since the final iterate is not guaranteed to be the best one
// visited when a step is aborted mid-flight.
func newtonMinimize(zs []float64, seed, bracketLo, bracketHi float64, t tunable.Set) (seedResult, bool) {
	x := seed
	best := seedResult{x: x, punishment: punishment(zs, x, t)}

	for iter := 0; iter < t.NewtonMaxIterations; iter++ {
		d1 := punishmentD1(zs, x, t)
		d2 := punishmentD2(zs, x, t)

		if math.Abs(d1) < newtonEpsilon {
			break // flat: derivative vanished, current x is a stationary point
		}
		if math.Abs(d2) < newtonEpsilon {
			break // degenerate: second derivative vanished, Newton step undefined
		}

		next := x - d1/d2
		if math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if next < bracketLo || next > bracketHi {
			break
		}

		x = next
		p := punishment(zs, x, t)
		if p < best.punishment {
			best = seedResult{x: x, punishment: p}
		}
	}

	return best, true
}

// punishment evaluates P(x) = sum 1/(a*u^2 + b*|u| + c), u = z_i - x.
func punishment(zs []float64, x float64, t tunable.Set) float64 {
	var sum float64
	for _, z := range zs {
		u := z - x
		f := t.PunishmentA*u*u + t.PunishmentB*math.Abs(u) + t.PunishmentC
		sum += 1 / f
	}
	return sum
}

// punishmentD1 evaluates dP/dx. For f_i(x) = a*u^2 + b*|u| + c with
// u = z_i - x, f_i'(x) = -2a*u - b*sign(u), so d/dx[1/f_i] = -f_i'/f_i^2 =
// (2a*u + b*sign(u))/f_i^2.
func punishmentD1(zs []float64, x float64, t tunable.Set) float64 {
	var sum float64
	for _, z := range zs {
		u := z - x
		f := t.PunishmentA*u*u + t.PunishmentB*math.Abs(u) + t.PunishmentC
		sum += (2*t.PunishmentA*u + t.PunishmentB*sign(u)) / (f * f)
	}
	return sum
}

// punishmentD2 evaluates d2P/dx2. f_i''(x) = 2a (constant, since sign(u)
// is piecewise constant); d2/dx2[1/f_i] = -f_i''/f_i^2 + 2*(f_i')^2/f_i^3.
func punishmentD2(zs []float64, x float64, t tunable.Set) float64 {
	var sum float64
	for _, z := range zs {
		u := z - x
		f := t.PunishmentA*u*u + t.PunishmentB*math.Abs(u) + t.PunishmentC
		fPrime := -2*t.PunishmentA*u - t.PunishmentB*sign(u)
		sum += -2*t.PunishmentA/(f*f) + 2*fPrime*fPrime/(f*f*f)
	}
	return sum
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// materializeSplit allocates a new node and a new leaf, re-homes the old
// leaf's collidables into whichever (or both) of the two new rectangles
// they intersect, and splices the node into the tree in place of the old
// leaf. The existing leaf keeps the left (or top) half; the new leaf gets
// the right (or bottom) half, per spec.md 4.2.
func (m *Map) materializeSplit(leafIdx int, axis splitAxis, worldSplit float64) {
	old := m.leaves[leafIdx]

	leftRect, rightRect := old.rect, old.rect
	if axis == axisX {
		leftRect.MaxX = worldSplit
		rightRect.MinX = worldSplit
	} else {
		leftRect.MaxY = worldSplit
		rightRect.MinY = worldSplit
	}

	nodeIdx := m.allocNode()
	newLeafIdx := m.allocLeaf()

	parent := old.partitionIdx
	wasLeft := old.isLeft

	m.nodes[nodeIdx] = node{
		parent:      parent,
		isLeftOfParent: wasLeft,
		axis:        axis,
		split:       worldSplit,
		leftIsLeaf:  true,
		left:        leafIdx,
		rightIsLeaf: true,
		right:       newLeafIdx,
	}

	m.leaves[leafIdx] = leaf{partitionIdx: nodeIdx, isLeft: true, rect: leftRect}
	m.leaves[newLeafIdx] = leaf{partitionIdx: nodeIdx, isLeft: false, rect: rightRect}

	for _, c := range old.collidables {
		if rectIntersectsCollidable(leftRect, c) {
			m.leaves[leafIdx].collidables = append(m.leaves[leafIdx].collidables, c)
		}
		if rectIntersectsCollidable(rightRect, c) {
			m.leaves[newLeafIdx].collidables = append(m.leaves[newLeafIdx].collidables, c)
		}
	}

	if parent == -1 {
		m.rootIsLeaf = false
		m.root = nodeIdx
	} else {
		p := &m.nodes[parent]
		if wasLeft {
			p.leftIsLeaf = false
			p.left = nodeIdx
		} else {
			p.rightIsLeaf = false
			p.right = nodeIdx
		}
	}
}

func rectIntersectsCollidable(r geom.Rect, c collidable.Collidable) bool {
	return geom.Intersects(r.ToPolygon(), geom.Vec2{}, c.Bounds, c.Position)
}

// allocNode appends a zero node, doubling the backing array's capacity
// when full, and returns the new node's index. Indices remain stable
// across growth; they do not across collapse (see prune.go).
func (m *Map) allocNode() int {
	if m.numNodes >= len(m.nodes) {
		m.nodes = append(m.nodes, node{})
	}
	idx := m.numNodes
	m.numNodes++
	return idx
}

// allocLeaf appends a zero leaf, doubling capacity when full, and returns
// the new leaf's index.
func (m *Map) allocLeaf() int {
	if m.numLeafs >= len(m.leaves) {
		m.leaves = append(m.leaves, leaf{})
	}
	idx := m.numLeafs
	m.numLeafs++
	return idx
}
