// Package pathfinder implements the any-angle, vertex-snapping best-first
// search spec.md 4.3 describes: a moving convex polygon is walked around
// obstacle corners toward a destination, snapping to the polygon vertex
// that would naturally touch each obstacle vertex. Grounded on the pack's
// udisondev/la2go geo pathfinding (other_examples) for the overall A*
// shape — a node type carrying a parent pointer and g/h costs, a closed
// set keyed to prevent revisits, path reconstruction by walking parent
// then reversing — generalized from a 3D grid-node A* to any-angle convex
// geometry with a composite (obstacle, vertex, vertex) closed-set key, and
// from container/heap to the teacher's hand-rolled binary heap
// (navigation/flowfield.go).
package pathfinder

import (
	"github.com/lixenwraith/polypath/collidable"
	"github.com/lixenwraith/polypath/geom"
	"github.com/lixenwraith/polypath/metrics"
	"github.com/lixenwraith/polypath/tunable"
)

// Map is the subset of simplemap.Map / partition.Map's method sets the
// pathfinder depends on. Both satisfy it without an explicit declaration.
type Map interface {
	Contains(poly geom.Polygon, pos geom.Vec2) bool
	Trace(traces []geom.Polygon, from geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) bool
	TraceExhaustSweep(poly geom.Polygon, from, to geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) []collidable.Collidable
}

// closedKey is the (obstacle, their vertex, our vertex) triple that
// bounds the search: each is visited at most once (spec.md 8, property 11).
type closedKey struct {
	obstacleID uint32
	theirVtx   int
	ourVtx     int
}

// pathNode is one placement of the moving polygon reached during search.
// parent == nil identifies the start node; hasObstacle == false likewise
// (the start node was not reached by snapping around anything).
type pathNode struct {
	location geom.Vec2
	parent   *pathNode
	g, h     float64

	hasObstacle bool
	obstacleID  uint32
	theirVtx    int
	ourVtx      int
}

// Pathfinder is bound to one (map, moving polygon, start, end, exclusions)
// and produces one path via CalculatePath. Not reusable across calls and
// not safe for concurrent use (spec.md 5).
type Pathfinder struct {
	m            Map
	moving       geom.Polygon
	start, end   geom.Vec2
	excludeIDs   map[uint32]bool
	excludeFlags uint64
	weight       float64
	metrics      *metrics.Registry

	closed map[closedKey]bool
	heap   minHeap
	nodes  []*pathNode
}

// WithMetrics attaches a counter registry; CalculatePath increments
// metrics.CounterPathsFound or metrics.CounterPathsFailed exactly once,
// mirroring partition.Map.WithMetrics.
func (pf *Pathfinder) WithMetrics(r *metrics.Registry) *Pathfinder {
	pf.metrics = r
	return pf
}

func (pf *Pathfinder) incr(name string) {
	if pf.metrics != nil {
		pf.metrics.Ints.Add(name, 1)
	}
}

// New constructs a Pathfinder using the default heuristic weight
// (tunable.Default().HeuristicWeight).
func New(m Map, moving geom.Polygon, start, end geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64) *Pathfinder {
	return NewWithTunables(m, moving, start, end, excludeIDs, excludeFlags, tunable.Default())
}

// NewWithTunables is New with an explicit tunable.Set, used when the
// heuristic weight has been overridden from its default.
func NewWithTunables(m Map, moving geom.Polygon, start, end geom.Vec2, excludeIDs map[uint32]bool, excludeFlags uint64, t tunable.Set) *Pathfinder {
	return &Pathfinder{
		m:            m,
		moving:       moving,
		start:        start,
		end:          end,
		excludeIDs:   excludeIDs,
		excludeFlags: excludeFlags,
		weight:       t.HeuristicWeight,
		closed:       make(map[closedKey]bool),
	}
}

// CalculatePath runs the search to completion and returns the resulting
// sequence of points (start excluded, end included), or ok == false if no
// path exists. A single-element result [end] means the straight line was
// already clear.
func (pf *Pathfinder) CalculatePath() (path []geom.Vec2, ok bool) {
	defer func() {
		if ok {
			pf.incr(metrics.CounterPathsFound)
		} else {
			pf.incr(metrics.CounterPathsFailed)
		}
	}()

	initialHits := pf.m.TraceExhaustSweep(pf.moving, pf.start, pf.end, pf.excludeIDs, pf.excludeFlags)
	if len(initialHits) == 0 {
		return []geom.Vec2{pf.end}, true
	}

	if !pf.m.Trace([]geom.Polygon{pf.moving}, pf.end, pf.excludeIDs, pf.excludeFlags) {
		return nil, false
	}

	start := &pathNode{location: pf.start, g: 0, h: pf.start.Distance(pf.end)}
	pf.heap = newMinHeap()
	pf.nodes = []*pathNode{start}
	pf.heap.push(entry{node: 0, priority: priority(start, pf.weight)})

	pf.queueCollidables(start, initialHits)

	for !pf.heap.empty() {
		e := pf.heap.pop()
		node := pf.nodes[e.node]

		hits := pf.m.TraceExhaustSweep(pf.moving, node.location, pf.end, pf.excludeIDs, pf.excludeFlags)
		if len(hits) == 0 {
			return reconstruct(node, pf.end), true
		}
		pf.queueCollidables(node, hits)
	}

	return nil, false
}

func priority(n *pathNode, weight float64) float64 {
	return n.g + weight*n.h
}

// reconstruct appends end, then walks node's parent chain appending each
// location (stopping before the start node, which has no parent), then
// reverses. The start point itself is never included.
func reconstruct(node *pathNode, end geom.Vec2) []geom.Vec2 {
	path := []geom.Vec2{end}
	for node.parent != nil {
		path = append(path, node.location)
		node = node.parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (pf *Pathfinder) pushNode(n *pathNode) {
	idx := len(pf.nodes)
	pf.nodes = append(pf.nodes, n)
	pf.heap.push(entry{node: idx, priority: priority(n, pf.weight)})
}

// queueCollidables processes obstacles (and any further obstacles an
// intervening trace turns up while doing so) to a fixed point, exactly
// once each, deduplicated by id — spec.md 4.3's QueueCollidables.
func (pf *Pathfinder) queueCollidables(from *pathNode, obstacles []collidable.Collidable) {
	seen := make(map[uint32]bool, len(obstacles))
	queue := append([]collidable.Collidable(nil), obstacles...)
	for _, o := range queue {
		seen[o.ID] = true
	}

	for i := 0; i < len(queue); i++ {
		extra := pf.considerObstacle(from, queue[i])
		for _, o := range extra {
			if seen[o.ID] {
				continue
			}
			seen[o.ID] = true
			queue = append(queue, o)
		}
	}
}

// considerObstacle evaluates every snap candidate against one obstacle,
// per spec.md 4.3's two regimes (fresh approach vs slide along the same
// obstacle), and returns any obstacles an intervening trace turned up.
func (pf *Pathfinder) considerObstacle(from *pathNode, obstacle collidable.Collidable) []collidable.Collidable {
	n := obstacle.Bounds.NumVertices()
	centroid := obstacle.Bounds.Centroid()
	fresh := !from.hasObstacle || from.obstacleID != obstacle.ID

	var extra []collidable.Collidable

	for theirVtx := 0; theirVtx < n; theirVtx++ {
		dir := centroid.Sub(obstacle.Bounds.VertexAt(theirVtx))
		ourVtx := pf.moving.FurthestVertexToward(dir)

		if fresh {
			extra = append(extra, pf.considerTarget(from, obstacle, theirVtx, ourVtx)...)
			continue
		}

		if !circularAdjacent(theirVtx, from.theirVtx, n) {
			continue
		}

		if ourVtx == from.ourVtx {
			extra = append(extra, pf.considerTarget(from, obstacle, theirVtx, ourVtx)...)
			continue
		}

		m := pf.moving.NumVertices()
		dir2 := shorterStepDirection(m, from.ourVtx, ourVtx)
		targetOurVtx := mod(from.ourVtx+dir2, m)

		ourEdge := edgeBetween(pf.moving, from.ourVtx, targetOurVtx)
		theirEdge := edgeBetween(obstacle.Bounds, from.theirVtx, theirVtx)

		if geom.ParallelEdges(ourEdge, theirEdge) {
			extra = append(extra, pf.considerTarget(from, obstacle, theirVtx, ourVtx)...)
			continue
		}

		extra = append(extra, pf.considerTarget(from, obstacle, from.theirVtx, targetOurVtx)...)
		extra = append(extra, pf.considerTarget(from, obstacle, theirVtx, from.ourVtx)...)
	}

	return extra
}

// considerTarget is spec.md 4.3's ConsiderTarget: close the triple and
// enqueue a node if the snap point is reachable and collision-free;
// return any intervening obstacles without closing the triple otherwise.
func (pf *Pathfinder) considerTarget(from *pathNode, obstacle collidable.Collidable, theirVtx, ourVtx int) []collidable.Collidable {
	key := closedKey{obstacle.ID, theirVtx, ourVtx}
	if pf.closed[key] {
		return nil
	}

	p := obstacle.Position.Add(obstacle.Bounds.VertexAt(theirVtx)).Sub(pf.moving.VertexAt(ourVtx))

	if !pf.m.Contains(pf.moving, p) {
		pf.closed[key] = true
		return nil
	}

	hits := pf.m.TraceExhaustSweep(pf.moving, from.location, p, pf.excludeIDs, pf.excludeFlags)
	if len(hits) == 0 {
		pf.closed[key] = true
		pf.pushNode(&pathNode{
			location:    p,
			parent:      from,
			g:           from.g + from.location.Distance(p),
			h:           p.Distance(pf.end),
			hasObstacle: true,
			obstacleID:  obstacle.ID,
			theirVtx:    theirVtx,
			ourVtx:      ourVtx,
		})
		return nil
	}

	return hits
}

// circularAdjacent reports whether i and j are one step apart on a ring
// of n vertices, accounting for wraparound.
func circularAdjacent(i, j, n int) bool {
	return mod(i-j, n) == 1 || mod(j-i, n) == 1
}

// shorterStepDirection returns +1 or -1: the single-step direction that
// moves from toward to the short way around a ring of n vertices. Ties
// (n even, exactly halfway) break toward +1 (increment), per spec.md 4.3.
func shorterStepDirection(n, from, to int) int {
	forward := mod(to-from, n)
	backward := mod(from-to, n)
	if forward <= backward {
		return 1
	}
	return -1
}

// edgeBetween returns the ring edge directly connecting a and b, which
// must be one step apart (in either direction).
func edgeBetween(p geom.Polygon, a, b int) geom.Edge {
	n := p.NumVertices()
	if b == mod(a+1, n) {
		return p.Edges()[a]
	}
	return p.Edges()[b]
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
