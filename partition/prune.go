package partition

import (
	"github.com/lixenwraith/polypath/collidable"
	"github.com/lixenwraith/polypath/geom"
	"github.com/lixenwraith/polypath/metrics"
)

// considerPrune is given the set of leaves whose count just dropped
// (after Unregister or Move). For each, it climbs toward the root: at
// every ancestor partition, if that ancestor's combined entity count
// (both sides) falls to or below TriggerDestroyEntities, the subtree is
// collapsed into a single fresh leaf and the climb continues from the
// collapsed leaf's new parent, since collapsing one level may make the
// next level eligible too. The root is never collapsed away entirely —
// collapse simply stops once there is no parent left to climb to.
func (m *Map) considerPrune(leafIdxs []int) {
	visited := make(map[int]bool)
	for _, li := range leafIdxs {
		if li < 0 || li >= m.numLeafs {
			continue
		}
		partIdx := m.leaves[li].partitionIdx
		for partIdx != -1 {
			if visited[partIdx] {
				break
			}
			total := m.CountNumEntities(partIdx, true) + m.CountNumEntities(partIdx, false)
			if total > m.tunables.TriggerDestroyEntities {
				break
			}
			visited[partIdx] = true
			partIdx = m.collapse(partIdx)
			m.incr(metrics.CounterCollapses)
		}
	}
}

// collapse merges the entire subtree rooted at partIdx into a single
// fresh leaf spanning the rectangle partIdx itself covers, attaches that
// leaf where partIdx used to sit, and returns the (remapped) parent
// partition to resume the prune climb from, or -1 if partIdx was the
// root (nothing left to climb to).
func (m *Map) collapse(partIdx int) int {
	n := m.nodes[partIdx]
	parent := n.parent
	wasLeft := n.isLeftOfParent

	rect := m.findMapLocationForNode(partIdx)
	merged := m.mergeAllChildren(partIdx)

	deadNodes := map[int]bool{partIdx: true}
	deadLeaves := map[int]bool{}
	m.collectSubtreeIndices(partIdx, deadNodes, deadLeaves)

	nodeShift := buildShiftTable(m.numNodes, deadNodes)
	leafShift := buildShiftTable(m.numLeafs, deadLeaves)

	newNodes := make([]node, 0, m.numNodes-len(deadNodes))
	for i := 0; i < m.numNodes; i++ {
		if deadNodes[i] {
			continue
		}
		nn := m.nodes[i]
		if nn.parent != -1 {
			nn.parent = remap(nn.parent, nodeShift)
		}
		if nn.leftIsLeaf {
			nn.left = remap(nn.left, leafShift)
		} else {
			nn.left = remap(nn.left, nodeShift)
		}
		if nn.rightIsLeaf {
			nn.right = remap(nn.right, leafShift)
		} else {
			nn.right = remap(nn.right, nodeShift)
		}
		newNodes = append(newNodes, nn)
	}

	newLeaves := make([]leaf, 0, m.numLeafs-len(deadLeaves))
	for i := 0; i < m.numLeafs; i++ {
		if deadLeaves[i] {
			continue
		}
		lf := m.leaves[i]
		if lf.partitionIdx != -1 {
			lf.partitionIdx = remap(lf.partitionIdx, nodeShift)
		}
		newLeaves = append(newLeaves, lf)
	}

	// partIdx == m.root only when parent == -1 (handled separately below),
	// so m.root is never among deadNodes here and can always be remapped.
	var remappedOldRoot int
	if !m.rootIsLeaf {
		remappedOldRoot = remap(m.root, nodeShift)
	}

	m.nodes = newNodes
	m.numNodes = len(newNodes)
	m.leaves = newLeaves
	m.numLeafs = len(newLeaves)

	newParent := -1
	if parent != -1 {
		newParent = remap(parent, nodeShift)
	}

	mergedLeafIdx := m.allocLeaf()
	m.leaves[mergedLeafIdx] = leaf{partitionIdx: newParent, isLeft: wasLeft, rect: rect, collidables: merged}

	if parent == -1 {
		m.rootIsLeaf = true
		m.root = mergedLeafIdx
	} else {
		if !m.rootIsLeaf {
			m.root = remappedOldRoot
		}
		p := &m.nodes[newParent]
		if wasLeft {
			p.leftIsLeaf = true
			p.left = mergedLeafIdx
		} else {
			p.rightIsLeaf = true
			p.right = mergedLeafIdx
		}
	}

	return newParent
}

// mergeAllChildren walks the subtree under partIdx (both sides),
// collecting every distinct collidable from every descendant leaf.
// Deduplicated by id, since a collidable can straddle more than one leaf.
func (m *Map) mergeAllChildren(partIdx int) []collidable.Collidable {
	seen := make(map[uint32]bool)
	var out []collidable.Collidable

	var walk func(isLeaf bool, idx int)
	walk = func(isLeaf bool, idx int) {
		if isLeaf {
			for _, c := range m.leaves[idx].collidables {
				if !seen[c.ID] {
					seen[c.ID] = true
					out = append(out, c)
				}
			}
			return
		}
		n := m.nodes[idx]
		walk(n.leftIsLeaf, n.left)
		walk(n.rightIsLeaf, n.right)
	}
	n := m.nodes[partIdx]
	walk(n.leftIsLeaf, n.left)
	walk(n.rightIsLeaf, n.right)
	return out
}

func (m *Map) collectSubtreeIndices(nodeIdx int, deadNodes, deadLeaves map[int]bool) {
	n := m.nodes[nodeIdx]
	if n.leftIsLeaf {
		deadLeaves[n.left] = true
	} else {
		deadNodes[n.left] = true
		m.collectSubtreeIndices(n.left, deadNodes, deadLeaves)
	}
	if n.rightIsLeaf {
		deadLeaves[n.right] = true
	} else {
		deadNodes[n.right] = true
		m.collectSubtreeIndices(n.right, deadNodes, deadLeaves)
	}
}

// buildShiftTable returns, for every index in [0,n), how many dead
// indices precede or equal it — the "rolling" shift such that a
// surviving index i maps to i - shift[i].
func buildShiftTable(n int, dead map[int]bool) []int {
	shift := make([]int, n)
	running := 0
	for i := 0; i < n; i++ {
		if dead[i] {
			running++
		}
		shift[i] = running
	}
	return shift
}

func remap(idx int, shift []int) int {
	if idx < 0 || idx >= len(shift) {
		return idx
	}
	return idx - shift[idx]
}

// findMapLocationForNode determines the world rectangle spanned by the
// entire subtree rooted at partIdx (i.e. both its sides combined): walk
// from partIdx up to the root recording which side was taken at each hop,
// then descend from the root rectangle tightening X or Y by each hop's
// split, same technique spec.md 4.2's FindMapLocation describes.
func (m *Map) findMapLocationForNode(partIdx int) geom.Rect {
	type hop struct {
		axis  splitAxis
		split float64
		left  bool
	}
	var hops []hop

	idx := partIdx
	for idx != -1 {
		n := m.nodes[idx]
		if n.parent == -1 {
			break
		}
		p := m.nodes[n.parent]
		hops = append(hops, hop{axis: p.axis, split: p.split, left: n.isLeftOfParent})
		idx = n.parent
	}

	rect := geom.Rect{MinX: 0, MinY: 0, MaxX: m.Width, MaxY: m.Height}
	for i := len(hops) - 1; i >= 0; i-- {
		h := hops[i]
		if h.axis == axisX {
			if h.left {
				rect.MaxX = h.split
			} else {
				rect.MinX = h.split
			}
		} else {
			if h.left {
				rect.MaxY = h.split
			} else {
				rect.MinY = h.split
			}
		}
	}
	return rect
}

// FindMapLocation returns the world rectangle a given side (left/top when
// left is true, right/bottom otherwise) of the partition at partIdx
// covers, independent of what tree currently sits beneath that side.
func (m *Map) FindMapLocation(partIdx int, left bool) geom.Rect {
	n := m.nodes[partIdx]
	full := m.findMapLocationForNode(partIdx)
	if left {
		if n.axis == axisX {
			full.MaxX = n.split
		} else {
			full.MaxY = n.split
		}
	} else {
		if n.axis == axisX {
			full.MinX = n.split
		} else {
			full.MinY = n.split
		}
	}
	return full
}
