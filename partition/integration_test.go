package partition

import (
	"testing"

	"github.com/lixenwraith/polypath/collidable"
	"github.com/lixenwraith/polypath/geom"
	"github.com/lixenwraith/polypath/pathfinder"
	"github.com/lixenwraith/polypath/tunable"
)

// TestAdaptivePartitionWithPathfinding is spec.md 8's S6: a PartitionedMap
// under grid-pattern registration and half-depopulation must keep its
// invariants at every step and never need more leaves after the
// depopulation than it did before, and a path search against it must
// still find a valid route once obstacles are thinned out.
func TestAdaptivePartitionWithPathfinding(t *testing.T) {
	m, err := New(2000, 1000, tunable.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.SetDebug(true)

	var ids []uint32
	var positions []geom.Vec2
	for i := 0; i < 50; i++ {
		x := float64(100 + (i%10)*180)
		y := float64(100 + (i/10)*180)
		pos := geom.Vec2{X: x, Y: y}
		id := m.Register(collidable.New(pos, smallSquare(), 0), false)
		ids = append(ids, id)
		positions = append(positions, pos)

		if err := Verify(m); err != nil {
			t.Fatalf("Verify after Register #%d: %v", i, err)
		}
	}

	leavesBeforeDepopulation := m.numLeafs

	var removed []int
	for i, id := range ids {
		if i%2 == 0 {
			m.Unregister(id)
			removed = append(removed, i)
			if err := Verify(m); err != nil {
				t.Fatalf("Verify after Unregister(%d): %v", id, err)
			}
		}
	}

	if m.numLeafs > leavesBeforeDepopulation {
		t.Fatalf("leaf count grew after depopulation: before=%d after=%d", leavesBeforeDepopulation, m.numLeafs)
	}

	// Path between two surviving points (odd registration index — i%2==0
	// was unregistered above), around whatever obstacles remain between
	// them.
	startPos := positions[1]
	endPos := positions[len(positions)-1]

	moving := smallSquare()
	pf := pathfinder.New(m, moving, startPos, endPos, map[uint32]bool{ids[1]: true, ids[len(ids)-1]: true}, 0)
	path, ok := pf.CalculatePath()
	if !ok {
		t.Fatal("expected a path between two surviving registration points")
	}
	if len(path) == 0 || path[len(path)-1] != endPos {
		t.Fatalf("path = %v, want it to end at %v", path, endPos)
	}

	from := startPos
	for _, p := range path {
		if !m.TraceSweep(moving, from, p, map[uint32]bool{ids[1]: true, ids[len(ids)-1]: true}, 0) {
			t.Fatalf("segment %v -> %v is not clear", from, p)
		}
		from = p
	}
}
