package partition

import (
	"testing"

	"github.com/lixenwraith/polypath/collidable"
	"github.com/lixenwraith/polypath/geom"
	"github.com/lixenwraith/polypath/tunable"
)

func smallSquare() geom.Polygon {
	return geom.NewPolygon([]geom.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}})
}

func newTestMap(t *testing.T) *Map {
	t.Helper()
	m, err := New(2000, 1000, tunable.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.SetDebug(true)
	return m
}

func TestNewRejectsInvalidTunables(t *testing.T) {
	bad := tunable.Default()
	bad.MaxPartitionEntities = 1
	if _, err := New(10, 10, bad); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestRegisterAndFindMap(t *testing.T) {
	m := newTestMap(t)
	id := m.Register(collidable.New(geom.Vec2{100, 100}, smallSquare(), 0), false)
	c, ok := m.Lookup(id)
	if !ok {
		t.Fatalf("Lookup(%d) not found", id)
	}
	if c.Position != (geom.Vec2{100, 100}) {
		t.Fatalf("position = %v, want (100,100)", c.Position)
	}

	leaf := m.FindMap(geom.Vec2{100, 100})
	if leaf < 0 || leaf >= m.numLeafs {
		t.Fatalf("FindMap returned out-of-range leaf %d", leaf)
	}
}

func TestRegisterManyTriggersSplitAndKeepsInvariants(t *testing.T) {
	m := newTestMap(t)
	for i := 0; i < 50; i++ {
		x := float64(100 + (i%20)*90)
		y := float64(100 + (i/20)*300)
		m.Register(collidable.New(geom.Vec2{x, y}, smallSquare(), 0), false)
	}

	if err := Verify(m); err != nil {
		t.Fatalf("Verify after registrations: %v", err)
	}
	if m.rootIsLeaf {
		t.Fatal("expected the tree to have split after 50 registrations")
	}
}

func TestUnregisterUnknownIDPanics(t *testing.T) {
	m := newTestMap(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown id")
		}
	}()
	m.Unregister(999)
}

func TestMoveUnknownIDPanics(t *testing.T) {
	m := newTestMap(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown id")
		}
	}()
	m.Move(999, geom.Vec2{1, 1})
}

func TestRegisterSplitUnregisterCollapseKeepsInvariants(t *testing.T) {
	m := newTestMap(t)

	var ids []uint32
	for i := 0; i < 50; i++ {
		x := float64(100 + (i%20)*90)
		y := float64(100 + (i/20)*300)
		id := m.Register(collidable.New(geom.Vec2{x, y}, smallSquare(), 0), false)
		ids = append(ids, id)
		if err := Verify(m); err != nil {
			t.Fatalf("Verify after Register #%d: %v", i, err)
		}
	}

	leavesBeforeUnregister := m.numLeafs

	for i, id := range ids {
		if i%2 == 0 {
			m.Unregister(id)
			if err := Verify(m); err != nil {
				t.Fatalf("Verify after Unregister(%d): %v", id, err)
			}
		}
	}

	if m.numLeafs > leavesBeforeUnregister {
		t.Fatalf("leaf count grew after unregistering: before=%d after=%d", leavesBeforeUnregister, m.numLeafs)
	}
}

func TestMoveFastPathWithinLeaf(t *testing.T) {
	m := newTestMap(t)
	id := m.Register(collidable.New(geom.Vec2{100, 100}, smallSquare(), 0), false)
	m.Move(id, geom.Vec2{105, 100})

	c, _ := m.Lookup(id)
	if c.Position != (geom.Vec2{105, 100}) {
		t.Fatalf("position after Move = %v, want (105,100)", c.Position)
	}
	if err := Verify(m); err != nil {
		t.Fatalf("Verify after Move: %v", err)
	}
}

func TestGetIntersectingTieBreaksLeft(t *testing.T) {
	m := newTestMap(t)
	first := m.Register(collidable.New(geom.Vec2{500, 500}, smallSquare(), 0), false)
	m.Register(collidable.New(geom.Vec2{500, 500}, smallSquare(), 0), false)

	got, ok := m.GetIntersecting(geom.Vec2{500, 500})
	if !ok || got != first {
		t.Fatalf("GetIntersecting = %d, %v; want %d, true", got, ok, first)
	}
}

func TestTraceEquivalenceAcrossManyLeaves(t *testing.T) {
	m := newTestMap(t)
	for i := 0; i < 50; i++ {
		x := float64(100 + (i%20)*90)
		y := float64(100 + (i/20)*300)
		m.Register(collidable.New(geom.Vec2{x, y}, smallSquare(), 0), false)
	}

	// A long sweep crossing many leaves must still see every collidable
	// it actually touches, not just the ones in its origin leaf.
	hits := m.TraceExhaustSweep(smallSquare(), geom.Vec2{95, 100}, geom.Vec2{1900, 100}, nil, 0)
	if len(hits) == 0 {
		t.Fatal("expected the long sweep to hit at least one collidable")
	}
	seen := make(map[uint32]bool)
	for _, h := range hits {
		if seen[h.ID] {
			t.Fatalf("duplicate hit for id %d", h.ID)
		}
		seen[h.ID] = true
	}
}

func TestSplitHysteresisUnderSmallMotion(t *testing.T) {
	m := newTestMap(t)
	tn := m.tunables

	var ids []uint32
	// Keep the count comfortably between destroy+1 and create, so no
	// split or collapse should ever fire regardless of motion.
	count := tn.TriggerDestroyEntities + 2
	for i := 0; i < count; i++ {
		id := m.Register(collidable.New(geom.Vec2{100 + float64(i)*5, 100}, smallSquare(), 0), false)
		ids = append(ids, id)
	}

	leafCountBefore := m.numLeafs
	for step := 0; step < 20; step++ {
		for _, id := range ids {
			c, _ := m.Lookup(id)
			m.Move(id, geom.Vec2{c.Position.X + 1, c.Position.Y})
		}
	}

	if m.numLeafs != leafCountBefore {
		t.Fatalf("leaf count changed under small motion: before=%d after=%d", leafCountBefore, m.numLeafs)
	}
	if err := Verify(m); err != nil {
		t.Fatalf("Verify after hysteresis loop: %v", err)
	}
}
