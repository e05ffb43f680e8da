package simplemap

import (
	"testing"

	"github.com/lixenwraith/polypath/collidable"
	"github.com/lixenwraith/polypath/geom"
)

func unitSquare() geom.Polygon {
	return geom.NewPolygon([]geom.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}})
}

func TestRegisterAssignsSequentialIDs(t *testing.T) {
	m := New(100, 100)
	a := m.Register(collidable.New(geom.Vec2{10, 10}, unitSquare(), 0))
	b := m.Register(collidable.New(geom.Vec2{20, 20}, unitSquare(), 0))
	if a != 0 || b != 1 {
		t.Fatalf("ids = %d, %d, want 0, 1", a, b)
	}
}

func TestContains(t *testing.T) {
	m := New(100, 100)
	sq := unitSquare()
	if !m.Contains(sq, geom.Vec2{50, 50}) {
		t.Fatal("centered square should be contained")
	}
	if m.Contains(sq, geom.Vec2{0, 0}) {
		t.Fatal("square straddling the boundary should not be contained")
	}
	if m.Contains(sq, geom.Vec2{-5, 50}) {
		t.Fatal("square with negative AABB corner should not be contained")
	}
}

func TestGetIntersectingBreaksTiesLeft(t *testing.T) {
	m := New(100, 100)
	id1 := m.Register(collidable.New(geom.Vec2{50, 50}, unitSquare(), 0))
	m.Register(collidable.New(geom.Vec2{50, 50}, unitSquare(), 0))

	got, ok := m.GetIntersecting(geom.Vec2{50, 50})
	if !ok {
		t.Fatal("expected a hit at the shared center")
	}
	if got != id1 {
		t.Fatalf("GetIntersecting = %d, want earliest-registered id %d", got, id1)
	}
}

func TestGetIntersectingBoundaryIsOutside(t *testing.T) {
	m := New(100, 100)
	m.Register(collidable.New(geom.Vec2{50, 50}, unitSquare(), 0))
	if _, ok := m.GetIntersecting(geom.Vec2{51, 50}); ok {
		t.Fatal("boundary point should not be reported as intersecting")
	}
}

func TestTraceClearWhenNoObstacles(t *testing.T) {
	m := New(100, 100)
	if !m.TraceSweep(unitSquare(), geom.Vec2{10, 10}, geom.Vec2{90, 10}, nil, 0) {
		t.Fatal("empty map should always trace clear")
	}
}

func TestTraceBlockedByObstacle(t *testing.T) {
	m := New(100, 100)
	m.Register(collidable.New(geom.Vec2{50, 10}, unitSquare(), 0))
	if m.TraceSweep(unitSquare(), geom.Vec2{10, 10}, geom.Vec2{90, 10}, nil, 0) {
		t.Fatal("sweep through the obstacle should be blocked")
	}
}

func TestTraceExhaustHonoursExclusions(t *testing.T) {
	m := New(100, 100)
	id := m.Register(collidable.New(geom.Vec2{50, 10}, unitSquare(), 0b1))

	hits := m.TraceExhaustSweep(unitSquare(), geom.Vec2{10, 10}, geom.Vec2{90, 10}, nil, 0)
	if len(hits) != 1 || hits[0].ID != id {
		t.Fatalf("expected exactly one hit on id %d, got %+v", id, hits)
	}

	clearByID := m.TraceExhaustSweep(unitSquare(), geom.Vec2{10, 10}, geom.Vec2{90, 10}, map[uint32]bool{id: true}, 0)
	if len(clearByID) != 0 {
		t.Fatalf("excluding by id should leave no hits, got %+v", clearByID)
	}

	clearByFlag := m.TraceExhaustSweep(unitSquare(), geom.Vec2{10, 10}, geom.Vec2{90, 10}, nil, 0b1)
	if len(clearByFlag) != 0 {
		t.Fatalf("excluding by flag should leave no hits, got %+v", clearByFlag)
	}
}
