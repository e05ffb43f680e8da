package partition

import (
	"math"
	"testing"

	"github.com/lixenwraith/polypath/collidable"
	"github.com/lixenwraith/polypath/geom"
	"github.com/lixenwraith/polypath/tunable"
)

// TestChooseSplitMinorityAxisOffset forces the shorter (minority) axis to
// win by making the longer axis's points collapse to a single normalized
// value (no separation to exploit) while the shorter axis has a clean
// bimodal split. If chooseSplit's world-coordinate inverse transform fails
// to subtract normalizedProjections' centering offset back out, the
// returned split lands outside the rect and gets clamped to its far edge
// instead of the true optimum between the two clusters.
func TestChooseSplitMinorityAxisOffset(t *testing.T) {
	m := &Map{tunables: tunable.Default()}

	// Width (20) < height (200): X is the shorter, minority axis.
	rect := geom.Rect{MinX: 0, MinY: 0, MaxX: 20, MaxY: 200}

	lf := leaf{rect: rect}
	for i := 0; i < 5; i++ {
		lf.collidables = append(lf.collidables,
			collidable.New(geom.Vec2{X: 2, Y: 100}, smallSquare(), 0),
			collidable.New(geom.Vec2{X: 18, Y: 100}, smallSquare(), 0),
		)
	}

	axis, split, ok := m.chooseSplit(lf)
	if !ok {
		t.Fatal("expected chooseSplit to find a split")
	}
	if axis != axisX {
		t.Fatalf("axis = %v, want axisX (the minority axis, forced by identical Y)", axis)
	}
	if split <= rect.MinX || split >= rect.MaxX {
		t.Fatalf("split = %v, want a point strictly inside (%v, %v)", split, rect.MinX, rect.MaxX)
	}
	if math.Abs(split-10) > 1e-6 {
		t.Fatalf("split = %v, want ~10 (midpoint between the x=2 and x=18 clusters)", split)
	}
}

func TestAxisOffsetZeroOnLongerAxis(t *testing.T) {
	if got := axisOffset(axisY, 20, 200); got != 0 {
		t.Fatalf("axisOffset(longer axis) = %v, want 0", got)
	}
	if got := axisOffset(axisX, 20, 200); got <= 0 {
		t.Fatalf("axisOffset(shorter axis) = %v, want > 0", got)
	}
}

func TestBestSplitNormalizedBimodalFindsMidpoint(t *testing.T) {
	points := make([]float64, 0, 10)
	for i := 0; i < 5; i++ {
		points = append(points, 0.1, 0.9)
	}

	best, ok := bestSplitNormalized(points, tunable.Default())
	if !ok {
		t.Fatal("expected a viable split")
	}
	if math.Abs(best.x-0.5) > 1e-6 {
		t.Fatalf("best.x = %v, want ~0.5", best.x)
	}
}
