package geom

import (
	"math"
	"testing"
)

func TestVec2Arithmetic(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, -1}

	if got := a.Add(b); got != (Vec2{4, 1}) {
		t.Fatalf("Add = %v, want (4,1)", got)
	}
	if got := a.Sub(b); got != (Vec2{-2, 3}) {
		t.Fatalf("Sub = %v, want (-2,3)", got)
	}
	if got := a.Scale(2); got != (Vec2{2, 4}) {
		t.Fatalf("Scale = %v, want (2,4)", got)
	}
	if got := a.Dot(b); got != 1 {
		t.Fatalf("Dot = %v, want 1", got)
	}
	if got := a.Cross(b); got != -7 {
		t.Fatalf("Cross = %v, want -7", got)
	}
}

func TestVec2Len(t *testing.T) {
	v := Vec2{3, 4}
	if got := v.Len(); got != 5 {
		t.Fatalf("Len = %v, want 5", got)
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}
	n := v.Normalize()
	if math.Abs(n.Len()-1) > 1e-9 {
		t.Fatalf("Normalize() length = %v, want 1", n.Len())
	}
}

func TestVec2Distance(t *testing.T) {
	a := Vec2{0, 0}
	b := Vec2{3, 4}
	if got := a.Distance(b); got != 5 {
		t.Fatalf("Distance = %v, want 5", got)
	}
}

func TestVec2Perpendicular(t *testing.T) {
	v := Vec2{1, 0}
	p := v.Perpendicular()
	if got := v.Dot(p); math.Abs(got) > Epsilon {
		t.Fatalf("Perpendicular should be orthogonal, dot = %v", got)
	}
}
