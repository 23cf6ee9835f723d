package geom

import "testing"

func TestDistance(t *testing.T) {
	if got := Distance(Pt(0, 0), Pt(3, 4)); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
	if got := Distance(Pt(3, 4), Pt(0, 0)); got != 5 {
		t.Fatalf("expected symmetric distance 5, got %v", got)
	}
	if got := Distance(Pt(1.5, -2), Pt(1.5, -2)); got != 0 {
		t.Fatalf("expected 0 for identical points, got %v", got)
	}
}

func TestHypotenuse(t *testing.T) {
	if got := Hypotenuse(6, 8); got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
}

func TestPointAdd(t *testing.T) {
	p := Pt(1, 2).Add(-3, 0.5)
	if p.X != -2 || p.Y != 2.5 {
		t.Fatalf("unexpected point: %+v", p)
	}
}
