package geo

import (
	"math"
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	p := Point{X: 3, Y: -4}
	q := Point{X: 1, Y: 2}

	if got := p.Add(q); got != (Point{X: 4, Y: -2}) {
		t.Errorf("Add = %v", got)
	}
	if got := p.Sub(q); got != (Point{X: 2, Y: -6}) {
		t.Errorf("Sub = %v", got)
	}
	if got := p.Scale(-2); got != (Point{X: -6, Y: 8}) {
		t.Errorf("Scale = %v", got)
	}
	if got := (Point{}).Dist(p); got != 5 {
		t.Errorf("Dist = %v, want 5", got)
	}
}

func TestRectFrom(t *testing.T) {
	r := RectFrom(Point{X: 10, Y: 20}, Size{Width: 100, Height: 50})

	if r.HalfW != 50 || r.HalfH != 25 {
		t.Errorf("half extents = %v/%v, want 50/25", r.HalfW, r.HalfH)
	}
	if r.MinX() != -40 || r.MaxX() != 60 || r.MinY() != -5 || r.MaxY() != 45 {
		t.Errorf("edges = [%v %v %v %v]", r.MinX(), r.MaxX(), r.MinY(), r.MaxY())
	}
	if r.Width() != 100 || r.Height() != 50 {
		t.Errorf("size = %v×%v", r.Width(), r.Height())
	}
}

func TestRectExpand(t *testing.T) {
	r := RectFrom(Point{}, Size{Width: 100, Height: 50})

	grown := r.Expand(10)
	if grown.HalfW != 60 || grown.HalfH != 35 {
		t.Errorf("grown = %v/%v", grown.HalfW, grown.HalfH)
	}
	if grown.Center != r.Center {
		t.Error("expand moved the center")
	}

	// Shrinking past zero clamps, never goes negative.
	shrunk := r.Expand(-40)
	if shrunk.HalfW != 10 || shrunk.HalfH != 0 {
		t.Errorf("shrunk = %v/%v, want 10/0", shrunk.HalfW, shrunk.HalfH)
	}
}

func TestRectIntersects(t *testing.T) {
	base := RectFrom(Point{}, Size{Width: 100, Height: 50})

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"Overlapping", RectFrom(Point{X: 10}, Size{Width: 100, Height: 50}), true},
		{"Contained", RectFrom(Point{}, Size{Width: 10, Height: 10}), true},
		{"Disjoint", RectFrom(Point{X: 500}, Size{Width: 100, Height: 50}), false},
		{"TouchingEdge", RectFrom(Point{X: 100}, Size{Width: 100, Height: 50}), false},
		{"TouchingCorner", RectFrom(Point{X: 100, Y: 50}, Size{Width: 100, Height: 50}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
			if got := tt.other.Intersects(base); got != tt.want {
				t.Errorf("Intersects not symmetric")
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	a := RectFrom(Point{}, Size{Width: 100, Height: 50})
	b := RectFrom(Point{X: 200, Y: 100}, Size{Width: 100, Height: 50})

	u := a.Union(b)

	if u.MinX() != -50 || u.MaxX() != 250 || u.MinY() != -25 || u.MaxY() != 125 {
		t.Errorf("union edges = [%v %v %v %v]", u.MinX(), u.MaxX(), u.MinY(), u.MaxY())
	}
	if u.Center != (Point{X: 100, Y: 50}) {
		t.Errorf("union center = %v", u.Center)
	}

	// Union with itself is the identity.
	if got := a.Union(a); got != a {
		t.Errorf("self union = %v, want %v", got, a)
	}
}

func TestBoundsClamp(t *testing.T) {
	b := Bounds{Min: Point{X: -10, Y: 0}, Max: Point{X: 10, Y: 20}}

	tests := []struct {
		in   Point
		want Point
	}{
		{Point{X: 0, Y: 10}, Point{X: 0, Y: 10}},
		{Point{X: -100, Y: 10}, Point{X: -10, Y: 10}},
		{Point{X: 100, Y: -5}, Point{X: 10, Y: 0}},
		{Point{X: math.Inf(1), Y: math.Inf(-1)}, Point{X: 10, Y: 0}},
	}

	for _, tt := range tests {
		if got := b.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
