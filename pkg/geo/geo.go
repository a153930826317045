// Package geo provides the geometric primitives shared by the layout engine:
// points, sizes, and center-based rectangles in world or screen coordinates.
//
// All values are plain float64 structs with value semantics. Nothing in this
// package distinguishes world space from screen space - that interpretation
// belongs to the caller (see pkg/camera for the transform between the two).
package geo

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q component-wise.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q component-wise.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p multiplied by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Size holds a width and height. Negative dimensions are never produced by
// this package; callers are expected to pass non-negative sizes.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

// Rect is an axis-aligned rectangle stored as a center point plus
// half-extents. This is the representation used throughout overlap
// detection, where symmetric expansion and center-distance tests are the
// common operations.
type Rect struct {
	Center Point   `json:"center"`
	HalfW  float64 `json:"half_w"`
	HalfH  float64 `json:"half_h"`
}

// RectFrom builds a Rect from a center point and a full size.
func RectFrom(center Point, size Size) Rect {
	return Rect{Center: center, HalfW: size.Width / 2, HalfH: size.Height / 2}
}

// Width returns the full width of the rectangle.
func (r Rect) Width() float64 { return 2 * r.HalfW }

// Height returns the full height of the rectangle.
func (r Rect) Height() float64 { return 2 * r.HalfH }

// MinX returns the left edge.
func (r Rect) MinX() float64 { return r.Center.X - r.HalfW }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.Center.X + r.HalfW }

// MinY returns the bottom edge.
func (r Rect) MinY() float64 { return r.Center.Y - r.HalfH }

// MaxY returns the top edge.
func (r Rect) MaxY() float64 { return r.Center.Y + r.HalfH }

// Expand returns a copy of r grown by pad on every side.
// A negative pad shrinks the rectangle; half-extents are clamped at zero.
func (r Rect) Expand(pad float64) Rect {
	hw := r.HalfW + pad
	hh := r.HalfH + pad
	if hw < 0 {
		hw = 0
	}
	if hh < 0 {
		hh = 0
	}
	return Rect{Center: r.Center, HalfW: hw, HalfH: hh}
}

// Intersects reports whether r and s overlap. Rectangles that merely touch
// at an edge do not intersect.
func (r Rect) Intersects(s Rect) bool {
	return math.Abs(r.Center.X-s.Center.X) < r.HalfW+s.HalfW &&
		math.Abs(r.Center.Y-s.Center.Y) < r.HalfH+s.HalfH
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	minX := math.Min(r.MinX(), s.MinX())
	maxX := math.Max(r.MaxX(), s.MaxX())
	minY := math.Min(r.MinY(), s.MinY())
	maxY := math.Max(r.MaxY(), s.MaxY())
	return Rect{
		Center: Point{(minX + maxX) / 2, (minY + maxY) / 2},
		HalfW:  (maxX - minX) / 2,
		HalfH:  (maxY - minY) / 2,
	}
}

// Bounds is a min/max rectangle used for camera clamping regions.
type Bounds struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Clamp returns p constrained component-wise into b.
func (b Bounds) Clamp(p Point) Point {
	return Point{
		X: math.Min(math.Max(p.X, b.Min.X), b.Max.X),
		Y: math.Min(math.Max(p.Y, b.Min.Y), b.Max.Y),
	}
}
