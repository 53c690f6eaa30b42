// Package physics provides axis-aligned rectangle geometry for collision tests.
package physics

// Rect is an axis-aligned rectangle. X, Y is the top-left corner; Y grows downward.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// OverlapsX reports whether the horizontal extents of r and other overlap.
// Touching edges do not count.
func (r Rect) OverlapsX(other Rect) bool {
	return r.X < other.Right() && r.Right() > other.X
}

// Overlaps is the standard AABB test: all four half-plane comparisons must
// be strictly true, so rectangles that only share an edge do not overlap.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.Right() &&
		r.Right() > other.X &&
		r.Y < other.Bottom() &&
		r.Bottom() > other.Y
}

// Crossed reports whether a bottom edge that moved from prevBottom to bottom
// reached or passed the horizontal line at top during the move.
// A bottom edge resting exactly on top counts as crossing.
func Crossed(prevBottom, bottom, top float64) bool {
	return prevBottom <= top && bottom >= top
}

// Clamp restricts v to [lo, hi]. If hi < lo, lo wins.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
