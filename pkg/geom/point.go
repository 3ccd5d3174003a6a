package geom

import "math"

// FlipYFactor converts y between model space (y up) and layout space (y down).
const FlipYFactor = -1

// Epsilon is the tolerance used by the approximate comparisons in this package.
const Epsilon = 1e-6

// NearlyZero reports whether v is within Epsilon of zero.
func NearlyZero(v float64) bool {
	return math.Abs(v) <= Epsilon
}

// NearlyEqual reports whether a and b are within Epsilon of each other.
func NearlyEqual(a, b float64) bool {
	return NearlyZero(a - b)
}

// Point is an (X, Y) coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p offset by other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns p with other subtracted.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Equal reports whether both coordinates are nearly equal.
func (p Point) Equal(other Point) bool {
	return NearlyEqual(p.X, other.X) && NearlyEqual(p.Y, other.Y)
}

// Transform applies m to p.
func (p Point) Transform(m Matrix) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.Tx,
		Y: m.B*p.X + m.D*p.Y + m.Ty,
	}
}

// ToModel converts a layout-space point to model space.
func (p Point) ToModel() Point {
	return Point{X: p.X, Y: p.Y * FlipYFactor}
}

// FromModel converts a model-space point to layout space.
func (p Point) FromModel() Point {
	return Point{X: p.X, Y: p.Y * FlipYFactor}
}

// Scale maps p from oldFrame into newFrame, keeping its relative position.
func (p Point) Scale(oldFrame, newFrame Rect) Point {
	x := newFrame.Left() + (p.X - oldFrame.Left())
	if !NearlyZero(oldFrame.Width()) {
		x = newFrame.Left() + (p.X-oldFrame.Left())*newFrame.Width()/oldFrame.Width()
	}
	y := newFrame.Top() + (p.Y - oldFrame.Top())
	if !NearlyZero(oldFrame.Height()) {
		y = newFrame.Top() + (p.Y-oldFrame.Top())*newFrame.Height()/oldFrame.Height()
	}
	return Point{X: x, Y: y}
}

// Size is a width and a height.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Equal reports whether both dimensions are nearly equal.
func (s Size) Equal(other Size) bool {
	return NearlyEqual(s.Width, other.Width) && NearlyEqual(s.Height, other.Height)
}

// IsZero reports whether both dimensions are nearly zero.
func (s Size) IsZero() bool {
	return NearlyZero(s.Width) && NearlyZero(s.Height)
}

// Swapped returns s with width and height exchanged.
func (s Size) Swapped() Size {
	return Size{Width: s.Height, Height: s.Width}
}

// ResizeMinLength is the length a degenerate resize result is clamped to.
const ResizeMinLength = 1.0

// IsInvalidLength reports whether v cannot be used as a width or height:
// negative, nearly zero, NaN or infinite.
func IsInvalidLength(v float64) bool {
	return v < 0 || NearlyZero(v) || math.IsNaN(v) || math.IsInf(v, 0)
}
