package geom

import (
	"encoding/json"
	"fmt"
	"math"
)

// Matrix is a 2D affine transform. A point (x, y) maps to
// (A·x + C·y + Tx, B·x + D·y + Ty).
type Matrix struct {
	A, B, C, D, Tx, Ty float64
}

// Identity is the transform that leaves points unchanged.
var Identity = Matrix{A: 1, D: 1}

// MakeRotate returns a rotation by radian around the origin.
func MakeRotate(radian float64) Matrix {
	sin, cos := math.Sincos(radian)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Make returns a rotation by radian followed by a translation to (tx, ty).
func Make(tx, ty, radian float64) Matrix {
	m := MakeRotate(radian)
	m.Tx = tx
	m.Ty = ty
	return m
}

// Concat returns the transform that applies other first and then m.
func (m Matrix) Concat(other Matrix) Matrix {
	return Matrix{
		A:  m.A*other.A + m.C*other.B,
		B:  m.B*other.A + m.D*other.B,
		C:  m.A*other.C + m.C*other.D,
		D:  m.B*other.C + m.D*other.D,
		Tx: m.A*other.Tx + m.C*other.Ty + m.Tx,
		Ty: m.B*other.Tx + m.D*other.Ty + m.Ty,
	}
}

// Determinant returns A·D - B·C.
func (m Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse of m. A singular matrix yields false.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if NearlyZero(det) {
		return Matrix{}, false
	}
	return Matrix{
		A:  m.D / det,
		B:  -m.B / det,
		C:  -m.C / det,
		D:  m.A / det,
		Tx: (m.C*m.Ty - m.D*m.Tx) / det,
		Ty: (m.B*m.Tx - m.A*m.Ty) / det,
	}, true
}

// WithoutTranslate returns m with its translation zeroed.
func (m Matrix) WithoutTranslate() Matrix {
	m.Tx, m.Ty = 0, 0
	return m
}

// DecomposeRotateRadian returns the rotation component of m in radians.
func (m Matrix) DecomposeRotateRadian() float64 {
	return math.Atan2(m.B, m.A)
}

// HasRotation reports whether m has any rotation or skew.
func (m Matrix) HasRotation() bool {
	return !NearlyZero(m.B) || !NearlyZero(m.C)
}

// Equal reports whether all six components are nearly equal.
func (m Matrix) Equal(other Matrix) bool {
	return NearlyEqual(m.A, other.A) && NearlyEqual(m.B, other.B) &&
		NearlyEqual(m.C, other.C) && NearlyEqual(m.D, other.D) &&
		NearlyEqual(m.Tx, other.Tx) && NearlyEqual(m.Ty, other.Ty)
}

// AffineFromTriangles solves for the transform that carries the three from
// points onto the three to points. Collinear source points yield false.
func AffineFromTriangles(from, to [3]Point) (Matrix, bool) {
	src := Matrix{
		A: from[1].X - from[0].X, B: from[1].Y - from[0].Y,
		C: from[2].X - from[0].X, D: from[2].Y - from[0].Y,
		Tx: from[0].X, Ty: from[0].Y,
	}
	dst := Matrix{
		A: to[1].X - to[0].X, B: to[1].Y - to[0].Y,
		C: to[2].X - to[0].X, D: to[2].Y - to[0].Y,
		Tx: to[0].X, Ty: to[0].Y,
	}
	inv, ok := src.Invert()
	if !ok {
		return Matrix{}, false
	}
	return dst.Concat(inv), true
}

// FrameTransform returns the transform that carries oldFrame onto newFrame.
// An old frame without area has none.
func FrameTransform(oldFrame, newFrame Rect) (Matrix, bool) {
	return AffineFromTriangles(triangle(oldFrame), triangle(newFrame))
}

// triangle returns the top-left, top-right and bottom-left corners of r.
func triangle(r Rect) [3]Point {
	return [3]Point{r.Origin, {X: r.Right(), Y: r.Top()}, {X: r.Left(), Y: r.Bottom()}}
}

// MarshalJSON encodes m as [a, b, c, d, tx, ty].
func (m Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal([6]float64{m.A, m.B, m.C, m.D, m.Tx, m.Ty})
}

// UnmarshalJSON decodes [a, b, c, d, tx, ty].
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != 6 {
		return fmt.Errorf("matrix: want 6 components, got %d", len(v))
	}
	*m = Matrix{A: v[0], B: v[1], C: v[2], D: v[3], Tx: v[4], Ty: v[5]}
	return nil
}
