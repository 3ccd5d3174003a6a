package geom

import (
	"math"

	"honnef.co/go/curve"
)

// BezierPoint is a path vertex. CurveFrom is the control point leaving the
// vertex and CurveTo the control point arriving at it; either may be absent.
type BezierPoint struct {
	Point     Point
	CurveFrom *Point
	CurveTo   *Point
}

// mapPoints applies fn to the vertex and to each present control point.
func (bp BezierPoint) mapPoints(fn func(Point) Point) BezierPoint {
	out := BezierPoint{Point: fn(bp.Point)}
	if bp.CurveFrom != nil {
		p := fn(*bp.CurveFrom)
		out.CurveFrom = &p
	}
	if bp.CurveTo != nil {
		p := fn(*bp.CurveTo)
		out.CurveTo = &p
	}
	return out
}

// Transform applies m to every point of bp.
func (bp BezierPoint) Transform(m Matrix) BezierPoint {
	return bp.mapPoints(func(p Point) Point { return p.Transform(m) })
}

// Translate offsets every point of bp by (dx, dy).
func (bp BezierPoint) Translate(dx, dy float64) BezierPoint {
	return bp.mapPoints(func(p Point) Point { return Point{X: p.X + dx, Y: p.Y + dy} })
}

// Scale maps every point of bp from oldFrame into newFrame.
func (bp BezierPoint) Scale(oldFrame, newFrame Rect) BezierPoint {
	return bp.mapPoints(func(p Point) Point { return p.Scale(oldFrame, newFrame) })
}

// ScaleBy multiplies every coordinate by the given factors.
func (bp BezierPoint) ScaleBy(sx, sy float64) BezierPoint {
	return bp.mapPoints(func(p Point) Point { return Point{X: p.X * sx, Y: p.Y * sy} })
}

// ToModel converts bp from layout space to model space.
func (bp BezierPoint) ToModel() BezierPoint {
	return bp.mapPoints(Point.ToModel)
}

// FromModel converts bp from model space to layout space.
func (bp BezierPoint) FromModel() BezierPoint {
	return bp.mapPoints(Point.FromModel)
}

// BoundsOfPath returns the exact layout-space bounding box of the path through
// points. Consecutive points form a line, quadratic or cubic segment depending
// on which control points are present; closed paths also join the last point
// back to the first.
func BoundsOfPath(points []BezierPoint, closed bool) Rect {
	if len(points) == 0 {
		return Rect{}
	}

	box := curve.Rect{X0: points[0].Point.X, Y0: points[0].Point.Y, X1: points[0].Point.X, Y1: points[0].Point.Y}
	segments := len(points) - 1
	if closed && len(points) > 1 {
		segments = len(points)
	}
	for i := 0; i < segments; i++ {
		box = union(box, segmentBounds(points[i], points[(i+1)%len(points)]))
	}
	return R(box.X0, box.Y0, box.X1-box.X0, box.Y1-box.Y0)
}

// segmentBounds is the tight box of the segment from one vertex to the next.
// A control point on only one side makes the segment quadratic.
func segmentBounds(from, to BezierPoint) curve.Rect {
	p0, p3 := pt(from.Point), pt(to.Point)
	switch {
	case from.CurveFrom != nil && to.CurveTo != nil:
		return curve.CubicBez{P0: p0, P1: pt(*from.CurveFrom), P2: pt(*to.CurveTo), P3: p3}.BoundingBox()
	case from.CurveFrom != nil:
		return curve.QuadBez{P0: p0, P1: pt(*from.CurveFrom), P2: p3}.BoundingBox()
	case to.CurveTo != nil:
		return curve.QuadBez{P0: p0, P1: pt(*to.CurveTo), P2: p3}.BoundingBox()
	default:
		return curve.Rect{
			X0: math.Min(p0.X, p3.X), Y0: math.Min(p0.Y, p3.Y),
			X1: math.Max(p0.X, p3.X), Y1: math.Max(p0.Y, p3.Y),
		}
	}
}

func pt(p Point) curve.Point {
	return curve.Point{X: p.X, Y: p.Y}
}

func union(a, b curve.Rect) curve.Rect {
	return curve.Rect{
		X0: math.Min(a.X0, b.X0), Y0: math.Min(a.Y0, b.Y0),
		X1: math.Max(a.X1, b.X1), Y1: math.Max(a.Y1, b.Y1),
	}
}
