// Package geom provides the value types and math shared by the layout engine
// and the symbol expander.
//
// Two coordinate systems are in play. Design documents store geometry in
// model space, where the y axis points up and a rectangle's origin is its
// top-left corner (so its bottom edge is origin.Y - height). The layout
// engine works in layout space, where the y axis points down. Converting
// between them flips the sign of y; see [Point.ToModel], [Point.FromModel],
// [Rect.ToModel] and [Rect.FromModel].
//
// # Types
//
//   - [Point], [Size], [Rect]: plain values, never pointers.
//   - [Matrix]: a 2D affine transform stored as (a, b, c, d, tx, ty), applied
//     to a point as (a·x + c·y + tx, b·x + d·y + ty).
//   - [BezierPoint]: a path vertex with optional incoming and outgoing
//     control points.
//
// # Bounds
//
// [Rect.Join] is the union of two rectangles. [Rect.IntersectOrJoin] is the
// intersection, except that when the rectangles do not overlap it falls back
// to the union so the result is always a usable bound. [BoundsOfPath]
// computes the exact bounding box of a sequence of quadratic or cubic
// segments using the shapes of honnef.co/go/curve. [FrameTransform] maps one
// frame onto another.
package geom
