package geom

import "math"

// Rect is an axis-aligned rectangle described by its top-left origin and size.
type Rect struct {
	Origin Point `json:"origin"`
	Size   Size  `json:"size"`
}

// R is shorthand for building a Rect from its four components.
func R(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

func (r Rect) Left() float64    { return r.Origin.X }
func (r Rect) Top() float64     { return r.Origin.Y }
func (r Rect) Right() float64   { return r.Origin.X + r.Size.Width }
func (r Rect) Bottom() float64  { return r.Origin.Y + r.Size.Height }
func (r Rect) Width() float64   { return r.Size.Width }
func (r Rect) Height() float64  { return r.Size.Height }
func (r Rect) CenterX() float64 { return r.Left() + r.Width()/2 }
func (r Rect) CenterY() float64 { return r.Top() + r.Height()/2 }

// Center returns the center point of r.
func (r Rect) Center() Point {
	return Point{X: r.CenterX(), Y: r.CenterY()}
}

// WithCenter returns r moved so that its center is c.
func (r Rect) WithCenter(c Point) Rect {
	r.Origin = Point{X: c.X - r.Width()/2, Y: c.Y - r.Height()/2}
	return r
}

// Equal reports whether origin and size are nearly equal.
func (r Rect) Equal(other Rect) bool {
	return r.Origin.Equal(other.Origin) && r.Size.Equal(other.Size)
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	r.Origin = Point{X: r.Origin.X + dx, Y: r.Origin.Y + dy}
	return r
}

// ToModel converts a layout-space rect to model space.
func (r Rect) ToModel() Rect {
	return Rect{Origin: r.Origin.ToModel(), Size: r.Size}
}

// FromModel converts a model-space rect to layout space.
func (r Rect) FromModel() Rect {
	return Rect{Origin: r.Origin.FromModel(), Size: r.Size}
}

// Join returns the smallest rect containing both r and other.
func (r Rect) Join(other Rect) Rect {
	left := math.Min(r.Left(), other.Left())
	top := math.Min(r.Top(), other.Top())
	right := math.Max(r.Right(), other.Right())
	bottom := math.Max(r.Bottom(), other.Bottom())
	return R(left, top, right-left, bottom-top)
}

// Intersect returns the overlap of r and other and whether they overlap at all.
func (r Rect) Intersect(other Rect) (Rect, bool) {
	left := math.Max(r.Left(), other.Left())
	top := math.Max(r.Top(), other.Top())
	right := math.Min(r.Right(), other.Right())
	bottom := math.Min(r.Bottom(), other.Bottom())
	if right < left || bottom < top {
		return Rect{}, false
	}
	return R(left, top, right-left, bottom-top), true
}

// IntersectOrJoin returns the intersection of r and other, or their union when
// they do not overlap.
func (r Rect) IntersectOrJoin(other Rect) Rect {
	if overlap, ok := r.Intersect(other); ok {
		return overlap
	}
	return r.Join(other)
}

// Space selects how Transform interprets a rect's vertical extent.
type Space int

const (
	// ModelSpace rects grow downward along negative y.
	ModelSpace Space = iota
	// LayoutSpace rects grow downward along positive y.
	LayoutSpace
)

// Transform returns the axis-aligned bounding box of r after applying m.
func (r Rect) Transform(m Matrix, space Space) Rect {
	bottom := r.Bottom()
	if space == ModelSpace {
		bottom = r.Top() - r.Height()
	}
	corners := []Point{
		{X: r.Left(), Y: r.Top()},
		{X: r.Right(), Y: r.Top()},
		{X: r.Right(), Y: bottom},
		{X: r.Left(), Y: bottom},
	}
	for i := range corners {
		corners[i] = corners[i].Transform(m)
	}

	b := BoundsOfPoints(corners)
	if space == ModelSpace {
		// origin of a model rect is its top edge, the largest y
		b.Origin.Y = b.Bottom()
	}
	return b
}

// BoundsOfPoints returns the layout-space bounding box of points.
func BoundsOfPoints(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return R(minX, minY, maxX-minX, maxY-minY)
}
