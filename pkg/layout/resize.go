package layout

import (
	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/geom"
)

// Resize applies the node's policies to a container resize from oldSize to
// newSize and returns the node's new frame.
//
// parentOrigin, when set, is added to the node's frame before the policies
// run; groups resized through their children use it to measure against the
// closest ancestor that is not such a group. A dry run computes the frame
// without writing it.
func (n *Node) Resize(oldSize, newSize geom.Size, parentOrigin *geom.Point, dry bool) geom.Rect {
	if n.shouldSkip() {
		return n.resizeGroup(oldSize, newSize, parentOrigin)
	}
	if n.el == nil {
		return geom.Rect{}
	}
	if contour := n.singleContour(); contour != nil {
		return n.resizeContour(contour, oldSize, newSize, parentOrigin)
	}

	old := n.Frame()
	keepShape := n.hasRotation() && n.isResizingAroundCenter()
	if keepShape {
		center := geom.Point{X: old.Width() / 2, Y: old.Height() / 2}
		center = center.ToModel().Transform(n.modelMatrix()).FromModel()
		old = old.WithCenter(center)
	}

	n.saveOldRatio(oldSize, old, parentOrigin)
	x, w := n.resizeH(oldSize, newSize, old, parentOrigin)
	y, h := n.resizeV(oldSize, newSize, old, parentOrigin)
	frame := geom.R(x, y, w, h)

	if keepShape {
		c := frame.Center()
		frame.Origin = frame.Origin.Sub(c).ToModel().
			Transform(n.modelMatrix().WithoutTranslate()).
			FromModel().Add(c)
	}

	if !dry {
		n.SetFrame(frame, true, true, false)
	}
	return frame
}

func offsetBy(r geom.Rect, p *geom.Point) geom.Rect {
	if p == nil {
		return r
	}
	return r.Offset(p.X, p.Y)
}

func clampLength(v float64) float64 {
	if geom.IsInvalidLength(v) {
		return geom.ResizeMinLength
	}
	return v
}

func (n *Node) resizeH(oldSize, newSize geom.Size, old geom.Rect, parentOrigin *geom.Point) (x, w float64) {
	old = offsetBy(old, parentOrigin)
	right := *n.rightMargin

	switch n.horizontalResizing() {
	case FixStartFixEnd:
		x = old.Left()
		w = newSize.Width - right - x
	case FixStartFixSize:
		x = old.Left()
		w = old.Width()
	case FixStartScale:
		x = old.Left()
		w = *n.fixStartWidthRatio * (newSize.Width - x)
	case FixEndFixSize:
		w = old.Width()
		x = newSize.Width - right - w
	case FixEndScale:
		w = *n.fixEndWidthRatio * (newSize.Width - right)
		x = newSize.Width - right - w
	case Scale:
		s := scaleFactor(newSize.Width, oldSize.Width)
		x = old.Left() * s
		w = old.Width() * s
	case FixCenterRatioFixSize:
		ratio := centerRatio(old.CenterX(), oldSize.Width)
		w = old.Width()
		x = newSize.Width*ratio - w/2
	case FixCenterOffsetFixSize:
		offset := old.CenterX() - oldSize.Width/2
		w = old.Width()
		x = newSize.Width/2 + offset - w/2
	}
	return x, clampLength(w)
}

func (n *Node) resizeV(oldSize, newSize geom.Size, old geom.Rect, parentOrigin *geom.Point) (y, h float64) {
	old = offsetBy(old, parentOrigin)
	bottom := *n.bottomMargin

	switch n.verticalResizing() {
	case FixStartFixEnd:
		y = old.Top()
		h = newSize.Height - bottom - y
	case FixStartFixSize:
		y = old.Top()
		h = old.Height()
	case FixStartScale:
		y = old.Top()
		h = *n.fixStartHeightRatio * (newSize.Height - y)
	case FixEndFixSize:
		h = old.Height()
		y = newSize.Height - bottom - h
	case FixEndScale:
		h = *n.fixEndHeightRatio * (newSize.Height - bottom)
		y = newSize.Height - bottom - h
	case Scale:
		s := scaleFactor(newSize.Height, oldSize.Height)
		y = old.Top() * s
		h = old.Height() * s
	case FixCenterRatioFixSize:
		ratio := centerRatio(old.CenterY(), oldSize.Height)
		h = old.Height()
		y = newSize.Height*ratio - h/2
	case FixCenterOffsetFixSize:
		offset := old.CenterY() - oldSize.Height/2
		h = old.Height()
		y = newSize.Height/2 + offset - h/2
	}
	return y, clampLength(h)
}

func ratio(v float64) *float64 { return &v }

// scaleFactor is newLen/oldLen. An empty old length scales by 1 so the
// origin stays finite.
func scaleFactor(newLen, oldLen float64) float64 {
	if geom.IsInvalidLength(oldLen) {
		return 1
	}
	return newLen / oldLen
}

// centerRatio is where center lies along length, 0.5 for an empty length.
func centerRatio(center, length float64) float64 {
	if geom.IsInvalidLength(length) {
		return 0.5
	}
	return center / length
}

// saveOldRatio measures the anchor ratios the first time the node is resized.
// Later resizes reuse them so repeated resizes do not drift.
func (n *Node) saveOldRatio(oldSize geom.Size, old geom.Rect, parentOrigin *geom.Point) {
	old = offsetBy(old, parentOrigin)

	if n.rightMargin == nil {
		n.rightMargin = ratio(oldSize.Width - old.Right())
	}
	switch n.horizontalResizing() {
	case FixStartScale:
		if n.fixStartWidthRatio == nil {
			n.fixStartWidthRatio = ratio(old.Width() / (oldSize.Width - old.Left()))
		}
	case FixEndScale:
		if n.fixEndWidthRatio == nil {
			n.fixEndWidthRatio = ratio(old.Width() / (oldSize.Width - *n.rightMargin))
		}
	}

	if n.bottomMargin == nil {
		n.bottomMargin = ratio(oldSize.Height - old.Bottom())
	}
	switch n.verticalResizing() {
	case FixStartScale:
		if n.fixStartHeightRatio == nil {
			n.fixStartHeightRatio = ratio(old.Height() / (oldSize.Height - old.Top()))
		}
	case FixEndScale:
		if n.fixEndHeightRatio == nil {
			n.fixEndHeightRatio = ratio(old.Height() / (oldSize.Height - *n.bottomMargin))
		}
	}
}

// resizeGroup resizes a group by its children and re-derives the group
// frame from where they end up.
func (n *Node) resizeGroup(oldSize, newSize geom.Size, parentOrigin *geom.Point) geom.Rect {
	if len(n.children) == 0 {
		return geom.Rect{}
	}

	origin := n.Origin()
	if parentOrigin != nil {
		origin = origin.Add(*parentOrigin)
	}

	// child frames relative to the closest ancestor that is not resized
	// through its children
	frames := make([]geom.Rect, len(n.children))
	for i, c := range n.children {
		frames[i] = c.Resize(oldSize, newSize, &origin, true)
	}
	group := frames[0]
	for _, f := range frames[1:] {
		group = group.Join(f)
	}
	n.SetFrame(group, false, true, false)
	n.placeChildren(frames)

	transformed := make([]geom.Rect, len(n.children))
	for i, c := range n.children {
		transformed[i] = c.TransformedFrame()
	}
	group = transformed[0]
	if n.isBooleanGroup() {
		for i := 1; i < len(n.children); i++ {
			switch n.children[i].el.BooleanOp {
			case design.BooleanSubtraction:
			case design.BooleanIntersection:
				group = group.IntersectOrJoin(transformed[i])
			case design.BooleanUnion, design.BooleanExclusion, design.BooleanNone:
				group = group.Join(transformed[i])
			}
		}
	} else {
		for _, f := range transformed[1:] {
			group = group.Join(f)
		}
	}
	o := n.Origin()
	group = group.Offset(o.X, o.Y)

	n.SetFrame(group, false, false, false)
	n.placeChildren(frames)
	return group
}

// placeChildren sets each child to its frame, made relative to the node.
func (n *Node) placeChildren(frames []geom.Rect) {
	o := n.Origin()
	for i, c := range n.children {
		c.SetFrame(frames[i].Offset(-o.X, -o.Y), false, true, false)
	}
}

// calculateResizedFrame returns the frame the node gets when its own size is
// set to size, with the origin following its policies inside the parent.
func (n *Node) calculateResizedFrame(size geom.Size) geom.Rect {
	old := n.Frame()
	frame := geom.Rect{Origin: old.Origin, Size: size}
	if n.auto.IsFlexOrGridItem() {
		return frame
	}
	p := n.parent
	if p == nil || p.contentResizing() == Disabled {
		return frame
	}
	container := p.Size()

	x, w := old.Left(), size.Width
	switch n.horizontalResizing() {
	case FixEndFixSize, FixEndScale:
		right := container.Width - old.Right()
		x = container.Width - right - w
	case Scale:
		x = old.Left() * scaleFactor(w, old.Width())
	case FixCenterRatioFixSize:
		x = container.Width*centerRatio(old.CenterX(), container.Width) - w/2
	case FixCenterOffsetFixSize:
		offset := old.CenterX() - container.Width/2
		x = container.Width/2 + offset - w/2
	case FixStartFixEnd, FixStartFixSize, FixStartScale:
	}

	y, h := old.Top(), size.Height
	switch n.verticalResizing() {
	case FixEndFixSize, FixEndScale:
		bottom := container.Height - old.Bottom()
		y = container.Height - bottom - h
	case Scale:
		y = old.Top() * scaleFactor(h, old.Height())
	case FixCenterRatioFixSize:
		y = container.Height*centerRatio(old.CenterY(), container.Height) - h/2
	case FixCenterOffsetFixSize:
		offset := old.CenterY() - container.Height/2
		y = container.Height/2 + offset - h/2
	case FixStartFixEnd, FixStartFixSize, FixStartScale:
	}
	return geom.R(x, y, w, h)
}
