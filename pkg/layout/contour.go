package layout

import (
	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/geom"
)

// resizeContour resizes a single-contour path by its points, so curves keep
// their exact shape under a non-uniform resize of a rotated path.
//
// The points are taken to layout space, scaled from their old bounding box
// to the box the policies give, rotated back by the path's rotation, and
// re-anchored at the top-left of the rotated-back box. The path keeps its
// rotation and gets a new translation and bounds.
func (n *Node) resizeContour(contour *design.Element, oldSize, newSize geom.Size, parentOrigin *geom.Point) geom.Rect {
	if len(contour.Points) == 0 {
		n.tree.logger.Warn("contour has no points", "id", n.ID())
		return geom.Rect{}
	}

	m := n.modelMatrix()
	oldPoints := make([]geom.BezierPoint, len(contour.Points))
	for i, p := range contour.Points {
		p = p.Transform(m).FromModel()
		if parentOrigin != nil {
			p = p.Translate(parentOrigin.X, parentOrigin.Y)
		}
		oldPoints[i] = p
	}

	oldFrame := geom.BoundsOfPath(oldPoints, contour.Closed)
	n.saveOldRatio(oldSize, oldFrame, nil)
	x, w := n.resizeH(oldSize, newSize, oldFrame, nil)
	y, h := n.resizeV(oldSize, newSize, oldFrame, nil)
	newFrame := geom.R(x, y, w, h)

	newPoints := make([]geom.BezierPoint, len(oldPoints))
	scale, ok := geom.FrameTransform(oldFrame, newFrame)
	for i, p := range oldPoints {
		if ok {
			newPoints[i] = p.Transform(scale)
		} else {
			newPoints[i] = p.Scale(oldFrame, newFrame)
		}
	}

	modelRadian := m.DecomposeRotateRadian()
	layoutRadian := modelRadian * geom.FlipYFactor

	unrotate := geom.MakeRotate(-layoutRadian)
	unrotated := make([]geom.BezierPoint, len(newPoints))
	for i, p := range newPoints {
		unrotated[i] = p.Transform(unrotate)
	}
	box := geom.BoundsOfPath(unrotated, contour.Closed)

	modelPoints := make([]geom.BezierPoint, len(unrotated))
	for i, p := range unrotated {
		modelPoints[i] = p.Translate(-box.Left(), -box.Top()).ToModel()
	}

	// the rotation anchor is the top-left corner of the unrotated box
	first := modelPoints[0].FromModel().Point.Transform(geom.MakeRotate(layoutRadian))
	topLeft := newPoints[0].Point.Sub(first)
	local := topLeft
	if parentOrigin != nil {
		local = local.Sub(*parentOrigin)
	}
	modelTopLeft := local.ToModel()
	if n.parent != nil {
		modelTopLeft = modelTopLeft.Add(n.parent.modelBounds().Origin)
	}

	n.el.Bounds = geom.Rect{Size: box.Size}
	n.el.Matrix = geom.Make(modelTopLeft.X, modelTopLeft.Y, modelRadian)
	contour.Points = modelPoints

	return geom.Rect{Origin: topLeft, Size: box.Size}
}

// scaleContour scales the points of a single-contour path after its frame
// changed size.
func (n *Node) scaleContour(contour *design.Element, oldFrame, newFrame geom.Rect) {
	sx, sy := 0.0, 0.0
	if !geom.NearlyZero(oldFrame.Width()) {
		sx = newFrame.Width() / oldFrame.Width()
	}
	if !geom.NearlyZero(oldFrame.Height()) {
		sy = newFrame.Height() / oldFrame.Height()
	}
	for i, p := range contour.Points {
		contour.Points[i] = p.ScaleBy(sx, sy)
	}
}
