package layout

import (
	"math"

	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/geom"
)

// Node mirrors one object of the design tree. Its frame is never stored: it
// is derived from the element's bounds and matrix on every read, and frame
// changes are written straight back into the element.
//
// The root node of a [Layout] has no element; its children are the pages.
type Node struct {
	el       *design.Element
	tree     *Layout
	parent   *Node
	children []*Node
	auto     *AutoLayout

	needsLayout bool
	oldFrame    geom.Rect
	// rootFrame is the frame of the element-less root.
	rootFrame geom.Rect

	// anchor ratios, computed on the first resize and reused until Rebuild
	rightMargin         *float64
	bottomMargin        *float64
	fixStartWidthRatio  *float64
	fixEndWidthRatio    *float64
	fixStartHeightRatio *float64
	fixEndHeightRatio   *float64
}

// ID returns the live id of the node's element, or "" for the root.
func (n *Node) ID() string {
	if n.el == nil {
		return ""
	}
	return n.el.ID
}

// Name returns the element name.
func (n *Node) Name() string {
	if n.el == nil {
		return ""
	}
	return n.el.Name
}

// Element returns the element the node mirrors, or nil for the root.
func (n *Node) Element() *design.Element { return n.el }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// AutoLayout returns the node's auto-layout delegate.
func (n *Node) AutoLayout() *AutoLayout { return n.auto }

// NeedsLayout reports whether the node is marked dirty.
func (n *Node) NeedsLayout() bool { return n.needsLayout }

// IsVisible reports whether the element is visible.
func (n *Node) IsVisible() bool { return n.el == nil || n.el.Visible }

func (n *Node) addChild(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node) modelBounds() geom.Rect {
	if n.el == nil {
		return geom.Rect{}
	}
	return n.el.Bounds
}

func (n *Node) modelMatrix() geom.Matrix {
	if n.el == nil {
		return geom.Identity
	}
	return n.el.Matrix
}

// Bounds returns the element bounds in layout space.
func (n *Node) Bounds() geom.Rect { return n.modelBounds().FromModel() }

// Size returns the size of the node.
func (n *Node) Size() geom.Size {
	if n.el == nil {
		return n.rootFrame.Size
	}
	return n.el.Bounds.Size
}

// modelOrigin returns the transformed bounds origin relative to the parent's
// bounds origin, in model space.
func (n *Node) modelOrigin() geom.Point {
	p := n.modelBounds().Origin.Transform(n.modelMatrix())
	if n.parent != nil {
		p = p.Sub(n.parent.modelBounds().Origin)
	}
	return p
}

// Origin returns the node's position relative to its parent, in layout
// space.
func (n *Node) Origin() geom.Point {
	if n.el == nil {
		return n.rootFrame.Origin
	}
	return n.modelOrigin().FromModel()
}

// Frame returns the node's origin and size relative to its parent.
func (n *Node) Frame() geom.Rect {
	return geom.Rect{Origin: n.Origin(), Size: n.Size()}
}

// TransformedFrame returns the bounding box of the node's bounds after its
// matrix is applied, relative to the parent, in layout space.
func (n *Node) TransformedFrame() geom.Rect {
	b := n.modelBounds().Transform(n.modelMatrix(), geom.ModelSpace)
	if n.parent != nil {
		o := n.parent.modelBounds().Origin
		b = b.Offset(-o.X, -o.Y)
	}
	return b.FromModel()
}

// ConvertPointToAncestor maps a point in the node's parent space into the
// space of ancestor. A nil ancestor means the root.
func (n *Node) ConvertPointToAncestor(p geom.Point, ancestor *Node) geom.Point {
	if ancestor == n {
		return p
	}
	for q := n.parent; q != nil && q != ancestor; q = q.parent {
		p = p.Add(q.Origin())
	}
	return p
}

// FrameToAncestor returns the node's frame in the space of ancestor.
func (n *Node) FrameToAncestor(ancestor *Node) geom.Rect {
	f := n.Frame()
	return geom.Rect{Origin: n.ConvertPointToAncestor(f.Origin, ancestor), Size: f.Size}
}

// HitTest returns the front-most visible node whose frame contains p, given
// in root space.
func (n *Node) HitTest(p geom.Point) *Node {
	for i := len(n.children) - 1; i >= 0; i-- {
		c := n.children[i]
		if !c.IsVisible() || !c.FrameToAncestor(nil).Contains(p) {
			continue
		}
		if hit := c.HitTest(p); hit != nil {
			return hit
		}
	}
	if n.el != nil && n.IsVisible() && n.FrameToAncestor(nil).Contains(p) {
		return n
	}
	return nil
}

// TreeSize returns the number of nodes in the subtree rooted at n.
func (n *Node) TreeSize() int {
	count := 1
	for _, c := range n.children {
		count += c.TreeSize()
	}
	return count
}

// IsAncestorOf reports whether n is other or one of its ancestors.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// ClosestCommonAncestor returns the deepest node that is an ancestor of
// both n and other.
func (n *Node) ClosestCommonAncestor(other *Node) *Node {
	for p := n; p != nil; p = p.parent {
		if p.IsAncestorOf(other) {
			return p
		}
	}
	return nil
}

// FindDescendantNodeByID returns the node in n's subtree whose element has
// the given id.
func (n *Node) FindDescendantNodeByID(id string) *Node {
	if n.el != nil && n.el.ID == id {
		return n
	}
	for _, c := range n.children {
		if found := c.FindDescendantNodeByID(id); found != nil {
			return found
		}
	}
	return nil
}

// Rebuild discards the memoized anchor ratios of the subtree so the next
// resize measures them again.
func (n *Node) Rebuild() {
	n.rightMargin, n.bottomMargin = nil, nil
	n.fixStartWidthRatio, n.fixEndWidthRatio = nil, nil
	n.fixStartHeightRatio, n.fixEndHeightRatio = nil, nil
	for _, c := range n.children {
		c.Rebuild()
	}
}

func (n *Node) isVectorNetwork() bool {
	return n.el != nil && n.el.Kind == design.KindGroup && n.el.IsVectorNetwork
}

func (n *Node) isVectorNetworkDescendant() bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.isVectorNetwork() {
			return true
		}
	}
	return false
}

func (n *Node) horizontalResizing() Resizing {
	if n.isVectorNetworkDescendant() {
		return Scale
	}
	if n.el != nil && n.el.HorizontalConstraint != nil {
		return Resizing(*n.el.HorizontalConstraint)
	}
	return FixStartFixSize
}

func (n *Node) verticalResizing() Resizing {
	if n.isVectorNetworkDescendant() {
		return Scale
	}
	if n.el != nil && n.el.VerticalConstraint != nil {
		return Resizing(*n.el.VerticalConstraint)
	}
	return FixStartFixSize
}

func (n *Node) contentResizing() ContentResizing {
	if n.el != nil && n.el.ResizesContent != nil {
		return ContentResizing(*n.el.ResizesContent)
	}
	return Enabled
}

func (n *Node) isResizingAroundCenter() bool {
	return n.el != nil && n.el.KeepShapeWhenResize
}

func (n *Node) hasRotation() bool { return n.modelMatrix().HasRotation() }

// isBooleanGroup reports whether the node is a path combining several
// subshapes.
func (n *Node) isBooleanGroup() bool {
	return n.el != nil && n.el.Kind == design.KindPath && len(n.el.Children()) > 1
}

// singleContour returns the contour of a path whose only subshape is one.
func (n *Node) singleContour() *design.Element {
	if n.el == nil || n.el.Kind != design.KindPath {
		return nil
	}
	if cs := n.el.Children(); len(cs) == 1 && cs[0].Kind == design.KindContour {
		return cs[0]
	}
	return nil
}

// shouldSkip reports whether the node is resized through its children
// rather than by its own policy.
func (n *Node) shouldSkip() bool {
	if n.auto != nil && n.auto.IsEnabled() {
		return false
	}
	p := n.parent
	if p == nil || p.el == nil || p.contentResizing() != SkipGroupOrBooleanGroup {
		return false
	}
	if n.isVectorNetwork() {
		return false
	}
	if n.el != nil && n.el.Kind == design.KindGroup {
		return true
	}
	return n.isBooleanGroup()
}

// ShouldSwapWidthAndHeight reports whether the node's rotation is closer to
// vertical than horizontal.
func (n *Node) ShouldSwapWidthAndHeight() bool {
	if !n.hasRotation() {
		return false
	}
	r := math.Abs(n.modelMatrix().DecomposeRotateRadian())
	return r >= math.Pi/4 && r <= 3*math.Pi/4
}

// SwapWidthAndHeightIfNeeded swaps size when the node is rotated closer to
// vertical.
func (n *Node) SwapWidthAndHeightIfNeeded(size geom.Size) geom.Size {
	if n.ShouldSwapWidthAndHeight() {
		return size.Swapped()
	}
	return size
}

// RotatedSize returns the bounding size of size after the node's rotation.
func (n *Node) RotatedSize(size geom.Size) geom.Size {
	m := n.modelMatrix()
	if !m.HasRotation() {
		return size
	}
	corners := []geom.Point{
		{},
		{X: size.Width},
		{X: size.Width, Y: size.Height},
		{Y: size.Height},
	}
	for i := range corners {
		corners[i] = corners[i].Transform(m)
	}
	return geom.BoundsOfPoints(corners).Size
}

func (n *Node) saveOldFrame() { n.oldFrame = n.Frame() }

func (n *Node) saveChildrenOldFrame() {
	for _, c := range n.children {
		c.saveOldFrame()
	}
}
