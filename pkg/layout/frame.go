package layout

import (
	"github.com/matzehuels/symbolkit/pkg/geom"
)

// maxLayoutPasses bounds the re-layout loop of LayoutIfNeeded.
const maxLayoutPasses = 16

// SetFrame moves and resizes the node to frame, given relative to its
// parent, and resizes its children according to their policies.
//
// With useOldFrame the change is measured from the frame saved before the
// current resize started rather than from the current frame. updateRule
// writes the new size back into the node's auto-layout rule. duringLayout
// suppresses re-marking the container dirty while a solve is applied.
func (n *Node) SetFrame(frame geom.Rect, updateRule, useOldFrame, duringLayout bool) {
	n.saveChildrenOldFrame()

	old := n.Frame()
	if useOldFrame {
		old = n.oldFrame
	}
	if old.Equal(frame) {
		return
	}
	n.tree.logger.Debug("set frame", "id", n.ID(), "from", old, "to", frame)

	if n.el == nil {
		n.rootFrame = frame
		return
	}
	n.updateModel(frame)

	if n.shouldSkip() {
		return
	}
	if frame.Size.Equal(old.Size) {
		return
	}

	if contour := n.singleContour(); contour != nil {
		n.scaleContour(contour, old, frame)
		return
	}

	if n.auto.IsEnabled() {
		if updateRule {
			n.auto.UpdateSizeRule(n.Size())
		}
		if n.auto.IsContainer() {
			n.resizeChildNodes(old.Size, frame.Size, true)
			if !duringLayout {
				if n.auto.IsAbsolutePosition() {
					n.SetNeedsLayout()
				} else {
					n.setContainerNeedsLayout()
				}
			}
			return
		}
	}

	n.resizeChildNodes(old.Size, frame.Size, false)
}

// updateModel writes frame into the element's bounds and matrix.
func (n *Node) updateModel(frame geom.Rect) {
	el := n.el
	if el == nil {
		return
	}
	target := frame.ToModel()

	old := el.Bounds
	m := el.Matrix
	if old.Width() > 0 {
		m.Tx *= target.Width() / old.Width()
	}
	if old.Height() > 0 {
		m.Ty *= target.Height() / old.Height()
	}
	el.Bounds.Size = target.Size
	el.Matrix = m

	if o := n.modelOrigin(); !o.Equal(target.Origin) {
		el.Matrix.Tx += target.Origin.X - o.X
		el.Matrix.Ty += target.Origin.Y - o.Y
	}
}

func (n *Node) resizeChildNodes(oldSize, newSize geom.Size, onlyAbsolute bool) {
	if oldSize.IsZero() {
		return
	}
	if n.contentResizing() == Disabled {
		return
	}
	for _, c := range n.children {
		if onlyAbsolute && !c.auto.IsAbsolutePosition() {
			continue
		}
		c.Resize(oldSize, newSize, nil, false)
	}
}

// SetNeedsLayout marks the node dirty.
func (n *Node) SetNeedsLayout() { n.needsLayout = true }

// setContainerNeedsLayout marks the node's auto-layout container, or the
// node itself when it is a container, dirty.
func (n *Node) setContainerNeedsLayout() { n.auto.SetNeedsLayout() }

func (n *Node) hasNeedsLayoutDescendant() bool {
	if n.needsLayout {
		return true
	}
	for _, c := range n.children {
		if c.hasNeedsLayoutDescendant() {
			return true
		}
	}
	return false
}

// LayoutIfNeeded lays out dirty nodes of the subtree. Children are handled
// before their parent; a dirty node configures its own auto-layout, then its
// children's, then solves. Solving can dirty other nodes, so the pass repeats
// while any node of the subtree is dirty.
func (n *Node) LayoutIfNeeded() {
	for pass := 0; ; pass++ {
		for _, c := range n.children {
			c.LayoutIfNeeded()
		}

		if n.needsLayout {
			n.needsLayout = false
			n.auto.Configure()
			for _, c := range n.children {
				c.auto.Configure()
			}
			n.auto.ApplyLayout(true)
		}

		if !n.hasNeedsLayoutDescendant() {
			return
		}
		if pass == maxLayoutPasses {
			n.tree.logger.Warn("layout did not settle", "id", n.ID(), "passes", pass+1)
			n.clearNeedsLayout()
			return
		}
	}
}

func (n *Node) clearNeedsLayout() {
	n.needsLayout = false
	for _, c := range n.children {
		c.clearNeedsLayout()
	}
}

// ScaleTo resizes the node to size. Without preserveOrigin the new origin
// follows the node's policy inside its parent. It returns the node whose
// layout must be refreshed.
func (n *Node) ScaleTo(size geom.Size, updateRule, preserveOrigin bool) *Node {
	frame := geom.Rect{Origin: n.Frame().Origin, Size: size}
	if !preserveOrigin {
		frame = n.calculateResizedFrame(size)
	}
	n.saveOldFrame()
	n.SetFrame(frame, updateRule, true, false)
	return n.auto.SetNeedsLayout()
}
