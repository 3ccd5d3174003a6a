package layout

import (
	"github.com/matzehuels/symbolkit/pkg/geom"
	"github.com/matzehuels/symbolkit/pkg/rule"
)

// AutoLayout connects a node to its layout rule. A node takes part in auto
// layout when the rule store has a rule for its id; the rule is looked up by
// the node's live id, so it follows renames of the element.
type AutoLayout struct {
	node *Node
	// cfg is the rule captured by the last Configure.
	cfg *rule.Rule
}

func newAutoLayout(n *Node) *AutoLayout { return &AutoLayout{node: n} }

// Rule returns the node's current rule, or nil.
func (a *AutoLayout) Rule() *rule.Rule {
	if a == nil || a.node.tree == nil || a.node.tree.rules == nil || a.node.el == nil {
		return nil
	}
	return a.node.tree.rules.Get(a.node.el.ID)
}

// Configure captures the node's rule for the next solve.
func (a *AutoLayout) Configure() {
	if a == nil {
		return
	}
	a.cfg = a.Rule()
}

func (a *AutoLayout) configured() *rule.Rule {
	if a.cfg == nil {
		a.cfg = a.Rule()
	}
	return a.cfg
}

// IsEnabled reports whether the node has a layout rule.
func (a *AutoLayout) IsEnabled() bool { return a.Rule() != nil }

// IsContainer reports whether the node lays out its children.
func (a *AutoLayout) IsContainer() bool {
	r := a.Rule()
	return r != nil && r.IsContainer()
}

// IsFlexOrGridItem reports whether the node is placed by a container.
func (a *AutoLayout) IsFlexOrGridItem() bool {
	r := a.Rule()
	return r != nil && r.IsItem()
}

// IsAbsolutePosition reports whether the node is an item taken out of its
// container's flow.
func (a *AutoLayout) IsAbsolutePosition() bool {
	r := a.Rule()
	return r != nil && r.IsItem() && r.Position() == rule.PositionAbsolute
}

// isIncluded reports whether the node takes part in its container's layout.
func (a *AutoLayout) isIncluded() bool {
	return a.IsEnabled() && a.node.IsVisible()
}

// IsLeaf reports whether the node has no children taking part in auto
// layout.
func (a *AutoLayout) IsLeaf() bool {
	if !a.IsEnabled() {
		return true
	}
	for _, c := range a.node.children {
		if c.auto.isIncluded() {
			return false
		}
	}
	return true
}

// SetNeedsLayout marks the node dirty when it is a container, or its
// container when it is an item. It returns the node marked, or nil.
func (a *AutoLayout) SetNeedsLayout() *Node {
	if a == nil {
		return nil
	}
	n := a.node
	switch {
	case a.IsContainer():
		n.SetNeedsLayout()
		return n
	case a.IsFlexOrGridItem() && n.parent != nil:
		n.parent.SetNeedsLayout()
		return n.parent
	}
	return nil
}

// UpdateSizeRule writes size into the node's rule as pixel lengths and
// marks the affected container dirty.
func (a *AutoLayout) UpdateSizeRule(size geom.Size) {
	r := a.Rule()
	if r == nil {
		return
	}
	if r.Width.Value == (rule.Length{Types: rule.LengthPx, Value: size.Width}) &&
		r.Height.Value == (rule.Length{Types: rule.LengthPx, Value: size.Height}) {
		return
	}
	a.node.tree.rules.SetSize(a.node.el.ID, size)
	a.cfg = a.Rule()
	a.SetNeedsLayout()
}

// ApplyLayout solves the node's container and writes the result into the
// subtree. With preserveOrigin the node keeps its position and only takes
// the size its own rule asks for.
func (a *AutoLayout) ApplyLayout(preserveOrigin bool) {
	if a.IsLeaf() || !a.IsContainer() {
		return
	}
	n := a.node

	size := a.ownSize()
	origin := geom.Point{}
	if preserveOrigin {
		origin = n.Origin()
	}
	n.SetFrame(geom.Rect{Origin: origin, Size: size}, false, false, true)
	a.applyChildren()
}

// applyChildren places the included children by the node's current size and
// recurses into children that are containers.
func (a *AutoLayout) applyChildren() {
	n := a.node
	items, frames := a.solve(n.Size())
	for i, c := range items {
		c.SetFrame(frames[i], false, false, true)
	}
	for _, c := range items {
		if c.auto.IsContainer() && !c.auto.IsLeaf() {
			c.auto.applyChildren()
		}
	}
}

// ownSize resolves the size a container asks for by its own rule.
func (a *AutoLayout) ownSize() geom.Size {
	n := a.node
	r := a.configured()
	current := n.Size()
	parentSize := current
	if n.parent != nil {
		parentSize = n.parent.Size()
	}
	content := a.contentSize(current)

	w := resolveLength(r.Width.Value, parentSize.Width, content.Width, current.Width)
	h := resolveLength(r.Height.Value, parentSize.Height, content.Height, current.Height)
	w, h = applyAspectRatio(r, w, h)
	w = clampDimension(w, r.MinWidth, r.MaxWidth, parentSize.Width)
	h = clampDimension(h, r.MinHeight, r.MaxHeight, parentSize.Height)
	return geom.Size{Width: w, Height: h}
}

// solve returns the included children and their frames inside a container
// of the given size.
func (a *AutoLayout) solve(size geom.Size) ([]*Node, []geom.Rect) {
	r := a.configured()
	var items []*Node
	for _, c := range a.node.children {
		if c.auto.isIncluded() {
			items = append(items, c)
		}
	}
	switch {
	case r == nil || len(items) == 0:
		return nil, nil
	case r.Flex != nil:
		return items, solveFlex(r.Flex, size, items)
	case r.Grid != nil:
		return items, solveGrid(r.Grid, size, items)
	}
	return nil, nil
}

// contentSize returns the size the container's content needs when laid out
// inside avail.
func (a *AutoLayout) contentSize(avail geom.Size) geom.Size {
	r := a.configured()
	var items []*Node
	for _, c := range a.node.children {
		if c.auto.isIncluded() && !c.auto.IsAbsolutePosition() {
			items = append(items, c)
		}
	}
	switch {
	case r == nil:
		return a.node.Size()
	case r.Flex != nil:
		return flexContentSize(r.Flex, avail, items)
	case r.Grid != nil:
		return gridContentSize(r.Grid, avail, items)
	}
	return a.node.Size()
}

// preferredSize returns the size an item asks for inside a container whose
// inner size is inner.
func (n *Node) preferredSize(inner geom.Size) geom.Size {
	r := n.auto.configured()
	current := n.Size()
	if r == nil {
		return current
	}
	fit := current
	if r.IsContainer() && !n.auto.IsLeaf() {
		fit = n.auto.contentSize(current)
	}
	w := resolveLength(r.Width.Value, inner.Width, fit.Width, current.Width)
	h := resolveLength(r.Height.Value, inner.Height, fit.Height, current.Height)
	w, h = applyAspectRatio(r, w, h)
	w = clampDimension(w, r.MinWidth, r.MaxWidth, inner.Width)
	h = clampDimension(h, r.MinHeight, r.MaxHeight, inner.Height)
	return geom.Size{Width: w, Height: h}
}

func resolveLength(l rule.Length, container, fit, current float64) float64 {
	switch l.Types {
	case rule.LengthPx:
		return l.Value
	case rule.LengthPercent:
		return container * l.Value / 100
	case rule.LengthFitContent:
		return fit
	case rule.LengthUnset:
		return current
	}
	return current
}

func applyAspectRatio(r *rule.Rule, w, h float64) (float64, float64) {
	if r.AspectRatio == nil || geom.NearlyZero(*r.AspectRatio) {
		return w, h
	}
	ar := *r.AspectRatio
	wFree := r.Width.Value.Types == rule.LengthFitContent || r.Width.Value.Types == rule.LengthUnset
	hFree := r.Height.Value.Types == rule.LengthFitContent || r.Height.Value.Types == rule.LengthUnset
	switch {
	case hFree && !wFree:
		h = w / ar
	case wFree && !hFree:
		w = h * ar
	}
	return w, h
}

func clampDimension(v float64, lo, hi *rule.Dimension, container float64) float64 {
	bound := func(d *rule.Dimension) (float64, bool) {
		if d == nil {
			return 0, false
		}
		switch d.Value.Types {
		case rule.LengthPx:
			return d.Value.Value, true
		case rule.LengthPercent:
			return container * d.Value.Value / 100, true
		}
		return 0, false
	}
	if m, ok := bound(hi); ok && v > m {
		v = m
	}
	if m, ok := bound(lo); ok && v < m {
		v = m
	}
	return v
}

// absoluteFrame places an item taken out of the flow by its insets.
func absoluteFrame(n *Node, size geom.Size, padding rule.Padding) geom.Rect {
	r := n.auto.configured()
	inner := geom.Size{
		Width:  size.Width - padding.Left - padding.Right,
		Height: size.Height - padding.Top - padding.Bottom,
	}
	pref := n.preferredSize(inner)
	top, right, bottom, left := r.Insets()

	x, w := padding.Left, pref.Width
	switch {
	case left != nil && right != nil && (r.Width.Value.Types == rule.LengthFitContent || r.Width.Value.Types == rule.LengthUnset):
		x, w = *left, size.Width-*left-*right
	case left != nil:
		x = *left
	case right != nil:
		x = size.Width - *right - w
	}

	y, h := padding.Top, pref.Height
	switch {
	case top != nil && bottom != nil && (r.Height.Value.Types == rule.LengthFitContent || r.Height.Value.Types == rule.LengthUnset):
		y, h = *top, size.Height-*top-*bottom
	case top != nil:
		y = *top
	case bottom != nil:
		y = size.Height - *bottom - h
	}
	return geom.R(x, y, clampLength(w), clampLength(h))
}
