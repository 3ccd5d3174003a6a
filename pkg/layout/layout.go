package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/geom"
	"github.com/matzehuels/symbolkit/pkg/rule"
)

// Layout is the layout tree of a document. Its root has no element; the
// root's children mirror the document's pages.
type Layout struct {
	doc    *design.Document
	rules  *rule.Store
	root   *Node
	nodes  map[*design.Element]*Node
	logger *log.Logger
}

// Option configures a [Layout].
type Option func(*Layout)

// WithLogger sets the logger for resize and layout diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(t *Layout) {
		if l != nil {
			t.logger = l
		}
	}
}

// New builds the layout tree of doc. rules may be nil, in which case no node
// takes part in auto layout.
func New(doc *design.Document, rules *rule.Store, opts ...Option) *Layout {
	l := &Layout{
		doc:    doc,
		rules:  rules,
		nodes:  map[*design.Element]*Node{},
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.root = l.newNode(nil)
	for _, page := range doc.Frames {
		l.root.addChild(l.build(page))
	}
	return l
}

func (l *Layout) newNode(el *design.Element) *Node {
	n := &Node{el: el, tree: l}
	n.auto = newAutoLayout(n)
	if el != nil {
		l.nodes[el] = n
	}
	return n
}

// build creates the node of el and its object descendants.
func (l *Layout) build(el *design.Element) *Node {
	n := l.newNode(el)
	l.buildChildren(n)
	return n
}

func (l *Layout) buildChildren(n *Node) {
	for _, c := range n.el.Children() {
		if c.Kind.IsObject() {
			n.addChild(l.build(c))
		}
	}
}

func (l *Layout) forget(n *Node) {
	for _, c := range n.children {
		delete(l.nodes, c.el)
		l.forget(c)
	}
}

// Root returns the element-less root node.
func (l *Layout) Root() *Node { return l.root }

// Document returns the document the tree mirrors.
func (l *Layout) Document() *design.Document { return l.doc }

// Rules returns the rule store the auto-layout delegates read.
func (l *Layout) Rules() *rule.Store { return l.rules }

// NodeFor returns the node mirroring el, or nil.
func (l *Layout) NodeFor(el *design.Element) *Node { return l.nodes[el] }

// FindDescendantNodeByID returns the node whose element has the given id.
func (l *Layout) FindDescendantNodeByID(id string) *Node {
	return l.root.FindDescendantNodeByID(id)
}

// PageSize returns the size of page i, or a zero size when there is no
// such page.
func (l *Layout) PageSize(i int) geom.Size {
	if i < 0 || i >= len(l.root.children) {
		return geom.Size{}
	}
	return l.root.children[i].Size()
}

// Layout lays the tree out for a viewport of the given size. When the size
// changed, every auto-layout delegate is reconfigured and every page is
// resized to the viewport before dirty nodes are laid out.
func (l *Layout) Layout(size geom.Size) {
	if !l.root.Size().Equal(size) {
		l.configure(l.root)
		l.root.SetFrame(geom.Rect{Origin: l.root.Origin(), Size: size}, false, false, false)
		for _, page := range l.root.children {
			page.saveOldFrame()
			page.SetFrame(geom.Rect{Origin: page.Origin(), Size: size}, false, true, false)
			page.auto.SetNeedsLayout()
		}
	}
	l.root.LayoutIfNeeded()
}

func (l *Layout) configure(n *Node) {
	n.auto.Configure()
	if n.auto.IsContainer() {
		n.SetNeedsLayout()
	}
	for _, c := range n.children {
		l.configure(c)
	}
}

// ResizeNodeThenLayout resizes the node with the given id and lays out what
// the resize dirtied. Without preserveOrigin the node moves according to
// its policies inside its parent. It returns the resized node, or nil when
// no node has the id.
func (l *Layout) ResizeNodeThenLayout(id string, size geom.Size, preserveOrigin bool) *Node {
	n := l.FindDescendantNodeByID(id)
	if n == nil {
		l.logger.Debug("resize target not found", "id", id)
		return nil
	}
	n.ScaleTo(size, true, preserveOrigin)
	l.root.LayoutIfNeeded()
	return n
}

// LayoutNodes marks the containers of the given nodes dirty and lays out
// the subtree of scopeID, widened to cover every marked container. Unknown
// ids are ignored; an unknown scope means the whole tree.
func (l *Layout) LayoutNodes(ids []string, scopeID string) {
	scope := l.root
	if scopeID != "" {
		if s := l.FindDescendantNodeByID(scopeID); s != nil {
			scope = s
		}
	}
	for _, id := range ids {
		n := l.FindDescendantNodeByID(id)
		if n == nil {
			continue
		}
		marked := n.auto.SetNeedsLayout()
		if marked == nil {
			continue
		}
		if !scope.IsAncestorOf(marked) {
			scope = scope.ClosestCommonAncestor(marked)
		}
	}
	scope.LayoutIfNeeded()
}

// RebuildSubtree re-derives the children of the node with the given id from
// its element and discards the subtree's memoized ratios and solver state.
// It returns the node, or nil when no element has the id.
func (l *Layout) RebuildSubtree(id string) *Node {
	if n := l.FindDescendantNodeByID(id); n != nil {
		l.rebuild(n)
		return n
	}
	el := l.doc.Find(id)
	if el == nil {
		return nil
	}
	return l.RebuildElement(el)
}

// RebuildElement is RebuildSubtree for an element in hand. An element
// without a node yet gets one under its closest ancestor that has a node;
// it returns nil when no ancestor of el is part of the tree.
func (l *Layout) RebuildElement(el *design.Element) *Node {
	anchor := el
	for anchor != nil && l.nodes[anchor] == nil {
		anchor = anchor.Parent()
	}
	if anchor == nil {
		return nil
	}
	l.rebuild(l.nodes[anchor])
	return l.nodes[el]
}

// RebuildNode is RebuildSubtree for a node already in hand.
func (l *Layout) RebuildNode(n *Node) { l.rebuild(n) }

func (l *Layout) rebuild(n *Node) {
	l.forget(n)
	n.children = nil
	if n.el != nil {
		l.buildChildren(n)
	} else {
		for _, page := range l.doc.Frames {
			n.addChild(l.build(page))
		}
	}
	n.Rebuild()
	l.resetAuto(n)
}

func (l *Layout) resetAuto(n *Node) {
	n.auto.cfg = nil
	for _, c := range n.children {
		l.resetAuto(c)
	}
}

// FrameEntry is the frame of one node in root space.
type FrameEntry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Kind     string    `json:"class"`
	Frame    geom.Rect `json:"frame"`
	Visible  bool      `json:"visible"`
	Depth    int       `json:"depth"`
	Children int       `json:"children"`
}

// Frames lists every node of the tree in depth-first pre-order with its
// frame in root space.
func (l *Layout) Frames() []FrameEntry {
	var out []FrameEntry
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if n.el != nil {
			out = append(out, FrameEntry{
				ID:       n.ID(),
				Name:     n.Name(),
				Kind:     n.el.Kind.String(),
				Frame:    n.FrameToAncestor(nil),
				Visible:  n.IsVisible(),
				Depth:    depth,
				Children: len(n.children),
			})
		}
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	walk(l.root, -1)
	return out
}
