// Package layout computes pixel frames for the objects of a design document
// when containers change size.
//
// # Tree
//
// [New] mirrors every object of the document's pages with a [Node]. Nodes
// hold no geometry of their own: a node's frame is read from its element's
// bounds and matrix, and every frame change is written straight back into
// the element. Contours and shape primitives are not nodes; a path whose
// only subshape is a contour is resized through its points.
//
// # Resize policies
//
// When a node's size changes, each child is re-placed by its horizontal and
// vertical [Resizing] policy:
//
//	FixStartFixEnd          keep both margins, stretch
//	FixStartFixSize         keep the start margin and the size (default)
//	FixStartScale           keep the start margin, scale the size
//	FixEndFixSize           keep the end margin and the size
//	FixEndScale             keep the end margin, scale the size
//	Scale                   scale position and size
//	FixCenterRatioFixSize   keep the center at the same fraction
//	FixCenterOffsetFixSize  keep the center offset from the middle
//
// Margins and scale ratios are measured on the first resize and reused
// afterwards, so a sequence of resizes does not drift. [Node.Rebuild]
// discards them.
//
// A parent whose content resizing is [SkipGroupOrBooleanGroup] resizes
// plain groups and boolean paths through their children; the group frame
// is then re-derived from where the children end up. Subtracted subshapes
// do not contribute to a boolean path's bounds.
//
// # Auto layout
//
// A node whose id has an entry in the [rule.Store] is handed to its
// [AutoLayout] delegate. Flex and grid containers place their items with
// the solvers in this package; a frame change on such a node writes pixel
// width and height back into its rule. Dirty containers are solved by
// [Node.LayoutIfNeeded], children before parents.
package layout
