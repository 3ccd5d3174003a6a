// Package design models the element tree of a design document.
//
// A document is a list of pages ("frames") plus a list of references holding
// reusable styles and symbol masters. Every node of the tree is an [Element]
// whose [Kind] selects which of its fields are meaningful:
//
//   - object kinds (frame, group, path, text, image, symbolMaster,
//     symbolInstance) carry an id, model-space bounds and a matrix, and are
//     the nodes that take part in layout and override resolution;
//   - contours and shape primitives (rectangle, ellipse, polygon, star) are
//     path geometry without an id;
//   - unknown classes are kept verbatim.
//
// Fields the model does not interpret are preserved in Element.Extra and
// written back unchanged, so a decode/encode cycle never loses data. The
// "frame" key of an object is derived from its bounds and matrix on output.
//
// # Generic values
//
// [Element.Value] and [Element.SetValue] expose an object as a plain
// map[string]any tree without its children. The symbol expander uses them to
// apply path-addressed overrides without knowing every field in advance.
//
// # Ownership
//
// Children are owned by their parent. The parent link returned by
// [Element.Parent] is a plain back-reference maintained by the tree mutators
// ([Element.SetChildren], [Element.AppendChild], [Element.ClearChildren]) and
// is cleared on [Element.Clone].
package design
