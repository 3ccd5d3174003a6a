package design

import (
	"slices"
	"strings"

	"github.com/matzehuels/symbolkit/pkg/geom"
)

// Separator joins the ids of nested instances into one globally unique id.
const Separator = "__"

// JoinKeys joins keys with [Separator].
func JoinKeys(keys []string) string {
	return strings.Join(keys, Separator)
}

// LastKey returns the segment of a prefixed id after the final [Separator].
// An unprefixed id is returned unchanged.
func LastKey(id string) string {
	if i := strings.LastIndex(id, Separator); i >= 0 {
		return id[i+len(Separator):]
	}
	return id
}

// VarTypeText marks a variable whose value replaces the content of a text.
const VarTypeText = 2

// VariableDef declares a variable on a container.
type VariableDef struct {
	ID      string `json:"id"`
	VarType int    `json:"varType"`
	Value   any    `json:"value"`
}

// VariableRef binds one field of an object to a variable.
type VariableRef struct {
	ID          string `json:"id"`
	ObjectField string `json:"objectField"`
}

// VariableAssign rebinds a variable for the subtree of an instance.
type VariableAssign struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// OverrideClass is the class string every override entry carries.
const OverrideClass = "overrideValue"

// Override rewrites one field of a descendant of an instance.
type Override struct {
	Class string `json:"class"`
	// ObjectID lists the ids from the instance root down to the target.
	ObjectID []string `json:"objectId"`
	// Name is a dotted path into the target, e.g. "style.fills.0.color".
	Name           string `json:"overrideName"`
	Value          any    `json:"overrideValue"`
	EffectOnLayout bool   `json:"effectOnLayout,omitempty"`
}

// InstanceData holds the instance-only fields of an element.
type InstanceData struct {
	MasterID    string
	Overrides   []Override
	Assignments []VariableAssign
}

// Element is one node of the design tree. Kind selects which fields apply;
// see the package documentation for the variants.
type Element struct {
	Kind Kind

	ID          string
	Name        string
	OverrideKey string // alternate key used when resolving override paths

	Bounds geom.Rect   // model space, y up
	Matrix geom.Matrix // places Bounds in the parent's model space
	// Visible defaults to true when the document omits it.
	Visible bool

	HorizontalConstraint *int
	VerticalConstraint   *int
	ResizesContent       *int
	KeepShapeWhenResize  bool
	IsVectorNetwork      bool

	AlphaMaskBy   []map[string]any
	OutlineMaskBy []string
	VariableDefs  []VariableDef
	VariableRefs  []VariableRef

	// Instance is set on symbol instances and stays set after expansion, with
	// MasterID and Overrides cleared, so assignments remain addressable.
	Instance *InstanceData

	// BooleanOp is how this element combines with its preceding siblings
	// when it is the geometry of a path subshape.
	BooleanOp BooleanOp

	// Contour geometry in model space.
	Closed bool
	Points []geom.BezierPoint

	// Extra holds the element's raw fields; typed fields are written over it
	// on output.
	Extra map[string]any

	subshape   map[string]any
	pointExtra []map[string]any
	children   []*Element
	parent     *Element
}

// NewElement returns an empty element of the given kind.
func NewElement(kind Kind, id string) *Element {
	e := &Element{Kind: kind, ID: id, Matrix: geom.Identity, Visible: true, Extra: map[string]any{}}
	if kind == KindSymbolInstance {
		e.Instance = &InstanceData{}
	}
	return e
}

// Parent returns the element owning e, or nil for a root.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the ordered children of e. The slice must not be modified.
func (e *Element) Children() []*Element { return e.children }

// SetChildren replaces the children of e and points their parent links at e.
func (e *Element) SetChildren(children []*Element) {
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = children
	for _, c := range children {
		c.parent = e
	}
}

// AppendChild adds child as the last child of e.
func (e *Element) AppendChild(child *Element) {
	child.parent = e
	e.children = append(e.children, child)
}

// ClearChildren detaches every child of e.
func (e *Element) ClearChildren() {
	e.SetChildren(nil)
}

// IsMasterLike reports whether e is a symbol master, including an instance
// that has already been expanded.
func (e *Element) IsMasterLike() bool { return e.Kind == KindSymbolMaster }

// ModelFrame returns the model-space bounding box of e's bounds after its
// matrix is applied.
func (e *Element) ModelFrame() geom.Rect {
	return e.Bounds.Transform(e.Matrix, geom.ModelSpace)
}

// Style returns the raw "style" field.
func (e *Element) Style() any { return e.Extra["style"] }

// SetStyle replaces the raw "style" field with a copy of style.
func (e *Element) SetStyle(style any) {
	e.ensureExtra()
	e.Extra["style"] = CloneValue(style)
}

// SetTextContent replaces the content of a text element.
func (e *Element) SetTextContent(content any) {
	e.ensureExtra()
	e.Extra["content"] = CloneValue(content)
}

func (e *Element) ensureExtra() {
	if e.Extra == nil {
		e.Extra = map[string]any{}
	}
}

// Walk calls fn for e and its descendants in depth-first pre-order. Returning
// false from fn skips the children of that element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(fn)
	}
}

// Find returns the object with the given id in e's subtree.
func (e *Element) Find(id string) *Element {
	var found *Element
	e.Walk(func(el *Element) bool {
		if found != nil {
			return false
		}
		if el.Kind.IsObject() && el.ID == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// FindByKey resolves an override path against e's subtree.
//
// The first key is joined onto stack and compared with each object's
// overrideKey, then its id. When more keys remain, the original id of the
// matched object is pushed onto stack and the search continues below it.
// On success stack holds the ids of the instances the search descended
// through, which is the context needed to re-expand the target. A failed
// search leaves stack as it was.
func (e *Element) FindByKey(keys []string, stack *[]string) *Element {
	if len(keys) == 0 || !e.Kind.IsObject() {
		return nil
	}
	if stack == nil {
		stack = &[]string{}
	}

	first := JoinKeys(append(slices.Clone(*stack), keys[0]))
	if (e.OverrideKey != "" && e.OverrideKey == first) || e.ID == first {
		if len(keys) == 1 {
			return e
		}
		n := len(*stack)
		*stack = append(*stack, LastKey(e.ID))
		if found := e.findChildByKey(keys[1:], stack); found != nil {
			return found
		}
		*stack = (*stack)[:n]
		return nil
	}
	return e.findChildByKey(keys, stack)
}

func (e *Element) findChildByKey(keys []string, stack *[]string) *Element {
	for _, c := range e.children {
		if found := c.FindByKey(keys, stack); found != nil {
			return found
		}
	}
	return nil
}

// IsAncestorOf reports whether e is other or one of its ancestors.
func (e *Element) IsAncestorOf(other *Element) bool {
	for p := other; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

// AddKeyPrefix prefixes the id and, when present, the overrideKey of e.
func (e *Element) AddKeyPrefix(prefix string) {
	e.ID = prefix + e.ID
	if e.OverrideKey != "" {
		e.OverrideKey = prefix + e.OverrideKey
	}
}

// ApplyReferencedStyle replaces e's style with a shared style definition.
// Text elements also take the style's font attributes.
func (e *Element) ApplyReferencedStyle(ref *ReferencedStyle) {
	e.SetStyle(ref.Style)
	if ref.ContextSettings != nil {
		e.Extra["contextSettings"] = CloneValue(ref.ContextSettings)
	}
	if e.Kind == KindText && ref.FontAttr != nil {
		e.Extra["fontAttr"] = []any{CloneValue(ref.FontAttr)}
	}
}

// Clone returns a deep copy of e and its subtree. The copy has no parent.
func (e *Element) Clone() *Element {
	c := *e
	c.parent = nil
	c.Extra = cloneMap(e.Extra)
	c.subshape = cloneMap(e.subshape)
	c.HorizontalConstraint = cloneInt(e.HorizontalConstraint)
	c.VerticalConstraint = cloneInt(e.VerticalConstraint)
	c.ResizesContent = cloneInt(e.ResizesContent)
	c.OutlineMaskBy = slices.Clone(e.OutlineMaskBy)
	c.VariableRefs = slices.Clone(e.VariableRefs)

	if e.AlphaMaskBy != nil {
		c.AlphaMaskBy = make([]map[string]any, len(e.AlphaMaskBy))
		for i, m := range e.AlphaMaskBy {
			c.AlphaMaskBy[i] = cloneMap(m)
		}
	}
	if e.VariableDefs != nil {
		c.VariableDefs = make([]VariableDef, len(e.VariableDefs))
		for i, d := range e.VariableDefs {
			d.Value = CloneValue(d.Value)
			c.VariableDefs[i] = d
		}
	}
	if e.Instance != nil {
		c.Instance = e.Instance.clone()
	}
	if e.Points != nil {
		c.Points = make([]geom.BezierPoint, len(e.Points))
		for i, p := range e.Points {
			c.Points[i] = p.Translate(0, 0)
		}
	}
	if e.pointExtra != nil {
		c.pointExtra = make([]map[string]any, len(e.pointExtra))
		for i, m := range e.pointExtra {
			c.pointExtra[i] = cloneMap(m)
		}
	}

	c.children = nil
	for _, child := range e.children {
		cc := child.Clone()
		cc.parent = &c
		c.children = append(c.children, cc)
	}
	return &c
}

func (d *InstanceData) clone() *InstanceData {
	out := &InstanceData{MasterID: d.MasterID}
	if d.Overrides != nil {
		out.Overrides = make([]Override, len(d.Overrides))
		for i, o := range d.Overrides {
			o.ObjectID = slices.Clone(o.ObjectID)
			o.Value = CloneValue(o.Value)
			out.Overrides[i] = o
		}
	}
	if d.Assignments != nil {
		out.Assignments = make([]VariableAssign, len(d.Assignments))
		for i, a := range d.Assignments {
			a.Value = CloneValue(a.Value)
			out.Assignments[i] = a
		}
	}
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
