package design

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReferencedStyleClass is the class of a shared style definition.
const ReferencedStyleClass = "referencedStyle"

// ReferencedStyle is a named style that overrides can substitute in full.
type ReferencedStyle struct {
	ID              string
	Style           any
	ContextSettings any
	FontAttr        any
	// Extra holds the raw entry, overlaid with the fields above on output.
	Extra map[string]any
}

// Reference is one entry of the document's reference list: a shared style,
// a symbol master, or an entry the model does not interpret (both nil).
type Reference struct {
	Element *Element
	Style   *ReferencedStyle
	raw     map[string]any
}

// Document is a decoded design document.
type Document struct {
	Frames     []*Element
	References []Reference
	// Extra holds every top-level key other than "frames" and "references".
	Extra map[string]any
}

// Parse decodes a design document from JSON.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return DecodeDocument(raw)
}

// ReadFile parses the design document at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// DecodeDocument builds a document from a decoded JSON object.
func DecodeDocument(raw map[string]any) (*Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("decode document: empty document")
	}
	d := &Document{Extra: cloneMap(raw)}
	delete(d.Extra, "frames")
	delete(d.Extra, "references")

	if v, ok := raw["frames"]; ok && v != nil {
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("frames: want array, got %T", v)
		}
		for i, item := range items {
			e, err := DecodeElement(item)
			if err != nil {
				return nil, fmt.Errorf("frames[%d]: %w", i, err)
			}
			d.Frames = append(d.Frames, e)
		}
	}

	if v, ok := raw["references"]; ok && v != nil {
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("references: want array, got %T", v)
		}
		for i, item := range items {
			ref, err := decodeReference(item)
			if err != nil {
				return nil, fmt.Errorf("references[%d]: %w", i, err)
			}
			d.References = append(d.References, ref)
		}
	}
	return d, nil
}

func decodeReference(v any) (Reference, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Reference{}, fmt.Errorf("want object, got %T", v)
	}
	class, _ := m["class"].(string)
	if class == ReferencedStyleClass {
		s := &ReferencedStyle{Extra: cloneMap(m)}
		s.ID, _ = m["id"].(string)
		s.Style = CloneValue(m["style"])
		s.ContextSettings = CloneValue(m["contextSettings"])
		if fa, ok := m["fontAttr"].([]any); ok && len(fa) > 0 {
			s.FontAttr = CloneValue(fa[0])
		} else if m["fontAttr"] != nil {
			s.FontAttr = CloneValue(m["fontAttr"])
		}
		return Reference{Style: s}, nil
	}
	if KindOf(class).IsObject() {
		e, err := DecodeElement(m)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Element: e}, nil
	}
	return Reference{raw: cloneMap(m)}, nil
}

// Encode returns d as a generic JSON object.
func (d *Document) Encode() map[string]any {
	out := cloneMap(d.Extra)
	if out == nil {
		out = map[string]any{}
	}
	frames := make([]any, len(d.Frames))
	for i, f := range d.Frames {
		frames[i] = f.Encode()
	}
	out["frames"] = frames

	if d.References != nil {
		refs := make([]any, len(d.References))
		for i, r := range d.References {
			refs[i] = r.encode()
		}
		out["references"] = refs
	}
	return out
}

func (r Reference) encode() map[string]any {
	switch {
	case r.Element != nil:
		return r.Element.Encode()
	case r.Style != nil:
		out := cloneMap(r.Style.Extra)
		if out == nil {
			out = map[string]any{}
		}
		out["class"] = ReferencedStyleClass
		out["id"] = r.Style.ID
		out["style"] = CloneValue(r.Style.Style)
		if r.Style.ContextSettings != nil {
			out["contextSettings"] = CloneValue(r.Style.ContextSettings)
		}
		return out
	default:
		return cloneMap(r.raw)
	}
}

// MarshalJSON encodes the document.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Encode())
}

// UnmarshalJSON decodes a document into d.
func (d *Document) UnmarshalJSON(data []byte) error {
	p, err := Parse(data)
	if err != nil {
		return err
	}
	*d = *p
	return nil
}

// Walk visits every element of the pages, then of the referenced masters,
// in depth-first pre-order.
func (d *Document) Walk(fn func(*Element) bool) {
	for _, f := range d.Frames {
		f.Walk(fn)
	}
	for _, r := range d.References {
		if r.Element != nil {
			r.Element.Walk(fn)
		}
	}
}

// Find returns the object with the given id anywhere in the document.
func (d *Document) Find(id string) *Element {
	for _, f := range d.Frames {
		if e := f.Find(id); e != nil {
			return e
		}
	}
	for _, r := range d.References {
		if r.Element != nil {
			if e := r.Element.Find(id); e != nil {
				return e
			}
		}
	}
	return nil
}

// Style returns the referenced style with the given id.
func (d *Document) Style(id string) *ReferencedStyle {
	for _, r := range d.References {
		if r.Style != nil && r.Style.ID == id {
			return r.Style
		}
	}
	return nil
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := &Document{Extra: cloneMap(d.Extra)}
	for _, f := range d.Frames {
		c.Frames = append(c.Frames, f.Clone())
	}
	if d.References != nil {
		c.References = make([]Reference, len(d.References))
		for i, r := range d.References {
			cr := Reference{raw: cloneMap(r.raw)}
			if r.Element != nil {
				cr.Element = r.Element.Clone()
			}
			if r.Style != nil {
				s := *r.Style
				s.Style = CloneValue(s.Style)
				s.ContextSettings = CloneValue(s.ContextSettings)
				s.FontAttr = CloneValue(s.FontAttr)
				s.Extra = cloneMap(s.Extra)
				cr.Style = &s
			}
			c.References[i] = cr
		}
	}
	return c
}
