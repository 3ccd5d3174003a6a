package rule

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/geom"
	"github.com/matzehuels/symbolkit/pkg/valuepath"
)

// ErrNoRule is returned when an operation addresses an id without a rule.
var ErrNoRule = errors.New("no layout rule")

type entry struct {
	raw  map[string]any
	rule *Rule
}

// Store maps node ids to rules. The zero value is not usable; call
// [NewStore], [Load] or [Parse].
type Store struct {
	entries map[string]*entry
	order   []string
	extra   map[string]any
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: map[string]*entry{}}
}

// Parse decodes a rule document of the form {"obj": [...]}.
func Parse(data []byte) (*Store, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return Decode(raw)
}

// Load reads a rule document from path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Decode builds a store from a decoded rule document. A nil document yields
// an empty store.
func Decode(raw map[string]any) (*Store, error) {
	s := NewStore()
	if raw == nil {
		return s, nil
	}
	s.extra, _ = design.CloneValue(raw).(map[string]any)
	delete(s.extra, "obj")

	items, ok := raw["obj"].([]any)
	if !ok && raw["obj"] != nil {
		return nil, fmt.Errorf("obj: want array, got %T", raw["obj"])
	}
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("obj[%d]: want object, got %T", i, item)
		}
		id, _ := m["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("obj[%d]: missing id", i)
		}
		if err := s.Set(id, m); err != nil {
			return nil, fmt.Errorf("obj[%d]: %w", i, err)
		}
	}
	return s, nil
}

// Len returns the number of rules.
func (s *Store) Len() int { return len(s.order) }

// IDs returns the rule ids in output order.
func (s *Store) IDs() []string { return slices.Clone(s.order) }

// Has reports whether id has a rule.
func (s *Store) Has(id string) bool {
	_, ok := s.entries[id]
	return ok
}

// Get returns the typed rule for id, or nil. The returned rule is shared
// with the store; do not modify it.
func (s *Store) Get(id string) *Rule {
	if e, ok := s.entries[id]; ok {
		return e.rule
	}
	return nil
}

// Raw returns a copy of the raw JSON of id's rule, or nil.
func (s *Store) Raw(id string) map[string]any {
	if e, ok := s.entries[id]; ok {
		return cloneMap(e.raw)
	}
	return nil
}

// Set stores raw as the rule for id. The stored "id" field is always id.
// A new id goes to the end of the output order; an existing one keeps its
// place.
func (s *Store) Set(id string, raw map[string]any) error {
	m := cloneMap(raw)
	if m == nil {
		m = map[string]any{}
	}
	m["id"] = id
	r, err := parse(m)
	if err != nil {
		return fmt.Errorf("rule %q: %w", id, err)
	}
	if _, ok := s.entries[id]; !ok {
		s.order = append(s.order, id)
	}
	s.entries[id] = &entry{raw: m, rule: r}
	return nil
}

// Copy stores a copy of from's rule under to. It reports whether from had a
// rule.
func (s *Store) Copy(from, to string) bool {
	e, ok := s.entries[from]
	if !ok {
		return false
	}
	if from == to {
		return true
	}
	// raw already parsed once, so this cannot fail
	_ = s.Set(to, e.raw)
	return true
}

// Merge stores under to the rule of base with the top-level keys of top's
// rule written over it. Either side may be missing; when both are, nothing
// changes and Merge returns false.
func (s *Store) Merge(to, base, top string) bool {
	b, hasBase := s.entries[base]
	t, hasTop := s.entries[top]
	var merged map[string]any
	switch {
	case hasBase && hasTop:
		merged = cloneMap(b.raw)
		for k, v := range t.raw {
			merged[k] = design.CloneValue(v)
		}
	case hasBase:
		merged = b.raw
	case hasTop:
		merged = t.raw
	default:
		return false
	}
	if err := s.Set(to, merged); err != nil {
		return false
	}
	return true
}

// Rename moves id's rule to newID, keeping its place in the output order.
func (s *Store) Rename(id, newID string) bool {
	e, ok := s.entries[id]
	if !ok || id == newID {
		return ok
	}
	if _, taken := s.entries[newID]; taken {
		s.Delete(newID)
	}
	e.raw["id"] = newID
	e.rule.ID = newID
	delete(s.entries, id)
	s.entries[newID] = e
	s.order[slices.Index(s.order, id)] = newID
	return true
}

// Delete removes id's rule.
func (s *Store) Delete(id string) {
	if _, ok := s.entries[id]; !ok {
		return
	}
	delete(s.entries, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// ApplyOverride writes value at the dotted path inside id's raw rule and
// re-derives the typed rule. The rule is left unchanged when the write fails
// or produces a rule that no longer decodes. An id without a rule yields
// [ErrNoRule].
func (s *Store) ApplyOverride(id, path string, value any) error {
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("rule %q: %w", id, ErrNoRule)
	}
	updated, err := valuepath.Set(cloneMap(e.raw), path, design.CloneValue(value))
	m, _ := updated.(map[string]any)
	if m == nil {
		return fmt.Errorf("rule %q: override %q removed the rule", id, path)
	}
	m["id"] = id
	r, perr := parse(m)
	if perr != nil {
		return fmt.Errorf("rule %q: override %q: %w", id, path, perr)
	}
	e.raw, e.rule = m, r
	return err
}

// SetSize rewrites the width and height of id's rule as pixel lengths.
func (s *Store) SetSize(id string, size geom.Size) {
	e, ok := s.entries[id]
	if !ok {
		return
	}
	e.raw["width"] = map[string]any{"value": map[string]any{"types": float64(LengthPx), "value": size.Width}}
	e.raw["height"] = map[string]any{"value": map[string]any{"types": float64(LengthPx), "value": size.Height}}
	e.rule.Width = Dimension{Value: Length{Types: LengthPx, Value: size.Width}}
	e.rule.Height = Dimension{Value: Length{Types: LengthPx, Value: size.Height}}
}

// Encode returns the rule document with rules in output order.
func (s *Store) Encode() map[string]any {
	out := cloneMap(s.extra)
	if out == nil {
		out = map[string]any{}
	}
	items := make([]any, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, cloneMap(s.entries[id].raw))
	}
	out["obj"] = items
	return out
}

// MarshalJSON encodes the rule document.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Encode())
}

// Clone returns an independent copy of s.
func (s *Store) Clone() *Store {
	c := &Store{
		entries: make(map[string]*entry, len(s.entries)),
		order:   slices.Clone(s.order),
		extra:   cloneMap(s.extra),
	}
	for id, e := range s.entries {
		raw := cloneMap(e.raw)
		r, _ := parse(raw)
		c.entries[id] = &entry{raw: raw, rule: r}
	}
	return c
}

func cloneMap(m map[string]any) map[string]any {
	out, _ := design.CloneValue(m).(map[string]any)
	return out
}
