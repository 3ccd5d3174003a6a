// Package valuepath writes values into decoded JSON trees addressed by dotted
// paths.
//
// A path such as "style.fills.0.color" is split on dots. Each segment is a
// map key, an array index, or "*", which applies the rest of the path to every
// value of a map or every element of an array. Writing a nil value deletes the
// addressed key or array element instead of storing null.
//
// Missing intermediate maps are created on the way down. Segments that cannot
// be applied (an empty segment, a non-numeric key into an array, an index past
// the end, a scalar in the middle of the path) are reported as a
// [*SegmentError] and leave that branch of the tree unchanged; other branches
// of a wildcard write still apply.
package valuepath

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Wildcard is the segment that matches every child of a map or array.
const Wildcard = "*"

// SegmentError reports a path segment that could not be applied.
type SegmentError struct {
	Path    string
	Segment int
	Reason  string
}

func (e *SegmentError) Error() string {
	segs := Split(e.Path)
	seg := ""
	if e.Segment < len(segs) {
		seg = segs[e.Segment]
	}
	return fmt.Sprintf("path %q: segment %d (%q): %s", e.Path, e.Segment, seg, e.Reason)
}

// Split returns the segments of a dotted path.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Set writes value at path inside root and returns the updated root. Maps and
// arrays are modified in place where possible; the returned root differs from
// the argument only when root itself had to be created or an array grew.
func Set(root any, path string, value any) (any, error) {
	segs := Split(path)
	if len(segs) == 0 {
		return root, &SegmentError{Path: path, Reason: "empty path"}
	}
	w := writer{path: path, segs: segs}
	out := w.set(root, 0, value)
	return out, errors.Join(w.errs...)
}

// Get returns the value at path inside root. A wildcard segment resolves to
// the first match, visiting map keys in sorted order.
func Get(root any, path string) (any, bool) {
	return get(root, Split(path))
}

func get(node any, segs []string) (any, bool) {
	if len(segs) == 0 {
		return node, true
	}
	seg := segs[0]
	switch n := node.(type) {
	case map[string]any:
		if seg == Wildcard {
			for _, k := range sortedKeys(n) {
				if v, ok := get(n[k], segs[1:]); ok {
					return v, true
				}
			}
			return nil, false
		}
		v, ok := n[seg]
		if !ok {
			return nil, false
		}
		return get(v, segs[1:])
	case []any:
		if seg == Wildcard {
			for _, item := range n {
				if v, ok := get(item, segs[1:]); ok {
					return v, true
				}
			}
			return nil, false
		}
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(n) {
			return nil, false
		}
		return get(n[i], segs[1:])
	}
	return nil, false
}

type writer struct {
	path string
	segs []string
	errs []error
}

func (w *writer) fail(i int, format string, args ...any) {
	w.errs = append(w.errs, &SegmentError{Path: w.path, Segment: i, Reason: fmt.Sprintf(format, args...)})
}

func (w *writer) set(node any, i int, value any) any {
	seg := w.segs[i]
	last := i == len(w.segs)-1
	if seg == "" {
		w.fail(i, "empty segment")
		return node
	}

	if node == nil {
		if last && value == nil {
			return nil
		}
		node = map[string]any{}
	}

	switch n := node.(type) {
	case map[string]any:
		if seg == Wildcard {
			for _, k := range sortedKeys(n) {
				w.assignKey(n, k, i, last, value)
			}
			return n
		}
		w.assignKey(n, seg, i, last, value)
		return n

	case []any:
		if seg == Wildcard {
			if last && value == nil {
				return n[:0]
			}
			for j := range n {
				if last {
					n[j] = value
				} else {
					n[j] = w.set(n[j], i+1, value)
				}
			}
			return n
		}
		j, err := strconv.Atoi(seg)
		if err != nil || j < 0 {
			w.fail(i, "not an array index")
			return n
		}
		if j > len(n) || (j == len(n) && !last) {
			w.fail(i, "index out of range [0,%d]", len(n))
			return n
		}
		if last {
			switch {
			case value == nil && j < len(n):
				return append(n[:j], n[j+1:]...)
			case value == nil:
				return n
			case j == len(n):
				return append(n, value)
			}
			n[j] = value
			return n
		}
		n[j] = w.set(n[j], i+1, value)
		return n

	default:
		w.fail(i, "cannot descend into %T", node)
		return node
	}
}

func (w *writer) assignKey(m map[string]any, key string, i int, last bool, value any) {
	if last {
		if value == nil {
			delete(m, key)
		} else {
			m[key] = value
		}
		return
	}
	next := w.set(m[key], i+1, value)
	if next == nil {
		return
	}
	m[key] = next
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
