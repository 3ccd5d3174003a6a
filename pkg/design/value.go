package design

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/symbolkit/pkg/geom"
)

// CloneValue returns a deep copy of a decoded JSON value. Maps and slices are
// copied recursively; scalars are returned as is.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}

// ToFloat converts a decoded JSON number to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := ToFloat(v)
	return int(f), ok
}

func rectFromValue(v any) (geom.Rect, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return geom.Rect{}, fmt.Errorf("want object, got %T", v)
	}
	var r geom.Rect
	for key, dst := range map[string]*float64{
		"x":      &r.Origin.X,
		"y":      &r.Origin.Y,
		"width":  &r.Size.Width,
		"height": &r.Size.Height,
	} {
		raw, present := m[key]
		if !present {
			continue
		}
		f, ok := ToFloat(raw)
		if !ok {
			return geom.Rect{}, fmt.Errorf("%s: want number, got %T", key, raw)
		}
		*dst = f
	}
	return r, nil
}

// rectValue writes r over base, keeping any other keys base carries.
func rectValue(base any, r geom.Rect) map[string]any {
	out, _ := CloneValue(base).(map[string]any)
	if out == nil {
		out = make(map[string]any, 4)
	}
	out["x"] = r.Origin.X
	out["y"] = r.Origin.Y
	out["width"] = r.Size.Width
	out["height"] = r.Size.Height
	return out
}

func matrixFromValue(v any) (geom.Matrix, error) {
	items, ok := v.([]any)
	if !ok || len(items) != 6 {
		return geom.Matrix{}, fmt.Errorf("want 6 numbers, got %v", v)
	}
	var c [6]float64
	for i, item := range items {
		f, ok := ToFloat(item)
		if !ok {
			return geom.Matrix{}, fmt.Errorf("component %d: want number, got %T", i, item)
		}
		c[i] = f
	}
	return geom.Matrix{A: c[0], B: c[1], C: c[2], D: c[3], Tx: c[4], Ty: c[5]}, nil
}

func matrixValue(m geom.Matrix) []any {
	return []any{m.A, m.B, m.C, m.D, m.Tx, m.Ty}
}

// pointFromValue accepts both [x, y] and {"x": x, "y": y}.
func pointFromValue(v any) (geom.Point, error) {
	switch t := v.(type) {
	case []any:
		if len(t) < 2 {
			return geom.Point{}, fmt.Errorf("want [x, y], got %v", v)
		}
		x, okX := ToFloat(t[0])
		y, okY := ToFloat(t[1])
		if !okX || !okY {
			return geom.Point{}, fmt.Errorf("want numbers, got %v", v)
		}
		return geom.Point{X: x, Y: y}, nil
	case map[string]any:
		x, okX := ToFloat(t["x"])
		y, okY := ToFloat(t["y"])
		if !okX || !okY {
			return geom.Point{}, fmt.Errorf("want numbers, got %v", v)
		}
		return geom.Point{X: x, Y: y}, nil
	}
	return geom.Point{}, fmt.Errorf("want point, got %T", v)
}

func pointValue(p geom.Point) []any {
	return []any{p.X, p.Y}
}

// convert decodes a generic JSON value into dst by round-tripping it through
// encoding/json.
func convert(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// toValue encodes src as a generic JSON value.
func toValue(src any) any {
	var out any
	if err := convert(src, &out); err != nil {
		return nil
	}
	return out
}
