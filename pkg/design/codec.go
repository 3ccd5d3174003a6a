package design

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/symbolkit/pkg/geom"
)

// DecodeElement builds an element tree from a decoded JSON object.
func DecodeElement(v any) (*Element, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("element: want object, got %T", v)
	}
	class, _ := m["class"].(string)
	e := &Element{Kind: KindOf(class), Matrix: geom.Identity, Visible: true}

	switch {
	case e.Kind.IsObject():
		if err := e.decodeObject(cloneMap(m)); err != nil {
			return nil, fmt.Errorf("%s %q: %w", class, e.ID, err)
		}
	case e.Kind == KindContour:
		if err := e.decodeContour(cloneMap(m)); err != nil {
			return nil, fmt.Errorf("contour: %w", err)
		}
	default:
		e.Extra = cloneMap(m)
	}
	return e, nil
}

func (e *Element) decodeObject(m map[string]any) error {
	delete(m, "frame")

	var children []*Element
	if e.Kind.HasChildObjects() {
		if raw, ok := m["childObjects"]; ok {
			items, ok := raw.([]any)
			if !ok && raw != nil {
				return fmt.Errorf("childObjects: want array, got %T", raw)
			}
			for i, item := range items {
				child, err := DecodeElement(item)
				if err != nil {
					return fmt.Errorf("childObjects[%d]: %w", i, err)
				}
				children = append(children, child)
			}
			delete(m, "childObjects")
		}
	}
	if e.Kind == KindPath {
		subs, err := decodeSubshapes(m)
		if err != nil {
			return err
		}
		children = subs
	}

	if err := e.setFields(m); err != nil {
		return err
	}
	e.SetChildren(children)
	return nil
}

// decodeSubshapes detaches shape.subshapes from m and decodes each subshape
// geometry as a child element.
func decodeSubshapes(m map[string]any) ([]*Element, error) {
	shape, ok := m["shape"].(map[string]any)
	if !ok {
		return nil, nil
	}
	items, _ := shape["subshapes"].([]any)
	delete(shape, "subshapes")

	children := make([]*Element, 0, len(items))
	for i, item := range items {
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("shape.subshapes[%d]: want object, got %T", i, item)
		}
		child, err := DecodeElement(sub["subGeometry"])
		if err != nil {
			return nil, fmt.Errorf("shape.subshapes[%d]: %w", i, err)
		}
		if op, ok := toInt(sub["booleanOperation"]); ok {
			child.BooleanOp = BooleanOp(op)
		}
		delete(sub, "subGeometry")
		child.subshape = sub
		children = append(children, child)
	}
	return children, nil
}

// setFields decodes the typed object fields from m and keeps m as Extra.
func (e *Element) setFields(m map[string]any) error {
	e.Extra = m
	e.ID, _ = m["id"].(string)
	e.Name, _ = m["name"].(string)
	e.OverrideKey, _ = m["overrideKey"].(string)

	e.Bounds = geom.Rect{}
	if raw, ok := m["bounds"]; ok {
		r, err := rectFromValue(raw)
		if err != nil {
			return fmt.Errorf("bounds: %w", err)
		}
		e.Bounds = r
	}
	e.Matrix = geom.Identity
	if raw, ok := m["matrix"]; ok {
		mat, err := matrixFromValue(raw)
		if err != nil {
			return fmt.Errorf("matrix: %w", err)
		}
		e.Matrix = mat
	}

	e.Visible = true
	if v, ok := m["visible"].(bool); ok {
		e.Visible = v
	}
	e.KeepShapeWhenResize, _ = m["keepShapeWhenResize"].(bool)
	e.IsVectorNetwork, _ = m["isVectorNetwork"].(bool)
	e.HorizontalConstraint = optInt(m, "horizontalConstraint")
	e.VerticalConstraint = optInt(m, "verticalConstraint")
	e.ResizesContent = optInt(m, "resizesContent")

	e.AlphaMaskBy = nil
	if items, ok := m["alphaMaskBy"].([]any); ok {
		for _, item := range items {
			if mm, ok := item.(map[string]any); ok {
				e.AlphaMaskBy = append(e.AlphaMaskBy, cloneMap(mm))
			}
		}
	}
	e.OutlineMaskBy = nil
	if items, ok := m["outlineMaskBy"].([]any); ok {
		for _, item := range items {
			if s, ok := item.(string); ok {
				e.OutlineMaskBy = append(e.OutlineMaskBy, s)
			}
		}
	}

	e.VariableDefs, e.VariableRefs = nil, nil
	if raw, ok := m["variableDefs"]; ok {
		if err := convert(raw, &e.VariableDefs); err != nil {
			return fmt.Errorf("variableDefs: %w", err)
		}
	}
	if raw, ok := m["variableRefs"]; ok {
		if err := convert(raw, &e.VariableRefs); err != nil {
			return fmt.Errorf("variableRefs: %w", err)
		}
	}

	_, hasAssignments := m["variableAssignments"]
	if e.Kind == KindSymbolInstance || hasAssignments {
		inst := &InstanceData{}
		inst.MasterID, _ = m["masterId"].(string)
		if raw, ok := m["overrideValues"]; ok {
			if err := convert(raw, &inst.Overrides); err != nil {
				return fmt.Errorf("overrideValues: %w", err)
			}
		}
		if raw, ok := m["variableAssignments"]; ok {
			if err := convert(raw, &inst.Assignments); err != nil {
				return fmt.Errorf("variableAssignments: %w", err)
			}
		}
		e.Instance = inst
	} else {
		e.Instance = nil
	}
	return nil
}

func optInt(m map[string]any, key string) *int {
	if n, ok := toInt(m[key]); ok {
		return &n
	}
	return nil
}

func (e *Element) decodeContour(m map[string]any) error {
	e.Extra = m
	e.Closed, _ = m["closed"].(bool)
	items, _ := m["points"].([]any)
	for i, item := range items {
		pm, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("points[%d]: want object, got %T", i, item)
		}
		p, err := pointFromValue(pm["point"])
		if err != nil {
			return fmt.Errorf("points[%d].point: %w", i, err)
		}
		bp := geom.BezierPoint{Point: p}
		if raw, ok := pm["curveFrom"]; ok && raw != nil {
			from, err := pointFromValue(raw)
			if err != nil {
				return fmt.Errorf("points[%d].curveFrom: %w", i, err)
			}
			bp.CurveFrom = &from
		}
		if raw, ok := pm["curveTo"]; ok && raw != nil {
			to, err := pointFromValue(raw)
			if err != nil {
				return fmt.Errorf("points[%d].curveTo: %w", i, err)
			}
			bp.CurveTo = &to
		}
		e.Points = append(e.Points, bp)
		e.pointExtra = append(e.pointExtra, pm)
	}
	return nil
}

// Value returns the fields of an object as a generic JSON map, without its
// children. The map is a copy; use [Element.SetValue] to write changes back.
// Elements that are not objects return a copy of their raw fields.
func (e *Element) Value() map[string]any {
	if !e.Kind.IsObject() {
		return cloneMap(e.Extra)
	}

	out := cloneMap(e.Extra)
	if out == nil {
		out = map[string]any{}
	}
	out["class"] = e.Kind.Class()
	out["id"] = e.ID
	setString(out, "name", e.Name)
	setString(out, "overrideKey", e.OverrideKey)
	out["bounds"] = rectValue(out["bounds"], e.Bounds)
	out["matrix"] = matrixValue(e.Matrix)
	out["visible"] = e.Visible
	setBool(out, "keepShapeWhenResize", e.KeepShapeWhenResize)
	setBool(out, "isVectorNetwork", e.IsVectorNetwork)
	setInt(out, "horizontalConstraint", e.HorizontalConstraint)
	setInt(out, "verticalConstraint", e.VerticalConstraint)
	setInt(out, "resizesContent", e.ResizesContent)

	if e.AlphaMaskBy != nil {
		items := make([]any, len(e.AlphaMaskBy))
		for i, m := range e.AlphaMaskBy {
			items[i] = cloneMap(m)
		}
		out["alphaMaskBy"] = items
	} else {
		delete(out, "alphaMaskBy")
	}
	if e.OutlineMaskBy != nil {
		items := make([]any, len(e.OutlineMaskBy))
		for i, s := range e.OutlineMaskBy {
			items[i] = s
		}
		out["outlineMaskBy"] = items
	} else {
		delete(out, "outlineMaskBy")
	}
	setList(out, "variableDefs", e.VariableDefs, len(e.VariableDefs))
	setList(out, "variableRefs", e.VariableRefs, len(e.VariableRefs))

	if inst := e.Instance; inst != nil {
		setString(out, "masterId", inst.MasterID)
		setList(out, "overrideValues", inst.Overrides, len(inst.Overrides))
		setList(out, "variableAssignments", inst.Assignments, len(inst.Assignments))
	}
	return out
}

// SetValue replaces the fields of an object with m. Children are kept; any
// child keys in m are ignored.
func (e *Element) SetValue(m map[string]any) error {
	if !e.Kind.IsObject() {
		e.Extra = cloneMap(m)
		return nil
	}
	v := cloneMap(m)
	delete(v, "childObjects")
	delete(v, "frame")
	if shape, ok := v["shape"].(map[string]any); ok {
		delete(shape, "subshapes")
	}
	return e.setFields(v)
}

func setString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	} else {
		delete(m, key)
	}
}

// setBool keeps an explicit false that the source document carried.
func setBool(m map[string]any, key string, v bool) {
	if _, present := m[key]; v || present {
		m[key] = v
	}
}

func setInt(m map[string]any, key string, v *int) {
	if v != nil {
		m[key] = *v
	} else {
		delete(m, key)
	}
}

func setList(m map[string]any, key string, v any, n int) {
	if n > 0 {
		m[key] = toValue(v)
	} else {
		delete(m, key)
	}
}

// Encode returns e and its subtree as a generic JSON value.
func (e *Element) Encode() map[string]any {
	switch {
	case e.Kind.IsObject():
		out := e.Value()
		out["frame"] = rectValue(nil, e.ModelFrame())
		if e.Kind.HasChildObjects() {
			items := make([]any, len(e.children))
			for i, c := range e.children {
				items[i] = c.Encode()
			}
			out["childObjects"] = items
		}
		if e.Kind == KindPath && (len(e.children) > 0 || out["shape"] != nil) {
			shape, _ := out["shape"].(map[string]any)
			if shape == nil {
				shape = map[string]any{}
			}
			subs := make([]any, len(e.children))
			for i, c := range e.children {
				sub := cloneMap(c.subshape)
				if sub == nil {
					sub = map[string]any{"class": "subshape"}
				}
				sub["booleanOperation"] = int(c.BooleanOp)
				sub["subGeometry"] = c.Encode()
				subs[i] = sub
			}
			shape["subshapes"] = subs
			out["shape"] = shape
		}
		return out

	case e.Kind == KindContour:
		out := cloneMap(e.Extra)
		if out == nil {
			out = map[string]any{}
		}
		out["class"] = KindContour.Class()
		out["closed"] = e.Closed
		points := make([]any, len(e.Points))
		for i, p := range e.Points {
			var pm map[string]any
			if i < len(e.pointExtra) {
				pm = cloneMap(e.pointExtra[i])
			}
			if pm == nil {
				pm = map[string]any{"class": "pointAttr"}
			}
			pm["point"] = pointValue(p.Point)
			delete(pm, "curveFrom")
			delete(pm, "curveTo")
			if p.CurveFrom != nil {
				pm["curveFrom"] = pointValue(*p.CurveFrom)
			}
			if p.CurveTo != nil {
				pm["curveTo"] = pointValue(*p.CurveTo)
			}
			points[i] = pm
		}
		out["points"] = points
		return out

	default:
		return cloneMap(e.Extra)
	}
}

// MarshalJSON encodes e and its subtree.
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Encode())
}

// UnmarshalJSON decodes an element tree into e.
func (e *Element) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	d, err := DecodeElement(v)
	if err != nil {
		return err
	}
	*e = *d
	for _, c := range e.children {
		c.parent = e
	}
	return nil
}
