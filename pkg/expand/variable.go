package expand

import (
	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/valuepath"
)

// lookupVariable resolves variable id as seen from el. Assignments made by
// enclosing instances win, nearest first; otherwise the nearest definition
// on el or one of its ancestors supplies the value. The variable type always
// comes from the nearest definition.
func lookupVariable(el *design.Element, id string) (value any, varType int, ok bool) {
	var def *design.VariableDef
	for a := el; a != nil && def == nil; a = a.Parent() {
		for i := range a.VariableDefs {
			if a.VariableDefs[i].ID == id {
				def = &a.VariableDefs[i]
				break
			}
		}
	}
	if def != nil {
		varType = def.VarType
	}
	for a := el.Parent(); a != nil; a = a.Parent() {
		if a.Instance == nil {
			continue
		}
		for _, as := range a.Instance.Assignments {
			if as.ID == id {
				return as.Value, varType, true
			}
		}
	}
	if def != nil {
		return def.Value, varType, true
	}
	return nil, 0, false
}

// swapByVariables re-expands descendant instances whose master id is bound
// to a variable that now resolves to a different master.
func (x *Expander) swapByVariables(inst *design.Element) {
	var candidates []*design.Element
	for _, c := range inst.Children() {
		c.Walk(func(el *design.Element) bool {
			if el.Instance == nil {
				return true
			}
			for _, ref := range el.VariableRefs {
				if ref.ObjectField == nameMasterID {
					candidates = append(candidates, el)
					break
				}
			}
			return true
		})
	}

	for _, el := range candidates {
		// an earlier swap may have replaced the subtree holding el
		if !inst.IsAncestorOf(el) {
			continue
		}
		for _, ref := range el.VariableRefs {
			if ref.ObjectField != nameMasterID {
				continue
			}
			v, _, ok := lookupVariable(el, ref.ID)
			id, isString := v.(string)
			if !ok || !isString || id == "" {
				continue
			}
			current := el.Instance.MasterID
			if from, expanded := x.expandedFrom[el]; expanded {
				current = from
			}
			if id != current {
				x.swapMaster(el, id)
			}
			break
		}
	}
}

// resolveVariables writes the resolved value of every variable reference in
// inst's subtree into the referencing field.
func (x *Expander) resolveVariables(inst *design.Element, dirty *dirtySet) {
	inst.Walk(func(el *design.Element) bool {
		for _, ref := range el.VariableRefs {
			if ref.ObjectField == nameMasterID {
				continue
			}
			v, varType, ok := lookupVariable(el, ref.ID)
			if !ok {
				continue
			}
			switch {
			case varType == design.VarTypeText && el.Kind == design.KindText:
				el.SetTextContent(v)
			case ref.ObjectField == nameVisible:
				b, isBool := v.(bool)
				if !isBool {
					continue
				}
				if el.Visible != b {
					el.Visible = b
					dirty.add(el)
				}
			default:
				x.writeField(el, ref.ObjectField, v)
			}
		}
		return true
	})
}

// writeField writes v at a dotted path inside el.
func (x *Expander) writeField(el *design.Element, path string, v any) {
	updated, err := valuepath.Set(el.Value(), path, design.CloneValue(v))
	if err != nil {
		x.logger.Warn("variable path", "id", el.ID, "field", path, "err", err)
	}
	m, ok := updated.(map[string]any)
	if !ok {
		return
	}
	data := el.Instance
	if err := el.SetValue(m); err != nil {
		x.logger.Warn("variable value", "id", el.ID, "field", path, "err", err)
		return
	}
	if el.Instance == nil && data != nil {
		el.Instance = data
	}
}
