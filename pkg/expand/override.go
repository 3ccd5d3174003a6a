package expand

import (
	"errors"
	"slices"
	"sort"
	"strings"

	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/geom"
	"github.com/matzehuels/symbolkit/pkg/rule"
	"github.com/matzehuels/symbolkit/pkg/valuepath"
)

// Override names with dedicated handling.
const (
	nameMasterID    = "masterId"
	nameAssignments = "variableAssignments"
	nameBounds      = "bounds"
	nameVisible     = "visible"
	nameStyle       = "style"
)

// applyOverrides runs the override phases of one freshly copied instance.
func (x *Expander) applyOverrides(inst, master *design.Element, stack []string) {
	var swaps, assigns, rules, bounds, rest []design.Override
	for _, o := range inst.Instance.Overrides {
		switch {
		case o.Name == nameMasterID:
			swaps = append(swaps, o)
		case o.Name == nameAssignments || strings.HasPrefix(o.Name, nameAssignments+"."):
			assigns = append(assigns, o)
		case o.Name == nameBounds || strings.HasPrefix(o.Name, nameBounds+"."):
			bounds = append(bounds, o)
		case o.EffectOnLayout:
			rules = append(rules, o)
		default:
			rest = append(rest, o)
		}
	}

	dirty := &dirtySet{}

	sort.SliceStable(swaps, func(i, j int) bool {
		return len(swaps[i].ObjectID) < len(swaps[j].ObjectID)
	})
	for _, o := range swaps {
		target := x.target(inst, master, stack, o)
		if target == nil || target == inst {
			x.skip(inst, o, "no descendant instance to swap")
			continue
		}
		id, ok := o.Value.(string)
		if !ok || id == "" {
			x.skip(inst, o, "master id is not a string")
			continue
		}
		x.swapMaster(target, id)
		x.stats.OverridesApplied++
	}

	x.swapByVariables(inst)

	for _, o := range assigns {
		target := x.target(inst, master, stack, o)
		if target == nil || target.Instance == nil {
			x.skip(inst, o, "target is not an instance")
			continue
		}
		x.writeValue(inst, target, o, dirty)
	}

	x.resolveVariables(inst, dirty)

	for _, o := range rules {
		target := x.target(inst, master, stack, o)
		if target == nil {
			x.skip(inst, o, "target not found")
			continue
		}
		if err := x.rules.ApplyOverride(target.ID, o.Name, o.Value); err != nil {
			if errors.Is(err, rule.ErrNoRule) {
				x.skip(inst, o, "target has no layout rule")
				continue
			}
			x.logger.Warn("layout rule override", "instance", inst.ID, "target", target.ID, "err", err)
			x.stats.OverridesSkipped++
			continue
		}
		dirty.add(target)
		x.stats.OverridesApplied++
	}

	if x.resizeToInstance(inst, master) {
		dirty.add(inst)
	}
	x.applyBounds(inst, master, stack, bounds, dirty)

	for _, o := range rest {
		target := x.target(inst, master, stack, o)
		if target == nil {
			x.skip(inst, o, "target not found")
			continue
		}
		if o.Name == nameStyle {
			if id, ok := o.Value.(string); ok {
				if ref := x.doc.Style(id); ref != nil {
					target.ApplyReferencedStyle(ref)
					x.stats.OverridesApplied++
					continue
				}
			}
		}
		x.writeValue(inst, target, o, dirty)
		if target.IsVectorNetwork && isBordersPath(o.Name) {
			for _, c := range target.Children() {
				c.Walk(func(el *design.Element) bool {
					if el.Kind.IsObject() {
						x.writeValue(inst, el, o, dirty)
					}
					return true
				})
			}
		}
	}

	if ids := dirty.ids(); len(ids) > 0 {
		x.layout.LayoutNodes(ids, inst.ID)
	}
}

func isBordersPath(name string) bool {
	return name == "style.borders" || strings.HasPrefix(name, "style.borders.")
}

// target resolves the object an override addresses. A single key naming
// the master addresses the instance itself.
func (x *Expander) target(inst, master *design.Element, stack []string, o design.Override) *design.Element {
	keys := o.ObjectID
	if len(keys) == 0 {
		return nil
	}
	if len(keys) == 1 && (keys[0] == master.ID || (master.OverrideKey != "" && keys[0] == master.OverrideKey)) {
		return inst
	}
	for _, c := range inst.Children() {
		ctx := slices.Clone(stack)
		if t := c.FindByKey(keys, &ctx); t != nil {
			return t
		}
	}
	return nil
}

func (x *Expander) skip(inst *design.Element, o design.Override, reason string) {
	x.logger.Warn("override skipped", "instance", inst.ID, "path", strings.Join(o.ObjectID, "/"), "name", o.Name, "reason", reason)
	x.stats.OverridesSkipped++
}

// writeValue writes an override's value at its dotted path inside target.
// Segments that cannot be followed are logged; the rest of the write still
// lands.
func (x *Expander) writeValue(inst, target *design.Element, o design.Override, dirty *dirtySet) {
	if o.Name == nameVisible {
		if v, ok := o.Value.(bool); ok {
			target.Visible = v
			dirty.add(target)
			x.stats.OverridesApplied++
			return
		}
	}
	updated, err := valuepath.Set(target.Value(), o.Name, design.CloneValue(o.Value))
	if err != nil {
		x.logger.Warn("override path", "instance", inst.ID, "target", target.ID, "name", o.Name, "err", err)
	}
	m, ok := updated.(map[string]any)
	if !ok {
		x.skip(inst, o, "write removed the object")
		return
	}
	data := target.Instance
	if serr := target.SetValue(m); serr != nil {
		x.logger.Warn("override value", "instance", inst.ID, "target", target.ID, "name", o.Name, "err", serr)
		x.stats.OverridesSkipped++
		return
	}
	if target.Instance == nil && data != nil {
		target.Instance = data
	}
	if err != nil {
		x.stats.OverridesSkipped++
	} else {
		x.stats.OverridesApplied++
	}
	if o.Name == nameVisible {
		dirty.add(target)
	}
}

// resizeToInstance fits the copied content to the instance when the
// instance was placed at a size other than its master's. The content is
// first laid out at the master's size, then resized by its policies.
func (x *Expander) resizeToInstance(inst, master *design.Element) bool {
	size := inst.Bounds.Size
	if size.Equal(master.Bounds.Size) {
		return false
	}
	node := x.layout.NodeFor(inst)
	if node == nil {
		return false
	}
	inst.Bounds.Size = master.Bounds.Size
	x.layout.RebuildNode(node)
	node.ScaleTo(size, false, true)
	// later resizes measure from the instance size, not the master's
	node.Rebuild()
	return true
}

type boundsTarget struct {
	el *design.Element
	o  design.Override
}

// applyBounds resizes and moves override targets, shallow paths first and
// ancestors before their descendants.
func (x *Expander) applyBounds(inst, master *design.Element, stack []string, overrides []design.Override, dirty *dirtySet) {
	var targets []boundsTarget
	for _, o := range overrides {
		el := x.target(inst, master, stack, o)
		if el == nil {
			x.skip(inst, o, "target not found")
			continue
		}
		targets = append(targets, boundsTarget{el: el, o: o})
	}
	sort.SliceStable(targets, func(i, j int) bool {
		a, b := targets[i], targets[j]
		if len(a.o.ObjectID) != len(b.o.ObjectID) {
			return len(a.o.ObjectID) < len(b.o.ObjectID)
		}
		return a.el != b.el && a.el.IsAncestorOf(b.el)
	})

	for _, t := range targets {
		b, ok := overrideBounds(t.el.Bounds, t.o)
		if !ok {
			x.skip(inst, t.o, "bounds value is not a number")
			continue
		}
		if !b.Size.Equal(t.el.Bounds.Size) {
			if node := x.layout.NodeFor(t.el); node != nil {
				node.ScaleTo(b.Size, true, false)
				node.Rebuild()
				x.layout.Root().LayoutIfNeeded()
			} else {
				t.el.Bounds.Size = b.Size
			}
		}
		if !b.Origin.Equal(t.el.Bounds.Origin) {
			t.el.Bounds.Origin = b.Origin
			dirty.add(t.el)
		}
		x.stats.OverridesApplied++
	}
}

// overrideBounds applies a bounds override to the declared bounds b.
func overrideBounds(b geom.Rect, o design.Override) (geom.Rect, bool) {
	field := func(name string, v any) bool {
		f, ok := design.ToFloat(v)
		if !ok {
			return false
		}
		switch name {
		case "x":
			b.Origin.X = f
		case "y":
			b.Origin.Y = f
		case "width":
			b.Size.Width = f
		case "height":
			b.Size.Height = f
		default:
			return false
		}
		return true
	}
	if o.Name == nameBounds {
		m, ok := o.Value.(map[string]any)
		if !ok {
			return b, false
		}
		for _, name := range []string{"x", "y", "width", "height"} {
			if v, ok := m[name]; ok && !field(name, v) {
				return b, false
			}
		}
		return b, true
	}
	ok := field(strings.TrimPrefix(o.Name, nameBounds+"."), o.Value)
	return b, ok
}

// dirtySet collects the objects whose containers need a new layout pass.
type dirtySet struct {
	seen map[*design.Element]bool
	els  []*design.Element
}

func (d *dirtySet) add(el *design.Element) {
	if d.seen == nil {
		d.seen = map[*design.Element]bool{}
	}
	if !d.seen[el] {
		d.seen[el] = true
		d.els = append(d.els, el)
	}
}

func (d *dirtySet) ids() []string {
	out := make([]string, 0, len(d.els))
	for _, el := range d.els {
		out = append(out, el.ID)
	}
	return out
}
