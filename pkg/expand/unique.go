package expand

import "github.com/matzehuels/symbolkit/pkg/design"

type rename struct{ from, to string }

// prefixIDs prefixes the ids and override keys below inst. Masters, which
// includes instances expanded earlier, manage their own subtree and are
// left alone.
func prefixIDs(inst *design.Element, prefix string) []rename {
	var out []rename
	for _, c := range inst.Children() {
		c.Walk(func(el *design.Element) bool {
			if el.Kind == design.KindSymbolMaster {
				return false
			}
			if el.ID == "" {
				return true
			}
			from := el.ID
			el.AddKeyPrefix(prefix)
			if el.Kind.IsObject() {
				out = append(out, rename{from: from, to: el.ID})
			}
			return true
		})
	}
	return out
}

// fixMaskIDs points the mask references below inst at the prefixed copy of
// the mask when the copy exists inside inst.
func fixMaskIDs(inst *design.Element, prefix string) {
	exists := func(id string) bool {
		return inst.FindByKey([]string{id}, nil) != nil
	}
	inst.Walk(func(el *design.Element) bool {
		for _, m := range el.AlphaMaskBy {
			id, ok := m["id"].(string)
			if ok && id != "" && exists(prefix+id) {
				m["id"] = prefix + id
			}
		}
		for i, id := range el.OutlineMaskBy {
			if id != "" && exists(prefix+id) {
				el.OutlineMaskBy[i] = prefix + id
			}
		}
		return true
	})
}
