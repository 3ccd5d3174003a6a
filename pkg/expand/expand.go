package expand

import (
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/layout"
	"github.com/matzehuels/symbolkit/pkg/rule"
)

// ExpandedSuffix is appended to the name of every expanded instance.
const ExpandedSuffix = ";expanded_instance"

// Stats counts what a run did.
type Stats struct {
	InstancesExpanded int `json:"instances_expanded"`
	OverridesApplied  int `json:"overrides_applied"`
	OverridesSkipped  int `json:"overrides_skipped"`
	MissingMasters    int `json:"missing_masters"`
	CyclesBroken      int `json:"cycles_broken"`
}

// Result is the output of [Expander.Run].
type Result struct {
	Document *design.Document
	Rules    *rule.Store
	// Layout is a layout tree over the expanded Document. Resizing through
	// it updates Document and Rules.
	Layout *layout.Layout
	Stats  Stats
}

// Expander expands the symbol instances of one document. It is not safe for
// concurrent use; build one per document.
type Expander struct {
	doc     *design.Document
	rules   *rule.Store
	layout  *layout.Layout
	masters map[string]*design.Element
	// expanding counts the instances of each master currently being expanded.
	expanding map[string]int
	// expandedFrom records the master each expanded instance was built from.
	expandedFrom map[*design.Element]string
	logger       *log.Logger
	stats        Stats
	done         bool
}

// Option configures an [Expander].
type Option func(*Expander)

// WithLogger sets the logger for lookup failures and broken cycles.
func WithLogger(l *log.Logger) Option {
	return func(x *Expander) {
		if l != nil {
			x.logger = l
		}
	}
}

// New returns an expander for doc. doc and rules are copied; neither is
// modified. rules may be nil.
func New(doc *design.Document, rules *rule.Store, opts ...Option) *Expander {
	x := &Expander{
		doc:          doc.Clone(),
		masters:      map[string]*design.Element{},
		expanding:    map[string]int{},
		expandedFrom: map[*design.Element]string{},
		logger:       log.NewWithOptions(io.Discard, log.Options{}),
	}
	if rules != nil {
		x.rules = rules.Clone()
	} else {
		x.rules = rule.NewStore()
	}
	for _, opt := range opts {
		opt(x)
	}
	x.layout = layout.New(x.doc, x.rules, layout.WithLogger(x.logger))
	return x
}

// Run expands every instance of the document. A second call returns the
// result of the first.
func (x *Expander) Run() (Result, error) {
	if !x.done {
		x.collectMasters()
		for _, page := range x.doc.Frames {
			x.expandTree(page, nil)
		}
		for _, ref := range x.doc.References {
			if ref.Element != nil {
				x.expandTree(ref.Element, nil)
			}
		}
		x.done = true
		// anchor ratios are measured against the expanded sizes
		x.layout = layout.New(x.doc, x.rules, layout.WithLogger(x.logger))
		x.logger.Debug("expanded document",
			"instances", x.stats.InstancesExpanded,
			"overrides", x.stats.OverridesApplied,
			"skipped", x.stats.OverridesSkipped)
	}
	return Result{Document: x.doc, Rules: x.rules, Layout: x.layout, Stats: x.stats}, nil
}

// collectMasters snapshots every master of the document before anything is
// expanded. The first master with a given id wins.
func (x *Expander) collectMasters() {
	x.doc.Walk(func(el *design.Element) bool {
		if el.Kind == design.KindSymbolMaster && el.ID != "" {
			if _, seen := x.masters[el.ID]; !seen {
				x.masters[el.ID] = el.Clone()
			}
		}
		return true
	})
}

// expandTree expands the instances in el's subtree.
func (x *Expander) expandTree(el *design.Element, stack []string) {
	if el.Kind == design.KindSymbolInstance {
		x.expandInstance(el, stack, false)
		return
	}
	for _, c := range slices.Clone(el.Children()) {
		x.expandTree(c, stack)
	}
}

// expandInstance replaces the children of inst with a copy of its master's
// and applies inst's overrides. stack holds the ids of the enclosing
// instances. When again is set, inst was expanded before and has just been
// given a new master; stack then already ends with inst's own key.
func (x *Expander) expandInstance(inst *design.Element, stack []string, again bool) {
	data := inst.Instance
	if data == nil || data.MasterID == "" {
		x.logger.Warn("instance has no master id", "id", inst.ID)
		x.stats.MissingMasters++
		return
	}
	masterID := data.MasterID
	master, ok := x.masters[masterID]
	if !ok {
		x.logger.Warn("master not found", "id", inst.ID, "master", masterID)
		x.stats.MissingMasters++
		return
	}
	if (!again && slices.Contains(stack, inst.ID)) || x.expanding[masterID] > 0 {
		x.logger.Warn("instance cycle", "id", inst.ID, "master", masterID)
		x.stats.CyclesBroken++
		return
	}
	x.expanding[masterID]++
	defer func() { x.expanding[masterID]-- }()

	origID := inst.ID
	if again {
		origID = design.LastKey(inst.ID)
	} else {
		stack = append(slices.Clone(stack), inst.ID)
	}

	children := make([]*design.Element, 0, len(master.Children()))
	for _, c := range master.Children() {
		children = append(children, c.Clone())
	}
	inst.SetChildren(children)
	if style := master.Style(); style != nil {
		inst.SetStyle(style)
	} else {
		delete(inst.Extra, "style")
	}
	if len(inst.VariableDefs) == 0 && len(master.VariableDefs) > 0 {
		inst.VariableDefs = master.Clone().VariableDefs
	}

	for _, c := range children {
		x.expandTree(c, stack)
	}
	x.rebuild(inst)

	newID := design.JoinKeys(stack)
	prefix := newID + design.Separator
	renamed := prefixIDs(inst, prefix)
	inst.ID = newID
	fixMaskIDs(inst, prefix)

	x.rules.Merge(newID, masterID, origID)
	for _, r := range renamed {
		x.rules.Copy(r.from, r.to)
	}

	x.applyOverrides(inst, master, stack)

	fixMaskIDs(inst, prefix)
	inst.Kind = design.KindSymbolMaster
	if !strings.HasSuffix(inst.Name, ExpandedSuffix) {
		inst.Name += ExpandedSuffix
	}
	// field overrides on the instance itself rebuild its instance data
	inst.Instance.MasterID = ""
	inst.Instance.Overrides = nil
	x.expandedFrom[inst] = masterID
	x.stats.InstancesExpanded++
}

// swapMaster gives an expanded instance a new master and expands it again
// in place, under the id it already has.
func (x *Expander) swapMaster(target *design.Element, masterID string) {
	stale := target.ID + design.Separator
	for _, c := range target.Children() {
		c.Walk(func(el *design.Element) bool {
			if strings.HasPrefix(el.ID, stale) {
				x.rules.Delete(el.ID)
			}
			return true
		})
	}
	if target.Instance == nil {
		target.Instance = &design.InstanceData{}
	}
	target.Instance.MasterID = masterID
	target.Instance.Overrides = nil
	target.Kind = design.KindSymbolInstance
	x.expandInstance(target, strings.Split(target.ID, design.Separator), true)
}

// rebuild re-derives the layout subtree of el from its current children. It
// returns nil when el is not part of a page.
func (x *Expander) rebuild(el *design.Element) *layout.Node {
	if n := x.layout.NodeFor(el); n != nil {
		x.layout.RebuildNode(n)
		return n
	}
	return x.layout.RebuildElement(el)
}
