package layout

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/geom"
	"github.com/matzehuels/symbolkit/pkg/rule"
)

// object returns an element placed at (x, y) in its parent's layout space.
func object(kind design.Kind, id string, x, y, w, h float64) *design.Element {
	el := design.NewElement(kind, id)
	el.Bounds = geom.Rect{Size: geom.Size{Width: w, Height: h}}
	el.Matrix = geom.Make(x, -y, 0)
	return el
}

func constrained(el *design.Element, horizontal, vertical Resizing) *design.Element {
	h, v := int(horizontal), int(vertical)
	el.HorizontalConstraint = &h
	el.VerticalConstraint = &v
	return el
}

func page(children ...*design.Element) (*design.Document, *design.Element) {
	p := object(design.KindFrame, "page", 0, 0, 100, 100)
	for _, c := range children {
		p.AppendChild(c)
	}
	return &design.Document{Frames: []*design.Element{p}}, p
}

var approx = cmpopts.EquateApprox(0, 1e-6)

func frameOf(t *testing.T, l *Layout, id string) geom.Rect {
	t.Helper()
	n := l.FindDescendantNodeByID(id)
	if n == nil {
		t.Fatalf("node %q not found", id)
	}
	return n.Frame()
}

func TestAnchorPolicies(t *testing.T) {
	tests := []struct {
		name     string
		policy   Resizing
		wantX    float64
		wantW    float64
		newWidth float64
	}{
		{"fix start fix size", FixStartFixSize, 10, 20, 200},
		{"fix start fix end", FixStartFixEnd, 10, 120, 200},
		{"fix start scale", FixStartScale, 10, 42.222222222, 200},
		{"fix end fix size", FixEndFixSize, 110, 20, 200},
		{"fix end scale", FixEndScale, 43.333333333, 86.666666667, 200},
		{"scale", Scale, 20, 40, 200},
		{"fix center ratio", FixCenterRatioFixSize, 30, 20, 200},
		{"fix center offset", FixCenterOffsetFixSize, 60, 20, 200},
		{"shrink below zero clamps", FixStartFixEnd, 10, geom.ResizeMinLength, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := constrained(object(design.KindText, "child", 10, 10, 20, 20), tt.policy, FixStartFixSize)
			doc, _ := page(child)
			l := New(doc, nil)
			l.Layout(geom.Size{Width: 100, Height: 100})
			l.Layout(geom.Size{Width: tt.newWidth, Height: 100})

			got := frameOf(t, l, "child")
			want := geom.R(tt.wantX, 10, tt.wantW, 20)
			if diff := cmp.Diff(want, got, approx); diff != "" {
				t.Errorf("frame mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScaleRoundTrip(t *testing.T) {
	child := constrained(object(design.KindText, "child", 10, 30, 20, 15), Scale, Scale)
	doc, _ := page(child)
	l := New(doc, nil)
	l.Layout(geom.Size{Width: 100, Height: 100})
	before := frameOf(t, l, "child")

	for _, size := range []geom.Size{{Width: 250, Height: 40}, {Width: 33, Height: 170}, {Width: 100, Height: 100}} {
		l.Layout(size)
	}
	if diff := cmp.Diff(before, frameOf(t, l, "child"), approx); diff != "" {
		t.Errorf("frame drifted (-want +got):\n%s", diff)
	}
}

func TestScaleFromEmptyContainer(t *testing.T) {
	child := constrained(object(design.KindText, "child", 10, 10, 20, 20), Scale, FixStartFixSize)
	doc, p := page(child)
	p.Bounds.Size.Width = 0
	l := New(doc, nil)
	l.Layout(geom.Size{Width: 200, Height: 100})

	got := frameOf(t, l, "child")
	for _, v := range []float64{got.Origin.X, got.Origin.Y, got.Size.Width, got.Size.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("frame = %v, want finite", got)
		}
	}
	if diff := cmp.Diff(geom.R(10, 10, 20, 20), got, approx); diff != "" {
		t.Errorf("frame mismatch (-want +got):\n%s", diff)
	}

	empty := constrained(object(design.KindText, "empty", 10, 10, 0, 0), Scale, Scale)
	doc, _ = page(empty)
	l = New(doc, nil)
	l.Layout(geom.Size{Width: 100, Height: 100})
	l.ResizeNodeThenLayout("empty", geom.Size{Width: 30, Height: 20}, false)
	if diff := cmp.Diff(geom.R(10, 10, 30, 20), frameOf(t, l, "empty"), approx); diff != "" {
		t.Errorf("resized empty frame mismatch (-want +got):\n%s", diff)
	}
}

func TestRatiosDoNotDrift(t *testing.T) {
	child := constrained(object(design.KindText, "child", 10, 10, 30, 30), FixStartScale, FixEndScale)
	doc, _ := page(child)
	l := New(doc, nil)
	l.Layout(geom.Size{Width: 100, Height: 100})
	before := frameOf(t, l, "child")

	for i := 0; i < 20; i++ {
		l.Layout(geom.Size{Width: 37 + float64(i), Height: 81 - float64(i)})
	}
	l.Layout(geom.Size{Width: 100, Height: 100})
	if diff := cmp.Diff(before, frameOf(t, l, "child"), approx); diff != "" {
		t.Errorf("frame drifted (-want +got):\n%s", diff)
	}
}

func TestVectorNetworkDescendantsScale(t *testing.T) {
	leaf := object(design.KindPath, "leaf", 10, 10, 20, 20)
	net := object(design.KindGroup, "net", 0, 0, 100, 100)
	net.IsVectorNetwork = true
	net.AppendChild(leaf)
	doc, _ := page(constrained(net, FixStartFixEnd, FixStartFixEnd))

	l := New(doc, nil)
	l.Layout(geom.Size{Width: 100, Height: 100})
	l.Layout(geom.Size{Width: 200, Height: 50})

	if diff := cmp.Diff(geom.R(20, 5, 40, 10), frameOf(t, l, "leaf"), approx); diff != "" {
		t.Errorf("leaf frame mismatch (-want +got):\n%s", diff)
	}
}

func TestBooleanGroupBounds(t *testing.T) {
	tests := []struct {
		name string
		op   design.BooleanOp
		want geom.Size
	}{
		{"union joins", design.BooleanUnion, geom.Size{Width: 70, Height: 70}},
		{"subtraction contributes nothing", design.BooleanSubtraction, geom.Size{Width: 50, Height: 50}},
		{"intersection", design.BooleanIntersection, geom.Size{Width: 10, Height: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := object(design.KindPath, "a", 0, 0, 50, 50)
			b := object(design.KindPath, "b", 40, 40, 30, 30)
			b.BooleanOp = tt.op
			shape := object(design.KindPath, "shape", 10, 10, 70, 70)
			shape.AppendChild(a)
			shape.AppendChild(b)

			doc, p := page(shape)
			skip := int(SkipGroupOrBooleanGroup)
			p.ResizesContent = &skip

			l := New(doc, nil)
			l.Layout(geom.Size{Width: 100, Height: 100})
			l.Layout(geom.Size{Width: 150, Height: 120})

			n := l.FindDescendantNodeByID("shape")
			if diff := cmp.Diff(tt.want, n.Size(), approx); diff != "" {
				t.Errorf("group size mismatch (-want +got):\n%s", diff)
			}
			if got := n.FrameToAncestor(nil).Origin; !got.Equal(geom.Point{X: 10, Y: 10}) && tt.op != design.BooleanIntersection {
				t.Errorf("group origin = %+v, want {10 10}", got)
			}
		})
	}
}

func TestGroupResizedThroughChildren(t *testing.T) {
	a := constrained(object(design.KindText, "a", 0, 0, 20, 20), FixEndFixSize, FixStartFixSize)
	b := object(design.KindText, "b", 30, 0, 20, 20)
	group := object(design.KindGroup, "group", 10, 10, 50, 20)
	group.AppendChild(a)
	group.AppendChild(b)
	doc, p := page(group)
	skip := int(SkipGroupOrBooleanGroup)
	p.ResizesContent = &skip

	l := New(doc, nil)
	l.Layout(geom.Size{Width: 100, Height: 100})
	l.Layout(geom.Size{Width: 200, Height: 100})

	// a keeps its 70px right margin in page space; b stays put
	if diff := cmp.Diff(geom.R(40, 10, 90, 20), l.FindDescendantNodeByID("group").FrameToAncestor(nil), approx); diff != "" {
		t.Errorf("group frame mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.R(110, 10, 20, 20), l.FindDescendantNodeByID("a").FrameToAncestor(nil), approx); diff != "" {
		t.Errorf("a frame mismatch (-want +got):\n%s", diff)
	}
}

func TestContourResize(t *testing.T) {
	contour := design.NewElement(design.KindContour, "")
	contour.Closed = true
	contour.Points = []geom.BezierPoint{
		{Point: geom.Point{X: 0, Y: 0}},
		{Point: geom.Point{X: 20, Y: 0}},
		{Point: geom.Point{X: 20, Y: -20}},
		{Point: geom.Point{X: 0, Y: -20}},
	}
	path := constrained(object(design.KindPath, "path", 10, 10, 20, 20), Scale, FixStartFixSize)
	path.AppendChild(contour)
	doc, _ := page(path)

	l := New(doc, nil)
	if got := l.Root().TreeSize(); got != 3 {
		t.Fatalf("TreeSize = %d, want 3 (contours are not nodes)", got)
	}
	l.Layout(geom.Size{Width: 100, Height: 100})
	l.Layout(geom.Size{Width: 200, Height: 100})

	if diff := cmp.Diff(geom.R(20, 10, 40, 20), frameOf(t, l, "path"), approx); diff != "" {
		t.Errorf("path frame mismatch (-want +got):\n%s", diff)
	}
	want := []geom.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: -20}, {X: 0, Y: -20}}
	var got []geom.Point
	for _, p := range contour.Points {
		got = append(got, p.Point)
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestContourResizeFlat(t *testing.T) {
	contour := design.NewElement(design.KindContour, "")
	contour.Points = []geom.BezierPoint{
		{Point: geom.Point{X: 0, Y: 0}},
		{Point: geom.Point{X: 20, Y: 0}},
	}
	path := constrained(object(design.KindPath, "line", 10, 10, 20, 0), Scale, FixStartFixSize)
	path.AppendChild(contour)
	doc, _ := page(path)

	l := New(doc, nil)
	l.Layout(geom.Size{Width: 100, Height: 100})
	l.Layout(geom.Size{Width: 200, Height: 100})

	if diff := cmp.Diff(geom.R(20, 10, 40, 0), frameOf(t, l, "line"), approx); diff != "" {
		t.Errorf("line frame mismatch (-want +got):\n%s", diff)
	}
	want := []geom.Point{{X: 0, Y: 0}, {X: 40, Y: 0}}
	var got []geom.Point
	for _, p := range contour.Points {
		got = append(got, p.Point)
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestRotationHelpers(t *testing.T) {
	el := object(design.KindText, "r", 0, 0, 40, 10)
	el.Matrix = geom.Make(0, 0, math.Pi/2)
	doc, _ := page(el)
	n := New(doc, nil).FindDescendantNodeByID("r")

	if !n.ShouldSwapWidthAndHeight() {
		t.Fatal("ShouldSwapWidthAndHeight = false for a quarter turn")
	}
	if got := n.SwapWidthAndHeightIfNeeded(geom.Size{Width: 40, Height: 10}); !got.Equal(geom.Size{Width: 10, Height: 40}) {
		t.Errorf("SwapWidthAndHeightIfNeeded = %+v", got)
	}
	if got := n.RotatedSize(geom.Size{Width: 40, Height: 10}); !got.Equal(geom.Size{Width: 10, Height: 40}) {
		t.Errorf("RotatedSize = %+v", got)
	}
}

func TestTreeQueries(t *testing.T) {
	inner := object(design.KindText, "inner", 5, 5, 10, 10)
	box := object(design.KindGroup, "box", 20, 20, 40, 40)
	box.AppendChild(inner)
	other := object(design.KindText, "other", 70, 70, 10, 10)
	doc, _ := page(box, other)
	l := New(doc, nil)

	n := l.FindDescendantNodeByID("inner")
	if got := n.ConvertPointToAncestor(geom.Point{X: 5, Y: 5}, nil); !got.Equal(geom.Point{X: 25, Y: 25}) {
		t.Errorf("ConvertPointToAncestor = %+v", got)
	}
	if hit := l.Root().HitTest(geom.Point{X: 27, Y: 27}); hit == nil || hit.ID() != "inner" {
		t.Errorf("HitTest = %v, want inner", hit)
	}
	if hit := l.Root().HitTest(geom.Point{X: 50, Y: 50}); hit == nil || hit.ID() != "box" {
		t.Errorf("HitTest = %v, want box", hit)
	}
	o := l.FindDescendantNodeByID("other")
	if got := n.ClosestCommonAncestor(o); got == nil || got.ID() != "page" {
		t.Errorf("ClosestCommonAncestor = %v, want page", got)
	}
	if got := l.PageSize(0); !got.Equal(geom.Size{Width: 100, Height: 100}) {
		t.Errorf("PageSize = %+v", got)
	}
	if got := l.NodeFor(box); got == nil || got.ID() != "box" {
		t.Errorf("NodeFor = %v", got)
	}
}

func TestRebuildSubtree(t *testing.T) {
	box := object(design.KindGroup, "box", 0, 0, 50, 50)
	doc, _ := page(box)
	l := New(doc, nil)

	box.AppendChild(object(design.KindText, "late", 1, 1, 5, 5))
	if l.FindDescendantNodeByID("late") != nil {
		t.Fatal("node exists before rebuild")
	}
	if n := l.RebuildSubtree("late"); n == nil || n.Parent().ID() != "box" {
		t.Fatalf("RebuildSubtree = %v", n)
	}
	if l.RebuildSubtree("missing") != nil {
		t.Error("RebuildSubtree of unknown id returned a node")
	}
}

const flexRules = `{"obj": [
  {"id": "page", "layout": {"class": "flexbox_layout", "direction": 1,
    "justify_content": 1, "align_items": 1, "align_content": 1, "wrap": 1,
    "row_gap": 0, "column_gap": 5, "padding": [10, 10, 10, 10]}},
  {"id": "a", "item_in_layout": {"class": "flexbox_item", "position": {"value": 1}, "flex_grow": 0},
   "width": {"value": {"types": 1, "value": 20}}, "height": {"value": {"types": 1, "value": 20}}},
  {"id": "b", "item_in_layout": {"class": "flexbox_item", "position": {"value": 1}, "flex_grow": 1},
   "width": {"value": {"types": 1, "value": 30}}, "height": {"value": {"types": 2, "value": 50}}},
  {"id": "pin", "item_in_layout": {"class": "flexbox_item", "position": {"value": 2},
    "right": {"value": 10}, "top": {"value": 5}},
   "width": {"value": {"types": 1, "value": 8}}, "height": {"value": {"types": 1, "value": 8}}}
]}`

func flexLayout(t *testing.T) (*Layout, *rule.Store) {
	t.Helper()
	rules, err := rule.Parse([]byte(flexRules))
	if err != nil {
		t.Fatalf("rule.Parse: %v", err)
	}
	doc, _ := page(
		object(design.KindText, "a", 0, 0, 1, 1),
		object(design.KindText, "b", 0, 0, 1, 1),
		object(design.KindText, "pin", 0, 0, 1, 1),
	)
	l := New(doc, rules)
	l.Layout(geom.Size{Width: 100, Height: 50})
	return l, rules
}

func TestFlexLayout(t *testing.T) {
	l, _ := flexLayout(t)

	want := map[string]geom.Rect{
		"a":   geom.R(10, 10, 20, 20),
		"b":   geom.R(35, 10, 55, 15),
		"pin": geom.R(82, 5, 8, 8),
	}
	for id, w := range want {
		if diff := cmp.Diff(w, frameOf(t, l, id), approx); diff != "" {
			t.Errorf("%s frame mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestResizeNodeThenLayoutUpdatesRule(t *testing.T) {
	l, rules := flexLayout(t)

	if n := l.ResizeNodeThenLayout("a", geom.Size{Width: 40, Height: 20}, true); n == nil {
		t.Fatal("ResizeNodeThenLayout returned nil")
	}
	if got := rules.Get("a").Width.Value; got != (rule.Length{Types: rule.LengthPx, Value: 40}) {
		t.Errorf("width rule = %+v, want 40px", got)
	}
	if diff := cmp.Diff(geom.R(55, 10, 35, 15), frameOf(t, l, "b"), approx); diff != "" {
		t.Errorf("b frame mismatch (-want +got):\n%s", diff)
	}
	if l.ResizeNodeThenLayout("missing", geom.Size{Width: 1, Height: 1}, true) != nil {
		t.Error("ResizeNodeThenLayout of unknown id returned a node")
	}
}

func TestLayoutNodesAfterVisibilityChange(t *testing.T) {
	l, _ := flexLayout(t)

	l.FindDescendantNodeByID("a").Element().Visible = false
	l.LayoutNodes([]string{"b"}, "page")

	if diff := cmp.Diff(geom.R(10, 10, 80, 15), frameOf(t, l, "b"), approx); diff != "" {
		t.Errorf("b frame mismatch (-want +got):\n%s", diff)
	}
}

func TestGridLayout(t *testing.T) {
	rules, err := rule.Parse([]byte(`{"obj": [
	  {"id": "page", "layout": {"class": "grid_layout",
	    "expand_strategy": {"strategy": 2, "min_row": 1, "column_count": 2},
	    "column_width": {"strategy": 2, "width_value": 40},
	    "row_height": {"strategy": 3, "fixed_value": 30},
	    "column_gap": 10, "row_gap": 10, "padding": [0, 0, 0, 0], "cell_align": 2}},
	  {"id": "c1", "item_in_layout": {"class": "grid_item", "position": {"value": 1}},
	   "width": {"value": {"types": 1, "value": 20}}, "height": {"value": {"types": 1, "value": 20}}},
	  {"id": "c2", "item_in_layout": {"class": "grid_item", "position": {"value": 1}},
	   "width": {"value": {"types": 1, "value": 20}}, "height": {"value": {"types": 1, "value": 20}}},
	  {"id": "c3", "item_in_layout": {"class": "grid_item", "position": {"value": 1}, "column_align": 3},
	   "width": {"value": {"types": 1, "value": 20}}, "height": {"value": {"types": 1, "value": 20}}}
	]}`))
	if err != nil {
		t.Fatalf("rule.Parse: %v", err)
	}
	doc, _ := page(
		object(design.KindText, "c1", 0, 0, 1, 1),
		object(design.KindText, "c2", 0, 0, 1, 1),
		object(design.KindText, "c3", 0, 0, 1, 1),
	)
	l := New(doc, rules)
	l.Layout(geom.Size{Width: 100, Height: 100})

	want := map[string]geom.Rect{
		"c1": geom.R(10, 0, 20, 20),
		"c2": geom.R(60, 0, 20, 20),
		"c3": geom.R(10, 50, 20, 20),
	}
	for id, w := range want {
		if diff := cmp.Diff(w, frameOf(t, l, id), approx); diff != "" {
			t.Errorf("%s frame mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestJustify(t *testing.T) {
	tests := []struct {
		j           rule.Justify
		free        float64
		count       int
		start, step float64
	}{
		{rule.JustifyStart, 30, 3, 0, 5},
		{rule.JustifyCenter, 30, 3, 15, 5},
		{rule.JustifyEnd, 30, 3, 30, 5},
		{rule.JustifySpaceBetween, 30, 3, 0, 20},
		{rule.JustifySpaceBetween, 30, 1, 0, 5},
		{rule.JustifySpaceAround, 30, 3, 5, 15},
		{rule.JustifySpaceEvenly, 30, 3, 7.5, 12.5},
		{rule.JustifySpaceEvenly, -10, 3, 0, 5},
	}
	for _, tt := range tests {
		start, step := justify(tt.j, tt.free, tt.count, 5)
		if start != tt.start || step != tt.step {
			t.Errorf("justify(%d, %v, %d) = (%v, %v), want (%v, %v)", tt.j, tt.free, tt.count, start, step, tt.start, tt.step)
		}
	}
}
