package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/symbolkit/pkg/cache"
	"github.com/matzehuels/symbolkit/pkg/errors"
	"github.com/matzehuels/symbolkit/pkg/geom"
	"github.com/matzehuels/symbolkit/pkg/layout"
)

const buttonDesign = `{
  "frames": [{"class": "frame", "id": "page",
    "bounds": {"x": 0, "y": 0, "width": 200, "height": 100}, "matrix": [1, 0, 0, 1, 0, 0],
    "childObjects": [{"class": "symbolInstance", "id": "ok", "masterId": "button",
      "bounds": {"x": 0, "y": 0, "width": 60, "height": 20}, "matrix": [1, 0, 0, 1, 10, -10],
      "overrideValues": [{"class": "overrideValue", "objectId": ["label"],
        "overrideName": "content", "overrideValue": "Save"}]}]}],
  "references": [{"class": "symbolMaster", "id": "button",
    "bounds": {"x": 0, "y": 0, "width": 60, "height": 20}, "matrix": [1, 0, 0, 1, 0, 0],
    "childObjects": [{"class": "text", "id": "label", "content": "OK",
      "bounds": {"x": 0, "y": 0, "width": 40, "height": 10}, "matrix": [1, 0, 0, 1, 10, -5]}]}]
}`

func testInput() Input {
	return Input{Design: []byte(buttonDesign)}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"SVG", false},
		{"png", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateForLayout(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero keeps page size", Options{}, false},
		{"explicit", Options{Width: 800, Height: 600}, false},
		{"width only", Options{Width: 800}, false},
		{"negative", Options{Width: -1, Height: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateForLayout() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.opts.Logger == nil {
				t.Error("ValidateForLayout should default the logger")
			}
		})
	}
}

func TestValidateForResize(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid", Options{Node: "ok", Width: 10, Height: 10}, false},
		{"missing node", Options{Width: 10, Height: 10}, true},
		{"zero size", Options{Node: "ok"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateForResize(); (err != nil) != tt.wantErr {
				t.Errorf("ValidateForResize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetRenderDefaults(t *testing.T) {
	var o Options
	o.SetRenderDefaults()
	if o.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", o.Format, DefaultFormat)
	}
	o = Options{Format: "SVG"}
	if err := o.ValidateForRender(); err != nil || o.Format != "svg" {
		t.Errorf("ValidateForRender() = %v, format %q", err, o.Format)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	plain := (&Options{Format: "svg"}).ArtifactKeyOpts()
	framed := (&Options{Format: "svg", Frames: true}).ArtifactKeyOpts()
	if plain == framed {
		t.Error("frame labels should change the artifact key")
	}
}

func TestExpandCaches(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	first, err := r.Expand(ctx, testInput(), Options{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if first.CacheInfo.ExpandHit {
		t.Error("first run should miss the cache")
	}
	if first.Stats.Expand.InstancesExpanded != 1 {
		t.Errorf("InstancesExpanded = %d, want 1", first.Stats.Expand.InstancesExpanded)
	}
	if first.Document.Find("ok__label") == nil {
		t.Error("expanded document should contain ok__label")
	}

	second, err := r.Expand(ctx, testInput(), Options{})
	if err != nil {
		t.Fatalf("second Expand: %v", err)
	}
	if !second.CacheInfo.ExpandHit {
		t.Error("second run should hit the cache")
	}
	if diff := cmp.Diff(first.Stats.Expand, second.Stats.Expand); diff != "" {
		t.Errorf("cached stats mismatch (-first +second):\n%s", diff)
	}
	if second.Stats.Elements != first.Stats.Elements {
		t.Errorf("Elements = %d, want %d", second.Stats.Elements, first.Stats.Elements)
	}
	if second.InputHash != first.InputHash {
		t.Error("InputHash should be stable")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(buttonDesign)); err != nil {
		t.Fatal(err)
	}
	reformatted, err := r.Expand(ctx, Input{Design: compact.Bytes()}, Options{})
	if err != nil {
		t.Fatalf("reformatted Expand: %v", err)
	}
	if !reformatted.CacheInfo.ExpandHit || reformatted.InputHash != first.InputHash {
		t.Error("a reformatted design should hit the same cache entry")
	}

	refreshed, err := r.Expand(ctx, testInput(), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Expand: %v", err)
	}
	if refreshed.CacheInfo.ExpandHit {
		t.Error("Refresh should skip the cache")
	}
}

func TestExpandErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	tests := []struct {
		name string
		in   Input
		want errors.Code
	}{
		{"empty", Input{}, errors.ErrCodeInvalidInput},
		{"bad design", Input{Design: []byte("{")}, errors.ErrCodeInvalidDocument},
		{"bad rules", Input{Design: []byte(buttonDesign), Rules: []byte("[")}, errors.ErrCodeInvalidRules},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Expand(ctx, tt.in, Options{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expand() error = %v, want code %s", err, tt.want)
			}
		})
	}
}

func frameByID(t *testing.T, frames []layout.FrameEntry, id string) geom.Rect {
	t.Helper()
	for _, f := range frames {
		if f.ID == id {
			return f.Frame
		}
	}
	t.Fatalf("no frame for %q", id)
	return geom.Rect{}
}

func TestLayout(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	res, err := r.Layout(ctx, testInput(), Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if res.Stats.Nodes != len(res.Frames) || len(res.Frames) != 3 {
		t.Fatalf("got %d frames, Nodes %d; want 3", len(res.Frames), res.Stats.Nodes)
	}
	approx := cmpopts.EquateApprox(0, 1e-6)
	if diff := cmp.Diff(geom.R(0, 0, 200, 100), frameByID(t, res.Frames, "page"), approx); diff != "" {
		t.Errorf("page frame (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.R(10, 10, 60, 20), frameByID(t, res.Frames, "ok"), approx); diff != "" {
		t.Errorf("ok frame (-want +got):\n%s", diff)
	}

	again, err := r.Layout(ctx, testInput(), Options{})
	if err != nil {
		t.Fatalf("second Layout: %v", err)
	}
	if !again.CacheInfo.LayoutHit {
		t.Error("second layout should hit the cache")
	}
	if diff := cmp.Diff(res.Frames, again.Frames); diff != "" {
		t.Errorf("cached frames mismatch (-first +second):\n%s", diff)
	}

	wide, err := r.Layout(ctx, testInput(), Options{Width: 400})
	if err != nil {
		t.Fatalf("wide Layout: %v", err)
	}
	if wide.CacheInfo.LayoutHit {
		t.Error("a different viewport should miss the cache")
	}
	if got := frameByID(t, wide.Frames, "page"); got.Size.Width != 400 || got.Size.Height != 100 {
		t.Errorf("page size = %v, want 400x100", got.Size)
	}
}

const scaledButtonDesign = `{
  "frames": [{"class": "frame", "id": "page",
    "bounds": {"x": 0, "y": 0, "width": 300, "height": 100}, "matrix": [1, 0, 0, 1, 0, 0],
    "childObjects": [{"class": "symbolInstance", "id": "wide", "masterId": "button",
      "horizontalConstraint": 5,
      "bounds": {"x": 0, "y": 0, "width": 120, "height": 20}, "matrix": [1, 0, 0, 1, 0, 0],
      "overrideValues": [{"class": "overrideValue", "objectId": ["label"],
        "overrideName": "bounds.width", "overrideValue": 20}]}]}],
  "references": [{"class": "symbolMaster", "id": "button",
    "bounds": {"x": 0, "y": 0, "width": 60, "height": 20}, "matrix": [1, 0, 0, 1, 0, 0],
    "childObjects": [{"class": "text", "id": "label", "horizontalConstraint": 2,
      "bounds": {"x": 0, "y": 0, "width": 40, "height": 10}, "matrix": [1, 0, 0, 1, 10, -5]}]}]
}`

func TestLayoutSameWithCachedExpansion(t *testing.T) {
	ctx := context.Background()
	in := Input{Design: []byte(scaledButtonDesign)}
	opts := Options{Width: 400}

	fresh, err := NewRunner(nil, nil, nil).Layout(ctx, in, opts)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if fresh.CacheInfo.ExpandHit {
		t.Fatal("runner without cache reported an expand hit")
	}

	r := newTestRunner(t)
	if _, err := r.Expand(ctx, in, opts); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	cached, err := r.Layout(ctx, in, opts)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if !cached.CacheInfo.ExpandHit || cached.CacheInfo.LayoutHit {
		t.Fatalf("cache info = %+v, want an expand hit and a layout miss", cached.CacheInfo)
	}

	approx := cmpopts.EquateApprox(0, 1e-6)
	if diff := cmp.Diff(fresh.Frames, cached.Frames, approx); diff != "" {
		t.Errorf("frames differ with a cached expansion (-fresh +cached):\n%s", diff)
	}
	if diff := cmp.Diff(geom.R(10, 5, 300.0/11, 10), frameByID(t, fresh.Frames, "wide__label"), approx); diff != "" {
		t.Errorf("label frame (-want +got):\n%s", diff)
	}
}

func TestResize(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	res, err := r.Resize(ctx, testInput(), Options{Node: "ok", Width: 120, Height: 20})
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if got := frameByID(t, res.Frames, "ok"); got.Size.Width != 120 {
		t.Errorf("ok width = %g, want 120", got.Size.Width)
	}
	if el := res.Document.Find("ok"); el == nil || el.Bounds.Size.Width != 120 {
		t.Error("resize should write the new size to the document")
	}

	_, err = r.Resize(ctx, testInput(), Options{Node: "nope", Width: 1, Height: 1})
	if !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("Resize(nope) error = %v, want NODE_NOT_FOUND", err)
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	res, err := r.Render(ctx, testInput(), Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	src := string(res.Artifact)
	if !strings.HasPrefix(src, "digraph layout {") || !strings.Contains(src, `ok__label\ntext`) {
		t.Errorf("unexpected DOT:\n%s", src)
	}

	again, err := r.Render(ctx, testInput(), Options{})
	if err != nil {
		t.Fatalf("second Render: %v", err)
	}
	if !again.CacheInfo.RenderHit || string(again.Artifact) != src {
		t.Error("second render should come from the cache")
	}

	if _, err := r.Render(ctx, testInput(), Options{Format: "png"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(png) error = %v, want INVALID_FORMAT", err)
	}
}
