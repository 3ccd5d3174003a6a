package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/symbolkit/pkg/cache"
	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/errors"
	"github.com/matzehuels/symbolkit/pkg/expand"
	"github.com/matzehuels/symbolkit/pkg/geom"
	"github.com/matzehuels/symbolkit/pkg/layout"
	"github.com/matzehuels/symbolkit/pkg/observability"
	"github.com/matzehuels/symbolkit/pkg/render/dot"
	"github.com/matzehuels/symbolkit/pkg/rule"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner keeps no per-run state; every call builds its own document,
// expander and layout tree. Multiple goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// expandEntry is the cached form of an expansion.
type expandEntry struct {
	Design json.RawMessage `json:"design"`
	Rules  json.RawMessage `json:"rules"`
	Stats  expand.Stats    `json:"stats"`
}

// Expand parses the input and expands every symbol instance.
func (r *Runner) Expand(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	r.applyLogger(&opts)

	designHash := cache.HashJSON(in.Design)
	rulesHash := cache.HashJSON(in.Rules)
	key := r.Keyer.ExpandKey(designHash, rulesHash)
	res := &Result{InputHash: cache.InputHash(designHash, rulesHash)}

	if data, hit := r.load(ctx, "expand", key, opts.Refresh); hit {
		if err := res.decodeExpansion(data); err == nil {
			res.CacheInfo.ExpandHit = true
			res.Stats.Elements = countElements(res.Document)
			opts.Logger.Debug("expansion from cache", "key", key)
			return res, nil
		}
		opts.Logger.Warn("discarding unreadable cache entry", "key", key)
	}

	doc, err := design.Parse(in.Design)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse design")
	}
	rules := rule.NewStore()
	if len(in.Rules) > 0 {
		if rules, err = rule.Parse(in.Rules); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRules, err, "parse rules")
		}
	}

	start := time.Now()
	elements := countElements(doc)
	observability.Pipeline().OnExpandStart(ctx, elements)
	out, err := expand.New(doc, rules, expand.WithLogger(opts.Logger)).Run()
	res.Stats.ExpandTime = time.Since(start)
	observability.Pipeline().OnExpandComplete(ctx, out.Stats.InstancesExpanded, res.Stats.ExpandTime, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "expand")
	}

	res.Document = out.Document
	res.Rules = out.Rules
	res.Layout = out.Layout
	res.Stats.Expand = out.Stats
	res.Stats.Elements = countElements(out.Document)

	opts.Logger.Info("expanded design",
		"instances", out.Stats.InstancesExpanded,
		"overrides", out.Stats.OverridesApplied,
		"elements", res.Stats.Elements,
		"duration", res.Stats.ExpandTime)

	if data, err := res.encodeExpansion(); err == nil {
		r.store(ctx, "expand", key, data, r.ttl(cache.TTLExpand))
	}
	return res, nil
}

// Layout expands the input and lays it out for the viewport in opts.
func (r *Runner) Layout(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	res, err := r.Expand(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	key := r.Keyer.LayoutKey(res.InputHash, opts.LayoutKeyOpts())
	if data, hit := r.load(ctx, "layout", key, opts.Refresh); hit {
		var frames []layout.FrameEntry
		if err := json.Unmarshal(data, &frames); err == nil {
			res.Frames = frames
			res.Stats.Nodes = len(frames)
			res.CacheInfo.LayoutHit = true
			return res, nil
		}
	}

	l := r.ensureLayout(res, opts)
	size, err := viewport(l, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, size.Width, size.Height)
	l.Layout(size)
	res.Frames = l.Frames()
	res.Stats.Nodes = len(res.Frames)
	res.Stats.LayoutTime = time.Since(start)
	observability.Pipeline().OnLayoutComplete(ctx, res.Stats.Nodes, res.Stats.LayoutTime, nil)

	opts.Logger.Info("computed layout",
		"width", size.Width,
		"height", size.Height,
		"nodes", res.Stats.Nodes,
		"duration", res.Stats.LayoutTime)

	if data, err := json.Marshal(res.Frames); err == nil {
		r.store(ctx, "layout", key, data, r.ttl(cache.TTLLayout))
	}
	return res, nil
}

// Resize expands the input, resizes opts.Node to opts.Width × opts.Height
// and lays out what depends on it. The updated document and rules are in
// the result. Resizes are not cached.
func (r *Runner) Resize(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := opts.ValidateForResize(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	res, err := r.Expand(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	l := r.ensureLayout(res, opts)
	size := geom.Size{Width: opts.Width, Height: opts.Height}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, size.Width, size.Height)
	n := l.ResizeNodeThenLayout(opts.Node, size, opts.KeepOrigin)
	if n == nil {
		err := errors.New(errors.ErrCodeNodeNotFound, "no node with id %q", opts.Node)
		observability.Pipeline().OnLayoutComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}
	res.Frames = l.Frames()
	res.Stats.Nodes = len(res.Frames)
	res.Stats.LayoutTime = time.Since(start)
	observability.Pipeline().OnLayoutComplete(ctx, res.Stats.Nodes, res.Stats.LayoutTime, nil)

	opts.Logger.Info("resized node",
		"id", opts.Node,
		"frame", n.Frame(),
		"duration", res.Stats.LayoutTime)
	return res, nil
}

// Render expands the input and draws its layout tree in opts.Format.
func (r *Runner) Render(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	res, err := r.Expand(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	key := r.Keyer.ArtifactKey(res.InputHash, opts.ArtifactKeyOpts())
	if data, hit := r.load(ctx, "artifact", key, opts.Refresh); hit {
		res.Artifact = data
		res.CacheInfo.RenderHit = true
		return res, nil
	}

	l := r.ensureLayout(res, opts)

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Format)
	data, err := dot.Render(ctx, l.Root(), opts.Format, dot.Options{Frames: opts.Frames})
	res.Stats.RenderTime = time.Since(start)
	observability.Pipeline().OnRenderComplete(ctx, opts.Format, len(data), res.Stats.RenderTime, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", opts.Format)
	}
	res.Artifact = data

	opts.Logger.Info("rendered layout tree",
		"format", opts.Format,
		"bytes", len(data),
		"duration", res.Stats.RenderTime)

	r.store(ctx, "artifact", key, data, r.ttl(cache.TTLArtifact))
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// load reads key unless refresh is set. Backend errors count as misses.
func (r *Runner) load(ctx context.Context, keyType, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// ensureLayout returns the live tree of res, building it when the expansion
// came from the cache.
func (r *Runner) ensureLayout(res *Result, opts Options) *layout.Layout {
	if res.Layout == nil {
		res.Layout = layout.New(res.Document, res.Rules, layout.WithLogger(opts.Logger))
	}
	return res.Layout
}

// viewport returns the size to lay out at: opts where set, the first
// page's size otherwise.
func viewport(l *layout.Layout, opts Options) (geom.Size, error) {
	size := l.PageSize(0)
	if len(l.Document().Frames) == 0 {
		if opts.Width == 0 || opts.Height == 0 {
			return geom.Size{}, errors.New(errors.ErrCodeInvalidDocument, "design has no pages")
		}
	}
	if opts.Width > 0 {
		size.Width = opts.Width
	}
	if opts.Height > 0 {
		size.Height = opts.Height
	}
	return size, nil
}

func (res *Result) encodeExpansion() ([]byte, error) {
	d, err := json.Marshal(res.Document)
	if err != nil {
		return nil, err
	}
	rl, err := json.Marshal(res.Rules)
	if err != nil {
		return nil, err
	}
	return json.Marshal(expandEntry{Design: d, Rules: rl, Stats: res.Stats.Expand})
}

func (res *Result) decodeExpansion(data []byte) error {
	var e expandEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	doc, err := design.Parse(e.Design)
	if err != nil {
		return err
	}
	rules, err := rule.Parse(e.Rules)
	if err != nil {
		return err
	}
	res.Document = doc
	res.Rules = rules
	res.Stats.Expand = e.Stats
	return nil
}

func countElements(doc *design.Document) int {
	n := 0
	doc.Walk(func(*design.Element) bool {
		n++
		return true
	})
	return n
}
