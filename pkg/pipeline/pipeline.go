// Package pipeline runs the expand → layout → render stages shared by the
// CLI and the HTTP server.
//
// Both entry points hand the raw design and rule JSON to a [Runner]; the
// runner parses it, expands every symbol instance, and optionally lays the
// result out for a viewport, resizes one node, or draws the layout tree.
// Every stage except resize is cached under a key derived from the input
// bytes and the options that affect it.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	res, err := runner.Layout(ctx, pipeline.Input{Design: data}, pipeline.Options{
//	    Width:  1280,
//	    Height: 720,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, f := range res.Frames {
//	    fmt.Println(f.ID, f.Frame)
//	}
package pipeline

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/symbolkit/pkg/cache"
	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/errors"
	"github.com/matzehuels/symbolkit/pkg/expand"
	"github.com/matzehuels/symbolkit/pkg/layout"
	"github.com/matzehuels/symbolkit/pkg/render/dot"
	"github.com/matzehuels/symbolkit/pkg/rule"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultFormat is the render format used when none is given.
const DefaultFormat = dot.FormatDOT

// ValidFormats is the set of supported render formats.
var ValidFormats = []string{dot.FormatDOT, dot.FormatSVG}

// =============================================================================
// Input / Options
// =============================================================================

// Input is the raw JSON a run starts from. Rules may be empty.
type Input struct {
	Design []byte
	Rules  []byte
}

// Options contains the configuration of one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options. A zero width or height keeps the first page's size
	// on that axis.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Resize options
	Node       string `json:"node,omitempty"`
	KeepOrigin bool   `json:"keep_origin,omitempty"`

	// Render options
	Format string `json:"format,omitempty"`
	Frames bool   `json:"frames,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run. Fields a stage does not
// produce are left zero.
type Result struct {
	Document *design.Document
	Rules    *rule.Store

	// Layout is the live tree of Document. It is nil when the expansion
	// came from the cache and no later stage needed the tree.
	Layout *layout.Layout

	// InputHash identifies the design and rule bytes the run started from.
	InputHash string

	Frames   []layout.FrameEntry
	Artifact []byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Expand     expand.Stats  `json:"expand"`
	Elements   int           `json:"elements"`
	Nodes      int           `json:"nodes,omitempty"`
	ExpandTime time.Duration `json:"expand_time"`
	LayoutTime time.Duration `json:"layout_time,omitempty"`
	RenderTime time.Duration `json:"render_time,omitempty"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ExpandHit bool `json:"expand_hit"`
	LayoutHit bool `json:"layout_hit"`
	RenderHit bool `json:"render_hit"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateInput checks that a design was supplied.
func ValidateInput(in Input) error {
	if len(in.Design) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "design is required")
	}
	return nil
}

// ValidateFormat checks that a render format is supported.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats...)
}

// ValidateForLayout checks the viewport. Zero means "keep the page size"
// and is allowed.
func (o *Options) ValidateForLayout() error {
	for _, v := range []float64{o.Width, o.Height} {
		if v == 0 {
			continue
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "invalid viewport size %gx%g", o.Width, o.Height)
		}
	}
	o.SetDefaults()
	return nil
}

// ValidateForResize checks the target node and its new size.
func (o *Options) ValidateForResize() error {
	if err := errors.ValidateNodeID(o.Node); err != nil {
		return err
	}
	if err := errors.ValidateSize(o.Width, o.Height); err != nil {
		return err
	}
	o.SetDefaults()
	return nil
}

// ValidateForRender checks the format, defaulting it first.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormat(o.Format)
}

// SetDefaults fills runtime defaults.
func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	o.Format = strings.ToLower(o.Format)
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	o.SetDefaults()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:      o.Width,
		Height:     o.Height,
		Node:       o.Node,
		KeepOrigin: o.KeepOrigin,
	}
}

// ArtifactKeyOpts returns cache key options for rendering.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	format := o.Format
	if o.Frames {
		format += "+frames"
	}
	return cache.ArtifactKeyOpts{Format: format}
}
