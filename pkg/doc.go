// Package pkg provides the core libraries of symbolkit.
//
// # Overview
//
// Symbolkit takes a design document whose pages place symbol instances,
// expands every instance into a self-contained copy of its master with the
// instance's overrides applied, and resizes the result with constraint and
// auto-layout rules. The pkg directory is organized in three areas:
//
//  1. Core: [geom], [design], [rule], [valuepath], [layout], [expand]
//  2. Orchestration: [pipeline] (expand → layout → render, cached)
//  3. Infrastructure: [cache], [server], [render/dot], [io], [errors],
//     [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	design.json + rules.json
//	         ↓
//	[design.Parse], [rule.Parse]
//	         ↓
//	[expand.Expander] ──── overrides, variables, master swaps
//	         ↓
//	[layout.Layout] ─────── constraints, flex and grid containers
//	         ↓
//	expanded document, rules, frames, Graphviz tree
//
// Every stage below [pipeline] is synchronous and single-threaded. The
// pipeline and the HTTP server build one expander per request.
//
// [geom]: github.com/matzehuels/symbolkit/pkg/geom
// [design]: github.com/matzehuels/symbolkit/pkg/design
// [rule]: github.com/matzehuels/symbolkit/pkg/rule
// [valuepath]: github.com/matzehuels/symbolkit/pkg/valuepath
// [layout]: github.com/matzehuels/symbolkit/pkg/layout
// [expand]: github.com/matzehuels/symbolkit/pkg/expand
// [pipeline]: github.com/matzehuels/symbolkit/pkg/pipeline
// [cache]: github.com/matzehuels/symbolkit/pkg/cache
// [server]: github.com/matzehuels/symbolkit/pkg/server
// [render/dot]: github.com/matzehuels/symbolkit/pkg/render/dot
// [io]: github.com/matzehuels/symbolkit/pkg/io
// [errors]: github.com/matzehuels/symbolkit/pkg/errors
// [observability]: github.com/matzehuels/symbolkit/pkg/observability
// [buildinfo]: github.com/matzehuels/symbolkit/pkg/buildinfo
// [design.Parse]: github.com/matzehuels/symbolkit/pkg/design.Parse
// [rule.Parse]: github.com/matzehuels/symbolkit/pkg/rule.Parse
// [expand.Expander]: github.com/matzehuels/symbolkit/pkg/expand.Expander
// [layout.Layout]: github.com/matzehuels/symbolkit/pkg/layout.Layout
package pkg
