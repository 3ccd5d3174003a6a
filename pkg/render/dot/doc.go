// Package dot draws a layout tree as a Graphviz graph.
//
// Each layout node becomes a box labelled with its id and class; edges run
// from parent to child. Hidden nodes are dashed and auto-layout containers
// are shaded, which makes it easy to see which parts of an expanded symbol
// are driven by flex or grid rules.
//
//	src := dot.ToDOT(res.Layout.Root(), dot.Options{Frames: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// SVG rendering runs Graphviz in-process through
// [github.com/goccy/go-graphviz]; no external binary is needed.
package dot
