package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/symbolkit/pkg/layout"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// Options configures DOT generation.
type Options struct {
	// Frames adds each node's frame in root space to its label.
	Frames bool
}

// ToDOT converts the tree under root to Graphviz DOT source. Nodes are named
// n0, n1, ... in depth-first pre-order so the output is stable for a given
// tree.
func ToDOT(root *layout.Node, opts Options) string {
	var nodes, edges bytes.Buffer
	next := 0
	var walk func(n *layout.Node) string
	walk = func(n *layout.Node) string {
		name := "n" + strconv.Itoa(next)
		next++
		fmt.Fprintf(&nodes, "  %s [%s];\n", name, strings.Join(fmtAttrs(n, opts), ", "))
		for _, c := range n.Children() {
			child := walk(c)
			fmt.Fprintf(&edges, "  %s -> %s;\n", name, child)
		}
		return name
	}
	if root != nil {
		walk(root)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph layout {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("\n")
	buf.Write(nodes.Bytes())
	if edges.Len() > 0 {
		buf.WriteString("\n")
		buf.Write(edges.Bytes())
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *layout.Node, opts Options) string {
	el := n.Element()
	if el == nil {
		return "root"
	}
	label := el.Kind.String()
	if id := n.ID(); id != "" {
		label = id + "\n" + label
	}
	if a := n.AutoLayout(); a.IsContainer() {
		if r := a.Rule(); r != nil && r.Grid != nil {
			label += " (grid)"
		} else {
			label += " (flex)"
		}
	}
	if opts.Frames {
		f := n.FrameToAncestor(nil)
		label += fmt.Sprintf("\n%g,%g %gx%g", f.Origin.X, f.Origin.Y, f.Size.Width, f.Size.Height)
	}
	return label
}

func fmtAttrs(n *layout.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts))}
	switch {
	case !n.IsVisible():
		attrs = append(attrs, "style=\"rounded,dashed\"", "fontcolor=gray40")
	case n.AutoLayout().IsContainer():
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render produces the tree in the given format.
func Render(ctx context.Context, root *layout.Node, format string, opts Options) ([]byte, error) {
	src := ToDOT(root, opts)
	switch format {
	case "", FormatDOT:
		return []byte(src), nil
	case FormatSVG:
		return RenderSVG(ctx, src)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with one whose
// viewBox starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
