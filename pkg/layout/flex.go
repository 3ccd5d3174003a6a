package layout

import (
	"github.com/matzehuels/symbolkit/pkg/geom"
	"github.com/matzehuels/symbolkit/pkg/rule"
)

// axis maps a flex direction onto main and cross components of sizes and
// points.
type axis struct{ vertical bool }

func (a axis) main(s geom.Size) float64 {
	if a.vertical {
		return s.Height
	}
	return s.Width
}

func (a axis) cross(s geom.Size) float64 {
	if a.vertical {
		return s.Width
	}
	return s.Height
}

func (a axis) rect(mainPos, crossPos, mainLen, crossLen float64) geom.Rect {
	if a.vertical {
		return geom.R(crossPos, mainPos, crossLen, mainLen)
	}
	return geom.R(mainPos, crossPos, mainLen, crossLen)
}

// gaps returns the gap between items of a line and between lines.
func (a axis) gaps(f *rule.FlexLayout) (item, line float64) {
	if a.vertical {
		return f.RowGap, f.ColumnGap
	}
	return f.ColumnGap, f.RowGap
}

func (a axis) padding(p rule.Padding) (mainStart, mainEnd, crossStart, crossEnd float64) {
	if a.vertical {
		return p.Top, p.Bottom, p.Left, p.Right
	}
	return p.Left, p.Right, p.Top, p.Bottom
}

type flexItem struct {
	index       int
	node        *Node
	grow        float64
	main, cross float64
}

type flexLine struct {
	items []*flexItem
	main  float64 // items plus gaps
	cross float64
}

func innerSize(size geom.Size, p rule.Padding) geom.Size {
	return geom.Size{
		Width:  size.Width - p.Left - p.Right,
		Height: size.Height - p.Top - p.Bottom,
	}
}

// flexLines sizes the in-flow items and breaks them into lines. A
// non-positive mainLimit never breaks.
func flexLines(f *rule.FlexLayout, inner geom.Size, nodes []*Node, indices []int) []*flexLine {
	ax := axis{vertical: f.Direction == rule.DirectionVertical}
	itemGap, _ := ax.gaps(f)
	limit := ax.main(inner)
	wrap := f.Wrap == rule.WrapWrap && limit > 0

	var lines []*flexLine
	cur := &flexLine{}
	for i, n := range nodes {
		pref := n.preferredSize(inner)
		it := &flexItem{node: n, main: ax.main(pref), cross: ax.cross(pref)}
		if indices != nil {
			it.index = indices[i]
		}
		if r := n.auto.configured(); r != nil && r.FlexItem != nil {
			it.grow = r.FlexItem.FlexGrow
		}

		next := cur.main + it.main
		if len(cur.items) > 0 {
			next += itemGap
		}
		if wrap && len(cur.items) > 0 && next > limit+geom.Epsilon {
			lines = append(lines, cur)
			cur = &flexLine{}
			next = it.main
		}
		cur.items = append(cur.items, it)
		cur.main = next
		cur.cross = max(cur.cross, it.cross)
	}
	if len(cur.items) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// flexContentSize is the size a flex container needs for its in-flow items,
// padding included.
func flexContentSize(f *rule.FlexLayout, avail geom.Size, nodes []*Node) geom.Size {
	ax := axis{vertical: f.Direction == rule.DirectionVertical}
	_, lineGap := ax.gaps(f)
	ms, me, cs, ce := ax.padding(f.Padding)

	lines := flexLines(f, innerSize(avail, f.Padding), nodes, nil)
	var mainLen, crossLen float64
	for i, l := range lines {
		mainLen = max(mainLen, l.main)
		crossLen += l.cross
		if i > 0 {
			crossLen += lineGap
		}
	}
	r := ax.rect(0, 0, mainLen+ms+me, crossLen+cs+ce)
	return r.Size
}

// solveFlex returns the frames of nodes inside a flex container of the given
// size, in the order of nodes.
func solveFlex(f *rule.FlexLayout, size geom.Size, nodes []*Node) []geom.Rect {
	ax := axis{vertical: f.Direction == rule.DirectionVertical}
	itemGap, lineGap := ax.gaps(f)
	ms, _, cs, _ := ax.padding(f.Padding)
	inner := innerSize(size, f.Padding)
	innerMain, innerCross := ax.main(inner), ax.cross(inner)

	frames := make([]geom.Rect, len(nodes))
	var flow []*Node
	var indices []int
	for i, n := range nodes {
		if n.auto.IsAbsolutePosition() {
			frames[i] = absoluteFrame(n, size, f.Padding)
			continue
		}
		flow = append(flow, n)
		indices = append(indices, i)
	}

	lines := flexLines(f, inner, flow, indices)
	if len(lines) == 1 && f.Wrap != rule.WrapWrap {
		lines[0].cross = max(lines[0].cross, innerCross)
	}

	var total float64
	for i, l := range lines {
		total += l.cross
		if i > 0 {
			total += lineGap
		}
	}
	crossPos := cs + alignOffset(f.AlignContent, innerCross-total)

	for _, l := range lines {
		free := innerMain - l.main
		if free > 0 {
			var grow float64
			for _, it := range l.items {
				grow += it.grow
			}
			if grow > 0 {
				for _, it := range l.items {
					it.main += free * it.grow / grow
				}
				free = 0
			}
		}

		start, between := justify(f.JustifyContent, free, len(l.items), itemGap)
		mainPos := ms + start
		for _, it := range l.items {
			y := crossPos + alignOffset(f.AlignItems, l.cross-it.cross)
			frames[it.index] = ax.rect(mainPos, y, clampLength(it.main), clampLength(it.cross))
			mainPos += it.main + between
		}
		crossPos += l.cross + lineGap
	}
	return frames
}

// justify returns the offset of the first item and the distance between
// items for the free space left on a line.
func justify(j rule.Justify, free float64, count int, gap float64) (start, between float64) {
	if count == 0 {
		return 0, gap
	}
	if free < 0 {
		switch j {
		case rule.JustifySpaceBetween, rule.JustifySpaceAround, rule.JustifySpaceEvenly:
			return 0, gap
		case rule.JustifyStart, rule.JustifyCenter, rule.JustifyEnd:
		}
	}
	k := float64(count)
	switch j {
	case rule.JustifyCenter:
		return free / 2, gap
	case rule.JustifyEnd:
		return free, gap
	case rule.JustifySpaceBetween:
		if count == 1 {
			return 0, gap
		}
		return 0, gap + free/(k-1)
	case rule.JustifySpaceAround:
		return free / k / 2, gap + free/k
	case rule.JustifySpaceEvenly:
		return free / (k + 1), gap + free/(k+1)
	case rule.JustifyStart:
	}
	return 0, gap
}

// alignOffset places a length inside free extra space.
func alignOffset(a rule.Align, free float64) float64 {
	switch a {
	case rule.AlignCenter:
		return free / 2
	case rule.AlignEnd:
		return free
	case rule.AlignStart:
	}
	return 0
}
