package layout

import (
	"math"

	"github.com/matzehuels/symbolkit/pkg/geom"
	"github.com/matzehuels/symbolkit/pkg/rule"
)

type gridCell struct {
	row, col         int
	rowSpan, colSpan int
}

type gridPlan struct {
	columns  int
	rows     int
	colWidth float64
	cells    []gridCell // per in-flow item
}

// gridColumns returns the column count and width for a grid whose inner
// width is width.
func gridColumns(g *rule.GridLayout, width float64) (int, float64) {
	cw := g.ColumnWidth.WidthValue
	cols := 1
	if g.ExpandStrategy.Strategy == rule.ExpandFixedColumn {
		cols = max(1, g.ExpandStrategy.ColumnCount)
	} else if cw+g.ColumnGap > 0 {
		cols = max(1, int(math.Floor((width+g.ColumnGap)/(cw+g.ColumnGap))))
	}
	if g.ColumnWidth.Strategy != rule.ColumnWidthFixed {
		fill := (width - g.ColumnGap*float64(cols-1)) / float64(cols)
		cw = max(cw, fill)
	}
	return cols, cw
}

func gridItemOf(n *Node) *rule.GridItem {
	if r := n.auto.configured(); r != nil {
		return r.GridItem
	}
	return nil
}

// planGrid places the in-flow items into cells. Pinned items take their
// cell first; the others fill the free cells row by row.
func planGrid(g *rule.GridLayout, width float64, nodes []*Node) gridPlan {
	cols, cw := gridColumns(g, width)
	plan := gridPlan{columns: cols, colWidth: cw, cells: make([]gridCell, len(nodes))}

	taken := map[[2]int]bool{}
	occupy := func(c gridCell) {
		for r := c.row; r < c.row+c.rowSpan; r++ {
			for k := c.col; k < c.col+c.colSpan; k++ {
				taken[[2]int{r, k}] = true
			}
		}
		plan.rows = max(plan.rows, c.row+c.rowSpan)
	}
	fits := func(c gridCell) bool {
		if c.col+c.colSpan > cols {
			return false
		}
		for r := c.row; r < c.row+c.rowSpan; r++ {
			for k := c.col; k < c.col+c.colSpan; k++ {
				if taken[[2]int{r, k}] {
					return false
				}
			}
		}
		return true
	}

	pinned := make([]bool, len(nodes))
	for i, n := range nodes {
		c := gridCell{rowSpan: 1, colSpan: 1}
		if it := gridItemOf(n); it != nil {
			c.rowSpan = max(1, it.RowSpan)
			c.colSpan = min(max(1, it.ColumnSpan), cols)
			if it.ItemPos.Strategy == 2 {
				c.row, c.col = max(0, it.ItemPos.RowID), min(max(0, it.ItemPos.ColumnID), cols-1)
				c.colSpan = min(c.colSpan, cols-c.col)
				pinned[i] = true
				occupy(c)
			}
		}
		plan.cells[i] = c
	}

	row, col := 0, 0
	for i := range nodes {
		if pinned[i] {
			continue
		}
		c := plan.cells[i]
		for {
			c.row, c.col = row, col
			if fits(c) {
				break
			}
			col++
			if col >= cols {
				col, row = 0, row+1
			}
		}
		occupy(c)
		plan.cells[i] = c
		col += c.colSpan
		if col >= cols {
			col, row = 0, row+1
		}
	}
	plan.rows = max(plan.rows, g.ExpandStrategy.MinRow, 1)
	return plan
}

// rowHeights sizes every row of the plan.
func rowHeights(g *rule.GridLayout, plan gridPlan, height float64, prefs []geom.Size) []float64 {
	hs := make([]float64, plan.rows)
	switch g.RowHeight.Strategy {
	case rule.RowHeightFixed:
		for i := range hs {
			hs[i] = g.RowHeight.FixedValue
		}
	case rule.RowHeightFillContent:
		for i := range hs {
			hs[i] = g.BaseHeight
		}
		for i, c := range plan.cells {
			if c.rowSpan == 1 {
				hs[c.row] = max(hs[c.row], prefs[i].Height)
			}
		}
	default:
		fill := (height - g.RowGap*float64(plan.rows-1)) / float64(plan.rows)
		for i := range hs {
			hs[i] = max(g.BaseHeight, fill)
		}
	}
	return hs
}

func gridPrefs(g *rule.GridLayout, colWidth float64, nodes []*Node) []geom.Size {
	prefs := make([]geom.Size, len(nodes))
	for i, n := range nodes {
		prefs[i] = n.preferredSize(geom.Size{Width: colWidth, Height: g.BaseHeight})
	}
	return prefs
}

// gridContentSize is the size a grid container needs for its in-flow items,
// padding included.
func gridContentSize(g *rule.GridLayout, avail geom.Size, nodes []*Node) geom.Size {
	inner := innerSize(avail, g.Padding)
	plan := planGrid(g, inner.Width, nodes)
	hs := rowHeights(g, plan, inner.Height, gridPrefs(g, plan.colWidth, nodes))

	w := plan.colWidth*float64(plan.columns) + g.ColumnGap*float64(plan.columns-1)
	h := g.RowGap * float64(len(hs)-1)
	for _, v := range hs {
		h += v
	}
	return geom.Size{
		Width:  w + g.Padding.Left + g.Padding.Right,
		Height: h + g.Padding.Top + g.Padding.Bottom,
	}
}

// solveGrid returns the frames of nodes inside a grid container of the given
// size, in the order of nodes.
func solveGrid(g *rule.GridLayout, size geom.Size, nodes []*Node) []geom.Rect {
	inner := innerSize(size, g.Padding)
	frames := make([]geom.Rect, len(nodes))

	var flow []*Node
	var indices []int
	for i, n := range nodes {
		if n.auto.IsAbsolutePosition() {
			frames[i] = absoluteFrame(n, size, g.Padding)
			continue
		}
		flow = append(flow, n)
		indices = append(indices, i)
	}
	if len(flow) == 0 {
		return frames
	}

	plan := planGrid(g, inner.Width, flow)
	prefs := gridPrefs(g, plan.colWidth, flow)
	hs := rowHeights(g, plan, inner.Height, prefs)
	rowTop := make([]float64, len(hs)+1)
	rowTop[0] = g.Padding.Top
	for i, h := range hs {
		rowTop[i+1] = rowTop[i] + h + g.RowGap
	}

	for i, n := range flow {
		c := plan.cells[i]
		cell := geom.R(
			g.Padding.Left+float64(c.col)*(plan.colWidth+g.ColumnGap),
			rowTop[c.row],
			plan.colWidth*float64(c.colSpan)+g.ColumnGap*float64(c.colSpan-1),
			rowTop[c.row+c.rowSpan]-rowTop[c.row]-g.RowGap,
		)
		pref := n.preferredSize(cell.Size)
		w, h := min(pref.Width, cell.Width()), min(pref.Height, cell.Height())

		hAlign, vAlign := g.CellAlign, rule.AlignStart
		if it := gridItemOf(n); it != nil {
			if it.RowAlign != 0 {
				hAlign = it.RowAlign
			}
			if it.ColumnAlign != 0 {
				vAlign = it.ColumnAlign
			}
		}
		frames[indices[i]] = geom.R(
			cell.Left()+alignOffset(hAlign, cell.Width()-w),
			cell.Top()+alignOffset(vAlign, cell.Height()-h),
			clampLength(w), clampLength(h),
		)
	}
	return frames
}
