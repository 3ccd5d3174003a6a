// Package rule holds the per-node layout rules of a design document.
//
// Rules arrive as a JSON document of the form {"obj": [{"id": ..., ...}]}.
// Each entry can make its node a flex or grid container ("layout"), place it
// as an item of such a container ("item_in_layout"), and constrain its width
// and height. A [Store] keeps the raw JSON of every rule next to its typed
// [Rule] form and updates both together, so rules can be copied, merged and
// rewritten by id while a document is expanded and still be written back in
// their original shape.
package rule

import (
	"encoding/json"
	"fmt"
)

// LengthType is the unit of a [Length].
type LengthType int

const (
	LengthUnset      LengthType = 0
	LengthPx         LengthType = 1
	LengthPercent    LengthType = 2
	LengthFitContent LengthType = 4
)

// Length is a size directive: an absolute pixel value, a percentage of the
// container's inner size, or the size of the content.
type Length struct {
	Types LengthType `json:"types"`
	Value float64    `json:"value"`
}

// Dimension wraps a [Length] the way width/height directives are encoded.
type Dimension struct {
	Value Length `json:"value"`
}

// Inset is one of the top/right/bottom/left offsets of a positioned item.
type Inset struct {
	Value float64 `json:"value"`
}

// PositionType selects how an item takes part in its container's layout.
type PositionType int

const (
	PositionRelative PositionType = 1
	PositionAbsolute PositionType = 2
	PositionFixed    PositionType = 3
	PositionSticky   PositionType = 4
)

// Position wraps a [PositionType].
type Position struct {
	Value PositionType `json:"value"`
}

// Align places content along the cross axis or inside a grid cell.
type Align int

const (
	AlignStart  Align = 1
	AlignCenter Align = 2
	AlignEnd    Align = 3
)

// Padding is encoded as [top, right, bottom, left].
type Padding struct {
	Top, Right, Bottom, Left float64
}

func (p Padding) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{p.Top, p.Right, p.Bottom, p.Left})
}

func (p *Padding) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != 4 {
		return fmt.Errorf("padding: want 4 values, got %d", len(v))
	}
	*p = Padding{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}
	return nil
}

// Direction is the main axis of a flex container.
type Direction int

const (
	DirectionHorizontal Direction = 1
	DirectionVertical   Direction = 2
)

// Justify distributes items along the main axis.
type Justify int

const (
	JustifyStart        Justify = 1
	JustifyCenter       Justify = 2
	JustifyEnd          Justify = 3
	JustifySpaceBetween Justify = 4
	JustifySpaceAround  Justify = 5
	JustifySpaceEvenly  Justify = 6
)

// Wrap controls whether flex items may flow onto further lines.
type Wrap int

const (
	WrapNone Wrap = 1
	WrapWrap Wrap = 2
)

// FlexLayout configures a flex container.
type FlexLayout struct {
	Direction      Direction `json:"direction"`
	JustifyContent Justify   `json:"justify_content"`
	AlignItems     Align     `json:"align_items"`
	AlignContent   Align     `json:"align_content"`
	Wrap           Wrap      `json:"wrap"`
	RowGap         float64   `json:"row_gap"`
	ColumnGap      float64   `json:"column_gap"`
	Padding        Padding   `json:"padding"`
}

// ExpandStrategy decides how many columns a grid has.
type ExpandStrategy struct {
	// Strategy is 1 (derive the count from the column width) or 2 (fixed).
	Strategy    int `json:"strategy"`
	MinRow      int `json:"min_row"`
	ColumnCount int `json:"column_count"`
}

const (
	ExpandAuto        = 1
	ExpandFixedColumn = 2
)

// ColumnWidth sizes grid columns.
type ColumnWidth struct {
	// Strategy is 1 (at least WidthValue, stretched to fill) or 2 (exactly
	// WidthValue).
	Strategy   int     `json:"strategy"`
	WidthValue float64 `json:"width_value"`
}

const (
	ColumnWidthMin   = 1
	ColumnWidthFixed = 2
)

// RowHeight sizes grid rows.
type RowHeight struct {
	Strategy   int     `json:"strategy"`
	FixedValue float64 `json:"fixed_value"`
}

const (
	RowHeightFillContainer = 1
	RowHeightFillContent   = 2
	RowHeightFixed         = 3
)

// GridLayout configures a grid container.
type GridLayout struct {
	ExpandStrategy ExpandStrategy `json:"expand_strategy"`
	ColumnWidth    ColumnWidth    `json:"column_width"`
	RowHeight      RowHeight      `json:"row_height"`
	BaseHeight     float64        `json:"base_height"`
	ColumnGap      float64        `json:"column_gap"`
	RowGap         float64        `json:"row_gap"`
	GridAutoFlow   int            `json:"grid_auto_flow"`
	Padding        Padding        `json:"padding"`
	CellAlign      Align          `json:"cell_align"`
}

// FlexItem places a node inside a flex container.
type FlexItem struct {
	Position Position `json:"position"`
	FlexGrow float64  `json:"flex_grow"`
	Top      *Inset   `json:"top,omitempty"`
	Right    *Inset   `json:"right,omitempty"`
	Bottom   *Inset   `json:"bottom,omitempty"`
	Left     *Inset   `json:"left,omitempty"`
}

// GridItemPos pins a grid item to a cell when Strategy is 2.
type GridItemPos struct {
	Strategy int `json:"strategy"`
	ColumnID int `json:"column_id"`
	RowID    int `json:"row_id"`
}

// GridItem places a node inside a grid container.
type GridItem struct {
	ItemPos     GridItemPos `json:"item_pos"`
	RowSpan     int         `json:"row_span"`
	ColumnSpan  int         `json:"column_span"`
	Position    Position    `json:"position"`
	RowAlign    Align       `json:"row_align"`
	ColumnAlign Align       `json:"column_align"`
	Top         *Inset      `json:"top,omitempty"`
	Right       *Inset      `json:"right,omitempty"`
	Bottom      *Inset      `json:"bottom,omitempty"`
	Left        *Inset      `json:"left,omitempty"`
}

// Rule is the typed form of one rule entry. At most one of Flex and Grid is
// set, and at most one of FlexItem and GridItem.
type Rule struct {
	ID string

	Flex *FlexLayout
	Grid *GridLayout

	FlexItem *FlexItem
	GridItem *GridItem

	Width     Dimension
	Height    Dimension
	MaxWidth  *Dimension
	MinWidth  *Dimension
	MaxHeight *Dimension
	MinHeight *Dimension

	AspectRatio *float64
}

// IsContainer reports whether the rule makes its node a flex or grid
// container.
func (r *Rule) IsContainer() bool { return r.Flex != nil || r.Grid != nil }

// IsItem reports whether the rule places its node inside a container.
func (r *Rule) IsItem() bool { return r.FlexItem != nil || r.GridItem != nil }

// Position returns the item position, relative when the rule has no item.
func (r *Rule) Position() PositionType {
	switch {
	case r.FlexItem != nil && r.FlexItem.Position.Value != 0:
		return r.FlexItem.Position.Value
	case r.GridItem != nil && r.GridItem.Position.Value != 0:
		return r.GridItem.Position.Value
	}
	return PositionRelative
}

// Insets returns the top, right, bottom and left offsets of a positioned
// item; absent offsets are nil.
func (r *Rule) Insets() (top, right, bottom, left *float64) {
	pick := func(in *Inset) *float64 {
		if in == nil {
			return nil
		}
		v := in.Value
		return &v
	}
	switch {
	case r.FlexItem != nil:
		return pick(r.FlexItem.Top), pick(r.FlexItem.Right), pick(r.FlexItem.Bottom), pick(r.FlexItem.Left)
	case r.GridItem != nil:
		return pick(r.GridItem.Top), pick(r.GridItem.Right), pick(r.GridItem.Bottom), pick(r.GridItem.Left)
	}
	return nil, nil, nil, nil
}

const (
	classFlexLayout = "flexbox_layout"
	classGridLayout = "grid_layout"
	classFlexItem   = "flexbox_item"
	classGridItem   = "grid_item"
)

// parse builds the typed form of a raw rule entry.
func parse(raw map[string]any) (*Rule, error) {
	r := &Rule{}
	r.ID, _ = raw["id"].(string)

	if v, ok := raw["layout"].(map[string]any); ok {
		switch v["class"] {
		case classFlexLayout:
			r.Flex = &FlexLayout{}
			if err := convert(v, r.Flex); err != nil {
				return nil, fmt.Errorf("layout: %w", err)
			}
		case classGridLayout:
			r.Grid = &GridLayout{}
			if err := convert(v, r.Grid); err != nil {
				return nil, fmt.Errorf("layout: %w", err)
			}
		}
	}
	if v, ok := raw["item_in_layout"].(map[string]any); ok {
		switch v["class"] {
		case classFlexItem:
			r.FlexItem = &FlexItem{}
			if err := convert(v, r.FlexItem); err != nil {
				return nil, fmt.Errorf("item_in_layout: %w", err)
			}
		case classGridItem:
			r.GridItem = &GridItem{}
			if err := convert(v, r.GridItem); err != nil {
				return nil, fmt.Errorf("item_in_layout: %w", err)
			}
		}
	}

	for key, dst := range map[string]*Dimension{"width": &r.Width, "height": &r.Height} {
		if v, ok := raw[key]; ok && v != nil {
			if err := convert(v, dst); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	for key, dst := range map[string]**Dimension{
		"max_width":  &r.MaxWidth,
		"min_width":  &r.MinWidth,
		"max_height": &r.MaxHeight,
		"min_height": &r.MinHeight,
	} {
		if v, ok := raw[key]; ok && v != nil {
			d := &Dimension{}
			if err := convert(v, d); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	if v, ok := raw["aspect_ratio"]; ok && v != nil {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("aspect_ratio: want number, got %T", v)
		}
		r.AspectRatio = &f
	}
	return r, nil
}

func convert(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
