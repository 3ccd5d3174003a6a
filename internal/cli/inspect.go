package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/symbolkit/pkg/layout"
	"github.com/matzehuels/symbolkit/pkg/pipeline"
)

// Tree styles
var (
	treeSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	treeHiddenStyle   = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// inspectCommand creates the inspect command, an interactive browser over
// the laid out object tree.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		rulesPath string
		noCache   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "inspect [design.json]",
		Short: "Browse the expanded and laid out object tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("width") {
				opts.Width = c.Config.Layout.Width
			}
			if !cmd.Flags().Changed("height") {
				opts.Height = c.Config.Layout.Height
			}
			return c.runInspect(cmd.Context(), args[0], rulesPath, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "layout rules file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "viewport width (default: page width)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "viewport height (default: page height)")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, rulesPath string, opts pipeline.Options, noCache bool) error {
	in, err := readInput(input, rulesPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	res, err := runner.Layout(ctx, in, opts)
	if err != nil {
		return err
	}
	if len(res.Frames) == 0 {
		printInfo("Nothing to inspect")
		return nil
	}

	p := tea.NewProgram(NewTreeModel(res.Frames), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// =============================================================================
// TreeModel - Interactive object tree
// =============================================================================

// TreeModel is the bubbletea model for browsing laid out frames.
type TreeModel struct {
	Frames    []layout.FrameEntry
	Collapsed map[int]bool
	Cursor    int // index into Frames
	Offset    int // first visible row
	Height    int
}

// NewTreeModel creates a tree model over frames in depth-first pre-order.
func NewTreeModel(frames []layout.FrameEntry) TreeModel {
	return TreeModel{
		Frames:    frames,
		Collapsed: map[int]bool{},
		Height:    15,
	}
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

// rows returns the indexes of the frames not hidden by a collapsed ancestor.
func (m TreeModel) rows() []int {
	var out []int
	skipDepth := -1
	for i, f := range m.Frames {
		if skipDepth >= 0 {
			if f.Depth > skipDepth {
				continue
			}
			skipDepth = -1
		}
		out = append(out, i)
		if m.Collapsed[i] {
			skipDepth = f.Depth
		}
	}
	return out
}

// row returns the position of the cursor among rows.
func (m TreeModel) row(rows []int) int {
	for r, i := range rows {
		if i == m.Cursor {
			return r
		}
	}
	return 0
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if len(m.Frames) == 0 {
			return m, tea.Quit
		}
		rows := m.rows()
		r := m.row(rows)
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if r > 0 {
				r--
			}
		case "down", "j":
			if r < len(rows)-1 {
				r++
			}
		case "left", "h":
			if m.Frames[m.Cursor].Children > 0 && !m.Collapsed[m.Cursor] {
				m.Collapsed[m.Cursor] = true
			} else if p := m.parent(m.Cursor); p >= 0 {
				m.Cursor = p
				return m.scroll(), nil
			}
		case "right", "l":
			delete(m.Collapsed, m.Cursor)
		case "enter", " ":
			if m.Frames[m.Cursor].Children > 0 {
				if m.Collapsed[m.Cursor] {
					delete(m.Collapsed, m.Cursor)
				} else {
					m.Collapsed[m.Cursor] = true
				}
			}
		}
		if len(rows) > 0 {
			m.Cursor = rows[r]
		}
		return m.scroll(), nil
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
		return m.scroll(), nil
	}
	return m, nil
}

// parent returns the index of the frame enclosing frame i, or -1.
func (m TreeModel) parent(i int) int {
	depth := m.Frames[i].Depth
	for j := i - 1; j >= 0; j-- {
		if m.Frames[j].Depth < depth {
			return j
		}
	}
	return -1
}

// scroll keeps the cursor row inside the window.
func (m TreeModel) scroll() TreeModel {
	r := m.row(m.rows())
	if r < m.Offset {
		m.Offset = r
	}
	if r >= m.Offset+m.Height {
		m.Offset = r - m.Height + 1
	}
	return m
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Object Tree"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ←/→ fold  ⏎ toggle  q quit"))
	b.WriteString("\n\n")

	rows := m.rows()
	end := m.Offset + m.Height
	if end > len(rows) {
		end = len(rows)
	}
	for _, i := range rows[m.Offset:end] {
		f := m.Frames[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		marker := "  "
		if f.Children > 0 {
			marker = "▾ "
			if m.Collapsed[i] {
				marker = "▸ "
			}
		}
		line := strings.Repeat("  ", f.Depth) + marker + f.ID + " " + StyleDim.Render(f.Kind)
		style := treeNormalStyle
		switch {
		case i == m.Cursor:
			style = treeSelectedStyle
		case !f.Visible:
			style = treeHiddenStyle
		}
		b.WriteString(cursor + style.Render(line) + "\n")
	}

	if m.Cursor < len(m.Frames) {
		b.WriteString("\n")
		b.WriteString(detailBoxStyle.Render(m.detail(m.Frames[m.Cursor])))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.row(rows)+1, len(rows))))
	return b.String()
}

// detail renders the properties of one frame as a table.
func (m TreeModel) detail(f layout.FrameEntry) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray)
	rows := [][]string{
		{"id", f.ID},
		{"kind", f.Kind},
		{"origin", fmt.Sprintf("%g, %g", f.Frame.Origin.X, f.Frame.Origin.Y)},
		{"size", fmt.Sprintf("%g × %g", f.Frame.Size.Width, f.Frame.Size.Height)},
		{"visible", fmt.Sprintf("%t", f.Visible)},
		{"children", fmt.Sprintf("%d", f.Children)},
	}
	if f.Name != "" {
		rows = append(rows[:1], append([][]string{{"name", f.Name}}, rows[1:]...)...)
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return StyleValue
		})
	return t.Render()
}
