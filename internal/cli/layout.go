package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symbolkit/pkg/layout"
	"github.com/matzehuels/symbolkit/pkg/pipeline"
)

// layoutFile is the output of the layout and resize commands.
type layoutFile struct {
	Width  float64             `json:"width,omitempty"`
	Height float64             `json:"height,omitempty"`
	Node   string              `json:"node,omitempty"`
	Frames []layout.FrameEntry `json:"frames"`
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		rulesPath string
		output    string
		noCache   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [design.json]",
		Short: "Expand a design and compute the frame of every object",
		Long: `Expand a design and compute the frame of every object.

The first page of the expanded document is laid out for the viewport given
by --width and --height. A missing dimension falls back to the config file
and then to the page's own size.

The frames are written as JSON to <input>.layout.json by default.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("width") {
				opts.Width = c.Config.Layout.Width
			}
			if !cmd.Flags().Changed("height") {
				opts.Height = c.Config.Layout.Height
			}
			return c.runLayout(cmd.Context(), args[0], rulesPath, output, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "layout rules file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute and overwrite cached results")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "viewport width (default: page width)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "viewport height (default: page height)")

	return cmd
}

// runLayout expands and lays out one design file and writes the frames.
func (c *CLI) runLayout(ctx context.Context, input, rulesPath, output string, opts pipeline.Options, noCache bool) error {
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

	res, err := runStage(ctx, "Layout", "Computing layout...", func() (*pipeline.Result, error) {
		return runner.Layout(ctx, in, opts)
	})
	if err != nil {
		return err
	}

	if output == "" {
		output = defaultOutput(input, "layout.json")
	}
	out := layoutFile{Width: opts.Width, Height: opts.Height, Frames: res.Frames}
	if err := writeJSON(output, out); err != nil {
		return err
	}

	printSuccess("Layout complete")
	announceOutput(output)
	printStats(res.Stats, res.CacheInfo.LayoutHit)
	if output != "-" {
		printNewline()
		printNextStep("Browse", appName+" inspect "+input)
	}
	return nil
}
