package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symbolkit/pkg/pipeline"
)

// dotCommand creates the dot command for drawing the layout tree.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		rulesPath string
		output    string
		noCache   bool
	)
	opts := pipeline.Options{Format: pipeline.DefaultFormat}

	cmd := &cobra.Command{
		Use:   "dot [design.json]",
		Short: "Draw the layout tree of an expanded design with Graphviz",
		Long: `Draw the layout tree of an expanded design with Graphviz.

Every object becomes a box labeled with its id and kind. Auto-layout
containers are filled, hidden objects are dashed. With --frames each box
also shows the object's frame.

Formats: ` + strings.Join(pipeline.ValidFormats, ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(cmd.Context(), args[0], rulesPath, output, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "layout rules file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.<format>)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute and overwrite cached results")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", opts.Format, "output format: "+strings.Join(pipeline.ValidFormats, ", "))
	cmd.Flags().BoolVar(&opts.Frames, "frames", false, "label each box with its frame")

	return cmd
}

// runDot renders the layout tree of one design file.
func (c *CLI) runDot(ctx context.Context, input, rulesPath, output string, opts pipeline.Options, noCache bool) error {
	if err := opts.ValidateForRender(); err != nil {
		return err
	}
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

	res, err := runStage(ctx, "Render", fmt.Sprintf("Rendering %s...", opts.Format), func() (*pipeline.Result, error) {
		return runner.Render(ctx, in, opts)
	})
	if err != nil {
		return err
	}

	if output == "" {
		output = defaultOutput(input, opts.Format)
	}
	if err := writeOutput(output, res.Artifact); err != nil {
		return err
	}

	printSuccess("Rendered %s", strings.ToUpper(opts.Format))
	announceOutput(output)
	printStats(res.Stats, res.CacheInfo.RenderHit)
	return nil
}
