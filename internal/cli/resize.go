package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symbolkit/pkg/pipeline"
)

// resizeCommand creates the resize command.
func (c *CLI) resizeCommand() *cobra.Command {
	var (
		rulesPath string
		output    string
		rulesOut  string
		framesOut string
		noCache   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "resize [design.json]",
		Short: "Resize one object of an expanded design and lay out the rest",
		Long: `Resize one object of an expanded design and lay out the rest.

The design is expanded first, so --node may name an object inside an
expanded instance by its compound id. The object is resized by its
constraints, and every container that depends on it is laid out again.
With --keep-origin the object's origin stays where it is.

The updated document is written to <input>.resized.json by default.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResize(cmd.Context(), args[0], rulesPath, output, rulesOut, framesOut, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "layout rules file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.resized.json)")
	cmd.Flags().StringVar(&rulesOut, "rules-out", "", "write the updated layout rules to this file")
	cmd.Flags().StringVar(&framesOut, "frames-out", "", "write the resulting frames to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.Node, "node", "n", "", "id of the object to resize")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "new width")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "new height")
	cmd.Flags().BoolVar(&opts.KeepOrigin, "keep-origin", false, "keep the object's origin")
	_ = cmd.MarkFlagRequired("node")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}

// runResize resizes one node and writes the updated document.
func (c *CLI) runResize(ctx context.Context, input, rulesPath, output, rulesOut, framesOut string, opts pipeline.Options, noCache bool) error {
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

	prog := newProgress(opts.Logger)
	res, err := runner.Resize(ctx, in, opts)
	if err != nil {
		return err
	}
	prog.done("Resized %s to %gx%g", opts.Node, opts.Width, opts.Height)

	if output == "" {
		output = defaultOutput(input, "resized.json")
	}
	if err := writeJSON(output, res.Document); err != nil {
		return err
	}
	if rulesOut != "" {
		if err := writeJSON(rulesOut, res.Rules); err != nil {
			return err
		}
	}
	if framesOut != "" {
		out := layoutFile{Node: opts.Node, Width: opts.Width, Height: opts.Height, Frames: res.Frames}
		if err := writeJSON(framesOut, out); err != nil {
			return err
		}
	}

	printSuccess("Resize complete")
	announceOutput(output)
	for _, p := range []string{rulesOut, framesOut} {
		if p != "" {
			announceOutput(p)
		}
	}
	printStats(res.Stats, false)
	return nil
}
