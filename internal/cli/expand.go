package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symbolkit/pkg/pipeline"
)

// expandCommand creates the expand command.
func (c *CLI) expandCommand() *cobra.Command {
	var (
		rulesPath string
		output    string
		rulesOut  string
		noCache   bool
		refresh   bool
	)

	cmd := &cobra.Command{
		Use:   "expand [design.json]",
		Short: "Expand every symbol instance of a design document",
		Long: `Expand every symbol instance of a design document.

Each instance is replaced by a copy of its master's content with the
instance's overrides applied. Expanded objects get compound ids that join
the ids of their enclosing instances, and their layout rules are copied
under the new ids.

The expanded document is written to <input>.expanded.json by default. Use
--rules-out to also write the expanded layout rules.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExpand(cmd.Context(), args[0], rulesPath, output, rulesOut, pipeline.Options{Refresh: refresh}, noCache)
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "layout rules file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.expanded.json)")
	cmd.Flags().StringVar(&rulesOut, "rules-out", "", "write the expanded layout rules to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute and overwrite cached results")

	return cmd
}

// runExpand expands one design file and writes the result.
func (c *CLI) runExpand(ctx context.Context, input, rulesPath, output, rulesOut string, opts pipeline.Options, noCache bool) error {
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

	res, err := runStage(ctx, "Expansion", "Expanding symbols...", func() (*pipeline.Result, error) {
		return runner.Expand(ctx, in, opts)
	})
	if err != nil {
		return err
	}

	if output == "" {
		output = defaultOutput(input, "expanded.json")
	}
	if err := writeJSON(output, res.Document); err != nil {
		return err
	}
	if rulesOut != "" {
		if err := writeJSON(rulesOut, res.Rules); err != nil {
			return err
		}
	}

	printSuccess("Expansion complete")
	announceOutput(output)
	if rulesOut != "" {
		announceOutput(rulesOut)
	}
	printStats(res.Stats, res.CacheInfo.ExpandHit)
	if output != "-" {
		printNewline()
		printNextStep("Lay out", appName+" layout "+input)
	}
	return nil
}
