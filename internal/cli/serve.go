package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symbolkit/pkg/cache"
	"github.com/matzehuels/symbolkit/pkg/pipeline"
	"github.com/matzehuels/symbolkit/pkg/server"
)

// serverKeyPrefix separates server cache entries from CLI entries when both
// share a backend.
const serverKeyPrefix = "server:"

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the expand, layout, resize and render API over HTTP",
		Long: `Serve the expand, layout, resize and render API over HTTP.

Endpoints:
  POST /v1/expand   expand a design
  POST /v1/layout   expand and lay out a design
  POST /v1/resize   resize one object of an expanded design
  POST /v1/render   draw the layout tree (dot or svg)
  GET  /healthz     liveness and version

Requests are JSON bodies of the form {"design": ..., "rules": ..., "width": ...}.
The server uses the cache backend from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("timeout") && c.Config.Server.Timeout > 0 {
				timeout = time.Duration(c.Config.Server.Timeout)
			}
			return c.runServe(cmd.Context(), addr, timeout, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "per-request timeout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, timeout time.Duration, noCache bool) error {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, serverKeyPrefix), c.Logger)
	runner.TTL = c.Config.Cache.TTLFor(0)
	defer runner.Close()

	srv := server.New(runner,
		server.WithLogger(c.Logger),
		server.WithTimeout(timeout),
	)
	printInfo("Serving on %s", StyleValue.Render(addr))
	return srv.ListenAndServe(ctx, addr)
}
