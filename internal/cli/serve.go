package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sizemap/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve starts an HTTP server that renders uploaded du output:

  curl --data-binary @du.txt 'localhost:8080/v1/render?format=svg&width=1024'

Defaults for width, height, root and formats come from the [render]
section of the config file; limits from [server].`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv, err := server.New(server.Config{
				Addr:         addr,
				Runner:       runner,
				Defaults:     c.renderDefaults(),
				MaxBodyBytes: c.Config.Server.MaxBodyBytes,
				Logger:       c.Logger,
			})
			if err != nil {
				return err
			}
			printInfo("Serving on %s", addr)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
