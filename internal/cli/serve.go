package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchmap/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve drawing sessions over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := c.engine()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Store:           store,
		Logger:          loggerFromContext(ctx),
		Engine:          engine,
		SessionTTL:      c.Config.Store.TTL,
		CleanupInterval: c.Config.Server.CleanupInterval,
		ShutdownTimeout: c.Config.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	printInfo("Listening on %s (store: %s)", StyleLink.Render("http://"+displayAddr(addr)), c.Config.Store.Backend)
	return srv.Run(ctx, addr)
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
