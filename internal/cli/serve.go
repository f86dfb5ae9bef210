package cli

import (
	"github.com/spf13/cobra"

	"github.com/wjs2063/tripgraph/internal/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.build(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			h := server.New(opts.cfg.Server.Addr, server.Deps{
				Workflows:             app.workflows,
				Map:                   app.naverMap,
				TMap:                  app.tmap,
				Wikipedia:             app.wikipedia,
				Guide:                 app.guide,
				Logger:                opts.logger,
				DefaultRecursionLimit: opts.cfg.Server.DefaultRecursionLimit,
			})
			opts.logger.Info("serving", "addr", opts.cfg.Server.Addr)
			// Spin blocks until SIGINT or SIGTERM and shuts down gracefully.
			h.Spin()
			return nil
		},
	}
}
