package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"eth_block_explorer/internal/adapters/restapi"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var skipInitialize bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the live WebSocket state stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			rt, err := buildRuntime(cmd.Context(), cfg, os.Stdout)
			if err != nil {
				return err
			}
			defer rt.Close()

			return runServe(cmd.Context(), rt, skipInitialize)
		},
	}
	cmd.Flags().BoolVar(&skipInitialize, "skip-initialize", false, "Do not load the candidate list on startup")
	return cmd
}

// runServe starts the API server and blocks until ctx is canceled or the server fails.
func runServe(ctx context.Context, rt *runtime, skipInitialize bool) error {
	var opts []restapi.Option
	if rt.recorder != nil {
		opts = append(opts, restapi.WithMetrics(rt.recorder, rt.registry, rt.cfg.Metrics.Path))
	}

	server, err := restapi.NewServer(rt.explorer, rt.logger, &rt.cfg.Server, opts...)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		rt.logger.Info("Shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if !skipInitialize {
		if err := rt.explorer.Initialize(gctx); err != nil {
			rt.logger.Warn("Initial candidate load failed, retry with POST /api/initialize", "error", err)
		}
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	rt.logger.Info("Application shut down gracefully.")
	return nil
}
