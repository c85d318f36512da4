package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/thehalleyyoung/cardplay-sub002/internal/api"
)

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the composition pipeline as an HTTP API",
		Long: `Serve starts an HTTP server exposing validation, compilation, layout,
rendering and adapter suggestions. With --redis the cache is shared
across processes; otherwise the file cache is used.

Endpoints:
  GET  /healthz
  GET  /v1/cards
  POST /v1/graphs/validate
  POST /v1/graphs/compile
  POST /v1/graphs/layout
  POST /v1/graphs/render
  POST /v1/adapters/suggest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache, redisAddr)
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewHandler(runner, c.Library),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.Logger.Info("listening", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				c.Logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for a shared cache (host:port)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
