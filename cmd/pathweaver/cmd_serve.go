package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pathweaver/internal/server"
)

var serveAddr string

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pathway completion API over HTTP",
	Long: `Starts the HTTP API:

  POST /predict                 complete the pathway most similar to a query
  POST /predict/{pathway_id}    complete a specific pathway
  GET  /pathways/similar        rank templates against a query
  GET  /pathways/{pathway_id}   fetch a raw template
  POST /export                  render a completed pathway as CSV or XML

With storage.watch_feed enabled the catalog index reloads whenever the
configured feed file changes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := newStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Storage.WatchFeed && cfg.Storage.CatalogFeed != "" {
		// Watch blocks until ctx is cancelled, so it must not run on the
		// serve goroutine.
		feed := cfg.Storage.CatalogFeed
		go func() {
			if err := st.index.Watch(ctx, feed); err != nil {
				logger.Warn("catalog feed watcher stopped", zap.Error(err))
			}
		}()
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := server.New(addr, st.engine, st.store, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
