package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/internal/server"
)

// shutdownGrace bounds in-flight request draining on shutdown.
const shutdownGrace = 5 * time.Second

// newServeCmd creates the serve command for running the frame server.
func newServeCmd(configPath *string) *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored stories and composed frames over HTTP",
		Long: `Serve stored stories and composed frames over HTTP.

The server exposes the configured story store as a read-only JSON API:

  GET /healthz                       liveness probe
  GET /stories                       list stored stories
  GET /stories/{id}                  fetch one story
  GET /stories/{id}/frames/{index}   compose a frame (optional ?w= ?h=)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable frame caching")

	return cmd
}

func runServe(ctx context.Context, configPath, addr string, noCache bool) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	composer, err := newComposer(ctx, cfg, logger, noCache)
	if err != nil {
		return err
	}

	viewport := viewportFromConfig(cfg, 0, 0)
	srv := server.New(st, composer, viewport, logger)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	}
}
