package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joestump/tagboard/internal/build"
	"github.com/joestump/tagboard/internal/config"
	"github.com/joestump/tagboard/internal/handler"
)

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, closeCache, err := newTagService(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeCache()

			sm, closeSessions, err := newSessionManager(cfg)
			if err != nil {
				return err
			}
			defer closeSessions()

			srv := &http.Server{
				Addr: cfg.HTTP.Addr,
				Handler: handler.NewRouter(handler.Deps{
					SessionManager: sm,
					Tags:           svc,
					Logger:         log,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening",
					"addr", cfg.HTTP.Addr,
					"upstream", cfg.Upstream.URL,
					"cache", cfg.Cache.Backend,
					"sessions", cfg.Session.Store,
					"version", build.Summary(),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("server forced shutdown", "err", err)
				return err
			}
			return nil
		},
	}
}
