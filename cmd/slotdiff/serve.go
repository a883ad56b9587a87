package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/slotdiff/panel"
	"github.com/hazyhaar/slotdiff/shield"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Open the schedule page and serve the panel API and bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, page, cleanup, err := a.newPanel(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			r := a.httpRouter()
			srv := &panel.Server{Panel: p}
			if page != nil {
				srv.Shots = page.tab
				r.Post("/bridge", page.agent.HTTPHandler().ServeHTTP)
			}
			srv.RegisterHTTP(r)
			return a.listen(ctx, r)
		},
	}
}

func (a *app) agentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Open the schedule page and serve only the bridge endpoint",
		Long: `agent runs next to the browser. Panels elsewhere reach it by setting
bridge.endpoint to http://<this host><server.addr>/bridge.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			page, err := a.openPage(ctx, a.cfg.Page.URL)
			if err != nil {
				return err
			}
			defer page.Close()

			r := a.httpRouter()
			r.Post("/bridge", page.agent.HTTPHandler().ServeHTTP)
			return a.listen(ctx, r)
		},
	}
}

func (a *app) httpRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, mw := range shield.Stack(shield.DefaultMaxBody) {
		r.Use(mw)
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// listen serves h on server.addr until ctx is cancelled.
func (a *app) listen(ctx context.Context, h http.Handler) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown", "error", err)
	}
	a.logger.Info("server stopped")
	return nil
}
