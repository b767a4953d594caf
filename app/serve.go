package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may take once the
// servers are asked to stop.
const ShutdownTimeout = 10 * time.Second

// Serve runs the public HTTP server, and the meta server when
// Server.MetaAddr is set, until ctx is done, then shuts them down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	servers := []*http.Server{{
		Addr:              a.Config.Server.Addr,
		Handler:           a.Server.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if a.Config.Server.MetaAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              a.Config.Server.MetaAddr,
			Handler:           a.Server.SetupMetaRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	g, gCtx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		g.Go(func() error {
			a.Logger.Info("starting finnews server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.Logger.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.Logger.Info("servers exited")
	return nil
}
