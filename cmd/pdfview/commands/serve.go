package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tsawler/pdfview/internal/server"
)

// ServeAction starts the HTTP viewer API and blocks until ctx is cancelled.
// Documents given as arguments are opened before the server starts.
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(cmd.String("env"))
	if err != nil {
		return err
	}
	cfg := appCtx.Config
	if cmd.IsSet("addr") {
		cfg.Addr = cmd.String("addr")
	}
	log := appCtx.Logger

	srv := server.New(cfg, log)
	defer srv.Close()

	for _, path := range cmd.Args().Slice() {
		id, err := srv.Open(path)
		if err != nil {
			return err
		}
		log.Info("document preloaded", "path", path, "id", id)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting pdfview server", "config", cfg)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
