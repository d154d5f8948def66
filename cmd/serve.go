package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/envelope-zero/analytics/internal/router"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	s, err := connect(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	r, teardown, err := router.Config(cfg.API, cfg.URL())
	defer teardown()
	if err != nil {
		return err
	}
	router.AttachRoutes(s.controller(), cfg.API, r.Group("/"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, &http.Server{
		Addr:              cfg.API.Listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	})
}

// serve runs the server until ctx is cancelled and then shuts it down.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", srv.Addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
