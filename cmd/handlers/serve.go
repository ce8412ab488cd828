package handlers

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"policybrief/internal/config"
	"policybrief/internal/logger"
	"policybrief/internal/server"
)

// NewServeCmd creates the serve command, which runs the HTTP API until
// interrupted.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			cur, db, cleanup, err := buildCurator(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := server.New(db, cur, cfg.Server)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				logger.Info("shutting down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}
