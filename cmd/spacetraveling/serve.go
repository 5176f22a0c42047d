package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/views"
)

const shutdownTimeout = 10 * time.Second

var staticDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built site",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&staticDir, "static", "public", "directory served under /public")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := spacetraveling.New(cfg, views.New(),
		spacetraveling.WithLogger(logger),
		spacetraveling.WithStaticDir(staticDir),
	)
	defer app.Close()
	if err := app.Setup(); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		errc <- app.Start()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
