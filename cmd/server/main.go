package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/titleforge/internal/wire"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application failed to run", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := wire.InitializeApp()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	slog.Info("starting TitleForge application")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		return app.Stop()
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}
