package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serveCmd starts the web server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load data, schedule updates and serve the api",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// runServe loads data, sets up a periodic fetch, and starts a web server to serve that data
func runServe(cmd *cobra.Command, args []string) error {
	if cfg.Dev {
		logger.Info("server: starting in development mode", zap.String("addr", cfg.Addr))
	} else {
		logger.Info("server: starting in production mode", zap.Strings("domains", cfg.Domains))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	// Load our data, from the archive if possible
	err = a.loadData(ctx)
	if err != nil {
		// Serve anyway, the state shows the failure and a reload can be requested
		logger.Error("server: failed to load data", zap.Error(err))
	}

	server := NewServer(ctx, a.store, a.fetcher, cfg.Scale, logger)

	g, ctx := errgroup.WithContext(ctx)

	// Schedule a regular data update - don't bother in development
	if !cfg.Dev {
		g.Go(func() error {
			<-a.scheduleUpdates(ctx)
			return nil
		})
	}

	g.Go(func() error {
		// In development just serve with http on a local port
		if cfg.Dev {
			return ListenAndServe(ctx, cfg.Addr, server.Handler())
		}
		return StartTLSServer(ctx, server.Handler(), cfg.Domains, cfg.CertDir, logger)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server: stopped")
	return nil
}
