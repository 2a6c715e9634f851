package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/minus-twelve/relay"
	"github.com/minus-twelve/relay/internal/logging"
	"github.com/minus-twelve/relay/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveLogLevel string
	serveStore    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "debug, info, warn or error (overrides log.level)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "Session store: memory or redis (overrides store_type)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveLogLevel != "" {
		cfg.Log.Level = serveLogLevel
	}
	if serveStore != "" {
		cfg.StoreType = serveStore
	}
	if err := relay.ValidateConfig(cfg); err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("relayd listening", "addr", app.Addr(), "version", version)
		serverErr <- app.Run()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", "error", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if serr := app.Shutdown(shutdownCtx); serr != nil {
			logger.Error("shutdown", "error", serr)
		}
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		return err
	}
	logger.Info("relayd stopped")
	return nil
}
