package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erazemk/carregistry/internal/api"
	"github.com/erazemk/carregistry/internal/cars"
	"github.com/erazemk/carregistry/internal/config"
	"github.com/erazemk/carregistry/internal/logging"
	"github.com/erazemk/carregistry/internal/notion"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 3000, "listen port (overrides PORT)")
	serveCmd.Flags().String("env-file", config.DefaultEnvFile, "dotenv file read when present")
}

func runServe(cmd *cobra.Command, args []string) error {
	v := config.New()
	if f := cmd.Flags().Lookup("port"); f.Changed {
		if err := v.BindPFlag(config.KeyPort, f); err != nil {
			return fmt.Errorf("binding port flag: %w", err)
		}
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(v, envFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if missing := cfg.Missing(); len(missing) > 0 {
		logger.Warn("Notion settings are empty, remote calls will fail", zap.Strings("keys", missing))
	}

	client := notion.NewClient(cfg.NotionToken,
		notion.WithBaseURL(cfg.NotionAPIURL),
		notion.WithVersion(cfg.NotionVersion),
		notion.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	registry := cars.NewRegistry(client, cfg.NotionDatabaseID, logger)

	router := api.NewRouter(registry, cfg.AuthSecret, logger)
	handler := api.RecoverMiddleware(logger, api.LoggingMiddleware(logger, router))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return listenAndServe(server, logger, fmt.Sprintf("Server is running at http://localhost:%d", cfg.Port))
}

// listenAndServe runs server until SIGINT or SIGTERM, then shuts it down
// gracefully.
func listenAndServe(server *http.Server, logger *zap.Logger, startup string) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := <-quit
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info(startup)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("server stopped")
	return nil
}
