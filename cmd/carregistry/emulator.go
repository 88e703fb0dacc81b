package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erazemk/carregistry/internal/api"
	"github.com/erazemk/carregistry/internal/cars"
	"github.com/erazemk/carregistry/internal/db"
	"github.com/erazemk/carregistry/internal/emulator"
	"github.com/erazemk/carregistry/internal/logging"
	"github.com/erazemk/carregistry/internal/store"
)

var emulatorCmd = &cobra.Command{
	Use:   "emulator",
	Short: "Run a local Notion API emulator",
	Long: `Run a sqlite-backed stand-in for the Notion API holding one car database.
Point the gateway at it with NOTION_API_URL=http://localhost:<port>/v1.`,
	RunE: runEmulator,
}

func init() {
	f := emulatorCmd.Flags()
	f.String("db", "notion-emulator.sqlite3", "SQLite database path")
	f.String("addr", ":4000", "listen address")
	f.String("database-id", "cars", "id of the emulated car database")
	f.String("token", "", "required bearer token (empty accepts any)")
	f.String("log-level", "info", "log level")
}

func runEmulator(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	dbPath, _ := f.GetString("db")
	addr, _ := f.GetString("addr")
	databaseID, _ := f.GetString("database-id")
	token, _ := f.GetString("token")
	level, _ := f.GetString("log-level")

	logger, err := logging.New(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	database, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	if err := store.PutDatabase(context.Background(), database, databaseID, "Cars", cars.Schema()); err != nil {
		return fmt.Errorf("creating car database: %w", err)
	}
	logger.Info("emulator database ready", zap.String("path", dbPath), zap.String("database_id", databaseID))

	handler := emulator.NewServer(database, token, logger).Handler()

	server := &http.Server{
		Addr:              addr,
		Handler:           api.LoggingMiddleware(logger, handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return listenAndServe(server, logger, "emulator listening on "+addr)
}
