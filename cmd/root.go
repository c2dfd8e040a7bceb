// Package cmd provides the agencyos CLI commands.
//
// Commands:
//   - serve: run migrations and start the HTTP API server
//   - ingest: chunk and store a document from a file
//   - search: semantic search over recorded knowledge
//   - ask: one-shot grounded answer
//   - version: build information
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vyronlabs/agencyos/internal/app"
	"github.com/vyronlabs/agencyos/internal/config"
	"github.com/vyronlabs/agencyos/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "agencyos",
	Short: "Agency OS knowledge service",
	Long: `Agency OS records business knowledge as embedded text units and
answers questions grounded in what was recorded. It keeps working without
an AI backend: ingestion and storage never depend on embedding availability.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger. DEBUG enables debug level.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level})
}

// setup loads configuration and assembles the application.
// The caller owns the returned App and must Close it.
func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return app.Setup(ctx, cfg, newLogger())
}
