package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vyronlabs/agencyos/api"
	"github.com/vyronlabs/agencyos/db"
	"github.com/vyronlabs/agencyos/internal/app"
	"github.com/vyronlabs/agencyos/internal/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run database migrations and start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to config http_addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	logger := newLogger()
	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.HTTPAddr
	}

	srv := api.NewServer(api.Deps{
		Pool:      a.Pool,
		Ingestor:  a.Ingest,
		DocIngest: a.Ingest,
		Retriever: a.Engine,
		Answerer:  a.Composer,
		Documents: a.Store,
	}, logger)

	return srv.Run(ctx, addr)
}
