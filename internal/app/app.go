// Package app wires configuration, storage, and the AI layer into the
// services the CLI and HTTP server run on.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vyronlabs/agencyos/internal/ai"
	"github.com/vyronlabs/agencyos/internal/assistant"
	"github.com/vyronlabs/agencyos/internal/brain"
	"github.com/vyronlabs/agencyos/internal/config"
	"github.com/vyronlabs/agencyos/internal/ingest"
	"github.com/vyronlabs/agencyos/internal/log"
	"github.com/vyronlabs/agencyos/internal/retrieve"
)

// App holds the assembled application components.
type App struct {
	Config   *config.Config
	Logger   log.Logger
	Pool     *pgxpool.Pool
	Store    *brain.Store
	Ingest   *ingest.Service
	Engine   *retrieve.Engine
	Composer *assistant.Composer
}

// Setup connects to PostgreSQL and assembles all services. When no Gemini
// API key is present the AI layer runs unconfigured: ingestion and search
// keep working on neutral embeddings and answers fall back to an advisory
// message.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
	}

	var (
		embedder  ai.Embedder
		generator ai.Generator
	)
	if ai.Configured() {
		google, err := ai.NewGoogle(ctx, cfg.EmbedderModel, cfg.ModelName, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("initializing AI backend: %w", err)
		}
		embedder, generator = google, google
	} else {
		unconfigured := ai.NewUnconfigured(logger)
		embedder, generator = unconfigured, unconfigured
	}

	store, err := brain.New(pool, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating knowledge store: %w", err)
	}

	ingestSvc, err := ingest.New(store, embedder, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating ingestion service: %w", err)
	}

	engine, err := retrieve.New(store, embedder, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating retrieval engine: %w", err)
	}

	composer, err := assistant.New(engine, generator, ingestSvc, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating answer composer: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Pool:     pool,
		Store:    store,
		Ingest:   ingestSvc,
		Engine:   engine,
		Composer: composer,
	}, nil
}

// Close releases the connection pool.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
