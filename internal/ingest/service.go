// Package ingest feeds the knowledge layer: logging single interactions
// and events, and chunking + indexing whole documents.
//
// Failure policy: storage errors are hard (the caller must know the write
// did not land), embedding errors are soft (the unit is stored with the
// neutral vector and flagged degraded so it can be re-embedded later).
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/vyronlabs/agencyos/internal/ai"
	"github.com/vyronlabs/agencyos/internal/brain"
	"github.com/vyronlabs/agencyos/internal/log"
)

// MetadataKeyDegraded marks units that carry the neutral fallback vector.
// An offline re-embedding job selects on this key to repair relevance
// once the backend is reachable again.
const MetadataKeyDegraded = "degraded"

// Store is the slice of the knowledge store ingestion needs.
type Store interface {
	Append(ctx context.Context, u *brain.Unit) error
	AppendDocument(ctx context.Context, doc *brain.Document, units []*brain.Unit) error
}

// Service turns raw text into stored knowledge units.
type Service struct {
	store    Store
	embedder ai.Embedder
	chunker  *brain.Chunker
	logger   log.Logger
}

// New creates an ingestion service with the default chunker.
func New(store Store, embedder ai.Embedder, logger log.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{
		store:    store,
		embedder: embedder,
		chunker:  brain.NewChunker(0, 0),
		logger:   logger,
	}, nil
}

// LogInteraction stores one unit of knowledge: a manual note, a system
// event, or a chat message. The returned unit has its ID and CreatedAt
// populated.
func (s *Service) LogInteraction(ctx context.Context, scope string, kind brain.SourceKind,
	text string, metadata map[string]string) (*brain.Unit, error) {

	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", brain.ErrInvalidSourceKind, kind)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, brain.ErrEmptyContent
	}
	if len(text) > brain.MaxTextLength {
		return nil, fmt.Errorf("%w: %d > %d", brain.ErrTextTooLong, len(text), brain.MaxTextLength)
	}

	emb, meta := s.embedWithFallback(ctx, text, metadata)

	u := &brain.Unit{
		ScopeRef:   scope,
		SourceKind: kind,
		Text:       text,
		Embedding:  emb.Values,
		Metadata:   meta,
	}
	if err := s.store.Append(ctx, u); err != nil {
		return nil, fmt.Errorf("storing unit: %w", err)
	}

	s.logger.Debug("logged interaction",
		"id", u.ID, "scope", scope, "kind", kind, "degraded", emb.Degraded)
	return u, nil
}

// IngestDocument chunks content and indexes every chunk under a new
// document in one transaction. Either all chunks land or none do.
func (s *Service) IngestDocument(ctx context.Context, scope, filename, content string) (*brain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("filename is required")
	}

	chunks, err := s.chunker.Split(content)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", filename, err)
	}

	doc := &brain.Document{ScopeRef: scope, Filename: filename}
	units := make([]*brain.Unit, len(chunks))
	degraded := 0
	for i, chunk := range chunks {
		emb, meta := s.embedWithFallback(ctx, chunk, nil)
		if emb.Degraded {
			degraded++
		}
		units[i] = &brain.Unit{
			Text:      chunk,
			Embedding: emb.Values,
			Metadata:  meta,
		}
	}

	if err := s.store.AppendDocument(ctx, doc, units); err != nil {
		return nil, fmt.Errorf("storing document %s: %w", filename, err)
	}

	s.logger.Info("ingested document",
		"id", doc.ID, "scope", scope, "filename", filename,
		"chunks", len(units), "degraded", degraded)
	return doc, nil
}

// embedWithFallback embeds text and, when the result is degraded, tags
// the metadata accordingly. The input text is never empty here, so Embed
// cannot fail.
func (s *Service) embedWithFallback(ctx context.Context, text string, metadata map[string]string) (ai.Embedding, map[string]string) {
	emb, err := s.embedder.Embed(ctx, text)
	if err != nil {
		// Only reachable for empty text, which callers already reject.
		s.logger.Warn("unexpected embed error, using neutral vector", "error", err)
		emb = ai.Neutral()
	}

	if emb.Degraded {
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadata[MetadataKeyDegraded] = "true"
	}
	return emb, metadata
}
