package brain

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/vyronlabs/agencyos/internal/ai"
	"github.com/vyronlabs/agencyos/internal/log"
)

// defaultSearchLimit applies when Nearest is called without WithLimit.
const defaultSearchLimit = 10

// querier is the common interface satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// unitCols is the standard SELECT column list for scanning units.
// The embedding column is deliberately excluded: callers never need the
// raw vector back.
const unitCols = `id, scope_ref, source_kind, text, metadata,
	document_id, chunk_index, active, created_at`

// insertUnitSQL is the single INSERT used for all unit writes.
const insertUnitSQL = `INSERT INTO units
	(id, scope_ref, source_kind, text, embedding, metadata, document_id, chunk_index)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at`

// Store persists knowledge units in PostgreSQL + pgvector.
//
// Units are append-only: Deactivate flips the active flag instead of
// deleting, and there is no update path. Store is safe for concurrent
// use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// New creates a knowledge Store.
func New(pool *pgxpool.Pool, logger log.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// validateUnit checks a unit before insertion.
func validateUnit(u *Unit) error {
	if u == nil {
		return fmt.Errorf("unit is required")
	}
	if !u.SourceKind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSourceKind, u.SourceKind)
	}
	if u.Text == "" {
		return ErrEmptyContent
	}
	if len(u.Text) > MaxTextLength {
		return fmt.Errorf("%w: %d > %d", ErrTextTooLong, len(u.Text), MaxTextLength)
	}
	if len(u.Embedding) != ai.VectorDim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(u.Embedding), ai.VectorDim)
	}
	return nil
}

// Append inserts one knowledge unit. The unit's ID and CreatedAt are
// populated on success.
func (s *Store) Append(ctx context.Context, u *Unit) error {
	if err := validateUnit(u); err != nil {
		return err
	}
	return s.insertUnit(ctx, s.pool, u)
}

func (*Store) insertUnit(ctx context.Context, q querier, u *Unit) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	metadata := u.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	err := q.QueryRow(ctx, insertUnitSQL,
		u.ID, u.ScopeRef, u.SourceKind, u.Text,
		pgvector.NewVector(u.Embedding), metadata,
		u.DocumentID, u.ChunkIndex,
	).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting unit: %w", err)
	}
	u.Active = true
	return nil
}

// AppendDocument inserts a document row and all of its chunk units in a
// single transaction. Either the whole document lands or none of it does;
// a half-indexed document would silently distort retrieval.
//
// Each unit's ScopeRef, SourceKind, DocumentID and ChunkIndex are set
// from the document, in slice order.
func (s *Store) AppendDocument(ctx context.Context, doc *Document, units []*Unit) error {
	if doc == nil {
		return fmt.Errorf("document is required")
	}
	if doc.Filename == "" {
		return fmt.Errorf("document filename is required")
	}
	if len(units) == 0 {
		return ErrEmptyContent
	}

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.ChunkCount = len(units)
	for i, u := range units {
		u.ScopeRef = doc.ScopeRef
		u.SourceKind = SourceDocumentChunk
		u.DocumentID = &doc.ID
		u.ChunkIndex = i
		if err := validateUnit(u); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", rbErr)
		}
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO documents (id, scope_ref, filename, chunk_count)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		doc.ID, doc.ScopeRef, doc.Filename, doc.ChunkCount,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	for i, u := range units {
		if err := s.insertUnit(ctx, tx, u); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing document transaction: %w", err)
	}
	return nil
}

// Nearest returns the active units of the given scope closest to vec by
// cosine distance, most similar first; equally distant units tie-break
// on recency. Scopes are strictly isolated: a scoped search never
// returns organization-wide units and vice versa.
func (s *Store) Nearest(ctx context.Context, vec []float32, scope string, opts ...SearchOption) ([]Result, error) {
	if len(vec) != ai.VectorDim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), ai.VectorDim)
	}

	cfg := searchConfig{limit: defaultSearchLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, k := range cfg.kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSourceKind, k)
		}
	}

	pv := pgvector.NewVector(vec)

	var rows pgx.Rows
	var err error
	if len(cfg.kinds) > 0 {
		kinds := make([]string, len(cfg.kinds))
		for i, k := range cfg.kinds {
			kinds[i] = string(k)
		}
		rows, err = s.pool.Query(ctx,
			`SELECT `+unitCols+`, 1 - (embedding <=> $1) AS similarity
			 FROM units
			 WHERE scope_ref = $2 AND active = true AND source_kind = ANY($3)
			 ORDER BY embedding <=> $1, created_at DESC
			 LIMIT $4`,
			pv, scope, kinds, cfg.limit,
		)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+unitCols+`, 1 - (embedding <=> $1) AS similarity
			 FROM units
			 WHERE scope_ref = $2 AND active = true
			 ORDER BY embedding <=> $1, created_at DESC
			 LIMIT $3`,
			pv, scope, cfg.limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("searching units: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// Deactivate soft-deletes a unit. Deactivating an already inactive unit
// is a no-op; an unknown ID is ErrNotFound.
func (s *Store) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE units SET active = false WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("deactivating unit %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDocument removes a document and, via cascade, all of its chunk
// units. This is the one hard-delete path: keeping orphaned chunks of a
// removed document retrievable is worse than losing the audit trail.
func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDocuments returns the documents of a scope, newest first.
func (s *Store) ListDocuments(ctx context.Context, scope string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, scope_ref, filename, chunk_count, created_at
		 FROM documents
		 WHERE scope_ref = $1
		 ORDER BY created_at DESC, id`,
		scope,
	)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.ScopeRef, &d.Filename, &d.ChunkCount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// Stats reports what a scope's knowledge base contains.
func (s *Store) Stats(ctx context.Context, scope string) (Stats, error) {
	st := Stats{BySource: map[SourceKind]int{}}

	rows, err := s.pool.Query(ctx,
		`SELECT source_kind, COUNT(*)
		 FROM units
		 WHERE scope_ref = $1 AND active = true
		 GROUP BY source_kind`,
		scope,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("counting units: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind SourceKind
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning unit count: %w", err)
		}
		st.BySource[kind] = n
		st.TotalUnits += n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterating unit counts: %w", err)
	}

	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE scope_ref = $1`, scope,
	).Scan(&st.TotalDocuments); err != nil {
		return Stats{}, fmt.Errorf("counting documents: %w", err)
	}

	return st, nil
}

// scanResults reads search results including the trailing similarity column.
func scanResults(rows pgx.Rows) ([]Result, error) {
	results := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.Unit.ID, &r.Unit.ScopeRef, &r.Unit.SourceKind, &r.Unit.Text,
			&r.Unit.Metadata, &r.Unit.DocumentID, &r.Unit.ChunkIndex,
			&r.Unit.Active, &r.Unit.CreatedAt,
			&r.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}
