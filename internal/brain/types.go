// Package brain implements the append-only knowledge layer backed by
// PostgreSQL + pgvector.
//
// Every piece of organizational context — logged interactions, system
// events, document chunks, chat history — is stored as a Unit: a text
// fragment plus its embedding, tagged with the scope it belongs to.
// Units are never updated in place; corrections are new units and
// removal is a soft-delete via the active flag. Documents group the
// units produced by chunking one uploaded file.
package brain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxTextLength bounds a single unit's text. Longer inputs must be
// chunked before ingestion.
const MaxTextLength = 10000

var (
	// ErrEmptyContent indicates the text was empty after trimming.
	ErrEmptyContent = errors.New("content is empty")

	// ErrTextTooLong indicates the text exceeds MaxTextLength.
	ErrTextTooLong = errors.New("text exceeds maximum length")

	// ErrInvalidSourceKind indicates an unknown source kind.
	ErrInvalidSourceKind = errors.New("invalid source kind")

	// ErrDimensionMismatch indicates an embedding of the wrong width.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotFound indicates the unit or document does not exist.
	ErrNotFound = errors.New("not found")
)

// SourceKind identifies where a knowledge unit came from.
type SourceKind string

const (
	// SourceManualInteraction is a note a user logged by hand.
	SourceManualInteraction SourceKind = "manual_interaction"

	// SourceSystemLog is an event the application recorded on its own.
	SourceSystemLog SourceKind = "system_generated_log"

	// SourceDocumentChunk is one chunk of an uploaded document.
	SourceDocumentChunk SourceKind = "document_chunk"

	// SourceChatMessage is a message from an assistant conversation.
	SourceChatMessage SourceKind = "chat_message"
)

// Valid reports whether k is a known source kind.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceManualInteraction, SourceSystemLog, SourceDocumentChunk, SourceChatMessage:
		return true
	}
	return false
}

// AllSourceKinds returns every known source kind.
func AllSourceKinds() []SourceKind {
	return []SourceKind{
		SourceManualInteraction,
		SourceSystemLog,
		SourceDocumentChunk,
		SourceChatMessage,
	}
}

// Unit is one retrievable knowledge fragment.
//
// ScopeRef names the business entity the unit belongs to (a client ID,
// a project ID); empty means organization-wide. DocumentID and
// ChunkIndex are set only for document_chunk units.
type Unit struct {
	ID         uuid.UUID         `json:"id"`
	ScopeRef   string            `json:"scope_ref"`
	SourceKind SourceKind        `json:"source_kind"`
	Text       string            `json:"text"`
	Embedding  []float32         `json:"-"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	DocumentID *uuid.UUID        `json:"document_id,omitempty"`
	ChunkIndex int               `json:"chunk_index"`
	Active     bool              `json:"active"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Document records one ingested file and groups its chunk units.
// Deleting a document cascades to its units.
type Document struct {
	ID         uuid.UUID `json:"id"`
	ScopeRef   string    `json:"scope_ref"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Result is a unit returned by nearest-neighbor search, with its cosine
// similarity to the query vector (1 - distance, in [-1, 1]).
type Result struct {
	Unit       Unit    `json:"unit"`
	Similarity float64 `json:"similarity"`
}

// Stats summarizes what a scope's knowledge base contains.
type Stats struct {
	TotalUnits     int                `json:"total_units"`
	TotalDocuments int                `json:"total_documents"`
	BySource       map[SourceKind]int `json:"by_source"`
}

// SearchOption configures a Nearest call.
type SearchOption func(*searchConfig)

type searchConfig struct {
	limit int
	kinds []SourceKind
}

// WithLimit sets the maximum number of results. Values below 1 keep the
// store default; the retrieval layer enforces the system-wide ceiling.
func WithLimit(n int) SearchOption {
	return func(c *searchConfig) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithKinds restricts results to the given source kinds.
func WithKinds(kinds ...SourceKind) SearchOption {
	return func(c *searchConfig) {
		c.kinds = kinds
	}
}
