// Package ai defines the embedding and generation capabilities used by the
// knowledge layer, plus their Google (genai) and unconfigured implementations.
//
// Design rule: AI backends are an enhancement, not a dependency of
// correctness. Embedding outages degrade to the neutral vector and
// generation outages degrade to ErrGenerationUnavailable — neither may ever
// block a business write. Callers therefore receive an Embedding value from
// Embed even when the backend is down; only invalid input is an error.
package ai

import (
	"context"
	"errors"
	"time"
)

// VectorDim is the fixed embedding dimensionality for the whole system.
// It must match the vector(...) column width in db/migrations; the store
// rejects vectors of any other length.
const VectorDim = 1536

// Timeouts for outbound AI calls. A slow backend is treated identically to
// an unreachable one so the business-write path is never stalled.
const (
	// EmbedTimeout bounds a single embedding call.
	EmbedTimeout = 15 * time.Second

	// GenerateTimeout bounds a single generation call.
	GenerateTimeout = 30 * time.Second
)

// ErrEmptyText indicates the input text was empty after trimming.
// This is the only error Embed returns; backend failures degrade instead.
var ErrEmptyText = errors.New("text is empty")

// ErrGenerationUnavailable indicates the generation backend is unconfigured,
// unreachable, or timed out. Callers absorb it into an advisory response;
// it must never cross the core/business boundary.
var ErrGenerationUnavailable = errors.New("generation backend unavailable")

// Embedding is the result of embedding one text.
// Degraded marks the neutral fallback produced when the backend could not
// be reached — a valid, retrievable state that an offline re-embedding job
// can identify and repair later.
type Embedding struct {
	Values   []float32
	Degraded bool
}

// Neutral returns the deterministic fallback embedding: all zeros,
// VectorDim wide, flagged degraded.
func Neutral() Embedding {
	return Embedding{
		Values:   make([]float32, VectorDim),
		Degraded: true,
	}
}

// Embedder converts text to a fixed-length vector.
//
// Implementations guarantee the returned embedding has exactly VectorDim
// values and never return an error for backend unavailability — they return
// Neutral() instead. The only error is ErrEmptyText.
type Embedder interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}

// Generator produces a text completion for a prompt.
// Implementations return ErrGenerationUnavailable (possibly wrapped) when
// the backend is unconfigured, unreachable, or over deadline.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
