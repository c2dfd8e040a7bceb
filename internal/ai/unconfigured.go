package ai

import (
	"context"
	"strings"

	"github.com/vyronlabs/agencyos/internal/log"
)

// Unconfigured is the AI implementation used when no API key is present.
// Embeddings are always neutral and generation always reports
// ErrGenerationUnavailable, so ingestion and retrieval keep working with
// degraded relevance and answers fall back to the advisory message.
type Unconfigured struct{}

// NewUnconfigured returns the no-backend AI implementation and logs the
// degraded mode once, at startup.
func NewUnconfigured(logger log.Logger) *Unconfigured {
	if logger != nil {
		logger.Warn("GEMINI_API_KEY not set, AI features run in degraded mode")
	}
	return &Unconfigured{}
}

// Embed returns the neutral vector for any non-empty text.
func (u *Unconfigured) Embed(_ context.Context, text string) (Embedding, error) {
	if strings.TrimSpace(text) == "" {
		return Embedding{}, ErrEmptyText
	}
	return Neutral(), nil
}

// Generate always fails with ErrGenerationUnavailable.
func (u *Unconfigured) Generate(context.Context, string) (string, error) {
	return "", ErrGenerationUnavailable
}
