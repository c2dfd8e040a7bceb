// Package retrieve answers "what do we know about X" queries: it embeds
// the query and returns the nearest active knowledge units of one scope.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"github.com/vyronlabs/agencyos/internal/ai"
	"github.com/vyronlabs/agencyos/internal/brain"
	"github.com/vyronlabs/agencyos/internal/log"
)

const (
	// DefaultK is the result count when the caller does not ask for one.
	DefaultK = 3

	// KMax is the hard ceiling on result count. Larger K drowns the
	// answer composer's prompt in marginal context; requests above the
	// ceiling are clamped, not rejected.
	KMax = 8
)

// Searcher is the slice of the knowledge store retrieval needs.
type Searcher interface {
	Nearest(ctx context.Context, vec []float32, scope string, opts ...brain.SearchOption) ([]brain.Result, error)
}

// Engine embeds queries and searches one scope's knowledge.
type Engine struct {
	store    Searcher
	embedder ai.Embedder
	logger   log.Logger
}

// New creates a retrieval engine.
func New(store Searcher, embedder ai.Embedder, logger log.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Engine{store: store, embedder: embedder, logger: logger}, nil
}

// Retrieve returns up to k units of the given scope, most similar first.
// k is clamped to [1, KMax]; zero or negative means DefaultK. Passing
// kinds restricts results to those source kinds.
//
// A degraded query embedding (backend down) still searches — results are
// then ordered arbitrarily rather than failing the caller.
func (e *Engine) Retrieve(ctx context.Context, query, scope string, k int,
	kinds ...brain.SourceKind) ([]brain.Result, error) {

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, brain.ErrEmptyContent
	}

	switch {
	case k <= 0:
		k = DefaultK
	case k > KMax:
		e.logger.Debug("clamping retrieval k", "requested", k, "max", KMax)
		k = KMax
	}

	emb, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if emb.Degraded {
		e.logger.Warn("query embedded with neutral fallback, relevance degraded",
			"scope", scope)
	}

	opts := []brain.SearchOption{brain.WithLimit(k)}
	if len(kinds) > 0 {
		opts = append(opts, brain.WithKinds(kinds...))
	}

	results, err := e.store.Nearest(ctx, emb.Values, scope, opts...)
	if err != nil {
		return nil, fmt.Errorf("searching scope %q: %w", scope, err)
	}
	return results, nil
}
