package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"

	"github.com/vyronlabs/agencyos/internal/ai"
)

// StaticEmbedder produces a deterministic unit vector derived from the
// text, so identical texts always embed identically and distinct texts
// are near-orthogonal. Similarity ordering in tests is therefore stable
// without a live backend.
type StaticEmbedder struct{}

// Embed implements ai.Embedder.
func (StaticEmbedder) Embed(_ context.Context, text string) (ai.Embedding, error) {
	if strings.TrimSpace(text) == "" {
		return ai.Embedding{}, ai.ErrEmptyText
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64()))) // #nosec G404 -- deterministic test vectors

	vals := make([]float32, ai.VectorDim)
	var norm float64
	for i := range vals {
		v := rng.Float64()*2 - 1
		vals[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vals {
		vals[i] = float32(float64(vals[i]) / norm)
	}

	return ai.Embedding{Values: vals}, nil
}

// StaticGenerator returns a fixed reply or a fixed error, recording the
// last prompt it saw.
type StaticGenerator struct {
	Reply string
	Err   error

	LastPrompt string
}

// Generate implements ai.Generator.
func (g *StaticGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.LastPrompt = prompt
	if g.Err != nil {
		return "", g.Err
	}
	return g.Reply, nil
}
