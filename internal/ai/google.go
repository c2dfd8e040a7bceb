package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genkitai "github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"google.golang.org/genai"

	"github.com/vyronlabs/agencyos/internal/log"
)

// Configured reports whether the Google AI backend can be used.
// The genai SDK reads GEMINI_API_KEY directly; without it callers should
// fall back to Unconfigured.
func Configured() bool {
	return os.Getenv("GEMINI_API_KEY") != ""
}

// Google implements Embedder and Generator on top of Genkit with the
// Google AI plugin.
type Google struct {
	g        *genkit.Genkit
	embedder genkitai.Embedder
	model    string
	logger   log.Logger
}

// NewGoogle initializes Genkit with the Google AI plugin and resolves the
// embedder. embedderModel is a bare model name ("gemini-embedding-001");
// generationModel is provider-qualified ("googleai/gemini-2.5-flash").
func NewGoogle(ctx context.Context, embedderModel, generationModel string, logger log.Logger) (*Google, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with googleai plugin")
	}

	embedder := googlegenai.GoogleAIEmbedder(g, embedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("looking up embedder %q", embedderModel)
	}

	return &Google{
		g:        g,
		embedder: embedder,
		model:    generationModel,
		logger:   logger,
	}, nil
}

// Embed converts text to a VectorDim-wide vector.
// Backend failures and malformed responses degrade to Neutral(); the write
// path must not fail because the embedding provider is down.
func (p *Google) Embed(ctx context.Context, text string) (Embedding, error) {
	if strings.TrimSpace(text) == "" {
		return Embedding{}, ErrEmptyText
	}

	ctx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()

	dim := int32(VectorDim)
	resp, err := p.embedder.Embed(ctx, &genkitai.EmbedRequest{
		Input:   []*genkitai.Document{genkitai.DocumentFromText(text, nil)},
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		p.logger.Warn("embedding backend unavailable, using neutral vector",
			"error", err)
		return Neutral(), nil
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) != VectorDim {
		p.logger.Warn("embedding backend returned unexpected shape, using neutral vector",
			"embeddings", len(resp.Embeddings))
		return Neutral(), nil
	}

	return Embedding{Values: resp.Embeddings[0].Embedding}, nil
}

// Generate produces a completion for the prompt.
func (p *Google) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, GenerateTimeout)
	defer cancel()

	resp, err := genkit.Generate(ctx, p.g,
		genkitai.WithModelName(p.model),
		genkitai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	return resp.Text(), nil
}
