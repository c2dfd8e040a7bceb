// Package assistant composes grounded answers: it pulls the most relevant
// knowledge units for a question, builds a bounded prompt from them plus
// recent conversation turns, and asks the generation backend.
//
// Generation problems never surface as errors. When the backend is
// unconfigured or unreachable the composer returns AdvisoryMessage, so
// the rest of the product keeps working without an API key.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/vyronlabs/agencyos/internal/ai"
	"github.com/vyronlabs/agencyos/internal/brain"
	"github.com/vyronlabs/agencyos/internal/log"
	"github.com/vyronlabs/agencyos/internal/retrieve"
)

// MaxHistoryTurns bounds how many prior conversation turns enter the
// prompt. Older turns are dropped, newest kept.
const MaxHistoryTurns = 10

// AdvisoryMessage is returned verbatim when the generation backend is
// unavailable. Fixed wording so clients can rely on it.
const AdvisoryMessage = "The AI assistant is not available right now. " +
	"Your data is saved and knowledge search keeps working; " +
	"set GEMINI_API_KEY to enable generated answers."

// Turn is one prior exchange in the conversation.
type Turn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// Retriever is the slice of the retrieval engine the composer needs.
type Retriever interface {
	Retrieve(ctx context.Context, query, scope string, k int, kinds ...brain.SourceKind) ([]brain.Result, error)
}

// Recorder persists chat turns as knowledge units. Optional; when nil,
// conversations are not remembered.
type Recorder interface {
	LogInteraction(ctx context.Context, scope string, kind brain.SourceKind,
		text string, metadata map[string]string) (*brain.Unit, error)
}

// Composer builds grounded answers for one question at a time.
type Composer struct {
	retriever Retriever
	generator ai.Generator
	recorder  Recorder
	logger    log.Logger
}

// New creates a composer. recorder may be nil.
func New(retriever Retriever, generator ai.Generator, recorder Recorder, logger log.Logger) (*Composer, error) {
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Composer{
		retriever: retriever,
		generator: generator,
		recorder:  recorder,
		logger:    logger,
	}, nil
}

// Answer responds to message using the knowledge of scopeRef.
//
// The error return carries storage failures from retrieval only.
// Generation failures degrade to AdvisoryMessage with a nil error.
func (c *Composer) Answer(ctx context.Context, history []Turn, message, scopeRef string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", brain.ErrEmptyContent
	}

	results, err := c.retriever.Retrieve(ctx, message, scopeRef, retrieve.DefaultK)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}

	prompt := buildPrompt(results, history, message)

	answer, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("generation unavailable, returning advisory answer",
			"scope", scopeRef, "error", err)
		return AdvisoryMessage, nil
	}

	c.recordTurns(ctx, scopeRef, message, answer)
	return answer, nil
}

// recordTurns persists the exchange as chat_message units, best-effort.
func (c *Composer) recordTurns(ctx context.Context, scopeRef, message, answer string) {
	if c.recorder == nil {
		return
	}
	pairs := []struct{ role, text string }{
		{"user", message},
		{"assistant", answer},
	}
	for _, p := range pairs {
		_, err := c.recorder.LogInteraction(ctx, scopeRef, brain.SourceChatMessage,
			p.text, map[string]string{"role": p.role})
		if err != nil {
			c.logger.Warn("recording chat turn", "role", p.role, "error", err)
		}
	}
}

// buildPrompt serializes context units, bounded history, and the question
// into a single prompt.
func buildPrompt(results []brain.Result, history []Turn, message string) string {
	var b strings.Builder

	b.WriteString("You are the assistant of a business-management platform. ")
	b.WriteString("Answer the question using only the knowledge context below. ")
	b.WriteString("If the context does not contain the answer, say so plainly instead of guessing.\n\n")

	b.WriteString("Knowledge context:\n")
	if len(results) == 0 {
		b.WriteString("(no relevant knowledge recorded for this scope)\n")
	}
	for _, r := range results {
		fmt.Fprintf(&b, "- [%s] %s\n", r.Unit.SourceKind, sanitize(r.Unit.Text))
	}

	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, turn := range history {
			role := "User"
			if turn.Role == "assistant" {
				role = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, sanitize(turn.Text))
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(sanitize(message))
	return b.String()
}

// sanitize keeps stored text from injecting structure into the prompt:
// strips tag characters and collapses newlines.
func sanitize(s string) string {
	return strings.NewReplacer(
		"<", "",
		">", "",
		"`", "",
		"\n", " ",
		"\r", " ",
	).Replace(s)
}
