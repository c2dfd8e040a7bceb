package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/vyronlabs/agencyos/internal/log"
)

func TestNeutral(t *testing.T) {
	e := Neutral()

	if len(e.Values) != VectorDim {
		t.Fatalf("len(Values) = %d, want %d", len(e.Values), VectorDim)
	}
	if !e.Degraded {
		t.Error("Neutral() not flagged degraded")
	}
	for i, v := range e.Values {
		if v != 0 {
			t.Fatalf("Values[%d] = %v, want 0", i, v)
		}
	}
}

func TestNeutralIndependentAllocations(t *testing.T) {
	a := Neutral()
	b := Neutral()

	a.Values[0] = 1
	if b.Values[0] != 0 {
		t.Error("Neutral() allocations share backing array")
	}
}

func TestUnconfiguredEmbed(t *testing.T) {
	u := NewUnconfigured(log.NewNop())

	e, err := u.Embed(context.Background(), "quarterly revenue recap")
	if err != nil {
		t.Fatalf("Embed() = %v", err)
	}
	if !e.Degraded {
		t.Error("expected degraded embedding")
	}
	if len(e.Values) != VectorDim {
		t.Errorf("len(Values) = %d, want %d", len(e.Values), VectorDim)
	}
}

func TestUnconfiguredEmbedRejectsEmptyText(t *testing.T) {
	u := NewUnconfigured(log.NewNop())

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := u.Embed(context.Background(), text); !errors.Is(err, ErrEmptyText) {
			t.Errorf("Embed(%q) = %v, want ErrEmptyText", text, err)
		}
	}
}

func TestUnconfiguredGenerate(t *testing.T) {
	u := NewUnconfigured(log.NewNop())

	_, err := u.Generate(context.Background(), "summarize client history")
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Fatalf("Generate() = %v, want ErrGenerationUnavailable", err)
	}
}
