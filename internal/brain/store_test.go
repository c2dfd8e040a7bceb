package brain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vyronlabs/agencyos/internal/brain"
	"github.com/vyronlabs/agencyos/internal/log"
	"github.com/vyronlabs/agencyos/internal/testutil"
)

// embed returns the deterministic test embedding for text.
func embed(t *testing.T, text string) []float32 {
	t.Helper()
	e, err := testutil.StaticEmbedder{}.Embed(context.Background(), text)
	if err != nil {
		t.Fatalf("embedding %q: %v", text, err)
	}
	return e.Values
}

func newUnit(t *testing.T, scope, text string, kind brain.SourceKind) *brain.Unit {
	t.Helper()
	return &brain.Unit{
		ScopeRef:   scope,
		SourceKind: kind,
		Text:       text,
		Embedding:  embed(t, text),
	}
}

func TestStore(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store, err := brain.New(db.Pool, log.NewNop())
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	t.Run("append and nearest", func(t *testing.T) {
		scope := "client-nearest"
		texts := []string{
			"Kickoff call covered project milestones and staffing.",
			"Invoice 2041 was paid three days late.",
			"The client prefers async communication over meetings.",
		}
		for _, text := range texts {
			u := newUnit(t, scope, text, brain.SourceManualInteraction)
			if err := store.Append(ctx, u); err != nil {
				t.Fatalf("Append(%q) = %v", text, err)
			}
			if u.ID == uuid.Nil {
				t.Error("Append did not populate ID")
			}
			if u.CreatedAt.IsZero() {
				t.Error("Append did not populate CreatedAt")
			}
		}

		results, err := store.Nearest(ctx, embed(t, texts[1]), scope, brain.WithLimit(2))
		if err != nil {
			t.Fatalf("Nearest() = %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("len(results) = %d, want 2", len(results))
		}
		if results[0].Unit.Text != texts[1] {
			t.Errorf("top result = %q, want %q", results[0].Unit.Text, texts[1])
		}
		if results[0].Similarity < 0.99 {
			t.Errorf("self-similarity = %f, want ~1", results[0].Similarity)
		}
		if results[1].Similarity > results[0].Similarity {
			t.Error("results not ordered by similarity")
		}
	})

	t.Run("scope isolation", func(t *testing.T) {
		text := "Renewal negotiation notes for the annual contract."
		scoped := newUnit(t, "client-isolated", text, brain.SourceManualInteraction)
		global := newUnit(t, "", text+" (org-wide)", brain.SourceSystemLog)
		for _, u := range []*brain.Unit{scoped, global} {
			if err := store.Append(ctx, u); err != nil {
				t.Fatalf("Append() = %v", err)
			}
		}

		results, err := store.Nearest(ctx, embed(t, text), "client-isolated")
		if err != nil {
			t.Fatalf("Nearest(scoped) = %v", err)
		}
		for _, r := range results {
			if r.Unit.ScopeRef != "client-isolated" {
				t.Errorf("scoped search leaked unit from scope %q", r.Unit.ScopeRef)
			}
		}

		results, err = store.Nearest(ctx, embed(t, text), "")
		if err != nil {
			t.Fatalf("Nearest(global) = %v", err)
		}
		if len(results) == 0 {
			t.Fatal("global search returned nothing")
		}
		for _, r := range results {
			if r.Unit.ScopeRef != "" {
				t.Errorf("global search leaked unit from scope %q", r.Unit.ScopeRef)
			}
		}
	})

	t.Run("validation", func(t *testing.T) {
		u := newUnit(t, "client-val", "valid text", brain.SourceManualInteraction)
		u.Embedding = u.Embedding[:100]
		if err := store.Append(ctx, u); !errors.Is(err, brain.ErrDimensionMismatch) {
			t.Errorf("short embedding: err = %v, want ErrDimensionMismatch", err)
		}

		u = newUnit(t, "client-val", "valid text", brain.SourceManualInteraction)
		u.Text = ""
		if err := store.Append(ctx, u); !errors.Is(err, brain.ErrEmptyContent) {
			t.Errorf("empty text: err = %v, want ErrEmptyContent", err)
		}

		u = newUnit(t, "client-val", "valid text", "carrier_pigeon")
		if err := store.Append(ctx, u); !errors.Is(err, brain.ErrInvalidSourceKind) {
			t.Errorf("bad kind: err = %v, want ErrInvalidSourceKind", err)
		}

		if _, err := store.Nearest(ctx, make([]float32, 3), "client-val"); !errors.Is(err, brain.ErrDimensionMismatch) {
			t.Errorf("short query vector: err = %v, want ErrDimensionMismatch", err)
		}
	})

	t.Run("deactivate", func(t *testing.T) {
		scope := "client-deactivate"
		text := "Support ticket about the export feature."
		u := newUnit(t, scope, text, brain.SourceSystemLog)
		if err := store.Append(ctx, u); err != nil {
			t.Fatalf("Append() = %v", err)
		}

		if err := store.Deactivate(ctx, u.ID); err != nil {
			t.Fatalf("Deactivate() = %v", err)
		}
		// Idempotent on an already inactive unit.
		if err := store.Deactivate(ctx, u.ID); err != nil {
			t.Fatalf("second Deactivate() = %v", err)
		}

		results, err := store.Nearest(ctx, embed(t, text), scope)
		if err != nil {
			t.Fatalf("Nearest() = %v", err)
		}
		for _, r := range results {
			if r.Unit.ID == u.ID {
				t.Error("deactivated unit still retrievable")
			}
		}

		if err := store.Deactivate(ctx, uuid.New()); !errors.Is(err, brain.ErrNotFound) {
			t.Errorf("unknown ID: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("documents", func(t *testing.T) {
		scope := "client-docs"
		doc := &brain.Document{ScopeRef: scope, Filename: "contract.pdf"}
		chunks := []*brain.Unit{
			{Text: "Section 1: scope of services.", Embedding: embed(t, "Section 1: scope of services.")},
			{Text: "Section 2: payment terms, net 30.", Embedding: embed(t, "Section 2: payment terms, net 30.")},
			{Text: "Section 3: termination clauses.", Embedding: embed(t, "Section 3: termination clauses.")},
		}
		if err := store.AppendDocument(ctx, doc, chunks); err != nil {
			t.Fatalf("AppendDocument() = %v", err)
		}

		docs, err := store.ListDocuments(ctx, scope)
		if err != nil {
			t.Fatalf("ListDocuments() = %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("len(docs) = %d, want 1", len(docs))
		}
		if docs[0].ChunkCount != 3 {
			t.Errorf("ChunkCount = %d, want 3", docs[0].ChunkCount)
		}

		results, err := store.Nearest(ctx, embed(t, "Section 2: payment terms, net 30."), scope)
		if err != nil {
			t.Fatalf("Nearest() = %v", err)
		}
		if len(results) == 0 {
			t.Fatal("document chunks not retrievable")
		}
		top := results[0].Unit
		if top.SourceKind != brain.SourceDocumentChunk {
			t.Errorf("SourceKind = %q, want document_chunk", top.SourceKind)
		}
		if top.DocumentID == nil || *top.DocumentID != doc.ID {
			t.Error("chunk not linked to its document")
		}
		if top.ChunkIndex != 1 {
			t.Errorf("ChunkIndex = %d, want 1", top.ChunkIndex)
		}

		if err := store.DeleteDocument(ctx, doc.ID); err != nil {
			t.Fatalf("DeleteDocument() = %v", err)
		}
		results, err = store.Nearest(ctx, embed(t, "Section 2: payment terms, net 30."), scope)
		if err != nil {
			t.Fatalf("Nearest() after delete = %v", err)
		}
		if len(results) != 0 {
			t.Errorf("len(results) = %d after cascade delete, want 0", len(results))
		}
		if err := store.DeleteDocument(ctx, doc.ID); !errors.Is(err, brain.ErrNotFound) {
			t.Errorf("second DeleteDocument: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("rollback on invalid chunk", func(t *testing.T) {
		scope := "client-rollback"
		doc := &brain.Document{ScopeRef: scope, Filename: "broken.pdf"}
		chunks := []*brain.Unit{
			{Text: "A fine chunk.", Embedding: embed(t, "A fine chunk.")},
			{Text: "Bad chunk.", Embedding: make([]float32, 7)},
		}
		if err := store.AppendDocument(ctx, doc, chunks); !errors.Is(err, brain.ErrDimensionMismatch) {
			t.Fatalf("AppendDocument() = %v, want ErrDimensionMismatch", err)
		}

		docs, err := store.ListDocuments(ctx, scope)
		if err != nil {
			t.Fatalf("ListDocuments() = %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("len(docs) = %d after failed ingest, want 0", len(docs))
		}
	})

	t.Run("kinds filter", func(t *testing.T) {
		scope := "client-kinds"
		note := newUnit(t, scope, "Manually logged meeting recap.", brain.SourceManualInteraction)
		event := newUnit(t, scope, "Automated deploy notification.", brain.SourceSystemLog)
		for _, u := range []*brain.Unit{note, event} {
			if err := store.Append(ctx, u); err != nil {
				t.Fatalf("Append() = %v", err)
			}
		}

		results, err := store.Nearest(ctx, embed(t, "meeting recap"), scope,
			brain.WithKinds(brain.SourceSystemLog))
		if err != nil {
			t.Fatalf("Nearest() = %v", err)
		}
		for _, r := range results {
			if r.Unit.SourceKind != brain.SourceSystemLog {
				t.Errorf("kind filter leaked %q", r.Unit.SourceKind)
			}
		}
	})

	t.Run("recency tie-break", func(t *testing.T) {
		scope := "client-ties"
		text := "Duplicate note logged twice."
		first := newUnit(t, scope, text, brain.SourceManualInteraction)
		if err := store.Append(ctx, first); err != nil {
			t.Fatalf("Append() = %v", err)
		}
		time.Sleep(20 * time.Millisecond)
		second := newUnit(t, scope, text, brain.SourceManualInteraction)
		if err := store.Append(ctx, second); err != nil {
			t.Fatalf("Append() = %v", err)
		}

		results, err := store.Nearest(ctx, embed(t, text), scope, brain.WithLimit(2))
		if err != nil {
			t.Fatalf("Nearest() = %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("len(results) = %d, want 2", len(results))
		}
		if results[0].Unit.ID != second.ID {
			t.Error("equal-distance results not ordered newest first")
		}
	})

	t.Run("stats", func(t *testing.T) {
		scope := "client-stats"
		units := []*brain.Unit{
			newUnit(t, scope, "Logged call with procurement.", brain.SourceManualInteraction),
			newUnit(t, scope, "Contract renewal reminder fired.", brain.SourceSystemLog),
			newUnit(t, scope, "Second procurement follow-up.", brain.SourceManualInteraction),
		}
		for _, u := range units {
			if err := store.Append(ctx, u); err != nil {
				t.Fatalf("Append() = %v", err)
			}
		}

		stats, err := store.Stats(ctx, scope)
		if err != nil {
			t.Fatalf("Stats() = %v", err)
		}
		if stats.TotalUnits != 3 {
			t.Errorf("TotalUnits = %d, want 3", stats.TotalUnits)
		}
		if stats.BySource[brain.SourceManualInteraction] != 2 {
			t.Errorf("manual_interaction count = %d, want 2", stats.BySource[brain.SourceManualInteraction])
		}
		if stats.BySource[brain.SourceSystemLog] != 1 {
			t.Errorf("system_generated_log count = %d, want 1", stats.BySource[brain.SourceSystemLog])
		}
	})
}
