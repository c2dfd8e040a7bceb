package brain

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkerSingleChunk(t *testing.T) {
	c := NewChunker(0, 0)

	text := "A short note about the client's onboarding call."
	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("Split() = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunks[0] = %q, want original text", chunks[0])
	}
}

func TestChunkerEmptyInput(t *testing.T) {
	c := NewChunker(0, 0)

	for _, text := range []string{"", "   ", "\n\n\t"} {
		if _, err := c.Split(text); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Split(%q) = %v, want ErrEmptyContent", text, err)
		}
	}
}

func TestChunkerRespectsSize(t *testing.T) {
	c := NewChunker(200, 40)

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("The quarterly report covers revenue, churn and pipeline health. ")
		if i%5 == 4 {
			b.WriteString("\n\n")
		}
	}

	chunks, err := c.Split(b.String())
	if err != nil {
		t.Fatalf("Split() = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want several", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 200 {
			t.Errorf("chunk %d has %d runes, want <= 200", i, n)
		}
	}
}

func TestChunkerCoversAllContent(t *testing.T) {
	c := NewChunker(100, 20)

	paragraphs := []string{
		"First meeting with the design team went well.",
		"Budget approval is pending until the next board session.",
		"The staging environment needs a database upgrade.",
		"Client asked for a revised timeline by Friday.",
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("Split() = %v", err)
	}

	joined := strings.Join(chunks, "\n")
	for _, p := range paragraphs {
		if !strings.Contains(joined, p) {
			t.Errorf("paragraph %q missing from chunks", p)
		}
	}
}

func TestChunkerOverlap(t *testing.T) {
	c := NewChunker(100, 25)

	words := make([]string, 80)
	for i := range words {
		words[i] = "segment" + string(rune('a'+i%26))
	}
	text := strings.Join(words, " ")

	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("Split() = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want >= 2", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		first := strings.Fields(chunks[i])[0]
		if !strings.Contains(chunks[i-1], first) {
			t.Errorf("chunk %d does not overlap with chunk %d: %q not in %q",
				i, i-1, first, chunks[i-1])
		}
	}
}

func TestChunkerHardSplit(t *testing.T) {
	c := NewChunker(1000, 150)

	// No separators at all: forces fixed-window splitting.
	text := strings.Repeat("a", 2500)
	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("Split() = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 1000 {
			t.Errorf("chunk %d has %d runes, want <= 1000", i, len(chunk))
		}
	}
}

func TestChunkerKeepsRunesIntact(t *testing.T) {
	c := NewChunker(50, 10)

	text := strings.Repeat("naïve café résumé übersicht ", 30)
	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("Split() = %v", err)
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, chunk)
		}
	}
}

func TestNewChunkerClampsOverlap(t *testing.T) {
	c := NewChunker(100, 500)
	if c.overlap >= c.size {
		t.Errorf("overlap %d not clamped below size %d", c.overlap, c.size)
	}
}
