package brain

import (
	"strings"
)

// Chunking defaults. Sized so a chunk carries enough context to answer a
// question on its own while staying well under embedding input limits.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
)

// chunkSeparators, in preference order. The empty string is the terminal
// fallback: split anywhere.
var chunkSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker splits long text into overlapping chunks, preferring paragraph
// and sentence boundaries over arbitrary cuts.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker returns a chunker with the given chunk size and overlap in
// runes. Non-positive values take the defaults; overlap is clamped below
// size.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split divides text into chunks of at most the configured size.
// Consecutive chunks share the configured overlap so context that
// straddles a boundary survives in at least one chunk. Whitespace-only
// input is rejected; text already within the size limit comes back as a
// single chunk.
func (c *Chunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	var chunks []string
	for _, chunk := range c.split(text, chunkSeparators) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// split recursively divides text using the first separator that occurs in
// it, falling back to finer separators for fragments that are still too
// large.
func (c *Chunker) split(text string, seps []string) []string {
	if len([]rune(text)) <= c.size {
		return []string{text}
	}

	sep := ""
	rest := seps
	for i, s := range seps {
		if s == "" {
			rest = nil
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}
	if sep == "" {
		return c.hardSplit(text)
	}

	// Keep the separator attached to the preceding fragment so joins
	// reconstruct the original text.
	parts := strings.SplitAfter(text, sep)

	var chunks []string
	var cur strings.Builder
	curLen := 0
	for _, part := range parts {
		partLen := len([]rune(part))

		// A single fragment over the limit needs the next separator level.
		if partLen > c.size {
			if curLen > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
				curLen = 0
			}
			chunks = append(chunks, c.split(part, rest)...)
			continue
		}

		if curLen+partLen > c.size && curLen > 0 {
			chunks = append(chunks, cur.String())
			tail := overlapTail(cur.String(), c.overlap)
			cur.Reset()
			curLen = 0
			if len([]rune(tail))+partLen <= c.size {
				cur.WriteString(tail)
				curLen = len([]rune(tail))
			}
		}
		cur.WriteString(part)
		curLen += partLen
	}
	if curLen > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// hardSplit cuts text into fixed-size rune windows stepping by
// size-overlap. Last resort for text with no usable separators.
func (c *Chunker) hardSplit(text string) []string {
	runes := []rune(text)
	step := c.size - c.overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// overlapTail returns the last n runes of s, cut forward to the next word
// boundary so the overlap does not start mid-word.
func overlapTail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	tail := runes[len(runes)-n:]
	for i, r := range tail {
		if r == ' ' || r == '\n' {
			return string(tail[i+1:])
		}
	}
	return string(tail)
}
