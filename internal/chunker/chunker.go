// Package chunker splits long text into bounded, overlapping passages,
// preferring to break on paragraph, line, sentence, and clause boundaries
// before falling back to word or character boundaries.
package chunker

import "strings"

// separators are tried in order; the first one present in a piece of text
// splits it, and any resulting piece still over chunkSize is split again by
// the next separator in the list.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", ", ", " ", ""}

// RecursiveChunker splits text with a fixed separator preference list.
type RecursiveChunker struct{}

// New returns a RecursiveChunker.
func New() *RecursiveChunker {
	return &RecursiveChunker{}
}

// Chunk splits text into a finite ordered sequence of strings of at most
// chunkSize runes, overlapping adjacent chunks by overlap runes where
// possible. Empty or whitespace-only input produces an empty sequence.
func (c *RecursiveChunker) Chunk(text string, chunkSize, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	pieces := split(text, separators, chunkSize)
	return merge(pieces, chunkSize, overlap)
}

// split recursively breaks text on the first applicable separator, returning
// pieces that are themselves recursively split until no separator applies or
// the separator list is exhausted.
func split(text string, seps []string, chunkSize int) []string {
	if text == "" {
		return nil
	}
	if len(seps) == 0 {
		return []string{text}
	}

	sep := seps[0]
	rest := seps[1:]

	if sep == "" {
		return splitRunes(text)
	}
	if !strings.Contains(text, sep) {
		return split(text, rest, chunkSize)
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		// Re-attach the separator to every part but the last, so
		// concatenation of pieces reconstructs the input.
		if i < len(parts)-1 {
			p += sep
		}
		if runeLen(p) > chunkSize {
			out = append(out, split(p, rest, chunkSize)...)
			continue
		}
		out = append(out, p)
	}
	return out
}

// splitRunes breaks text into individual runes, the last resort in the
// separator preference list.
func splitRunes(text string) []string {
	runes := []rune(text)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

// merge greedily packs the split pieces into chunks of at most chunkSize
// runes, carrying the trailing overlap runes of a finished chunk into the
// next one.
func merge(pieces []string, chunkSize, overlap int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, strings.TrimRight(current.String(), " "))
	}

	for _, p := range pieces {
		if runeLen(current.String())+runeLen(p) > chunkSize && current.Len() > 0 {
			flush()
			tail := tailRunes(current.String(), overlap)
			current.Reset()
			current.WriteString(tail)
		}
		current.WriteString(p)

		// A single oversized piece (e.g. one very long word) must still be
		// emitted rather than grown forever.
		for runeLen(current.String()) > chunkSize {
			s := current.String()
			head := headRunes(s, chunkSize)
			chunks = append(chunks, head)
			tail := tailRunes(head, overlap) + s[len(head):]
			current.Reset()
			current.WriteString(tail)
		}
	}
	flush()

	return chunks
}

func runeLen(s string) int {
	return len([]rune(s))
}

func headRunes(s string, n int) string {
	r := []rune(s)
	if n >= len(r) {
		return s
	}
	return string(r[:n])
}

func tailRunes(s string, n int) string {
	r := []rune(s)
	if n >= len(r) {
		return s
	}
	if n <= 0 {
		return ""
	}
	return string(r[len(r)-n:])
}
