package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_EmptyInput(t *testing.T) {
	c := New()
	assert.Equal(t, []string{}, c.Chunk("", 1000, 200))
	assert.Equal(t, []string{}, c.Chunk("   \n\t  ", 1000, 200))
}

func TestChunk_ShorterThanChunkSize(t *testing.T) {
	c := New()
	out := c.Chunk("a short transcript line.", 1000, 200)
	require.Len(t, out, 1)
	assert.Equal(t, "a short transcript line.", out[0])
}

func TestChunk_SplitsOnParagraphBreaksFirst(t *testing.T) {
	c := New()
	text := strings.Repeat("alpha ", 100) + "\n\n" + strings.Repeat("beta ", 100)
	out := c.Chunk(text, 400, 50)
	require.NotEmpty(t, out)
	for _, chunk := range out {
		assert.LessOrEqual(t, len([]rune(chunk)), 400)
	}
}

func TestChunk_OverlapCarriesBetweenChunks(t *testing.T) {
	c := New()
	text := strings.Repeat("word ", 400)
	out := c.Chunk(text, 100, 20)
	require.Greater(t, len(out), 1)
	// the tail of one chunk should share characters with the head of the next
	tail := out[0][max(0, len(out[0])-20):]
	assert.Contains(t, out[1], strings.TrimSpace(tail)[:min(5, len(strings.TrimSpace(tail)))])
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
