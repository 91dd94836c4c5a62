package telegrambot

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/teledigest/internal/textsplit"
)

func TestChunksWithFooter_SingleChunkVerbatim(t *testing.T) {
	text := "short digest\nwith two lines"

	chunks := ChunksWithFooter(text)

	assert.Equal(t, []string{text}, chunks, "a fitting text must not get a footer")
}

func TestChunksWithFooter_MultiChunkNumbering(t *testing.T) {
	text := strings.Repeat("a", 9000)

	chunks := ChunksWithFooter(text)

	assert.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.Contains(t, chunk, "<i>— message ", "chunk %d missing footer", i)
		assert.True(t, strings.HasSuffix(chunk, "—</i>"), "chunk %d footer not at the end", i)
	}

	assert.Contains(t, chunks[0], "message 1 of "+strconv.Itoa(len(chunks)))
	assert.Contains(t, chunks[len(chunks)-1], "message "+strconv.Itoa(len(chunks))+" of "+strconv.Itoa(len(chunks)))
}

func TestChunksWithFooter_EveryChunkWithinTelegramLimit(t *testing.T) {
	inputs := []string{
		strings.Repeat("x", 12000),
		strings.Repeat("🔥 новини дня\n", 800),
	}

	for _, in := range inputs {
		for i, chunk := range ChunksWithFooter(in) {
			assert.LessOrEqual(t, textsplit.UTF16Len(chunk), tgMaxLen, "chunk %d over budget", i)
		}
	}
}
