package telegrambot

import (
	"fmt"

	"github.com/lueurxax/teledigest/internal/textsplit"
)

const (
	// Telegram rejects messages above 4096 UTF-16 code units; 4000 leaves
	// headroom and footerReserve covers the longest page footer.
	tgMaxLen      = 4000
	footerReserve = 32
)

// ChunksWithFooter prepares text for delivery: a single-chunk text is
// returned verbatim, a multi-chunk one gets a page footer appended to
// every chunk so readers can tell the parts apart.
func ChunksWithFooter(text string) []string {
	chunks := textsplit.Split(text, tgMaxLen-footerReserve)
	if len(chunks) == 1 {
		return chunks
	}

	out := make([]string, len(chunks))
	for i, chunk := range chunks {
		out[i] = chunk + fmt.Sprintf("\n<i>— message %d of %d —</i>", i+1, len(chunks))
	}

	return out
}
