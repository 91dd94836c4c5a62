// Package sanitize normalizes inbound Telegram message text before storage.
//
// The filter is deliberately lossy: URLs, mentions, hashtags, emoji and
// other symbols carry no weight for retrieval or summarization, so they are
// stripped rather than escaped.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Matches common URL patterns.
var urlRe = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)

// @mentions and #hashtags (kept simple on purpose).
var mentionHashtagRe = regexp.MustCompile(`[@#][\p{L}\p{N}_]+`)

// Collapse all whitespace to a single space.
var wsRe = regexp.MustCompile(`\s+`)

// Sanitize returns a store-safe version of message text.
//
// Removes URLs, @mentions, #hashtags, emoji, symbols and control
// characters. Keeps Unicode letters and numbers (all scripts),
// punctuation, and regular whitespace. Always returns a string,
// possibly empty.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	// Normalize to reduce odd unicode variants (e.g. full-width forms).
	text = norm.NFKC.String(text)

	// Strip URLs early, they often contain lots of punctuation and symbols.
	text = urlRe.ReplaceAllString(text, "")

	text = mentionHashtagRe.ReplaceAllString(text, "")

	var sb strings.Builder

	sb.Grow(len(text))

	for _, r := range text {
		switch {
		case unicode.IsControl(r):
			// Control and invisible characters are dropped.
		case unicode.Is(unicode.Zs, r):
			sb.WriteRune(r)
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsPunct(r):
			sb.WriteRune(r)
		default:
			// Everything else is symbol territory (emoji, pictographs,
			// math symbols) and is removed.
		}
	}

	out := wsRe.ReplaceAllString(sb.String(), " ")

	return strings.TrimSpace(out)
}

// StripMarkdownFence removes outer ``` or ```markdown fences so Telegram
// can render the completion output directly.
func StripMarkdownFence(text string) string {
	if text == "" {
		return text
	}

	stripped := strings.TrimSpace(text)
	if !strings.HasPrefix(stripped, "```") {
		return text
	}

	lines := strings.Split(stripped, "\n")

	if strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}

	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
