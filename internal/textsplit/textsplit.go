// Package textsplit splits outbound text into Telegram-sized chunks.
//
// Telegram enforces a hard limit of 4096 UTF-16 code units per message.
// Characters outside the Basic Multilingual Plane (most emoji) encode as
// two code units, so counting runes or bytes would undercount the real
// size and let through messages Telegram still rejects.
package textsplit

import (
	"strings"
	"unicode/utf16"
)

// UTF16Len returns the number of UTF-16 code units in text.
func UTF16Len(text string) int {
	n := 0

	for _, r := range text {
		if utf16.RuneLen(r) == 2 {
			n += 2
		} else {
			n++
		}
	}

	return n
}

// Split splits text into chunks whose UTF-16 length is at most maxUnits,
// preferring line boundaries so that markup tags are never split.
//
// A single line longer than maxUnits (a long URL, a paragraph without
// newlines) is hard-split by character position as a last resort.
// Always returns at least one element, an empty string for empty input,
// so callers can index the result without a length check.
func Split(text string, maxUnits int) []string {
	var (
		chunks     []string
		chunkLines []string
	)

	// UTF-16 length of the accumulated chunk, including newlines.
	chunkUnits := 0

	for _, line := range strings.Split(text, "\n") {
		subLines := []string{line}
		if UTF16Len(line) > maxUnits {
			subLines = hardSplit(line, maxUnits)
		}

		for _, sub := range subLines {
			// +1 for the newline that Join will re-add. '\n' is in the
			// BMP so it always costs exactly one unit.
			newlineCost := 0
			if len(chunkLines) > 0 {
				newlineCost = 1
			}

			needed := UTF16Len(sub) + newlineCost

			if len(chunkLines) > 0 && chunkUnits+needed > maxUnits {
				chunks = append(chunks, strings.Join(chunkLines, "\n"))
				chunkLines = []string{sub}
				chunkUnits = UTF16Len(sub)
			} else {
				chunkLines = append(chunkLines, sub)
				chunkUnits += needed
			}
		}
	}

	if len(chunkLines) > 0 {
		chunks = append(chunks, strings.Join(chunkLines, "\n"))
	}

	if len(chunks) == 0 {
		return []string{""}
	}

	return chunks
}

// hardSplit splits a single overlong line into sub-chunks by character
// position, binary-searching the largest rune prefix that fits the budget.
func hardSplit(line string, maxUnits int) []string {
	var parts []string

	runes := []rune(line)

	for UTF16Len(string(runes)) > maxUnits {
		lo, hi := 0, len(runes)

		for lo+1 < hi {
			mid := (lo + hi) / 2
			if UTF16Len(string(runes[:mid])) <= maxUnits {
				lo = mid
			} else {
				hi = mid
			}
		}

		if lo == 0 {
			// Budget smaller than a single character; take one rune to
			// guarantee progress.
			lo = 1
		}

		parts = append(parts, string(runes[:lo]))
		runes = runes[lo:]
	}

	return append(parts, string(runes))
}
