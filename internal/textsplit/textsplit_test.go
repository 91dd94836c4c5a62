package textsplit

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestUTF16Len(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"ascii", "hello", 5},
		{"cyrillic bmp", "війна", 5},
		{"emoji surrogate pair", "🔥", 2},
		{"mixed", "a🔥b", 4},
		{"newline", "a\nb", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UTF16Len(tt.input); got != tt.want {
				t.Errorf("UTF16Len(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestUTF16Len_AtLeastRuneCount(t *testing.T) {
	inputs := []string{"", "plain", "змішаний text", "🔥🤖", "a🔥b\nc", "🇺🇦 прапор"}

	for _, in := range inputs {
		runeCount := utf8.RuneCountInString(in)

		if got := UTF16Len(in); got < runeCount {
			t.Errorf("UTF16Len(%q) = %d, less than rune count %d", in, got, runeCount)
		}
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	chunks := Split("", 4000)

	if len(chunks) != 1 || chunks[0] != "" {
		t.Errorf("Split(\"\", 4000) = %v, want single empty chunk", chunks)
	}
}

func TestSplit_FitsInOneChunk(t *testing.T) {
	chunks := Split("line1\nline2", 4000)

	if len(chunks) != 1 || chunks[0] != "line1\nline2" {
		t.Errorf("Split() = %v, want the input unchanged in one chunk", chunks)
	}
}

func TestSplit_RejoinLossless(t *testing.T) {
	// No line exceeds the budget, so no hard split occurs and the
	// newline-join of the chunks must reconstruct the input exactly.
	text := "alpha\nbeta\ngamma\ndelta\nepsilon"

	chunks := Split(text, 12)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}

	if got := strings.Join(chunks, "\n"); got != text {
		t.Errorf("rejoined = %q, want %q", got, text)
	}
}

func TestSplit_HardSplitLongLine(t *testing.T) {
	line := strings.Repeat("a", 9000)

	chunks := Split(line, 4000)

	wantLens := []int{4000, 4000, 1000}
	if len(chunks) != len(wantLens) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(wantLens))
	}

	for i, want := range wantLens {
		if got := UTF16Len(chunks[i]); got != want {
			t.Errorf("chunk %d length = %d, want %d", i, got, want)
		}
	}

	if got := strings.Join(chunks, ""); got != line {
		t.Error("concatenated hard-split chunks do not reconstruct the input")
	}
}

func TestSplit_EveryChunkWithinBudget(t *testing.T) {
	inputs := []string{
		"",
		"short",
		strings.Repeat("x", 9000),
		strings.Repeat("рядок з кирилицею\n", 300),
		strings.Repeat("🔥", 3000),
		"mixed 🔥 line\n" + strings.Repeat("b", 5000) + "\ntail",
	}

	const budget = 4000

	for _, in := range inputs {
		chunks := Split(in, budget)

		if len(chunks) == 0 {
			t.Fatal("Split returned no chunks")
		}

		for i, c := range chunks {
			if got := UTF16Len(c); got > budget {
				t.Errorf("chunk %d exceeds budget: %d > %d", i, got, budget)
			}
		}
	}
}

func TestSplit_SurrogatePairNotBroken(t *testing.T) {
	// An odd budget over a run of two-unit characters must not split a
	// character in half: each chunk holds floor(budget/2) emoji.
	line := strings.Repeat("🔥", 10)

	chunks := Split(line, 5)

	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is not valid UTF-8", i)
		}

		if got := UTF16Len(c); got > 5 {
			t.Errorf("chunk %d length = %d, want <= 5", i, got)
		}
	}

	if got := strings.Join(chunks, ""); got != line {
		t.Error("chunks do not reconstruct the input")
	}
}

func TestSplit_PacksLinesGreedily(t *testing.T) {
	// Three 6-unit lines with a 13-unit budget: two fit with the joining
	// newline (6+1+6), the third starts a new chunk.
	chunks := Split("line_1\nline_2\nline_3", 13)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks %v, want 2", len(chunks), chunks)
	}

	if chunks[0] != "line_1\nline_2" || chunks[1] != "line_3" {
		t.Errorf("chunks = %v, want [line_1\\nline_2 line_3]", chunks)
	}
}
