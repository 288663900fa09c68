package repl

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_paren", "(fo", 3, "fo", 1, 3},
		{"operand", "(+ 1 fo", 7, "fo", 5, 7},
		{"operator", "(+", 2, "+", 1, 2},
		{"nested", "(f (g", 5, "g", 4, 5},
		{"empty_at_boundary", "(+ 1 ", 5, "", 5, 5},
		{"empty_after_open", "(", 1, "", 1, 1},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"before_close", "(car xs)", 7, "xs", 5, 7},
		// Punctuation is part of a symbol.
		{"predicate", "(null? x", 6, "null?", 1, 6},
		{"bang", "(set! x", 5, "set!", 1, 5},
		{"hyphenated", "(list-tail", 10, "list-tail", 1, 10},
		{"multibyte", "(λx", 4, "λx", 1, 4},
		{"cursor_clamped", "abc", 10, "abc", 0, 3},
		{"negative_cursor", "abc", -1, "abc", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Find("c", []string{"car", "cdr", "cons", "cadr", "caddr"})
	if len(matches) != 5 {
		t.Fatalf("got %d matches, want 5", len(matches))
	}

	if got := renderCandidateBar(nil, 0, false, 80); got != "" {
		t.Errorf("no matches rendered %q", got)
	}

	if got := renderCandidateBar(matches, 0, false, 0); got != "" {
		t.Errorf("zero width rendered %q", got)
	}

	wide := renderCandidateBar(matches, 0, false, 80)
	for _, m := range matches {
		if !strings.Contains(stripStyles(wide), m.Str) {
			t.Errorf("wide bar %q lacks %q", stripStyles(wide), m.Str)
		}
	}

	narrow := renderCandidateBar(matches, 0, false, 12)
	if w := lipgloss.Width(narrow); w > 12 {
		t.Errorf("narrow bar width = %d, want <= 12", w)
	}

	if !strings.HasSuffix(stripStyles(narrow), "...") {
		t.Errorf("narrow bar %q not truncated", stripStyles(narrow))
	}
}

// stripStyles removes ANSI escape sequences from s.
func stripStyles(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && (s[i] < '@' || s[i] > '~' || s[i] == '[') {
				i++
			}

			continue
		}

		b.WriteByte(s[i])
	}

	return b.String()
}
