package repl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestHistoryAdd(t *testing.T) {
	h := NewHistory("")

	for _, line := range []string{"(+ 1 2)", "  (car\n  xs)  ", "", "(+ 1 2)", "(+ 1 2)"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	if err := h.Add("env", modeCtrl); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{Line: "(car xs)", Mode: modeEval},
		{Line: "(+ 1 2)", Mode: modeEval},
		{Line: "env", Mode: modeCtrl},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %+v, want %+v", got, want)
	}

	if h.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", h.Len(), len(want))
	}

	if e, err := h.Entry(2); err != nil || e != want[2] {
		t.Errorf("Entry(2) = (%+v, %v), want %+v", e, err, want[2])
	}

	for _, i := range []int{-1, 3} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}

func TestHistoryPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() of missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"(define x 1)", modeEval},
		{"help", modeCtrl},
		{"(* x 2)", modeEval},
		{"(define x 1)", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := string(data), "C:help\nE:(* x 2)\nE:(define x 1)\n"; got != want {
		t.Errorf("history file = %q, want %q", got, want)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if got, want := reloaded.Entries(), h.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded = %+v, want %+v", got, want)
	}
}

func TestHistoryLoad_Untagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("(old style)\n\nC:quit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{{"(old style)", modeEval}, {"quit", modeCtrl}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %+v, want %+v", got, want)
	}
}

func TestHistoryLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	var sb strings.Builder
	for i := range MaxHistory + 10 {
		fmt.Fprintf(&sb, "E:%d\n", i)
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if h.Len() != MaxHistory {
		t.Fatalf("Len() = %d, want %d", h.Len(), MaxHistory)
	}

	if e, _ := h.Entry(0); e.Line != "10" {
		t.Errorf("oldest entry = %q, want %q", e.Line, "10")
	}

	if err := h.Add("newest", modeEval); err != nil {
		t.Fatal(err)
	}

	if h.Len() != MaxHistory {
		t.Errorf("Len() after Add = %d, want %d", h.Len(), MaxHistory)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if e, _ := reloaded.Entry(MaxHistory - 1); e.Line != "newest" {
		t.Errorf("newest entry = %q, want %q", e.Line, "newest")
	}
}
