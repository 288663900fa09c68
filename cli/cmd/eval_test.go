package cmd

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/lispy/lang"
)

func runEval(t *testing.T, e *Eval, stdin string) (string, error) {
	t.Helper()

	var out strings.Builder

	ctx := WithOutput(t.Context(), &out)
	ctx = WithInput(ctx, strings.NewReader(stdin))

	if e.Output == "" {
		e.Output = "native"
	}

	err := e.Run(ctx)

	return out.String(), err
}

func TestEvalRun(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, filepath.Join(dir, "lib.scm"),
		"(define fact (lambda (n) (if (<= n 1) 1 (* n (fact (- n 1))))))\n(fact 5)\n")

	tests := []struct {
		name  string
		eval  Eval
		stdin string
		want  string
	}{
		{
			name: "expression",
			eval: Eval{Expr: []string{"(+ 1 2)"}},
			want: "3\n",
		},
		{
			name: "definitions print nothing",
			eval: Eval{Expr: []string{"(define x 10)", "(* x x)"}},
			want: "100\n",
		},
		{
			name: "file then expression",
			eval: Eval{Files: []string{lib}, Expr: []string{"(fact 10)"}},
			want: "120\n3628800\n",
		},
		{
			name:  "stdin by default",
			stdin: "(begin (define r 10) (* pi (* r r)))",
			want:  "314.1592653589793\n",
		},
		{
			name:  "stdin by name",
			eval:  Eval{Files: []string{"-"}},
			stdin: "(list 1 (quote a) 2.5)",
			want:  "(1 a 2.5)\n",
		},
		{
			name: "quiet",
			eval: Eval{Expr: []string{"(+ 1 2)"}, Quiet: true},
			want: "",
		},
		{
			name: "print writes output",
			eval: Eval{Expr: []string{"(print (quote hello))"}},
			want: "hello\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runEval(t, &tt.eval, tt.stdin)
			if err != nil {
				t.Fatalf("Eval.Run() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Eval.Run() output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalRun_Encoded(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		got, err := runEval(t, &Eval{
			Expr:   []string{"(define x 2)", "(* x 3)", "(list 1 (quote a))"},
			Output: "json",
		}, "")
		if err != nil {
			t.Fatal(err)
		}

		var decoded []any
		if err := json.Unmarshal([]byte(got), &decoded); err != nil {
			t.Fatalf("invalid JSON %q: %v", got, err)
		}

		if len(decoded) != 2 || decoded[0] != float64(6) {
			t.Errorf("decoded = %#v, want [6 [1 a]]", decoded)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		got, err := runEval(t, &Eval{
			Expr:   []string{"(quote sym)", "(list 1 2)"},
			Output: "yaml",
			Indent: 2,
		}, "")
		if err != nil {
			t.Fatal(err)
		}

		var decoded []any
		if err := yaml.Unmarshal([]byte(got), &decoded); err != nil {
			t.Fatalf("invalid YAML %q: %v", got, err)
		}

		if len(decoded) != 2 || decoded[0] != "sym" {
			t.Errorf("decoded = %#v, want [sym [1 2]]", decoded)
		}
	})
}

func TestEvalRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		eval Eval
		want error
	}{
		{
			name: "unbound symbol",
			eval: Eval{Expr: []string{"undefined-thing"}},
			want: lang.ErrUnbound,
		},
		{
			name: "unterminated list",
			eval: Eval{Expr: []string{"(+ 1 2"}},
			want: lang.ErrUnexpectedEOF,
		},
		{
			name: "missing file",
			eval: Eval{Files: []string{filepath.Join(t.TempDir(), "missing.scm")}},
			want: ErrOpenSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runEval(t, &tt.eval, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("Eval.Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEvalRun_StopsAtFirstError(t *testing.T) {
	got, err := runEval(t, &Eval{
		Expr: []string{"1", "(car (quote ()))", "2"},
	}, "")
	if err == nil {
		t.Fatal("Eval.Run() succeeded, want error")
	}

	if got != "1\n" {
		t.Errorf("output = %q, want %q", got, "1\n")
	}
}
