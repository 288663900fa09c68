package lang

import (
	"errors"
	"log/slog"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  ErrDivideByZero,
			want: "division by zero",
		},
		{
			name: "with detail",
			err:  ErrUnbound.Detail("%s", "zz"),
			want: "unbound symbol: zz",
		},
		{
			name: "wrapped standard error",
			err:  WrapError(errors.New("inner")),
			want: "inner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := ErrArity.Detail("expected 1, got 2").With(slog.Int("args", 2))

	if !errors.Is(err, ErrArity) {
		t.Error("derived error should match its sentinel")
	}

	if !errors.Is(err, ErrEval) {
		t.Error("derived error should match its class")
	}

	if errors.Is(err, ErrSyntax) {
		t.Error("eval error should not match the syntax class")
	}

	if errors.Is(err, ErrType) {
		t.Error("derived error should not match an unrelated sentinel")
	}

	if errors.Is(ErrReadInput, ErrEval) || errors.Is(ErrReadInput, ErrSyntax) {
		t.Error("unclassified error should match no class")
	}
}

func TestError_With(t *testing.T) {
	base := ErrType.With(slog.String("kind", "symbol"))
	more := base.With(slog.Int("arg", 1))

	if len(base.attrs) != 1 {
		t.Errorf("base has %d attributes, want 1", len(base.attrs))
	}

	if len(more.attrs) != 2 {
		t.Errorf("derived has %d attributes, want 2", len(more.attrs))
	}

	if len(ErrType.attrs) != 0 {
		t.Error("sentinel must not be modified")
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := ErrWrite.Wrap(inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}

	if err.Reason() != "write output" {
		t.Errorf("Reason() = %q", err.Reason())
	}
}

func TestWrapError(t *testing.T) {
	t.Run("wraps standard error", func(t *testing.T) {
		std := errors.New("standard error")
		if WrapError(std).err != std {
			t.Error("should wrap standard error")
		}
	})

	t.Run("returns existing Error unchanged", func(t *testing.T) {
		existing := ErrDomain.Detail("x")
		if WrapError(existing) != existing {
			t.Error("should return existing Error as-is")
		}
	})
}

func TestError_LogValue(t *testing.T) {
	v := ErrUnbound.Detail("%s", "zz").With(slog.String("symbol", "zz")).LogValue()

	got := map[string]string{}
	for _, a := range v.Group() {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"class":  "EvalError",
		"error":  "unbound symbol",
		"cause":  "zz",
		"symbol": "zz",
	}

	for k, w := range want {
		if got[k] != w {
			t.Errorf("LogValue()[%q] = %q, want %q", k, got[k], w)
		}
	}
}

func TestClass_String(t *testing.T) {
	for class, want := range map[Class]string{
		ClassNone:   "Error",
		ClassSyntax: "SyntaxError",
		ClassEval:   "EvalError",
	} {
		if got := class.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", class, got, want)
		}
	}
}
