package lang

import (
	"errors"
	"math"
	"testing"
	"unicode/utf8"
)

func TestAtom(t *testing.T) {
	tests := []struct {
		text string
		want Expr
	}{
		{"42", Integer(42)},
		{"-7", Integer(-7)},
		{"+3", Integer(3)},
		{"0", Integer(0)},
		{"3.14", Real(3.14)},
		{"-0.5", Real(-0.5)},
		{"1e3", Real(1000)},
		{".5", Real(0.5)},
		{"9223372036854775808", Real(9223372036854775808)},
		{"1e400", Real(math.Inf(1))},
		{"inf", Real(math.Inf(1))},
		{"x", Symbol("x")},
		{"set!", Symbol("set!")},
		{"+", Symbol("+")},
		{"-", Symbol("-")},
		{"1+", Symbol("1+")},
		{"1_000", Integer(1000)},
		{"-1_000_000", Integer(-1000000)},
		{"1_0.2_5", Real(10.25)},
		{"1e1_0", Real(1e10)},
		{"1__0", Symbol("1__0")},
		{"_1", Symbol("_1")},
		{"1_", Symbol("1_")},
		{"1_.5", Symbol("1_.5")},
		{"0x10", Symbol("0x10")},
		{"0x1p-2", Symbol("0x1p-2")},
		{"-0X1.8p1", Symbol("-0X1.8p1")},
		{"0b101", Symbol("0b101")},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Atom(tt.text)
			if !Equal(got, tt.want) {
				t.Errorf("Atom(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}

	if x, ok := Atom("nan").(Real); !ok || !math.IsNaN(float64(x)) {
		t.Errorf("Atom(%q) = %#v, want NaN", "nan", x)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Expr
	}{
		{name: "integer", input: "42", want: Integer(42)},
		{name: "symbol", input: "  foo  ", want: Symbol("foo")},
		{name: "empty list", input: "()", want: List{}},
		{
			name:  "flat list",
			input: "(+ 1 2)",
			want:  List{Symbol("+"), Integer(1), Integer(2)},
		},
		{
			name:  "nested",
			input: "(define sq (lambda (x) (* x x)))",
			want: List{
				Symbol("define"),
				Symbol("sq"),
				List{
					Symbol("lambda"),
					List{Symbol("x")},
					List{Symbol("*"), Symbol("x"), Symbol("x")},
				},
			},
		},
		{
			name:  "nested empty",
			input: "(())",
			want:  List{List{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}

			if !Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, Format(got), Format(tt.want))
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "empty", input: "", want: ErrUnexpectedEOF},
		{name: "blank", input: "   ", want: ErrUnexpectedEOF},
		{name: "unclosed", input: "(+ 1 2", want: ErrUnexpectedEOF},
		{name: "unclosed nested", input: "(a (b c)", want: ErrUnexpectedEOF},
		{name: "lone close", input: ")", want: ErrUnexpectedClose},
		{name: "extra close", input: "(a))", want: ErrUnexpectedClose},
		{name: "trailing atom", input: "(a) b", want: ErrTrailingInput},
		{name: "two atoms", input: "1 2", want: ErrTrailingInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.want)
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("Parse(%q) error %v is not a syntax error", tt.input, err)
			}

			if errors.Is(err, ErrEval) {
				t.Errorf("Parse(%q) error %v should not be an eval error", tt.input, err)
			}
		})
	}
}

func TestParseTokens_Rest(t *testing.T) {
	x, rest, err := ParseTokens(Tokenize("(a b) c (d)"))
	if err != nil {
		t.Fatalf("ParseTokens error: %v", err)
	}

	if got := Format(x); got != "(a b)" {
		t.Errorf("term = %q, want %q", got, "(a b)")
	}

	if len(rest) != 4 || rest[0] != "c" {
		t.Errorf("rest = %q, want [c ( d )]", rest)
	}
}

func TestParseAll(t *testing.T) {
	forms, err := ParseAll("(define r 10)\n(* r r)\nr")
	if err != nil {
		t.Fatalf("ParseAll error: %v", err)
	}

	want := []string{"(define r 10)", "(* r r)", "r"}
	if len(forms) != len(want) {
		t.Fatalf("got %d forms, want %d", len(forms), len(want))
	}

	for i, x := range forms {
		if got := Format(x); got != want[i] {
			t.Errorf("form %d = %q, want %q", i, got, want[i])
		}
	}

	forms, err = ParseAll(" \n ")
	if err != nil || len(forms) != 0 {
		t.Errorf("ParseAll(blank) = %v, %v; want no forms", forms, err)
	}

	if _, err := ParseAll("(a) (b"); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("ParseAll(unclosed) error = %v, want %v", err, ErrUnexpectedEOF)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		"(+ 1 2)",
		"()",
		"(a (b (c ())) d)",
		"(define pi-ish 3.14159)",
		"(1.0 -2.5 1e+16 1e-05 100)",
		"(lambda (x y) (if (< x y) x y))",
		"(quote (1 2 (3 4)))",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			x, err := Parse(input)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}

			y, err := Parse(Format(x))
			if err != nil {
				t.Fatalf("reparse of %q error: %v", Format(x), err)
			}

			if !Equal(x, y) {
				t.Errorf("round trip changed tree: %s -> %s", Format(x), Format(y))
			}
		})
	}
}

// FuzzParse checks that parsing never panics and that anything it accepts
// survives a format round trip.
func FuzzParse(f *testing.F) {
	f.Add("(+ 1 2)")
	f.Add("(define sq (lambda (x) (* x x)))")
	f.Add("((()))")
	f.Add(")(")
	f.Add("(a b")
	f.Add("1.5e300 x")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		x, err := Parse(input)
		if err != nil {
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("Parse(%q) returned non-syntax error %v", input, err)
			}

			return
		}

		y, err := Parse(Format(x))
		if err != nil {
			t.Fatalf("reparse of %q failed: %v", Format(x), err)
		}

		if Format(x) != Format(y) {
			t.Errorf("round trip mismatch: %q != %q", Format(x), Format(y))
		}
	})
}
