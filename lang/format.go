package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format returns the canonical text of x. Parsing the text of a parsed tree
// yields an equal tree. No value formats as the empty string, or as #<none>
// when it is an element of a list.
func Format(x Expr) string {
	if x == nil {
		return ""
	}

	var sb strings.Builder

	writeExpr(&sb, x)

	return sb.String()
}

// noValue stands for a no-value element of a list, such as the results of
// (map print ...).
const noValue = "#<none>"

func writeExpr(sb *strings.Builder, x Expr) {
	switch x := x.(type) {
	case nil:
		// inside a list
		sb.WriteString(noValue)
	case Symbol:
		sb.WriteString(string(x))
	case Integer:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Real:
		sb.WriteString(formatReal(float64(x)))
	case List:
		sb.WriteByte('(')

		for i, e := range x {
			if i > 0 {
				sb.WriteByte(' ')
			}

			writeExpr(sb, e)
		}

		sb.WriteByte(')')
	case *Procedure:
		sb.WriteString("#<procedure (")

		for i, p := range x.Params {
			if i > 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(string(p))
		}

		sb.WriteString(")>")
	case *Primitive:
		sb.WriteString("#<primitive ")
		sb.WriteString(x.Name)
		sb.WriteByte('>')
	default:
		fmt.Fprintf(sb, "#<%T>", x)
	}
}

// formatReal renders f so that it always reads back as a [Real]: integral
// values keep a trailing ".0", and very small or very large magnitudes use
// exponent notation.
func formatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// PrettyWidth is the column limit used by [Pretty].
const PrettyWidth = 80

// Pretty writes x in canonical syntax followed by a newline. Lists that do
// not fit within [PrettyWidth] columns are broken with one operand per line,
// aligned under the first operand.
func Pretty(w io.Writer, x Expr) error {
	var sb strings.Builder

	writePretty(&sb, x, 0)
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())

	return err
}

func writePretty(sb *strings.Builder, x Expr, col int) {
	text := Format(x)

	l, ok := x.(List)
	if !ok || len(l) < 2 || col+len(text) <= PrettyWidth {
		sb.WriteString(text)

		return
	}

	head := Format(l[0])

	sb.WriteByte('(')
	writePretty(sb, l[0], col+1)

	// Operands align under the first operand when the head is short, and
	// under the head otherwise.
	indent := col + 1
	if _, isList := l[0].(List); !isList && len(head) <= 8 {
		indent = col + len(head) + 2
		sb.WriteByte(' ')
		writePretty(sb, l[1], indent)

		l = l[1:]
	}

	for _, e := range l[1:] {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(" ", indent))
		writePretty(sb, e, indent)
	}

	sb.WriteByte(')')
}

// FormatNative writes each form in canonical syntax, one per line.
func FormatNative(_ context.Context, w io.Writer, forms []Expr) error {
	for _, x := range forms {
		if err := Pretty(w, x); err != nil {
			return err
		}
	}

	return nil
}

// FormatJSON writes forms as a JSON array of their native values.
func FormatJSON(_ context.Context, w io.Writer, forms []Expr, indent int) error {
	var (
		data []byte
		err  error
	)

	native := ToNativeAll(forms)

	if indent > 0 {
		data, err = json.MarshalIndent(native, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(native)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes forms as a YAML sequence of their native values.
func FormatYAML(ctx context.Context, w io.Writer, forms []Expr, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, ToNativeAll(forms), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// FormatAST writes an indented tree dump of forms, one node per line with its
// kind, for inspecting how a source was parsed.
func FormatAST(_ context.Context, w io.Writer, forms []Expr, indent int) error {
	if indent <= 0 {
		indent = 2
	}

	var sb strings.Builder

	for _, x := range forms {
		writeNode(&sb, x, 0, indent)
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func writeNode(sb *strings.Builder, x Expr, depth, indent int) {
	sb.WriteString(strings.Repeat(" ", depth*indent))
	sb.WriteString(kindOf(x))

	l, ok := x.(List)
	if !ok {
		sb.WriteByte(' ')
		sb.WriteString(describe(x))
		sb.WriteByte('\n')

		return
	}

	fmt.Fprintf(sb, " [%d]\n", len(l))

	for _, e := range l {
		writeNode(sb, e, depth+1, indent)
	}
}
