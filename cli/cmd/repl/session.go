package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/lispy/lang"
	"github.com/ardnew/lispy/log"
)

// specialSignatures are the operand names shown as hints for special forms.
var specialSignatures = map[string][]string{
	"quote":  {"datum"},
	"if":     {"test", "conseq", "alt"},
	"define": {"name", "expr"},
	"set!":   {"name", "expr"},
	"lambda": {"params", "body"},
}

// Result is the outcome of evaluating one form. Value is nil for forms that
// produce no value. Printed holds the output of print while evaluating the
// form, when the session captures it.
type Result struct {
	Value   lang.Expr
	Err     error
	Printed string
}

// Text returns the printed form of r: the value in canonical syntax, the
// error message, or "" when there is nothing to print.
func (r Result) Text() string {
	if r.Err != nil {
		return ErrorText(r.Err)
	}

	if r.Value == nil {
		return ""
	}

	return lang.Format(r.Value)
}

// ErrorText formats err for display, prefixed by its class when it has one.
func ErrorText(err error) string {
	var le *lang.Error
	if errors.As(err, &le) && le.Class() != lang.ClassNone {
		return le.Class().String() + ": " + err.Error()
	}

	return "error: " + err.Error()
}

// Session holds the state shared by the interactive front ends: the
// interpreter, the root environment, and input that does not yet form a
// complete expression.
type Session struct {
	interp  *lang.Interpreter
	env     *lang.Environment
	logger  log.Logger
	printed *bytes.Buffer
	pending []string
	buffer  string // last source evaluated from the editor
}

// SessionOption configures a [Session].
type SessionOption func(*Session)

// WithPrinted makes the session collect print output into [Result.Printed].
// buf must be the output writer of the session's interpreter.
func WithPrinted(buf *bytes.Buffer) SessionOption {
	return func(s *Session) { s.printed = buf }
}

// NewSession returns a session evaluating in env.
func NewSession(
	interp *lang.Interpreter,
	env *lang.Environment,
	logger log.Logger,
	opts ...SessionOption,
) *Session {
	s := &Session{interp: interp, env: env, logger: logger}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Environment returns the session's root environment.
func (s *Session) Environment() *lang.Environment { return s.env }

// Pending reports whether earlier lines are waiting for closing parentheses.
func (s *Session) Pending() bool { return len(s.pending) > 0 }

// Reset discards pending input.
func (s *Session) Reset() { s.pending = nil }

// Submit adds line to the pending input. When the input forms complete
// expressions they are evaluated in order and their results returned, with
// done set. Evaluation stops at the first error. Input with unclosed lists
// is kept for the next line and yields done false.
func (s *Session) Submit(ctx context.Context, line string) (results []Result, done bool) {
	forms, done, err := s.Read(line)

	switch {
	case !done:
		return nil, false
	case err != nil:
		return []Result{{Err: err}}, true
	}

	return s.Eval(ctx, forms), true
}

// Read adds line to the pending input and parses it without evaluating.
// done is false while lists remain unclosed; the input is then kept for the
// next line. Otherwise the pending input is consumed and its forms, or the
// syntax error, returned.
func (s *Session) Read(line string) (forms []lang.Expr, done bool, err error) {
	s.pending = append(s.pending, line)
	source := strings.Join(s.pending, "\n")

	forms, err = lang.ParseAll(source)
	if errors.Is(err, lang.ErrUnexpectedEOF) && strings.TrimSpace(source) != "" {
		return nil, false, nil
	}

	s.pending = nil

	return forms, true, err
}

// Load evaluates every form read from r, as if entered at the prompt.
func (s *Session) Load(ctx context.Context, name string, r io.Reader) []Result {
	forms, err := s.ReadSource(ctx, name, r)
	if err != nil {
		return []Result{{Err: err}}
	}

	return s.Eval(ctx, forms)
}

// ReadSource parses every form read from r. name identifies the source in
// errors and logs.
func (s *Session) ReadSource(ctx context.Context, name string, r io.Reader) ([]lang.Expr, error) {
	forms, err := lang.ParseReader(ctx, r)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("source", name))
	}

	s.logger.DebugContext(ctx, "repl load",
		slog.String("source", name),
		slog.Int("forms", len(forms)),
	)

	return forms, nil
}

// Eval evaluates forms in order, stopping at the first error.
func (s *Session) Eval(ctx context.Context, forms []lang.Expr) []Result {
	results := make([]Result, 0, len(forms))

	for _, x := range forms {
		v, err := s.interp.Eval(ctx, x, s.env)

		res := Result{Value: v, Err: err}
		if s.printed != nil {
			res.Printed = s.printed.String()
			s.printed.Reset()
		}

		results = append(results, res)

		if err != nil {
			s.logger.DebugContext(ctx, "repl eval failed", slog.Any("error", err))

			break
		}
	}

	return results
}

// TakePrinted returns and discards print output captured outside
// [Session.Eval], such as while preloading sources.
func (s *Session) TakePrinted() string {
	if s.printed == nil {
		return ""
	}

	text := s.printed.String()
	s.printed.Reset()

	return text
}

// Names returns the special form keywords and every name bound in the
// session environment, sorted and without duplicates.
func (s *Session) Names() []string {
	names := append(lang.SpecialForms(), s.env.Names()...)
	slices.Sort(names)

	return slices.Compact(names)
}

// Signature returns the operand names of the special form or callable value
// bound to name.
func (s *Session) Signature(name string) ([]string, bool) {
	if params, ok := specialSignatures[name]; ok {
		return params, true
	}

	x, err := s.env.Lookup(lang.Symbol(name))
	if err != nil {
		return nil, false
	}

	return lang.Signature(x)
}

// Buffer returns the source last evaluated from the editor.
func (s *Session) Buffer() string { return s.buffer }

// SetBuffer records source evaluated from the editor.
func (s *Session) SetBuffer(source string) { s.buffer = source }
