package lang

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/lispy/log"
)

// DefaultMaxDepth is the default maximum depth of nested procedure calls.
var DefaultMaxDepth = 10000

// Special form keywords.
const (
	symQuote  Symbol = "quote"
	symIf     Symbol = "if"
	symDefine Symbol = "define"
	symSet    Symbol = "set!"
	symLambda Symbol = "lambda"
)

// SpecialForms returns the keywords handled by the evaluator itself rather
// than by procedure application.
func SpecialForms() []string {
	return []string{
		string(symDefine),
		string(symIf),
		string(symLambda),
		string(symQuote),
		string(symSet),
	}
}

// Interpreter evaluates expressions. It holds evaluation settings and the
// current call depth, but no bindings: every evaluation is given its
// environment explicitly.
//
// An Interpreter is not safe for concurrent use.
type Interpreter struct {
	logger   log.Logger
	output   io.Writer
	tracer   Tracer
	maxDepth int
	depth    int
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithMaxDepth sets the maximum depth of nested procedure calls.
// A depth of zero or less disables the limit.
func WithMaxDepth(depth int) Option {
	return func(in *Interpreter) { in.maxDepth = depth }
}

// WithLogger sets the logger used for evaluation diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithOutput sets the writer used by the print builtin.
// A nil writer discards output.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		if w == nil {
			w = io.Discard
		}

		in.output = w
	}
}

// WithTracer installs a hook called before every evaluation step.
func WithTracer(t Tracer) Option {
	return func(in *Interpreter) { in.tracer = t }
}

// NewInterpreter returns an Interpreter configured by opts. Without options
// it prints to [os.Stdout], logs nothing, and allows [DefaultMaxDepth]
// nested calls.
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{
		output:   os.Stdout,
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(in)
	}

	return in
}

// Output returns the writer used by the print builtin.
func (in *Interpreter) Output() io.Writer { return in.output }

// Eval evaluates x in env.
//
// The result is nil, with a nil error, for forms that produce no value
// (define, set!, print). Callers printing results should print nothing for
// them.
func (in *Interpreter) Eval(
	ctx context.Context,
	x Expr,
	env *Environment,
) (Expr, error) {
	if in.tracer != nil {
		in.tracer(ctx, newTraceEvent(x, in.depth))
	}

	switch x := x.(type) {
	case Symbol:
		return env.Lookup(x)

	case List:
		if len(x) == 0 {
			return x, nil
		}

		if head, ok := x[0].(Symbol); ok {
			switch head {
			case symQuote:
				return in.evalQuote(x)
			case symIf:
				return in.evalIf(ctx, x, env)
			case symDefine:
				return in.evalDefine(ctx, x, env)
			case symSet:
				return in.evalSet(ctx, x, env)
			case symLambda:
				return in.evalLambda(x, env)
			}
		}

		return in.evalApplication(ctx, x, env)

	default:
		// Integer, Real, *Procedure, *Primitive
		return x, nil
	}
}

// Apply invokes fn with already evaluated arguments.
//
// Every procedure call first checks ctx, so cancelling ctx stops a running
// evaluation with [ErrCancelled] wrapping the cancellation cause.
func (in *Interpreter) Apply(
	ctx context.Context,
	fn Expr,
	args []Expr,
) (Expr, error) {
	switch fn := fn.(type) {
	case *Primitive:
		result, err := fn.Fn(ctx, in, args)
		if err != nil {
			return nil, WrapError(err).With(slog.String("primitive", fn.Name))
		}

		return result, nil

	case *Procedure:
		if ctx.Err() != nil {
			return nil, ErrCancelled.
				Wrap(context.Cause(ctx)).
				With(slog.Int("depth", in.depth))
		}

		if in.maxDepth > 0 && in.depth >= in.maxDepth {
			return nil, ErrMaxDepthExceeded.With(slog.Int("depth", in.depth))
		}

		env, err := NewEnvironment(fn.Params, args, fn.Closure)
		if err != nil {
			return nil, err
		}

		in.depth++
		defer func() { in.depth-- }()

		in.logger.TraceContext(ctx, "apply procedure",
			slog.Int("depth", in.depth),
			slog.Int("args", len(args)),
		)

		return in.Eval(ctx, fn.Body, env)

	default:
		return nil, ErrNotProcedure.
			Detail("%s", describe(fn)).
			With(slog.String("kind", kindOf(fn)))
	}
}

func (in *Interpreter) evalQuote(x List) (Expr, error) {
	if len(x) != 2 {
		return nil, arityForm(x, 1)
	}

	return x[1], nil
}

func (in *Interpreter) evalIf(
	ctx context.Context,
	x List,
	env *Environment,
) (Expr, error) {
	if len(x) != 4 {
		return nil, arityForm(x, 3)
	}

	test, err := in.Eval(ctx, x[1], env)
	if err != nil {
		return nil, err
	}

	if Truthy(test) {
		return in.Eval(ctx, x[2], env)
	}

	return in.Eval(ctx, x[3], env)
}

func (in *Interpreter) evalDefine(
	ctx context.Context,
	x List,
	env *Environment,
) (Expr, error) {
	if len(x) != 3 {
		return nil, arityForm(x, 2)
	}

	name, ok := x[1].(Symbol)
	if !ok {
		return nil, ErrMalformed.
			Detail("define expects a symbol, got %s", describe(x[1]))
	}

	value, err := in.Eval(ctx, x[2], env)
	if err != nil {
		return nil, err
	}

	env.Define(name, value)

	in.logger.DebugContext(ctx, "define",
		slog.String("symbol", string(name)),
		slog.String("kind", kindOf(value)),
	)

	return nil, nil
}

func (in *Interpreter) evalSet(
	ctx context.Context,
	x List,
	env *Environment,
) (Expr, error) {
	if len(x) != 3 {
		return nil, arityForm(x, 2)
	}

	name, ok := x[1].(Symbol)
	if !ok {
		return nil, ErrMalformed.
			Detail("set! expects a symbol, got %s", describe(x[1]))
	}

	value, err := in.Eval(ctx, x[2], env)
	if err != nil {
		return nil, err
	}

	return nil, env.Set(name, value)
}

func (in *Interpreter) evalLambda(x List, env *Environment) (Expr, error) {
	if len(x) != 3 {
		return nil, arityForm(x, 2)
	}

	list, ok := x[1].(List)
	if !ok {
		return nil, ErrMalformed.
			Detail("lambda expects a parameter list, got %s", describe(x[1]))
	}

	params := make([]Symbol, len(list))

	for i, p := range list {
		name, ok := p.(Symbol)
		if !ok {
			return nil, ErrMalformed.
				Detail("lambda parameter must be a symbol, got %s", describe(p))
		}

		params[i] = name
	}

	return &Procedure{Params: params, Body: x[2], Closure: env}, nil
}

func (in *Interpreter) evalApplication(
	ctx context.Context,
	x List,
	env *Environment,
) (Expr, error) {
	fn, err := in.Eval(ctx, x[0], env)
	if err != nil {
		return nil, err
	}

	args := make([]Expr, len(x)-1)

	for i, arg := range x[1:] {
		args[i], err = in.Eval(ctx, arg, env)
		if err != nil {
			return nil, err
		}
	}

	return in.Apply(ctx, fn, args)
}

// arityForm reports a special form called with the wrong number of operands.
func arityForm(x List, want int) *Error {
	return ErrArity.
		Detail("%s expects %d operands, got %d", x[0], want, len(x)-1).
		With(slog.String("form", Format(x[0])))
}

// describe renders x for error messages.
func describe(x Expr) string {
	if x == nil {
		return "no value"
	}

	return Format(x)
}

func kindOf(x Expr) string {
	if x == nil {
		return "none"
	}

	return x.Kind().String()
}
