package lang

import (
	"context"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/lispy/log"
)

// TraceEvent describes one evaluation step. Field names in filter
// expressions are the lowercase expr tags.
type TraceEvent struct {
	Form  string `expr:"form"`  // canonical text of the expression
	Kind  string `expr:"kind"`  // kind of the expression
	Head  string `expr:"head"`  // head symbol of a list form, if any
	Depth int    `expr:"depth"` // procedure call depth
}

// Tracer receives a [TraceEvent] before each evaluation step.
type Tracer func(ctx context.Context, ev TraceEvent)

func newTraceEvent(x Expr, depth int) TraceEvent {
	ev := TraceEvent{
		Form:  describe(x),
		Kind:  kindOf(x),
		Depth: depth,
	}

	if l, ok := x.(List); ok && len(l) > 0 {
		if head, ok := l[0].(Symbol); ok {
			ev.Head = string(head)
		}
	}

	return ev
}

// TraceFilter compiles an expr-lang boolean expression over the fields of
// [TraceEvent], for example:
//
//	kind == "list" && head in ["define", "set!"]
//	depth > 10
//
// Events for which the expression fails at run time do not match.
func TraceFilter(source string) (func(TraceEvent) bool, error) {
	program, err := expr.Compile(source, expr.Env(TraceEvent{}), expr.AsBool())
	if err != nil {
		return nil, ErrTraceFilter.Wrap(err).
			With(slog.String("source", source))
	}

	return func(ev TraceEvent) bool {
		out, err := vm.Run(program, ev)
		if err != nil {
			return false
		}

		match, _ := out.(bool)

		return match
	}, nil
}

// LogTracer returns a [Tracer] that logs every event accepted by filter at
// trace level. A nil filter accepts every event.
func LogTracer(logger log.Logger, filter func(TraceEvent) bool) Tracer {
	return func(ctx context.Context, ev TraceEvent) {
		if filter != nil && !filter(ev) {
			return
		}

		logger.TraceContext(ctx, "eval",
			slog.String("form", ev.Form),
			slog.String("kind", ev.Kind),
			slog.Int("depth", ev.Depth),
		)
	}
}
