package lang

import (
	"context"
	"log/slog"
	"maps"
	"math"
	"sync"
)

// builtin describes one entry of the builtin table.
type builtin struct {
	fn     Native
	params []string
}

// builtinEnv is the root binding table, built once and cloned into every new
// root environment.
var builtinEnv = sync.OnceValue(func() map[Symbol]Expr {
	env := map[Symbol]Expr{
		"pi":  Real(math.Pi),
		"e":   Real(math.E),
		"tau": Real(2 * math.Pi),
		True:  True,
		"#f":  Nil,
	}

	for _, table := range []map[string]builtin{
		numericBuiltins(),
		mathBuiltins(),
		listBuiltins(),
	} {
		for name, b := range table {
			env[Symbol(name)] = &Primitive{
				Name:   name,
				Params: b.params,
				Fn:     b.fn,
			}
		}
	}

	return env
})

// NewRootEnvironment returns a new root frame holding the builtin library and
// the mathematical constants. Each call returns an independent frame.
func NewRootEnvironment() *Environment {
	return &Environment{vars: maps.Clone(builtinEnv())}
}

// BuiltinNames returns the names bound in a fresh root environment, sorted.
func BuiltinNames() []string {
	return NewRootEnvironment().Names()
}

// Signature returns the parameter names of a callable value: the declared
// parameters of a procedure or the documented parameters of a primitive.
// A trailing "..." marks a variadic parameter.
func Signature(x Expr) ([]string, bool) {
	switch x := x.(type) {
	case *Procedure:
		params := make([]string, len(x.Params))
		for i, p := range x.Params {
			params[i] = string(p)
		}

		return params, true

	case *Primitive:
		return x.Params, true

	default:
		return nil, false
	}
}

// arity checks that exactly n arguments were given.
func arity(args []Expr, n int) error {
	if len(args) != n {
		return ErrArity.
			Detail("expected %d, got %d", n, len(args)).
			With(slog.Int("args", len(args)))
	}

	return nil
}

// arityRange checks that between lo and hi arguments were given.
// A negative hi means no upper bound.
func arityRange(args []Expr, lo, hi int) error {
	switch {
	case len(args) < lo && hi < 0:
		return ErrArity.
			Detail("expected at least %d, got %d", lo, len(args)).
			With(slog.Int("args", len(args)))

	case len(args) < lo || hi >= 0 && len(args) > hi:
		return ErrArity.
			Detail("expected %d to %d, got %d", lo, hi, len(args)).
			With(slog.Int("args", len(args)))
	}

	return nil
}

// list asserts that x is a list.
func list(x Expr) (List, error) {
	l, ok := x.(List)
	if !ok {
		return nil, ErrType.
			Detail("expected list, got %s", describe(x)).
			With(slog.String("kind", kindOf(x)))
	}

	return l, nil
}

// unary adapts a one-argument function to [Native].
func unary(fn func(x Expr) (Expr, error)) Native {
	return func(_ context.Context, _ *Interpreter, args []Expr) (Expr, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}

		return fn(args[0])
	}
}

// binary adapts a two-argument function to [Native].
func binary(fn func(a, b Expr) (Expr, error)) Native {
	return func(_ context.Context, _ *Interpreter, args []Expr) (Expr, error) {
		if err := arity(args, 2); err != nil {
			return nil, err
		}

		return fn(args[0], args[1])
	}
}

// predicate adapts a one-argument test to [Native].
func predicate(test func(x Expr) bool) Native {
	return unary(func(x Expr) (Expr, error) { return Bool(test(x)), nil })
}
