package lang

import (
	"log/slog"
	"maps"
	"slices"
)

// Environment is one frame of a lexical scope chain: a mapping from symbol to
// value plus a reference to the enclosing frame.
//
// An Environment is not safe for concurrent use.
type Environment struct {
	vars  map[Symbol]Expr
	outer *Environment
}

// NewEnvironment creates a frame binding params positionally to args, with
// outer as its parent. The counts of params and args must match.
func NewEnvironment(
	params []Symbol,
	args []Expr,
	outer *Environment,
) (*Environment, error) {
	if len(params) != len(args) {
		return nil, ErrArity.
			Detail("expected %d, got %d", len(params), len(args)).
			With(slog.Int("params", len(params)), slog.Int("args", len(args)))
	}

	env := &Environment{
		vars:  make(map[Symbol]Expr, len(params)),
		outer: outer,
	}

	for i, name := range params {
		env.vars[name] = args[i]
	}

	return env, nil
}

// Outer returns the enclosing frame, or nil for a root frame.
func (e *Environment) Outer() *Environment { return e.outer }

// Find returns the innermost frame, starting at e, that defines name.
// It returns nil if no frame in the chain defines it.
func (e *Environment) Find(name Symbol) *Environment {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.vars[name]; ok {
			return env
		}
	}

	return nil
}

// Lookup returns the value bound to name in the nearest frame defining it.
func (e *Environment) Lookup(name Symbol) (Expr, error) {
	env := e.Find(name)
	if env == nil {
		return nil, ErrUnbound.
			Detail("%s", name).
			With(slog.String("symbol", string(name)))
	}

	return env.vars[name], nil
}

// Define binds name to value in this frame, replacing any existing binding
// here and shadowing any binding in an outer frame.
func (e *Environment) Define(name Symbol, value Expr) {
	if e.vars == nil {
		e.vars = make(map[Symbol]Expr)
	}

	e.vars[name] = value
}

// Set rebinds name in the nearest frame that already defines it.
func (e *Environment) Set(name Symbol, value Expr) error {
	env := e.Find(name)
	if env == nil {
		return ErrSetUnbound.
			Detail("%s", name).
			With(slog.String("symbol", string(name)))
	}

	env.vars[name] = value

	return nil
}

// Names returns every name visible from e, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]struct{})

	for env := e; env != nil; env = env.outer {
		for name := range env.vars {
			seen[string(name)] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}
