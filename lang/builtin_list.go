package lang

import (
	"context"
	"slices"
	"strings"
)

func car(x Expr) (Expr, error) {
	l, err := list(x)
	if err != nil {
		return nil, err
	}

	if len(l) == 0 {
		return nil, ErrEmptyList.Detail("car")
	}

	return l[0], nil
}

func cdr(x Expr) (Expr, error) {
	l, err := list(x)
	if err != nil {
		return nil, err
	}

	if len(l) == 0 {
		return nil, ErrEmptyList.Detail("cdr")
	}

	return l[1:], nil
}

// cons prepends x to a list. Improper pairs are not supported.
func cons(x, rest Expr) (Expr, error) {
	l, err := list(rest)
	if err != nil {
		return nil, err
	}

	out := make(List, 0, len(l)+1)

	return append(append(out, x), l...), nil
}

func concat(a, b Expr) (Expr, error) {
	x, err := list(a)
	if err != nil {
		return nil, err
	}

	y, err := list(b)
	if err != nil {
		return nil, err
	}

	return slices.Concat(List{}, x, y), nil
}

func length(x Expr) (Expr, error) {
	l, err := list(x)
	if err != nil {
		return nil, err
	}

	return Integer(len(l)), nil
}

func makeList(_ context.Context, _ *Interpreter, args []Expr) (Expr, error) {
	return slices.Concat(List{}, args), nil
}

// apply calls a procedure with the elements of a list as its arguments.
func apply(ctx context.Context, in *Interpreter, args []Expr) (Expr, error) {
	if err := arity(args, 2); err != nil {
		return nil, err
	}

	l, err := list(args[1])
	if err != nil {
		return nil, err
	}

	return in.Apply(ctx, args[0], slices.Clone(l))
}

// mapList applies a procedure element-wise across one or more lists,
// stopping at the end of the shortest.
func mapList(ctx context.Context, in *Interpreter, args []Expr) (Expr, error) {
	if err := arityRange(args, 2, -1); err != nil {
		return nil, err
	}

	lists := make([]List, len(args)-1)
	n := -1

	for i, arg := range args[1:] {
		l, err := list(arg)
		if err != nil {
			return nil, err
		}

		lists[i] = l
		if n < 0 || len(l) < n {
			n = len(l)
		}
	}

	out := make(List, n)

	for i := range out {
		row := make([]Expr, len(lists))
		for j, l := range lists {
			row[j] = l[i]
		}

		v, err := in.Apply(ctx, args[0], row)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// printArgs writes its arguments, separated by spaces, followed by a newline.
func printArgs(_ context.Context, in *Interpreter, args []Expr) (Expr, error) {
	text := make([]string, len(args))
	for i, arg := range args {
		text[i] = Format(arg)
	}

	_, err := in.output.Write([]byte(strings.Join(text, " ") + "\n"))
	if err != nil {
		return nil, ErrWrite.Wrap(err)
	}

	return nil, nil
}

// begin returns its last argument. Arguments are evaluated left to right
// before the call, so it sequences side effects.
func begin(_ context.Context, _ *Interpreter, args []Expr) (Expr, error) {
	if err := arityRange(args, 1, -1); err != nil {
		return nil, err
	}

	return args[len(args)-1], nil
}

func isNumber(x Expr) bool {
	_, ok := toNumber(x)

	return ok
}

func isSymbol(x Expr) bool {
	_, ok := x.(Symbol)

	return ok
}

func isList(x Expr) bool {
	_, ok := x.(List)

	return ok
}

func listBuiltins() map[string]builtin {
	x := []string{"x"}
	ab := []string{"a", "b"}

	return map[string]builtin{
		"car":    {unary(car), []string{"list"}},
		"cdr":    {unary(cdr), []string{"list"}},
		"cons":   {binary(cons), []string{"x", "list"}},
		"append": {binary(concat), ab},
		"list":   {makeList, []string{"items..."}},
		"length": {unary(length), []string{"list"}},

		"null?":      {predicate(IsNil), x},
		"number?":    {predicate(isNumber), x},
		"symbol?":    {predicate(isSymbol), x},
		"list?":      {predicate(isList), x},
		"procedure?": {predicate(Callable), x},
		"not":        {predicate(func(x Expr) bool { return !Truthy(x) }), x},

		"eq?":    {binary(func(a, b Expr) (Expr, error) { return Bool(Identical(a, b)), nil }), ab},
		"equal?": {binary(func(a, b Expr) (Expr, error) { return Bool(Equivalent(a, b)), nil }), ab},

		"apply": {apply, []string{"proc", "args"}},
		"map":   {mapList, []string{"proc", "list", "lists..."}},
		"print": {printArgs, []string{"x..."}},
		"begin": {begin, []string{"x", "rest..."}},
	}
}
