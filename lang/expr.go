package lang

import (
	"context"
	"math"
)

// Kind enumerates the variants of [Expr].
type Kind int

const (
	KindSymbol Kind = iota
	KindInteger
	KindReal
	KindList
	KindProcedure
	KindPrimitive
)

var kindNames = [...]string{
	KindSymbol:    "symbol",
	KindInteger:   "integer",
	KindReal:      "real",
	KindList:      "list",
	KindProcedure: "procedure",
	KindPrimitive: "primitive",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}

	return kindNames[k]
}

// Expr is the universal value type flowing through parsing and evaluation.
//
// The set of implementations is closed: [Symbol], [Integer], [Real], [List],
// [*Procedure] and [*Primitive]. A parsed tree only ever contains the first
// four.
type Expr interface {
	Kind() Kind
	expr()
}

// Symbol is an identifier.
type Symbol string

// Integer is an exact whole number.
type Integer int64

// Real is a floating-point number.
type Real float64

// List is a compound form. The empty list is a distinct value and the only
// false value.
type List []Expr

// Procedure is a closure created by the lambda special form.
type Procedure struct {
	Params  []Symbol
	Body    Expr
	Closure *Environment
}

// Native is the signature of a builtin operation. The interpreter is passed
// so that higher-order builtins can apply procedures and write output.
type Native func(ctx context.Context, in *Interpreter, args []Expr) (Expr, error)

// Primitive is a builtin callable installed in the root environment.
type Primitive struct {
	Name   string
	Params []string // parameter names shown in signature hints
	Fn     Native
}

func (Symbol) Kind() Kind     { return KindSymbol }
func (Integer) Kind() Kind    { return KindInteger }
func (Real) Kind() Kind       { return KindReal }
func (List) Kind() Kind       { return KindList }
func (*Procedure) Kind() Kind { return KindProcedure }
func (*Primitive) Kind() Kind { return KindPrimitive }

func (Symbol) expr()     {}
func (Integer) expr()    {}
func (Real) expr()       {}
func (List) expr()       {}
func (*Procedure) expr() {}
func (*Primitive) expr() {}

// True is the canonical true value returned by predicates.
const True = Symbol("#t")

// Nil is the empty list, the canonical false value.
var Nil = List{}

// Bool converts b to [True] or [Nil].
func Bool(b bool) Expr {
	if b {
		return True
	}

	return Nil
}

// Truthy reports whether x counts as true in a conditional. Only the empty
// list is false; every number, including zero, is true.
func Truthy(x Expr) bool {
	l, ok := x.(List)

	return !ok || len(l) > 0
}

// IsNil reports whether x is the empty list.
func IsNil(x Expr) bool {
	l, ok := x.(List)

	return ok && len(l) == 0
}

// Callable reports whether x can be applied.
func Callable(x Expr) bool {
	switch x.(type) {
	case *Procedure, *Primitive:
		return true
	default:
		return false
	}
}

// Equal reports whether a and b are structurally identical trees. Numbers
// must match in kind as well as value.
func Equal(a, b Expr) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case Symbol, Integer, Real:
		return a == b
	case List:
		bl, ok := b.(List)
		if !ok || len(a) != len(bl) {
			return false
		}

		for i := range a {
			if !Equal(a[i], bl[i]) {
				return false
			}
		}

		return true
	default:
		return a == b
	}
}

// Equivalent implements equal?: like [Equal], except that numbers compare by
// value regardless of kind.
func Equivalent(a, b Expr) bool {
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)

		return ok && x.eq(y)
	}

	al, ok := a.(List)
	if !ok {
		return Equal(a, b)
	}

	bl, ok := b.(List)
	if !ok || len(al) != len(bl) {
		return false
	}

	for i := range al {
		if !Equivalent(al[i], bl[i]) {
			return false
		}
	}

	return true
}

// Identical implements eq?. Atoms are identical when equal; non-empty lists
// only when they share storage; procedures only when they are the same value.
func Identical(a, b Expr) bool {
	switch a := a.(type) {
	case List:
		bl, ok := b.(List)
		if !ok || len(a) != len(bl) {
			return false
		}

		return len(a) == 0 || &a[0] == &bl[0]
	case Real:
		br, ok := b.(Real)

		return ok && (a == br || math.IsNaN(float64(a)) && math.IsNaN(float64(br)))
	default:
		return a == b
	}
}
