package lang

import (
	"context"
	"log/slog"
	"math"
)

// number is an evaluated numeric argument, exact when it came from an
// [Integer].
type number struct {
	i     int64
	f     float64
	exact bool
}

func toNumber(x Expr) (number, bool) {
	switch x := x.(type) {
	case Integer:
		return number{i: int64(x), exact: true}, true
	case Real:
		return number{f: float64(x)}, true
	default:
		return number{}, false
	}
}

// num asserts that x is a number.
func num(x Expr) (number, error) {
	n, ok := toNumber(x)
	if !ok {
		return n, ErrType.
			Detail("expected number, got %s", describe(x)).
			With(slog.String("kind", kindOf(x)))
	}

	return n, nil
}

func numPair(a, b Expr) (number, number, error) {
	x, err := num(a)
	if err != nil {
		return x, number{}, err
	}

	y, err := num(b)

	return x, y, err
}

// integer asserts that x is an [Integer].
func integer(x Expr) (int64, error) {
	n, ok := x.(Integer)
	if !ok {
		return 0, ErrType.
			Detail("expected integer, got %s", describe(x)).
			With(slog.String("kind", kindOf(x)))
	}

	return int64(n), nil
}

func (n number) float() float64 {
	if n.exact {
		return float64(n.i)
	}

	return n.f
}

func (n number) eq(m number) bool {
	if n.exact && m.exact {
		return n.i == m.i
	}

	return n.float() == m.float()
}

func (n number) less(m number) bool {
	if n.exact && m.exact {
		return n.i < m.i
	}

	return n.float() < m.float()
}

type numeric interface{ ~int64 | ~float64 }

func add[T numeric](a, b T) T   { return a + b }
func sub[T numeric](a, b T) T   { return a - b }
func mul[T numeric](a, b T) T   { return a * b }
func gt[T numeric](a, b T) bool { return a > b }
func lt[T numeric](a, b T) bool { return a < b }
func ge[T numeric](a, b T) bool { return a >= b }
func le[T numeric](a, b T) bool { return a <= b }
func eq[T numeric](a, b T) bool { return a == b }

// magnitude returns |a|, which for math.MinInt64 only fits in a uint64.
func magnitude(a int64) uint64 {
	if a < 0 {
		return uint64(-(a + 1)) + 1
	}

	return uint64(a)
}

// finite reports whether every value is neither infinite nor NaN.
func finite(fs ...float64) bool {
	for _, f := range fs {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return false
		}
	}

	return true
}

func anyNaN(fs ...float64) bool {
	for _, f := range fs {
		if math.IsNaN(f) {
			return true
		}
	}

	return false
}

// arith builds an operator that stays exact for two integers and produces a
// real otherwise. Integer results wrap on int64 overflow.
func arith(iop func(a, b int64) int64, fop func(a, b float64) float64) Native {
	return binary(func(a, b Expr) (Expr, error) {
		x, y, err := numPair(a, b)
		if err != nil {
			return nil, err
		}

		if x.exact && y.exact {
			return Integer(iop(x.i, y.i)), nil
		}

		return Real(fop(x.float(), y.float())), nil
	})
}

func compare(iop func(a, b int64) bool, fop func(a, b float64) bool) Native {
	return binary(func(a, b Expr) (Expr, error) {
		x, y, err := numPair(a, b)
		if err != nil {
			return nil, err
		}

		if x.exact && y.exact {
			return Bool(iop(x.i, y.i)), nil
		}

		return Bool(fop(x.float(), y.float())), nil
	})
}

// divide always produces a real.
func divide(a, b Expr) (Expr, error) {
	x, y, err := numPair(a, b)
	if err != nil {
		return nil, err
	}

	if y.float() == 0 {
		return nil, ErrDivideByZero
	}

	return Real(x.float() / y.float()), nil
}

// extremum returns the argument preferred by better, comparing by value but
// returning the argument unchanged. A single list argument is searched
// instead of the arguments themselves.
func extremum(better func(a, b number) bool) Native {
	return func(_ context.Context, _ *Interpreter, args []Expr) (Expr, error) {
		if err := arityRange(args, 1, -1); err != nil {
			return nil, err
		}

		items := args
		if l, ok := args[0].(List); ok && len(args) == 1 {
			if len(l) == 0 {
				return nil, ErrEmptyList
			}

			items = l
		}

		best := items[0]

		bn, err := num(best)
		if err != nil {
			return nil, err
		}

		for _, x := range items[1:] {
			n, err := num(x)
			if err != nil {
				return nil, err
			}

			if better(n, bn) {
				best, bn = x, n
			}
		}

		return best, nil
	}
}

func abs(x Expr) (Expr, error) {
	n, err := num(x)
	if err != nil {
		return nil, err
	}

	if n.exact {
		if m := magnitude(n.i); m <= math.MaxInt64 {
			return Integer(m), nil
		}

		// Like an integer literal beyond int64.
		return Real(-float64(n.i)), nil
	}

	return Real(math.Abs(n.f)), nil
}

// round rounds half to even. With one argument it returns an integer; with a
// digit count it rounds to that many decimal places (negative counts round to
// tens, hundreds, and so on).
func round(_ context.Context, _ *Interpreter, args []Expr) (Expr, error) {
	if err := arityRange(args, 1, 2); err != nil {
		return nil, err
	}

	n, err := num(args[0])
	if err != nil {
		return nil, err
	}

	if len(args) == 1 {
		if n.exact {
			return Integer(n.i), nil
		}

		return toInteger(math.RoundToEven(n.f))
	}

	digits, err := integer(args[1])
	if err != nil {
		return nil, err
	}

	if n.exact {
		if digits >= 0 {
			return Integer(n.i), nil
		}

		p := math.Pow(10, float64(-digits))

		return toInteger(math.RoundToEven(float64(n.i)/p) * p)
	}

	if digits > maxRoundDigits {
		return Real(n.f), nil
	}

	p := math.Pow(10, float64(digits))

	return Real(math.RoundToEven(n.f*p) / p), nil
}

// maxRoundDigits is beyond the precision of float64; rounding to more digits
// leaves the value unchanged.
const maxRoundDigits = 300

// toInteger converts an integral float to an [Integer].
func toInteger(f float64) (Expr, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrDomain.Detail("cannot convert %s to integer", formatReal(f))
	}

	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, ErrRange.Detail("%s exceeds integer range", formatReal(f))
	}

	return Integer(int64(f)), nil
}

// expt is exact for an integer base raised to a non-negative integer power.
func expt(a, b Expr) (Expr, error) {
	x, y, err := numPair(a, b)
	if err != nil {
		return nil, err
	}

	if x.exact && y.exact && y.i >= 0 {
		return Integer(ipow(x.i, y.i)), nil
	}

	if x.float() == 0 && y.float() < 0 {
		return nil, ErrDivideByZero
	}

	return checked(math.Pow(x.float(), y.float()), x.float(), y.float())
}

// ipow computes base**exp by repeated squaring; it wraps on overflow.
func ipow(base, exp int64) int64 {
	result := int64(1)

	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}

		base *= base
		exp >>= 1
	}

	return result
}

// checked reports NaN from non-NaN inputs as a domain error and infinity
// from finite inputs as a range error.
func checked(r float64, in ...float64) (Expr, error) {
	switch {
	case math.IsNaN(r) && !anyNaN(in...):
		return nil, ErrDomain
	case math.IsInf(r, 0) && finite(in...):
		return nil, ErrRange
	}

	return Real(r), nil
}

func numericBuiltins() map[string]builtin {
	ab := []string{"a", "b"}

	return map[string]builtin{
		"+":  {arith(add[int64], add[float64]), ab},
		"-":  {arith(sub[int64], sub[float64]), ab},
		"*":  {arith(mul[int64], mul[float64]), ab},
		"/":  {binary(divide), ab},
		">":  {compare(gt[int64], gt[float64]), ab},
		"<":  {compare(lt[int64], lt[float64]), ab},
		">=": {compare(ge[int64], ge[float64]), ab},
		"<=": {compare(le[int64], le[float64]), ab},
		"=":  {compare(eq[int64], eq[float64]), ab},

		"abs":   {unary(abs), []string{"x"}},
		"expt":  {binary(expt), []string{"base", "power"}},
		"round": {round, []string{"x", "digits"}},
		"max": {
			extremum(func(a, b number) bool { return b.less(a) }),
			[]string{"x", "rest..."},
		},
		"min": {
			extremum(func(a, b number) bool { return a.less(b) }),
			[]string{"x", "rest..."},
		},
	}
}
