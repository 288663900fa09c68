package lang

import (
	"context"
	"math"
)

func unaryMath(fn func(float64) float64) Native {
	return unary(func(a Expr) (Expr, error) {
		x, err := num(a)
		if err != nil {
			return nil, err
		}

		return checked(fn(x.float()), x.float())
	})
}

func binaryMath(fn func(float64, float64) float64) Native {
	return binary(func(a, b Expr) (Expr, error) {
		x, y, err := numPair(a, b)
		if err != nil {
			return nil, err
		}

		return checked(fn(x.float(), y.float()), x.float(), y.float())
	})
}

// integral rounds with fn and returns an [Integer].
func integral(fn func(float64) float64) Native {
	return unary(func(a Expr) (Expr, error) {
		x, err := num(a)
		if err != nil {
			return nil, err
		}

		if x.exact {
			return Integer(x.i), nil
		}

		return toInteger(fn(x.f))
	})
}

func floatTest(test func(float64) bool) Native {
	return unary(func(a Expr) (Expr, error) {
		x, err := num(a)
		if err != nil {
			return nil, err
		}

		return Bool(test(x.float())), nil
	})
}

// logarithm is the natural logarithm, or the logarithm in the given base.
func logarithm(_ context.Context, _ *Interpreter, args []Expr) (Expr, error) {
	if err := arityRange(args, 1, 2); err != nil {
		return nil, err
	}

	x, err := num(args[0])
	if err != nil {
		return nil, err
	}

	if x.float() <= 0 {
		return nil, ErrDomain
	}

	if len(args) == 1 {
		return Real(math.Log(x.float())), nil
	}

	base, err := num(args[1])
	if err != nil {
		return nil, err
	}

	if base.float() <= 0 || base.float() == 1 {
		return nil, ErrDomain
	}

	return Real(math.Log(x.float()) / math.Log(base.float())), nil
}

func gcd(_ context.Context, _ *Interpreter, args []Expr) (Expr, error) {
	var g uint64

	for _, arg := range args {
		n, err := integer(arg)
		if err != nil {
			return nil, err
		}

		a, b := g, magnitude(n)
		for b != 0 {
			a, b = b, a%b
		}

		g = a
	}

	if g > math.MaxInt64 {
		return nil, ErrRange.Detail("gcd %d exceeds integer range", g)
	}

	return Integer(g), nil
}

// maxFactorial is the largest n whose factorial fits in an int64.
const maxFactorial = 20

func factorial(a Expr) (Expr, error) {
	n, err := integer(a)
	if err != nil {
		return nil, err
	}

	switch {
	case n < 0:
		return nil, ErrDomain.Detail("factorial of negative number")
	case n > maxFactorial:
		return nil, ErrRange.Detail("factorial of %d exceeds integer range", n)
	}

	f := int64(1)
	for i := int64(2); i <= n; i++ {
		f *= i
	}

	return Integer(f), nil
}

func mathBuiltins() map[string]builtin {
	x := []string{"x"}
	xy := []string{"x", "y"}

	degrees := func(r float64) float64 { return r * 180 / math.Pi }
	radians := func(d float64) float64 { return d * math.Pi / 180 }
	isFinite := func(f float64) bool { return finite(f) }
	isInf := func(f float64) bool { return math.IsInf(f, 0) }

	return map[string]builtin{
		"sin":   {unaryMath(math.Sin), x},
		"cos":   {unaryMath(math.Cos), x},
		"tan":   {unaryMath(math.Tan), x},
		"asin":  {unaryMath(math.Asin), x},
		"acos":  {unaryMath(math.Acos), x},
		"atan":  {unaryMath(math.Atan), x},
		"sinh":  {unaryMath(math.Sinh), x},
		"cosh":  {unaryMath(math.Cosh), x},
		"tanh":  {unaryMath(math.Tanh), x},
		"asinh": {unaryMath(math.Asinh), x},
		"acosh": {unaryMath(math.Acosh), x},
		"atanh": {unaryMath(math.Atanh), x},
		"exp":   {unaryMath(math.Exp), x},
		"expm1": {unaryMath(math.Expm1), x},
		"log10": {unaryMath(math.Log10), x},
		"log2":  {unaryMath(math.Log2), x},
		"log1p": {unaryMath(math.Log1p), x},
		"sqrt":  {unaryMath(math.Sqrt), x},
		"cbrt":  {unaryMath(math.Cbrt), x},
		"fabs":  {unaryMath(math.Abs), x},

		"degrees": {unaryMath(degrees), x},
		"radians": {unaryMath(radians), x},

		"log":      {logarithm, []string{"x", "base"}},
		"atan2":    {binaryMath(math.Atan2), []string{"y", "x"}},
		"pow":      {binaryMath(math.Pow), xy},
		"hypot":    {binaryMath(math.Hypot), xy},
		"fmod":     {binaryMath(math.Mod), xy},
		"copysign": {binaryMath(math.Copysign), xy},

		"ceil":  {integral(math.Ceil), x},
		"floor": {integral(math.Floor), x},
		"trunc": {integral(math.Trunc), x},

		"isnan":    {floatTest(math.IsNaN), x},
		"isinf":    {floatTest(isInf), x},
		"isfinite": {floatTest(isFinite), x},

		"gcd":       {gcd, []string{"n..."}},
		"factorial": {unary(factorial), []string{"n"}},
	}
}
