package lang

import "math"

// ToNative converts x to plain Go values for encoding:
//
//   - Symbol → string
//   - Integer → int64
//   - Real → float64, or its canonical text when not finite
//   - List → []any
//   - procedures → their canonical text
//   - no value → nil
//
// JSON and YAML cannot carry non-finite numbers, so they become strings.
func ToNative(x Expr) any {
	switch x := x.(type) {
	case nil:
		return nil
	case Symbol:
		return string(x)
	case Integer:
		return int64(x)
	case Real:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return formatReal(f)
		}

		return f
	case List:
		return ToNativeAll(x)
	default:
		return Format(x)
	}
}

// ToNativeAll converts every expression with [ToNative]. The result is never
// nil, so an empty input encodes as an empty sequence.
func ToNativeAll(xs []Expr) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = ToNative(x)
	}

	return out
}
