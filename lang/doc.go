// Package lang implements a minimal Scheme dialect: a lexer, a recursive
// descent parser, lexically scoped environments, an evaluator with five
// special forms, a builtin library, and a printer.
//
// # Syntax
//
// Source text is a sequence of parenthesized forms and atoms separated by
// whitespace. There are no strings, comments, or quote shorthand:
//
//	(define square (lambda (x) (* x x)))
//	(square 12)
//
// Atoms that parse as base-10 integers are [Integer], other numeric atoms are
// [Real], and everything else is a [Symbol].
//
// # Evaluation
//
// The special forms are quote, if, define, set! and lambda. Any other list is
// a procedure application: the head and operands are evaluated left to right
// and the head is applied to the operand values.
//
// Only the empty list is false. Predicates return the symbol #t or the empty
// list, and the root environment binds #t and #f to those values.
//
// Environments are explicit. The caller builds a root with
// [NewRootEnvironment] and passes it to [Interpreter.Eval]; nothing in this
// package holds global bindings.
//
// # Errors
//
// Parse and evaluation errors are [*Error] values that match [ErrSyntax] or
// [ErrEval] with [errors.Is], in addition to their specific sentinel such as
// [ErrUnbound] or [ErrArity].
package lang
