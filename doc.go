// Package formula compiles infix floating-point formulas into a postfix form
// that can be evaluated many times against different variable bindings.
//
// A formula may declare its parameters up front, as in
// "f(x,y) = sin(x) + 2*y^2", or the parameters may be registered through a
// Builder. Operators are + - * / % and ^, with the usual precedence; ^ is
// right-associative, and a leading - is a negation. ( [ and { group terms
// interchangeably.
//
// Variables hold either a scalar or an array of float64. When an operator or
// function sees an array, scalars are broadcast to the array's length and
// shorter arrays are padded with zeros, so "x + y" with x = 2 and
// y = [1 2 3] is [3 4 5].
//
// An *Expr is immutable once built. It is safe to evaluate one expression
// concurrently from many goroutines, provided that any custom functions are
// safe to call concurrently.
package formula
