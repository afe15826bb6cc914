package formula

import "strconv"

// UnparsableExpressionError is an error indicating a lexical or structural
// problem in a formula: an unrecognized character, a malformed number,
// unbalanced brackets, or a misplaced separator. It implements InputError.
type UnparsableExpressionError struct {
	// Char is the offending character.
	Char rune
	// Offset is the rune index of Char in the source.
	Offset int
	// Reason describes the problem, if more is known than the character.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (err *UnparsableExpressionError) Error() string {
	msg := "unparsable expression: "
	if err.Char != 0 {
		msg += "character " + strconv.QuoteRune(err.Char)
	} else {
		msg += "end of input"
	}
	if err.Reason != "" {
		msg += ": " + err.Reason
	}
	return errpos(err.Offset, msg)
}

func (err *UnparsableExpressionError) Unwrap() error {
	return err.Err
}

func (err *UnparsableExpressionError) Pos() int {
	return err.Offset
}

// UnknownFunctionError is an error indicating an identifier used as a
// function call which names no built-in or custom function and no variable.
// It implements InputError.
type UnknownFunctionError struct {
	// Name is the unknown name.
	Name string
	// Offset is the rune index of the name in the source.
	Offset int
	// Suggestion is the closest known function name, or the empty string if
	// there is none.
	Suggestion string
}

func (err *UnknownFunctionError) Error() string {
	msg := "unknown function " + strconv.Quote(err.Name)
	if err.Suggestion != "" {
		msg += " (did you mean " + strconv.Quote(err.Suggestion) + "?)"
	}
	return errpos(err.Offset, msg)
}

func (err *UnknownFunctionError) Pos() int {
	return err.Offset
}

// ArityError is an error indicating a function call with the wrong number
// of arguments. It implements InputError.
type ArityError struct {
	// Func is the function name that was called.
	Func string
	// Offset is the rune index of the call's open bracket.
	Offset int
	// Want is the function's arity.
	Want int
	// Got is the number of arguments the call supplied.
	Got int
}

func (err *ArityError) Error() string {
	return errpos(err.Offset, "cannot call "+err.Func+" with "+strconv.Itoa(err.Got)+" arguments (want "+strconv.Itoa(err.Want)+")")
}

func (err *ArityError) Pos() int {
	return err.Offset
}

// InvalidCustomFunctionError is an error indicating an attempt to register a
// custom function under a name that belongs to a built-in function or is not
// a valid identifier.
type InvalidCustomFunctionError struct {
	// Name is the rejected name.
	Name string
}

func (err *InvalidCustomFunctionError) Error() string {
	if !validIdent(err.Name) {
		return "invalid custom function name " + strconv.Quote(err.Name)
	}
	return "custom function " + strconv.Quote(err.Name) + " collides with a built-in function"
}

// IllegalConfigurationError is an error indicating a variable declaration
// that can never be used in a formula.
type IllegalConfigurationError struct {
	// Name is the variable name.
	Name string
	// Reason describes the problem.
	Reason string
}

func (err *IllegalConfigurationError) Error() string {
	return "illegal variable " + strconv.Quote(err.Name) + ": " + err.Reason
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting
// from invalid formula text implements InputError.
type InputError interface {
	error
	// Pos returns the 0-based rune index in the source of the character
	// that caused the error.
	Pos() int
}

var (
	_ InputError = (*UnparsableExpressionError)(nil)
	_ InputError = (*UnknownFunctionError)(nil)
	_ InputError = (*ArityError)(nil)
	_ InputError = (*StackUnderflowError)(nil)
)
