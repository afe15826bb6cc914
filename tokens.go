package formula

import (
	"strconv"
	"strings"
)

// token is a lexical unit of a formula. Tokens are values and are never
// modified once scanned.
type token struct {
	kind tokenKind
	// text is the literal text of the token as it appears in postfix output.
	text string
	// pos is the rune index of the token in the formula source, or -1 if
	// the token did not come from infix source.
	pos int

	num float64
	op  opKind
	fn  builtin
	cfn Func
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenNum is a numeric literal.
	tokenNum
	// tokenVar is a variable resolved from the environment at evaluation.
	tokenVar
	// tokenOp is an operator.
	tokenOp
	// tokenFunc is a built-in function.
	tokenFunc
	// tokenCustom is a registered custom function.
	tokenCustom
	// tokenSep is the function argument separator.
	tokenSep
	// tokenOpen is an open bracket, one of ( [ {.
	tokenOpen
	// tokenClose is a close bracket, one of ) ] }.
	tokenClose
)

var tokenKindNames = [...]string{
	tokenNone:   "None",
	tokenNum:    "Num",
	tokenVar:    "Var",
	tokenOp:     "Op",
	tokenFunc:   "Func",
	tokenCustom: "Custom",
	tokenSep:    "Sep",
	tokenOpen:   "Open",
	tokenClose:  "Close",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

func (t token) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

// arity returns the number of values the token pops when evaluated. Tokens
// which are not evaluated have arity 0.
func (t token) arity() int {
	switch t.kind {
	case tokenOp:
		return t.op.info().arity()
	case tokenFunc:
		return 1
	case tokenCustom:
		return t.cfn.Arity()
	default:
		return 0
	}
}

// opKind identifies an operator.
type opKind int8

const (
	opNone opKind = iota
	opAdd
	opSub
	opMul
	opDiv
	opMod
	opPow
	opNeg
	opPlus
)

// UnaryMinus is the rune the unary-operator normalizer substitutes for a
// minus sign that negates rather than subtracts.
const UnaryMinus = '#'

// Operators contains the runes which are considered to be operators after
// normalization.
const Operators = "+-*/^%#"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// A bracket in byte position k in OpenBrackets is matched with the bracket in
// byte position k in CloseBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

type operator struct {
	// sym is the operator's text.
	sym string
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// unary indicates that the operator takes one operand.
	unary bool
}

func (o operator) arity() int {
	if o.unary {
		return 1
	}
	return 2
}

var operators = [...]operator{
	opNone: {},
	opAdd:  {sym: "+", prec: 1},
	opSub:  {sym: "-", prec: 1},
	opMul:  {sym: "*", prec: 2},
	opDiv:  {sym: "/", prec: 2},
	opMod:  {sym: "%", prec: 2},
	opPow:  {sym: "^", prec: 3, right: true},
	opNeg:  {sym: string(UnaryMinus), prec: 4, right: true, unary: true},
	// Unary plus is dropped by the normalizer, so it has no symbol of its
	// own in source text.
	opPlus: {sym: "+", prec: 4, right: true, unary: true},
}

func (k opKind) info() operator {
	return operators[k]
}

// binop gets an operator for a symbol. If there is no such operator, then
// the result is opNone.
func binop(r rune) opKind {
	switch r {
	case '+':
		return opAdd
	case '-':
		return opSub
	case '*':
		return opMul
	case '/':
		return opDiv
	case '%':
		return opMod
	case '^':
		return opPow
	case UnaryMinus:
		return opNeg
	default:
		return opNone
	}
}

// isOperator reports whether r is an operator rune after normalization,
// including the raw minus sign.
func isOperator(r rune) bool {
	return strings.ContainsRune(Operators, r)
}

// bracketIndex returns the position of an open or close bracket within
// OpenBrackets or CloseBrackets, or -1 if the text is no bracket.
func bracketIndex(text string) int {
	if k := strings.Index(OpenBrackets, text); k >= 0 && len(text) == 1 {
		return k
	}
	if k := strings.Index(CloseBrackets, text); k >= 0 && len(text) == 1 {
		return k
	}
	return -1
}
