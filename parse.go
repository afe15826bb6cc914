package formula

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Expr is a compiled formula that can be evaluated against variable
// bindings. An Expr is never modified after it is built.
type Expr struct {
	// name is the declared function name.
	name string
	// params is the ordered list of declared parameter names.
	params []string
	// vars is the sorted list of variable names the expression reads.
	vars []string
	// postfix is the compiled token sequence.
	postfix []token
	// depth is the largest operand stack depth during evaluation.
	depth int
	// width is the largest arity of any token.
	width int
}

// Compile is a shortcut to compile a formula which declares its own
// parameters, e.g. "f(x,y) = x*y".
func Compile(src string) (*Expr, error) {
	return NewBuilder(src).Build()
}

// Name returns the declared function name of the formula.
func (e *Expr) Name() string {
	return e.name
}

// Params returns the declared parameter names in declaration order.
func (e *Expr) Params() []string {
	return append([]string(nil), e.params...)
}

// Vars returns the variable names used when evaluating the expression, in
// sorted order. This is a subset of Params.
func (e *Expr) Vars() []string {
	return append([]string(nil), e.vars...)
}

// Declaration returns the formula's declaration prefix, e.g. "f(x,y)".
func (e *Expr) Declaration() string {
	return e.name + "(" + strings.Join(e.params, ",") + ")"
}

// String returns the postfix form of the expression as space-separated
// tokens. Negation is written as UnaryMinus.
func (e *Expr) String() string {
	var b strings.Builder
	for i, t := range e.postfix {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.text)
	}
	return b.String()
}

// group is an open bracket on the operator stack.
type group struct {
	// call indicates that the bracket opens a function argument list.
	call bool
	// seps is the number of separators seen in the group.
	seps int
	// mark is the output length at the open bracket or last separator.
	mark int
}

// stacks holds the state of one translation from infix to postfix.
type stacks struct {
	ops    []token
	groups []group
	out    []token
}

func (s *stacks) top() token {
	return s.ops[len(s.ops)-1]
}

// pop moves the top of the operator stack to the output.
func (s *stacks) pop() {
	s.out = append(s.out, s.top())
	s.ops = s.ops[:len(s.ops)-1]
}

// popUntilOpen pops operators to the output until an open bracket is on
// top of the operator stack. Returns false if the stack empties first.
func (s *stacks) popUntilOpen() bool {
	for len(s.ops) > 0 {
		if s.top().kind == tokenOpen {
			return true
		}
		s.pop()
	}
	return false
}

// translate converts infix tokens to postfix using the shunting-yard
// algorithm. end is the source position of the end of input.
func translate(toks []token, end int) ([]token, error) {
	s := stacks{out: make([]token, 0, len(toks))}
	for _, t := range toks {
		if err := t.shunt(&s); err != nil {
			return nil, err
		}
	}
	for len(s.ops) > 0 {
		if t := s.top(); t.kind == tokenOpen {
			return nil, &UnparsableExpressionError{Char: firstRune(t.text), Offset: t.pos, Reason: "unclosed bracket"}
		}
		s.pop()
	}
	return s.out, nil
}

// shunt applies the token to the translation stacks.
func (t token) shunt(s *stacks) error {
	switch t.kind {
	case tokenNum, tokenVar:
		s.out = append(s.out, t)
	case tokenOp:
		o := t.op.info()
	loop:
		for len(s.ops) > 0 {
			top := s.top()
			switch top.kind {
			case tokenOp:
				p := top.op.info()
				if !o.right && o.prec <= p.prec || o.right && o.prec < p.prec {
					s.pop()
					continue
				}
				break loop
			case tokenFunc, tokenCustom:
				s.pop()
			default:
				break loop
			}
		}
		s.ops = append(s.ops, t)
	case tokenFunc, tokenCustom:
		s.ops = append(s.ops, t)
	case tokenSep:
		if !s.popUntilOpen() || !s.groups[len(s.groups)-1].call {
			return &UnparsableExpressionError{Char: ',', Offset: t.pos, Reason: "separator outside function call"}
		}
		g := &s.groups[len(s.groups)-1]
		if len(s.out) == g.mark {
			return &UnparsableExpressionError{Char: ',', Offset: t.pos, Reason: "empty argument"}
		}
		g.seps++
		g.mark = len(s.out)
	case tokenOpen:
		call := false
		if len(s.ops) > 0 {
			k := s.top().kind
			call = k == tokenFunc || k == tokenCustom
		}
		s.ops = append(s.ops, t)
		s.groups = append(s.groups, group{call: call, mark: len(s.out)})
	case tokenClose:
		if !s.popUntilOpen() {
			return &UnparsableExpressionError{Char: firstRune(t.text), Offset: t.pos, Reason: "close bracket with no open bracket"}
		}
		open := s.top()
		s.ops = s.ops[:len(s.ops)-1]
		g := s.groups[len(s.groups)-1]
		s.groups = s.groups[:len(s.groups)-1]
		if bracketIndex(open.text) != bracketIndex(t.text) {
			return &UnparsableExpressionError{Char: firstRune(t.text), Offset: t.pos, Reason: "mismatched bracket: " + open.text + "expr" + t.text}
		}
		if !g.call {
			if len(s.out) == g.mark {
				return &UnparsableExpressionError{Char: firstRune(t.text), Offset: t.pos, Reason: "no expression in brackets"}
			}
			return nil
		}
		got := 0
		if len(s.out) > g.mark || g.seps > 0 {
			if len(s.out) == g.mark {
				return &UnparsableExpressionError{Char: firstRune(t.text), Offset: t.pos, Reason: "empty argument"}
			}
			got = g.seps + 1
		}
		fn := s.top()
		if want := fn.arity(); got != want {
			return &ArityError{Func: fn.text, Offset: open.pos, Want: want, Got: got}
		}
		s.pop()
	default:
		panic("formula: unknown token: " + t.String())
	}
	return nil
}

// checkDepth simulates evaluation of a postfix sequence to verify that every
// operator has its operands and exactly one value remains. It returns the
// largest stack depth and arity reached.
func checkDepth(out []token, end int) (depth, width int, err error) {
	d := 0
	extra := -1
	for i, t := range out {
		n := t.arity()
		if d < n {
			return 0, 0, &UnparsableExpressionError{Char: sourceRune(t), Offset: t.pos, Reason: "missing operand for " + t.text}
		}
		if n == 0 && d == 1 {
			extra = i
		}
		d += 1 - n
		if d > depth {
			depth = d
		}
		if n > width {
			width = n
		}
	}
	switch {
	case d == 0:
		return 0, 0, &UnparsableExpressionError{Offset: end, Reason: "empty expression"}
	case d > 1:
		t := out[extra]
		return 0, 0, &UnparsableExpressionError{Char: sourceRune(t), Offset: t.pos, Reason: "missing operator before " + t.text}
	}
	return depth, width, nil
}

// usedVars returns the sorted unique variable names in postfix.
func usedVars(postfix []token) []string {
	seen := make(map[string]bool)
	var r []string
	for _, t := range postfix {
		if t.kind == tokenVar && !seen[t.text] {
			seen[t.text] = true
			r = append(r, t.text)
		}
	}
	sort.Strings(r)
	return r
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// sourceRune returns the first rune of a token as it was written in the
// source.
func sourceRune(t token) rune {
	if t.kind == tokenOp && t.op == opNeg {
		return '-'
	}
	return firstRune(t.text)
}
