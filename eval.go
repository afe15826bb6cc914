package formula

import (
	"math"
	"sort"
	"strconv"
)

// Bindings supplies variable values during evaluation. Evaluation only reads
// from bindings.
type Bindings interface {
	// Lookup returns the value bound to name and whether there is one.
	Lookup(name string) (Value, bool)
}

// Env is a simple set of variable bindings.
type Env map[string]Value

// Lookup returns the value of a variable in env.
func (env Env) Lookup(name string) (Value, bool) {
	v, ok := env[name]
	return v, ok
}

// Set sets the value of a variable, labeling it with its name. Returns env
// for chaining.
func (env Env) Set(name string, v Value) Env {
	env[name] = v.Named(name)
	return env
}

// Eval evaluates the expression with the given variable bindings. env may be
// nil if the expression uses no variables. Eval is safe to call concurrently.
func (e *Expr) Eval(env Bindings) (Value, error) {
	if env == nil {
		env = Env(nil)
	}
	stack := make([]Value, 0, e.depth)
	scratch := make([]float64, e.width)
	var err error
	for _, t := range e.postfix {
		stack, scratch, err = t.eval(stack, scratch, env)
		if err != nil {
			return Value{}, err
		}
	}
	if len(stack) != 1 {
		return Value{}, &MalformedPostfixError{Depth: len(stack)}
	}
	return stack[0], nil
}

// eval applies the token to the operand stack and returns the new stack.
// scratch is a buffer for function arguments which eval grows as needed.
func (t token) eval(stack []Value, scratch []float64, env Bindings) ([]Value, []float64, error) {
	switch t.kind {
	case tokenNum:
		return append(stack, Scalar(t.num).Named(t.text)), scratch, nil
	case tokenVar:
		v, ok := env.Lookup(t.text)
		if !ok {
			return stack, scratch, &MissingVariableError{Name: t.text}
		}
		return append(stack, v), scratch, nil
	case tokenOp, tokenFunc, tokenCustom:
		n := t.arity()
		if len(stack) < n {
			return stack, scratch, &StackUnderflowError{Token: t.text, Offset: t.pos, Need: n, Have: len(stack)}
		}
		if cap(scratch) < n {
			scratch = make([]float64, n)
		}
		args := stack[len(stack)-n:]
		r := broadcast(args, scratch[:n], t.apply).Named(t.text)
		stack = append(stack[:len(stack)-n], r)
		return stack, scratch, nil
	default:
		panic("formula: cannot evaluate token " + t.String())
	}
}

// apply computes the token's function on a single set of arguments.
func (t token) apply(x []float64) float64 {
	switch t.kind {
	case tokenOp:
		return t.op.apply(x)
	case tokenFunc:
		return t.fn.call(x[0])
	case tokenCustom:
		return t.cfn.Call(x)
	default:
		panic("formula: cannot apply token " + t.String())
	}
}

func (o opKind) apply(x []float64) float64 {
	switch o {
	case opAdd:
		return x[0] + x[1]
	case opSub:
		return x[0] - x[1]
	case opMul:
		return x[0] * x[1]
	case opDiv:
		return x[0] / x[1]
	case opMod:
		return math.Mod(x[0], x[1])
	case opPow:
		return math.Pow(x[0], x[1])
	case opNeg:
		return -x[0]
	case opPlus:
		return x[0]
	default:
		panic("formula: invalid operator " + strconv.Itoa(int(o)))
	}
}

// EvalString is a shortcut to compile a formula using the variables bound in
// env and evaluate it once.
func EvalString(src string, env Env) (Value, error) {
	names := make([]string, 0, len(env))
	for k := range env {
		names = append(names, k)
	}
	sort.Strings(names)
	e, err := NewBuilder(src).Var(names...).Build()
	if err != nil {
		return Value{}, err
	}
	return e.Eval(env)
}

// MissingVariableError is an error from a lookup for a variable that is
// missing from the evaluation bindings.
type MissingVariableError struct {
	// Name is the name that was missing.
	Name string
}

func (err *MissingVariableError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// StackUnderflowError is an error indicating a postfix sequence with an
// operator or function that has too few operands. It cannot occur for
// expressions compiled from infix source. It implements InputError.
type StackUnderflowError struct {
	// Token is the text of the operator or function.
	Token string
	// Offset is the position of the token, or -1 if unknown.
	Offset int
	// Need and Have are the numbers of operands required and available.
	Need, Have int
}

func (err *StackUnderflowError) Error() string {
	return errpos(err.Offset, "stack underflow: "+err.Token+" needs "+strconv.Itoa(err.Need)+" operands, have "+strconv.Itoa(err.Have))
}

func (err *StackUnderflowError) Pos() int {
	return err.Offset
}

// MalformedPostfixError is an error indicating a postfix sequence which does
// not leave exactly one value after evaluation.
type MalformedPostfixError struct {
	// Depth is the number of values left.
	Depth int
}

func (err *MalformedPostfixError) Error() string {
	return "malformed postfix expression: " + strconv.Itoa(err.Depth) + " values left on the stack"
}
