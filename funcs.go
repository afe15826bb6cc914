package formula

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// Func is a custom function of a fixed number of real arguments. Functions
// must be pure functions of their inputs if the expressions using them are
// evaluated concurrently.
type Func interface {
	// Arity returns the number of arguments the function takes. It must
	// always return the same value.
	Arity() int
	// Call evaluates the function. args has exactly Arity elements. Call may
	// modify the elements of args.
	Call(args []float64) float64
}

type monadic func(float64) float64

func (monadic) Arity() int { return 1 }
func (f monadic) Call(args []float64) float64 { return f(args[0]) }

// Monadic wraps a function of one variable into a Func.
func Monadic(f func(x float64) float64) Func {
	return monadic(f)
}

type dyadic func(x, y float64) float64

func (dyadic) Arity() int { return 2 }
func (f dyadic) Call(args []float64) float64 { return f(args[0], args[1]) }

// Dyadic wraps a function of two variables into a Func, e.g. math.Atan2.
func Dyadic(f func(x, y float64) float64) Func {
	return dyadic(f)
}

type variadic struct {
	n int
	f func([]float64) float64
}

func (v variadic) Arity() int { return v.n }
func (v variadic) Call(args []float64) float64 { return v.f(args) }

// Variadic wraps a function of n variables into a Func. Panics if n is
// negative.
func Variadic(n int, f func(args []float64) float64) Func {
	if n < 0 {
		panic("formula: negative arity " + strconv.Itoa(n))
	}
	return variadic{n, f}
}

// builtin identifies one of the built-in functions. All built-ins take one
// argument.
type builtin int8

const (
	fnNone builtin = iota
	fnAbs
	fnAcos
	fnAsin
	fnAtan
	fnCbrt
	fnCeil
	fnCos
	fnCosh
	fnExp
	fnExpm1
	fnFloor
	fnRound
	fnRandom
	fnLog
	fnLog10
	fnSin
	fnSinh
	fnSqrt
	fnTan
	fnTanh
	fnCount
)

var builtins = [fnCount]struct {
	name string
	f    func(float64) float64
}{
	fnNone:  {},
	fnAbs:   {"abs", math.Abs},
	fnAcos:  {"acos", math.Acos},
	fnAsin:  {"asin", math.Asin},
	fnAtan:  {"atan", math.Atan},
	fnCbrt:  {"cbrt", math.Cbrt},
	fnCeil:  {"ceil", math.Ceil},
	fnCos:   {"cos", math.Cos},
	fnCosh:  {"cosh", math.Cosh},
	fnExp:   {"exp", math.Exp},
	fnExpm1: {"expm1", math.Expm1},
	fnFloor: {"floor", math.Floor},
	// round rounds halves toward positive infinity.
	fnRound:  {"round", func(x float64) float64 { return math.Floor(x + 0.5) }},
	fnRandom: {"random", func(x float64) float64 { return rand.Float64() * x }},
	fnLog:    {"log", math.Log},
	fnLog10:  {"log10", math.Log10},
	fnSin:    {"sin", math.Sin},
	fnSinh:   {"sinh", math.Sinh},
	fnSqrt:   {"sqrt", math.Sqrt},
	fnTan:    {"tan", math.Tan},
	fnTanh:   {"tanh", math.Tanh},
}

// builtinNames maps lowercase function names to built-ins.
var builtinNames = func() map[string]builtin {
	m := make(map[string]builtin, fnCount-1)
	for k := fnNone + 1; k < fnCount; k++ {
		m[builtins[k].name] = k
	}
	return m
}()

// lookupBuiltin finds a built-in function by name, ignoring case.
func lookupBuiltin(name string) builtin {
	return builtinNames[strings.ToLower(name)]
}

func (b builtin) String() string {
	if b <= fnNone || b >= fnCount {
		return "builtin(" + strconv.Itoa(int(b)) + ")"
	}
	return builtins[b].name
}

func (b builtin) call(x float64) float64 {
	return builtins[b].f(x)
}

// Builtins returns the names of the built-in functions in sorted order.
func Builtins() []string {
	r := make([]string, 0, len(builtinNames))
	for k := range builtinNames {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}
