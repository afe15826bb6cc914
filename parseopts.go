package formula

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DefaultName is the function name given to formulas that do not declare
// one.
const DefaultName = "f"

// Builder collects the variables and custom functions for compiling a
// formula. Registration errors are recorded as they happen; the first one is
// available from Err and is returned by Build.
type Builder struct {
	src    string
	vars   []string
	seen   map[string]bool
	funcs  map[string]Func
	logger log.Logger
	err    error
}

// NewBuilder creates a builder for a formula. The source may begin with a
// declaration of the form "name(p1,p2,...)=".
func NewBuilder(src string) *Builder {
	return &Builder{
		src:    src,
		seen:   make(map[string]bool),
		funcs:  make(map[string]Func),
		logger: log.NewNopLogger(),
	}
}

// Var declares variables. Variables declared this way follow any parameters
// declared in the formula source, in the order given. A name that cannot be
// scanned as an identifier, that is already declared, or that equals a
// built-in function name in any case is rejected with an
// IllegalConfigurationError. Returns b for chaining.
func (b *Builder) Var(names ...string) *Builder {
	for _, name := range names {
		if err := checkVar(name, b.seen); err != nil {
			b.fail(err)
			continue
		}
		b.seen[name] = true
		b.vars = append(b.vars, name)
	}
	return b
}

// Func registers a custom function. Registering under the name of a
// built-in function, in any case, is rejected with an
// InvalidCustomFunctionError. A nil fn removes a registration. Returns b for
// chaining.
func (b *Builder) Func(name string, fn Func) *Builder {
	if !validIdent(name) || lookupBuiltin(name) != fnNone {
		b.fail(&InvalidCustomFunctionError{Name: name})
		return b
	}
	if fn == nil {
		delete(b.funcs, name)
		return b
	}
	b.funcs[name] = fn
	return b
}

// Funcs registers a group of custom functions in name order. Returns b for
// chaining.
func (b *Builder) Funcs(fns map[string]Func) *Builder {
	names := make([]string, 0, len(fns))
	for k := range fns {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		b.Func(k, fns[k])
	}
	return b
}

// Logger sets the logger for compile diagnostics. The default discards
// everything. Returns b for chaining.
func (b *Builder) Logger(l log.Logger) *Builder {
	if l == nil {
		l = log.NewNopLogger()
	}
	b.logger = l
	return b
}

// Err returns the first registration error, if any.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build compiles the formula to postfix form.
func (b *Builder) Build() (*Expr, error) {
	e, body, offset, err := b.prepare()
	if err != nil {
		return nil, err
	}
	src, pos := normalize(body, offset)
	l := lexer{src: src, pos: pos, end: offset + len(body), vars: b.varSet(e), funcs: b.funcs}
	toks, err := l.lex()
	if err != nil {
		return nil, err
	}
	if e.postfix, err = translate(toks, l.end); err != nil {
		return nil, err
	}
	if e.depth, e.width, err = checkDepth(e.postfix, l.end); err != nil {
		return nil, err
	}
	e.vars = usedVars(e.postfix)
	level.Debug(b.logger).Log("msg", "compiled expression", "source", b.src, "postfix", e.String(), "params", strings.Join(e.params, ","))
	return e, nil
}

// BuildPostfix builds an expression from space-separated postfix tokens in
// the format of Expr.String, optionally preceded by a declaration. The
// sequence is not checked for balance; evaluating a malformed sequence
// returns a StackUnderflowError or MalformedPostfixError.
func (b *Builder) BuildPostfix() (*Expr, error) {
	e, body, offset, err := b.prepare()
	if err != nil {
		return nil, err
	}
	l := lexer{vars: b.varSet(e), funcs: b.funcs, postfix: true}
	for i := 0; i < len(body); {
		if unicode.IsSpace(body[i]) {
			i++
			continue
		}
		j := i
		for j < len(body) && !unicode.IsSpace(body[j]) {
			j++
		}
		l.src = body[i:j]
		l.pos = make([]int, j-i)
		for k := range l.pos {
			l.pos[k] = offset + i + k
		}
		l.end = offset + j
		t, n, err := l.next(0)
		if err != nil {
			return nil, err
		}
		switch {
		case n != j-i:
			return nil, &UnparsableExpressionError{Char: body[i+n], Offset: offset + i + n, Reason: "postfix tokens must be separated by spaces"}
		case t.kind == tokenSep, t.kind == tokenOpen, t.kind == tokenClose:
			return nil, &UnparsableExpressionError{Char: body[i], Offset: offset + i, Reason: "not allowed in postfix"}
		}
		e.postfix = append(e.postfix, t)
		if d := t.arity(); d > e.width {
			e.width = d
		}
		i = j
	}
	e.depth = len(e.postfix)
	e.vars = usedVars(e.postfix)
	level.Debug(b.logger).Log("msg", "loaded postfix expression", "source", b.src, "params", strings.Join(e.params, ","))
	return e, nil
}

// prepare checks registrations and splits the declaration from the body of
// the source. offset is the rune index of the body in the source.
func (b *Builder) prepare() (e *Expr, body []rune, offset int, err error) {
	if b.err != nil {
		return nil, nil, 0, b.err
	}
	src := []rune(b.src)
	name, params, offset, err := parseDecl(src)
	if err != nil {
		return nil, nil, 0, err
	}
	e = &Expr{name: name, params: params}
	if e.name == "" {
		e.name = DefaultName
	}
	declared := make(map[string]bool, len(params))
	for _, p := range params {
		declared[p] = true
	}
	for _, v := range b.vars {
		if !declared[v] {
			e.params = append(e.params, v)
		}
	}
	for _, p := range e.params {
		if b.funcs[p] != nil {
			return nil, nil, 0, &IllegalConfigurationError{Name: p, Reason: "collides with custom function"}
		}
	}
	return e, src[offset:], offset, nil
}

func (b *Builder) varSet(e *Expr) map[string]bool {
	m := make(map[string]bool, len(e.params))
	for _, p := range e.params {
		m[p] = true
	}
	return m
}

// checkVar validates a variable name against the names in seen.
func checkVar(name string, seen map[string]bool) error {
	switch {
	case !validIdent(name):
		return &IllegalConfigurationError{Name: name, Reason: "not an identifier"}
	case lookupBuiltin(name) != fnNone:
		return &IllegalConfigurationError{Name: name, Reason: "collides with built-in function " + lookupBuiltin(name).String()}
	case seen[name]:
		return &IllegalConfigurationError{Name: name, Reason: "declared more than once"}
	}
	return nil
}

// parseDecl parses the declaration "name(p1,p2,...)=" at the start of src.
// If src has no '=', then there is no declaration, and the results are
// empty with offset 0. Otherwise, offset is the index following the '='.
func parseDecl(src []rune) (name string, params []string, offset int, err error) {
	eq := -1
	for i, r := range src {
		if r == '=' {
			eq = i
			break
		}
	}
	if eq < 0 {
		return "", nil, 0, nil
	}
	i := skipSpace(src, 0, eq)
	j := i
	for j < eq && (j == i && isIdentStart(src[j]) || j > i && isIdentPart(src[j])) {
		j++
	}
	if j == i {
		return "", nil, 0, declError(src, i, eq, "expected function name")
	}
	name = string(src[i:j])
	if lookupBuiltin(name) != fnNone {
		return "", nil, 0, &UnparsableExpressionError{Char: src[i], Offset: i, Reason: "cannot declare built-in function " + strconv.Quote(name)}
	}
	i = skipSpace(src, j, eq)
	if i >= eq || src[i] != '(' {
		return "", nil, 0, declError(src, i, eq, "expected ( after "+name)
	}
	seen := make(map[string]bool)
	i = skipSpace(src, i+1, eq)
	if i < eq && src[i] == ')' {
		i++
	} else {
		for {
			j = i
			for j < eq && isIdentPart(src[j]) {
				j++
			}
			p := string(src[i:j])
			if j == i {
				return "", nil, 0, declError(src, i, eq, "expected parameter name")
			}
			if err := checkVar(p, seen); err != nil {
				return "", nil, 0, err
			}
			seen[p] = true
			params = append(params, p)
			i = skipSpace(src, j, eq)
			if i >= eq {
				return "", nil, 0, declError(src, i, eq, "unclosed parameter list")
			}
			if src[i] == ')' {
				i++
				break
			}
			if src[i] != ',' {
				return "", nil, 0, declError(src, i, eq, "expected , or )")
			}
			i = skipSpace(src, i+1, eq)
		}
	}
	if i = skipSpace(src, i, eq); i != eq {
		return "", nil, 0, declError(src, i, eq, "expected =")
	}
	return name, params, eq + 1, nil
}

func skipSpace(src []rune, i, end int) int {
	for i < end && unicode.IsSpace(src[i]) {
		i++
	}
	return i
}

func declError(src []rune, i, eq int, reason string) error {
	r := utf8.RuneError
	if i < len(src) {
		r = src[i]
	}
	if i == eq {
		r = '='
	}
	return &UnparsableExpressionError{Char: r, Offset: i, Reason: "invalid declaration: " + reason}
}
