package formula

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pkg/errors"
)

// lexer scans normalized formula text into tokens.
type lexer struct {
	src []rune
	// pos maps each rune in src to its index in the formula source.
	pos []int
	// end is the source position reported for errors at the end of input.
	end int
	// vars is the set of declared variable names.
	vars map[string]bool
	// funcs is the set of registered custom functions.
	funcs map[string]Func
	// postfix indicates that tokens are being read from postfix text, where
	// function names are not followed by argument lists.
	postfix bool
}

// lex scans all tokens in l.src. The result stops at the first error.
func (l *lexer) lex() ([]token, error) {
	toks := make([]token, 0, len(l.src)/2+1)
	for i := 0; i < len(l.src); {
		tok, n, err := l.next(i)
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		i += n
	}
	return toks, nil
}

// at returns the source position of the rune at index i.
func (l *lexer) at(i int) int {
	if i < len(l.pos) {
		return l.pos[i]
	}
	return l.end
}

// next scans the token starting at index i and returns it along with the
// number of runes it spans.
func (l *lexer) next(i int) (token, int, error) {
	r := l.src[i]
	tok := token{pos: l.at(i)}
	switch {
	case '0' <= r && r <= '9', r == '.':
		return l.scanNum(i)
	case isIdentStart(r):
		return l.scanIdent(i)
	case r == ',':
		tok.kind = tokenSep
		tok.text = ","
		return tok, 1, nil
	case isOperator(r):
		tok.kind = tokenOp
		tok.op = binop(r)
		tok.text = string(r)
		return tok, 1, nil
	case strings.ContainsRune(OpenBrackets, r):
		tok.kind = tokenOpen
		tok.text = string(r)
		return tok, 1, nil
	case strings.ContainsRune(CloseBrackets, r):
		tok.kind = tokenClose
		tok.text = string(r)
		return tok, 1, nil
	default:
		return tok, 0, &UnparsableExpressionError{Char: r, Offset: tok.pos}
	}
}

func (l *lexer) scanNum(i int) (token, int, error) {
	j := i
	for j < len(l.src) && ('0' <= l.src[j] && l.src[j] <= '9' || l.src[j] == '.') {
		j++
	}
	text := string(l.src[i:j])
	tok := token{kind: tokenNum, text: text, pos: l.at(i)}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return tok, 0, &UnparsableExpressionError{
			Char:   l.src[i],
			Offset: tok.pos,
			Reason: "invalid number " + strconv.Quote(text),
			Err:    errors.WithStack(err),
		}
	}
	tok.num = v
	return tok, j - i, nil
}

func (l *lexer) scanIdent(i int) (token, int, error) {
	j := i + 1
	for j < len(l.src) && isIdentPart(l.src[j]) {
		j++
	}
	name := string(l.src[i:j])
	tok := token{text: name, pos: l.at(i)}
	call := l.postfix || j < len(l.src) && strings.ContainsRune(OpenBrackets, l.src[j])
	switch {
	case l.vars[name]:
		tok.kind = tokenVar
		return tok, j - i, nil
	case lookupBuiltin(name) != fnNone:
		tok.kind = tokenFunc
		tok.fn = lookupBuiltin(name)
		tok.text = tok.fn.String()
	case l.funcs[name] != nil:
		tok.kind = tokenCustom
		tok.cfn = l.funcs[name]
	case call && !l.postfix:
		return tok, 0, &UnknownFunctionError{Name: name, Offset: tok.pos, Suggestion: l.suggest(name)}
	default:
		return tok, 0, &UnparsableExpressionError{
			Char:   l.src[i],
			Offset: tok.pos,
			Reason: "unknown identifier " + strconv.Quote(name),
		}
	}
	if !call {
		return tok, 0, &UnparsableExpressionError{
			Char:   l.src[j-1],
			Offset: l.at(j - 1),
			Reason: "function " + name + " must be followed by an argument list",
		}
	}
	return tok, j - i, nil
}

// suggest finds the known function name closest to name, or the empty string
// if none are close.
func (l *lexer) suggest(name string) string {
	custom := make([]string, 0, len(l.funcs))
	for k := range l.funcs {
		custom = append(custom, k)
	}
	sort.Strings(custom)
	cands := append(Builtins(), custom...)
	ranks := fuzzy.RankFindFold(name, cands)
	if len(ranks) == 0 {
		return ""
	}
	sort.Stable(ranks)
	return ranks[0].Target
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// validIdent reports whether name could be scanned as a single identifier.
func validIdent(name string) bool {
	for i, r := range name {
		if i == 0 && !isIdentStart(r) || !isIdentPart(r) {
			return false
		}
	}
	return name != ""
}
