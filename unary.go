package formula

import (
	"strings"
	"unicode"
)

// normalize resolves the roles of + and - in src and removes whitespace.
// A sign is binary when it follows a term: something that was emitted and is
// neither an operator, an open bracket, nor a separator. Unary + is dropped;
// unary - becomes UnaryMinus. The second result holds the source rune index
// of each rune in the first.
//
// This must happen before lexing because the lexer does not look behind the
// current rune.
func normalize(src []rune, offset int) ([]rune, []int) {
	out := make([]rune, 0, len(src))
	pos := make([]int, 0, len(src))
	for i, r := range src {
		switch {
		case r == '+':
			if binaryContext(out) {
				out = append(out, r)
				pos = append(pos, offset+i)
			}
		case r == '-':
			if !binaryContext(out) {
				r = UnaryMinus
			}
			out = append(out, r)
			pos = append(pos, offset+i)
		case unicode.IsSpace(r):
			// drop
		default:
			out = append(out, r)
			pos = append(pos, offset+i)
		}
	}
	return out, pos
}

// binaryContext reports whether a sign following out is a binary operator.
func binaryContext(out []rune) bool {
	if len(out) == 0 {
		return false
	}
	last := out[len(out)-1]
	return !isOperator(last) && !strings.ContainsRune(OpenBrackets, last) && last != ','
}

// Normalize returns src with whitespace removed and unary minus signs
// replaced by UnaryMinus, in the form the tokenizer consumes.
func Normalize(src string) string {
	out, _ := normalize([]rune(src), 0)
	return string(out)
}
