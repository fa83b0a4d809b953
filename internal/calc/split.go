package calc

import (
	"strings"

	"termsheet/internal/errs"
	"termsheet/internal/textutil"
)

// operators are the default separators of a logical split.
const operators = ",+-*/"

// token is one section of a logical split: either a single separator
// character or an operand.
type token struct {
	text string
	sep  bool
}

// splitLogical cuts src at every separator that sits outside parentheses and
// string literals, e.g.
//
//	5+ABS(7)-ABS(1,ABS(2,3))   ->  5 + ABS(7) - ABS(1,ABS(2,3))
//	1+(2-3)                    ->  1 + 2-3
//	1+"1+2","foo ABS(9,8)"     ->  1 + "1+2" , "foo ABS(9,8)"
//
// An operand wrapped in one matching pair of parentheses loses them.
func splitLogical(src, seps string) ([]token, error) {
	var toks []token
	var cur strings.Builder
	depth := 0

	flush := func() {
		s := unwrapParens(cur.String())
		cur.Reset()
		if s != "" {
			toks = append(toks, token{text: s})
		}
	}

	r := strings.NewReader(src)
	for {
		c, err := r.ReadByte()
		if err != nil {
			break
		}
		switch {
		case depth == 0 && strings.IndexByte(seps, c) >= 0:
			flush()
			toks = append(toks, token{text: string(c), sep: true})
			continue
		case c == '"':
			if depth == 0 && cur.Len() > 0 {
				return nil, errs.Syntaxf("unexpected '\"' in %q", src)
			}
			body, err := textutil.ReadString(r)
			if err != nil {
				return nil, errs.Syntaxf("unterminated string in %q", src)
			}
			cur.WriteString("\"" + body + "\"")
			if depth == 0 {
				flush()
			}
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, errs.Syntaxf("unbalanced ')' in %q", src)
			}
		}
		cur.WriteByte(c)
	}
	if depth != 0 {
		return nil, errs.Syntaxf("unbalanced '(' in %q", src)
	}
	flush()
	return toks, nil
}

// unwrapParens strips s of its outer parentheses when the first '(' closes at
// the very last byte.
func unwrapParens(s string) string {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s
			}
		}
	}
	return s[1 : len(s)-1]
}

func sameTokens(a, b []token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
