package calc

import (
	"regexp"
	"strings"

	"termsheet/internal/errs"
	"termsheet/internal/grid"
)

var linkPattern = regexp.MustCompile(`^[a-zA-Z]+[1-9][0-9]*$`)

// Parse turns formula source (without the leading '=') into a tree whose nodes
// all evaluate to t. Linked addresses are returned in source order,
// duplicates included.
//
// Syntax, no whitespace outside string literals:
//
//	EXPR     := LITERAL | LINK | FUNCTION | EXPR OP EXPR | '(' EXPR ')'
//	LITERAL  := [0-9]+ | [0-9]*\.[0-9]+ | "..." with \" and \\ escapes
//	LINK     := [A-Za-z]+[1-9][0-9]*
//	FUNCTION := ABS | SIN | COS | TAN '(' EXPR ')'   (case-insensitive)
//	OP       := + | - | * | /                       (one precedence, left to right)
func Parse(src string, t Type) (*Formula, []grid.Address, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, nil, errs.InvalidTypef("unknown type %v", t)
	}
	toks, err := splitLogical(src, operators)
	if err != nil {
		return nil, nil, err
	}
	p := parser{src: src, typ: t}
	root, err := p.parse(toks)
	if err != nil {
		return nil, nil, err
	}
	return &Formula{Type: t, Root: root}, p.deps, nil
}

type parser struct {
	src  string
	typ  Type
	deps []grid.Address
}

func (p *parser) fail() error {
	return errs.Syntaxf("cannot parse %q as %v", p.src, p.typ)
}

func (p *parser) parse(toks []token) (Node, error) {
	if len(toks) == 1 && !toks[0].sep {
		return p.operand(toks)
	}

	// The rightmost operator binds last, which makes a-b-c read as (a-b)-c.
	n := len(toks)
	if n < 3 || !toks[n-2].sep {
		return nil, p.fail()
	}
	op := Op(toks[n-2].text[0])
	switch op {
	case Add, Sub, Mul, Div:
	default:
		return nil, p.fail()
	}
	left, err := p.parse(toks[:n-2])
	if err != nil {
		return nil, err
	}
	right, err := p.parse(toks[n-1:])
	if err != nil {
		return nil, err
	}
	return &Binary{Op: op, L: left, R: right}, nil
}

func (p *parser) operand(toks []token) (Node, error) {
	s := toks[0].text

	if p.typ.IsLiteral(s) {
		v, err := p.typ.Parse(s, true)
		if err != nil {
			return nil, err
		}
		return &Literal{Value: v}, nil
	}

	if linkPattern.MatchString(s) {
		addr, err := grid.Parse(s)
		if err != nil {
			return nil, errs.Syntaxf("bad link %s: %v", s, err)
		}
		p.deps = append(p.deps, addr)
		return &Link{Addr: addr}, nil
	}

	// Parentheses stripped by the split may expose more structure.
	sub, err := splitLogical(s, operators)
	if err != nil {
		return nil, err
	}
	if !sameTokens(sub, toks) {
		return p.parse(sub)
	}

	open := strings.IndexByte(s, '(')
	if open > 0 && s[len(s)-1] == ')' {
		fn, ok := lookupFunc(strings.ToUpper(s[:open]))
		if !ok {
			return nil, errs.Syntaxf("unknown function %s in %q", s[:open], p.src)
		}
		args, err := splitLogical(s[open+1:len(s)-1], ",")
		if err != nil {
			return nil, err
		}
		if len(args) != 1 || args[0].sep {
			return nil, errs.Syntaxf("%v takes exactly one argument", fn)
		}
		x, err := p.parse(args)
		if err != nil {
			return nil, err
		}
		return &Unary{Fn: fn, X: x}, nil
	}

	return nil, p.fail()
}
