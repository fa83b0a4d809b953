package calc

import (
	"regexp"
	"strconv"
	"strings"

	"termsheet/internal/errs"
	"termsheet/internal/textutil"
)

// Type is the declared value type of a cell and the result type of its formula.
type Type uint8

const (
	Int Type = iota + 1
	Double
	String
)

// Types lists every supported type in a stable order.
var Types = []Type{Int, Double, String}

var typeNames = map[Type]string{
	Int:    "int",
	Double: "double",
	String: "string",
}

// ParseType looks a type up by its name.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, errs.InvalidTypef("unknown type %q", name)
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Arithmetic reports whether the numeric operators and functions apply to t.
func (t Type) Arithmetic() bool {
	return t == Int || t == Double
}

// Default is the value of a freshly typed, empty cell.
func (t Type) Default() Value {
	return Value{typ: t}
}

// Format renders v. With literal set, strings come back quoted and escaped so
// the result parses as a formula literal again; numbers ignore the flag.
func (t Type) Format(v Value, literal bool) string {
	switch t {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Double:
		return strconv.FormatFloat(v.d, 'f', 6, 64)
	case String:
		if literal {
			return textutil.Quote(v.s)
		}
		return v.s
	}
	return ""
}

var (
	blank     = regexp.MustCompile(`^\s*$`)
	intPrefix = regexp.MustCompile(`^\s*([+-]?[0-9]+)`)
)

// Parse converts text to a value of type t. Blank text yields the default. Ints
// read the leading integer and ignore the rest, so "123.000000" is 123. For
// strings, literal expects the quoted and escaped form.
func (t Type) Parse(text string, literal bool) (Value, error) {
	switch t {
	case Int:
		if blank.MatchString(text) {
			return t.Default(), nil
		}
		m := intPrefix.FindStringSubmatch(text)
		if m == nil {
			return Value{}, errs.InvalidTypef("%q is not an int", text)
		}
		i, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Value{}, errs.InvalidTypef("%q is not an int", text)
		}
		return IntValue(i), nil
	case Double:
		if blank.MatchString(text) {
			return t.Default(), nil
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return Value{}, errs.InvalidTypef("%q is not a double", text)
		}
		return DoubleValue(d), nil
	case String:
		if !literal {
			return StringValue(text), nil
		}
		if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
			return Value{}, errs.InvalidTypef("%s is not a quoted string", text)
		}
		s, err := textutil.Unescape(text[1 : len(text)-1])
		if err != nil {
			return Value{}, errs.InvalidTypef("%s is not a quoted string", text)
		}
		return StringValue(s), nil
	}
	return Value{}, errs.InvalidTypef("unknown type %v", t)
}

var (
	intLiteral    = regexp.MustCompile(`^[0-9]+$`)
	doubleLiteral = regexp.MustCompile(`^[0-9]*\.[0-9]+$`)
	stringLiteral = regexp.MustCompile(`(?s)^"([^"\\]|\\.)*"$`)
)

// IsLiteral reports whether a formula token has the literal shape of type t.
// Doubles also accept the int shape.
func (t Type) IsLiteral(token string) bool {
	switch t {
	case Int:
		return intLiteral.MatchString(token)
	case Double:
		return doubleLiteral.MatchString(token) || intLiteral.MatchString(token)
	case String:
		return stringLiteral.MatchString(token)
	}
	return false
}

// Value is a tagged int, double or string.
type Value struct {
	typ Type
	i   int64
	d   float64
	s   string
}

func IntValue(i int64) Value      { return Value{typ: Int, i: i} }
func DoubleValue(d float64) Value { return Value{typ: Double, d: d} }
func StringValue(s string) Value  { return Value{typ: String, s: s} }

func (v Value) Type() Type      { return v.typ }
func (v Value) Int() int64      { return v.i }
func (v Value) Double() float64 { return v.d }
func (v Value) Str() string     { return v.s }
func (v Value) String() string  { return v.typ.Format(v, false) }
