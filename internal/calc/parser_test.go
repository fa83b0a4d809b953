package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termsheet/internal/errs"
	"termsheet/internal/grid"
)

func TestSplitLogical(t *testing.T) {
	texts := func(toks []token) []string {
		var out []string
		for _, tok := range toks {
			out = append(out, tok.text)
		}
		return out
	}

	cases := []struct {
		src  string
		want []string
	}{
		{"5+ABS(7)-ABS(1,ABS(2,3))", []string{"5", "+", "ABS(7)", "-", "ABS(1,ABS(2,3))"}},
		{"1+(2-3)", []string{"1", "+", "2-3"}},
		{`1+"1+2","foo ABS(9,8)"`, []string{"1", "+", `"1+2"`, ",", `"foo ABS(9,8)"`}},
		{`"a\"b"+"c"`, []string{`"a\"b"`, "+", `"c"`}},
		{"(1)+(2)", []string{"1", "+", "2"}},
		{"(1)+(2)*((3))", []string{"1", "+", "2", "*", "(3)"}},
		{"(1)-(2)", []string{"1", "-", "2"}},
		{"", nil},
	}
	for _, c := range cases {
		toks, err := splitLogical(c.src, operators)
		require.NoError(t, err, c.src)
		assert.Equal(t, c.want, texts(toks), c.src)
	}

	toks, err := splitLogical("(1)+(2)", operators)
	require.NoError(t, err)
	assert.True(t, toks[1].sep)
	assert.False(t, toks[0].sep)

	// Outer parentheses stay when they do not enclose the whole operand.
	assert.Equal(t, "(1)*(2)", unwrapParens("(1)*(2)"))
	assert.Equal(t, "(1)*(2)", unwrapParens("((1)*(2))"))
	assert.Equal(t, `")"`, unwrapParens(`(")")`))
}

func TestSplitLogicalErrors(t *testing.T) {
	for _, src := range []string{"1+(2", "1+2)", ")(", `1+"abc`, `ab"c"`, "1+2+(3+4+(5+6)"} {
		_, err := splitLogical(src, operators)
		assert.ErrorIs(t, err, errs.ErrIncorrectFormulaSyntax, src)
	}
}

func TestParseSource(t *testing.T) {
	cases := []struct {
		src  string
		typ  Type
		want string
	}{
		{"1+2", Int, "1+2"},
		{"((1+(2)))+(3+(4+(5+((6)))))", Int, "1+2+3+4+5+6"},
		{"AbS(5)+sIn(cos(6))", Int, "ABS(5)+SIN(COS(6))"},
		{"AbS(5)+sIn(cos(6))", Double, "ABS(5.000000)+SIN(COS(6.000000))"},
		{"a1+b22*C3", Int, "A1+B22*C3"},
		{"1.5/.5", Double, "1.500000/0.500000"},
		{`"a"+B1+"\"q\""`, String, `"a"+B1+"\"q\""`},
		{`("a")`, String, `"a"`},
		{`"x"-"y"`, String, `"x"-"y"`},
		{"abs((((7))))", Int, "ABS(7)"},
	}
	for _, c := range cases {
		f, _, err := Parse(c.src, c.typ)
		require.NoError(t, err, c.src)
		assert.Equal(t, c.want, f.Source(), c.src)
		assert.Equal(t, c.typ, f.Type)
	}
}

func TestParseStructure(t *testing.T) {
	f, _, err := Parse("1-2-3", Int)
	require.NoError(t, err)

	root, ok := f.Root.(*Binary)
	require.True(t, ok)
	assert.Equal(t, Sub, root.Op)
	assert.Equal(t, "3", root.R.Source())

	left, ok := root.L.(*Binary)
	require.True(t, ok)
	assert.Equal(t, "1-2", left.Source())

	f, _, err = Parse("1-(2-3)", Int)
	require.NoError(t, err)
	assert.Equal(t, "1", f.Root.(*Binary).L.Source())
	assert.Equal(t, "2-3", f.Root.(*Binary).R.Source())
}

func TestParseDependencies(t *testing.T) {
	f, deps, err := Parse("A1+abs(b2)*A1-(C3)", Double)
	require.NoError(t, err)

	want := []grid.Address{grid.MustParse("A1"), grid.MustParse("B2"), grid.MustParse("A1"), grid.MustParse("C3")}
	assert.Equal(t, want, deps)
	assert.Equal(t, want, f.Links())

	_, deps, err = Parse("1+2", Int)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestParseErrors(t *testing.T) {
	syntax := []struct {
		src string
		typ Type
	}{
		{"", Int},
		{"1+", Int},
		{"+1", Int},
		{"1++2", Int},
		{"1+2+(3+4+(5+6)", Int},
		{"1+2)", Int},
		{"foo(1)", Int},
		{"abs(1,2)", Int},
		{"abs()", Int},
		{"abs(1", Int},
		{"A0", Int},
		{"1 + 2", Int},
		{"1.5.5", Double},
		{"ABS(1)", String},
		{"hello", String},
		{`a"b"`, String},
		{"A1x", Int},
	}
	for _, c := range syntax {
		_, _, err := Parse(c.src, c.typ)
		assert.ErrorIs(t, err, errs.ErrIncorrectFormulaSyntax, "%q as %v", c.src, c.typ)
	}

	typed := []struct {
		src string
		typ Type
	}{
		{"99999999999999999999", Int},
		{"1.5", Int},
		{"1+2.0", Int},
	}
	for _, c := range typed {
		_, _, err := Parse(c.src, c.typ)
		assert.Error(t, err, "%q as %v", c.src, c.typ)
	}

	_, _, err := Parse("1", Type(42))
	assert.ErrorIs(t, err, errs.ErrInvalidType)
}

func TestSourceFixedPoint(t *testing.T) {
	sources := []struct {
		src string
		typ Type
	}{
		{"1+2-4*6/3*(1)*(6-2)*abs(abs(1-2)-abs(3-5))+0.1-abs(0-.2)+0.1*57/57", Double},
		{"((1+(2)))+(3+(4+(5+((6)))))", Int},
		{"tan(3)*cOs(1)-Sin(2)", Int},
		{`"Hello"+" "+"W\\o\"rld"`, String},
		{"1-(2-(3-4))", Int},
	}
	for _, s := range sources {
		first, _, err := Parse(s.src, s.typ)
		require.NoError(t, err, s.src)
		second, _, err := Parse(first.Source(), s.typ)
		require.NoError(t, err, first.Source())
		assert.Equal(t, first.Source(), second.Source())

		v1, err1 := NewEvaluator(nil).Eval(first)
		v2, err2 := NewEvaluator(nil).Eval(second)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, v1, v2, s.src)
	}
}
