package sheet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termsheet/internal/calc"
	"termsheet/internal/errs"
	"termsheet/internal/grid"
)

var at = grid.MustParse

func text(t *testing.T, s *Sheet, addr string) string {
	t.Helper()
	got, err := s.Get(at(addr)).EvaluatedText()
	require.NoError(t, err, addr)
	return got
}

// recorder collects notified addresses.
type recorder struct {
	seen []string
}

func (r *recorder) watch(s *Sheet) {
	s.OnCellChanged(func(c *Cell) { r.seen = append(r.seen, c.Address().String()) })
}

// checkIndex verifies that the inverted index matches the stored cells exactly.
func checkIndex(t *testing.T, s *Sheet) {
	t.Helper()
	want := map[grid.Address]map[grid.Address]struct{}{}
	for a, c := range s.cells {
		if c.Type() == calc.String {
			assert.NotEmpty(t, c.Source(), "empty string cell %s is stored", a)
		}
		assert.Equal(t, a, c.Address())
		for _, d := range c.Dependencies() {
			if want[d] == nil {
				want[d] = map[grid.Address]struct{}{}
			}
			want[d][a] = struct{}{}
		}
	}
	assert.Equal(t, want, s.deps)
}

func TestFormulaLiteral(t *testing.T) {
	s := New()
	require.NoError(t, s.SetType(at("A1"), calc.Double))
	require.NoError(t, s.SetContent(at("A1"), "=1+2-4*6/3*(1)*(6-2)*abs(abs(1-2)-abs(3-5))+0.1-abs(0-.2)+0.1*57/57"))
	assert.Equal(t, "-8.000000", text(t, s, "A1"))
}

func TestConcatenation(t *testing.T) {
	s := New()
	require.NoError(t, s.SetContent(at("B1"), "Hello"))
	require.NoError(t, s.SetContent(at("B2"), "World"))
	require.NoError(t, s.SetContent(at("B3"), `=B1+" "+B2+"!"`))
	assert.Equal(t, "Hello World!", text(t, s, "B3"))
	assert.Equal(t, `=B1+" "+B2+"!"`, s.Get(at("B3")).Source())
	checkIndex(t, s)
}

func TestPropagation(t *testing.T) {
	s := New()
	for i, src := range []string{"1", "=C1+1", "=C2+1", "=C3+1"} {
		a := at(fmt.Sprintf("C%d", i+1))
		require.NoError(t, s.SetType(a, calc.Int))
		require.NoError(t, s.SetContent(a, src))
	}
	assert.Equal(t, "4", text(t, s, "C4"))

	var r recorder
	r.watch(s)
	require.NoError(t, s.SetContent(at("C1"), "2"))
	assert.Equal(t, "5", text(t, s, "C4"))
	assert.ElementsMatch(t, []string{"C1", "C2", "C3", "C4"}, r.seen)
	checkIndex(t, s)
}

func TestNotifyOnce(t *testing.T) {
	s := New()
	for addr, src := range map[string]string{"A1": "1", "B1": "=A1+1", "B2": "=A1*2", "C1": "=B1+B2+A1"} {
		require.NoError(t, s.SetType(at(addr), calc.Int))
		require.NoError(t, s.SetContent(at(addr), src))
	}

	var r recorder
	r.watch(s)
	require.NoError(t, s.SetContent(at("A1"), "5"))
	assert.ElementsMatch(t, []string{"A1", "B1", "B2", "C1"}, r.seen)
	assert.Equal(t, "21", text(t, s, "C1"))

	// The listener sees the sheet in its new state.
	var during string
	s.OnCellChanged(func(c *Cell) {
		if c.Address() == at("C1") {
			during, _ = c.EvaluatedText()
		}
	})
	require.NoError(t, s.SetContent(at("A1"), "1"))
	assert.Equal(t, "5", during)

	s.OnCellChanged(nil)
	require.NoError(t, s.SetContent(at("A1"), "2"))
}

func TestTypeMigration(t *testing.T) {
	s := New()
	require.NoError(t, s.SetContent(at("A5"), "123"))
	require.NoError(t, s.SetType(at("A5"), calc.Int))
	assert.Equal(t, "123", text(t, s, "A5"))
	assert.Equal(t, calc.Int, s.Get(at("A5")).Type())

	require.NoError(t, s.SetType(at("A5"), calc.String))
	assert.Equal(t, "123", text(t, s, "A5"))

	require.NoError(t, s.SetType(at("A5"), calc.Double))
	assert.Equal(t, "123.000000", text(t, s, "A5"))

	t.Run("formula-keeps-source", func(t *testing.T) {
		s := New()
		require.NoError(t, s.SetType(at("A1"), calc.Int))
		require.NoError(t, s.SetContent(at("A1"), "=abs(7-9)"))
		assert.Equal(t, "2", text(t, s, "A1"))

		require.NoError(t, s.SetType(at("A1"), calc.Double))
		assert.Equal(t, "=ABS(7.000000-9.000000)", s.Get(at("A1")).Source())
		assert.Equal(t, "2.000000", text(t, s, "A1"))
	})

	t.Run("double-to-int", func(t *testing.T) {
		s := New()
		require.NoError(t, s.SetContent(at("A1"), "123"))
		require.NoError(t, s.SetType(at("A1"), calc.Double))
		require.Equal(t, "123.000000", s.Get(at("A1")).Source())

		require.NoError(t, s.SetType(at("A1"), calc.Int))
		assert.Equal(t, calc.Int, s.Get(at("A1")).Type())
		assert.Equal(t, "123", text(t, s, "A1"))

		require.NoError(t, s.SetType(at("A2"), calc.Double))
		require.NoError(t, s.SetContent(at("A2"), "-2.75"))
		require.NoError(t, s.SetType(at("A2"), calc.Int))
		assert.Equal(t, "-2", text(t, s, "A2"))
	})

	t.Run("failed-conversion", func(t *testing.T) {
		s := New()
		require.NoError(t, s.SetContent(at("A1"), "abc"))
		err := s.SetType(at("A1"), calc.Int)
		assert.ErrorIs(t, err, errs.ErrInvalidType)
		assert.Equal(t, calc.String, s.Get(at("A1")).Type())
		assert.Equal(t, "abc", text(t, s, "A1"))
	})

	t.Run("unknown-type", func(t *testing.T) {
		assert.ErrorIs(t, New().SetType(at("A1"), calc.Type(9)), errs.ErrInvalidType)
	})
}

func TestEmptyCells(t *testing.T) {
	s := New()

	c := s.Get(at("D4"))
	assert.Equal(t, at("D4"), c.Address())
	assert.Equal(t, calc.String, c.Type())
	assert.Equal(t, "", c.Source())
	assert.Equal(t, "", text(t, s, "D4"))

	var r recorder
	r.watch(s)
	require.NoError(t, s.SetContent(at("D4"), ""))
	require.NoError(t, s.SetType(at("D4"), calc.String))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, r.seen)

	require.NoError(t, s.SetContent(at("D4"), "x"))
	assert.Equal(t, 1, s.Len())
	require.NoError(t, s.SetContent(at("D4"), ""))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []string{"D4", "D4"}, r.seen)

	// Numeric cells stay even when blank.
	require.NoError(t, s.SetType(at("E1"), calc.Int))
	require.NoError(t, s.SetContent(at("E1"), ""))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "0", text(t, s, "E1"))
	checkIndex(t, s)
}

func TestMissingLink(t *testing.T) {
	s := New()
	require.NoError(t, s.SetContent(at("D1"), "=D2"))
	assert.Equal(t, "", text(t, s, "D1"))

	require.NoError(t, s.SetType(at("D3"), calc.Int))
	require.NoError(t, s.SetContent(at("D3"), "=D2+1"))
	_, err := s.Get(at("D3")).EvaluatedText()
	assert.ErrorIs(t, err, errs.ErrInvalidType)

	require.NoError(t, s.SetType(at("D2"), calc.Int))
	assert.Equal(t, "1", text(t, s, "D3"))
	assert.Equal(t, []grid.Address{at("D1"), at("D3")}, s.Dependents(at("D2")))
}

func TestFailedSetLeavesSheet(t *testing.T) {
	s := New()
	require.NoError(t, s.SetType(at("A1"), calc.Int))
	require.NoError(t, s.SetContent(at("A1"), "=B1+1"))

	var r recorder
	r.watch(s)
	for _, src := range []string{"=1+2+(3+4+(5+6)", "=foo(1)", "x"} {
		assert.Error(t, s.SetContent(at("A1"), src), src)
	}
	assert.Error(t, s.SetContent(at("B1"), "=B2+"))

	assert.Empty(t, r.seen)
	assert.Equal(t, "=B1+1", s.Get(at("A1")).Source())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []grid.Address{at("A1")}, s.Dependents(at("B1")))
	checkIndex(t, s)
}

func TestDependencyLoop(t *testing.T) {
	s := New()
	for _, addr := range []string{"A1", "B1", "C1"} {
		require.NoError(t, s.SetType(at(addr), calc.Int))
	}
	require.NoError(t, s.SetContent(at("A1"), "=B1+1"))
	require.NoError(t, s.SetContent(at("B1"), "=C1+1"))

	var r recorder
	r.watch(s)
	require.NoError(t, s.SetContent(at("C1"), "=A1"))
	assert.ElementsMatch(t, []string{"A1", "B1", "C1"}, r.seen)

	for _, addr := range []string{"A1", "B1", "C1"} {
		_, err := s.Get(at(addr)).EvaluatedText()
		assert.ErrorIs(t, err, errs.ErrDependencyLoop, addr)
	}

	require.NoError(t, s.SetContent(at("E1"), "=E1"))
	_, err := s.Get(at("E1")).EvaluatedText()
	assert.ErrorIs(t, err, errs.ErrDependencyLoop)

	require.NoError(t, s.SetContent(at("C1"), "7"))
	assert.Equal(t, "9", text(t, s, "A1"))
	checkIndex(t, s)
}

func TestIndexConsistency(t *testing.T) {
	s := New()
	steps := []struct {
		addr, text string
		typ        calc.Type
	}{
		{"A1", "1", calc.Int},
		{"A2", "=A1+A1", calc.Int},
		{"A3", "=A2+A1", calc.Int},
		{"A2", "=A3", calc.Int},
		{"A3", "5", calc.Int},
		{"B1", `=A2+"x"`, calc.String},
		{"B1", "", calc.String},
		{"A2", "=B1", calc.String},
		{"A2", "", calc.String},
	}
	for _, st := range steps {
		require.NoError(t, s.SetType(at(st.addr), st.typ), st.addr)
		require.NoError(t, s.SetContent(at(st.addr), st.text), st.addr)
		checkIndex(t, s)
	}
	assert.Equal(t, []grid.Address{at("A1"), at("A3")}, s.Addresses())

	cols, rows := s.Bounds()
	assert.Equal(t, 1, cols)
	assert.Equal(t, 3, rows)

	cols, rows = New().Bounds()
	assert.Zero(t, cols)
	assert.Zero(t, rows)
}
