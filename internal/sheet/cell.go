package sheet

import (
	"strings"

	"termsheet/internal/calc"
	"termsheet/internal/grid"
)

// Cell is an immutable typed value or formula bound to one address of a sheet.
// Changing a cell means building a new one.
type Cell struct {
	sheet     *Sheet
	addr      grid.Address
	formula   *calc.Formula
	isFormula bool
	deps      []grid.Address
}

// newCell builds a cell of type t from user text. Text starting with '=' is a
// formula; anything else is parsed as a plain value of t.
func newCell(s *Sheet, addr grid.Address, t calc.Type, text string) (*Cell, error) {
	c := &Cell{sheet: s, addr: addr}
	if src, ok := strings.CutPrefix(text, "="); ok {
		f, deps, err := calc.Parse(src, t)
		if err != nil {
			return nil, err
		}
		c.formula, c.isFormula, c.deps = f, true, deps
		return c, nil
	}
	v, err := t.Parse(text, false)
	if err != nil {
		return nil, err
	}
	c.formula = calc.Const(v)
	return c, nil
}

func defaultCell(s *Sheet, addr grid.Address, t calc.Type) *Cell {
	return &Cell{sheet: s, addr: addr, formula: calc.Const(t.Default())}
}

func (c *Cell) Address() grid.Address { return c.addr }
func (c *Cell) Type() calc.Type       { return c.formula.Type }
func (c *Cell) IsFormula() bool       { return c.isFormula }

// Dependencies lists the addresses the formula links to, in source order and
// with duplicates.
func (c *Cell) Dependencies() []grid.Address {
	return c.deps
}

// Value evaluates the cell against its sheet.
func (c *Cell) Value() (calc.Value, error) {
	return calc.NewEvaluator(c.sheet).Eval(c.formula)
}

// Eval evaluates the cell as the target of a link followed by ev.
func (c *Cell) Eval(ev *calc.Evaluator) (calc.Value, error) {
	return ev.Eval(c.formula)
}

// EvaluatedText is the display form of the value; strings come out raw.
func (c *Cell) EvaluatedText() (string, error) {
	v, err := c.Value()
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Source is the text that rebuilds this cell: "=" plus the canonical formula,
// or the plain value.
func (c *Cell) Source() string {
	if c.isFormula {
		return "=" + c.formula.Source()
	}
	root := c.formula.Root.(*calc.Literal)
	return c.Type().Format(root.Value, false)
}

// WithContent builds a replacement cell of the same type at the same address.
func (c *Cell) WithContent(text string) (*Cell, error) {
	return newCell(c.sheet, c.addr, c.Type(), text)
}
