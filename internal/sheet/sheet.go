// Package sheet holds typed cells, keeps track of which cells read which
// addresses, and tells a listener about every cell a change reaches.
//
// A Sheet is not safe for concurrent use.
package sheet

import (
	"maps"
	"slices"

	"termsheet/internal/calc"
	"termsheet/internal/errs"
	"termsheet/internal/grid"
)

// Sheet maps addresses to cells. Only non-empty cells are stored: a string
// cell with empty source is the same as no cell at all.
type Sheet struct {
	cells map[grid.Address]*Cell
	// deps[a] holds the addresses of stored cells whose formulas link to a.
	deps     map[grid.Address]map[grid.Address]struct{}
	onChange func(*Cell)
}

func New() *Sheet {
	return &Sheet{
		cells: map[grid.Address]*Cell{},
		deps:  map[grid.Address]map[grid.Address]struct{}{},
	}
}

// Get returns the cell at addr, or an empty string cell bound to addr.
func (s *Sheet) Get(addr grid.Address) *Cell {
	if c, ok := s.cells[addr]; ok {
		return c
	}
	return defaultCell(s, addr, calc.String)
}

// Lookup lets formulas follow links into the sheet.
func (s *Sheet) Lookup(addr grid.Address) calc.Target {
	if s == nil {
		return calc.Empty
	}
	return s.Get(addr)
}

// OnCellChanged installs the change listener, replacing any previous one. A
// nil cb removes it. The listener may read the sheet but must not modify it.
func (s *Sheet) OnCellChanged(cb func(*Cell)) {
	s.onChange = cb
}

// SetContent replaces the text at addr, keeping the cell's type. New cells are
// strings. On error the sheet is left untouched.
func (s *Sheet) SetContent(addr grid.Address, text string) error {
	old, ok := s.cells[addr]
	if !ok {
		if text == "" {
			return nil
		}
		c, err := newCell(s, addr, calc.String, text)
		if err != nil {
			return err
		}
		s.store(c)
		s.dispatch(c)
		return nil
	}

	c, err := old.WithContent(text)
	if err != nil {
		return err
	}
	s.unregister(old)
	if c.Type() == calc.String && c.Source() == "" {
		delete(s.cells, addr)
	} else {
		s.store(c)
	}
	s.dispatch(c)
	return nil
}

// SetType converts the cell at addr to t by reparsing its source.
func (s *Sheet) SetType(addr grid.Address, t calc.Type) error {
	if !slices.Contains(calc.Types, t) {
		return errs.InvalidTypef("unknown type %v", t)
	}

	old, ok := s.cells[addr]
	if !ok {
		if t == calc.String {
			return nil
		}
		c := defaultCell(s, addr, t)
		s.store(c)
		s.dispatch(c)
		return nil
	}

	src := old.Source()
	if t == calc.String && src == "" {
		s.unregister(old)
		delete(s.cells, addr)
		s.dispatch(old)
		return nil
	}

	c, err := newCell(s, addr, t, src)
	if err != nil {
		return err
	}
	s.unregister(old)
	s.store(c)
	s.dispatch(c)
	return nil
}

func (s *Sheet) store(c *Cell) {
	s.cells[c.addr] = c
	for _, d := range c.deps {
		set, ok := s.deps[d]
		if !ok {
			set = map[grid.Address]struct{}{}
			s.deps[d] = set
		}
		set[c.addr] = struct{}{}
	}
}

func (s *Sheet) unregister(c *Cell) {
	for _, d := range c.deps {
		set := s.deps[d]
		delete(set, c.addr)
		if len(set) == 0 {
			delete(s.deps, d)
		}
	}
}

// dispatch notifies changed and then, depth first, every cell that reads it
// directly or through other cells. Each cell is notified once.
func (s *Sheet) dispatch(changed *Cell) {
	if s.onChange == nil {
		return
	}
	seen := map[grid.Address]struct{}{}
	var visit func(c *Cell)
	visit = func(c *Cell) {
		if _, ok := seen[c.addr]; ok {
			return
		}
		seen[c.addr] = struct{}{}
		s.onChange(c)
		for _, a := range s.Dependents(c.addr) {
			visit(s.Get(a))
		}
	}
	visit(changed)
}

// Len is the number of stored cells.
func (s *Sheet) Len() int {
	return len(s.cells)
}

// Addresses lists the stored cells' addresses, columns first.
func (s *Sheet) Addresses() []grid.Address {
	return slices.SortedFunc(maps.Keys(s.cells), grid.Address.Compare)
}

// Dependents lists the addresses of stored cells that link to addr.
func (s *Sheet) Dependents(addr grid.Address) []grid.Address {
	return slices.SortedFunc(maps.Keys(s.deps[addr]), grid.Address.Compare)
}

// Bounds is the largest column and row used by any stored cell, or 0, 0 for
// an empty sheet.
func (s *Sheet) Bounds() (cols, rows int) {
	for a := range s.cells {
		cols = max(cols, a.Col())
		rows = max(rows, a.Row())
	}
	return cols, rows
}
