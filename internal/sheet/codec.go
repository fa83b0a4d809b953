package sheet

import (
	"bufio"
	"errors"
	"io"

	"termsheet/internal/calc"
	"termsheet/internal/errs"
	"termsheet/internal/grid"
	"termsheet/internal/textutil"
)

// Serialize writes the sheet as a JSON array of cell objects:
//
//	[{"type":"int","addr":"A1","content":"=B1+1"},...]
//
// Keys always come in this order and no whitespace is emitted. Cells are
// written in address order.
func (s *Sheet) Serialize(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteByte('[')
	for i, a := range s.Addresses() {
		if i > 0 {
			bw.WriteByte(',')
		}
		c := s.cells[a]
		bw.WriteString(`{"type":` + textutil.Quote(c.Type().String()) + `,"addr":`)
		if err := a.Serialize(bw); err != nil {
			return err
		}
		bw.WriteString(`,"content":` + textutil.Quote(c.Source()) + `}`)
	}
	bw.WriteByte(']')
	return bw.Flush()
}

// Deserialize reads what Serialize writes into a fresh sheet. Whitespace
// between tokens and any key order are accepted; every object needs exactly
// the keys type, addr and content. All format errors are ErrInvalidInput.
func Deserialize(r io.Reader) (*Sheet, error) {
	br, ok := r.(io.ByteScanner)
	if !ok {
		br = bufio.NewReader(r)
	}

	if err := textutil.Expect(br, '['); err != nil {
		return nil, err
	}
	s := New()
	c, err := peek(br)
	if err != nil {
		return nil, err
	}
	if c == ']' {
		br.ReadByte()
		return s, nil
	}

	for {
		if err := s.readCell(br); err != nil {
			return nil, err
		}
		c, err := next(br)
		if err != nil {
			return nil, err
		}
		switch c {
		case ',':
		case ']':
			return s, nil
		default:
			return nil, errs.InvalidInputf("expected ',' or ']', got %q", c)
		}
	}
}

func (s *Sheet) readCell(r io.ByteScanner) error {
	if err := textutil.Expect(r, '{'); err != nil {
		return err
	}

	var (
		addr            grid.Address
		typ, content    string
		hasAddr         bool
		hasTyp, hasBody bool
	)
	for {
		key, err := readString(r)
		if err != nil {
			return err
		}
		if err := textutil.Expect(r, ':'); err != nil {
			return err
		}

		switch key {
		case "addr":
			if hasAddr {
				return errs.InvalidInputf("duplicate key %q", key)
			}
			if addr, err = grid.Deserialize(r); err != nil {
				return err
			}
			hasAddr = true
		case "type":
			if hasTyp {
				return errs.InvalidInputf("duplicate key %q", key)
			}
			if typ, err = readString(r); err != nil {
				return err
			}
			hasTyp = true
		case "content":
			if hasBody {
				return errs.InvalidInputf("duplicate key %q", key)
			}
			if content, err = readString(r); err != nil {
				return err
			}
			hasBody = true
		default:
			return errs.InvalidInputf("unknown key %q", key)
		}

		c, err := next(r)
		if err != nil {
			return err
		}
		if c == '}' {
			break
		}
		if c != ',' {
			return errs.InvalidInputf("expected ',' or '}', got %q", c)
		}
	}

	if !hasAddr || !hasTyp || !hasBody {
		return errs.InvalidInputf("cell needs type, addr and content")
	}
	t, err := calc.ParseType(typ)
	if err != nil {
		return errs.InvalidInputf("%v", err)
	}
	cell, err := newCell(s, addr, t, content)
	if err != nil {
		return errs.InvalidInputf("cell %s: %v", addr, err)
	}

	if old, ok := s.cells[addr]; ok {
		s.unregister(old)
		delete(s.cells, addr)
	}
	if t == calc.String && cell.Source() == "" {
		return nil
	}
	s.store(cell)
	return nil
}

// readString reads one quoted JSON string and unescapes it.
func readString(r io.ByteScanner) (string, error) {
	if err := textutil.Expect(r, '"'); err != nil {
		return "", err
	}
	raw, err := textutil.ReadString(r)
	if err != nil {
		return "", err
	}
	return textutil.Unescape(raw)
}

func peek(r io.ByteScanner) (byte, error) {
	c, err := textutil.Peek(r)
	if errors.Is(err, io.EOF) {
		return 0, errs.InvalidInputf("unexpected end of input")
	}
	return c, err
}

func next(r io.ByteScanner) (byte, error) {
	c, err := peek(r)
	if err != nil {
		return 0, err
	}
	r.ReadByte()
	return c, nil
}
