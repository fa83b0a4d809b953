package grid

import (
	"io"
	"math"
	"strconv"
	"strings"

	"termsheet/internal/errs"
	"termsheet/internal/textutil"
)

// Upper bounds of both axes. Indices start at 1.
const (
	MaxCol = math.MaxInt32
	MaxRow = math.MaxInt32
)

// Address identifies a cell by 1-based column and row, written as letters for
// the column followed by the row number, e.g. A1, AA10.
type Address struct {
	col int
	row int
}

// New builds an address from 1-based indices.
func New(col, row int) (Address, error) {
	if col <= 0 || row <= 0 {
		return Address{}, errs.InvalidArgumentf("address (%d, %d) out of range", col, row)
	}
	if col > MaxCol || row > MaxRow {
		return Address{}, errs.InvalidArgumentf("address (%d, %d) out of range", col, row)
	}
	return Address{col: col, row: row}, nil
}

// Parse reads names like A1, aa10 (case-insensitive).
func Parse(name string) (Address, error) {
	i := 0
	for i < len(name) && isLetter(name[i]) {
		i++
	}
	if i == 0 {
		return Address{}, errs.InvalidArgumentf("address %q has no column", name)
	}
	if i == len(name) {
		return Address{}, errs.InvalidArgumentf("address %q has no row", name)
	}

	var col int64
	for j := 0; j < i; j++ {
		col = col*26 + int64(toUpper(name[j])-'A') + 1
		if col > MaxCol {
			return Address{}, errs.InvalidArgumentf("address %q column out of range", name)
		}
	}

	rowPart := name[i:]
	for j := 0; j < len(rowPart); j++ {
		if !isDigit(rowPart[j]) {
			return Address{}, errs.InvalidArgumentf("address %q is malformed", name)
		}
	}
	if rowPart[0] == '0' {
		return Address{}, errs.InvalidArgumentf("address %q row has a leading zero", name)
	}
	row, err := strconv.ParseUint(rowPart, 10, 64)
	if err != nil || row < 1 || row > MaxRow {
		return Address{}, errs.InvalidArgumentf("address %q row out of range", name)
	}
	return Address{col: int(col), row: int(row)}, nil
}

// MustParse is like Parse but panics on malformed input. Meant for literals.
func MustParse(name string) Address {
	a, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) Col() int { return a.col }
func (a Address) Row() int { return a.row }

// IsZero reports whether a is the zero value, which is not a valid address.
func (a Address) IsZero() bool {
	return a.col == 0 && a.row == 0
}

// ColName is the column part of the address, always upper case.
func (a Address) ColName() string {
	return ColName(a.col)
}

func (a Address) String() string {
	return ColName(a.col) + strconv.Itoa(a.row)
}

// Compare orders by column first, then row.
func (a Address) Compare(b Address) int {
	switch {
	case a.col < b.col:
		return -1
	case a.col > b.col:
		return 1
	case a.row < b.row:
		return -1
	case a.row > b.row:
		return 1
	}
	return 0
}

func (a Address) Less(b Address) bool {
	return a.Compare(b) < 0
}

// Sub returns the 1-based offset of a relative to b, e.g. D5 - B3 = C3.
func (a Address) Sub(b Address) (Address, error) {
	return New(a.col-b.col+1, a.row-b.row+1)
}

// Offset moves the address by dc columns and dr rows.
func (a Address) Offset(dc, dr int) (Address, error) {
	return New(a.col+dc, a.row+dr)
}

// Serialize writes the address as a JSON string, e.g. "A1".
func (a Address) Serialize(w io.Writer) error {
	_, err := io.WriteString(w, "\""+a.String()+"\"")
	return err
}

// Deserialize reads a JSON string holding an address. Leading whitespace is
// skipped.
func Deserialize(r io.ByteScanner) (Address, error) {
	if err := textutil.Expect(r, '"'); err != nil {
		return Address{}, err
	}
	var b strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			return Address{}, errs.InvalidInputf("unterminated address")
		}
		if c == '"' {
			break
		}
		b.WriteByte(c)
	}
	a, err := Parse(b.String())
	if err != nil {
		return Address{}, errs.InvalidInputf("%v", err)
	}
	return a, nil
}

// ColName: 1 -> A, 26 -> Z, 27 -> AA and so on. Non-positive columns give "?".
func ColName(col int) string {
	if col <= 0 {
		return "?"
	}
	var buf [8]byte
	i := len(buf)
	for n := col; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
