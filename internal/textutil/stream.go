package textutil

import (
	"errors"
	"io"
	"strings"

	"termsheet/internal/errs"
)

// Escape makes s safe to place between double quotes. Only '"' and '\' are
// escaped.
func Escape(s string) string {
	if !strings.ContainsAny(s, "\"\\") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Unescape decodes a quoted body (without the surrounding quotes): a backslash
// takes the next byte literally. A trailing lone backslash is an error.
func Unescape(s string) (string, error) {
	if strings.IndexByte(s, '\\') < 0 {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' {
			i++
			if i >= len(s) {
				return "", errs.InvalidInputf("dangling escape in %q", s)
			}
			c = s[i]
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

// Quote returns s escaped and wrapped in double quotes.
func Quote(s string) string {
	return "\"" + Escape(s) + "\""
}

// ReadString consumes r up to and including the next unescaped '"' and
// returns everything before it with escape sequences left intact, e.g.
//
//	foo \"bar\" baz"rest  ->  foo \"bar\" baz
func ReadString(r io.ByteReader) (string, error) {
	var b strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			return "", unterminated(err)
		}
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			b.WriteByte(c)
			if c, err = r.ReadByte(); err != nil {
				return "", unterminated(err)
			}
		}
		b.WriteByte(c)
	}
}

func unterminated(err error) error {
	if errors.Is(err, io.EOF) {
		return errs.InvalidInputf("unterminated string")
	}
	return err
}

// SkipSpace discards ASCII whitespace at the head of r.
func SkipSpace(r io.ByteScanner) error {
	for {
		c, err := r.ReadByte()
		if err != nil {
			return err
		}
		if !isSpace(c) {
			return r.UnreadByte()
		}
	}
}

// Expect skips whitespace and consumes want, failing with ErrInvalidInput if
// the next byte is anything else.
func Expect(r io.ByteScanner, want byte) error {
	if err := SkipSpace(r); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	c, err := r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errs.InvalidInputf("expected %q, got end of input", want)
		}
		return err
	}
	if c != want {
		return errs.InvalidInputf("expected %q, got %q", want, c)
	}
	return nil
}

// Peek returns the next non-space byte without consuming it.
func Peek(r io.ByteScanner) (byte, error) {
	if err := SkipSpace(r); err != nil {
		return 0, err
	}
	c, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return c, r.UnreadByte()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
