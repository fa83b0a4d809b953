package errs

import (
	"errors"
	"fmt"
)

// Kinds of engine errors. Every error returned by the engine unwraps to one of
// these, so callers classify with errors.Is.
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInvalidInput           = errors.New("invalid input")
	ErrIncorrectFormulaSyntax = errors.New("incorrect formula syntax")
	ErrInvalidType            = errors.New("invalid type")
	ErrDependencyLoop         = errors.New("dependency loop")
	ErrDivisionByZero         = errors.New("division by zero")
)

// Wrap carries a message while unwrapping to one of the kinds above.
type Wrap struct {
	Message string
	Err     error
}

func (w Wrap) Error() string {
	return w.Message
}

func (w Wrap) Unwrap() error {
	return w.Err
}

// Newf returns an error that formats as "<kind>: <message>" and unwraps as kind.
func Newf(kind error, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if msg == "" {
		return Wrap{Message: kind.Error(), Err: kind}
	}
	return Wrap{Message: kind.Error() + ": " + msg, Err: kind}
}

func InvalidArgumentf(format string, args ...any) error {
	return Newf(ErrInvalidArgument, format, args...)
}

func InvalidInputf(format string, args ...any) error {
	return Newf(ErrInvalidInput, format, args...)
}

func Syntaxf(format string, args ...any) error {
	return Newf(ErrIncorrectFormulaSyntax, format, args...)
}

func InvalidTypef(format string, args ...any) error {
	return Newf(ErrInvalidType, format, args...)
}

func DependencyLoopf(format string, args ...any) error {
	return Newf(ErrDependencyLoop, format, args...)
}

var placeholders = []struct {
	kind error
	text string
}{
	{ErrInvalidType, "#TYPE!"},
	{ErrDependencyLoop, "#LOOP!"},
	{ErrIncorrectFormulaSyntax, "#SYNTAX!"},
	{ErrDivisionByZero, "#DIV/0!"},
	{ErrInvalidArgument, "#REF!"},
}

// Placeholder is the short text a host shows in place of a value that failed
// to evaluate.
func Placeholder(err error) string {
	if err == nil {
		return ""
	}
	for _, p := range placeholders {
		if errors.Is(err, p.kind) {
			return p.text
		}
	}
	return "#ERR!"
}
