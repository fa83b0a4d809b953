package calc

import (
	"math"

	"termsheet/internal/errs"
	"termsheet/internal/grid"
)

// Target is whatever a link points at: a cell with a declared type whose
// content can be evaluated.
type Target interface {
	Type() Type
	Eval(ev *Evaluator) (Value, error)
}

// Resolver finds the target behind an address. It must never return nil;
// absent cells resolve to Empty.
type Resolver interface {
	Lookup(addr grid.Address) Target
}

// Empty is the target of an address that holds no cell: an empty string.
var Empty Target = emptyTarget{}

type emptyTarget struct{}

func (emptyTarget) Type() Type                     { return String }
func (emptyTarget) Eval(*Evaluator) (Value, error) { return StringValue(""), nil }

// Evaluator computes formulas against a Resolver. It carries the set of links
// currently being followed, so one Evaluator serves exactly one top-level
// evaluation.
type Evaluator struct {
	res    Resolver
	active map[grid.Address]struct{}
}

// NewEvaluator returns an evaluator over res. A nil res behaves like an empty
// sheet.
func NewEvaluator(res Resolver) *Evaluator {
	return &Evaluator{res: res, active: map[grid.Address]struct{}{}}
}

// Eval computes f.
func (ev *Evaluator) Eval(f *Formula) (Value, error) {
	return ev.eval(f.Root, f.Type)
}

func (ev *Evaluator) lookup(addr grid.Address) Target {
	if ev.res == nil {
		return Empty
	}
	return ev.res.Lookup(addr)
}

func (ev *Evaluator) eval(n Node, t Type) (Value, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil
	case *Link:
		return ev.follow(n.Addr, t)
	case *Unary:
		return ev.unary(n, t)
	case *Binary:
		return ev.binary(n, t)
	}
	return Value{}, errs.InvalidTypef("unknown node %T", n)
}

func (ev *Evaluator) follow(addr grid.Address, t Type) (Value, error) {
	if _, busy := ev.active[addr]; busy {
		return Value{}, errs.DependencyLoopf("%s refers back to itself", addr)
	}
	target := ev.lookup(addr)
	if target.Type() != t {
		return Value{}, errs.InvalidTypef("%s holds %v, want %v", addr, target.Type(), t)
	}
	ev.active[addr] = struct{}{}
	defer delete(ev.active, addr)
	return target.Eval(ev)
}

func (ev *Evaluator) unary(n *Unary, t Type) (Value, error) {
	if !t.Arithmetic() {
		return Value{}, errs.InvalidTypef("%v is not defined for %v", n.Fn, t)
	}
	x, err := ev.eval(n.X, t)
	if err != nil {
		return Value{}, err
	}

	if t == Int {
		i := x.Int()
		switch n.Fn {
		case Abs:
			if i < 0 {
				i = -i
			}
			return IntValue(i), nil
		default:
			return IntValue(int64(math.Round(trig(n.Fn, float64(i))))), nil
		}
	}

	d := x.Double()
	if n.Fn == Abs {
		return DoubleValue(math.Abs(d)), nil
	}
	return DoubleValue(trig(n.Fn, d)), nil
}

func trig(fn Func, x float64) float64 {
	switch fn {
	case Sin:
		return math.Sin(x)
	case Cos:
		return math.Cos(x)
	case Tan:
		return math.Tan(x)
	}
	return math.NaN()
}

func (ev *Evaluator) binary(n *Binary, t Type) (Value, error) {
	if t == String && n.Op != Add {
		return Value{}, errs.InvalidTypef("%v is not defined for %v", n.Op, t)
	}
	l, err := ev.eval(n.L, t)
	if err != nil {
		return Value{}, err
	}
	r, err := ev.eval(n.R, t)
	if err != nil {
		return Value{}, err
	}

	switch t {
	case String:
		return StringValue(l.Str() + r.Str()), nil
	case Int:
		a, b := l.Int(), r.Int()
		switch n.Op {
		case Add:
			return IntValue(a + b), nil
		case Sub:
			return IntValue(a - b), nil
		case Mul:
			return IntValue(a * b), nil
		case Div:
			if b == 0 {
				return Value{}, errs.Newf(errs.ErrDivisionByZero, "%s", n.Source())
			}
			return IntValue(a / b), nil
		}
	case Double:
		a, b := l.Double(), r.Double()
		switch n.Op {
		case Add:
			return DoubleValue(a + b), nil
		case Sub:
			return DoubleValue(a - b), nil
		case Mul:
			return DoubleValue(a * b), nil
		case Div:
			return DoubleValue(a / b), nil
		}
	}
	return Value{}, errs.InvalidTypef("%v is not defined for %v", n.Op, t)
}
