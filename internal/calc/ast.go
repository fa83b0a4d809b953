package calc

import (
	"termsheet/internal/grid"
)

// Node is one vertex of a formula tree: *Literal, *Link, *Unary or *Binary.
type Node interface {
	// Source renders the node in canonical formula syntax.
	Source() string
	node()
}

// Literal is an in-place value.
type Literal struct {
	Value Value
}

// Link reads the value of another cell.
type Link struct {
	Addr grid.Address
}

// Func is a unary function.
type Func uint8

const (
	Abs Func = iota + 1
	Sin
	Cos
	Tan
)

var funcNames = map[Func]string{Abs: "ABS", Sin: "SIN", Cos: "COS", Tan: "TAN"}

func (f Func) String() string { return funcNames[f] }

func lookupFunc(upper string) (Func, bool) {
	for f, n := range funcNames {
		if n == upper {
			return f, true
		}
	}
	return 0, false
}

// Unary applies Fn to X.
type Unary struct {
	Fn Func
	X  Node
}

// Op is a binary operator. All operators share one precedence level and
// associate to the left.
type Op byte

const (
	Add Op = '+'
	Sub Op = '-'
	Mul Op = '*'
	Div Op = '/'
)

func (o Op) String() string { return string(rune(o)) }

// Binary computes L Op R.
type Binary struct {
	Op   Op
	L, R Node
}

func (n *Literal) Source() string { return n.Value.Type().Format(n.Value, true) }
func (n *Link) Source() string    { return n.Addr.String() }
func (n *Unary) Source() string   { return n.Fn.String() + "(" + n.X.Source() + ")" }
func (n *Binary) Source() string  { return n.L.Source() + n.Op.String() + n.R.Source() }

func (*Literal) node() {}
func (*Link) node()    {}
func (*Unary) node()   {}
func (*Binary) node()  {}

// Formula is a parsed tree together with the result type every node in it
// evaluates to.
type Formula struct {
	Type Type
	Root Node
}

// Const wraps a single literal value.
func Const(v Value) *Formula {
	return &Formula{Type: v.Type(), Root: &Literal{Value: v}}
}

// Source renders the formula without the leading '='.
func (f *Formula) Source() string {
	return f.Root.Source()
}

// Links walks the tree and returns every linked address in source order,
// duplicates included.
func (f *Formula) Links() []grid.Address {
	var out []grid.Address
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Link:
			out = append(out, n.Addr)
		case *Unary:
			walk(n.X)
		case *Binary:
			walk(n.L)
			walk(n.R)
		}
	}
	walk(f.Root)
	return out
}
