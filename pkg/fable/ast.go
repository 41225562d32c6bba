package fable

// Node is a single node of the syntax tree. Every node records the source
// line it started on; composite nodes own their children exclusively.
type Node interface {
	Pos() int
}

// line is embedded by every concrete node type.
type line struct {
	Line int
}

func (l line) Pos() int { return l.Line }

// =============================================================================
// Statements
// =============================================================================

// Module is the root of every parse: an ordered list of top-level statements.
type Module struct {
	line
	Body []Node
}

// Import brings a named module into scope.
type Import struct {
	line
	Name string
}

// Assign binds the value of an expression to a target (a Name, a Tuple of
// names, or a Subscript).
type Assign struct {
	line
	Target Node
	Value  Node
}

// AugAssign is an in-place modifying assignment such as `total += n`.
type AugAssign struct {
	line
	Target *Name
	Op     BinOpKind
	Value  Node
}

// For iterates Target over Iter, running Body once per element.
type For struct {
	line
	Target Node
	Iter   Node
	Body   []Node
}

// While runs Body as long as Test holds.
type While struct {
	line
	Test Node
	Body []Node
}

// Continue jumps to the next iteration of the enclosing loop.
type Continue struct {
	line
}

// If runs Body when Test holds, otherwise Else (which may be empty).
type If struct {
	line
	Test Node
	Body []Node
	Else []Node
}

// FunctionDef declares a named function with positional arguments and an
// optional decorator list. Only the first decorator is significant.
type FunctionDef struct {
	line
	Name       string
	Args       []string
	Body       []Node
	Decorators []*Name
}

// Return exits the enclosing function with the value of an expression.
type Return struct {
	line
	Value Node
}

// Assert checks a condition at runtime.
type Assert struct {
	line
	Test Node
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	line
	Value Node
}

// =============================================================================
// Expressions
// =============================================================================

// Name is an identifier reference.
type Name struct {
	line
	ID string
}

// Singleton enumerates the fixed named constants.
type Singleton int

const (
	SingletonNone Singleton = iota
	SingletonTrue
	SingletonFalse
)

func (s Singleton) String() string {
	switch s {
	case SingletonTrue:
		return "True"
	case SingletonFalse:
		return "False"
	default:
		return "None"
	}
}

// NameConstant is one of the fixed singletons None, True or False.
type NameConstant struct {
	line
	Value Singleton
}

// Num is an integer literal.
type Num struct {
	line
	Value int64
}

// Str is a string literal.
type Str struct {
	line
	Value string
}

// List is a list display, possibly empty.
type List struct {
	line
	Elts []Node
}

// Tuple is a tuple display or a tuple assignment target.
type Tuple struct {
	line
	Elts []Node
}

// Dict is a dictionary display.
type Dict struct {
	line
	Keys   []Node
	Values []Node
}

// Attribute reads the named attribute of an object.
type Attribute struct {
	line
	Value Node
	Attr  string
}

// Subscript accesses Value at Index, which is either an *Index or a *Slice.
type Subscript struct {
	line
	Value Node
	Index Node
}

// Index wraps a plain subscript expression.
type Index struct {
	line
	Value Node
}

// Slice is a range subscript. Lower may be nil for `xs[:n]` forms.
type Slice struct {
	line
	Lower Node
	Upper Node
}

// Keyword is one `name=value` argument of a call.
type Keyword struct {
	line
	Arg   string
	Value Node
}

// Call applies a callable to positional and keyword arguments.
type Call struct {
	line
	Func     Node
	Args     []Node
	Keywords []*Keyword
}

// BinOpKind enumerates binary arithmetic and bitwise operators.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMult
	OpDiv
	OpMod
	OpBitAnd
)

func (k BinOpKind) String() string {
	switch k {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMult:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpBitAnd:
		return "&"
	}
	return "?"
}

// BinOp applies a binary operator to two operands.
type BinOp struct {
	line
	Op    BinOpKind
	Left  Node
	Right Node
}

// CmpOpKind enumerates comparison operators.
type CmpOpKind int

const (
	CmpEq CmpOpKind = iota
	CmpNotEq
	CmpLt
	CmpLtE
	CmpGt
	CmpGtE
	CmpIs
)

func (k CmpOpKind) String() string {
	switch k {
	case CmpEq:
		return "=="
	case CmpNotEq:
		return "!="
	case CmpLt:
		return "<"
	case CmpLtE:
		return "<="
	case CmpGt:
		return ">"
	case CmpGtE:
		return ">="
	case CmpIs:
		return "is"
	}
	return "?"
}

// Compare is a comparison chain: Left, then one operator per comparator.
// A plain `a < b` has one operator; `a < b < c` has two.
type Compare struct {
	line
	Left        Node
	Ops         []CmpOpKind
	Comparators []Node
}

// UnaryOpKind enumerates unary operators.
type UnaryOpKind int

const (
	UnaryNot UnaryOpKind = iota
	UnaryNeg
)

// UnaryOp applies a unary operator to one operand.
type UnaryOp struct {
	line
	Op      UnaryOpKind
	Operand Node
}

// Lambda is an anonymous single-expression function.
type Lambda struct {
	line
	Args []string
	Body Node
}

// ListComp is a single-clause list comprehension.
type ListComp struct {
	line
	Elt    Node
	Target Node
	Iter   Node
}

// GeneratorExp is a single-clause generator expression.
type GeneratorExp struct {
	line
	Elt    Node
	Target Node
	Iter   Node
}
