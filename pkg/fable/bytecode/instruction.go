// Package bytecode compiles fable syntax trees into the linear instruction
// form described by the instruction renderer: stack-machine opcodes with
// symbolic operands, organised into named Blocks. Nested function, lambda
// and comprehension bodies become Blocks of their own, reachable as
// constant operands of the enclosing Block.
package bytecode

import "fmt"

// Value is a constant operand. Concrete kinds are the "nothing" singleton,
// whole numbers, text, fixed-size tuples, and nested code Blocks.
type Value interface {
	value()
}

// NoneValue is the designated "nothing" singleton.
type NoneValue struct{}

// IntValue is a whole-number constant.
type IntValue struct {
	Value int64
}

// StringValue is a text constant.
type StringValue struct {
	Value string
}

// TupleValue is a fixed-size ordered group of constants.
type TupleValue struct {
	Items []Value
}

// CodeValue references a nested Block.
type CodeValue struct {
	Block *Block
}

func (NoneValue) value()   {}
func (IntValue) value()    {}
func (StringValue) value() {}
func (TupleValue) value()  {}
func (CodeValue) value()   {}

// Instruction is one step of a Block's sequence. At most one of Name and
// Const is meaningful for a given opcode; Arg carries counts, flag bits and
// jump-target offsets.
type Instruction struct {
	Op    Opcode
	Arg   int
	Name  string // name operand (*_NAME, *_FAST, COMPARE_OP symbol, IMPORT_NAME)
	Const Value  // constant operand (LOAD_CONST)

	Offset     int  // position within the Block
	Line       int  // source line the instruction was compiled from
	StartsLine bool // first instruction of a new source line
	JumpTarget bool // some jump lands here
}

// Block is one compiled unit: the module, or one nested function, lambda or
// comprehension body.
type Block struct {
	Name         string // declared name; empty for anonymous blocks
	Kind         string // "module", "function", "lambda", "listcomp" or "genexpr"
	Line         int    // source line of the defining construct
	Instructions []Instruction
	FreeVars     []string // names captured from enclosing scopes, in load order
}

// Label is the block's preferred document label: the declared name, or a
// kind:line synthesis for anonymous blocks. Two anonymous constructs of
// the same kind on one line still collide here; the discovery queue
// disambiguates when it assigns section headings.
func (b *Block) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("%s:%d", b.Kind, b.Line)
}

// QualName is the name pushed alongside the code object when the block is
// turned into a function at runtime.
func (b *Block) QualName() string {
	if b.Name != "" {
		return b.Name
	}
	return "<" + b.Kind + ">"
}
