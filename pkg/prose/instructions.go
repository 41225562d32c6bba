package prose

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/prosegen/narrate/pkg/fable/bytecode"
)

// opRule renders one instruction of a given opcode. Rules returning an
// empty string suppress the instruction from the document.
type opRule func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string

// InstructionRenderer turns compiled blocks into step-by-step English. The
// rule table is built once at construction and read-only afterwards;
// opcodes without a rule render as empty text and are logged.
type InstructionRenderer struct {
	log   *log.Logger
	rules map[bytecode.Opcode]opRule
}

// NewInstructionRenderer returns a renderer logging through the given
// logger, or the default logger when nil.
func NewInstructionRenderer(logger *log.Logger) *InstructionRenderer {
	if logger == nil {
		logger = log.Default()
	}
	return &InstructionRenderer{log: logger, rules: opRules()}
}

// RenderInstruction describes a single instruction. Jump targets are
// prefixed with an offset heading so other instructions can refer to them;
// the heading survives even when the instruction itself renders empty.
func (r *InstructionRenderer) RenderInstruction(ins bytecode.Instruction, q *Discoveries) string {
	var s string
	if rule, ok := r.rules[ins.Op]; ok {
		s = rule(r, ins, q)
	} else {
		r.log.Warn("no prose rule for opcode", "opcode", ins.Op.String(), "offset", ins.Offset)
	}
	if ins.JumpTarget {
		s = fmt.Sprintf("\n\n### Offset %d\n\n", ins.Offset) + s
	}
	return s
}

// RenderBlock describes one block as a labelled section. Instructions
// rendering empty are skipped entirely; a paragraph break opens whenever a
// new source line begins.
func (r *InstructionRenderer) RenderBlock(label string, block *bytecode.Block, q *Discoveries) string {
	var b strings.Builder
	b.WriteString("## " + label)
	for _, ins := range block.Instructions {
		desc := r.RenderInstruction(ins, q)
		if desc == "" {
			continue
		}
		if ins.StartsLine {
			b.WriteString("\n\n")
		}
		b.WriteString(desc + " ")
	}
	b.WriteString("\n\n")
	return b.String()
}

// RenderAll renders the root block and every block discovered through its
// constants, breadth first, in first-encountered order.
func (r *InstructionRenderer) RenderAll(rootLabel string, root *bytecode.Block) string {
	q := NewDiscoveries()
	q.Add(rootLabel, root)
	var b strings.Builder
	for {
		next, ok := q.Next()
		if !ok {
			return b.String()
		}
		b.WriteString(r.RenderBlock(next.Label, next.Block, q))
	}
}

// opRules builds the full opcode rule table. Opcodes absent from the table
// fall through to the empty-text path.
func opRules() map[bytecode.Opcode]opRule {
	rules := map[bytecode.Opcode]opRule{}

	rules[bytecode.OpLoadConst] = func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		return fmt.Sprintf("The computer places %s on top of the stack.",
			r.describeValue(ins.Const, q))
	}
	rules[bytecode.OpLoadName] = nameRule("The computer places the value associated with the name `%s` " +
		"on top of the stack.")
	rules[bytecode.OpLoadFast] = nameRule("The computer loads a reference to the local variable named `%s` " +
		"and places it on top of the stack.")
	rules[bytecode.OpLoadGlobal] = nameRule("The computer loads a reference to the global variable named `%s` " +
		"and places it on top of the stack.")
	rules[bytecode.OpLoadDeref] = nameRule("The computer loads the contents of the free variable named `%s` " +
		"and places it on top of the stack.")
	rules[bytecode.OpLoadClosure] = nameRule("The computer loads a reference to the free variable named `%s` " +
		"and places it on top of the stack.")
	rules[bytecode.OpLoadAttr] = nameRule("The computer takes the top value from the stack " +
		"and retrieves its attribute named `%s`, placing it on the stack.")

	rules[bytecode.OpStoreName] = nameRule("The computer takes the top value from the stack, " +
		"and stores it under the name `%s`.")
	rules[bytecode.OpStoreFast] = nameRule("The computer takes the top value from the stack and stores " +
		"it in the local variable named `%s`.")
	rules[bytecode.OpStoreDeref] = nameRule("The computer takes the top value from the stack and stores " +
		"it in the free variable named `%s`.")
	rules[bytecode.OpStoreSubscr] = plain("The computer takes the top value from the stack, " +
		"uses it to index into the next-from-top value, " +
		"and stores the value below that in that location.")
	rules[bytecode.OpBinarySubscr] = plain("The computer takes the top two values from the stack " +
		"and retrieves the value of the second item, " +
		"subscripted by the value of the first item.")

	rules[bytecode.OpBinaryAdd] = plain("The computer takes the top two values from the stack, " +
		"adds them together, and places the result on top of the stack.")
	rules[bytecode.OpBinarySubtract] = plain("The computer takes the top two values from the stack, " +
		"subtracts the first from the second, and places the result on top of the stack.")
	rules[bytecode.OpBinaryMultiply] = plain("The computer takes the top two values from the stack, " +
		"multiplies them together, and places the result on top of the stack.")
	rules[bytecode.OpBinaryTrueDivide] = plain("The computer takes the top two values from the stack, " +
		"divides the second by the first, and places the result on top of the stack.")
	rules[bytecode.OpBinaryModulo] = plain("The computer takes the top two values from the stack, " +
		"computes the remainder of dividing the second by the first, " +
		"and places the result on top of the stack.")
	rules[bytecode.OpBinaryAnd] = plain("The computer takes the top two values from the stack, " +
		"applies a bitwise `AND` operator to them, " +
		"and places the result on top of the stack.")
	rules[bytecode.OpInplaceAdd] = plain("The computer takes the top value from the stack and (in place) " +
		"adds the second from top value from the stack to it, " +
		"placing the result on top of the stack.")
	rules[bytecode.OpUnaryNegative] = plain("The computer takes the top value from the stack, negates it, " +
		"and places the result on top of the stack.")
	rules[bytecode.OpUnaryNot] = plain("The computer takes the top value from the stack, " +
		"inverts its truth value, and places the result on top of the stack.")

	rules[bytecode.OpCompareOp] = func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		switch ins.Name {
		case "==":
			return "The computer takes the top two values from the stack " +
				"and compares them for equality, " +
				"placing the result on top of the stack."
		case "is":
			return "The computer takes the top two values from the stack " +
				"and compares them for identity, " +
				"placing the result on top of the stack."
		}
		return fmt.Sprintf("The computer takes the top two values from the stack "+
			"and compares them using the operator `%s`, "+
			"placing the result on top of the stack.", ins.Name)
	}

	rules[bytecode.OpBuildList] = func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		switch ins.Arg {
		case 0:
			return "The computer places a new empty list on top of the stack."
		case 1:
			return "The computer takes the top value from the stack, " +
				"puts it in a list, and places it on top of the stack."
		}
		return fmt.Sprintf("The computer takes the top %s values from the stack, "+
			"puts them in a list, and places it on top of the stack.",
			NumberWord(int64(ins.Arg)))
	}
	rules[bytecode.OpBuildTuple] = func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		if ins.Arg == 1 {
			return "The computer takes the top value from the stack, " +
				"creates a tuple from it, and places it on top of the stack."
		}
		return fmt.Sprintf("The computer takes the top %s values from the stack, "+
			"creates a tuple from them, and places it on top of the stack.",
			NumberWord(int64(ins.Arg)))
	}
	rules[bytecode.OpBuildMap] = func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		if ins.Arg == 0 {
			return "The computer places an empty dictionary on top of the stack."
		}
		return fmt.Sprintf("The computer takes the top %s values from the stack, "+
			"and uses them as key-value pairs in a new dictionary, "+
			"which is placed on top of the stack.", NumberWord(int64(2*ins.Arg)))
	}
	rules[bytecode.OpBuildSlice] = plain("The computer takes the top two values from the stack, " +
		"creates a slice object from them, and places it on top of the stack.")
	rules[bytecode.OpListAppend] = func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		return fmt.Sprintf("The computer takes the top value from the stack and appends it "+
			"to the list stored %s places from the top of the stack.",
			NumberWord(int64(ins.Arg)))
	}
	rules[bytecode.OpUnpackSequence] = func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		return fmt.Sprintf("The computer takes the top value from the stack, "+
			"unpacks it into %s values, "+
			"then places them each on top of the stack.", NumberWord(int64(ins.Arg)))
	}

	rules[bytecode.OpPopTop] = plain("The computer discards the top value from the stack.")
	rules[bytecode.OpDupTop] = plain("The computer duplicates the top value on the stack, " +
		"placing the new copy on top of the stack.")
	rules[bytecode.OpRotTwo] = plain("The computer takes the top two values from the stack, " +
		"swaps them, and replaces them on top of the stack.")
	rules[bytecode.OpRotThree] = plain("The computer takes the top three values from the stack, " +
		"rotates them so that the top value is now on the bottom, " +
		"and replaces them on top of the stack.")

	rules[bytecode.OpJumpAbsolute] = offsetRule("The computer jumps to offset %d.")
	rules[bytecode.OpJumpForward] = offsetRule("The computer jumps forward to offset %d.")
	rules[bytecode.OpPopJumpIfFalse] = offsetRule("The computer takes the top value from the stack, " +
		"and if it is false-like (e.g. False, None or zero), " +
		"jumps to offset %d.")
	rules[bytecode.OpPopJumpIfTrue] = offsetRule("The computer takes the top value from the stack, " +
		"and if it is true-like (e.g. True, non-empty or non-zero), " +
		"jumps to offset %d.")
	rules[bytecode.OpJumpIfFalseOrPop] = offsetRule("The computer looks at the top value on the stack. " +
		"If it is false-like (e.g. False, None or zero), it jumps " +
		"to offset %d. Otherwise it removes the top value from the stack.")
	rules[bytecode.OpSetupLoop] = offsetRule("The computer places a new block for a loop on top of " +
		"the block stack, extending until offset %d.")
	rules[bytecode.OpPopBlock] = plain("The computer removes one block from the block stack.")
	rules[bytecode.OpGetIter] = plain("The computer takes the top value from the stack, " +
		"turns it into an iterator (using `iter()`), " +
		"and places the result on top of the stack.")
	rules[bytecode.OpForIter] = offsetRule("The computer looks at the top value on the stack and " +
		"calls its `next()` method. If it returns a value, " +
		"it places it on top of the stack. If not, it removes " +
		"the top value from the stack and jumps to offset %d.")

	rules[bytecode.OpCallFunction] = func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		switch ins.Arg {
		case 0:
			return "The computer takes the top value from the stack " +
				"and calls it as a function (with no arguments), " +
				"placing the return value on top of the stack."
		case 1:
			return "The computer takes the top value from the stack, " +
				"along with another value which it calls as a function, " +
				"using the original value as an argument, " +
				"placing the return value on the stack."
		}
		return fmt.Sprintf("The computer takes %s values from the stack, "+
			"along with another value which it calls as a function, "+
			"using the original values as arguments, "+
			"placing the return value on the stack.", NumberWord(int64(ins.Arg)))
	}
	rules[bytecode.OpCallFunctionKW] = func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		return fmt.Sprintf("The computer takes the top value from the stack "+
			"and interprets it as a tuple of keyword names. "+
			"It then takes values from the top of the stack as "+
			"corresponding values, followed by positional arguments "+
			"up to a total of %d values (both keyword and positional). "+
			"Then it takes the next value from the top of the stack and "+
			"calls it as a function with these arguments, "+
			"placing the return value on top of the stack.", ins.Arg)
	}
	rules[bytecode.OpMakeFunction] = func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		var b strings.Builder
		b.WriteString("The computer takes the top two values from the stack " +
			"and uses them as the qualified name and code of a new function, " +
			"which is placed on the stack.")
		if ins.Arg&bytecode.MakeFuncClosure != 0 {
			b.WriteString(" It also takes the next value as a tuple of cells " +
				"for free variables, creating a closure.")
		}
		if ins.Arg&bytecode.MakeFuncAnnotations != 0 {
			b.WriteString(" It also takes the next value as a dictionary " +
				"of function annotations.")
		}
		if ins.Arg&bytecode.MakeFuncKWDefaults != 0 {
			b.WriteString(" It also takes the next value as a dictionary " +
				"of keyword arguments.")
		}
		if ins.Arg&bytecode.MakeFuncDefaults != 0 {
			b.WriteString(" It also takes the next value as a tuple of default arguments.")
		}
		return b.String()
	}
	rules[bytecode.OpReturnValue] = plain("The computer exits the current function, " +
		"returning the top value on the stack.")
	rules[bytecode.OpYieldValue] = plain("The computer takes the top value from the stack " +
		"and yields it from the current generator.")
	rules[bytecode.OpImportName] = nameRule("The computer takes the top two values from the stack " +
		"and uses them as the 'fromlist' and 'level' of an import " +
		"for the module `%s`, which is placed on the stack.")

	// EXTENDED_ARG is a prefix carrying no meaning of its own.
	rules[bytecode.OpExtendedArg] = plain("")

	return rules
}

func plain(text string) opRule {
	return func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		return text
	}
}

// nameRule formats the instruction's name operand into the template.
func nameRule(format string) opRule {
	return func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		return fmt.Sprintf(format, ins.Name)
	}
}

// offsetRule formats the instruction's jump-target operand into the template.
func offsetRule(format string) opRule {
	return func(r *InstructionRenderer, ins bytecode.Instruction, q *Discoveries) string {
		return fmt.Sprintf(format, ins.Arg)
	}
}
