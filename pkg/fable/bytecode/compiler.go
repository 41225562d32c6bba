package bytecode

import (
	"github.com/prosegen/narrate/pkg/errors"
	"github.com/prosegen/narrate/pkg/fable"
)

// Compile lowers a parsed module into its root Block. Nested function,
// lambda and comprehension bodies are compiled into their own Blocks and
// embedded as CodeValue constants; the instruction renderer discovers them
// through those constants.
func Compile(mod *fable.Module) (*Block, error) {
	c := &compiler{scopes: analyze(mod)}
	root := &Block{Kind: "module", Line: mod.Pos()}
	bc := &blockCompiler{c: c, block: root, scope: c.scopes[mod]}
	if err := bc.compileBody(mod.Body); err != nil {
		return nil, err
	}
	bc.emitConst(NoneValue{})
	bc.emit(OpReturnValue)
	bc.fixup()
	return root, nil
}

type compiler struct {
	scopes map[fable.Node]*scopeInfo
}

// blockCompiler emits instructions for a single Block. Jump operands are
// instruction indices; forward jumps are emitted with a placeholder and
// patched once the target index is known.
type blockCompiler struct {
	c     *compiler
	block *Block
	scope *scopeInfo
	line  int

	loopStarts []int // for `continue`: start-of-loop index per open loop
}

func (b *blockCompiler) emitFull(ins Instruction) int {
	ins.Line = b.line
	idx := len(b.block.Instructions)
	b.block.Instructions = append(b.block.Instructions, ins)
	return idx
}

func (b *blockCompiler) emit(op Opcode) int {
	return b.emitFull(Instruction{Op: op})
}

func (b *blockCompiler) emitArg(op Opcode, arg int) int {
	return b.emitFull(Instruction{Op: op, Arg: arg})
}

func (b *blockCompiler) emitName(op Opcode, name string) int {
	return b.emitFull(Instruction{Op: op, Name: name})
}

func (b *blockCompiler) emitConst(v Value) int {
	return b.emitFull(Instruction{Op: OpLoadConst, Const: v})
}

func (b *blockCompiler) next() int {
	return len(b.block.Instructions)
}

func (b *blockCompiler) patch(idx int) {
	b.block.Instructions[idx].Arg = b.next()
}

// fixup is the final pass over a finished block: it assigns offsets, marks
// jump targets, and flags the first instruction of each source line.
func (b *blockCompiler) fixup() {
	ins := b.block.Instructions
	for i := range ins {
		ins[i].Offset = i
		if i == 0 || ins[i].Line != ins[i-1].Line {
			ins[i].StartsLine = true
		}
	}
	for i := range ins {
		if ins[i].Op.hasJumpTarget() && ins[i].Arg >= 0 && ins[i].Arg < len(ins) {
			ins[ins[i].Arg].JumpTarget = true
		}
	}
}

// =============================================================================
// Name access
// =============================================================================

func (b *blockCompiler) load(name string) {
	switch {
	case b.scope.kind == "module":
		b.emitName(OpLoadName, name)
	case b.scope.cells[name] || b.scope.freeSet[name]:
		b.emitName(OpLoadDeref, name)
	case b.scope.locals[name]:
		b.emitName(OpLoadFast, name)
	default:
		b.emitName(OpLoadGlobal, name)
	}
}

func (b *blockCompiler) store(name string) {
	switch {
	case b.scope.kind == "module":
		b.emitName(OpStoreName, name)
	case b.scope.cells[name] || b.scope.freeSet[name]:
		b.emitName(OpStoreDeref, name)
	default:
		b.emitName(OpStoreFast, name)
	}
}

// =============================================================================
// Statements
// =============================================================================

func (b *blockCompiler) compileBody(body []fable.Node) error {
	for _, stmt := range body {
		if err := b.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *blockCompiler) compileStmt(n fable.Node) error {
	b.line = n.Pos()
	switch t := n.(type) {
	case *fable.ExprStmt:
		if err := b.compileExpr(t.Value); err != nil {
			return err
		}
		b.emit(OpPopTop)
		return nil

	case *fable.Assign:
		if err := b.compileExpr(t.Value); err != nil {
			return err
		}
		return b.storeTarget(t.Target)

	case *fable.AugAssign:
		b.load(t.Target.ID)
		if err := b.compileExpr(t.Value); err != nil {
			return err
		}
		if t.Op != fable.OpAdd {
			return errors.New(errors.ErrCodeCompile, "line %d: unsupported in-place operator %q", t.Pos(), t.Op)
		}
		b.emit(OpInplaceAdd)
		b.store(t.Target.ID)
		return nil

	case *fable.Import:
		b.emitConst(IntValue{0})
		b.emitConst(NoneValue{})
		b.emitName(OpImportName, t.Name)
		b.store(t.Name)
		return nil

	case *fable.For:
		return b.compileFor(t)

	case *fable.While:
		return b.compileWhile(t)

	case *fable.Continue:
		if len(b.loopStarts) == 0 {
			return errors.New(errors.ErrCodeCompile, "line %d: 'continue' outside a loop", t.Pos())
		}
		b.emitArg(OpJumpAbsolute, b.loopStarts[len(b.loopStarts)-1])
		return nil

	case *fable.If:
		return b.compileIf(t)

	case *fable.FunctionDef:
		return b.compileFunctionDef(t)

	case *fable.Return:
		if err := b.compileExpr(t.Value); err != nil {
			return err
		}
		b.emit(OpReturnValue)
		return nil

	case *fable.Assert:
		if err := b.compileExpr(t.Test); err != nil {
			return err
		}
		skip := b.emitArg(OpPopJumpIfTrue, -1)
		b.emitName(OpLoadGlobal, "AssertionError")
		b.emitArg(OpRaiseVarargs, 1)
		b.patch(skip)
		return nil
	}
	return errors.New(errors.ErrCodeCompile, "line %d: unexpected statement node %T", n.Pos(), n)
}

func (b *blockCompiler) compileFor(t *fable.For) error {
	setup := b.emitArg(OpSetupLoop, -1)
	if err := b.compileExpr(t.Iter); err != nil {
		return err
	}
	b.emit(OpGetIter)

	loopStart := b.next()
	forIter := b.emitArg(OpForIter, -1)
	if err := b.storeTarget(t.Target); err != nil {
		return err
	}

	b.loopStarts = append(b.loopStarts, loopStart)
	err := b.compileBody(t.Body)
	b.loopStarts = b.loopStarts[:len(b.loopStarts)-1]
	if err != nil {
		return err
	}

	b.emitArg(OpJumpAbsolute, loopStart)
	b.patch(forIter)
	b.emit(OpPopBlock)
	b.patch(setup)
	return nil
}

func (b *blockCompiler) compileWhile(t *fable.While) error {
	setup := b.emitArg(OpSetupLoop, -1)
	loopStart := b.next()
	if err := b.compileExpr(t.Test); err != nil {
		return err
	}
	exit := b.emitArg(OpPopJumpIfFalse, -1)

	b.loopStarts = append(b.loopStarts, loopStart)
	err := b.compileBody(t.Body)
	b.loopStarts = b.loopStarts[:len(b.loopStarts)-1]
	if err != nil {
		return err
	}

	b.emitArg(OpJumpAbsolute, loopStart)
	b.patch(exit)
	b.emit(OpPopBlock)
	b.patch(setup)
	return nil
}

func (b *blockCompiler) compileIf(t *fable.If) error {
	if err := b.compileExpr(t.Test); err != nil {
		return err
	}
	elseJump := b.emitArg(OpPopJumpIfFalse, -1)
	if err := b.compileBody(t.Body); err != nil {
		return err
	}
	if len(t.Else) == 0 {
		b.patch(elseJump)
		return nil
	}
	endJump := b.emitArg(OpJumpForward, -1)
	b.patch(elseJump)
	if err := b.compileBody(t.Else); err != nil {
		return err
	}
	b.patch(endJump)
	return nil
}

func (b *blockCompiler) compileFunctionDef(t *fable.FunctionDef) error {
	for _, dec := range t.Decorators {
		b.load(dec.ID)
	}
	sub, err := b.c.compileFunction(t)
	if err != nil {
		return err
	}
	b.makeFunction(sub)
	for range t.Decorators {
		b.emitArg(OpCallFunction, 1)
	}
	b.store(t.Name)
	return nil
}

func (b *blockCompiler) storeTarget(target fable.Node) error {
	switch t := target.(type) {
	case *fable.Name:
		b.store(t.ID)
		return nil
	case *fable.Tuple:
		b.emitArg(OpUnpackSequence, len(t.Elts))
		for _, e := range t.Elts {
			if err := b.storeTarget(e); err != nil {
				return err
			}
		}
		return nil
	case *fable.Subscript:
		if err := b.compileExpr(t.Value); err != nil {
			return err
		}
		if err := b.compileIndex(t.Index); err != nil {
			return err
		}
		b.emit(OpStoreSubscr)
		return nil
	}
	return errors.New(errors.ErrCodeCompile, "line %d: cannot store to %T", target.Pos(), target)
}

// =============================================================================
// Expressions
// =============================================================================

func (b *blockCompiler) compileExpr(n fable.Node) error {
	switch t := n.(type) {
	case *fable.Name:
		b.load(t.ID)
		return nil

	case *fable.NameConstant:
		// True and False are whole numbers as far as constants go; only
		// None keeps its own identity.
		switch t.Value {
		case fable.SingletonNone:
			b.emitConst(NoneValue{})
		case fable.SingletonTrue:
			b.emitConst(IntValue{1})
		case fable.SingletonFalse:
			b.emitConst(IntValue{0})
		}
		return nil

	case *fable.Num:
		b.emitConst(IntValue{t.Value})
		return nil

	case *fable.Str:
		b.emitConst(StringValue{t.Value})
		return nil

	case *fable.List:
		for _, e := range t.Elts {
			if err := b.compileExpr(e); err != nil {
				return err
			}
		}
		b.emitArg(OpBuildList, len(t.Elts))
		return nil

	case *fable.Tuple:
		if v, ok := constantTuple(t); ok {
			b.emitConst(v)
			return nil
		}
		for _, e := range t.Elts {
			if err := b.compileExpr(e); err != nil {
				return err
			}
		}
		b.emitArg(OpBuildTuple, len(t.Elts))
		return nil

	case *fable.Dict:
		for i := range t.Keys {
			if err := b.compileExpr(t.Keys[i]); err != nil {
				return err
			}
			if err := b.compileExpr(t.Values[i]); err != nil {
				return err
			}
		}
		b.emitArg(OpBuildMap, len(t.Keys))
		return nil

	case *fable.Attribute:
		if err := b.compileExpr(t.Value); err != nil {
			return err
		}
		b.emitName(OpLoadAttr, t.Attr)
		return nil

	case *fable.Subscript:
		if err := b.compileExpr(t.Value); err != nil {
			return err
		}
		if err := b.compileIndex(t.Index); err != nil {
			return err
		}
		b.emit(OpBinarySubscr)
		return nil

	case *fable.BinOp:
		if err := b.compileExpr(t.Left); err != nil {
			return err
		}
		if err := b.compileExpr(t.Right); err != nil {
			return err
		}
		switch t.Op {
		case fable.OpAdd:
			b.emit(OpBinaryAdd)
		case fable.OpSub:
			b.emit(OpBinarySubtract)
		case fable.OpMult:
			b.emit(OpBinaryMultiply)
		case fable.OpDiv:
			b.emit(OpBinaryTrueDivide)
		case fable.OpMod:
			b.emit(OpBinaryModulo)
		case fable.OpBitAnd:
			b.emit(OpBinaryAnd)
		}
		return nil

	case *fable.Compare:
		return b.compileCompare(t)

	case *fable.UnaryOp:
		if err := b.compileExpr(t.Operand); err != nil {
			return err
		}
		if t.Op == fable.UnaryNot {
			b.emit(OpUnaryNot)
		} else {
			b.emit(OpUnaryNegative)
		}
		return nil

	case *fable.Call:
		return b.compileCall(t)

	case *fable.Lambda:
		sub, err := b.c.compileLambda(t)
		if err != nil {
			return err
		}
		b.makeFunction(sub)
		return nil

	case *fable.ListComp:
		sub, err := b.c.compileComprehension(t, "listcomp", t.Elt, t.Target)
		if err != nil {
			return err
		}
		return b.callComprehension(sub, t.Iter)

	case *fable.GeneratorExp:
		sub, err := b.c.compileComprehension(t, "genexpr", t.Elt, t.Target)
		if err != nil {
			return err
		}
		return b.callComprehension(sub, t.Iter)
	}
	return errors.New(errors.ErrCodeCompile, "line %d: unexpected expression node %T", n.Pos(), n)
}

func (b *blockCompiler) compileIndex(index fable.Node) error {
	switch t := index.(type) {
	case *fable.Index:
		return b.compileExpr(t.Value)
	case *fable.Slice:
		if t.Lower != nil {
			if err := b.compileExpr(t.Lower); err != nil {
				return err
			}
		} else {
			b.emitConst(NoneValue{})
		}
		if err := b.compileExpr(t.Upper); err != nil {
			return err
		}
		b.emitArg(OpBuildSlice, 2)
		return nil
	}
	return errors.New(errors.ErrCodeCompile, "line %d: unexpected subscript node %T", index.Pos(), index)
}

// compileCompare emits a single comparison directly; a chain of n operators
// compares each adjacent pair, keeping the shared operand duplicated on the
// stack and short-circuiting on the first failure.
func (b *blockCompiler) compileCompare(t *fable.Compare) error {
	if err := b.compileExpr(t.Left); err != nil {
		return err
	}
	if len(t.Ops) == 1 {
		if err := b.compileExpr(t.Comparators[0]); err != nil {
			return err
		}
		b.emitName(OpCompareOp, t.Ops[0].String())
		return nil
	}

	var shortCircuits []int
	last := len(t.Ops) - 1
	for i := 0; i < last; i++ {
		if err := b.compileExpr(t.Comparators[i]); err != nil {
			return err
		}
		b.emit(OpDupTop)
		b.emit(OpRotThree)
		b.emitName(OpCompareOp, t.Ops[i].String())
		shortCircuits = append(shortCircuits, b.emitArg(OpJumpIfFalseOrPop, -1))
	}
	if err := b.compileExpr(t.Comparators[last]); err != nil {
		return err
	}
	b.emitName(OpCompareOp, t.Ops[last].String())
	done := b.emitArg(OpJumpForward, -1)
	for _, idx := range shortCircuits {
		b.patch(idx)
	}
	b.emit(OpRotTwo)
	b.emit(OpPopTop)
	b.patch(done)
	return nil
}

func (b *blockCompiler) compileCall(t *fable.Call) error {
	if err := b.compileExpr(t.Func); err != nil {
		return err
	}
	for _, a := range t.Args {
		if err := b.compileExpr(a); err != nil {
			return err
		}
	}
	if len(t.Keywords) == 0 {
		b.emitArg(OpCallFunction, len(t.Args))
		return nil
	}
	names := make([]Value, len(t.Keywords))
	for i, kw := range t.Keywords {
		if err := b.compileExpr(kw.Value); err != nil {
			return err
		}
		names[i] = StringValue{kw.Arg}
	}
	b.emitConst(TupleValue{names})
	b.emitArg(OpCallFunctionKW, len(t.Args)+len(t.Keywords))
	return nil
}

// makeFunction pushes a closure tuple if the block captures anything, then
// the code object and its name, and builds the function object.
func (b *blockCompiler) makeFunction(sub *Block) {
	flags := 0
	if len(sub.FreeVars) > 0 {
		for _, name := range sub.FreeVars {
			b.emitName(OpLoadClosure, name)
		}
		b.emitArg(OpBuildTuple, len(sub.FreeVars))
		flags |= MakeFuncClosure
	}
	b.emitConst(CodeValue{sub})
	b.emitConst(StringValue{sub.QualName()})
	b.emitArg(OpMakeFunction, flags)
}

// callComprehension turns the compiled comprehension block into a function
// and calls it with the iterator of the clause's iterable.
func (b *blockCompiler) callComprehension(sub *Block, iter fable.Node) error {
	b.makeFunction(sub)
	if err := b.compileExpr(iter); err != nil {
		return err
	}
	b.emit(OpGetIter)
	b.emitArg(OpCallFunction, 1)
	return nil
}

// constantTuple folds a tuple display of plain literals into one constant.
func constantTuple(t *fable.Tuple) (Value, bool) {
	if len(t.Elts) == 0 {
		return TupleValue{}, true
	}
	items := make([]Value, len(t.Elts))
	for i, e := range t.Elts {
		switch v := e.(type) {
		case *fable.Num:
			items[i] = IntValue{v.Value}
		case *fable.Str:
			items[i] = StringValue{v.Value}
		case *fable.NameConstant:
			switch v.Value {
			case fable.SingletonNone:
				items[i] = NoneValue{}
			case fable.SingletonTrue:
				items[i] = IntValue{1}
			case fable.SingletonFalse:
				items[i] = IntValue{0}
			}
		default:
			return nil, false
		}
	}
	return TupleValue{items}, true
}

// =============================================================================
// Nested blocks
// =============================================================================

func (c *compiler) compileFunction(t *fable.FunctionDef) (*Block, error) {
	scope := c.scopes[t]
	sub := &Block{Name: t.Name, Kind: "function", Line: t.Pos(), FreeVars: scope.free}
	bc := &blockCompiler{c: c, block: sub, scope: scope, line: t.Pos()}
	if err := bc.compileBody(t.Body); err != nil {
		return nil, err
	}
	bc.emitConst(NoneValue{})
	bc.emit(OpReturnValue)
	bc.fixup()
	return sub, nil
}

func (c *compiler) compileLambda(t *fable.Lambda) (*Block, error) {
	scope := c.scopes[t]
	sub := &Block{Kind: "lambda", Line: t.Pos(), FreeVars: scope.free}
	bc := &blockCompiler{c: c, block: sub, scope: scope, line: t.Pos()}
	if err := bc.compileExpr(t.Body); err != nil {
		return nil, err
	}
	bc.emit(OpReturnValue)
	bc.fixup()
	return sub, nil
}

// compileComprehension builds the implicit function every comprehension
// compiles to: it receives the prepared iterator as its only argument and
// either accumulates a list or yields elements one by one.
func (c *compiler) compileComprehension(node fable.Node, kind string, elt, target fable.Node) (*Block, error) {
	scope := c.scopes[node]
	sub := &Block{Kind: kind, Line: node.Pos(), FreeVars: scope.free}
	bc := &blockCompiler{c: c, block: sub, scope: scope, line: node.Pos()}

	if kind == "listcomp" {
		bc.emitArg(OpBuildList, 0)
	}
	bc.emitName(OpLoadFast, ".0")
	loopStart := bc.next()
	forIter := bc.emitArg(OpForIter, -1)
	if err := bc.storeTarget(target); err != nil {
		return nil, err
	}
	if err := bc.compileExpr(elt); err != nil {
		return nil, err
	}
	if kind == "listcomp" {
		bc.emitArg(OpListAppend, 2)
	} else {
		bc.emit(OpYieldValue)
		bc.emit(OpPopTop)
	}
	bc.emitArg(OpJumpAbsolute, loopStart)
	bc.patch(forIter)
	if kind == "listcomp" {
		bc.emit(OpReturnValue)
	} else {
		bc.emitConst(NoneValue{})
		bc.emit(OpReturnValue)
	}
	bc.fixup()
	return sub, nil
}
