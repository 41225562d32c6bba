package bytecode

// Opcode identifies one abstract-machine instruction.
type Opcode int

const (
	OpLoadConst Opcode = iota
	OpLoadName
	OpLoadFast
	OpLoadGlobal
	OpLoadDeref
	OpLoadClosure
	OpLoadAttr
	OpStoreName
	OpStoreFast
	OpStoreDeref
	OpStoreSubscr
	OpBinarySubscr

	OpBinaryAdd
	OpBinarySubtract
	OpBinaryMultiply
	OpBinaryTrueDivide
	OpBinaryModulo
	OpBinaryAnd
	OpInplaceAdd
	OpUnaryNegative
	OpUnaryNot
	OpCompareOp

	OpBuildList
	OpBuildTuple
	OpBuildMap
	OpBuildSlice
	OpListAppend
	OpUnpackSequence

	OpPopTop
	OpDupTop
	OpRotTwo
	OpRotThree

	OpJumpAbsolute
	OpJumpForward
	OpPopJumpIfFalse
	OpPopJumpIfTrue
	OpJumpIfFalseOrPop
	OpSetupLoop
	OpPopBlock
	OpGetIter
	OpForIter

	OpCallFunction
	OpCallFunctionKW
	OpMakeFunction
	OpReturnValue
	OpYieldValue
	OpRaiseVarargs
	OpImportName
	OpExtendedArg
)

// MAKE_FUNCTION flag bits: each gates one extra operand below the code
// object on the stack.
const (
	MakeFuncDefaults    = 1 // tuple of positional defaults
	MakeFuncKWDefaults  = 2 // dict of keyword-only defaults
	MakeFuncAnnotations = 4 // dict of annotations
	MakeFuncClosure     = 8 // tuple of closure cells
)

var opNames = [...]string{
	OpLoadConst:        "LOAD_CONST",
	OpLoadName:         "LOAD_NAME",
	OpLoadFast:         "LOAD_FAST",
	OpLoadGlobal:       "LOAD_GLOBAL",
	OpLoadDeref:        "LOAD_DEREF",
	OpLoadClosure:      "LOAD_CLOSURE",
	OpLoadAttr:         "LOAD_ATTR",
	OpStoreName:        "STORE_NAME",
	OpStoreFast:        "STORE_FAST",
	OpStoreDeref:       "STORE_DEREF",
	OpStoreSubscr:      "STORE_SUBSCR",
	OpBinarySubscr:     "BINARY_SUBSCR",
	OpBinaryAdd:        "BINARY_ADD",
	OpBinarySubtract:   "BINARY_SUBTRACT",
	OpBinaryMultiply:   "BINARY_MULTIPLY",
	OpBinaryTrueDivide: "BINARY_TRUE_DIVIDE",
	OpBinaryModulo:     "BINARY_MODULO",
	OpBinaryAnd:        "BINARY_AND",
	OpInplaceAdd:       "INPLACE_ADD",
	OpUnaryNegative:    "UNARY_NEGATIVE",
	OpUnaryNot:         "UNARY_NOT",
	OpCompareOp:        "COMPARE_OP",
	OpBuildList:        "BUILD_LIST",
	OpBuildTuple:       "BUILD_TUPLE",
	OpBuildMap:         "BUILD_MAP",
	OpBuildSlice:       "BUILD_SLICE",
	OpListAppend:       "LIST_APPEND",
	OpUnpackSequence:   "UNPACK_SEQUENCE",
	OpPopTop:           "POP_TOP",
	OpDupTop:           "DUP_TOP",
	OpRotTwo:           "ROT_TWO",
	OpRotThree:         "ROT_THREE",
	OpJumpAbsolute:     "JUMP_ABSOLUTE",
	OpJumpForward:      "JUMP_FORWARD",
	OpPopJumpIfFalse:   "POP_JUMP_IF_FALSE",
	OpPopJumpIfTrue:    "POP_JUMP_IF_TRUE",
	OpJumpIfFalseOrPop: "JUMP_IF_FALSE_OR_POP",
	OpSetupLoop:        "SETUP_LOOP",
	OpPopBlock:         "POP_BLOCK",
	OpGetIter:          "GET_ITER",
	OpForIter:          "FOR_ITER",
	OpCallFunction:     "CALL_FUNCTION",
	OpCallFunctionKW:   "CALL_FUNCTION_KW",
	OpMakeFunction:     "MAKE_FUNCTION",
	OpReturnValue:      "RETURN_VALUE",
	OpYieldValue:       "YIELD_VALUE",
	OpRaiseVarargs:     "RAISE_VARARGS",
	OpImportName:       "IMPORT_NAME",
	OpExtendedArg:      "EXTENDED_ARG",
}

// String returns the conventional upper-case mnemonic for the opcode.
func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "UNKNOWN"
	}
	return opNames[op]
}

// hasJumpTarget reports whether the instruction's Arg names another
// instruction's offset.
func (op Opcode) hasJumpTarget() bool {
	switch op {
	case OpJumpAbsolute, OpJumpForward, OpPopJumpIfFalse, OpPopJumpIfTrue,
		OpJumpIfFalseOrPop, OpForIter, OpSetupLoop:
		return true
	}
	return false
}
