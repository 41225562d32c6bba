package fable

import (
	"testing"

	"github.com/prosegen/narrate/pkg/errors"
)

func parseOne(t *testing.T, src string) Node {
	t.Helper()
	mod, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(mod.Body) != 1 {
		t.Fatalf("statement count = %d, want 1", len(mod.Body))
	}
	return mod.Body[0]
}

func TestParseAssign(t *testing.T) {
	stmt, ok := parseOne(t, "x = 1 + 2 * 3\n").(*Assign)
	if !ok {
		t.Fatalf("node type = %T, want *Assign", stmt)
	}
	if name, ok := stmt.Target.(*Name); !ok || name.ID != "x" {
		t.Fatalf("target = %#v, want Name x", stmt.Target)
	}
	add, ok := stmt.Value.(*BinOp)
	if !ok || add.Op != OpAdd {
		t.Fatalf("value = %#v, want + BinOp", stmt.Value)
	}
	// * binds tighter than +.
	mul, ok := add.Right.(*BinOp)
	if !ok || mul.Op != OpMult {
		t.Fatalf("right operand = %#v, want * BinOp", add.Right)
	}
}

func TestParseTupleAssign(t *testing.T) {
	stmt := parseOne(t, "a, b = b, a\n").(*Assign)
	target, ok := stmt.Target.(*Tuple)
	if !ok || len(target.Elts) != 2 {
		t.Fatalf("target = %#v, want two-name tuple", stmt.Target)
	}
	value, ok := stmt.Value.(*Tuple)
	if !ok || len(value.Elts) != 2 {
		t.Fatalf("value = %#v, want two-element tuple", stmt.Value)
	}
}

func TestParseAugAssign(t *testing.T) {
	stmt := parseOne(t, "total += n\n").(*AugAssign)
	if stmt.Target.ID != "total" || stmt.Op != OpAdd {
		t.Errorf("parsed %q += with target %q", stmt.Target.ID, stmt.Target.ID)
	}
}

func TestParseFunctionDef(t *testing.T) {
	src := "def clamp(n, lo, hi):\n    if n < lo:\n        return lo\n    return n\n"
	fn := parseOne(t, src).(*FunctionDef)
	if fn.Name != "clamp" {
		t.Errorf("name = %q, want clamp", fn.Name)
	}
	if len(fn.Args) != 3 || fn.Args[0] != "n" || fn.Args[2] != "hi" {
		t.Errorf("args = %v, want [n lo hi]", fn.Args)
	}
	if len(fn.Body) != 2 {
		t.Fatalf("body length = %d, want 2", len(fn.Body))
	}
	if _, ok := fn.Body[0].(*If); !ok {
		t.Errorf("first body statement = %T, want *If", fn.Body[0])
	}
}

func TestParseDecorators(t *testing.T) {
	fn := parseOne(t, "@trace\n@memo\ndef f():\n    return 1\n").(*FunctionDef)
	if len(fn.Decorators) != 2 {
		t.Fatalf("decorator count = %d, want 2", len(fn.Decorators))
	}
	if fn.Decorators[0].ID != "trace" || fn.Decorators[1].ID != "memo" {
		t.Errorf("decorators = %v, %v", fn.Decorators[0].ID, fn.Decorators[1].ID)
	}
}

func TestParseElifDesugaring(t *testing.T) {
	src := "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n"
	outer := parseOne(t, src).(*If)
	if len(outer.Else) != 1 {
		t.Fatalf("outer else length = %d, want 1", len(outer.Else))
	}
	inner, ok := outer.Else[0].(*If)
	if !ok {
		t.Fatalf("elif node = %T, want nested *If", outer.Else[0])
	}
	if test, ok := inner.Test.(*Name); !ok || test.ID != "b" {
		t.Errorf("nested test = %#v, want Name b", inner.Test)
	}
	if len(inner.Else) != 1 {
		t.Errorf("nested else length = %d, want 1", len(inner.Else))
	}
}

func TestParseLoops(t *testing.T) {
	forStmt := parseOne(t, "for k, v in items:\n    f(k, v)\n").(*For)
	if target, ok := forStmt.Target.(*Tuple); !ok || len(target.Elts) != 2 {
		t.Errorf("for target = %#v, want two-name tuple", forStmt.Target)
	}

	whileStmt := parseOne(t, "while n > 0:\n    n = n - 1\n").(*While)
	if _, ok := whileStmt.Test.(*Compare); !ok {
		t.Errorf("while test = %T, want *Compare", whileStmt.Test)
	}
}

func TestParseChainedComparison(t *testing.T) {
	stmt := parseOne(t, "ok = 0 <= i < n\n").(*Assign)
	cmp := stmt.Value.(*Compare)
	if len(cmp.Ops) != 2 || len(cmp.Comparators) != 2 {
		t.Fatalf("chain arity = %d/%d, want 2/2", len(cmp.Ops), len(cmp.Comparators))
	}
	if cmp.Ops[0] != CmpLtE || cmp.Ops[1] != CmpLt {
		t.Errorf("operators = %v, %v, want <=, <", cmp.Ops[0], cmp.Ops[1])
	}
}

func TestParseCall(t *testing.T) {
	stmt := parseOne(t, "plot(data, style=\"bars\", width=80)\n").(*ExprStmt)
	call := stmt.Value.(*Call)
	if len(call.Args) != 1 || len(call.Keywords) != 2 {
		t.Fatalf("call arity = %d/%d, want 1 positional, 2 keyword", len(call.Args), len(call.Keywords))
	}
	if call.Keywords[0].Arg != "style" || call.Keywords[1].Arg != "width" {
		t.Errorf("keyword names = %q, %q", call.Keywords[0].Arg, call.Keywords[1].Arg)
	}
}

func TestParsePostfixChain(t *testing.T) {
	stmt := parseOne(t, "x = obj.field[0](y)\n").(*Assign)
	call, ok := stmt.Value.(*Call)
	if !ok {
		t.Fatalf("value = %T, want *Call", stmt.Value)
	}
	sub, ok := call.Func.(*Subscript)
	if !ok {
		t.Fatalf("callee = %T, want *Subscript", call.Func)
	}
	attr, ok := sub.Value.(*Attribute)
	if !ok || attr.Attr != "field" {
		t.Fatalf("subscripted value = %#v, want Attribute field", sub.Value)
	}
}

func TestParseSlice(t *testing.T) {
	stmt := parseOne(t, "y = xs[1:n]\n").(*Assign)
	sub := stmt.Value.(*Subscript)
	slice, ok := sub.Index.(*Slice)
	if !ok {
		t.Fatalf("index = %T, want *Slice", sub.Index)
	}
	if slice.Lower == nil || slice.Upper == nil {
		t.Errorf("slice bounds = %v, %v, want both set", slice.Lower, slice.Upper)
	}

	stmt = parseOne(t, "y = xs[:n]\n").(*Assign)
	slice = stmt.Value.(*Subscript).Index.(*Slice)
	if slice.Lower != nil {
		t.Errorf("open slice lower = %#v, want nil", slice.Lower)
	}
}

func TestParseDisplays(t *testing.T) {
	stmt := parseOne(t, "d = {\"a\": 1, \"b\": 2}\n").(*Assign)
	dict := stmt.Value.(*Dict)
	if len(dict.Keys) != 2 || len(dict.Values) != 2 {
		t.Fatalf("dict arity = %d/%d, want 2/2", len(dict.Keys), len(dict.Values))
	}

	stmt = parseOne(t, "xs = [1, 2, 3]\n").(*Assign)
	list := stmt.Value.(*List)
	if len(list.Elts) != 3 {
		t.Errorf("list arity = %d, want 3", len(list.Elts))
	}
}

func TestParseComprehensions(t *testing.T) {
	stmt := parseOne(t, "ys = [f(x) for x in xs]\n").(*Assign)
	if _, ok := stmt.Value.(*ListComp); !ok {
		t.Errorf("value = %T, want *ListComp", stmt.Value)
	}

	stmt = parseOne(t, "g = (x for x in xs)\n").(*Assign)
	if _, ok := stmt.Value.(*GeneratorExp); !ok {
		t.Errorf("value = %T, want *GeneratorExp", stmt.Value)
	}

	// A bare generator expression as the sole call argument needs no
	// extra parentheses.
	call := parseOne(t, "total = sum(n * n for n in xs)\n").(*Assign).Value.(*Call)
	if len(call.Args) != 1 {
		t.Fatalf("call arity = %d, want 1", len(call.Args))
	}
	if _, ok := call.Args[0].(*GeneratorExp); !ok {
		t.Errorf("argument = %T, want *GeneratorExp", call.Args[0])
	}
}

func TestParseLambda(t *testing.T) {
	stmt := parseOne(t, "f = lambda a, b: a + b\n").(*Assign)
	fn, ok := stmt.Value.(*Lambda)
	if !ok {
		t.Fatalf("value = %T, want *Lambda", stmt.Value)
	}
	if len(fn.Args) != 2 {
		t.Errorf("lambda arity = %d, want 2", len(fn.Args))
	}
}

func TestParseReturnDefaultsToNone(t *testing.T) {
	fn := parseOne(t, "def f():\n    return\n").(*FunctionDef)
	ret := fn.Body[0].(*Return)
	nc, ok := ret.Value.(*NameConstant)
	if !ok || nc.Value != SingletonNone {
		t.Errorf("bare return value = %#v, want None", ret.Value)
	}
}

func TestParseLineNumbers(t *testing.T) {
	mod, err := Parse("x = 1\n\ny = 2\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if mod.Body[0].Pos() != 1 {
		t.Errorf("first statement line = %d, want 1", mod.Body[0].Pos())
	}
	if mod.Body[1].Pos() != 3 {
		t.Errorf("second statement line = %d, want 3", mod.Body[1].Pos())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing colon", "if x\n    y = 1\n"},
		{"bad assignment target", "1 = x\n"},
		{"positional after keyword", "f(a=1, 2)\n"},
		{"unclosed paren", "x = (1 + 2\n"},
		{"augmented non-name", "xs[0] += 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.src); !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("Parse() error = %v, want code %s", err, errors.ErrCodeParse)
			}
		})
	}
}
