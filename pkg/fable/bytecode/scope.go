package bytecode

import (
	"github.com/prosegen/narrate/pkg/fable"
)

// scopeInfo is the result of the symbol pass for one lexical scope. It
// decides, before any instruction is emitted, whether each name is a plain
// module name, a function local, a free variable captured from an enclosing
// function, or a global reference.
type scopeInfo struct {
	kind     string // "module", "function", "lambda", "listcomp", "genexpr"
	parent   *scopeInfo
	children []*scopeInfo

	locals    map[string]bool // params plus every assigned name
	used      map[string]bool
	usedOrder []string // deterministic resolution order

	cells   map[string]bool // locals captured by some nested scope
	free    []string        // captured names, in first-encounter order
	freeSet map[string]bool
	globals map[string]bool
}

func newScope(kind string, parent *scopeInfo) *scopeInfo {
	s := &scopeInfo{
		kind:    kind,
		parent:  parent,
		locals:  map[string]bool{},
		used:    map[string]bool{},
		cells:   map[string]bool{},
		freeSet: map[string]bool{},
		globals: map[string]bool{},
	}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

func (s *scopeInfo) assign(name string) { s.locals[name] = true }

func (s *scopeInfo) use(name string) {
	if !s.used[name] {
		s.used[name] = true
		s.usedOrder = append(s.usedOrder, name)
	}
}

func (s *scopeInfo) addFree(name string) {
	if !s.freeSet[name] {
		s.freeSet[name] = true
		s.free = append(s.free, name)
	}
}

// analyze walks the whole tree and returns the scope for each scope-opening
// node (the module itself, def, lambda, comprehensions).
func analyze(mod *fable.Module) map[fable.Node]*scopeInfo {
	scopes := map[fable.Node]*scopeInfo{}
	root := newScope("module", nil)
	scopes[mod] = root
	for _, stmt := range mod.Body {
		collect(stmt, root, scopes)
	}
	resolve(root)
	return scopes
}

// collect records assignments and uses, opening child scopes for nested
// function-like constructs. The iterable of a comprehension is evaluated in
// the enclosing scope; everything else in the clause belongs to the child.
func collect(n fable.Node, s *scopeInfo, scopes map[fable.Node]*scopeInfo) {
	switch t := n.(type) {
	case nil:
		return
	case *fable.Import:
		s.assign(t.Name)
	case *fable.Assign:
		collect(t.Value, s, scopes)
		collectTarget(t.Target, s, scopes)
	case *fable.AugAssign:
		s.use(t.Target.ID)
		s.assign(t.Target.ID)
		collect(t.Value, s, scopes)
	case *fable.For:
		collect(t.Iter, s, scopes)
		collectTarget(t.Target, s, scopes)
		for _, stmt := range t.Body {
			collect(stmt, s, scopes)
		}
	case *fable.While:
		collect(t.Test, s, scopes)
		for _, stmt := range t.Body {
			collect(stmt, s, scopes)
		}
	case *fable.If:
		collect(t.Test, s, scopes)
		for _, stmt := range t.Body {
			collect(stmt, s, scopes)
		}
		for _, stmt := range t.Else {
			collect(stmt, s, scopes)
		}
	case *fable.FunctionDef:
		for _, dec := range t.Decorators {
			s.use(dec.ID)
		}
		s.assign(t.Name)
		child := newScope("function", s)
		scopes[n] = child
		for _, arg := range t.Args {
			child.assign(arg)
		}
		for _, stmt := range t.Body {
			collect(stmt, child, scopes)
		}
	case *fable.Lambda:
		child := newScope("lambda", s)
		scopes[n] = child
		for _, arg := range t.Args {
			child.assign(arg)
		}
		collect(t.Body, child, scopes)
	case *fable.ListComp:
		collect(t.Iter, s, scopes)
		child := newScope("listcomp", s)
		scopes[n] = child
		child.assign(".0")
		collectTarget(t.Target, child, scopes)
		collect(t.Elt, child, scopes)
	case *fable.GeneratorExp:
		collect(t.Iter, s, scopes)
		child := newScope("genexpr", s)
		scopes[n] = child
		child.assign(".0")
		collectTarget(t.Target, child, scopes)
		collect(t.Elt, child, scopes)
	case *fable.Return:
		collect(t.Value, s, scopes)
	case *fable.Assert:
		collect(t.Test, s, scopes)
	case *fable.ExprStmt:
		collect(t.Value, s, scopes)
	case *fable.Continue, *fable.NameConstant, *fable.Num, *fable.Str:
		// no names involved
	case *fable.Name:
		s.use(t.ID)
	case *fable.List:
		for _, e := range t.Elts {
			collect(e, s, scopes)
		}
	case *fable.Tuple:
		for _, e := range t.Elts {
			collect(e, s, scopes)
		}
	case *fable.Dict:
		for i := range t.Keys {
			collect(t.Keys[i], s, scopes)
			collect(t.Values[i], s, scopes)
		}
	case *fable.Attribute:
		collect(t.Value, s, scopes)
	case *fable.Subscript:
		collect(t.Value, s, scopes)
		collect(t.Index, s, scopes)
	case *fable.Index:
		collect(t.Value, s, scopes)
	case *fable.Slice:
		collect(t.Lower, s, scopes)
		collect(t.Upper, s, scopes)
	case *fable.Call:
		collect(t.Func, s, scopes)
		for _, a := range t.Args {
			collect(a, s, scopes)
		}
		for _, kw := range t.Keywords {
			collect(kw.Value, s, scopes)
		}
	case *fable.BinOp:
		collect(t.Left, s, scopes)
		collect(t.Right, s, scopes)
	case *fable.Compare:
		collect(t.Left, s, scopes)
		for _, c := range t.Comparators {
			collect(c, s, scopes)
		}
	case *fable.UnaryOp:
		collect(t.Operand, s, scopes)
	}
}

// collectTarget records the names an assignment target binds. Subscript
// targets bind nothing; their sub-expressions are uses.
func collectTarget(n fable.Node, s *scopeInfo, scopes map[fable.Node]*scopeInfo) {
	switch t := n.(type) {
	case *fable.Name:
		s.assign(t.ID)
	case *fable.Tuple:
		for _, e := range t.Elts {
			collectTarget(e, s, scopes)
		}
	case *fable.Subscript:
		collect(t.Value, s, scopes)
		collect(t.Index, s, scopes)
	}
}

// resolve classifies, bottom-up, every non-local name as free or global,
// and marks the defining scope's cells.
func resolve(s *scopeInfo) {
	for _, c := range s.children {
		resolve(c)
		// A child's free variables either originate here (cells) or pass
		// through to an outer scope.
		for _, name := range c.free {
			if s.kind == "module" {
				continue
			}
			if s.locals[name] {
				s.cells[name] = true
			} else {
				s.addFree(name)
			}
		}
	}
	if s.kind == "module" {
		return
	}
	for _, name := range s.usedOrder {
		if s.locals[name] || s.freeSet[name] {
			continue
		}
		if definedInEnclosingFunction(s, name) {
			s.addFree(name)
		} else {
			s.globals[name] = true
		}
	}
}

func definedInEnclosingFunction(s *scopeInfo, name string) bool {
	for a := s.parent; a != nil; a = a.parent {
		if a.kind == "module" {
			return false
		}
		if a.locals[name] {
			return true
		}
	}
	return false
}
