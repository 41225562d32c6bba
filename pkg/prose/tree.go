// Package prose renders fable syntax trees and compiled instruction
// sequences into plain English. The two renderers share a small vocabulary
// (number words, list enumeration, markup escaping) so that the tree section
// and the instruction section of a document read alike.
package prose

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/prosegen/narrate/pkg/fable"
)

// TreeRenderer turns a syntax tree into declarative English, one template
// per node kind. Unknown node kinds render as empty text and are logged;
// rendering never fails.
type TreeRenderer struct {
	log *log.Logger
}

// NewTreeRenderer returns a renderer logging through the given logger, or
// the default logger when nil.
func NewTreeRenderer(logger *log.Logger) *TreeRenderer {
	if logger == nil {
		logger = log.Default()
	}
	return &TreeRenderer{log: logger}
}

// Render describes a single node, recursing into its children. Statement
// descriptions are complete sentences; expression descriptions are noun
// phrases ready for embedding in an enclosing sentence.
func (r *TreeRenderer) Render(node fable.Node) string {
	switch t := node.(type) {
	case *fable.Module:
		return "A module, containing the following code:\n\n" + r.renderBody(t.Body, "\n\n")

	case *fable.Import:
		return fmt.Sprintf("An import statement for a module named `%s`.", t.Name)

	case *fable.Assign:
		return fmt.Sprintf("An assignment to %s, of the value of %s.",
			r.Render(t.Target), r.Render(t.Value))

	case *fable.AugAssign:
		return fmt.Sprintf("A modifying assignment to %s, using %s, of the value of %s.",
			r.Render(t.Target), binOpPhrase(t.Op), r.Render(t.Value))

	case *fable.For:
		var b strings.Builder
		fmt.Fprintf(&b, "A for loop, where %s iterates over %s. The body of the loop is as follows:\n\n",
			r.Render(t.Target), r.Render(t.Iter))
		for _, stmt := range t.Body {
			b.WriteString(r.Render(stmt) + "\n\n")
		}
		b.WriteString("The for loop ends here.")
		return b.String()

	case *fable.While:
		var b strings.Builder
		fmt.Fprintf(&b, "A while loop, testing %s. The body of the loop is as follows:\n\n",
			r.Render(t.Test))
		for _, stmt := range t.Body {
			b.WriteString(r.Render(stmt) + "\n\n")
		}
		b.WriteString("The while loop ends here.")
		return b.String()

	case *fable.Continue:
		return "A 'continue' statement."

	case *fable.If:
		var b strings.Builder
		fmt.Fprintf(&b, "An `if` statement, testing %s. The body of the main branch is as follows:\n\n",
			r.Render(t.Test))
		for _, stmt := range t.Body {
			b.WriteString(r.Render(stmt) + "\n\n")
		}
		if len(t.Else) > 0 {
			b.WriteString("The other ('else') branch of the `if` statement is as follows:\n\n")
			for _, stmt := range t.Else {
				b.WriteString(r.Render(stmt) + "\n\n")
			}
		}
		b.WriteString("The `if` statement ends here.\n\n")
		return b.String()

	case *fable.FunctionDef:
		return r.renderFunctionDef(t)

	case *fable.Return:
		return fmt.Sprintf("A return statement, returning the value of %s.", r.Render(t.Value))

	case *fable.Assert:
		// Assertions are deliberately absent from the prose.
		return ""

	case *fable.ExprStmt:
		return fmt.Sprintf("A bare expression with value %s.", r.Render(t.Value))

	case *fable.Name:
		return fmt.Sprintf("the name `%s`", t.ID)

	case *fable.NameConstant:
		return fmt.Sprintf("the constant `%s`", t.Value)

	case *fable.Num:
		return fmt.Sprintf("a numeric constant with value %s", NumberWord(t.Value))

	case *fable.Str:
		return fmt.Sprintf("the literal string *'%s'*", EscapeMarkup(t.Value))

	case *fable.List:
		if len(t.Elts) == 0 {
			return "an empty list"
		}
		return "a list containing " + JoinList(r.renderEach(t.Elts))

	case *fable.Tuple:
		if len(t.Elts) == 0 {
			return "an empty tuple"
		}
		return "a tuple containing " + JoinList(r.renderEach(t.Elts))

	case *fable.Dict:
		if len(t.Keys) == 0 {
			return "an empty dictionary"
		}
		pairs := make([]string, len(t.Keys))
		for i := range t.Keys {
			pairs[i] = fmt.Sprintf("%s to %s", r.Render(t.Keys[i]), r.Render(t.Values[i]))
		}
		return "a dictionary mapping " + JoinList(pairs)

	case *fable.Attribute:
		return fmt.Sprintf("an attribute lookup of `%s` on %s", t.Attr, r.Render(t.Value))

	case *fable.Subscript:
		return fmt.Sprintf("%s, subscripted by %s", r.Render(t.Value), r.Render(t.Index))

	case *fable.Index:
		return r.Render(t.Value)

	case *fable.Slice:
		if t.Lower != nil {
			return fmt.Sprintf("a slice from %s to %s", r.Render(t.Lower), r.Render(t.Upper))
		}
		return fmt.Sprintf("a slice up to %s", r.Render(t.Upper))

	case *fable.BinOp:
		return fmt.Sprintf("%s, with left hand side %s, and right hand side %s",
			binOpPhrase(t.Op), r.Render(t.Left), r.Render(t.Right))

	case *fable.Compare:
		return r.renderCompare(t)

	case *fable.UnaryOp:
		return fmt.Sprintf("%s applied to %s", unaryOpPhrase(t.Op), r.Render(t.Operand))

	case *fable.Call:
		return r.renderCall(t)

	case *fable.Lambda:
		s := "a lambda expression"
		if len(t.Args) == 1 {
			s += fmt.Sprintf(" with argument `%s`", t.Args[0])
		} else if len(t.Args) > 1 {
			args := make([]string, len(t.Args))
			for i, a := range t.Args {
				args[i] = fmt.Sprintf("`%s`", a)
			}
			s += " with arguments " + JoinList(args)
		}
		return s + fmt.Sprintf(", evaluating to %s", r.Render(t.Body))

	case *fable.ListComp:
		return fmt.Sprintf("a list comprehension, taking the value of %s, as %s ranges over %s",
			r.Render(t.Elt), r.Render(t.Target), r.Render(t.Iter))

	case *fable.GeneratorExp:
		return fmt.Sprintf("a generator expression, taking the value of %s, as %s ranges over %s",
			r.Render(t.Elt), r.Render(t.Target), r.Render(t.Iter))
	}

	r.log.Warn("no prose rule for syntax node", "node", fmt.Sprintf("%T", node), "line", node.Pos())
	return ""
}

func (r *TreeRenderer) renderBody(body []fable.Node, sep string) string {
	parts := make([]string, len(body))
	for i, stmt := range body {
		parts[i] = r.Render(stmt)
	}
	return strings.Join(parts, sep)
}

func (r *TreeRenderer) renderEach(nodes []fable.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = r.Render(n)
	}
	return out
}

func (r *TreeRenderer) renderFunctionDef(t *fable.FunctionDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\nA definition of a function named `%s`", t.Name, t.Name)
	switch {
	case len(t.Args) == 1:
		fmt.Fprintf(&b, ", with argument `%s`.", t.Args[0])
	case len(t.Args) > 1:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = fmt.Sprintf("`%s`", a)
		}
		fmt.Fprintf(&b, ", with positional arguments %s.", JoinList(args))
	default:
		b.WriteString(".")
	}
	if len(t.Decorators) > 0 {
		fmt.Fprintf(&b, " The definition is decorated with the function `%s`.", t.Decorators[0].ID)
	}
	b.WriteString(" The body of the function is as follows:\n\n")
	for _, stmt := range t.Body {
		b.WriteString(r.Render(stmt) + "\n\n")
	}
	fmt.Fprintf(&b, "The function %s ends here.\n\n", t.Name)
	return b.String()
}

func (r *TreeRenderer) renderCall(t *fable.Call) string {
	var b strings.Builder
	fmt.Fprintf(&b, "a function call, calling the value of %s", r.Render(t.Func))
	switch {
	case len(t.Args) == 1:
		fmt.Fprintf(&b, ", with argument %s", r.Render(t.Args[0]))
	case len(t.Args) > 1:
		fmt.Fprintf(&b, ", with positional arguments %s", JoinList(r.renderEach(t.Args)))
	default:
		b.WriteString(", with no positional arguments")
	}
	if len(t.Keywords) > 0 {
		if len(t.Keywords) == 1 {
			b.WriteString(", and keyword argument")
		} else {
			b.WriteString(", and keyword arguments")
		}
		for _, kw := range t.Keywords {
			fmt.Fprintf(&b, ", assigning %s as `%s`", r.Render(kw.Value), kw.Arg)
		}
	}
	return b.String()
}

func (r *TreeRenderer) renderCompare(t *fable.Compare) string {
	if len(t.Ops) == 1 {
		return fmt.Sprintf("a comparison (using %s) of %s and %s",
			cmpOpPhrase(t.Ops[0]), r.Render(t.Left), r.Render(t.Comparators[0]))
	}
	lefts := append([]fable.Node{t.Left}, t.Comparators[:len(t.Comparators)-1]...)
	pairs := make([]string, len(t.Ops))
	for i, op := range t.Ops {
		pairs[i] = fmt.Sprintf("%s and %s using %s",
			r.Render(lefts[i]), r.Render(t.Comparators[i]), cmpOpPhrase(op))
	}
	return "a compound comparison, comparing " + JoinList(pairs)
}

func binOpPhrase(op fable.BinOpKind) string {
	switch op {
	case fable.OpAdd:
		return "the addition (or concatenation) operator"
	case fable.OpSub:
		return "the subtraction operator"
	case fable.OpMult:
		return "the multiplication operator"
	case fable.OpDiv:
		return "the division operator"
	case fable.OpMod:
		return "the modulo operator"
	case fable.OpBitAnd:
		return "the bitwise 'AND' operator"
	}
	return "an unknown operator"
}

func cmpOpPhrase(op fable.CmpOpKind) string {
	switch op {
	case fable.CmpEq:
		return "the equality operator"
	case fable.CmpNotEq:
		return "the inequality operator"
	case fable.CmpLt:
		return "the 'less than' operator"
	case fable.CmpLtE:
		return "the 'less than or equal to' operator"
	case fable.CmpGt:
		return "the 'greater than' operator"
	case fable.CmpGtE:
		return "the 'greater than or equal to' operator"
	case fable.CmpIs:
		return "the identity operator"
	}
	return "an unknown operator"
}

func unaryOpPhrase(op fable.UnaryOpKind) string {
	if op == fable.UnaryNot {
		return "the unary 'not' operator"
	}
	return "the unary negation operator"
}
