// Package graph renders a fable syntax tree as a node-link diagram, for
// readers who want to see the shape of the tree the prose describes.
package graph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/prosegen/narrate/pkg/errors"
	"github.com/prosegen/narrate/pkg/fable"
)

// ToDOT converts a syntax tree to Graphviz DOT format. Each node is boxed
// and labelled with its kind and, where it has one, its salient datum (a
// name, a literal, an operator symbol).
func ToDOT(mod *fable.Module) string {
	var buf bytes.Buffer
	buf.WriteString("digraph ast {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	w := &dotWriter{buf: &buf}
	w.walk(mod)

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter struct {
	buf  *bytes.Buffer
	next int
}

// walk emits the node, then its children, then the connecting edges.
func (w *dotWriter) walk(n fable.Node) string {
	id := fmt.Sprintf("n%d", w.next)
	w.next++
	fmt.Fprintf(w.buf, "  %s [label=%q];\n", id, nodeLabel(n))
	for _, child := range children(n) {
		childID := w.walk(child)
		fmt.Fprintf(w.buf, "  %s -> %s;\n", id, childID)
	}
	return id
}

func nodeLabel(n fable.Node) string {
	switch t := n.(type) {
	case *fable.Module:
		return "module"
	case *fable.Import:
		return "import " + t.Name
	case *fable.Assign:
		return "assign"
	case *fable.AugAssign:
		return "augmented assign " + t.Op.String() + "="
	case *fable.For:
		return "for"
	case *fable.While:
		return "while"
	case *fable.Continue:
		return "continue"
	case *fable.If:
		return "if"
	case *fable.FunctionDef:
		return "def " + t.Name + "(" + strings.Join(t.Args, ", ") + ")"
	case *fable.Return:
		return "return"
	case *fable.Assert:
		return "assert"
	case *fable.ExprStmt:
		return "expression"
	case *fable.Name:
		return t.ID
	case *fable.NameConstant:
		return t.Value.String()
	case *fable.Num:
		return fmt.Sprintf("%d", t.Value)
	case *fable.Str:
		return fmt.Sprintf("%q", t.Value)
	case *fable.List:
		return "list"
	case *fable.Tuple:
		return "tuple"
	case *fable.Dict:
		return "dict"
	case *fable.Attribute:
		return "." + t.Attr
	case *fable.Subscript:
		return "subscript"
	case *fable.Index:
		return "index"
	case *fable.Slice:
		return "slice"
	case *fable.Keyword:
		return t.Arg + "="
	case *fable.Call:
		return "call"
	case *fable.BinOp:
		return t.Op.String()
	case *fable.Compare:
		syms := make([]string, len(t.Ops))
		for i, op := range t.Ops {
			syms[i] = op.String()
		}
		return "compare " + strings.Join(syms, " ")
	case *fable.UnaryOp:
		if t.Op == fable.UnaryNot {
			return "not"
		}
		return "negate"
	case *fable.Lambda:
		return "lambda " + strings.Join(t.Args, ", ")
	case *fable.ListComp:
		return "list comprehension"
	case *fable.GeneratorExp:
		return "generator expression"
	}
	return fmt.Sprintf("%T", n)
}

func children(n fable.Node) []fable.Node {
	switch t := n.(type) {
	case *fable.Module:
		return t.Body
	case *fable.Assign:
		return []fable.Node{t.Target, t.Value}
	case *fable.AugAssign:
		return []fable.Node{t.Target, t.Value}
	case *fable.For:
		return append([]fable.Node{t.Target, t.Iter}, t.Body...)
	case *fable.While:
		return append([]fable.Node{t.Test}, t.Body...)
	case *fable.If:
		kids := append([]fable.Node{t.Test}, t.Body...)
		return append(kids, t.Else...)
	case *fable.FunctionDef:
		var kids []fable.Node
		for _, d := range t.Decorators {
			kids = append(kids, d)
		}
		return append(kids, t.Body...)
	case *fable.Return:
		return []fable.Node{t.Value}
	case *fable.Assert:
		return []fable.Node{t.Test}
	case *fable.ExprStmt:
		return []fable.Node{t.Value}
	case *fable.List:
		return t.Elts
	case *fable.Tuple:
		return t.Elts
	case *fable.Dict:
		var kids []fable.Node
		for i := range t.Keys {
			kids = append(kids, t.Keys[i], t.Values[i])
		}
		return kids
	case *fable.Attribute:
		return []fable.Node{t.Value}
	case *fable.Subscript:
		return []fable.Node{t.Value, t.Index}
	case *fable.Index:
		return []fable.Node{t.Value}
	case *fable.Slice:
		var kids []fable.Node
		if t.Lower != nil {
			kids = append(kids, t.Lower)
		}
		return append(kids, t.Upper)
	case *fable.Keyword:
		return []fable.Node{t.Value}
	case *fable.Call:
		kids := append([]fable.Node{t.Func}, t.Args...)
		for _, kw := range t.Keywords {
			kids = append(kids, kw)
		}
		return kids
	case *fable.BinOp:
		return []fable.Node{t.Left, t.Right}
	case *fable.Compare:
		return append([]fable.Node{t.Left}, t.Comparators...)
	case *fable.UnaryOp:
		return []fable.Node{t.Operand}
	case *fable.Lambda:
		return []fable.Node{t.Body}
	case *fable.ListComp:
		return []fable.Node{t.Elt, t.Target, t.Iter}
	case *fable.GeneratorExp:
		return []fable.Node{t.Elt, t.Target, t.Iter}
	}
	return nil
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "failed to initialize graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "failed to parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "failed to render SVG")
	}
	return buf.Bytes(), nil
}
