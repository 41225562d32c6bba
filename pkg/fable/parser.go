// Package fable implements the frontend for fable scripts: a small,
// indentation-structured scripting language with Python-flavoured syntax.
// The package exposes a lexer-backed recursive-descent parser producing the
// syntax tree consumed by the prose renderers and the bytecode compiler.
package fable

import (
	"github.com/prosegen/narrate/pkg/errors"
)

// Parse turns source text into a Module. A failed parse is fatal to the
// caller; the returned error carries ErrCodeParse.
func Parse(src string) (*Module, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.module()
}

type parser struct {
	toks []Token
	i    int
}

func (p *parser) peek() Token    { return p.toks[p.i] }
func (p *parser) prev() Token    { return p.toks[p.i-1] }
func (p *parser) at(tt TokenType) bool {
	return p.toks[p.i].Type == tt
}

func (p *parser) match(tts ...TokenType) bool {
	for _, tt := range tts {
		if p.at(tt) {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(tt TokenType, what string) (Token, error) {
	if !p.at(tt) {
		t := p.peek()
		return Token{}, errors.New(errors.ErrCodeParse, "line %d: expected %s, found %q", t.Line, what, t.Lexeme)
	}
	t := p.peek()
	p.i++
	return t, nil
}

func (p *parser) module() (*Module, error) {
	m := &Module{}
	if len(p.toks) > 0 {
		m.Line = p.toks[0].Line
	}
	for !p.at(EOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		m.Body = append(m.Body, stmt)
	}
	return m, nil
}

// suite parses the COLON NEWLINE INDENT statement+ DEDENT form.
func (p *parser) suite() ([]Node, error) {
	if _, err := p.need(COLON, "':'"); err != nil {
		return nil, err
	}
	if _, err := p.need(NEWLINE, "end of line"); err != nil {
		return nil, err
	}
	if _, err := p.need(INDENT, "an indented block"); err != nil {
		return nil, err
	}
	var body []Node
	for !p.at(DEDENT) && !p.at(EOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.match(DEDENT)
	return body, nil
}

func (p *parser) statement() (Node, error) {
	t := p.peek()
	switch t.Type {
	case IMPORT:
		return p.importStmt()
	case DEF, AT:
		return p.functionDef()
	case RETURN:
		return p.returnStmt()
	case IF:
		return p.ifStmt()
	case FOR:
		return p.forStmt()
	case WHILE:
		return p.whileStmt()
	case CONTINUE:
		p.i++
		stmt := &Continue{line{t.Line}}
		return stmt, p.endLine()
	case ASSERT:
		p.i++
		test, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &Assert{line{t.Line}, test}, p.endLine()
	}
	return p.simpleStmt()
}

func (p *parser) endLine() error {
	if p.at(EOF) {
		return nil
	}
	_, err := p.need(NEWLINE, "end of line")
	return err
}

func (p *parser) importStmt() (Node, error) {
	t := p.peek()
	p.i++
	name, err := p.need(IDENT, "a module name")
	if err != nil {
		return nil, err
	}
	return &Import{line{t.Line}, name.Lexeme}, p.endLine()
}

func (p *parser) functionDef() (Node, error) {
	t := p.peek()
	var decorators []*Name
	for p.match(AT) {
		d, err := p.need(IDENT, "a decorator name")
		if err != nil {
			return nil, err
		}
		decorators = append(decorators, &Name{line{d.Line}, d.Lexeme})
		if err := p.endLine(); err != nil {
			return nil, err
		}
	}
	if _, err := p.need(DEF, "'def'"); err != nil {
		return nil, err
	}
	name, err := p.need(IDENT, "a function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LPAREN, "'('"); err != nil {
		return nil, err
	}
	var args []string
	for !p.at(RPAREN) {
		a, err := p.need(IDENT, "an argument name")
		if err != nil {
			return nil, err
		}
		args = append(args, a.Lexeme)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return &FunctionDef{line{t.Line}, name.Lexeme, args, body, decorators}, nil
}

func (p *parser) returnStmt() (Node, error) {
	t := p.peek()
	p.i++
	var value Node
	if !p.at(NEWLINE) && !p.at(EOF) {
		v, err := p.exprList()
		if err != nil {
			return nil, err
		}
		value = v
	} else {
		value = &NameConstant{line{t.Line}, SingletonNone}
	}
	return &Return{line{t.Line}, value}, p.endLine()
}

func (p *parser) ifStmt() (Node, error) {
	t := p.peek()
	p.i++
	test, err := p.expr()
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	stmt := &If{line{t.Line}, test, body, nil}
	switch {
	case p.at(ELIF):
		// elif desugars to a nested if in the else branch
		p.toks[p.i].Type = IF
		nested, err := p.ifStmt()
		if err != nil {
			return nil, err
		}
		stmt.Else = []Node{nested}
	case p.match(ELSE):
		stmt.Else, err = p.suite()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) forStmt() (Node, error) {
	t := p.peek()
	p.i++
	target, err := p.targetList()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(IN, "'in'"); err != nil {
		return nil, err
	}
	iter, err := p.expr()
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return &For{line{t.Line}, target, iter, body}, nil
}

func (p *parser) whileStmt() (Node, error) {
	t := p.peek()
	p.i++
	test, err := p.expr()
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return &While{line{t.Line}, test, body}, nil
}

// targetList parses one or more comma-separated assignment targets.
func (p *parser) targetList() (Node, error) {
	first, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if !p.at(COMMA) {
		return first, nil
	}
	elts := []Node{first}
	for p.match(COMMA) {
		next, err := p.postfix()
		if err != nil {
			return nil, err
		}
		elts = append(elts, next)
	}
	return &Tuple{line{first.Pos()}, elts}, nil
}

// simpleStmt parses assignment, augmented assignment, or a bare expression.
func (p *parser) simpleStmt() (Node, error) {
	t := p.peek()
	target, err := p.exprList()
	if err != nil {
		return nil, err
	}

	switch {
	case p.match(ASSIGN):
		if err := validTarget(target); err != nil {
			return nil, err
		}
		value, err := p.exprList()
		if err != nil {
			return nil, err
		}
		return &Assign{line{t.Line}, target, value}, p.endLine()

	case p.match(PLUSASSIGN):
		name, ok := target.(*Name)
		if !ok {
			return nil, errors.New(errors.ErrCodeParse, "line %d: augmented assignment target must be a name", t.Line)
		}
		value, err := p.exprList()
		if err != nil {
			return nil, err
		}
		return &AugAssign{line{t.Line}, name, OpAdd, value}, p.endLine()
	}

	return &ExprStmt{line{t.Line}, target}, p.endLine()
}

// validTarget rejects assignment targets the compiler cannot store to.
func validTarget(n Node) error {
	switch t := n.(type) {
	case *Name, *Subscript:
		return nil
	case *Tuple:
		for _, e := range t.Elts {
			if _, ok := e.(*Name); !ok {
				return errors.New(errors.ErrCodeParse, "line %d: tuple assignment targets must be names", n.Pos())
			}
		}
		return nil
	}
	return errors.New(errors.ErrCodeParse, "line %d: cannot assign to this expression", n.Pos())
}

// exprList parses expr (',' expr)*, yielding a Tuple when more than one.
func (p *parser) exprList() (Node, error) {
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.at(COMMA) {
		return first, nil
	}
	elts := []Node{first}
	for p.match(COMMA) {
		if p.at(NEWLINE) || p.at(ASSIGN) || p.at(EOF) {
			break
		}
		next, err := p.expr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, next)
	}
	return &Tuple{line{first.Pos()}, elts}, nil
}

// =============================================================================
// Expressions, loosest binding first
// =============================================================================

func (p *parser) expr() (Node, error) {
	if p.at(LAMBDA) {
		return p.lambda()
	}
	return p.notExpr()
}

func (p *parser) lambda() (Node, error) {
	t := p.peek()
	p.i++
	var args []string
	for p.at(IDENT) {
		args = append(args, p.peek().Lexeme)
		p.i++
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(COLON, "':'"); err != nil {
		return nil, err
	}
	body, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &Lambda{line{t.Line}, args, body}, nil
}

func (p *parser) notExpr() (Node, error) {
	if p.at(NOT) {
		t := p.peek()
		p.i++
		operand, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{line{t.Line}, UnaryNot, operand}, nil
	}
	return p.comparison()
}

func (p *parser) comparison() (Node, error) {
	left, err := p.bitAnd()
	if err != nil {
		return nil, err
	}
	var ops []CmpOpKind
	var comparators []Node
	for {
		var op CmpOpKind
		switch p.peek().Type {
		case EQ:
			op = CmpEq
		case NOTEQ:
			op = CmpNotEq
		case LESS:
			op = CmpLt
		case LESSEQ:
			op = CmpLtE
		case GREATER:
			op = CmpGt
		case GREATEREQ:
			op = CmpGtE
		case IS:
			op = CmpIs
		default:
			if len(ops) == 0 {
				return left, nil
			}
			return &Compare{line{left.Pos()}, left, ops, comparators}, nil
		}
		p.i++
		right, err := p.bitAnd()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		comparators = append(comparators, right)
	}
}

func (p *parser) bitAnd() (Node, error) {
	left, err := p.arith()
	if err != nil {
		return nil, err
	}
	for p.at(AMPER) {
		t := p.peek()
		p.i++
		right, err := p.arith()
		if err != nil {
			return nil, err
		}
		left = &BinOp{line{t.Line}, OpBitAnd, left, right}
	}
	return left, nil
}

func (p *parser) arith() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.at(PLUS) || p.at(MINUS) {
		t := p.peek()
		p.i++
		op := OpAdd
		if t.Type == MINUS {
			op = OpSub
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &BinOp{line{t.Line}, op, left, right}
	}
	return left, nil
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.at(STAR) || p.at(SLASH) || p.at(PERCENT) {
		t := p.peek()
		p.i++
		var op BinOpKind
		switch t.Type {
		case STAR:
			op = OpMult
		case SLASH:
			op = OpDiv
		default:
			op = OpMod
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &BinOp{line{t.Line}, op, left, right}
	}
	return left, nil
}

func (p *parser) unary() (Node, error) {
	if p.at(MINUS) {
		t := p.peek()
		p.i++
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{line{t.Line}, UnaryNeg, operand}, nil
	}
	return p.postfix()
}

// postfix parses a primary followed by any number of call, attribute and
// subscript trailers.
func (p *parser) postfix() (Node, error) {
	node, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(LPAREN):
			node, err = p.callTrailer(node)
		case p.at(PERIOD):
			t := p.peek()
			p.i++
			var attr Token
			attr, err = p.need(IDENT, "an attribute name")
			if err == nil {
				node = &Attribute{line{t.Line}, node, attr.Lexeme}
			}
		case p.at(LSQUARE):
			node, err = p.subscriptTrailer(node)
		default:
			return node, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) callTrailer(fn Node) (Node, error) {
	t := p.peek()
	p.i++ // (
	call := &Call{line{t.Line}, fn, nil, nil}
	for !p.at(RPAREN) {
		// name=value is a keyword argument
		if p.at(IDENT) && p.toks[p.i+1].Type == ASSIGN {
			name := p.peek()
			p.i += 2
			value, err := p.expr()
			if err != nil {
				return nil, err
			}
			call.Keywords = append(call.Keywords, &Keyword{line{name.Line}, name.Lexeme, value})
		} else {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			// f(x for y in z) — a bare generator expression argument
			if p.at(FOR) && len(call.Args) == 0 && len(call.Keywords) == 0 {
				gen, err := p.compClause(arg)
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, &GeneratorExp{line{arg.Pos()}, gen.elt, gen.target, gen.iter})
				break
			}
			if len(call.Keywords) > 0 {
				return nil, errors.New(errors.ErrCodeParse, "line %d: positional argument after keyword argument", p.peek().Line)
			}
			call.Args = append(call.Args, arg)
		}
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RPAREN, "')'"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *parser) subscriptTrailer(value Node) (Node, error) {
	t := p.peek()
	p.i++ // [
	var index Node
	var lower Node
	var err error
	if !p.at(COLON) {
		lower, err = p.expr()
		if err != nil {
			return nil, err
		}
	}
	if p.match(COLON) {
		upper, err := p.expr()
		if err != nil {
			return nil, err
		}
		index = &Slice{line{t.Line}, lower, upper}
	} else {
		index = &Index{line{t.Line}, lower}
	}
	if _, err := p.need(RSQUARE, "']'"); err != nil {
		return nil, err
	}
	return &Subscript{line{t.Line}, value, index}, nil
}

// comprehension holds the parts of a single `x for y in z` clause.
type comprehension struct {
	elt    Node
	target Node
	iter   Node
}

func (p *parser) compClause(elt Node) (comprehension, error) {
	if _, err := p.need(FOR, "'for'"); err != nil {
		return comprehension{}, err
	}
	target, err := p.targetList()
	if err != nil {
		return comprehension{}, err
	}
	if _, err := p.need(IN, "'in'"); err != nil {
		return comprehension{}, err
	}
	iter, err := p.expr()
	if err != nil {
		return comprehension{}, err
	}
	return comprehension{elt, target, iter}, nil
}

func (p *parser) primary() (Node, error) {
	t := p.peek()
	switch t.Type {
	case IDENT:
		p.i++
		return &Name{line{t.Line}, t.Lexeme}, nil
	case INT:
		p.i++
		return &Num{line{t.Line}, t.Int}, nil
	case STRING:
		p.i++
		return &Str{line{t.Line}, t.Lexeme}, nil
	case TRUE:
		p.i++
		return &NameConstant{line{t.Line}, SingletonTrue}, nil
	case FALSE:
		p.i++
		return &NameConstant{line{t.Line}, SingletonFalse}, nil
	case NONE:
		p.i++
		return &NameConstant{line{t.Line}, SingletonNone}, nil
	case LPAREN:
		return p.parenExpr()
	case LSQUARE:
		return p.listExpr()
	case LCURLY:
		return p.dictExpr()
	case LAMBDA:
		return p.lambda()
	}
	return nil, errors.New(errors.ErrCodeParse, "line %d: unexpected %q", t.Line, t.Lexeme)
}

// parenExpr parses a parenthesized expression, a tuple display, or a
// parenthesized generator expression.
func (p *parser) parenExpr() (Node, error) {
	t := p.peek()
	p.i++ // (
	if p.at(RPAREN) {
		p.i++
		return &Tuple{line{t.Line}, nil}, nil
	}
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.at(FOR) {
		gen, err := p.compClause(first)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RPAREN, "')'"); err != nil {
			return nil, err
		}
		return &GeneratorExp{line{t.Line}, gen.elt, gen.target, gen.iter}, nil
	}
	if p.at(COMMA) {
		elts := []Node{first}
		for p.match(COMMA) {
			if p.at(RPAREN) {
				break
			}
			next, err := p.expr()
			if err != nil {
				return nil, err
			}
			elts = append(elts, next)
		}
		if _, err := p.need(RPAREN, "')'"); err != nil {
			return nil, err
		}
		return &Tuple{line{t.Line}, elts}, nil
	}
	if _, err := p.need(RPAREN, "')'"); err != nil {
		return nil, err
	}
	return first, nil
}

// listExpr parses a list display or a single-clause list comprehension.
func (p *parser) listExpr() (Node, error) {
	t := p.peek()
	p.i++ // [
	if p.at(RSQUARE) {
		p.i++
		return &List{line{t.Line}, nil}, nil
	}
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.at(FOR) {
		gen, err := p.compClause(first)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RSQUARE, "']'"); err != nil {
			return nil, err
		}
		return &ListComp{line{t.Line}, gen.elt, gen.target, gen.iter}, nil
	}
	elts := []Node{first}
	for p.match(COMMA) {
		if p.at(RSQUARE) {
			break
		}
		next, err := p.expr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, next)
	}
	if _, err := p.need(RSQUARE, "']'"); err != nil {
		return nil, err
	}
	return &List{line{t.Line}, elts}, nil
}

func (p *parser) dictExpr() (Node, error) {
	t := p.peek()
	p.i++ // {
	d := &Dict{line{t.Line}, nil, nil}
	for !p.at(RCURLY) {
		key, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(COLON, "':'"); err != nil {
			return nil, err
		}
		value, err := p.expr()
		if err != nil {
			return nil, err
		}
		d.Keys = append(d.Keys, key)
		d.Values = append(d.Values, value)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RCURLY, "'}'"); err != nil {
		return nil, err
	}
	return d, nil
}
