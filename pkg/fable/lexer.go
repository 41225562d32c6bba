package fable

import (
	"strconv"
	"strings"

	"github.com/prosegen/narrate/pkg/errors"
)

// lexer turns source text into a token stream. It tracks indentation the
// Python way: leading whitespace on each logical line is compared against a
// stack of open indent widths, emitting INDENT/DEDENT tokens as suites open
// and close. Newlines inside brackets do not end the logical line.
type lexer struct {
	src     string
	pos     int
	line    int
	indents []int
	depth   int // open bracket depth
	toks    []Token
}

// lex scans the whole source up front and returns the token slice, ending
// with any pending DEDENTs and a final EOF.
func lex(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1, indents: []int{0}}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.toks, nil
}

func (l *lexer) run() error {
	atLineStart := true
	for {
		if atLineStart && l.depth == 0 {
			if err := l.scanIndent(); err != nil {
				return err
			}
			if l.pos >= len(l.src) {
				break
			}
			atLineStart = false
		}
		if l.pos >= len(l.src) {
			// Close the last logical line if the file lacks a final newline.
			if n := len(l.toks); n > 0 && l.toks[n-1].Type != NEWLINE {
				l.emit(NEWLINE, "")
			}
			break
		}

		ch := l.src[l.pos]
		switch {
		case ch == '\n':
			l.pos++
			if l.depth == 0 {
				if n := len(l.toks); n > 0 && l.toks[n-1].Type != NEWLINE && l.toks[n-1].Type != INDENT && l.toks[n-1].Type != DEDENT {
					l.emit(NEWLINE, "")
				}
				atLineStart = true
			}
			l.line++
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
		case ch == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case isIdentStart(ch):
			l.scanIdent()
		case ch >= '0' && ch <= '9':
			if err := l.scanNumber(); err != nil {
				return err
			}
		case ch == '\'' || ch == '"':
			if err := l.scanString(ch); err != nil {
				return err
			}
		default:
			if err := l.scanOperator(); err != nil {
				return err
			}
		}
	}

	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(DEDENT, "")
	}
	l.emit(EOF, "")
	return nil
}

// scanIndent measures leading whitespace at the start of a logical line and
// emits INDENT/DEDENT as needed. Blank and comment-only lines are skipped
// without affecting the indent stack.
func (l *lexer) scanIndent() error {
	for {
		width := 0
		i := l.pos
		for i < len(l.src) {
			switch l.src[i] {
			case ' ':
				width++
			case '\t':
				width += 8 - width%8
			case '\r':
				// ignore
			default:
				goto measured
			}
			i++
		}
	measured:
		if i >= len(l.src) {
			l.pos = i
			return nil
		}
		if l.src[i] == '\n' {
			l.pos = i + 1
			l.line++
			continue
		}
		if l.src[i] == '#' {
			for i < len(l.src) && l.src[i] != '\n' {
				i++
			}
			l.pos = i
			continue
		}

		l.pos = i
		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			l.emit(INDENT, "")
		case width < top:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				l.emit(DEDENT, "")
			}
			if l.indents[len(l.indents)-1] != width {
				return errors.New(errors.ErrCodeParse, "line %d: inconsistent indentation", l.line)
			}
		}
		return nil
	}
}

func (l *lexer) scanIdent() {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	word := l.src[start:l.pos]
	if kw, ok := keywords[word]; ok {
		l.emit(kw, word)
		return
	}
	l.emit(IDENT, word)
}

func (l *lexer) scanNumber() error {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	text := l.src[start:l.pos]
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return errors.Wrap(errors.ErrCodeParse, err, "line %d: bad integer literal %q", l.line, text)
	}
	l.toks = append(l.toks, Token{Type: INT, Lexeme: text, Int: n, Line: l.line})
	return nil
}

func (l *lexer) scanString(quote byte) error {
	startLine := l.line
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return errors.New(errors.ErrCodeParse, "line %d: unterminated string literal", startLine)
		}
		ch := l.src[l.pos]
		if ch == quote {
			l.pos++
			break
		}
		if ch == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			switch l.src[l.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\':
				b.WriteByte('\\')
			case '\'':
				b.WriteByte('\'')
			case '"':
				b.WriteByte('"')
			default:
				b.WriteByte('\\')
				b.WriteByte(l.src[l.pos])
			}
			l.pos++
			continue
		}
		b.WriteByte(ch)
		l.pos++
	}
	l.toks = append(l.toks, Token{Type: STRING, Lexeme: b.String(), Line: startLine})
	return nil
}

func (l *lexer) scanOperator() error {
	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	switch two {
	case "+=":
		l.pos += 2
		l.emit(PLUSASSIGN, two)
		return nil
	case "==":
		l.pos += 2
		l.emit(EQ, two)
		return nil
	case "!=":
		l.pos += 2
		l.emit(NOTEQ, two)
		return nil
	case "<=":
		l.pos += 2
		l.emit(LESSEQ, two)
		return nil
	case ">=":
		l.pos += 2
		l.emit(GREATEREQ, two)
		return nil
	}

	ch := l.src[l.pos]
	one := string(ch)
	var tt TokenType
	switch ch {
	case '(':
		tt = LPAREN
		l.depth++
	case ')':
		tt = RPAREN
		l.depth--
	case '[':
		tt = LSQUARE
		l.depth++
	case ']':
		tt = RSQUARE
		l.depth--
	case '{':
		tt = LCURLY
		l.depth++
	case '}':
		tt = RCURLY
		l.depth--
	case ':':
		tt = COLON
	case ',':
		tt = COMMA
	case '.':
		tt = PERIOD
	case '@':
		tt = AT
	case '+':
		tt = PLUS
	case '-':
		tt = MINUS
	case '*':
		tt = STAR
	case '/':
		tt = SLASH
	case '%':
		tt = PERCENT
	case '&':
		tt = AMPER
	case '=':
		tt = ASSIGN
	case '<':
		tt = LESS
	case '>':
		tt = GREATER
	default:
		return errors.New(errors.ErrCodeParse, "line %d: unexpected character %q", l.line, one)
	}
	l.pos++
	l.emit(tt, one)
	return nil
}

func (l *lexer) emit(tt TokenType, lexeme string) {
	l.toks = append(l.toks, Token{Type: tt, Lexeme: lexeme, Line: l.line})
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
