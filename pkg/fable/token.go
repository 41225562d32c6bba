package fable

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Layout. The lexer is indentation-aware: NEWLINE ends a logical line,
	// INDENT/DEDENT bracket nested suites.
	NEWLINE
	INDENT
	DEDENT

	// Literals & identifiers
	IDENT
	INT
	STRING

	// Punctuation
	LPAREN   // "("
	RPAREN   // ")"
	LSQUARE  // "["
	RSQUARE  // "]"
	LCURLY   // "{"
	RCURLY   // "}"
	COLON    // ":"
	COMMA    // ","
	PERIOD   // "."
	AT       // "@"

	// Operators
	PLUS       // "+"
	MINUS      // "-"
	STAR       // "*"
	SLASH      // "/"
	PERCENT    // "%"
	AMPER      // "&"
	ASSIGN     // "="
	PLUSASSIGN // "+="
	EQ         // "=="
	NOTEQ      // "!="
	LESS       // "<"
	LESSEQ     // "<="
	GREATER    // ">"
	GREATEREQ  // ">="

	// Keywords
	IMPORT
	DEF
	RETURN
	IF
	ELIF
	ELSE
	FOR
	WHILE
	IN
	CONTINUE
	ASSERT
	IS
	NOT
	LAMBDA
	TRUE
	FALSE
	NONE
)

// Token is a lexical token pointing back to the source.
type Token struct {
	Type   TokenType
	Lexeme string
	Int    int64 // decoded value for INT tokens
	Line   int
}

var keywords = map[string]TokenType{
	"import":   IMPORT,
	"def":      DEF,
	"return":   RETURN,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"for":      FOR,
	"while":    WHILE,
	"in":       IN,
	"continue": CONTINUE,
	"assert":   ASSERT,
	"is":       IS,
	"not":      NOT,
	"lambda":   LAMBDA,
	"True":     TRUE,
	"False":    FALSE,
	"None":     NONE,
}
