package lexer

import "fmt"

type TokenType string

const (
	EOF TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER"
	STRING TokenType = "STRING"

	LPAREN    TokenType = "LPAREN"
	RPAREN    TokenType = "RPAREN"
	LBRACE    TokenType = "LBRACE"
	RBRACE    TokenType = "RBRACE"
	COMMA     TokenType = "COMMA"
	DOT       TokenType = "DOT"
	SEMICOLON TokenType = "SEMICOLON"

	PLUS  TokenType = "PLUS"
	MINUS TokenType = "MINUS"
	STAR  TokenType = "STAR"
	SLASH TokenType = "SLASH"

	BANG   TokenType = "BANG"
	ASSIGN TokenType = "ASSIGN"
	EQ     TokenType = "EQ"
	NEQ    TokenType = "NEQ"
	LT     TokenType = "LT"
	GT     TokenType = "GT"
	LTE    TokenType = "LTE"
	GTE    TokenType = "GTE"

	AND    TokenType = "AND"
	OR     TokenType = "OR"
	BREAK  TokenType = "BREAK"
	ELSE   TokenType = "ELSE"
	FALSE  TokenType = "FALSE"
	FOR    TokenType = "FOR"
	FUNC   TokenType = "FUNC"
	IF     TokenType = "IF"
	NIL    TokenType = "NIL"
	PRINT  TokenType = "PRINT"
	RETURN TokenType = "RETURN"
	TRUE   TokenType = "TRUE"
	VAR    TokenType = "VAR"
	WHILE  TokenType = "WHILE"
)

// Token is immutable once scanned. Literal holds a float64 for NUMBER and
// the unquoted text for STRING; it is nil for every other type.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
	Col     int
}

func (t Token) String() string {
	switch t.Type {
	case STRING:
		return fmt.Sprintf("%s(%q) @ %d:%d", t.Type, t.Literal, t.Line, t.Col)
	case IDENT, NUMBER:
		return fmt.Sprintf("%s(%s) @ %d:%d", t.Type, t.Lexeme, t.Line, t.Col)
	default:
		return fmt.Sprintf("%s @ %d:%d", t.Type, t.Line, t.Col)
	}
}

var keywords = map[string]TokenType{
	"and":    AND,
	"break":  BREAK,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"func":   FUNC,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}
