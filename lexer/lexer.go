package lexer

import (
	"errors"
	"fmt"
	"strconv"
)

// Error is a scan failure. Scanning stops at the first one.
type Error struct {
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Msg)
}

// IsUnterminated reports whether err is a string literal running into the
// end of input. The REPL keeps reading lines when it sees one.
func IsUnterminated(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Msg == msgUnterminated
}

const msgUnterminated = "Unterminated string."

type Lexer struct {
	input []rune
	pos   int
	line  int
	col   int

	// start of the token being scanned
	start     int
	startLine int
	startCol  int

	tokens []Token
}

func New(input string) *Lexer {
	return &Lexer{
		input: []rune(input),
		line:  1,
		col:   1,
	}
}

// Scan is shorthand for New(src).Scan().
func Scan(src string) ([]Token, error) {
	return New(src).Scan()
}

// Scan consumes the whole input. The returned slice always ends with an
// EOF token when err is nil.
func (l *Lexer) Scan() ([]Token, error) {
	for {
		l.skipTrivia()
		if l.atEnd() {
			break
		}
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Type: EOF, Line: l.line, Col: l.col})
	return l.tokens, nil
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.input) }

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.atEnd() {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.atEnd() || l.input[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

// skipTrivia drops whitespace and // comments.
func (l *Lexer) skipTrivia() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanToken() error {
	l.start = l.pos
	l.startLine = l.line
	l.startCol = l.col

	ch := l.advance()

	switch ch {
	case '(':
		l.add(LPAREN, nil)
	case ')':
		l.add(RPAREN, nil)
	case '{':
		l.add(LBRACE, nil)
	case '}':
		l.add(RBRACE, nil)
	case ',':
		l.add(COMMA, nil)
	case '.':
		l.add(DOT, nil)
	case '-':
		l.add(MINUS, nil)
	case '+':
		l.add(PLUS, nil)
	case ';':
		l.add(SEMICOLON, nil)
	case '*':
		l.add(STAR, nil)
	case '/':
		l.add(SLASH, nil)

	// two-char operators fall back to the single-char token
	case '!':
		l.addEither('=', NEQ, BANG)
	case '=':
		l.addEither('=', EQ, ASSIGN)
	case '<':
		l.addEither('=', LTE, LT)
	case '>':
		l.addEither('=', GTE, GT)

	case '"':
		return l.scanString()

	default:
		switch {
		case isDigit(ch):
			return l.scanNumber()
		case isAlpha(ch) || ch == '_':
			l.scanIdent()
		default:
			return &Error{Line: l.startLine, Col: l.startCol, Msg: fmt.Sprintf("Unexpected character %q.", ch)}
		}
	}
	return nil
}

func (l *Lexer) addEither(next rune, two, one TokenType) {
	if l.match(next) {
		l.add(two, nil)
		return
	}
	l.add(one, nil)
}

func (l *Lexer) add(tt TokenType, literal any) {
	l.tokens = append(l.tokens, Token{
		Type:    tt,
		Lexeme:  string(l.input[l.start:l.pos]),
		Literal: literal,
		Line:    l.startLine,
		Col:     l.startCol,
	})
}

// Strings are taken verbatim: no escapes, newlines allowed.
func (l *Lexer) scanString() error {
	for !l.atEnd() && l.peek() != '"' {
		l.advance()
	}
	if l.atEnd() {
		return &Error{Line: l.line, Col: l.col, Msg: msgUnterminated}
	}
	l.advance() // closing quote

	text := string(l.input[l.start+1 : l.pos-1])
	l.add(STRING, text)
	return nil
}

func (l *Lexer) scanNumber() error {
	for isDigit(l.peek()) {
		l.advance()
	}
	// a '.' only belongs to the number when a digit follows it
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	lex := string(l.input[l.start:l.pos])
	n, err := strconv.ParseFloat(lex, 64)
	if err != nil {
		return &Error{Line: l.startLine, Col: l.startCol, Msg: fmt.Sprintf("Invalid number %q.", lex)}
	}
	l.add(NUMBER, n)
	return nil
}

func (l *Lexer) scanIdent() {
	for isAlphaNum(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	l.add(LookupIdent(string(l.input[l.start:l.pos])), nil)
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlphaNum(r rune) bool {
	return isAlpha(r) || isDigit(r)
}
