package parser

import (
	"errors"
	"fmt"
	"strings"

	"golox/ast"
	"golox/lexer"
)

const maxArgs = 255

// Error is a syntax error tied to the token where it was detected.
type Error struct {
	Token lexer.Token
	Msg   string
}

func (e *Error) Error() string {
	if e.Token.Type == lexer.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Msg)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Msg)
}

// ErrorList collects every error reported while parsing one program.
type ErrorList []*Error

func (l ErrorList) Error() string {
	msgs := make([]string, 0, len(l))
	for _, e := range l {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

func (l ErrorList) Unwrap() []error {
	out := make([]error, 0, len(l))
	for _, e := range l {
		out = append(out, e)
	}
	return out
}

type Parser struct {
	tokens []lexer.Token
	pos    int
	cur    lexer.Token

	errs ErrorList

	loopDepth int
	funcDepth int
}

// New expects tokens as produced by lexer.Scan, terminated by EOF.
func New(tokens []lexer.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, lexer.Token{Type: lexer.EOF, Line: line})
	}
	p := &Parser{tokens: tokens}
	p.cur = tokens[0]
	return p
}

// Parse is shorthand for New(tokens).ParseProgram().
func Parse(tokens []lexer.Token) ([]ast.Stmt, error) {
	return New(tokens).ParseProgram()
}

// ParseExpression parses tokens holding exactly one expression.
func ParseExpression(tokens []lexer.Token) (ast.Expr, error) {
	p := New(tokens)
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.EOF {
		return nil, p.errAt(p.cur, "Expect end of expression.")
	}
	if len(p.errs) > 0 {
		return expr, p.errs
	}
	return expr, nil
}

func (p *Parser) next() lexer.Token {
	prev := p.cur
	if p.pos < len(p.tokens)-1 {
		p.pos++
		p.cur = p.tokens[p.pos]
	}
	return prev
}

func (p *Parser) check(tt lexer.TokenType) bool { return p.cur.Type == tt }

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.next()
			return true
		}
	}
	return false
}

func (p *Parser) expect(tt lexer.TokenType, msg string) (lexer.Token, error) {
	if p.check(tt) {
		return p.next(), nil
	}
	return lexer.Token{}, p.errAt(p.cur, msg)
}

func (p *Parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.cur
	}
	return p.tokens[p.pos-1]
}

// ParseProgram keeps going after a bad declaration and returns every
// statement it could recover together with an ErrorList.
func (p *Parser) ParseProgram() ([]ast.Stmt, error) {
	stmts := []ast.Stmt{}
	for !p.check(lexer.EOF) {
		stmt, err := p.parseDeclaration()
		if err != nil {
			p.synchronize()
			continue
		}
		stmts = append(stmts, stmt)
	}
	if len(p.errs) > 0 {
		return stmts, p.errs
	}
	return stmts, nil
}

// synchronize discards tokens up to the next statement boundary.
func (p *Parser) synchronize() {
	p.next()
	for !p.check(lexer.EOF) {
		if p.previous().Type == lexer.SEMICOLON {
			return
		}
		switch p.cur.Type {
		case lexer.FUNC, lexer.VAR, lexer.FOR, lexer.IF, lexer.WHILE,
			lexer.PRINT, lexer.RETURN, lexer.BREAK:
			return
		}
		p.next()
	}
}

func (p *Parser) parseDeclaration() (ast.Stmt, error) {
	switch p.cur.Type {
	case lexer.VAR:
		p.next()
		return p.parseVarDecl()
	case lexer.FUNC:
		p.next()
		return p.parseFunctionDecl()
	default:
		return p.parseStmt()
	}
}

// varDecl = "var" IDENT ( "=" expr )? ";"
func (p *Parser) parseVarDecl() (ast.Stmt, error) {
	name, err := p.expect(lexer.IDENT, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.match(lexer.ASSIGN) {
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.VarStmt{Name: name, Initializer: init}, nil
}

// funcDecl = "func" IDENT "(" params? ")" block
func (p *Parser) parseFunctionDecl() (ast.Stmt, error) {
	name, err := p.expect(lexer.IDENT, "Expect function name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN, "Expect '(' after function name."); err != nil {
		return nil, err
	}

	params := []lexer.Token{}
	if !p.check(lexer.RPAREN) {
		for {
			if len(params) >= maxArgs {
				p.report(p.cur, fmt.Sprintf("Can't have more than %d parameters.", maxArgs))
			}
			param, err := p.expect(lexer.IDENT, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.RPAREN, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, "Expect '{' before function body."); err != nil {
		return nil, err
	}

	// a break inside the body can't reach a loop outside the function
	outerLoops := p.loopDepth
	p.loopDepth = 0
	p.funcDepth++
	body, err := p.parseBlockBody()
	p.funcDepth--
	p.loopDepth = outerLoops
	if err != nil {
		return nil, err
	}

	return &ast.FunctionDecl{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur.Type {
	case lexer.PRINT:
		return p.parsePrint()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.BREAK:
		return p.parseBreak()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.LBRACE:
		lbTok := p.next()
		body, err := p.parseBlockBody()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{S: ast.SpanOf(lbTok), Stmts: body}, nil
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parsePrint() (ast.Stmt, error) {
	printTok := p.next()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{S: ast.SpanOf(printTok), Value: expr}, nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	startTok := p.cur
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{S: ast.SpanOf(startTok), Expr: expr}, nil
}

func (p *Parser) parseBreak() (ast.Stmt, error) {
	kw := p.next()
	if p.loopDepth == 0 {
		p.report(kw, "Can't use 'break' outside of a loop.")
	}
	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after 'break'."); err != nil {
		return nil, err
	}
	return &ast.BreakStmt{Keyword: kw}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	kw := p.next()
	if p.funcDepth == 0 {
		p.report(kw, "Can't return from top-level code.")
	}
	var value ast.Expr
	if !p.check(lexer.SEMICOLON) {
		var err error
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Keyword: kw, Value: value}, nil
}

// parseBlockBody expects the '{' to be consumed already and eats the '}'.
func (p *Parser) parseBlockBody() ([]ast.Stmt, error) {
	block := []ast.Stmt{}
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		stmt, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		block = append(block, stmt)
	}
	if _, err := p.expect(lexer.RBRACE, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return block, nil
}

// ifStmt = "if" "(" expr ")" stmt ( "else" stmt )?
func (p *Parser) parseIf() (ast.Stmt, error) {
	ifTok := p.next()
	if _, err := p.expect(lexer.LPAREN, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "Expect ')' after if condition."); err != nil {
		return nil, err
	}

	thenBranch, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Stmt
	if p.match(lexer.ELSE) {
		elseBranch, err = p.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{S: ast.SpanOf(ifTok), Condition: cond, Then: thenBranch, Else: elseBranch}, nil
}

// whileStmt = "while" "(" expr ")" stmt
func (p *Parser) parseWhile() (ast.Stmt, error) {
	wTok := p.next()
	if _, err := p.expect(lexer.LPAREN, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "Expect ')' after condition."); err != nil {
		return nil, err
	}

	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{S: ast.SpanOf(wTok), Condition: cond, Body: body}, nil
}

func (p *Parser) parseLoopBody() (ast.Stmt, error) {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.parseStmt()
}

// forStmt = "for" "(" ( varDecl | exprStmt | ";" ) expr? ";" expr? ")" stmt
//
// Desugared here into
//
//	{ init; while (cond) { body; incr; } }
func (p *Parser) parseFor() (ast.Stmt, error) {
	forTok := p.next()
	span := ast.SpanOf(forTok)
	if _, err := p.expect(lexer.LPAREN, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var init ast.Stmt
	var err error
	switch {
	case p.match(lexer.SEMICOLON):
	case p.match(lexer.VAR):
		init, err = p.parseVarDecl()
	default:
		init, err = p.parseExprStmt()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.check(lexer.SEMICOLON) {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var incr ast.Expr
	if !p.check(lexer.RPAREN) {
		incr, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RPAREN, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}

	if incr != nil {
		body = &ast.BlockStmt{S: span, Stmts: []ast.Stmt{
			body,
			&ast.ExprStmt{S: incr.GetSpan(), Expr: incr},
		}}
	}
	if cond == nil {
		cond = &ast.Literal{S: span, Value: true}
	}
	var loop ast.Stmt = &ast.WhileStmt{S: span, Condition: cond, Body: body}
	if init != nil {
		loop = &ast.BlockStmt{S: span, Stmts: []ast.Stmt{init, loop}}
	}
	return loop, nil
}

// expr = assignment
func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseAssignment() }

// assignment = IDENT "=" assignment | or
func (p *Parser) parseAssignment() (ast.Expr, error) {
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.check(lexer.ASSIGN) {
		eqTok := p.next()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}, nil
		}
		// reported, but the parser is not confused so no resync
		p.report(eqTok, "Invalid assignment target.")
	}
	return expr, nil
}

// or = and ( "or" and )*
func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.OR) {
		opTok := p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Left: left, Op: opTok, Right: right}
	}
	return left, nil
}

// and = equality ( "and" equality )*
func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.AND) {
		opTok := p.next()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Left: left, Op: opTok, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseComparison, lexer.EQ, lexer.NEQ)
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseTerm, lexer.GT, lexer.GTE, lexer.LT, lexer.LTE)
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseFactor, lexer.PLUS, lexer.MINUS)
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, lexer.STAR, lexer.SLASH)
}

// parseBinaryLevel folds one left-associative precedence level.
func (p *Parser) parseBinaryLevel(operand func() (ast.Expr, error), ops ...lexer.TokenType) (ast.Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.isOneOf(p.cur.Type, ops...) {
		opTok := p.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: opTok, Right: right}
	}
	return left, nil
}

func (p *Parser) isOneOf(t lexer.TokenType, list ...lexer.TokenType) bool {
	for _, x := range list {
		if t == x {
			return true
		}
	}
	return false
}

// unary = ("!" | "-") unary | call
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.check(lexer.BANG) || p.check(lexer.MINUS) {
		opTok := p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: opTok, Right: right}, nil
	}
	return p.parseCall()
}

// call = primary ( "(" arguments? ")" )*
func (p *Parser) parseCall() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.LPAREN) {
		expr, err = p.finishCall(expr)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	args := []ast.Expr{}
	if !p.check(lexer.RPAREN) {
		for {
			if len(args) >= maxArgs {
				p.report(p.cur, fmt.Sprintf("Can't have more than %d arguments.", maxArgs))
			}
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	paren, err := p.expect(lexer.RPAREN, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &ast.Call{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur
	switch tok.Type {
	case lexer.NUMBER, lexer.STRING:
		p.next()
		return &ast.Literal{S: ast.SpanOf(tok), Value: tok.Literal}, nil

	case lexer.TRUE:
		p.next()
		return &ast.Literal{S: ast.SpanOf(tok), Value: true}, nil

	case lexer.FALSE:
		p.next()
		return &ast.Literal{S: ast.SpanOf(tok), Value: false}, nil

	case lexer.NIL:
		p.next()
		return &ast.Literal{S: ast.SpanOf(tok), Value: nil}, nil

	case lexer.IDENT:
		p.next()
		return &ast.Variable{Name: tok}, nil

	case lexer.LPAREN:
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{S: ast.SpanOf(tok), Inner: expr}, nil

	default:
		return nil, p.errAt(tok, "Expect expression.")
	}
}

// report records an error without unwinding.
func (p *Parser) report(tok lexer.Token, msg string) *Error {
	e := &Error{Token: tok, Msg: msg}
	p.errs = append(p.errs, e)
	return e
}

// errAt records an error and returns it so the caller unwinds to the
// declaration loop, which resynchronizes.
func (p *Parser) errAt(tok lexer.Token, msg string) error {
	return p.report(tok, msg)
}

// Errors returns every error reported so far.
func (p *Parser) Errors() ErrorList { return p.errs }

// IsIncomplete reports whether err only says the input ended early, which
// is how the REPL decides to keep reading lines.
func IsIncomplete(err error) bool {
	var list ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return false
	}
	for _, e := range list {
		if e.Token.Type != lexer.EOF {
			return false
		}
	}
	return true
}
