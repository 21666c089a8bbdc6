package ast

import (
	"fmt"
	"strings"

	"golox/lexer"
)

// Stmt is closed over the node types in this file.
type Stmt interface {
	Node
	stmtNode()
}

// --- Expression statements ---
// e.g. add(1, 2);
type ExprStmt struct {
	S    Span
	Expr Expr
}

func (e *ExprStmt) NodeKind() string { return "ExprStmt" }
func (e *ExprStmt) stmtNode()        {}
func (e *ExprStmt) GetSpan() Span    { return e.S }
func (e *ExprStmt) String() string   { return fmt.Sprintf("ExprStmt(%s)", e.Expr.String()) }

type PrintStmt struct {
	S     Span
	Value Expr
}

func (p *PrintStmt) NodeKind() string { return "PrintStmt" }
func (p *PrintStmt) stmtNode()        {}
func (p *PrintStmt) GetSpan() Span    { return p.S }
func (p *PrintStmt) String() string   { return fmt.Sprintf("Print(%s)", p.Value.String()) }

type VarStmt struct {
	Name        lexer.Token
	Initializer Expr // optional (nil means nil value)
}

func (v *VarStmt) NodeKind() string { return "VarStmt" }
func (v *VarStmt) stmtNode()        {}
func (v *VarStmt) GetSpan() Span    { return SpanOf(v.Name) }
func (v *VarStmt) String() string {
	if v.Initializer == nil {
		return fmt.Sprintf("VarDecl(%s)", v.Name.Lexeme)
	}
	return fmt.Sprintf("VarDecl(%s = %s)", v.Name.Lexeme, v.Initializer.String())
}

type BlockStmt struct {
	S     Span
	Stmts []Stmt
}

func (b *BlockStmt) NodeKind() string { return "BlockStmt" }
func (b *BlockStmt) stmtNode()        {}
func (b *BlockStmt) GetSpan() Span    { return b.S }
func (b *BlockStmt) String() string   { return fmt.Sprintf("Block(%s)", joinStmts(b.Stmts)) }

type IfStmt struct {
	S         Span
	Condition Expr
	Then      Stmt
	Else      Stmt // optional
}

func (i *IfStmt) NodeKind() string { return "IfStmt" }
func (i *IfStmt) stmtNode()        {}
func (i *IfStmt) GetSpan() Span    { return i.S }
func (i *IfStmt) String() string {
	if i.Else == nil {
		return fmt.Sprintf("If(%s then %s)", i.Condition.String(), i.Then.String())
	}
	return fmt.Sprintf("If(%s then %s else %s)", i.Condition.String(), i.Then.String(), i.Else.String())
}

// WhileStmt is also the runtime form of every for loop.
type WhileStmt struct {
	S         Span
	Condition Expr
	Body      Stmt
}

func (w *WhileStmt) NodeKind() string { return "WhileStmt" }
func (w *WhileStmt) stmtNode()        {}
func (w *WhileStmt) GetSpan() Span    { return w.S }
func (w *WhileStmt) String() string {
	return fmt.Sprintf("While(%s do %s)", w.Condition.String(), w.Body.String())
}

type BreakStmt struct {
	Keyword lexer.Token
}

func (b *BreakStmt) NodeKind() string { return "BreakStmt" }
func (b *BreakStmt) stmtNode()        {}
func (b *BreakStmt) GetSpan() Span    { return SpanOf(b.Keyword) }
func (b *BreakStmt) String() string   { return "Break" }

// FunctionDecl is shared by pointer between the tree and every function
// value created from it.
type FunctionDecl struct {
	Name   lexer.Token
	Params []lexer.Token
	Body   []Stmt
}

func (f *FunctionDecl) NodeKind() string { return "FunctionDecl" }
func (f *FunctionDecl) stmtNode()        {}
func (f *FunctionDecl) GetSpan() Span    { return SpanOf(f.Name) }
func (f *FunctionDecl) String() string {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, p.Lexeme)
	}
	return fmt.Sprintf("Func(%s(%s) %s)", f.Name.Lexeme, strings.Join(params, ", "), joinStmts(f.Body))
}

type ReturnStmt struct {
	Keyword lexer.Token
	Value   Expr // optional
}

func (r *ReturnStmt) NodeKind() string { return "ReturnStmt" }
func (r *ReturnStmt) stmtNode()        {}
func (r *ReturnStmt) GetSpan() Span    { return SpanOf(r.Keyword) }
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "Return"
	}
	return fmt.Sprintf("Return(%s)", r.Value.String())
}

func joinStmts(stmts []Stmt) string {
	parts := make([]string, 0, len(stmts))
	for _, s := range stmts {
		parts = append(parts, s.String())
	}
	return "[" + strings.Join(parts, "; ") + "]"
}

// Dump renders a program one top-level statement per line.
func Dump(stmts []Stmt) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(s.String())
		b.WriteString("\n")
	}
	return b.String()
}
