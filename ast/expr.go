package ast

import (
	"fmt"
	"strconv"
	"strings"

	"golox/lexer"
)

// Expr is closed over the node types in this file.
type Expr interface {
	Node
	exprNode()
}

// Literal.Value is nil, bool, float64 or string.
type Literal struct {
	S     Span
	Value any
}

func (l *Literal) NodeKind() string { return "Literal" }
func (l *Literal) exprNode()        {}
func (l *Literal) GetSpan() Span    { return l.S }
func (l *Literal) String() string   { return FormatLiteral(l.Value) }

// FormatLiteral renders a literal value the way it appears in source.
func FormatLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

type Grouping struct {
	S     Span
	Inner Expr
}

func (g *Grouping) NodeKind() string { return "Grouping" }
func (g *Grouping) exprNode()        {}
func (g *Grouping) GetSpan() Span    { return g.S }
func (g *Grouping) String() string   { return fmt.Sprintf("Group(%s)", g.Inner.String()) }

type Unary struct {
	Op    lexer.Token
	Right Expr
}

func (u *Unary) NodeKind() string { return "Unary" }
func (u *Unary) exprNode()        {}
func (u *Unary) GetSpan() Span    { return SpanOf(u.Op) }
func (u *Unary) String() string {
	return fmt.Sprintf("Unary(%s %s)", u.Op.Lexeme, u.Right.String())
}

type Binary struct {
	Left  Expr
	Op    lexer.Token
	Right Expr
}

func (b *Binary) NodeKind() string { return "Binary" }
func (b *Binary) exprNode()        {}
func (b *Binary) GetSpan() Span    { return SpanOf(b.Op) }
func (b *Binary) String() string {
	return fmt.Sprintf("Binary(%s %s %s)", b.Left.String(), b.Op.Lexeme, b.Right.String())
}

// Logical is and/or; kept apart from Binary because it short-circuits.
type Logical struct {
	Left  Expr
	Op    lexer.Token
	Right Expr
}

func (l *Logical) NodeKind() string { return "Logical" }
func (l *Logical) exprNode()        {}
func (l *Logical) GetSpan() Span    { return SpanOf(l.Op) }
func (l *Logical) String() string {
	return fmt.Sprintf("Logical(%s %s %s)", l.Left.String(), l.Op.Lexeme, l.Right.String())
}

type Variable struct {
	Name lexer.Token
}

func (v *Variable) NodeKind() string { return "Variable" }
func (v *Variable) exprNode()        {}
func (v *Variable) GetSpan() Span    { return SpanOf(v.Name) }
func (v *Variable) String() string   { return fmt.Sprintf("Var(%s)", v.Name.Lexeme) }

type Assign struct {
	Name  lexer.Token
	Value Expr
}

func (a *Assign) NodeKind() string { return "Assign" }
func (a *Assign) exprNode()        {}
func (a *Assign) GetSpan() Span    { return SpanOf(a.Name) }
func (a *Assign) String() string {
	return fmt.Sprintf("Assign(%s = %s)", a.Name.Lexeme, a.Value.String())
}

// Call keeps the closing paren token for runtime diagnostics.
type Call struct {
	Callee Expr
	Paren  lexer.Token
	Args   []Expr
}

func (c *Call) NodeKind() string { return "Call" }
func (c *Call) exprNode()        {}
func (c *Call) GetSpan() Span    { return SpanOf(c.Paren) }
func (c *Call) String() string {
	parts := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("Call(%s, [%s])", c.Callee.String(), strings.Join(parts, ", "))
}
