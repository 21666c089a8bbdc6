package ast

import "golox/lexer"

type Span struct {
	Line int
	Col  int
}

func SpanOf(tok lexer.Token) Span { return Span{Line: tok.Line, Col: tok.Col} }

type Node interface {
	NodeKind() string
	GetSpan() Span
	String() string
}
