package interpreter

import (
	"fmt"
	"strings"

	"golox/lexer"
)

type ErrorKind int

const (
	ErrTypeMismatch ErrorKind = iota
	ErrUndefinedVariable
	ErrArityMismatch
	ErrNotCallable
	// a break or return reached a point where nothing consumes it
	ErrControlFlow
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTypeMismatch:
		return "type mismatch"
	case ErrUndefinedVariable:
		return "undefined variable"
	case ErrArityMismatch:
		return "arity mismatch"
	case ErrNotCallable:
		return "not callable"
	case ErrControlFlow:
		return "control flow"
	default:
		return "unknown"
	}
}

// ReturnSignal and BreakSignal travel through the error channel but are not
// failures: the call boundary and the nearest loop consume them.
type ReturnSignal struct{ Val Value }

func (r ReturnSignal) Error() string { return "return" }

type BreakSignal struct{}

func (b BreakSignal) Error() string { return "break" }

type RuntimeError struct {
	Kind  ErrorKind
	Token lexer.Token
	Msg   string

	File  string
	Line  string
	Stack []string

	annotated bool
}

func (e *RuntimeError) Error() string {
	loc := fmt.Sprintf("line %d", e.Token.Line)
	if e.File != "" && e.Token.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", e.File, e.Token.Line, e.Token.Col)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Runtime error at %s\n", loc))
	b.WriteString(fmt.Sprintf("  %s\n", e.Msg))

	if e.Line != "" && e.Token.Line > 0 {
		prefix := fmt.Sprintf("  %d | ", e.Token.Line)
		b.WriteString(prefix + e.Line + "\n")

		caretSpaces := len(prefix) + (e.Token.Col - 1)
		if caretSpaces < 0 {
			caretSpaces = 0
		}
		b.WriteString(strings.Repeat(" ", caretSpaces))
		b.WriteString("^\n")
	}

	if len(e.Stack) > 0 {
		b.WriteString("Stack:\n")
		for _, fn := range e.Stack {
			b.WriteString(fmt.Sprintf("  at %s()\n", fn))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// SystemError is a host failure surfaced to the script, e.g. a broken clock.
type SystemError struct {
	Msg string
	Err error
}

func (e *SystemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("System error: %s: %v", e.Msg, e.Err)
	}
	return "System error: " + e.Msg
}

func (e *SystemError) Unwrap() error { return e.Err }

func undefinedVariable(name lexer.Token) *RuntimeError {
	return &RuntimeError{
		Kind:  ErrUndefinedVariable,
		Token: name,
		Msg:   fmt.Sprintf("Undefined variable '%s'.", name.Lexeme),
	}
}
