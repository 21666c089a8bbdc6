// interpreter/interpreter.go
package interpreter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golox/ast"
	"golox/lexer"
)

// Interpreter is meant to live for a whole session: the REPL feeds every
// line to the same instance so definitions persist.
type Interpreter struct {
	globals *Environment
	env     *Environment

	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	filename string
	lines    []string

	callStack []string
}

func NewWithSource(filename string, source string) *Interpreter {
	globals := NewEnvironment(nil)
	return &Interpreter{
		globals:   globals,
		env:       globals,
		out:       os.Stdout,
		errOut:    os.Stderr,
		now:       time.Now,
		filename:  filename,
		lines:     splitLinesPreserve(source),
		callStack: []string{},
	}
}

func New() *Interpreter { return NewWithSource("", "") }

func splitLinesPreserve(src string) []string {
	if src == "" {
		return []string{}
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	return strings.Split(src, "\n")
}

func (i *Interpreter) Globals() *Environment { return i.globals }

// Run executes top-level statements in order and stops at the first error.
// State built up before the error is kept.
func (i *Interpreter) Run(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := i.execStmt(s); err != nil {
			return i.escaped(s, err)
		}
	}
	return nil
}

// Interpret is Run plus reporting the error on the error writer.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	err := i.Run(stmts)
	if err != nil {
		fmt.Fprintln(i.errOut, err)
	}
	return err
}

// Evaluate evaluates a single expression in the current scope.
func (i *Interpreter) Evaluate(e ast.Expr) (Value, error) {
	return i.evalExpr(e)
}

// escaped turns a break or return that reached top level into an error.
// The parser rejects both, so this only fires for hand-built trees.
func (i *Interpreter) escaped(s ast.Stmt, err error) error {
	switch err.(type) {
	case BreakSignal:
		return i.controlFlowErr(s, "Can't use 'break' outside of a loop.")
	case ReturnSignal:
		return i.controlFlowErr(s, "Can't return from top-level code.")
	}
	return err
}

func (i *Interpreter) controlFlowErr(s ast.Stmt, msg string) error {
	span := s.GetSpan()
	tok := lexer.Token{Line: span.Line, Col: span.Col}
	return i.runtimeErr(tok, ErrControlFlow, msg)
}

func (i *Interpreter) runtimeErr(tok lexer.Token, kind ErrorKind, msg string) error {
	return i.annotate(&RuntimeError{Kind: kind, Token: tok, Msg: msg})
}

// annotate attaches the source line and call stack. Errors raised outside
// the interpreter (environment lookups) pass through here on their way up.
func (i *Interpreter) annotate(err error) error {
	re, ok := err.(*RuntimeError)
	if !ok || re.annotated {
		return err
	}
	re.annotated = true
	re.File = i.filename
	if re.Token.Line > 0 && re.Token.Line-1 < len(i.lines) {
		re.Line = i.lines[re.Token.Line-1]
	}
	re.Stack = make([]string, 0, len(i.callStack))
	for idx := len(i.callStack) - 1; idx >= 0; idx-- {
		re.Stack = append(re.Stack, i.callStack[idx])
	}
	return re
}

// executeBlock runs stmts in env and always restores the previous scope.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) error {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()

	for _, s := range stmts {
		if err := i.execStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execStmt(s ast.Stmt) error {
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(stmt.Expr)
		return err

	case *ast.PrintStmt:
		val, err := i.evalExpr(stmt.Value)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(i.out, val.ToString()); err != nil {
			return &SystemError{Msg: "print failed", Err: err}
		}
		return nil

	case *ast.VarStmt:
		val := NilValue()
		if stmt.Initializer != nil {
			v, err := i.evalExpr(stmt.Initializer)
			if err != nil {
				return err
			}
			val = v
		}
		i.env.Define(stmt.Name.Lexeme, val)
		return nil

	case *ast.BlockStmt:
		return i.executeBlock(stmt.Stmts, NewEnvironment(i.env))

	case *ast.IfStmt:
		cond, err := i.evalExpr(stmt.Condition)
		if err != nil {
			return err
		}
		if cond.Truthy() {
			return i.execStmt(stmt.Then)
		}
		if stmt.Else != nil {
			return i.execStmt(stmt.Else)
		}
		return nil

	case *ast.WhileStmt:
		for {
			cond, err := i.evalExpr(stmt.Condition)
			if err != nil {
				return err
			}
			if !cond.Truthy() {
				break
			}
			err = i.execStmt(stmt.Body)
			if err != nil {
				switch err.(type) {
				case BreakSignal:
					return nil
				default:
					return err
				}
			}
		}
		return nil

	case *ast.BreakStmt:
		return BreakSignal{}

	case *ast.FunctionDecl:
		// the closure is the scope active now, at declaration time
		fn := NewFunction(stmt, i.env)
		i.env.Define(stmt.Name.Lexeme, FunctionValue(fn))
		return nil

	case *ast.ReturnStmt:
		val := NilValue()
		if stmt.Value != nil {
			v, err := i.evalExpr(stmt.Value)
			if err != nil {
				return err
			}
			val = v
		}
		return ReturnSignal{Val: val}

	default:
		span := s.GetSpan()
		tok := lexer.Token{Line: span.Line, Col: span.Col}
		return i.runtimeErr(tok, ErrTypeMismatch, fmt.Sprintf("Unsupported statement %s", s.NodeKind()))
	}
}

// ---------- Expressions ----------

func (i *Interpreter) evalExpr(e ast.Expr) (Value, error) {
	switch expr := e.(type) {
	case *ast.Literal:
		return literalValue(expr.Value), nil

	case *ast.Grouping:
		return i.evalExpr(expr.Inner)

	case *ast.Variable:
		v, err := i.env.Get(expr.Name)
		if err != nil {
			return Value{}, i.annotate(err)
		}
		return v, nil

	case *ast.Assign:
		val, err := i.evalExpr(expr.Value)
		if err != nil {
			return Value{}, err
		}
		if err := i.env.Assign(expr.Name, val); err != nil {
			return Value{}, i.annotate(err)
		}
		return val, nil

	case *ast.Unary:
		right, err := i.evalExpr(expr.Right)
		if err != nil {
			return Value{}, err
		}
		switch expr.Op.Type {
		case lexer.MINUS:
			if right.Kind != ValNumber {
				return Value{}, i.runtimeErr(expr.Op, ErrTypeMismatch, "Operand must be a number.")
			}
			return NumberValue(-right.Number), nil
		case lexer.BANG:
			return BoolValue(!right.Truthy()), nil
		default:
			return Value{}, i.runtimeErr(expr.Op, ErrTypeMismatch, fmt.Sprintf("Unknown unary operator %q.", expr.Op.Lexeme))
		}

	case *ast.Logical:
		left, err := i.evalExpr(expr.Left)
		if err != nil {
			return Value{}, err
		}
		if expr.Op.Type == lexer.OR {
			if left.Truthy() {
				return left, nil
			}
		} else if !left.Truthy() {
			return left, nil
		}
		return i.evalExpr(expr.Right)

	case *ast.Binary:
		return i.evalBinary(expr)

	case *ast.Call:
		return i.evalCall(expr)

	default:
		span := e.GetSpan()
		tok := lexer.Token{Line: span.Line, Col: span.Col}
		return Value{}, i.runtimeErr(tok, ErrTypeMismatch, "Unsupported expression")
	}
}

func (i *Interpreter) evalBinary(expr *ast.Binary) (Value, error) {
	left, err := i.evalExpr(expr.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := i.evalExpr(expr.Right)
	if err != nil {
		return Value{}, err
	}

	op := expr.Op
	if left.Kind == ValNil && right.Kind == ValNil {
		switch op.Type {
		case lexer.EQ:
			return BoolValue(true), nil
		case lexer.NEQ:
			return BoolValue(false), nil
		}
	}

	if left.Kind != ValNumber || right.Kind != ValNumber {
		return Value{}, i.runtimeErr(op, ErrTypeMismatch, "Operands must be numbers.")
	}
	a, b := left.Number, right.Number

	switch op.Type {
	case lexer.PLUS:
		return NumberValue(a + b), nil
	case lexer.MINUS:
		return NumberValue(a - b), nil
	case lexer.STAR:
		return NumberValue(a * b), nil
	case lexer.SLASH:
		return NumberValue(a / b), nil
	case lexer.GT:
		return BoolValue(a > b), nil
	case lexer.GTE:
		return BoolValue(a >= b), nil
	case lexer.LT:
		return BoolValue(a < b), nil
	case lexer.LTE:
		return BoolValue(a <= b), nil
	case lexer.EQ:
		return BoolValue(a == b), nil
	case lexer.NEQ:
		return BoolValue(a != b), nil
	}

	return Value{}, i.runtimeErr(op, ErrTypeMismatch, fmt.Sprintf("Unknown operator %q.", op.Lexeme))
}

func (i *Interpreter) evalCall(call *ast.Call) (Value, error) {
	callee, err := i.evalExpr(call.Callee)
	if err != nil {
		return Value{}, err
	}
	if callee.Kind != ValFunction || callee.Fn == nil {
		return Value{}, i.runtimeErr(call.Paren, ErrNotCallable, "Can only call functions.")
	}
	fn := callee.Fn

	args := make([]Value, 0, len(call.Args))
	for _, a := range call.Args {
		v, err := i.evalExpr(a)
		if err != nil {
			return Value{}, err
		}
		args = append(args, v)
	}

	if len(args) != fn.Arity() {
		return Value{}, i.runtimeErr(call.Paren, ErrArityMismatch,
			fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)))
	}

	return fn.Call(i, args)
}
