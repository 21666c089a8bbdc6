package interpreter

import (
	"fmt"

	"golox/ast"
)

type Callable interface {
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
	String() string
}

// Function is a user-defined function. Closure is the scope active where
// the declaration ran, not where the function is called.
type Function struct {
	Decl    *ast.FunctionDecl
	Closure *Environment
}

func NewFunction(decl *ast.FunctionDecl, closure *Environment) *Function {
	return &Function{Decl: decl, Closure: closure}
}

func (f *Function) Name() string { return f.Decl.Name.Lexeme }

func (f *Function) Arity() int { return len(f.Decl.Params) }

func (f *Function) String() string { return fmt.Sprintf("<fn %s>", f.Name()) }

// Call expects len(args) == Arity(); the interpreter checks before calling.
func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.Closure)
	for idx, param := range f.Decl.Params {
		env.Define(param.Lexeme, args[idx])
	}

	in.callStack = append(in.callStack, f.Name())
	defer func() {
		in.callStack = in.callStack[:len(in.callStack)-1]
	}()

	err := in.executeBlock(f.Decl.Body, env)
	if rs, ok := err.(ReturnSignal); ok {
		return rs.Val, nil
	}
	if err != nil {
		return Value{}, err
	}
	return NilValue(), nil
}

type NativeFn func(in *Interpreter, args []Value) (Value, error)

type NativeFunction struct {
	Name   string
	ArityN int
	Fn     NativeFn
}

func (n *NativeFunction) Arity() int { return n.ArityN }

func (n *NativeFunction) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }

func (n *NativeFunction) Call(in *Interpreter, args []Value) (Value, error) {
	return n.Fn(in, args)
}
