package interpreter

import (
	"sort"

	"golox/lexer"
)

// Environment is one scope in the chain. Closures hold a pointer to the
// scope they were declared in, which keeps it alive after its block exits.
type Environment struct {
	values    map[string]Value
	enclosing *Environment
}

func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{
		values:    map[string]Value{},
		enclosing: enclosing,
	}
}

func (e *Environment) Enclosing() *Environment { return e.enclosing }

// Define always binds in this scope, shadowing or overwriting.
func (e *Environment) Define(name string, v Value) {
	e.values[name] = v
}

func (e *Environment) Get(name lexer.Token) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values[name.Lexeme]; ok {
			return v, nil
		}
	}
	return Value{}, undefinedVariable(name)
}

// Assign updates the innermost scope that already holds name. It never
// creates a binding.
func (e *Environment) Assign(name lexer.Token, v Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = v
			return nil
		}
	}
	return undefinedVariable(name)
}

// Names lists the bindings of this scope only, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.values))
	for k := range e.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (e *Environment) lookup(name string) (Value, bool) {
	v, ok := e.values[name]
	return v, ok
}
