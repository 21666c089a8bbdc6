package interpreter

import (
	"errors"
	"reflect"
	"testing"

	"golox/lexer"
)

func ident(name string) lexer.Token {
	return lexer.Token{Type: lexer.IDENT, Lexeme: name, Line: 7}
}

func TestEnvironmentDefineShadows(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", NumberValue(1))
	inner := NewEnvironment(outer)
	inner.Define("a", NumberValue(2))

	if v, _ := inner.Get(ident("a")); v.Number != 2 {
		t.Fatalf("inner a = %v", v)
	}
	if v, _ := outer.Get(ident("a")); v.Number != 1 {
		t.Fatalf("outer a = %v", v)
	}

	outer.Define("a", StringValue("redefined"))
	if v, _ := outer.Get(ident("a")); v.Str != "redefined" {
		t.Fatalf("define should overwrite, got %v", v)
	}
}

func TestEnvironmentGetWalksOutward(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("x", BoolValue(true))
	leaf := NewEnvironment(NewEnvironment(root))

	v, err := leaf.Get(ident("x"))
	if err != nil || !v.Bool {
		t.Fatalf("got %v, %v", v, err)
	}
	if leaf.Enclosing().Enclosing() != root {
		t.Fatalf("broken chain")
	}
}

func TestEnvironmentAssignMutatesOwningScope(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("n", NumberValue(1))
	inner := NewEnvironment(outer)

	if err := inner.Assign(ident("n"), NumberValue(5)); err != nil {
		t.Fatal(err)
	}
	if len(inner.Names()) != 0 {
		t.Fatalf("assign created an inner binding: %v", inner.Names())
	}
	if v, _ := outer.Get(ident("n")); v.Number != 5 {
		t.Fatalf("outer n = %v", v)
	}
}

func TestEnvironmentUndefined(t *testing.T) {
	env := NewEnvironment(NewEnvironment(nil))

	_, err := env.Get(ident("ghost"))
	var re *RuntimeError
	if !errors.As(err, &re) || re.Kind != ErrUndefinedVariable {
		t.Fatalf("get: %v", err)
	}
	if re.Msg != "Undefined variable 'ghost'." || re.Token.Line != 7 {
		t.Fatalf("get: %q line %d", re.Msg, re.Token.Line)
	}

	err = env.Assign(ident("ghost"), NilValue())
	if !errors.As(err, &re) || re.Kind != ErrUndefinedVariable {
		t.Fatalf("assign: %v", err)
	}
	if _, err := env.Get(ident("ghost")); err == nil {
		t.Fatalf("failed assign must not create a binding")
	}
}

func TestEnvironmentNames(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("b", NilValue())
	env.Define("a", NilValue())
	if got := env.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Names = %v", got)
	}
}
