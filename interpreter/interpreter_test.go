package interpreter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"golox/ast"
	"golox/lexer"
	"golox/parser"
)

func parseProgram(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	tokens, err := lexer.Scan(src)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	stmts, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return stmts
}

// runIn runs src on an existing interpreter and returns what it printed.
func runIn(t *testing.T, in *Interpreter, src string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	in.SetOutput(&out)
	in.SetSource("test.lox", src)
	err := in.Run(parseProgram(t, src))
	return out.String(), err
}

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	return runIn(t, New(), src)
}

func mustRun(t *testing.T, src string) string {
	t.Helper()
	out, err := run(t, src)
	if err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return out
}

func runtimeError(t *testing.T, err error) *RuntimeError {
	t.Helper()
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("want *RuntimeError, got %T %v", err, err)
	}
	return re
}

func TestPrintedValues(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"print 1 - 2 - 3;", "-4"},
		{"print 2 + 3 * 4;", "14"},
		{"print (2 + 3) * 4;", "20"},
		{"print 7 / 2;", "3.5"},
		{"print 1 / 0;", "inf"},
		{"print -1 / 0;", "-inf"},
		{"print 123.456;", "123.456"},
		{"print -(-3);", "3"},
		{`print "hello";`, "hello"},
		{"print nil;", "nil"},
		{"print true;", "true"},
		{"print !nil;", "true"},
		{"print !0;", "false"},
		{`print !"";`, "false"},
		{"print !false;", "true"},
		{"print nil == nil;", "true"},
		{"print nil != nil;", "false"},
		{"print 1 == 1;", "true"},
		{"print 1 == 2;", "false"},
		{"print 1 != 2;", "true"},
		{"print 3 > 2;", "true"},
		{"print 3 >= 3;", "true"},
		{"print 2 < 1;", "false"},
		{"print 2 <= 2;", "true"},
		{"print nil or 5;", "5"},
		{"print 0 or 5;", "0"},
		{"print false and 5;", "false"},
		{"print 1 and 2;", "2"},
		{`print nil or "x";`, "x"},
		{"func f() {} print f;", "<fn f>"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			got := strings.TrimSuffix(mustRun(t, tc.src), "\n")
			if got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNumberLiteralRoundTrip(t *testing.T) {
	for _, src := range []string{"0", "1", "42", "3.25", "1000000", "0.001"} {
		tokens, err := lexer.Scan(src)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		expr, err := parser.ParseExpression(tokens)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		v, err := New().Evaluate(expr)
		if err != nil {
			t.Fatalf("eval: %v", err)
		}
		if v.Kind != ValNumber || v.Number != tokens[0].Literal.(float64) {
			t.Fatalf("%s evaluated to %v", src, v)
		}
	}
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	out := mustRun(t, `
var calls = 0;
func bump() { calls = calls + 1; return true; }
var a = true or bump();
var b = false and bump();
var c = false or bump();
print calls;
`)
	if out != "1\n" {
		t.Fatalf("want 1 call, got %q", out)
	}
}

func TestBlockScoping(t *testing.T) {
	out := mustRun(t, "var x = 1; { var x = 2; print x; } print x;")
	if out != "2\n1\n" {
		t.Fatalf("got %q", out)
	}
}

func TestAssignmentMutatesOuterBinding(t *testing.T) {
	out := mustRun(t, `
var a = "outer";
{
  a = "changed";
  { a = "deeper"; }
}
print a;
`)
	if out != "deeper\n" {
		t.Fatalf("got %q", out)
	}
}

func TestAssignmentIsAnExpression(t *testing.T) {
	out := mustRun(t, "var a; var b; a = b = 3; print a; print b; print a = 4;")
	if out != "3\n3\n4\n" {
		t.Fatalf("got %q", out)
	}
}

func TestVarWithoutInitializerIsNil(t *testing.T) {
	if out := mustRun(t, "var a; print a;"); out != "nil\n" {
		t.Fatalf("got %q", out)
	}
}

func TestUndefinedVariable(t *testing.T) {
	tests := []string{
		"print missing;",
		"missing = 1;",
		"{ var inner = 1; } inner = 2;",
	}
	for _, src := range tests {
		_, err := run(t, src)
		re := runtimeError(t, err)
		if re.Kind != ErrUndefinedVariable {
			t.Fatalf("%s: kind %v", src, re.Kind)
		}
		if !strings.Contains(re.Msg, "Undefined variable") {
			t.Fatalf("%s: msg %q", src, re.Msg)
		}
	}
}

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{`print -"a";`, "Operand must be a number."},
		{`print 1 + "a";`, "Operands must be numbers."},
		{`print "a" + "b";`, "Operands must be numbers."},
		{`print "1" == "1";`, "Operands must be numbers."},
		{`print true < false;`, "Operands must be numbers."},
		{`print nil + nil;`, "Operands must be numbers."},
		{`print nil == 1;`, "Operands must be numbers."},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			_, err := run(t, tc.src)
			re := runtimeError(t, err)
			if re.Kind != ErrTypeMismatch || re.Msg != tc.msg {
				t.Fatalf("got %v %q", re.Kind, re.Msg)
			}
		})
	}
}

func TestRuntimeErrorStopsProgram(t *testing.T) {
	out, err := run(t, `print "before"; print -nil; print "after";`)
	if err == nil {
		t.Fatalf("want error")
	}
	if out != "before\n" {
		t.Fatalf("statements after the error ran: %q", out)
	}
}

func TestWhileLoop(t *testing.T) {
	out := mustRun(t, "var i = 0; while (i < 3) { print i; i = i + 1; }")
	if out != "0\n1\n2\n" {
		t.Fatalf("got %q", out)
	}
}

func TestBreakEndsLoopOnly(t *testing.T) {
	out := mustRun(t, `
var i = 0;
while (true) {
  if (i == 2) break;
  print i;
  i = i + 1;
}
print "after";
`)
	if out != "0\n1\nafter\n" {
		t.Fatalf("got %q", out)
	}
}

func TestBreakInnermostLoop(t *testing.T) {
	out := mustRun(t, `
for (var i = 0; i < 2; i = i + 1) {
  for (var j = 0; j < 10; j = j + 1) {
    if (j == 1) break;
    print i * 10 + j;
  }
}
`)
	if out != "0\n10\n" {
		t.Fatalf("got %q", out)
	}
}

func TestForLoop(t *testing.T) {
	out := mustRun(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	if out != "0\n1\n2\n" {
		t.Fatalf("got %q", out)
	}
	// the loop variable lives in the desugared outer block
	_, err := run(t, "for (var i = 0; i < 1; i = i + 1) {} print i;")
	if runtimeError(t, err).Kind != ErrUndefinedVariable {
		t.Fatalf("loop variable leaked")
	}
}

func TestIfElse(t *testing.T) {
	out := mustRun(t, `
if (0) print "zero is truthy"; else print "no";
if (nil) print "no"; else print "nil is falsy";
if (false) print "no";
`)
	if out != "zero is truthy\nnil is falsy\n" {
		t.Fatalf("got %q", out)
	}
}

func TestFunctionsAndReturn(t *testing.T) {
	out := mustRun(t, `
func add(a, b) { return a + b; }
print add(1, 2);
func noReturn() { var x = 1; }
print noReturn();
func bare() { return; }
print bare();
`)
	if out != "3\nnil\nnil\n" {
		t.Fatalf("got %q", out)
	}
}

func TestReturnUnwindsNestedBlocks(t *testing.T) {
	out := mustRun(t, `
func find() {
  var i = 0;
  while (true) {
    {
      if (i == 3) { return i * 2; }
    }
    i = i + 1;
  }
}
print find();
`)
	if out != "6\n" {
		t.Fatalf("got %q", out)
	}
}

func TestRecursion(t *testing.T) {
	out := mustRun(t, `
func fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(15);
`)
	if out != "610\n" {
		t.Fatalf("got %q", out)
	}
}

func TestClosureOutlivesBlock(t *testing.T) {
	out := mustRun(t, `
var get;
{
  var captured = "kept";
  func reader() { return captured; }
  get = reader;
}
print get();
`)
	if out != "kept\n" {
		t.Fatalf("got %q", out)
	}
}

func TestClosureCounter(t *testing.T) {
	out := mustRun(t, `
func makeCounter() {
  var count = 0;
  func inc() {
    count = count + 1;
    return count;
  }
  return inc;
}
var a = makeCounter();
var b = makeCounter();
print a();
print a();
print b();
`)
	if out != "1\n2\n1\n" {
		t.Fatalf("got %q", out)
	}
}

func TestClosureSharesScope(t *testing.T) {
	out := mustRun(t, `
var set; var get;
{
  var v = 1;
  func s(x) { v = x; }
  func g() { return v; }
  set = s; get = g;
}
set(42);
print get();
`)
	if out != "42\n" {
		t.Fatalf("got %q", out)
	}
}

func TestLexicalNotDynamicScope(t *testing.T) {
	out := mustRun(t, `
var x = "global";
func show() { print x; }
func caller() {
  var x = "local";
  show();
}
caller();
`)
	if out != "global\n" {
		t.Fatalf("got %q", out)
	}
}

func TestChainedCalls(t *testing.T) {
	out := mustRun(t, `
func outer() {
  func inner(n) { return n + 1; }
  return inner;
}
print outer()(41);
`)
	if out != "42\n" {
		t.Fatalf("got %q", out)
	}
}

func TestArityMismatchSkipsBody(t *testing.T) {
	out, err := run(t, `
func f(a, b) { print "body ran"; }
f(1);
`)
	re := runtimeError(t, err)
	if re.Kind != ErrArityMismatch || re.Msg != "Expected 2 arguments but got 1." {
		t.Fatalf("got %v %q", re.Kind, re.Msg)
	}
	if out != "" {
		t.Fatalf("body ran: %q", out)
	}
}

func TestCallNonFunction(t *testing.T) {
	_, err := run(t, `var s = "x"; s();`)
	re := runtimeError(t, err)
	if re.Kind != ErrNotCallable || re.Msg != "Can only call functions." {
		t.Fatalf("got %v %q", re.Kind, re.Msg)
	}
}

func TestArgumentsEvaluatedLeftToRight(t *testing.T) {
	out := mustRun(t, `
func show(n) { print n; return n; }
func three(a, b, c) { return a + b + c; }
print three(show(1), show(2), show(3));
`)
	if out != "1\n2\n3\n6\n" {
		t.Fatalf("got %q", out)
	}
}

func TestEnvironmentRestoredAfterError(t *testing.T) {
	in := New()
	if _, err := runIn(t, in, "var x = 1;"); err != nil {
		t.Fatal(err)
	}
	if _, err := runIn(t, in, "{ var x = 2; print -nil; }"); err == nil {
		t.Fatalf("want error")
	}
	out, err := runIn(t, in, "print x;")
	if err != nil {
		t.Fatal(err)
	}
	if out != "1\n" {
		t.Fatalf("scope leaked after error: %q", out)
	}
}

func TestSessionStatePersists(t *testing.T) {
	in := New()
	steps := []struct {
		src  string
		want string
	}{
		{"var count = 0;", ""},
		{"func bump() { count = count + 1; return count; }", ""},
		{"print bump();", "1\n"},
		{"print bump();", "2\n"},
	}
	for _, st := range steps {
		out, err := runIn(t, in, st.src)
		if err != nil {
			t.Fatalf("%s: %v", st.src, err)
		}
		if out != st.want {
			t.Fatalf("%s: want %q got %q", st.src, st.want, out)
		}
	}
	if names := in.FuncNames(); len(names) != 1 || names[0] != "bump" {
		t.Fatalf("FuncNames = %v", names)
	}
	if v := in.GlobalsSnapshot()["count"]; v.Number != 2 {
		t.Fatalf("count = %v", v)
	}
}

func TestRuntimeErrorFormat(t *testing.T) {
	src := "func boom() {\n  return -\"x\";\n}\nboom();"
	_, err := run(t, src)
	re := runtimeError(t, err)
	want := strings.Join([]string{
		"Runtime error at test.lox:2:10",
		"  Operand must be a number.",
		`  2 |   return -"x";`,
		"               ^",
		"Stack:",
		"  at boom()",
	}, "\n")
	if re.Error() != want {
		t.Fatalf("want\n%s\ngot\n%s", want, re.Error())
	}
}

func TestInterpretReportsErrors(t *testing.T) {
	in := New()
	var out, errOut bytes.Buffer
	in.SetOutput(&out)
	in.SetErrorOutput(&errOut)
	err := in.Interpret(parseProgram(t, "print undefinedThing;"))
	if err == nil {
		t.Fatalf("want error")
	}
	if !strings.Contains(errOut.String(), "Undefined variable 'undefinedThing'.") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestEscapedSignalsAreErrors(t *testing.T) {
	brk := &ast.BreakStmt{Keyword: lexer.Token{Type: lexer.BREAK, Lexeme: "break", Line: 1, Col: 1}}
	err := New().Run([]ast.Stmt{brk})
	if runtimeError(t, err).Kind != ErrControlFlow {
		t.Fatalf("break at top level: %v", err)
	}

	ret := &ast.ReturnStmt{Keyword: lexer.Token{Type: lexer.RETURN, Lexeme: "return", Line: 1, Col: 1}}
	err = New().Run([]ast.Stmt{ret})
	if runtimeError(t, err).Kind != ErrControlFlow {
		t.Fatalf("return at top level: %v", err)
	}
}

func TestClockNative(t *testing.T) {
	in := New()
	if err := in.InstallNatives("clock"); err != nil {
		t.Fatal(err)
	}
	in.SetClock(func() time.Time { return time.UnixMilli(1500) })
	out, err := runIn(t, in, "print clock(); print clock;")
	if err != nil {
		t.Fatal(err)
	}
	if out != "1500\n<native fn clock>\n" {
		t.Fatalf("got %q", out)
	}

	_, err = runIn(t, in, "clock(1);")
	if runtimeError(t, err).Kind != ErrArityMismatch {
		t.Fatalf("clock arity: %v", err)
	}

	in.SetClock(func() time.Time { return time.UnixMilli(-1) })
	_, err = runIn(t, in, "clock();")
	var sysErr *SystemError
	if !errors.As(err, &sysErr) {
		t.Fatalf("want *SystemError, got %v", err)
	}

	if len(in.FuncNames()) != 0 {
		t.Fatalf("natives should not be listed as user functions: %v", in.FuncNames())
	}
}

func TestInstallUnknownNative(t *testing.T) {
	if err := New().InstallNatives("nope"); err == nil {
		t.Fatalf("want error")
	}
	if names := NativeNames(); len(names) != 1 || names[0] != "clock" {
		t.Fatalf("NativeNames = %v", names)
	}
}

func TestDefineNative(t *testing.T) {
	in := New()
	in.DefineNative("double", 1, func(_ *Interpreter, args []Value) (Value, error) {
		return NumberValue(args[0].Number * 2), nil
	})
	out, err := runIn(t, in, "print double(21);")
	if err != nil {
		t.Fatal(err)
	}
	if out != "42\n" {
		t.Fatalf("got %q", out)
	}
}
