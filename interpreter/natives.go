package interpreter

import (
	"fmt"
	"sort"
)

var builtinNatives = map[string]*NativeFunction{
	"clock": {Name: "clock", ArityN: 0, Fn: nativeClock},
}

// NativeNames lists the natives InstallNatives knows about.
func NativeNames() []string {
	names := make([]string, 0, len(builtinNatives))
	for name := range builtinNatives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefineNative binds a host function in the global scope. Call it before
// running user code; a later user declaration with the same name wins.
func (i *Interpreter) DefineNative(name string, arity int, fn NativeFn) {
	i.globals.Define(name, FunctionValue(&NativeFunction{Name: name, ArityN: arity, Fn: fn}))
}

// InstallNatives defines the named builtins in the global scope.
func (i *Interpreter) InstallNatives(names ...string) error {
	for _, name := range names {
		nf, ok := builtinNatives[name]
		if !ok {
			return fmt.Errorf("unknown native %q", name)
		}
		i.DefineNative(nf.Name, nf.ArityN, nf.Fn)
	}
	return nil
}

// clock() returns milliseconds since the Unix epoch.
func nativeClock(in *Interpreter, _ []Value) (Value, error) {
	now := in.now()
	ms := now.UnixMilli()
	if ms < 0 {
		return Value{}, &SystemError{Msg: fmt.Sprintf("clock returned a time before the epoch: %s", now)}
	}
	return NumberValue(float64(ms)), nil
}
