package interpreter

import "sort"

// GlobalsSnapshot returns a copy of global variables (sorted usage is caller-side).
func (i *Interpreter) GlobalsSnapshot() map[string]Value {
	names := i.globals.Names()
	out := make(map[string]Value, len(names))
	for _, k := range names {
		v, _ := i.globals.lookup(k)
		out[k] = v
	}
	return out
}

// FuncNames returns sorted names of global user-defined functions.
// Natives are left out.
func (i *Interpreter) FuncNames() []string {
	names := []string{}
	for name, v := range i.GlobalsSnapshot() {
		if _, ok := v.Fn.(*Function); ok && v.Kind == ValFunction {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
