package evaluator

import (
	"sort"
	"time"
)

// builtins are the native functions installed into every global scope
var builtins = map[string]*Builtin{
	"clock": {
		Name:  "clock",
		Arity: 0,
		Fn: func(args ...Object) Object {
			return &Number{Value: float64(time.Now().UnixMilli()) / 1000.0}
		},
	},
}

// BuiltinNames returns the native function names, sorted
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
