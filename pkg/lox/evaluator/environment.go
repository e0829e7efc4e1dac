package evaluator

// DefaultMaxCallDepth bounds function-call nesting. Deep enough for any
// reasonable recursion, shallow enough to report "Stack overflow."
// before the host stack gives out.
const DefaultMaxCallDepth = 1024

// Environment is a lexical scope: a store of bindings plus a link to
// the enclosing scope. Interpreter plumbing (logger, call-depth
// counter) rides along the chain so every scope of a run shares it.
type Environment struct {
	store        map[string]Object
	outer        *Environment
	Filename     string
	Logger       Logger
	MaxCallDepth int
	callDepth    *int
}

// NewEnvironment creates a global scope with the native functions
// installed
func NewEnvironment() *Environment {
	env := &Environment{
		store:        make(map[string]Object),
		outer:        nil,
		Logger:       DefaultLogger,
		MaxCallDepth: DefaultMaxCallDepth,
		callDepth:    new(int),
	}
	for name, builtin := range builtins {
		env.store[name] = builtin
	}
	return env
}

// NewEnclosedEnvironment creates a child scope. Shared plumbing is
// carried over from the outer scope.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := &Environment{
		store: make(map[string]Object),
		outer: outer,
	}
	if outer != nil {
		env.Filename = outer.Filename
		env.Logger = outer.Logger
		env.MaxCallDepth = outer.MaxCallDepth
		env.callDepth = outer.callDepth
	}
	return env
}

// Define creates or overwrites a binding in this scope. Redeclaring an
// existing name is allowed.
func (e *Environment) Define(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Get resolves a name against this scope and its ancestors
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		value, ok = e.outer.Get(name)
	}
	return value, ok
}

// Assign updates an existing binding in the nearest scope that has it.
// Unlike Define it never creates a binding: assigning to an undeclared
// name fails.
func (e *Environment) Assign(name string, val Object) bool {
	if _, ok := e.store[name]; ok {
		e.store[name] = val
		return true
	}
	if e.outer != nil {
		return e.outer.Assign(name, val)
	}
	return false
}

// AllIdentifiers returns every name visible from this scope. Used for
// fuzzy matching in error messages and REPL completion.
func (e *Environment) AllIdentifiers() []string {
	var names []string
	seen := make(map[string]bool)
	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// enterCall bumps the shared call-depth counter, refusing once the
// configured maximum is hit
func (e *Environment) enterCall() bool {
	if e.callDepth == nil {
		e.callDepth = new(int)
	}
	if *e.callDepth >= e.MaxCallDepth {
		return false
	}
	*e.callDepth++
	return true
}

func (e *Environment) leaveCall() {
	if e.callDepth != nil && *e.callDepth > 0 {
		*e.callDepth--
	}
}
