package evaluator

import (
	"github.com/sambeau/golox/pkg/lox/ast"
	lerrors "github.com/sambeau/golox/pkg/lox/errors"
	"github.com/sambeau/golox/pkg/lox/format"
)

// ObjectType identifies the runtime type of a value
type ObjectType string

const (
	NUMBER_OBJ   = "NUMBER"
	BOOLEAN_OBJ  = "BOOLEAN"
	STRING_OBJ   = "STRING"
	NIL_OBJ      = "NIL"
	RETURN_OBJ   = "RETURN_VALUE"
	ERROR_OBJ    = "ERROR"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
)

// Object represents all values in the language
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Number represents a 64-bit float value
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return format.Number(n.Value) }

// Boolean represents true or false. Always use the TRUE and FALSE
// singletons so comparisons can rely on identity.
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// String represents a string value
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Nil represents the absence of a value
type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

// ReturnValue wraps the value of a return statement while it unwinds to
// the enclosing call
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error wraps a runtime error while it unwinds the evaluation. It stops
// every statement and expression it passes through.
type Error struct {
	Err *lerrors.LoxError
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return e.Err.String() }

// Function represents a user-declared function together with the
// environment it closed over
type Function struct {
	Name       string
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<fn " + f.Name + ">" }

// BuiltinFunction is the signature of a native function
type BuiltinFunction func(args ...Object) Object

// Builtin represents a native function. Arity is checked at the call
// site, like user functions; -1 means variadic.
type Builtin struct {
	Name  string
	Arity int
	Fn    BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<native fn>" }

// Singletons. One TRUE, one FALSE, one NIL, shared by every evaluation.
var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	NIL   = &Nil{}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}
