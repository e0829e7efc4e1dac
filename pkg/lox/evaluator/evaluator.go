// Package evaluator walks the AST and computes values. Runtime errors
// travel as ERROR objects and stop everything above them; return values
// travel as RETURN_VALUE objects and stop at the enclosing call.
package evaluator

import (
	"github.com/sambeau/golox/pkg/lox/ast"
	lerrors "github.com/sambeau/golox/pkg/lox/errors"
	"github.com/sambeau/golox/pkg/lox/lexer"
)

// Eval evaluates an AST node in the given environment
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return evalProgram(node.Statements, env)

	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)

	case *ast.VarStatement:
		var val Object = NIL
		if node.Value != nil {
			val = Eval(node.Value, env)
			if isError(val) {
				return val
			}
		}
		env.Define(node.Name.Value, val)
		return NIL

	case *ast.FunctionStatement:
		fn := &Function{
			Name:       node.Name.Value,
			Parameters: node.Parameters,
			Body:       node.Body,
			Env:        env,
		}
		env.Define(node.Name.Value, fn)
		return NIL

	case *ast.PrintStatement:
		val := Eval(node.Value, env)
		if isError(val) {
			return val
		}
		if env.Logger != nil {
			env.Logger.LogLine(val.Inspect())
		}
		return NIL

	case *ast.BlockStatement:
		return evalBlockStatement(node, NewEnclosedEnvironment(env))

	case *ast.IfStatement:
		return evalIfStatement(node, env)

	case *ast.WhileStatement:
		return evalWhileStatement(node, env)

	case *ast.ReturnStatement:
		var val Object = NIL
		if node.ReturnValue != nil {
			val = Eval(node.ReturnValue, env)
			if isError(val) {
				return val
			}
		}
		return &ReturnValue{Value: val}

	// Expressions
	case *ast.NumberLiteral:
		return &Number{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.NilLiteral:
		return NIL

	case *ast.GroupingExpression:
		return Eval(node.Expression, env)

	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalPrefixExpression(node.Token, node.Operator, right)

	case *ast.InfixExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalInfixExpression(node.Token, node.Operator, left, right)

	case *ast.LogicalExpression:
		return evalLogicalExpression(node, env)

	case *ast.AssignExpression:
		return evalAssignExpression(node, env)

	case *ast.CallExpression:
		callee := Eval(node.Callee, env)
		if isError(callee) {
			return callee
		}
		args := evalExpressions(node.Arguments, env)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}
		return applyFunction(node.Token, callee, args, env)
	}

	return nil
}

func evalProgram(stmts []ast.Statement, env *Environment) Object {
	var result Object = NIL

	for _, statement := range stmts {
		result = Eval(statement, env)

		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *Error:
			return result
		}
	}

	return result
}

// evalBlockStatement runs statements in the given scope. It does NOT
// open a scope itself: the Eval case for blocks opens one, while
// function application passes the parameter scope in directly.
func evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	var result Object = NIL

	for _, statement := range block.Statements {
		result = Eval(statement, env)

		if result != nil {
			rt := result.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}

	return result
}

func evalIfStatement(node *ast.IfStatement, env *Environment) Object {
	condition := Eval(node.Condition, env)
	if isError(condition) {
		return condition
	}

	if isTruthy(condition) {
		return Eval(node.Then, env)
	}
	if node.Else != nil {
		return Eval(node.Else, env)
	}
	return NIL
}

func evalWhileStatement(node *ast.WhileStatement, env *Environment) Object {
	for {
		condition := Eval(node.Condition, env)
		if isError(condition) {
			return condition
		}
		if !isTruthy(condition) {
			break
		}

		result := Eval(node.Body, env)
		if result != nil {
			rt := result.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}

	return NIL
}

func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}

	err := newError(node.Token.Line, "Undefined variable '%s'.", node.Value)
	err.Err.WithSuggestion(node.Value, env.AllIdentifiers())
	if len(err.Err.Hints) == 0 {
		err.Err.WithSuggestion(node.Value, lerrors.LoxKeywords)
	}
	return err
}

func evalAssignExpression(node *ast.AssignExpression, env *Environment) Object {
	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}

	if !env.Assign(node.Name.Value, val) {
		err := newError(node.Name.Token.Line, "Undefined variable '%s'.", node.Name.Value)
		err.Err.WithSuggestion(node.Name.Value, env.AllIdentifiers())
		return err
	}

	// Assignment is an expression; it yields the assigned value.
	return val
}

func evalLogicalExpression(node *ast.LogicalExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}

	// Short circuit: hand back the deciding operand itself, unconverted.
	if node.Operator == "or" {
		if isTruthy(left) {
			return left
		}
	} else {
		if !isTruthy(left) {
			return left
		}
	}

	return Eval(node.Right, env)
}

func evalPrefixExpression(tok lexer.Token, operator string, right Object) Object {
	switch operator {
	case "!":
		return nativeBoolToBooleanObject(!isTruthy(right))
	case "-":
		num, ok := right.(*Number)
		if !ok {
			return newError(tok.Line, "Operand must be a number.")
		}
		return &Number{Value: -num.Value}
	default:
		return newError(tok.Line, "Unknown operator '%s'.", operator)
	}
}

func evalInfixExpression(tok lexer.Token, operator string, left, right Object) Object {
	switch operator {
	case "==":
		return nativeBoolToBooleanObject(objectsEqual(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!objectsEqual(left, right))
	case "+":
		return evalPlusExpression(tok, left, right)
	default:
		leftNum, lok := left.(*Number)
		rightNum, rok := right.(*Number)
		if !lok || !rok {
			return newError(tok.Line, "Operands must be numbers.")
		}
		return evalNumberInfixExpression(tok, operator, leftNum, rightNum)
	}
}

// evalPlusExpression: numbers add; if either side is a string the other
// side is rendered to its canonical text and the two concatenate.
func evalPlusExpression(tok lexer.Token, left, right Object) Object {
	if leftNum, ok := left.(*Number); ok {
		if rightNum, ok := right.(*Number); ok {
			return &Number{Value: leftNum.Value + rightNum.Value}
		}
	}

	_, leftIsString := left.(*String)
	_, rightIsString := right.(*String)
	if leftIsString || rightIsString {
		return &String{Value: left.Inspect() + right.Inspect()}
	}

	return newError(tok.Line, "Operands must be numbers.")
}

func evalNumberInfixExpression(tok lexer.Token, operator string, left, right *Number) Object {
	switch operator {
	case "-":
		return &Number{Value: left.Value - right.Value}
	case "*":
		return &Number{Value: left.Value * right.Value}
	case "/":
		// IEEE division: x/0 is an infinity, 0/0 is NaN.
		return &Number{Value: left.Value / right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	default:
		return newError(tok.Line, "Unknown operator '%s'.", operator)
	}
}

// objectsEqual implements ==. No implicit conversions: values of
// different types are never equal. Number equality is IEEE, so
// NaN != NaN. Functions compare by identity.
func objectsEqual(left, right Object) bool {
	switch left := left.(type) {
	case *Number:
		right, ok := right.(*Number)
		return ok && left.Value == right.Value
	case *String:
		right, ok := right.(*String)
		return ok && left.Value == right.Value
	default:
		// Booleans and nil are singletons; everything else compares by
		// reference.
		return left == right
	}
}

func evalExpressions(exps []ast.Expression, env *Environment) []Object {
	var result []Object

	for _, e := range exps {
		evaluated := Eval(e, env)
		if isError(evaluated) {
			return []Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

func applyFunction(tok lexer.Token, fn Object, args []Object, env *Environment) Object {
	switch fn := fn.(type) {
	case *Function:
		if len(args) != len(fn.Parameters) {
			return newError(tok.Line, "Expected %d arguments but got %d.",
				len(fn.Parameters), len(args))
		}
		if !env.enterCall() {
			return newError(tok.Line, "Stack overflow.")
		}
		defer env.leaveCall()

		extendedEnv := extendFunctionEnv(fn, args)
		evaluated := evalBlockStatement(fn.Body, extendedEnv)
		if isError(evaluated) {
			return evaluated
		}
		// Only an explicit return produces a value; a body that falls
		// off the end yields nil.
		if returnValue, ok := evaluated.(*ReturnValue); ok {
			return returnValue.Value
		}
		return NIL

	case *Builtin:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return newError(tok.Line, "Expected %d arguments but got %d.",
				fn.Arity, len(args))
		}
		return fn.Fn(args...)

	default:
		return newError(tok.Line, "Can only call functions.")
	}
}

// extendFunctionEnv binds arguments to parameters in a child of the
// function's closure environment, not the caller's.
func extendFunctionEnv(fn *Function, args []Object) *Environment {
	env := NewEnclosedEnvironment(fn.Env)

	for i, param := range fn.Parameters {
		env.Define(param.Value, args[i])
	}

	return env
}

// isTruthy: nil and false are falsy, every other value is truthy,
// including 0 and "".
func isTruthy(obj Object) bool {
	switch obj {
	case NIL, FALSE:
		return false
	default:
		return true
	}
}

func newError(line int, format string, a ...any) *Error {
	return &Error{Err: lerrors.NewRuntime(line, format, a...)}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}
