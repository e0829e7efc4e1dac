// Package format renders tokens, AST nodes, and numbers in the
// interpreter's canonical text forms. Every command that prints a value
// or a tree goes through here so the renderings stay consistent.
package format

import (
	"bytes"
	"math"
	"strconv"

	"github.com/sambeau/golox/pkg/lox/ast"
	"github.com/sambeau/golox/pkg/lox/lexer"
)

// Number renders a float in the shortest decimal form that round-trips,
// never exponent notation. Integral values drop the fraction: 7.0 → "7".
func Number(value float64) string {
	if math.IsNaN(value) {
		return "NaN"
	}
	if math.IsInf(value, 1) {
		return "inf"
	}
	if math.IsInf(value, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// TokenLiteral renders a token's literal payload for tokenize output.
// Unlike Number, integral number literals keep one decimal place here:
// the source text "200.00" scans to the payload "200.0". Tokens without
// a payload render as "null".
func TokenLiteral(tok lexer.Token) string {
	switch tok.Type {
	case lexer.STRING:
		value, _ := tok.Literal.(string)
		return value
	case lexer.NUMBER:
		value, ok := tok.Literal.(float64)
		if !ok {
			return "null"
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return Number(value)
		}
		if math.Trunc(value) == value {
			return strconv.FormatFloat(value, 'f', 1, 64)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return "null"
	}
}

// Token renders one tokenize-output line: kind, lexeme, literal payload.
// The EOF token has an empty lexeme, giving the trailing "EOF  null".
func Token(tok lexer.Token) string {
	return tok.Type.String() + " " + tok.Lexeme + " " + TokenLiteral(tok)
}

// PrintAST renders an expression in parenthesized prefix form:
// "1 + 2 * 3" becomes "(+ 1 (* 2 3))".
func PrintAST(expr ast.Expression) string {
	switch node := expr.(type) {
	case *ast.NumberLiteral:
		return Number(node.Value)
	case *ast.StringLiteral:
		return node.Value
	case *ast.BooleanLiteral:
		return node.Token.Lexeme
	case *ast.NilLiteral:
		return "nil"
	case *ast.Identifier:
		return node.Value
	case *ast.GroupingExpression:
		return parenthesize("group", node.Expression)
	case *ast.PrefixExpression:
		return parenthesize(node.Operator, node.Right)
	case *ast.InfixExpression:
		return parenthesize(node.Operator, node.Left, node.Right)
	case *ast.LogicalExpression:
		return parenthesize(node.Operator, node.Left, node.Right)
	case *ast.AssignExpression:
		return parenthesize("= "+node.Name.Value, node.Value)
	case *ast.CallExpression:
		return parenthesize("call", append([]ast.Expression{node.Callee}, node.Arguments...)...)
	case nil:
		return ""
	default:
		return expr.String()
	}
}

// PrintStmt renders a statement in the same prefix form.
func PrintStmt(stmt ast.Statement) string {
	switch node := stmt.(type) {
	case *ast.ExpressionStatement:
		return PrintAST(node.Expression)
	case *ast.PrintStatement:
		return parenthesize("print", node.Value)
	case *ast.VarStatement:
		if node.Value == nil {
			return "(var " + node.Name.Value + ")"
		}
		return parenthesize("var "+node.Name.Value, node.Value)
	case *ast.ReturnStatement:
		if node.ReturnValue == nil {
			return "(return)"
		}
		return parenthesize("return", node.ReturnValue)
	case *ast.BlockStatement:
		var out bytes.Buffer
		out.WriteString("(block")
		for _, s := range node.Statements {
			out.WriteString(" ")
			out.WriteString(PrintStmt(s))
		}
		out.WriteString(")")
		return out.String()
	case *ast.IfStatement:
		var out bytes.Buffer
		out.WriteString("(if ")
		out.WriteString(PrintAST(node.Condition))
		out.WriteString(" ")
		out.WriteString(PrintStmt(node.Then))
		if node.Else != nil {
			out.WriteString(" ")
			out.WriteString(PrintStmt(node.Else))
		}
		out.WriteString(")")
		return out.String()
	case *ast.WhileStatement:
		var out bytes.Buffer
		out.WriteString("(while ")
		out.WriteString(PrintAST(node.Condition))
		out.WriteString(" ")
		out.WriteString(PrintStmt(node.Body))
		out.WriteString(")")
		return out.String()
	case *ast.FunctionStatement:
		var out bytes.Buffer
		out.WriteString("(fun ")
		out.WriteString(node.Name.Value)
		out.WriteString(" (")
		for i, param := range node.Parameters {
			if i > 0 {
				out.WriteString(" ")
			}
			out.WriteString(param.Value)
		}
		out.WriteString(") ")
		out.WriteString(PrintStmt(node.Body))
		out.WriteString(")")
		return out.String()
	case nil:
		return ""
	default:
		return stmt.String()
	}
}

// PrintProgram renders a whole program, one statement per line.
func PrintProgram(program *ast.Program) string {
	var out bytes.Buffer
	for i, stmt := range program.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(PrintStmt(stmt))
	}
	return out.String()
}

func parenthesize(name string, exprs ...ast.Expression) string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(name)
	for _, expr := range exprs {
		out.WriteString(" ")
		out.WriteString(PrintAST(expr))
	}
	out.WriteString(")")

	return out.String()
}
